// Pacote config centraliza o carregamento das variáveis de ambiente usadas pelo binário da API.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config agrega todos os parâmetros necessários para o serviço de sorteio.
type Config struct {
	HTTPAddress string
	LogLevel    string

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	ContadorKeyPrefix string

	RateLimitEnabled       bool
	RateLimitMaxActions    int
	RateLimitWindowSeconds int
	RateLimitKeyPrefix     string

	AutoMigrate bool

	// SorteioMaxPorRodada é o teto global de ganhadores por rodada, acima do
	// limite próprio de cada prêmio.
	SorteioMaxPorRodada int
}

func Load() (Config, error) {
	// Defaults priorizam execução local; variáveis permitem sobrescrever em Docker/K8s.
	cfg := Config{
		HTTPAddress:            getEnv("HTTP_ADDRESS", ":8080"),
		LogLevel:               getEnv("LOG_LEVEL", "info"),
		PostgresHost:           getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:           getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:           getEnv("POSTGRES_USER", "sorteio"),
		PostgresPassword:       getEnv("POSTGRES_PASSWORD", "sorteio"),
		PostgresDB:             getEnv("POSTGRES_DB", "ems_lottery"),
		PostgresSSLMode:        getEnv("POSTGRES_SSLMODE", "disable"),
		RedisAddr:              getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:          os.Getenv("REDIS_PASSWORD"),
		ContadorKeyPrefix:      getEnv("REDIS_COUNTER_PREFIX", "contador"),
		RateLimitEnabled:       getEnv("ATIVACAO_RATE_LIMIT_ENABLED", "true") == "true",
		RateLimitMaxActions:    getEnvAsInt("ATIVACAO_RATE_LIMIT_MAX", 10),
		RateLimitWindowSeconds: getEnvAsInt("ATIVACAO_RATE_LIMIT_WINDOW", 60),
		RateLimitKeyPrefix:     getEnv("ATIVACAO_RATE_LIMIT_PREFIX", "ratelimit"),
		AutoMigrate:            getEnvAsBool("DB_AUTO_MIGRATE", true),
		SorteioMaxPorRodada:    getEnvAsInt("SORTEIO_MAX_POR_RODADA", 20),
	}

	dbStr := getEnv("REDIS_DB", "0")
	dbInt, err := strconv.Atoi(dbStr)
	if err != nil {
		return Config{}, fmt.Errorf("config: REDIS_DB invalido: %w", err)
	}
	cfg.RedisDB = dbInt

	return cfg, nil
}

func (c Config) PostgresDSN() string {
	// Mantemos o formato DSN compatível com GORM e ferramentas de migração.
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.PostgresUser,
		c.PostgresPassword,
		c.PostgresHost,
		c.PostgresPort,
		c.PostgresDB,
		c.PostgresSSLMode,
	)
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getEnvAsInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return i
}

func getEnvAsBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	switch value {
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return true
	}
}
