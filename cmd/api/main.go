// Executável principal da API: carrega a configuração, inicializa dependências e sobe o servidor HTTP.
package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wewei/ems-lottery/internal/app/httpapi"
	"github.com/wewei/ems-lottery/internal/app/sorteio"
	"github.com/wewei/ems-lottery/internal/domain"
	"github.com/wewei/ems-lottery/internal/platform/antifraude"
	"github.com/wewei/ems-lottery/internal/platform/clock"
	"github.com/wewei/ems-lottery/internal/platform/config"
	"github.com/wewei/ems-lottery/internal/platform/health"
	"github.com/wewei/ems-lottery/internal/platform/ids"
	"github.com/wewei/ems-lottery/internal/platform/logger"
	"github.com/wewei/ems-lottery/internal/platform/migrations"
	postgresstorage "github.com/wewei/ems-lottery/internal/platform/storage/postgres"
	redisstorage "github.com/wewei/ems-lottery/internal/platform/storage/redis"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("configuracao invalida", "err", err)
	}
	logger.SetLevel(logger.ParseLevel(cfg.LogLevel))

	// Mantemos a conexão compartilhada em todo o ciclo para reaproveitar pool e checar readiness.
	db, err := postgresstorage.Open(ctx, cfg.PostgresDSN())
	if err != nil {
		logger.Fatal("falha ao conectar no postgres", "err", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("falha ao resgatar sql.DB", "err", err)
	}
	defer sqlDB.Close()

	if cfg.AutoMigrate {
		// Rodamos migrations automáticas apenas se habilitado para evitar surpresas em produção.
		if err := migrations.Run(db); err != nil {
			logger.Fatal("falha na migracao automatica", "err", err)
		}
	}

	// Redis serve o antifraude da ativação e os contadores do painel.
	redisClient, err := redisstorage.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.Fatal("falha ao conectar no redis", "err", err)
	}
	defer redisClient.Close()

	dbPremio := postgresstorage.NewPremioRepository(db)
	dbUsuario := postgresstorage.NewUsuarioRepository(db)
	dbRegistro := postgresstorage.NewRegistroSorteioRepository(db)
	dbConfiguracao := postgresstorage.NewConfiguracaoRepository(db)
	contador := redisstorage.NewContador(redisClient, cfg.ContadorKeyPrefix)
	clockSystem := clock.NewSystemClock()
	idGen := ids.NewGenerator()

	var antifraudeSvc domain.Antifraude = antifraude.NewNoop()
	if cfg.RateLimitEnabled {
		window := time.Duration(cfg.RateLimitWindowSeconds) * time.Second
		antifraudeSvc = antifraude.NewRedisRateLimiter(redisClient, cfg.RateLimitMaxActions, window, cfg.RateLimitKeyPrefix)
	}

	// Serviço agrega repositórios, contadores e antifraude para guardar a lógica de negócio.
	servico := sorteio.NewService(
		dbPremio,
		dbUsuario,
		dbRegistro,
		dbConfiguracao,
		contador,
		antifraudeSvc,
		clockSystem,
		idGen,
		cfg.SorteioMaxPorRodada,
	)

	mux := http.NewServeMux()
	checker := health.NewChecker(sqlDB, redisClient)

	// HTTP expõe API, health check e métricas que o Prometheus coleta.
	api := httpapi.New(servico, logger.L())
	api.Register(mux)
	mux.HandleFunc("/readyz", checker.ReadyHandler())
	mux.Handle("/metrics", promhttp.Handler())

	logger.Info("api ouvindo", "addr", cfg.HTTPAddress)
	if err := http.ListenAndServe(cfg.HTTPAddress, mux); err != nil {
		logger.Fatal("erro no servidor", "err", err)
	}
}
