package domain

import (
	"time"
)

type (
	PremioID   string
	RegistroID string
)

// NavegadorAdmin é o marcador sintético usado quando um administrador ativa um
// participante sem vínculo real com navegador.
const NavegadorAdmin = "admin"

type Premio struct {
	ID                  PremioID  `gorm:"column:id;type:char(26);primaryKey"`
	Nome                string    `gorm:"column:nome;type:text;not null"`
	ImagemURL           string    `gorm:"column:imagem_url;type:text"`
	QuantidadeTotal     int       `gorm:"column:quantidade_total;not null"`
	QuantidadePorRodada int       `gorm:"column:quantidade_por_rodada;not null;default:1"`
	CriadoEm            time.Time `gorm:"column:criado_em;autoCreateTime"`
	AtualizadoEm        time.Time `gorm:"column:atualizado_em;autoUpdateTime"`
}

type Usuario struct {
	Alias        string     `gorm:"column:alias;type:text;primaryKey"`
	Apelido      string     `gorm:"column:apelido;type:text;not null"`
	Ativo        bool       `gorm:"column:ativo;not null;default:false"`
	NavegadorID  string     `gorm:"column:navegador_id;type:text;index"`
	AtivadoEm    *time.Time `gorm:"column:ativado_em"`
	CriadoEm     time.Time  `gorm:"column:criado_em;autoCreateTime"`
	AtualizadoEm time.Time  `gorm:"column:atualizado_em;autoUpdateTime"`
}

// RegistroSorteio guarda o resultado de uma rodada. Nome do prêmio e apelido dos
// ganhadores são desnormalizados de propósito: o histórico não muda quando o
// prêmio é renomeado ou o participante troca de apelido.
type RegistroSorteio struct {
	ID         RegistroID `gorm:"column:id;type:char(26);primaryKey"`
	SorteadoEm time.Time  `gorm:"column:sorteado_em;not null;index"`
	PremioID   PremioID   `gorm:"column:premio_id;type:char(26);not null;index"`
	PremioNome string     `gorm:"column:premio_nome;type:text;not null"`
	Quantidade int        `gorm:"column:quantidade;not null"`
	Ganhadores []Ganhador `gorm:"foreignKey:RegistroID;constraint:OnDelete:CASCADE"`
}

// Ganhador é a foto de um participante no momento do sorteio, identificado pelo
// alias (chave de negócio) e não por id interno.
type Ganhador struct {
	RegistroID RegistroID `gorm:"column:registro_id;type:char(26);primaryKey"`
	Posicao    int        `gorm:"column:posicao;primaryKey;autoIncrement:false"`
	Alias      string     `gorm:"column:alias;type:text;not null;index"`
	Apelido    string     `gorm:"column:apelido;type:text;not null"`
}

// Configuracao é o documento único de opções globais do sorteio.
type Configuracao struct {
	ID                        int  `gorm:"column:id;primaryKey"`
	PermitirMultiplasVitorias bool `gorm:"column:permitir_multiplas_vitorias;not null;default:false"`
}

// Candidato é a visão mínima de um participante elegível a uma rodada.
type Candidato struct {
	Alias   string `json:"alias"`
	Apelido string `json:"apelido"`
}

// Ativacao descreve uma tentativa de ativação vinda do link público; alimenta o
// antifraude antes de tocar no diretório de usuários.
type Ativacao struct {
	Alias       string
	NavegadorID string
	OrigemIP    string
	UserAgent   string
}

// ResultadoSorteio é a resposta de uma rodada gravada: os ganhadores na ordem
// sorteada e o saldo recalculado depois do commit.
type ResultadoSorteio struct {
	Ganhadores []Candidato `json:"ganhadores"`
	Restante   int         `json:"restante"`
}

// PaginaRegistros agrupa a listagem do histórico com os metadados de paginação.
type PaginaRegistros struct {
	Registros []RegistroSorteio `json:"registros"`
	Total     int64             `json:"total"`
	Pagina    int               `json:"pagina"`
	Paginas   int64             `json:"paginas"`
}

// Estatisticas expõe contadores de uso para o painel; são telemetria, nunca
// entrada de validação.
type Estatisticas struct {
	Ativacoes int64 `json:"ativacoes"`
	Sorteios  int64 `json:"sorteios"`
}

func (Premio) TableName() string { return "premios" }

func (Usuario) TableName() string { return "usuarios" }

func (RegistroSorteio) TableName() string { return "registros_sorteio" }

func (Ganhador) TableName() string { return "ganhadores" }

func (Configuracao) TableName() string { return "configuracoes" }
