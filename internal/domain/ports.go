package domain

import (
	"context"
	"time"
)

type PremioRepository interface {
	Create(ctx context.Context, p Premio) error
	Update(ctx context.Context, p Premio) error
	FindByID(ctx context.Context, id PremioID) (Premio, error)
	Listar(ctx context.Context) ([]Premio, error)
}

type UsuarioRepository interface {
	Create(ctx context.Context, u Usuario) error
	Update(ctx context.Context, u Usuario) error
	FindByAlias(ctx context.Context, alias string) (Usuario, error)
	FindByNavegador(ctx context.Context, navegadorID string) (Usuario, error)
	ListAtivos(ctx context.Context) ([]Usuario, error)
}

// SorteioTx é a visão do repositório dentro da seção crítica de um sorteio: o
// prêmio lido aqui fica travado até o commit, serializando rodadas concorrentes
// do mesmo prêmio.
type SorteioTx interface {
	PremioParaAtualizar(ctx context.Context, id PremioID) (Premio, error)
	TotalPremiado(ctx context.Context, id PremioID) (int64, error)
	AliasesPremiados(ctx context.Context) ([]string, error)
	AliasesPremiadosPorPremio(ctx context.Context, id PremioID) ([]string, error)
	Gravar(ctx context.Context, registro RegistroSorteio) error
}

type RegistroSorteioRepository interface {
	EmTransacao(ctx context.Context, fn func(tx SorteioTx) error) error
	TotalPremiado(ctx context.Context, id PremioID) (int64, error)
	ListByPremio(ctx context.Context, id PremioID) ([]RegistroSorteio, error)
	ListByGanhador(ctx context.Context, alias string) ([]RegistroSorteio, error)
	ListPaginado(ctx context.Context, pagina, limite int) ([]RegistroSorteio, int64, error)
	AliasesPremiados(ctx context.Context) ([]string, error)
	AliasesPremiadosPorPremio(ctx context.Context, id PremioID) ([]string, error)
	Delete(ctx context.Context, id RegistroID) error
}

// ConfiguracaoRepository encapsula o documento único de opções; Obter cria o
// registro default quando ele ainda não existe.
type ConfiguracaoRepository interface {
	Obter(ctx context.Context) (Configuracao, error)
	Salvar(ctx context.Context, c Configuracao) error
}

type Contador interface {
	Incrementar(ctx context.Context, chave string, delta int64) (int64, error)
	Obter(ctx context.Context, chave string) (int64, error)
	ObterTodos(ctx context.Context, chaves []string) (map[string]int64, error)
}

type Antifraude interface {
	Validar(ctx context.Context, ativacao Ativacao) error
}

type Clock interface {
	Agora() time.Time
}

type SorteioService interface {
	Sortear(ctx context.Context, premioID PremioID, ganhadores []Candidato) (ResultadoSorteio, error)
	SortearAleatorio(ctx context.Context, premioID PremioID, quantidade int) (ResultadoSorteio, error)
	Restante(ctx context.Context, premioID PremioID) (int, error)
	Candidatos(ctx context.Context, premioID PremioID) ([]Candidato, error)
	ListarPremios(ctx context.Context) ([]Premio, error)
	AtualizarPremio(ctx context.Context, premio Premio) error
	Registros(ctx context.Context, pagina, limite int) (PaginaRegistros, error)
	RegistrosPorGanhador(ctx context.Context, alias string) ([]RegistroSorteio, error)
	RegistrosPorPremio(ctx context.Context, premioID PremioID) ([]RegistroSorteio, error)
	RemoverRegistro(ctx context.Context, id RegistroID) error
	ObterConfiguracao(ctx context.Context) (Configuracao, error)
	AtualizarConfiguracao(ctx context.Context, permitirMultiplasVitorias bool) (Configuracao, error)
	Ativar(ctx context.Context, ativacao Ativacao) (Usuario, error)
	AtivarPeloAdmin(ctx context.Context, alias string) (Usuario, error)
	Desativar(ctx context.Context, alias string) error
	AtivadoPorNavegador(ctx context.Context, navegadorID string) (Usuario, error)
	Estatisticas(ctx context.Context) (Estatisticas, error)
}
