// Pacote sorteio implementa o núcleo do sorteio: saldo derivado de estoque,
// política de elegibilidade e a gravação transacional de cada rodada.
package sorteio

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/wewei/ems-lottery/internal/domain"
	"github.com/wewei/ems-lottery/internal/platform/ids"
)

var (
	ErrPremioNaoEncontrado   = errors.New("premio nao encontrado")
	ErrUsuarioNaoEncontrado  = errors.New("usuario nao encontrado")
	ErrRegistroNaoEncontrado = errors.New("registro nao encontrado")
	ErrQuantidadeInvalida    = errors.New("quantidade de ganhadores invalida")
	ErrEstoqueInsuficiente   = errors.New("estoque insuficiente")
	ErrGanhadorInelegivel    = errors.New("ganhador inelegivel")
	ErrAmostraInvalida       = errors.New("amostra invalida")
	ErrAtivacaoInvalida      = errors.New("ativacao invalida")
	ErrNavegadorVinculado    = errors.New("navegador ja vinculado a outro participante")
)

// Service concentra as regras do sorteio e delega persistência aos
// repositórios injetados.
type Service struct {
	premios    domain.PremioRepository
	usuarios   domain.UsuarioRepository
	registros  domain.RegistroSorteioRepository
	config     domain.ConfiguracaoRepository
	contador   domain.Contador
	antifraude domain.Antifraude
	clock      domain.Clock
	ids        *ids.Generator

	estoque       *Estoque
	elegibilidade *Elegibilidade

	maxPorRodada int

	rngMu sync.Mutex
	rng   *rand.Rand
}

func NewService(
	premios domain.PremioRepository,
	usuarios domain.UsuarioRepository,
	registros domain.RegistroSorteioRepository,
	config domain.ConfiguracaoRepository,
	contador domain.Contador,
	antifraude domain.Antifraude,
	clock domain.Clock,
	idsGen *ids.Generator,
	maxPorRodada int,
) *Service {
	if idsGen == nil {
		idsGen = ids.DefaultGenerator()
	}
	if maxPorRodada <= 0 {
		maxPorRodada = 20
	}
	return &Service{
		premios:       premios,
		usuarios:      usuarios,
		registros:     registros,
		config:        config,
		contador:      contador,
		antifraude:    antifraude,
		clock:         clock,
		ids:           idsGen,
		estoque:       NewEstoque(premios, registros),
		elegibilidade: NewElegibilidade(premios, usuarios, registros, config),
		maxPorRodada:  maxPorRodada,
		rng:           rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Restante expõe o saldo derivado do prêmio, já com clamp para exibição.
func (s *Service) Restante(ctx context.Context, premioID domain.PremioID) (int, error) {
	return s.estoque.Restante(ctx, premioID)
}

// Candidatos expõe o pool elegível do prêmio segundo a configuração vigente.
func (s *Service) Candidatos(ctx context.Context, premioID domain.PremioID) ([]domain.Candidato, error) {
	return s.elegibilidade.Candidatos(ctx, premioID)
}

func (s *Service) ListarPremios(ctx context.Context) ([]domain.Premio, error) {
	return s.premios.Listar(ctx)
}

// AtualizarPremio aceita a edição somente se a nova quantidade total cobrir o
// que já foi entregue; caso contrário o saldo derivado ficaria negativo.
func (s *Service) AtualizarPremio(ctx context.Context, premio domain.Premio) error {
	if premio.QuantidadeTotal < 0 {
		return fmt.Errorf("%w: quantidade total negativa", ErrQuantidadeInvalida)
	}
	if premio.QuantidadePorRodada < 1 || premio.QuantidadePorRodada > s.maxPorRodada {
		return fmt.Errorf("%w: quantidade por rodada fora de 1..%d", ErrQuantidadeInvalida, s.maxPorRodada)
	}

	if _, err := s.premios.FindByID(ctx, premio.ID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrPremioNaoEncontrado
		}
		return err
	}

	premiado, err := s.registros.TotalPremiado(ctx, premio.ID)
	if err != nil {
		return err
	}
	if int64(premio.QuantidadeTotal) < premiado {
		return fmt.Errorf("%w: total %d menor que %d ja premiados", ErrQuantidadeInvalida, premio.QuantidadeTotal, premiado)
	}

	return s.premios.Update(ctx, premio)
}

// Sortear valida a lista proposta e grava a rodada. A elegibilidade é checada
// antes da transação; estoque e limites de quantidade são revalidados dentro
// dela, com o prêmio travado, para que duas rodadas simultâneas do mesmo prêmio
// nunca entreguem mais que o total.
func (s *Service) Sortear(ctx context.Context, premioID domain.PremioID, ganhadores []domain.Candidato) (domain.ResultadoSorteio, error) {
	if len(ganhadores) == 0 {
		return domain.ResultadoSorteio{}, fmt.Errorf("%w: lista vazia", ErrQuantidadeInvalida)
	}

	vistos := make(map[string]struct{}, len(ganhadores))
	for _, g := range ganhadores {
		if g.Alias == "" {
			return domain.ResultadoSorteio{}, fmt.Errorf("%w: alias vazio", ErrQuantidadeInvalida)
		}
		if _, repetido := vistos[g.Alias]; repetido {
			return domain.ResultadoSorteio{}, fmt.Errorf("%w: alias %s repetido na rodada", ErrQuantidadeInvalida, g.Alias)
		}
		vistos[g.Alias] = struct{}{}
	}

	// A seleção do cliente é apenas sugestão: todo alias proposto precisa estar
	// no pool elegível atual, senão um cliente adulterado contornaria a política.
	elegiveis, err := s.elegibilidade.Candidatos(ctx, premioID)
	if err != nil {
		return domain.ResultadoSorteio{}, err
	}
	pool := make(map[string]struct{}, len(elegiveis))
	for _, c := range elegiveis {
		pool[c.Alias] = struct{}{}
	}
	for _, g := range ganhadores {
		if _, ok := pool[g.Alias]; !ok {
			return domain.ResultadoSorteio{}, fmt.Errorf("%w: %s", ErrGanhadorInelegivel, g.Alias)
		}
	}

	var resultado domain.ResultadoSorteio
	err = s.registros.EmTransacao(ctx, func(tx domain.SorteioTx) error {
		premio, err := tx.PremioParaAtualizar(ctx, premioID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return ErrPremioNaoEncontrado
			}
			return err
		}

		if len(ganhadores) > premio.QuantidadePorRodada {
			return fmt.Errorf("%w: maximo de %d por rodada", ErrQuantidadeInvalida, premio.QuantidadePorRodada)
		}

		premiado, err := tx.TotalPremiado(ctx, premioID)
		if err != nil {
			return err
		}
		restante := premio.QuantidadeTotal - int(premiado)
		if restante < len(ganhadores) {
			if restante < 0 {
				restante = 0
			}
			return fmt.Errorf("%w: restam %d, pedido %d", ErrEstoqueInsuficiente, restante, len(ganhadores))
		}

		// A elegibilidade é reavaliada com o prêmio travado: uma rodada
		// gravada entre a checagem inicial e o lock tiraria um alias do pool,
		// e sem esta releitura ele ganharia duas vezes.
		cfg, err := s.config.Obter(ctx)
		if err != nil {
			return err
		}
		var premiados []string
		if cfg.PermitirMultiplasVitorias {
			premiados, err = tx.AliasesPremiadosPorPremio(ctx, premioID)
		} else {
			premiados, err = tx.AliasesPremiados(ctx)
		}
		if err != nil {
			return err
		}
		for _, alias := range premiados {
			if _, proposto := vistos[alias]; proposto {
				return fmt.Errorf("%w: %s", ErrGanhadorInelegivel, alias)
			}
		}

		registro := domain.RegistroSorteio{
			ID:         domain.RegistroID(s.ids.New()),
			SorteadoEm: s.clock.Agora(),
			PremioID:   premio.ID,
			PremioNome: premio.Nome,
			Quantidade: len(ganhadores),
			Ganhadores: make([]domain.Ganhador, len(ganhadores)),
		}
		for i, g := range ganhadores {
			registro.Ganhadores[i] = domain.Ganhador{
				RegistroID: registro.ID,
				Posicao:    i + 1,
				Alias:      g.Alias,
				Apelido:    g.Apelido,
			}
		}

		if err := tx.Gravar(ctx, registro); err != nil {
			return err
		}

		resultado = domain.ResultadoSorteio{
			Ganhadores: ganhadores,
			Restante:   restante - len(ganhadores),
		}
		return nil
	})
	if err != nil {
		return domain.ResultadoSorteio{}, err
	}

	if s.contador != nil {
		// Contadores são telemetria do painel; falha aqui não desfaz a rodada.
		_, _ = s.contador.Incrementar(ctx, ChaveSorteios(), 1)
		_, _ = s.contador.Incrementar(ctx, ChaveSorteiosPremio(premioID), 1)
	}

	return resultado, nil
}

// SortearAleatorio seleciona os ganhadores no servidor com a mesma função de
// amostragem usada por qualquer chamador e grava pelo mesmo caminho de Sortear.
func (s *Service) SortearAleatorio(ctx context.Context, premioID domain.PremioID, quantidade int) (domain.ResultadoSorteio, error) {
	if quantidade < 1 || quantidade > s.maxPorRodada {
		return domain.ResultadoSorteio{}, fmt.Errorf("%w: quantidade fora de 1..%d", ErrQuantidadeInvalida, s.maxPorRodada)
	}

	elegiveis, err := s.elegibilidade.Candidatos(ctx, premioID)
	if err != nil {
		return domain.ResultadoSorteio{}, err
	}
	if quantidade > len(elegiveis) {
		return domain.ResultadoSorteio{}, fmt.Errorf("%w: pool elegivel com %d participantes", ErrEstoqueInsuficiente, len(elegiveis))
	}

	s.rngMu.Lock()
	ganhadores, err := SelecionarCandidatos(s.rng, elegiveis, quantidade)
	s.rngMu.Unlock()
	if err != nil {
		return domain.ResultadoSorteio{}, err
	}

	return s.Sortear(ctx, premioID, ganhadores)
}

func (s *Service) Registros(ctx context.Context, pagina, limite int) (domain.PaginaRegistros, error) {
	if pagina < 1 {
		pagina = 1
	}
	if limite < 1 {
		limite = 10
	}

	registros, total, err := s.registros.ListPaginado(ctx, pagina, limite)
	if err != nil {
		return domain.PaginaRegistros{}, err
	}

	paginas := total / int64(limite)
	if total%int64(limite) != 0 {
		paginas++
	}

	return domain.PaginaRegistros{
		Registros: registros,
		Total:     total,
		Pagina:    pagina,
		Paginas:   paginas,
	}, nil
}

func (s *Service) RegistrosPorGanhador(ctx context.Context, alias string) ([]domain.RegistroSorteio, error) {
	return s.registros.ListByGanhador(ctx, alias)
}

func (s *Service) RegistrosPorPremio(ctx context.Context, premioID domain.PremioID) ([]domain.RegistroSorteio, error) {
	if _, err := s.premios.FindByID(ctx, premioID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrPremioNaoEncontrado
		}
		return nil, err
	}
	return s.registros.ListByPremio(ctx, premioID)
}

// RemoverRegistro é o "desfazer" administrativo: como o saldo é derivado do
// histórico, apagar o registro devolve as unidades para rodadas futuras.
func (s *Service) RemoverRegistro(ctx context.Context, id domain.RegistroID) error {
	if err := s.registros.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrRegistroNaoEncontrado
		}
		return err
	}
	return nil
}

func (s *Service) ObterConfiguracao(ctx context.Context) (domain.Configuracao, error) {
	return s.config.Obter(ctx)
}

func (s *Service) AtualizarConfiguracao(ctx context.Context, permitirMultiplasVitorias bool) (domain.Configuracao, error) {
	cfg, err := s.config.Obter(ctx)
	if err != nil {
		return domain.Configuracao{}, err
	}
	cfg.PermitirMultiplasVitorias = permitirMultiplasVitorias
	if err := s.config.Salvar(ctx, cfg); err != nil {
		return domain.Configuracao{}, err
	}
	return cfg, nil
}

// Ativar vincula o participante ao navegador que abriu o link público. Um
// navegador sustenta no máximo um vínculo por vez.
func (s *Service) Ativar(ctx context.Context, ativacao domain.Ativacao) (domain.Usuario, error) {
	if ativacao.Alias == "" || ativacao.NavegadorID == "" {
		return domain.Usuario{}, fmt.Errorf("%w: alias e navegador obrigatorios", ErrAtivacaoInvalida)
	}

	if s.antifraude != nil {
		if err := s.antifraude.Validar(ctx, ativacao); err != nil {
			return domain.Usuario{}, err
		}
	}

	usuario, err := s.usuarios.FindByAlias(ctx, ativacao.Alias)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Usuario{}, ErrUsuarioNaoEncontrado
		}
		return domain.Usuario{}, err
	}

	vinculado, err := s.usuarios.FindByNavegador(ctx, ativacao.NavegadorID)
	switch {
	case err == nil && vinculado.Alias != usuario.Alias:
		return domain.Usuario{}, ErrNavegadorVinculado
	case err != nil && !errors.Is(err, domain.ErrNotFound):
		return domain.Usuario{}, err
	}

	agora := s.clock.Agora()
	usuario.Ativo = true
	usuario.NavegadorID = ativacao.NavegadorID
	usuario.AtivadoEm = &agora

	if err := s.usuarios.Update(ctx, usuario); err != nil {
		return domain.Usuario{}, err
	}

	if s.contador != nil {
		_, _ = s.contador.Incrementar(ctx, ChaveAtivacoes(), 1)
	}

	return usuario, nil
}

// AtivarPeloAdmin dispensa o vínculo real de navegador e grava o marcador
// sintético, espelhando a ativação feita pela tela administrativa.
func (s *Service) AtivarPeloAdmin(ctx context.Context, alias string) (domain.Usuario, error) {
	usuario, err := s.usuarios.FindByAlias(ctx, alias)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Usuario{}, ErrUsuarioNaoEncontrado
		}
		return domain.Usuario{}, err
	}

	agora := s.clock.Agora()
	usuario.Ativo = true
	usuario.NavegadorID = domain.NavegadorAdmin
	usuario.AtivadoEm = &agora

	if err := s.usuarios.Update(ctx, usuario); err != nil {
		return domain.Usuario{}, err
	}
	return usuario, nil
}

func (s *Service) Desativar(ctx context.Context, alias string) error {
	usuario, err := s.usuarios.FindByAlias(ctx, alias)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrUsuarioNaoEncontrado
		}
		return err
	}

	usuario.Ativo = false
	usuario.NavegadorID = ""
	usuario.AtivadoEm = nil

	return s.usuarios.Update(ctx, usuario)
}

func (s *Service) AtivadoPorNavegador(ctx context.Context, navegadorID string) (domain.Usuario, error) {
	if navegadorID == "" {
		return domain.Usuario{}, fmt.Errorf("%w: navegador obrigatorio", ErrAtivacaoInvalida)
	}
	usuario, err := s.usuarios.FindByNavegador(ctx, navegadorID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Usuario{}, ErrUsuarioNaoEncontrado
		}
		return domain.Usuario{}, err
	}
	return usuario, nil
}

func (s *Service) Estatisticas(ctx context.Context) (domain.Estatisticas, error) {
	if s.contador == nil {
		return domain.Estatisticas{}, nil
	}

	valores, err := s.contador.ObterTodos(ctx, []string{ChaveAtivacoes(), ChaveSorteios()})
	if err != nil {
		return domain.Estatisticas{}, err
	}

	return domain.Estatisticas{
		Ativacoes: valores[ChaveAtivacoes()],
		Sorteios:  valores[ChaveSorteios()],
	}, nil
}

var _ domain.SorteioService = (*Service)(nil)
