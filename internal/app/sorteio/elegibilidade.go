package sorteio

import (
	"context"
	"errors"
	"sort"

	"github.com/wewei/ems-lottery/internal/domain"
)

// Elegibilidade decide quem pode participar da próxima rodada de um prêmio:
// parte dos usuários ativos e remove quem já ganhou, por prêmio ou globalmente
// conforme a configuração de múltiplas vitórias.
type Elegibilidade struct {
	premios   domain.PremioRepository
	usuarios  domain.UsuarioRepository
	registros domain.RegistroSorteioRepository
	config    domain.ConfiguracaoRepository
}

func NewElegibilidade(
	premios domain.PremioRepository,
	usuarios domain.UsuarioRepository,
	registros domain.RegistroSorteioRepository,
	config domain.ConfiguracaoRepository,
) *Elegibilidade {
	return &Elegibilidade{
		premios:   premios,
		usuarios:  usuarios,
		registros: registros,
		config:    config,
	}
}

// Candidatos lista o pool elegível ordenado por alias. A exclusão usa o alias
// gravado nos registros, não id interno, porque é isso que a foto do ganhador
// carrega.
func (e *Elegibilidade) Candidatos(ctx context.Context, premioID domain.PremioID) ([]domain.Candidato, error) {
	if _, err := e.premios.FindByID(ctx, premioID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrPremioNaoEncontrado
		}
		return nil, err
	}

	ativos, err := e.usuarios.ListAtivos(ctx)
	if err != nil {
		return nil, err
	}

	// Obter cria o documento default quando não existe; a política nunca falha
	// só porque a configuração ainda não foi gravada.
	cfg, err := e.config.Obter(ctx)
	if err != nil {
		return nil, err
	}

	var premiados []string
	if cfg.PermitirMultiplasVitorias {
		premiados, err = e.registros.AliasesPremiadosPorPremio(ctx, premioID)
	} else {
		premiados, err = e.registros.AliasesPremiados(ctx)
	}
	if err != nil {
		return nil, err
	}

	excluidos := make(map[string]struct{}, len(premiados))
	for _, alias := range premiados {
		excluidos[alias] = struct{}{}
	}

	candidatos := make([]domain.Candidato, 0, len(ativos))
	for _, u := range ativos {
		if _, ganhou := excluidos[u.Alias]; ganhou {
			continue
		}
		candidatos = append(candidatos, domain.Candidato{Alias: u.Alias, Apelido: u.Apelido})
	}

	sort.Slice(candidatos, func(i, j int) bool { return candidatos[i].Alias < candidatos[j].Alias })
	return candidatos, nil
}
