package sorteio

import (
	"context"
	"errors"

	"github.com/wewei/ems-lottery/internal/domain"
)

// Estoque calcula quantas unidades de um prêmio ainda não foram entregues.
// Nenhum contador mutável é mantido: o valor é sempre derivado do histórico de
// registros, então apagar um registro devolve as unidades automaticamente.
type Estoque struct {
	premios   domain.PremioRepository
	registros domain.RegistroSorteioRepository
}

func NewEstoque(premios domain.PremioRepository, registros domain.RegistroSorteioRepository) *Estoque {
	return &Estoque{premios: premios, registros: registros}
}

// Restante devolve o saldo para exibição, nunca negativo. Um saldo bruto
// negativo aparece quando a quantidade total do prêmio foi reduzida depois de
// rodadas já gravadas; para o chamador isso vale como zero.
func (e *Estoque) Restante(ctx context.Context, id domain.PremioID) (int, error) {
	bruto, err := e.RestanteBruto(ctx, id)
	if err != nil {
		return 0, err
	}
	if bruto < 0 {
		return 0, nil
	}
	return bruto, nil
}

// RestanteBruto devolve o saldo sem clamp, usado na validação para enxergar
// sobre-premiação.
func (e *Estoque) RestanteBruto(ctx context.Context, id domain.PremioID) (int, error) {
	premio, err := e.premios.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return 0, ErrPremioNaoEncontrado
		}
		return 0, err
	}

	premiado, err := e.registros.TotalPremiado(ctx, id)
	if err != nil {
		return 0, err
	}

	return premio.QuantidadeTotal - int(premiado), nil
}
