package sorteio

import (
	"fmt"

	"github.com/wewei/ems-lottery/internal/domain"
)

func ChaveAtivacoes() string {
	return "ativacoes:total"
}

func ChaveSorteios() string {
	return "sorteios:total"
}

func ChaveSorteiosPremio(id domain.PremioID) string {
	return fmt.Sprintf("sorteios:premio:%s", id)
}
