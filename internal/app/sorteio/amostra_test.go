package sorteio

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/wewei/ems-lottery/internal/domain"
)

func TestAmostrarValidaEntrada(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	casos := []struct {
		nome string
		n, k int
	}{
		{"pool vazio", 0, 1},
		{"k zero", 10, 0},
		{"k negativo", 10, -1},
		{"k maior que n", 3, 4},
	}
	for _, caso := range casos {
		if _, err := Amostrar(rng, caso.n, caso.k); !errors.Is(err, ErrAmostraInvalida) {
			t.Fatalf("%s deveria falhar com ErrAmostraInvalida, veio: %v", caso.nome, err)
		}
	}
}

func TestAmostrarSemRepeticao(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	// Cobre os dois caminhos: Fisher-Yates parcial (n <= 3k) e rejeição (n > 3k).
	casos := []struct{ n, k int }{
		{10, 10},
		{10, 4},
		{1000, 3},
	}
	for _, caso := range casos {
		for rodada := 0; rodada < 100; rodada++ {
			indices, err := Amostrar(rng, caso.n, caso.k)
			if err != nil {
				t.Fatalf("amostra n=%d k=%d falhou: %v", caso.n, caso.k, err)
			}
			if len(indices) != caso.k {
				t.Fatalf("esperava %d indices, veio %d", caso.k, len(indices))
			}
			vistos := make(map[int]struct{}, caso.k)
			for _, idx := range indices {
				if idx < 0 || idx >= caso.n {
					t.Fatalf("indice %d fora de [0, %d)", idx, caso.n)
				}
				if _, repetido := vistos[idx]; repetido {
					t.Fatalf("indice %d repetido na amostra n=%d k=%d", idx, caso.n, caso.k)
				}
				vistos[idx] = struct{}{}
			}
		}
	}
}

func TestAmostrarDistribuicaoUniforme(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	const (
		n       = 10
		k       = 3
		rodadas = 20000
	)

	contagens := make([]int, n)
	for rodada := 0; rodada < rodadas; rodada++ {
		indices, err := Amostrar(rng, n, k)
		if err != nil {
			t.Fatalf("amostra falhou: %v", err)
		}
		for _, idx := range indices {
			contagens[idx]++
		}
	}

	// Cada índice aparece com probabilidade k/n; com 20000 rodadas a contagem
	// esperada é 6000 e uma folga de 10% cobre o ruído estatístico com sobra.
	esperado := rodadas * k / n
	folga := esperado / 10
	for idx, contagem := range contagens {
		if contagem < esperado-folga || contagem > esperado+folga {
			t.Fatalf("indice %d sorteado %d vezes, esperado %d±%d", idx, contagem, esperado, folga)
		}
	}
}

func TestSelecionarCandidatos(t *testing.T) {
	rng := rand.New(rand.NewSource(3))

	pool := []domain.Candidato{
		{Alias: "ana", Apelido: "Ana"},
		{Alias: "bia", Apelido: "Bia"},
		{Alias: "caio", Apelido: "Caio"},
		{Alias: "duda", Apelido: "Duda"},
	}

	selecionados, err := SelecionarCandidatos(rng, pool, 2)
	if err != nil {
		t.Fatalf("falha ao selecionar candidatos: %v", err)
	}
	if len(selecionados) != 2 {
		t.Fatalf("esperava 2 selecionados, veio %d", len(selecionados))
	}
	if selecionados[0].Alias == selecionados[1].Alias {
		t.Fatalf("selecionados repetidos: %+v", selecionados)
	}

	if _, err := SelecionarCandidatos(rng, nil, 1); !errors.Is(err, ErrAmostraInvalida) {
		t.Fatalf("pool vazio deveria falhar com ErrAmostraInvalida, veio: %v", err)
	}
}
