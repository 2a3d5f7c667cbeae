package sorteio

import (
	"fmt"
	"math/rand"

	"github.com/wewei/ems-lottery/internal/domain"
)

// Amostrar devolve k índices distintos em [0, n), com probabilidade uniforme
// entre todos os subconjuntos de tamanho k. Quando o pool é bem maior que a
// amostra (n > 3k) a rejeição é mais barata que embaralhar o pool inteiro; nos
// demais casos um Fisher-Yates parcial garante término sem laço aberto.
func Amostrar(rng *rand.Rand, n, k int) ([]int, error) {
	if n <= 0 || k <= 0 || k > n {
		return nil, fmt.Errorf("%w: k=%d, n=%d", ErrAmostraInvalida, k, n)
	}

	if n > 3*k {
		escolhidos := make(map[int]struct{}, k)
		resultado := make([]int, 0, k)
		for len(resultado) < k {
			idx := rng.Intn(n)
			if _, repetido := escolhidos[idx]; repetido {
				continue
			}
			escolhidos[idx] = struct{}{}
			resultado = append(resultado, idx)
		}
		return resultado, nil
	}

	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	for i := 0; i < k; i++ {
		j := i + rng.Intn(n-i)
		indices[i], indices[j] = indices[j], indices[i]
	}
	return indices[:k], nil
}

// SelecionarCandidatos projeta Amostrar sobre o pool elegível, preservando a
// ordem em que os índices foram sorteados.
func SelecionarCandidatos(rng *rand.Rand, pool []domain.Candidato, k int) ([]domain.Candidato, error) {
	indices, err := Amostrar(rng, len(pool), k)
	if err != nil {
		return nil, err
	}

	selecionados := make([]domain.Candidato, len(indices))
	for i, idx := range indices {
		selecionados[i] = pool[idx]
	}
	return selecionados, nil
}
