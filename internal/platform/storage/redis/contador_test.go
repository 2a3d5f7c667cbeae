package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wewei/ems-lottery/internal/app/sorteio"
)

func setupRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})

	return client, mr
}

func TestContador_IncrementarEObter_QuandoChaveNova_DeveRetornarValorIncrementado(t *testing.T) {
	client, _ := setupRedis(t)
	repo := NewContador(client, "contador")

	ctx := context.Background()
	chave := sorteio.ChaveSorteios()

	// Act
	resultado, err := repo.Incrementar(ctx, chave, 1)
	require.NoError(t, err)

	valor, err := repo.Obter(ctx, chave)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, int64(1), resultado)
	assert.Equal(t, int64(1), valor)
}

func TestContador_Incrementar_QuandoMultiplasChamadas_DeveAcumular(t *testing.T) {
	client, _ := setupRedis(t)
	repo := NewContador(client, "contador")

	ctx := context.Background()
	chave := sorteio.ChaveSorteiosPremio("01HXXXXXXXXXXXXXXXXXXXXX")

	// Act: Incrementar 3 vezes
	resultado1, err := repo.Incrementar(ctx, chave, 1)
	require.NoError(t, err)

	resultado2, err := repo.Incrementar(ctx, chave, 2)
	require.NoError(t, err)

	resultado3, err := repo.Incrementar(ctx, chave, 1)
	require.NoError(t, err)

	valorFinal, err := repo.Obter(ctx, chave)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, int64(1), resultado1)
	assert.Equal(t, int64(3), resultado2)
	assert.Equal(t, int64(4), resultado3)
	assert.Equal(t, int64(4), valorFinal)
}

func TestContador_Obter_QuandoChaveNaoExiste_DeveRetornarZero(t *testing.T) {
	client, _ := setupRedis(t)
	repo := NewContador(client, "contador")

	ctx := context.Background()

	valor, err := repo.Obter(ctx, "inexistente")

	assert.NoError(t, err)
	assert.Equal(t, int64(0), valor)
}

func TestContador_ObterTodos_DeveRetornarMapaComZerosParaAusentes(t *testing.T) {
	client, _ := setupRedis(t)
	repo := NewContador(client, "contador")

	ctx := context.Background()

	_, err := repo.Incrementar(ctx, sorteio.ChaveAtivacoes(), 7)
	require.NoError(t, err)

	valores, err := repo.ObterTodos(ctx, []string{sorteio.ChaveAtivacoes(), sorteio.ChaveSorteios()})

	assert.NoError(t, err)
	assert.Equal(t, int64(7), valores[sorteio.ChaveAtivacoes()])
	assert.Equal(t, int64(0), valores[sorteio.ChaveSorteios()])
}
