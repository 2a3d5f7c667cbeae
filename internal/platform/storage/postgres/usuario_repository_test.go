package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wewei/ems-lottery/internal/domain"
)

func TestUsuarioRepository_FindByAlias_QuandoExiste_DeveRetornarUsuario(t *testing.T) {
	db := setupPostgres(t)
	repo := NewUsuarioRepository(db)

	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, domain.Usuario{Alias: "ana", Apelido: "Ana"}))

	encontrado, err := repo.FindByAlias(ctx, "ana")

	assert.NoError(t, err)
	assert.Equal(t, "ana", encontrado.Alias)
	assert.Equal(t, "Ana", encontrado.Apelido)
	assert.False(t, encontrado.Ativo)
}

func TestUsuarioRepository_FindByAlias_QuandoNaoExiste_DeveRetornarErroNotFound(t *testing.T) {
	db := setupPostgres(t)
	repo := NewUsuarioRepository(db)

	_, err := repo.FindByAlias(context.Background(), "fantasma")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUsuarioRepository_Update_QuandoDesativa_DeveZerarVinculo(t *testing.T) {
	db := setupPostgres(t)
	repo := NewUsuarioRepository(db)

	ctx := context.Background()
	ativadoEm := time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC)
	usuario := domain.Usuario{
		Alias:       "ana",
		Apelido:     "Ana",
		Ativo:       true,
		NavegadorID: "nav-1",
		AtivadoEm:   &ativadoEm,
	}
	require.NoError(t, repo.Create(ctx, usuario))

	usuario.Ativo = false
	usuario.NavegadorID = ""
	usuario.AtivadoEm = nil
	require.NoError(t, repo.Update(ctx, usuario))

	// Updates por mapa: os campos zerados precisam realmente voltar a zero.
	atualizado, err := repo.FindByAlias(ctx, "ana")
	require.NoError(t, err)
	assert.False(t, atualizado.Ativo)
	assert.Empty(t, atualizado.NavegadorID)
	assert.Nil(t, atualizado.AtivadoEm)
}

func TestUsuarioRepository_FindByNavegador_QuandoVinculado_DeveRetornarUsuario(t *testing.T) {
	db := setupPostgres(t)
	repo := NewUsuarioRepository(db)

	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, domain.Usuario{Alias: "ana", Apelido: "Ana", Ativo: true, NavegadorID: "nav-1"}))
	require.NoError(t, repo.Create(ctx, domain.Usuario{Alias: "bia", Apelido: "Bia"}))

	encontrado, err := repo.FindByNavegador(ctx, "nav-1")

	assert.NoError(t, err)
	assert.Equal(t, "ana", encontrado.Alias)
}

func TestUsuarioRepository_FindByNavegador_QuandoNavegadorVazio_DeveRetornarErroNotFound(t *testing.T) {
	db := setupPostgres(t)
	repo := NewUsuarioRepository(db)

	ctx := context.Background()
	// Usuários nunca ativados ficam com navegador_id vazio; a busca por vazio
	// não pode casar com eles.
	require.NoError(t, repo.Create(ctx, domain.Usuario{Alias: "ana", Apelido: "Ana"}))

	_, err := repo.FindByNavegador(ctx, "")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUsuarioRepository_ListAtivos_DeveRetornarSomenteAtivosOrdenados(t *testing.T) {
	db := setupPostgres(t)
	repo := NewUsuarioRepository(db)

	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, domain.Usuario{Alias: "caio", Apelido: "Caio", Ativo: true}))
	require.NoError(t, repo.Create(ctx, domain.Usuario{Alias: "ana", Apelido: "Ana", Ativo: true}))
	require.NoError(t, repo.Create(ctx, domain.Usuario{Alias: "bia", Apelido: "Bia", Ativo: false}))

	ativos, err := repo.ListAtivos(ctx)

	require.NoError(t, err)
	require.Len(t, ativos, 2)
	assert.Equal(t, "ana", ativos[0].Alias)
	assert.Equal(t, "caio", ativos[1].Alias)
}
