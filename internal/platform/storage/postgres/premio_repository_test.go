package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/wewei/ems-lottery/internal/domain"
	"github.com/wewei/ems-lottery/internal/platform/ids"
)

func setupPostgres(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	// Aplicar o schema no banco de teste
	err = db.AutoMigrate(
		&domain.Premio{},
		&domain.Usuario{},
		&domain.RegistroSorteio{},
		&domain.Ganhador{},
		&domain.Configuracao{},
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})

	return db
}

func TestPremioRepository_FindByID_QuandoExiste_DeveRetornarPremio(t *testing.T) {
	db := setupPostgres(t)
	repo := NewPremioRepository(db)

	ctx := context.Background()
	gen := ids.NewGenerator()

	premioID := domain.PremioID(gen.New())
	premio := domain.Premio{
		ID:                  premioID,
		Nome:                "Caneca",
		ImagemURL:           "https://cdn.example.com/caneca.png",
		QuantidadeTotal:     5,
		QuantidadePorRodada: 3,
	}

	err := repo.Create(ctx, premio)
	require.NoError(t, err)

	encontrado, err := repo.FindByID(ctx, premioID)

	assert.NoError(t, err)
	assert.Equal(t, premioID, encontrado.ID)
	assert.Equal(t, "Caneca", encontrado.Nome)
	assert.Equal(t, 5, encontrado.QuantidadeTotal)
	assert.Equal(t, 3, encontrado.QuantidadePorRodada)
}

func TestPremioRepository_FindByID_QuandoNaoExiste_DeveRetornarErroNotFound(t *testing.T) {
	db := setupPostgres(t)
	repo := NewPremioRepository(db)

	_, err := repo.FindByID(context.Background(), "inexistente")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPremioRepository_Update_QuandoExiste_DevePersistirAlteracoes(t *testing.T) {
	db := setupPostgres(t)
	repo := NewPremioRepository(db)

	ctx := context.Background()
	gen := ids.NewGenerator()

	premio := domain.Premio{
		ID:                  domain.PremioID(gen.New()),
		Nome:                "Caneca",
		QuantidadeTotal:     5,
		QuantidadePorRodada: 1,
	}
	require.NoError(t, repo.Create(ctx, premio))

	premio.Nome = "Caneca Nova"
	premio.QuantidadeTotal = 10
	err := repo.Update(ctx, premio)
	require.NoError(t, err)

	atualizado, err := repo.FindByID(ctx, premio.ID)
	require.NoError(t, err)
	assert.Equal(t, "Caneca Nova", atualizado.Nome)
	assert.Equal(t, 10, atualizado.QuantidadeTotal)
}

func TestPremioRepository_Update_QuandoNaoExiste_DeveRetornarErroNotFound(t *testing.T) {
	db := setupPostgres(t)
	repo := NewPremioRepository(db)

	err := repo.Update(context.Background(), domain.Premio{ID: "fantasma", Nome: "Nada"})

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPremioRepository_Listar_DeveOrdenarPorNome(t *testing.T) {
	db := setupPostgres(t)
	repo := NewPremioRepository(db)

	ctx := context.Background()
	gen := ids.NewGenerator()

	for _, nome := range []string{"Camisa", "Boné", "Caneca"} {
		require.NoError(t, repo.Create(ctx, domain.Premio{
			ID:                  domain.PremioID(gen.New()),
			Nome:                nome,
			QuantidadeTotal:     1,
			QuantidadePorRodada: 1,
		}))
	}

	premios, err := repo.Listar(ctx)

	require.NoError(t, err)
	require.Len(t, premios, 3)
	assert.Equal(t, "Boné", premios[0].Nome)
	assert.Equal(t, "Camisa", premios[1].Nome)
	assert.Equal(t, "Caneca", premios[2].Nome)
}
