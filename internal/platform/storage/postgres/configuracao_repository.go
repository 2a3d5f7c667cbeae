package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/wewei/ems-lottery/internal/domain"
)

// ConfiguracaoRepository guarda o documento único de opções do sorteio. A
// criação preguiçosa do default mora aqui, no caminho de leitura, para que
// nenhum chamador precise tratar a ausência do registro.
type ConfiguracaoRepository struct {
	db *gorm.DB
}

func NewConfiguracaoRepository(db *gorm.DB) *ConfiguracaoRepository {
	return &ConfiguracaoRepository{db: db}
}

type configuracaoModel struct {
	ID                        int  `gorm:"column:id;primaryKey"`
	PermitirMultiplasVitorias bool `gorm:"column:permitir_multiplas_vitorias"`
}

func (configuracaoModel) TableName() string {
	return "configuracoes"
}

func (r *ConfiguracaoRepository) Obter(ctx context.Context) (domain.Configuracao, error) {
	model := configuracaoModel{ID: 1}
	// FirstOrCreate evita corrida entre duas leituras iniciais concorrentes.
	if err := r.db.WithContext(ctx).
		Where(configuracaoModel{ID: 1}).
		FirstOrCreate(&model).Error; err != nil {
		return domain.Configuracao{}, fmt.Errorf("gorm configuracao: obter: %w", err)
	}
	return domain.Configuracao{
		ID:                        model.ID,
		PermitirMultiplasVitorias: model.PermitirMultiplasVitorias,
	}, nil
}

func (r *ConfiguracaoRepository) Salvar(ctx context.Context, c domain.Configuracao) error {
	model := configuracaoModel{
		ID:                        1,
		PermitirMultiplasVitorias: c.PermitirMultiplasVitorias,
	}
	if err := r.db.WithContext(ctx).Save(&model).Error; err != nil {
		return fmt.Errorf("gorm configuracao: salvar: %w", err)
	}
	return nil
}

var _ domain.ConfiguracaoRepository = (*ConfiguracaoRepository)(nil)
