package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/wewei/ems-lottery/internal/domain"
)

// PremioRepository mapeia o catálogo de prêmios para tabelas GORM. Nenhuma
// coluna de "restante" existe aqui: o saldo é sempre derivado do histórico.
type PremioRepository struct {
	db *gorm.DB
}

func NewPremioRepository(db *gorm.DB) *PremioRepository {
	return &PremioRepository{db: db}
}

type premioModel struct {
	ID                  string    `gorm:"column:id;primaryKey"`
	Nome                string    `gorm:"column:nome"`
	ImagemURL           string    `gorm:"column:imagem_url"`
	QuantidadeTotal     int       `gorm:"column:quantidade_total"`
	QuantidadePorRodada int       `gorm:"column:quantidade_por_rodada"`
	CriadoEm            time.Time `gorm:"column:criado_em"`
	AtualizadoEm        time.Time `gorm:"column:atualizado_em"`
}

func (premioModel) TableName() string {
	return "premios"
}

func (m premioModel) toDomain() domain.Premio {
	return domain.Premio{
		ID:                  domain.PremioID(m.ID),
		Nome:                m.Nome,
		ImagemURL:           m.ImagemURL,
		QuantidadeTotal:     m.QuantidadeTotal,
		QuantidadePorRodada: m.QuantidadePorRodada,
		CriadoEm:            m.CriadoEm,
		AtualizadoEm:        m.AtualizadoEm,
	}
}

func fromDomainPremio(p domain.Premio) premioModel {
	return premioModel{
		ID:                  string(p.ID),
		Nome:                p.Nome,
		ImagemURL:           p.ImagemURL,
		QuantidadeTotal:     p.QuantidadeTotal,
		QuantidadePorRodada: p.QuantidadePorRodada,
		CriadoEm:            p.CriadoEm,
		AtualizadoEm:        p.AtualizadoEm,
	}
}

func (r *PremioRepository) Create(ctx context.Context, p domain.Premio) error {
	model := fromDomainPremio(p)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return fmt.Errorf("gorm premio: inserir: %w", err)
	}
	return nil
}

func (r *PremioRepository) Update(ctx context.Context, p domain.Premio) error {
	model := fromDomainPremio(p)
	res := r.db.WithContext(ctx).Model(&premioModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]any{
			"nome":                  model.Nome,
			"imagem_url":            model.ImagemURL,
			"quantidade_total":      model.QuantidadeTotal,
			"quantidade_por_rodada": model.QuantidadePorRodada,
			"atualizado_em":         model.AtualizadoEm,
		})
	if res.Error != nil {
		return fmt.Errorf("gorm premio: atualizar: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PremioRepository) FindByID(ctx context.Context, id domain.PremioID) (domain.Premio, error) {
	var model premioModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", string(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Premio{}, domain.ErrNotFound
		}
		return domain.Premio{}, fmt.Errorf("gorm premio: buscar id: %w", err)
	}
	return model.toDomain(), nil
}

func (r *PremioRepository) Listar(ctx context.Context) ([]domain.Premio, error) {
	var models []premioModel
	if err := r.db.WithContext(ctx).
		// Ordenamos por nome para manter previsibilidade na API e na tela de sorteio.
		Order("nome ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("gorm premio: listar: %w", err)
	}

	result := make([]domain.Premio, len(models))
	for i, model := range models {
		result[i] = model.toDomain()
	}
	return result, nil
}

var _ domain.PremioRepository = (*PremioRepository)(nil)
