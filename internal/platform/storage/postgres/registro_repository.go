package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/wewei/ems-lottery/internal/domain"
)

// RegistroSorteioRepository guarda o histórico de rodadas e expõe a seção
// crítica transacional usada pelo motor de sorteio.
type RegistroSorteioRepository struct {
	db *gorm.DB
}

func NewRegistroSorteioRepository(db *gorm.DB) *RegistroSorteioRepository {
	return &RegistroSorteioRepository{db: db}
}

type registroModel struct {
	ID         string          `gorm:"column:id;primaryKey"`
	SorteadoEm time.Time       `gorm:"column:sorteado_em;index"`
	PremioID   string          `gorm:"column:premio_id;index"`
	PremioNome string          `gorm:"column:premio_nome"`
	Quantidade int             `gorm:"column:quantidade"`
	Ganhadores []ganhadorModel `gorm:"foreignKey:RegistroID;references:ID"`
}

func (registroModel) TableName() string {
	return "registros_sorteio"
}

type ganhadorModel struct {
	RegistroID string `gorm:"column:registro_id;primaryKey"`
	Posicao    int    `gorm:"column:posicao;primaryKey;autoIncrement:false"`
	Alias      string `gorm:"column:alias;index"`
	Apelido    string `gorm:"column:apelido"`
}

func (ganhadorModel) TableName() string {
	return "ganhadores"
}

func (m registroModel) toDomain() domain.RegistroSorteio {
	registro := domain.RegistroSorteio{
		ID:         domain.RegistroID(m.ID),
		SorteadoEm: m.SorteadoEm,
		PremioID:   domain.PremioID(m.PremioID),
		PremioNome: m.PremioNome,
		Quantidade: m.Quantidade,
	}

	registro.Ganhadores = make([]domain.Ganhador, len(m.Ganhadores))
	for i, g := range m.Ganhadores {
		registro.Ganhadores[i] = domain.Ganhador{
			RegistroID: domain.RegistroID(g.RegistroID),
			Posicao:    g.Posicao,
			Alias:      g.Alias,
			Apelido:    g.Apelido,
		}
	}
	return registro
}

func fromDomainRegistro(r domain.RegistroSorteio) registroModel {
	model := registroModel{
		ID:         string(r.ID),
		SorteadoEm: r.SorteadoEm,
		PremioID:   string(r.PremioID),
		PremioNome: r.PremioNome,
		Quantidade: r.Quantidade,
	}

	model.Ganhadores = make([]ganhadorModel, len(r.Ganhadores))
	for i, g := range r.Ganhadores {
		model.Ganhadores[i] = ganhadorModel{
			RegistroID: string(r.ID),
			Posicao:    g.Posicao,
			Alias:      g.Alias,
			Apelido:    g.Apelido,
		}
	}
	return model
}

// EmTransacao abre a seção crítica do sorteio. Tudo que fn fizer através do
// SorteioTx acontece na mesma transação; o rollback é automático se fn falhar.
func (r *RegistroSorteioRepository) EmTransacao(ctx context.Context, fn func(tx domain.SorteioTx) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&sorteioTx{db: tx})
	})
}

// sorteioTx implementa domain.SorteioTx sobre a transação GORM corrente.
type sorteioTx struct {
	db *gorm.DB
}

// PremioParaAtualizar lê o prêmio com SELECT ... FOR UPDATE: rodadas
// concorrentes do mesmo prêmio serializam aqui, rodadas de prêmios diferentes
// não se bloqueiam.
func (t *sorteioTx) PremioParaAtualizar(ctx context.Context, id domain.PremioID) (domain.Premio, error) {
	var model premioModel
	if err := t.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&model, "id = ?", string(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Premio{}, domain.ErrNotFound
		}
		return domain.Premio{}, fmt.Errorf("gorm registro: travar premio: %w", err)
	}
	return model.toDomain(), nil
}

func (t *sorteioTx) TotalPremiado(ctx context.Context, id domain.PremioID) (int64, error) {
	return totalPremiado(ctx, t.db, id)
}

func (t *sorteioTx) AliasesPremiados(ctx context.Context) ([]string, error) {
	return aliasesPremiados(ctx, t.db)
}

func (t *sorteioTx) AliasesPremiadosPorPremio(ctx context.Context, id domain.PremioID) ([]string, error) {
	return aliasesPremiadosPorPremio(ctx, t.db, id)
}

func (t *sorteioTx) Gravar(ctx context.Context, registro domain.RegistroSorteio) error {
	model := fromDomainRegistro(registro)
	if err := t.db.WithContext(ctx).Create(&model).Error; err != nil {
		return fmt.Errorf("gorm registro: inserir: %w", err)
	}
	return nil
}

func (r *RegistroSorteioRepository) TotalPremiado(ctx context.Context, id domain.PremioID) (int64, error) {
	return totalPremiado(ctx, r.db, id)
}

// totalPremiado conta as linhas de ganhadores, não a coluna quantidade: é a
// soma dos tamanhos das listas que define o que já saiu do estoque.
func totalPremiado(ctx context.Context, db *gorm.DB, id domain.PremioID) (int64, error) {
	var total int64
	if err := db.WithContext(ctx).
		Model(&ganhadorModel{}).
		Joins("JOIN registros_sorteio ON registros_sorteio.id = ganhadores.registro_id").
		Where("registros_sorteio.premio_id = ?", string(id)).
		Count(&total).Error; err != nil {
		return 0, fmt.Errorf("gorm registro: total premiado: %w", err)
	}
	return total, nil
}

func (r *RegistroSorteioRepository) ListByPremio(ctx context.Context, id domain.PremioID) ([]domain.RegistroSorteio, error) {
	var models []registroModel
	if err := r.db.WithContext(ctx).
		Preload("Ganhadores", ordenarGanhadores).
		Where("premio_id = ?", string(id)).
		Order("sorteado_em DESC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("gorm registro: listar por premio: %w", err)
	}
	return toDomainRegistros(models), nil
}

func (r *RegistroSorteioRepository) ListByGanhador(ctx context.Context, alias string) ([]domain.RegistroSorteio, error) {
	var models []registroModel
	if err := r.db.WithContext(ctx).
		Preload("Ganhadores", ordenarGanhadores).
		Joins("JOIN ganhadores ON ganhadores.registro_id = registros_sorteio.id").
		Where("ganhadores.alias = ?", alias).
		Order("sorteado_em DESC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("gorm registro: listar por ganhador: %w", err)
	}
	return toDomainRegistros(models), nil
}

func (r *RegistroSorteioRepository) ListPaginado(ctx context.Context, pagina, limite int) ([]domain.RegistroSorteio, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&registroModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("gorm registro: contar: %w", err)
	}

	var models []registroModel
	if err := r.db.WithContext(ctx).
		Preload("Ganhadores", ordenarGanhadores).
		Order("sorteado_em DESC").
		Offset((pagina - 1) * limite).
		Limit(limite).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("gorm registro: listar paginado: %w", err)
	}
	return toDomainRegistros(models), total, nil
}

func (r *RegistroSorteioRepository) AliasesPremiados(ctx context.Context) ([]string, error) {
	return aliasesPremiados(ctx, r.db)
}

func (r *RegistroSorteioRepository) AliasesPremiadosPorPremio(ctx context.Context, id domain.PremioID) ([]string, error) {
	return aliasesPremiadosPorPremio(ctx, r.db, id)
}

func aliasesPremiados(ctx context.Context, db *gorm.DB) ([]string, error) {
	var aliases []string
	if err := db.WithContext(ctx).
		Model(&ganhadorModel{}).
		Distinct("alias").
		Pluck("alias", &aliases).Error; err != nil {
		return nil, fmt.Errorf("gorm registro: aliases premiados: %w", err)
	}
	return aliases, nil
}

func aliasesPremiadosPorPremio(ctx context.Context, db *gorm.DB, id domain.PremioID) ([]string, error) {
	var aliases []string
	if err := db.WithContext(ctx).
		Model(&ganhadorModel{}).
		Distinct("ganhadores.alias").
		Joins("JOIN registros_sorteio ON registros_sorteio.id = ganhadores.registro_id").
		Where("registros_sorteio.premio_id = ?", string(id)).
		Pluck("ganhadores.alias", &aliases).Error; err != nil {
		return nil, fmt.Errorf("gorm registro: aliases por premio: %w", err)
	}
	return aliases, nil
}

// Delete apaga registro e ganhadores na mesma transação; não dependemos do
// cascade porque o SQLite dos testes roda sem enforcement de FK.
func (r *RegistroSorteioRepository) Delete(ctx context.Context, id domain.RegistroID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("registro_id = ?", string(id)).Delete(&ganhadorModel{}).Error; err != nil {
			return fmt.Errorf("gorm registro: remover ganhadores: %w", err)
		}

		res := tx.Where("id = ?", string(id)).Delete(&registroModel{})
		if res.Error != nil {
			return fmt.Errorf("gorm registro: remover: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}

func ordenarGanhadores(db *gorm.DB) *gorm.DB {
	return db.Order("posicao ASC")
}

func toDomainRegistros(models []registroModel) []domain.RegistroSorteio {
	result := make([]domain.RegistroSorteio, len(models))
	for i, model := range models {
		result[i] = model.toDomain()
	}
	return result
}

var _ domain.RegistroSorteioRepository = (*RegistroSorteioRepository)(nil)
