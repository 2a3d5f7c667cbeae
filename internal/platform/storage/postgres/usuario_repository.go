package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/wewei/ems-lottery/internal/domain"
)

// UsuarioRepository persiste o diretório de participantes; o alias é a chave
// primária porque é a identidade de negócio usada em todo o sistema.
type UsuarioRepository struct {
	db *gorm.DB
}

func NewUsuarioRepository(db *gorm.DB) *UsuarioRepository {
	return &UsuarioRepository{db: db}
}

type usuarioModel struct {
	Alias        string     `gorm:"column:alias;primaryKey"`
	Apelido      string     `gorm:"column:apelido"`
	Ativo        bool       `gorm:"column:ativo"`
	NavegadorID  string     `gorm:"column:navegador_id;index"`
	AtivadoEm    *time.Time `gorm:"column:ativado_em"`
	CriadoEm     time.Time  `gorm:"column:criado_em"`
	AtualizadoEm time.Time  `gorm:"column:atualizado_em"`
}

func (usuarioModel) TableName() string {
	return "usuarios"
}

func (m usuarioModel) toDomain() domain.Usuario {
	return domain.Usuario{
		Alias:        m.Alias,
		Apelido:      m.Apelido,
		Ativo:        m.Ativo,
		NavegadorID:  m.NavegadorID,
		AtivadoEm:    m.AtivadoEm,
		CriadoEm:     m.CriadoEm,
		AtualizadoEm: m.AtualizadoEm,
	}
}

func fromDomainUsuario(u domain.Usuario) usuarioModel {
	return usuarioModel{
		Alias:        u.Alias,
		Apelido:      u.Apelido,
		Ativo:        u.Ativo,
		NavegadorID:  u.NavegadorID,
		AtivadoEm:    u.AtivadoEm,
		CriadoEm:     u.CriadoEm,
		AtualizadoEm: u.AtualizadoEm,
	}
}

func (r *UsuarioRepository) Create(ctx context.Context, u domain.Usuario) error {
	model := fromDomainUsuario(u)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return fmt.Errorf("gorm usuario: inserir: %w", err)
	}
	return nil
}

func (r *UsuarioRepository) Update(ctx context.Context, u domain.Usuario) error {
	model := fromDomainUsuario(u)
	// Updates com mapa para conseguir zerar ativo/navegador na desativação.
	res := r.db.WithContext(ctx).Model(&usuarioModel{}).
		Where("alias = ?", model.Alias).
		Updates(map[string]any{
			"apelido":       model.Apelido,
			"ativo":         model.Ativo,
			"navegador_id":  model.NavegadorID,
			"ativado_em":    model.AtivadoEm,
			"atualizado_em": model.AtualizadoEm,
		})
	if res.Error != nil {
		return fmt.Errorf("gorm usuario: atualizar: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *UsuarioRepository) FindByAlias(ctx context.Context, alias string) (domain.Usuario, error) {
	var model usuarioModel
	if err := r.db.WithContext(ctx).First(&model, "alias = ?", alias).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Usuario{}, domain.ErrNotFound
		}
		return domain.Usuario{}, fmt.Errorf("gorm usuario: buscar alias: %w", err)
	}
	return model.toDomain(), nil
}

func (r *UsuarioRepository) FindByNavegador(ctx context.Context, navegadorID string) (domain.Usuario, error) {
	var model usuarioModel
	if err := r.db.WithContext(ctx).
		// O marcador sintético do admin pode estar em vários usuários; esta
		// busca serve ao link público, que usa ids reais de navegador.
		Where("navegador_id = ? AND navegador_id <> ''", navegadorID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Usuario{}, domain.ErrNotFound
		}
		return domain.Usuario{}, fmt.Errorf("gorm usuario: buscar navegador: %w", err)
	}
	return model.toDomain(), nil
}

func (r *UsuarioRepository) ListAtivos(ctx context.Context) ([]domain.Usuario, error) {
	var models []usuarioModel
	if err := r.db.WithContext(ctx).
		Where("ativo = ?", true).
		Order("alias ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("gorm usuario: listar ativos: %w", err)
	}

	result := make([]domain.Usuario, len(models))
	for i, model := range models {
		result[i] = model.toDomain()
	}
	return result, nil
}

var _ domain.UsuarioRepository = (*UsuarioRepository)(nil)
