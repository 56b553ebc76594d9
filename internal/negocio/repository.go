package negocio

import (
	"errors"
	"time"

	ierr "github.com/KromaEnergia/api-crm/internal/errors"
	"gorm.io/gorm"
)

// Escopo restringe as consultas ao tenant e, para não-admin, ao responsável
type Escopo struct {
	TenantID      string
	ResponsavelID string // vazio: tenant inteiro
}

func (e Escopo) aplicar(db *gorm.DB) *gorm.DB {
	db = db.Where("tenant_id = ?", e.TenantID)
	if e.ResponsavelID != "" {
		db = db.Where("responsavel_id = ?", e.ResponsavelID)
	}
	return db
}

type Repository interface {
	Criar(db *gorm.DB, n *Negocio) error
	BuscarPorID(db *gorm.DB, tenantID, id string) (*Negocio, error)
	Listar(db *gorm.DB, escopo Escopo) ([]Negocio, error)
	ListarPorEtapa(db *gorm.DB, tenantID, etapaID string) ([]Negocio, error)
	Salvar(db *gorm.DB, n *Negocio) error
	AtualizarEtapa(db *gorm.DB, tenantID, id, etapaID string) error
	ContarPorServico(db *gorm.DB, tenantID, servicoID string) (int64, error)
	ContarPorPlano(db *gorm.DB, tenantID, planoID string) (int64, error)
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func naoEncontrado(id string) error {
	return ierr.NewErrorf("negócio %s não encontrado", id).
		WithHint("negócio não encontrado").
		Mark(ierr.ErrNotFound)
}

func (r *repositoryImpl) Criar(db *gorm.DB, n *Negocio) error {
	if err := db.Create(n).Error; err != nil {
		return ierr.WithError(err).WithHint("erro ao salvar negócio").Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *repositoryImpl) BuscarPorID(db *gorm.DB, tenantID, id string) (*Negocio, error) {
	var n Negocio
	err := db.Where("tenant_id = ? AND id = ?", tenantID, id).First(&n).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, naoEncontrado(id)
	}
	if err != nil {
		return nil, ierr.WithError(err).Mark(ierr.ErrDatabase)
	}
	return &n, nil
}

func (r *repositoryImpl) Listar(db *gorm.DB, escopo Escopo) ([]Negocio, error) {
	var lista []Negocio
	if err := escopo.aplicar(db).Order("updated_at DESC").Find(&lista).Error; err != nil {
		return nil, ierr.WithError(err).Mark(ierr.ErrDatabase)
	}
	return lista, nil
}

func (r *repositoryImpl) ListarPorEtapa(db *gorm.DB, tenantID, etapaID string) ([]Negocio, error) {
	var lista []Negocio
	if err := db.Where("tenant_id = ? AND etapa_id = ?", tenantID, etapaID).Find(&lista).Error; err != nil {
		return nil, ierr.WithError(err).Mark(ierr.ErrDatabase)
	}
	return lista, nil
}

func (r *repositoryImpl) Salvar(db *gorm.DB, n *Negocio) error {
	if err := db.Save(n).Error; err != nil {
		return ierr.WithError(err).WithHint("erro ao salvar negócio").Mark(ierr.ErrDatabase)
	}
	return nil
}

// AtualizarEtapa altera só a etapa (e updated_at)
func (r *repositoryImpl) AtualizarEtapa(db *gorm.DB, tenantID, id, etapaID string) error {
	res := db.Model(&Negocio{}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Updates(map[string]any{"etapa_id": etapaID, "updated_at": time.Now()})
	if res.Error != nil {
		return ierr.WithError(res.Error).WithHint("erro ao mover negócio").Mark(ierr.ErrDatabase)
	}
	if res.RowsAffected == 0 {
		return naoEncontrado(id)
	}
	return nil
}

func (r *repositoryImpl) ContarPorServico(db *gorm.DB, tenantID, servicoID string) (int64, error) {
	var n int64
	err := db.Model(&Negocio{}).Where("tenant_id = ? AND servico_id = ?", tenantID, servicoID).Count(&n).Error
	if err != nil {
		return 0, ierr.WithError(err).Mark(ierr.ErrDatabase)
	}
	return n, nil
}

func (r *repositoryImpl) ContarPorPlano(db *gorm.DB, tenantID, planoID string) (int64, error) {
	var n int64
	err := db.Model(&Negocio{}).Where("tenant_id = ? AND plano_id = ?", tenantID, planoID).Count(&n).Error
	if err != nil {
		return 0, ierr.WithError(err).Mark(ierr.ErrDatabase)
	}
	return n, nil
}
