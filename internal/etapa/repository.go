package etapa

import (
	"errors"

	ierr "github.com/KromaEnergia/api-crm/internal/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	ListarPorTenant(db *gorm.DB, tenantID string) ([]Etapa, error)
	// TravarPorTenant lista com lock de linha; usar dentro de transação
	TravarPorTenant(db *gorm.DB, tenantID string) ([]Etapa, error)
	BuscarPorID(db *gorm.DB, tenantID, id string) (*Etapa, error)
	SalvarTodas(db *gorm.DB, etapas []Etapa) error
	Deletar(db *gorm.DB, tenantID, id string) error
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) ListarPorTenant(db *gorm.DB, tenantID string) ([]Etapa, error) {
	var etapas []Etapa
	if err := db.Where("tenant_id = ?", tenantID).Order("ordem").Find(&etapas).Error; err != nil {
		return nil, ierr.WithError(err).Mark(ierr.ErrDatabase)
	}
	return etapas, nil
}

func (r *repositoryImpl) TravarPorTenant(db *gorm.DB, tenantID string) ([]Etapa, error) {
	return r.ListarPorTenant(db.Clauses(clause.Locking{Strength: "UPDATE"}), tenantID)
}

func (r *repositoryImpl) BuscarPorID(db *gorm.DB, tenantID, id string) (*Etapa, error) {
	var e Etapa
	err := db.Where("tenant_id = ? AND id = ?", tenantID, id).First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, naoEncontrada(id)
	}
	if err != nil {
		return nil, ierr.WithError(err).Mark(ierr.ErrDatabase)
	}
	return &e, nil
}

// SalvarTodas grava a lista inteira (insere as novas, atualiza as existentes)
func (r *repositoryImpl) SalvarTodas(db *gorm.DB, etapas []Etapa) error {
	if len(etapas) == 0 {
		return nil
	}
	if err := db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&etapas).Error; err != nil {
		return ierr.WithError(err).WithHint("erro ao salvar etapas").Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *repositoryImpl) Deletar(db *gorm.DB, tenantID, id string) error {
	if err := db.Where("tenant_id = ? AND id = ?", tenantID, id).Delete(&Etapa{}).Error; err != nil {
		return ierr.WithError(err).WithHint("erro ao remover etapa").Mark(ierr.ErrDatabase)
	}
	return nil
}
