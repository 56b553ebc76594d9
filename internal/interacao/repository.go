package interacao

import (
	ierr "github.com/KromaEnergia/api-crm/internal/errors"
	"gorm.io/gorm"
)

type Repository interface {
	Criar(db *gorm.DB, i *Interacao) error
	ListarPorNegocio(db *gorm.DB, tenantID, negocioID string) ([]Interacao, error)
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) Criar(db *gorm.DB, i *Interacao) error {
	if err := db.Create(i).Error; err != nil {
		return ierr.WithError(err).WithHint("erro ao registrar interação").Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *repositoryImpl) ListarPorNegocio(db *gorm.DB, tenantID, negocioID string) ([]Interacao, error) {
	var lista []Interacao
	err := db.Where("tenant_id = ? AND negocio_id = ?", tenantID, negocioID).
		Order("created_at DESC").
		Find(&lista).Error
	if err != nil {
		return nil, ierr.WithError(err).Mark(ierr.ErrDatabase)
	}
	return lista, nil
}
