package usuario

import (
	"errors"
	"strings"

	ierr "github.com/KromaEnergia/api-crm/internal/errors"
	"gorm.io/gorm"
)

type Repository interface {
	BuscarPorEmail(db *gorm.DB, email string) (*Usuario, error)
	BuscarPorID(db *gorm.DB, tenantID, id string) (*Usuario, error)
	ListarPorTenant(db *gorm.DB, tenantID string) ([]Usuario, error)
	Criar(db *gorm.DB, u *Usuario) error
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) BuscarPorEmail(db *gorm.DB, email string) (*Usuario, error) {
	var u Usuario
	err := db.Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ierr.WithError(err).WithHint("usuário não encontrado").Mark(ierr.ErrNotFound)
	}
	if err != nil {
		return nil, ierr.WithError(err).Mark(ierr.ErrDatabase)
	}
	return &u, nil
}

func (r *repositoryImpl) BuscarPorID(db *gorm.DB, tenantID, id string) (*Usuario, error) {
	var u Usuario
	err := db.Where("tenant_id = ? AND id = ?", tenantID, id).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ierr.WithError(err).WithHint("usuário não encontrado").Mark(ierr.ErrNotFound)
	}
	if err != nil {
		return nil, ierr.WithError(err).Mark(ierr.ErrDatabase)
	}
	return &u, nil
}

func (r *repositoryImpl) ListarPorTenant(db *gorm.DB, tenantID string) ([]Usuario, error) {
	var lista []Usuario
	if err := db.Where("tenant_id = ?", tenantID).Order("nome").Find(&lista).Error; err != nil {
		return nil, ierr.WithError(err).Mark(ierr.ErrDatabase)
	}
	return lista, nil
}

func (r *repositoryImpl) Criar(db *gorm.DB, u *Usuario) error {
	var n int64
	if err := db.Model(&Usuario{}).Where("email = ?", u.Email).Count(&n).Error; err != nil {
		return ierr.WithError(err).Mark(ierr.ErrDatabase)
	}
	if n > 0 {
		return ierr.NewError("email duplicado").WithHint("e-mail já cadastrado").Mark(ierr.ErrInvariantViolation)
	}
	if err := db.Create(u).Error; err != nil {
		return ierr.WithError(err).Mark(ierr.ErrDatabase)
	}
	return nil
}
