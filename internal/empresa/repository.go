package empresa

import (
	"errors"

	ierr "github.com/KromaEnergia/api-crm/internal/errors"
	"gorm.io/gorm"
)

type Repository interface {
	Criar(db *gorm.DB, e *Empresa) error
	BuscarPorID(db *gorm.DB, tenantID, id string) (*Empresa, error)
	// BuscarPorCNPJ devolve nil, nil quando o tenant não tem a empresa
	BuscarPorCNPJ(db *gorm.DB, tenantID, cnpj string) (*Empresa, error)
	ListarPorTenant(db *gorm.DB, tenantID string) ([]Empresa, error)
	CriarContatos(db *gorm.DB, contatos []Contato) error
	ListarContatos(db *gorm.DB, tenantID string, ids []string) ([]Contato, error)
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) Criar(db *gorm.DB, e *Empresa) error {
	if err := db.Omit("Contatos").Create(e).Error; err != nil {
		return ierr.WithError(err).WithHint("erro ao salvar empresa").Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *repositoryImpl) BuscarPorID(db *gorm.DB, tenantID, id string) (*Empresa, error) {
	var e Empresa
	err := db.Preload("Contatos").Where("tenant_id = ? AND id = ?", tenantID, id).First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ierr.WithError(err).WithHint("empresa não encontrada").Mark(ierr.ErrNotFound)
	}
	if err != nil {
		return nil, ierr.WithError(err).Mark(ierr.ErrDatabase)
	}
	return &e, nil
}

func (r *repositoryImpl) BuscarPorCNPJ(db *gorm.DB, tenantID, cnpj string) (*Empresa, error) {
	var e Empresa
	err := db.Where("tenant_id = ? AND cnpj = ?", tenantID, cnpj).First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, ierr.WithError(err).Mark(ierr.ErrDatabase)
	}
	return &e, nil
}

func (r *repositoryImpl) ListarPorTenant(db *gorm.DB, tenantID string) ([]Empresa, error) {
	var lista []Empresa
	if err := db.Where("tenant_id = ?", tenantID).Order("razao_social").Find(&lista).Error; err != nil {
		return nil, ierr.WithError(err).Mark(ierr.ErrDatabase)
	}
	return lista, nil
}

func (r *repositoryImpl) CriarContatos(db *gorm.DB, contatos []Contato) error {
	if len(contatos) == 0 {
		return nil
	}
	if err := db.Create(&contatos).Error; err != nil {
		return ierr.WithError(err).WithHint("erro ao salvar contatos").Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *repositoryImpl) ListarContatos(db *gorm.DB, tenantID string, ids []string) ([]Contato, error) {
	var lista []Contato
	if len(ids) == 0 {
		return lista, nil
	}
	if err := db.Where("tenant_id = ? AND id IN ?", tenantID, ids).Find(&lista).Error; err != nil {
		return nil, ierr.WithError(err).Mark(ierr.ErrDatabase)
	}
	return lista, nil
}
