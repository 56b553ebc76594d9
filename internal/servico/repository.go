package servico

import (
	"errors"

	ierr "github.com/KromaEnergia/api-crm/internal/errors"
	"gorm.io/gorm"
)

type Repository interface {
	Criar(db *gorm.DB, s *Servico) error
	BuscarPorID(db *gorm.DB, tenantID, id string) (*Servico, error)
	ListarPorTenant(db *gorm.DB, tenantID string) ([]Servico, error)
	Salvar(db *gorm.DB, s *Servico) error
	SalvarPlano(db *gorm.DB, p *Plano) error
	DeletarPlano(db *gorm.DB, id string) error
	Deletar(db *gorm.DB, tenantID, id string) error
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func naoEncontrado(id string) error {
	return ierr.NewErrorf("serviço %s não encontrado", id).
		WithHint("serviço não encontrado").
		Mark(ierr.ErrNotFound)
}

func (r *repositoryImpl) Criar(db *gorm.DB, s *Servico) error {
	if err := db.Create(s).Error; err != nil {
		return ierr.WithError(err).WithHint("erro ao salvar serviço").Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *repositoryImpl) BuscarPorID(db *gorm.DB, tenantID, id string) (*Servico, error) {
	var s Servico
	err := db.Preload("Planos").Where("tenant_id = ? AND id = ?", tenantID, id).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, naoEncontrado(id)
	}
	if err != nil {
		return nil, ierr.WithError(err).Mark(ierr.ErrDatabase)
	}
	return &s, nil
}

func (r *repositoryImpl) ListarPorTenant(db *gorm.DB, tenantID string) ([]Servico, error) {
	var lista []Servico
	if err := db.Preload("Planos").Where("tenant_id = ?", tenantID).Order("nome").Find(&lista).Error; err != nil {
		return nil, ierr.WithError(err).Mark(ierr.ErrDatabase)
	}
	return lista, nil
}

// Salvar grava só os campos do serviço; planos têm métodos próprios
func (r *repositoryImpl) Salvar(db *gorm.DB, s *Servico) error {
	if err := db.Omit("Planos").Save(s).Error; err != nil {
		return ierr.WithError(err).WithHint("erro ao salvar serviço").Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *repositoryImpl) SalvarPlano(db *gorm.DB, p *Plano) error {
	if err := db.Save(p).Error; err != nil {
		return ierr.WithError(err).WithHint("erro ao salvar plano").Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *repositoryImpl) DeletarPlano(db *gorm.DB, id string) error {
	if err := db.Delete(&Plano{}, "id = ?", id).Error; err != nil {
		return ierr.WithError(err).Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *repositoryImpl) Deletar(db *gorm.DB, tenantID, id string) error {
	if err := db.Where("servico_id = ?", id).Delete(&Plano{}).Error; err != nil {
		return ierr.WithError(err).Mark(ierr.ErrDatabase)
	}
	res := db.Where("tenant_id = ? AND id = ?", tenantID, id).Delete(&Servico{})
	if res.Error != nil {
		return ierr.WithError(res.Error).Mark(ierr.ErrDatabase)
	}
	if res.RowsAffected == 0 {
		return naoEncontrado(id)
	}
	return nil
}
