package etapa

import (
	"context"

	ierr "github.com/KromaEnergia/api-crm/internal/errors"
	"github.com/KromaEnergia/api-crm/internal/logger"
	"gorm.io/gorm"
)

// Reatribuidor move os negócios de uma etapa removida para outra dentro da transação.
// A função devolvida roda depois do commit.
type Reatribuidor interface {
	ReatribuirEtapa(ctx context.Context, tx *gorm.DB, tenantID, autorID string, de, para Etapa) (func(), error)
}

type Service struct {
	DB         *gorm.DB
	Repository Repository
	Negocios   Reatribuidor
	Logger     *logger.Logger
}

func NewService(db *gorm.DB, negocios Reatribuidor, log *logger.Logger) *Service {
	return &Service{DB: db, Repository: NewRepository(), Negocios: negocios, Logger: log}
}

// mutar carrega a lista com lock, aplica fn e grava o resultado inteiro na mesma transação
func (s *Service) mutar(ctx context.Context, tenantID string, fn func(tx *gorm.DB, etapas []Etapa) ([]Etapa, error)) ([]Etapa, error) {
	tx := s.DB.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, ierr.WithError(tx.Error).Mark(ierr.ErrDatabase)
	}
	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback()
			panic(r)
		}
	}()

	atuais, err := s.Repository.TravarPorTenant(tx, tenantID)
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	if len(atuais) == 0 {
		atuais = Padrao(tenantID)
	}

	novas, err := fn(tx, atuais)
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	if err := s.Repository.SalvarTodas(tx, novas); err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, ierr.WithError(err).Mark(ierr.ErrDatabase)
	}
	return novas, nil
}

// Listar devolve as etapas em ordem. Tenant sem etapas recebe as cinco padrão, já gravadas.
func (s *Service) Listar(ctx context.Context, tenantID string) ([]Etapa, error) {
	db := s.DB.WithContext(ctx)
	etapas, err := s.Repository.ListarPorTenant(db, tenantID)
	if err != nil {
		return nil, err
	}
	if len(etapas) > 0 {
		return Ordenar(etapas), nil
	}

	padrao := Padrao(tenantID)
	if err := s.Repository.SalvarTodas(db, padrao); err != nil {
		return nil, err
	}
	s.Logger.Infow("etapas padrão criadas", "tenant", tenantID)
	return padrao, nil
}

func (s *Service) Adicionar(ctx context.Context, tenantID, nome, cor string) (Etapa, error) {
	var nova Etapa
	_, err := s.mutar(ctx, tenantID, func(_ *gorm.DB, etapas []Etapa) ([]Etapa, error) {
		out, e, err := Adicionar(etapas, tenantID, nome, cor)
		nova = e
		return out, err
	})
	return nova, err
}

func (s *Service) Renomear(ctx context.Context, tenantID, id, nome, cor string) (Etapa, error) {
	var alterada Etapa
	_, err := s.mutar(ctx, tenantID, func(_ *gorm.DB, etapas []Etapa) ([]Etapa, error) {
		out, e, err := Renomear(etapas, id, nome, cor)
		alterada = e
		return out, err
	})
	return alterada, err
}

func (s *Service) Mover(ctx context.Context, tenantID, movidaID, alvoID string) ([]Etapa, error) {
	return s.mutar(ctx, tenantID, func(_ *gorm.DB, etapas []Etapa) ([]Etapa, error) {
		return Mover(etapas, movidaID, alvoID)
	})
}

// Remover apaga a etapa, renumera as restantes e leva os negócios órfãos para a primeira etapa
func (s *Service) Remover(ctx context.Context, tenantID, autorID, id string) error {
	var depois func()
	_, err := s.mutar(ctx, tenantID, func(tx *gorm.DB, etapas []Etapa) ([]Etapa, error) {
		out, removida, err := Remover(etapas, id)
		if err != nil {
			return nil, err
		}
		if err := s.Repository.Deletar(tx, tenantID, removida.ID); err != nil {
			return nil, err
		}
		if s.Negocios != nil {
			depois, err = s.Negocios.ReatribuirEtapa(ctx, tx, tenantID, autorID, removida, out[0])
			if err != nil {
				return nil, err
			}
		}
		return out, nil
	})
	if err != nil {
		return err
	}
	if depois != nil {
		depois()
	}
	s.Logger.Infow("etapa removida", "tenant", tenantID, "etapa", id)
	return nil
}
