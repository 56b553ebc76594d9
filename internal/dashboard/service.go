package dashboard

import (
	"context"
	"time"

	"github.com/KromaEnergia/api-crm/internal/auth"
	"github.com/KromaEnergia/api-crm/internal/etapa"
	"github.com/KromaEnergia/api-crm/internal/logger"
	"github.com/KromaEnergia/api-crm/internal/negocio"
	"github.com/KromaEnergia/api-crm/internal/servico"
	"github.com/KromaEnergia/api-crm/internal/usuario"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

type Service struct {
	DB       *gorm.DB
	Negocios negocio.Repository
	Servicos servico.Repository
	Etapas   etapa.Repository
	Usuarios usuario.Repository
	Logger   *logger.Logger
	agora    func() time.Time
}

func NewService(db *gorm.DB, log *logger.Logger) *Service {
	return &Service{
		DB:       db,
		Negocios: negocio.NewRepository(),
		Servicos: servico.NewRepository(),
		Etapas:   etapa.NewRepository(),
		Usuarios: usuario.NewRepository(),
		Logger:   log,
		agora:    time.Now,
	}
}

// Carregar busca negócios, catálogo, etapas e (para admin) usuários em paralelo
func (s *Service) Carregar(ctx context.Context, id auth.Identidade) (Entrada, error) {
	in := Entrada{Agora: s.agora(), Admin: id.IsAdmin}
	g, gctx := errgroup.WithContext(ctx)
	db := s.DB.WithContext(gctx)

	g.Go(func() (err error) {
		in.Negocios, err = s.Negocios.Listar(db, negocio.EscopoDe(id))
		return err
	})
	g.Go(func() (err error) {
		in.Catalogo, err = s.Servicos.ListarPorTenant(db, id.TenantID)
		return err
	})
	g.Go(func() (err error) {
		in.Etapas, err = s.Etapas.ListarPorTenant(db, id.TenantID)
		return err
	})
	if id.IsAdmin {
		g.Go(func() (err error) {
			in.Usuarios, err = s.Usuarios.ListarPorTenant(db, id.TenantID)
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return Entrada{}, err
	}
	return in, nil
}

func (s *Service) Metricas(ctx context.Context, id auth.Identidade) (Metricas, error) {
	in, err := s.Carregar(ctx, id)
	if err != nil {
		s.Logger.Errorw("falha ao carregar painel", "tenant", id.TenantID, "error", err)
		return Metricas{}, err
	}
	return Calcular(in), nil
}
