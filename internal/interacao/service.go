package interacao

import (
	"context"
	"strings"

	ierr "github.com/KromaEnergia/api-crm/internal/errors"
	"github.com/KromaEnergia/api-crm/internal/logger"
	"gorm.io/gorm"
)

type Service struct {
	DB         *gorm.DB
	Repository Repository
	Hub        Hub
	Logger     *logger.Logger
}

func NewService(db *gorm.DB, hub Hub, log *logger.Logger) *Service {
	return &Service{DB: db, Repository: NewRepository(), Hub: hub, Logger: log}
}

// Registrar grava a interação no db informado (pode ser uma transação). Não publica.
func (s *Service) Registrar(db *gorm.DB, i *Interacao) error {
	i.Descricao = strings.TrimSpace(i.Descricao)
	if i.NegocioID == "" || i.TenantID == "" {
		return ierr.NewError("interação sem negócio").WithHint("negócio obrigatório").Mark(ierr.ErrValidation)
	}
	if i.Descricao == "" {
		return ierr.NewError("descrição vazia").WithHint("descrição obrigatória").Mark(ierr.ErrValidation)
	}
	return s.Repository.Criar(db, i)
}

// Publicar avisa os inscritos. Falha de publicação não desfaz a gravação.
func (s *Service) Publicar(ctx context.Context, itens ...Interacao) {
	for _, i := range itens {
		if err := s.Hub.Publish(ctx, i); err != nil {
			s.Logger.Warnw("falha ao publicar interação", "negocio", i.NegocioID, "error", err)
		}
	}
}

// Adicionar grava fora de transação e publica em seguida
func (s *Service) Adicionar(ctx context.Context, i *Interacao) error {
	if err := s.Registrar(s.DB.WithContext(ctx), i); err != nil {
		return err
	}
	s.Publicar(ctx, *i)
	return nil
}

func (s *Service) Listar(ctx context.Context, tenantID, negocioID string) ([]Interacao, error) {
	lista, err := s.Repository.ListarPorNegocio(s.DB.WithContext(ctx), tenantID, negocioID)
	if err != nil {
		return nil, err
	}
	OrdenarDesc(lista)
	return lista, nil
}
