package servico

import (
	"context"
	"strings"

	ierr "github.com/KromaEnergia/api-crm/internal/errors"
	"github.com/KromaEnergia/api-crm/internal/logger"
	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

// Uso informa quantos negócios apontam para um serviço ou plano
type Uso interface {
	ContarPorServico(db *gorm.DB, tenantID, servicoID string) (int64, error)
	ContarPorPlano(db *gorm.DB, tenantID, planoID string) (int64, error)
}

type Service struct {
	DB         *gorm.DB
	Repository Repository
	Uso        Uso
	Logger     *logger.Logger
}

var validate = validator.New()

func NewService(db *gorm.DB, uso Uso, log *logger.Logger) *Service {
	return &Service{DB: db, Repository: NewRepository(), Uso: uso, Logger: log}
}

func validar(req ServicoRequest) error {
	if err := validate.Struct(req); err != nil {
		return ierr.WithError(err).
			WithHint("nome do serviço e pelo menos um plano com nome são obrigatórios").
			Mark(ierr.ErrValidation)
	}
	for _, p := range req.Planos {
		if p.PrecoMensal.IsNegative() {
			return ierr.NewErrorf("plano %q com preço negativo", p.Nome).
				WithHint("o preço mensal não pode ser negativo").
				Mark(ierr.ErrValidation)
		}
	}
	return nil
}

func ativo(v *bool) bool { return v == nil || *v }

func plano(servicoID string, p PlanoRequest) Plano {
	return Plano{
		ID:          p.ID,
		ServicoID:   servicoID,
		Nome:        strings.TrimSpace(p.Nome),
		PrecoMensal: p.PrecoMensal,
		Duracao:     p.Duracao,
		Recursos:    lo.Ternary(p.Recursos == nil, []string{}, p.Recursos),
		Ativo:       ativo(p.Ativo),
	}
}

func (s *Service) Criar(ctx context.Context, tenantID string, req ServicoRequest) (*Servico, error) {
	if err := validar(req); err != nil {
		return nil, err
	}
	novo := &Servico{
		TenantID:  tenantID,
		Nome:      strings.TrimSpace(req.Nome),
		Descricao: req.Descricao,
		Ativo:     ativo(req.Ativo),
	}
	for _, p := range req.Planos {
		p.ID = ""
		novo.Planos = append(novo.Planos, plano("", p))
	}
	if err := s.Repository.Criar(s.DB.WithContext(ctx), novo); err != nil {
		return nil, err
	}
	return novo, nil
}

func (s *Service) Listar(ctx context.Context, tenantID string) ([]Servico, error) {
	return s.Repository.ListarPorTenant(s.DB.WithContext(ctx), tenantID)
}

func (s *Service) Buscar(ctx context.Context, tenantID, id string) (*Servico, error) {
	return s.Repository.BuscarPorID(s.DB.WithContext(ctx), tenantID, id)
}

// Atualizar substitui os dados e a lista de planos. Plano omitido é apagado,
// ou desativado quando algum negócio ainda aponta para ele.
func (s *Service) Atualizar(ctx context.Context, tenantID, id string, req ServicoRequest) (*Servico, error) {
	if err := validar(req); err != nil {
		return nil, err
	}

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

	atual, err := s.Repository.BuscarPorID(tx, tenantID, id)
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	atual.Nome = strings.TrimSpace(req.Nome)
	atual.Descricao = req.Descricao
	atual.Ativo = ativo(req.Ativo)
	if err := s.Repository.Salvar(tx, atual); err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	mantidos := make(map[string]bool)
	for _, pr := range req.Planos {
		if pr.ID != "" {
			if _, ok := atual.Plano(pr.ID); !ok {
				_ = tx.Rollback()
				return nil, ierr.NewErrorf("plano %s não pertence ao serviço", pr.ID).
					WithHint("plano não encontrado").
					Mark(ierr.ErrNotFound)
			}
		}
		p := plano(atual.ID, pr)
		if err := s.Repository.SalvarPlano(tx, &p); err != nil {
			_ = tx.Rollback()
			return nil, err
		}
		mantidos[p.ID] = true
	}

	for _, antigo := range atual.Planos {
		if mantidos[antigo.ID] {
			continue
		}
		n, err := s.Uso.ContarPorPlano(tx, tenantID, antigo.ID)
		if err != nil {
			_ = tx.Rollback()
			return nil, err
		}
		if n > 0 {
			antigo.Ativo = false
			err = s.Repository.SalvarPlano(tx, &antigo)
		} else {
			err = s.Repository.DeletarPlano(tx, antigo.ID)
		}
		if err != nil {
			_ = tx.Rollback()
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, ierr.WithError(err).Mark(ierr.ErrDatabase)
	}
	return s.Buscar(ctx, tenantID, id)
}

// Deletar é recusado enquanto algum negócio apontar para o serviço
func (s *Service) Deletar(ctx context.Context, tenantID, id string) error {
	db := s.DB.WithContext(ctx)
	if _, err := s.Repository.BuscarPorID(db, tenantID, id); err != nil {
		return err
	}
	n, err := s.Uso.ContarPorServico(db, tenantID, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return ierr.NewErrorf("serviço %s usado por %d negócios", id, n).
			WithHintf("serviço em uso por %d negócio(s), não pode ser removido", n).
			Mark(ierr.ErrInvariantViolation)
	}
	if err := s.Repository.Deletar(db, tenantID, id); err != nil {
		return err
	}
	s.Logger.Infow("serviço removido", "tenant", tenantID, "servico", id)
	return nil
}
