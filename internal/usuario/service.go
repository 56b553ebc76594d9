package usuario

import (
	"context"
	"strings"

	ierr "github.com/KromaEnergia/api-crm/internal/errors"
	"github.com/KromaEnergia/api-crm/internal/utils"
	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

var validate = validator.New()

// Cadastrar valida, gera o hash da senha e grava o usuário no tenant.
// Sem senha informada, devolve a senha temporária gerada.
func Cadastrar(db *gorm.DB, repo Repository, tenantID string, req CreateUsuarioRequest) (*Usuario, string, error) {
	if strings.TrimSpace(tenantID) == "" {
		return nil, "", ierr.NewError("tenant vazio").WithHint("tenant obrigatório").Mark(ierr.ErrValidation)
	}
	if err := validate.Struct(req); err != nil {
		return nil, "", ierr.WithError(err).WithHint("nome e e-mail válidos são obrigatórios").Mark(ierr.ErrValidation)
	}

	senha, temporaria := req.Senha, ""
	if senha == "" {
		var err error
		if senha, err = utils.GerarSenhaTemporaria(); err != nil {
			return nil, "", ierr.WithError(err).Mark(ierr.ErrSystem)
		}
		temporaria = senha
	}
	hash, err := utils.HashSenha(senha)
	if err != nil {
		return nil, "", ierr.WithError(err).WithHint("erro ao processar senha").Mark(ierr.ErrSystem)
	}

	u := &Usuario{
		TenantID: tenantID,
		Nome:     strings.TrimSpace(req.Nome),
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		Senha:    hash,
		IsAdmin:  req.IsAdmin,
	}
	if err := repo.Criar(db, u); err != nil {
		return nil, "", err
	}
	return u, temporaria, nil
}

// Diretorio resolve o nome de exibição dos usuários de um tenant
type Diretorio struct {
	DB         *gorm.DB
	Repository Repository
}

func NewDiretorio(db *gorm.DB) *Diretorio {
	return &Diretorio{DB: db, Repository: NewRepository()}
}

func (d *Diretorio) Nomes(ctx context.Context, tenantID string) (map[string]string, error) {
	lista, err := d.Repository.ListarPorTenant(d.DB.WithContext(ctx), tenantID)
	if err != nil {
		return nil, err
	}
	return lo.Associate(lista, func(u Usuario) (string, string) { return u.ID, u.Nome }), nil
}
