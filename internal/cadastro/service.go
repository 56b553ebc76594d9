package cadastro

import (
	"context"
	"strings"

	"github.com/KromaEnergia/api-crm/internal/auth"
	"github.com/KromaEnergia/api-crm/internal/empresa"
	ierr "github.com/KromaEnergia/api-crm/internal/errors"
	"github.com/KromaEnergia/api-crm/internal/etapa"
	"github.com/KromaEnergia/api-crm/internal/interacao"
	"github.com/KromaEnergia/api-crm/internal/logger"
	"github.com/KromaEnergia/api-crm/internal/negocio"
	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const notaCriacao = "Negócio criado"

var validate = validator.New()

// Alertas recebe o aviso de CNPJ repetido no tenant
type Alertas interface {
	EnviarAlertaCNPJDuplicado(ctx context.Context, cnpj string) error
}

type Service struct {
	DB       *gorm.DB
	Empresas empresa.Repository
	Etapas   *etapa.Service
	Negocios *negocio.Service
	Alertas  Alertas
	Logger   *logger.Logger
}

func NewService(db *gorm.DB, etapas *etapa.Service, negocios *negocio.Service, alertas Alertas, log *logger.Logger) *Service {
	return &Service{
		DB:       db,
		Empresas: empresa.NewRepository(),
		Etapas:   etapas,
		Negocios: negocios,
		Alertas:  alertas,
		Logger:   log,
	}
}

func invalido(err error, msg string) error {
	if err == nil {
		return ierr.NewError(msg).WithHint(msg).Mark(ierr.ErrValidation)
	}
	return ierr.WithError(err).WithHint(msg).Mark(ierr.ErrValidation)
}

func contatosComNome(req []ContatoRequest) []ContatoRequest {
	return lo.Filter(req, func(c ContatoRequest, _ int) bool { return strings.TrimSpace(c.Nome) != "" })
}

func novaEmpresa(tenantID, cnpj string, r EmpresaRequest) *empresa.Empresa {
	return &empresa.Empresa{
		TenantID:           tenantID,
		CNPJ:               cnpj,
		RazaoSocial:        strings.TrimSpace(r.RazaoSocial),
		NomeFantasia:       strings.TrimSpace(r.NomeFantasia),
		Logradouro:         r.Logradouro,
		Numero:             r.Numero,
		Bairro:             r.Bairro,
		Cidade:             r.Cidade,
		UF:                 strings.ToUpper(r.UF),
		CEP:                r.CEP,
		Telefone:           r.Telefone,
		Email:              strings.ToLower(r.Email),
		Situacao:           r.Situacao,
		AtividadePrincipal: r.AtividadePrincipal,
	}
}

// etapaInicial usa a etapa pedida ou a primeira do funil
func (s *Service) etapaInicial(ctx context.Context, tenantID, etapaID string) (string, error) {
	etapas, err := s.Etapas.Listar(ctx, tenantID)
	if err != nil {
		return "", err
	}
	if etapaID == "" {
		return etapas[0].ID, nil
	}
	if !lo.ContainsBy(etapas, func(e etapa.Etapa) bool { return e.ID == etapaID }) {
		return "", ierr.NewErrorf("etapa %s não encontrada", etapaID).
			WithHint("etapa não encontrada").
			Mark(ierr.ErrNotFound)
	}
	return etapaID, nil
}

// Cadastrar grava empresa, contatos e negócio numa única transação.
// Empresa com o mesmo CNPJ no tenant é reaproveitada e dispara o alerta.
func (s *Service) Cadastrar(ctx context.Context, id auth.Identidade, req CadastroRequest) (*Resultado, error) {
	if err := validate.Struct(req); err != nil {
		return nil, invalido(err, "dados do cadastro inválidos")
	}
	cnpj, err := empresa.NormalizarCNPJ(req.Empresa.CNPJ)
	if err != nil {
		return nil, err
	}
	contatos := contatosComNome(req.Contatos)
	if len(contatos) == 0 {
		return nil, invalido(nil, "informe pelo menos um contato com nome")
	}
	etapaID, err := s.etapaInicial(ctx, id.TenantID, req.Negocio.EtapaID)
	if err != nil {
		return nil, err
	}
	responsavel := req.Negocio.ResponsavelID
	if responsavel == "" {
		responsavel = id.UserID
	}

	tx := s.DB.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, ierr.WithError(tx.Error).Mark(ierr.ErrDatabase)
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := s.Negocios.ValidarResponsavel(tx, id, responsavel); err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	termos := req.Negocio.Termos
	if err := negocio.ValidarTermos(tx, s.Negocios.Servicos, id.TenantID, id.IsAdmin, &termos, decimal.Zero); err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	res := &Resultado{}
	emp, err := s.Empresas.BuscarPorCNPJ(tx, id.TenantID, cnpj)
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	if emp != nil {
		res.EmpresaExistente = true
	} else {
		emp = novaEmpresa(id.TenantID, cnpj, req.Empresa)
		if emp.Nome() == "" {
			_ = tx.Rollback()
			return nil, invalido(nil, "informe a razão social da empresa")
		}
		if err := s.Empresas.Criar(tx, emp); err != nil {
			_ = tx.Rollback()
			return nil, err
		}
	}
	res.Empresa = *emp

	res.Contatos = lo.Map(contatos, func(c ContatoRequest, _ int) empresa.Contato {
		return empresa.Contato{
			TenantID:  id.TenantID,
			EmpresaID: emp.ID,
			Nome:      strings.TrimSpace(c.Nome),
			Email:     strings.ToLower(strings.TrimSpace(c.Email)),
			Telefone:  c.Telefone,
			Cargo:     c.Cargo,
		}
	})
	if err := s.Empresas.CriarContatos(tx, res.Contatos); err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	titulo := strings.TrimSpace(req.Negocio.Titulo)
	if titulo == "" {
		titulo = emp.Nome()
	}
	res.Negocio = negocio.Negocio{
		TenantID:      id.TenantID,
		Titulo:        titulo,
		EmpresaID:     emp.ID,
		ContatoIDs:    lo.Map(res.Contatos, func(c empresa.Contato, _ int) string { return c.ID }),
		ServicoID:     termos.ServicoID,
		PlanoID:       termos.PlanoID,
		PrecoCustom:   termos.PrecoCustom,
		ValorSetup:    termos.ValorSetup,
		Desconto:      termos.Desconto,
		EtapaID:       etapaID,
		ResponsavelID: responsavel,
	}
	if err := s.Negocios.Repository.Criar(tx, &res.Negocio); err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	nota := interacao.Interacao{
		TenantID:  id.TenantID,
		NegocioID: res.Negocio.ID,
		AutorID:   id.UserID,
		Tipo:      interacao.TipoNota,
		Descricao: notaCriacao,
	}
	if err := s.Negocios.Interacoes.Registrar(tx, &nota); err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, ierr.WithError(err).WithHint("erro ao salvar negócio").Mark(ierr.ErrDatabase)
	}

	s.Negocios.Interacoes.Publicar(ctx, nota)
	if res.EmpresaExistente && s.Alertas != nil {
		if err := s.Alertas.EnviarAlertaCNPJDuplicado(ctx, cnpj); err != nil {
			s.Logger.Warnw("falha ao enviar alerta de CNPJ duplicado", "cnpj", cnpj, "error", err)
		}
	}
	s.Logger.Infow("negócio cadastrado", "tenant", id.TenantID, "negocio", res.Negocio.ID, "empresaExistente", res.EmpresaExistente)
	return res, nil
}
