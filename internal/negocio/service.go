package negocio

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/KromaEnergia/api-crm/internal/auth"
	"github.com/KromaEnergia/api-crm/internal/empresa"
	ierr "github.com/KromaEnergia/api-crm/internal/errors"
	"github.com/KromaEnergia/api-crm/internal/etapa"
	"github.com/KromaEnergia/api-crm/internal/interacao"
	"github.com/KromaEnergia/api-crm/internal/logger"
	"github.com/KromaEnergia/api-crm/internal/metrics"
	"github.com/KromaEnergia/api-crm/internal/servico"
	"github.com/KromaEnergia/api-crm/internal/usuario"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

// SemEtapa é o rótulo de negócios cuja etapa não existe mais
const SemEtapa = "Sem etapa"

type Service struct {
	DB         *gorm.DB
	Repository Repository
	Etapas     etapa.Repository
	Servicos   servico.Repository
	Empresas   empresa.Repository
	Usuarios   usuario.Repository
	Interacoes *interacao.Service
	Metrics    *metrics.Collector
	Logger     *logger.Logger
}

func NewService(db *gorm.DB, interacoes *interacao.Service, m *metrics.Collector, log *logger.Logger) *Service {
	return &Service{
		DB:         db,
		Repository: NewRepository(),
		Etapas:     etapa.NewRepository(),
		Servicos:   servico.NewRepository(),
		Empresas:   empresa.NewRepository(),
		Usuarios:   usuario.NewRepository(),
		Interacoes: interacoes,
		Metrics:    m,
		Logger:     log,
	}
}

// EscopoDe: admin enxerga o tenant inteiro, os demais só os próprios negócios
func EscopoDe(id auth.Identidade) Escopo {
	if id.IsAdmin {
		return Escopo{TenantID: id.TenantID}
	}
	return Escopo{TenantID: id.TenantID, ResponsavelID: id.UserID}
}

func (s *Service) buscarVisivel(db *gorm.DB, id auth.Identidade, negocioID string) (*Negocio, error) {
	n, err := s.Repository.BuscarPorID(db, id.TenantID, negocioID)
	if err != nil {
		return nil, err
	}
	if !id.IsAdmin && n.ResponsavelID != id.UserID {
		return nil, ierr.NewErrorf("negócio %s de outro responsável", negocioID).
			WithHint("acesso negado").
			Mark(ierr.ErrPermissionDenied)
	}
	return n, nil
}

// VerificarAcesso atende o histórico de interações
func (s *Service) VerificarAcesso(ctx context.Context, id auth.Identidade, negocioID string) error {
	_, err := s.buscarVisivel(s.DB.WithContext(ctx), id, negocioID)
	return err
}

func (s *Service) Buscar(ctx context.Context, id auth.Identidade, negocioID string) (*Negocio, error) {
	return s.buscarVisivel(s.DB.WithContext(ctx), id, negocioID)
}

func (s *Service) Listar(ctx context.Context, id auth.Identidade) ([]Negocio, error) {
	return s.Repository.Listar(s.DB.WithContext(ctx), EscopoDe(id))
}

// Detalhar resolve nome e bucket da etapa e o preço mensal de cada negócio
func (s *Service) Detalhar(ctx context.Context, tenantID string, lista []Negocio) ([]NegocioDTO, error) {
	db := s.DB.WithContext(ctx)
	etapas, err := s.Etapas.ListarPorTenant(db, tenantID)
	if err != nil {
		return nil, err
	}
	catalogo, err := s.Servicos.ListarPorTenant(db, tenantID)
	if err != nil {
		return nil, err
	}
	porID := lo.KeyBy(etapas, func(e etapa.Etapa) string { return e.ID })

	out := make([]NegocioDTO, 0, len(lista))
	for _, n := range lista {
		dto := NegocioDTO{Negocio: n, EtapaNome: SemEtapa, Bucket: etapa.EmAndamento, PrecoMensal: n.PrecoMensal(catalogo)}
		if e, ok := porID[n.EtapaID]; ok {
			dto.EtapaNome = e.Nome
			dto.Bucket = etapa.Classificar(e.Nome)
		}
		out = append(out, dto)
	}
	return out, nil
}

// ValidarContatos exige contatos do tenant e da empresa do negócio
func (s *Service) ValidarContatos(db *gorm.DB, tenantID, empresaID string, ids []string) error {
	ids = lo.Uniq(ids)
	contatos, err := s.Empresas.ListarContatos(db, tenantID, ids)
	if err != nil {
		return err
	}
	validos := lo.CountBy(contatos, func(c empresa.Contato) bool { return c.EmpresaID == empresaID })
	if validos != len(ids) {
		return ierr.NewError("contato fora da empresa").
			WithHint("contato não encontrado na empresa").
			Mark(ierr.ErrNotFound)
	}
	return nil
}

// ValidarResponsavel: só admin escolhe outro responsável, que precisa ser do tenant
func (s *Service) ValidarResponsavel(db *gorm.DB, id auth.Identidade, responsavelID string) error {
	if responsavelID == id.UserID {
		return nil
	}
	if !id.IsAdmin {
		return ierr.NewError("responsável alterado por não-admin").
			WithHint("apenas administradores podem alterar o responsável").
			Mark(ierr.ErrPermissionDenied)
	}
	_, err := s.Usuarios.BuscarPorID(db, id.TenantID, responsavelID)
	return err
}

// Atualizar grava os novos termos e registra uma interação field_change por campo alterado
func (s *Service) Atualizar(ctx context.Context, id auth.Identidade, negocioID string, req AtualizarRequest) (*Negocio, error) {
	var (
		atualizado *Negocio
		criadas    []interacao.Interacao
	)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		atual, err := s.buscarVisivel(tx, id, negocioID)
		if err != nil {
			return err
		}
		if err := ValidarTermos(tx, s.Servicos, id.TenantID, id.IsAdmin, &req.Termos, atual.Desconto); err != nil {
			return err
		}
		if req.ContatoIDs == nil {
			req.ContatoIDs = atual.ContatoIDs
		}
		if len(req.ContatoIDs) == 0 {
			return invalido("o negócio precisa de pelo menos um contato")
		}
		if err := s.ValidarContatos(tx, id.TenantID, atual.EmpresaID, req.ContatoIDs); err != nil {
			return err
		}
		if req.ResponsavelID == "" {
			req.ResponsavelID = atual.ResponsavelID
		}
		if req.ResponsavelID != atual.ResponsavelID {
			if err := s.ValidarResponsavel(tx, id, req.ResponsavelID); err != nil {
				return err
			}
		}

		novo := *atual
		if t := strings.TrimSpace(req.Titulo); t != "" {
			novo.Titulo = t
		}
		novo.ContatoIDs = lo.Uniq(req.ContatoIDs)
		novo.ResponsavelID = req.ResponsavelID
		novo.ServicoID = req.ServicoID
		novo.PlanoID = req.PlanoID
		novo.PrecoCustom = req.PrecoCustom
		novo.ValorSetup = req.ValorSetup
		novo.Desconto = req.Desconto

		catalogo, err := s.Servicos.ListarPorTenant(tx, id.TenantID)
		if err != nil {
			return err
		}
		descricoes := mudancas(*atual, novo, catalogo)
		if len(descricoes) == 0 {
			atualizado = atual
			return nil
		}

		if err := s.Repository.Salvar(tx, &novo); err != nil {
			return err
		}
		for _, d := range descricoes {
			i := interacao.Interacao{
				TenantID:  id.TenantID,
				NegocioID: novo.ID,
				AutorID:   id.UserID,
				Tipo:      interacao.TipoMudancaCampo,
				Descricao: d,
			}
			if err := s.Interacoes.Registrar(tx, &i); err != nil {
				return err
			}
			criadas = append(criadas, i)
		}
		atualizado = &novo
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.Interacoes.Publicar(ctx, criadas...)
	return atualizado, nil
}

// MoverEtapa troca a etapa e registra "De X para Y". A etapa destino precisa existir.
func (s *Service) MoverEtapa(ctx context.Context, id auth.Identidade, negocioID, etapaID string) (*Negocio, error) {
	var (
		movido *Negocio
		evento interacao.Interacao
	)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		n, err := s.buscarVisivel(tx, id, negocioID)
		if err != nil {
			return err
		}
		nova, err := s.Etapas.BuscarPorID(tx, id.TenantID, etapaID)
		if err != nil {
			return err
		}
		anterior := SemEtapa
		if e, err := s.Etapas.BuscarPorID(tx, id.TenantID, n.EtapaID); err == nil {
			anterior = e.Nome
		} else if !ierr.IsNotFound(err) {
			return err
		}

		if err := s.Repository.AtualizarEtapa(tx, id.TenantID, n.ID, nova.ID); err != nil {
			return err
		}
		evento = interacao.Interacao{
			TenantID:  id.TenantID,
			NegocioID: n.ID,
			AutorID:   id.UserID,
			Tipo:      interacao.TipoMudancaEtapa,
			Descricao: fmt.Sprintf("De %s para %s", anterior, nova.Nome),
		}
		if err := s.Interacoes.Registrar(tx, &evento); err != nil {
			return err
		}
		movido, err = s.Repository.BuscarPorID(tx, id.TenantID, n.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.Interacoes.Publicar(ctx, evento)
	if s.Metrics != nil {
		s.Metrics.RecordStageMove()
	}
	s.Logger.Infow("negócio movido", "tenant", id.TenantID, "negocio", negocioID, "etapa", etapaID)
	return movido, nil
}

// ReatribuirEtapa leva os negócios da etapa removida para o destino (etapa.Reatribuidor)
func (s *Service) ReatribuirEtapa(ctx context.Context, tx *gorm.DB, tenantID, autorID string, de, para etapa.Etapa) (func(), error) {
	lista, err := s.Repository.ListarPorEtapa(tx, tenantID, de.ID)
	if err != nil {
		return nil, err
	}
	criadas := make([]interacao.Interacao, 0, len(lista))
	for _, n := range lista {
		if err := s.Repository.AtualizarEtapa(tx, tenantID, n.ID, para.ID); err != nil {
			return nil, err
		}
		i := interacao.Interacao{
			TenantID:  tenantID,
			NegocioID: n.ID,
			AutorID:   autorID,
			Tipo:      interacao.TipoMudancaEtapa,
			Descricao: fmt.Sprintf("De %s para %s (etapa removida)", de.Nome, para.Nome),
		}
		if err := s.Interacoes.Registrar(tx, &i); err != nil {
			return nil, err
		}
		criadas = append(criadas, i)
	}
	return func() {
		s.Interacoes.Publicar(ctx, criadas...)
		if len(criadas) > 0 {
			s.Logger.Infow("negócios reatribuídos", "tenant", tenantID, "de", de.ID, "para", para.ID, "total", len(criadas))
		}
	}, nil
}

func (s *Service) ContarPorServico(db *gorm.DB, tenantID, servicoID string) (int64, error) {
	return s.Repository.ContarPorServico(db, tenantID, servicoID)
}

func (s *Service) ContarPorPlano(db *gorm.DB, tenantID, planoID string) (int64, error) {
	return s.Repository.ContarPorPlano(db, tenantID, planoID)
}

func nomeServico(catalogo []servico.Servico, id string) string {
	if id == "" {
		return "nenhum"
	}
	if s, ok := lo.Find(catalogo, func(s servico.Servico) bool { return s.ID == id }); ok {
		return s.Nome
	}
	return id
}

func nomePlano(catalogo []servico.Servico, servicoID, planoID string) string {
	switch planoID {
	case "":
		return "nenhum"
	case PlanoCustom:
		return "Personalizado"
	}
	for _, s := range catalogo {
		if s.ID == servicoID {
			if p, ok := s.Plano(planoID); ok {
				return p.Nome
			}
		}
	}
	return planoID
}

// mudancas descreve cada campo alterado entre antes e depois
func mudancas(antes, depois Negocio, catalogo []servico.Servico) []string {
	var out []string
	if antes.Titulo != depois.Titulo {
		out = append(out, fmt.Sprintf("Título alterado de %q para %q", antes.Titulo, depois.Titulo))
	}
	a, d := slices.Clone(antes.ContatoIDs), slices.Clone(depois.ContatoIDs)
	slices.Sort(a)
	slices.Sort(d)
	if !slices.Equal(a, d) {
		out = append(out, fmt.Sprintf("Contatos alterados (%d para %d)", len(antes.ContatoIDs), len(depois.ContatoIDs)))
	}
	if antes.ServicoID != depois.ServicoID {
		out = append(out, fmt.Sprintf("Serviço alterado de %s para %s", nomeServico(catalogo, antes.ServicoID), nomeServico(catalogo, depois.ServicoID)))
	}
	if antes.PlanoID != depois.PlanoID {
		out = append(out, fmt.Sprintf("Plano alterado de %s para %s",
			nomePlano(catalogo, antes.ServicoID, antes.PlanoID), nomePlano(catalogo, depois.ServicoID, depois.PlanoID)))
	}
	if !antes.PrecoCustom.Equal(depois.PrecoCustom) {
		out = append(out, fmt.Sprintf("Preço personalizado alterado de %s para %s", antes.PrecoCustom.StringFixed(2), depois.PrecoCustom.StringFixed(2)))
	}
	if !antes.ValorSetup.Equal(depois.ValorSetup) {
		out = append(out, fmt.Sprintf("Valor de setup alterado de %s para %s", antes.ValorSetup.StringFixed(2), depois.ValorSetup.StringFixed(2)))
	}
	if !antes.Desconto.Equal(depois.Desconto) {
		out = append(out, fmt.Sprintf("Desconto alterado de %s%% para %s%%", antes.Desconto.String(), depois.Desconto.String()))
	}
	if antes.ResponsavelID != depois.ResponsavelID {
		out = append(out, "Responsável alterado")
	}
	return out
}
