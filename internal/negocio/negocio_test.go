package negocio

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/KromaEnergia/api-crm/internal/auth"
	"github.com/KromaEnergia/api-crm/internal/empresa"
	ierr "github.com/KromaEnergia/api-crm/internal/errors"
	"github.com/KromaEnergia/api-crm/internal/etapa"
	"github.com/KromaEnergia/api-crm/internal/interacao"
	"github.com/KromaEnergia/api-crm/internal/logger"
	"github.com/KromaEnergia/api-crm/internal/metrics"
	"github.com/KromaEnergia/api-crm/internal/servico"
	"github.com/KromaEnergia/api-crm/internal/testutil"
	"github.com/KromaEnergia/api-crm/internal/usuario"
	"github.com/gorilla/mux"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	svc     *Service
	hub     *interacao.MemoryHub
	etapas  []etapa.Etapa
	empresa empresa.Empresa
	contato empresa.Contato
	servico servico.Servico
	admin   auth.Identidade
	vendas  auth.Identidade
	negocio Negocio
}

func novoFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t,
		&Negocio{}, &etapa.Etapa{}, &servico.Servico{}, &servico.Plano{},
		&empresa.Empresa{}, &empresa.Contato{}, &usuario.Usuario{}, &interacao.Interacao{})

	hub := interacao.NewMemoryHub()
	log := logger.NewNop()
	f := &fixture{
		svc: NewService(db, interacao.NewService(db, hub, log), metrics.NewCollector(), log),
		hub: hub,
	}

	f.etapas = etapa.Padrao("t1")
	require.NoError(t, db.Create(&f.etapas).Error)

	adm := usuario.Usuario{TenantID: "t1", Nome: "Admin", Email: "adm@kroma.com", Senha: "x", IsAdmin: true}
	ven := usuario.Usuario{TenantID: "t1", Nome: "Vendedor", Email: "ven@kroma.com", Senha: "x"}
	require.NoError(t, db.Create(&adm).Error)
	require.NoError(t, db.Create(&ven).Error)
	f.admin = auth.Identidade{UserID: adm.ID, TenantID: "t1", IsAdmin: true}
	f.vendas = auth.Identidade{UserID: ven.ID, TenantID: "t1"}

	f.empresa = empresa.Empresa{TenantID: "t1", CNPJ: "11222333000181", RazaoSocial: "Acme LTDA"}
	require.NoError(t, db.Omit("Contatos").Create(&f.empresa).Error)
	f.contato = empresa.Contato{TenantID: "t1", EmpresaID: f.empresa.ID, Nome: "João"}
	require.NoError(t, db.Create(&f.contato).Error)

	f.servico = servico.Servico{TenantID: "t1", Nome: "Gestão", Ativo: true, Planos: []servico.Plano{
		{Nome: "Básico", PrecoMensal: decimal.NewFromInt(100), Ativo: true},
		{Nome: "Pro", PrecoMensal: decimal.NewFromInt(250), Ativo: true},
	}}
	require.NoError(t, db.Create(&f.servico).Error)

	f.negocio = Negocio{
		TenantID:      "t1",
		Titulo:        "Acme",
		EmpresaID:     f.empresa.ID,
		ContatoIDs:    []string{f.contato.ID},
		ServicoID:     f.servico.ID,
		PlanoID:       f.servico.Planos[0].ID,
		EtapaID:       f.etapas[0].ID,
		ResponsavelID: ven.ID,
	}
	require.NoError(t, f.svc.Repository.Criar(db, &f.negocio))
	return f
}

func (f *fixture) interacoes(t *testing.T) []interacao.Interacao {
	t.Helper()
	lista, err := f.svc.Interacoes.Listar(context.Background(), "t1", f.negocio.ID)
	require.NoError(t, err)
	return lista
}

func TestMoverEtapaRegistraEPublica(t *testing.T) {
	f := novoFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := f.hub.Subscribe(ctx, f.negocio.ID)
	require.NoError(t, err)

	n, err := f.svc.MoverEtapa(ctx, f.vendas, f.negocio.ID, f.etapas[1].ID)
	require.NoError(t, err)
	assert.Equal(t, f.etapas[1].ID, n.EtapaID)

	lista := f.interacoes(t)
	require.Len(t, lista, 1)
	assert.Equal(t, interacao.TipoMudancaEtapa, lista[0].Tipo)
	assert.Equal(t, "De Mapeada para Em Contato", lista[0].Descricao)
	assert.Equal(t, f.vendas.UserID, lista[0].AutorID)

	select {
	case ev := <-ch:
		assert.Equal(t, lista[0].ID, ev.ID)
	case <-time.After(time.Second):
		t.Fatal("evento não publicado")
	}
	assert.Equal(t, 1.0, promtest.ToFloat64(f.svc.Metrics.StageMoves))
}

func TestMoverEtapaInexistente(t *testing.T) {
	f := novoFixture(t)
	ctx := context.Background()

	_, err := f.svc.MoverEtapa(ctx, f.vendas, f.negocio.ID, "nao-existe")
	require.Error(t, err)
	assert.True(t, ierr.IsNotFound(err))

	n, err := f.svc.Buscar(ctx, f.vendas, f.negocio.ID)
	require.NoError(t, err)
	assert.Equal(t, f.etapas[0].ID, n.EtapaID)
	assert.Empty(t, f.interacoes(t))
	assert.Equal(t, 0.0, promtest.ToFloat64(f.svc.Metrics.StageMoves))
}

func TestMoverEtapaSemEtapaAnterior(t *testing.T) {
	f := novoFixture(t)
	require.NoError(t, f.svc.DB.Model(&Negocio{}).Where("id = ?", f.negocio.ID).Update("etapa_id", "apagada").Error)

	_, err := f.svc.MoverEtapa(context.Background(), f.admin, f.negocio.ID, f.etapas[3].ID)
	require.NoError(t, err)
	assert.Equal(t, "De Sem etapa para Fechada", f.interacoes(t)[0].Descricao)
}

func TestEscopoPorResponsavel(t *testing.T) {
	f := novoFixture(t)
	ctx := context.Background()
	outro := auth.Identidade{UserID: "u-outro", TenantID: "t1"}

	_, err := f.svc.Buscar(ctx, outro, f.negocio.ID)
	assert.True(t, ierr.IsPermissionDenied(err))
	_, err = f.svc.MoverEtapa(ctx, outro, f.negocio.ID, f.etapas[1].ID)
	assert.True(t, ierr.IsPermissionDenied(err))
	assert.True(t, ierr.IsPermissionDenied(f.svc.VerificarAcesso(ctx, outro, f.negocio.ID)))

	lista, err := f.svc.Listar(ctx, outro)
	require.NoError(t, err)
	assert.Empty(t, lista)

	lista, err = f.svc.Listar(ctx, f.admin)
	require.NoError(t, err)
	assert.Len(t, lista, 1)

	_, err = f.svc.Buscar(ctx, auth.Identidade{UserID: "x", TenantID: "t2", IsAdmin: true}, f.negocio.ID)
	assert.True(t, ierr.IsNotFound(err), "outro tenant não enxerga")
}

func TestAtualizarRegistraMudancas(t *testing.T) {
	f := novoFixture(t)
	ctx := context.Background()
	pro := f.servico.Planos[1].ID

	req := AtualizarRequest{
		Titulo: "Acme Expansão",
		Termos: Termos{ServicoID: f.servico.ID, PlanoID: pro, ValorSetup: decimal.NewFromInt(500), Desconto: decimal.NewFromInt(10)},
	}
	_, err := f.svc.Atualizar(ctx, f.vendas, f.negocio.ID, req)
	require.Error(t, err)
	assert.True(t, ierr.IsPermissionDenied(err), "desconto é só de admin")

	n, err := f.svc.Atualizar(ctx, f.admin, f.negocio.ID, req)
	require.NoError(t, err)
	assert.Equal(t, "Acme Expansão", n.Titulo)
	assert.Equal(t, []string{f.contato.ID}, n.ContatoIDs, "contatos omitidos são mantidos")
	assert.Equal(t, f.vendas.UserID, n.ResponsavelID)

	descricoes := make([]string, 0)
	for _, i := range f.interacoes(t) {
		assert.Equal(t, interacao.TipoMudancaCampo, i.Tipo)
		descricoes = append(descricoes, i.Descricao)
	}
	assert.ElementsMatch(t, []string{
		`Título alterado de "Acme" para "Acme Expansão"`,
		"Plano alterado de Básico para Pro",
		"Valor de setup alterado de 0.00 para 500.00",
		"Desconto alterado de 0% para 10%",
	}, descricoes)

	// sem mudança não grava interação
	req.Titulo = ""
	_, err = f.svc.Atualizar(ctx, f.admin, f.negocio.ID, req)
	require.NoError(t, err)
	assert.Len(t, f.interacoes(t), 4)
}

func TestAtualizarValidaContatosETermos(t *testing.T) {
	f := novoFixture(t)
	ctx := context.Background()

	outra := empresa.Empresa{TenantID: "t1", CNPJ: "11444777000161", RazaoSocial: "Outra"}
	require.NoError(t, f.svc.DB.Omit("Contatos").Create(&outra).Error)
	estranho := empresa.Contato{TenantID: "t1", EmpresaID: outra.ID, Nome: "Maria"}
	require.NoError(t, f.svc.DB.Create(&estranho).Error)

	_, err := f.svc.Atualizar(ctx, f.vendas, f.negocio.ID, AtualizarRequest{ContatoIDs: []string{estranho.ID}})
	assert.True(t, ierr.IsNotFound(err))

	_, err = f.svc.Atualizar(ctx, f.vendas, f.negocio.ID, AtualizarRequest{ContatoIDs: []string{}})
	assert.True(t, ierr.IsValidation(err))

	_, err = f.svc.Atualizar(ctx, f.vendas, f.negocio.ID, AtualizarRequest{
		Termos: Termos{ServicoID: f.servico.ID, PlanoID: "plano-de-outro"},
	})
	assert.True(t, ierr.IsNotFound(err))

	_, err = f.svc.Atualizar(ctx, f.vendas, f.negocio.ID, AtualizarRequest{ResponsavelID: f.admin.UserID})
	assert.True(t, ierr.IsPermissionDenied(err))

	n, err := f.svc.Atualizar(ctx, f.admin, f.negocio.ID, AtualizarRequest{
		ResponsavelID: f.admin.UserID,
		Termos:        Termos{PlanoID: PlanoCustom, PrecoCustom: decimal.NewFromInt(80)},
	})
	require.NoError(t, err)
	assert.Equal(t, f.admin.UserID, n.ResponsavelID)

	dtos, err := f.svc.Detalhar(ctx, "t1", []Negocio{*n})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(80).Equal(dtos[0].PrecoMensal))
}

func TestDetalhar(t *testing.T) {
	f := novoFixture(t)
	ctx := context.Background()

	dtos, err := f.svc.Detalhar(ctx, "t1", []Negocio{f.negocio})
	require.NoError(t, err)
	require.Len(t, dtos, 1)
	assert.Equal(t, "Mapeada", dtos[0].EtapaNome)
	assert.Equal(t, etapa.EmAndamento, dtos[0].Bucket)
	assert.True(t, decimal.NewFromInt(100).Equal(dtos[0].PrecoMensal))

	fechado := f.negocio
	fechado.EtapaID = f.etapas[3].ID
	orfao := f.negocio
	orfao.EtapaID = "apagada"
	dtos, err = f.svc.Detalhar(ctx, "t1", []Negocio{fechado, orfao})
	require.NoError(t, err)
	assert.Equal(t, etapa.Ganho, dtos[0].Bucket)
	assert.Equal(t, SemEtapa, dtos[1].EtapaNome)
}

func TestRemoverEtapaReatribuiNegocios(t *testing.T) {
	f := novoFixture(t)
	ctx := context.Background()
	_, err := f.svc.MoverEtapa(ctx, f.admin, f.negocio.ID, f.etapas[2].ID)
	require.NoError(t, err)

	etapas := etapa.NewService(f.svc.DB, f.svc, f.svc.Logger)
	require.NoError(t, etapas.Remover(ctx, "t1", f.admin.UserID, f.etapas[2].ID))

	n, err := f.svc.Buscar(ctx, f.admin, f.negocio.ID)
	require.NoError(t, err)
	assert.Equal(t, f.etapas[0].ID, n.EtapaID)
	assert.Equal(t, "De Proposta Enviada para Mapeada (etapa removida)", f.interacoes(t)[0].Descricao)
}

func TestServicoEmUsoNaoRemove(t *testing.T) {
	f := novoFixture(t)
	servicos := servico.NewService(f.svc.DB, f.svc, f.svc.Logger)

	err := servicos.Deletar(context.Background(), "t1", f.servico.ID)
	require.Error(t, err)
	assert.True(t, ierr.IsInvariantViolation(err))
}

func TestHandlerMoverEtapa(t *testing.T) {
	f := novoFixture(t)
	h := NewHandler(f.svc)
	r := mux.NewRouter()
	r.HandleFunc("/negocios", h.Listar).Methods(http.MethodGet)
	r.HandleFunc("/negocios/{id}/etapa", h.MoverEtapa).Methods(http.MethodPatch)

	do := func(method, path string, body any) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		if body != nil {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
		req := httptest.NewRequest(method, path, &buf)
		req = req.WithContext(auth.WithIdentidade(req.Context(), f.vendas))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	rec := do(http.MethodPatch, "/negocios/"+f.negocio.ID+"/etapa", MoverRequest{EtapaID: f.etapas[4].ID})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var dto NegocioDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dto))
	assert.Equal(t, "Perdida", dto.EtapaNome)
	assert.Equal(t, etapa.Perdido, dto.Bucket)

	rec = do(http.MethodPatch, "/negocios/"+f.negocio.ID+"/etapa", MoverRequest{EtapaID: "nao-existe"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(http.MethodPatch, "/negocios/"+f.negocio.ID+"/etapa", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(http.MethodGet, "/negocios", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var lista []NegocioDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &lista))
	assert.Len(t, lista, 1)
}
