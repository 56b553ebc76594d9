package empresa

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/KromaEnergia/api-crm/internal/auth"
	ierr "github.com/KromaEnergia/api-crm/internal/errors"
	"github.com/KromaEnergia/api-crm/internal/testutil"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCNPJValido(t *testing.T) {
	assert.True(t, CNPJValido("11222333000181"))
	assert.False(t, CNPJValido("11222333000182"))
	assert.False(t, CNPJValido("11111111111111"))
	assert.False(t, CNPJValido("1122233300018"))
	assert.False(t, CNPJValido("1122233300018a"))

	cnpj, err := NormalizarCNPJ("11.222.333/0001-81")
	require.NoError(t, err)
	assert.Equal(t, "11222333000181", cnpj)

	_, err = NormalizarCNPJ("00.000.000/0000-01")
	assert.True(t, ierr.IsValidation(err))
}

func TestNome(t *testing.T) {
	assert.Equal(t, "Kroma", Empresa{RazaoSocial: "Kroma Energia LTDA", NomeFantasia: "Kroma"}.Nome())
	assert.Equal(t, "Kroma Energia LTDA", Empresa{RazaoSocial: "Kroma Energia LTDA"}.Nome())
}

func TestRepositoryPorTenant(t *testing.T) {
	db := testutil.NewDB(t, &Empresa{}, &Contato{})
	repo := NewRepository()

	e := &Empresa{TenantID: "t1", CNPJ: "11222333000181", RazaoSocial: "Kroma"}
	require.NoError(t, repo.Criar(db, e))
	contatos := []Contato{{TenantID: "t1", EmpresaID: e.ID, Nome: "Ana"}, {TenantID: "t1", EmpresaID: e.ID, Nome: "Bia"}}
	require.NoError(t, repo.CriarContatos(db, contatos))
	assert.NotEmpty(t, contatos[0].ID)

	got, err := repo.BuscarPorID(db, "t1", e.ID)
	require.NoError(t, err)
	assert.Len(t, got.Contatos, 2)

	achada, err := repo.BuscarPorCNPJ(db, "t1", "11222333000181")
	require.NoError(t, err)
	require.NotNil(t, achada)

	nenhuma, err := repo.BuscarPorCNPJ(db, "t2", "11222333000181")
	require.NoError(t, err)
	assert.Nil(t, nenhuma)

	_, err = repo.BuscarPorID(db, "t2", e.ID)
	assert.True(t, ierr.IsNotFound(err))

	// mesmo CNPJ em outro tenant é permitido
	require.NoError(t, repo.Criar(db, &Empresa{TenantID: "t2", CNPJ: "11222333000181"}))

	lista, err := repo.ListarContatos(db, "t1", []string{contatos[1].ID, "nao-existe"})
	require.NoError(t, err)
	require.Len(t, lista, 1)
	assert.Equal(t, "Bia", lista[0].Nome)
}

type consultaFake struct{ chamadas int }

func (c *consultaFake) Consultar(ctx context.Context, cnpj string) (*Empresa, error) {
	c.chamadas++
	return &Empresa{CNPJ: cnpj, RazaoSocial: "Da Receita"}, nil
}

func TestConsultarCNPJ(t *testing.T) {
	db := testutil.NewDB(t, &Empresa{}, &Contato{})
	fake := &consultaFake{}
	h := NewHandler(db, fake)
	require.NoError(t, h.Repository.Criar(db, &Empresa{TenantID: "t1", CNPJ: "11222333000181", RazaoSocial: "Já Cadastrada"}))

	r := mux.NewRouter()
	r.HandleFunc("/empresas/cnpj/{cnpj}", h.ConsultarCNPJ)

	get := func(tenant, cnpj string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/empresas/cnpj/"+cnpj, nil)
		req = req.WithContext(auth.WithIdentidade(req.Context(), auth.Identidade{UserID: "u", TenantID: tenant}))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	var resp ConsultaCNPJResponse
	rec := get("t1", "11222333000181")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Existente)
	assert.Equal(t, "Já Cadastrada", resp.Empresa.RazaoSocial)
	assert.Zero(t, fake.chamadas)

	rec = get("t2", "11222333000181")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Existente)
	assert.Equal(t, "Da Receita", resp.Empresa.RazaoSocial)
	assert.Equal(t, 1, fake.chamadas)

	rec = get("t1", "123")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
