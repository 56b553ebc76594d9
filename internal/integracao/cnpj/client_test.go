package cnpj

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/KromaEnergia/api-crm/internal/cache"
	ierr "github.com/KromaEnergia/api-crm/internal/errors"
	"github.com/KromaEnergia/api-crm/internal/httpclient"
	"github.com/KromaEnergia/api-crm/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const brasilAPI = `{
  "cnpj": "11222333000181",
  "razao_social": "KROMA ENERGIA LTDA",
  "nome_fantasia": "KROMA",
  "descricao_tipo_de_logradouro": "RUA",
  "logradouro": "DAS FLORES",
  "numero": "100",
  "bairro": "CENTRO",
  "municipio": "RECIFE",
  "uf": "pe",
  "cep": "50000-000",
  "ddd_telefone_1": "(81) 3333-4444",
  "email": "Contato@Kroma.com.br",
  "descricao_situacao_cadastral": "ATIVA",
  "cnae_fiscal_descricao": "Comércio de energia elétrica"
}`

func newClient(t *testing.T, handler http.HandlerFunc) (*Client, *int) {
	t.Helper()
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return NewClient(httpclient.NewDefaultClient(time.Second), srv.URL+"/", cache.NewMemoryCache(time.Minute), time.Hour, logger.NewNop()), &calls
}

func TestConsultarMapeiaECacheia(t *testing.T) {
	c, calls := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/11222333000181", r.URL.Path)
		_, _ = w.Write([]byte(brasilAPI))
	})

	e, err := c.Consultar(context.Background(), "11222333000181")
	require.NoError(t, err)
	assert.Equal(t, "KROMA ENERGIA LTDA", e.RazaoSocial)
	assert.Equal(t, "KROMA", e.NomeFantasia)
	assert.Equal(t, "RUA DAS FLORES", e.Logradouro)
	assert.Equal(t, "RECIFE", e.Cidade)
	assert.Equal(t, "PE", e.UF)
	assert.Equal(t, "50000000", e.CEP)
	assert.Equal(t, "8133334444", e.Telefone)
	assert.Equal(t, "contato@kroma.com.br", e.Email)
	assert.Equal(t, "ATIVA", e.Situacao)

	_, err = c.Consultar(context.Background(), "11222333000181")
	require.NoError(t, err)
	assert.Equal(t, 1, *calls, "segunda consulta vem do cache")
}

func TestConsultarNaoEncontrado(t *testing.T) {
	c, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	_, err := c.Consultar(context.Background(), "11222333000181")
	assert.True(t, ierr.IsNotFound(err))
}

func TestConsultarFalhaExterna(t *testing.T) {
	c, calls := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	_, err := c.Consultar(context.Background(), "11222333000181")
	assert.True(t, ierr.IsExternalService(err))

	_, err = c.Consultar(context.Background(), "11222333000181")
	assert.Error(t, err)
	assert.Equal(t, 2, *calls, "falha não vai para o cache")
}

func TestConsultarJSONInvalido(t *testing.T) {
	c, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>`))
	})
	_, err := c.Consultar(context.Background(), "11222333000181")
	assert.True(t, ierr.IsExternalService(err))
}

func TestJSONInvalidoNaoVaiParaOCache(t *testing.T) {
	c, calls := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`nao-json`))
	})
	_, err := c.Consultar(context.Background(), "11222333000181")
	require.Error(t, err)
	_, err = c.Consultar(context.Background(), "11222333000181")
	require.Error(t, err)
	assert.Equal(t, 2, *calls)
}
