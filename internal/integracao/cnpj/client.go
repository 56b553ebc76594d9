package cnpj

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/KromaEnergia/api-crm/internal/cache"
	"github.com/KromaEnergia/api-crm/internal/empresa"
	ierr "github.com/KromaEnergia/api-crm/internal/errors"
	"github.com/KromaEnergia/api-crm/internal/httpclient"
	"github.com/KromaEnergia/api-crm/internal/logger"
	"github.com/KromaEnergia/api-crm/internal/utils"
)

// resposta no formato da BrasilAPI (/api/cnpj/v1/{cnpj})
type resposta struct {
	CNPJ                       string `json:"cnpj"`
	RazaoSocial                string `json:"razao_social"`
	NomeFantasia               string `json:"nome_fantasia"`
	Logradouro                 string `json:"logradouro"`
	DescricaoTipoLogradouro    string `json:"descricao_tipo_de_logradouro"`
	Numero                     string `json:"numero"`
	Bairro                     string `json:"bairro"`
	Municipio                  string `json:"municipio"`
	UF                         string `json:"uf"`
	CEP                        string `json:"cep"`
	DDDTelefone1               string `json:"ddd_telefone_1"`
	Email                      string `json:"email"`
	DescricaoSituacaoCadastral string `json:"descricao_situacao_cadastral"`
	CNAEFiscalDescricao        string `json:"cnae_fiscal_descricao"`
}

type Client struct {
	HTTP    httpclient.Client
	BaseURL string
	Cache   cache.Cache
	TTL     time.Duration
	Logger  *logger.Logger
}

func NewClient(hc httpclient.Client, baseURL string, c cache.Cache, ttl time.Duration, log *logger.Logger) *Client {
	return &Client{HTTP: hc, BaseURL: strings.TrimRight(baseURL, "/"), Cache: c, TTL: ttl, Logger: log}
}

// Consultar devolve os dados cadastrais do CNPJ (14 dígitos), usando o cache quando possível
func (c *Client) Consultar(ctx context.Context, cnpj string) (*empresa.Empresa, error) {
	body, err := c.Cache.Get(ctx, cnpj)
	if err == nil {
		var r resposta
		if err := json.Unmarshal([]byte(body), &r); err == nil {
			return c.paraEmpresa(r, cnpj), nil
		}
	} else if !errors.Is(err, cache.ErrMiss) {
		c.Logger.Warnw("cache de cnpj indisponível", "error", err)
	}

	raw, err := c.buscar(ctx, cnpj)
	if err != nil {
		return nil, err
	}
	var r resposta
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, ierr.WithError(err).
			WithHint("resposta inválida da consulta de CNPJ").
			Mark(ierr.ErrExternalService)
	}
	if err := c.Cache.Set(ctx, cnpj, string(raw), c.TTL); err != nil {
		c.Logger.Warnw("falha ao gravar cache de cnpj", "error", err)
	}
	return c.paraEmpresa(r, cnpj), nil
}

func (c *Client) paraEmpresa(r resposta, cnpj string) *empresa.Empresa {
	e := mapear(r)
	if e.CNPJ == "" {
		e.CNPJ = cnpj
	}
	return e
}

func (c *Client) buscar(ctx context.Context, cnpj string) ([]byte, error) {
	resp, err := c.HTTP.Send(ctx, &httpclient.Request{
		Method:  http.MethodGet,
		URL:     c.BaseURL + "/" + cnpj,
		Headers: map[string]string{"Accept": "application/json"},
	})
	if err != nil {
		if httpclient.StatusCode(err) == http.StatusNotFound {
			return nil, ierr.WithError(err).
				WithHint("CNPJ não encontrado na receita").
				Mark(ierr.ErrNotFound)
		}
		return nil, err
	}
	return resp.Body, nil
}

func mapear(r resposta) *empresa.Empresa {
	logradouro := strings.TrimSpace(r.Logradouro)
	if r.DescricaoTipoLogradouro != "" && !strings.HasPrefix(strings.ToUpper(logradouro), strings.ToUpper(r.DescricaoTipoLogradouro)) {
		logradouro = strings.TrimSpace(r.DescricaoTipoLogradouro + " " + logradouro)
	}
	return &empresa.Empresa{
		CNPJ:               utils.SomenteDigitos(r.CNPJ),
		RazaoSocial:        strings.TrimSpace(r.RazaoSocial),
		NomeFantasia:       strings.TrimSpace(r.NomeFantasia),
		Logradouro:         logradouro,
		Numero:             r.Numero,
		Bairro:             r.Bairro,
		Cidade:             r.Municipio,
		UF:                 strings.ToUpper(r.UF),
		CEP:                utils.SomenteDigitos(r.CEP),
		Telefone:           utils.SomenteDigitos(r.DDDTelefone1),
		Email:              strings.ToLower(strings.TrimSpace(r.Email)),
		Situacao:           r.DescricaoSituacaoCadastral,
		AtividadePrincipal: r.CNAEFiscalDescricao,
	}
}
