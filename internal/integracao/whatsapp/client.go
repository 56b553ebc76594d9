package whatsapp

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	ierr "github.com/KromaEnergia/api-crm/internal/errors"
	"github.com/KromaEnergia/api-crm/internal/httpclient"
	"github.com/KromaEnergia/api-crm/internal/logger"
	"github.com/KromaEnergia/api-crm/internal/utils"
	"golang.org/x/time/rate"
)

type mensagem struct {
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

// Client envia mensagens pela API de WhatsApp respeitando o limite local de envios
type Client struct {
	HTTP    httpclient.Client
	URL     string
	Token   string
	Limiter *rate.Limiter
	Logger  *logger.Logger
}

// NewClient com porSegundo <= 0 não limita
func NewClient(hc httpclient.Client, url, token string, porSegundo float64, log *logger.Logger) *Client {
	limite := rate.Inf
	if porSegundo > 0 {
		limite = rate.Limit(porSegundo)
	}
	return &Client{HTTP: hc, URL: url, Token: token, Limiter: rate.NewLimiter(limite, 1), Logger: log}
}

// NormalizarTelefone deixa só dígitos; exige DDD + número (10 ou mais dígitos)
func NormalizarTelefone(s string) (string, error) {
	tel := utils.SomenteDigitos(s)
	if len(tel) < 10 || len(tel) > 15 {
		return "", ierr.NewErrorf("telefone inválido: %q", s).
			WithHint("telefone inválido, informe DDD e número").
			Mark(ierr.ErrValidation)
	}
	return tel, nil
}

func (c *Client) Enviar(ctx context.Context, telefone, texto string) error {
	tel, err := NormalizarTelefone(telefone)
	if err != nil {
		return err
	}
	texto = strings.TrimSpace(texto)
	if texto == "" {
		return ierr.NewError("mensagem vazia").WithHint("mensagem obrigatória").Mark(ierr.ErrValidation)
	}
	if c.URL == "" {
		return ierr.NewError("whatsapp_url vazio").WithHint("WhatsApp não configurado").Mark(ierr.ErrExternalService)
	}
	if err := c.Limiter.Wait(ctx); err != nil {
		return ierr.WithError(err).
			WithHint("limite de envios atingido, tente novamente").
			Mark(ierr.ErrExternalService)
	}

	body, err := json.Marshal(mensagem{Phone: tel, Message: texto})
	if err != nil {
		return ierr.WithError(err).Mark(ierr.ErrSystem)
	}
	_, err = c.HTTP.Send(ctx, &httpclient.Request{
		Method:  http.MethodPost,
		URL:     c.URL,
		Headers: map[string]string{"Authorization": "Bearer " + c.Token},
		Body:    body,
	})
	if err != nil {
		c.Logger.Warnw("falha ao enviar whatsapp", "telefone", tel, "error", err)
		return err
	}
	return nil
}
