package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"

	ierr "github.com/KromaEnergia/api-crm/internal/errors"
	"github.com/KromaEnergia/api-crm/internal/httpclient"
	"github.com/KromaEnergia/api-crm/internal/logger"
)

// Fallback é devolvido quando o webhook responde num formato desconhecido
const Fallback = "Desculpe, não consegui entender a resposta do assistente. Tente novamente."

type pedido struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId"`
}

type saida struct {
	Output  *string `json:"output"`
	Message *string `json:"message"`
}

func (s saida) texto() (string, bool) {
	switch {
	case s.Output != nil:
		return *s.Output, true
	case s.Message != nil:
		return *s.Message, true
	}
	return "", false
}

type Client struct {
	HTTP   httpclient.Client
	URL    string
	Logger *logger.Logger
}

func NewClient(hc httpclient.Client, url string, log *logger.Logger) *Client {
	return &Client{HTTP: hc, URL: url, Logger: log}
}

// Perguntar envia a mensagem ao webhook do assistente e devolve o texto da resposta
func (c *Client) Perguntar(ctx context.Context, sessionID, mensagem string) (string, error) {
	mensagem = strings.TrimSpace(mensagem)
	if mensagem == "" {
		return "", ierr.NewError("mensagem vazia").WithHint("mensagem obrigatória").Mark(ierr.ErrValidation)
	}
	if c.URL == "" {
		return "", ierr.NewError("chat_webhook_url vazio").
			WithHint("assistente não configurado").
			Mark(ierr.ErrExternalService)
	}

	body, err := json.Marshal(pedido{Message: mensagem, SessionID: sessionID})
	if err != nil {
		return "", ierr.WithError(err).Mark(ierr.ErrSystem)
	}
	resp, err := c.HTTP.Send(ctx, &httpclient.Request{Method: http.MethodPost, URL: c.URL, Body: body})
	if err != nil {
		return "", err
	}

	texto, ok := Extrair(resp.Body)
	if !ok {
		c.Logger.Warnw("resposta do assistente em formato desconhecido", "session", sessionID, "tamanho", len(resp.Body))
	}
	return texto, nil
}

// Extrair aceita [{output}], {output}, {message} ou texto puro.
// JSON inválido ou sem esses campos vira Fallback com ok=false.
func Extrair(body []byte) (string, bool) {
	b := bytes.TrimSpace(body)
	if len(b) == 0 {
		return Fallback, false
	}

	switch b[0] {
	case '[':
		var lista []saida
		if err := json.Unmarshal(b, &lista); err != nil || len(lista) == 0 {
			return Fallback, false
		}
		if t, ok := lista[0].texto(); ok {
			return t, true
		}
	case '{':
		var s saida
		if err := json.Unmarshal(b, &s); err != nil {
			return Fallback, false
		}
		if t, ok := s.texto(); ok {
			return t, true
		}
	case '"':
		var t string
		if err := json.Unmarshal(b, &t); err == nil {
			return t, true
		}
	default:
		return string(b), true
	}
	return Fallback, false
}
