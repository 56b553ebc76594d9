package notificacao

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/KromaEnergia/api-crm/internal/httpclient"
	"github.com/KromaEnergia/api-crm/internal/logger"
)

const mensagemCNPJDuplicado = "Alerta: novo negócio iniciado com CNPJ já existente"

type alerta struct {
	Mensagem string `json:"mensagem"`
	CNPJ     string `json:"cnpj"`
}

// Webhook envia alertas operacionais. URL vazia desliga o envio.
type Webhook struct {
	HTTP   httpclient.Client
	URL    string
	Logger *logger.Logger
}

func NewWebhook(hc httpclient.Client, url string, log *logger.Logger) *Webhook {
	return &Webhook{HTTP: hc, URL: url, Logger: log}
}

func (w *Webhook) EnviarAlertaCNPJDuplicado(ctx context.Context, cnpj string) error {
	if w.URL == "" {
		w.Logger.Debugw("webhook de alerta desligado", "cnpj", cnpj)
		return nil
	}
	body, err := json.Marshal(alerta{Mensagem: mensagemCNPJDuplicado, CNPJ: cnpj})
	if err != nil {
		return err
	}
	_, err = w.HTTP.Send(ctx, &httpclient.Request{Method: http.MethodPost, URL: w.URL, Body: body})
	return err
}
