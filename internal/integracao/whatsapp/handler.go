package whatsapp

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/KromaEnergia/api-crm/internal/auth"
	ierr "github.com/KromaEnergia/api-crm/internal/errors"
	"github.com/KromaEnergia/api-crm/internal/interacao"
)

type EnviarRequest struct {
	Telefone  string `json:"telefone"`
	Mensagem  string `json:"mensagem"`
	NegocioID string `json:"negocioId"`
}

type Handler struct {
	Client     *Client
	Interacoes *interacao.Service
	Acesso     interacao.Acesso
}

func NewHandler(c *Client, interacoes *interacao.Service, acesso interacao.Acesso) *Handler {
	return &Handler{Client: c, Interacoes: interacoes, Acesso: acesso}
}

// POST /whatsapp/enviar. Com negocioId, o envio fica registrado como nota no negócio.
func (h *Handler) Enviar(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	var req EnviarRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "payload inválido", http.StatusBadRequest)
		return
	}
	if req.NegocioID != "" {
		if err := h.Acesso.VerificarAcesso(r.Context(), id, req.NegocioID); err != nil {
			ierr.WriteHTTP(w, err)
			return
		}
	}
	if err := h.Client.Enviar(r.Context(), req.Telefone, req.Mensagem); err != nil {
		ierr.WriteHTTP(w, err)
		return
	}

	if req.NegocioID != "" {
		nota := interacao.Interacao{
			TenantID:  id.TenantID,
			NegocioID: req.NegocioID,
			AutorID:   id.UserID,
			Tipo:      interacao.TipoNota,
			Descricao: fmt.Sprintf("WhatsApp enviado para %s: %s", req.Telefone, req.Mensagem),
		}
		if err := h.Interacoes.Adicionar(r.Context(), &nota); err != nil {
			h.Client.Logger.Warnw("mensagem enviada sem registro no negócio", "negocio", req.NegocioID, "error", err)
		}
	}
	w.WriteHeader(http.StatusNoContent)
}
