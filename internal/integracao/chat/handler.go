package chat

import (
	"encoding/json"
	"net/http"

	"github.com/KromaEnergia/api-crm/internal/auth"
	ierr "github.com/KromaEnergia/api-crm/internal/errors"
)

type ChatRequest struct {
	Mensagem  string `json:"mensagem"`
	SessionID string `json:"sessionId"`
}

type ChatResponse struct {
	Resposta string `json:"resposta"`
}

type Handler struct {
	Client *Client
}

func NewHandler(c *Client) *Handler {
	return &Handler{Client: c}
}

// POST /chat. O token é debitado pelo middleware antes de chegar aqui.
func (h *Handler) Enviar(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "payload inválido", http.StatusBadRequest)
		return
	}
	if req.SessionID == "" {
		req.SessionID = id.TenantID + ":" + id.UserID
	}
	resposta, err := h.Client.Perguntar(r.Context(), req.SessionID, req.Mensagem)
	if err != nil {
		ierr.WriteHTTP(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(ChatResponse{Resposta: resposta})
}
