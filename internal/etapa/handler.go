package etapa

import (
	"encoding/json"
	"net/http"

	"github.com/KromaEnergia/api-crm/internal/auth"
	ierr "github.com/KromaEnergia/api-crm/internal/errors"
	"github.com/gorilla/mux"
)

type Handler struct {
	Service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{Service: s}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// GET /etapas
func (h *Handler) Listar(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	etapas, err := h.Service.Listar(r.Context(), id.TenantID)
	if err != nil {
		ierr.WriteHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, etapas)
}

// POST /etapas
func (h *Handler) Criar(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	var req EtapaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "payload inválido", http.StatusBadRequest)
		return
	}
	nova, err := h.Service.Adicionar(r.Context(), id.TenantID, req.Nome, req.Cor)
	if err != nil {
		ierr.WriteHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, nova)
}

// PUT /etapas/{id}
func (h *Handler) Atualizar(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	var req EtapaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "payload inválido", http.StatusBadRequest)
		return
	}
	e, err := h.Service.Renomear(r.Context(), id.TenantID, mux.Vars(r)["id"], req.Nome, req.Cor)
	if err != nil {
		ierr.WriteHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// POST /etapas/{id}/mover
func (h *Handler) Mover(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	var req MoverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.AlvoID == "" {
		http.Error(w, "alvoId obrigatório", http.StatusBadRequest)
		return
	}
	etapas, err := h.Service.Mover(r.Context(), id.TenantID, mux.Vars(r)["id"], req.AlvoID)
	if err != nil {
		ierr.WriteHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, etapas)
}

// DELETE /etapas/{id}
func (h *Handler) Deletar(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	if err := h.Service.Remover(r.Context(), id.TenantID, id.UserID, mux.Vars(r)["id"]); err != nil {
		ierr.WriteHTTP(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
