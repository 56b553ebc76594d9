package servico

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

// GET /servicos
func (h *Handler) Listar(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	lista, err := h.Service.Listar(r.Context(), id.TenantID)
	if err != nil {
		ierr.WriteHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lista)
}

// GET /servicos/{id}
func (h *Handler) Buscar(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	s, err := h.Service.Buscar(r.Context(), id.TenantID, mux.Vars(r)["id"])
	if err != nil {
		ierr.WriteHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// POST /servicos (admin)
func (h *Handler) Criar(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	var req ServicoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "payload inválido", http.StatusBadRequest)
		return
	}
	s, err := h.Service.Criar(r.Context(), id.TenantID, req)
	if err != nil {
		ierr.WriteHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, s)
}

// PUT /servicos/{id} (admin)
func (h *Handler) Atualizar(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	var req ServicoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "payload inválido", http.StatusBadRequest)
		return
	}
	s, err := h.Service.Atualizar(r.Context(), id.TenantID, mux.Vars(r)["id"], req)
	if err != nil {
		ierr.WriteHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// DELETE /servicos/{id} (admin)
func (h *Handler) Deletar(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	if err := h.Service.Deletar(r.Context(), id.TenantID, mux.Vars(r)["id"]); err != nil {
		ierr.WriteHTTP(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
