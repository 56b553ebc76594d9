package negocio

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

func (h *Handler) responder(w http.ResponseWriter, r *http.Request, tenantID string, lista ...Negocio) {
	dtos, err := h.Service.Detalhar(r.Context(), tenantID, lista)
	if err != nil {
		ierr.WriteHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dtos[0])
}

// GET /negocios
func (h *Handler) Listar(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	lista, err := h.Service.Listar(r.Context(), id)
	if err != nil {
		ierr.WriteHTTP(w, err)
		return
	}
	dtos, err := h.Service.Detalhar(r.Context(), id.TenantID, lista)
	if err != nil {
		ierr.WriteHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GET /negocios/{id}
func (h *Handler) Buscar(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	n, err := h.Service.Buscar(r.Context(), id, mux.Vars(r)["id"])
	if err != nil {
		ierr.WriteHTTP(w, err)
		return
	}
	h.responder(w, r, id.TenantID, *n)
}

// PUT /negocios/{id}
func (h *Handler) Atualizar(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	var req AtualizarRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "payload inválido", http.StatusBadRequest)
		return
	}
	n, err := h.Service.Atualizar(r.Context(), id, mux.Vars(r)["id"], req)
	if err != nil {
		ierr.WriteHTTP(w, err)
		return
	}
	h.responder(w, r, id.TenantID, *n)
}

// PATCH /negocios/{id}/etapa
func (h *Handler) MoverEtapa(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	var req MoverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.EtapaID == "" {
		http.Error(w, "etapaId obrigatório", http.StatusBadRequest)
		return
	}
	n, err := h.Service.MoverEtapa(r.Context(), id, mux.Vars(r)["id"], req.EtapaID)
	if err != nil {
		ierr.WriteHTTP(w, err)
		return
	}
	h.responder(w, r, id.TenantID, *n)
}
