package cadastro

import (
	"encoding/json"
	"net/http"

	"github.com/KromaEnergia/api-crm/internal/auth"
	ierr "github.com/KromaEnergia/api-crm/internal/errors"
)

type Handler struct {
	Service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{Service: s}
}

// POST /negocios
func (h *Handler) Criar(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	var req CadastroRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "payload inválido", http.StatusBadRequest)
		return
	}
	res, err := h.Service.Cadastrar(r.Context(), id, req)
	if err != nil {
		ierr.WriteHTTP(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(res)
}
