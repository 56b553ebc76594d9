package dashboard

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

// GET /dashboard
func (h *Handler) Obter(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	m, err := h.Service.Metricas(r.Context(), id)
	if err != nil {
		ierr.WriteHTTP(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(m)
}
