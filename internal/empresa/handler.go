package empresa

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/KromaEnergia/api-crm/internal/auth"
	ierr "github.com/KromaEnergia/api-crm/internal/errors"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

// Consulta busca os dados cadastrais de um CNPJ na receita
type Consulta interface {
	Consultar(ctx context.Context, cnpj string) (*Empresa, error)
}

type Handler struct {
	DB         *gorm.DB
	Repository Repository
	Consulta   Consulta
}

func NewHandler(db *gorm.DB, consulta Consulta) *Handler {
	return &Handler{DB: db, Repository: NewRepository(), Consulta: consulta}
}

// ConsultaCNPJResponse indica se a empresa já existe no tenant
type ConsultaCNPJResponse struct {
	Existente bool     `json:"existente"`
	Empresa   *Empresa `json:"empresa"`
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// GET /empresas
func (h *Handler) Listar(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	lista, err := h.Repository.ListarPorTenant(h.DB.WithContext(r.Context()), id.TenantID)
	if err != nil {
		ierr.WriteHTTP(w, err)
		return
	}
	writeJSON(w, lista)
}

// GET /empresas/{id}
func (h *Handler) Buscar(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	e, err := h.Repository.BuscarPorID(h.DB.WithContext(r.Context()), id.TenantID, mux.Vars(r)["id"])
	if err != nil {
		ierr.WriteHTTP(w, err)
		return
	}
	writeJSON(w, e)
}

// GET /empresas/cnpj/{cnpj}
// Primeiro passo do cadastro: devolve a empresa do tenant ou os dados da receita.
func (h *Handler) ConsultarCNPJ(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	cnpj, err := NormalizarCNPJ(mux.Vars(r)["cnpj"])
	if err != nil {
		ierr.WriteHTTP(w, err)
		return
	}

	existente, err := h.Repository.BuscarPorCNPJ(h.DB.WithContext(r.Context()), id.TenantID, cnpj)
	if err != nil {
		ierr.WriteHTTP(w, err)
		return
	}
	if existente != nil {
		writeJSON(w, ConsultaCNPJResponse{Existente: true, Empresa: existente})
		return
	}

	e, err := h.Consulta.Consultar(r.Context(), cnpj)
	if err != nil {
		ierr.WriteHTTP(w, err)
		return
	}
	writeJSON(w, ConsultaCNPJResponse{Existente: false, Empresa: e})
}
