package usuario

import (
	"encoding/json"
	"net/http"

	"github.com/KromaEnergia/api-crm/internal/auth"
	ierr "github.com/KromaEnergia/api-crm/internal/errors"
	"github.com/KromaEnergia/api-crm/internal/logger"
	"github.com/KromaEnergia/api-crm/internal/utils"
	"gorm.io/gorm"
)

type Handler struct {
	DB         *gorm.DB
	Repository Repository
	Sessions   *auth.Sessions
	Logger     *logger.Logger
}

func NewHandler(db *gorm.DB, sessions *auth.Sessions, log *logger.Logger) *Handler {
	return &Handler{
		DB:         db,
		Repository: NewRepository(),
		Sessions:   sessions,
		Logger:     log,
	}
}

// POST /auth/login
// Valida email/senha, emite access token RS256 e seta refresh token em cookie httpOnly.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "payload inválido", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(req); err != nil {
		http.Error(w, "e-mail e senha são obrigatórios", http.StatusBadRequest)
		return
	}

	user, err := h.Repository.BuscarPorEmail(h.DB, req.Email)
	if err != nil {
		http.Error(w, "credenciais inválidas", http.StatusUnauthorized)
		return
	}
	if !utils.VerificarSenha(user.Senha, req.Senha) {
		http.Error(w, "credenciais inválidas", http.StatusUnauthorized)
		return
	}

	access, err := h.Sessions.IssueTokensOnLogin(w, auth.Identidade{
		UserID:   user.ID,
		TenantID: user.TenantID,
		IsAdmin:  user.IsAdmin,
	})
	if err != nil {
		h.Logger.Errorw("erro ao gerar tokens", "usuario", user.ID, "error", err)
		http.Error(w, "erro ao gerar tokens", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(auth.TokenResponse{
		AccessToken: access,
		TokenType:   "Bearer",
		ExpiresIn:   int(auth.AccessTTL.Seconds()),
	})
}

// POST /usuarios (admin)
func (h *Handler) Criar(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())

	var req CreateUsuarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "payload inválido", http.StatusBadRequest)
		return
	}

	u, temporaria, err := Cadastrar(h.DB, h.Repository, id.TenantID, req)
	if err != nil {
		ierr.WriteHTTP(w, err)
		return
	}
	h.Logger.Infow("usuário criado", "tenant", id.TenantID, "usuario", u.ID, "admin", u.IsAdmin)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(CreateUsuarioResponse{Usuario: *u, SenhaTemporaria: temporaria})
}

// GET /usuarios (admin)
func (h *Handler) Listar(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())

	lista, err := h.Repository.ListarPorTenant(h.DB, id.TenantID)
	if err != nil {
		ierr.WriteHTTP(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(lista)
}

// GET /usuarios/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.FromContext(r.Context())
	if !ok {
		http.Error(w, "não autenticado", http.StatusUnauthorized)
		return
	}

	u, err := h.Repository.BuscarPorID(h.DB, id.TenantID, id.UserID)
	if err != nil {
		ierr.WriteHTTP(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(u)
}
