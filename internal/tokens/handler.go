package tokens

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"github.com/KromaEnergia/api-crm/internal/auth"
	ierr "github.com/KromaEnergia/api-crm/internal/errors"
)

const HeaderAtivacao = "X-Activation-Secret"

type AtivacaoRequest struct {
	OwnerRef    string `json:"ownerRef"`
	TenantID    string `json:"tenantId"`
	TotalTokens int64  `json:"totalTokens"`
	PlanLabel   string `json:"planLabel"`
}

type SaldoResponse struct {
	TokenUsage
	Restantes int64 `json:"restantes"`
	Expirado  bool  `json:"expirado"`
}

type Handler struct {
	Ledger  *Ledger
	Segredo string
}

func NewHandler(l *Ledger, segredo string) *Handler {
	return &Handler{Ledger: l, Segredo: segredo}
}

// Require barra a rota com 402 quando o usuário não tem saldo para cost
func (l *Ledger) Require(cost int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := auth.FromContext(r.Context())
			if !ok {
				http.Error(w, "Não autenticado", http.StatusUnauthorized)
				return
			}
			reservado, err := l.CheckAndReserve(r.Context(), id.UserID, cost)
			if err != nil {
				ierr.WriteHTTP(w, err)
				return
			}
			if !reservado {
				http.Error(w, "Saldo de tokens insuficiente ou plano expirado", http.StatusPaymentRequired)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GET /tokens/me
func (h *Handler) Saldo(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	u, err := h.Ledger.Consultar(r.Context(), id.UserID)
	if err != nil {
		ierr.WriteHTTP(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(SaldoResponse{
		TokenUsage: *u,
		Restantes:  u.Restantes(),
		Expirado:   u.Expirado(h.Ledger.agora()),
	})
}

// POST /tokens/ativacao, chamado pelo provedor de pagamento
func (h *Handler) Ativar(w http.ResponseWriter, r *http.Request) {
	recebido := r.Header.Get(HeaderAtivacao)
	if h.Segredo == "" || subtle.ConstantTimeCompare([]byte(recebido), []byte(h.Segredo)) != 1 {
		http.Error(w, "Acesso negado", http.StatusForbidden)
		return
	}
	var req AtivacaoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "payload inválido", http.StatusBadRequest)
		return
	}
	u, err := h.Ledger.ResetForNewPlan(r.Context(), req.OwnerRef, req.TenantID, req.TotalTokens, req.PlanLabel)
	if err != nil {
		ierr.WriteHTTP(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(u)
}
