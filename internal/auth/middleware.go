package auth

import (
	"context"
	"net/http"
	"strings"
)

type ctxKey string

const (
	CtxUserID   ctxKey = "usuarioID"
	CtxTenantID ctxKey = "tenantID"
	CtxIsAdmin  ctxKey = "isAdmin"
)

// Identidade é o usuário autenticado da requisição
type Identidade struct {
	UserID   string
	TenantID string
	IsAdmin  bool
}

// Verifier valida um bearer token. Implementado pelo Manager local e pelo Cognito.
type Verifier interface {
	Verify(raw string) (*Claims, error)
}

func WithIdentidade(ctx context.Context, id Identidade) context.Context {
	ctx = context.WithValue(ctx, CtxUserID, id.UserID)
	ctx = context.WithValue(ctx, CtxTenantID, id.TenantID)
	return context.WithValue(ctx, CtxIsAdmin, id.IsAdmin)
}

// FromContext devolve a identidade injetada pelo middleware
func FromContext(ctx context.Context) (Identidade, bool) {
	userID, _ := ctx.Value(CtxUserID).(string)
	tenantID, _ := ctx.Value(CtxTenantID).(string)
	isAdmin, _ := ctx.Value(CtxIsAdmin).(bool)
	if userID == "" || tenantID == "" {
		return Identidade{}, false
	}
	return Identidade{UserID: userID, TenantID: tenantID, IsAdmin: isAdmin}, true
}

func MiddlewareAutenticacao(v Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}
			raw := bearer(r)
			if raw == "" {
				http.Error(w, "Token ausente", http.StatusUnauthorized)
				return
			}
			claims, err := v.Verify(raw)
			if err != nil {
				http.Error(w, "Token inválido", http.StatusUnauthorized)
				return
			}
			ctx := WithIdentidade(r.Context(), Identidade{
				UserID:   claims.UserID,
				TenantID: claims.TenantID,
				IsAdmin:  claims.IsAdmin,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearer aceita o header Authorization ou ?access_token= (navegadores não mandam header no websocket)
func bearer(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return r.URL.Query().Get("access_token")
}

func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ok, _ := r.Context().Value(CtxIsAdmin).(bool); !ok {
			http.Error(w, "Forbidden (admin only)", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
