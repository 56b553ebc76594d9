package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RefreshTTL    = 30 * 24 * time.Hour
	RefreshCookie = "rt"
)

// Sessions emite o par access/refresh e faz a rotação do refresh em cookie HttpOnly
type Sessions struct {
	DB           *gorm.DB
	Manager      *Manager
	CookieSecure bool // false em localhost, true em produção (HTTPS)
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

func NewSessions(db *gorm.DB, m *Manager, cookieSecure bool) *Sessions {
	return &Sessions{DB: db, Manager: m, CookieSecure: cookieSecure}
}

func genRaw() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func hashRaw(raw string) string {
	h := sha256.Sum256([]byte(raw))
	return base64.RawURLEncoding.EncodeToString(h[:])
}

func (s *Sessions) setRTCookie(w http.ResponseWriter, raw string, exp time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookie,
		Value:    raw,
		Path:     "/auth", // cobre /auth/refresh e /auth/logout
		HttpOnly: true,
		Secure:   s.CookieSecure,
		SameSite: http.SameSiteLaxMode,
		Expires:  exp,
	})
}

func (s *Sessions) clearRTCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookie,
		Value:    "",
		Path:     "/auth",
		HttpOnly: true,
		Secure:   s.CookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

func (s *Sessions) newRefresh(id Identidade, familyID string) (string, *RefreshToken, error) {
	raw, err := genRaw()
	if err != nil {
		return "", nil, err
	}
	rt := &RefreshToken{
		UserID:    id.UserID,
		TenantID:  id.TenantID,
		FamilyID:  familyID,
		Hash:      hashRaw(raw),
		IsAdmin:   id.IsAdmin,
		ExpiresAt: time.Now().Add(RefreshTTL),
	}
	if err := s.DB.Create(rt).Error; err != nil {
		return "", nil, err
	}
	return raw, rt, nil
}

// IssueTokensOnLogin é chamado pelo login depois de validar usuário e senha
func (s *Sessions) IssueTokensOnLogin(w http.ResponseWriter, id Identidade) (string, error) {
	access, err := s.Manager.GenerateAccessToken(id)
	if err != nil {
		return "", err
	}
	raw, rt, err := s.newRefresh(id, "fam-"+uuid.NewString())
	if err != nil {
		return "", err
	}
	s.setRTCookie(w, raw, rt.ExpiresAt)
	return access, nil
}

// POST /auth/refresh
func (s *Sessions) Refresh(w http.ResponseWriter, r *http.Request) {
	c, err := r.Cookie(RefreshCookie)
	if err != nil || c.Value == "" {
		http.Error(w, "Refresh ausente", http.StatusUnauthorized)
		return
	}

	var cur RefreshToken
	if err := s.DB.Where("hash = ?", hashRaw(c.Value)).First(&cur).Error; err != nil {
		s.clearRTCookie(w)
		http.Error(w, "Refresh inválido", http.StatusUnauthorized)
		return
	}
	if cur.RevokedAt != nil || time.Now().After(cur.ExpiresAt) {
		// reuso de refresh revogado derruba a família inteira
		if cur.RevokedAt != nil {
			now := time.Now()
			_ = s.DB.Model(&RefreshToken{}).
				Where("family_id = ? AND revoked_at IS NULL", cur.FamilyID).
				Update("revoked_at", &now).Error
		}
		s.clearRTCookie(w)
		http.Error(w, "Refresh expirado", http.StatusUnauthorized)
		return
	}

	now := time.Now()
	if err := s.DB.Model(&cur).Update("revoked_at", &now).Error; err != nil {
		http.Error(w, "Erro ao renovar sessão", http.StatusInternalServerError)
		return
	}

	id := Identidade{UserID: cur.UserID, TenantID: cur.TenantID, IsAdmin: cur.IsAdmin}
	access, err := s.Manager.GenerateAccessToken(id)
	if err != nil {
		s.clearRTCookie(w)
		http.Error(w, "Erro ao renovar sessão", http.StatusInternalServerError)
		return
	}
	raw, rt, err := s.newRefresh(id, cur.FamilyID)
	if err != nil {
		s.clearRTCookie(w)
		http.Error(w, "Erro ao renovar sessão", http.StatusInternalServerError)
		return
	}
	s.setRTCookie(w, raw, rt.ExpiresAt)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(TokenResponse{
		AccessToken: access,
		TokenType:   "Bearer",
		ExpiresIn:   int(AccessTTL.Seconds()),
	})
}

// POST /auth/logout
func (s *Sessions) Logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(RefreshCookie); err == nil && c.Value != "" {
		now := time.Now()
		_ = s.DB.Model(&RefreshToken{}).Where("hash = ?", hashRaw(c.Value)).Update("revoked_at", &now).Error
	}
	s.clearRTCookie(w)
	w.WriteHeader(http.StatusNoContent)
}
