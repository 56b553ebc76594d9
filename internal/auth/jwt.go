package auth

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims do access token (RBAC simples: IsAdmin, escopo por tenant)
type Claims struct {
	UserID   string `json:"userId"`
	TenantID string `json:"tenantId"`
	IsAdmin  bool   `json:"isAdmin"`
	jwt.RegisteredClaims
}

// Tempo de vida do access token
const AccessTTL = 15 * time.Minute

// GenerateAccessToken gera um JWT RS256 com kid, iss, aud, iat, nbf e jti
func (m *Manager) GenerateAccessToken(id Identidade) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:   id.UserID,
		TenantID: id.TenantID,
		IsAdmin:  id.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Audience:  []string{m.audience},
			Subject:   id.UserID,
			ExpiresAt: jwt.NewNumericDate(now.Add(AccessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now.Add(-1 * time.Minute)),
			ID:        fmt.Sprintf("%s-%d", id.UserID, now.UnixNano()),
		},
	}

	tok := jwt.NewWithClaims(m.signMethod(), claims)
	tok.Header["kid"] = m.activeKID
	return tok.SignedString(m.privKey)
}

// Verify valida assinatura, iss, aud e exp
func (m *Manager) Verify(tokenStr string) (*Claims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{"RS256"}))
	tok, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		k, _ := t.Header["kid"].(string)
		if k == "" {
			return nil, errors.New("kid ausente")
		}
		pub, ok := m.getPub(k)
		if !ok {
			return nil, errors.New("kid desconhecido")
		}
		return pub, nil
	})
	if err != nil {
		return nil, err
	}
	if !tok.Valid {
		return nil, errors.New("token inválido")
	}

	c, ok := tok.Claims.(*Claims)
	if !ok {
		return nil, errors.New("claims inválidas")
	}
	if c.Issuer != m.issuer {
		return nil, errors.New("issuer inválido")
	}
	if !slices.Contains(c.Audience, m.audience) {
		return nil, errors.New("audience inválida")
	}
	if c.ExpiresAt == nil || time.Now().After(c.ExpiresAt.Time) {
		return nil, errors.New("token expirado")
	}
	if c.TenantID == "" || c.UserID == "" {
		return nil, errors.New("token sem usuário ou tenant")
	}
	return c, nil
}
