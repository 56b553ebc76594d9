package auth

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/KromaEnergia/api-crm/internal/config"
	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
)

// Claims do Cognito (access token) com os atributos customizados do CRM
type CognitoClaims struct {
	TokenUse string   `json:"token_use,omitempty"` // "access" ou "id"
	ClientID string   `json:"client_id,omitempty"`
	Username string   `json:"username,omitempty"`
	TenantID string   `json:"custom:tenant_id,omitempty"`
	Groups   []string `json:"cognito:groups,omitempty"`
	jwt.RegisteredClaims
}

// CognitoVerifier valida tokens emitidos pelo user pool contra o JWKS hospedado
type CognitoVerifier struct {
	jwks     *keyfunc.JWKS
	issuer   string
	clientID string
}

func cognitoIssuer(region, poolID string) string {
	return "https://cognito-idp." + region + ".amazonaws.com/" + poolID
}

func NewCognitoVerifier(cfg config.AuthConfig, onRefreshErr func(error)) (*CognitoVerifier, error) {
	if cfg.CognitoRegion == "" || cfg.CognitoPoolID == "" || cfg.CognitoClient == "" {
		return nil, errors.New("auth: cognito_region, cognito_pool_id e cognito_client_id são obrigatórios")
	}
	iss := cognitoIssuer(cfg.CognitoRegion, cfg.CognitoPoolID)
	jwks, err := keyfunc.Get(iss+"/.well-known/jwks.json", keyfunc.Options{
		RefreshInterval:     time.Hour,
		RefreshUnknownKID:   true,
		RefreshErrorHandler: onRefreshErr,
	})
	if err != nil {
		return nil, fmt.Errorf("jwks cognito: %w", err)
	}
	return &CognitoVerifier{jwks: jwks, issuer: iss, clientID: cfg.CognitoClient}, nil
}

func (v *CognitoVerifier) Verify(raw string) (*Claims, error) {
	var claims CognitoClaims
	token, err := jwt.ParseWithClaims(raw, &claims, v.jwks.Keyfunc,
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithIssuer(v.issuer),
	)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("token inválido")
	}
	return mapCognitoClaims(&claims, v.clientID)
}

// Close encerra o refresh em background do JWKS
func (v *CognitoVerifier) Close() { v.jwks.EndBackground() }

// mapCognitoClaims converte as claims do Cognito na identidade do CRM.
// Access tokens do Cognito não têm aud; o client_id faz esse papel.
func mapCognitoClaims(c *CognitoClaims, clientID string) (*Claims, error) {
	if c.TokenUse != "access" {
		return nil, errors.New("tipo de token incorreto")
	}
	if c.ClientID != clientID {
		return nil, errors.New("client_id inválido")
	}
	if c.Subject == "" || c.TenantID == "" {
		return nil, errors.New("token sem usuário ou tenant")
	}
	return &Claims{
		UserID:           c.Subject,
		TenantID:         c.TenantID,
		IsAdmin:          slices.Contains(c.Groups, "admin"),
		RegisteredClaims: c.RegisteredClaims,
	}, nil
}
