package auth

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"

	"github.com/KromaEnergia/api-crm/internal/config"
	"github.com/golang-jwt/jwt/v5"
)

// Manager emite e valida os access tokens RS256 do serviço.
type Manager struct {
	privKey   *rsa.PrivateKey
	pubKeys   map[string]*rsa.PublicKey // kid -> pub
	activeKID string
	issuer    string
	audience  string
}

func NewManager(priv *rsa.PrivateKey, kid, issuer, audience string) (*Manager, error) {
	if priv == nil || kid == "" || issuer == "" || audience == "" {
		return nil, errors.New("auth: chave, kid, issuer e audience são obrigatórios")
	}
	return &Manager{
		privKey:   priv,
		pubKeys:   map[string]*rsa.PublicKey{kid: &priv.PublicKey},
		activeKID: kid,
		issuer:    issuer,
		audience:  audience,
	}, nil
}

// NewManagerFromConfig carrega a chave privada PEM (PKCS#1 ou PKCS#8) do caminho configurado
func NewManagerFromConfig(cfg config.AuthConfig) (*Manager, error) {
	if cfg.RSAPrivatePath == "" {
		return nil, errors.New("auth.rsa_private_path não definido")
	}
	b, err := os.ReadFile(cfg.RSAPrivatePath)
	if err != nil {
		return nil, fmt.Errorf("read private key: %w", err)
	}
	priv, err := parsePrivateKey(b)
	if err != nil {
		return nil, err
	}
	return NewManager(priv, cfg.KID, cfg.Issuer, cfg.Audience)
}

func parsePrivateKey(b []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(b)
	if block == nil {
		return nil, errors.New("pem decode private key failed")
	}

	var pk any
	if k, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		pk = k
	} else if k8, err2 := x509.ParsePKCS8PrivateKey(block.Bytes); err2 == nil {
		pk = k8
	} else {
		return nil, fmt.Errorf("parse private key: %v / %v", err, err2)
	}

	priv, ok := pk.(*rsa.PrivateKey)
	if !ok {
		return nil, errors.New("private key is not RSA")
	}
	return priv, nil
}

func (m *Manager) getPub(kid string) (*rsa.PublicKey, bool) { p, ok := m.pubKeys[kid]; return p, ok }
func (m *Manager) signMethod() jwt.SigningMethod            { return jwt.SigningMethodRS256 }
