package devauth

// Package devauth provides a config-driven login flow for local development.
// It short-circuits OAuth by redirecting straight back to our own callback;
// Exchange ignores the code and returns the configured identity.

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	domainauth "github.com/GustavoEraso/por-los-animales-maldonado-sub001/internal/domain/auth"
	"github.com/GustavoEraso/por-los-animales-maldonado-sub001/internal/ports"
)

// Config controls the dev login flow. SubjectID and Email are required.
type Config struct {
	SubjectID string
	Email     string
	Name      string
}

// Provider implements ports.LoginFlow for local development.
type Provider struct {
	session domainauth.IdentitySession
}

// NewProvider constructs a dev login flow from Config.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.SubjectID == "" {
		return nil, errors.New("dev auth: SubjectID is required")
	}
	if cfg.Email == "" {
		return nil, errors.New("dev auth: Email is required")
	}
	return &Provider{
		session: domainauth.IdentitySession{
			SubjectID: cfg.SubjectID,
			Email:     cfg.Email,
			Name:      cfg.Name,
		},
	}, nil
}

// Begin returns a local callback URL and fresh state and nonce.
func (p *Provider) Begin(_ context.Context, _ ports.BeginInput) (string, string, string, error) {
	state, err := randomString(24)
	if err != nil {
		return "", "", "", fmt.Errorf("generate state: %w", err)
	}
	nonce, err := randomString(24)
	if err != nil {
		return "", "", "", fmt.Errorf("generate nonce: %w", err)
	}
	// The standard handler expects GET /auth/callback?code=...&state=...
	authURL := "/auth/callback?code=dev&state=" + state
	return authURL, state, nonce, nil
}

// Exchange ignores code/state/nonce (the handler validates state) and returns
// the configured identity.
func (p *Provider) Exchange(_ context.Context, _ ports.ExchangeInput) (domainauth.IdentitySession, error) {
	return p.session, nil
}

func randomString(n int) (string, error) {
	if n <= 0 {
		return "", nil
	}
	bLen := (n*3 + 3) / 4
	b := make([]byte, bLen)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	s := base64.RawURLEncoding.EncodeToString(b)
	if len(s) < n {
		return s, nil
	}
	return s[:n], nil
}
