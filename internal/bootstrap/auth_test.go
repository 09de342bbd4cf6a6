package bootstrap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GustavoEraso/por-los-animales-maldonado-sub001/config"
	"github.com/GustavoEraso/por-los-animales-maldonado-sub001/internal/adapters/authlookup"
	"github.com/GustavoEraso/por-los-animales-maldonado-sub001/internal/adapters/devauth"
)

func mockAuthConfig() *config.AppConfig {
	cfg := &config.AppConfig{}
	cfg.Auth.Mode = config.AuthModeMock
	cfg.Auth.DevAuth = config.DevAuthConfig{
		SubjectID: "dev-user",
		Email:     "dev@example.com",
		Name:      "Dev User",
	}
	return cfg
}

func TestBuildAuth_MockModeUsesInProcessLookup(t *testing.T) {
	auth, err := BuildAuth(AuthOptions{Config: mockAuthConfig()})
	require.NoError(t, err)

	assert.IsType(t, &devauth.Provider{}, auth.Flow)
	assert.Same(t, auth.Allowlist, auth.Lookup,
		"without a lookup URL the session machine resolves in-process")
	assert.NotNil(t, auth.Hub)
	assert.NotNil(t, auth.Sessions)
	assert.Empty(t, auth.LogoutURL)
}

func TestBuildAuth_LookupURLSelectsHTTPBoundary(t *testing.T) {
	cfg := mockAuthConfig()
	cfg.Auth.Authz.LookupURL = "http://authz.internal/check-user"
	cfg.Auth.Authz.ServiceSecret = "s3cret"

	auth, err := BuildAuth(AuthOptions{Config: cfg})
	require.NoError(t, err)

	assert.IsType(t, &authlookup.HTTPClient{}, auth.Lookup)
}

func TestBuildAuth_UnsupportedMode(t *testing.T) {
	cfg := &config.AppConfig{}
	cfg.Auth.Mode = config.AuthMode("saml")

	_, err := BuildAuth(AuthOptions{Config: cfg})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported auth mode")
}

func TestBuildAuth_MockModeRequiresEmail(t *testing.T) {
	cfg := mockAuthConfig()
	cfg.Auth.DevAuth.Email = ""

	_, err := BuildAuth(AuthOptions{Config: cfg})
	require.Error(t, err)
}
