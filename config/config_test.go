package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthMode_UnmarshalText(t *testing.T) {
	var m AuthMode

	require.NoError(t, m.UnmarshalText([]byte("oauth")))
	assert.Equal(t, AuthModeOAuth, m)

	require.NoError(t, m.UnmarshalText([]byte("MOCK")))
	assert.Equal(t, AuthModeMock, m)

	err := m.UnmarshalText([]byte("ldap"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid AuthMode")
}

func TestAuthConfig_SanitizeDefaults(t *testing.T) {
	var a AuthConfig
	a.Sanitize()

	assert.Equal(t, 10*time.Second, a.Authz.LookupTimeout)
	assert.Equal(t, 1, a.Authz.LookupRetries)
	assert.Equal(t, 250*time.Millisecond, a.Authz.LookupRetryBackoff)
	assert.Equal(t, 5*time.Minute, a.Authz.CacheTTL)
	assert.Equal(t, "/auth/login", a.Guard.LoginPath)
	assert.Equal(t, "/", a.Guard.FallbackPath)
}

func TestAuthConfig_SanitizeKeepsValidValues(t *testing.T) {
	a := AuthConfig{
		Authz: AuthzConfig{
			LookupTimeout:      3 * time.Second,
			LookupRetries:      5,
			LookupRetryBackoff: time.Second,
			CacheTTL:           time.Minute,
		},
		Guard: GuardConfig{LoginPath: "/signin", FallbackPath: "/home"},
	}
	a.Sanitize()

	assert.Equal(t, 3*time.Second, a.Authz.LookupTimeout)
	assert.Equal(t, 5, a.Authz.LookupRetries)
	assert.Equal(t, "/signin", a.Guard.LoginPath)
	assert.Equal(t, "/home", a.Guard.FallbackPath)
}

func TestHTTPConfig_Sanitize(t *testing.T) {
	h := HTTPConfig{MaxConns: -1, CheckUserRate: 0, CheckUserBurst: 0}
	h.Sanitize()

	assert.Equal(t, 0, h.MaxConns)
	assert.Equal(t, float64(20), h.CheckUserRate)
	assert.Equal(t, 20, h.CheckUserBurst)
	assert.Equal(t, 10*time.Second, h.ShutdownTimeout)
}
