package oidc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClaimExtractor_Defaults(t *testing.T) {
	e, err := newClaimExtractor("", "", "")
	require.NoError(t, err)

	fields := e.extract(map[string]any{
		"sub":   "u-123",
		"email": " Alice@Example.com ",
		"name":  "Alice",
	})
	assert.Equal(t, "u-123", fields.subject)
	assert.Equal(t, "Alice@Example.com", fields.email)
	assert.Equal(t, "Alice", fields.name)
}

func TestClaimExtractor_NestedExpressions(t *testing.T) {
	e, err := newClaimExtractor("sub", "attributes.mail", "attributes.display_name")
	require.NoError(t, err)

	fields := e.extract(map[string]any{
		"sub": "u-123",
		"attributes": map[string]any{
			"mail":         "alice@example.com",
			"display_name": "Alice A",
		},
	})
	assert.Equal(t, "alice@example.com", fields.email)
	assert.Equal(t, "Alice A", fields.name)
}

func TestClaimExtractor_MissingClaimsYieldEmpty(t *testing.T) {
	e, err := newClaimExtractor("", "", "")
	require.NoError(t, err)

	fields := e.extract(map[string]any{"sub": "u-123"})
	assert.Equal(t, "u-123", fields.subject)
	assert.Empty(t, fields.email)
	assert.Empty(t, fields.name)
}

func TestClaimExtractor_InvalidExpression(t *testing.T) {
	_, err := newClaimExtractor("sub[", "", "")
	require.Error(t, err)
}

func TestIdentityFields_Merge(t *testing.T) {
	f := identityFields{subject: "u-123"}
	f.merge(identityFields{subject: "ignored", email: "a@example.com", name: "Alice"})

	assert.Equal(t, "u-123", f.subject)
	assert.Equal(t, "a@example.com", f.email)
	assert.Equal(t, "Alice", f.name)
}

func TestProvider_LogoutURL(t *testing.T) {
	p := &Provider{logoutURL: "https://idp.example.com/logout"}
	assert.Equal(t, "https://idp.example.com/logout", p.LogoutURL(""))
	assert.Equal(t,
		"https://idp.example.com/logout?post_logout_redirect_uri=https%3A%2F%2Fapp.example.com%2F",
		p.LogoutURL("https://app.example.com/"))

	empty := &Provider{}
	assert.Empty(t, empty.LogoutURL("https://app.example.com/"))
}
