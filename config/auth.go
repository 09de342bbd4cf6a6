package config

import (
	"fmt"
	"strings"
	"time"
)

// AuthMode represents the authentication mode for the application.
type AuthMode string

const (
	// AuthModeOAuth uses OAuth/OIDC for authentication.
	AuthModeOAuth AuthMode = "oauth"
	// AuthModeMock uses mock/dev authentication (for development only).
	AuthModeMock AuthMode = "mock"
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	switch v {
	case "oauth", "mock":
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: oauth, mock)", v)
	}
}

// OAuthConfig contains OAuth/OIDC configuration.
//
// The *Claim fields are JMESPath expressions evaluated against the raw ID
// token / userinfo claims, so deployments can adapt to providers that nest or
// rename their claims without code changes.
type OAuthConfig struct {
	ClientID     string `env:"CLIENT_ID"     envDefault:"plam-web"`
	ClientSecret string `env:"CLIENT_SECRET" envDefault:""`
	RedirectURL  string `env:"REDIRECT_URL"  envDefault:"http://localhost:8080/auth/callback"`
	Scope        string `env:"SCOPE"         envDefault:"openid profile email"`
	DiscoveryURL string `env:"DISCOVERY_URL"`
	LogoutURL    string `env:"LOGOUT_URL"`

	SubjectClaim string `env:"SUBJECT_CLAIM" envDefault:"sub"`
	EmailClaim   string `env:"EMAIL_CLAIM"   envDefault:"email"`
	NameClaim    string `env:"NAME_CLAIM"    envDefault:"name"`
}

// DevAuthConfig controls mock/dev authentication identity.
// Used when AUTH_MODE=mock for development and testing.
type DevAuthConfig struct {
	SubjectID string `env:"SUBJECT_ID" envDefault:"dev-user"`
	Email     string `env:"EMAIL"      envDefault:"dev@example.com"`
	Name      string `env:"NAME"       envDefault:"Dev User"`
}

// AuthzConfig controls the authorization lookup boundary.
type AuthzConfig struct {
	// ServiceSecret protects the internal check-user endpoint. Required when
	// the HTTP lookup boundary is exposed.
	ServiceSecret string `env:"SERVICE_SECRET"`

	// LookupURL, when set, makes the session machine resolve authorization
	// through the HTTP boundary instead of calling the allow-list service
	// in-process.
	LookupURL string `env:"LOOKUP_URL"`

	// LookupTimeout bounds each authorization lookup call.
	LookupTimeout time.Duration `env:"LOOKUP_TIMEOUT" envDefault:"10s"`

	// LookupRetries is the number of attempts for a failing lookup before the
	// machine settles in its unauthorized-error state.
	LookupRetries int `env:"LOOKUP_RETRIES" envDefault:"3"`

	// LookupRetryBackoff is the base delay between retries (doubled per attempt).
	LookupRetryBackoff time.Duration `env:"LOOKUP_RETRY_BACKOFF" envDefault:"250ms"`

	// CacheTTL bounds staleness of cached allow-list decisions. The cache is
	// a performance optimization only; the next lookup corrects any brief
	// over- or under-grant inside this window.
	CacheTTL time.Duration `env:"CACHE_TTL" envDefault:"5m"`
}

// GuardConfig is the configuration surface of the route guards.
type GuardConfig struct {
	// LoginPath is where unauthenticated navigation is redirected.
	LoginPath string `env:"LOGIN_PATH" envDefault:"/auth/login"`

	// FallbackPath is where authenticated-but-underprivileged navigation is
	// redirected.
	FallbackPath string `env:"FALLBACK_PATH" envDefault:"/"`
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// Mode determines which authentication provider to use.
	Mode AuthMode `env:"AUTH_MODE" envDefault:"oauth"`

	// OAuth configuration (used when Mode=oauth).
	OAuth OAuthConfig `envPrefix:"OAUTH_"`

	// DevAuth configuration (used when Mode=mock).
	DevAuth DevAuthConfig `envPrefix:"DEV_AUTH_"`

	// Authz configuration for the allow-list lookup boundary.
	Authz AuthzConfig `envPrefix:"AUTHZ_"`

	// Guard configuration for the route guards.
	Guard GuardConfig `envPrefix:"GUARD_"`
}

// Sanitize applies guardrails to auth configuration values.
func (a *AuthConfig) Sanitize() {
	if a.Authz.LookupTimeout <= 0 {
		a.Authz.LookupTimeout = 10 * time.Second
	}
	if a.Authz.LookupRetries < 1 {
		a.Authz.LookupRetries = 1
	}
	if a.Authz.LookupRetryBackoff <= 0 {
		a.Authz.LookupRetryBackoff = 250 * time.Millisecond
	}
	if a.Authz.CacheTTL <= 0 {
		a.Authz.CacheTTL = 5 * time.Minute
	}
	if !strings.HasPrefix(a.Guard.LoginPath, "/") {
		a.Guard.LoginPath = "/auth/login"
	}
	if !strings.HasPrefix(a.Guard.FallbackPath, "/") {
		a.Guard.FallbackPath = "/"
	}
}
