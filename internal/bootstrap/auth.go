package bootstrap

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/GustavoEraso/por-los-animales-maldonado-sub001/config"
	"github.com/GustavoEraso/por-los-animales-maldonado-sub001/internal/adapters/authlookup"
	"github.com/GustavoEraso/por-los-animales-maldonado-sub001/internal/adapters/devauth"
	"github.com/GustavoEraso/por-los-animales-maldonado-sub001/internal/adapters/identity"
	"github.com/GustavoEraso/por-los-animales-maldonado-sub001/internal/adapters/oidc"
	"github.com/GustavoEraso/por-los-animales-maldonado-sub001/internal/data"
	"github.com/GustavoEraso/por-los-animales-maldonado-sub001/internal/ports"
	"github.com/GustavoEraso/por-los-animales-maldonado-sub001/internal/service"
)

// AuthContainer groups the authentication and authorization runtime: the
// identity hub, the login flow, the allow-list services, and the session
// machine consuming them.
type AuthContainer struct {
	Hub       *identity.Hub
	Flow      ports.LoginFlow
	Sessions  *service.SessionService
	Allowlist *service.AllowlistService
	// Lookup is what the session machine resolves authorization through. It
	// is the HTTP boundary client when a lookup URL is configured, otherwise
	// the in-process allow-list service.
	Lookup    ports.AuthorizationLookup
	LogoutURL string
}

// AuthOptions groups dependencies for BuildAuth.
type AuthOptions struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// BuildAuth wires the auth runtime from configuration.
func BuildAuth(opts AuthOptions) (AuthContainer, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = &config.AppConfig{}
	}

	var cache ports.CacheRepository
	if opts.RedisClient != nil {
		cache = data.NewRedisCacheRepo(opts.RedisClient)
	}

	allowlist := service.NewAllowlistService(service.AllowlistServiceOptions{
		Logger:   logger,
		Repo:     data.NewAuthorizedIdentityRepo(opts.DB),
		Cache:    cache,
		CacheTTL: cfg.Auth.Authz.CacheTTL,
	})

	lookup, err := buildLookup(cfg.Auth.Authz, allowlist)
	if err != nil {
		return AuthContainer{}, err
	}

	flow, logoutURL, err := buildLoginFlow(cfg.Auth, cfg.HTTP.BaseURL)
	if err != nil {
		return AuthContainer{}, err
	}

	hub := identity.NewHub(identity.HubOptions{Logger: logger})

	sessions := service.NewSessionService(service.SessionServiceOptions{
		Logger:        logger,
		Provider:      hub,
		Lookup:        lookup,
		LookupTimeout: cfg.Auth.Authz.LookupTimeout,
		Retries:       cfg.Auth.Authz.LookupRetries,
		RetryBackoff:  cfg.Auth.Authz.LookupRetryBackoff,
	})

	return AuthContainer{
		Hub:       hub,
		Flow:      flow,
		Sessions:  sessions,
		Allowlist: allowlist,
		Lookup:    lookup,
		LogoutURL: logoutURL,
	}, nil
}

func buildLookup(cfg config.AuthzConfig, allowlist *service.AllowlistService) (ports.AuthorizationLookup, error) {
	if cfg.LookupURL == "" {
		return allowlist, nil
	}
	client, err := authlookup.NewHTTPClient(authlookup.HTTPClientOptions{
		URL:           cfg.LookupURL,
		ServiceSecret: cfg.ServiceSecret,
		Timeout:       cfg.LookupTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("build lookup client: %w", err)
	}
	return client, nil
}

func buildLoginFlow(cfg config.AuthConfig, baseURL string) (ports.LoginFlow, string, error) {
	switch cfg.Mode {
	case config.AuthModeMock:
		flow, err := devauth.NewProvider(devauth.Config{
			SubjectID: cfg.DevAuth.SubjectID,
			Email:     cfg.DevAuth.Email,
			Name:      cfg.DevAuth.Name,
		})
		if err != nil {
			return nil, "", fmt.Errorf("build dev auth: %w", err)
		}
		return flow, "", nil
	case config.AuthModeOAuth:
		provider, err := oidc.NewProvider(oidc.ProviderConfig{
			ClientID:     cfg.OAuth.ClientID,
			ClientSecret: cfg.OAuth.ClientSecret,
			RedirectURL:  cfg.OAuth.RedirectURL,
			Scope:        cfg.OAuth.Scope,
			DiscoveryURL: cfg.OAuth.DiscoveryURL,
			LogoutURL:    cfg.OAuth.LogoutURL,
			SubjectClaim: cfg.OAuth.SubjectClaim,
			EmailClaim:   cfg.OAuth.EmailClaim,
			NameClaim:    cfg.OAuth.NameClaim,
		})
		if err != nil {
			return nil, "", fmt.Errorf("build oidc provider: %w", err)
		}
		return provider, provider.LogoutURL(baseURL), nil
	default:
		return nil, "", fmt.Errorf("unsupported auth mode: %q", cfg.Mode)
	}
}
