package bootstrap

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/net/netutil"

	"github.com/GustavoEraso/por-los-animales-maldonado-sub001/config"
	domainauth "github.com/GustavoEraso/por-los-animales-maldonado-sub001/internal/domain/auth"
	httpx "github.com/GustavoEraso/por-los-animales-maldonado-sub001/internal/http"
)

// HTTPServerConfig contains configuration for the HTTP server.
type HTTPServerConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	DB       *sql.DB
	Logger   *slog.Logger
}

// NewHTTPServer builds the HTTP server and its listener. The caller owns both
// and drives Serve and Shutdown.
func NewHTTPServer(cfg *HTTPServerConfig) (*http.Server, net.Listener, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	appCfg := cfg.Config
	if appCfg == nil {
		appCfg = &config.AppConfig{}
	}

	auth := cfg.Services.Auth
	services := httpx.RouterServices{
		Animals:    cfg.Services.Animals,
		Banners:    cfg.Services.Banners,
		Identities: cfg.Services.Identities,

		Lookup: auth.Lookup,
		States: auth.Sessions,
		Hub:    auth.Hub,
		Flow:   auth.Flow,
		PublishSession: func(session *domainauth.IdentitySession) {
			if auth.Hub != nil {
				auth.Hub.Publish(session)
			}
		},

		LoginPath:    appCfg.Auth.Guard.LoginPath,
		FallbackPath: appCfg.Auth.Guard.FallbackPath,
		LogoutURL:    auth.LogoutURL,

		ServiceSecret:  appCfg.Auth.Authz.ServiceSecret,
		CheckUserRate:  appCfg.HTTP.CheckUserRate,
		CheckUserBurst: appCfg.HTTP.CheckUserBurst,

		DB:     cfg.DB,
		Cache:  cfg.Services.Cache,
		Logger: logger,
	}

	handler := httpx.NewRouter(services)
	handler = httpx.Logging(logger)(handler)
	handler = httpx.Recover(logger)(handler)

	addr := appCfg.HTTP.Addr
	if addr == "" {
		addr = ":8080"
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, fmt.Errorf("listen on %s: %w", addr, err)
	}
	if appCfg.HTTP.MaxConns > 0 {
		listener = netutil.LimitListener(listener, appCfg.HTTP.MaxConns)
	}

	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return server, listener, nil
}
