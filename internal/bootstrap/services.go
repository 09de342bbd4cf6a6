package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/GustavoEraso/por-los-animales-maldonado-sub001/config"
	"github.com/GustavoEraso/por-los-animales-maldonado-sub001/internal/data"
	"github.com/GustavoEraso/por-los-animales-maldonado-sub001/internal/ports"
	"github.com/GustavoEraso/por-los-animales-maldonado-sub001/internal/service"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Animals    *service.AnimalService
	Banners    *service.BannerService
	Identities *service.IdentityAdminService
	Auth       AuthContainer
	Cache      ports.CacheRepository
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// NewServices wires repositories and business services.
func NewServices(deps *ServiceDeps) (ServiceContainer, error) {
	if deps == nil {
		return ServiceContainer{}, errors.New("service deps are required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	auth, err := BuildAuth(AuthOptions{
		Config:      deps.Config,
		DB:          deps.DB,
		RedisClient: deps.RedisClient,
		Logger:      logger,
	})
	if err != nil {
		return ServiceContainer{}, err
	}

	identities := service.NewIdentityAdminService(service.IdentityAdminServiceOptions{
		Logger:      logger,
		Repo:        data.NewAuthorizedIdentityRepo(deps.DB),
		Invalidator: auth.Allowlist,
	})

	animals := service.NewAnimalService(service.AnimalServiceOptions{
		Logger: logger,
		Repo:   &data.AnimalRepo{DB: deps.DB},
	})

	banners := service.NewBannerService(service.BannerServiceOptions{
		Logger: logger,
		Repo:   &data.BannerRepo{DB: deps.DB},
	})

	var cache ports.CacheRepository
	if deps.RedisClient != nil {
		cache = data.NewRedisCacheRepo(deps.RedisClient)
	}

	return ServiceContainer{
		Animals:    animals,
		Banners:    banners,
		Identities: identities,
		Auth:       auth,
		Cache:      cache,
	}, nil
}

// ServiceOrchestrationConfig contains configuration for service orchestration.
type ServiceOrchestrationConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	DB       *sql.DB
	Logger   *slog.Logger
}

// RunServicesWithShutdown starts the HTTP server and the session machine and
// blocks until a termination signal arrives or one of them fails.
func RunServicesWithShutdown(cfg *ServiceOrchestrationConfig) error {
	if cfg == nil {
		return errors.New("service orchestration config is required")
	}
	if cfg.Config == nil {
		return errors.New("service orchestration config missing AppConfig")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server, listener, err := NewHTTPServer(&HTTPServerConfig{
		Config:   cfg.Config,
		Services: cfg.Services,
		DB:       cfg.DB,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting HTTP server", "addr", server.Addr)
		if serveErr := server.Serve(listener); !errors.Is(serveErr, http.ErrServerClosed) {
			return serveErr
		}
		return nil
	})

	g.Go(func() error {
		if runErr := cfg.Services.Auth.Sessions.Run(gctx); runErr != nil && !errors.Is(runErr, context.Canceled) {
			return runErr
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Config.HTTP.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if waitErr := g.Wait(); waitErr != nil {
		return waitErr
	}

	logger.Info("services stopped")
	return nil
}
