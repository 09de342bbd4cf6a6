package httpx

import (
	"database/sql"
	"log/slog"
	"net/http"

	domainauth "github.com/GustavoEraso/por-los-animales-maldonado-sub001/internal/domain/auth"
	"github.com/GustavoEraso/por-los-animales-maldonado-sub001/internal/ports"
	"github.com/GustavoEraso/por-los-animales-maldonado-sub001/internal/service"
)

// RouterServices holds everything the HTTP router needs.
type RouterServices struct {
	Animals    *service.AnimalService
	Banners    *service.BannerService
	Identities *service.IdentityAdminService

	// Lookup backs the internal check-user endpoint.
	Lookup ports.AuthorizationLookup
	// States is the session machine's read side, consumed by the guards.
	States ports.AuthStateSource
	// Hub is the identity provider boundary used by logout.
	Hub ports.IdentityProvider
	// Flow drives login/callback. Nil disables the auth routes.
	Flow ports.LoginFlow
	// PublishSession feeds exchanged sessions into the hub.
	PublishSession func(session *domainauth.IdentitySession)

	LoginPath    string
	FallbackPath string
	LogoutURL    string

	ServiceSecret  string
	CheckUserRate  float64
	CheckUserBurst int

	DB     *sql.DB
	Cache  ports.CacheRepository
	Logger *slog.Logger
}

// NewRouter creates and configures the HTTP router.
func NewRouter(services RouterServices) http.Handler {
	mux := http.NewServeMux()

	guard := &Guard{
		States:       services.States,
		LoginPath:    services.LoginPath,
		FallbackPath: services.FallbackPath,
		Logger:       services.Logger,
	}

	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))
	ready := &ReadyHandlers{DB: services.DB, Cache: services.Cache}
	mux.Handle("GET /readyz", http.HandlerFunc(ready.Ready))

	if services.Flow != nil {
		authHandlers := &AuthHandlers{
			Flow:      services.Flow,
			Hub:       services.Hub,
			States:    services.States,
			Publish:   services.PublishSession,
			LogoutURL: services.LogoutURL,
			Logger:    services.Logger,
		}
		mux.HandleFunc("GET /auth/login", authHandlers.Login)
		mux.HandleFunc("GET /auth/callback", authHandlers.Callback)
		mux.HandleFunc("POST /auth/logout", authHandlers.Logout)
		mux.HandleFunc("GET /auth/state", authHandlers.State)
	}

	if services.Lookup != nil {
		checkHandlers := &CheckUserHandlers{Lookup: services.Lookup, Logger: services.Logger}
		rps := services.CheckUserRate
		if rps <= 0 {
			rps = 20
		}
		burst := services.CheckUserBurst
		if burst <= 0 {
			burst = int(rps)
		}
		protected := RequireServiceSecret(services.ServiceSecret)(
			RateLimit(rps, burst)(http.HandlerFunc(checkHandlers.CheckUser)))
		mux.Handle("POST /internal/check-user", protected)
	}

	registerAnimalRoutes(mux, guard, &AnimalHandlers{Svc: services.Animals, Logger: services.Logger})
	registerBannerRoutes(mux, guard, &BannerHandlers{Svc: services.Banners, Logger: services.Logger})
	registerIdentityRoutes(mux, guard, &IdentityHandlers{Svc: services.Identities, Logger: services.Logger})

	return mux
}

func registerAnimalRoutes(mux *http.ServeMux, guard *Guard, h *AnimalHandlers) {
	if h.Svc == nil {
		return
	}
	// Public reads
	mux.HandleFunc("GET /api/animals", h.List)
	mux.HandleFunc("GET /api/animals/{id}", h.Get)

	// Mutations need the rescuer role
	manage := guard.Route(domainauth.RoleRescuer)
	mux.Handle("POST /api/animals", manage(http.HandlerFunc(h.Create)))
	mux.Handle("PATCH /api/animals/{id}", manage(http.HandlerFunc(h.Update)))
	mux.Handle("DELETE /api/animals/{id}", manage(http.HandlerFunc(h.Delete)))
}

func registerBannerRoutes(mux *http.ServeMux, guard *Guard, h *BannerHandlers) {
	if h.Svc == nil {
		return
	}
	mux.HandleFunc("GET /api/banners", h.ListActive)

	admin := guard.Route(domainauth.RoleAdmin)
	mux.Handle("GET /api/admin/banners", admin(http.HandlerFunc(h.ListAll)))
	mux.Handle("POST /api/admin/banners", admin(http.HandlerFunc(h.Create)))
	mux.Handle("PATCH /api/admin/banners/{id}", admin(http.HandlerFunc(h.Update)))
	mux.Handle("DELETE /api/admin/banners/{id}", admin(http.HandlerFunc(h.Delete)))
}

func registerIdentityRoutes(mux *http.ServeMux, guard *Guard, h *IdentityHandlers) {
	if h.Svc == nil {
		return
	}
	admin := guard.Route(domainauth.RoleAdmin)
	mux.Handle("GET /api/admin/identities", admin(http.HandlerFunc(h.List)))
	mux.Handle("PUT /api/admin/identities", admin(http.HandlerFunc(h.Upsert)))
	mux.Handle("DELETE /api/admin/identities/{email}", admin(http.HandlerFunc(h.Delete)))
	mux.Handle("GET /api/admin/identities/assignable-roles", admin(http.HandlerFunc(h.AssignableRoles)))
}
