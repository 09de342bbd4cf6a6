package httpx

import (
	"errors"
	"log/slog"
	"net/http"

	domainauth "github.com/GustavoEraso/por-los-animales-maldonado-sub001/internal/domain/auth"
	"github.com/GustavoEraso/por-los-animales-maldonado-sub001/internal/ports"
)

// Guard wraps handlers with authorization checks backed by the session
// machine. A guard never decides on an unresolved state: it waits for the
// machine to settle, bounded by the request context.
type Guard struct {
	States       ports.AuthStateSource
	LoginPath    string
	FallbackPath string
	Logger       *slog.Logger
}

func (g *Guard) logger() *slog.Logger {
	if g != nil && g.Logger != nil {
		return g.Logger
	}
	return slog.Default()
}

func (g *Guard) loginPath() string {
	if g.LoginPath == "" {
		return "/auth/login"
	}
	return g.LoginPath
}

func (g *Guard) fallbackPath() string {
	if g.FallbackPath == "" {
		return "/"
	}
	return g.FallbackPath
}

// resolve waits for a settled snapshot. A false return means the response has
// been written already.
func (g *Guard) resolve(w http.ResponseWriter, r *http.Request) (domainauth.AuthState, bool) {
	state, err := g.States.WaitResolved(r.Context())
	if err != nil {
		g.logger().WarnContext(r.Context(), "auth state did not resolve", "err", err)
		WriteError(w, ErrorParams{
			Code:    http.StatusServiceUnavailable,
			ErrCode: "auth_unresolved",
			Err:     err,
		})
		return domainauth.AuthState{}, false
	}
	return state, true
}

// Route returns a middleware enforcing the required role on a route. Anonymous
// requests are redirected to the login path; authenticated requests lacking
// the role go to the fallback path; a session stuck behind a failed
// authorization lookup gets a 503 rather than a redirect. Allowed requests
// proceed with the resolved snapshot in their context.
func (g *Guard) Route(required domainauth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			state, ok := g.resolve(w, r)
			if !ok {
				return
			}
			if state.Phase == domainauth.PhaseSignedInUnauthorized {
				// A failed lookup is not a sign-out: the provider session is
				// still there, so bouncing to login would be misleading.
				// Surface it as a retryable outage instead.
				WriteError(w, ErrorParams{
					Code:    http.StatusServiceUnavailable,
					ErrCode: "authorization_unavailable",
					Err:     errors.New(state.Err),
				})
				return
			}
			if state.User == nil {
				http.Redirect(w, r, g.loginPath(), http.StatusSeeOther)
				return
			}
			if !state.Allows(required) {
				http.Redirect(w, r, g.fallbackPath(), http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r.WithContext(SetAuthState(r.Context(), state)))
		})
	}
}

// Content wraps a handler so that callers lacking the required role get the
// fallback handler in place, with a 200, instead of a redirect. This is the
// in-page variant of Route for embedded fragments.
func (g *Guard) Content(required domainauth.Role, content, fallback http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		state, ok := g.resolve(w, r)
		if !ok {
			return
		}
		if !state.Allows(required) {
			fallback.ServeHTTP(w, r.WithContext(SetAuthState(r.Context(), state)))
			return
		}
		content.ServeHTTP(w, r.WithContext(SetAuthState(r.Context(), state)))
	})
}

// Attach returns a middleware that resolves the auth state and stores it in
// the request context without enforcing anything. Handlers behind it decide
// per-operation using the actor.
func (g *Guard) Attach() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			state, ok := g.resolve(w, r)
			if !ok {
				return
			}
			next.ServeHTTP(w, r.WithContext(SetAuthState(r.Context(), state)))
		})
	}
}
