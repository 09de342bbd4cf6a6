package httpx

import (
	"context"
	"net/http"

	domainauth "github.com/GustavoEraso/por-los-animales-maldonado-sub001/internal/domain/auth"
)

type contextKey string

const authStateKey contextKey = "auth_state"

// SetAuthState stores a resolved auth snapshot in the context.
func SetAuthState(ctx context.Context, state domainauth.AuthState) context.Context {
	return context.WithValue(ctx, authStateKey, state)
}

// AuthStateFrom returns the auth snapshot stored by the guards, if any.
func AuthStateFrom(ctx context.Context) (domainauth.AuthState, bool) {
	state, ok := ctx.Value(authStateKey).(domainauth.AuthState)
	return state, ok
}

// ActorFrom returns the authorized user for the request, or nil when the
// request is anonymous or the guard did not run.
func ActorFrom(r *http.Request) *domainauth.AuthorizedUser {
	state, ok := AuthStateFrom(r.Context())
	if !ok {
		return nil
	}
	return state.User
}
