package ports

// Package ports defines interfaces (hexagonal ports) for auth-related behavior.
// Implementations live in internal/adapters; orchestration in internal/service.

import (
	"context"

	domainauth "github.com/GustavoEraso/por-los-animales-maldonado-sub001/internal/domain/auth"
)

// IdentityProvider is the push boundary to the external identity provider.
// It owns the provider session; the application only observes it, except for
// the imperative EndSession used when a signed-in identity turns out to be
// unlisted.
type IdentityProvider interface {
	// Subscribe returns a channel that delivers the provider session on every
	// change: nil means signed out. The current session (possibly nil) is
	// delivered first so subscribers leave their initial resolving phase.
	// The channel is closed when ctx is done.
	Subscribe(ctx context.Context) <-chan *domainauth.IdentitySession

	// EndSession terminates the provider session. Observers receive a nil
	// session afterward.
	EndSession(ctx context.Context) error
}

// BeginInput carries inputs for initiating a login flow.
type BeginInput struct {
	RedirectURL string
}

// ExchangeInput groups parameters for the code/token exchange.
type ExchangeInput struct {
	Code  string
	State string
	Nonce string
}

// LoginFlow initiates and completes an authentication flow against an IdP.
// The resulting IdentitySession carries identity only, never a role.
type LoginFlow interface {
	// Begin starts the login flow and returns the provider auth URL, an
	// opaque state, and a nonce.
	Begin(ctx context.Context, in BeginInput) (authURL, state, nonce string, err error)

	// Exchange completes the login flow, verifying state and nonce, and
	// returns the authenticated identity session.
	Exchange(ctx context.Context, in ExchangeInput) (domainauth.IdentitySession, error)
}

// AuthorizationLookup answers whether an identity may use the application and
// which role it holds. An email with no matching record yields
// Decision{Authorized: false} and a nil error; a non-nil error means the
// lookup itself could not be performed and says nothing about authorization.
type AuthorizationLookup interface {
	CheckUser(ctx context.Context, email string) (domainauth.Decision, error)
}

// AuthStateSource exposes the current authorization state to guards.
type AuthStateSource interface {
	// State returns the latest published snapshot.
	State() domainauth.AuthState

	// WaitResolved blocks until the machine has left its resolving/pending
	// phases and returns that snapshot, or ctx's error.
	WaitResolved(ctx context.Context) (domainauth.AuthState, error)
}
