package auth

// IdentitySession is the identity provider's view of "who is signed in".
// It carries no role: authorization is decided by the allow-list lookup,
// never inferred from the provider session.
type IdentitySession struct {
	SubjectID string
	Email     string
	Name      string
}

// AuthorizedUser is the application's derived record of a signed-in identity.
// It is rebuilt from the authorization lookup on every new provider session
// and is never persisted beyond process memory.
type AuthorizedUser struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role Role   `json:"role"`
}

// Decision is the outcome of an authorization lookup for an email.
// When Authorized is false the remaining fields are meaningless.
type Decision struct {
	Authorized bool   `json:"authorized"`
	Role       Role   `json:"role,omitempty"`
	Name       string `json:"name,omitempty"`
}

// Phase identifies where the session machine currently is.
type Phase string

const (
	// PhaseResolving is the initial phase; the provider session is unknown.
	PhaseResolving Phase = "resolving"
	// PhaseSignedOut means the provider reports no session.
	PhaseSignedOut Phase = "signed_out"
	// PhaseSignedInPending means a provider session exists and the
	// authorization lookup is in flight.
	PhaseSignedInPending Phase = "signed_in_pending"
	// PhaseSignedInAuthorized means the lookup granted access.
	PhaseSignedInAuthorized Phase = "signed_in_authorized"
	// PhaseSignedInUnauthorized means the lookup itself failed; the provider
	// session is kept but no user record exists.
	PhaseSignedInUnauthorized Phase = "signed_in_unauthorized"
)

// Failure reasons recorded in AuthState.Err.
const (
	// ReasonNotAuthorized marks the signed-out snapshot left behind by a
	// forced sign-out of an unlisted identity.
	ReasonNotAuthorized = "User not authorized"
	ReasonLookupFailed  = "permission load failed"
	ReasonFetchFailed   = "fetch failed"
)

// AuthState is an immutable snapshot of the session machine, published to
// guards and other observers. User is non-nil only in PhaseSignedInAuthorized.
type AuthState struct {
	Phase Phase
	User  *AuthorizedUser
	Err   string
}

// Resolved reports whether the machine has settled far enough for guards to
// make an authorization decision. While unresolved, guards must show loading
// and decide nothing.
func (s AuthState) Resolved() bool {
	return s.Phase != PhaseResolving && s.Phase != PhaseSignedInPending
}

// Allows reports whether the snapshot grants the required role. It is the
// single permission predicate guards use: no user record, an unresolved
// state, or an unknown role all fail closed.
func (s AuthState) Allows(required Role) bool {
	if !s.Resolved() || s.User == nil {
		return false
	}
	return HasPermission(s.User.Role, required)
}
