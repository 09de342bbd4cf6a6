package httpx

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	domainauth "github.com/GustavoEraso/por-los-animales-maldonado-sub001/internal/domain/auth"
	"github.com/GustavoEraso/por-los-animales-maldonado-sub001/internal/ports"
)

// AuthHandlers provides HTTP handlers for the login flow and session state.
type AuthHandlers struct {
	Flow   ports.LoginFlow
	Hub    ports.IdentityProvider
	States ports.AuthStateSource
	// Publish feeds the exchanged session into the identity hub.
	Publish func(session *domainauth.IdentitySession)
	// LogoutURL, when non-empty, is where logout redirects after ending the
	// session (typically the IdP end-session endpoint).
	LogoutURL string
	Logger    *slog.Logger
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

const (
	stateCookieName    = "oauth_state"
	nonceCookieName    = "oauth_nonce"
	redirectCookieName = "oauth_redirect"
)

// Login handles the login initiation endpoint.
// GET /auth/login?redirect_uri=<optional_redirect>.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	redirectURI := sanitizeRelativeURI(r.URL.Query().Get("redirect_uri"))

	authURL, state, nonce, err := h.Flow.Begin(r.Context(), ports.BeginInput{RedirectURL: redirectURI})
	if err != nil {
		h.logger().ErrorContext(r.Context(), "login begin failed", "err", err)
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "login_failed", Err: err})
		return
	}

	secure := r.TLS != nil
	setFlowCookie(w, stateCookieName, state, secure)
	setFlowCookie(w, nonceCookieName, nonce, secure)
	setFlowCookie(w, redirectCookieName, redirectURI, secure)

	http.Redirect(w, r, authURL, http.StatusFound)
}

// Callback handles the OAuth callback endpoint.
// GET /auth/callback?code=<code>&state=<state>.
func (h *AuthHandlers) Callback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	if code == "" || state == "" {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "missing_params",
			Err:     errors.New("code and state are required"),
		})
		return
	}

	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil || stateCookie.Value != state {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "invalid_state",
			Err:     errors.New("invalid or missing state parameter"),
		})
		return
	}
	nonceCookie, err := r.Cookie(nonceCookieName)
	if err != nil {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "missing_nonce",
			Err:     errors.New("missing nonce cookie"),
		})
		return
	}

	session, err := h.Flow.Exchange(r.Context(), ports.ExchangeInput{
		Code:  code,
		State: state,
		Nonce: nonceCookie.Value,
	})
	if err != nil {
		h.logger().ErrorContext(r.Context(), "login exchange failed", "err", err)
		WriteError(w, ErrorParams{Code: http.StatusUnauthorized, ErrCode: "login_failed", Err: err})
		return
	}

	// Hand the session to the hub; the session machine takes it from here.
	if h.Publish != nil {
		h.Publish(&session)
	}

	redirectURI := "/"
	if c, cookieErr := r.Cookie(redirectCookieName); cookieErr == nil {
		redirectURI = sanitizeRelativeURI(c.Value)
	}

	secure := r.TLS != nil
	clearFlowCookie(w, stateCookieName, secure)
	clearFlowCookie(w, nonceCookieName, secure)
	clearFlowCookie(w, redirectCookieName, secure)

	http.Redirect(w, r, redirectURI, http.StatusSeeOther)
}

// Logout handles POST /auth/logout. Ending the session publishes the
// signed-out state through the hub.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Hub.EndSession(r.Context()); err != nil {
		// The local session is gone regardless; report but don't fail hard.
		h.logger().WarnContext(r.Context(), "logout revocation failed", "err", err)
	}
	if h.LogoutURL != "" {
		WriteJSON(w, http.StatusOK, map[string]string{"redirect": h.LogoutURL})
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "signed_out"})
}

// authStateResponse is the wire shape of an auth snapshot.
type authStateResponse struct {
	Phase domainauth.Phase           `json:"phase"`
	User  *domainauth.AuthorizedUser `json:"user,omitempty"`
	Error string                     `json:"error,omitempty"`
}

// State handles GET /auth/state, returning the current snapshot without
// waiting: clients poll it to render loading, signed-out, or signed-in UI.
func (h *AuthHandlers) State(w http.ResponseWriter, _ *http.Request) {
	state := h.States.State()
	WriteJSON(w, http.StatusOK, authStateResponse{
		Phase: state.Phase,
		User:  state.User,
		Error: state.Err,
	})
}

// sanitizeRelativeURI allows only relative paths starting with "/"; anything
// else falls back to root so the flow can't be used as an open redirect.
func sanitizeRelativeURI(raw string) string {
	if raw == "" {
		return "/"
	}
	u, err := url.Parse(raw)
	if err != nil || u.IsAbs() || u.Host != "" || !strings.HasPrefix(u.Path, "/") {
		return "/"
	}
	return raw
}

func setFlowCookie(w http.ResponseWriter, name, value string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int((10 * time.Minute).Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearFlowCookie(w http.ResponseWriter, name string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
