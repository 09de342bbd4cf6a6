package httpx

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/GustavoEraso/por-los-animales-maldonado-sub001/internal/ports"
)

// CheckUserHandlers serves the internal authorization lookup endpoint used by
// sibling services. The route is protected by RequireServiceSecret and rate
// limited in the router.
type CheckUserHandlers struct {
	Lookup ports.AuthorizationLookup
	Logger *slog.Logger
}

func (h *CheckUserHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

type checkUserRequest struct {
	Email string `json:"email"`
}

// CheckUser handles POST /internal/check-user. A missing allow-list row is a
// definitive 200 with authorized=false; only lookup failures are errors.
func (h *CheckUserHandlers) CheckUser(w http.ResponseWriter, r *http.Request) {
	var req checkUserRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.Email == "" {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "missing_email",
			Err:     errors.New("email is required"),
		})
		return
	}

	decision, err := h.Lookup.CheckUser(r.Context(), req.Email)
	if err != nil {
		h.logger().ErrorContext(r.Context(), "check-user lookup failed", "err", err)
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, decision)
}
