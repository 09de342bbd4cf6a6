package httpx

import (
	"log/slog"
	"net/http"

	"github.com/GustavoEraso/por-los-animales-maldonado-sub001/internal/domain/model"
	"github.com/GustavoEraso/por-los-animales-maldonado-sub001/internal/service"
)

// IdentityHandlers provides the JSON API for allow-list administration.
type IdentityHandlers struct {
	Svc    *service.IdentityAdminService
	Logger *slog.Logger
}

// List handles GET /api/admin/identities.
func (h *IdentityHandlers) List(w http.ResponseWriter, r *http.Request) {
	identities, err := h.Svc.List(r.Context(), ActorFrom(r))
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, identities)
}

// Upsert handles PUT /api/admin/identities.
func (h *IdentityHandlers) Upsert(w http.ResponseWriter, r *http.Request) {
	var req model.UpsertIdentityRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	identity, err := h.Svc.Upsert(r.Context(), ActorFrom(r), &req)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, identity)
}

// Delete handles DELETE /api/admin/identities/{email}.
func (h *IdentityHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Svc.Delete(r.Context(), ActorFrom(r), r.PathValue("email")); err != nil {
		WriteAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AssignableRoles handles GET /api/admin/identities/assignable-roles.
func (h *IdentityHandlers) AssignableRoles(w http.ResponseWriter, r *http.Request) {
	roles := h.Svc.AssignableRoles(ActorFrom(r))
	WriteJSON(w, http.StatusOK, map[string]any{"roles": roles})
}
