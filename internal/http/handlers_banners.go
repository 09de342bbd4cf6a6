package httpx

import (
	"log/slog"
	"net/http"

	"github.com/GustavoEraso/por-los-animales-maldonado-sub001/internal/domain/model"
	"github.com/GustavoEraso/por-los-animales-maldonado-sub001/internal/service"
)

// BannerHandlers provides the JSON API for homepage banners.
type BannerHandlers struct {
	Svc    *service.BannerService
	Logger *slog.Logger
}

// ListActive handles GET /api/banners: the public, active-only listing.
func (h *BannerHandlers) ListActive(w http.ResponseWriter, r *http.Request) {
	banners, err := h.Svc.ListActive(r.Context())
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, banners)
}

// ListAll handles GET /api/admin/banners.
func (h *BannerHandlers) ListAll(w http.ResponseWriter, r *http.Request) {
	banners, err := h.Svc.ListAll(r.Context(), ActorFrom(r))
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, banners)
}

// Create handles POST /api/admin/banners.
func (h *BannerHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateBannerRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	banner, err := h.Svc.Create(r.Context(), ActorFrom(r), &req)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, banner)
}

// Update handles PATCH /api/admin/banners/{id}.
func (h *BannerHandlers) Update(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateBannerRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	banner, err := h.Svc.Update(r.Context(), ActorFrom(r), r.PathValue("id"), req)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, banner)
}

// Delete handles DELETE /api/admin/banners/{id}.
func (h *BannerHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Svc.Delete(r.Context(), ActorFrom(r), r.PathValue("id")); err != nil {
		WriteAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
