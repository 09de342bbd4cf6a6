package httpx

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/GustavoEraso/por-los-animales-maldonado-sub001/internal/domain/model"
	"github.com/GustavoEraso/por-los-animales-maldonado-sub001/internal/service"
)

// AnimalHandlers provides the JSON API for animal profiles.
type AnimalHandlers struct {
	Svc    *service.AnimalService
	Logger *slog.Logger
}

// List handles GET /api/animals with optional species, status, sort, dir,
// limit, and offset query parameters.
func (h *AnimalHandlers) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := model.AnimalsListOptions{
		Sort: q.Get("sort"),
		Dir:  q.Get("dir"),
	}
	if v := q.Get("species"); v != "" {
		opts.Species = &v
	}
	if v := q.Get("status"); v != "" {
		status := model.AnimalStatus(v)
		opts.Status = &status
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			opts.Limit = n
		}
	}
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			opts.Offset = n
		}
	}

	animals, err := h.Svc.List(r.Context(), opts)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, animals)
}

// Get handles GET /api/animals/{id}.
func (h *AnimalHandlers) Get(w http.ResponseWriter, r *http.Request) {
	animal, err := h.Svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, animal)
}

// Create handles POST /api/animals.
func (h *AnimalHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateAnimalRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	animal, err := h.Svc.Create(r.Context(), ActorFrom(r), &req)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, animal)
}

// Update handles PATCH /api/animals/{id}.
func (h *AnimalHandlers) Update(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateAnimalRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	animal, err := h.Svc.Update(r.Context(), ActorFrom(r), r.PathValue("id"), req)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, animal)
}

// Delete handles DELETE /api/animals/{id}.
func (h *AnimalHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Svc.Delete(r.Context(), ActorFrom(r), r.PathValue("id")); err != nil {
		WriteAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
