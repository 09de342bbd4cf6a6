package model

import (
	"strings"
	"time"

	apperrors "github.com/GustavoEraso/por-los-animales-maldonado-sub001/internal/errors"
)

// Banner is a homepage banner record managed by staff.
type Banner struct {
	ID        string    `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	ImageURL  string    `json:"image_url" db:"image_url"`
	LinkURL   string    `json:"link_url" db:"link_url"`
	Active    bool      `json:"active" db:"active"`
	Position  int       `json:"position" db:"position"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// CreateBannerRequest carries fields for creating a banner.
type CreateBannerRequest struct {
	Title    string `json:"title"`
	ImageURL string `json:"image_url"`
	LinkURL  string `json:"link_url"`
	Active   *bool  `json:"active,omitempty"`
	Position int    `json:"position"`
}

// Validate checks the request fields.
func (r *CreateBannerRequest) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return apperrors.ValidationField("title", "title is required")
	}
	if strings.TrimSpace(r.ImageURL) == "" {
		return apperrors.ValidationField("image_url", "image URL is required")
	}
	if r.Position < 0 {
		return apperrors.ValidationField("position", "position cannot be negative")
	}
	return nil
}

// UpdateBannerRequest carries optional fields for updating a banner.
// Nil fields are left unchanged.
type UpdateBannerRequest struct {
	Title    *string `json:"title,omitempty"`
	ImageURL *string `json:"image_url,omitempty"`
	LinkURL  *string `json:"link_url,omitempty"`
	Active   *bool   `json:"active,omitempty"`
	Position *int    `json:"position,omitempty"`
}

// Validate checks the request fields.
func (r *UpdateBannerRequest) Validate() error {
	if r.Title != nil && strings.TrimSpace(*r.Title) == "" {
		return apperrors.ValidationField("title", "title cannot be empty")
	}
	if r.ImageURL != nil && strings.TrimSpace(*r.ImageURL) == "" {
		return apperrors.ValidationField("image_url", "image URL cannot be empty")
	}
	if r.Position != nil && *r.Position < 0 {
		return apperrors.ValidationField("position", "position cannot be negative")
	}
	return nil
}
