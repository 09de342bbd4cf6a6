package model

// Package model contains domain models for the rescue application's records.

import (
	"strings"
	"time"

	"github.com/GustavoEraso/por-los-animales-maldonado-sub001/internal/domain/auth"
	apperrors "github.com/GustavoEraso/por-los-animales-maldonado-sub001/internal/errors"
)

// AuthorizedIdentity is a row of the allow-list that backs authorization
// lookups. Identities are keyed by email; the stored role is the single
// source of truth for every permission decision.
type AuthorizedIdentity struct {
	ID        string    `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	Name      string    `json:"name" db:"name"`
	Role      auth.Role `json:"role" db:"role"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// NormalizeEmail lowercases and trims an email so lookups and stored rows
// agree on a single key form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// UpsertIdentityRequest creates or replaces an allow-list entry.
type UpsertIdentityRequest struct {
	Email string    `json:"email"`
	Name  string    `json:"name"`
	Role  auth.Role `json:"role"`
}

// Validate checks the request fields.
func (r *UpsertIdentityRequest) Validate() error {
	email := NormalizeEmail(r.Email)
	if email == "" {
		return apperrors.ValidationField("email", "email is required")
	}
	if !strings.Contains(email, "@") {
		return apperrors.ValidationField("email", "email must contain @")
	}
	if strings.TrimSpace(r.Name) == "" {
		return apperrors.ValidationField("name", "name is required")
	}
	if !r.Role.Valid() {
		return apperrors.ValidationField("role", "unknown role")
	}
	return nil
}
