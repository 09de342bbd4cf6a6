package model

import (
	"strings"
	"time"

	apperrors "github.com/GustavoEraso/por-los-animales-maldonado-sub001/internal/errors"
)

// AnimalStatus tracks where an animal is in the adoption pipeline.
type AnimalStatus string

const (
	AnimalStatusAvailable AnimalStatus = "available"
	AnimalStatusReserved  AnimalStatus = "reserved"
	AnimalStatusAdopted   AnimalStatus = "adopted"
)

// validAnimalStatuses is the closed set accepted from clients.
var validAnimalStatuses = map[AnimalStatus]bool{
	AnimalStatusAvailable: true,
	AnimalStatusReserved:  true,
	AnimalStatusAdopted:   true,
}

// Valid reports whether s is a known status.
func (s AnimalStatus) Valid() bool { return validAnimalStatuses[s] }

// Animal is an adoptable animal profile.
type Animal struct {
	ID          string       `json:"id" db:"id"`
	Name        string       `json:"name" db:"name"`
	Species     string       `json:"species" db:"species"`
	Status      AnimalStatus `json:"status" db:"status"`
	Description string       `json:"description" db:"description"`
	PhotoURL    string       `json:"photo_url" db:"photo_url"`
	CreatedAt   time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at" db:"updated_at"`
}

// CreateAnimalRequest carries fields for creating an animal profile.
type CreateAnimalRequest struct {
	Name        string       `json:"name"`
	Species     string       `json:"species"`
	Status      AnimalStatus `json:"status"`
	Description string       `json:"description"`
	PhotoURL    string       `json:"photo_url"`
}

// Validate checks the request fields.
func (r *CreateAnimalRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return apperrors.ValidationField("name", "name is required")
	}
	if strings.TrimSpace(r.Species) == "" {
		return apperrors.ValidationField("species", "species is required")
	}
	if r.Status != "" && !r.Status.Valid() {
		return apperrors.ValidationField("status", "unknown status")
	}
	return nil
}

// UpdateAnimalRequest carries optional fields for updating an animal profile.
// Nil fields are left unchanged.
type UpdateAnimalRequest struct {
	Name        *string       `json:"name,omitempty"`
	Species     *string       `json:"species,omitempty"`
	Status      *AnimalStatus `json:"status,omitempty"`
	Description *string       `json:"description,omitempty"`
	PhotoURL    *string       `json:"photo_url,omitempty"`
}

// Validate checks the request fields.
func (r *UpdateAnimalRequest) Validate() error {
	if r.Name != nil && strings.TrimSpace(*r.Name) == "" {
		return apperrors.ValidationField("name", "name cannot be empty")
	}
	if r.Species != nil && strings.TrimSpace(*r.Species) == "" {
		return apperrors.ValidationField("species", "species cannot be empty")
	}
	if r.Status != nil && !r.Status.Valid() {
		return apperrors.ValidationField("status", "unknown status")
	}
	return nil
}

// AnimalsListOptions carries pass-through filters and sorting for listings.
type AnimalsListOptions struct {
	Species *string
	Status  *AnimalStatus
	Sort    string
	Dir     string
	Limit   int
	Offset  int
}
