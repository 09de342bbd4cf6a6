package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/GustavoEraso/por-los-animales-maldonado-sub001/internal/data"
	domainauth "github.com/GustavoEraso/por-los-animales-maldonado-sub001/internal/domain/auth"
	"github.com/GustavoEraso/por-los-animales-maldonado-sub001/internal/domain/model"
	apperrors "github.com/GustavoEraso/por-los-animales-maldonado-sub001/internal/errors"
)

// animalStore is the repository surface of the animal service.
type animalStore interface {
	Create(ctx context.Context, req *model.CreateAnimalRequest) (*model.Animal, error)
	GetByID(ctx context.Context, id string) (*model.Animal, error)
	List(ctx context.Context, opts model.AnimalsListOptions) ([]*model.Animal, error)
	Update(ctx context.Context, id string, req model.UpdateAnimalRequest) (*model.Animal, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// AnimalService manages animal profiles. Reads are public; mutations require
// the rescuer role or higher.
type AnimalService struct {
	logger *slog.Logger
	repo   animalStore
}

// AnimalServiceOptions holds dependencies for NewAnimalService.
type AnimalServiceOptions struct {
	Logger *slog.Logger
	Repo   animalStore
}

// NewAnimalService creates a new AnimalService.
func NewAnimalService(opts AnimalServiceOptions) *AnimalService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &AnimalService{
		logger: logger.With("component", "animal_service"),
		repo:   opts.Repo,
	}
}

// List returns animal profiles matching the options.
func (s *AnimalService) List(ctx context.Context, opts model.AnimalsListOptions) ([]*model.Animal, error) {
	return s.repo.List(ctx, opts)
}

// Get returns an animal profile by ID.
func (s *AnimalService) Get(ctx context.Context, id string) (*model.Animal, error) {
	animal, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, data.ErrAnimalNotFound) {
			return nil, apperrors.NotFound("animal not found")
		}
		return nil, err
	}
	return animal, nil
}

// Create adds an animal profile. Requires the rescuer role or higher.
func (s *AnimalService) Create(ctx context.Context, actor *domainauth.AuthorizedUser, req *model.CreateAnimalRequest) (*model.Animal, error) {
	if err := requireAnimalManager(actor); err != nil {
		return nil, err
	}
	animal, err := s.repo.Create(ctx, req)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "animal created",
		"animal_id", animal.ID, "name", animal.Name, "actor", actor.ID)
	return animal, nil
}

// Update modifies an animal profile. Requires the rescuer role or higher.
func (s *AnimalService) Update(ctx context.Context, actor *domainauth.AuthorizedUser, id string, req model.UpdateAnimalRequest) (*model.Animal, error) {
	if err := requireAnimalManager(actor); err != nil {
		return nil, err
	}
	animal, err := s.repo.Update(ctx, id, req)
	if err != nil {
		if errors.Is(err, data.ErrAnimalNotFound) {
			return nil, apperrors.NotFound("animal not found")
		}
		return nil, err
	}
	s.logger.InfoContext(ctx, "animal updated", "animal_id", animal.ID, "actor", actor.ID)
	return animal, nil
}

// Delete removes an animal profile. Requires the rescuer role or higher.
func (s *AnimalService) Delete(ctx context.Context, actor *domainauth.AuthorizedUser, id string) error {
	if err := requireAnimalManager(actor); err != nil {
		return err
	}
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return apperrors.NotFound("animal not found")
	}
	s.logger.InfoContext(ctx, "animal deleted", "animal_id", id, "actor", actor.ID)
	return nil
}

func requireAnimalManager(actor *domainauth.AuthorizedUser) error {
	if actor == nil {
		return apperrors.Unauthorized("sign-in required")
	}
	if !domainauth.CanManageAnimals(actor.Role) {
		return apperrors.Forbidden("rescuer role required")
	}
	return nil
}
