package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GustavoEraso/por-los-animales-maldonado-sub001/internal/data"
	domainauth "github.com/GustavoEraso/por-los-animales-maldonado-sub001/internal/domain/auth"
	"github.com/GustavoEraso/por-los-animales-maldonado-sub001/internal/domain/model"
	apperrors "github.com/GustavoEraso/por-los-animales-maldonado-sub001/internal/errors"
)

// fakeAnimalStore is a map-backed animalStore for tests.
type fakeAnimalStore struct {
	rows   map[string]*model.Animal
	nextID int
}

func newFakeAnimalStore() *fakeAnimalStore {
	return &fakeAnimalStore{rows: make(map[string]*model.Animal)}
}

func (s *fakeAnimalStore) Create(_ context.Context, req *model.CreateAnimalRequest) (*model.Animal, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	s.nextID++
	status := req.Status
	if status == "" {
		status = model.AnimalStatusAvailable
	}
	a := &model.Animal{
		ID: string(rune('a' + s.nextID)), Name: req.Name, Species: req.Species, Status: status,
	}
	s.rows[a.ID] = a
	return a, nil
}

func (s *fakeAnimalStore) GetByID(_ context.Context, id string) (*model.Animal, error) {
	a, ok := s.rows[id]
	if !ok {
		return nil, data.ErrAnimalNotFound
	}
	return a, nil
}

func (s *fakeAnimalStore) List(context.Context, model.AnimalsListOptions) ([]*model.Animal, error) {
	out := make([]*model.Animal, 0, len(s.rows))
	for _, a := range s.rows {
		out = append(out, a)
	}
	return out, nil
}

func (s *fakeAnimalStore) Update(_ context.Context, id string, req model.UpdateAnimalRequest) (*model.Animal, error) {
	a, ok := s.rows[id]
	if !ok {
		return nil, data.ErrAnimalNotFound
	}
	if req.Name != nil {
		a.Name = *req.Name
	}
	if req.Status != nil {
		a.Status = *req.Status
	}
	return a, nil
}

func (s *fakeAnimalStore) Delete(_ context.Context, id string) (bool, error) {
	_, ok := s.rows[id]
	delete(s.rows, id)
	return ok, nil
}

func plainUser() *domainauth.AuthorizedUser {
	return &domainauth.AuthorizedUser{ID: "u1", Name: "User", Role: domainauth.RoleUser}
}

func TestAnimalService_ReadsArePublic(t *testing.T) {
	store := newFakeAnimalStore()
	svc := NewAnimalService(AnimalServiceOptions{Repo: store})

	created, err := svc.Create(context.Background(), rescuer(), &model.CreateAnimalRequest{
		Name: "Luna", Species: "dog",
	})
	require.NoError(t, err)

	animals, err := svc.List(context.Background(), model.AnimalsListOptions{})
	require.NoError(t, err)
	assert.Len(t, animals, 1)

	got, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Luna", got.Name)
	assert.Equal(t, model.AnimalStatusAvailable, got.Status)
}

func TestAnimalService_MutationsRequireRescuer(t *testing.T) {
	svc := NewAnimalService(AnimalServiceOptions{Repo: newFakeAnimalStore()})
	req := &model.CreateAnimalRequest{Name: "Luna", Species: "dog"}

	_, err := svc.Create(context.Background(), nil, req)
	assert.True(t, apperrors.IsUnauthorized(err))

	_, err = svc.Create(context.Background(), plainUser(), req)
	assert.True(t, apperrors.IsForbidden(err))

	for _, actor := range []*domainauth.AuthorizedUser{rescuer(), admin(), superadmin()} {
		_, err = svc.Create(context.Background(), actor, req)
		assert.NoError(t, err, "role %s should manage animals", actor.Role)
	}
}

func TestAnimalService_UpdateAndDelete(t *testing.T) {
	store := newFakeAnimalStore()
	svc := NewAnimalService(AnimalServiceOptions{Repo: store})

	created, err := svc.Create(context.Background(), rescuer(), &model.CreateAnimalRequest{
		Name: "Luna", Species: "dog",
	})
	require.NoError(t, err)

	adopted := model.AnimalStatusAdopted
	updated, err := svc.Update(context.Background(), rescuer(), created.ID, model.UpdateAnimalRequest{
		Status: &adopted,
	})
	require.NoError(t, err)
	assert.Equal(t, model.AnimalStatusAdopted, updated.Status)

	_, err = svc.Update(context.Background(), rescuer(), "missing", model.UpdateAnimalRequest{})
	assert.True(t, apperrors.IsNotFound(err))

	require.NoError(t, svc.Delete(context.Background(), rescuer(), created.ID))
	err = svc.Delete(context.Background(), rescuer(), created.ID)
	assert.True(t, apperrors.IsNotFound(err))

	err = svc.Delete(context.Background(), plainUser(), created.ID)
	assert.True(t, apperrors.IsForbidden(err))
}

func TestAnimalService_GetMissing(t *testing.T) {
	svc := NewAnimalService(AnimalServiceOptions{Repo: newFakeAnimalStore()})
	_, err := svc.Get(context.Background(), "missing")
	assert.True(t, apperrors.IsNotFound(err))
}
