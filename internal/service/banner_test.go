package service

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GustavoEraso/por-los-animales-maldonado-sub001/internal/data"
	domainauth "github.com/GustavoEraso/por-los-animales-maldonado-sub001/internal/domain/auth"
	"github.com/GustavoEraso/por-los-animales-maldonado-sub001/internal/domain/model"
	apperrors "github.com/GustavoEraso/por-los-animales-maldonado-sub001/internal/errors"
)

// fakeBannerStore is a map-backed bannerStore for tests.
type fakeBannerStore struct {
	rows   map[string]*model.Banner
	nextID int
}

func newFakeBannerStore() *fakeBannerStore {
	return &fakeBannerStore{rows: make(map[string]*model.Banner)}
}

func (s *fakeBannerStore) Create(_ context.Context, req *model.CreateBannerRequest) (*model.Banner, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	s.nextID++
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	b := &model.Banner{
		ID: strconv.Itoa(s.nextID), Title: req.Title, ImageURL: req.ImageURL,
		Active: active, Position: req.Position,
	}
	s.rows[b.ID] = b
	return b, nil
}

func (s *fakeBannerStore) GetByID(_ context.Context, id string) (*model.Banner, error) {
	b, ok := s.rows[id]
	if !ok {
		return nil, data.ErrBannerNotFound
	}
	return b, nil
}

func (s *fakeBannerStore) List(_ context.Context, activeOnly bool) ([]*model.Banner, error) {
	out := make([]*model.Banner, 0, len(s.rows))
	for _, b := range s.rows {
		if activeOnly && !b.Active {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (s *fakeBannerStore) Update(_ context.Context, id string, req model.UpdateBannerRequest) (*model.Banner, error) {
	b, ok := s.rows[id]
	if !ok {
		return nil, data.ErrBannerNotFound
	}
	if req.Active != nil {
		b.Active = *req.Active
	}
	if req.Title != nil {
		b.Title = *req.Title
	}
	return b, nil
}

func (s *fakeBannerStore) Delete(_ context.Context, id string) (bool, error) {
	_, ok := s.rows[id]
	delete(s.rows, id)
	return ok, nil
}

func TestBannerService_ActiveListingIsPublic(t *testing.T) {
	store := newFakeBannerStore()
	svc := NewBannerService(BannerServiceOptions{Repo: store})

	inactive := false
	_, err := svc.Create(context.Background(), admin(), &model.CreateBannerRequest{
		Title: "Adopt", ImageURL: "https://cdn/adopt.png",
	})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), admin(), &model.CreateBannerRequest{
		Title: "Hidden", ImageURL: "https://cdn/hidden.png", Active: &inactive,
	})
	require.NoError(t, err)

	active, err := svc.ListActive(context.Background())
	require.NoError(t, err)
	assert.Len(t, active, 1)
	assert.Equal(t, "Adopt", active[0].Title)
}

func TestBannerService_MutationsRequireAdmin(t *testing.T) {
	svc := NewBannerService(BannerServiceOptions{Repo: newFakeBannerStore()})
	req := &model.CreateBannerRequest{Title: "Adopt", ImageURL: "https://cdn/adopt.png"}

	_, err := svc.Create(context.Background(), nil, req)
	assert.True(t, apperrors.IsUnauthorized(err))

	_, err = svc.Create(context.Background(), rescuer(), req)
	assert.True(t, apperrors.IsForbidden(err))

	_, err = svc.ListAll(context.Background(), rescuer())
	assert.True(t, apperrors.IsForbidden(err))

	for _, actor := range []*domainauth.AuthorizedUser{admin(), superadmin()} {
		_, err = svc.Create(context.Background(), actor, req)
		assert.NoError(t, err, "role %s should manage banners", actor.Role)
	}
}

func TestBannerService_UpdateAndDelete(t *testing.T) {
	store := newFakeBannerStore()
	svc := NewBannerService(BannerServiceOptions{Repo: store})

	created, err := svc.Create(context.Background(), admin(), &model.CreateBannerRequest{
		Title: "Adopt", ImageURL: "https://cdn/adopt.png",
	})
	require.NoError(t, err)

	off := false
	updated, err := svc.Update(context.Background(), admin(), created.ID, model.UpdateBannerRequest{Active: &off})
	require.NoError(t, err)
	assert.False(t, updated.Active)

	_, err = svc.Update(context.Background(), admin(), "missing", model.UpdateBannerRequest{})
	assert.True(t, apperrors.IsNotFound(err))

	require.NoError(t, svc.Delete(context.Background(), admin(), created.ID))
	err = svc.Delete(context.Background(), admin(), created.ID)
	assert.True(t, apperrors.IsNotFound(err))
}
