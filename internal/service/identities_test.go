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

// fakeIdentityStore is a map-backed identityStore for tests.
type fakeIdentityStore struct {
	rows map[string]*model.AuthorizedIdentity
}

func newFakeIdentityStore(rows ...*model.AuthorizedIdentity) *fakeIdentityStore {
	s := &fakeIdentityStore{rows: make(map[string]*model.AuthorizedIdentity)}
	for _, r := range rows {
		s.rows[r.Email] = r
	}
	return s
}

func (s *fakeIdentityStore) GetByEmail(_ context.Context, email string) (*model.AuthorizedIdentity, error) {
	row, ok := s.rows[model.NormalizeEmail(email)]
	if !ok {
		return nil, data.ErrIdentityNotFound
	}
	return row, nil
}

func (s *fakeIdentityStore) List(context.Context) ([]*model.AuthorizedIdentity, error) {
	out := make([]*model.AuthorizedIdentity, 0, len(s.rows))
	for _, r := range s.rows {
		out = append(out, r)
	}
	return out, nil
}

func (s *fakeIdentityStore) Upsert(_ context.Context, req *model.UpsertIdentityRequest) (*model.AuthorizedIdentity, error) {
	row := &model.AuthorizedIdentity{
		ID:    "id-" + model.NormalizeEmail(req.Email),
		Email: model.NormalizeEmail(req.Email),
		Name:  req.Name,
		Role:  req.Role,
	}
	s.rows[row.Email] = row
	return row, nil
}

func (s *fakeIdentityStore) Delete(_ context.Context, email string) (bool, error) {
	email = model.NormalizeEmail(email)
	_, ok := s.rows[email]
	delete(s.rows, email)
	return ok, nil
}

type recordingInvalidator struct{ emails []string }

func (r *recordingInvalidator) Invalidate(_ context.Context, email string) {
	r.emails = append(r.emails, email)
}

func admin() *domainauth.AuthorizedUser {
	return &domainauth.AuthorizedUser{ID: "a1", Name: "Admin", Role: domainauth.RoleAdmin}
}

func superadmin() *domainauth.AuthorizedUser {
	return &domainauth.AuthorizedUser{ID: "s1", Name: "Super", Role: domainauth.RoleSuperAdmin}
}

func rescuer() *domainauth.AuthorizedUser {
	return &domainauth.AuthorizedUser{ID: "r1", Name: "Rescuer", Role: domainauth.RoleRescuer}
}

func TestIdentityAdmin_ListRequiresAdmin(t *testing.T) {
	svc := NewIdentityAdminService(IdentityAdminServiceOptions{Repo: newFakeIdentityStore()})

	_, err := svc.List(context.Background(), nil)
	assert.True(t, apperrors.IsUnauthorized(err))

	_, err = svc.List(context.Background(), rescuer())
	assert.True(t, apperrors.IsForbidden(err))

	_, err = svc.List(context.Background(), admin())
	assert.NoError(t, err)
}

func TestIdentityAdmin_UpsertRoleRules(t *testing.T) {
	store := newFakeIdentityStore()
	svc := NewIdentityAdminService(IdentityAdminServiceOptions{Repo: store})

	// Admin can grant user and rescuer.
	_, err := svc.Upsert(context.Background(), admin(), &model.UpsertIdentityRequest{
		Email: "new@example.com", Name: "New", Role: domainauth.RoleRescuer,
	})
	require.NoError(t, err)

	// Admin cannot grant admin or superadmin.
	_, err = svc.Upsert(context.Background(), admin(), &model.UpsertIdentityRequest{
		Email: "peer@example.com", Name: "Peer", Role: domainauth.RoleAdmin,
	})
	assert.True(t, apperrors.IsForbidden(err))

	// Superadmin can grant any valid role.
	_, err = svc.Upsert(context.Background(), superadmin(), &model.UpsertIdentityRequest{
		Email: "peer@example.com", Name: "Peer", Role: domainauth.RoleSuperAdmin,
	})
	require.NoError(t, err)

	// Rescuers manage nobody.
	_, err = svc.Upsert(context.Background(), rescuer(), &model.UpsertIdentityRequest{
		Email: "x@example.com", Name: "X", Role: domainauth.RoleUser,
	})
	assert.True(t, apperrors.IsForbidden(err))
}

func TestIdentityAdmin_UpsertCannotDemoteUnmanageableEntry(t *testing.T) {
	store := newFakeIdentityStore(&model.AuthorizedIdentity{
		ID: "id-1", Email: "boss@example.com", Name: "Boss", Role: domainauth.RoleSuperAdmin,
	})
	svc := NewIdentityAdminService(IdentityAdminServiceOptions{Repo: store})

	// An admin may not touch a superadmin entry, even to assign a lower role.
	_, err := svc.Upsert(context.Background(), admin(), &model.UpsertIdentityRequest{
		Email: "boss@example.com", Name: "Boss", Role: domainauth.RoleUser,
	})
	assert.True(t, apperrors.IsForbidden(err))
}

func TestIdentityAdmin_UpsertInvalidatesCache(t *testing.T) {
	store := newFakeIdentityStore()
	inv := &recordingInvalidator{}
	svc := NewIdentityAdminService(IdentityAdminServiceOptions{Repo: store, Invalidator: inv})

	_, err := svc.Upsert(context.Background(), admin(), &model.UpsertIdentityRequest{
		Email: "New@Example.com", Name: "New", Role: domainauth.RoleUser,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"new@example.com"}, inv.emails)
}

func TestIdentityAdmin_Delete(t *testing.T) {
	store := newFakeIdentityStore(
		&model.AuthorizedIdentity{ID: "1", Email: "user@example.com", Name: "U", Role: domainauth.RoleUser},
		&model.AuthorizedIdentity{ID: "2", Email: "boss@example.com", Name: "B", Role: domainauth.RoleSuperAdmin},
	)
	inv := &recordingInvalidator{}
	svc := NewIdentityAdminService(IdentityAdminServiceOptions{Repo: store, Invalidator: inv})

	// Admin may delete a user entry.
	require.NoError(t, svc.Delete(context.Background(), admin(), "user@example.com"))
	assert.Equal(t, []string{"user@example.com"}, inv.emails)

	// Admin may not delete a superadmin entry.
	err := svc.Delete(context.Background(), admin(), "boss@example.com")
	assert.True(t, apperrors.IsForbidden(err))

	// Missing entries are a not-found, regardless of actor.
	err = svc.Delete(context.Background(), superadmin(), "ghost@example.com")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestIdentityAdmin_AssignableRoles(t *testing.T) {
	svc := NewIdentityAdminService(IdentityAdminServiceOptions{Repo: newFakeIdentityStore()})

	assert.Nil(t, svc.AssignableRoles(nil))
	assert.Equal(t,
		[]domainauth.Role{domainauth.RoleUser, domainauth.RoleRescuer},
		svc.AssignableRoles(admin()))
	assert.Equal(t, domainauth.Roles(), svc.AssignableRoles(superadmin()))
	assert.Nil(t, svc.AssignableRoles(rescuer()))
}
