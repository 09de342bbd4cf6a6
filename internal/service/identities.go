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

// identityStore is the repository surface of the identity admin service.
type identityStore interface {
	GetByEmail(ctx context.Context, email string) (*model.AuthorizedIdentity, error)
	List(ctx context.Context) ([]*model.AuthorizedIdentity, error)
	Upsert(ctx context.Context, req *model.UpsertIdentityRequest) (*model.AuthorizedIdentity, error)
	Delete(ctx context.Context, email string) (bool, error)
}

// decisionInvalidator drops cached authorization decisions after allow-list
// mutations.
type decisionInvalidator interface {
	Invalidate(ctx context.Context, email string)
}

// IdentityAdminService manages the allow-list on behalf of signed-in admins.
// Every mutation is checked against the role management rules: admins manage
// users and rescuers, superadmins manage everyone.
type IdentityAdminService struct {
	logger      *slog.Logger
	repo        identityStore
	invalidator decisionInvalidator
}

// IdentityAdminServiceOptions holds dependencies for NewIdentityAdminService.
type IdentityAdminServiceOptions struct {
	Logger *slog.Logger
	Repo   identityStore
	// Invalidator is optional; when set, cached decisions are dropped after
	// mutations so role changes take effect within a session change.
	Invalidator decisionInvalidator
}

// NewIdentityAdminService creates a new IdentityAdminService.
func NewIdentityAdminService(opts IdentityAdminServiceOptions) *IdentityAdminService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &IdentityAdminService{
		logger:      logger.With("component", "identity_admin_service"),
		repo:        opts.Repo,
		invalidator: opts.Invalidator,
	}
}

// List returns all allow-list entries. Requires an admin actor.
func (s *IdentityAdminService) List(ctx context.Context, actor *domainauth.AuthorizedUser) ([]*model.AuthorizedIdentity, error) {
	if actor == nil {
		return nil, apperrors.Unauthorized("sign-in required")
	}
	if !domainauth.IsAdmin(actor.Role) {
		return nil, apperrors.Forbidden("admin role required")
	}
	return s.repo.List(ctx)
}

// Upsert creates or replaces an allow-list entry. The actor must be able to
// manage both the requested role and, when the entry exists, its current role.
func (s *IdentityAdminService) Upsert(ctx context.Context, actor *domainauth.AuthorizedUser, req *model.UpsertIdentityRequest) (*model.AuthorizedIdentity, error) {
	if actor == nil {
		return nil, apperrors.Unauthorized("sign-in required")
	}
	if req == nil {
		return nil, apperrors.Validation("request body is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if !domainauth.CanManageUser(actor.Role, req.Role) {
		return nil, apperrors.Forbiddenf("role %s cannot assign role %s", actor.Role, req.Role)
	}

	existing, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, data.ErrIdentityNotFound) {
		return nil, err
	}
	if existing != nil && !domainauth.CanManageUser(actor.Role, existing.Role) {
		return nil, apperrors.Forbiddenf("role %s cannot manage a %s entry", actor.Role, existing.Role)
	}

	identity, err := s.repo.Upsert(ctx, req)
	if err != nil {
		return nil, err
	}
	if s.invalidator != nil {
		s.invalidator.Invalidate(ctx, identity.Email)
	}
	s.logger.InfoContext(ctx, "allow-list entry upserted",
		"email", identity.Email, "role", identity.Role, "actor", actor.ID)
	return identity, nil
}

// Delete removes an allow-list entry. The actor must be able to manage the
// entry's current role.
func (s *IdentityAdminService) Delete(ctx context.Context, actor *domainauth.AuthorizedUser, email string) error {
	if actor == nil {
		return apperrors.Unauthorized("sign-in required")
	}

	existing, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, data.ErrIdentityNotFound) {
			return apperrors.NotFound("allow-list entry not found")
		}
		return err
	}
	if !domainauth.CanManageUser(actor.Role, existing.Role) {
		return apperrors.Forbiddenf("role %s cannot manage a %s entry", actor.Role, existing.Role)
	}

	deleted, err := s.repo.Delete(ctx, email)
	if err != nil {
		return err
	}
	if !deleted {
		return apperrors.NotFound("allow-list entry not found")
	}
	if s.invalidator != nil {
		s.invalidator.Invalidate(ctx, existing.Email)
	}
	s.logger.InfoContext(ctx, "allow-list entry deleted",
		"email", existing.Email, "actor", actor.ID)
	return nil
}

// AssignableRoles returns the roles the actor may grant.
func (s *IdentityAdminService) AssignableRoles(actor *domainauth.AuthorizedUser) []domainauth.Role {
	if actor == nil {
		return nil
	}
	return domainauth.AssignableRoles(actor.Role)
}
