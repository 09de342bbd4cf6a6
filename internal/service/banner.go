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

// bannerStore is the repository surface of the banner service.
type bannerStore interface {
	Create(ctx context.Context, req *model.CreateBannerRequest) (*model.Banner, error)
	GetByID(ctx context.Context, id string) (*model.Banner, error)
	List(ctx context.Context, activeOnly bool) ([]*model.Banner, error)
	Update(ctx context.Context, id string, req model.UpdateBannerRequest) (*model.Banner, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// BannerService manages homepage banners. The active listing is public;
// everything else requires an admin.
type BannerService struct {
	logger *slog.Logger
	repo   bannerStore
}

// BannerServiceOptions holds dependencies for NewBannerService.
type BannerServiceOptions struct {
	Logger *slog.Logger
	Repo   bannerStore
}

// NewBannerService creates a new BannerService.
func NewBannerService(opts BannerServiceOptions) *BannerService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &BannerService{
		logger: logger.With("component", "banner_service"),
		repo:   opts.Repo,
	}
}

// ListActive returns active banners in display order.
func (s *BannerService) ListActive(ctx context.Context) ([]*model.Banner, error) {
	return s.repo.List(ctx, true)
}

// ListAll returns every banner. Requires an admin actor.
func (s *BannerService) ListAll(ctx context.Context, actor *domainauth.AuthorizedUser) ([]*model.Banner, error) {
	if err := requireBannerAdmin(actor); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, false)
}

// Create adds a banner. Requires an admin actor.
func (s *BannerService) Create(ctx context.Context, actor *domainauth.AuthorizedUser, req *model.CreateBannerRequest) (*model.Banner, error) {
	if err := requireBannerAdmin(actor); err != nil {
		return nil, err
	}
	banner, err := s.repo.Create(ctx, req)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "banner created", "banner_id", banner.ID, "actor", actor.ID)
	return banner, nil
}

// Update modifies a banner. Requires an admin actor.
func (s *BannerService) Update(ctx context.Context, actor *domainauth.AuthorizedUser, id string, req model.UpdateBannerRequest) (*model.Banner, error) {
	if err := requireBannerAdmin(actor); err != nil {
		return nil, err
	}
	banner, err := s.repo.Update(ctx, id, req)
	if err != nil {
		if errors.Is(err, data.ErrBannerNotFound) {
			return nil, apperrors.NotFound("banner not found")
		}
		return nil, err
	}
	s.logger.InfoContext(ctx, "banner updated", "banner_id", banner.ID, "actor", actor.ID)
	return banner, nil
}

// Delete removes a banner. Requires an admin actor.
func (s *BannerService) Delete(ctx context.Context, actor *domainauth.AuthorizedUser, id string) error {
	if err := requireBannerAdmin(actor); err != nil {
		return err
	}
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return apperrors.NotFound("banner not found")
	}
	s.logger.InfoContext(ctx, "banner deleted", "banner_id", id, "actor", actor.ID)
	return nil
}

func requireBannerAdmin(actor *domainauth.AuthorizedUser) error {
	if actor == nil {
		return apperrors.Unauthorized("sign-in required")
	}
	if !domainauth.IsAdmin(actor.Role) {
		return apperrors.Forbidden("admin role required")
	}
	return nil
}
