package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/GustavoEraso/por-los-animales-maldonado-sub001/internal/data"
	domainauth "github.com/GustavoEraso/por-los-animales-maldonado-sub001/internal/domain/auth"
	"github.com/GustavoEraso/por-los-animales-maldonado-sub001/internal/domain/model"
	apperrors "github.com/GustavoEraso/por-los-animales-maldonado-sub001/internal/errors"
	"github.com/GustavoEraso/por-los-animales-maldonado-sub001/internal/ports"
)

// identityReader is the repository surface the allow-list service needs.
type identityReader interface {
	GetByEmail(ctx context.Context, email string) (*model.AuthorizedIdentity, error)
}

// AllowlistService answers authorization lookups from the allow-list table.
// Decisions are cached with a short TTL and concurrent lookups for the same
// email are collapsed into one query.
type AllowlistService struct {
	logger *slog.Logger
	repo   identityReader
	cache  ports.CacheRepository
	ttl    time.Duration
	group  singleflight.Group
}

// AllowlistServiceOptions holds dependencies for NewAllowlistService.
type AllowlistServiceOptions struct {
	Logger *slog.Logger
	Repo   identityReader
	// Cache is optional; a nil cache disables decision caching.
	Cache ports.CacheRepository
	// CacheTTL bounds decision staleness. Defaults to 5m.
	CacheTTL time.Duration
}

// NewAllowlistService creates a new AllowlistService.
func NewAllowlistService(opts AllowlistServiceOptions) *AllowlistService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &AllowlistService{
		logger: logger.With("component", "allowlist_service"),
		repo:   opts.Repo,
		cache:  opts.Cache,
		ttl:    ttl,
	}
}

const decisionKeyPrefix = "authz:decision:"

// CheckUser returns the authorization decision for email. An email with no
// allow-list row is a definitive Decision{Authorized: false} with a nil
// error; errors mean the lookup could not run.
func (s *AllowlistService) CheckUser(ctx context.Context, email string) (domainauth.Decision, error) {
	email = model.NormalizeEmail(email)
	if email == "" {
		return domainauth.Decision{}, nil
	}

	if cached, ok := s.cachedDecision(ctx, email); ok {
		return cached, nil
	}

	res, err, _ := s.group.Do(email, func() (any, error) {
		identity, err := s.repo.GetByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, data.ErrIdentityNotFound) {
				return domainauth.Decision{Authorized: false}, nil
			}
			return domainauth.Decision{}, apperrors.Wrap(err, apperrors.ErrCodeUnavailable, "allow-list lookup")
		}
		return domainauth.Decision{
			Authorized: true,
			Role:       identity.Role,
			Name:       identity.Name,
		}, nil
	})
	if err != nil {
		return domainauth.Decision{}, err
	}

	decision := res.(domainauth.Decision)
	s.storeDecision(ctx, email, decision)
	return decision, nil
}

// Invalidate drops the cached decision for email, if any.
func (s *AllowlistService) Invalidate(ctx context.Context, email string) {
	if s.cache == nil {
		return
	}
	email = model.NormalizeEmail(email)
	if email == "" {
		return
	}
	if _, err := s.cache.Delete(ctx, decisionKeyPrefix+email); err != nil {
		s.logger.WarnContext(ctx, "failed to invalidate cached decision",
			"email", email, "err", err)
	}
}

func (s *AllowlistService) cachedDecision(ctx context.Context, email string) (domainauth.Decision, bool) {
	if s.cache == nil {
		return domainauth.Decision{}, false
	}
	raw, err := s.cache.Get(ctx, decisionKeyPrefix+email)
	if err != nil {
		s.logger.WarnContext(ctx, "decision cache read failed", "err", err)
		return domainauth.Decision{}, false
	}
	if raw == nil {
		return domainauth.Decision{}, false
	}
	var decision domainauth.Decision
	if err := json.Unmarshal(raw, &decision); err != nil {
		s.logger.WarnContext(ctx, "corrupt cached decision", "err", err)
		return domainauth.Decision{}, false
	}
	return decision, true
}

func (s *AllowlistService) storeDecision(ctx context.Context, email string, decision domainauth.Decision) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(decision)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, decisionKeyPrefix+email, raw, s.ttl); err != nil {
		s.logger.WarnContext(ctx, "decision cache write failed", "err", err)
	}
}
