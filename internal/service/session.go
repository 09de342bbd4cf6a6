package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	domainauth "github.com/GustavoEraso/por-los-animales-maldonado-sub001/internal/domain/auth"
	apperrors "github.com/GustavoEraso/por-los-animales-maldonado-sub001/internal/errors"
	"github.com/GustavoEraso/por-los-animales-maldonado-sub001/internal/ports"
)

// SessionService derives the application's authorization state from the
// identity provider's session stream. For every new session it runs an
// authorization lookup; the resulting state snapshots drive the guards.
//
// The machine distinguishes a definitive denial from a lookup failure: an
// unlisted identity gets its provider session ended, while a failed lookup
// keeps the session and settles in an error state that the next session
// change retries.
type SessionService struct {
	logger        *slog.Logger
	provider      ports.IdentityProvider
	lookup        ports.AuthorizationLookup
	lookupTimeout time.Duration
	retries       int
	backoff       time.Duration

	mu      sync.Mutex
	state   domainauth.AuthState
	gen     uuid.UUID
	subs    map[chan domainauth.AuthState]struct{}
	changed chan struct{}
	sleep   func(ctx context.Context, d time.Duration) error
}

// SessionServiceOptions holds dependencies for NewSessionService.
type SessionServiceOptions struct {
	Logger   *slog.Logger
	Provider ports.IdentityProvider
	Lookup   ports.AuthorizationLookup

	// LookupTimeout bounds each lookup attempt. Defaults to 10s.
	LookupTimeout time.Duration
	// Retries is the total number of lookup attempts. Defaults to 3.
	Retries int
	// RetryBackoff is the base delay between attempts, doubled each retry.
	// Defaults to 250ms.
	RetryBackoff time.Duration
}

// NewSessionService creates a SessionService in its initial resolving state.
func NewSessionService(opts SessionServiceOptions) *SessionService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := opts.LookupTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	retries := opts.Retries
	if retries < 1 {
		retries = 3
	}
	backoff := opts.RetryBackoff
	if backoff <= 0 {
		backoff = 250 * time.Millisecond
	}
	return &SessionService{
		logger:        logger.With("component", "session_service"),
		provider:      opts.Provider,
		lookup:        opts.Lookup,
		lookupTimeout: timeout,
		retries:       retries,
		backoff:       backoff,
		state:         domainauth.AuthState{Phase: domainauth.PhaseResolving},
		subs:          make(map[chan domainauth.AuthState]struct{}),
		changed:       make(chan struct{}),
		sleep:         sleepCtx,
	}
}

// Run consumes the provider's session stream until ctx is done. Each session
// change supersedes any in-flight lookup: a lookup result is only applied
// when it still belongs to the newest session event.
func (s *SessionService) Run(ctx context.Context) error {
	sessions := s.provider.Subscribe(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case session, ok := <-sessions:
			if !ok {
				return ctx.Err()
			}
			s.onSessionEvent(ctx, session)
		}
	}
}

func (s *SessionService) onSessionEvent(ctx context.Context, session *domainauth.IdentitySession) {
	gen := uuid.New()

	s.mu.Lock()
	s.gen = gen
	s.mu.Unlock()

	if session == nil {
		s.mu.Lock()
		next := domainauth.AuthState{Phase: domainauth.PhaseSignedOut}
		// A forced sign-out keeps its denial reason across the provider's nil
		// event; only a new pending session clears the error.
		if s.state.Err == domainauth.ReasonNotAuthorized {
			next.Err = s.state.Err
		}
		s.setStateLocked(next)
		s.mu.Unlock()
		return
	}

	s.publish(domainauth.AuthState{Phase: domainauth.PhaseSignedInPending})
	go s.resolve(ctx, gen, *session)
}

// resolve runs the authorization lookup for one session event and applies the
// outcome if the event is still the newest one.
func (s *SessionService) resolve(ctx context.Context, gen uuid.UUID, session domainauth.IdentitySession) {
	decision, err := s.lookupWithRetry(ctx, gen, session.Email)

	s.mu.Lock()
	if s.gen != gen {
		// A newer session event owns the state now.
		s.mu.Unlock()
		return
	}

	switch {
	case err != nil:
		reason := domainauth.ReasonLookupFailed
		if apperrors.IsUnavailable(err) {
			reason = domainauth.ReasonFetchFailed
		}
		s.setStateLocked(domainauth.AuthState{
			Phase: domainauth.PhaseSignedInUnauthorized,
			Err:   reason,
		})
		s.mu.Unlock()
		s.logger.ErrorContext(ctx, "authorization lookup failed",
			"email", session.Email, "err", err)

	case !decision.Authorized:
		// A definitive denial signs the identity out immediately, keeping the
		// reason on the snapshot. The provider session is then ended exactly
		// once for this event; its follow-up nil event re-publishes signed out
		// without clearing the reason.
		s.setStateLocked(domainauth.AuthState{
			Phase: domainauth.PhaseSignedOut,
			Err:   domainauth.ReasonNotAuthorized,
		})
		s.mu.Unlock()
		s.logger.WarnContext(ctx, "signed-in identity is not authorized, ending session",
			"email", session.Email)
		if endErr := s.provider.EndSession(ctx); endErr != nil {
			s.logger.ErrorContext(ctx, "failed to end unauthorized session", "err", endErr)
		}

	default:
		name := decision.Name
		if name == "" {
			name = session.Name
		}
		s.setStateLocked(domainauth.AuthState{
			Phase: domainauth.PhaseSignedInAuthorized,
			User: &domainauth.AuthorizedUser{
				ID:   session.SubjectID,
				Name: name,
				Role: decision.Role,
			},
		})
		s.mu.Unlock()
		s.logger.InfoContext(ctx, "session authorized",
			"email", session.Email, "role", decision.Role)
	}
}

// lookupWithRetry attempts the lookup up to s.retries times with exponential
// backoff. It stops early when ctx is done or when the event went stale.
func (s *SessionService) lookupWithRetry(ctx context.Context, gen uuid.UUID, email string) (domainauth.Decision, error) {
	var lastErr error
	delay := s.backoff
	for attempt := 1; attempt <= s.retries; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, s.lookupTimeout)
		decision, err := s.lookup.CheckUser(attemptCtx, email)
		cancel()
		if err == nil {
			return decision, nil
		}
		lastErr = err

		if ctx.Err() != nil || s.stale(gen) || attempt == s.retries {
			break
		}
		if sleepErr := s.sleep(ctx, delay); sleepErr != nil {
			break
		}
		delay *= 2
	}
	if lastErr == nil {
		lastErr = errors.New("authorization lookup did not run")
	}
	return domainauth.Decision{}, lastErr
}

func (s *SessionService) stale(gen uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen != gen
}

// publish sets the state and notifies observers.
func (s *SessionService) publish(state domainauth.AuthState) {
	s.mu.Lock()
	s.setStateLocked(state)
	s.mu.Unlock()
}

func (s *SessionService) setStateLocked(state domainauth.AuthState) {
	s.state = state
	close(s.changed)
	s.changed = make(chan struct{})
	for ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- state:
		default:
		}
	}
}

// State returns the latest snapshot.
func (s *SessionService) State() domainauth.AuthState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// WaitResolved blocks until the machine leaves its resolving and pending
// phases, then returns that snapshot.
func (s *SessionService) WaitResolved(ctx context.Context) (domainauth.AuthState, error) {
	for {
		s.mu.Lock()
		state := s.state
		changed := s.changed
		s.mu.Unlock()

		if state.Resolved() {
			return state, nil
		}
		select {
		case <-ctx.Done():
			return domainauth.AuthState{}, ctx.Err()
		case <-changed:
		}
	}
}

// Subscribe returns a channel delivering the current snapshot immediately and
// every subsequent change. Slow consumers only observe the latest snapshot.
// The channel closes when ctx is done.
func (s *SessionService) Subscribe(ctx context.Context) <-chan domainauth.AuthState {
	ch := make(chan domainauth.AuthState, 1)

	s.mu.Lock()
	s.subs[ch] = struct{}{}
	ch <- s.state
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.subs, ch)
		s.mu.Unlock()
		close(ch)
	}()

	return ch
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
