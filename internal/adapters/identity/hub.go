package identity

// Package identity implements the in-process identity provider boundary: a
// hub that holds the current provider session and fans out changes to
// subscribers. Login handlers publish into it; the session machine observes it.

import (
	"context"
	"log/slog"
	"sync"

	domainauth "github.com/GustavoEraso/por-los-animales-maldonado-sub001/internal/domain/auth"
)

// RevokeFunc terminates the upstream provider session, if any. It runs before
// observers are told the session ended.
type RevokeFunc func(ctx context.Context) error

// Hub implements ports.IdentityProvider. It is safe for concurrent use.
type Hub struct {
	logger *slog.Logger
	revoke RevokeFunc

	mu      sync.Mutex
	current *domainauth.IdentitySession
	subs    map[chan *domainauth.IdentitySession]struct{}
}

// HubOptions holds dependencies for NewHub.
type HubOptions struct {
	Logger *slog.Logger
	// Revoke is called by EndSession before the nil session is published.
	// Optional; a nil Revoke makes EndSession purely local.
	Revoke RevokeFunc
}

// NewHub creates a Hub with no current session.
func NewHub(opts HubOptions) *Hub {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		logger: logger.With("component", "identity_hub"),
		revoke: opts.Revoke,
		subs:   make(map[chan *domainauth.IdentitySession]struct{}),
	}
}

// Subscribe returns a channel that delivers the current session immediately
// and every change afterward. Slow subscribers only ever observe the latest
// value; intermediate sessions may be skipped. The channel closes when ctx is
// done.
func (h *Hub) Subscribe(ctx context.Context) <-chan *domainauth.IdentitySession {
	ch := make(chan *domainauth.IdentitySession, 1)

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	ch <- h.current
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.mu.Lock()
		delete(h.subs, ch)
		h.mu.Unlock()
		close(ch)
	}()

	return ch
}

// Publish replaces the current session and notifies subscribers. A nil
// session means signed out.
func (h *Hub) Publish(session *domainauth.IdentitySession) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.current = session
	for ch := range h.subs {
		// Drop the stale pending value so the buffer always holds the latest.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- session:
		default:
		}
	}
}

// Current returns the session as last published.
func (h *Hub) Current() *domainauth.IdentitySession {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current
}

// EndSession revokes the upstream session when a revoker is configured, then
// publishes the signed-out state. Observers receive nil even when revocation
// fails, since the local session must not outlive an end request.
func (h *Hub) EndSession(ctx context.Context) error {
	var revokeErr error
	if h.revoke != nil {
		revokeErr = h.revoke(ctx)
		if revokeErr != nil {
			h.logger.WarnContext(ctx, "upstream session revocation failed", "err", revokeErr)
		}
	}
	h.Publish(nil)
	return revokeErr
}
