package auth

// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"sync"
	"time"

	domainauth "github.com/GustavoEraso/por-los-animales-maldonado-sub001/internal/domain/auth"
	"github.com/GustavoEraso/por-los-animales-maldonado-sub001/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.IdentityProvider    = (*ScriptedIdentityProvider)(nil)
	_ ports.AuthorizationLookup = (*StubLookup)(nil)
	_ ports.CacheRepository     = (*MemoryCache)(nil)
)

// ScriptedIdentityProvider feeds a scripted sequence of session events to one
// subscriber and records EndSession calls.
type ScriptedIdentityProvider struct {
	mu          sync.Mutex
	ch          chan *domainauth.IdentitySession
	endCalls    int
	endErr      error
	endedSignal chan struct{}
	// PublishNilOnEnd mirrors a real provider: EndSession emits a nil session.
	PublishNilOnEnd bool
}

// NewScriptedIdentityProvider creates a provider with room for buffered events.
func NewScriptedIdentityProvider() *ScriptedIdentityProvider {
	return &ScriptedIdentityProvider{
		ch:          make(chan *domainauth.IdentitySession, 16),
		endedSignal: make(chan struct{}, 16),
	}
}

// Emit queues a session event for the subscriber.
func (p *ScriptedIdentityProvider) Emit(session *domainauth.IdentitySession) {
	p.ch <- session
}

// Subscribe returns the scripted event channel. Only one subscriber is
// supported, which matches how the session machine consumes the port.
func (p *ScriptedIdentityProvider) Subscribe(ctx context.Context) <-chan *domainauth.IdentitySession {
	out := make(chan *domainauth.IdentitySession, 16)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case s, ok := <-p.ch:
				if !ok {
					return
				}
				select {
				case <-ctx.Done():
					return
				case out <- s:
				}
			}
		}
	}()
	return out
}

// EndSession records the call and, when configured, emits a nil session.
func (p *ScriptedIdentityProvider) EndSession(context.Context) error {
	p.mu.Lock()
	p.endCalls++
	err := p.endErr
	publishNil := p.PublishNilOnEnd
	p.mu.Unlock()

	select {
	case p.endedSignal <- struct{}{}:
	default:
	}
	if publishNil {
		p.Emit(nil)
	}
	return err
}

// EndSessionCalls returns how many times EndSession ran.
func (p *ScriptedIdentityProvider) EndSessionCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.endCalls
}

// SetEndSessionErr makes subsequent EndSession calls return err.
func (p *ScriptedIdentityProvider) SetEndSessionErr(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.endErr = err
}

// WaitForEndSession blocks until EndSession is called or the timeout elapses.
func (p *ScriptedIdentityProvider) WaitForEndSession(timeout time.Duration) bool {
	select {
	case <-p.endedSignal:
		return true
	case <-time.After(timeout):
		return false
	}
}

// StubLookup answers CheckUser from a static table and can inject failures.
type StubLookup struct {
	// Func, when set, overrides the table entirely.
	Func func(ctx context.Context, email string) (domainauth.Decision, error)

	mu        sync.Mutex
	decisions map[string]domainauth.Decision
	err       error
	failErr   error
	failFirst int
	calls     int
}

// NewStubLookup creates an empty StubLookup.
func NewStubLookup() *StubLookup {
	return &StubLookup{decisions: make(map[string]domainauth.Decision)}
}

// Allow registers an authorized decision for email.
func (l *StubLookup) Allow(email string, role domainauth.Role, name string) *StubLookup {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.decisions[email] = domainauth.Decision{Authorized: true, Role: role, Name: name}
	return l
}

// SetErr makes subsequent CheckUser calls fail with err.
func (l *StubLookup) SetErr(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.err = err
}

// FailFirst makes the next n CheckUser calls fail with err, then recover.
func (l *StubLookup) FailFirst(n int, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.failFirst = n
	l.failErr = err
}

// Calls returns how many times CheckUser ran.
func (l *StubLookup) Calls() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}

// CheckUser returns the registered decision; unknown emails are definitively
// not authorized.
func (l *StubLookup) CheckUser(ctx context.Context, email string) (domainauth.Decision, error) {
	l.mu.Lock()
	l.calls++
	fn := l.Func
	if fn != nil {
		l.mu.Unlock()
		return fn(ctx, email)
	}
	defer l.mu.Unlock()
	if l.failFirst > 0 {
		l.failFirst--
		return domainauth.Decision{}, l.failErr
	}
	if l.err != nil {
		return domainauth.Decision{}, l.err
	}
	return l.decisions[email], nil
}

// MemoryCache is a map-backed CacheRepository. TTLs are honored lazily on Get.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryCacheEntry
}

type memoryCacheEntry struct {
	value     []byte
	expiresAt time.Time
}

// NewMemoryCache creates an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]memoryCacheEntry)}
}

// Get returns the stored value or (nil, nil) for a missing or expired key.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, nil
	}
	if !e.expiresAt.IsZero() && time.Now().After(e.expiresAt) {
		delete(c.entries, key)
		return nil, nil
	}
	return e.value, nil
}

// Set stores value under key with an optional TTL.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}
	c.entries[key] = memoryCacheEntry{value: value, expiresAt: expiresAt}
	return nil
}

// Delete removes key and reports whether it existed.
func (c *MemoryCache) Delete(_ context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	delete(c.entries, key)
	return ok, nil
}

// Health always succeeds.
func (c *MemoryCache) Health(context.Context) error { return nil }
