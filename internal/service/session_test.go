package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/GustavoEraso/por-los-animales-maldonado-sub001/internal/domain/auth"
	apperrors "github.com/GustavoEraso/por-los-animales-maldonado-sub001/internal/errors"
	mockauth "github.com/GustavoEraso/por-los-animales-maldonado-sub001/internal/mocks/auth"
)

func startSession(t *testing.T, provider *mockauth.ScriptedIdentityProvider, lookup *mockauth.StubLookup) (*SessionService, context.CancelFunc) {
	t.Helper()
	svc := NewSessionService(SessionServiceOptions{
		Provider:      provider,
		Lookup:        lookup,
		LookupTimeout: 2 * time.Second,
		Retries:       3,
		RetryBackoff:  time.Millisecond,
	})
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = svc.Run(ctx) }()
	t.Cleanup(cancel)
	return svc, cancel
}

func waitForPhase(t *testing.T, svc *SessionService, phase domainauth.Phase) domainauth.AuthState {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		state := svc.State()
		if state.Phase == phase {
			return state
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for phase %s, last state %+v", phase, svc.State())
	return domainauth.AuthState{}
}

func TestSessionService_StartsResolving(t *testing.T) {
	svc := NewSessionService(SessionServiceOptions{
		Provider: mockauth.NewScriptedIdentityProvider(),
		Lookup:   mockauth.NewStubLookup(),
	})
	state := svc.State()
	assert.Equal(t, domainauth.PhaseResolving, state.Phase)
	assert.False(t, state.Resolved())
	assert.False(t, state.Allows(domainauth.RoleUser))
}

func TestSessionService_SignedOutWhenNoSession(t *testing.T) {
	provider := mockauth.NewScriptedIdentityProvider()
	svc, _ := startSession(t, provider, mockauth.NewStubLookup())

	provider.Emit(nil)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	state, err := svc.WaitResolved(ctx)
	require.NoError(t, err)
	assert.Equal(t, domainauth.PhaseSignedOut, state.Phase)
	assert.Nil(t, state.User)
}

func TestSessionService_AuthorizedSession(t *testing.T) {
	provider := mockauth.NewScriptedIdentityProvider()
	lookup := mockauth.NewStubLookup().Allow("alice@example.com", domainauth.RoleRescuer, "Alice")
	svc, _ := startSession(t, provider, lookup)

	provider.Emit(&domainauth.IdentitySession{
		SubjectID: "u-alice", Email: "alice@example.com", Name: "alice",
	})

	state := waitForPhase(t, svc, domainauth.PhaseSignedInAuthorized)
	require.NotNil(t, state.User)
	assert.Equal(t, "u-alice", state.User.ID)
	assert.Equal(t, "Alice", state.User.Name, "name comes from the allow-list, not the provider")
	assert.Equal(t, domainauth.RoleRescuer, state.User.Role)

	assert.True(t, state.Allows(domainauth.RoleUser))
	assert.True(t, state.Allows(domainauth.RoleRescuer))
	assert.False(t, state.Allows(domainauth.RoleAdmin))
	assert.Zero(t, provider.EndSessionCalls())
}

func TestSessionService_UnlistedIdentityIsSignedOutOnce(t *testing.T) {
	provider := mockauth.NewScriptedIdentityProvider()
	provider.PublishNilOnEnd = true
	lookup := mockauth.NewStubLookup() // bob is not on the list
	svc, _ := startSession(t, provider, lookup)

	provider.Emit(&domainauth.IdentitySession{
		SubjectID: "u-bob", Email: "bob@example.com",
	})

	require.True(t, provider.WaitForEndSession(3*time.Second), "provider session must be ended")

	// The forced end publishes nil; the machine stays signed out and the
	// nil event must not wipe the denial reason.
	state := waitForPhase(t, svc, domainauth.PhaseSignedOut)
	assert.Nil(t, state.User)
	assert.Equal(t, 1, provider.EndSessionCalls(), "end session must run exactly once")

	time.Sleep(20 * time.Millisecond) // let the provider's nil event land
	state = svc.State()
	assert.Equal(t, domainauth.PhaseSignedOut, state.Phase)
	assert.Equal(t, domainauth.ReasonNotAuthorized, state.Err,
		"the settled signed-out snapshot must carry the denial reason")
}

func TestSessionService_UnlistedIdentityRecordsReason(t *testing.T) {
	provider := mockauth.NewScriptedIdentityProvider()
	lookup := mockauth.NewStubLookup().Allow("alice@example.com", domainauth.RoleUser, "Alice")
	svc, _ := startSession(t, provider, lookup)

	provider.Emit(&domainauth.IdentitySession{SubjectID: "u-bob", Email: "bob@example.com"})

	state := waitForPhase(t, svc, domainauth.PhaseSignedOut)
	assert.Equal(t, domainauth.ReasonNotAuthorized, state.Err)
	assert.Nil(t, state.User)
	assert.False(t, state.Allows(domainauth.RoleUser))

	// A new session clears the reason on entry to pending and resolves clean.
	provider.Emit(&domainauth.IdentitySession{SubjectID: "u-alice", Email: "alice@example.com"})
	state = waitForPhase(t, svc, domainauth.PhaseSignedInAuthorized)
	assert.Empty(t, state.Err)
}

func TestSessionService_LookupFailureKeepsSession(t *testing.T) {
	provider := mockauth.NewScriptedIdentityProvider()
	provider.PublishNilOnEnd = true
	lookup := mockauth.NewStubLookup()
	lookup.SetErr(errors.New("boom"))
	svc, _ := startSession(t, provider, lookup)

	provider.Emit(&domainauth.IdentitySession{SubjectID: "u-alice", Email: "alice@example.com"})

	state := waitForPhase(t, svc, domainauth.PhaseSignedInUnauthorized)
	assert.Equal(t, domainauth.ReasonLookupFailed, state.Err)
	assert.Nil(t, state.User)
	assert.Zero(t, provider.EndSessionCalls(),
		"a failed lookup must never force a sign-out")
}

func TestSessionService_TransportFailureRecordsFetchReason(t *testing.T) {
	provider := mockauth.NewScriptedIdentityProvider()
	lookup := mockauth.NewStubLookup()
	lookup.SetErr(apperrors.Unavailable("connection refused"))
	svc, _ := startSession(t, provider, lookup)

	provider.Emit(&domainauth.IdentitySession{SubjectID: "u-alice", Email: "alice@example.com"})

	state := waitForPhase(t, svc, domainauth.PhaseSignedInUnauthorized)
	assert.Equal(t, domainauth.ReasonFetchFailed, state.Err)
	assert.Zero(t, provider.EndSessionCalls())
}

func TestSessionService_RetriesLookupBeforeFailing(t *testing.T) {
	provider := mockauth.NewScriptedIdentityProvider()
	lookup := mockauth.NewStubLookup().Allow("alice@example.com", domainauth.RoleAdmin, "Alice")
	lookup.FailFirst(2, errors.New("transient"))
	svc, _ := startSession(t, provider, lookup)

	provider.Emit(&domainauth.IdentitySession{SubjectID: "u-alice", Email: "alice@example.com"})

	state := waitForPhase(t, svc, domainauth.PhaseSignedInAuthorized)
	require.NotNil(t, state.User)
	assert.Equal(t, domainauth.RoleAdmin, state.User.Role)
	assert.Equal(t, 3, lookup.Calls())
}

func TestSessionService_RepeatedAuthorizedResultIsIdempotent(t *testing.T) {
	provider := mockauth.NewScriptedIdentityProvider()
	lookup := mockauth.NewStubLookup()

	secondStarted := make(chan struct{})
	calls := 0
	lookup.Func = func(context.Context, string) (domainauth.Decision, error) {
		calls++
		if calls == 2 {
			close(secondStarted)
		}
		return domainauth.Decision{Authorized: true, Role: domainauth.RoleRescuer, Name: "Alice"}, nil
	}
	svc, _ := startSession(t, provider, lookup)

	session := domainauth.IdentitySession{SubjectID: "u-alice", Email: "alice@example.com"}
	provider.Emit(&session)
	first := waitForPhase(t, svc, domainauth.PhaseSignedInAuthorized)
	require.NotNil(t, first.User)

	// The same identity delivered again resolves to the same record.
	provider.Emit(&session)
	select {
	case <-secondStarted:
	case <-time.After(2 * time.Second):
		t.Fatal("second lookup never started")
	}
	second := waitForPhase(t, svc, domainauth.PhaseSignedInAuthorized)
	require.NotNil(t, second.User)
	assert.Equal(t, *first.User, *second.User)
	assert.Equal(t, first.Phase, second.Phase)
	assert.Empty(t, second.Err)
	assert.Zero(t, provider.EndSessionCalls())
}

func TestSessionService_StaleLookupResultIsDiscarded(t *testing.T) {
	provider := mockauth.NewScriptedIdentityProvider()
	lookup := mockauth.NewStubLookup()

	firstStarted := make(chan struct{})
	release := make(chan struct{})
	lookup.Func = func(_ context.Context, email string) (domainauth.Decision, error) {
		if email == "old@example.com" {
			close(firstStarted)
			<-release
			return domainauth.Decision{Authorized: true, Role: domainauth.RoleSuperAdmin, Name: "Old"}, nil
		}
		return domainauth.Decision{Authorized: true, Role: domainauth.RoleUser, Name: "New"}, nil
	}
	svc, _ := startSession(t, provider, lookup)

	provider.Emit(&domainauth.IdentitySession{SubjectID: "u-old", Email: "old@example.com"})
	select {
	case <-firstStarted:
	case <-time.After(2 * time.Second):
		t.Fatal("first lookup never started")
	}

	provider.Emit(&domainauth.IdentitySession{SubjectID: "u-new", Email: "new@example.com"})
	state := waitForPhase(t, svc, domainauth.PhaseSignedInAuthorized)
	require.NotNil(t, state.User)
	assert.Equal(t, "u-new", state.User.ID)

	// Let the stale lookup finish; its superadmin grant must not apply.
	close(release)
	time.Sleep(50 * time.Millisecond)
	state = svc.State()
	require.NotNil(t, state.User)
	assert.Equal(t, "u-new", state.User.ID)
	assert.Equal(t, domainauth.RoleUser, state.User.Role)
}

func TestSessionService_SignOutSupersedesPendingLookup(t *testing.T) {
	provider := mockauth.NewScriptedIdentityProvider()
	lookup := mockauth.NewStubLookup()

	started := make(chan struct{})
	release := make(chan struct{})
	lookup.Func = func(context.Context, string) (domainauth.Decision, error) {
		close(started)
		<-release
		return domainauth.Decision{Authorized: true, Role: domainauth.RoleAdmin}, nil
	}
	svc, _ := startSession(t, provider, lookup)

	provider.Emit(&domainauth.IdentitySession{SubjectID: "u1", Email: "alice@example.com"})
	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("lookup never started")
	}
	provider.Emit(nil)

	state := waitForPhase(t, svc, domainauth.PhaseSignedOut)
	assert.Nil(t, state.User)

	close(release)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, domainauth.PhaseSignedOut, svc.State().Phase,
		"a lookup finishing after sign-out must not resurrect the session")
}

func TestSessionService_SubscribePublishesSnapshots(t *testing.T) {
	provider := mockauth.NewScriptedIdentityProvider()
	lookup := mockauth.NewStubLookup().Allow("alice@example.com", domainauth.RoleUser, "Alice")
	svc, _ := startSession(t, provider, lookup)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	states := svc.Subscribe(ctx)

	first := <-states
	assert.Equal(t, domainauth.PhaseResolving, first.Phase)

	provider.Emit(&domainauth.IdentitySession{SubjectID: "u1", Email: "alice@example.com"})

	deadline := time.After(3 * time.Second)
	for {
		select {
		case state := <-states:
			if state.Phase == domainauth.PhaseSignedInAuthorized {
				require.NotNil(t, state.User)
				return
			}
		case <-deadline:
			t.Fatal("never observed the authorized snapshot")
		}
	}
}

func TestSessionService_WaitResolvedHonorsContext(t *testing.T) {
	svc := NewSessionService(SessionServiceOptions{
		Provider: mockauth.NewScriptedIdentityProvider(),
		Lookup:   mockauth.NewStubLookup(),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := svc.WaitResolved(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
