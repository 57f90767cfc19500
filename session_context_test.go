package newsroom_test

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-errors"
	newsroom "github.com/goliatone/go-newsroom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession(t *testing.T, profiles newsroom.ProfileReader) (*fakeIdentityProvider, *newsroom.SessionContext) {
	t.Helper()

	provider := &fakeIdentityProvider{}
	store := newsroom.NewStore(provider, newsroom.WithStoreLogger(silentLogger{}))
	store.Start()
	t.Cleanup(store.Close)

	session := newsroom.NewSessionContext(store, profiles,
		newsroom.WithContextLogger(silentLogger{}),
	)
	t.Cleanup(session.Close)

	return provider, session
}

func waitForPhase(t *testing.T, session *newsroom.SessionContext, phase newsroom.Phase) newsroom.Snapshot {
	t.Helper()
	require.Eventually(t, func() bool {
		return session.Current().Phase == phase
	}, time.Second, 5*time.Millisecond, "never reached phase %s", phase)
	return session.Current()
}

func TestSessionContextSignedInWriter(t *testing.T) {
	profiles := &stubProfiles{
		fetch: func(_ context.Context, principalID string) (*newsroom.UserProfile, error) {
			return &newsroom.UserProfile{
				PrincipalID: principalID,
				Role:        newsroom.RoleWriter,
				DisplayName: "Dana",
			}, nil
		},
	}
	provider, session := newTestSession(t, profiles)
	session.Start(context.Background())

	provider.Emit(&newsroom.Principal{ID: "u1", Email: "dana@example.com"}, nil)

	snap := waitForPhase(t, session, newsroom.PhaseProfileLoaded)
	require.True(t, snap.SignedIn())
	require.NotNil(t, snap.Profile)
	assert.False(t, snap.IsAdmin)
	assert.False(t, snap.Loading)

	assert.True(t, snap.Can(newsroom.CapabilityAuthorContent))
	assert.True(t, snap.Can(newsroom.CapabilityViewOwnDashboard))
	assert.False(t, snap.Can(newsroom.CapabilityEditAnyContent))
	assert.False(t, snap.Can(newsroom.CapabilityAdministerSite))
}

func TestSessionContextProfileNotFoundSettlesAbsent(t *testing.T) {
	// the default stub returns not-found; a missing profile document must
	// degrade to an authenticated-but-capability-less session, never crash
	provider, session := newTestSession(t, &stubProfiles{})
	session.Start(context.Background())

	provider.Emit(&newsroom.Principal{ID: "u2"}, nil)

	snap := waitForPhase(t, session, newsroom.PhaseProfileAbsent)
	require.True(t, snap.SignedIn())
	assert.Nil(t, snap.Profile)
	assert.False(t, snap.IsAdmin)
	assert.False(t, snap.Loading)
	assert.False(t, snap.Can(newsroom.CapabilityViewOwnDashboard))
}

func TestSessionContextProfileFetchErrorSettlesAbsent(t *testing.T) {
	profiles := &stubProfiles{
		fetch: func(context.Context, string) (*newsroom.UserProfile, error) {
			return nil, errors.New("backend down", errors.CategoryOperation)
		},
	}
	provider := &fakeIdentityProvider{}
	store := newsroom.NewStore(provider, newsroom.WithStoreLogger(silentLogger{}))
	store.Start()
	t.Cleanup(store.Close)

	sink := &capturingSink{}
	session := newsroom.NewSessionContext(store, profiles,
		newsroom.WithContextLogger(silentLogger{}),
		newsroom.WithContextActivitySink(sink),
	)
	t.Cleanup(session.Close)
	session.Start(context.Background())

	provider.Emit(&newsroom.Principal{ID: "u3"}, nil)

	snap := waitForPhase(t, session, newsroom.PhaseProfileAbsent)
	require.True(t, snap.SignedIn())
	assert.Nil(t, snap.Profile)

	require.Eventually(t, func() bool {
		return len(sink.Events()) > 0
	}, time.Second, 5*time.Millisecond)
	events := sink.Events()
	assert.Equal(t, newsroom.ActivityEventProfileFetchFailed, events[0].EventType)
	assert.Equal(t, "u3", events[0].PrincipalID)
}

func TestSessionContextDiscardsStaleFetchAfterSignOut(t *testing.T) {
	release := make(chan struct{})
	profiles := &stubProfiles{
		fetch: func(_ context.Context, principalID string) (*newsroom.UserProfile, error) {
			<-release
			return &newsroom.UserProfile{
				PrincipalID: principalID,
				Role:        newsroom.RoleAdmin,
			}, nil
		},
	}
	provider, session := newTestSession(t, profiles)
	session.Start(context.Background())

	provider.Emit(&newsroom.Principal{ID: "u1"}, nil)
	require.Equal(t, newsroom.PhaseProfileLoading, session.Current().Phase)

	// sign out while the fetch is blocked, then let it finish
	provider.Emit(nil, nil)
	close(release)

	// the late result must not resurrect the session
	require.Never(t, func() bool {
		return session.Current().Phase != newsroom.PhaseSignedOut
	}, 100*time.Millisecond, 5*time.Millisecond)

	snap := session.Current()
	assert.False(t, snap.SignedIn())
	assert.Nil(t, snap.Profile)
	assert.False(t, snap.IsAdmin)
}

func TestSessionContextDiscardsFetchWhenPrincipalChanges(t *testing.T) {
	release := make(chan struct{})
	profiles := &stubProfiles{
		fetch: func(_ context.Context, principalID string) (*newsroom.UserProfile, error) {
			if principalID == "u1" {
				<-release
				return &newsroom.UserProfile{PrincipalID: "u1", Role: newsroom.RoleAdmin}, nil
			}
			return &newsroom.UserProfile{PrincipalID: principalID, Role: newsroom.RoleReader}, nil
		},
	}
	provider, session := newTestSession(t, profiles)
	session.Start(context.Background())

	provider.Emit(&newsroom.Principal{ID: "u1"}, nil)
	provider.Emit(&newsroom.Principal{ID: "u2"}, nil)
	close(release)

	snap := waitForPhase(t, session, newsroom.PhaseProfileLoaded)
	require.NotNil(t, snap.Profile)
	assert.Equal(t, "u2", snap.Profile.PrincipalID)
	assert.Equal(t, newsroom.RoleReader, snap.Profile.Role)
	assert.False(t, snap.IsAdmin)
}

func TestSessionContextRefreshWhileSignedOutIsNoop(t *testing.T) {
	provider, session := newTestSession(t, &stubProfiles{})
	session.Start(context.Background())

	provider.Emit(nil, nil)
	require.Equal(t, newsroom.PhaseSignedOut, session.Current().Phase)

	session.RefreshUserProfile()

	assert.Equal(t, newsroom.PhaseSignedOut, session.Current().Phase)
}

func TestSessionContextRefreshBypassesFetchPath(t *testing.T) {
	refreshed := make(chan struct{}, 1)
	profiles := &stubProfiles{
		fetch: func(_ context.Context, principalID string) (*newsroom.UserProfile, error) {
			return &newsroom.UserProfile{PrincipalID: principalID, Role: newsroom.RoleWriter}, nil
		},
		refresh: func(_ context.Context, principalID string) (*newsroom.UserProfile, error) {
			refreshed <- struct{}{}
			return &newsroom.UserProfile{PrincipalID: principalID, Role: newsroom.RoleEditor}, nil
		},
	}
	provider, session := newTestSession(t, profiles)
	session.Start(context.Background())

	provider.Emit(&newsroom.Principal{ID: "u1"}, nil)
	waitForPhase(t, session, newsroom.PhaseProfileLoaded)

	session.RefreshUserProfile()

	select {
	case <-refreshed:
	case <-time.After(time.Second):
		t.Fatal("refresh never hit the refresh path")
	}

	require.Eventually(t, func() bool {
		snap := session.Current()
		return snap.Phase == newsroom.PhaseProfileLoaded && snap.Profile != nil &&
			snap.Profile.Role == newsroom.RoleEditor
	}, time.Second, 5*time.Millisecond)
}

func TestSessionContextStaysResolvingUntilProviderResolves(t *testing.T) {
	provider, session := newTestSession(t, &stubProfiles{})

	rec := &snapshotRecorder{}
	defer session.Subscribe(rec.record)()

	session.Start(context.Background())

	// no provider emission yet: the session must not fabricate a sign-out
	require.Never(t, func() bool {
		return session.Current().Phase != newsroom.PhaseResolving
	}, 100*time.Millisecond, 5*time.Millisecond)
	require.True(t, session.Current().Loading)
	assert.NotContains(t, rec.phases(), newsroom.PhaseSignedOut)

	// a genuine signed-out resolution still settles normally
	provider.Emit(nil, nil)
	snap := waitForPhase(t, session, newsroom.PhaseSignedOut)
	assert.False(t, snap.Loading)
}

func TestSessionContextPhaseSequence(t *testing.T) {
	profiles := &stubProfiles{
		fetch: func(_ context.Context, principalID string) (*newsroom.UserProfile, error) {
			return &newsroom.UserProfile{PrincipalID: principalID, Role: newsroom.RoleReader}, nil
		},
	}
	provider, session := newTestSession(t, profiles)

	rec := &snapshotRecorder{}
	unsub := session.Subscribe(rec.record)
	defer unsub()

	session.Start(context.Background())
	provider.Emit(&newsroom.Principal{ID: "u1"}, nil)

	require.Eventually(t, func() bool {
		return rec.last().Phase == newsroom.PhaseProfileLoaded
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, []newsroom.Phase{
		newsroom.PhaseUninitialized,
		newsroom.PhaseResolving,
		newsroom.PhaseProfileLoading,
		newsroom.PhaseProfileLoaded,
	}, rec.phases())
}

func TestSessionContextLoadingFlagLifecycle(t *testing.T) {
	profiles := &stubProfiles{
		fetch: func(_ context.Context, principalID string) (*newsroom.UserProfile, error) {
			return &newsroom.UserProfile{PrincipalID: principalID, Role: newsroom.RoleReader}, nil
		},
	}
	provider, session := newTestSession(t, profiles)

	require.True(t, session.Current().Loading)
	session.Start(context.Background())
	require.True(t, session.Current().Loading)

	provider.Emit(&newsroom.Principal{ID: "u1"}, nil)
	waitForPhase(t, session, newsroom.PhaseProfileLoaded)
	require.False(t, session.Current().Loading)

	// once settled, loading never flips back, even across later transitions
	provider.Emit(nil, nil)
	assert.False(t, session.Current().Loading)
	provider.Emit(&newsroom.Principal{ID: "u1"}, nil)
	assert.False(t, session.Current().Loading)
	waitForPhase(t, session, newsroom.PhaseProfileLoaded)
	assert.False(t, session.Current().Loading)
}

func TestSessionContextSubscribeReplayAndUnsubscribe(t *testing.T) {
	provider, session := newTestSession(t, &stubProfiles{})
	session.Start(context.Background())
	provider.Emit(nil, nil)

	rec := &snapshotRecorder{}
	unsub := session.Subscribe(rec.record)

	require.Len(t, rec.phases(), 1)
	assert.Equal(t, newsroom.PhaseSignedOut, rec.last().Phase)

	unsub()
	provider.Emit(&newsroom.Principal{ID: "u1"}, nil)
	assert.Len(t, rec.phases(), 1)
}
