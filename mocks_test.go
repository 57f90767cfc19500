package newsroom_test

import (
	"context"
	"sync"

	newsroom "github.com/goliatone/go-newsroom"
)

// fakeIdentityProvider drives sign-in/sign-out transitions from tests.
type fakeIdentityProvider struct {
	mu          sync.Mutex
	listeners   []func(*newsroom.Principal, error)
	signOutErr  error
	signOutHits int
}

func (f *fakeIdentityProvider) OnChange(fn func(*newsroom.Principal, error)) newsroom.Unsubscribe {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listeners = append(f.listeners, fn)
	idx := len(f.listeners) - 1
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.listeners[idx] = nil
	}
}

func (f *fakeIdentityProvider) SignOut(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signOutHits++
	return f.signOutErr
}

func (f *fakeIdentityProvider) Emit(p *newsroom.Principal, err error) {
	f.mu.Lock()
	listeners := append([]func(*newsroom.Principal, error){}, f.listeners...)
	f.mu.Unlock()
	for _, fn := range listeners {
		if fn != nil {
			fn(p, err)
		}
	}
}

// stubProfiles implements newsroom.ProfileReader with injectable behavior.
type stubProfiles struct {
	fetch   func(ctx context.Context, principalID string) (*newsroom.UserProfile, error)
	refresh func(ctx context.Context, principalID string) (*newsroom.UserProfile, error)
}

func (s *stubProfiles) Fetch(ctx context.Context, principalID string) (*newsroom.UserProfile, error) {
	if s.fetch == nil {
		return nil, newsroom.ErrProfileNotFound
	}
	return s.fetch(ctx, principalID)
}

func (s *stubProfiles) Refresh(ctx context.Context, principalID string) (*newsroom.UserProfile, error) {
	if s.refresh != nil {
		return s.refresh(ctx, principalID)
	}
	return s.Fetch(ctx, principalID)
}

// capturingSink collects activity events for assertions.
type capturingSink struct {
	mu     sync.Mutex
	events []newsroom.ActivityEvent
}

func (c *capturingSink) Record(_ context.Context, evt newsroom.ActivityEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, evt)
	return nil
}

func (c *capturingSink) Events() []newsroom.ActivityEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]newsroom.ActivityEvent{}, c.events...)
}

// snapshotRecorder collects every published snapshot in order.
type snapshotRecorder struct {
	mu    sync.Mutex
	snaps []newsroom.Snapshot
}

func (r *snapshotRecorder) record(s newsroom.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snaps = append(r.snaps, s)
}

func (r *snapshotRecorder) last() newsroom.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.snaps) == 0 {
		return newsroom.Snapshot{}
	}
	return r.snaps[len(r.snaps)-1]
}

func (r *snapshotRecorder) phases() []newsroom.Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]newsroom.Phase, 0, len(r.snaps))
	for _, s := range r.snaps {
		out = append(out, s.Phase)
	}
	return out
}

type silentLogger struct{}

func (silentLogger) Debug(string, ...any) {}
func (silentLogger) Info(string, ...any)  {}
func (silentLogger) Warn(string, ...any)  {}
func (silentLogger) Error(string, ...any) {}
