package newsroom

import (
	"context"
	"sync"
	"time"
)

// Phase identifies where the composed session sits in its lifecycle.
type Phase string

const (
	PhaseUninitialized  Phase = "uninitialized"
	PhaseResolving      Phase = "resolving"
	PhaseSignedOut      Phase = "signed_out"
	PhaseProfileLoading Phase = "profile_loading"
	PhaseProfileLoaded  Phase = "profile_loaded"
	PhaseProfileAbsent  Phase = "profile_absent"
)

// Snapshot is the published view of the session. Readers only ever observe
// complete snapshots; there is exactly one writer (the context itself).
type Snapshot struct {
	Phase     Phase
	Principal *Principal
	Profile   *UserProfile
	// Loading is true until both principal resolution and the first profile
	// fetch (if a principal exists) have completed at least once. After that
	// it stays false for the lifetime of the session.
	Loading bool
	IsAdmin bool
}

// SignedIn reports whether a principal is present.
func (s Snapshot) SignedIn() bool {
	return s.Principal != nil
}

// Can routes a capability check through the role evaluator. Without a loaded
// profile every capability is denied.
func (s Snapshot) Can(c Capability) bool {
	if s.Profile == nil {
		return false
	}
	return s.Profile.Role.Can(c)
}

// SessionContext composes the Store, the profile repository, and the role
// evaluator into one observable object. Exactly one instance exists per
// client session; construct it at process start, Start it once, and Close it
// on teardown.
//
// Transitions are serialized: every snapshot reaches all subscribers before
// the next external event (sign-in/out, fetch completion) is committed. An
// in-flight profile fetch whose principal no longer matches the current one
// is discarded on arrival, so a sign-out can never be overwritten by a stale
// profile read.
type SessionContext struct {
	mu       sync.Mutex
	store    *Store
	profiles ProfileReader
	logger   Logger
	sink     ActivitySink
	clock    func() time.Time

	baseCtx context.Context
	cancel  context.CancelFunc

	snapshot Snapshot
	settled  bool
	fetchSeq uint64

	subscribers []*contextListener
	nextID      int
	detach      Unsubscribe
}

type contextListener struct {
	id int
	fn func(Snapshot)
}

// SessionContextOption customizes SessionContext construction.
type SessionContextOption func(*SessionContext)

// WithContextLogger overrides the default stdout logger.
func WithContextLogger(logger Logger) SessionContextOption {
	return func(s *SessionContext) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithContextActivitySink sets the sink used for profile lifecycle events.
func WithContextActivitySink(sink ActivitySink) SessionContextOption {
	return func(s *SessionContext) {
		s.sink = normalizeActivitySink(sink)
	}
}

// WithContextClock injects a custom clock (useful for tests).
func WithContextClock(clock func() time.Time) SessionContextOption {
	return func(s *SessionContext) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewSessionContext wires the store and profile repository together. The
// context stays in PhaseUninitialized until Start.
func NewSessionContext(store *Store, profiles ProfileReader, opts ...SessionContextOption) *SessionContext {
	s := &SessionContext{
		store:    store,
		profiles: profiles,
		logger:   defLogger{},
		sink:     noopActivitySink{},
		clock:    time.Now,
		snapshot: Snapshot{Phase: PhaseUninitialized, Loading: true},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	return s
}

// Start subscribes to the session store and begins producing snapshots. The
// given context bounds all profile fetches the session issues. Idempotent.
func (s *SessionContext) Start(ctx context.Context) {
	s.mu.Lock()
	if s.detach != nil {
		s.mu.Unlock()
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	s.baseCtx, s.cancel = context.WithCancel(ctx)
	s.transitionLocked(Snapshot{Phase: PhaseResolving, Loading: true})
	s.mu.Unlock()

	// a store that has already resolved replays synchronously, which may
	// drive the first resolving -> ready transition before Start returns;
	// an unresolved store keeps the session in PhaseResolving until the
	// provider's first emission
	s.detachSet(s.store.Subscribe(s.onPrincipal))
}

func (s *SessionContext) detachSet(detach Unsubscribe) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.detach = detach
}

// Close tears the context down: the store subscription is released, pending
// fetches are discarded, and no further snapshots are produced.
func (s *SessionContext) Close() {
	s.mu.Lock()
	detach := s.detach
	s.detach = nil
	s.fetchSeq++ // orphan any in-flight fetch
	if s.cancel != nil {
		s.cancel()
	}
	s.subscribers = nil
	s.mu.Unlock()

	if detach != nil {
		detach()
	}
}

// Subscribe registers fn and immediately replays the current snapshot.
// Listeners run on the event goroutine and must not call back into the
// context.
func (s *SessionContext) Subscribe(fn func(Snapshot)) Unsubscribe {
	if fn == nil {
		return func() {}
	}

	s.mu.Lock()
	s.nextID++
	l := &contextListener{id: s.nextID, fn: fn}
	s.subscribers = append(s.subscribers, l)
	fn(s.snapshot)
	s.mu.Unlock()

	id := l.id
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, candidate := range s.subscribers {
			if candidate.id == id {
				s.subscribers = append(s.subscribers[:i], s.subscribers[i+1:]...)
				return
			}
		}
	}
}

// Current returns the latest published snapshot.
func (s *SessionContext) Current() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot
}

// RefreshUserProfile forces a cache-bypassing re-read of the signed-in
// principal's profile and updates state in place. When signed out it is a
// no-op and does not transition state.
func (s *SessionContext) RefreshUserProfile() {
	s.mu.Lock()
	principal := s.snapshot.Principal
	if principal == nil {
		s.logger.Debug("refresh requested while signed out, ignoring")
		s.mu.Unlock()
		return
	}

	next := s.snapshot
	next.Phase = PhaseProfileLoading
	s.transitionLocked(next)

	s.fetchSeq++
	seq := s.fetchSeq
	ctx := s.baseCtx
	s.mu.Unlock()

	go s.loadProfile(ctx, seq, principal.ID, true)
}

// SignOut forwards to the store; the resulting transition arrives through the
// provider push channel like any other.
func (s *SessionContext) SignOut(ctx context.Context) error {
	return s.store.SignOut(ctx)
}

// onPrincipal is the single writer for sign-in/sign-out transitions.
func (s *SessionContext) onPrincipal(p *Principal) {
	s.mu.Lock()

	// supersede any fetch still in flight for the previous principal
	s.fetchSeq++

	if p == nil {
		s.settled = true
		s.transitionLocked(Snapshot{Phase: PhaseSignedOut})
		s.mu.Unlock()
		return
	}

	s.transitionLocked(Snapshot{
		Phase:     PhaseProfileLoading,
		Principal: p,
		Loading:   !s.settled,
	})

	seq := s.fetchSeq
	ctx := s.baseCtx
	s.mu.Unlock()

	go s.loadProfile(ctx, seq, p.ID, false)
}

// loadProfile performs the profile round trip and commits the result unless a
// newer event superseded it while the read was in flight.
func (s *SessionContext) loadProfile(ctx context.Context, seq uint64, principalID string, refresh bool) {
	if ctx == nil {
		ctx = context.Background()
	}

	var profile *UserProfile
	var err error
	if refresh {
		profile, err = s.profiles.Refresh(ctx, principalID)
	} else {
		profile, err = s.profiles.Fetch(ctx, principalID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// stale-write protection: both the sequence and the principal id must
	// still match before the result may be committed
	if seq != s.fetchSeq {
		s.logger.Debug("discarding superseded profile fetch for %q", principalID)
		return
	}
	if s.snapshot.Principal == nil || s.snapshot.Principal.ID != principalID {
		s.logger.Debug("discarding profile fetch for departed principal %q", principalID)
		return
	}

	next := s.snapshot
	next.Loading = false
	s.settled = true

	switch {
	case err == nil:
		next.Phase = PhaseProfileLoaded
		next.Profile = profile
		next.IsAdmin = profile.IsAdmin()
	case IsNotFound(err):
		// provisioning still in progress, expected and transient
		s.logger.Debug("no profile document yet for %q", principalID)
		next.Phase = PhaseProfileAbsent
		next.Profile = nil
		next.IsAdmin = false
	default:
		// degrade gracefully: the session must never crash because the
		// profile could not be read, but the failure is not a not-found
		s.logger.Error("profile fetch failed for %q: %v", principalID, err)
		s.record(ActivityEvent{
			EventType:   ActivityEventProfileFetchFailed,
			PrincipalID: principalID,
			Metadata:    map[string]any{"error": err.Error()},
		})
		next.Phase = PhaseProfileAbsent
		next.Profile = nil
		next.IsAdmin = false
	}

	s.transitionLocked(next)
}

// transitionLocked publishes a snapshot to all subscribers. Callers hold s.mu,
// which is what serializes transitions: no new external event can be
// processed until every subscriber has observed the current one.
func (s *SessionContext) transitionLocked(next Snapshot) {
	s.snapshot = next
	for _, l := range s.subscribers {
		l.fn(next)
	}
}

func (s *SessionContext) record(event ActivityEvent) {
	if event.Actor == (ActorRef{}) {
		event.Actor = ActorRef{Type: "session"}
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = s.clock()
	}

	sink := normalizeActivitySink(s.sink)
	if err := sink.Record(context.Background(), event); err != nil {
		s.logger.Warn("session context activity sink error: %v", err)
	}
}
