package newsroom

import (
	"context"
	"sync"
	"time"

	"github.com/goliatone/go-errors"
)

// Store observes the identity provider and holds the raw authentication
// state: the current principal or nil when signed out.
//
// Events are serialized: the store delivers each transition to every listener,
// in subscription order, before the next provider event is accepted. Once the
// provider has emitted at least once, new subscribers get an immediate replay
// of current state; before that first emission nothing is replayed, so a
// subscriber can never mistake "not yet resolved" for an authoritative
// sign-out. When the provider reports an error mid-transition the store fails
// closed and settles to signed-out rather than retaining a stale principal.
//
// Listeners must not call back into the store; they run on the provider's
// event goroutine.
type Store struct {
	mu        sync.Mutex
	provider  IdentityProvider
	logger    Logger
	sink      ActivitySink
	clock     func() time.Time
	current   *Principal
	listeners []*storeListener
	nextID    int
	detach    Unsubscribe
	started   bool
	resolved  bool
}

type storeListener struct {
	id int
	fn func(*Principal)
}

// StoreOption customizes Store construction.
type StoreOption func(*Store)

// WithStoreLogger overrides the default stdout logger.
func WithStoreLogger(logger Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithStoreActivitySink sets the sink used for sign-in/out events.
func WithStoreActivitySink(sink ActivitySink) StoreOption {
	return func(s *Store) {
		s.sink = normalizeActivitySink(sink)
	}
}

// WithStoreClock injects a custom clock (useful for tests).
func WithStoreClock(clock func() time.Time) StoreOption {
	return func(s *Store) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewStore creates a store bound to the given identity provider. Call Start to
// attach to the provider's push contract and Close to detach.
func NewStore(provider IdentityProvider, opts ...StoreOption) *Store {
	s := &Store{
		provider: provider,
		logger:   defLogger{},
		sink:     noopActivitySink{},
		clock:    time.Now,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	return s
}

// Start registers the store with the identity provider. Idempotent.
func (s *Store) Start() {
	s.mu.Lock()
	if s.started || s.provider == nil {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()

	// registration outside the lock: some providers replay synchronously
	detach := s.provider.OnChange(s.accept)

	s.mu.Lock()
	s.detach = detach
	s.mu.Unlock()
}

// Close detaches from the identity provider and drops all listeners. The
// store stops producing updates; current state is left as-is.
func (s *Store) Close() {
	s.mu.Lock()
	detach := s.detach
	s.detach = nil
	s.started = false
	s.listeners = nil
	s.mu.Unlock()

	if detach != nil {
		detach()
	}
}

// Subscribe registers fn and, once the provider has resolved at least once,
// immediately replays the current principal to it. The returned Unsubscribe is
// safe to call multiple times.
func (s *Store) Subscribe(fn func(*Principal)) Unsubscribe {
	if fn == nil {
		return func() {}
	}

	s.mu.Lock()
	s.nextID++
	l := &storeListener{id: s.nextID, fn: fn}
	s.listeners = append(s.listeners, l)

	// replay under the lock so no transition can interleave with it; an
	// unresolved store has nothing authoritative to replay yet
	if s.resolved {
		fn(s.current)
	}
	s.mu.Unlock()

	id := l.id
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, candidate := range s.listeners {
			if candidate.id == id {
				s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

// Current returns the latest observed principal, nil when signed out.
func (s *Store) Current() *Principal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// SignOut asks the identity provider to end the session. The resulting
// transition arrives through the usual push channel.
func (s *Store) SignOut(ctx context.Context) error {
	if s.provider == nil {
		return ErrAuthTransport.WithMetadata(map[string]any{
			"reason": "no identity provider configured",
		})
	}
	if err := s.provider.SignOut(ctx); err != nil {
		return errors.Wrap(err, errors.CategoryAuth, "sign out request failed").
			WithTextCode(TextCodeAuthTransport)
	}
	return nil
}

// accept is the single entry point for provider events.
func (s *Store) accept(p *Principal, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.resolved = true

	if err != nil {
		// fail closed: settle to signed-out, never keep a stale principal
		s.logger.Error("identity provider error, settling to signed-out: %v", err)
		s.record(ActivityEvent{
			EventType: ActivityEventAuthTransportFailed,
			Metadata:  map[string]any{"error": err.Error()},
		})
		p = nil
	}

	s.current = p

	if err == nil {
		if p != nil {
			s.record(ActivityEvent{
				EventType:   ActivityEventSignedIn,
				PrincipalID: p.ID,
			})
		} else {
			s.record(ActivityEvent{EventType: ActivityEventSignedOut})
		}
	}

	for _, l := range s.listeners {
		l.fn(p)
	}
}

func (s *Store) record(event ActivityEvent) {
	if event.Actor == (ActorRef{}) {
		event.Actor = ActorRef{Type: "provider"}
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = s.clock()
	}

	sink := normalizeActivitySink(s.sink)
	if err := sink.Record(context.Background(), event); err != nil {
		s.logger.Warn("session store activity sink error: %v", err)
	}
}
