package newsroom

import (
	"context"
	"time"
)

// ActivityEventType enumerates supported activity categories.
type ActivityEventType string

const (
	ActivityEventSignedIn            ActivityEventType = "session.signed_in"
	ActivityEventSignedOut           ActivityEventType = "session.signed_out"
	ActivityEventAuthTransportFailed ActivityEventType = "session.transport_failure"
	ActivityEventProfileProvisioned  ActivityEventType = "profile.provisioned"
	ActivityEventProfileUpdated      ActivityEventType = "profile.updated"
	ActivityEventProfileFetchFailed  ActivityEventType = "profile.fetch_failure"
	ActivityEventRoleChanged         ActivityEventType = "profile.role_changed"
)

// ActorRef identifies who/what triggered an event.
type ActorRef struct {
	ID   string
	Type string
}

// ActivityEvent captures audit-friendly information about an action.
type ActivityEvent struct {
	EventType   ActivityEventType
	Actor       ActorRef
	PrincipalID string
	ProfileID   string
	FromRole    Role
	ToRole      Role
	Metadata    map[string]any
	OccurredAt  time.Time
}

// ActivitySink consumes activity events for auditing/telemetry purposes.
// Sinks run best-effort: errors are logged, never propagated, so forwarding to
// a database or queue cannot block session handling.
type ActivitySink interface {
	Record(ctx context.Context, event ActivityEvent) error
}

// ActivitySinkFunc adapts a function to the ActivitySink interface.
type ActivitySinkFunc func(ctx context.Context, event ActivityEvent) error

// Record implements ActivitySink.
func (f ActivitySinkFunc) Record(ctx context.Context, event ActivityEvent) error {
	if f == nil {
		return nil
	}
	return f(ctx, event)
}

type noopActivitySink struct{}

func (noopActivitySink) Record(context.Context, ActivityEvent) error {
	return nil
}

func normalizeActivitySink(s ActivitySink) ActivitySink {
	if s == nil {
		return noopActivitySink{}
	}
	return s
}
