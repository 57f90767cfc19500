package activitymap

import (
	"context"
	"strings"
	"time"

	newsroom "github.com/goliatone/go-newsroom"
)

const (
	// MetadataKeyActorType stores the actor type derived from ActorRef.Type.
	MetadataKeyActorType = "actor_type"
	// MetadataKeyPrincipalID stores the provider-issued principal id.
	MetadataKeyPrincipalID = "principal_id"
	// MetadataKeyFromRole stores the source role for role transitions.
	MetadataKeyFromRole = "from_role"
	// MetadataKeyToRole stores the target role for role transitions.
	MetadataKeyToRole = "to_role"
)

const (
	defaultChannel    = "newsroom"
	defaultObjectType = "profile"
	defaultActorID    = "system"
)

// Normalized is a transport-agnostic activity shape for downstream feeds.
type Normalized struct {
	ActorID    string         `json:"actor_id"`
	Verb       string         `json:"verb"`
	ObjectType string         `json:"object_type,omitempty"`
	ObjectID   string         `json:"object_id,omitempty"`
	Channel    string         `json:"channel,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// Option customizes normalization behavior.
type Option func(*normalizeOptions)

type normalizeOptions struct {
	channel          string
	objectType       string
	actorFallback    string
	objectIDResolver func(newsroom.ActivityEvent) string
}

// Normalize converts a newsroom.ActivityEvent into a generic normalized shape.
func Normalize(event newsroom.ActivityEvent, opts ...Option) Normalized {
	options := defaultNormalizeOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}

	actorID := firstNonEmpty(
		strings.TrimSpace(event.Actor.ID),
		strings.TrimSpace(event.PrincipalID),
		strings.TrimSpace(options.actorFallback),
	)

	objectID := resolveObjectID(event, options.objectIDResolver)
	occurredAt := event.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	return Normalized{
		ActorID:    actorID,
		Verb:       string(event.EventType),
		ObjectType: strings.TrimSpace(options.objectType),
		ObjectID:   objectID,
		Channel:    strings.TrimSpace(options.channel),
		Metadata:   normalizeMetadata(event),
		OccurredAt: occurredAt,
	}
}

// WithDefaultChannel sets the default channel for normalized records.
func WithDefaultChannel(channel string) Option {
	return func(opts *normalizeOptions) {
		if opts == nil {
			return
		}
		opts.channel = strings.TrimSpace(channel)
	}
}

// WithDefaultObjectType sets the default object type for normalized records.
func WithDefaultObjectType(objectType string) Option {
	return func(opts *normalizeOptions) {
		if opts == nil {
			return
		}
		opts.objectType = strings.TrimSpace(objectType)
	}
}

// WithObjectIDResolver overrides object-id extraction from ActivityEvent.
func WithObjectIDResolver(resolver func(newsroom.ActivityEvent) string) Option {
	return func(opts *normalizeOptions) {
		if opts == nil {
			return
		}
		opts.objectIDResolver = resolver
	}
}

// WithActorFallback sets the final actor-id fallback when actor/principal ids
// are empty.
func WithActorFallback(actorID string) Option {
	return func(opts *normalizeOptions) {
		if opts == nil {
			return
		}
		opts.actorFallback = strings.TrimSpace(actorID)
	}
}

// Publisher delivers a normalized record to a downstream system.
type Publisher func(ctx context.Context, record Normalized) error

// Sink adapts a Publisher into a newsroom.ActivitySink, normalizing every
// event on the way through.
type Sink struct {
	publish Publisher
	opts    []Option
}

// NewSink builds an activity sink that forwards normalized records.
func NewSink(publish Publisher, opts ...Option) *Sink {
	return &Sink{publish: publish, opts: opts}
}

// Record implements newsroom.ActivitySink.
func (s *Sink) Record(ctx context.Context, event newsroom.ActivityEvent) error {
	if s == nil || s.publish == nil {
		return nil
	}
	return s.publish(ctx, Normalize(event, s.opts...))
}

var _ newsroom.ActivitySink = (*Sink)(nil)

func defaultNormalizeOptions() normalizeOptions {
	return normalizeOptions{
		channel:       defaultChannel,
		objectType:    defaultObjectType,
		actorFallback: defaultActorID,
	}
}

func resolveObjectID(event newsroom.ActivityEvent, resolver func(newsroom.ActivityEvent) string) string {
	if resolver != nil {
		return strings.TrimSpace(resolver(event))
	}
	return firstNonEmpty(
		strings.TrimSpace(event.ProfileID),
		strings.TrimSpace(event.PrincipalID),
	)
}

func normalizeMetadata(event newsroom.ActivityEvent) map[string]any {
	metadata := cloneMap(event.Metadata)

	if actorType := strings.TrimSpace(event.Actor.Type); actorType != "" {
		if metadata == nil {
			metadata = map[string]any{}
		}
		if _, exists := metadata[MetadataKeyActorType]; !exists {
			metadata[MetadataKeyActorType] = actorType
		}
	}

	if principalID := strings.TrimSpace(event.PrincipalID); principalID != "" {
		if metadata == nil {
			metadata = map[string]any{}
		}
		if _, exists := metadata[MetadataKeyPrincipalID]; !exists {
			metadata[MetadataKeyPrincipalID] = principalID
		}
	}

	if event.FromRole != "" {
		if metadata == nil {
			metadata = map[string]any{}
		}
		metadata[MetadataKeyFromRole] = string(event.FromRole)
	}

	if event.ToRole != "" {
		if metadata == nil {
			metadata = map[string]any{}
		}
		metadata[MetadataKeyToRole] = string(event.ToRole)
	}

	return metadata
}

func cloneMap(in map[string]any) map[string]any {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]any, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}
