package activitymap_test

import (
	"context"
	"testing"
	"time"

	newsroom "github.com/goliatone/go-newsroom"
	"github.com/goliatone/go-newsroom/activitymap"
)

func TestNormalizeDefaults(t *testing.T) {
	t.Parallel()

	ts := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	event := newsroom.ActivityEvent{
		EventType:   newsroom.ActivityEventRoleChanged,
		Actor:       newsroom.ActorRef{ID: "admin-42", Type: "principal"},
		PrincipalID: "firebase|user-100",
		ProfileID:   "profile-100",
		FromRole:    newsroom.RoleWriter,
		ToRole:      newsroom.RoleEditor,
		Metadata: map[string]any{
			"ticket": "OPS-204",
		},
		OccurredAt: ts,
	}

	out := activitymap.Normalize(event)

	if out.ActorID != "admin-42" {
		t.Fatalf("expected actor_id admin-42, got %q", out.ActorID)
	}
	if out.Verb != string(newsroom.ActivityEventRoleChanged) {
		t.Fatalf("expected verb %q, got %q", newsroom.ActivityEventRoleChanged, out.Verb)
	}
	if out.ObjectType != "profile" {
		t.Fatalf("expected object_type profile, got %q", out.ObjectType)
	}
	if out.ObjectID != "profile-100" {
		t.Fatalf("expected object_id profile-100, got %q", out.ObjectID)
	}
	if out.Channel != "newsroom" {
		t.Fatalf("expected channel newsroom, got %q", out.Channel)
	}
	if !out.OccurredAt.Equal(ts) {
		t.Fatalf("expected occurred_at %v, got %v", ts, out.OccurredAt)
	}

	if out.Metadata["ticket"] != "OPS-204" {
		t.Fatalf("expected metadata ticket OPS-204, got %#v", out.Metadata["ticket"])
	}
	if out.Metadata[activitymap.MetadataKeyActorType] != "principal" {
		t.Fatalf("expected metadata actor_type principal, got %#v", out.Metadata[activitymap.MetadataKeyActorType])
	}
	if out.Metadata[activitymap.MetadataKeyFromRole] != string(newsroom.RoleWriter) {
		t.Fatalf("expected metadata from_role writer, got %#v", out.Metadata[activitymap.MetadataKeyFromRole])
	}
	if out.Metadata[activitymap.MetadataKeyToRole] != string(newsroom.RoleEditor) {
		t.Fatalf("expected metadata to_role editor, got %#v", out.Metadata[activitymap.MetadataKeyToRole])
	}

	if len(event.Metadata) != 1 {
		t.Fatalf("expected source metadata to remain unchanged, got %+v", event.Metadata)
	}
}

func TestNormalizeOptionOverrides(t *testing.T) {
	t.Parallel()

	event := newsroom.ActivityEvent{
		EventType:   newsroom.ActivityEventProfileUpdated,
		Actor:       newsroom.ActorRef{Type: "principal"},
		PrincipalID: "firebase|user-200",
		Metadata: map[string]any{
			"revision":                       "rev-9",
			activitymap.MetadataKeyActorType: "existing",
		},
	}

	out := activitymap.Normalize(
		event,
		activitymap.WithDefaultChannel("audit"),
		activitymap.WithDefaultObjectType("account"),
		activitymap.WithObjectIDResolver(func(e newsroom.ActivityEvent) string {
			if v, ok := e.Metadata["revision"].(string); ok {
				return v
			}
			return ""
		}),
	)

	if out.Channel != "audit" {
		t.Fatalf("expected channel audit, got %q", out.Channel)
	}
	if out.ObjectType != "account" {
		t.Fatalf("expected object_type account, got %q", out.ObjectType)
	}
	if out.ObjectID != "rev-9" {
		t.Fatalf("expected object_id rev-9, got %q", out.ObjectID)
	}
	if out.Metadata[activitymap.MetadataKeyActorType] != "existing" {
		t.Fatalf("expected existing actor_type preserved, got %#v", out.Metadata[activitymap.MetadataKeyActorType])
	}
	if out.OccurredAt.IsZero() {
		t.Fatalf("expected occurred_at to be set when input is zero")
	}
}

func TestNormalizeActorFallbackChain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		event  newsroom.ActivityEvent
		opts   []activitymap.Option
		expect string
	}{
		{
			name:   "uses actor id when present",
			event:  newsroom.ActivityEvent{Actor: newsroom.ActorRef{ID: "actor-1"}, PrincipalID: "p-1"},
			expect: "actor-1",
		},
		{
			name:   "uses principal id when actor id missing",
			event:  newsroom.ActivityEvent{Actor: newsroom.ActorRef{ID: ""}, PrincipalID: "p-2"},
			expect: "p-2",
		},
		{
			name:   "uses default fallback when actor and principal missing",
			event:  newsroom.ActivityEvent{},
			expect: "system",
		},
		{
			name:   "uses configured fallback when actor and principal missing",
			event:  newsroom.ActivityEvent{},
			opts:   []activitymap.Option{activitymap.WithActorFallback("job")},
			expect: "job",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			out := activitymap.Normalize(tc.event, tc.opts...)
			if out.ActorID != tc.expect {
				t.Fatalf("expected actor_id %q, got %q", tc.expect, out.ActorID)
			}
		})
	}
}

func TestSinkForwardsNormalizedRecords(t *testing.T) {
	t.Parallel()

	var got []activitymap.Normalized
	sink := activitymap.NewSink(func(_ context.Context, record activitymap.Normalized) error {
		got = append(got, record)
		return nil
	}, activitymap.WithDefaultChannel("audit"))

	err := sink.Record(context.Background(), newsroom.ActivityEvent{
		EventType:   newsroom.ActivityEventSignedIn,
		PrincipalID: "p-1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(got) != 1 {
		t.Fatalf("expected 1 record, got %d", len(got))
	}
	if got[0].Verb != string(newsroom.ActivityEventSignedIn) {
		t.Fatalf("expected verb %q, got %q", newsroom.ActivityEventSignedIn, got[0].Verb)
	}
	if got[0].Channel != "audit" {
		t.Fatalf("expected channel audit, got %q", got[0].Channel)
	}
}
