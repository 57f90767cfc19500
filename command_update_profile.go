package newsroom

import (
	"context"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// UpdateProfileMessage mutates display attributes of an existing profile.
// Role changes ride the same message but require the actor to hold
// administer-site; everyone else may only edit their own display fields.
type UpdateProfileMessage struct {
	ProfileID   uuid.UUID `json:"profile_id"`
	DisplayName string    `json:"display_name"`
	Bio         string    `json:"bio"`
	PhotoURL    string    `json:"photo_url"`
	Role        string    `json:"role"`

	Actor     ActorRef `json:"-"`
	ActorRole Role     `json:"-"`
}

func (e UpdateProfileMessage) Type() string { return "profile.update" }

// Validate checks the payload before any storage round trip.
func (e UpdateProfileMessage) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.DisplayName, validation.Length(1, 200)),
		validation.Field(&e.Bio, validation.Length(0, 2000)),
		validation.Field(&e.PhotoURL, is.URL),
	)
}

type UpdateProfileHandler struct {
	repo   RepositoryManager
	sink   ActivitySink
	logger Logger
}

func NewUpdateProfileHandler(repo RepositoryManager) *UpdateProfileHandler {
	return &UpdateProfileHandler{
		repo:   repo,
		sink:   noopActivitySink{},
		logger: defLogger{},
	}
}

func (h *UpdateProfileHandler) WithActivitySink(sink ActivitySink) *UpdateProfileHandler {
	h.sink = normalizeActivitySink(sink)
	return h
}

func (h *UpdateProfileHandler) WithLogger(logger Logger) *UpdateProfileHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *UpdateProfileHandler) Execute(ctx context.Context, event UpdateProfileMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during profile update",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *UpdateProfileHandler) execute(ctx context.Context, event UpdateProfileMessage) error {
	if event.ProfileID == uuid.Nil {
		return goerrors.New("profile id is required", goerrors.CategoryValidation).
			WithCode(goerrors.CodeBadRequest)
	}

	if err := event.Validate(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid profile update payload").
			WithCode(goerrors.CodeBadRequest)
	}

	var targetRole Role
	if trimmed := strings.TrimSpace(event.Role); trimmed != "" {
		parsed, ok := ParseRole(trimmed)
		if !ok {
			return ErrUnknownRole.WithMetadata(map[string]any{
				"role": trimmed,
			})
		}
		// advisory on the client, but the command layer re-checks: role
		// mutation is an administrative action
		if !event.ActorRole.Can(CapabilityAdministerSite) {
			return ErrRoleChangeDenied.WithMetadata(map[string]any{
				"actor":      event.Actor.ID,
				"actor_role": string(event.ActorRole),
			})
		}
		targetRole = parsed
	}

	var fromRole, toRole Role
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		record := &UserProfile{
			ID:          event.ProfileID,
			DisplayName: event.DisplayName,
			Bio:         event.Bio,
			PhotoURL:    event.PhotoURL,
		}

		// partial update: untouched fields keep their stored values
		updated, err := h.repo.Profiles().UpdateTx(ctx, tx, record,
			repository.UpdateByID(event.ProfileID.String()),
			repository.UpdateSkipZeroValues(),
		)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryOperation, "could not update profile")
		}
		fromRole = updated.Role

		if targetRole != "" && targetRole != updated.Role {
			if _, err := h.repo.Profiles().UpdateRoleTx(ctx, tx, event.ProfileID, targetRole); err != nil {
				return err
			}
			toRole = targetRole
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "profile update failed")
	}

	h.record(ctx, ActivityEvent{
		EventType: ActivityEventProfileUpdated,
		Actor:     event.Actor,
		ProfileID: event.ProfileID.String(),
	})

	if toRole != "" {
		h.record(ctx, ActivityEvent{
			EventType: ActivityEventRoleChanged,
			Actor:     event.Actor,
			ProfileID: event.ProfileID.String(),
			FromRole:  fromRole,
			ToRole:    toRole,
		})
	}

	return nil
}

func (h *UpdateProfileHandler) record(ctx context.Context, event ActivityEvent) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}
	if err := normalizeActivitySink(h.sink).Record(ctx, event); err != nil {
		h.logger.Warn("update profile activity sink error: %v", err)
	}
}
