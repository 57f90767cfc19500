package newsroom

import (
	"context"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// ProvisionProfileMessage creates the profile document for a principal that
// completed its first sign-in. Safe to re-dispatch: a racing duplicate settles
// on the already provisioned record.
type ProvisionProfileMessage struct {
	PrincipalID string `json:"principal_id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	PhotoURL    string `json:"photo_url"`
	Role        string `json:"role"`
}

func (e ProvisionProfileMessage) Type() string { return "profile.provision" }

// Validate checks the payload before any storage round trip.
func (e ProvisionProfileMessage) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.PrincipalID, validation.Required, validation.Length(1, 200)),
		validation.Field(&e.DisplayName, validation.Required, validation.Length(1, 200)),
		validation.Field(&e.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&e.PhotoURL, is.URL),
	)
}

type ProvisionProfileHandler struct {
	repo   RepositoryManager
	sink   ActivitySink
	logger Logger
}

// NewProvisionProfileHandler builds the handler with a noop sink and default
// logger; use the With* methods to override.
func NewProvisionProfileHandler(repo RepositoryManager) *ProvisionProfileHandler {
	return &ProvisionProfileHandler{
		repo:   repo,
		sink:   noopActivitySink{},
		logger: defLogger{},
	}
}

func (h *ProvisionProfileHandler) WithActivitySink(sink ActivitySink) *ProvisionProfileHandler {
	h.sink = normalizeActivitySink(sink)
	return h
}

func (h *ProvisionProfileHandler) WithLogger(logger Logger) *ProvisionProfileHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *ProvisionProfileHandler) Execute(ctx context.Context, event ProvisionProfileMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during profile provisioning",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *ProvisionProfileHandler) execute(ctx context.Context, event ProvisionProfileMessage) error {
	if err := event.Validate(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid provisioning payload").
			WithCode(goerrors.CodeBadRequest)
	}

	role := RoleReader
	if trimmed := strings.TrimSpace(event.Role); trimmed != "" {
		parsed, ok := ParseRole(trimmed)
		if !ok {
			return ErrUnknownRole.WithMetadata(map[string]any{
				"role": trimmed,
			})
		}
		role = parsed
	}

	profile := &UserProfile{}
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		record := &UserProfile{
			PrincipalID: event.PrincipalID,
			DisplayName: event.DisplayName,
			Email:       event.Email,
			PhotoURL:    event.PhotoURL,
			Role:        role,
		}

		created, err := h.repo.Profiles().ProvisionTx(ctx, tx, record)
		if err != nil {
			return err
		}

		profile = created
		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "profile provisioning failed")
	}

	h.record(ctx, ActivityEvent{
		EventType:   ActivityEventProfileProvisioned,
		Actor:       ActorRef{ID: event.PrincipalID, Type: "principal"},
		PrincipalID: event.PrincipalID,
		ProfileID:   profile.ID.String(),
		ToRole:      profile.Role,
	})

	return nil
}

func (h *ProvisionProfileHandler) record(ctx context.Context, event ActivityEvent) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}
	if err := normalizeActivitySink(h.sink).Record(ctx, event); err != nil {
		h.logger.Warn("provision profile activity sink error: %v", err)
	}
}
