package newsroom

import (
	"context"
	"database/sql"
	stderrors "errors"
	"strings"
	"sync"

	"github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Profiles is the repository for persisted user profiles. Fetch may serve
// from a process-local cache; Refresh always re-reads the backing store. Both
// distinguish a missing document (ErrProfileNotFound, expected during
// provisioning) from a backend failure (ErrProfileFetch).
type Profiles interface {
	repository.Repository[*UserProfile]

	Fetch(ctx context.Context, principalID string) (*UserProfile, error)
	FetchTx(ctx context.Context, tx bun.IDB, principalID string) (*UserProfile, error)
	Refresh(ctx context.Context, principalID string) (*UserProfile, error)
	RefreshTx(ctx context.Context, tx bun.IDB, principalID string) (*UserProfile, error)

	Provision(ctx context.Context, record *UserProfile) (*UserProfile, error)
	ProvisionTx(ctx context.Context, tx bun.IDB, record *UserProfile) (*UserProfile, error)

	UpdateRole(ctx context.Context, id uuid.UUID, role Role) (*UserProfile, error)
	UpdateRoleTx(ctx context.Context, tx bun.IDB, id uuid.UUID, role Role) (*UserProfile, error)
}

type profiles struct {
	repository.Repository[*UserProfile]
	db *bun.DB

	cacheMu sync.RWMutex
	cache   map[string]*UserProfile
}

var (
	_ Profiles                            = (*profiles)(nil)
	_ repository.Repository[*UserProfile] = (*profiles)(nil)
	_ ProfileReader                       = (*profiles)(nil)
)

// ProfilesOption customizes the repository.
type ProfilesOption func(*profiles)

// NewProfilesRepository builds the bun-backed profile repository.
func NewProfilesRepository(db *bun.DB, opts ...ProfilesOption) Profiles {
	repo := repository.NewRepository[*UserProfile](db, repository.ModelHandlers[*UserProfile]{
		NewRecord: func() *UserProfile { return &UserProfile{} },
		GetID: func(p *UserProfile) uuid.UUID {
			if p == nil {
				return uuid.Nil
			}
			return p.ID
		},
		SetID: func(p *UserProfile, id uuid.UUID) {
			if p != nil {
				p.ID = id
			}
		},
		GetIdentifier: func() string {
			return "principal_id"
		},
	})

	repoProfiles := &profiles{
		Repository: repo,
		db:         db,
		cache:      map[string]*UserProfile{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(repoProfiles)
		}
	}

	return repoProfiles
}

func (a *profiles) Fetch(ctx context.Context, principalID string) (*UserProfile, error) {
	if cached := a.cached(principalID); cached != nil {
		return cached, nil
	}
	return a.FetchTx(ctx, a.db, principalID)
}

func (a *profiles) FetchTx(ctx context.Context, tx bun.IDB, principalID string) (*UserProfile, error) {
	record, err := a.read(ctx, tx, principalID)
	if err != nil {
		return nil, err
	}
	a.remember(record)
	return record, nil
}

// Refresh bypasses the cache and re-reads the document.
func (a *profiles) Refresh(ctx context.Context, principalID string) (*UserProfile, error) {
	return a.RefreshTx(ctx, a.db, principalID)
}

func (a *profiles) RefreshTx(ctx context.Context, tx bun.IDB, principalID string) (*UserProfile, error) {
	record, err := a.read(ctx, tx, principalID)
	if err != nil {
		a.forget(principalID)
		return nil, err
	}
	a.remember(record)
	return record, nil
}

// Provision creates the profile document on first successful sign-in. It is
// race-tolerant: when a concurrent attempt already created the document, the
// existing record wins.
func (a *profiles) Provision(ctx context.Context, record *UserProfile) (*UserProfile, error) {
	return a.ProvisionTx(ctx, a.db, record)
}

func (a *profiles) ProvisionTx(ctx context.Context, tx bun.IDB, record *UserProfile) (*UserProfile, error) {
	if record == nil || strings.TrimSpace(record.PrincipalID) == "" {
		return nil, errors.New("principal id is required", errors.CategoryValidation).
			WithCode(errors.CodeBadRequest)
	}

	existing, err := a.read(ctx, tx, record.PrincipalID)
	if err == nil {
		a.remember(existing)
		return existing, nil
	}
	if !IsNotFound(err) {
		return nil, err
	}

	prepareProfileDefaults(record)
	created, err := a.Repository.CreateTx(ctx, tx, record)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, err
		}
		return nil, errors.Wrap(err, errors.CategoryConflict, "could not provision profile").
			WithTextCode(TextCodeProfileExists)
	}

	a.remember(created)
	return created, nil
}

func (a *profiles) UpdateRole(ctx context.Context, id uuid.UUID, role Role) (*UserProfile, error) {
	return a.UpdateRoleTx(ctx, a.db, id, role)
}

func (a *profiles) UpdateRoleTx(ctx context.Context, tx bun.IDB, id uuid.UUID, role Role) (*UserProfile, error) {
	if !role.IsValid() {
		return nil, ErrUnknownRole.WithMetadata(map[string]any{
			"role": string(role),
		})
	}

	record := &UserProfile{
		ID:   id,
		Role: role,
	}

	updated, err := a.Repository.UpdateTx(ctx, tx, record,
		repository.UpdateByID(id.String()),
		repository.UpdateSkipZeroValues(),
	)
	if err != nil {
		return nil, err
	}

	a.forget(updated.PrincipalID)
	return updated, nil
}

func (a *profiles) read(ctx context.Context, tx bun.IDB, principalID string) (*UserProfile, error) {
	trimmed := strings.TrimSpace(principalID)
	if trimmed == "" {
		return nil, ErrProfileNotFound.WithMetadata(map[string]any{
			"reason": "empty principal id",
		})
	}

	record := &UserProfile{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.principal_id = ?", trimmed).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) || stderrors.Is(err, sql.ErrNoRows) {
			return nil, ErrProfileNotFound.WithMetadata(map[string]any{
				"principal_id": trimmed,
			})
		}
		return nil, ErrProfileFetch.WithMetadata(map[string]any{
			"principal_id": trimmed,
			"cause":        err.Error(),
		})
	}

	return record, nil
}

func (a *profiles) cached(principalID string) *UserProfile {
	a.cacheMu.RLock()
	defer a.cacheMu.RUnlock()
	return a.cache[principalID]
}

func (a *profiles) remember(record *UserProfile) {
	if record == nil || record.PrincipalID == "" {
		return
	}
	a.cacheMu.Lock()
	defer a.cacheMu.Unlock()
	a.cache[record.PrincipalID] = record
}

func (a *profiles) forget(principalID string) {
	if principalID == "" {
		return
	}
	a.cacheMu.Lock()
	defer a.cacheMu.Unlock()
	delete(a.cache, principalID)
}
