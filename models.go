package newsroom

import (
	"time"

	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Role is the profile's site-wide role
type Role string

const (
	// RoleReader can view published content and their own dashboard
	RoleReader Role = "reader"
	// RoleWriter can author content (own items only)
	RoleWriter Role = "writer"
	// RoleEditor can edit any content
	RoleEditor Role = "editor"
	// RoleAdmin can administer the site
	RoleAdmin Role = "admin"
)

// UserProfile is the locally persisted record for an authenticated principal.
// It exists if and only if the principal completed provisioning; absence for a
// signed-in principal is a valid transient state.
type UserProfile struct {
	bun.BaseModel `bun:"table:user_profiles,alias:prf"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	PrincipalID   string     `bun:"principal_id,notnull,unique" json:"principal_id,omitempty"`
	Role          Role       `bun:"user_role,notnull" json:"user_role,omitempty"`
	DisplayName   string     `bun:"display_name,notnull" json:"display_name,omitempty"`
	Email         string     `bun:"email,notnull,unique" json:"email,omitempty"`
	PhotoURL      string     `bun:"photo_url" json:"photo_url,omitempty"`
	Bio           string     `bun:"bio" json:"bio,omitempty"`
	JoinedAt      *time.Time `bun:"joined_at,nullzero" json:"joined_at,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// IsAdmin reports whether the profile carries the admin role.
func (p *UserProfile) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}

func prepareProfileDefaults(record *UserProfile) {
	if record == nil {
		return
	}

	if record.Role == "" {
		record.Role = RoleReader
	}

	if record.JoinedAt == nil {
		now := time.Now()
		record.JoinedAt = &now
	}

	if record.ID == uuid.Nil {
		record.ID = ProfileID(record.PrincipalID)
	}
}

// ProfileID derives a deterministic profile UUID from the provider-issued
// principal id, so concurrent provisioning attempts converge on one document.
func ProfileID(principalID string) uuid.UUID {
	if principalID == "" {
		return uuid.New()
	}
	if id, err := hashid.NewUUID(principalID); err == nil {
		return id
	}
	return uuid.New()
}
