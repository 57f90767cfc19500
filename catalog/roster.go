package catalog

import (
	"context"
	"database/sql"
	stderrors "errors"

	"github.com/uptrace/bun"
)

// Roster lists the team display roster. Entries are independent of user
// profiles; a team member is not required to have an account.
type Roster struct {
	db *bun.DB
}

// NewRoster builds the roster over the given store.
func NewRoster(db *bun.DB) *Roster {
	return &Roster{db: db}
}

// List returns the roster ordered for display.
func (r *Roster) List(ctx context.Context) ([]*TeamMember, error) {
	var members []*TeamMember
	err := r.db.NewSelect().
		Model(&members).
		OrderExpr("?TableAlias.sort_order ASC, ?TableAlias.name ASC").
		Scan(ctx)

	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return []*TeamMember{}, nil
		}
		return nil, err
	}

	return members, nil
}
