package catalog

import (
	"context"
	"database/sql"
	"errors"
	"log"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RepositoryManager exposes all content-side repositories
type RepositoryManager interface {
	repository.Validator
	repository.TransactionManager
	Articles() repository.Repository[*Article]
	Videos() repository.Repository[*Video]
	Podcasts() repository.Repository[*Podcast]
	TeamMembers() repository.Repository[*TeamMember]
}

// NewArticlesRepository builds the bun-backed article repository.
func NewArticlesRepository(db *bun.DB) repository.Repository[*Article] {
	return repository.NewRepository[*Article](db, repository.ModelHandlers[*Article]{
		NewRecord: func() *Article { return &Article{} },
		GetID: func(a *Article) uuid.UUID {
			if a == nil {
				return uuid.Nil
			}
			return a.ID
		},
		SetID: func(a *Article, id uuid.UUID) {
			if a != nil {
				a.ID = id
			}
		},
		GetIdentifier: func() string {
			return "slug"
		},
	})
}

// NewVideosRepository builds the bun-backed video repository.
func NewVideosRepository(db *bun.DB) repository.Repository[*Video] {
	return repository.NewRepository[*Video](db, repository.ModelHandlers[*Video]{
		NewRecord: func() *Video { return &Video{} },
		GetID: func(v *Video) uuid.UUID {
			if v == nil {
				return uuid.Nil
			}
			return v.ID
		},
		SetID: func(v *Video, id uuid.UUID) {
			if v != nil {
				v.ID = id
			}
		},
		GetIdentifier: func() string {
			return "slug"
		},
	})
}

// NewPodcastsRepository builds the bun-backed podcast repository.
func NewPodcastsRepository(db *bun.DB) repository.Repository[*Podcast] {
	return repository.NewRepository[*Podcast](db, repository.ModelHandlers[*Podcast]{
		NewRecord: func() *Podcast { return &Podcast{} },
		GetID: func(p *Podcast) uuid.UUID {
			if p == nil {
				return uuid.Nil
			}
			return p.ID
		},
		SetID: func(p *Podcast, id uuid.UUID) {
			if p != nil {
				p.ID = id
			}
		},
		GetIdentifier: func() string {
			return "slug"
		},
	})
}

// NewTeamMembersRepository builds the bun-backed roster repository.
func NewTeamMembersRepository(db *bun.DB) repository.Repository[*TeamMember] {
	return repository.NewRepository[*TeamMember](db, repository.ModelHandlers[*TeamMember]{
		NewRecord: func() *TeamMember { return &TeamMember{} },
		GetID: func(m *TeamMember) uuid.UUID {
			if m == nil {
				return uuid.Nil
			}
			return m.ID
		},
		SetID: func(m *TeamMember, id uuid.UUID) {
			if m != nil {
				m.ID = id
			}
		},
		GetIdentifier: func() string {
			return "name"
		},
	})
}

type mngr struct {
	db          *bun.DB
	articles    repository.Repository[*Article]
	videos      repository.Repository[*Video]
	podcasts    repository.Repository[*Podcast]
	teamMembers repository.Repository[*TeamMember]
}

func NewRepositoryManager(db *bun.DB) RepositoryManager {
	return &mngr{
		db:          db,
		articles:    NewArticlesRepository(db),
		videos:      NewVideosRepository(db),
		podcasts:    NewPodcastsRepository(db),
		teamMembers: NewTeamMembersRepository(db),
	}
}

func (m mngr) Validate() error {
	if m.articles == nil {
		return errors.New("repository articles should be initialized")
	}

	if m.videos == nil {
		return errors.New("repository videos should be initialized")
	}

	if m.podcasts == nil {
		return errors.New("repository podcasts should be initialized")
	}

	if m.teamMembers == nil {
		return errors.New("repository teamMembers should be initialized")
	}

	return nil
}

func (m mngr) MustValidate() {
	if err := m.Validate(); err != nil {
		log.Panic(err)
	}
}

func (m mngr) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return m.db.RunInTx(ctx, opts, f)
	}
}

func (m mngr) Articles() repository.Repository[*Article] {
	return m.articles
}

func (m mngr) Videos() repository.Repository[*Video] {
	return m.videos
}

func (m mngr) Podcasts() repository.Repository[*Podcast] {
	return m.podcasts
}

func (m mngr) TeamMembers() repository.Repository[*TeamMember] {
	return m.teamMembers
}
