package catalog

import (
	"context"
	"database/sql"
	stderrors "errors"
	"strings"
	"time"

	"github.com/goliatone/go-featuregate/gate"
	newsroom "github.com/goliatone/go-newsroom"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Viewer identifies who is asking. Role routes through the newsroom
// capability evaluator; ProfileID scopes own-items queries.
type Viewer struct {
	ProfileID uuid.UUID
	Role      newsroom.Role
}

// Filter narrows a public listing. Category must belong to the taxonomy;
// Tag and Query are matched after the visibility cut.
type Filter struct {
	Category string
	Tag      string
	Query    string
}

// Service lists and mutates one content type. Listings are safe for
// concurrent use from multiple surfaces; mutations go through the backing
// store one item at a time.
type Service[T Item] struct {
	db     *bun.DB
	repo   repository.Repository[T]
	gate   gate.FeatureGate
	logger newsroom.Logger
	clock  func() time.Time
	// ownerColumn is the column holding the authoring profile reference;
	// articles use author_id, videos and podcasts use host_id.
	ownerColumn string
}

// ServiceOption customizes a Service.
type ServiceOption[T Item] func(*Service[T])

// WithServiceLogger overrides the default stdout logger.
func WithServiceLogger[T Item](logger newsroom.Logger) ServiceOption[T] {
	return func(s *Service[T]) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithServiceClock injects a custom clock (useful for tests).
func WithServiceClock[T Item](clock func() time.Time) ServiceOption[T] {
	return func(s *Service[T]) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithServiceFeatureGate gates the editorial promotion operations.
func WithServiceFeatureGate[T Item](fg gate.FeatureGate) ServiceOption[T] {
	return func(s *Service[T]) {
		s.gate = fg
	}
}

// WithOwnerColumn overrides the column used to scope own-items queries.
func WithOwnerColumn[T Item](column string) ServiceOption[T] {
	return func(s *Service[T]) {
		if column != "" {
			s.ownerColumn = column
		}
	}
}

// NewService builds a service over an existing repository.
func NewService[T Item](db *bun.DB, repo repository.Repository[T], opts ...ServiceOption[T]) *Service[T] {
	s := &Service[T]{
		db:          db,
		repo:        repo,
		logger:      newsroom.DefaultLogger(),
		clock:       time.Now,
		ownerColumn: "author_id",
	}

	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	return s
}

// NewArticleService wires repository and service for articles.
func NewArticleService(db *bun.DB, opts ...ServiceOption[*Article]) *Service[*Article] {
	return NewService(db, NewArticlesRepository(db), opts...)
}

// NewVideoService wires repository and service for videos.
func NewVideoService(db *bun.DB, opts ...ServiceOption[*Video]) *Service[*Video] {
	opts = append([]ServiceOption[*Video]{WithOwnerColumn[*Video]("host_id")}, opts...)
	return NewService(db, NewVideosRepository(db), opts...)
}

// NewPodcastService wires repository and service for podcasts.
func NewPodcastService(db *bun.DB, opts ...ServiceOption[*Podcast]) *Service[*Podcast] {
	opts = append([]ServiceOption[*Podcast]{WithOwnerColumn[*Podcast]("host_id")}, opts...)
	return NewService(db, NewPodcastsRepository(db), opts...)
}

// ListPublished returns published items ordered by publication date
// descending. Drafts are excluded for every filter and every caller role. An
// unknown category fails with ErrUnknownCategory rather than returning an
// empty sequence, so typos surface at the call site.
func (s *Service[T]) ListPublished(ctx context.Context, filter Filter) ([]T, error) {
	var category Category
	if trimmed := strings.TrimSpace(filter.Category); trimmed != "" {
		parsed, ok := ParseCategory(trimmed)
		if !ok {
			return nil, ErrUnknownCategory.WithMetadata(map[string]any{
				"category": trimmed,
			})
		}
		category = parsed
	}

	var items []T
	q := s.db.NewSelect().
		Model(&items).
		Where("?TableAlias.visibility = ?", VisibilityPublished).
		OrderExpr("?TableAlias.published_at DESC")

	if category != "" {
		q = q.Where("?TableAlias.category = ?", category)
	}

	if err := q.Scan(ctx); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return []T{}, nil
		}
		return nil, err
	}

	return narrow(items, filter), nil
}

// ListEditorsPicks returns the newest published editor's picks, at most limit
// of them. A non-positive limit means no cap.
func (s *Service[T]) ListEditorsPicks(ctx context.Context, limit int) ([]T, error) {
	var items []T
	q := s.db.NewSelect().
		Model(&items).
		Where("?TableAlias.visibility = ?", VisibilityPublished).
		Where("?TableAlias.is_editors_pick = ?", true).
		OrderExpr("?TableAlias.published_at DESC")

	if limit > 0 {
		q = q.Limit(limit)
	}

	if err := q.Scan(ctx); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return []T{}, nil
		}
		return nil, err
	}

	return items, nil
}

// Featured returns the featured published item for this content type. At most
// one is expected by convention; when the convention is violated the newest
// wins and the violation is logged.
func (s *Service[T]) Featured(ctx context.Context) (T, bool, error) {
	var zero T

	var items []T
	err := s.db.NewSelect().
		Model(&items).
		Where("?TableAlias.visibility = ?", VisibilityPublished).
		Where("?TableAlias.is_featured = ?", true).
		OrderExpr("?TableAlias.published_at DESC").
		Scan(ctx)

	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return zero, false, nil
		}
		return zero, false, err
	}

	if len(items) == 0 {
		return zero, false, nil
	}

	if len(items) > 1 {
		s.logger.Warn("featured convention violated: %d items flagged, newest wins", len(items))
	}

	return items[0], true, nil
}

// ListDrafts is the authoring surface. edit-any-content sees every draft;
// author-content sees only the viewer's own. Anyone else is refused.
func (s *Service[T]) ListDrafts(ctx context.Context, viewer Viewer) ([]T, error) {
	ownOnly := false
	switch {
	case viewer.Role.Can(newsroom.CapabilityEditAnyContent):
	case viewer.Role.Can(newsroom.CapabilityAuthorContent):
		ownOnly = true
	default:
		return nil, ErrDraftAccess.WithMetadata(map[string]any{
			"role": string(viewer.Role),
		})
	}

	var items []T
	q := s.db.NewSelect().
		Model(&items).
		Where("?TableAlias.visibility = ?", VisibilityDraft).
		OrderExpr("?TableAlias.created_at DESC")

	if ownOnly {
		q = q.Where("?TableAlias."+s.ownerColumn+" = ?", viewer.ProfileID)
	}

	if err := q.Scan(ctx); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return []T{}, nil
		}
		return nil, err
	}

	return items, nil
}

// SaveDraft persists a draft item for its owner. The category is validated up
// front; authoring your own item needs author-content, saving someone else's
// needs edit-any-content. A published item can no longer be saved as a draft:
// the draft -> published transition is one way.
func (s *Service[T]) SaveDraft(ctx context.Context, viewer Viewer, item T) (T, error) {
	var zero T

	state := item.State()
	if !state.Category.IsValid() {
		return zero, ErrUnknownCategory.WithMetadata(map[string]any{
			"category": string(state.Category),
		})
	}

	own := item.OwnerID() == viewer.ProfileID
	switch {
	case own && viewer.Role.Can(newsroom.CapabilityAuthorContent):
	case viewer.Role.Can(newsroom.CapabilityEditAnyContent):
	default:
		return zero, ErrDraftAccess.WithMetadata(map[string]any{
			"role": string(viewer.Role),
			"own":  own,
		})
	}

	if item.GetID() != uuid.Nil {
		stored, err := s.repo.GetByID(ctx, item.GetID().String())
		if err != nil && !repository.IsRecordNotFound(err) {
			return zero, err
		}
		if err == nil && stored.State().IsPublished() {
			return zero, ErrAlreadyPublished.WithMetadata(map[string]any{
				"id": item.GetID().String(),
			})
		}
	}

	state.Visibility = VisibilityDraft
	state.PublishedAt = nil
	state.IsFeatured = false
	state.IsEditorsPick = false

	saved, err := s.repo.Upsert(ctx, item)
	if err != nil {
		return zero, err
	}
	return saved, nil
}

// Publish moves a draft to published and stamps PublishedAt. Publishing an
// already published item is a no-op. The transition is one way.
func (s *Service[T]) Publish(ctx context.Context, viewer Viewer, id uuid.UUID) (T, error) {
	var zero T

	item, err := s.getByID(ctx, id)
	if err != nil {
		return zero, err
	}

	own := item.OwnerID() == viewer.ProfileID
	switch {
	case own && viewer.Role.Can(newsroom.CapabilityAuthorContent):
	case viewer.Role.Can(newsroom.CapabilityEditAnyContent):
	default:
		return zero, ErrDraftAccess.WithMetadata(map[string]any{
			"role": string(viewer.Role),
			"own":  own,
		})
	}

	state := item.State()
	if state.IsPublished() {
		return item, nil
	}

	now := s.clock()
	state.Visibility = VisibilityPublished
	state.PublishedAt = &now

	updated, err := s.repo.Update(ctx, item, repository.UpdateByID(id.String()))
	if err != nil {
		return zero, err
	}
	return updated, nil
}

// SetFeatured flips the featured flag. Requires edit-any-content, a published
// item, and the promotion feature gate. Competing featured items are not
// cleared; uniqueness stays a display convention.
func (s *Service[T]) SetFeatured(ctx context.Context, viewer Viewer, id uuid.UUID, featured bool) (T, error) {
	return s.promote(ctx, viewer, id, FeatureCatalogPromoteFeatured, func(state *Editorial) {
		state.IsFeatured = featured
	})
}

// SetEditorsPick flips the editor's pick flag. Requires edit-any-content, a
// published item, and the promotion feature gate.
func (s *Service[T]) SetEditorsPick(ctx context.Context, viewer Viewer, id uuid.UUID, pick bool) (T, error) {
	return s.promote(ctx, viewer, id, FeatureCatalogPromoteEditorsPick, func(state *Editorial) {
		state.IsEditorsPick = pick
	})
}

func (s *Service[T]) promote(ctx context.Context, viewer Viewer, id uuid.UUID, feature string, apply func(*Editorial)) (T, error) {
	var zero T

	if !viewer.Role.Can(newsroom.CapabilityEditAnyContent) {
		return zero, ErrPromotionForbidden.WithMetadata(map[string]any{
			"role": string(viewer.Role),
		})
	}

	if err := requirePromotionGate(ctx, s.gate, feature); err != nil {
		return zero, err
	}

	item, err := s.getByID(ctx, id)
	if err != nil {
		return zero, err
	}

	state := item.State()
	if !state.IsPublished() {
		return zero, ErrNotPublished.WithMetadata(map[string]any{
			"id": id.String(),
		})
	}

	apply(state)

	updated, err := s.repo.Update(ctx, item, repository.UpdateByID(id.String()))
	if err != nil {
		return zero, err
	}
	return updated, nil
}

func (s *Service[T]) getByID(ctx context.Context, id uuid.UUID) (T, error) {
	var zero T

	item, err := s.repo.GetByID(ctx, id.String())
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return zero, ErrItemNotFound.WithMetadata(map[string]any{
				"id": id.String(),
			})
		}
		return zero, err
	}

	return item, nil
}

// narrow applies the tag and free-text filters after the visibility cut.
func narrow[T Item](items []T, filter Filter) []T {
	tag := strings.ToLower(strings.TrimSpace(filter.Tag))
	query := strings.ToLower(strings.TrimSpace(filter.Query))
	if tag == "" && query == "" {
		return items
	}

	out := make([]T, 0, len(items))
	for _, item := range items {
		if tag != "" && !hasTag(item, tag) {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(item.GetTitle()), query) {
			continue
		}
		out = append(out, item)
	}
	return out
}

func hasTag[T Item](item T, tag string) bool {
	for _, t := range item.MatchTags() {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}
