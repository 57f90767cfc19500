package catalog

import (
	"github.com/goliatone/go-errors"
	newsroom "github.com/goliatone/go-newsroom"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"
)

// ViewerResolver derives the requesting viewer from the route context. The
// default resolver returns a zero viewer, which can only reach the public
// surface.
type ViewerResolver func(router.Context) Viewer

// HTTPRoutes holds the path layout for the catalog surface.
type HTTPRoutes struct {
	Listing  string
	Featured string
	Picks    string
	Drafts   string
	Publish  string
	Feature  string
	Pick     string
	Team     string
}

func defaultHTTPRoutes() HTTPRoutes {
	return HTTPRoutes{
		Listing:  "/catalog/:type",
		Featured: "/catalog/:type/featured",
		Picks:    "/catalog/:type/picks",
		Drafts:   "/catalog/:type/drafts",
		Publish:  "/catalog/:type/:id/publish",
		Feature:  "/catalog/:type/:id/feature",
		Pick:     "/catalog/:type/:id/pick",
		Team:     "/team",
	}
}

// HTTPController exposes the catalog over HTTP. Public listings need no
// viewer; the authoring and promotion routes resolve one through the
// configured ViewerResolver.
type HTTPController struct {
	Routes HTTPRoutes

	articles *Service[*Article]
	videos   *Service[*Video]
	podcasts *Service[*Podcast]
	roster   *Roster
	resolver ViewerResolver
	logger   newsroom.Logger
}

// HTTPControllerOption customizes the controller.
type HTTPControllerOption func(*HTTPController)

// WithHTTPRoutes overrides the default path layout.
func WithHTTPRoutes(routes HTTPRoutes) HTTPControllerOption {
	return func(c *HTTPController) {
		c.Routes = routes
	}
}

// WithViewerResolver sets how the viewer is derived from a request.
func WithViewerResolver(resolver ViewerResolver) HTTPControllerOption {
	return func(c *HTTPController) {
		if resolver != nil {
			c.resolver = resolver
		}
	}
}

// WithHTTPLogger overrides the default stdout logger.
func WithHTTPLogger(logger newsroom.Logger) HTTPControllerOption {
	return func(c *HTTPController) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewHTTPController wires the three content services and the team roster.
func NewHTTPController(
	articles *Service[*Article],
	videos *Service[*Video],
	podcasts *Service[*Podcast],
	roster *Roster,
	opts ...HTTPControllerOption,
) *HTTPController {
	c := &HTTPController{
		Routes:   defaultHTTPRoutes(),
		articles: articles,
		videos:   videos,
		podcasts: podcasts,
		roster:   roster,
		resolver: func(router.Context) Viewer { return Viewer{} },
		logger:   newsroom.DefaultLogger(),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	return c
}

// RegisterCatalogRoutes mounts the catalog surface on the given router. The
// authoring and promotion routes are wrapped with authGuard when provided;
// pass nil to mount them unguarded (e.g. behind an outer auth layer).
func RegisterCatalogRoutes[T any](app router.Router[T], controller *HTTPController, authGuard router.MiddlewareFunc) {
	guarded := func(h router.HandlerFunc) router.HandlerFunc {
		if authGuard == nil {
			return h
		}
		return authGuard(h)
	}

	app.Get(controller.Routes.Listing, controller.ListPublished).
		SetName("catalog.listing")

	app.Get(controller.Routes.Featured, controller.Featured).
		SetName("catalog.featured")

	app.Get(controller.Routes.Picks, controller.EditorsPicks).
		SetName("catalog.picks")

	app.Get(controller.Routes.Team, controller.Team).
		SetName("catalog.team")

	app.Get(controller.Routes.Drafts, guarded(controller.Drafts)).
		SetName("catalog.drafts")

	app.Post(controller.Routes.Publish, guarded(controller.Publish)).
		SetName("catalog.publish")

	app.Post(controller.Routes.Feature, guarded(controller.SetFeatured)).
		SetName("catalog.feature")

	app.Post(controller.Routes.Pick, guarded(controller.SetEditorsPick)).
		SetName("catalog.pick")
}

// PromotePayload toggles a promotion flag.
type PromotePayload struct {
	Enabled bool `json:"enabled"`
}

func (c *HTTPController) ListPublished(ctx router.Context) error {
	filter := Filter{
		Category: ctx.Query("category"),
		Tag:      ctx.Query("tag"),
		Query:    ctx.Query("q"),
	}

	return c.dispatch(ctx, func(s contentSurface) (any, error) {
		return s.listPublished(ctx, filter)
	})
}

func (c *HTTPController) Featured(ctx router.Context) error {
	return c.dispatch(ctx, func(s contentSurface) (any, error) {
		return s.featured(ctx)
	})
}

func (c *HTTPController) EditorsPicks(ctx router.Context) error {
	limit := ctx.QueryInt("limit", 0)
	return c.dispatch(ctx, func(s contentSurface) (any, error) {
		return s.editorsPicks(ctx, limit)
	})
}

func (c *HTTPController) Drafts(ctx router.Context) error {
	viewer := c.resolver(ctx)
	return c.dispatch(ctx, func(s contentSurface) (any, error) {
		return s.drafts(ctx, viewer)
	})
}

func (c *HTTPController) Publish(ctx router.Context) error {
	id, err := parseItemID(ctx)
	if err != nil {
		return c.fail(ctx, err)
	}

	viewer := c.resolver(ctx)
	return c.dispatch(ctx, func(s contentSurface) (any, error) {
		return s.publish(ctx, viewer, id)
	})
}

func (c *HTTPController) SetFeatured(ctx router.Context) error {
	return c.promote(ctx, func(s contentSurface, viewer Viewer, id uuid.UUID, enabled bool) (any, error) {
		return s.setFeatured(ctx, viewer, id, enabled)
	})
}

func (c *HTTPController) SetEditorsPick(ctx router.Context) error {
	return c.promote(ctx, func(s contentSurface, viewer Viewer, id uuid.UUID, enabled bool) (any, error) {
		return s.setEditorsPick(ctx, viewer, id, enabled)
	})
}

func (c *HTTPController) Team(ctx router.Context) error {
	members, err := c.roster.List(ctx.Context())
	if err != nil {
		return c.fail(ctx, err)
	}
	return ctx.JSON(router.StatusOK, members)
}

func (c *HTTPController) promote(ctx router.Context, apply func(contentSurface, Viewer, uuid.UUID, bool) (any, error)) error {
	id, err := parseItemID(ctx)
	if err != nil {
		return c.fail(ctx, err)
	}

	payload := &PromotePayload{}
	if err := ctx.Bind(payload); err != nil {
		return c.fail(ctx, errors.Wrap(err, errors.CategoryBadInput, "invalid promotion payload").
			WithCode(errors.CodeBadRequest))
	}

	viewer := c.resolver(ctx)
	return c.dispatch(ctx, func(s contentSurface) (any, error) {
		return apply(s, viewer, id, payload.Enabled)
	})
}

func (c *HTTPController) dispatch(ctx router.Context, op func(contentSurface) (any, error)) error {
	surface, err := c.surfaceFor(ctx.Param("type"))
	if err != nil {
		return c.fail(ctx, err)
	}

	result, err := op(surface)
	if err != nil {
		return c.fail(ctx, err)
	}

	return ctx.JSON(router.StatusOK, result)
}

func (c *HTTPController) surfaceFor(contentType string) (contentSurface, error) {
	switch contentType {
	case "articles":
		return serviceSurface[*Article]{c.articles}, nil
	case "videos":
		return serviceSurface[*Video]{c.videos}, nil
	case "podcasts":
		return serviceSurface[*Podcast]{c.podcasts}, nil
	default:
		return nil, ErrUnknownContentType.WithMetadata(map[string]any{
			"type": contentType,
		})
	}
}

func (c *HTTPController) fail(ctx router.Context, err error) error {
	var richErr *errors.Error
	if errors.As(err, &richErr) && richErr.Code > 0 {
		c.logger.Debug("catalog request refused: %s category=%s details=%s",
			richErr.Message, richErr.Category, print.MaybePrettyJSON(richErr.Metadata))
		return ctx.JSON(richErr.Code, map[string]any{
			"error": richErr.Message,
			"code":  richErr.TextCode,
		})
	}

	c.logger.Error("catalog http request failed: %v", err)
	return ctx.JSON(router.StatusInternalServerError, map[string]any{
		"error": "internal error",
	})
}

func parseItemID(ctx router.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return uuid.Nil, errors.Wrap(err, errors.CategoryBadInput, "invalid content item id").
			WithCode(errors.CodeBadRequest)
	}
	return id, nil
}

// contentSurface erases the service generic so one handler body serves all
// three content types.
type contentSurface interface {
	listPublished(ctx router.Context, filter Filter) (any, error)
	featured(ctx router.Context) (any, error)
	editorsPicks(ctx router.Context, limit int) (any, error)
	drafts(ctx router.Context, viewer Viewer) (any, error)
	publish(ctx router.Context, viewer Viewer, id uuid.UUID) (any, error)
	setFeatured(ctx router.Context, viewer Viewer, id uuid.UUID, enabled bool) (any, error)
	setEditorsPick(ctx router.Context, viewer Viewer, id uuid.UUID, enabled bool) (any, error)
}

type serviceSurface[T Item] struct {
	svc *Service[T]
}

func (s serviceSurface[T]) listPublished(ctx router.Context, filter Filter) (any, error) {
	return s.svc.ListPublished(ctx.Context(), filter)
}

func (s serviceSurface[T]) featured(ctx router.Context) (any, error) {
	item, ok, err := s.svc.Featured(ctx.Context())
	if err != nil {
		return nil, err
	}
	if !ok {
		return map[string]any{"featured": nil}, nil
	}
	return map[string]any{"featured": item}, nil
}

func (s serviceSurface[T]) editorsPicks(ctx router.Context, limit int) (any, error) {
	return s.svc.ListEditorsPicks(ctx.Context(), limit)
}

func (s serviceSurface[T]) drafts(ctx router.Context, viewer Viewer) (any, error) {
	return s.svc.ListDrafts(ctx.Context(), viewer)
}

func (s serviceSurface[T]) publish(ctx router.Context, viewer Viewer, id uuid.UUID) (any, error) {
	return s.svc.Publish(ctx.Context(), viewer, id)
}

func (s serviceSurface[T]) setFeatured(ctx router.Context, viewer Viewer, id uuid.UUID, enabled bool) (any, error) {
	return s.svc.SetFeatured(ctx.Context(), viewer, id, enabled)
}

func (s serviceSurface[T]) setEditorsPick(ctx router.Context, viewer Viewer, id uuid.UUID, enabled bool) (any, error) {
	return s.svc.SetEditorsPick(ctx.Context(), viewer, id, enabled)
}
