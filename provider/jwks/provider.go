package jwks

import (
	"context"
	"sync"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
	newsroom "github.com/goliatone/go-newsroom"
)

// Provider implements newsroom.IdentityProvider on top of a remote JWK Set.
//
// Tokens arrive through Notify; each successful verification emits the mapped
// principal, each failure emits an error so downstream state fails closed.
// SignOut emits a signed-out transition locally; revoking the provider-side
// session is the host application's concern.
type Provider struct {
	cfg    Config
	jwks   *keyfunc.JWKS
	parser *jwt.Parser
	logger newsroom.Logger
	cancel context.CancelFunc

	mu        sync.Mutex
	listeners []*listener
	nextID    int
	current   *newsroom.Principal
}

type listener struct {
	id int
	fn func(*newsroom.Principal, error)
}

var _ newsroom.IdentityProvider = (*Provider)(nil)

// Option customizes Provider construction.
type Option func(*Provider)

// WithLogger overrides the default stdout logger.
func WithLogger(logger newsroom.Logger) Option {
	return func(p *Provider) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// New fetches the remote key set and returns a ready provider. Close releases
// the background refresh.
func New(ctx context.Context, cfg Config, opts ...Option) (*Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.CategoryValidation, "invalid jwks provider config").
			WithCode(errors.CodeBadRequest)
	}

	if ctx == nil {
		ctx = context.Background()
	}
	refreshCtx, cancel := context.WithCancel(ctx)

	p := &Provider{
		cfg:    cfg,
		logger: newsroom.DefaultLogger(),
		cancel: cancel,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods(cfg.ValidMethods),
		jwt.WithIssuer(cfg.Issuer),
		jwt.WithExpirationRequired(),
	}
	for _, aud := range cfg.Audience {
		parserOpts = append(parserOpts, jwt.WithAudience(aud))
	}
	p.parser = jwt.NewParser(parserOpts...)

	jwks, err := keyfunc.Get(cfg.Endpoint, keyfunc.Options{
		Ctx:               refreshCtx,
		RefreshInterval:   cfg.RefreshInterval,
		RefreshTimeout:    cfg.RefreshTimeout,
		RefreshUnknownKID: true,
		RefreshErrorHandler: func(err error) {
			p.logger.Warn("jwks background refresh failed: %v", err)
		},
	})
	if err != nil {
		cancel()
		return nil, errors.Wrap(err, errors.CategoryOperation, "could not fetch JWK set").
			WithCode(errors.CodeInternal)
	}
	p.jwks = jwks

	return p, nil
}

// Close stops the background key refresh and drops all listeners.
func (p *Provider) Close() {
	if p.cancel != nil {
		p.cancel()
	}
	if p.jwks != nil {
		p.jwks.EndBackground()
	}

	p.mu.Lock()
	p.listeners = nil
	p.mu.Unlock()
}

// OnChange implements newsroom.IdentityProvider. The current state is
// replayed immediately.
func (p *Provider) OnChange(fn func(*newsroom.Principal, error)) newsroom.Unsubscribe {
	if fn == nil {
		return func() {}
	}

	p.mu.Lock()
	p.nextID++
	l := &listener{id: p.nextID, fn: fn}
	p.listeners = append(p.listeners, l)
	fn(p.current, nil)
	p.mu.Unlock()

	id := l.id
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		for i, candidate := range p.listeners {
			if candidate.id == id {
				p.listeners = append(p.listeners[:i], p.listeners[i+1:]...)
				return
			}
		}
	}
}

// SignOut implements newsroom.IdentityProvider.
func (p *Provider) SignOut(_ context.Context) error {
	p.emit(nil, nil)
	return nil
}

// Notify verifies a raw provider-issued ID token and emits the resulting
// transition. The returned error mirrors what listeners observed.
func (p *Provider) Notify(_ context.Context, rawToken string) error {
	principal, err := p.verify(rawToken)
	if err != nil {
		p.logger.Error("token verification failed: %v", err)
		p.emit(nil, err)
		return err
	}

	p.emit(principal, nil)
	return nil
}

func (p *Provider) verify(rawToken string) (*newsroom.Principal, error) {
	claims := jwt.MapClaims{}
	token, err := p.parser.ParseWithClaims(rawToken, claims, p.jwks.Keyfunc)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryAuth, "invalid identity token").
			WithTextCode(newsroom.TextCodeAuthTransport).
			WithCode(errors.CodeUnauthorized)
	}

	if !token.Valid {
		return nil, newsroom.ErrAuthTransport.WithMetadata(map[string]any{
			"reason": "token did not validate",
		})
	}

	sub, _ := claims.GetSubject()
	if sub == "" {
		return nil, newsroom.ErrAuthTransport.WithMetadata(map[string]any{
			"reason": "token has no subject",
		})
	}

	return &newsroom.Principal{
		ID:          sub,
		Email:       stringClaim(claims, "email"),
		DisplayName: stringClaim(claims, "name"),
		PhotoURL:    stringClaim(claims, "picture"),
	}, nil
}

func (p *Provider) emit(principal *newsroom.Principal, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err == nil {
		p.current = principal
	} else {
		p.current = nil
	}

	for _, l := range p.listeners {
		l.fn(principal, err)
	}
}

func stringClaim(claims jwt.MapClaims, key string) string {
	if raw, ok := claims[key]; ok {
		if s, ok := raw.(string); ok {
			return s
		}
	}
	return ""
}
