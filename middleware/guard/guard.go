// Package guard provides route middleware that gates handlers behind a
// capability check routed through the newsroom role evaluator.
//
// The check is advisory on the client edge: persistence-side enforcement must
// re-check, since UI gating is not a security boundary.
package guard

import (
	newsroom "github.com/goliatone/go-newsroom"
	"github.com/goliatone/go-router"
)

// SessionReader is the read surface the guard needs from a session context.
type SessionReader interface {
	Current() newsroom.Snapshot
}

// Config customizes the guard middleware.
type Config struct {
	// ErrorHandler runs when the capability is denied. Default responds 403
	// (401 when no principal is signed in) with the rich error body.
	ErrorHandler func(c router.Context, err error) error

	Logger newsroom.Logger
}

// RequireCapability refuses requests whose session does not grant the
// capability. Denial is computed from the latest published snapshot.
func RequireCapability(session SessionReader, capability newsroom.Capability, cfg ...Config) router.MiddlewareFunc {
	config := Config{}
	if len(cfg) > 0 {
		config = cfg[0]
	}
	if config.Logger == nil {
		config.Logger = newsroom.DefaultLogger()
	}
	if config.ErrorHandler == nil {
		config.ErrorHandler = defaultErrorHandler
	}

	return func(hf router.HandlerFunc) router.HandlerFunc {
		return func(c router.Context) error {
			snapshot := session.Current()

			if snapshot.Can(capability) {
				return hf(c)
			}

			config.Logger.Debug(
				"capability %q denied for phase=%s signed_in=%v",
				capability, snapshot.Phase, snapshot.SignedIn(),
			)

			if !snapshot.SignedIn() {
				return config.ErrorHandler(c, newsroom.ErrNotSignedIn)
			}

			return config.ErrorHandler(c, deniedError(capability, snapshot))
		}
	}
}

// RequireSignedIn refuses requests without a resolved principal, regardless
// of role.
func RequireSignedIn(session SessionReader, cfg ...Config) router.MiddlewareFunc {
	config := Config{}
	if len(cfg) > 0 {
		config = cfg[0]
	}
	if config.ErrorHandler == nil {
		config.ErrorHandler = defaultErrorHandler
	}

	return func(hf router.HandlerFunc) router.HandlerFunc {
		return func(c router.Context) error {
			if session.Current().SignedIn() {
				return hf(c)
			}
			return config.ErrorHandler(c, newsroom.ErrNotSignedIn)
		}
	}
}

func deniedError(capability newsroom.Capability, snapshot newsroom.Snapshot) error {
	role := ""
	if snapshot.Profile != nil {
		role = string(snapshot.Profile.Role)
	}
	return newsroom.ErrCapabilityDenied.WithMetadata(map[string]any{
		"capability": string(capability),
		"role":       role,
	})
}

func defaultErrorHandler(c router.Context, err error) error {
	status := router.StatusForbidden

	if err == newsroom.ErrNotSignedIn {
		status = router.StatusUnauthorized
	}

	return c.JSON(status, map[string]any{
		"error": err.Error(),
	})
}
