package newsroom

import (
	"context"
	"fmt"
)

// Logger is the minimal logging surface the package needs
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Unsubscribe detaches a previously registered listener. Calling it more than
// once is a no-op.
type Unsubscribe func()

// Principal is the externally authenticated identity as issued by the
// provider. The core only observes it; it is never created or destroyed here.
type Principal struct {
	ID          string
	Email       string
	DisplayName string
	PhotoURL    string
}

// IdentityProvider is the push contract the external provider must satisfy.
// OnChange registers a listener that receives the current principal (nil when
// signed out) or a transport error for every sign-in/sign-out transition.
type IdentityProvider interface {
	OnChange(fn func(p *Principal, err error)) Unsubscribe
	SignOut(ctx context.Context) error
}

// ProfileReader is the read surface SessionContext needs from the profile
// repository. Refresh must bypass any caching layer.
type ProfileReader interface {
	Fetch(ctx context.Context, principalID string) (*UserProfile, error)
	Refresh(ctx context.Context, principalID string) (*UserProfile, error)
}

// DefaultLogger returns the stdout fallback logger used when no Logger is
// injected.
func DefaultLogger() Logger {
	return defLogger{}
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] NEWSROOM "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] NEWSROOM "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] NEWSROOM "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] NEWSROOM "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
