package jwks

import (
	"fmt"
	"strings"
	"time"
)

// Config holds the remote key set and token validation settings.
type Config struct {
	// Endpoint is the JWK Set URL, e.g.
	// "https://www.googleapis.com/service_accounts/v1/jwk/...".
	Endpoint string

	// Issuer is the expected iss claim. Required.
	Issuer string

	// Audience is the accepted aud claim values; empty skips the check.
	Audience []string

	// RefreshInterval is how often the key set is refreshed in the
	// background. Default: 1 hour.
	RefreshInterval time.Duration

	// RefreshTimeout bounds a single key set fetch. Default: 10 seconds.
	RefreshTimeout time.Duration

	// ValidMethods restricts accepted signing algorithms.
	// Default: RS256.
	ValidMethods []string
}

// Validate checks required fields and applies defaults.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Endpoint) == "" {
		return fmt.Errorf("jwks: endpoint is required")
	}

	if strings.TrimSpace(c.Issuer) == "" {
		return fmt.Errorf("jwks: issuer is required")
	}

	if c.RefreshInterval <= 0 {
		c.RefreshInterval = time.Hour
	}

	if c.RefreshTimeout <= 0 {
		c.RefreshTimeout = 10 * time.Second
	}

	if len(c.ValidMethods) == 0 {
		c.ValidMethods = []string{"RS256"}
	}

	return nil
}
