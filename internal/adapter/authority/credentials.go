package authority

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Credentials holds the bearer token for Authority calls and optionally
// persists it to disk between runs, the way the dashboard kept it in the
// browser's local storage. The token is opaque except for a best-effort
// expiry check when it happens to be a JWT.
type Credentials struct {
	path string

	mu    sync.RWMutex
	token string
}

// NewCredentials creates a credentials store. path may be empty for a
// memory-only store.
func NewCredentials(path string) *Credentials {
	return &Credentials{path: path}
}

// Load reads a previously persisted token. A missing file is not an error.
func (c *Credentials) Load() error {
	if c.path == "" {
		return nil
	}

	raw, err := os.ReadFile(c.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read token file: %w", err)
	}

	c.mu.Lock()
	c.token = string(raw)
	c.mu.Unlock()
	return nil
}

// Set stores the token, persisting it when a path is configured
func (c *Credentials) Set(token string) error {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()

	if c.path == "" {
		return nil
	}
	if err := os.WriteFile(c.path, []byte(token), 0o600); err != nil {
		return fmt.Errorf("failed to persist token: %w", err)
	}
	return nil
}

// Token returns the current bearer token, empty if unauthenticated
func (c *Credentials) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Expired reports whether the stored token is a JWT whose exp claim has
// passed. Tokens that are not JWTs, or carry no exp claim, are treated as
// live; the Authority remains the judge of validity.
func (c *Credentials) Expired(now time.Time) bool {
	token := c.Token()
	if token == "" {
		return false
	}

	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return false
	}

	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return now.After(exp.Time)
}
