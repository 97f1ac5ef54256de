package zoom

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrAuthentication indicates the provider rejected our credentials (401).
	// This is a configuration problem, not a transient failure, and is never
	// retried beyond the token exchange's own attempts.
	ErrAuthentication = errors.New("zoom: authentication failed")

	// ErrMeetingNotFound indicates the provider returned 404 for a meeting
	ErrMeetingNotFound = errors.New("zoom: meeting not found")
)

// ConfigError reports missing provider credentials by environment variable
// name so the operator knows exactly what to set.
type ConfigError struct {
	Missing []string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("zoom: missing credentials: %s", strings.Join(e.Missing, ", "))
}

// RateLimitedError indicates the provider responded 429. RetryAfter carries
// the provider's hint (zero if the header was absent or unparsable); the
// caller decides whether to retry later.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("zoom: rate limited, retry after %s", e.RetryAfter)
	}
	return "zoom: rate limited"
}

// ProviderError is any other non-success provider response, or a success
// response missing required fields.
type ProviderError struct {
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("zoom: provider error (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("zoom: provider error: %s", e.Message)
}

// IsRateLimited reports whether err is a 429 from the provider
func IsRateLimited(err error) bool {
	var rl *RateLimitedError
	return errors.As(err, &rl)
}

// IsNotFound reports whether err is a 404 from the provider
func IsNotFound(err error) bool {
	return errors.Is(err, ErrMeetingNotFound)
}
