// Package zoom is the client for the external meeting provider. It owns
// authentication (a cached Server-to-Server OAuth token) and the meeting
// CRUD surface used by the confirmation workflow.
package zoom

import (
	"time"

	"github.com/conectamentor/mentoria-api/pkg/circuitbreaker"
	"github.com/conectamentor/mentoria-api/pkg/httpclient"
	"github.com/conectamentor/mentoria-api/pkg/kvcache"
	"github.com/conectamentor/mentoria-api/pkg/logger"
	"github.com/conectamentor/mentoria-api/pkg/retry"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

const (
	// tokenCacheKey is the fixed cache key for the provider bearer token
	tokenCacheKey = "zoom:access_token"

	// tokenCacheTTL is deliberately shorter than the token's real 60-minute
	// lifetime so we never present a token in its final expiry second
	tokenCacheTTL = 55 * time.Minute

	// operationTimeout bounds every provider call, retries included
	operationTimeout = 30 * time.Second
)

// Config holds the provider credentials and endpoints
type Config struct {
	ClientID        string
	ClientSecret    string
	AccountID       string
	APIBaseURL      string
	DefaultTimezone string
}

// Client talks to the Zoom REST API with token caching, bounded retries and
// circuit breaker protection. Retry policies and the token cache are injected
// so tests can run without real time or shared state.
type Client struct {
	cfg            Config
	httpClient     httpclient.Client
	store          kvcache.Store
	circuitBreaker *gobreaker.CircuitBreaker
	tokenRetry     retry.Config
	meetingRetry   retry.Config
}

// Option customizes client construction
type Option func(*Client)

// WithTokenRetry overrides the token exchange retry policy
func WithTokenRetry(cfg retry.Config) Option {
	return func(c *Client) { c.tokenRetry = cfg }
}

// WithMeetingRetry overrides the meeting CRUD retry policy
func WithMeetingRetry(cfg retry.Config) Option {
	return func(c *Client) { c.meetingRetry = cfg }
}

// NewClient creates a Zoom client. Missing credentials produce a ConfigError
// naming every absent variable.
func NewClient(cfg Config, httpClient httpclient.Client, store kvcache.Store, opts ...Option) (*Client, error) {
	var missing []string
	if cfg.ClientID == "" {
		missing = append(missing, "ZOOM_CLIENT_ID")
	}
	if cfg.ClientSecret == "" {
		missing = append(missing, "ZOOM_CLIENT_SECRET")
	}
	if cfg.AccountID == "" {
		missing = append(missing, "ZOOM_ACCOUNT_ID")
	}
	if len(missing) > 0 {
		return nil, &ConfigError{Missing: missing}
	}

	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = "https://api.zoom.us"
	}

	cbConfig := circuitbreaker.DefaultConfig("zoom")
	client := &Client{
		cfg:            cfg,
		httpClient:     httpClient,
		store:          store,
		circuitBreaker: circuitbreaker.NewCircuitBreaker(cbConfig),
		tokenRetry:     retry.ZoomTokenConfig(),
		meetingRetry:   retry.ZoomMeetingConfig(),
	}

	for _, opt := range opts {
		opt(client)
	}

	logger.Info("Zoom client initialized",
		zap.String("base_url", cfg.APIBaseURL),
		zap.String("account_id", cfg.AccountID))

	return client, nil
}

// DefaultTimezone returns the timezone assumed for schedules that don't
// declare one.
func (c *Client) DefaultTimezone() string {
	if c.cfg.DefaultTimezone == "" {
		return "UTC"
	}
	return c.cfg.DefaultTimezone
}
