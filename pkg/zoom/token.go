package zoom

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/conectamentor/mentoria-api/pkg/logger"
	"github.com/conectamentor/mentoria-api/pkg/metrics"
	"github.com/conectamentor/mentoria-api/pkg/retry"
	"go.uber.org/zap"
)

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// GetAccessToken returns the cached provider bearer token, performing the
// OAuth account-credentials exchange on a cache miss. The token is cached for
// 55 minutes against its 60-minute lifetime.
func (c *Client) GetAccessToken(ctx context.Context) (string, error) {
	if cached, found := c.store.Get(tokenCacheKey); found {
		if token, ok := cached.(string); ok && token != "" {
			metrics.ZoomTokenCacheHits.WithLabelValues("hit").Inc()
			return token, nil
		}
		// Wrong type in the shared store; drop it and refetch
		c.store.Delete(tokenCacheKey)
	}
	metrics.ZoomTokenCacheHits.WithLabelValues("miss").Inc()

	token, err := c.fetchAccessToken(ctx)
	if err != nil {
		return "", err
	}

	c.store.Set(tokenCacheKey, token, tokenCacheTTL)
	return token, nil
}

// InvalidateToken drops the cached token, forcing a fresh exchange on the
// next call.
func (c *Client) InvalidateToken() {
	c.store.Delete(tokenCacheKey)
}

func (c *Client) fetchAccessToken(ctx context.Context) (string, error) {
	start := time.Now()
	operation := "getAccessToken"

	retryCtx, cancel := context.WithTimeout(ctx, operationTimeout)
	defer cancel()

	retryConfig := c.tokenRetry
	retryConfig.RetryableErrors = func(err error) bool {
		// A 401 means bad credentials; repeating the exchange cannot help
		return !errors.Is(err, ErrAuthentication)
	}

	token, err := retry.DoWithResult(retryCtx, retryConfig, operation, func() (string, error) {
		return c.exchangeToken(retryCtx)
	})

	duration := metrics.MeasureDuration(start)

	if err != nil {
		metrics.ZoomRequestDuration.WithLabelValues(operation, "error").Observe(duration)
		metrics.ZoomRequestTotal.WithLabelValues(operation, "error").Inc()
		logger.LogAPICall(ctx, "zoom", operation, "error", duration, zap.Error(err))
		return "", err
	}

	metrics.ZoomRequestDuration.WithLabelValues(operation, "success").Observe(duration)
	metrics.ZoomRequestTotal.WithLabelValues(operation, "success").Inc()
	logger.LogAPICall(ctx, "zoom", operation, "success", duration)

	return token, nil
}

// exchangeToken performs one OAuth client-credentials exchange
func (c *Client) exchangeToken(ctx context.Context) (string, error) {
	form := url.Values{}
	form.Set("grant_type", "account_credentials")
	form.Set("account_id", c.cfg.AccountID)

	endpoint := c.cfg.APIBaseURL + "/oauth/token"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to build token request: %w", err)
	}

	basic := base64.StdEncoding.EncodeToString([]byte(c.cfg.ClientID + ":" + c.cfg.ClientSecret))
	req.Header.Set("Authorization", "Basic "+basic)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read token response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return "", fmt.Errorf("%w: %s", ErrAuthentication, providerMessage(body))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &ProviderError{StatusCode: resp.StatusCode, Message: providerMessage(body)}
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return "", &ProviderError{StatusCode: resp.StatusCode, Message: "malformed token response: " + err.Error()}
	}
	if tr.AccessToken == "" {
		return "", &ProviderError{StatusCode: resp.StatusCode, Message: "malformed token response: missing access_token"}
	}

	return tr.AccessToken, nil
}

// providerMessage extracts the provider's error message from a JSON error
// body, falling back to the raw body.
func providerMessage(body []byte) string {
	var parsed struct {
		Message string `json:"message"`
		Reason  string `json:"reason"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		if parsed.Message != "" {
			return parsed.Message
		}
		if parsed.Reason != "" {
			return parsed.Reason
		}
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 500 {
		msg = msg[:500]
	}
	return msg
}
