// Package recaptcha verifies reCAPTCHA v2 tokens for the public intake form.
package recaptcha

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/conectamentor/mentoria-api/pkg/httpclient"
)

const defaultVerifyURL = "https://www.google.com/recaptcha/api/siteverify"

// Response is Google's verification API answer
type Response struct {
	Success     bool     `json:"success"`
	ChallengeTS string   `json:"challenge_ts"`
	Hostname    string   `json:"hostname"`
	ErrorCodes  []string `json:"error-codes"`
}

// Verifier checks tokens against Google's verification endpoint
type Verifier struct {
	secretKey  string
	verifyURL  string
	httpClient httpclient.Client
}

// NewVerifier creates a verifier for the given secret key
func NewVerifier(secretKey string, httpClient httpclient.Client) *Verifier {
	return &Verifier{
		secretKey:  secretKey,
		verifyURL:  defaultVerifyURL,
		httpClient: httpClient,
	}
}

// Verify checks a client token. A failed challenge returns an error naming
// Google's error codes so operators can tell misconfiguration from abuse.
func (v *Verifier) Verify(ctx context.Context, token string) error {
	data := url.Values{}
	data.Set("secret", v.secretKey)
	data.Set("response", token)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.verifyURL, strings.NewReader(data.Encode()))
	if err != nil {
		return fmt.Errorf("failed to build recaptcha request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to verify recaptcha: %w", err)
	}
	defer resp.Body.Close()

	var result Response
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to decode recaptcha response: %w", err)
	}

	if !result.Success {
		if len(result.ErrorCodes) > 0 {
			return fmt.Errorf("recaptcha verification failed: %s", strings.Join(result.ErrorCodes, ", "))
		}
		return fmt.Errorf("recaptcha verification failed")
	}

	return nil
}
