// Package mail sends transactional email through the Brevo API.
package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/conectamentor/mentoria-api/pkg/httpclient"
	"github.com/conectamentor/mentoria-api/pkg/logger"
	"github.com/conectamentor/mentoria-api/pkg/metrics"
	"github.com/conectamentor/mentoria-api/pkg/retry"
	"go.uber.org/zap"
)

// Sender delivers one email. Implemented by the Brevo client; the mail queue
// only depends on this interface.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Message is a single outbound email
type Message struct {
	ToEmail     string
	ToName      string
	Subject     string
	HTMLContent string
}

// Config holds the Brevo credentials and sender identity
type Config struct {
	APIKey      string
	APIBaseURL  string
	SenderEmail string
	SenderName  string
}

// BrevoSender sends mail through Brevo's transactional endpoint
type BrevoSender struct {
	cfg         Config
	httpClient  httpclient.Client
	retryConfig retry.Config
}

type brevoPayload struct {
	Sender      recipient   `json:"sender"`
	To          []recipient `json:"to"`
	Subject     string      `json:"subject"`
	HTMLContent string      `json:"htmlContent"`
}

type recipient struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// NewBrevoSender creates the Brevo client. An empty API key is allowed: the
// sender then logs and drops messages so environments without mail
// credentials still boot.
func NewBrevoSender(cfg Config, httpClient httpclient.Client) *BrevoSender {
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = "https://api.brevo.com"
	}

	if cfg.APIKey == "" {
		logger.Warn("Mail sender running without credentials; emails will be dropped")
	}

	return &BrevoSender{
		cfg:         cfg,
		httpClient:  httpClient,
		retryConfig: retry.MailConfig(),
	}
}

// Send delivers one message, retrying transient failures
func (s *BrevoSender) Send(ctx context.Context, msg Message) error {
	if s.cfg.APIKey == "" {
		logger.Info("Dropping email: mail sender not configured",
			zap.String("to", msg.ToEmail),
			zap.String("subject", msg.Subject))
		return nil
	}

	if msg.ToEmail == "" || !strings.Contains(msg.ToEmail, "@") {
		return fmt.Errorf("invalid recipient email: %q", msg.ToEmail)
	}

	toName := msg.ToName
	if toName == "" {
		toName = msg.ToEmail[:strings.Index(msg.ToEmail, "@")]
	}

	payload := brevoPayload{
		Sender:      recipient{Email: s.cfg.SenderEmail, Name: s.cfg.SenderName},
		To:          []recipient{{Email: msg.ToEmail, Name: toName}},
		Subject:     msg.Subject,
		HTMLContent: msg.HTMLContent,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode email payload: %w", err)
	}

	start := time.Now()
	operation := "sendEmail"

	err = retry.Do(ctx, s.retryConfig, operation, func() error {
		return s.post(ctx, body)
	})

	duration := metrics.MeasureDuration(start)

	if err != nil {
		logger.LogAPICall(ctx, "brevo", operation, "error", duration,
			zap.Error(err),
			zap.String("to", msg.ToEmail))
		return err
	}

	logger.LogAPICall(ctx, "brevo", operation, "success", duration,
		zap.String("to", msg.ToEmail),
		zap.String("subject", msg.Subject))
	return nil
}

func (s *BrevoSender) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.APIBaseURL+"/v3/smtp/email", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build email request: %w", err)
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("api-key", s.cfg.APIKey)
	req.Header.Set("content-type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("email request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("mail provider returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	return nil
}
