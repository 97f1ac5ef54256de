package zoom

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/conectamentor/mentoria-api/pkg/circuitbreaker"
	"github.com/conectamentor/mentoria-api/pkg/logger"
	"github.com/conectamentor/mentoria-api/pkg/metrics"
	"github.com/conectamentor/mentoria-api/pkg/retry"
	"go.uber.org/zap"
)

// utcTimeLayout is the wire format for all timestamps exchanged with the
// provider: UTC, ISO-8601, second precision.
const utcTimeLayout = "2006-01-02T15:04:05Z"

// MeetingSettings mirrors the provider's per-meeting settings surface
type MeetingSettings struct {
	HostVideo        bool `json:"host_video"`
	ParticipantVideo bool `json:"participant_video"`
	WaitingRoom      bool `json:"waiting_room"`
	MuteUponEntry    bool `json:"mute_upon_entry"`
	ApprovalType     int  `json:"approval_type"`
}

// DefaultMeetingSettings returns the platform defaults: cameras on, waiting
// room enabled, participants muted on entry, no self-registration.
func DefaultMeetingSettings() MeetingSettings {
	return MeetingSettings{
		HostVideo:        true,
		ParticipantVideo: true,
		WaitingRoom:      true,
		MuteUponEntry:    true,
		ApprovalType:     2, // no registration required
	}
}

// MeetingSpec describes the meeting to create or update. StartAt carries its
// own location; it is always normalized to UTC before transmission so the
// provider never has to interpret a regional timezone (and DST ambiguity
// stays on our side).
type MeetingSpec struct {
	Topic    string
	StartAt  time.Time
	Duration int // minutes
	Settings *MeetingSettings
}

// Meeting is the provider's view of a scheduled meeting
type Meeting struct {
	ID       int64     `json:"id"`
	UUID     string    `json:"uuid"`
	Topic    string    `json:"topic"`
	JoinURL  string    `json:"join_url"`
	StartURL string    `json:"start_url"`
	Password string    `json:"password"`
	StartAt  time.Time `json:"-"`
	Duration int       `json:"duration"`
}

type meetingPayload struct {
	Topic     string          `json:"topic"`
	Type      int             `json:"type"`
	StartTime string          `json:"start_time"`
	Timezone  string          `json:"timezone"`
	Duration  int             `json:"duration"`
	Settings  MeetingSettings `json:"settings"`
}

type meetingResponse struct {
	ID        int64  `json:"id"`
	UUID      string `json:"uuid"`
	Topic     string `json:"topic"`
	JoinURL   string `json:"join_url"`
	StartURL  string `json:"start_url"`
	Password  string `json:"password"`
	StartTime string `json:"start_time"`
	Duration  int    `json:"duration"`
}

// apiResponse is the transport-level outcome of one provider call. RetryAfter
// is only populated on a 429.
type apiResponse struct {
	status     int
	body       []byte
	retryAfter time.Duration
}

func buildPayload(spec MeetingSpec) meetingPayload {
	settings := DefaultMeetingSettings()
	if spec.Settings != nil {
		settings = *spec.Settings
	}
	return meetingPayload{
		Topic:     spec.Topic,
		Type:      2, // scheduled meeting
		StartTime: spec.StartAt.UTC().Format(utcTimeLayout),
		Timezone:  "UTC",
		Duration:  spec.Duration,
		Settings:  settings,
	}
}

// CreateMeeting provisions a meeting under the account's primary user.
// Transport failures are retried; HTTP-level failures are inspected exactly
// once so a 429 surfaces as RateLimitedError rather than being hammered.
func (c *Client) CreateMeeting(ctx context.Context, spec MeetingSpec) (*Meeting, error) {
	body, err := json.Marshal(buildPayload(spec))
	if err != nil {
		return nil, fmt.Errorf("failed to encode meeting payload: %w", err)
	}

	resp, err := c.call(ctx, "createMeeting", http.MethodPost, "/v2/users/me/meetings", body)
	if err != nil {
		return nil, err
	}

	if provErr := resp.toError(); provErr != nil {
		return nil, provErr
	}

	return parseMeeting(resp)
}

// GetMeeting fetches a meeting by provider id
func (c *Client) GetMeeting(ctx context.Context, meetingID int64) (*Meeting, error) {
	path := fmt.Sprintf("/v2/meetings/%d", meetingID)
	resp, err := c.call(ctx, "getMeeting", http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	if provErr := resp.toError(); provErr != nil {
		return nil, provErr
	}

	return parseMeeting(resp)
}

// UpdateMeeting applies spec to an existing meeting and returns the updated
// meeting. The provider answers PATCH with 204, so the refreshed state comes
// from a follow-up read.
func (c *Client) UpdateMeeting(ctx context.Context, meetingID int64, spec MeetingSpec) (*Meeting, error) {
	body, err := json.Marshal(buildPayload(spec))
	if err != nil {
		return nil, fmt.Errorf("failed to encode meeting payload: %w", err)
	}

	path := fmt.Sprintf("/v2/meetings/%d", meetingID)
	resp, err := c.call(ctx, "updateMeeting", http.MethodPatch, path, body)
	if err != nil {
		return nil, err
	}

	if provErr := resp.toError(); provErr != nil {
		return nil, provErr
	}

	return c.GetMeeting(ctx, meetingID)
}

// CancelMeeting deletes a meeting on the provider. A "no content" answer is
// success; 404 means the meeting no longer exists.
func (c *Client) CancelMeeting(ctx context.Context, meetingID int64) error {
	path := fmt.Sprintf("/v2/meetings/%d", meetingID)
	resp, err := c.call(ctx, "cancelMeeting", http.MethodDelete, path, nil)
	if err != nil {
		return err
	}

	return resp.toError()
}

// call executes one provider operation: token, request, transport-level
// retries inside the circuit breaker, metrics and API-call logging. The HTTP
// status comes back unjudged so each operation maps it itself.
func (c *Client) call(ctx context.Context, operation, method, path string, body []byte) (apiResponse, error) {
	start := time.Now()

	retryCtx, cancel := context.WithTimeout(ctx, operationTimeout)
	defer cancel()

	token, err := c.GetAccessToken(retryCtx)
	if err != nil {
		return apiResponse{}, err
	}

	result, err := circuitbreaker.Execute(c.circuitBreaker, func() (apiResponse, error) {
		return retry.DoWithResult(retryCtx, c.meetingRetry, operation, func() (apiResponse, error) {
			var reader io.Reader
			if body != nil {
				reader = bytes.NewReader(body)
			}
			req, reqErr := http.NewRequestWithContext(retryCtx, method, c.cfg.APIBaseURL+path, reader)
			if reqErr != nil {
				return apiResponse{}, reqErr
			}
			req.Header.Set("Authorization", "Bearer "+token)
			if body != nil {
				req.Header.Set("Content-Type", "application/json")
			}

			resp, doErr := c.httpClient.Do(req)
			if doErr != nil {
				return apiResponse{}, doErr
			}
			defer resp.Body.Close()

			respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
			if readErr != nil {
				return apiResponse{}, readErr
			}

			out := apiResponse{status: resp.StatusCode, body: respBody}
			if resp.StatusCode == http.StatusTooManyRequests {
				out.retryAfter = parseRetryAfter(resp.Header.Get("Retry-After"))
			}
			return out, nil
		})
	})

	duration := metrics.MeasureDuration(start)

	if err != nil {
		metrics.ZoomRequestDuration.WithLabelValues(operation, "error").Observe(duration)
		metrics.ZoomRequestTotal.WithLabelValues(operation, "error").Inc()
		logger.LogAPICall(ctx, "zoom", operation, "error", duration, zap.Error(err))
		return apiResponse{}, circuitbreaker.FormatError("zoom", err)
	}

	outcome := "success"
	if result.status >= 400 {
		outcome = "error"
	}
	metrics.ZoomRequestDuration.WithLabelValues(operation, outcome).Observe(duration)
	metrics.ZoomRequestTotal.WithLabelValues(operation, outcome).Inc()
	logger.LogAPICall(ctx, "zoom", operation, outcome, duration, zap.Int("status_code", result.status))

	return result, nil
}

// toError maps the HTTP status to the client's error taxonomy; nil for
// success statuses.
func (r apiResponse) toError() error {
	switch {
	case r.status >= 200 && r.status < 300:
		return nil
	case r.status == http.StatusUnauthorized:
		return ErrAuthentication
	case r.status == http.StatusNotFound:
		return ErrMeetingNotFound
	case r.status == http.StatusTooManyRequests:
		return &RateLimitedError{RetryAfter: r.retryAfter}
	default:
		return &ProviderError{StatusCode: r.status, Message: providerMessage(r.body)}
	}
}

// parseMeeting decodes a meeting body and validates the fields the platform
// depends on. A success response missing any of them is malformed.
func parseMeeting(resp apiResponse) (*Meeting, error) {
	var mr meetingResponse
	if err := json.Unmarshal(resp.body, &mr); err != nil {
		return nil, &ProviderError{StatusCode: resp.status, Message: "malformed meeting response: " + err.Error()}
	}

	var missing []string
	if mr.ID == 0 {
		missing = append(missing, "id")
	}
	if mr.JoinURL == "" {
		missing = append(missing, "join_url")
	}
	if mr.StartURL == "" {
		missing = append(missing, "start_url")
	}
	if len(missing) > 0 {
		return nil, &ProviderError{
			StatusCode: resp.status,
			Message:    fmt.Sprintf("malformed meeting response: missing %v", missing),
		}
	}

	meeting := &Meeting{
		ID:       mr.ID,
		UUID:     mr.UUID,
		Topic:    mr.Topic,
		JoinURL:  mr.JoinURL,
		StartURL: mr.StartURL,
		Password: mr.Password,
		Duration: mr.Duration,
	}
	if mr.StartTime != "" {
		if parsed, err := time.Parse(time.RFC3339, mr.StartTime); err == nil {
			meeting.StartAt = parsed
		}
	}

	return meeting, nil
}

func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(header); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	// Retry-After may also be an HTTP date
	if at, err := http.ParseTime(header); err == nil {
		if wait := time.Until(at); wait > 0 {
			return wait
		}
	}
	return 0
}
