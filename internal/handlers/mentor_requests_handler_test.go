package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conectamentor/mentoria-api/internal/middleware"
	"github.com/conectamentor/mentoria-api/internal/models"
	"github.com/conectamentor/mentoria-api/internal/services"
	"github.com/conectamentor/mentoria-api/pkg/zoom"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubConfirmer returns a fixed result for every Confirm call
type stubConfirmer struct {
	mentorship *models.Mentorship
	err        error

	gotMentorID  int64
	gotRequestID int64
}

func (s *stubConfirmer) Confirm(_ context.Context, mentorID, requestID int64, _ *models.ConfirmSchedulePayload) (*models.Mentorship, error) {
	s.gotMentorID = mentorID
	s.gotRequestID = requestID
	return s.mentorship, s.err
}

type stubLifecycle struct {
	response *models.RequestsResponse
	err      error
}

func (s *stubLifecycle) GetRequests(context.Context, int64, string) (*models.RequestsResponse, error) {
	return s.response, s.err
}

func (s *stubLifecycle) GetRequestByID(context.Context, int64, int64) (*models.MentorshipRequest, error) {
	return nil, s.err
}

func (s *stubLifecycle) UpdateStatus(context.Context, int64, int64, models.RequestStatus) (*models.MentorshipRequest, error) {
	return nil, s.err
}

// withSession injects an authenticated mentor, bypassing the JWT middleware
func withSession(mentorID int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.MentorSessionContextKey, &models.MentorSession{
			MentorID: mentorID,
			Email:    "mentor@example.cl",
		})
		c.Next()
	}
}

func newConfirmRouter(confirmer *stubConfirmer, mentorID int64) *gin.Engine {
	handler := NewMentorRequestsHandler(&stubLifecycle{}, confirmer)
	router := gin.New()
	router.POST("/mentor/requests/:id/confirm", withSession(mentorID), handler.Confirm)
	return router
}

func confirmBody() string {
	return `{"fecha":"2030-09-15","hora":"10:00","duracion_minutos":60,"timezone":"America/Santiago"}`
}

func TestConfirmHandler_Created(t *testing.T) {
	confirmer := &stubConfirmer{mentorship: &models.Mentorship{
		ID:        91,
		RequestID: 42,
		JoinURL:   "https://zoom.test/j/87451628803",
		Status:    models.MentorshipScheduled,
	}}
	router := newConfirmRouter(confirmer, 7)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/mentor/requests/42/confirm", strings.NewReader(confirmBody()))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, int64(7), confirmer.gotMentorID)
	assert.Equal(t, int64(42), confirmer.gotRequestID)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "https://zoom.test/j/87451628803", body["joinUrl"])
}

func TestConfirmHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"request not found", services.ErrRequestNotFound, http.StatusNotFound},
		{"not owner", services.ErrNotRequestOwner, http.StatusForbidden},
		{"already confirmed", services.ErrAlreadyConfirmed, http.StatusConflict},
		{"not confirmable", services.ErrRequestNotConfirmable, http.StatusUnprocessableEntity},
		{"past schedule", services.ErrScheduleInPast, http.StatusBadRequest},
		{"bad duration", services.ErrInvalidDuration, http.StatusBadRequest},
		{"provider rate limit", &zoom.RateLimitedError{RetryAfter: 12 * time.Second}, http.StatusTooManyRequests},
		{"provider error", &zoom.ProviderError{StatusCode: 500, Message: "boom"}, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newConfirmRouter(&stubConfirmer{err: tt.err}, 7)

			w := httptest.NewRecorder()
			req := httptest.NewRequest("POST", "/mentor/requests/42/confirm", strings.NewReader(confirmBody()))
			req.Header.Set("Content-Type", "application/json")
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestConfirmHandler_RateLimitSetsRetryAfter(t *testing.T) {
	router := newConfirmRouter(&stubConfirmer{err: &zoom.RateLimitedError{RetryAfter: 12 * time.Second}}, 7)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/mentor/requests/42/confirm", strings.NewReader(confirmBody()))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "12", w.Header().Get("Retry-After"))
}

func TestConfirmHandler_InvalidBody(t *testing.T) {
	confirmer := &stubConfirmer{}
	router := newConfirmRouter(confirmer, 7)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/mentor/requests/42/confirm", strings.NewReader(`{"fecha":"2030-09-15"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, confirmer.gotRequestID)
}

func TestConfirmHandler_BadID(t *testing.T) {
	router := newConfirmRouter(&stubConfirmer{}, 7)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/mentor/requests/abc/confirm", strings.NewReader(confirmBody()))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestConfirmHandler_NoSession(t *testing.T) {
	handler := NewMentorRequestsHandler(&stubLifecycle{}, &stubConfirmer{})
	router := gin.New()
	router.POST("/mentor/requests/:id/confirm", handler.Confirm)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/mentor/requests/42/confirm", strings.NewReader(confirmBody()))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
