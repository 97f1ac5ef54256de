package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/conectamentor/mentoria-api/internal/services"
	"github.com/conectamentor/mentoria-api/pkg/zoom"
)

// attachError attaches err to the gin context so the observability middleware
// can include the reason in the request log. c.Error() returns *gin.Error (not
// the error interface), so errcheck is suppressed intentionally.
func attachError(c *gin.Context, err error) {
	if err != nil {
		_ = c.Error(err) //nolint:errcheck
	}
}

// respondError sends an error JSON response and attaches the error to the gin
// context so it shows up in the request log.
func respondError(c *gin.Context, status int, message string, err error) {
	attachError(c, err)
	c.JSON(status, gin.H{"error": message})
}

// respondServiceError maps service and provider sentinels to HTTP statuses.
// Anything unrecognized becomes a 500 with the given default message.
func respondServiceError(c *gin.Context, err error, defaultMsg string) {
	switch {
	case errors.Is(err, services.ErrRequestNotFound),
		errors.Is(err, services.ErrMentorshipNotFound),
		errors.Is(err, services.ErrMentorNotFound):
		respondError(c, http.StatusNotFound, "Not found", err)
	case errors.Is(err, services.ErrAccessDenied),
		errors.Is(err, services.ErrNotRequestOwner):
		respondError(c, http.StatusForbidden, "Access denied", err)
	case errors.Is(err, services.ErrAlreadyConfirmed):
		respondError(c, http.StatusConflict, "Request already has an active mentorship", err)
	case errors.Is(err, services.ErrRequestNotConfirmable),
		errors.Is(err, services.ErrInvalidStatusTransition):
		respondError(c, http.StatusUnprocessableEntity, err.Error(), err)
	case errors.Is(err, services.ErrInvalidSchedule),
		errors.Is(err, services.ErrScheduleInPast),
		errors.Is(err, services.ErrInvalidDuration),
		errors.Is(err, services.ErrInvalidRequestGroup),
		errors.Is(err, services.ErrInvalidDocument):
		respondError(c, http.StatusBadRequest, err.Error(), err)
	case errors.Is(err, services.ErrCaptchaFailed):
		respondError(c, http.StatusBadRequest, "Captcha verification failed", err)
	default:
		respondProviderError(c, err, defaultMsg)
	}
}

// respondProviderError handles errors surfaced from the meeting provider
func respondProviderError(c *gin.Context, err error, defaultMsg string) {
	var rateErr *zoom.RateLimitedError
	if errors.As(err, &rateErr) {
		if rateErr.RetryAfter > 0 {
			c.Header("Retry-After", strconv.Itoa(int(rateErr.RetryAfter.Seconds())))
		}
		respondError(c, http.StatusTooManyRequests, "Meeting provider rate limit exceeded", err)
		return
	}

	var provErr *zoom.ProviderError
	if errors.As(err, &provErr) || errors.Is(err, zoom.ErrAuthentication) || errors.Is(err, zoom.ErrMeetingNotFound) {
		respondError(c, http.StatusBadGateway, "Meeting provider unavailable", err)
		return
	}

	respondError(c, http.StatusInternalServerError, defaultMsg, err)
}
