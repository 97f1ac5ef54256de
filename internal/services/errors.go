package services

import "errors"

// Service-level sentinel errors mapped to HTTP statuses in handlers
var (
	ErrRequestNotFound         = errors.New("request not found")
	ErrMentorshipNotFound      = errors.New("mentorship not found")
	ErrAccessDenied            = errors.New("access denied")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrInvalidRequestGroup     = errors.New("invalid request group")
	ErrCaptchaFailed           = errors.New("captcha verification failed")

	// Authorization gate denials
	ErrNotRequestOwner       = errors.New("request belongs to another mentor")
	ErrAlreadyConfirmed      = errors.New("request already has an active mentorship")
	ErrRequestNotConfirmable = errors.New("request status does not allow confirmation")

	// Authentication
	ErrMentorNotFound    = errors.New("mentor not found")
	ErrInvalidLoginToken = errors.New("invalid or expired login token")

	// Schedule validation
	ErrInvalidSchedule = errors.New("invalid schedule")
	ErrScheduleInPast  = errors.New("schedule date is in the past")
	ErrInvalidDuration = errors.New("session duration out of range")

	// Document validation
	ErrInvalidDocument = errors.New("invalid document")
)
