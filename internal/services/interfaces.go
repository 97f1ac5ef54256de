package services

import (
	"context"

	"github.com/conectamentor/mentoria-api/pkg/zoom"
)

// MeetingProvisioner is the external meeting provider surface the services
// depend on. Satisfied by *zoom.Client.
type MeetingProvisioner interface {
	CreateMeeting(ctx context.Context, spec zoom.MeetingSpec) (*zoom.Meeting, error)
	UpdateMeeting(ctx context.Context, meetingID int64, spec zoom.MeetingSpec) (*zoom.Meeting, error)
	CancelMeeting(ctx context.Context, meetingID int64) error
	DefaultTimezone() string
}

// CaptchaVerifier validates public form submissions. Satisfied by
// *recaptcha.Verifier.
type CaptchaVerifier interface {
	Verify(ctx context.Context, token string) error
}

// NotificationDispatcher delivers mentorship notifications. Failures here
// never fail the operation that triggered them.
type NotificationDispatcher interface {
	// DispatchConfirmation enqueues one confirmation job for the mentorship
	DispatchConfirmation(ctx context.Context, mentorshipID int64, correlationID, dispatchID string) error

	// DispatchReminder enqueues one session reminder job for the mentorship
	DispatchReminder(ctx context.Context, mentorshipID int64) error

	// DispatchRequestReceived acknowledges receipt of a new request to the student
	DispatchRequestReceived(ctx context.Context, requestID int64) error
}
