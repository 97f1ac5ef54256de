package models

import (
	"time"

	"github.com/jackc/pgx/v5"
)

// RequestStatus represents the lifecycle status of a mentorship request
type RequestStatus string

const (
	RequestPending   RequestStatus = "pending"
	RequestAccepted  RequestStatus = "accepted"
	RequestRejected  RequestStatus = "rejected"
	RequestCancelled RequestStatus = "cancelled"
)

// ActiveStatuses are statuses shown on the mentor's active requests page
var ActiveStatuses = []RequestStatus{RequestPending, RequestAccepted}

// PastStatuses are statuses shown on the mentor's past requests page
var PastStatuses = []RequestStatus{RequestRejected, RequestCancelled}

// IsTerminal returns true if no further transitions are allowed.
// A cancelled request is NOT terminal: it may re-enter confirmation.
func (s RequestStatus) IsTerminal() bool {
	return s == RequestRejected
}

// CanTransitionTo checks if a status transition is valid
func (s RequestStatus) CanTransitionTo(newStatus RequestStatus) bool {
	if s.IsTerminal() {
		return false
	}

	switch s {
	case RequestPending:
		return newStatus == RequestAccepted || newStatus == RequestRejected || newStatus == RequestCancelled
	case RequestAccepted:
		return newStatus == RequestCancelled
	case RequestCancelled:
		return newStatus == RequestAccepted
	default:
		return false
	}
}

// CanEnterConfirmation reports whether a request in this status may be
// confirmed into a mentorship. Rejected requests are out for good.
func (s RequestStatus) CanEnterConfirmation() bool {
	return s == RequestAccepted || s == RequestPending || s == RequestCancelled
}

// MentorshipRequest is a student's request for mentorship with a mentor
type MentorshipRequest struct {
	ID          int64         `json:"id"`
	StudentID   int64         `json:"studentId"`
	MentorID    int64         `json:"mentorId"`
	Message     string        `json:"message"`
	Status      RequestStatus `json:"status"`
	CreatedAt   time.Time     `json:"createdAt"`
	ModifiedAt  time.Time     `json:"modifiedAt"`
	RespondedAt *time.Time    `json:"respondedAt"`

	// Joined for list views
	StudentName  string `json:"studentName,omitempty"`
	StudentEmail string `json:"studentEmail,omitempty"`
}

// CreateRequestPayload is the public intake payload
type CreateRequestPayload struct {
	MentorID       int64  `json:"mentorId" binding:"required"`
	Name           string `json:"name" binding:"required,max=200"`
	Email          string `json:"email" binding:"required,email"`
	Message        string `json:"message" binding:"required,max=4000"`
	RecaptchaToken string `json:"recaptchaToken" binding:"required"`
}

// UpdateRequestStatusPayload is the mentor's status update payload
type UpdateRequestStatusPayload struct {
	Status RequestStatus `json:"status" binding:"required,oneof=accepted rejected cancelled"`
}

// RequestsResponse is the response for listing requests
type RequestsResponse struct {
	Requests []MentorshipRequest `json:"requests"`
	Total    int                 `json:"total"`
}

// RequestGroup selects which requests to list
type RequestGroup string

const (
	RequestGroupActive RequestGroup = "active"
	RequestGroupPast   RequestGroup = "past"
)

// GetStatuses returns the statuses belonging to a request group
func (g RequestGroup) GetStatuses() []RequestStatus {
	switch g {
	case RequestGroupActive:
		return ActiveStatuses
	case RequestGroupPast:
		return PastStatuses
	default:
		return nil
	}
}

// ScanMentorshipRequest scans a row into a MentorshipRequest.
// Expected columns: id, student_id, mentor_id, message, status, created_at,
// updated_at, responded_at, student_name, student_email.
func ScanMentorshipRequest(row pgx.Row) (*MentorshipRequest, error) {
	var r MentorshipRequest
	var respondedAt *time.Time

	err := row.Scan(
		&r.ID,
		&r.StudentID,
		&r.MentorID,
		&r.Message,
		&r.Status,
		&r.CreatedAt,
		&r.ModifiedAt,
		&respondedAt,
		&r.StudentName,
		&r.StudentEmail,
	)
	if err != nil {
		return nil, err
	}

	r.RespondedAt = respondedAt
	return &r, nil
}
