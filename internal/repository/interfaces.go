package repository

import (
	"context"
	"time"

	"github.com/conectamentor/mentoria-api/internal/models"
)

// RequestDataSource defines mentorship request persistence
type RequestDataSource interface {
	// Create inserts a pending request and returns its id
	Create(ctx context.Context, req *models.MentorshipRequest) (int64, error)

	// GetByID fetches a request with joined student info
	GetByID(ctx context.Context, id int64) (*models.MentorshipRequest, error)

	// GetByMentor lists a mentor's requests filtered by status
	GetByMentor(ctx context.Context, mentorID int64, statuses []models.RequestStatus) ([]*models.MentorshipRequest, error)

	// UpdateStatus changes a request status and stamps responded_at
	UpdateStatus(ctx context.Context, id int64, status models.RequestStatus) error
}

// MentorshipDataSource defines mentorship persistence
type MentorshipDataSource interface {
	// CreateConfirmed inserts the mentorship and marks its request accepted
	// in one transaction. Returns the stored mentorship.
	CreateConfirmed(ctx context.Context, m *models.Mentorship) (*models.Mentorship, error)

	// GetByID fetches a mentorship
	GetByID(ctx context.Context, id int64) (*models.Mentorship, error)

	// HasActiveByRequest reports whether the request already has a scheduled
	// mentorship
	HasActiveByRequest(ctx context.Context, requestID int64) (bool, error)

	// Cancel marks a mentorship cancelled
	Cancel(ctx context.Context, id int64) error

	// UpdateSchedule persists a new start time and duration
	UpdateSchedule(ctx context.Context, id int64, scheduledAt time.Time, durationMinutes int) error

	// GetParties loads mentor and student for notification delivery
	GetParties(ctx context.Context, mentorshipID int64) (*models.MentorshipParties, error)

	// GetDueReminders lists scheduled mentorships starting inside the window
	// whose reminder has not been sent yet
	GetDueReminders(ctx context.Context, from, to time.Time) ([]*models.Mentorship, error)

	// MarkReminderSent records that the reminder email was enqueued
	MarkReminderSent(ctx context.Context, id int64) error
}

// ParticipantDataSource defines mentor and student lookups
type ParticipantDataSource interface {
	// GetMentorByID fetches a mentor
	GetMentorByID(ctx context.Context, id int64) (*models.Mentor, error)

	// GetMentorByEmail fetches a mentor for session login
	GetMentorByEmail(ctx context.Context, email string) (*models.Mentor, error)

	// UpsertStudent creates the student on first contact and returns its id
	UpsertStudent(ctx context.Context, name, email string) (int64, error)
}

// DocumentDataSource defines uploaded document persistence
type DocumentDataSource interface {
	// Create records an uploaded document
	Create(ctx context.Context, doc *models.Document) (int64, error)

	// ListByMentor lists a mentor's documents, newest first
	ListByMentor(ctx context.Context, mentorID int64) ([]models.Document, error)
}
