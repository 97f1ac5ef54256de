package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/conectamentor/mentoria-api/internal/models"
	apperrors "github.com/conectamentor/mentoria-api/pkg/errors"
	"github.com/conectamentor/mentoria-api/pkg/metrics"
)

// mentorshipColumns are the columns every mentorship query selects, in
// scanner order
const mentorshipColumns = `
	m.id, m.request_id, m.mentor_id, m.student_id, m.meeting_id,
	m.join_url, m.start_url, m.meeting_password, m.scheduled_at,
	m.duration_minutes, m.topic, m.status, m.created_at, m.updated_at`

// MentorshipRepository is the pgx-backed mentorship store
type MentorshipRepository struct {
	pool *pgxpool.Pool
}

// NewMentorshipRepository creates a mentorship repository
func NewMentorshipRepository(pool *pgxpool.Pool) *MentorshipRepository {
	return &MentorshipRepository{pool: pool}
}

// CreateConfirmed inserts the mentorship and marks its request accepted in a
// single transaction. Either both land or neither does.
func (r *MentorshipRepository) CreateConfirmed(ctx context.Context, m *models.Mentorship) (*models.Mentorship, error) {
	start := time.Now()
	operation := "createConfirmedMentorship"

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		recordMetrics(operation, "error", metrics.MeasureDuration(start))
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	row := tx.QueryRow(ctx, `
		INSERT INTO mentorships (
			request_id, mentor_id, student_id, meeting_id, join_url,
			start_url, meeting_password, scheduled_at, duration_minutes,
			topic, status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at`,
		m.RequestID, m.MentorID, m.StudentID, m.MeetingID, m.JoinURL,
		nilIfEmpty(m.StartURL), nilIfEmpty(m.MeetingPassword),
		m.ScheduledAt.UTC(), m.DurationMinutes, nilIfEmpty(m.Topic),
		models.MentorshipScheduled,
	)

	stored := *m
	stored.Status = models.MentorshipScheduled
	stored.ScheduledAt = m.ScheduledAt.UTC()
	if err := row.Scan(&stored.ID, &stored.CreatedAt, &stored.ModifiedAt); err != nil {
		recordMetrics(operation, "error", metrics.MeasureDuration(start))
		return nil, fmt.Errorf("failed to insert mentorship: %w", err)
	}

	tag, err := tx.Exec(ctx, `
		UPDATE mentorship_requests
		SET status = $2, responded_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`,
		m.RequestID, models.RequestAccepted,
	)
	if err != nil {
		recordMetrics(operation, "error", metrics.MeasureDuration(start))
		return nil, fmt.Errorf("failed to mark request accepted: %w", err)
	}
	if tag.RowsAffected() == 0 {
		recordMetrics(operation, "error", metrics.MeasureDuration(start))
		return nil, apperrors.NotFoundError("mentorship request")
	}

	if err := tx.Commit(ctx); err != nil {
		recordMetrics(operation, "error", metrics.MeasureDuration(start))
		return nil, fmt.Errorf("failed to commit confirmation: %w", err)
	}

	recordMetrics(operation, "success", metrics.MeasureDuration(start))
	return &stored, nil
}

// GetByID fetches a mentorship
func (r *MentorshipRepository) GetByID(ctx context.Context, id int64) (*models.Mentorship, error) {
	start := time.Now()
	operation := "getMentorshipByID"

	row := r.pool.QueryRow(ctx, `
		SELECT `+mentorshipColumns+`
		FROM mentorships m
		WHERE m.id = $1`,
		id,
	)

	m, err := models.ScanMentorship(row)
	duration := metrics.MeasureDuration(start)

	if err != nil {
		recordMetrics(operation, "error", duration)
		if err == pgx.ErrNoRows {
			return nil, apperrors.NotFoundError("mentorship")
		}
		return nil, fmt.Errorf("failed to get mentorship: %w", err)
	}

	recordMetrics(operation, "success", duration)
	return m, nil
}

// HasActiveByRequest reports whether a scheduled mentorship already exists
// for the request
func (r *MentorshipRepository) HasActiveByRequest(ctx context.Context, requestID int64) (bool, error) {
	start := time.Now()
	operation := "hasActiveMentorship"

	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM mentorships
			WHERE request_id = $1 AND status = $2
		)`,
		requestID, models.MentorshipScheduled,
	).Scan(&exists)

	duration := metrics.MeasureDuration(start)

	if err != nil {
		recordMetrics(operation, "error", duration)
		return false, fmt.Errorf("failed to check active mentorship: %w", err)
	}

	recordMetrics(operation, "success", duration)
	return exists, nil
}

// Cancel marks a mentorship cancelled
func (r *MentorshipRepository) Cancel(ctx context.Context, id int64) error {
	start := time.Now()
	operation := "cancelMentorship"

	tag, err := r.pool.Exec(ctx, `
		UPDATE mentorships
		SET status = $2, updated_at = NOW()
		WHERE id = $1 AND status = $3`,
		id, models.MentorshipCancelled, models.MentorshipScheduled,
	)

	duration := metrics.MeasureDuration(start)

	if err != nil {
		recordMetrics(operation, "error", duration)
		return fmt.Errorf("failed to cancel mentorship: %w", err)
	}
	if tag.RowsAffected() == 0 {
		recordMetrics(operation, "error", duration)
		return apperrors.NotFoundError("scheduled mentorship")
	}

	recordMetrics(operation, "success", duration)
	return nil
}

// UpdateSchedule persists a new start time and duration
func (r *MentorshipRepository) UpdateSchedule(ctx context.Context, id int64, scheduledAt time.Time, durationMinutes int) error {
	start := time.Now()
	operation := "updateMentorshipSchedule"

	tag, err := r.pool.Exec(ctx, `
		UPDATE mentorships
		SET scheduled_at = $2, duration_minutes = $3,
		    reminder_sent = FALSE, updated_at = NOW()
		WHERE id = $1 AND status = $4`,
		id, scheduledAt.UTC(), durationMinutes, models.MentorshipScheduled,
	)

	duration := metrics.MeasureDuration(start)

	if err != nil {
		recordMetrics(operation, "error", duration)
		return fmt.Errorf("failed to update mentorship schedule: %w", err)
	}
	if tag.RowsAffected() == 0 {
		recordMetrics(operation, "error", duration)
		return apperrors.NotFoundError("scheduled mentorship")
	}

	recordMetrics(operation, "success", duration)
	return nil
}

// GetParties loads the mentor and student for a mentorship
func (r *MentorshipRepository) GetParties(ctx context.Context, mentorshipID int64) (*models.MentorshipParties, error) {
	start := time.Now()
	operation := "getMentorshipParties"

	var p models.MentorshipParties
	err := r.pool.QueryRow(ctx, `
		SELECT mt.id, mt.name, mt.email, st.id, st.name, st.email
		FROM mentorships m
		JOIN mentors mt ON mt.id = m.mentor_id
		JOIN students st ON st.id = m.student_id
		WHERE m.id = $1`,
		mentorshipID,
	).Scan(&p.Mentor.ID, &p.Mentor.Name, &p.Mentor.Email,
		&p.Student.ID, &p.Student.Name, &p.Student.Email)

	duration := metrics.MeasureDuration(start)

	if err != nil {
		recordMetrics(operation, "error", duration)
		if err == pgx.ErrNoRows {
			return nil, apperrors.NotFoundError("mentorship")
		}
		return nil, fmt.Errorf("failed to load mentorship parties: %w", err)
	}

	recordMetrics(operation, "success", duration)
	return &p, nil
}

// GetDueReminders lists scheduled mentorships starting inside [from, to)
// whose reminder has not been sent
func (r *MentorshipRepository) GetDueReminders(ctx context.Context, from, to time.Time) ([]*models.Mentorship, error) {
	start := time.Now()
	operation := "getDueReminders"

	rows, err := r.pool.Query(ctx, `
		SELECT `+mentorshipColumns+`
		FROM mentorships m
		WHERE m.status = $1
		  AND m.reminder_sent = FALSE
		  AND m.scheduled_at >= $2 AND m.scheduled_at < $3
		ORDER BY m.scheduled_at`,
		models.MentorshipScheduled, from.UTC(), to.UTC(),
	)
	if err != nil {
		recordMetrics(operation, "error", metrics.MeasureDuration(start))
		return nil, fmt.Errorf("failed to query due reminders: %w", err)
	}
	defer rows.Close()

	var due []*models.Mentorship
	for rows.Next() {
		m, scanErr := models.ScanMentorship(rows)
		if scanErr != nil {
			recordMetrics(operation, "error", metrics.MeasureDuration(start))
			return nil, fmt.Errorf("failed to scan mentorship: %w", scanErr)
		}
		due = append(due, m)
	}
	if rows.Err() != nil {
		recordMetrics(operation, "error", metrics.MeasureDuration(start))
		return nil, fmt.Errorf("failed to read due reminders: %w", rows.Err())
	}

	recordMetrics(operation, "success", metrics.MeasureDuration(start))
	return due, nil
}

// MarkReminderSent records that the reminder email was enqueued
func (r *MentorshipRepository) MarkReminderSent(ctx context.Context, id int64) error {
	start := time.Now()
	operation := "markReminderSent"

	_, err := r.pool.Exec(ctx, `
		UPDATE mentorships SET reminder_sent = TRUE, updated_at = NOW()
		WHERE id = $1`,
		id,
	)

	duration := metrics.MeasureDuration(start)

	if err != nil {
		recordMetrics(operation, "error", duration)
		return fmt.Errorf("failed to mark reminder sent: %w", err)
	}

	recordMetrics(operation, "success", duration)
	return nil
}

// nilIfEmpty converts empty strings to NULLs
func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

var _ MentorshipDataSource = (*MentorshipRepository)(nil)
