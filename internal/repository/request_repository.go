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

// requestColumns are the columns every request query selects, in scanner order
const requestColumns = `
	r.id, r.student_id, r.mentor_id, r.message, r.status,
	r.created_at, r.updated_at, r.responded_at,
	s.name, s.email`

// RequestRepository is the pgx-backed mentorship request store
type RequestRepository struct {
	pool *pgxpool.Pool
}

// NewRequestRepository creates a request repository
func NewRequestRepository(pool *pgxpool.Pool) *RequestRepository {
	return &RequestRepository{pool: pool}
}

// Create inserts a pending request
func (r *RequestRepository) Create(ctx context.Context, req *models.MentorshipRequest) (int64, error) {
	start := time.Now()
	operation := "createRequest"

	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO mentorship_requests (student_id, mentor_id, message, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		req.StudentID, req.MentorID, req.Message, models.RequestPending,
	).Scan(&id)

	duration := metrics.MeasureDuration(start)

	if err != nil {
		recordMetrics(operation, "error", duration)
		return 0, fmt.Errorf("failed to create mentorship request: %w", err)
	}

	recordMetrics(operation, "success", duration)
	return id, nil
}

// GetByID fetches a request with the student joined in
func (r *RequestRepository) GetByID(ctx context.Context, id int64) (*models.MentorshipRequest, error) {
	start := time.Now()
	operation := "getRequestByID"

	row := r.pool.QueryRow(ctx, `
		SELECT `+requestColumns+`
		FROM mentorship_requests r
		JOIN students s ON s.id = r.student_id
		WHERE r.id = $1 AND r.deleted_at IS NULL`,
		id,
	)

	req, err := models.ScanMentorshipRequest(row)
	duration := metrics.MeasureDuration(start)

	if err != nil {
		recordMetrics(operation, "error", duration)
		if err == pgx.ErrNoRows {
			return nil, apperrors.NotFoundError("mentorship request")
		}
		return nil, fmt.Errorf("failed to get mentorship request: %w", err)
	}

	recordMetrics(operation, "success", duration)
	return req, nil
}

// GetByMentor lists a mentor's requests in the given statuses
func (r *RequestRepository) GetByMentor(ctx context.Context, mentorID int64, statuses []models.RequestStatus) ([]*models.MentorshipRequest, error) {
	start := time.Now()
	operation := "getRequestsByMentor"

	statusStrings := make([]string, len(statuses))
	for i, s := range statuses {
		statusStrings[i] = string(s)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+requestColumns+`
		FROM mentorship_requests r
		JOIN students s ON s.id = r.student_id
		WHERE r.mentor_id = $1 AND r.status = ANY($2) AND r.deleted_at IS NULL
		ORDER BY r.created_at DESC`,
		mentorID, statusStrings,
	)
	if err != nil {
		recordMetrics(operation, "error", metrics.MeasureDuration(start))
		return nil, fmt.Errorf("failed to query mentorship requests: %w", err)
	}
	defer rows.Close()

	var requests []*models.MentorshipRequest
	for rows.Next() {
		req, scanErr := models.ScanMentorshipRequest(rows)
		if scanErr != nil {
			recordMetrics(operation, "error", metrics.MeasureDuration(start))
			return nil, fmt.Errorf("failed to scan mentorship request: %w", scanErr)
		}
		requests = append(requests, req)
	}
	if rows.Err() != nil {
		recordMetrics(operation, "error", metrics.MeasureDuration(start))
		return nil, fmt.Errorf("failed to read mentorship requests: %w", rows.Err())
	}

	recordMetrics(operation, "success", metrics.MeasureDuration(start))
	return requests, nil
}

// UpdateStatus changes a request status and stamps responded_at
func (r *RequestRepository) UpdateStatus(ctx context.Context, id int64, status models.RequestStatus) error {
	start := time.Now()
	operation := "updateRequestStatus"

	tag, err := r.pool.Exec(ctx, `
		UPDATE mentorship_requests
		SET status = $2, responded_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`,
		id, status,
	)

	duration := metrics.MeasureDuration(start)

	if err != nil {
		recordMetrics(operation, "error", duration)
		return fmt.Errorf("failed to update request status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		recordMetrics(operation, "error", duration)
		return apperrors.NotFoundError("mentorship request")
	}

	recordMetrics(operation, "success", duration)
	return nil
}

var _ RequestDataSource = (*RequestRepository)(nil)
