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

// ParticipantRepository is the pgx-backed mentor/student store
type ParticipantRepository struct {
	pool *pgxpool.Pool
}

// NewParticipantRepository creates a participant repository
func NewParticipantRepository(pool *pgxpool.Pool) *ParticipantRepository {
	return &ParticipantRepository{pool: pool}
}

func (r *ParticipantRepository) getMentor(ctx context.Context, operation, whereClause string, arg interface{}) (*models.Mentor, error) {
	start := time.Now()

	row := r.pool.QueryRow(ctx, `
		SELECT id, name, email, job, workplace, is_active, created_at
		FROM mentors
		WHERE `+whereClause,
		arg,
	)

	mentor, err := models.ScanMentor(row)
	duration := metrics.MeasureDuration(start)

	if err != nil {
		recordMetrics(operation, "error", duration)
		if err == pgx.ErrNoRows {
			return nil, apperrors.NotFoundError("mentor")
		}
		return nil, fmt.Errorf("failed to get mentor: %w", err)
	}

	recordMetrics(operation, "success", duration)
	return mentor, nil
}

// GetMentorByID fetches a mentor by primary key
func (r *ParticipantRepository) GetMentorByID(ctx context.Context, id int64) (*models.Mentor, error) {
	return r.getMentor(ctx, "getMentorByID", "id = $1", id)
}

// GetMentorByEmail fetches a mentor for session login
func (r *ParticipantRepository) GetMentorByEmail(ctx context.Context, email string) (*models.Mentor, error) {
	return r.getMentor(ctx, "getMentorByEmail", "email = $1", email)
}

// UpsertStudent creates the student on first contact, updating the name on
// repeat contacts, and returns the student id
func (r *ParticipantRepository) UpsertStudent(ctx context.Context, name, email string) (int64, error) {
	start := time.Now()
	operation := "upsertStudent"

	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO students (name, email)
		VALUES ($1, $2)
		ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name
		RETURNING id`,
		name, email,
	).Scan(&id)

	duration := metrics.MeasureDuration(start)

	if err != nil {
		recordMetrics(operation, "error", duration)
		return 0, fmt.Errorf("failed to upsert student: %w", err)
	}

	recordMetrics(operation, "success", duration)
	return id, nil
}

var _ ParticipantDataSource = (*ParticipantRepository)(nil)
