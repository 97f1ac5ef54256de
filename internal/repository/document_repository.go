package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/conectamentor/mentoria-api/internal/models"
	"github.com/conectamentor/mentoria-api/pkg/metrics"
)

// DocumentRepository is the pgx-backed uploaded document store
type DocumentRepository struct {
	pool *pgxpool.Pool
}

// NewDocumentRepository creates a document repository
func NewDocumentRepository(pool *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{pool: pool}
}

// Create records a freshly uploaded document as pending review
func (r *DocumentRepository) Create(ctx context.Context, doc *models.Document) (int64, error) {
	start := time.Now()
	operation := "createDocument"

	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO mentor_documents (
			mentor_id, kind, file_name, content_type, size_bytes, url, verification
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		doc.MentorID, doc.Kind, doc.FileName, doc.ContentType,
		doc.SizeBytes, doc.URL, models.DocumentPendingReview,
	).Scan(&id)

	duration := metrics.MeasureDuration(start)

	if err != nil {
		recordMetrics(operation, "error", duration)
		return 0, fmt.Errorf("failed to create document record: %w", err)
	}

	recordMetrics(operation, "success", duration)
	return id, nil
}

// ListByMentor lists a mentor's documents, newest first
func (r *DocumentRepository) ListByMentor(ctx context.Context, mentorID int64) ([]models.Document, error) {
	start := time.Now()
	operation := "listDocumentsByMentor"

	rows, err := r.pool.Query(ctx, `
		SELECT id, mentor_id, kind, file_name, content_type, size_bytes,
		       url, verification, uploaded_at
		FROM mentor_documents
		WHERE mentor_id = $1
		ORDER BY uploaded_at DESC`,
		mentorID,
	)
	if err != nil {
		recordMetrics(operation, "error", metrics.MeasureDuration(start))
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	var docs []models.Document
	for rows.Next() {
		doc, scanErr := models.ScanDocument(rows)
		if scanErr != nil {
			recordMetrics(operation, "error", metrics.MeasureDuration(start))
			return nil, fmt.Errorf("failed to scan document: %w", scanErr)
		}
		docs = append(docs, *doc)
	}
	if rows.Err() != nil {
		recordMetrics(operation, "error", metrics.MeasureDuration(start))
		return nil, fmt.Errorf("failed to read documents: %w", rows.Err())
	}

	recordMetrics(operation, "success", metrics.MeasureDuration(start))
	return docs, nil
}

var _ DocumentDataSource = (*DocumentRepository)(nil)
