package services

import (
	"context"
	"fmt"
	"path"
	"time"

	"go.uber.org/zap"

	"github.com/conectamentor/mentoria-api/internal/models"
	"github.com/conectamentor/mentoria-api/internal/repository"
	"github.com/conectamentor/mentoria-api/pkg/logger"
)

// DocumentStorage is the object storage surface the document service uses.
// Satisfied by *storage.DocumentStore.
type DocumentStorage interface {
	Upload(ctx context.Context, key, contentType string, data []byte) (string, error)
	ValidateContentType(contentType string) error
	ValidateSize(sizeBytes int) error
}

// DocumentService handles mentor CV/certificate uploads
type DocumentService struct {
	documentRepo repository.DocumentDataSource
	store        DocumentStorage

	now func() time.Time
}

// NewDocumentService creates a DocumentService
func NewDocumentService(documentRepo repository.DocumentDataSource, store DocumentStorage) *DocumentService {
	return &DocumentService{
		documentRepo: documentRepo,
		store:        store,
		now:          time.Now,
	}
}

// Upload validates and stores a document, then records it pending review
func (s *DocumentService) Upload(ctx context.Context, mentorID int64, kind models.DocumentKind, fileName, contentType string, data []byte) (*models.Document, error) {
	if s.store == nil {
		return nil, fmt.Errorf("document storage is not configured")
	}
	if err := s.store.ValidateContentType(contentType); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if err := s.store.ValidateSize(len(data)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	key := fmt.Sprintf("mentors/%d/%s/%d%s", mentorID, kind, s.now().UnixNano(), path.Ext(fileName))
	url, err := s.store.Upload(ctx, key, contentType, data)
	if err != nil {
		return nil, fmt.Errorf("failed to store document: %w", err)
	}

	doc := &models.Document{
		MentorID:     mentorID,
		Kind:         kind,
		FileName:     fileName,
		ContentType:  contentType,
		SizeBytes:    len(data),
		URL:          url,
		Verification: models.DocumentPendingReview,
	}
	id, err := s.documentRepo.Create(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("failed to record document: %w", err)
	}
	doc.ID = id

	logger.Info("Document uploaded",
		zap.Int64("mentor_id", mentorID),
		zap.Int64("document_id", id),
		zap.String("kind", string(kind)),
		zap.Int("size_bytes", len(data)))

	return doc, nil
}

// List returns a mentor's documents with their verification status
func (s *DocumentService) List(ctx context.Context, mentorID int64) (*models.DocumentsResponse, error) {
	docs, err := s.documentRepo.ListByMentor(ctx, mentorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	return &models.DocumentsResponse{
		Documents: docs,
		Total:     len(docs),
	}, nil
}
