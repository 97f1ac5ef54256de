package models

import (
	"time"

	"github.com/jackc/pgx/v5"
)

// DocumentKind classifies an uploaded mentor document
type DocumentKind string

const (
	DocumentCV          DocumentKind = "cv"
	DocumentCertificate DocumentKind = "certificate"
)

// DocumentVerification is the review state of an uploaded document
type DocumentVerification string

const (
	DocumentPendingReview DocumentVerification = "pending_review"
	DocumentVerified      DocumentVerification = "verified"
	DocumentRejectedDoc   DocumentVerification = "rejected"
)

// Document is an uploaded CV or certificate
type Document struct {
	ID           int64                `json:"id"`
	MentorID     int64                `json:"mentorId"`
	Kind         DocumentKind         `json:"kind"`
	FileName     string               `json:"fileName"`
	ContentType  string               `json:"contentType"`
	SizeBytes    int                  `json:"sizeBytes"`
	URL          string               `json:"url"`
	Verification DocumentVerification `json:"verification"`
	UploadedAt   time.Time            `json:"uploadedAt"`
}

// UploadDocumentPayload is the metadata half of a document upload; the file
// itself arrives as multipart form data.
type UploadDocumentPayload struct {
	Kind DocumentKind `form:"kind" binding:"required,oneof=cv certificate"`
}

// DocumentsResponse lists a mentor's documents
type DocumentsResponse struct {
	Documents []Document `json:"documents"`
	Total     int        `json:"total"`
}

// ScanDocument scans a row into a Document.
// Expected columns: id, mentor_id, kind, file_name, content_type, size_bytes,
// url, verification, uploaded_at.
func ScanDocument(row pgx.Row) (*Document, error) {
	var d Document
	err := row.Scan(
		&d.ID,
		&d.MentorID,
		&d.Kind,
		&d.FileName,
		&d.ContentType,
		&d.SizeBytes,
		&d.URL,
		&d.Verification,
		&d.UploadedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
