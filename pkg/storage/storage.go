// Package storage persists mentorship session documents in S3-compatible
// object storage.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/conectamentor/mentoria-api/pkg/logger"
	"github.com/conectamentor/mentoria-api/pkg/metrics"
	"go.uber.org/zap"
)

// MaxDocumentSize caps uploads at 10MB
const MaxDocumentSize = 10 * 1024 * 1024

var allowedContentTypes = map[string]bool{
	"application/pdf": true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"image/jpeg": true,
	"image/png":  true,
}

// DocumentStore uploads and removes session documents
type DocumentStore struct {
	s3Client   *s3.Client
	bucketName string
	endpoint   string
}

// NewDocumentStore builds an S3 client against the configured endpoint
func NewDocumentStore(accessKeyID, secretAccessKey, bucketName, endpoint, region string) (*DocumentStore, error) {
	if bucketName == "" {
		return nil, fmt.Errorf("document storage bucket name is required")
	}
	if endpoint == "" {
		endpoint = "https://s3.amazonaws.com"
	}
	if region == "" {
		region = "us-east-1"
	}

	s3Client := s3.New(s3.Options{
		Region:       region,
		BaseEndpoint: aws.String(endpoint),
		Credentials: credentials.NewStaticCredentialsProvider(
			accessKeyID,
			secretAccessKey,
			"",
		),
	})

	logger.Info("Document storage client initialized",
		zap.String("bucket", bucketName),
		zap.String("endpoint", endpoint),
		zap.String("region", region),
	)

	return &DocumentStore{
		s3Client:   s3Client,
		bucketName: bucketName,
		endpoint:   endpoint,
	}, nil
}

// Upload stores a document under key and returns its public URL
func (s *DocumentStore) Upload(ctx context.Context, key, contentType string, data []byte) (string, error) {
	start := time.Now()
	operation := "uploadDocument"

	if err := s.ValidateContentType(contentType); err != nil {
		return "", err
	}
	if err := s.ValidateSize(len(data)); err != nil {
		return "", err
	}

	_, err := s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})

	duration := metrics.MeasureDuration(start)

	if err != nil {
		metrics.DocumentUploads.WithLabelValues("error").Inc()
		logger.LogAPICall(ctx, "document_storage", operation, "error", duration,
			zap.Error(err),
			zap.String("key", key),
		)
		return "", fmt.Errorf("failed to upload document: %w", err)
	}

	metrics.DocumentUploads.WithLabelValues("success").Inc()
	logger.LogAPICall(ctx, "document_storage", operation, "success", duration,
		zap.String("key", key),
		zap.Int("size_bytes", len(data)),
	)

	return s.DocumentURL(key), nil
}

// Delete removes a document from the bucket
func (s *DocumentStore) Delete(ctx context.Context, key string) error {
	start := time.Now()
	operation := "deleteDocument"

	_, err := s.s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	})

	duration := metrics.MeasureDuration(start)

	if err != nil {
		logger.LogAPICall(ctx, "document_storage", operation, "error", duration,
			zap.Error(err),
			zap.String("key", key),
		)
		return fmt.Errorf("failed to delete document: %w", err)
	}

	logger.LogAPICall(ctx, "document_storage", operation, "success", duration,
		zap.String("key", key))
	return nil
}

// DocumentURL returns the public URL for a stored key
func (s *DocumentStore) DocumentURL(key string) string {
	return fmt.Sprintf("%s/%s/%s", s.endpoint, s.bucketName, key)
}

// ValidateContentType rejects types outside the document allowlist
func (s *DocumentStore) ValidateContentType(contentType string) error {
	if !allowedContentTypes[strings.ToLower(contentType)] {
		return fmt.Errorf("invalid document type: %s. Allowed types: pdf, doc, docx, jpeg, png", contentType)
	}
	return nil
}

// ValidateSize rejects documents over the size cap
func (s *DocumentStore) ValidateSize(sizeBytes int) error {
	if sizeBytes == 0 {
		return fmt.Errorf("document is empty")
	}
	if sizeBytes > MaxDocumentSize {
		return fmt.Errorf("document too large: %d bytes (max %d bytes)", sizeBytes, MaxDocumentSize)
	}
	return nil
}
