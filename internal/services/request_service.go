package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/conectamentor/mentoria-api/config"
	"github.com/conectamentor/mentoria-api/internal/models"
	"github.com/conectamentor/mentoria-api/internal/repository"
	apperrors "github.com/conectamentor/mentoria-api/pkg/errors"
	"github.com/conectamentor/mentoria-api/pkg/logger"
	"github.com/conectamentor/mentoria-api/pkg/metrics"
)

// RequestService handles public request intake and the mentor's request
// lifecycle management.
type RequestService struct {
	requestRepo     repository.RequestDataSource
	participantRepo repository.ParticipantDataSource
	captcha         CaptchaVerifier
	dispatcher      NotificationDispatcher
	cfg             *config.Config
}

// NewRequestService creates a RequestService
func NewRequestService(
	requestRepo repository.RequestDataSource,
	participantRepo repository.ParticipantDataSource,
	captcha CaptchaVerifier,
	dispatcher NotificationDispatcher,
	cfg *config.Config,
) *RequestService {
	return &RequestService{
		requestRepo:     requestRepo,
		participantRepo: participantRepo,
		captcha:         captcha,
		dispatcher:      dispatcher,
		cfg:             cfg,
	}
}

// Submit handles the public intake form: verify the captcha, resolve the
// mentor and student, create the pending request.
func (s *RequestService) Submit(ctx context.Context, payload *models.CreateRequestPayload) (*models.MentorshipRequest, error) {
	// Captcha is skipped in development so local testing doesn't need real
	// tokens
	if !s.cfg.IsDevelopment() {
		if err := s.captcha.Verify(ctx, payload.RecaptchaToken); err != nil {
			metrics.RequestSubmissions.WithLabelValues("captcha_failed").Inc()
			logger.Warn("Captcha verification failed",
				zap.String("email", payload.Email),
				zap.Error(err))
			return nil, ErrCaptchaFailed
		}
	}

	mentor, err := s.participantRepo.GetMentorByID(ctx, payload.MentorID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			metrics.RequestSubmissions.WithLabelValues("mentor_not_found").Inc()
			return nil, fmt.Errorf("mentor %d: %w", payload.MentorID, ErrMentorNotFound)
		}
		metrics.RequestSubmissions.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to load mentor %d: %w", payload.MentorID, err)
	}
	if !mentor.IsActive {
		metrics.RequestSubmissions.WithLabelValues("mentor_inactive").Inc()
		return nil, fmt.Errorf("%w: mentor is not accepting requests", ErrAccessDenied)
	}

	studentID, err := s.participantRepo.UpsertStudent(ctx, payload.Name, payload.Email)
	if err != nil {
		metrics.RequestSubmissions.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to resolve student: %w", err)
	}

	request := &models.MentorshipRequest{
		StudentID: studentID,
		MentorID:  payload.MentorID,
		Message:   payload.Message,
	}
	id, err := s.requestRepo.Create(ctx, request)
	if err != nil {
		metrics.RequestSubmissions.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if dispatchErr := s.dispatcher.DispatchRequestReceived(ctx, id); dispatchErr != nil {
		// Notification failures never fail the submission
		logger.Error("Failed to dispatch request-received notification",
			zap.Int64("request_id", id),
			zap.Error(dispatchErr))
	}

	metrics.RequestSubmissions.WithLabelValues("success").Inc()
	logger.Info("Mentorship request submitted",
		zap.Int64("request_id", id),
		zap.Int64("mentor_id", payload.MentorID),
		zap.Int64("student_id", studentID))

	return s.requestRepo.GetByID(ctx, id)
}

// GetRequests lists a mentor's requests by group
func (s *RequestService) GetRequests(ctx context.Context, mentorID int64, group string) (*models.RequestsResponse, error) {
	statuses := models.RequestGroup(group).GetStatuses()
	if statuses == nil {
		return nil, ErrInvalidRequestGroup
	}

	requests, err := s.requestRepo.GetByMentor(ctx, mentorID, statuses)
	if err != nil {
		logger.Error("Failed to fetch requests",
			zap.Int64("mentor_id", mentorID),
			zap.String("group", group),
			zap.Error(err))
		return nil, fmt.Errorf("failed to fetch requests: %w", err)
	}

	responseRequests := make([]models.MentorshipRequest, 0, len(requests))
	for _, req := range requests {
		responseRequests = append(responseRequests, *req)
	}

	return &models.RequestsResponse{
		Requests: responseRequests,
		Total:    len(responseRequests),
	}, nil
}

// GetRequestByID fetches one request and verifies ownership
func (s *RequestService) GetRequestByID(ctx context.Context, mentorID, requestID int64) (*models.MentorshipRequest, error) {
	request, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Request not found", zap.Int64("request_id", requestID))
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("failed to load request %d: %w", requestID, err)
	}

	if request.MentorID != mentorID {
		logger.Warn("Access denied to request",
			zap.Int64("request_id", requestID),
			zap.Int64("request_mentor", request.MentorID),
			zap.Int64("requesting_mentor", mentorID))
		return nil, ErrAccessDenied
	}

	return request, nil
}

// UpdateStatus updates a request status with workflow validation
func (s *RequestService) UpdateStatus(ctx context.Context, mentorID, requestID int64, newStatus models.RequestStatus) (*models.MentorshipRequest, error) {
	request, err := s.GetRequestByID(ctx, mentorID, requestID)
	if err != nil {
		return nil, err
	}

	if !request.Status.CanTransitionTo(newStatus) {
		logger.Warn("Invalid status transition",
			zap.Int64("request_id", requestID),
			zap.String("from_status", string(request.Status)),
			zap.String("to_status", string(newStatus)))
		return nil, fmt.Errorf("%w: cannot transition from %q to %q", ErrInvalidStatusTransition, request.Status, newStatus)
	}

	oldStatus := request.Status

	if err := s.requestRepo.UpdateStatus(ctx, requestID, newStatus); err != nil {
		logger.Error("Failed to update request status",
			zap.Int64("request_id", requestID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to update status: %w", err)
	}

	metrics.RequestStatusUpdates.WithLabelValues(string(oldStatus), string(newStatus)).Inc()

	logger.Info("Request status updated",
		zap.Int64("request_id", requestID),
		zap.String("from_status", string(oldStatus)),
		zap.String("to_status", string(newStatus)))

	return s.requestRepo.GetByID(ctx, requestID)
}
