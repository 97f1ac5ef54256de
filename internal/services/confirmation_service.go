package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/conectamentor/mentoria-api/internal/models"
	"github.com/conectamentor/mentoria-api/internal/repository"
	apperrors "github.com/conectamentor/mentoria-api/pkg/errors"
	"github.com/conectamentor/mentoria-api/pkg/logger"
	"github.com/conectamentor/mentoria-api/pkg/metrics"
	"github.com/conectamentor/mentoria-api/pkg/zoom"
)

// ConfirmationService orchestrates the mentorship confirmation workflow:
// validate the schedule, run the authorization gate, provision the external
// meeting, persist the mentorship, and signal notifications.
type ConfirmationService struct {
	requestRepo    repository.RequestDataSource
	mentorshipRepo repository.MentorshipDataSource
	provisioner    MeetingProvisioner
	guard          *NotificationGuard

	// now is injected so schedule validation is testable
	now func() time.Time
}

// NewConfirmationService creates a ConfirmationService
func NewConfirmationService(
	requestRepo repository.RequestDataSource,
	mentorshipRepo repository.MentorshipDataSource,
	provisioner MeetingProvisioner,
	guard *NotificationGuard,
) *ConfirmationService {
	return &ConfirmationService{
		requestRepo:    requestRepo,
		mentorshipRepo: mentorshipRepo,
		provisioner:    provisioner,
		guard:          guard,
		now:            time.Now,
	}
}

// Confirm runs the full confirmation workflow for one request.
//
// Ordering is deliberate: no external call happens before the gate passes,
// and nothing is persisted before the provider call succeeds. A provider
// failure therefore leaves zero local state behind.
func (s *ConfirmationService) Confirm(ctx context.Context, mentorID, requestID int64, payload *models.ConfirmSchedulePayload) (*models.Mentorship, error) {
	start := time.Now()

	startAt, err := s.validateSchedule(payload)
	if err != nil {
		metrics.Confirmations.WithLabelValues("validation_failed").Inc()
		return nil, err
	}

	request, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			metrics.Confirmations.WithLabelValues("not_found").Inc()
			return nil, ErrRequestNotFound
		}
		metrics.Confirmations.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to load request %d: %w", requestID, err)
	}

	hasActive, err := s.mentorshipRepo.HasActiveByRequest(ctx, requestID)
	if err != nil {
		metrics.Confirmations.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to check existing mentorship: %w", err)
	}

	if err := CanConfirm(mentorID, request, hasActive); err != nil {
		metrics.Confirmations.WithLabelValues("denied").Inc()
		logger.Warn("Confirmation denied",
			zap.Int64("request_id", requestID),
			zap.Int64("mentor_id", mentorID),
			zap.Error(err))
		return nil, err
	}

	topic := payload.Topic
	if topic == "" {
		topic = fmt.Sprintf("Mentoría con %s", request.StudentName)
	}

	meeting, err := s.provisioner.CreateMeeting(ctx, zoom.MeetingSpec{
		Topic:    topic,
		StartAt:  startAt,
		Duration: payload.DuracionMinutos,
	})
	if err != nil {
		metrics.Confirmations.WithLabelValues("provisioning_failed").Inc()
		logger.Error("Meeting provisioning failed",
			zap.Int64("request_id", requestID),
			zap.Error(err))
		return nil, err
	}

	mentorship, err := s.mentorshipRepo.CreateConfirmed(ctx, &models.Mentorship{
		RequestID:       requestID,
		MentorID:        request.MentorID,
		StudentID:       request.StudentID,
		MeetingID:       meeting.ID,
		JoinURL:         meeting.JoinURL,
		StartURL:        meeting.StartURL,
		MeetingPassword: meeting.Password,
		ScheduledAt:     startAt.UTC(),
		DurationMinutes: payload.DuracionMinutos,
		Topic:           topic,
	})
	if err != nil {
		// The meeting exists on the provider but nothing landed locally.
		// Surface it loudly for manual reconciliation; an automatic cancel
		// could destroy a valid meeting over a transient local failure.
		metrics.Confirmations.WithLabelValues("persistence_failed").Inc()
		metrics.ConsistencyAlerts.WithLabelValues().Inc()
		logger.Error("CONSISTENCY ALERT: meeting provisioned but mentorship not persisted",
			zap.Int64("request_id", requestID),
			zap.Int64("meeting_id", meeting.ID),
			zap.String("join_url", meeting.JoinURL),
			zap.Error(err))
		return nil, fmt.Errorf("failed to persist mentorship (meeting %d requires manual reconciliation): %w", meeting.ID, err)
	}

	correlationID := uuid.NewString()
	s.guard.OnConfirmed(ctx, mentorship, correlationID)

	duration := metrics.MeasureDuration(start)
	metrics.Confirmations.WithLabelValues("success").Inc()
	metrics.ConfirmationDuration.WithLabelValues().Observe(duration)

	logger.Info("Mentorship confirmed",
		zap.Int64("request_id", requestID),
		zap.Int64("mentorship_id", mentorship.ID),
		zap.Int64("meeting_id", meeting.ID),
		zap.String("correlation_id", correlationID),
		zap.Time("scheduled_at", mentorship.ScheduledAt))

	return mentorship, nil
}

// validateSchedule checks the payload's structure and temporal rules and
// returns the resolved start instant.
func (s *ConfirmationService) validateSchedule(payload *models.ConfirmSchedulePayload) (time.Time, error) {
	if payload.DuracionMinutos < models.MinSessionMinutes || payload.DuracionMinutos > models.MaxSessionMinutes {
		return time.Time{}, fmt.Errorf("%w: %d minutes (allowed %d-%d)",
			ErrInvalidDuration, payload.DuracionMinutos,
			models.MinSessionMinutes, models.MaxSessionMinutes)
	}

	startAt, loc, err := payload.ResolveStart(s.provisioner.DefaultTimezone())
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrInvalidSchedule, err)
	}

	// The schedule date may be today or yesterday (late confirmations of
	// sessions that already happened are allowed), but not earlier. Days are
	// compared in the caller's timezone.
	nowLocal := s.now().In(loc)
	yesterday := time.Date(nowLocal.Year(), nowLocal.Month(), nowLocal.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, -1)
	startDay := time.Date(startAt.Year(), startAt.Month(), startAt.Day(), 0, 0, 0, 0, loc)
	if startDay.Before(yesterday) {
		return time.Time{}, fmt.Errorf("%w: %s", ErrScheduleInPast, payload.Fecha)
	}

	return startAt, nil
}
