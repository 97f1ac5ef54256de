package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/conectamentor/mentoria-api/internal/models"
	"github.com/conectamentor/mentoria-api/internal/repository"
	apperrors "github.com/conectamentor/mentoria-api/pkg/errors"
	"github.com/conectamentor/mentoria-api/pkg/logger"
	"github.com/conectamentor/mentoria-api/pkg/zoom"
)

// MentorshipService handles read, cancel and reschedule of confirmed
// mentorships.
type MentorshipService struct {
	mentorshipRepo repository.MentorshipDataSource
	provisioner    MeetingProvisioner

	now func() time.Time
}

// NewMentorshipService creates a MentorshipService
func NewMentorshipService(mentorshipRepo repository.MentorshipDataSource, provisioner MeetingProvisioner) *MentorshipService {
	return &MentorshipService{
		mentorshipRepo: mentorshipRepo,
		provisioner:    provisioner,
		now:            time.Now,
	}
}

// GetByID fetches a mentorship and verifies the mentor owns it
func (s *MentorshipService) GetByID(ctx context.Context, mentorID, mentorshipID int64) (*models.Mentorship, error) {
	mentorship, err := s.mentorshipRepo.GetByID(ctx, mentorshipID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, ErrMentorshipNotFound
		}
		return nil, fmt.Errorf("failed to load mentorship %d: %w", mentorshipID, err)
	}

	if mentorship.MentorID != mentorID {
		logger.Warn("Access denied to mentorship",
			zap.Int64("mentorship_id", mentorshipID),
			zap.Int64("requesting_mentor", mentorID))
		return nil, ErrAccessDenied
	}

	return mentorship, nil
}

// Cancel cancels the mentorship and its external meeting. A meeting the
// provider no longer knows about is fine; the local cancellation proceeds.
func (s *MentorshipService) Cancel(ctx context.Context, mentorID, mentorshipID int64) error {
	mentorship, err := s.GetByID(ctx, mentorID, mentorshipID)
	if err != nil {
		return err
	}
	if mentorship.Status != models.MentorshipScheduled {
		return fmt.Errorf("%w: mentorship is already %s", ErrInvalidStatusTransition, mentorship.Status)
	}

	if err := s.provisioner.CancelMeeting(ctx, mentorship.MeetingID); err != nil {
		if !zoom.IsNotFound(err) {
			return fmt.Errorf("failed to cancel external meeting: %w", err)
		}
		logger.Warn("External meeting already gone, cancelling locally",
			zap.Int64("mentorship_id", mentorshipID),
			zap.Int64("meeting_id", mentorship.MeetingID))
	}

	if err := s.mentorshipRepo.Cancel(ctx, mentorshipID); err != nil {
		return fmt.Errorf("failed to cancel mentorship: %w", err)
	}

	logger.Info("Mentorship cancelled",
		zap.Int64("mentorship_id", mentorshipID),
		zap.Int64("meeting_id", mentorship.MeetingID))
	return nil
}

// Reschedule moves the mentorship to a new schedule, updating the external
// meeting first so local state never points at a stale meeting time.
func (s *MentorshipService) Reschedule(ctx context.Context, mentorID, mentorshipID int64, payload *models.ReschedulePayload) (*models.Mentorship, error) {
	mentorship, err := s.GetByID(ctx, mentorID, mentorshipID)
	if err != nil {
		return nil, err
	}
	if mentorship.Status != models.MentorshipScheduled {
		return nil, fmt.Errorf("%w: mentorship is %s", ErrInvalidStatusTransition, mentorship.Status)
	}

	confirm := payload.ToConfirmPayload()
	startAt, loc, err := confirm.ResolveStart(s.provisioner.DefaultTimezone())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSchedule, err)
	}

	nowLocal := s.now().In(loc)
	yesterday := time.Date(nowLocal.Year(), nowLocal.Month(), nowLocal.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, -1)
	startDay := time.Date(startAt.Year(), startAt.Month(), startAt.Day(), 0, 0, 0, 0, loc)
	if startDay.Before(yesterday) {
		return nil, fmt.Errorf("%w: %s", ErrScheduleInPast, payload.Fecha)
	}

	if _, err := s.provisioner.UpdateMeeting(ctx, mentorship.MeetingID, zoom.MeetingSpec{
		Topic:    mentorship.Topic,
		StartAt:  startAt,
		Duration: payload.DuracionMinutos,
	}); err != nil {
		return nil, fmt.Errorf("failed to update external meeting: %w", err)
	}

	if err := s.mentorshipRepo.UpdateSchedule(ctx, mentorshipID, startAt.UTC(), payload.DuracionMinutos); err != nil {
		return nil, fmt.Errorf("failed to persist new schedule: %w", err)
	}

	logger.Info("Mentorship rescheduled",
		zap.Int64("mentorship_id", mentorshipID),
		zap.Time("scheduled_at", startAt.UTC()),
		zap.Int("duration_minutes", payload.DuracionMinutos))

	return s.mentorshipRepo.GetByID(ctx, mentorshipID)
}
