package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/conectamentor/mentoria-api/internal/repository"
	"github.com/conectamentor/mentoria-api/internal/services"
	"github.com/conectamentor/mentoria-api/pkg/logger"
)

const sweepTimeout = 30 * time.Second

// ReminderJob periodically finds mentorships starting within the lead window
// and dispatches a reminder to both participants. reminder_sent keeps the
// sweep idempotent across runs and across instances.
type ReminderJob struct {
	mentorshipRepo repository.MentorshipDataSource
	dispatcher     services.NotificationDispatcher
	lead           time.Duration
	now            func() time.Time
}

// NewReminderJob creates a ReminderJob with the given lead window
func NewReminderJob(mentorshipRepo repository.MentorshipDataSource, dispatcher services.NotificationDispatcher, leadMinutes int) *ReminderJob {
	if leadMinutes <= 0 {
		leadMinutes = 60
	}
	return &ReminderJob{
		mentorshipRepo: mentorshipRepo,
		dispatcher:     dispatcher,
		lead:           time.Duration(leadMinutes) * time.Minute,
		now:            time.Now,
	}
}

// Schedule registers the sweep on the given cron runner
func (j *ReminderJob) Schedule(c *cron.Cron, spec string) (cron.EntryID, error) {
	return c.AddFunc(spec, j.Run)
}

// Run executes one sweep
func (j *ReminderJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	now := j.now().UTC()
	due, err := j.mentorshipRepo.GetDueReminders(ctx, now, now.Add(j.lead))
	if err != nil {
		logger.Error("Reminder sweep failed to fetch due mentorships", zap.Error(err))
		return
	}

	if len(due) == 0 {
		return
	}

	sent := 0
	for _, mentorship := range due {
		if err := j.dispatcher.DispatchReminder(ctx, mentorship.ID); err != nil {
			logger.Error("Failed to dispatch session reminder",
				zap.Int64("mentorship_id", mentorship.ID),
				zap.Error(err))
			continue
		}

		// Mark only after a successful dispatch so a failed one is retried
		// on the next sweep
		if err := j.mentorshipRepo.MarkReminderSent(ctx, mentorship.ID); err != nil {
			logger.Error("Failed to mark reminder sent",
				zap.Int64("mentorship_id", mentorship.ID),
				zap.Error(err))
			continue
		}
		sent++
	}

	logger.Info("Reminder sweep completed",
		zap.Int("due", len(due)),
		zap.Int("sent", sent))
}
