package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/conectamentor/mentoria-api/internal/models"
	"github.com/conectamentor/mentoria-api/pkg/kvcache"
	"github.com/conectamentor/mentoria-api/pkg/logger"
	"github.com/conectamentor/mentoria-api/pkg/metrics"
)

// NotificationGuard sits between the confirmation workflow and mail
// dispatch. It deduplicates by (mentorship, correlation) within a TTL window
// so a double-fired signal produces one notification, and it swallows every
// dispatch failure: notifications never fail a confirmation.
type NotificationGuard struct {
	store      kvcache.Store
	dispatcher NotificationDispatcher
	dedupTTL   time.Duration
}

// NewNotificationGuard creates a guard with the given dedup window
func NewNotificationGuard(store kvcache.Store, dispatcher NotificationDispatcher, dedupTTL time.Duration) *NotificationGuard {
	if dedupTTL <= 0 {
		dedupTTL = 120 * time.Second
	}
	return &NotificationGuard{
		store:      store,
		dispatcher: dispatcher,
		dedupTTL:   dedupTTL,
	}
}

func dedupKey(mentorshipID int64, correlationID string) string {
	return fmt.Sprintf("notify:confirmation:%d:%s", mentorshipID, correlationID)
}

// OnConfirmed handles one confirmation signal. Check-then-set on the lock is
// best effort; concurrent duplicates inside the race window are bounded by
// the TTL and tolerable for email.
func (g *NotificationGuard) OnConfirmed(ctx context.Context, mentorship *models.Mentorship, correlationID string) {
	key := dedupKey(mentorship.ID, correlationID)

	if g.store.Exists(key) {
		metrics.NotificationsDeduplicated.WithLabelValues().Inc()
		logger.Info("Skipping duplicate confirmation notification",
			zap.Int64("mentorship_id", mentorship.ID),
			zap.String("correlation_id", correlationID))
		return
	}
	g.store.Set(key, true, g.dedupTTL)

	dispatchID := uuid.NewString()
	if err := g.dispatcher.DispatchConfirmation(ctx, mentorship.ID, correlationID, dispatchID); err != nil {
		logger.Error("Failed to dispatch confirmation notification",
			zap.Int64("mentorship_id", mentorship.ID),
			zap.String("correlation_id", correlationID),
			zap.String("dispatch_id", dispatchID),
			zap.Error(err))
		return
	}

	metrics.NotificationsEnqueued.WithLabelValues("mentorship_confirmed").Inc()
	logger.Info("Confirmation notification dispatched",
		zap.Int64("mentorship_id", mentorship.ID),
		zap.String("correlation_id", correlationID),
		zap.String("dispatch_id", dispatchID))
}
