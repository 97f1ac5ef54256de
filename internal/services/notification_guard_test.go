package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/conectamentor/mentoria-api/internal/models"
	"github.com/conectamentor/mentoria-api/internal/services"
	"github.com/conectamentor/mentoria-api/pkg/kvcache"
)

func TestNotificationGuard_DeduplicatesWithinWindow(t *testing.T) {
	dispatcher := new(MockDispatcher)
	guard := services.NewNotificationGuard(kvcache.NewMemoryStore(time.Minute), dispatcher, time.Minute)
	mentorship := &models.Mentorship{ID: 91}

	dispatcher.On("DispatchConfirmation", mock.Anything, int64(91), "corr-1", mock.Anything).Return(nil).Once()

	guard.OnConfirmed(context.Background(), mentorship, "corr-1")
	guard.OnConfirmed(context.Background(), mentorship, "corr-1")
	guard.OnConfirmed(context.Background(), mentorship, "corr-1")

	dispatcher.AssertExpectations(t)
	dispatcher.AssertNumberOfCalls(t, "DispatchConfirmation", 1)
}

func TestNotificationGuard_DistinctCorrelationsDispatch(t *testing.T) {
	dispatcher := new(MockDispatcher)
	guard := services.NewNotificationGuard(kvcache.NewMemoryStore(time.Minute), dispatcher, time.Minute)
	mentorship := &models.Mentorship{ID: 91}

	dispatcher.On("DispatchConfirmation", mock.Anything, int64(91), "corr-1", mock.Anything).Return(nil).Once()
	dispatcher.On("DispatchConfirmation", mock.Anything, int64(91), "corr-2", mock.Anything).Return(nil).Once()

	guard.OnConfirmed(context.Background(), mentorship, "corr-1")
	guard.OnConfirmed(context.Background(), mentorship, "corr-2")

	dispatcher.AssertExpectations(t)
}

func TestNotificationGuard_RefiresAfterTTLExpiry(t *testing.T) {
	dispatcher := new(MockDispatcher)
	guard := services.NewNotificationGuard(kvcache.NewMemoryStore(10*time.Millisecond), dispatcher, 20*time.Millisecond)
	mentorship := &models.Mentorship{ID: 91}

	dispatcher.On("DispatchConfirmation", mock.Anything, int64(91), "corr-1", mock.Anything).Return(nil).Twice()

	guard.OnConfirmed(context.Background(), mentorship, "corr-1")
	time.Sleep(50 * time.Millisecond)
	guard.OnConfirmed(context.Background(), mentorship, "corr-1")

	dispatcher.AssertExpectations(t)
}

func TestNotificationGuard_SwallowsDispatchFailure(t *testing.T) {
	dispatcher := new(MockDispatcher)
	guard := services.NewNotificationGuard(kvcache.NewMemoryStore(time.Minute), dispatcher, time.Minute)
	mentorship := &models.Mentorship{ID: 91}

	dispatcher.On("DispatchConfirmation", mock.Anything, int64(91), "corr-1", mock.Anything).
		Return(errors.New("smtp relay down")).Once()

	// Must not panic or propagate: notifications never fail a confirmation.
	guard.OnConfirmed(context.Background(), mentorship, "corr-1")

	dispatcher.AssertExpectations(t)
}
