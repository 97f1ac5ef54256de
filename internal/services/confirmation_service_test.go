package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/conectamentor/mentoria-api/internal/models"
	"github.com/conectamentor/mentoria-api/internal/services"
	apperrors "github.com/conectamentor/mentoria-api/pkg/errors"
	"github.com/conectamentor/mentoria-api/pkg/kvcache"
	"github.com/conectamentor/mentoria-api/pkg/zoom"
)

func newGuard(dispatcher services.NotificationDispatcher) *services.NotificationGuard {
	return services.NewNotificationGuard(kvcache.NewMemoryStore(time.Minute), dispatcher, 2*time.Minute)
}

func futureDate(days int) string {
	return time.Now().AddDate(0, 0, days).Format("2006-01-02")
}

func acceptedRequest() *models.MentorshipRequest {
	return &models.MentorshipRequest{
		ID:          42,
		MentorID:    7,
		StudentID:   9,
		Status:      models.RequestAccepted,
		StudentName: "Valentina Rojas",
	}
}

func confirmPayload(duration int) *models.ConfirmSchedulePayload {
	return &models.ConfirmSchedulePayload{
		Fecha:           futureDate(2),
		Hora:            "15:00",
		DuracionMinutos: duration,
		Topic:           "Plan de carrera",
		Timezone:        "America/Santiago",
	}
}

func TestConfirm_EndToEnd(t *testing.T) {
	requestRepo := new(MockRequestRepository)
	mentorshipRepo := new(MockMentorshipRepository)
	provisioner := new(MockProvisioner)
	dispatcher := new(MockDispatcher)
	service := services.NewConfirmationService(requestRepo, mentorshipRepo, provisioner, newGuard(dispatcher))
	provisioner.On("DefaultTimezone").Return("America/Santiago")
	ctx := context.Background()

	requestRepo.On("GetByID", ctx, int64(42)).Return(acceptedRequest(), nil).Once()
	mentorshipRepo.On("HasActiveByRequest", ctx, int64(42)).Return(false, nil).Once()
	provisioner.On("CreateMeeting", ctx, mock.MatchedBy(func(spec zoom.MeetingSpec) bool {
		return spec.Topic == "Plan de carrera" && spec.Duration == 60
	})).Return(&zoom.Meeting{
		ID:       87451628803,
		JoinURL:  "https://zoom.test/j/87451628803",
		StartURL: "https://zoom.test/s/87451628803",
		Password: "abc123",
	}, nil).Once()
	mentorshipRepo.On("CreateConfirmed", ctx, mock.MatchedBy(func(m *models.Mentorship) bool {
		return m.RequestID == 42 && m.MentorID == 7 && m.StudentID == 9 &&
			m.MeetingID == 87451628803 && m.JoinURL == "https://zoom.test/j/87451628803"
	})).Return(&models.Mentorship{
		ID:        91,
		RequestID: 42,
		MentorID:  7,
		StudentID: 9,
		MeetingID: 87451628803,
		JoinURL:   "https://zoom.test/j/87451628803",
		Status:    models.MentorshipScheduled,
	}, nil).Once()
	dispatcher.On("DispatchConfirmation", ctx, int64(91), mock.Anything, mock.Anything).Return(nil).Once()

	mentorship, err := service.Confirm(ctx, 7, 42, confirmPayload(60))
	require.NoError(t, err)
	assert.Equal(t, int64(91), mentorship.ID)
	assert.Equal(t, models.MentorshipScheduled, mentorship.Status)

	requestRepo.AssertExpectations(t)
	mentorshipRepo.AssertExpectations(t)
	provisioner.AssertExpectations(t)
	dispatcher.AssertExpectations(t)
}

func TestConfirm_ProviderRateLimitedLeavesNoState(t *testing.T) {
	requestRepo := new(MockRequestRepository)
	mentorshipRepo := new(MockMentorshipRepository)
	provisioner := new(MockProvisioner)
	dispatcher := new(MockDispatcher)
	service := services.NewConfirmationService(requestRepo, mentorshipRepo, provisioner, newGuard(dispatcher))
	provisioner.On("DefaultTimezone").Return("America/Santiago")
	ctx := context.Background()

	requestRepo.On("GetByID", ctx, int64(42)).Return(acceptedRequest(), nil).Once()
	mentorshipRepo.On("HasActiveByRequest", ctx, int64(42)).Return(false, nil).Once()
	provisioner.On("CreateMeeting", ctx, mock.Anything).
		Return(nil, &zoom.RateLimitedError{RetryAfter: 12 * time.Second}).Once()

	_, err := service.Confirm(ctx, 7, 42, confirmPayload(60))

	var rateErr *zoom.RateLimitedError
	require.ErrorAs(t, err, &rateErr)
	mentorshipRepo.AssertNotCalled(t, "CreateConfirmed", mock.Anything, mock.Anything)
	dispatcher.AssertNotCalled(t, "DispatchConfirmation", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestConfirm_MalformedProviderResponseLeavesNoState(t *testing.T) {
	requestRepo := new(MockRequestRepository)
	mentorshipRepo := new(MockMentorshipRepository)
	provisioner := new(MockProvisioner)
	dispatcher := new(MockDispatcher)
	service := services.NewConfirmationService(requestRepo, mentorshipRepo, provisioner, newGuard(dispatcher))
	provisioner.On("DefaultTimezone").Return("America/Santiago")
	ctx := context.Background()

	requestRepo.On("GetByID", ctx, int64(42)).Return(acceptedRequest(), nil).Once()
	mentorshipRepo.On("HasActiveByRequest", ctx, int64(42)).Return(false, nil).Once()
	provisioner.On("CreateMeeting", ctx, mock.Anything).
		Return(nil, &zoom.ProviderError{StatusCode: 201, Message: "malformed meeting response: missing [join_url]"}).Once()

	_, err := service.Confirm(ctx, 7, 42, confirmPayload(60))

	var provErr *zoom.ProviderError
	require.ErrorAs(t, err, &provErr)
	mentorshipRepo.AssertNotCalled(t, "CreateConfirmed", mock.Anything, mock.Anything)
}

func TestConfirm_GateDenialSkipsProvider(t *testing.T) {
	requestRepo := new(MockRequestRepository)
	mentorshipRepo := new(MockMentorshipRepository)
	provisioner := new(MockProvisioner)
	dispatcher := new(MockDispatcher)
	service := services.NewConfirmationService(requestRepo, mentorshipRepo, provisioner, newGuard(dispatcher))
	provisioner.On("DefaultTimezone").Return("America/Santiago")
	ctx := context.Background()

	requestRepo.On("GetByID", ctx, int64(42)).Return(acceptedRequest(), nil).Once()
	mentorshipRepo.On("HasActiveByRequest", ctx, int64(42)).Return(true, nil).Once()

	_, err := service.Confirm(ctx, 7, 42, confirmPayload(60))

	assert.ErrorIs(t, err, services.ErrAlreadyConfirmed)
	provisioner.AssertNotCalled(t, "CreateMeeting", mock.Anything, mock.Anything)
}

func TestConfirm_DurationBounds(t *testing.T) {
	tests := []struct {
		name     string
		duration int
		valid    bool
	}{
		{"29 rejected", 29, false},
		{"30 accepted", 30, true},
		{"180 accepted", 180, true},
		{"181 rejected", 181, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requestRepo := new(MockRequestRepository)
			mentorshipRepo := new(MockMentorshipRepository)
			provisioner := new(MockProvisioner)
			dispatcher := new(MockDispatcher)
			service := services.NewConfirmationService(requestRepo, mentorshipRepo, provisioner, newGuard(dispatcher))
			provisioner.On("DefaultTimezone").Return("America/Santiago")
			ctx := context.Background()

			if tt.valid {
				requestRepo.On("GetByID", ctx, int64(42)).Return(acceptedRequest(), nil).Once()
				mentorshipRepo.On("HasActiveByRequest", ctx, int64(42)).Return(false, nil).Once()
				provisioner.On("CreateMeeting", ctx, mock.Anything).Return(&zoom.Meeting{
					ID: 1, JoinURL: "https://zoom.test/j/1", StartURL: "https://zoom.test/s/1",
				}, nil).Once()
				mentorshipRepo.On("CreateConfirmed", ctx, mock.Anything).Return(&models.Mentorship{
					ID: 91, RequestID: 42, Status: models.MentorshipScheduled,
				}, nil).Once()
				dispatcher.On("DispatchConfirmation", ctx, int64(91), mock.Anything, mock.Anything).Return(nil).Once()
			}

			_, err := service.Confirm(ctx, 7, 42, confirmPayload(tt.duration))
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, services.ErrInvalidDuration)
				requestRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestConfirm_DateBeforeYesterdayRejected(t *testing.T) {
	requestRepo := new(MockRequestRepository)
	mentorshipRepo := new(MockMentorshipRepository)
	provisioner := new(MockProvisioner)
	dispatcher := new(MockDispatcher)
	service := services.NewConfirmationService(requestRepo, mentorshipRepo, provisioner, newGuard(dispatcher))
	provisioner.On("DefaultTimezone").Return("America/Santiago")
	ctx := context.Background()

	payload := confirmPayload(60)
	payload.Fecha = time.Now().AddDate(0, 0, -3).Format("2006-01-02")

	_, err := service.Confirm(ctx, 7, 42, payload)

	assert.ErrorIs(t, err, services.ErrScheduleInPast)
	provisioner.AssertNotCalled(t, "CreateMeeting", mock.Anything, mock.Anything)
}

func TestConfirm_YesterdayAllowed(t *testing.T) {
	requestRepo := new(MockRequestRepository)
	mentorshipRepo := new(MockMentorshipRepository)
	provisioner := new(MockProvisioner)
	dispatcher := new(MockDispatcher)
	service := services.NewConfirmationService(requestRepo, mentorshipRepo, provisioner, newGuard(dispatcher))
	provisioner.On("DefaultTimezone").Return("America/Santiago")
	ctx := context.Background()

	requestRepo.On("GetByID", ctx, int64(42)).Return(acceptedRequest(), nil).Once()
	mentorshipRepo.On("HasActiveByRequest", ctx, int64(42)).Return(false, nil).Once()
	provisioner.On("CreateMeeting", ctx, mock.Anything).Return(&zoom.Meeting{
		ID: 2, JoinURL: "https://zoom.test/j/2", StartURL: "https://zoom.test/s/2",
	}, nil).Once()
	mentorshipRepo.On("CreateConfirmed", ctx, mock.Anything).Return(&models.Mentorship{
		ID: 92, RequestID: 42, Status: models.MentorshipScheduled,
	}, nil).Once()
	dispatcher.On("DispatchConfirmation", ctx, int64(92), mock.Anything, mock.Anything).Return(nil).Once()

	payload := confirmPayload(60)
	payload.Fecha = time.Now().AddDate(0, 0, -1).Format("2006-01-02")
	payload.Timezone = "UTC"

	_, err := service.Confirm(ctx, 7, 42, payload)
	assert.NoError(t, err)
}

func TestConfirm_PersistenceFailureSurfacesConsistencyAlert(t *testing.T) {
	requestRepo := new(MockRequestRepository)
	mentorshipRepo := new(MockMentorshipRepository)
	provisioner := new(MockProvisioner)
	dispatcher := new(MockDispatcher)
	service := services.NewConfirmationService(requestRepo, mentorshipRepo, provisioner, newGuard(dispatcher))
	provisioner.On("DefaultTimezone").Return("America/Santiago")
	ctx := context.Background()

	requestRepo.On("GetByID", ctx, int64(42)).Return(acceptedRequest(), nil).Once()
	mentorshipRepo.On("HasActiveByRequest", ctx, int64(42)).Return(false, nil).Once()
	provisioner.On("CreateMeeting", ctx, mock.Anything).Return(&zoom.Meeting{
		ID: 87451628803, JoinURL: "https://zoom.test/j/87451628803", StartURL: "https://zoom.test/s/87451628803",
	}, nil).Once()
	mentorshipRepo.On("CreateConfirmed", ctx, mock.Anything).
		Return(nil, errors.New("connection refused")).Once()

	_, err := service.Confirm(ctx, 7, 42, confirmPayload(60))

	require.Error(t, err)
	// The error names the orphaned meeting for manual reconciliation
	assert.Contains(t, err.Error(), "87451628803")
	// No compensating cancellation of the external meeting
	provisioner.AssertNotCalled(t, "CancelMeeting", mock.Anything, mock.Anything)
	dispatcher.AssertNotCalled(t, "DispatchConfirmation", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestConfirm_UnknownRequestMapsToNotFound(t *testing.T) {
	requestRepo := new(MockRequestRepository)
	mentorshipRepo := new(MockMentorshipRepository)
	provisioner := new(MockProvisioner)
	dispatcher := new(MockDispatcher)
	service := services.NewConfirmationService(requestRepo, mentorshipRepo, provisioner, newGuard(dispatcher))
	provisioner.On("DefaultTimezone").Return("America/Santiago")
	ctx := context.Background()

	requestRepo.On("GetByID", ctx, int64(42)).
		Return(nil, apperrors.NotFoundError("mentorship request")).Once()

	_, err := service.Confirm(ctx, 7, 42, confirmPayload(60))

	assert.ErrorIs(t, err, services.ErrRequestNotFound)
	provisioner.AssertNotCalled(t, "CreateMeeting", mock.Anything, mock.Anything)
}

func TestConfirm_StorageFailureIsNotReportedAsNotFound(t *testing.T) {
	requestRepo := new(MockRequestRepository)
	mentorshipRepo := new(MockMentorshipRepository)
	provisioner := new(MockProvisioner)
	dispatcher := new(MockDispatcher)
	service := services.NewConfirmationService(requestRepo, mentorshipRepo, provisioner, newGuard(dispatcher))
	provisioner.On("DefaultTimezone").Return("America/Santiago")
	ctx := context.Background()

	requestRepo.On("GetByID", ctx, int64(42)).
		Return(nil, errors.New("connection refused")).Once()

	_, err := service.Confirm(ctx, 7, 42, confirmPayload(60))

	require.Error(t, err)
	assert.NotErrorIs(t, err, services.ErrRequestNotFound)
	provisioner.AssertNotCalled(t, "CreateMeeting", mock.Anything, mock.Anything)
}
