package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/conectamentor/mentoria-api/config"
	"github.com/conectamentor/mentoria-api/internal/models"
	"github.com/conectamentor/mentoria-api/internal/services"
)

func productionConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Server.AppEnv = "production"
	cfg.Server.GinMode = "release"
	return cfg
}

func submitPayload() *models.CreateRequestPayload {
	return &models.CreateRequestPayload{
		MentorID:       7,
		Name:           "Valentina Rojas",
		Email:          "valentina@example.cl",
		Message:        "Quisiera orientación sobre mi carrera",
		RecaptchaToken: "tok-abc",
	}
}

func TestSubmit_Success(t *testing.T) {
	requestRepo := new(MockRequestRepository)
	participantRepo := new(MockParticipantRepository)
	captcha := new(MockCaptchaVerifier)
	dispatcher := new(MockDispatcher)
	service := services.NewRequestService(requestRepo, participantRepo, captcha, dispatcher, productionConfig())
	ctx := context.Background()

	captcha.On("Verify", ctx, "tok-abc").Return(nil).Once()
	participantRepo.On("GetMentorByID", ctx, int64(7)).Return(&models.Mentor{ID: 7, IsActive: true}, nil).Once()
	participantRepo.On("UpsertStudent", ctx, "Valentina Rojas", "valentina@example.cl").Return(int64(9), nil).Once()
	requestRepo.On("Create", ctx, mock.MatchedBy(func(r *models.MentorshipRequest) bool {
		return r.MentorID == 7 && r.StudentID == 9
	})).Return(int64(42), nil).Once()
	dispatcher.On("DispatchRequestReceived", ctx, int64(42)).Return(nil).Once()
	requestRepo.On("GetByID", ctx, int64(42)).Return(&models.MentorshipRequest{
		ID: 42, MentorID: 7, StudentID: 9, Status: models.RequestPending,
	}, nil).Once()

	request, err := service.Submit(ctx, submitPayload())
	require.NoError(t, err)
	assert.Equal(t, int64(42), request.ID)
	assert.Equal(t, models.RequestPending, request.Status)

	requestRepo.AssertExpectations(t)
	participantRepo.AssertExpectations(t)
	captcha.AssertExpectations(t)
	dispatcher.AssertExpectations(t)
}

func TestSubmit_CaptchaFailure(t *testing.T) {
	requestRepo := new(MockRequestRepository)
	participantRepo := new(MockParticipantRepository)
	captcha := new(MockCaptchaVerifier)
	dispatcher := new(MockDispatcher)
	service := services.NewRequestService(requestRepo, participantRepo, captcha, dispatcher, productionConfig())
	ctx := context.Background()

	captcha.On("Verify", ctx, "tok-abc").Return(errors.New("invalid-input-response")).Once()

	_, err := service.Submit(ctx, submitPayload())

	assert.ErrorIs(t, err, services.ErrCaptchaFailed)
	participantRepo.AssertNotCalled(t, "GetMentorByID", mock.Anything, mock.Anything)
	requestRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSubmit_CaptchaSkippedInDevelopment(t *testing.T) {
	requestRepo := new(MockRequestRepository)
	participantRepo := new(MockParticipantRepository)
	captcha := new(MockCaptchaVerifier)
	dispatcher := new(MockDispatcher)
	cfg := &config.Config{}
	cfg.Server.AppEnv = "development"
	service := services.NewRequestService(requestRepo, participantRepo, captcha, dispatcher, cfg)
	ctx := context.Background()

	participantRepo.On("GetMentorByID", ctx, int64(7)).Return(&models.Mentor{ID: 7, IsActive: true}, nil).Once()
	participantRepo.On("UpsertStudent", ctx, mock.Anything, mock.Anything).Return(int64(9), nil).Once()
	requestRepo.On("Create", ctx, mock.Anything).Return(int64(42), nil).Once()
	dispatcher.On("DispatchRequestReceived", ctx, int64(42)).Return(nil).Once()
	requestRepo.On("GetByID", ctx, int64(42)).Return(&models.MentorshipRequest{ID: 42}, nil).Once()

	_, err := service.Submit(ctx, submitPayload())
	require.NoError(t, err)
	captcha.AssertNotCalled(t, "Verify", mock.Anything, mock.Anything)
}

func TestSubmit_InactiveMentor(t *testing.T) {
	requestRepo := new(MockRequestRepository)
	participantRepo := new(MockParticipantRepository)
	captcha := new(MockCaptchaVerifier)
	dispatcher := new(MockDispatcher)
	service := services.NewRequestService(requestRepo, participantRepo, captcha, dispatcher, productionConfig())
	ctx := context.Background()

	captcha.On("Verify", ctx, "tok-abc").Return(nil).Once()
	participantRepo.On("GetMentorByID", ctx, int64(7)).Return(&models.Mentor{ID: 7, IsActive: false}, nil).Once()

	_, err := service.Submit(ctx, submitPayload())

	assert.ErrorIs(t, err, services.ErrAccessDenied)
	requestRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSubmit_NotificationFailureDoesNotFail(t *testing.T) {
	requestRepo := new(MockRequestRepository)
	participantRepo := new(MockParticipantRepository)
	captcha := new(MockCaptchaVerifier)
	dispatcher := new(MockDispatcher)
	service := services.NewRequestService(requestRepo, participantRepo, captcha, dispatcher, productionConfig())
	ctx := context.Background()

	captcha.On("Verify", ctx, "tok-abc").Return(nil).Once()
	participantRepo.On("GetMentorByID", ctx, int64(7)).Return(&models.Mentor{ID: 7, IsActive: true}, nil).Once()
	participantRepo.On("UpsertStudent", ctx, mock.Anything, mock.Anything).Return(int64(9), nil).Once()
	requestRepo.On("Create", ctx, mock.Anything).Return(int64(42), nil).Once()
	dispatcher.On("DispatchRequestReceived", ctx, int64(42)).Return(errors.New("queue full")).Once()
	requestRepo.On("GetByID", ctx, int64(42)).Return(&models.MentorshipRequest{ID: 42}, nil).Once()

	request, err := service.Submit(ctx, submitPayload())
	require.NoError(t, err)
	assert.Equal(t, int64(42), request.ID)
}

func TestGetRequests_Groups(t *testing.T) {
	requestRepo := new(MockRequestRepository)
	service := services.NewRequestService(requestRepo, new(MockParticipantRepository), new(MockCaptchaVerifier), new(MockDispatcher), productionConfig())
	ctx := context.Background()

	requestRepo.On("GetByMentor", ctx, int64(7), models.ActiveStatuses).Return([]*models.MentorshipRequest{
		{ID: 42, Status: models.RequestPending},
		{ID: 43, Status: models.RequestAccepted},
	}, nil).Once()

	response, err := service.GetRequests(ctx, 7, "active")
	require.NoError(t, err)
	assert.Equal(t, 2, response.Total)
	assert.Len(t, response.Requests, 2)
}

func TestGetRequests_UnknownGroup(t *testing.T) {
	requestRepo := new(MockRequestRepository)
	service := services.NewRequestService(requestRepo, new(MockParticipantRepository), new(MockCaptchaVerifier), new(MockDispatcher), productionConfig())

	_, err := service.GetRequests(context.Background(), 7, "archived")
	assert.ErrorIs(t, err, services.ErrInvalidRequestGroup)
	requestRepo.AssertNotCalled(t, "GetByMentor", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetRequestByID_Ownership(t *testing.T) {
	requestRepo := new(MockRequestRepository)
	service := services.NewRequestService(requestRepo, new(MockParticipantRepository), new(MockCaptchaVerifier), new(MockDispatcher), productionConfig())
	ctx := context.Background()

	requestRepo.On("GetByID", ctx, int64(42)).Return(&models.MentorshipRequest{ID: 42, MentorID: 7}, nil)

	_, err := service.GetRequestByID(ctx, 8, 42)
	assert.ErrorIs(t, err, services.ErrAccessDenied)

	request, err := service.GetRequestByID(ctx, 7, 42)
	require.NoError(t, err)
	assert.Equal(t, int64(42), request.ID)
}

func TestUpdateStatus_ValidTransition(t *testing.T) {
	requestRepo := new(MockRequestRepository)
	service := services.NewRequestService(requestRepo, new(MockParticipantRepository), new(MockCaptchaVerifier), new(MockDispatcher), productionConfig())
	ctx := context.Background()

	now := time.Now()
	requestRepo.On("GetByID", ctx, int64(42)).Return(&models.MentorshipRequest{
		ID: 42, MentorID: 7, Status: models.RequestPending,
	}, nil).Once()
	requestRepo.On("UpdateStatus", ctx, int64(42), models.RequestAccepted).Return(nil).Once()
	requestRepo.On("GetByID", ctx, int64(42)).Return(&models.MentorshipRequest{
		ID: 42, MentorID: 7, Status: models.RequestAccepted, RespondedAt: &now,
	}, nil).Once()

	request, err := service.UpdateStatus(ctx, 7, 42, models.RequestAccepted)
	require.NoError(t, err)
	assert.Equal(t, models.RequestAccepted, request.Status)
	requestRepo.AssertExpectations(t)
}

func TestUpdateStatus_InvalidTransition(t *testing.T) {
	requestRepo := new(MockRequestRepository)
	service := services.NewRequestService(requestRepo, new(MockParticipantRepository), new(MockCaptchaVerifier), new(MockDispatcher), productionConfig())
	ctx := context.Background()

	requestRepo.On("GetByID", ctx, int64(42)).Return(&models.MentorshipRequest{
		ID: 42, MentorID: 7, Status: models.RequestRejected,
	}, nil).Once()

	_, err := service.UpdateStatus(ctx, 7, 42, models.RequestAccepted)
	assert.ErrorIs(t, err, services.ErrInvalidStatusTransition)
	requestRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}
