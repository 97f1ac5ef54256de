package services_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/conectamentor/mentoria-api/internal/models"
	"github.com/conectamentor/mentoria-api/pkg/zoom"
)

// MockRequestRepository is a mock implementation of repository.RequestDataSource
type MockRequestRepository struct {
	mock.Mock
}

func (m *MockRequestRepository) Create(ctx context.Context, req *models.MentorshipRequest) (int64, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRequestRepository) GetByID(ctx context.Context, id int64) (*models.MentorshipRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MentorshipRequest), args.Error(1)
}

func (m *MockRequestRepository) GetByMentor(ctx context.Context, mentorID int64, statuses []models.RequestStatus) ([]*models.MentorshipRequest, error) {
	args := m.Called(ctx, mentorID, statuses)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.MentorshipRequest), args.Error(1)
}

func (m *MockRequestRepository) UpdateStatus(ctx context.Context, id int64, status models.RequestStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

// MockMentorshipRepository is a mock implementation of repository.MentorshipDataSource
type MockMentorshipRepository struct {
	mock.Mock
}

func (m *MockMentorshipRepository) CreateConfirmed(ctx context.Context, mt *models.Mentorship) (*models.Mentorship, error) {
	args := m.Called(ctx, mt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Mentorship), args.Error(1)
}

func (m *MockMentorshipRepository) GetByID(ctx context.Context, id int64) (*models.Mentorship, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Mentorship), args.Error(1)
}

func (m *MockMentorshipRepository) HasActiveByRequest(ctx context.Context, requestID int64) (bool, error) {
	args := m.Called(ctx, requestID)
	return args.Bool(0), args.Error(1)
}

func (m *MockMentorshipRepository) Cancel(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockMentorshipRepository) UpdateSchedule(ctx context.Context, id int64, scheduledAt time.Time, durationMinutes int) error {
	args := m.Called(ctx, id, scheduledAt, durationMinutes)
	return args.Error(0)
}

func (m *MockMentorshipRepository) GetParties(ctx context.Context, mentorshipID int64) (*models.MentorshipParties, error) {
	args := m.Called(ctx, mentorshipID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MentorshipParties), args.Error(1)
}

func (m *MockMentorshipRepository) GetDueReminders(ctx context.Context, from, to time.Time) ([]*models.Mentorship, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Mentorship), args.Error(1)
}

func (m *MockMentorshipRepository) MarkReminderSent(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockParticipantRepository is a mock implementation of repository.ParticipantDataSource
type MockParticipantRepository struct {
	mock.Mock
}

func (m *MockParticipantRepository) GetMentorByID(ctx context.Context, id int64) (*models.Mentor, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Mentor), args.Error(1)
}

func (m *MockParticipantRepository) GetMentorByEmail(ctx context.Context, email string) (*models.Mentor, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Mentor), args.Error(1)
}

func (m *MockParticipantRepository) UpsertStudent(ctx context.Context, name, email string) (int64, error) {
	args := m.Called(ctx, name, email)
	return args.Get(0).(int64), args.Error(1)
}

// MockDocumentRepository is a mock implementation of repository.DocumentDataSource
type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) Create(ctx context.Context, doc *models.Document) (int64, error) {
	args := m.Called(ctx, doc)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDocumentRepository) ListByMentor(ctx context.Context, mentorID int64) ([]models.Document, error) {
	args := m.Called(ctx, mentorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Document), args.Error(1)
}

// MockProvisioner is a mock implementation of services.MeetingProvisioner
type MockProvisioner struct {
	mock.Mock
}

func (m *MockProvisioner) CreateMeeting(ctx context.Context, spec zoom.MeetingSpec) (*zoom.Meeting, error) {
	args := m.Called(ctx, spec)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*zoom.Meeting), args.Error(1)
}

func (m *MockProvisioner) UpdateMeeting(ctx context.Context, meetingID int64, spec zoom.MeetingSpec) (*zoom.Meeting, error) {
	args := m.Called(ctx, meetingID, spec)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*zoom.Meeting), args.Error(1)
}

func (m *MockProvisioner) CancelMeeting(ctx context.Context, meetingID int64) error {
	args := m.Called(ctx, meetingID)
	return args.Error(0)
}

func (m *MockProvisioner) DefaultTimezone() string {
	args := m.Called()
	return args.String(0)
}

// MockCaptchaVerifier is a mock implementation of services.CaptchaVerifier
type MockCaptchaVerifier struct {
	mock.Mock
}

func (m *MockCaptchaVerifier) Verify(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

// MockDispatcher is a mock implementation of services.NotificationDispatcher
type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) DispatchConfirmation(ctx context.Context, mentorshipID int64, correlationID, dispatchID string) error {
	args := m.Called(ctx, mentorshipID, correlationID, dispatchID)
	return args.Error(0)
}

func (m *MockDispatcher) DispatchReminder(ctx context.Context, mentorshipID int64) error {
	args := m.Called(ctx, mentorshipID)
	return args.Error(0)
}

func (m *MockDispatcher) DispatchRequestReceived(ctx context.Context, requestID int64) error {
	args := m.Called(ctx, requestID)
	return args.Error(0)
}

// MockDocumentStorage is a mock implementation of services.DocumentStorage
type MockDocumentStorage struct {
	mock.Mock
}

func (m *MockDocumentStorage) Upload(ctx context.Context, key, contentType string, data []byte) (string, error) {
	args := m.Called(ctx, key, contentType, data)
	return args.String(0), args.Error(1)
}

func (m *MockDocumentStorage) ValidateContentType(contentType string) error {
	args := m.Called(contentType)
	return args.Error(0)
}

func (m *MockDocumentStorage) ValidateSize(sizeBytes int) error {
	args := m.Called(sizeBytes)
	return args.Error(0)
}
