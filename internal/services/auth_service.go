package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/conectamentor/mentoria-api/config"
	"github.com/conectamentor/mentoria-api/internal/models"
	"github.com/conectamentor/mentoria-api/internal/repository"
	apperrors "github.com/conectamentor/mentoria-api/pkg/errors"
	"github.com/conectamentor/mentoria-api/pkg/jwt"
	"github.com/conectamentor/mentoria-api/pkg/kvcache"
	"github.com/conectamentor/mentoria-api/pkg/logger"
	"github.com/conectamentor/mentoria-api/pkg/mail"
	"github.com/conectamentor/mentoria-api/pkg/mailqueue"
)

const loginTokenTTL = 15 * time.Minute

func loginTokenKey(token string) string {
	return fmt.Sprintf("auth:login:%s", token)
}

// AuthService implements passwordless mentor login: a single-use token is
// mailed to the mentor and exchanged for a JWT session cookie.
type AuthService struct {
	participantRepo repository.ParticipantDataSource
	store           kvcache.Store
	queue           *mailqueue.Queue
	tokens          *jwt.TokenManager
	cfg             *config.Config
}

// NewAuthService creates an AuthService
func NewAuthService(
	participantRepo repository.ParticipantDataSource,
	store kvcache.Store,
	queue *mailqueue.Queue,
	tokens *jwt.TokenManager,
	cfg *config.Config,
) *AuthService {
	return &AuthService{
		participantRepo: participantRepo,
		store:           store,
		queue:           queue,
		tokens:          tokens,
		cfg:             cfg,
	}
}

// RequestLogin generates a login token for the mentor and mails the link.
// The token is single use and expires after 15 minutes.
func (s *AuthService) RequestLogin(ctx context.Context, email string) error {
	mentor, err := s.participantRepo.GetMentorByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return ErrMentorNotFound
		}
		return fmt.Errorf("failed to look up mentor: %w", err)
	}

	token := uuid.NewString()
	s.store.Set(loginTokenKey(token), mentor.ID, loginTokenTTL)

	loginURL := fmt.Sprintf("%s/mentor/login?token=%s", s.cfg.Server.BaseURL, token)
	err = s.queue.Enqueue(mailqueue.Job{
		Kind: mailqueue.KindLoginLink,
		Message: mail.Message{
			ToEmail: mentor.Email,
			ToName:  mentor.Name,
			Subject: "Tu enlace de acceso a ConectaMentor",
			HTMLContent: fmt.Sprintf(
				"<p>Hola %s,</p><p>Ingresa a tu cuenta con este enlace (válido por 15 minutos):</p><p><a href=\"%s\">Ingresar</a></p>",
				mentor.Name, loginURL),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to enqueue login mail: %w", err)
	}

	logger.Info("Login link requested",
		zap.Int64("mentor_id", mentor.ID))
	return nil
}

// VerifyLogin exchanges a login token for a session and its signed JWT
func (s *AuthService) VerifyLogin(ctx context.Context, token string) (*models.MentorSession, string, error) {
	key := loginTokenKey(token)
	val, found := s.store.Get(key)
	if !found {
		return nil, "", ErrInvalidLoginToken
	}
	// Single use
	s.store.Delete(key)

	mentorID, ok := val.(int64)
	if !ok {
		return nil, "", ErrInvalidLoginToken
	}

	mentor, err := s.participantRepo.GetMentorByID(ctx, mentorID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, "", ErrMentorNotFound
		}
		return nil, "", fmt.Errorf("failed to load mentor %d: %w", mentorID, err)
	}

	signed, err := s.tokens.GenerateToken(mentor.ID, mentor.Email, mentor.Name)
	if err != nil {
		return nil, "", fmt.Errorf("failed to sign session token: %w", err)
	}

	now := time.Now()
	session := &models.MentorSession{
		MentorID:  mentor.ID,
		Email:     mentor.Email,
		Name:      mentor.Name,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(s.tokens.GetExpirationTime()).Unix(),
	}

	logger.Info("Mentor logged in",
		zap.Int64("mentor_id", mentor.ID))

	return session, signed, nil
}

// SessionTTLSeconds returns the cookie lifetime in seconds
func (s *AuthService) SessionTTLSeconds() int {
	return int(s.tokens.GetExpirationTime().Seconds())
}
