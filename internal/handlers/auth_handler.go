package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/conectamentor/mentoria-api/internal/middleware"
	"github.com/conectamentor/mentoria-api/internal/models"
	"github.com/conectamentor/mentoria-api/internal/services"
)

// Authenticator is the passwordless login surface
type Authenticator interface {
	RequestLogin(ctx context.Context, email string) error
	VerifyLogin(ctx context.Context, token string) (*models.MentorSession, string, error)
	SessionTTLSeconds() int
}

// AuthHandler handles mentor authentication endpoints
type AuthHandler struct {
	service      Authenticator
	cookieDomain string
	cookieSecure bool
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(service Authenticator, cookieDomain string, cookieSecure bool) *AuthHandler {
	return &AuthHandler{
		service:      service,
		cookieDomain: cookieDomain,
		cookieSecure: cookieSecure,
	}
}

// RequestLogin handles POST /api/v1/auth/mentor/request-login
func (h *AuthHandler) RequestLogin(c *gin.Context) {
	var payload models.RequestLoginPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid email format", err)
		return
	}

	err := h.service.RequestLogin(c.Request.Context(), payload.Email)
	if err != nil && !errors.Is(err, services.ErrMentorNotFound) {
		// Unknown emails get the same response as known ones so the endpoint
		// cannot be used to enumerate mentors.
		respondError(c, http.StatusInternalServerError, "Failed to send login link", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Si el correo está registrado, recibirás un enlace de acceso",
	})
}

// VerifyLogin handles POST /api/v1/auth/mentor/verify
func (h *AuthHandler) VerifyLogin(c *gin.Context) {
	var payload models.VerifyLoginPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid token format", err)
		return
	}

	session, token, err := h.service.VerifyLogin(c.Request.Context(), payload.Token)
	if err != nil {
		if errors.Is(err, services.ErrInvalidLoginToken) || errors.Is(err, services.ErrMentorNotFound) {
			respondError(c, http.StatusUnauthorized, "Invalid or expired login token", err)
			return
		}
		respondError(c, http.StatusInternalServerError, "Failed to verify login", err)
		return
	}

	middleware.SetSessionCookie(c, token, h.service.SessionTTLSeconds(), h.cookieDomain, h.cookieSecure)

	c.JSON(http.StatusOK, models.VerifyLoginResponse{
		Success: true,
		Session: session,
	})
}

// Logout handles POST /api/v1/auth/mentor/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	middleware.ClearSessionCookie(c, h.cookieDomain, h.cookieSecure)

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetSession handles GET /api/v1/auth/mentor/session
func (h *AuthHandler) GetSession(c *gin.Context) {
	session, err := middleware.GetMentorSession(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Not authenticated", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"session": session,
	})
}
