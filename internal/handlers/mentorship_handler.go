package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/conectamentor/mentoria-api/internal/middleware"
	"github.com/conectamentor/mentoria-api/internal/models"
)

// MentorshipLifecycle is the mentor-facing mentorship surface
type MentorshipLifecycle interface {
	GetByID(ctx context.Context, mentorID, mentorshipID int64) (*models.Mentorship, error)
	Cancel(ctx context.Context, mentorID, mentorshipID int64) error
	Reschedule(ctx context.Context, mentorID, mentorshipID int64, payload *models.ReschedulePayload) (*models.Mentorship, error)
}

// MentorshipHandler handles confirmed mentorship endpoints
type MentorshipHandler struct {
	service MentorshipLifecycle
}

// NewMentorshipHandler creates a new MentorshipHandler
func NewMentorshipHandler(service MentorshipLifecycle) *MentorshipHandler {
	return &MentorshipHandler{
		service: service,
	}
}

// GetByID handles GET /api/v1/mentor/mentorships/:id
func (h *MentorshipHandler) GetByID(c *gin.Context) {
	session, err := middleware.GetMentorSession(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	mentorshipID, ok := pathID(c, "id")
	if !ok {
		return
	}

	mentorship, err := h.service.GetByID(c.Request.Context(), session.MentorID, mentorshipID)
	if err != nil {
		respondServiceError(c, err, "Failed to fetch mentorship")
		return
	}

	c.JSON(http.StatusOK, mentorship)
}

// Cancel handles POST /api/v1/mentor/mentorships/:id/cancel
// Cancels both the external meeting and the local mentorship.
func (h *MentorshipHandler) Cancel(c *gin.Context) {
	session, err := middleware.GetMentorSession(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	mentorshipID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Cancel(c.Request.Context(), session.MentorID, mentorshipID); err != nil {
		respondServiceError(c, err, "Failed to cancel mentorship")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Reschedule handles POST /api/v1/mentor/mentorships/:id/reschedule
func (h *MentorshipHandler) Reschedule(c *gin.Context) {
	session, err := middleware.GetMentorSession(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	mentorshipID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var payload models.ReschedulePayload
	if bindErr := c.ShouldBindJSON(&payload); bindErr != nil {
		respondValidationError(c, bindErr, "Invalid reschedule payload")
		return
	}

	mentorship, err := h.service.Reschedule(c.Request.Context(), session.MentorID, mentorshipID, &payload)
	if err != nil {
		respondServiceError(c, err, "Failed to reschedule mentorship")
		return
	}

	c.JSON(http.StatusOK, mentorship)
}
