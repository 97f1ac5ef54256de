package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/conectamentor/mentoria-api/internal/middleware"
	"github.com/conectamentor/mentoria-api/internal/models"
)

// RequestLifecycle is the mentor-facing request surface
type RequestLifecycle interface {
	GetRequests(ctx context.Context, mentorID int64, group string) (*models.RequestsResponse, error)
	GetRequestByID(ctx context.Context, mentorID, requestID int64) (*models.MentorshipRequest, error)
	UpdateStatus(ctx context.Context, mentorID, requestID int64, newStatus models.RequestStatus) (*models.MentorshipRequest, error)
}

// Confirmer runs the confirmation workflow for a request
type Confirmer interface {
	Confirm(ctx context.Context, mentorID, requestID int64, payload *models.ConfirmSchedulePayload) (*models.Mentorship, error)
}

// MentorRequestsHandler handles mentor request management endpoints
type MentorRequestsHandler struct {
	requests     RequestLifecycle
	confirmation Confirmer
}

// NewMentorRequestsHandler creates a new MentorRequestsHandler
func NewMentorRequestsHandler(requests RequestLifecycle, confirmation Confirmer) *MentorRequestsHandler {
	return &MentorRequestsHandler{
		requests:     requests,
		confirmation: confirmation,
	}
}

// GetRequests handles GET /api/v1/mentor/requests?group=active|past
func (h *MentorRequestsHandler) GetRequests(c *gin.Context) {
	session, err := middleware.GetMentorSession(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	group := c.Query("group")
	if group == "" {
		respondError(c, http.StatusBadRequest, "Missing required parameter: group", nil)
		return
	}

	response, err := h.requests.GetRequests(c.Request.Context(), session.MentorID, group)
	if err != nil {
		respondServiceError(c, err, "Failed to fetch requests")
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetRequestByID handles GET /api/v1/mentor/requests/:id
func (h *MentorRequestsHandler) GetRequestByID(c *gin.Context) {
	session, err := middleware.GetMentorSession(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	requestID, ok := pathID(c, "id")
	if !ok {
		return
	}

	request, err := h.requests.GetRequestByID(c.Request.Context(), session.MentorID, requestID)
	if err != nil {
		respondServiceError(c, err, "Failed to fetch request")
		return
	}

	c.JSON(http.StatusOK, request)
}

// UpdateStatus handles POST /api/v1/mentor/requests/:id/status
func (h *MentorRequestsHandler) UpdateStatus(c *gin.Context) {
	session, err := middleware.GetMentorSession(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	requestID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var payload models.UpdateRequestStatusPayload
	if bindErr := c.ShouldBindJSON(&payload); bindErr != nil {
		respondError(c, http.StatusBadRequest, "Status must be one of: accepted, rejected, cancelled", bindErr)
		return
	}

	request, err := h.requests.UpdateStatus(c.Request.Context(), session.MentorID, requestID, payload.Status)
	if err != nil {
		respondServiceError(c, err, "Failed to update status")
		return
	}

	c.JSON(http.StatusOK, request)
}

// Confirm handles POST /api/v1/mentor/requests/:id/confirm
// Validates the schedule, provisions the external meeting and persists the
// confirmed mentorship.
func (h *MentorRequestsHandler) Confirm(c *gin.Context) {
	session, err := middleware.GetMentorSession(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	requestID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var payload models.ConfirmSchedulePayload
	if bindErr := c.ShouldBindJSON(&payload); bindErr != nil {
		respondValidationError(c, bindErr, "Invalid confirmation payload")
		return
	}

	mentorship, err := h.confirmation.Confirm(c.Request.Context(), session.MentorID, requestID, &payload)
	if err != nil {
		respondServiceError(c, err, "Failed to confirm request")
		return
	}

	c.JSON(http.StatusCreated, mentorship)
}

// pathID parses a numeric :param, responding 400 on garbage
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, http.StatusBadRequest, "Invalid "+name+" parameter", err)
		return 0, false
	}
	return id, true
}
