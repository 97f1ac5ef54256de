package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/conectamentor/mentoria-api/internal/models"
)

// RequestIntake is what the public intake endpoint needs from the request
// service.
type RequestIntake interface {
	Submit(ctx context.Context, payload *models.CreateRequestPayload) (*models.MentorshipRequest, error)
}

// RequestHandler handles the public mentorship request intake
type RequestHandler struct {
	service RequestIntake
}

// NewRequestHandler creates a new RequestHandler
func NewRequestHandler(service RequestIntake) *RequestHandler {
	return &RequestHandler{
		service: service,
	}
}

// Submit handles POST /api/v1/requests
// A student contacts a mentor; recaptcha-verified, creates a pending request.
func (h *RequestHandler) Submit(c *gin.Context) {
	var payload models.CreateRequestPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondValidationError(c, err, "Invalid request body")
		return
	}

	request, err := h.service.Submit(c.Request.Context(), &payload)
	if err != nil {
		respondServiceError(c, err, "Failed to submit request")
		return
	}

	c.JSON(http.StatusCreated, request)
}
