package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/conectamentor/mentoria-api/internal/middleware"
	"github.com/conectamentor/mentoria-api/internal/models"
)

// DocumentManager is the mentor-facing document surface
type DocumentManager interface {
	Upload(ctx context.Context, mentorID int64, kind models.DocumentKind, fileName, contentType string, data []byte) (*models.Document, error)
	List(ctx context.Context, mentorID int64) (*models.DocumentsResponse, error)
}

// DocumentsHandler handles mentor document upload and listing
type DocumentsHandler struct {
	service DocumentManager
}

// NewDocumentsHandler creates a new DocumentsHandler
func NewDocumentsHandler(service DocumentManager) *DocumentsHandler {
	return &DocumentsHandler{
		service: service,
	}
}

// Upload handles POST /api/v1/mentor/documents (multipart form: kind + file)
func (h *DocumentsHandler) Upload(c *gin.Context) {
	session, err := middleware.GetMentorSession(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	var payload models.UploadDocumentPayload
	if bindErr := c.ShouldBind(&payload); bindErr != nil {
		respondError(c, http.StatusBadRequest, "Kind must be one of: cv, certificate", bindErr)
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondError(c, http.StatusBadRequest, "Missing file", err)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, http.StatusBadRequest, "Unreadable file", err)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Unreadable file", err)
		return
	}

	doc, err := h.service.Upload(
		c.Request.Context(),
		session.MentorID,
		payload.Kind,
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		data,
	)
	if err != nil {
		respondServiceError(c, err, "Failed to upload document")
		return
	}

	c.JSON(http.StatusCreated, doc)
}

// List handles GET /api/v1/mentor/documents
func (h *DocumentsHandler) List(c *gin.Context) {
	session, err := middleware.GetMentorSession(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	response, err := h.service.List(c.Request.Context(), session.MentorID)
	if err != nil {
		respondServiceError(c, err, "Failed to list documents")
		return
	}

	c.JSON(http.StatusOK, response)
}
