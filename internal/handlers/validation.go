package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// ValidationError is one field-level validation failure
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// respondValidationError turns a bind error into a per-field JSON response.
// Non-validator errors (malformed JSON, wrong types) fall back to the given
// message.
func respondValidationError(c *gin.Context, err error, fallback string) {
	attachError(c, err)

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": fallback})
		return
	}

	details := make([]ValidationError, 0, len(validationErrors))
	for _, fieldError := range validationErrors {
		details = append(details, ValidationError{
			Field:   fieldError.Field(),
			Message: fieldErrorMessage(fieldError),
		})
	}

	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "Validation failed",
		"details": details,
	})
}

func fieldErrorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return "Invalid email format"
	case "min":
		return fe.Field() + " must be at least " + fe.Param()
	case "max":
		return fe.Field() + " must not exceed " + fe.Param()
	case "oneof":
		return fe.Field() + " must be one of: " + fe.Param()
	default:
		return fe.Field() + " is invalid"
	}
}
