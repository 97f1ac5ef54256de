package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthHandler reports service liveness and database reachability
type HealthHandler struct {
	dbPing func(timeout time.Duration) error
}

func NewHealthHandler(dbPing func(timeout time.Duration) error) *HealthHandler {
	return &HealthHandler{
		dbPing: dbPing,
	}
}

func (h *HealthHandler) Healthcheck(c *gin.Context) {
	c.Header("Cache-Control", "no-cache, no-store, max-age=0, must-revalidate")

	if err := h.dbPing(2 * time.Second); err != nil {
		attachError(c, err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unavailable",
			"reason": "database unreachable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}
