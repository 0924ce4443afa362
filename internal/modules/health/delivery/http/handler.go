package http

import (
	"net/http"
	"time"

	healthService "anoa.com/droneanalytics/internal/modules/health/service"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type HealthHandler struct {
	healthService healthService.HealthService
	now           func() time.Time
}

func NewHealthHandler(healthService healthService.HealthService) *HealthHandler {
	return &HealthHandler{
		healthService: healthService,
		now:           time.Now,
	}
}

func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "OK",
		"message":   "Drone Analytics API is running",
		"timestamp": h.now().UTC().Format(time.RFC3339),
	})
}

func (h *HealthHandler) DBTest(c *gin.Context) {
	count, err := h.healthService.CountUsers(c.Request.Context())
	if err != nil {
		logrus.WithError(err).Error("database connectivity check failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"status": "Database error",
			"error":  err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "Database connected",
		"userCount": count,
		"message":   "Database connection is healthy",
	})
}
