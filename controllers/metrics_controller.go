package controllers

import (
	"net/http"
	"strconv"

	"backend/services"

	"github.com/gin-gonic/gin"
)

type MetricsController struct {
	Svc *services.MetricsService
}

func NewMetricsController(svc *services.MetricsService) *MetricsController {
	return &MetricsController{Svc: svc}
}

// GET /metrics/daily?days=7
func (h *MetricsController) Daily(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	days, err := strconv.Atoi(c.DefaultQuery("days", "7"))
	if err != nil || days < 1 || days > 90 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "days must be 1-90"})
		return
	}

	metrics, err := h.Svc.DailyMetrics(c.Request.Context(), userID, days)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"days": metrics})
}
