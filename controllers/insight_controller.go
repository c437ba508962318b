package controllers

import (
	"net/http"
	"strconv"

	"backend/services"

	"github.com/gin-gonic/gin"
)

type InsightController struct {
	Metrics *services.MetricsService
	Reports *services.ReportService
}

func NewInsightController(metrics *services.MetricsService, reports *services.ReportService) *InsightController {
	return &InsightController{Metrics: metrics, Reports: reports}
}

// GET /insights/correlations?days=30
func (h *InsightController) Correlations(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	days, err := strconv.Atoi(c.DefaultQuery("days", "30"))
	if err != nil || days < 7 || days > 90 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "days must be 7-90"})
		return
	}

	daily, err := h.Metrics.DailyMetrics(c.Request.Context(), userID, days)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"window_days":  days,
		"correlations": services.ComputeCorrelations(daily),
	})
}

// GET /insights/reports?limit=10
func (h *InsightController) ListReports(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit < 1 || limit > 50 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be 1-50"})
		return
	}

	reports, err := h.Reports.RecentReports(c.Request.Context(), userID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"reports": reports})
}

// POST /insights/reports
//
// Builds this week's report immediately instead of waiting for the
// Monday scheduler run.
func (h *InsightController) BuildReport(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	report, err := h.Reports.BuildWeeklyReport(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, report)
}
