package controllers

import (
	"net/http"

	"backend/services"

	"github.com/gin-gonic/gin"
)

type AchievementController struct {
	Svc *services.AchievementService
}

func NewAchievementController(svc *services.AchievementService) *AchievementController {
	return &AchievementController{Svc: svc}
}

// GET /achievements
func (h *AchievementController) List(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	achievements, err := h.Svc.WithStatus(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"achievements": achievements})
}

// POST /achievements/evaluate
//
// Manual re-check, useful after backfilling events. The normal path is
// the evaluation that runs inside the event pipeline.
func (h *AchievementController) Evaluate(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	unlocked, err := h.Svc.Evaluate(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"unlocked": unlocked})
}
