package controllers

import (
	"errors"
	"net/http"

	"backend/services"

	"github.com/gin-gonic/gin"
)

type GamificationController struct {
	Svc     *services.GamificationService
	Streaks *services.StreakService
}

func NewGamificationController(svc *services.GamificationService, streaks *services.StreakService) *GamificationController {
	return &GamificationController{Svc: svc, Streaks: streaks}
}

// GET /gamification/profile
func (h *GamificationController) Profile(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	profile, err := h.Svc.Profile(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	best, err := h.Streaks.BestStreak(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"profile":           profile,
		"best_streak":       best,
		"streak_multiplier": services.StreakMultiplier(best),
	})
}

// POST /gamification/streak-freeze
func (h *GamificationController) UseStreakFreeze(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	profile, err := h.Streaks.UseStreakFreeze(c.Request.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNoFreezesAvailable), errors.Is(err, services.ErrFreezeCooldown):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "streak freeze applied", "profile": profile})
}
