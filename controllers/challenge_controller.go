package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"backend/services"

	"github.com/gin-gonic/gin"
)

type ChallengeController struct {
	Svc *services.ChallengeService
}

func NewChallengeController(svc *services.ChallengeService) *ChallengeController {
	return &ChallengeController{Svc: svc}
}

// GET /challenges/current
func (h *ChallengeController) Current(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	challenge, err := h.Svc.Active(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if challenge == nil {
		c.JSON(http.StatusOK, gin.H{"challenge": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"challenge": challenge})
}

// POST /challenges/generate
//
// On-demand generation for users who dismissed (or never received) this
// week's challenge. The scheduler issues one per user every Monday.
func (h *ChallengeController) Generate(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	challenge, err := h.Svc.GenerateWeekly(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, challenge)
}

// POST /challenges/:id/dismiss
func (h *ChallengeController) Dismiss(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid challenge id"})
		return
	}

	if err := h.Svc.Dismiss(c.Request.Context(), userID, uint(id)); err != nil {
		if errors.Is(err, services.ErrChallengeNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "challenge not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "challenge dismissed"})
}
