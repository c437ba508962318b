package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"backend/models"
	"backend/utils"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ReportService assembles the weekly report: a 7-day metrics window, the
// 30-day correlation scan and the profile snapshot, narrated by the text
// collaborator. The narrative is stored verbatim as an Insight and mailed
// to the user.
type ReportService struct {
	db           *gorm.DB
	metrics      *MetricsService
	gamification *GamificationService
	insights     *InsightService
}

func NewReportService(db *gorm.DB, m *MetricsService, g *GamificationService, i *InsightService) *ReportService {
	return &ReportService{db: db, metrics: m, gamification: g, insights: i}
}

type weeklyReportBody struct {
	WeekEnding   string              `json:"week_ending"`
	Narrative    WeeklyNarrative     `json:"narrative"`
	Correlations []CorrelationResult `json:"correlations"`
	Generated    bool                `json:"generated"` // false when the fallback composer wrote the copy
}

// BuildWeeklyReport produces and stores one weekly report. A failed or
// malformed generation falls back to locally composed copy; a rate-limited
// cycle returns the error so the scheduler can skip this user.
func (s *ReportService) BuildWeeklyReport(ctx context.Context, userID uint) (*models.Insight, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	week, err := s.metrics.DailyMetrics(ctx, userID, 7)
	if err != nil {
		return nil, fmt.Errorf("weekly metrics: %w", err)
	}
	month, err := s.metrics.DailyMetrics(ctx, userID, 30)
	if err != nil {
		return nil, fmt.Errorf("monthly metrics: %w", err)
	}
	correlations := ComputeCorrelations(month)

	profile, err := s.gamification.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}

	rc := ReportContext{
		Days:         week,
		Correlations: correlations,
		Profile:      *profile,
		WellnessGoal: user.WellnessGoal,
	}

	generated := true
	narrative, err := s.insights.GenerateWeeklyNarrative(ctx, rc)
	if err != nil {
		if !errors.Is(err, ErrInsightNotConfigured) {
			// malformed or failed generation: discard the attempt and
			// fall back, never store a partial response
			generated = false
		}
		narrative = composeFallbackNarrative(week, correlations, profile)
		generated = false
	}

	body, err := models.EncodePayload(weeklyReportBody{
		WeekEnding:   dayStart(time.Now()).Format("2006-01-02"),
		Narrative:    *narrative,
		Correlations: correlations,
		Generated:    generated,
	})
	if err != nil {
		return nil, err
	}

	insight := models.Insight{
		UserID:  userID,
		Kind:    "weekly_report",
		Body:    datatypes.JSON(body),
		TraceID: uuid.NewString(),
	}
	if err := s.db.WithContext(ctx).Create(&insight).Error; err != nil {
		return nil, fmt.Errorf("store weekly report: %w", err)
	}

	if user.Email != "" {
		emailBody := narrative.Summary
		if len(narrative.Highlights) > 0 {
			emailBody += "\n\n- " + strings.Join(narrative.Highlights, "\n- ")
		}
		_ = utils.SendWeeklyReportEmail(user.Email, emailBody)
	}
	return &insight, nil
}

// RecentReports lists the user's stored weekly reports, newest first.
func (s *ReportService) RecentReports(ctx context.Context, userID uint, limit int) ([]models.Insight, error) {
	if limit <= 0 {
		limit = 10
	}
	var rows []models.Insight
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND kind = ?", userID, "weekly_report").
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	return rows, nil
}

// composeFallbackNarrative writes plain computed copy so the weekly cadence
// survives a missing or misbehaving generation API.
func composeFallbackNarrative(week []models.DailyMetrics, correlations []CorrelationResult, profile *models.GamificationProfile) *WeeklyNarrative {
	loggedDays := 0
	for _, d := range week {
		if d.Logged {
			loggedDays++
		}
	}

	n := &WeeklyNarrative{
		Summary: fmt.Sprintf("You logged activity on %d of the last 7 days and are level %d with %d XP.",
			loggedDays, profile.Level, profile.TotalXP),
	}
	for _, c := range correlations {
		if len(n.Highlights) == 3 {
			break
		}
		n.Highlights = append(n.Highlights, fmt.Sprintf(
			"%s and %s show a %s %s relationship (r=%.3f over %d days).",
			c.MetricA, c.MetricB, c.Strength, c.Direction, c.Correlation, c.DataPoints))
	}
	if loggedDays < 7 {
		n.Suggestions = append(n.Suggestions, "Try logging at least one thing every day to keep your streak going.")
	}
	return n
}
