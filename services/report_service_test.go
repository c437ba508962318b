package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildWeeklyReportFallback(t *testing.T) {
	db := newTestDB(t)
	g := NewGamificationService(db)
	m := NewMetricsService(db)
	svc := NewReportService(db, m, g, &InsightService{})
	ctx := context.Background()

	user := models.User{Email: "report@example.com", Password: "x", FullName: "Test User"}
	require.NoError(t, db.Create(&user).Error)

	require.NoError(t, db.Create(&models.WellnessEvent{
		UserID: user.ID, Kind: models.EventWater,
		Payload:    mustPayload(t, models.WaterPayload{AmountML: 400}),
		OccurredAt: time.Now(),
	}).Error)

	insight, err := svc.BuildWeeklyReport(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "weekly_report", insight.Kind)
	assert.NotEmpty(t, insight.TraceID)

	var body weeklyReportBody
	require.NoError(t, json.Unmarshal(insight.Body, &body))
	assert.False(t, body.Generated)
	assert.NotEmpty(t, body.Narrative.Summary)

	reports, err := svc.RecentReports(ctx, user.ID, 10)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, insight.ID, reports[0].ID)
}

func TestBuildWeeklyReportUnknownUser(t *testing.T) {
	db := newTestDB(t)
	svc := NewReportService(db, NewMetricsService(db), NewGamificationService(db), &InsightService{})

	_, err := svc.BuildWeeklyReport(context.Background(), 999)
	assert.Error(t, err)
}
