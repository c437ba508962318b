package services

import (
	"context"
	"testing"
	"time"

	"backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newAchievementFixture(t *testing.T) (*AchievementService, *GamificationService, *gorm.DB) {
	db := newTestDB(t)
	g := NewGamificationService(db)
	return NewAchievementService(db, g), g, db
}

func awardedCodes(defs []models.AchievementDefinition) []string {
	codes := make([]string, 0, len(defs))
	for _, d := range defs {
		codes = append(codes, d.Code)
	}
	return codes
}

func TestEvaluateCountCondition(t *testing.T) {
	svc, g, db := newAchievementFixture(t)
	ctx := context.Background()

	require.NoError(t, db.Create(&models.WellnessEvent{
		UserID: 1, Kind: models.EventWater,
		Payload:    mustPayload(t, models.WaterPayload{AmountML: 250}),
		OccurredAt: time.Now(),
	}).Error)

	awarded, err := svc.Evaluate(ctx, 1)
	require.NoError(t, err)
	assert.Contains(t, awardedCodes(awarded), "first_sip")

	// the reward lands on the profile through the delta primitive
	p, err := g.Profile(ctx, 1)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, p.TotalXP, int64(10))

	// rewards never cascade into further awards: re-running is a no-op
	again, err := svc.Evaluate(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, again)

	var rows int64
	require.NoError(t, db.Model(&models.EarnedAchievement{}).
		Where("user_id = ? AND code = ?", 1, "first_sip").Count(&rows).Error)
	assert.Equal(t, int64(1), rows)
}

func TestEvaluateStreakCondition(t *testing.T) {
	svc, _, db := newAchievementFixture(t)
	ctx := context.Background()

	require.NoError(t, db.Create(&models.Habit{
		UserID: 1, Name: "Walk", Status: "active", CurrentStreak: 14,
	}).Error)

	awarded, err := svc.Evaluate(ctx, 1)
	require.NoError(t, err)

	codes := awardedCodes(awarded)
	assert.Contains(t, codes, "week_warrior")
	assert.Contains(t, codes, "fortnight_force")
	assert.NotContains(t, codes, "unstoppable")
}

func TestEvaluateLevelAndXPConditions(t *testing.T) {
	svc, g, _ := newAchievementFixture(t)
	ctx := context.Background()

	_, err := g.ApplyXPDelta(ctx, 1, 2000)
	require.NoError(t, err)

	awarded, err := svc.Evaluate(ctx, 1)
	require.NoError(t, err)

	codes := awardedCodes(awarded)
	assert.Contains(t, codes, "level_5")
	assert.Contains(t, codes, "xp_1000")
	assert.NotContains(t, codes, "level_10")
	assert.NotContains(t, codes, "xp_10000")
}

func TestEvaluateSpecialDailyConditions(t *testing.T) {
	svc, _, db := newAchievementFixture(t)
	ctx := context.Background()

	now := time.Now()
	kinds := []models.EventKind{
		models.EventWater, models.EventMood, models.EventSleep,
		models.EventJournal, models.EventMeal,
	}
	for _, k := range kinds {
		require.NoError(t, db.Create(&models.WellnessEvent{
			UserID: 1, Kind: k, OccurredAt: now,
		}).Error)
	}

	awarded, err := svc.Evaluate(ctx, 1)
	require.NoError(t, err)

	codes := awardedCodes(awarded)
	assert.Contains(t, codes, "busy_bee")     // 5 actions today
	assert.Contains(t, codes, "well_rounded") // 5 distinct kinds today
}

func TestEvaluateActiveDayStreak(t *testing.T) {
	svc, _, db := newAchievementFixture(t)
	ctx := context.Background()

	now := time.Now()
	for i := 0; i < 7; i++ {
		require.NoError(t, db.Create(&models.WellnessEvent{
			UserID: 1, Kind: models.EventJournal,
			OccurredAt: now.AddDate(0, 0, -i),
		}).Error)
	}

	awarded, err := svc.Evaluate(ctx, 1)
	require.NoError(t, err)
	assert.Contains(t, awardedCodes(awarded), "daily_devotion")
}

func TestEvaluateActiveDayStreakBrokenByGap(t *testing.T) {
	svc, _, db := newAchievementFixture(t)
	ctx := context.Background()

	now := time.Now()
	for i := 0; i < 8; i++ {
		if i == 3 {
			continue // a missed day resets the run
		}
		require.NoError(t, db.Create(&models.WellnessEvent{
			UserID: 1, Kind: models.EventJournal,
			OccurredAt: now.AddDate(0, 0, -i),
		}).Error)
	}

	awarded, err := svc.Evaluate(ctx, 1)
	require.NoError(t, err)
	assert.NotContains(t, awardedCodes(awarded), "daily_devotion")
}

func TestWithStatus(t *testing.T) {
	svc, _, db := newAchievementFixture(t)
	ctx := context.Background()

	require.NoError(t, db.Create(&models.WellnessEvent{
		UserID: 1, Kind: models.EventWater,
		Payload:    mustPayload(t, models.WaterPayload{AmountML: 100}),
		OccurredAt: time.Now(),
	}).Error)
	_, err := svc.Evaluate(ctx, 1)
	require.NoError(t, err)

	all, err := svc.WithStatus(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, all, len(AchievementCatalog))

	byCode := map[string]AchievementWithStatus{}
	for _, a := range all {
		byCode[a.Code] = a
	}
	assert.True(t, byCode["first_sip"].Earned)
	assert.NotNil(t, byCode["first_sip"].EarnedAt)
	assert.False(t, byCode["hydration_hero"].Earned)
}

func TestValidateCatalogRejectsBadDefinitions(t *testing.T) {
	bad := []models.AchievementDefinition{{
		Code: "broken", Title: "Broken",
		Condition: models.AchievementCondition{Type: models.ConditionCount, Metric: "nope", Target: 1},
	}}
	assert.Error(t, validateCatalog(bad))

	bad[0].Condition = models.AchievementCondition{Type: models.ConditionLevel, Target: 0}
	assert.Error(t, validateCatalog(bad))

	bad[0].Condition = models.AchievementCondition{Type: "mystery", Target: 1}
	assert.Error(t, validateCatalog(bad))

	assert.NoError(t, validateCatalog(AchievementCatalog))
}
