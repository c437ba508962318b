package services

import (
	"context"
	"testing"
	"time"

	"backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func eventAt(t *testing.T, userID uint, kind models.EventKind, payload any, at time.Time) models.WellnessEvent {
	t.Helper()
	return models.WellnessEvent{
		UserID:     userID,
		Kind:       kind,
		Payload:    mustPayload(t, payload),
		OccurredAt: at,
		Source:     models.SourceManual,
	}
}

func TestAggregateDailyWindowIsGapFree(t *testing.T) {
	start := time.Date(2026, 8, 10, 0, 0, 0, 0, time.Local)

	events := []models.WellnessEvent{
		eventAt(t, 1, models.EventWater, models.WaterPayload{AmountML: 250}, start.Add(9*time.Hour)),
		eventAt(t, 1, models.EventWater, models.WaterPayload{AmountML: 500}, start.Add(14*time.Hour)),
		eventAt(t, 1, models.EventJournal, models.JournalPayload{WordCount: 120}, start.AddDate(0, 0, 2).Add(20*time.Hour)),
		// outside the window, must be ignored
		eventAt(t, 1, models.EventWater, models.WaterPayload{AmountML: 999}, start.AddDate(0, 0, -1)),
		eventAt(t, 1, models.EventWater, models.WaterPayload{AmountML: 999}, start.AddDate(0, 0, 5)),
	}

	days := AggregateDaily(events, start, 4)
	require.Len(t, days, 4)

	assert.True(t, days[0].Logged)
	assert.Equal(t, 750, days[0].HydrationML)
	assert.False(t, days[1].Logged)
	assert.True(t, days[2].Logged)
	assert.Equal(t, 0, days[2].HydrationML) // journal day, no numeric aggregate
	assert.False(t, days[3].Logged)

	for i, d := range days {
		assert.Equal(t, start.AddDate(0, 0, i), d.Date)
	}
}

func TestAggregateDailyDomains(t *testing.T) {
	start := time.Date(2026, 8, 10, 0, 0, 0, 0, time.Local)
	noon := start.Add(12 * time.Hour)

	events := []models.WellnessEvent{
		eventAt(t, 1, models.EventMeal, models.MealPayload{MealType: "breakfast", Calories: 450, Protein: 25}, noon),
		eventAt(t, 1, models.EventMeal, models.MealPayload{MealType: "dinner", Calories: 700, Protein: 40}, noon.Add(7*time.Hour)),
		eventAt(t, 1, models.EventExercise, models.ExercisePayload{Activity: "lifting", DurationMin: 45, Volume: 3200}, noon),
		eventAt(t, 1, models.EventHabit, models.HabitPayload{HabitID: 3}, noon),
		eventAt(t, 1, models.EventHabit, models.HabitPayload{HabitID: 4}, noon),
		eventAt(t, 1, models.EventSleep, models.SleepPayload{DurationMin: 480, Quality: 8, Interruptions: 0}, start.Add(7*time.Hour)),
	}

	days := AggregateDaily(events, start, 1)
	require.Len(t, days, 1)
	d := days[0]

	assert.Equal(t, 2, d.Nutrition.MealCount)
	assert.Equal(t, 1150.0, d.Nutrition.Calories)
	assert.Equal(t, 65.0, d.Nutrition.Protein)

	assert.Equal(t, 1, d.Fitness.ExerciseCount)
	assert.Equal(t, 45, d.Fitness.DurationMin)
	assert.Equal(t, 3200.0, d.Fitness.Volume)

	assert.Equal(t, 2, d.HabitCompletions)

	assert.True(t, d.Sleep.Logged)
	assert.Equal(t, 480, d.Sleep.DurationMin)
	assert.Equal(t, 100.0, d.Sleep.QualityScore) // 40+48+20+10 clamps to 100
}

func TestAggregateDailyMoodTieBreak(t *testing.T) {
	start := time.Date(2026, 8, 10, 0, 0, 0, 0, time.Local)
	noon := start.Add(12 * time.Hour)

	events := []models.WellnessEvent{
		eventAt(t, 1, models.EventMood, models.MoodPayload{Mood: "happy", Intensity: 6}, noon),
		eventAt(t, 1, models.EventMood, models.MoodPayload{Mood: "calm", Intensity: 8}, noon.Add(time.Hour)),
		eventAt(t, 1, models.EventMood, models.MoodPayload{Mood: "calm", Intensity: 4}, noon.Add(2*time.Hour)),
		eventAt(t, 1, models.EventMood, models.MoodPayload{Mood: "happy", Intensity: 6}, noon.Add(3*time.Hour)),
	}

	days := AggregateDaily(events, start, 1)
	require.Len(t, days, 1)

	m := days[0].Mood
	assert.Equal(t, 4, m.CheckIns)
	assert.Equal(t, 6.0, m.AvgIntensity)
	// two-way tie: the mood seen first wins
	assert.Equal(t, "happy", m.Dominant)
}

func TestSleepQualityScore(t *testing.T) {
	tests := []struct {
		name          string
		durationMin   int
		quality       int
		interruptions int
		want          float64
	}{
		{"ideal night clamps at 100", 480, 8, 0, 100},
		{"six hours one wakeup", 360, 5, 1, 85},
		{"four hours restless", 240, 2, 3, 37},
		{"very short night", 200, 1, 5, 26},
		{"oversleeping band", 590, 5, 0, 90},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sleepQualityScore(tt.durationMin, tt.quality, tt.interruptions))
		})
	}
}

func TestDailyMetricsFromStore(t *testing.T) {
	db := newTestDB(t)
	svc := NewMetricsService(db)
	ctx := context.Background()

	now := time.Now()
	require.NoError(t, db.Create(&models.WellnessEvent{
		UserID:     1,
		Kind:       models.EventWater,
		Payload:    mustPayload(t, models.WaterPayload{AmountML: 300}),
		OccurredAt: now,
	}).Error)
	require.NoError(t, db.Create(&models.WellnessEvent{
		UserID:     1,
		Kind:       models.EventWater,
		Payload:    mustPayload(t, models.WaterPayload{AmountML: 200}),
		OccurredAt: now.AddDate(0, 0, -2),
	}).Error)
	// another user's events never leak in
	require.NoError(t, db.Create(&models.WellnessEvent{
		UserID:     2,
		Kind:       models.EventWater,
		Payload:    mustPayload(t, models.WaterPayload{AmountML: 999}),
		OccurredAt: now,
	}).Error)

	days, err := svc.DailyMetrics(ctx, 1, 7)
	require.NoError(t, err)
	require.Len(t, days, 7)

	assert.Equal(t, 300, days[6].HydrationML)
	assert.Equal(t, 200, days[4].HydrationML)
	assert.False(t, days[5].Logged)
}
