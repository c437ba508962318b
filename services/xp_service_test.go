package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelRequirement(t *testing.T) {
	assert.Equal(t, int64(100), LevelRequirement(1))
	assert.Equal(t, int64(220), LevelRequirement(2))
	assert.Equal(t, int64(363), LevelRequirement(3))
	assert.Equal(t, int64(532), LevelRequirement(4))

	// out-of-range levels clamp instead of panicking
	assert.Equal(t, LevelRequirement(1), LevelRequirement(0))
	assert.Equal(t, LevelRequirement(MaxLevel), LevelRequirement(MaxLevel+5))

	// requirements are strictly increasing across the whole table
	for lvl := 2; lvl <= MaxLevel; lvl++ {
		assert.Greater(t, LevelRequirement(lvl), LevelRequirement(lvl-1), "level %d", lvl)
	}
}

func TestResolveLevel(t *testing.T) {
	tests := []struct {
		name          string
		totalXP       int64
		wantLevel     int
		wantCurrentXP int64
		wantXPToNext  int64
	}{
		{"zero", 0, 1, 0, 100},
		{"negative clamps to zero", -50, 1, 0, 100},
		{"one short of level 2", 99, 1, 99, 100},
		{"exactly level 2", 100, 2, 0, 220},
		{"one short of level 3", 319, 2, 219, 220},
		{"exactly level 3", 320, 3, 0, 363},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level, cur, next := ResolveLevel(tt.totalXP)
			assert.Equal(t, tt.wantLevel, level)
			assert.Equal(t, tt.wantCurrentXP, cur)
			assert.Equal(t, tt.wantXPToNext, next)
		})
	}
}

func TestResolveLevelCapsAtMax(t *testing.T) {
	level, cur, next := ResolveLevel(1 << 40)
	assert.Equal(t, MaxLevel, level)
	assert.Equal(t, LevelRequirement(MaxLevel), next)
	// at the cap the remainder keeps growing past the last requirement
	assert.Greater(t, cur, next)
}

func TestStreakMultiplier(t *testing.T) {
	tests := []struct {
		streak int
		want   float64
	}{
		{0, 1.0}, {6, 1.0},
		{7, 1.5}, {13, 1.5},
		{14, 2.0}, {29, 2.0},
		{30, 3.0}, {100, 3.0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StreakMultiplier(tt.streak), "streak %d", tt.streak)
	}
}

func TestAwardXP(t *testing.T) {
	assert.Equal(t, 5, AwardXP(ActionWater, 0))
	assert.Equal(t, 15, AwardXP(ActionHabit, 7))
	assert.Equal(t, 20, AwardXP(ActionMood, 14))
	assert.Equal(t, 60, AwardXP(ActionExercise, 30))
	assert.Equal(t, 0, AwardXP(XPAction("unknown"), 30))
}

func TestApplyXPDelta(t *testing.T) {
	db := newTestDB(t)
	svc := NewGamificationService(db)
	ctx := context.Background()

	grant, err := svc.ApplyXPDelta(ctx, 1, 100)
	require.NoError(t, err)
	assert.Equal(t, 100, grant.Awarded)
	assert.Equal(t, 1, grant.PreviousLevel)
	assert.True(t, grant.LeveledUp)
	assert.Equal(t, 2, grant.Profile.Level)
	assert.Equal(t, int64(0), grant.Profile.CurrentLevelXP)
	assert.Equal(t, int64(220), grant.Profile.XPToNextLevel)

	grant, err = svc.ApplyXPDelta(ctx, 1, 50)
	require.NoError(t, err)
	assert.False(t, grant.LeveledUp)
	assert.Equal(t, int64(150), grant.Profile.TotalXP)
	assert.Equal(t, int64(50), grant.Profile.CurrentLevelXP)
}

func TestApplyXPDeltaNeverDecreases(t *testing.T) {
	db := newTestDB(t)
	svc := NewGamificationService(db)
	ctx := context.Background()

	_, err := svc.ApplyXPDelta(ctx, 1, 30)
	require.NoError(t, err)

	grant, err := svc.ApplyXPDelta(ctx, 1, -20)
	require.NoError(t, err)
	assert.Equal(t, 0, grant.Awarded)
	assert.Equal(t, int64(30), grant.Profile.TotalXP)
}

func TestGrantXPStampsLastAction(t *testing.T) {
	db := newTestDB(t)
	svc := NewGamificationService(db)
	ctx := context.Background()

	grant, err := svc.GrantXP(ctx, 1, ActionSleep, 0)
	require.NoError(t, err)
	assert.Equal(t, 15, grant.Awarded)
	require.NotNil(t, grant.Profile.LastXPActionAt)

	p, err := svc.Profile(ctx, 1)
	require.NoError(t, err)
	assert.NotNil(t, p.LastXPActionAt)
	assert.Equal(t, int64(15), p.TotalXP)
}
