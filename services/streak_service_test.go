package services

import (
	"context"
	"testing"
	"time"

	"backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateHabitRequiresName(t *testing.T) {
	db := newTestDB(t)
	svc := NewStreakService(db)

	_, err := svc.CreateHabit(context.Background(), 1, "   ", "")
	assert.Error(t, err)

	habit, err := svc.CreateHabit(context.Background(), 1, "  Morning run  ", "before work")
	require.NoError(t, err)
	assert.Equal(t, "Morning run", habit.Name)
	assert.Equal(t, "active", habit.Status)
}

func TestCompleteHabitStreakProgression(t *testing.T) {
	db := newTestDB(t)
	svc := NewStreakService(db)
	ctx := context.Background()

	habit, err := svc.CreateHabit(ctx, 1, "Meditate", "")
	require.NoError(t, err)

	day1 := time.Date(2026, 8, 1, 9, 0, 0, 0, time.Local)

	h, err := svc.CompleteHabit(ctx, 1, habit.ID, day1)
	require.NoError(t, err)
	assert.Equal(t, 1, h.CurrentStreak)

	// same day again: idempotent, no extra log row, no advance
	h, err = svc.CompleteHabit(ctx, 1, habit.ID, day1.Add(5*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, h.CurrentStreak)

	var logs int64
	require.NoError(t, db.Model(&models.HabitLog{}).Where("habit_id = ?", habit.ID).Count(&logs).Error)
	assert.Equal(t, int64(1), logs)

	// consecutive days advance
	h, err = svc.CompleteHabit(ctx, 1, habit.ID, day1.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, 2, h.CurrentStreak)

	h, err = svc.CompleteHabit(ctx, 1, habit.ID, day1.AddDate(0, 0, 2))
	require.NoError(t, err)
	assert.Equal(t, 3, h.CurrentStreak)
	assert.Equal(t, 3, h.LongestStreak)

	// a missed day resets the current streak but not the longest
	h, err = svc.CompleteHabit(ctx, 1, habit.ID, day1.AddDate(0, 0, 4))
	require.NoError(t, err)
	assert.Equal(t, 1, h.CurrentStreak)
	assert.Equal(t, 3, h.LongestStreak)
}

func TestCompleteHabitOwnership(t *testing.T) {
	db := newTestDB(t)
	svc := NewStreakService(db)
	ctx := context.Background()

	habit, err := svc.CreateHabit(ctx, 1, "Read", "")
	require.NoError(t, err)

	_, err = svc.CompleteHabit(ctx, 2, habit.ID, time.Now())
	assert.ErrorIs(t, err, ErrHabitNotFound)
}

func TestBestStreak(t *testing.T) {
	db := newTestDB(t)
	svc := NewStreakService(db)
	ctx := context.Background()

	best, err := svc.BestStreak(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, best)

	require.NoError(t, db.Create(&models.Habit{UserID: 1, Name: "a", Status: "active", CurrentStreak: 4}).Error)
	require.NoError(t, db.Create(&models.Habit{UserID: 1, Name: "b", Status: "active", CurrentStreak: 9}).Error)
	require.NoError(t, db.Create(&models.Habit{UserID: 1, Name: "c", Status: "inactive", CurrentStreak: 30}).Error)
	require.NoError(t, db.Create(&models.Habit{UserID: 2, Name: "d", Status: "active", CurrentStreak: 50}).Error)

	best, err = svc.BestStreak(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 9, best)
}

func TestCanUseFreeze(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.Local)
	justUnder := now.Add(-streakFreezeCooldown + time.Minute)
	exactly := now.Add(-streakFreezeCooldown)

	assert.ErrorIs(t, CanUseFreeze(0, nil, now), ErrNoFreezesAvailable)
	assert.NoError(t, CanUseFreeze(1, nil, now))
	assert.ErrorIs(t, CanUseFreeze(1, &justUnder, now), ErrFreezeCooldown)
	// exactly seven full days elapsed is allowed
	assert.NoError(t, CanUseFreeze(1, &exactly, now))
}

func TestUseStreakFreeze(t *testing.T) {
	db := newTestDB(t)
	svc := NewStreakService(db)
	ctx := context.Background()

	p, err := svc.UseStreakFreeze(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, p.StreakFreezesAvailable)
	assert.NotNil(t, p.LastStreakFreezeUsedAt)

	_, err = svc.UseStreakFreeze(ctx, 1)
	assert.ErrorIs(t, err, ErrNoFreezesAvailable)

	// restocked but still inside the cooldown window
	require.NoError(t, db.Model(&models.GamificationProfile{}).
		Where("user_id = ?", 1).
		UpdateColumn("streak_freezes_available", 1).Error)
	_, err = svc.UseStreakFreeze(ctx, 1)
	assert.ErrorIs(t, err, ErrFreezeCooldown)

	// cooldown elapsed
	past := time.Now().Add(-streakFreezeCooldown)
	require.NoError(t, db.Model(&models.GamificationProfile{}).
		Where("user_id = ?", 1).
		UpdateColumn("last_streak_freeze_used_at", past).Error)
	p, err = svc.UseStreakFreeze(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, p.StreakFreezesAvailable)
}

func TestReplenishFreezes(t *testing.T) {
	db := newTestDB(t)
	svc := NewStreakService(db)
	ctx := context.Background()

	now := time.Now()
	recent := now.Add(-24 * time.Hour)
	stale := now.Add(-30 * 24 * time.Hour)

	require.NoError(t, db.Create(&models.GamificationProfile{UserID: 1, LastXPActionAt: &recent}).Error)
	require.NoError(t, db.Create(&models.GamificationProfile{UserID: 2, LastXPActionAt: &stale}).Error)
	require.NoError(t, db.Create(&models.GamificationProfile{UserID: 3}).Error)
	// the default freeze balance is 1; drain all three before replenishing
	require.NoError(t, db.Model(&models.GamificationProfile{}).
		Where("user_id IN ?", []uint{1, 2, 3}).
		UpdateColumn("streak_freezes_available", 0).Error)

	n, err := svc.ReplenishFreezes(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	var p models.GamificationProfile
	require.NoError(t, db.Where("user_id = ?", 1).First(&p).Error)
	assert.Equal(t, 1, p.StreakFreezesAvailable)

	p = models.GamificationProfile{}
	require.NoError(t, db.Where("user_id = ?", 2).First(&p).Error)
	assert.Equal(t, 0, p.StreakFreezesAvailable)
}
