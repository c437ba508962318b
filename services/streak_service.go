package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrHabitNotFound covers both missing habits and ownership mismatches.
	ErrHabitNotFound = errors.New("habit not found")
	// ErrNoFreezesAvailable is returned when the freeze balance is zero.
	ErrNoFreezesAvailable = errors.New("no streak freezes available")
	// ErrFreezeCooldown is returned before 7 full days since the last use.
	ErrFreezeCooldown = errors.New("streak freeze on cooldown")
)

const (
	streakFreezeCapacity = 1
	streakFreezeCooldown = 7 * 24 * time.Hour
)

// StreakService tracks habit completion continuity and the streak-freeze
// consumable. The "best streak" it reports drives the XP multiplier.
type StreakService struct{ db *gorm.DB }

func NewStreakService(db *gorm.DB) *StreakService { return &StreakService{db: db} }

func (s *StreakService) CreateHabit(ctx context.Context, userID uint, name, description string) (*models.Habit, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("habit name is required")
	}
	habit := models.Habit{
		UserID:      userID,
		Name:        name,
		Description: strings.TrimSpace(description),
		Status:      "active",
	}
	if err := s.db.WithContext(ctx).Create(&habit).Error; err != nil {
		return nil, fmt.Errorf("create habit: %w", err)
	}
	return &habit, nil
}

func (s *StreakService) ListHabits(ctx context.Context, userID uint) ([]models.Habit, error) {
	var habits []models.Habit
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&habits).Error; err != nil {
		return nil, fmt.Errorf("list habits: %w", err)
	}
	return habits, nil
}

// CompleteHabit records a completion for the habit's calendar day and advances
// its streak. Completion is idempotent per day: the unique (habit_id, log_date)
// index absorbs repeats, and the streak advances at most once per day no
// matter how many qualifying events land.
func (s *StreakService) CompleteHabit(ctx context.Context, userID, habitID uint, at time.Time) (*models.Habit, error) {
	var habit models.Habit
	if err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", habitID, userID).
		First(&habit).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHabitNotFound
		}
		return nil, fmt.Errorf("load habit: %w", err)
	}

	logDate := dayStart(at)
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "habit_id"}, {Name: "log_date"}},
		DoNothing: true,
	}).Create(&models.HabitLog{HabitID: habit.ID, LogDate: logDate, Source: "manual"})
	if res.Error != nil {
		return nil, fmt.Errorf("log completion: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		// already completed today
		return &habit, nil
	}

	switch {
	case habit.LastCompletedAt != nil && dayStart(*habit.LastCompletedAt).Equal(logDate):
		// same day, nothing to advance
	case habit.LastCompletedAt != nil && dayStart(*habit.LastCompletedAt).Equal(logDate.AddDate(0, 0, -1)):
		habit.CurrentStreak++
	default:
		habit.CurrentStreak = 1
	}
	if habit.CurrentStreak > habit.LongestStreak {
		habit.LongestStreak = habit.CurrentStreak
	}
	habit.LastCompletedAt = &logDate

	if err := s.db.WithContext(ctx).Save(&habit).Error; err != nil {
		return nil, fmt.Errorf("update habit streak: %w", err)
	}
	return &habit, nil
}

// BestStreak is the maximum current streak across the user's active habits.
func (s *StreakService) BestStreak(ctx context.Context, userID uint) (int, error) {
	var best int
	if err := s.db.WithContext(ctx).Model(&models.Habit{}).
		Where("user_id = ? AND status = ?", userID, "active").
		Select("COALESCE(MAX(current_streak), 0)").
		Scan(&best).Error; err != nil {
		return 0, fmt.Errorf("best streak: %w", err)
	}
	return best, nil
}

// CanUseFreeze is the pure eligibility rule: a freeze must be in stock and
// at least 7 full days must have elapsed since the last use. Exactly 7x24h
// elapsed is allowed.
func CanUseFreeze(available int, lastUsedAt *time.Time, now time.Time) error {
	if available <= 0 {
		return ErrNoFreezesAvailable
	}
	if lastUsedAt != nil && now.Sub(*lastUsedAt) < streakFreezeCooldown {
		return ErrFreezeCooldown
	}
	return nil
}

// UseStreakFreeze consumes one freeze. It only touches the profile's freeze
// bookkeeping; habit streak counters are maintained by whatever computes
// daily continuity, not here.
func (s *StreakService) UseStreakFreeze(ctx context.Context, userID uint) (*models.GamificationProfile, error) {
	var p models.GamificationProfile
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(models.GamificationProfile{UserID: userID}).FirstOrCreate(&p).Error; err != nil {
			return fmt.Errorf("load profile: %w", err)
		}
		now := time.Now()
		if err := CanUseFreeze(p.StreakFreezesAvailable, p.LastStreakFreezeUsedAt, now); err != nil {
			return err
		}
		p.StreakFreezesAvailable--
		p.LastStreakFreezeUsedAt = &now
		if err := tx.Model(&models.GamificationProfile{}).Where("id = ?", p.ID).
			UpdateColumns(map[string]any{
				"streak_freezes_available":   p.StreakFreezesAvailable,
				"last_streak_freeze_used_at": now,
			}).Error; err != nil {
			return fmt.Errorf("consume freeze: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ReplenishFreezes tops recently-active users back up to capacity. Scheduled
// weekly; returns the number of profiles replenished.
func (s *StreakService) ReplenishFreezes(ctx context.Context, now time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Model(&models.GamificationProfile{}).
		Where("streak_freezes_available < ?", streakFreezeCapacity).
		Where("last_xp_action_at IS NOT NULL AND last_xp_action_at >= ?", now.Add(-7*24*time.Hour)).
		UpdateColumn("streak_freezes_available", streakFreezeCapacity)
	if res.Error != nil {
		return 0, fmt.Errorf("replenish freezes: %w", res.Error)
	}
	return res.RowsAffected, nil
}
