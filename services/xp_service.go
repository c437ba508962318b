package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"backend/models"

	"gorm.io/gorm"
)

// XPAction identifies a qualifying action for XP purposes. Event kinds map
// 1:1 onto actions; "challenge" is reserved for challenge completion rewards.
type XPAction string

const (
	ActionWater     XPAction = "water"
	ActionHabit     XPAction = "habit"
	ActionMood      XPAction = "mood"
	ActionSleep     XPAction = "sleep"
	ActionJournal   XPAction = "journal"
	ActionMeal      XPAction = "meal"
	ActionExercise  XPAction = "exercise"
	ActionChallenge XPAction = "challenge"
)

var xpBase = map[XPAction]int{
	ActionWater:     5,
	ActionHabit:     10,
	ActionMood:      10,
	ActionSleep:     15,
	ActionJournal:   15,
	ActionMeal:      15,
	ActionExercise:  20,
	ActionChallenge: 50,
}

// Streak multiplier tiers, checked in descending MinDays order; first match wins.
var streakTiers = []struct {
	MinDays    int
	Multiplier float64
}{
	{30, 3.0},
	{14, 2.0},
	{7, 1.5},
}

const MaxLevel = 50

// levelTable[i] is the XP required to clear level i+1. Built once at start;
// entry i (1-indexed) is round(100 * i * 1.1^(i-1)), increasing by construction.
var levelTable = buildLevelTable(MaxLevel)

func buildLevelTable(maxLevel int) []int64 {
	reqs := make([]int64, maxLevel)
	for i := 1; i <= maxLevel; i++ {
		reqs[i-1] = int64(math.Round(100 * float64(i) * math.Pow(1.1, float64(i-1))))
	}
	return reqs
}

// LevelRequirement returns the XP needed to clear the given level (1..MaxLevel).
func LevelRequirement(level int) int64 {
	if level < 1 {
		level = 1
	}
	if level > MaxLevel {
		level = MaxLevel
	}
	return levelTable[level-1]
}

// StreakMultiplier returns the XP scaling factor for the given best streak.
func StreakMultiplier(bestStreak int) float64 {
	for _, tier := range streakTiers {
		if bestStreak >= tier.MinDays {
			return tier.Multiplier
		}
	}
	return 1.0
}

// AwardXP computes the XP for one action: round(base * streak multiplier).
// Unknown actions award 0.
func AwardXP(action XPAction, bestStreak int) int {
	base, ok := xpBase[action]
	if !ok {
		return 0
	}
	return int(math.Round(float64(base) * StreakMultiplier(bestStreak)))
}

// ResolveLevel converts cumulative XP into (level, xp into level, xp to next).
// It walks the table from level 1 subtracting each requirement until the
// remainder no longer covers the current level. Level caps at MaxLevel, where
// the remainder keeps growing past the last requirement.
func ResolveLevel(totalXP int64) (level int, currentLevelXP, xpToNext int64) {
	if totalXP < 0 {
		totalXP = 0
	}
	level = 1
	remainder := totalXP
	for level < MaxLevel && remainder >= levelTable[level-1] {
		remainder -= levelTable[level-1]
		level++
	}
	return level, remainder, levelTable[level-1]
}

// GamificationService owns the per-user profile: XP grants, level resolution
// and streak-freeze bookkeeping all go through it.
type GamificationService struct{ db *gorm.DB }

func NewGamificationService(db *gorm.DB) *GamificationService { return &GamificationService{db: db} }

// XPGrant reports the outcome of one XP application.
type XPGrant struct {
	Awarded       int                        `json:"awarded"`
	LeveledUp     bool                       `json:"leveled_up"`
	PreviousLevel int                        `json:"previous_level"`
	Profile       models.GamificationProfile `json:"profile"`
}

// Profile loads (or lazily creates) the user's gamification profile.
func (s *GamificationService) Profile(ctx context.Context, userID uint) (*models.GamificationProfile, error) {
	var p models.GamificationProfile
	if err := s.db.WithContext(ctx).
		Where(models.GamificationProfile{UserID: userID}).
		FirstOrCreate(&p).Error; err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	return &p, nil
}

// GrantXP awards XP for a qualifying action, scaled by the user's best
// streak, and stamps LastXPActionAt.
func (s *GamificationService) GrantXP(ctx context.Context, userID uint, action XPAction, bestStreak int) (*XPGrant, error) {
	grant, err := s.ApplyXPDelta(ctx, userID, AwardXP(action, bestStreak))
	if err != nil {
		return nil, err
	}
	now := time.Now()
	if err := s.db.WithContext(ctx).Model(&models.GamificationProfile{}).
		Where("user_id = ?", userID).
		UpdateColumn("last_xp_action_at", now).Error; err != nil {
		return nil, fmt.Errorf("stamp xp action: %w", err)
	}
	grant.Profile.LastXPActionAt = &now
	return grant, nil
}

// ApplyXPDelta is the non-recursive primitive behind every XP mutation:
// achievement rewards and challenge bonuses call it directly so they can
// never re-trigger achievement evaluation. The increment is a single SQL
// expression and the level fields are always recomputed from the new total,
// so concurrent grants for one user cannot drift the cached level.
func (s *GamificationService) ApplyXPDelta(ctx context.Context, userID uint, delta int) (*XPGrant, error) {
	if delta < 0 {
		delta = 0 // total XP is monotonically non-decreasing
	}
	out := &XPGrant{Awarded: delta}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p models.GamificationProfile
		if err := tx.Where(models.GamificationProfile{UserID: userID}).FirstOrCreate(&p).Error; err != nil {
			return fmt.Errorf("load profile: %w", err)
		}
		out.PreviousLevel, _, _ = ResolveLevel(p.TotalXP)

		if delta != 0 {
			if err := tx.Model(&models.GamificationProfile{}).Where("id = ?", p.ID).
				UpdateColumn("total_xp", gorm.Expr("total_xp + ?", delta)).Error; err != nil {
				return fmt.Errorf("increment xp: %w", err)
			}
		}
		if err := tx.First(&p, p.ID).Error; err != nil {
			return fmt.Errorf("reload profile: %w", err)
		}

		level, cur, next := ResolveLevel(p.TotalXP)
		p.Level, p.CurrentLevelXP, p.XPToNextLevel = level, cur, next
		if err := tx.Model(&models.GamificationProfile{}).Where("id = ?", p.ID).
			UpdateColumns(map[string]any{
				"level":            level,
				"current_level_xp": cur,
				"xp_to_next_level": next,
			}).Error; err != nil {
			return fmt.Errorf("update level fields: %w", err)
		}
		out.Profile = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	out.LeveledUp = out.Profile.Level > out.PreviousLevel
	return out, nil
}
