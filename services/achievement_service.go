package services

import (
	"context"
	"fmt"
	"time"

	"backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AchievementService evaluates the static catalogue against a per-user
// context snapshot. It never mutates the catalogue; the only writes are
// EarnedAchievement inserts and the XP reward applied through the
// non-recursive delta primitive (so an achievement's reward can never
// cascade into further achievement evaluation).
type AchievementService struct {
	db           *gorm.DB
	gamification *GamificationService
	catalog      []models.AchievementDefinition
}

func NewAchievementService(db *gorm.DB, g *GamificationService) *AchievementService {
	return &AchievementService{db: db, gamification: g, catalog: AchievementCatalog}
}

// evalSnapshot is everything a condition can reference, captured once per
// evaluation so every definition sees the same state.
type evalSnapshot struct {
	KindCounts map[models.EventKind]int64
	BestStreak int
	Level      int
	TotalXP    int64
	TodayCount int64
	TodayKinds int64

	activeDayStreak     int
	activeDayStreakDone bool
}

// Evaluate checks every not-yet-earned definition and awards the ones whose
// condition now holds. Idempotent: the unique (user_id, code) index absorbs
// re-runs and concurrent invocations.
func (s *AchievementService) Evaluate(ctx context.Context, userID uint) ([]models.AchievementDefinition, error) {
	earned, err := s.earnedCodes(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(earned) == len(s.catalog) {
		return nil, nil
	}

	snap, err := s.buildSnapshot(ctx, userID)
	if err != nil {
		return nil, err
	}

	var awarded []models.AchievementDefinition
	for _, def := range s.catalog {
		if earned[def.Code] {
			continue
		}
		met, err := s.conditionMet(ctx, userID, def, snap)
		if err != nil {
			return awarded, err
		}
		if !met {
			continue
		}

		res := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.EarnedAchievement{
				UserID:    userID,
				Code:      def.Code,
				XPAwarded: def.XPReward,
				EarnedAt:  time.Now(),
			})
		if res.Error != nil {
			return awarded, fmt.Errorf("award %s: %w", def.Code, res.Error)
		}
		if res.RowsAffected == 0 {
			// lost the race to a concurrent evaluation; nothing more to do
			continue
		}

		if def.XPReward > 0 {
			if _, err := s.gamification.ApplyXPDelta(ctx, userID, def.XPReward); err != nil {
				return awarded, fmt.Errorf("apply %s reward: %w", def.Code, err)
			}
		}
		EmitNotification(userID, "achievement", def.Title,
			fmt.Sprintf("Achievement unlocked: %s (+%d XP)", def.Title, def.XPReward))
		awarded = append(awarded, def)
	}
	return awarded, nil
}

// WithStatus returns the full catalogue annotated with the user's earned state.
type AchievementWithStatus struct {
	models.AchievementDefinition
	Earned   bool       `json:"earned"`
	EarnedAt *time.Time `json:"earned_at,omitempty"`
}

func (s *AchievementService) WithStatus(ctx context.Context, userID uint) ([]AchievementWithStatus, error) {
	var rows []models.EarnedAchievement
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load earned achievements: %w", err)
	}
	earnedAt := make(map[string]time.Time, len(rows))
	for _, row := range rows {
		earnedAt[row.Code] = row.EarnedAt
	}

	out := make([]AchievementWithStatus, 0, len(s.catalog))
	for _, def := range s.catalog {
		item := AchievementWithStatus{AchievementDefinition: def}
		if at, ok := earnedAt[def.Code]; ok {
			item.Earned = true
			t := at
			item.EarnedAt = &t
		}
		out = append(out, item)
	}
	return out, nil
}

func (s *AchievementService) earnedCodes(ctx context.Context, userID uint) (map[string]bool, error) {
	var codes []string
	if err := s.db.WithContext(ctx).Model(&models.EarnedAchievement{}).
		Where("user_id = ?", userID).
		Pluck("code", &codes).Error; err != nil {
		return nil, fmt.Errorf("load earned codes: %w", err)
	}
	earned := make(map[string]bool, len(codes))
	for _, c := range codes {
		earned[c] = true
	}
	return earned, nil
}

func (s *AchievementService) buildSnapshot(ctx context.Context, userID uint) (*evalSnapshot, error) {
	snap := &evalSnapshot{KindCounts: map[models.EventKind]int64{}}

	type kindCount struct {
		Kind  models.EventKind
		Count int64
	}
	var counts []kindCount
	if err := s.db.WithContext(ctx).Model(&models.WellnessEvent{}).
		Select("kind, COUNT(*) AS count").
		Where("user_id = ?", userID).
		Group("kind").
		Scan(&counts).Error; err != nil {
		return nil, fmt.Errorf("count events: %w", err)
	}
	for _, kc := range counts {
		snap.KindCounts[kc.Kind] = kc.Count
	}

	profile, err := s.gamification.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	snap.Level = profile.Level
	snap.TotalXP = profile.TotalXP

	if err := s.db.WithContext(ctx).Model(&models.Habit{}).
		Where("user_id = ? AND status = ?", userID, "active").
		Select("COALESCE(MAX(current_streak), 0)").
		Scan(&snap.BestStreak).Error; err != nil {
		return nil, fmt.Errorf("best streak: %w", err)
	}

	now := time.Now()
	if err := s.db.WithContext(ctx).Model(&models.WellnessEvent{}).
		Where("user_id = ? AND occurred_at BETWEEN ? AND ?", userID, dayStart(now), dayEnd(now)).
		Count(&snap.TodayCount).Error; err != nil {
		return nil, fmt.Errorf("count today: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(&models.WellnessEvent{}).
		Where("user_id = ? AND occurred_at BETWEEN ? AND ?", userID, dayStart(now), dayEnd(now)).
		Distinct("kind").
		Count(&snap.TodayKinds).Error; err != nil {
		return nil, fmt.Errorf("count today kinds: %w", err)
	}

	return snap, nil
}

func (s *AchievementService) conditionMet(ctx context.Context, userID uint, def models.AchievementDefinition, snap *evalSnapshot) (bool, error) {
	cond := def.Condition
	switch cond.Type {
	case models.ConditionCount:
		return snap.KindCounts[models.EventKind(cond.Metric)] >= cond.Target, nil
	case models.ConditionStreak:
		return int64(snap.BestStreak) >= cond.Target, nil
	case models.ConditionLevel:
		return int64(snap.Level) >= cond.Target, nil
	case models.ConditionTotalXP:
		return snap.TotalXP >= cond.Target, nil
	case models.ConditionSpecial:
		switch cond.Metric {
		case models.MetricDailyActions:
			return snap.TodayCount >= cond.Target, nil
		case models.MetricModulesUsed:
			return snap.TodayKinds >= cond.Target, nil
		case models.MetricAnyAction:
			streak, err := s.anyActionStreak(ctx, userID, snap)
			if err != nil {
				return false, err
			}
			return int64(streak) >= cond.Target, nil
		}
	}
	// validateCatalog rules this out at startup
	return false, fmt.Errorf("achievement %s: unevaluable condition", def.Code)
}

// anyActionStreak counts consecutive days ending today with at least one
// event of any kind. Computed lazily, once per snapshot, from a bounded
// backwards scan of the event log.
func (s *AchievementService) anyActionStreak(ctx context.Context, userID uint, snap *evalSnapshot) (int, error) {
	if snap.activeDayStreakDone {
		return snap.activeDayStreak, nil
	}
	snap.activeDayStreakDone = true

	const lookbackDays = 60
	now := time.Now()
	windowStart := dayStart(now).AddDate(0, 0, -(lookbackDays - 1))

	var stamps []time.Time
	if err := s.db.WithContext(ctx).Model(&models.WellnessEvent{}).
		Where("user_id = ? AND occurred_at >= ?", userID, windowStart).
		Pluck("occurred_at", &stamps).Error; err != nil {
		return 0, fmt.Errorf("load event days: %w", err)
	}

	active := map[string]bool{}
	for _, ts := range stamps {
		active[dayStart(ts).Format("2006-01-02")] = true
	}

	streak := 0
	for day := dayStart(now); active[day.Format("2006-01-02")]; day = day.AddDate(0, 0, -1) {
		streak++
	}
	snap.activeDayStreak = streak
	return streak, nil
}
