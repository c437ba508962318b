package models

import "time"

// ConditionType discriminates how an achievement condition is evaluated.
type ConditionType string

const (
	ConditionCount   ConditionType = "count"
	ConditionStreak  ConditionType = "streak"
	ConditionLevel   ConditionType = "level"
	ConditionTotalXP ConditionType = "total_xp"
	ConditionSpecial ConditionType = "special"
)

// Special condition metrics.
const (
	MetricDailyActions = "daily_actions" // events logged today
	MetricModulesUsed  = "modules_used"  // distinct kinds used today
	MetricAnyAction    = "any_action"    // consecutive days with >=1 event
)

type AchievementCondition struct {
	Type   ConditionType `json:"type"`
	Metric string        `json:"metric,omitempty"` // counter name or special metric
	Target int64         `json:"target"`
}

// AchievementDefinition is static catalogue data, loaded once at process
// start. There is no runtime mutation path.
type AchievementDefinition struct {
	Code      string               `json:"code"`
	Title     string               `json:"title"`
	Category  string               `json:"category"`
	XPReward  int                  `json:"xp_reward"`
	Condition AchievementCondition `json:"condition"`
}

// EarnedAchievement is the append-only per-user earned set. The unique
// index on (user_id, code) makes awarding idempotent; rows are never revoked.
type EarnedAchievement struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"uniqueIndex:idx_earned_user_code;not null"`
	Code      string    `gorm:"uniqueIndex:idx_earned_user_code;size:64;not null"`
	XPAwarded int       `gorm:"not null;default:0"`
	EarnedAt  time.Time `gorm:"not null"`
}
