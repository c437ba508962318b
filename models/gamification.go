package models

import (
	"time"

	"gorm.io/gorm"
)

// GamificationProfile is the single mutable gamification record per user.
// Level, CurrentLevelXP and XPToNextLevel are always recomputed together
// from TotalXP against the level table; they are never patched on their own.
type GamificationProfile struct {
	gorm.Model
	UserID uint `gorm:"uniqueIndex;not null"`

	TotalXP        int64 `gorm:"not null;default:0"`
	Level          int   `gorm:"not null;default:1"`
	CurrentLevelXP int64 `gorm:"not null;default:0"`
	XPToNextLevel  int64 `gorm:"not null;default:100"`

	StreakFreezesAvailable int `gorm:"not null;default:1"`
	LastStreakFreezeUsedAt *time.Time
	LastXPActionAt         *time.Time
}
