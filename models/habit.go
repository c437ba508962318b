package models

import (
	"time"

	"gorm.io/gorm"
)

// Habit is a recurring user commitment tracked for streak continuity.
type Habit struct {
	gorm.Model
	UserID      uint   `gorm:"index;not null"`
	Name        string `gorm:"not null"`
	Description string
	Status      string `gorm:"size:16;default:active"` // active | inactive

	CurrentStreak   int `gorm:"not null;default:0"`
	LongestStreak   int `gorm:"not null;default:0"`
	LastCompletedAt *time.Time
}

// HabitLog records one completion, at most one per habit per calendar day.
type HabitLog struct {
	gorm.Model
	HabitID uint      `gorm:"uniqueIndex:idx_habit_logs_habit_date;not null"`
	LogDate time.Time `gorm:"uniqueIndex:idx_habit_logs_habit_date;not null"` // truncated to local midnight
	Source  string    `gorm:"size:16;default:manual"`
}
