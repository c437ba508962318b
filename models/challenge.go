package models

import (
	"time"

	"gorm.io/gorm"
)

type ChallengeDifficulty string

const (
	DifficultyEasy   ChallengeDifficulty = "easy"
	DifficultyMedium ChallengeDifficulty = "medium"
	DifficultyHard   ChallengeDifficulty = "hard"
)

func (d ChallengeDifficulty) Valid() bool {
	return d == DifficultyEasy || d == DifficultyMedium || d == DifficultyHard
}

type ChallengeStatus string

const (
	ChallengeActive    ChallengeStatus = "active"
	ChallengeCompleted ChallengeStatus = "completed"
	ChallengeArchived  ChallengeStatus = "archived"
)

// Challenge is a time-boxed metric goal. At most one active challenge
// exists per user; completion is irreversible.
type Challenge struct {
	gorm.Model
	UserID      uint   `gorm:"index;not null"`
	Title       string `gorm:"not null"`
	Description string

	Metric       EventKind           `gorm:"size:16;not null"` // which event kind advances progress
	TargetValue  int                 `gorm:"not null"`
	CurrentValue int                 `gorm:"not null;default:0"`
	Difficulty   ChallengeDifficulty `gorm:"size:8;not null"`
	Status       ChallengeStatus     `gorm:"size:16;index;default:active"`

	ExpiresAt   time.Time `gorm:"index;not null"`
	CompletedAt *time.Time
}
