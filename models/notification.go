package models

import "time"

// Notification is an in-app record of a gamification event (level-up,
// achievement earned, challenge completed/available). Delivery to push
// and websocket clients happens on emit; this row is the durable copy.
type Notification struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"index"`
	Kind      string    `gorm:"size:32"` // "level_up" | "achievement" | "challenge_completed" | "challenge_available"
	Title     string    `gorm:"size:128"`
	Message   string    `gorm:"type:text"`
	ReadAt    *time.Time
	CreatedAt time.Time
}
