package models

import (
	"time"

	"gorm.io/datatypes"
)

// Insight stores a generated narrative payload (weekly report or correlation
// summary) exactly as returned by the text collaborator. Body is opaque JSON;
// a malformed generation attempt is never stored.
type Insight struct {
	ID        uint           `gorm:"primaryKey"`
	UserID    uint           `gorm:"index;not null"`
	Kind      string         `gorm:"size:32;not null"` // "weekly_report" | "correlation"
	Body      datatypes.JSON `gorm:"type:json"`
	TraceID   string         `gorm:"size:36"`
	CreatedAt time.Time
}
