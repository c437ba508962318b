package models

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// EventKind discriminates the payload shape of a WellnessEvent.
type EventKind string

const (
	EventWater    EventKind = "water"
	EventHabit    EventKind = "habit"
	EventMood     EventKind = "mood"
	EventSleep    EventKind = "sleep"
	EventJournal  EventKind = "journal"
	EventMeal     EventKind = "meal"
	EventExercise EventKind = "exercise"
)

// AllEventKinds lists every valid kind, in catalogue order.
var AllEventKinds = []EventKind{
	EventWater, EventHabit, EventMood, EventSleep, EventJournal, EventMeal, EventExercise,
}

func (k EventKind) Valid() bool {
	for _, v := range AllEventKinds {
		if v == k {
			return true
		}
	}
	return false
}

type EventSource string

const (
	SourceManual    EventSource = "manual"
	SourceAutomated EventSource = "automated"
)

// WellnessEvent is one immutable logged action. The Payload column holds
// the kind-specific struct below, marshalled as JSON.
type WellnessEvent struct {
	gorm.Model
	UserID     uint           `gorm:"index;not null"`
	Kind       EventKind      `gorm:"size:16;index;not null"`
	Payload    datatypes.JSON `gorm:"type:json"`
	OccurredAt time.Time      `gorm:"index;not null"`
	Source     EventSource    `gorm:"size:16;default:manual"`
	ClientID   string         `gorm:"size:36;index"` // optional client dedupe key (uuid), checked per user on ingest
}

// ---- per-kind payloads ----

type WaterPayload struct {
	AmountML int `json:"amount_ml"`
}

type HabitPayload struct {
	HabitID uint `json:"habit_id"`
}

type MoodPayload struct {
	Mood      string  `json:"mood"`      // e.g. "happy", "stressed"
	Intensity float64 `json:"intensity"` // 1..10
}

type SleepPayload struct {
	DurationMin   int `json:"duration_min"`
	Quality       int `json:"quality"` // 1..10
	Interruptions int `json:"interruptions"`
}

type JournalPayload struct {
	WordCount int `json:"word_count"`
}

type MealPayload struct {
	MealType string  `json:"meal_type,omitempty"` // breakfast|lunch|dinner|snack
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
}

type ExercisePayload struct {
	Activity    string  `json:"activity,omitempty"`
	DurationMin int     `json:"duration_min"`
	Volume      float64 `json:"volume"` // sets x reps x weight, or distance units
}

// DecodePayload unmarshals the event's payload into the struct matching
// its kind. Returns an error for unknown kinds or malformed JSON.
func (e *WellnessEvent) DecodePayload() (any, error) {
	var dst any
	switch e.Kind {
	case EventWater:
		dst = &WaterPayload{}
	case EventHabit:
		dst = &HabitPayload{}
	case EventMood:
		dst = &MoodPayload{}
	case EventSleep:
		dst = &SleepPayload{}
	case EventJournal:
		dst = &JournalPayload{}
	case EventMeal:
		dst = &MealPayload{}
	case EventExercise:
		dst = &ExercisePayload{}
	default:
		return nil, fmt.Errorf("unknown event kind %q", e.Kind)
	}
	if len(e.Payload) == 0 {
		return dst, nil
	}
	if err := json.Unmarshal(e.Payload, dst); err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", e.Kind, err)
	}
	return dst, nil
}

// EncodePayload marshals a payload struct into the JSON column.
func EncodePayload(v any) (datatypes.JSON, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	return datatypes.JSON(b), nil
}
