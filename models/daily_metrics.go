package models

import "time"

// DailyMetrics is a computed per-day view over a user's events. It is never
// persisted; the metrics service derives it on demand by re-scanning the
// event log for the requested window.
type DailyMetrics struct {
	Date   time.Time `json:"date"`
	Logged bool      `json:"logged"` // false when the day had no events at all

	Sleep     SleepMetrics     `json:"sleep"`
	Nutrition NutritionMetrics `json:"nutrition"`
	Fitness   FitnessMetrics   `json:"fitness"`
	Mood      MoodMetrics      `json:"mood"`

	HabitCompletions int `json:"habit_completions"`
	HydrationML      int `json:"hydration_ml"`
}

type SleepMetrics struct {
	Logged       bool    `json:"logged"`
	QualityScore float64 `json:"quality_score"` // 0..100
	DurationMin  int     `json:"duration_min"`
}

type NutritionMetrics struct {
	Calories  float64 `json:"calories"`
	Protein   float64 `json:"protein"`
	MealCount int     `json:"meal_count"`
}

type FitnessMetrics struct {
	ExerciseCount int     `json:"exercise_count"`
	Volume        float64 `json:"volume"`
	DurationMin   int     `json:"duration_min"`
}

type MoodMetrics struct {
	AvgIntensity float64 `json:"avg_intensity"`
	CheckIns     int     `json:"check_ins"`
	Dominant     string  `json:"dominant,omitempty"`
}
