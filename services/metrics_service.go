package services

import (
	"context"
	"time"

	"backend/models"

	"gorm.io/gorm"
)

// MetricsService derives per-day wellness aggregates straight from the event
// log. Nothing here is persisted; every call re-scans the requested window,
// so there is no staleness to invalidate.
type MetricsService struct{ db *gorm.DB }

func NewMetricsService(db *gorm.DB) *MetricsService { return &MetricsService{db: db} }

// DailyMetrics returns exactly `days` entries, oldest first, one per calendar
// day up to and including today. Days without activity come back as zeroed
// records with Logged=false — callers rely on gap-free, fixed-length windows.
func (s *MetricsService) DailyMetrics(ctx context.Context, userID uint, days int) ([]models.DailyMetrics, error) {
	if days <= 0 {
		days = 7
	}
	now := time.Now()
	start := dayStart(now).AddDate(0, 0, -(days - 1))

	var events []models.WellnessEvent
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND occurred_at BETWEEN ? AND ?", userID, start, dayEnd(now)).
		Order("occurred_at ASC").
		Find(&events).Error; err != nil {
		return nil, err
	}

	return AggregateDaily(events, start, days), nil
}

// AggregateDaily folds events into per-day metrics. Pure: same events in,
// same metrics out. Events outside [start, start+days) are ignored.
func AggregateDaily(events []models.WellnessEvent, start time.Time, days int) []models.DailyMetrics {
	type moodTally struct {
		counts map[string]int
		order  []string // first-occurrence order, for tie-breaks
	}
	type dayAcc struct {
		metrics models.DailyMetrics

		sleepDurationMin   int
		sleepQualitySum    int
		sleepCount         int
		sleepInterruptions int

		moodIntensitySum float64
		moods            moodTally
	}

	start = dayStart(start)
	accs := make([]*dayAcc, days)
	for i := 0; i < days; i++ {
		accs[i] = &dayAcc{
			metrics: models.DailyMetrics{Date: start.AddDate(0, 0, i)},
			moods:   moodTally{counts: map[string]int{}},
		}
	}

	for i := range events {
		ev := &events[i]
		idx := daysBetween(start, dayStart(ev.OccurredAt))
		if idx < 0 || idx >= days {
			continue
		}
		acc := accs[idx]
		acc.metrics.Logged = true

		payload, err := ev.DecodePayload()
		if err != nil {
			// a malformed stored payload still counts the day as logged,
			// but contributes nothing to the totals
			continue
		}

		switch p := payload.(type) {
		case *models.WaterPayload:
			acc.metrics.HydrationML += p.AmountML
		case *models.HabitPayload:
			acc.metrics.HabitCompletions++
		case *models.MoodPayload:
			acc.metrics.Mood.CheckIns++
			acc.moodIntensitySum += p.Intensity
			if _, seen := acc.moods.counts[p.Mood]; !seen {
				acc.moods.order = append(acc.moods.order, p.Mood)
			}
			acc.moods.counts[p.Mood]++
		case *models.SleepPayload:
			acc.sleepCount++
			acc.sleepDurationMin += p.DurationMin
			acc.sleepQualitySum += p.Quality
			acc.sleepInterruptions += p.Interruptions
		case *models.JournalPayload:
			// journaling marks the day as logged; it has no numeric aggregate
		case *models.MealPayload:
			acc.metrics.Nutrition.MealCount++
			acc.metrics.Nutrition.Calories += p.Calories
			acc.metrics.Nutrition.Protein += p.Protein
		case *models.ExercisePayload:
			acc.metrics.Fitness.ExerciseCount++
			acc.metrics.Fitness.DurationMin += p.DurationMin
			acc.metrics.Fitness.Volume += p.Volume
		}
	}

	out := make([]models.DailyMetrics, days)
	for i, acc := range accs {
		m := acc.metrics
		if acc.sleepCount > 0 {
			avgQuality := acc.sleepQualitySum / acc.sleepCount
			m.Sleep = models.SleepMetrics{
				Logged:       true,
				DurationMin:  acc.sleepDurationMin,
				QualityScore: sleepQualityScore(acc.sleepDurationMin, avgQuality, acc.sleepInterruptions),
			}
		}
		if m.Mood.CheckIns > 0 {
			m.Mood.AvgIntensity = acc.moodIntensitySum / float64(m.Mood.CheckIns)
			m.Mood.Dominant = dominantMood(acc.moods.counts, acc.moods.order)
		}
		out[i] = m
	}
	return out
}

// sleepQualityScore combines a duration band (5-40), the 1-10 quality rating
// (x6), an interruption component (5-20) and a base consistency credit (10),
// clamped to [0,100].
func sleepQualityScore(durationMin, quality, interruptions int) float64 {
	hours := float64(durationMin) / 60.0

	var band float64
	switch {
	case hours >= 7 && hours <= 9:
		band = 40
	case (hours >= 6 && hours < 7) || (hours > 9 && hours <= 10):
		band = 30
	case (hours >= 5 && hours < 6) || (hours > 10 && hours <= 11):
		band = 20
	case hours >= 4 && hours < 5:
		band = 10
	default:
		band = 5
	}

	var rest float64
	switch {
	case interruptions <= 0:
		rest = 20
	case interruptions == 1:
		rest = 15
	case interruptions == 2:
		rest = 10
	default:
		rest = 5
	}

	score := band + float64(quality)*6 + rest + 10
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// dominantMood picks the plurality mood; on a tie the mood seen first wins.
func dominantMood(counts map[string]int, order []string) string {
	best, bestCount := "", 0
	for _, mood := range order {
		if counts[mood] > bestCount {
			best, bestCount = mood, counts[mood]
		}
	}
	return best
}

// ---------- day helpers ----------

func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func dayEnd(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}
