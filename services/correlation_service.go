package services

import (
	"math"
	"sort"

	"backend/models"
)

// CorrelationResult is an ephemeral cross-domain finding. Results are computed
// fresh per request and never stored; narrative text around them is produced
// elsewhere.
type CorrelationResult struct {
	MetricA     string  `json:"metric_a"`
	MetricB     string  `json:"metric_b"`
	Correlation float64 `json:"correlation"` // rounded to 3 decimals
	Strength    string  `json:"strength"`    // weak | moderate | strong
	Direction   string  `json:"direction"`   // positive | negative
	DataPoints  int     `json:"data_points"`
}

// A metric extractor returns the day's value and whether that domain was
// actually logged that day. Days where either side of a pair is absent
// contribute no point to the pair.
type metricExtractor func(m *models.DailyMetrics) (float64, bool)

type metricPair struct {
	NameA, NameB string
	A, B         metricExtractor
}

func sleepQuality(m *models.DailyMetrics) (float64, bool) {
	return m.Sleep.QualityScore, m.Sleep.Logged
}

func moodIntensity(m *models.DailyMetrics) (float64, bool) {
	return m.Mood.AvgIntensity, m.Mood.CheckIns > 0
}

func exerciseCount(m *models.DailyMetrics) (float64, bool) {
	return float64(m.Fitness.ExerciseCount), m.Fitness.ExerciseCount > 0
}

func habitCompletions(m *models.DailyMetrics) (float64, bool) {
	return float64(m.HabitCompletions), m.HabitCompletions > 0
}

func hydrationML(m *models.DailyMetrics) (float64, bool) {
	return float64(m.HydrationML), m.HydrationML > 0
}

// The fixed pair catalogue. Order matters: it is the stable tie-break when
// two pairs correlate equally strongly.
var correlationPairs = []metricPair{
	{"sleep_quality", "mood_intensity", sleepQuality, moodIntensity},
	{"exercise_count", "sleep_quality", exerciseCount, sleepQuality},
	{"habit_completions", "mood_intensity", habitCompletions, moodIntensity},
	{"hydration_ml", "mood_intensity", hydrationML, moodIntensity},
	{"exercise_count", "mood_intensity", exerciseCount, moodIntensity},
	{"sleep_quality", "habit_completions", sleepQuality, habitCompletions},
}

const minCorrelationPoints = 5

// ComputeCorrelations evaluates every catalogue pair over the daily window,
// keeps the statistically interesting ones (|r| > 0.3, >= 5 paired points)
// and returns them sorted by |r| descending. Pure; never touches storage.
func ComputeCorrelations(days []models.DailyMetrics) []CorrelationResult {
	results := make([]CorrelationResult, 0, len(correlationPairs))

	for _, pair := range correlationPairs {
		var xs, ys []float64
		for i := range days {
			a, okA := pair.A(&days[i])
			b, okB := pair.B(&days[i])
			if okA && okB {
				xs = append(xs, a)
				ys = append(ys, b)
			}
		}
		if len(xs) < minCorrelationPoints {
			continue
		}

		r := pearson(xs, ys)
		if math.Abs(r) <= 0.3 {
			continue
		}

		results = append(results, CorrelationResult{
			MetricA:     pair.NameA,
			MetricB:     pair.NameB,
			Correlation: round3(r),
			Strength:    correlationStrength(r),
			Direction:   correlationDirection(r),
			DataPoints:  len(xs),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return math.Abs(results[i].Correlation) > math.Abs(results[j].Correlation)
	})
	return results
}

// pearson computes Pearson's r via the sum-of-products formula. A zero
// denominator (no variance in either series) yields 0, never an error.
func pearson(xs, ys []float64) float64 {
	n := float64(len(xs))
	if n == 0 || len(xs) != len(ys) {
		return 0
	}

	var sumX, sumY, sumXY, sumX2, sumY2 float64
	for i := range xs {
		sumX += xs[i]
		sumY += ys[i]
		sumXY += xs[i] * ys[i]
		sumX2 += xs[i] * xs[i]
		sumY2 += ys[i] * ys[i]
	}

	num := n*sumXY - sumX*sumY
	den := math.Sqrt((n*sumX2 - sumX*sumX) * (n*sumY2 - sumY*sumY))
	if den == 0 {
		return 0
	}
	return num / den
}

func correlationStrength(r float64) string {
	abs := math.Abs(r)
	switch {
	case abs >= 0.7:
		return "strong"
	case abs >= 0.5:
		return "moderate"
	default:
		return "weak"
	}
}

func correlationDirection(r float64) string {
	if r > 0 {
		return "positive"
	}
	return "negative"
}

func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
