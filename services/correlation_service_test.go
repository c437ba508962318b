package services

import (
	"math"
	"testing"
	"time"

	"backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPearson(t *testing.T) {
	assert.InDelta(t, 1.0, pearson(
		[]float64{1, 2, 3, 4, 5},
		[]float64{10, 20, 30, 40, 50}), 1e-9)

	assert.InDelta(t, -1.0, pearson(
		[]float64{1, 2, 3, 4, 5},
		[]float64{50, 40, 30, 20, 10}), 1e-9)

	// no variance on one side: defined as zero, never NaN
	assert.Equal(t, 0.0, pearson(
		[]float64{3, 3, 3, 3, 3},
		[]float64{1, 2, 3, 4, 5}))

	assert.Equal(t, 0.0, pearson(nil, nil))
	assert.Equal(t, 0.0, pearson([]float64{1, 2}, []float64{1}))
}

func TestCorrelationStrength(t *testing.T) {
	assert.Equal(t, "strong", correlationStrength(0.7))
	assert.Equal(t, "strong", correlationStrength(-0.95))
	assert.Equal(t, "moderate", correlationStrength(0.5))
	assert.Equal(t, "moderate", correlationStrength(-0.69))
	assert.Equal(t, "weak", correlationStrength(0.49))
}

// corrDays builds a window where sleep quality and mood intensity move
// together and no other domain is logged.
func corrDays(qualities []float64, intensities []float64) []models.DailyMetrics {
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.Local)
	days := make([]models.DailyMetrics, len(qualities))
	for i := range qualities {
		days[i] = models.DailyMetrics{
			Date:   start.AddDate(0, 0, i),
			Logged: true,
			Sleep:  models.SleepMetrics{Logged: true, QualityScore: qualities[i]},
			Mood:   models.MoodMetrics{CheckIns: 1, AvgIntensity: intensities[i]},
		}
	}
	return days
}

func TestComputeCorrelationsPerfectPair(t *testing.T) {
	days := corrDays(
		[]float64{40, 50, 60, 70, 80, 90, 100},
		[]float64{3, 4, 5, 6, 7, 8, 9},
	)

	results := ComputeCorrelations(days)
	require.Len(t, results, 1)

	r := results[0]
	assert.Equal(t, "sleep_quality", r.MetricA)
	assert.Equal(t, "mood_intensity", r.MetricB)
	assert.Equal(t, 1.0, r.Correlation)
	assert.Equal(t, "strong", r.Strength)
	assert.Equal(t, "positive", r.Direction)
	assert.Equal(t, 7, r.DataPoints)
}

func TestComputeCorrelationsNegativeDirection(t *testing.T) {
	days := corrDays(
		[]float64{100, 90, 80, 70, 60, 50},
		[]float64{2, 3, 4, 5, 6, 7},
	)

	results := ComputeCorrelations(days)
	require.Len(t, results, 1)
	assert.Equal(t, -1.0, results[0].Correlation)
	assert.Equal(t, "negative", results[0].Direction)
}

func TestComputeCorrelationsNeedsFivePoints(t *testing.T) {
	days := corrDays(
		[]float64{40, 60, 80, 100},
		[]float64{3, 5, 7, 9},
	)
	assert.Empty(t, ComputeCorrelations(days))
}

func TestComputeCorrelationsDropsWeakPairs(t *testing.T) {
	// quality bounces while intensity drifts: |r| stays inside the 0.3 cutoff
	days := corrDays(
		[]float64{80, 40, 80, 40, 80, 40, 80, 40},
		[]float64{3, 4, 5, 6, 6, 5, 4, 3},
	)
	for _, r := range ComputeCorrelations(days) {
		assert.Greater(t, math.Abs(r.Correlation), 0.3)
	}
}

func TestComputeCorrelationsSortedByStrength(t *testing.T) {
	days := corrDays(
		[]float64{40, 55, 58, 72, 80, 88, 95},
		[]float64{3, 4, 5, 5, 7, 8, 9},
	)
	// add a second logged domain so more than one pair has data
	hydration := []int{500, 900, 1400, 1700, 2500, 2700, 3300}
	for i := range days {
		days[i].HydrationML = hydration[i]
	}

	results := ComputeCorrelations(days)
	require.NotEmpty(t, results)
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t,
			math.Abs(results[i-1].Correlation),
			math.Abs(results[i].Correlation))
	}
}
