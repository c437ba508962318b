package services

import (
	"context"
	"testing"

	"backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare object", `{"a":1}`, `{"a":1}`},
		{"prose wrapped", "Sure! Here you go:\n{\"a\":1}\nHope that helps.", `{"a":1}`},
		{"code fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"no object passes through", "no json here", "no json here"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, string(extractJSONObject([]byte(tt.in))))
		})
	}
}

func TestInsightServiceUnconfigured(t *testing.T) {
	svc := &InsightService{} // no URL, no key

	_, err := svc.GenerateChallenge(context.Background(), ChallengeBrief{Level: 1})
	assert.ErrorIs(t, err, ErrInsightNotConfigured)

	_, err = svc.GenerateWeeklyNarrative(context.Background(), ReportContext{})
	assert.ErrorIs(t, err, ErrInsightNotConfigured)
}

func TestComposeFallbackNarrative(t *testing.T) {
	week := corrDays(
		[]float64{40, 50, 60, 70, 80},
		[]float64{3, 4, 5, 6, 7},
	)
	correlations := ComputeCorrelations(week)
	require.NotEmpty(t, correlations)

	profile := &models.GamificationProfile{Level: 3, TotalXP: 500}
	n := composeFallbackNarrative(week, correlations, profile)

	assert.Contains(t, n.Summary, "level 3")
	assert.NotEmpty(t, n.Highlights)
	assert.LessOrEqual(t, len(n.Highlights), 3)
	// five logged days out of seven earns a consistency nudge
	assert.NotEmpty(t, n.Suggestions)
}
