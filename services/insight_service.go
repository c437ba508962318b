package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"backend/models"
)

// ErrInsightNotConfigured is returned when no generation API is configured.
// Callers fall back to deterministic copy or skip the cycle.
var ErrInsightNotConfigured = errors.New("insight API not configured")

// InsightService talks to the text-generation API. Its output is treated as
// opaque structured payloads: a response that fails to parse as the expected
// shape is discarded whole — nothing is ever partially applied.
type InsightService struct {
	apiURL string
	apiKey string
	model  string
	client *http.Client
}

func NewInsightService() *InsightService {
	return &InsightService{
		apiURL: os.Getenv("INSIGHT_API_URL"),
		apiKey: os.Getenv("INSIGHT_API_KEY"),
		model:  os.Getenv("INSIGHT_API_MODEL"),
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

func (s *InsightService) configured() bool { return s.apiURL != "" && s.apiKey != "" }

// ChallengeBrief is the structured context handed to the generator when
// asking for a weekly challenge.
type ChallengeBrief struct {
	Level          int                   `json:"level"`
	RecentDays     []models.DailyMetrics `json:"recent_days"`
	PreviousMetric models.EventKind      `json:"previous_metric,omitempty"`
}

// ChallengeDraft is what the generator must return. It is validated by the
// challenge service before anything is persisted.
type ChallengeDraft struct {
	Title       string                     `json:"title"`
	Description string                     `json:"description"`
	Metric      models.EventKind           `json:"metric"`
	TargetValue int                        `json:"target_value"`
	Difficulty  models.ChallengeDifficulty `json:"difficulty"`
}

// WeeklyNarrative is the generated copy for a weekly report.
type WeeklyNarrative struct {
	Summary     string   `json:"summary"`
	Highlights  []string `json:"highlights"`
	Suggestions []string `json:"suggestions"`
}

// ReportContext is the structured summary the narrative is generated from.
type ReportContext struct {
	Days         []models.DailyMetrics      `json:"days"`
	Correlations []CorrelationResult        `json:"correlations"`
	Profile      models.GamificationProfile `json:"profile"`
	WellnessGoal string                     `json:"wellness_goal,omitempty"`
}

// GenerateChallenge asks the API for one challenge draft.
func (s *InsightService) GenerateChallenge(ctx context.Context, brief ChallengeBrief) (*ChallengeDraft, error) {
	if !s.configured() {
		return nil, ErrInsightNotConfigured
	}
	prompt := "Design one weekly wellness challenge as JSON with keys title, description, " +
		"metric (one of water, habit, mood, sleep, journal, meal, exercise), target_value (positive int), " +
		"difficulty (easy, medium or hard)."
	if brief.PreviousMetric != "" {
		prompt += fmt.Sprintf(" Avoid the metric %q, it was used last week.", brief.PreviousMetric)
	}

	raw, err := s.complete(ctx, prompt, brief)
	if err != nil {
		return nil, err
	}

	var draft ChallengeDraft
	if err := json.Unmarshal(extractJSONObject(raw), &draft); err != nil {
		return nil, fmt.Errorf("parse challenge draft: %w", err)
	}
	return &draft, nil
}

// GenerateWeeklyNarrative asks the API for report copy.
func (s *InsightService) GenerateWeeklyNarrative(ctx context.Context, rc ReportContext) (*WeeklyNarrative, error) {
	if !s.configured() {
		return nil, ErrInsightNotConfigured
	}
	prompt := "Write a short weekly wellness report as JSON with keys summary (2-3 sentences), " +
		"highlights (3-5 strings) and suggestions (2-4 strings), grounded only in the attached data."

	raw, err := s.complete(ctx, prompt, rc)
	if err != nil {
		return nil, err
	}

	var n WeeklyNarrative
	if err := json.Unmarshal(extractJSONObject(raw), &n); err != nil {
		return nil, fmt.Errorf("parse weekly narrative: %w", err)
	}
	if strings.TrimSpace(n.Summary) == "" {
		return nil, fmt.Errorf("parse weekly narrative: empty summary")
	}
	return &n, nil
}

type completionRequest struct {
	Model    string        `json:"model,omitempty"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (s *InsightService) complete(ctx context.Context, prompt string, data any) ([]byte, error) {
	attached, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal generation context: %w", err)
	}

	reqBody, err := json.Marshal(completionRequest{
		Model: s.model,
		Messages: []chatMessage{
			{Role: "system", Content: "You respond with a single JSON object and nothing else."},
			{Role: "user", Content: prompt + "\n\nData:\n" + string(attached)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal generation request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("build generation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call generation API: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read generation response: %w", err)
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("generation API rate limited")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("generation API error %d: %s", resp.StatusCode, string(body))
	}

	var cr completionResponse
	if err := json.Unmarshal(body, &cr); err != nil {
		return nil, fmt.Errorf("parse generation envelope: %w", err)
	}
	if len(cr.Choices) == 0 {
		return nil, fmt.Errorf("generation API returned no choices")
	}
	return []byte(cr.Choices[0].Message.Content), nil
}

// extractJSONObject trims any prose the model wrapped around its JSON object.
func extractJSONObject(raw []byte) []byte {
	start := bytes.IndexByte(raw, '{')
	end := bytes.LastIndexByte(raw, '}')
	if start < 0 || end < start {
		return raw
	}
	return raw[start : end+1]
}
