package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"backend/models"

	"gorm.io/gorm"
)

// ErrChallengeNotFound covers missing challenges and ownership mismatches;
// operations on another user's challenge are rejected, never silently ignored.
var ErrChallengeNotFound = errors.New("challenge not found")

// ChallengeXPRewards maps difficulty to the fixed completion bonus.
var ChallengeXPRewards = map[models.ChallengeDifficulty]int{
	models.DifficultyEasy:   50,
	models.DifficultyMedium: 100,
	models.DifficultyHard:   200,
}

const challengeDuration = 7 * 24 * time.Hour

// ChallengeGenerator produces a challenge draft from recent context.
// InsightService satisfies it; tests substitute their own.
type ChallengeGenerator interface {
	GenerateChallenge(ctx context.Context, brief ChallengeBrief) (*ChallengeDraft, error)
}

// ChallengeService runs the none -> active -> completed|archived lifecycle.
type ChallengeService struct {
	db           *gorm.DB
	gamification *GamificationService
	metrics      *MetricsService
	generator    ChallengeGenerator
}

func NewChallengeService(db *gorm.DB, g *GamificationService, m *MetricsService, gen ChallengeGenerator) *ChallengeService {
	return &ChallengeService{db: db, gamification: g, metrics: m, generator: gen}
}

// Active returns the user's active challenge, or nil when there is none.
func (s *ChallengeService) Active(ctx context.Context, userID uint) (*models.Challenge, error) {
	var ch models.Challenge
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, models.ChallengeActive).
		First(&ch).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load active challenge: %w", err)
	}
	return &ch, nil
}

// GenerateWeekly creates the user's challenge for the coming week. Any prior
// active challenge is archived in the same transaction as the insert, so at
// most one active challenge exists per user at any time. A draft that fails
// to generate or validate is discarded whole — nothing is persisted.
func (s *ChallengeService) GenerateWeekly(ctx context.Context, userID uint) (*models.Challenge, error) {
	profile, err := s.gamification.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	recent, err := s.metrics.DailyMetrics(ctx, userID, 7)
	if err != nil {
		return nil, fmt.Errorf("recent activity: %w", err)
	}

	var prev models.Challenge
	var prevMetric models.EventKind
	err = s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		First(&prev).Error
	if err == nil {
		prevMetric = prev.Metric
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("load previous challenge: %w", err)
	}

	brief := ChallengeBrief{Level: profile.Level, RecentDays: recent, PreviousMetric: prevMetric}
	draft, err := s.generator.GenerateChallenge(ctx, brief)
	if errors.Is(err, ErrInsightNotConfigured) {
		draft = fallbackChallengeDraft(brief)
	} else if err != nil {
		return nil, fmt.Errorf("generate challenge: %w", err)
	}
	if err := validateDraft(draft); err != nil {
		return nil, fmt.Errorf("generated challenge rejected: %w", err)
	}

	ch := models.Challenge{
		UserID:      userID,
		Title:       draft.Title,
		Description: draft.Description,
		Metric:      draft.Metric,
		TargetValue: draft.TargetValue,
		Difficulty:  draft.Difficulty,
		Status:      models.ChallengeActive,
		ExpiresAt:   time.Now().Add(challengeDuration),
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Challenge{}).
			Where("user_id = ? AND status = ?", userID, models.ChallengeActive).
			Update("status", models.ChallengeArchived).Error; err != nil {
			return fmt.Errorf("archive prior challenge: %w", err)
		}
		if err := tx.Create(&ch).Error; err != nil {
			return fmt.Errorf("insert challenge: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	EmitNotification(userID, "challenge_available", "New weekly challenge",
		fmt.Sprintf("%s — %s", ch.Title, ch.Description))
	return &ch, nil
}

// RecordProgress advances the active challenge whose metric matches the
// event. Reaching the target transitions irreversibly to completed and
// applies the difficulty's fixed XP bonus through the non-recursive delta
// primitive. Returns nil when no matching active challenge exists.
func (s *ChallengeService) RecordProgress(ctx context.Context, userID uint, metric models.EventKind, amount int) (*models.Challenge, error) {
	if amount <= 0 {
		return nil, nil
	}
	var ch models.Challenge
	completed := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("user_id = ? AND status = ? AND metric = ?", userID, models.ChallengeActive, metric).
			First(&ch).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err != nil {
			return fmt.Errorf("load challenge: %w", err)
		}

		if err := tx.Model(&models.Challenge{}).Where("id = ?", ch.ID).
			UpdateColumn("current_value", gorm.Expr("current_value + ?", amount)).Error; err != nil {
			return fmt.Errorf("advance challenge: %w", err)
		}
		if err := tx.First(&ch, ch.ID).Error; err != nil {
			return fmt.Errorf("reload challenge: %w", err)
		}

		if ch.CurrentValue >= ch.TargetValue {
			now := time.Now()
			res := tx.Model(&models.Challenge{}).
				Where("id = ? AND status = ?", ch.ID, models.ChallengeActive).
				Updates(map[string]any{"status": models.ChallengeCompleted, "completed_at": now})
			if res.Error != nil {
				return fmt.Errorf("complete challenge: %w", res.Error)
			}
			if res.RowsAffected > 0 {
				completed = true
				ch.Status = models.ChallengeCompleted
				ch.CompletedAt = &now
			}
		}
		return nil
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if completed {
		reward := ChallengeXPRewards[ch.Difficulty]
		if _, err := s.gamification.ApplyXPDelta(ctx, userID, reward); err != nil {
			log.Printf("challenge %d reward failed for user %d: %v", ch.ID, userID, err)
		}
		EmitNotification(userID, "challenge_completed", "Challenge complete",
			fmt.Sprintf("%s done! +%d XP", ch.Title, reward))
	}
	return &ch, nil
}

// Dismiss archives the user's active challenge without awarding XP.
func (s *ChallengeService) Dismiss(ctx context.Context, userID, challengeID uint) error {
	res := s.db.WithContext(ctx).Model(&models.Challenge{}).
		Where("id = ? AND user_id = ? AND status = ?", challengeID, userID, models.ChallengeActive).
		Update("status", models.ChallengeArchived)
	if res.Error != nil {
		return fmt.Errorf("dismiss challenge: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrChallengeNotFound
	}
	return nil
}

// ExpireDue archives every active challenge past its deadline. Expiry is the
// same transition as manual dismissal; no XP is involved.
func (s *ChallengeService) ExpireDue(ctx context.Context, now time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Model(&models.Challenge{}).
		Where("status = ? AND expires_at < ?", models.ChallengeActive, now).
		Update("status", models.ChallengeArchived)
	if res.Error != nil {
		return 0, fmt.Errorf("expire challenges: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func validateDraft(d *ChallengeDraft) error {
	if d == nil {
		return fmt.Errorf("empty draft")
	}
	if d.Title == "" {
		return fmt.Errorf("missing title")
	}
	if !d.Metric.Valid() {
		return fmt.Errorf("unknown metric %q", d.Metric)
	}
	if d.TargetValue <= 0 {
		return fmt.Errorf("target must be positive, got %d", d.TargetValue)
	}
	if !d.Difficulty.Valid() {
		return fmt.Errorf("unknown difficulty %q", d.Difficulty)
	}
	return nil
}

// fallbackChallengeDraft produces a deterministic challenge when no
// generation API is configured, rotating away from last week's metric and
// scaling difficulty with level.
func fallbackChallengeDraft(brief ChallengeBrief) *ChallengeDraft {
	type template struct {
		metric models.EventKind
		title  string
		desc   string
		target int
	}
	templates := []template{
		{models.EventWater, "Stay Topped Up", "Log water 10 times this week.", 10},
		{models.EventHabit, "Keep the Chain", "Complete habits 7 times this week.", 7},
		{models.EventExercise, "Move More", "Log 5 workouts this week.", 5},
		{models.EventSleep, "Rest Up", "Log your sleep 5 nights this week.", 5},
		{models.EventMood, "Check In", "Record your mood 7 times this week.", 7},
		{models.EventMeal, "Fuel Right", "Log 10 meals this week.", 10},
	}

	pick := templates[0]
	for _, t := range templates {
		if t.metric != brief.PreviousMetric {
			pick = t
			break
		}
	}

	difficulty := models.DifficultyEasy
	switch {
	case brief.Level >= 15:
		difficulty = models.DifficultyHard
	case brief.Level >= 5:
		difficulty = models.DifficultyMedium
	}

	return &ChallengeDraft{
		Title:       pick.title,
		Description: pick.desc,
		Metric:      pick.metric,
		TargetValue: pick.target,
		Difficulty:  difficulty,
	}
}
