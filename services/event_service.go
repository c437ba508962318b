package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"backend/models"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrEventNotFound = errors.New("event not found")
	ErrInvalidEvent  = errors.New("invalid event")
)

// EventService owns event ingest and the gamification pipeline that follows
// it. The event insert is the only write that must succeed synchronously;
// every downstream step (streak, XP, achievements, challenge progress) is
// tolerant of its own failure and never rolls the event back.
type EventService struct {
	db           *gorm.DB
	gamification *GamificationService
	streaks      *StreakService
	achievements *AchievementService
	challenges   *ChallengeService
}

func NewEventService(db *gorm.DB, g *GamificationService, st *StreakService, a *AchievementService, ch *ChallengeService) *EventService {
	return &EventService{db: db, gamification: g, streaks: st, achievements: a, challenges: ch}
}

type LogEventInput struct {
	Kind       models.EventKind   `json:"kind" binding:"required"`
	Payload    json.RawMessage    `json:"payload"`
	OccurredAt *time.Time         `json:"occurred_at"`
	Source     models.EventSource `json:"source"`
	ClientID   string             `json:"client_id"`
}

// LogEvent validates and persists one wellness event, then runs the
// gamification side effects. When a ClientID is replayed (an automated
// import retrying, say) the stored event is returned and the pipeline is
// not re-run.
func (s *EventService) LogEvent(ctx context.Context, userID uint, input LogEventInput) (*models.WellnessEvent, error) {
	if !input.Kind.Valid() {
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidEvent, input.Kind)
	}
	payload, err := normalizePayload(input.Kind, input.Payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}

	source := input.Source
	if source != models.SourceAutomated {
		source = models.SourceManual
	}
	occurredAt := time.Now()
	if input.OccurredAt != nil {
		occurredAt = *input.OccurredAt
	}

	if input.ClientID != "" {
		if _, err := uuid.Parse(input.ClientID); err != nil {
			return nil, fmt.Errorf("%w: client_id must be a uuid", ErrInvalidEvent)
		}
		var existing models.WellnessEvent
		err := s.db.WithContext(ctx).
			Where("user_id = ? AND client_id = ?", userID, input.ClientID).
			First(&existing).Error
		if err == nil {
			return &existing, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("dedupe lookup: %w", err)
		}
	}

	ev := models.WellnessEvent{
		UserID:     userID,
		Kind:       input.Kind,
		Payload:    payload,
		OccurredAt: occurredAt,
		Source:     source,
		ClientID:   input.ClientID,
	}
	if err := s.db.WithContext(ctx).Create(&ev).Error; err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}

	s.runPipeline(ctx, &ev)
	return &ev, nil
}

// runPipeline applies the gamification side effects of one freshly persisted
// event, in order. Each step logs and continues on failure; one user's bad
// step never touches another user's processing, and a failed reward can be
// healed by the next qualifying event (every step is idempotent per day).
func (s *EventService) runPipeline(ctx context.Context, ev *models.WellnessEvent) {
	if ev.Kind == models.EventHabit {
		if payload, err := ev.DecodePayload(); err == nil {
			if hp, ok := payload.(*models.HabitPayload); ok && hp.HabitID != 0 {
				if _, err := s.streaks.CompleteHabit(ctx, ev.UserID, hp.HabitID, ev.OccurredAt); err != nil {
					log.Printf("event %d: habit completion failed: %v", ev.ID, err)
				}
			}
		}
	}

	best, err := s.streaks.BestStreak(ctx, ev.UserID)
	if err != nil {
		log.Printf("event %d: best streak lookup failed: %v", ev.ID, err)
	}

	grant, err := s.gamification.GrantXP(ctx, ev.UserID, XPAction(ev.Kind), best)
	if err != nil {
		log.Printf("event %d: xp grant failed: %v", ev.ID, err)
	} else if grant.LeveledUp {
		EmitNotification(ev.UserID, "level_up", "Level up!",
			fmt.Sprintf("You reached level %d.", grant.Profile.Level))
	}

	if _, err := s.achievements.Evaluate(ctx, ev.UserID); err != nil {
		log.Printf("event %d: achievement evaluation failed: %v", ev.ID, err)
	}

	if _, err := s.challenges.RecordProgress(ctx, ev.UserID, ev.Kind, 1); err != nil {
		log.Printf("event %d: challenge progress failed: %v", ev.ID, err)
	}
}

// ListEvents returns the user's events over the trailing day window, oldest first.
func (s *EventService) ListEvents(ctx context.Context, userID uint, days int) ([]models.WellnessEvent, error) {
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
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

// DeleteEvent removes a user's own event (user-initiated deletion is the
// only mutation events support).
func (s *EventService) DeleteEvent(ctx context.Context, userID, eventID uint) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", eventID, userID).
		Delete(&models.WellnessEvent{})
	if res.Error != nil {
		return fmt.Errorf("delete event: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrEventNotFound
	}
	return nil
}

// normalizePayload decodes the raw payload into the kind's typed struct,
// applies basic range checks, and re-encodes the canonical form.
func normalizePayload(kind models.EventKind, raw json.RawMessage) (datatypes.JSON, error) {
	probe := models.WellnessEvent{Kind: kind, Payload: datatypes.JSON(raw)}
	decoded, err := probe.DecodePayload()
	if err != nil {
		return nil, err
	}

	switch p := decoded.(type) {
	case *models.WaterPayload:
		if p.AmountML <= 0 {
			return nil, fmt.Errorf("water amount must be positive")
		}
	case *models.SleepPayload:
		if p.DurationMin <= 0 {
			return nil, fmt.Errorf("sleep duration must be positive")
		}
		if p.Quality < 1 || p.Quality > 10 {
			return nil, fmt.Errorf("sleep quality must be 1-10")
		}
	case *models.MoodPayload:
		if p.Mood == "" {
			return nil, fmt.Errorf("mood label is required")
		}
		if p.Intensity < 1 || p.Intensity > 10 {
			return nil, fmt.Errorf("mood intensity must be 1-10")
		}
	case *models.HabitPayload:
		if p.HabitID == 0 {
			return nil, fmt.Errorf("habit_id is required")
		}
	case *models.MealPayload:
		if p.Calories < 0 || p.Protein < 0 {
			return nil, fmt.Errorf("meal totals cannot be negative")
		}
	case *models.ExercisePayload:
		if p.DurationMin <= 0 {
			return nil, fmt.Errorf("exercise duration must be positive")
		}
	}

	return models.EncodePayload(decoded)
}
