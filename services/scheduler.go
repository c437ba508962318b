package services

import (
	"context"
	"log"
	"time"

	"backend/models"

	"gorm.io/gorm"
)

// Scheduler drives the engine's background cadence: challenge expiry every
// tick, and the weekly sweep (challenge generation, freeze replenishment,
// reports) on Monday mornings. The engine handlers it invokes are per-user
// and failure-isolated — one user's error is logged and the sweep moves on.
type Scheduler struct {
	db         *gorm.DB
	streaks    *StreakService
	challenges *ChallengeService
	reports    *ReportService

	interval   time.Duration
	weeklyHour int // local hour on Monday when the weekly sweep runs
}

func NewScheduler(db *gorm.DB, st *StreakService, ch *ChallengeService, rp *ReportService) *Scheduler {
	return &Scheduler{
		db:         db,
		streaks:    st,
		challenges: ch,
		reports:    rp,
		interval:   time.Hour,
		weeklyHour: 6,
	}
}

// Start runs the tick loop until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	go func() {
		t := time.NewTicker(s.interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-t.C:
				s.RunDue(ctx, now)
			}
		}
	}()
}

// RunDue executes whatever is due at the given instant.
func (s *Scheduler) RunDue(ctx context.Context, now time.Time) {
	if n, err := s.challenges.ExpireDue(ctx, now); err != nil {
		log.Printf("scheduler: challenge expiry failed: %v", err)
	} else if n > 0 {
		log.Printf("scheduler: archived %d expired challenges", n)
	}

	if now.Weekday() == time.Monday && now.Hour() == s.weeklyHour {
		s.RunWeekly(ctx, now)
	}
}

// RunWeekly replenishes freezes in bulk, then generates a fresh challenge
// and a weekly report per active user.
func (s *Scheduler) RunWeekly(ctx context.Context, now time.Time) {
	if n, err := s.streaks.ReplenishFreezes(ctx, now); err != nil {
		log.Printf("scheduler: freeze replenishment failed: %v", err)
	} else {
		log.Printf("scheduler: replenished freezes for %d users", n)
	}

	var userIDs []uint
	if err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("disabled = ?", false).
		Pluck("id", &userIDs).Error; err != nil {
		log.Printf("scheduler: user scan failed: %v", err)
		return
	}

	for _, uid := range userIDs {
		if _, err := s.challenges.GenerateWeekly(ctx, uid); err != nil {
			log.Printf("scheduler: challenge generation skipped for user %d: %v", uid, err)
		}
		if _, err := s.reports.BuildWeeklyReport(ctx, uid); err != nil {
			log.Printf("scheduler: weekly report skipped for user %d: %v", uid, err)
		}
	}
}
