package main

import (
	"context"
	"log"

	"backend/config"
	"backend/routes"
	"backend/services"
)

func main() {
	config.InitDB()
	db := config.DB

	gamification := services.NewGamificationService(db)
	metrics := services.NewMetricsService(db)
	streaks := services.NewStreakService(db)
	achievements := services.NewAchievementService(db, gamification)
	insight := services.NewInsightService()
	challenges := services.NewChallengeService(db, gamification, metrics, insight)
	events := services.NewEventService(db, gamification, streaks, achievements, challenges)
	reports := services.NewReportService(db, metrics, gamification, insight)

	hub := services.NewRealtimeHub()
	push, err := services.NewPushService(db)
	if err != nil {
		log.Printf("push disabled: %v", err)
	}
	services.InitNotifyDeps(db, hub, push)

	scheduler := services.NewScheduler(db, streaks, challenges, reports)
	scheduler.Start(context.Background())

	r := routes.SetupRouter(routes.Deps{
		DB:           db,
		Events:       events,
		Metrics:      metrics,
		Gamification: gamification,
		Streaks:      streaks,
		Achievements: achievements,
		Challenges:   challenges,
		Reports:      reports,
		Hub:          hub,
		Push:         push,
	})

	if err := r.Run(":8080"); err != nil {
		log.Fatal(err)
	}
}
