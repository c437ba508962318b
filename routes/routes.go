package routes

import (
	"backend/controllers"
	"backend/middlewares"
	"backend/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Deps holds the shared service instances the router hands to controllers.
type Deps struct {
	DB           *gorm.DB
	Events       *services.EventService
	Metrics      *services.MetricsService
	Gamification *services.GamificationService
	Streaks      *services.StreakService
	Achievements *services.AchievementService
	Challenges   *services.ChallengeService
	Reports      *services.ReportService
	Hub          *services.RealtimeHub
	Push         *services.PushService
}

func SetupRouter(d Deps) *gin.Engine {
	r := gin.Default()

	eventCtl := controllers.NewEventController(d.Events)
	metricsCtl := controllers.NewMetricsController(d.Metrics)
	gamCtl := controllers.NewGamificationController(d.Gamification, d.Streaks)
	habitCtl := controllers.NewHabitController(d.Streaks)
	achCtl := controllers.NewAchievementController(d.Achievements)
	chalCtl := controllers.NewChallengeController(d.Challenges)
	insightCtl := controllers.NewInsightController(d.Metrics, d.Reports)
	rtCtl := controllers.NewRealtimeController(d.Hub)

	// Public auth routes
	auth := r.Group("/auth")
	{
		auth.POST("/register", controllers.Register)
		auth.POST("/login", controllers.Login)
	}

	// Protected user routes
	user := r.Group("/user")
	user.Use(middlewares.AuthMiddleware())
	{
		user.GET("/profile", controllers.GetProfile)
		user.PUT("/profile", controllers.UpdateProfile)
		user.DELETE("/account", controllers.DeleteAccount)
		user.POST("/notifications/toggle", controllers.ToggleNotifications)
	}

	api := r.Group("/api")
	api.Use(middlewares.AuthMiddleware())
	{
		api.POST("/events", eventCtl.Log)
		api.GET("/events", eventCtl.List)
		api.DELETE("/events/:id", eventCtl.Delete)

		api.GET("/metrics/daily", metricsCtl.Daily)

		api.GET("/gamification/profile", gamCtl.Profile)
		api.POST("/gamification/streak-freeze", gamCtl.UseStreakFreeze)

		api.POST("/habits", habitCtl.Create)
		api.GET("/habits", habitCtl.List)
		api.POST("/habits/:id/complete", habitCtl.Complete)

		api.GET("/achievements", achCtl.List)
		api.POST("/achievements/evaluate", achCtl.Evaluate)

		api.GET("/challenges/current", chalCtl.Current)
		api.POST("/challenges/generate", chalCtl.Generate)
		api.POST("/challenges/:id/dismiss", chalCtl.Dismiss)

		api.GET("/insights/correlations", insightCtl.Correlations)
		api.GET("/insights/reports", insightCtl.ListReports)
		api.POST("/insights/reports", insightCtl.BuildReport)

		api.GET("/notifications", controllers.ListNotifications)
		api.POST("/notifications/:id/read", controllers.MarkNotificationRead)

		api.GET("/ws/notifications", rtCtl.NotificationsWS)
	}

	if d.Push != nil {
		devCtl := controllers.NewDeviceController(d.Push)
		devices := r.Group("/devices")
		devices.Use(middlewares.AuthMiddleware())
		devices.POST("/register", devCtl.Register)
	}

	return r
}
