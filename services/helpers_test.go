package services

import (
	"testing"

	"backend/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a fresh in-memory database with the full schema. One open
// connection, so every query and transaction sees the same memory store.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.WellnessEvent{},
		&models.GamificationProfile{},
		&models.Habit{},
		&models.HabitLog{},
		&models.EarnedAchievement{},
		&models.Challenge{},
		&models.Insight{},
		&models.Notification{},
	))
	return db
}

func mustPayload(t *testing.T, v any) []byte {
	t.Helper()
	b, err := models.EncodePayload(v)
	require.NoError(t, err)
	return b
}
