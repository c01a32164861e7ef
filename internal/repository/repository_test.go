package repository

import (
	"testing"

	"github.com/soranokaze/glimpanel/internal/model"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
	})
	require.NoError(t, err)

	// A single connection keeps every session on the same in-memory database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&model.Role{},
		&model.User{},
		&model.Streamer{},
		&model.PointBalance{},
		&model.PointHistory{},
		&model.DailyClaim{},
		&model.GiftTransfer{},
		&model.StreamerInbox{},
	))

	return db
}
