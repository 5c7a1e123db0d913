package db

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"hotel/internal/config"
	"hotel/internal/model"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	gormDB, err := Open(config.DatabaseConfig{
		Driver: "sqlite",
		DSN:    filepath.Join(t.TempDir(), "hotel.db"),
	}, "silent")
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(gormDB) })

	require.NoError(t, Migrate(gormDB))
	return gormDB
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(config.DatabaseConfig{Driver: "oracle"}, "info")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database driver")
}

func TestMigrate_CreatesTables(t *testing.T) {
	gormDB := openTestDB(t)

	assert.True(t, gormDB.Migrator().HasTable(&model.User{}))
	assert.True(t, gormDB.Migrator().HasTable(&model.Room{}))
	assert.NoError(t, Ping(context.Background(), gormDB))
}

func TestOpen_TranslatesUniqueViolation(t *testing.T) {
	gormDB := openTestDB(t)

	first := model.Room{RoomNumber: "101", RoomType: model.RoomTypeSingle, PricePerNight: decimal.NewFromInt(100)}
	require.NoError(t, gormDB.Create(&first).Error)

	dup := model.Room{RoomNumber: "101", RoomType: model.RoomTypeDouble, PricePerNight: decimal.NewFromInt(120)}
	err := gormDB.Create(&dup).Error
	assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey), "got %v", err)
}

func TestReset_DropsTables(t *testing.T) {
	gormDB := openTestDB(t)

	require.NoError(t, Reset(gormDB))
	assert.False(t, gormDB.Migrator().HasTable(&model.User{}))
	assert.False(t, gormDB.Migrator().HasTable(&model.Room{}))

	// dropping again is a no-op
	require.NoError(t, Reset(gormDB))
}

func TestGormLogLevel(t *testing.T) {
	assert.Equal(t, logger.Info, gormLogLevel("debug"))
	assert.Equal(t, logger.Warn, gormLogLevel("info"))
	assert.Equal(t, logger.Error, gormLogLevel("error"))
	assert.Equal(t, logger.Silent, gormLogLevel("silent"))
}
