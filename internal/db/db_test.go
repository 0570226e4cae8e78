package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	"github.com/25-26J-299/smartrose-admin/config"
	"github.com/25-26J-299/smartrose-admin/internal/model"
)

func TestInit_SQLiteMigrates(t *testing.T) {
	cfg := &config.StorageConfig{
		Driver:   "sqlite",
		DSN:      filepath.Join(t.TempDir(), "console.db"),
		LogLevel: "silent",
	}

	gormDB, err := Init(cfg)
	require.NoError(t, err)
	sqlDB, _ := gormDB.DB()
	defer sqlDB.Close()

	assert.True(t, gormDB.Migrator().HasTable(&model.Setting{}))
	assert.True(t, gormDB.Migrator().HasTable(&model.PushSubscription{}))
}

func TestInit_UnsupportedDriver(t *testing.T) {
	_, err := Init(&config.StorageConfig{Driver: "oracle"})
	assert.EqualError(t, err, `unsupported storage driver "oracle"`)
}

func TestLogLevel(t *testing.T) {
	assert.Equal(t, logger.Silent, logLevel("SILENT"))
	assert.Equal(t, logger.Info, logLevel("info"))
	assert.Equal(t, logger.Warn, logLevel(""))
}
