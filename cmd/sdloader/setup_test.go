package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	domainConfig "github.com/Yat-Muk/sdloader/internal/domain/config"
	"github.com/Yat-Muk/sdloader/internal/infra/fs"
	"github.com/Yat-Muk/sdloader/internal/pkg/appctx"
	apperrors "github.com/Yat-Muk/sdloader/internal/pkg/errors"
	"github.com/Yat-Muk/sdloader/internal/pkg/logger"
)

// setupTestPaths 創建測試用的工作目錄
func setupTestPaths(t *testing.T) *appctx.Paths {
	t.Helper()
	paths, err := appctx.NewPaths(t.TempDir())
	require.NoError(t, err, "Failed to create test paths")
	return paths
}

// createTestLogger 創建測試用的 logger
func createTestLogger(t *testing.T) *zap.Logger {
	t.Helper()

	cfg := logger.DefaultConfig()
	cfg.Console = false
	cfg.Level = "debug"
	cfg.OutputPath = filepath.Join(t.TempDir(), "test.log")

	log, err := logger.New(cfg)
	require.NoError(t, err, "Failed to create test logger")
	return log
}

func TestInitializeDependencies_Success(t *testing.T) {
	// Arrange
	paths := setupTestPaths(t)
	log := createTestLogger(t)
	defer log.Sync()

	// Act
	deps, err := initializeDependencies(log, paths, domainConfig.DefaultConfig())

	// Assert
	require.NoError(t, err)
	defer deps.Close()

	assert.NotNil(t, deps.ConfigSvc)
	assert.NotNil(t, deps.Storage)
	assert.NotNil(t, deps.Fsys)
	assert.NotNil(t, deps.Battery)
	assert.NotNil(t, deps.Modchip)
	assert.NotNil(t, deps.Boot)
	assert.NotNil(t, deps.Backups)
	assert.DirExists(t, filepath.Join(paths.BaseDir, "backups"))
	assert.Equal(t, filepath.Join(paths.BaseDir, "payload.out"), deps.Loader.Output())
}

func TestInitializeDependencies_NilConfig(t *testing.T) {
	paths := setupTestPaths(t)

	deps, err := initializeDependencies(zap.NewNop(), paths, nil)
	require.NoError(t, err)
	assert.Equal(t, domainConfig.DefaultConfig(), deps.Config)
}

func TestInitializeDependencies_InvalidConfig(t *testing.T) {
	paths := setupTestPaths(t)
	cfg := domainConfig.DefaultConfig()
	cfg.Display.Backend = "sdl"

	_, err := initializeDependencies(zap.NewNop(), paths, cfg)
	assert.ErrorIs(t, err, apperrors.ErrConfigInvalid)
}

func TestDriveRoots(t *testing.T) {
	paths := setupTestPaths(t)
	d := domainConfig.DefaultConfig().Drives
	d.GPP = "/mnt/gpp"

	roots := driveRoots(paths, d)
	assert.Equal(t, filepath.Join(paths.BaseDir, "drives", "sd"), roots[fs.DriveSD])
	assert.Equal(t, filepath.Join(paths.BaseDir, "drives", "boot1_1mb"), roots[fs.DriveBoot1_1MB])
	assert.Equal(t, "/mnt/gpp", roots[fs.DriveGPP])
}

func TestLoggerConfig(t *testing.T) {
	paths := setupTestPaths(t)
	c := domainConfig.DefaultConfig().Log

	got := loggerConfig(c, paths, false, false)
	assert.Equal(t, paths.LogFile, got.OutputPath)
	assert.Equal(t, "info", got.Level)
	assert.False(t, got.Console)

	c.OutputPath = "custom.log"
	got = loggerConfig(c, paths, true, true)
	assert.Equal(t, filepath.Join(paths.BaseDir, "custom.log"), got.OutputPath)
	assert.Equal(t, "debug", got.Level)
	assert.True(t, got.Console)
}
