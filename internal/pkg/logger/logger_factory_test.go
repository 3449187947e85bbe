package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestDefaultConfig 測試默認配置
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "info", cfg.Level)
	assert.Empty(t, cfg.OutputPath)
	assert.Equal(t, 10, cfg.MaxSize)
	assert.Equal(t, 5, cfg.MaxBackups)
	assert.Equal(t, 30, cfg.MaxAge)
	assert.True(t, cfg.Compress)
	assert.True(t, cfg.Console)
}

// TestNew 測試自定義配置創建logger
func TestNew(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "test.log")

	cfg := Config{
		Level:      "debug",
		OutputPath: logPath,
		MaxSize:    5,
		MaxBackups: 3,
		MaxAge:     7,
	}

	logger, err := New(cfg)
	assert.NoError(t, err)
	assert.NotNil(t, logger)

	logger.Info("test message")

	_, err = os.Stat(logPath)
	assert.NoError(t, err, "日誌文件應該被創建")
}

// TestNew_InvalidLevel 測試無效日誌級別
func TestNew_InvalidLevel(t *testing.T) {
	logger, err := New(Config{Level: "invalid", Console: true})
	assert.Error(t, err)
	assert.Nil(t, logger)
}

// TestNew_ConsoleOnly 測試僅控制台輸出
func TestNew_ConsoleOnly(t *testing.T) {
	logger, err := New(Config{Level: "info", Console: true})
	assert.NoError(t, err)
	assert.NotNil(t, logger)

	logger.Info("console only message")
}

// TestNewDevelopment 測試開發環境logger
func TestNewDevelopment(t *testing.T) {
	logger, err := NewDevelopment()
	assert.NoError(t, err)
	assert.NotNil(t, logger)
}

// TestLoggerHelpers 測試日誌輔助函數
func TestLoggerHelpers(t *testing.T) {
	t.Run("String", func(t *testing.T) {
		field := String("key", "value")
		assert.Equal(t, "key", field.Key)
		assert.Equal(t, "value", field.String)
	})

	t.Run("Int", func(t *testing.T) {
		field := Int("count", 42)
		assert.Equal(t, "count", field.Key)
		assert.Equal(t, int64(42), field.Integer)
	})

	t.Run("Error", func(t *testing.T) {
		field := Error(assert.AnError)
		assert.Equal(t, "error", field.Key)
	})

	t.Run("Hex", func(t *testing.T) {
		field := Hex("magic", 0xAA5458BA)
		assert.Equal(t, "0xaa5458ba", field.String)
	})
}
