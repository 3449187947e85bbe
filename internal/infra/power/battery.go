// Package power 讀取電池電量，供菜單左上角的電量條使用。
package power

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Battery 電量讀取能力
type Battery interface {
	// Read 返回電量百分比 (0..100) 和是否在充電
	Read() (percent int, charging bool, err error)
}

// Fixed 固定電量，用於沒有電池的主機
type Fixed struct {
	Percent  int
	Charging bool
}

func (f Fixed) Read() (int, bool, error) {
	return clampPercent(f.Percent), f.Charging, nil
}

// Sysfs 讀取 Linux power_supply 目錄中的 capacity 和 status
type Sysfs struct {
	dir string
	log *zap.Logger
}

// NewSysfs 創建 sysfs 讀取器，dir 形如 /sys/class/power_supply/BAT0
func NewSysfs(dir string, log *zap.Logger) *Sysfs {
	if log == nil {
		log = zap.NewNop()
	}
	return &Sysfs{dir: dir, log: log}
}

func (s *Sysfs) Read() (int, bool, error) {
	raw, err := os.ReadFile(filepath.Join(s.dir, "capacity"))
	if err != nil {
		return 0, false, fmt.Errorf("讀取電量失敗: %w", err)
	}
	percent, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil {
		return 0, false, fmt.Errorf("解析電量失敗: %w", err)
	}

	charging := false
	if status, err := os.ReadFile(filepath.Join(s.dir, "status")); err == nil {
		charging = strings.TrimSpace(string(status)) == "Charging"
	} else {
		s.log.Debug("讀取充電狀態失敗", zap.String("dir", s.dir), zap.Error(err))
	}

	return clampPercent(percent), charging, nil
}

// Available sysfs 目錄中是否有 capacity 文件
func (s *Sysfs) Available() bool {
	_, err := os.Stat(filepath.Join(s.dir, "capacity"))
	return err == nil
}

// Detect 優先使用 sysfs，不可用時回退到固定電量
func Detect(dir string, fallbackPercent int, log *zap.Logger) Battery {
	if dir != "" {
		s := NewSysfs(dir, log)
		if s.Available() {
			return s
		}
		if log != nil {
			log.Info("未找到電池，使用固定電量", zap.String("dir", dir), zap.Int("percent", fallbackPercent))
		}
	}
	return Fixed{Percent: fallbackPercent}
}

func clampPercent(p int) int {
	return min(max(p, 0), 100)
}
