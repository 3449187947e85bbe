package config

import (
	"fmt"
)

const (
	// ConfigVersionLatest 最新配置版本
	ConfigVersionLatest = 1
)

// Migrator 配置遷移器
type Migrator struct{}

// NewMigrator 創建遷移器
func NewMigrator() *Migrator {
	return &Migrator{}
}

// MigrateToLatest 自動遷移到最新版本
func (m *Migrator) MigrateToLatest(cfg *Config) (*Config, error) {
	if cfg == nil {
		return nil, fmt.Errorf("配置為空，無法遷移")
	}

	if cfg.Version > ConfigVersionLatest {
		return nil, fmt.Errorf("配置版本過高 (v%d)，當前程序僅支持 v%d", cfg.Version, ConfigVersionLatest)
	}

	// 未標註版本的文件：補齊缺省字段
	if cfg.Version == 0 {
		out := cfg.DeepCopy()
		out.FillDefaults()
		out.Version = ConfigVersionLatest
		return out, nil
	}

	return cfg, nil
}

// NeedsMigration 檢查是否需要遷移
func (m *Migrator) NeedsMigration(cfg *Config) bool {
	if cfg == nil {
		return false
	}
	return cfg.Version < ConfigVersionLatest
}
