package config

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"

	apperrors "github.com/Yat-Muk/sdloader/internal/pkg/errors"
)

// Repository 配置倉庫接口
type Repository interface {
	// Load 加載配置
	Load(ctx context.Context) (*Config, error)

	// Save 保存配置
	Save(ctx context.Context, cfg *Config) error
}

// 顯示後端
const (
	BackendTcell     = "tcell"
	BackendBubbletea = "bubbletea"
)

// Config 主配置結構
type Config struct {
	Version   int             `yaml:"version"`
	Log       LogConfig       `yaml:"log"`
	Display   DisplayConfig   `yaml:"display"`
	Storage   StorageConfig   `yaml:"storage"`
	Drives    DrivesConfig    `yaml:"drives"`
	Files     FilesConfig     `yaml:"files"`
	Battery   BatteryConfig   `yaml:"battery"`
	Chainload ChainloadConfig `yaml:"chainload"`
	Backup    BackupConfig    `yaml:"backup"`
}

// LogConfig 日誌配置
type LogConfig struct {
	Level      string `yaml:"level"`
	OutputPath string `yaml:"output_path"`
	MaxSize    int    `yaml:"max_size"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAge     int    `yaml:"max_age"`
	Compress   bool   `yaml:"compress"`
}

// DisplayConfig 終端顯示配置
type DisplayConfig struct {
	Backend string `yaml:"backend"`
	// HoldMS 終端沒有按鍵釋放事件，按下後保持的毫秒數
	HoldMS int `yaml:"hold_ms"`
}

// StorageConfig 各存儲設備的鏡像文件或塊設備路徑
type StorageConfig struct {
	SD    string `yaml:"sd"`
	Boot0 string `yaml:"boot0"`
	Boot1 string `yaml:"boot1"`
	GPP   string `yaml:"gpp"`
}

// DrivesConfig 各驅動器對應的主機目錄
type DrivesConfig struct {
	SD       string `yaml:"sd"`
	Boot11MB string `yaml:"boot1_1mb"`
	Boot1    string `yaml:"boot1"`
	GPP      string `yaml:"gpp"`
}

// FilesConfig 更新和負載文件名
type FilesConfig struct {
	Firmware   string `yaml:"firmware"`
	Bootloader string `yaml:"bootloader"`
	IPL        string `yaml:"ipl"`
	Payload    string `yaml:"payload"`
}

// BatteryConfig 電量來源
type BatteryConfig struct {
	Sysfs        string `yaml:"sysfs"`
	FixedPercent int    `yaml:"fixed_percent"`
}

// ChainloadConfig 負載輸出
type ChainloadConfig struct {
	Output string `yaml:"output"`
}

// BackupConfig BOOT0 快照
type BackupConfig struct {
	Dir        string `yaml:"dir"`
	MaxFiles   int    `yaml:"max_files"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// DefaultConfig 默認配置
func DefaultConfig() *Config {
	return &Config{
		Version: ConfigVersionLatest,
		Log: LogConfig{
			Level:      "info",
			MaxSize:    10,
			MaxBackups: 5,
			MaxAge:     30,
			Compress:   true,
		},
		Display: DisplayConfig{
			Backend: BackendTcell,
			HoldMS:  120,
		},
		Storage: StorageConfig{
			SD:    "sd.img",
			Boot0: "boot0.img",
			Boot1: "boot1.img",
			GPP:   "gpp.img",
		},
		Drives: DrivesConfig{
			SD:       "drives/sd",
			Boot11MB: "drives/boot1_1mb",
			Boot1:    "drives/boot1",
			GPP:      "drives/gpp",
		},
		Files: FilesConfig{
			Firmware:   "update.bin",
			Bootloader: "bootloader.bin",
			IPL:        "sdloader.enc",
			Payload:    "payload.bin",
		},
		Battery: BatteryConfig{
			Sysfs:        "/sys/class/power_supply/BAT0",
			FixedPercent: 100,
		},
		Chainload: ChainloadConfig{
			Output: "payload.out",
		},
		Backup: BackupConfig{
			Dir:      "backups",
			MaxFiles: 10,
		},
	}
}

// FillDefaults 空字段填入默認值
func (c *Config) FillDefaults() {
	def := DefaultConfig()

	fill := func(dst *string, v string) {
		if *dst == "" {
			*dst = v
		}
	}

	fill(&c.Log.Level, def.Log.Level)
	fill(&c.Display.Backend, def.Display.Backend)
	if c.Display.HoldMS == 0 {
		c.Display.HoldMS = def.Display.HoldMS
	}

	fill(&c.Storage.SD, def.Storage.SD)
	fill(&c.Storage.Boot0, def.Storage.Boot0)
	fill(&c.Storage.Boot1, def.Storage.Boot1)
	fill(&c.Storage.GPP, def.Storage.GPP)

	fill(&c.Drives.SD, def.Drives.SD)
	fill(&c.Drives.Boot11MB, def.Drives.Boot11MB)
	fill(&c.Drives.Boot1, def.Drives.Boot1)
	fill(&c.Drives.GPP, def.Drives.GPP)

	fill(&c.Files.Firmware, def.Files.Firmware)
	fill(&c.Files.Bootloader, def.Files.Bootloader)
	fill(&c.Files.IPL, def.Files.IPL)
	fill(&c.Files.Payload, def.Files.Payload)

	fill(&c.Chainload.Output, def.Chainload.Output)

	fill(&c.Backup.Dir, def.Backup.Dir)
	if c.Backup.MaxFiles == 0 {
		c.Backup.MaxFiles = def.Backup.MaxFiles
	}
}

// Validate 驗證配置
func (c *Config) Validate() error {
	switch c.Display.Backend {
	case BackendTcell, BackendBubbletea:
	default:
		return fmt.Errorf("%w: 未知顯示後端 %q", apperrors.ErrConfigInvalid, c.Display.Backend)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: 未知日誌級別 %q", apperrors.ErrConfigInvalid, c.Log.Level)
	}

	if c.Display.HoldMS <= 0 {
		return fmt.Errorf("%w: hold_ms 必須為正數", apperrors.ErrConfigInvalid)
	}
	if c.Battery.FixedPercent < 0 || c.Battery.FixedPercent > 100 {
		return fmt.Errorf("%w: fixed_percent 超出 0..100", apperrors.ErrConfigInvalid)
	}
	if c.Backup.MaxFiles < 0 || c.Backup.MaxAgeDays < 0 {
		return fmt.Errorf("%w: backup 保留策略不能為負數", apperrors.ErrConfigInvalid)
	}
	return nil
}

// DeepCopy 深拷貝配置，經由 YAML 序列化回環
func (c *Config) DeepCopy() *Config {
	if c == nil {
		return nil
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		panic(fmt.Errorf("DeepCopy 序列化失敗: %w", err))
	}

	var out Config
	if err := yaml.Unmarshal(data, &out); err != nil {
		panic(fmt.Errorf("DeepCopy 反序列化失敗: %w", err))
	}
	return &out
}
