package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Yat-Muk/sdloader/internal/application"
	domainConfig "github.com/Yat-Muk/sdloader/internal/domain/config"
	"github.com/Yat-Muk/sdloader/internal/infra/chainload"
	"github.com/Yat-Muk/sdloader/internal/infra/backup"
	infraConfig "github.com/Yat-Muk/sdloader/internal/infra/config"
	"github.com/Yat-Muk/sdloader/internal/infra/fs"
	"github.com/Yat-Muk/sdloader/internal/infra/power"
	"github.com/Yat-Muk/sdloader/internal/infra/storage"
	"github.com/Yat-Muk/sdloader/internal/pkg/appctx"
	"github.com/Yat-Muk/sdloader/internal/pkg/clock"
)

// AppDependencies 組裝好的依賴
type AppDependencies struct {
	Log     *zap.Logger
	Paths   *appctx.Paths
	Config  *domainConfig.Config
	LogFile string

	ConfigSvc *application.ConfigService
	Storage   *storage.Manager
	Fsys      *fs.DirFS
	Battery   power.Battery
	Loader    *chainload.FileSink
	Modchip   *application.ModchipService
	Boot      *application.BootService
	Backups   *backup.Manager
}

func initializeDependencies(log *zap.Logger, paths *appctx.Paths, cfg *domainConfig.Config) (*AppDependencies, error) {
	if cfg == nil {
		cfg = domainConfig.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("配置無效: %w", err)
	}

	// ==========================================
	// 1. 基礎設施層 (Infrastructure Layer)
	// ==========================================

	configRepo := infraConfig.NewFileRepository(paths.ConfigFile, log)

	devices := storage.NewManager(storage.FileOpener(map[storage.DeviceID]string{
		storage.DevSD:    paths.Resolve(cfg.Storage.SD),
		storage.DevBoot0: paths.Resolve(cfg.Storage.Boot0),
		storage.DevBoot1: paths.Resolve(cfg.Storage.Boot1),
		storage.DevGPP:   paths.Resolve(cfg.Storage.GPP),
	}), log)

	fsys := fs.NewDirFS(driveRoots(paths, cfg.Drives), log)

	battery := power.Detect(cfg.Battery.Sysfs, cfg.Battery.FixedPercent, log)
	loader := chainload.NewFileSink(paths.Resolve(cfg.Chainload.Output), log)

	backups, err := backup.NewManager(paths.Resolve(cfg.Backup.Dir), backup.RetentionPolicy{
		MaxFiles: cfg.Backup.MaxFiles,
		MaxAge:   time.Duration(cfg.Backup.MaxAgeDays) * 24 * time.Hour,
	}, clock.NewSystem(), log)
	if err != nil {
		return nil, err
	}

	// ==========================================
	// 2. 應用服務層 (Application Layer)
	// ==========================================

	configSvc := application.NewConfigService(configRepo, log)
	modchipSvc := application.NewModchipService(devices, log)
	bootSvc := application.NewBootService(fsys, loader, cfg.Files.Payload, log)

	return &AppDependencies{
		Log:       log,
		Paths:     paths,
		Config:    cfg,
		ConfigSvc: configSvc,
		Storage:   devices,
		Fsys:      fsys,
		Battery:   battery,
		Loader:    loader,
		Modchip:   modchipSvc,
		Boot:      bootSvc,
		Backups:   backups,
	}, nil
}

// driveRoots 驅動器編號到主機目錄
func driveRoots(paths *appctx.Paths, d domainConfig.DrivesConfig) map[fs.Drive]string {
	return map[fs.Drive]string{
		fs.DriveSD:        paths.Resolve(d.SD),
		fs.DriveBoot1_1MB: paths.Resolve(d.Boot11MB),
		fs.DriveBoot1:     paths.Resolve(d.Boot1),
		fs.DriveGPP:       paths.Resolve(d.GPP),
	}
}

// Close 關閉設備並刷新日誌
func (d *AppDependencies) Close() {
	if err := d.Storage.Close(); err != nil {
		d.Log.Warn("關閉存儲設備失敗", zap.Error(err))
	}
	_ = d.Log.Sync()
}

// saveDefaults 寫入補齊默認值的配置
func (d *AppDependencies) saveDefaults(ctx context.Context) error {
	return d.ConfigSvc.SaveWithDefaults(ctx, d.Config)
}
