package application

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Yat-Muk/sdloader/internal/domain/modchip"
	"github.com/Yat-Muk/sdloader/internal/infra/chainload"
	"github.com/Yat-Muk/sdloader/internal/infra/fs"
	"github.com/Yat-Muk/sdloader/internal/infra/input"
	apperrors "github.com/Yat-Muk/sdloader/internal/pkg/errors"
)

// PayloadSizeMax payload 鏡像大小上限
const PayloadSizeMax = 0x2AC00

// BootService 開機動作選擇和 payload 鏈式加載
type BootService struct {
	fsys        fs.Filesystem
	loader      chainload.Chainloader
	payloadPath string
	logger      *zap.Logger
}

// NewBootService 創建開機服務
func NewBootService(fsys fs.Filesystem, loader chainload.Chainloader, payloadPath string, log *zap.Logger) *BootService {
	if log == nil {
		log = zap.NewNop()
	}
	return &BootService{
		fsys:        fsys,
		loader:      loader,
		payloadPath: payloadPath,
		logger:      log,
	}
}

// PayloadPath payload 在驅動器上的路徑
func (s *BootService) PayloadPath() string {
	return s.payloadPath
}

// Decide 按開機時按住的鍵和晶片配置選擇動作
//
// 按住 VOL+ 總是進入菜單；按住 VOL- 且未禁用組合鍵時啟動原廠固件。
func (s *BootService) Decide(held input.Button, cfg modchip.Config) modchip.Action {
	action := cfg.DefaultAction
	switch {
	case held&input.VolUp != 0:
		action = modchip.ActionMenu
	case held&input.VolDown != 0 && !cfg.DisableOFWCombo:
		action = modchip.ActionOFW
	}
	if !action.Valid() {
		action = modchip.ActionMenu
	}
	s.logger.Info("開機動作已選擇",
		zap.Stringer("held", held),
		zap.Stringer("action", action))
	return action
}

// DriveFor payload 卷對應的驅動器；Auto 返回 false
func DriveFor(vol modchip.PayloadVolume) (fs.Drive, bool) {
	switch vol {
	case modchip.VolumeSD:
		return fs.DriveSD, true
	case modchip.VolumeBoot1_1MB:
		return fs.DriveBoot1_1MB, true
	case modchip.VolumeBoot1:
		return fs.DriveBoot1, true
	case modchip.VolumeGPP:
		return fs.DriveGPP, true
	default:
		return fs.DriveInvalid, false
	}
}

// OpenPayload 打開 payload 文件；Auto 按順序查找所有驅動器
func (s *BootService) OpenPayload(vol modchip.PayloadVolume) (fs.File, fs.Drive, error) {
	drive, ok := DriveFor(vol)
	if !ok {
		return fs.OpenOnAny(s.fsys, s.payloadPath)
	}
	f, err := s.fsys.Open(s.payloadPath, drive)
	return f, drive, err
}

// LaunchPayload 讀取整個 payload 並交給鏈式加載器
//
// 返回文件所在的驅動器，供狀態消息使用。
func (s *BootService) LaunchPayload(vol modchip.PayloadVolume) (fs.Drive, error) {
	// 1. 打開
	f, drive, err := s.OpenPayload(vol)
	if err != nil {
		s.logger.Warn("打開 payload 失敗", zap.Stringer("volume", vol), zap.Error(err))
		return drive, err
	}
	defer f.Close()

	// 2. 驗證大小
	if size := f.Size(); size > PayloadSizeMax {
		return drive, fmt.Errorf("%w: %s is %d bytes, limit %d", apperrors.ErrFileTooLarge, s.payloadPath, size, PayloadSizeMax)
	}

	// 3. 讀取並跳轉
	data, err := fs.ReadAll(f)
	if err != nil {
		s.logger.Warn("讀取 payload 失敗", zap.Stringer("drive", drive), zap.Error(err))
		return drive, err
	}
	if err := s.loader.Launch(data); err != nil {
		s.logger.Error("payload 加載失敗", zap.Error(err))
		return drive, err
	}

	s.logger.Info("payload 已加載",
		zap.String("path", s.payloadPath),
		zap.Stringer("drive", drive),
		zap.Int("size", len(data)))
	return drive, nil
}

// BootOFW 啟動原廠固件
func (s *BootService) BootOFW() error {
	return s.loader.BootOFW()
}
