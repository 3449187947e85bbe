package application

import (
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/Yat-Muk/sdloader/internal/domain/modchip"
	"github.com/Yat-Muk/sdloader/internal/infra/fs"
	"github.com/Yat-Muk/sdloader/internal/infra/storage"
	apperrors "github.com/Yat-Muk/sdloader/internal/pkg/errors"
	"github.com/Yat-Muk/sdloader/internal/pkg/logger"
)

// DeviceSource 按 ID 取得塊設備
type DeviceSource interface {
	Device(id storage.DeviceID) (storage.BlockDevice, error)
}

// ModchipService 模組晶片命令協議
//
// 所有操作都是阻塞的單次嘗試，只訪問 BOOT0。
type ModchipService struct {
	devices DeviceSource
	logger  *zap.Logger
	scratch []byte
}

// NewModchipService 創建模組晶片服務
func NewModchipService(devices DeviceSource, log *zap.Logger) *ModchipService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ModchipService{
		devices: devices,
		logger:  log,
		scratch: make([]byte, modchip.ScratchSize),
	}
}

func (s *ModchipService) boot0() (storage.BlockDevice, error) {
	return s.devices.Device(storage.DevBoot0)
}

func (s *ModchipService) readSector(sector uint32) ([]byte, error) {
	dev, err := s.boot0()
	if err != nil {
		return nil, err
	}
	buf, err := dev.ReadSectors(sector, 1)
	if err != nil {
		return nil, fmt.Errorf("%w: sector 0x%x: %w", apperrors.ErrStorageReadFailed, sector, err)
	}
	return buf, nil
}

func (s *ModchipService) writeSectors(sector, count uint32, buf []byte) error {
	dev, err := s.boot0()
	if err != nil {
		return err
	}
	if err := dev.WriteSectors(sector, count, buf); err != nil {
		return fmt.Errorf("%w: sector 0x%x: %w", apperrors.ErrStorageWriteFailed, sector, err)
	}
	return nil
}

// ReadDescriptor 讀取固件描述符，不做有效性過濾
func (s *ModchipService) ReadDescriptor() (modchip.Descriptor, error) {
	buf, err := s.readSector(modchip.DescriptorSector)
	if err != nil {
		return modchip.Descriptor{}, err
	}
	return modchip.DecodeDescriptor(buf[modchip.DescriptorOffset:])
}

// LoadConfig 讀取原始配置記錄
func (s *ModchipService) LoadConfig() (modchip.Config, error) {
	buf, err := s.readSector(modchip.ConfigSector)
	if err != nil {
		return modchip.Config{}, err
	}
	return modchip.DecodeConfig(buf[modchip.ConfigOffset:])
}

// ReadConfig 讀取配置；讀取失敗或魔數不匹配時返回默認配置
func (s *ModchipService) ReadConfig() modchip.Config {
	cfg, err := s.LoadConfig()
	if err != nil {
		s.logger.Warn("讀取晶片配置失敗，使用默認配置", zap.Error(err))
		return modchip.DefaultConfig()
	}
	if !cfg.Valid() {
		s.logger.Info("晶片配置無效，使用默認配置",
			logger.Hex("magic1", cfg.Magic1),
			logger.Hex("magic2", cfg.Magic2))
		return modchip.DefaultConfig()
	}
	return cfg
}

// WriteConfig 讀-改-寫配置扇區；讀取失敗時不寫入
func (s *ModchipService) WriteConfig(cfg modchip.Config) error {
	buf, err := s.readSector(modchip.ConfigSector)
	if err != nil {
		return err
	}
	cfg.Put(buf[modchip.ConfigOffset:])
	if err := s.writeSectors(modchip.ConfigSector, 1, buf); err != nil {
		return err
	}
	s.logger.Info("晶片配置已寫入",
		zap.Stringer("payload", cfg.PayloadVolume),
		zap.Stringer("action", cfg.DefaultAction),
		zap.Bool("disable_ofw_combo", cfg.DisableOFWCombo),
		zap.Bool("disable_menu_combo", cfg.DisableMenuCombo))
	return nil
}

// ClearConfig 寫入默認配置
func (s *ModchipService) ClearConfig() error {
	return s.WriteConfig(modchip.DefaultConfig())
}

// ReadCommand 讀取命令槽中的當前命令
func (s *ModchipService) ReadCommand() (modchip.Command, error) {
	buf, err := s.readSector(modchip.CommandSector)
	if err != nil {
		return modchip.Command{}, err
	}
	return modchip.DecodeCommand(buf[modchip.CommandOffset:])
}

// writeCommand 讀-改-寫命令扇區：先清零 zero 字節再寫入命令，只寫一次
func (s *ModchipService) writeCommand(cmd modchip.Command, zero int) error {
	buf, err := s.readSector(modchip.CommandSector)
	if err != nil {
		return err
	}
	slot := buf[modchip.CommandOffset:]
	zero = min(max(zero, modchip.CommandSlotSize), len(slot))
	clear(slot[:zero])
	cmd.Put(slot)

	if err := s.writeSectors(modchip.CommandSector, 1, buf); err != nil {
		return err
	}
	s.logger.Info("晶片命令已寫入",
		zap.Stringer("cmd", cmd.Tag),
		logger.Hex("start", cmd.SectorStart),
		logger.Hex("count", cmd.SectorCount))
	return nil
}

// IssueReset 發送復位命令
func (s *ModchipService) IssueReset() error {
	return s.writeCommand(modchip.ResetCommand(), modchip.ResetClearSize)
}

// IssueRollback 發送回滾命令
func (s *ModchipService) IssueRollback() error {
	return s.writeCommand(modchip.RollbackCommand(), modchip.CommandSlotSize)
}

// IssueFirmwareUpdate 發送固件更新命令
func (s *ModchipService) IssueFirmwareUpdate(start, count uint32) error {
	return s.writeCommand(modchip.FirmwareUpdateCommand(start, count), modchip.CommandSlotSize)
}

// IssueBootloaderUpdate 發送引導程序更新命令
func (s *ModchipService) IssueBootloaderUpdate(start, count uint32) error {
	return s.writeCommand(modchip.BootloaderUpdateCommand(start, count), modchip.CommandSlotSize)
}

// issue 發送區域的後續命令
func (s *ModchipService) issue(cmd modchip.Command) error {
	switch cmd.Tag {
	case modchip.CmdBootloaderUpdate:
		return s.IssueBootloaderUpdate(cmd.SectorStart, cmd.SectorCount)
	default:
		return s.IssueFirmwareUpdate(cmd.SectorStart, cmd.SectorCount)
	}
}

// abort 寫入失敗後盡力發送一次復位命令，讓晶片至少恢復加載器
func (s *ModchipService) abort(kind modchip.ImageKind, cause error) error {
	s.logger.Error("鏡像寫入失敗，發送復位命令", zap.Stringer("kind", kind), zap.Error(cause))
	if err := s.IssueReset(); err != nil {
		s.logger.Error("復位命令發送失敗", zap.Error(err))
	}
	return cause
}

func checkSize(region modchip.Region, size int64) error {
	if size > int64(region.MaxSize) {
		return fmt.Errorf("%w: %s image is %d bytes, limit %d", apperrors.ErrFileTooLarge, region.Name, size, region.MaxSize)
	}
	if size <= 0 {
		return fmt.Errorf("%w: %s image is empty", apperrors.ErrFileRead, region.Name)
	}
	return nil
}

// finish 寫入成功後發送區域的後續命令
func (s *ModchipService) finish(kind modchip.ImageKind, region modchip.Region, sectors uint32) error {
	s.logger.Info("鏡像已寫入",
		zap.Stringer("kind", kind),
		logger.Hex("start", region.StartSector),
		zap.Uint32("sectors", sectors))

	cmd, ok := region.FollowUpCommand(sectors)
	if !ok {
		return nil
	}
	return s.issue(cmd)
}

// WriteImage 寫入內存中的鏡像
//
// 先驗證大小，超限時沒有任何副作用；寫入失敗時發送一次復位命令。
func (s *ModchipService) WriteImage(kind modchip.ImageKind, image []byte) error {
	region := modchip.RegionOf(kind)
	if err := checkSize(region, int64(len(image))); err != nil {
		return err
	}

	sectors := modchip.SectorsFor(len(image))
	buf := make([]byte, int(sectors)*modchip.SectorSize)
	n := copy(buf, image)
	for i := n; i < len(buf); i++ {
		buf[i] = region.Pad
	}

	if err := s.writeSectors(region.StartSector, sectors, buf); err != nil {
		return s.abort(kind, err)
	}
	return s.finish(kind, region, sectors)
}

// WriteFirmwareImage 寫入固件鏡像並發送更新命令
func (s *ModchipService) WriteFirmwareImage(image []byte) error {
	return s.WriteImage(modchip.ImageFirmware, image)
}

// WriteBootloaderImage 寫入晶片引導程序鏡像並發送更新命令
func (s *ModchipService) WriteBootloaderImage(image []byte) error {
	return s.WriteImage(modchip.ImageBootloader, image)
}

// WriteIPLImage 寫入本加載器鏡像
func (s *ModchipService) WriteIPLImage(image []byte) error {
	return s.WriteImage(modchip.ImageIPL, image)
}

// WriteImageFromFile 以 32 KiB 為單位流式寫入文件
//
// 最後一個不滿扇區用區域填充字節補齊；任一讀寫失敗都發送復位命令。
func (s *ModchipService) WriteImageFromFile(kind modchip.ImageKind, f fs.File) error {
	region := modchip.RegionOf(kind)
	size := f.Size()
	if err := checkSize(region, size); err != nil {
		return err
	}

	total := int(size)
	for off := 0; off < total; off += len(s.scratch) {
		chunk := min(total-off, len(s.scratch))
		sectors := modchip.SectorsFor(chunk)
		buf := s.scratch[:int(sectors)*modchip.SectorSize]

		// 1. 預填充尾部扇區
		for i := chunk; i < len(buf); i++ {
			buf[i] = region.Pad
		}

		// 2. 讀取
		n, err := io.ReadFull(f, buf[:chunk])
		if err != nil {
			if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
				return s.abort(kind, &apperrors.ShortReadError{Expected: total, Actual: off + n})
			}
			return s.abort(kind, fmt.Errorf("%w: %w", apperrors.ErrFileRead, err))
		}

		// 3. 寫入
		start := region.StartSector + uint32(off/modchip.SectorSize)
		if err := s.writeSectors(start, sectors, buf); err != nil {
			return s.abort(kind, err)
		}
	}

	return s.finish(kind, region, modchip.SectorsFor(total))
}

// Snapshot 讀取整個 BOOT0
func (s *ModchipService) Snapshot() ([]byte, error) {
	dev, err := s.boot0()
	if err != nil {
		return nil, err
	}
	buf, err := dev.ReadSectors(0, dev.SectorCount())
	if err != nil {
		return nil, fmt.Errorf("%w: snapshot: %w", apperrors.ErrStorageReadFailed, err)
	}
	return buf, nil
}

// Restore 把快照整體寫回 BOOT0；大小必須與設備一致
func (s *ModchipService) Restore(image []byte) error {
	dev, err := s.boot0()
	if err != nil {
		return err
	}
	total := dev.SectorCount()
	if int64(len(image)) != int64(total)*modchip.SectorSize {
		return fmt.Errorf("%w: snapshot is %d bytes, BOOT0 is %d sectors", apperrors.ErrOutOfRange, len(image), total)
	}
	if err := s.writeSectors(0, total, image); err != nil {
		s.logger.Error("恢復 BOOT0 失敗", zap.Error(err))
		return err
	}
	s.logger.Info("已恢復 BOOT0", zap.Uint32("sectors", total))
	return nil
}
