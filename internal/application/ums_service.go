package application

import (
	"go.uber.org/zap"

	"github.com/Yat-Muk/sdloader/internal/domain/partition"
	"github.com/Yat-Muk/sdloader/internal/domain/ums"
	"github.com/Yat-Muk/sdloader/internal/infra/storage"
	"github.com/Yat-Muk/sdloader/internal/infra/usb"
)

// StorageProber 探測介質並按 ID 取得設備
type StorageProber interface {
	DeviceSource
	Probe(id storage.DeviceID) bool
	ProbeEMMC() bool
	Forget()
}

// UMSService USB 大容量存儲：介質探測、分區發現和導出
type UMSService struct {
	devices  StorageProber
	exporter usb.Exporter
	logger   *zap.Logger
}

// NewUMSService 創建 UMS 服務
func NewUMSService(devices StorageProber, exporter usb.Exporter, log *zap.Logger) *UMSService {
	if log == nil {
		log = zap.NewNop()
	}
	return &UMSService{
		devices:  devices,
		exporter: exporter,
		logger:   log,
	}
}

// Probe 重新探測 SD 和 eMMC
func (s *UMSService) Probe() (sdOK, emmcOK bool) {
	s.devices.Forget()
	sdOK = s.devices.Probe(storage.DevSD)
	emmcOK = s.devices.ProbeEMMC()
	s.logger.Info("存儲探測完成", zap.Bool("sd", sdOK), zap.Bool("emmc", emmcOK))
	return sdOK, emmcOK
}

// NewConfig 按探測結果創建默認配置
func (s *UMSService) NewConfig() *ums.LoaderConfig {
	return ums.NewLoaderConfig(s.Probe())
}

// Reset 重新探測並恢復默認配置
func (s *UMSService) Reset(cfg *ums.LoaderConfig) {
	cfg.Reset(s.Probe())
}

// DiscoverPartitions 讀取卷的分區表並綁定到配置
//
// BOOT0/BOOT1 固定 0x2000 扇區且沒有分區表；讀取失敗時物理大小為 0、分區表為空。
func (s *UMSService) DiscoverPartitions(vc *ums.VolumeConfig) {
	if !vc.Volume.HasPartitionTable() {
		vc.Attach(&partition.Table{}, ums.BootPartitionSectors)
		return
	}

	dev, err := s.devices.Device(usb.DeviceFor(vc.Volume))
	if err != nil {
		s.logger.Warn("打開卷失敗", zap.Stringer("volume", vc.Volume), zap.Error(err))
		vc.Attach(&partition.Table{}, 0)
		return
	}

	table, err := partition.Discover(dev)
	if err != nil {
		s.logger.Warn("讀取分區表失敗", zap.Stringer("volume", vc.Volume), zap.Error(err))
		vc.Attach(&partition.Table{}, 0)
		return
	}

	vc.Attach(table, dev.SectorCount())
	s.logger.Debug("分區表已讀取",
		zap.Stringer("volume", vc.Volume),
		zap.Stringer("scheme", table.Scheme),
		zap.Int("entries", table.Len()),
		zap.Uint32("sectors", vc.PhysSize))
}

// Start 導出所有已掛載且介質健康的卷，阻塞到導出結束
func (s *UMSService) Start(cfg *ums.LoaderConfig, sess usb.Session) error {
	vols := cfg.ExportList()
	s.logger.Info("開始 UMS 導出", zap.Int("volumes", len(vols)))
	return s.exporter.Export(vols, sess)
}
