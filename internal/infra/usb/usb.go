// Package usb 通過 USB 大容量存儲把卷導出給主機。
package usb

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Yat-Muk/sdloader/internal/domain/ums"
	"github.com/Yat-Muk/sdloader/internal/infra/input"
	"github.com/Yat-Muk/sdloader/internal/infra/storage"
	"github.com/Yat-Muk/sdloader/internal/pkg/clock"
)

// ErrNoVolumes 導出列表為空
var ErrNoVolumes = errors.New("no volumes to export")

// Session 導出期間的回調
type Session struct {
	// SetText 更新屏幕上的狀態文本
	SetText func(text string)
	// Maintenance 週期性調用，用於刷新電量等
	Maintenance func()
}

func (s Session) setText(text string) {
	if s.SetText != nil {
		s.SetText(text)
	}
}

func (s Session) maintain() {
	if s.Maintenance != nil {
		s.Maintenance()
	}
}

// Exporter 大容量存儲導出能力；阻塞到導出結束
type Exporter interface {
	Export(vols []ums.ExportVolume, sess Session) error
}

// Resolver 按設備 ID 取得塊設備
type Resolver interface {
	Device(id storage.DeviceID) (storage.BlockDevice, error)
}

// DeviceFor 卷對應的存儲設備
func DeviceFor(v ums.Volume) storage.DeviceID {
	switch v {
	case ums.VolGPP:
		return storage.DevGPP
	case ums.VolBoot0:
		return storage.DevBoot0
	case ums.VolBoot1:
		return storage.DevBoot1
	default:
		return storage.DevSD
	}
}

// Gadget 主機端模擬：打開各卷的視圖，直到按住停止組合鍵或輸入關閉
type Gadget struct {
	devices Resolver
	btn     *input.Buttons
	clk     clock.Clock
	log     *zap.Logger

	// HoldTimeout 每輪等待停止組合鍵的時長，兩輪之間執行一次維護回調
	HoldTimeout time.Duration
}

// NewGadget 創建模擬導出器
func NewGadget(devices Resolver, btn *input.Buttons, log *zap.Logger) *Gadget {
	if log == nil {
		log = zap.NewNop()
	}
	return &Gadget{
		devices:     devices,
		btn:         btn,
		clk:         btn.Clock(),
		log:         log,
		HoldTimeout: time.Second,
	}
}

// Lun 一個已打開的導出單元
type Lun struct {
	Volume   ums.ExportVolume
	Device   storage.BlockDevice
	ReadOnly bool
}

// Open 為每個卷建立偏移視圖；Sectors 為 0 時導出偏移之後的全部扇區
func (g *Gadget) Open(vols []ums.ExportVolume) ([]Lun, error) {
	if len(vols) == 0 {
		return nil, ErrNoVolumes
	}

	luns := make([]Lun, 0, len(vols))
	for _, v := range vols {
		dev, err := g.devices.Device(DeviceFor(v.Volume))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", v.Volume, err)
		}
		total := dev.SectorCount()
		if v.Offset >= total {
			return nil, fmt.Errorf("%s: 偏移 0x%x 超出 0x%x 扇區", v.Volume, v.Offset, total)
		}
		// 大小為 0 表示偏移之後的整個設備
		if v.Sectors == 0 {
			v.Sectors = total - v.Offset
		}
		if v.Sectors > total-v.Offset {
			return nil, fmt.Errorf("%s: 0x%x+0x%x 超出 0x%x 扇區", v.Volume, v.Offset, v.Sectors, total)
		}

		view := storage.BlockDevice(storage.NewOffsetView(dev, v.Offset, v.Sectors))
		if v.ReadOnly {
			view = storage.ReadOnly{BlockDevice: view}
		}
		luns = append(luns, Lun{Volume: v, Device: view, ReadOnly: v.ReadOnly})
	}
	return luns, nil
}

func (g *Gadget) Export(vols []ums.ExportVolume, sess Session) error {
	// 1. 建立視圖
	luns, err := g.Open(vols)
	if err != nil {
		g.log.Error("UMS 導出失敗", zap.Error(err))
		sess.setText("Error")
		return err
	}

	for _, l := range luns {
		g.log.Info("UMS 卷已導出",
			zap.Stringer("volume", l.Volume.Volume),
			zap.Stringer("media", l.Volume.Media),
			zap.Uint8("partition", l.Volume.Partition),
			zap.Uint32("offset", l.Volume.Offset),
			zap.Uint32("sectors", l.Volume.Sectors),
			zap.Bool("read_only", l.ReadOnly))
	}

	// 2. 模擬主機枚舉：讀取每個卷的第一個扇區
	sess.setText("Waiting for host")
	for _, l := range luns {
		if _, err := l.Device.ReadSectors(0, 1); err != nil {
			g.log.Error("UMS 卷讀取失敗", zap.Stringer("volume", l.Volume.Volume), zap.Error(err))
			sess.setText("Error")
			return fmt.Errorf("%s: %w", l.Volume.Volume, err)
		}
	}
	sess.setText("Active")

	// 3. 等待停止組合鍵
	for {
		if g.btn.WaitHeld(g.HoldTimeout, input.StopChord) == input.StopChord {
			g.log.Info("UMS 已停止")
			sess.setText("Stopped")
			return nil
		}
		if g.btn.Done() {
			sess.setText("Aborted")
			return nil
		}
		sess.maintain()
	}
}
