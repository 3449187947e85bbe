package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"go.uber.org/zap"

	apperrors "github.com/Yat-Muk/sdloader/internal/pkg/errors"
)

// DeviceID 物理存儲標識
type DeviceID int

const (
	DevSD DeviceID = iota
	DevBoot0
	DevBoot1
	DevGPP
)

func (id DeviceID) String() string {
	switch id {
	case DevSD:
		return "SD"
	case DevBoot0:
		return "BOOT0"
	case DevBoot1:
		return "BOOT1"
	case DevGPP:
		return "GPP"
	default:
		return fmt.Sprintf("Dev(%d)", int(id))
	}
}

// IsEMMC 是否為 eMMC 分區
func (id DeviceID) IsEMMC() bool {
	return id != DevSD
}

// Opener 按 ID 打開設備
type Opener func(id DeviceID) (BlockDevice, error)

// FileOpener 以鏡像文件路徑表構造 Opener，只有 BOOT0 以讀寫方式打開
func FileOpener(paths map[DeviceID]string) Opener {
	return func(id DeviceID) (BlockDevice, error) {
		path, ok := paths[id]
		if !ok || path == "" {
			return nil, fmt.Errorf("%w: %s not configured", apperrors.ErrMediaUnavailable, id)
		}
		dev, err := OpenFile(path, id == DevBoot0)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("%w: %s", apperrors.ErrMediaUnavailable, err)
			}
			return nil, err
		}
		return dev, nil
	}
}

// Manager 管理已打開的設備
//
// 除 BOOT0 以外的設備都經寫保護包裝後返回。
type Manager struct {
	mu      sync.Mutex
	open    Opener
	devices map[DeviceID]BlockDevice
	logger  *zap.Logger
}

// NewManager 創建設備管理器
func NewManager(open Opener, logger *zap.Logger) *Manager {
	return &Manager{
		open:    open,
		devices: make(map[DeviceID]BlockDevice),
		logger:  logger,
	}
}

// Device 返回設備，首次訪問時打開
func (m *Manager) Device(id DeviceID) (BlockDevice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if dev, ok := m.devices[id]; ok {
		return dev, nil
	}

	dev, err := m.open(id)
	if err != nil {
		m.logger.Warn("打開存儲設備失敗", zap.Stringer("device", id), zap.Error(err))
		return nil, err
	}
	if id != DevBoot0 {
		dev = ReadOnly{BlockDevice: dev}
	}
	m.devices[id] = dev
	m.logger.Debug("存儲設備已打開",
		zap.Stringer("device", id),
		zap.Uint32("sectors", dev.SectorCount()))
	return dev, nil
}

// Probe 探測介質是否可用：能打開並讀出第 0 扇區
func (m *Manager) Probe(id DeviceID) bool {
	dev, err := m.Device(id)
	if err != nil {
		return false
	}
	if _, err := dev.ReadSectors(0, 1); err != nil {
		m.logger.Warn("存儲設備探測失敗", zap.Stringer("device", id), zap.Error(err))
		return false
	}
	return true
}

// ProbeEMMC 三個 eMMC 分區全部可用時返回 true
func (m *Manager) ProbeEMMC() bool {
	return m.Probe(DevGPP) && m.Probe(DevBoot0) && m.Probe(DevBoot1)
}

// Forget 丟棄緩存的設備，下次訪問重新打開
func (m *Manager) Forget() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeLocked()
}

// Close 關閉所有設備
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closeLocked()
}

func (m *Manager) closeLocked() error {
	var errs []error
	for id, dev := range m.devices {
		if ro, ok := dev.(ReadOnly); ok {
			dev = ro.BlockDevice
		}
		if c, ok := dev.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close %s: %w", id, err))
			}
		}
		delete(m.devices, id)
	}
	return errors.Join(errs...)
}
