// Package storage 提供扇區級塊設備：鏡像文件/塊設備、內存設備、偏移視圖和寫保護包裝。
package storage

import (
	"fmt"
	"sync"

	apperrors "github.com/Yat-Muk/sdloader/internal/pkg/errors"
)

// SectorSize 扇區大小
const SectorSize = 512

// BlockDevice 塊設備能力
type BlockDevice interface {
	// ReadSectors 讀取 count 個扇區
	ReadSectors(sector, count uint32) ([]byte, error)
	// WriteSectors 寫入 count 個扇區，buf 至少 count*SectorSize 字節；扇區粒度全有或全無
	WriteSectors(sector, count uint32, buf []byte) error
	// SectorCount 設備扇區總數
	SectorCount() uint32
}

func checkRange(dev BlockDevice, sector, count uint32) error {
	total := dev.SectorCount()
	if count == 0 || sector >= total || count > total-sector {
		return fmt.Errorf("%w: sector %d count %d (device %d)", apperrors.ErrOutOfRange, sector, count, total)
	}
	return nil
}

func checkBuffer(count uint32, buf []byte) error {
	if uint64(len(buf)) < uint64(count)*SectorSize {
		return fmt.Errorf("buffer too small: %d bytes for %d sectors", len(buf), count)
	}
	return nil
}

// MemDevice 內存塊設備
type MemDevice struct {
	mu   sync.Mutex
	data []byte
}

// NewMemDevice 創建 sectors 個扇區的內存設備
func NewMemDevice(sectors uint32) *MemDevice {
	return &MemDevice{data: make([]byte, int(sectors)*SectorSize)}
}

// NewMemDeviceFrom 以已有數據創建內存設備，長度向上取整到扇區
func NewMemDeviceFrom(data []byte) *MemDevice {
	n := (len(data) + SectorSize - 1) / SectorSize
	buf := make([]byte, n*SectorSize)
	copy(buf, data)
	return &MemDevice{data: buf}
}

func (m *MemDevice) SectorCount() uint32 {
	return uint32(len(m.data) / SectorSize)
}

func (m *MemDevice) ReadSectors(sector, count uint32) ([]byte, error) {
	if err := checkRange(m, sector, count); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	start := int(sector) * SectorSize
	out := make([]byte, int(count)*SectorSize)
	copy(out, m.data[start:])
	return out, nil
}

func (m *MemDevice) WriteSectors(sector, count uint32, buf []byte) error {
	if err := checkRange(m, sector, count); err != nil {
		return err
	}
	if err := checkBuffer(count, buf); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	start := int(sector) * SectorSize
	copy(m.data[start:start+int(count)*SectorSize], buf)
	return nil
}

// Bytes 返回數據副本
func (m *MemDevice) Bytes() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]byte, len(m.data))
	copy(out, m.data)
	return out
}

// OffsetView 從 base 的 first 扇區開始的子視圖
type OffsetView struct {
	base  BlockDevice
	first uint32
	count uint32
}

// NewOffsetView 創建偏移視圖；count 為 0 時延伸到設備末尾
func NewOffsetView(base BlockDevice, first, count uint32) *OffsetView {
	total := base.SectorCount()
	if first > total {
		first = total
	}
	if count == 0 || count > total-first {
		count = total - first
	}
	return &OffsetView{base: base, first: first, count: count}
}

func (v *OffsetView) SectorCount() uint32 { return v.count }

func (v *OffsetView) ReadSectors(sector, count uint32) ([]byte, error) {
	if err := checkRange(v, sector, count); err != nil {
		return nil, err
	}
	return v.base.ReadSectors(v.first+sector, count)
}

func (v *OffsetView) WriteSectors(sector, count uint32, buf []byte) error {
	if err := checkRange(v, sector, count); err != nil {
		return err
	}
	return v.base.WriteSectors(v.first+sector, count, buf)
}

// ReadOnly 寫保護包裝
type ReadOnly struct {
	BlockDevice
}

// WriteSectors 總是返回 ErrWriteProtected
func (ReadOnly) WriteSectors(uint32, uint32, []byte) error {
	return apperrors.ErrWriteProtected
}
