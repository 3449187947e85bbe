// Package ums 保存 USB 大容量存儲導出前的卷配置，以及配置變更時的聯動重算規則。
package ums

import (
	"fmt"

	"github.com/Yat-Muk/sdloader/internal/domain/partition"
)

// BootPartitionSectors eMMC BOOT0/BOOT1 的固定大小（扇區）
const BootPartitionSectors uint32 = 0x2000

// MaxPartIndex 分區序號上限
const MaxPartIndex = 99

// Volume 可導出的物理卷
type Volume int

const (
	VolSD Volume = iota
	VolGPP
	VolBoot0
	VolBoot1

	VolumeCount = 4
)

var volumeNames = [...]string{"SD", "GPP", "BOOT0", "BOOT1"}

func (v Volume) String() string {
	if v >= 0 && int(v) < len(volumeNames) {
		return volumeNames[v]
	}
	return fmt.Sprintf("Volume(%d)", int(v))
}

// IsEMMC 是否位於 eMMC 上
func (v Volume) IsEMMC() bool {
	return v != VolSD
}

// HasPartitionTable BOOT0/BOOT1 是固定大小的裸區域，沒有分區表
func (v Volume) HasPartitionTable() bool {
	return v == VolSD || v == VolGPP
}

// PartitionSelector USB 層的分區選擇子：SD 為 0，eMMC 為分區號 + 1
func (v Volume) PartitionSelector() uint8 {
	switch v {
	case VolGPP:
		return 1
	case VolBoot0:
		return 2
	case VolBoot1:
		return 3
	default:
		return 0
	}
}

// MountMode 掛載方式
type MountMode int

const (
	NoMount MountMode = iota
	ReadOnly
	ReadWrite
)

var mountNames = [...]string{"--", "RO", "RW"}

func (m MountMode) String() string {
	if m >= 0 && int(m) < len(mountNames) {
		return mountNames[m]
	}
	return "??"
}

// Next 循環 -- → RO → RW → --
func (m MountMode) Next() MountMode {
	return (m + 1) % MountMode(len(mountNames))
}

// AddressMode 尋址方式
type AddressMode int

const (
	ByPartition AddressMode = iota
	ByOffset
)

func (a AddressMode) String() string {
	if a == ByPartition {
		return "Part"
	}
	return "Offset + Size"
}

// MediaType 導出卷的介質類型
type MediaType int

const (
	MediaSD MediaType = iota
	MediaEMMC
)

func (m MediaType) String() string {
	if m == MediaEMMC {
		return "eMMC"
	}
	return "SD"
}

// VolumeConfig 單個卷的配置
//
// Table 只在該卷的配置面板打開期間非 nil。
type VolumeConfig struct {
	Volume   Volume
	Mount    MountMode
	Mode     AddressMode
	Part     int
	Offset   uint32
	Size     uint32
	PhysSize uint32
	Table    *partition.Table
}

// Attach 綁定發現的分區表和物理大小，Size 重置為整個設備
func (c *VolumeConfig) Attach(table *partition.Table, phys uint32) {
	if table == nil {
		table = &partition.Table{}
	}
	c.Table = table
	c.PhysSize = phys
	c.Size = phys
	c.Refresh()
}

// Detach 面板關閉時釋放分區表
func (c *VolumeConfig) Detach() {
	c.Table = nil
}

// CycleMount 切換掛載方式並重算
func (c *VolumeConfig) CycleMount() {
	c.Mount = c.Mount.Next()
	c.Refresh()
}

// ToggleMode 在偏移和分區模式間切換；分區表為空時保持偏移模式
func (c *VolumeConfig) ToggleMode() {
	switch c.Mode {
	case ByOffset:
		if !c.Table.Empty() {
			c.Mode = ByPartition
		}
	case ByPartition:
		c.Mode = ByOffset
	}
	c.Refresh()
}

// NextPartition 選擇下一個分區
func (c *VolumeConfig) NextPartition() {
	if n := c.Table.Len(); n > 0 {
		c.Part = (c.Part + 1) % n
	}
	c.Refresh()
}

// SetOffset 設置偏移，大小隨之歸一化
func (c *VolumeConfig) SetOffset(v uint32) {
	c.Offset = v
	c.NormalizeSize()
}

// SetSize 設置大小並歸一化
func (c *VolumeConfig) SetSize(v uint32) {
	c.Size = v
	c.NormalizeSize()
}

// Refresh 按 掛載 → 模式 → 分區 → 偏移 → 大小 的順序重算所有依賴字段
func (c *VolumeConfig) Refresh() {
	// 1. 分區表為空時強制偏移模式
	if c.Table.Empty() {
		c.Mode = ByOffset
	}

	// 2. 分區序號
	if c.Part > MaxPartIndex {
		c.Part = MaxPartIndex
	}
	if n := c.Table.Len(); n > 0 && c.Part >= n {
		c.Part = 0
	}
	if c.PartEditable() {
		e := c.Table.Entries[c.Part]
		c.Offset = e.Offset
		c.Size = e.Size
	}

	// 3. 偏移與大小
	c.NormalizeSize()
}

// NormalizeSize 保證 Offset+Size ≤ PhysSize；大小為零時取剩餘部分
func (c *VolumeConfig) NormalizeSize() {
	if c.Offset > c.PhysSize {
		c.Offset = c.PhysSize
	}
	remain := c.PhysSize - c.Offset
	c.Size = min(c.Size, remain)
	if c.Size == 0 {
		c.Size = remain
	}
}

// ModeEditable 模式條目是否可用
func (c *VolumeConfig) ModeEditable() bool {
	return !c.Table.Empty() && c.Mount != NoMount
}

// PartEditable 分區條目是否可用
func (c *VolumeConfig) PartEditable() bool {
	return c.Mode == ByPartition && c.Mount != NoMount && !c.Table.Empty()
}

// RangeEditable 偏移/大小條目是否可用
func (c *VolumeConfig) RangeEditable() bool {
	return c.Mode == ByOffset && c.Mount != NoMount
}

// OffsetMax 偏移編輯上限
func (c *VolumeConfig) OffsetMax() uint32 {
	if c.PhysSize == 0 {
		return 0
	}
	return c.PhysSize - 1
}

// SizeMax 大小編輯上限
func (c *VolumeConfig) SizeMax() uint32 {
	return c.PhysSize - min(c.Offset, c.PhysSize)
}

// 標籤文本

func (c *VolumeConfig) MountLabel() string  { return fmt.Sprintf("Mount  %s", c.Mount) }
func (c *VolumeConfig) ModeLabel() string   { return fmt.Sprintf("Mode   %s", c.Mode) }
func (c *VolumeConfig) PartLabel() string   { return fmt.Sprintf("Part.  %02d", c.Part) }
func (c *VolumeConfig) OffsetLabel() string { return fmt.Sprintf("Offset 0x%08x   ", c.Offset) }
func (c *VolumeConfig) SizeLabel() string   { return fmt.Sprintf("Size   0x%08x   ", c.Size) }
func (c *VolumeConfig) TotalLabel() string  { return fmt.Sprintf("TSize  0x%08x", c.PhysSize) }

// ExportVolume 交給 USB 導出能力的卷描述
type ExportVolume struct {
	Volume    Volume
	Media     MediaType
	Partition uint8
	Offset    uint32
	Sectors   uint32
	ReadOnly  bool
}

// LoaderConfig UMS 會話狀態，不持久化
type LoaderConfig struct {
	Volumes   [VolumeCount]VolumeConfig
	SDError   bool
	EMMCError bool
}

// NewLoaderConfig 按探測結果創建默認配置
func NewLoaderConfig(sdOK, emmcOK bool) *LoaderConfig {
	c := &LoaderConfig{}
	c.Reset(sdOK, emmcOK)
	return c
}

// Reset 恢復默認：SD 健康時讀寫掛載，其餘不掛載，全部為偏移模式
func (c *LoaderConfig) Reset(sdOK, emmcOK bool) {
	*c = LoaderConfig{SDError: !sdOK, EMMCError: !emmcOK}
	for i := range c.Volumes {
		c.Volumes[i] = VolumeConfig{Volume: Volume(i), Mode: ByOffset}
	}
	if sdOK {
		c.Volumes[VolSD].Mount = ReadWrite
	}
}

// Volume 返回卷配置
func (c *LoaderConfig) Volume(v Volume) *VolumeConfig {
	return &c.Volumes[v]
}

// Healthy 卷所在介質在進入界面時是否探測成功
func (c *LoaderConfig) Healthy(v Volume) bool {
	if v.IsEMMC() {
		return !c.EMMCError
	}
	return !c.SDError
}

// AnyMounted 是否至少有一個卷被掛載
func (c *LoaderConfig) AnyMounted() bool {
	for i := range c.Volumes {
		if c.Volumes[i].Mount != NoMount {
			return true
		}
	}
	return false
}

// ExportList 生成導出列表：掛載且介質健康的卷，按 SD、GPP、BOOT0、BOOT1 排序
func (c *LoaderConfig) ExportList() []ExportVolume {
	var out []ExportVolume
	for i := range c.Volumes {
		vc := &c.Volumes[i]
		if vc.Mount == NoMount || !c.Healthy(vc.Volume) {
			continue
		}
		media := MediaSD
		if vc.Volume.IsEMMC() {
			media = MediaEMMC
		}
		out = append(out, ExportVolume{
			Volume:    vc.Volume,
			Media:     media,
			Partition: vc.Volume.PartitionSelector(),
			Offset:    vc.Offset,
			Sectors:   vc.Size,
			ReadOnly:  vc.Mount == ReadOnly,
		})
	}
	return out
}
