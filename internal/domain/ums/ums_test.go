package ums

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yat-Muk/sdloader/internal/domain/partition"
)

func twoParts() *partition.Table {
	return &partition.Table{
		Scheme: partition.SchemeMBR,
		Entries: []partition.Entry{
			{Offset: 0x800, Size: 0x1000},
			{Offset: 0x1800, Size: 0x800},
		},
	}
}

func TestNormalizeSize(t *testing.T) {
	t.Run("大小為零取剩餘部分", func(t *testing.T) {
		c := &VolumeConfig{Offset: 0x1000, PhysSize: 0x2000, Size: 0}
		c.NormalizeSize()
		assert.Equal(t, uint32(0x1000), c.Size)
	})

	t.Run("超出範圍時截斷", func(t *testing.T) {
		c := &VolumeConfig{Offset: 0x1800, PhysSize: 0x2000, Size: 0x1000}
		c.NormalizeSize()
		assert.Equal(t, uint32(0x800), c.Size)
		assert.LessOrEqual(t, c.Offset+c.Size, c.PhysSize)
	})

	t.Run("偏移變更後重算大小", func(t *testing.T) {
		c := &VolumeConfig{Mount: ReadWrite, Mode: ByOffset, PhysSize: 0x2000, Size: 0x2000}
		c.SetOffset(0x1F00)
		assert.Equal(t, uint32(0x100), c.Size)
		c.SetSize(0)
		assert.Equal(t, uint32(0x100), c.Size)
	})
}

func TestModeFallback(t *testing.T) {
	t.Run("空分區表強制偏移模式", func(t *testing.T) {
		c := &VolumeConfig{Mount: ReadWrite, Mode: ByPartition}
		c.Attach(&partition.Table{}, BootPartitionSectors)
		assert.Equal(t, ByOffset, c.Mode)
		assert.False(t, c.ModeEditable())

		c.ToggleMode()
		assert.Equal(t, ByOffset, c.Mode)
		assert.Equal(t, BootPartitionSectors, c.Size)
	})

	t.Run("分區模式套用分區範圍", func(t *testing.T) {
		c := &VolumeConfig{Mount: ReadWrite, Mode: ByOffset}
		c.Attach(twoParts(), 0x4000)
		assert.True(t, c.ModeEditable())

		c.ToggleMode()
		require.Equal(t, ByPartition, c.Mode)
		assert.Equal(t, uint32(0x800), c.Offset)
		assert.Equal(t, uint32(0x1000), c.Size)
		assert.False(t, c.RangeEditable())

		c.NextPartition()
		assert.Equal(t, 1, c.Part)
		assert.Equal(t, uint32(0x1800), c.Offset)
		assert.Equal(t, uint32(0x800), c.Size)

		c.NextPartition()
		assert.Equal(t, 0, c.Part)
		assert.Equal(t, "Part.  00", c.PartLabel())
	})

	t.Run("未掛載時分區不生效", func(t *testing.T) {
		c := &VolumeConfig{Mount: NoMount, Mode: ByPartition}
		c.Attach(twoParts(), 0x4000)
		assert.False(t, c.PartEditable())
		assert.False(t, c.ModeEditable())
		assert.Equal(t, uint32(0), c.Offset)
		assert.Equal(t, uint32(0x4000), c.Size)
	})
}

func TestLabels(t *testing.T) {
	c := &VolumeConfig{Mount: ReadOnly, Mode: ByOffset, Offset: 0x10, Size: 0x20, PhysSize: 0x2000}
	assert.Equal(t, "Mount  RO", c.MountLabel())
	assert.Equal(t, "Mode   Offset + Size", c.ModeLabel())
	assert.Equal(t, "Offset 0x00000010   ", c.OffsetLabel())
	assert.Equal(t, "Size   0x00000020   ", c.SizeLabel())
	assert.Equal(t, "TSize  0x00002000", c.TotalLabel())

	c.CycleMount()
	assert.Equal(t, "Mount  RW", c.MountLabel())
	c.CycleMount()
	assert.Equal(t, "Mount  --", c.MountLabel())
}

func TestLoaderConfig(t *testing.T) {
	t.Run("默認值", func(t *testing.T) {
		c := NewLoaderConfig(true, true)
		assert.Equal(t, ReadWrite, c.Volume(VolSD).Mount)
		for _, v := range []Volume{VolGPP, VolBoot0, VolBoot1} {
			assert.Equal(t, NoMount, c.Volume(v).Mount)
		}
		for i := range c.Volumes {
			assert.Equal(t, ByOffset, c.Volumes[i].Mode)
		}
		assert.True(t, c.AnyMounted())
	})

	t.Run("SD探測失敗時不掛載且不導出", func(t *testing.T) {
		c := NewLoaderConfig(false, true)
		assert.Equal(t, NoMount, c.Volume(VolSD).Mount)
		assert.False(t, c.AnyMounted())

		c.Volume(VolSD).Mount = ReadWrite
		c.Volume(VolBoot0).Mount = ReadOnly
		c.Volume(VolBoot0).Size = BootPartitionSectors

		list := c.ExportList()
		require.Len(t, list, 1)
		assert.Equal(t, ExportVolume{
			Volume:    VolBoot0,
			Media:     MediaEMMC,
			Partition: 2,
			Sectors:   BootPartitionSectors,
			ReadOnly:  true,
		}, list[0])
	})

	t.Run("導出順序與分區選擇子", func(t *testing.T) {
		c := NewLoaderConfig(true, true)
		c.Volume(VolBoot1).Mount = ReadWrite
		c.Volume(VolGPP).Mount = ReadOnly

		list := c.ExportList()
		require.Len(t, list, 3)
		assert.Equal(t, VolSD, list[0].Volume)
		assert.Equal(t, uint8(0), list[0].Partition)
		assert.Equal(t, MediaSD, list[0].Media)
		assert.Equal(t, VolGPP, list[1].Volume)
		assert.Equal(t, uint8(1), list[1].Partition)
		assert.Equal(t, VolBoot1, list[2].Volume)
		assert.Equal(t, uint8(3), list[2].Partition)
		assert.False(t, list[2].ReadOnly)
	})

	t.Run("eMMC失敗排除所有eMMC卷", func(t *testing.T) {
		c := NewLoaderConfig(true, false)
		c.Volume(VolGPP).Mount = ReadWrite
		assert.False(t, c.Healthy(VolGPP))
		assert.True(t, c.Healthy(VolSD))
		list := c.ExportList()
		require.Len(t, list, 1)
		assert.Equal(t, VolSD, list[0].Volume)
	})
}
