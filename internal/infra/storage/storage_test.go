package storage

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "github.com/Yat-Muk/sdloader/internal/pkg/errors"
)

func sector(fill byte) []byte {
	return bytes.Repeat([]byte{fill}, SectorSize)
}

func TestMemDevice(t *testing.T) {
	dev := NewMemDevice(4)
	assert.Equal(t, uint32(4), dev.SectorCount())

	require.NoError(t, dev.WriteSectors(2, 1, sector(0xAB)))
	got, err := dev.ReadSectors(2, 1)
	require.NoError(t, err)
	assert.Equal(t, sector(0xAB), got)

	t.Run("越界", func(t *testing.T) {
		_, err := dev.ReadSectors(3, 2)
		assert.ErrorIs(t, err, apperrors.ErrOutOfRange)
		assert.ErrorIs(t, dev.WriteSectors(4, 1, sector(0)), apperrors.ErrOutOfRange)
	})

	t.Run("緩衝區不足", func(t *testing.T) {
		assert.Error(t, dev.WriteSectors(0, 2, sector(0)))
	})

	t.Run("讀取結果是副本", func(t *testing.T) {
		got[0] = 0
		again, _ := dev.ReadSectors(2, 1)
		assert.Equal(t, byte(0xAB), again[0])
	})
}

func TestOffsetView(t *testing.T) {
	base := NewMemDevice(8)
	view := NewOffsetView(base, 3, 0)
	assert.Equal(t, uint32(5), view.SectorCount())

	require.NoError(t, view.WriteSectors(0, 1, sector(0x11)))
	raw, err := base.ReadSectors(3, 1)
	require.NoError(t, err)
	assert.Equal(t, sector(0x11), raw)

	_, err = view.ReadSectors(5, 1)
	assert.ErrorIs(t, err, apperrors.ErrOutOfRange)

	short := NewOffsetView(base, 6, 10)
	assert.Equal(t, uint32(2), short.SectorCount())
}

func TestReadOnly(t *testing.T) {
	base := NewMemDevice(2)
	ro := ReadOnly{BlockDevice: base}
	assert.ErrorIs(t, ro.WriteSectors(0, 1, sector(1)), apperrors.ErrWriteProtected)
	_, err := ro.ReadSectors(0, 1)
	assert.NoError(t, err)
}

func TestFileDevice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "boot0.img")
	require.NoError(t, os.WriteFile(path, make([]byte, 16*SectorSize), 0600))

	dev, err := OpenFile(path, true)
	require.NoError(t, err)
	defer dev.Close()

	assert.Equal(t, uint32(16), dev.SectorCount())
	require.NoError(t, dev.WriteSectors(15, 1, sector(0x5A)))

	got, err := dev.ReadSectors(15, 1)
	require.NoError(t, err)
	assert.Equal(t, sector(0x5A), got)

	ro, err := OpenFile(path, false)
	require.NoError(t, err)
	defer ro.Close()
	assert.Error(t, ro.WriteSectors(0, 1, sector(0)))
}

func TestManager(t *testing.T) {
	devs := map[DeviceID]BlockDevice{
		DevBoot0: NewMemDevice(4),
		DevGPP:   NewMemDevice(4),
	}
	opened := 0
	mgr := NewManager(func(id DeviceID) (BlockDevice, error) {
		opened++
		if d, ok := devs[id]; ok {
			return d, nil
		}
		return nil, apperrors.ErrMediaUnavailable
	}, zap.NewNop())

	t.Run("只有BOOT0可寫", func(t *testing.T) {
		boot0, err := mgr.Device(DevBoot0)
		require.NoError(t, err)
		assert.NoError(t, boot0.WriteSectors(0, 1, sector(1)))

		gpp, err := mgr.Device(DevGPP)
		require.NoError(t, err)
		assert.ErrorIs(t, gpp.WriteSectors(0, 1, sector(1)), apperrors.ErrWriteProtected)
	})

	t.Run("設備緩存", func(t *testing.T) {
		before := opened
		_, err := mgr.Device(DevBoot0)
		require.NoError(t, err)
		assert.Equal(t, before, opened)
	})

	t.Run("探測", func(t *testing.T) {
		assert.True(t, mgr.Probe(DevGPP))
		assert.False(t, mgr.Probe(DevSD))
		assert.False(t, mgr.ProbeEMMC())
	})

	t.Run("Forget後重新打開", func(t *testing.T) {
		mgr.Forget()
		before := opened
		_, err := mgr.Device(DevGPP)
		require.NoError(t, err)
		assert.Equal(t, before+1, opened)
		assert.NoError(t, mgr.Close())
	})
}

func TestFileOpener(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sd.img")
	require.NoError(t, os.WriteFile(path, make([]byte, 4*SectorSize), 0600))

	open := FileOpener(map[DeviceID]string{
		DevSD:  path,
		DevGPP: filepath.Join(dir, "missing.img"),
	})

	dev, err := open(DevSD)
	require.NoError(t, err)
	assert.Equal(t, uint32(4), dev.SectorCount())
	assert.Error(t, dev.WriteSectors(0, 1, sector(0)))
	require.NoError(t, dev.(*FileDevice).Close())

	_, err = open(DevGPP)
	assert.True(t, errors.Is(err, apperrors.ErrMediaUnavailable))

	_, err = open(DevBoot1)
	assert.True(t, errors.Is(err, apperrors.ErrMediaUnavailable))
}
