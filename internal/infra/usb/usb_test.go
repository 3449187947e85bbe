package usb

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Yat-Muk/sdloader/internal/domain/ums"
	"github.com/Yat-Muk/sdloader/internal/infra/input"
	"github.com/Yat-Muk/sdloader/internal/infra/storage"
	"github.com/Yat-Muk/sdloader/internal/pkg/clock"
	apperrors "github.com/Yat-Muk/sdloader/internal/pkg/errors"
)

func newManager() *storage.Manager {
	devs := map[storage.DeviceID]storage.BlockDevice{
		storage.DevSD:    storage.NewMemDevice(0x4000),
		storage.DevGPP:   storage.NewMemDevice(0x8000),
		storage.DevBoot0: storage.NewMemDevice(0x2000),
		storage.DevBoot1: storage.NewMemDevice(0x2000),
	}
	return storage.NewManager(func(id storage.DeviceID) (storage.BlockDevice, error) {
		return devs[id], nil
	}, zap.NewNop())
}

func newGadget(steps ...input.Step) (*Gadget, context.CancelFunc) {
	clk := clock.NewFake()
	ctx, cancel := context.WithCancel(context.Background())
	btn := input.NewButtons(ctx, input.NewScript(clk, steps...), clk)
	return NewGadget(newManager(), btn, zap.NewNop()), cancel
}

func TestDeviceFor(t *testing.T) {
	assert.Equal(t, storage.DevSD, DeviceFor(ums.VolSD))
	assert.Equal(t, storage.DevGPP, DeviceFor(ums.VolGPP))
	assert.Equal(t, storage.DevBoot0, DeviceFor(ums.VolBoot0))
	assert.Equal(t, storage.DevBoot1, DeviceFor(ums.VolBoot1))
}

func TestOpen(t *testing.T) {
	g, cancel := newGadget()
	defer cancel()

	t.Run("空列表", func(t *testing.T) {
		_, err := g.Open(nil)
		assert.ErrorIs(t, err, ErrNoVolumes)
	})

	t.Run("越界", func(t *testing.T) {
		_, err := g.Open([]ums.ExportVolume{{Volume: ums.VolBoot1, Offset: 0x1000, Sectors: 0x1001}})
		assert.Error(t, err)
	})

	t.Run("大小為零時導出剩餘部分", func(t *testing.T) {
		luns, err := g.Open([]ums.ExportVolume{{Volume: ums.VolSD, Offset: 0x1000}})
		require.NoError(t, err)
		assert.Equal(t, uint32(0x3000), luns[0].Device.SectorCount())
		assert.Equal(t, uint32(0x3000), luns[0].Volume.Sectors)
	})

	t.Run("偏移越界", func(t *testing.T) {
		_, err := g.Open([]ums.ExportVolume{{Volume: ums.VolSD, Offset: 0x4000}})
		assert.Error(t, err)
	})

	t.Run("只讀卷", func(t *testing.T) {
		luns, err := g.Open([]ums.ExportVolume{
			{Volume: ums.VolGPP, Media: ums.MediaEMMC, Partition: 1, Offset: 0x100, Sectors: 0x200, ReadOnly: true},
		})
		require.NoError(t, err)
		require.Len(t, luns, 1)
		assert.Equal(t, uint32(0x200), luns[0].Device.SectorCount())
		err = luns[0].Device.WriteSectors(0, 1, make([]byte, storage.SectorSize))
		assert.True(t, errors.Is(err, apperrors.ErrWriteProtected))
	})
}

func TestExport(t *testing.T) {
	t.Run("按住組合鍵停止", func(t *testing.T) {
		g, cancel := newGadget(input.Release(2500*time.Millisecond), input.Hold(input.StopChord, 100*time.Millisecond))
		defer cancel()

		var texts []string
		var ticks int
		err := g.Export(
			[]ums.ExportVolume{{Volume: ums.VolSD, Media: ums.MediaSD, Sectors: 0x4000}},
			Session{
				SetText:     func(s string) { texts = append(texts, s) },
				Maintenance: func() { ticks++ },
			})

		require.NoError(t, err)
		assert.Equal(t, []string{"Waiting for host", "Active", "Stopped"}, texts)
		assert.Equal(t, 2, ticks)
	})

	t.Run("輸入關閉", func(t *testing.T) {
		g, cancel := newGadget()
		cancel()

		var last string
		err := g.Export(
			[]ums.ExportVolume{{Volume: ums.VolBoot0, Media: ums.MediaEMMC, Partition: 2, Sectors: 0x2000}},
			Session{SetText: func(s string) { last = s }})
		require.NoError(t, err)
		assert.Equal(t, "Aborted", last)
	})

	t.Run("打開失敗", func(t *testing.T) {
		g, cancel := newGadget()
		defer cancel()

		var last string
		err := g.Export(nil, Session{SetText: func(s string) { last = s }})
		assert.ErrorIs(t, err, ErrNoVolumes)
		assert.Equal(t, "Error", last)
	})
}
