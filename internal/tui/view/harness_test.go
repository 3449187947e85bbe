package view

import (
	"context"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Yat-Muk/sdloader/internal/application"
	"github.com/Yat-Muk/sdloader/internal/domain/config"
	"github.com/Yat-Muk/sdloader/internal/domain/modchip"
	"github.com/Yat-Muk/sdloader/internal/infra/fs"
	"github.com/Yat-Muk/sdloader/internal/infra/input"
	"github.com/Yat-Muk/sdloader/internal/infra/storage"
	"github.com/Yat-Muk/sdloader/internal/infra/usb"
	"github.com/Yat-Muk/sdloader/internal/pkg/clock"
	apperrors "github.com/Yat-Muk/sdloader/internal/pkg/errors"
	"github.com/Yat-Muk/sdloader/internal/tui/gfx"
	"github.com/Yat-Muk/sdloader/internal/tui/menu"
	"github.com/Yat-Muk/sdloader/internal/tui/state"
)

var errInjected = errors.New("injected fault")

// afterHold 確認後等待命令狀態的最短顯示時間結束
var afterHold = input.Release(1100 * time.Millisecond)

// writeFailDevice 寫入總是失敗
type writeFailDevice struct {
	*storage.MemDevice
}

func (writeFailDevice) WriteSectors(uint32, uint32, []byte) error {
	return errInjected
}

// recordingLoader 記錄跳轉
type recordingLoader struct {
	payloads [][]byte
	ofw      int
	err      error
}

func (l *recordingLoader) Launch(payload []byte) error {
	if l.err != nil {
		return l.err
	}
	l.payloads = append(l.payloads, payload)
	return nil
}

func (l *recordingLoader) BootOFW() error {
	l.ofw++
	return nil
}

type harness struct {
	t       *testing.T
	app     *App
	session *state.Session
	modchip *application.ModchipService
	loader  *recordingLoader
	canvas  *gfx.MemCanvas
	clk     *clock.Fake
	sdRoot  string

	// screens 每次 Flush 時的整屏文本
	screens []string
	quits   int
}

// mbrDisk 帶兩個 MBR 分區的設備
func mbrDisk(sectors uint32) *storage.MemDevice {
	dev := storage.NewMemDevice(sectors)
	mbr := make([]byte, storage.SectorSize)
	put := func(i int, start, size uint32) {
		e := mbr[446+i*16:]
		e[4] = 0x0C
		binary.LittleEndian.PutUint32(e[8:], start)
		binary.LittleEndian.PutUint32(e[12:], size)
	}
	put(0, 0x800, 0x1000)
	put(1, 0x1800, 0x2000)
	mbr[510], mbr[511] = 0x55, 0xAA
	_ = dev.WriteSectors(0, 1, mbr)
	return dev
}

// allDevices SD 和完整的 eMMC
func allDevices() map[storage.DeviceID]storage.BlockDevice {
	return map[storage.DeviceID]storage.BlockDevice{
		storage.DevSD:    mbrDisk(0x4000),
		storage.DevGPP:   storage.NewMemDevice(0x8000),
		storage.DevBoot0: storage.NewMemDevice(0x2000),
		storage.DevBoot1: storage.NewMemDevice(0x2000),
	}
}

// newHarness 腳本前加一段鬆開，避免第一個按鍵被當作持續按住
func newHarness(t *testing.T, devs map[storage.DeviceID]storage.BlockDevice, steps ...input.Step) *harness {
	t.Helper()
	log := zap.NewNop()
	clk := clock.NewFake()

	all := append([]input.Step{input.Release(10 * time.Millisecond)}, steps...)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	btn := input.NewButtons(ctx, input.NewScript(clk, all...), clk)

	h := &harness{t: t, clk: clk, loader: &recordingLoader{}, sdRoot: t.TempDir()}

	h.canvas = gfx.NewMemCanvas(80, 40)
	h.canvas.OnFlush = func(m *gfx.MemCanvas) {
		h.screens = append(h.screens, m.Screen())
	}
	eng := menu.NewEngine(gfx.NewConsole(h.canvas), btn, nil, log)

	mgr := storage.NewManager(func(id storage.DeviceID) (storage.BlockDevice, error) {
		if dev, ok := devs[id]; ok {
			return dev, nil
		}
		return nil, apperrors.ErrMediaUnavailable
	}, log)

	fsys := fs.NewDirFS(map[fs.Drive]string{fs.DriveSD: h.sdRoot}, log)
	files := config.DefaultConfig().Files

	h.session = state.NewSession(log, func() {
		h.quits++
		cancel()
	})
	h.modchip = application.NewModchipService(mgr, log)
	h.app = NewApp(Deps{
		Engine:  eng,
		Session: h.session,
		Modchip: h.modchip,
		UMS:     application.NewUMSService(mgr, usb.NewGadget(mgr, btn, log), log),
		Boot:    application.NewBootService(fsys, h.loader, files.Payload, log),
		Fsys:    fsys,
		Files:   files,
		Logger:  log,
	})
	return h
}

// taps 依次輕按
func taps(bs ...input.Button) []input.Step {
	return input.Taps(bs...)
}

// downs n 次 VOL-
func downs(n int) []input.Step {
	var out []input.Step
	for range n {
		out = append(out, input.Tap(input.VolDown)...)
	}
	return out
}

// script 拼接多段按鍵
func script(parts ...[]input.Step) []input.Step {
	var out []input.Step
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func (h *harness) putFile(name string, size int) []byte {
	h.t.Helper()
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(i)
	}
	require.NoError(h.t, os.WriteFile(filepath.Join(h.sdRoot, name), data, 0o644))
	return data
}

// status 狀態行文本
func (h *harness) status() string {
	return strings.TrimSpace(h.canvas.Row(menu.StatusY / gfx.CellSize))
}

// sawScreen 是否出現過同時包含所有片段的畫面
func (h *harness) sawScreen(parts ...string) bool {
	for _, s := range h.screens {
		ok := true
		for _, p := range parts {
			if !strings.Contains(s, p) {
				ok = false
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}

func (h *harness) command() modchip.Command {
	h.t.Helper()
	cmd, err := h.modchip.ReadCommand()
	require.NoError(h.t, err)
	return cmd
}
