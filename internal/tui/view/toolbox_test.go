package view

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yat-Muk/sdloader/internal/domain/modchip"
	"github.com/Yat-Muk/sdloader/internal/infra/input"
	"github.com/Yat-Muk/sdloader/internal/infra/storage"
	"github.com/Yat-Muk/sdloader/internal/tui/menu"
)

// 工具箱位於主菜單右側
const toolboxX = 15 * 8

// 從 FW Info 到 Back 的步數
const (
	toBackFromInfo     = 7
	toBackFromSettings = 1
)

func TestToolboxReset(t *testing.T) {
	h := newHarness(t, allDevices(), script(
		taps(input.VolDown, input.Power, input.Power), // Reset → Confirm
		[]input.Step{afterHold},
		taps(input.VolDown, input.Power), // 對話框 Back
		// 命令條目全部禁用，焦點停在 Reset
		downs(2),
		taps(input.Power),
	)...)

	assert.Equal(t, menu.StatusSuccess, h.app.Toolbox(toolboxX, MenuY))

	assert.Equal(t, modchip.ResetCommand(), h.command())
	assert.True(t, h.session.CommandPending())
	assert.Equal(t, "reset", h.session.PendingCommand())
	assert.Equal(t, "Reset command sent. Reboot console!", h.status())
	assert.True(t, h.sawScreen("Reset Modchip", "Confirm"))
	assert.True(t, h.sawScreen("Writing reset command..."))
}

func TestToolboxLatchPersists(t *testing.T) {
	h := newHarness(t, allDevices())
	h.session.MarkCommandPending("rollback")

	tb := h.app.newToolbox(toolboxX, MenuY)
	for _, e := range tb.cmds {
		assert.True(t, e.Disabled, e.Title())
	}
	assert.False(t, tb.menu.Entries[0].Disabled, "FW Info 始終可用")
	assert.Equal(t, "FW  Info", tb.menu.FirstSelectable().Title())
}

func TestToolboxResetFailure(t *testing.T) {
	devs := allDevices()
	devs[storage.DevBoot0] = writeFailDevice{storage.NewMemDevice(0x2000)}

	h := newHarness(t, devs, script(
		taps(input.VolDown, input.Power, input.Power),
		[]input.Step{afterHold},
		taps(input.VolDown, input.Power),
		// 焦點仍在可用的 Reset 上
		downs(6),
		taps(input.Power),
	)...)

	assert.Equal(t, menu.StatusSuccess, h.app.Toolbox(toolboxX, MenuY))
	assert.False(t, h.session.CommandPending())
	assert.Equal(t, "Failed to send command!", h.status())
}

func TestToolboxRollback(t *testing.T) {
	h := newHarness(t, allDevices(), script(
		downs(3),
		taps(input.Power, input.Power),
		[]input.Step{afterHold},
		taps(input.VolDown, input.Power),
		downs(2),
		taps(input.Power),
	)...)

	assert.Equal(t, menu.StatusSuccess, h.app.Toolbox(toolboxX, MenuY))
	assert.True(t, h.command().IsRollback())
	assert.Equal(t, "rollback", h.session.PendingCommand())
	assert.Equal(t, "Rollback command sent. Reboot console!", h.status())
}

func TestToolboxUpdate(t *testing.T) {
	t.Run("文件不存在", func(t *testing.T) {
		h := newHarness(t, allDevices(), script(
			downs(2),
			taps(input.Power),
			downs(5),
			taps(input.Power),
		)...)

		assert.Equal(t, menu.StatusSuccess, h.app.Toolbox(toolboxX, MenuY))
		assert.Equal(t, "No update.bin found!", h.status())
		assert.False(t, h.session.CommandPending())
	})

	t.Run("文件過大", func(t *testing.T) {
		h := newHarness(t, allDevices(), script(
			downs(2),
			taps(input.Power),
			downs(5),
			taps(input.Power),
		)...)
		h.putFile("update.bin", modchip.RegionOf(modchip.ImageFirmware).MaxSize+1)

		assert.Equal(t, menu.StatusSuccess, h.app.Toolbox(toolboxX, MenuY))
		assert.Equal(t, "update.bin on SD too large!", h.status())
		assert.Equal(t, modchip.Command{}, h.command(), "寫入前拒絕")
		assert.False(t, h.sawScreen("Apply update from"))
	})

	t.Run("固件更新", func(t *testing.T) {
		h := newHarness(t, allDevices(), script(
			downs(2),
			taps(input.Power, input.Power),
			[]input.Step{afterHold},
			taps(input.VolDown, input.Power),
			downs(2),
			taps(input.Power),
		)...)
		h.putFile("update.bin", 0x9000)

		assert.Equal(t, menu.StatusSuccess, h.app.Toolbox(toolboxX, MenuY))
		assert.True(t, h.sawScreen("Apply update from SD"))
		assert.Equal(t, modchip.FirmwareUpdateCommand(0x1F00, 0x48), h.command())
		assert.Equal(t, "FW update", h.session.PendingCommand())
		assert.Equal(t, "FW update command sent. Reboot console!", h.status())
	})

	t.Run("IPL 更新沒有後續命令", func(t *testing.T) {
		devs := allDevices()
		h := newHarness(t, devs, script(
			downs(4),
			taps(input.Power, input.Power),
			[]input.Step{afterHold},
			taps(input.VolDown, input.Power),
			downs(2),
			taps(input.Power),
		)...)
		image := h.putFile("sdloader.enc", 0x400)

		assert.Equal(t, menu.StatusSuccess, h.app.Toolbox(toolboxX, MenuY))
		assert.Equal(t, modchip.Command{}, h.command())
		assert.True(t, h.session.CommandPending(), "寫入嘗試後總是鎖存")
		assert.Equal(t, "IPL update command sent. Reboot console!", h.status())

		start := modchip.RegionOf(modchip.ImageIPL).StartSector
		written, err := devs[storage.DevBoot0].ReadSectors(start, 2)
		require.NoError(t, err)
		assert.Equal(t, image, written)
	})
}

func TestToolboxInfo(t *testing.T) {
	devs := allDevices()
	boot0 := devs[storage.DevBoot0].(*storage.MemDevice)
	sector := make([]byte, storage.SectorSize)
	modchip.Descriptor{
		Signature:    modchip.DescriptorSignature,
		FWMajor:      1,
		FWMinor:      120,
		LoaderHash:   0xDEADBEEF,
		FirmwareHash: 0x12345678,
		FuseCount:    3,
	}.Put(sector[modchip.DescriptorOffset:])
	require.NoError(t, boot0.WriteSectors(modchip.DescriptorSector, 1, sector))

	h := newHarness(t, devs, script(
		taps(input.Power, input.Power), // 打開並關閉
		downs(toBackFromInfo),
		taps(input.Power),
	)...)

	assert.Equal(t, menu.StatusSuccess, h.app.Toolbox(toolboxX, MenuY))
	assert.True(t, h.sawScreen(
		"FW Info",
		fmt.Sprintf("Signature : 0x%08x", modchip.DescriptorSignature),
		"FW Version: 1.99",
		"Fuse Count: 3",
		"FW Hash   : 0x12345678",
		"IPL Hash  : 0xdeadbeef",
	))
}

func TestToolboxInfoInvalid(t *testing.T) {
	h := newHarness(t, allDevices(), script(
		taps(input.Power, input.Power),
		downs(toBackFromInfo),
		taps(input.Power),
	)...)

	assert.Equal(t, menu.StatusSuccess, h.app.Toolbox(toolboxX, MenuY))
	assert.True(t, h.sawScreen("Signature : [Invalid]", "FW Version: --", "IPL Hash  : --"))
}

func TestIPLSettings(t *testing.T) {
	h := newHarness(t, allDevices(), script(
		downs(6),
		taps(input.Power),                // 打開 IPL Settings
		taps(input.Power),                // Payload Auto → SD
		taps(input.VolDown, input.Power), // Action Payload → OFW
		taps(input.VolDown, input.Power), // OFW Combo on → off
		taps(input.VolDown, input.Power), // Save
		[]input.Step{afterHold},
		downs(2),
		taps(input.Power),
		downs(toBackFromSettings),
		taps(input.Power),
	)...)

	assert.Equal(t, menu.StatusSuccess, h.app.Toolbox(toolboxX, MenuY))
	assert.Equal(t, "Settings saved!", h.status())

	cfg, err := h.modchip.LoadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.Valid())
	assert.Equal(t, modchip.VolumeSD, cfg.PayloadVolume)
	assert.Equal(t, modchip.ActionOFW, cfg.DefaultAction)
	assert.True(t, cfg.DisableOFWCombo)
	assert.True(t, h.sawScreen("IPL Settings", "Payload SD", "Action  OFW", "OFW Combo off"))
}

func TestIPLSettingsDefaultsNotSaved(t *testing.T) {
	h := newHarness(t, allDevices(), script(
		downs(6),
		taps(input.Power),
		taps(input.Power), // Payload Auto → SD
		downs(4),          // Defaults
		taps(input.Power),
		downs(1),
		taps(input.Power),
		downs(toBackFromSettings),
		taps(input.Power),
	)...)

	assert.Equal(t, menu.StatusSuccess, h.app.Toolbox(toolboxX, MenuY))
	assert.Equal(t, modchip.DefaultConfig(), h.modchip.ReadConfig())
	assert.True(t, h.sawScreen("Payload SD"))
	assert.Empty(t, h.status(), "沒有保存")
}
