package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yat-Muk/sdloader/internal/application"
	"github.com/Yat-Muk/sdloader/internal/domain/modchip"
	"github.com/Yat-Muk/sdloader/internal/infra/input"
	"github.com/Yat-Muk/sdloader/internal/tui/menu"
)

// 主菜單中從 Launch Payload 到 Power Off 的步數
const toPowerOff = 3

func TestRunLaunchesPayload(t *testing.T) {
	h := newHarness(t, allDevices())
	payload := h.putFile("payload.bin", 0x1000)

	assert.Equal(t, menu.StatusSuccess, h.app.Run(0))
	require.Len(t, h.loader.payloads, 1)
	assert.Equal(t, payload, h.loader.payloads[0])
	assert.Equal(t, 1, h.quits)
}

func TestRunBootsOFW(t *testing.T) {
	h := newHarness(t, allDevices())

	assert.Equal(t, menu.StatusSuccess, h.app.Run(input.VolDown))
	assert.Equal(t, 1, h.loader.ofw)
	assert.Empty(t, h.loader.payloads)
	assert.Equal(t, 1, h.quits)
}

func TestRunOFWComboDisabled(t *testing.T) {
	h := newHarness(t, allDevices())
	payload := h.putFile("payload.bin", 0x200)

	cfg := modchip.DefaultConfig()
	cfg.DisableOFWCombo = true
	require.NoError(t, h.modchip.WriteConfig(cfg))

	assert.Equal(t, menu.StatusSuccess, h.app.Run(input.VolDown))
	assert.Equal(t, 0, h.loader.ofw)
	require.Len(t, h.loader.payloads, 1)
	assert.Equal(t, payload, h.loader.payloads[0])
}

func TestRunMenuCombo(t *testing.T) {
	h := newHarness(t, allDevices(), script(
		downs(toPowerOff),
		taps(input.Power),
	)...)
	h.putFile("payload.bin", 0x200)

	assert.Equal(t, menu.StatusAborted, h.app.Run(input.VolUp))
	assert.Empty(t, h.loader.payloads, "按住 VOL+ 時不加載")
	assert.Equal(t, 1, h.quits)
	assert.True(t, h.sawScreen("sdloader", "Launch Payload", "UMS", "Toolbox", "Power Off"))
}

func TestRunPayloadErrors(t *testing.T) {
	powerOff := script(downs(toPowerOff), taps(input.Power))

	t.Run("沒有 payload", func(t *testing.T) {
		h := newHarness(t, allDevices(), powerOff...)

		assert.Equal(t, menu.StatusAborted, h.app.Run(0))
		assert.True(t, h.sawScreen("No payload.bin found!", "Launch Payload"))
	})

	t.Run("payload 過大", func(t *testing.T) {
		h := newHarness(t, allDevices(), powerOff...)
		h.putFile("payload.bin", application.PayloadSizeMax+1)

		assert.Equal(t, menu.StatusAborted, h.app.Run(0))
		assert.True(t, h.sawScreen("payload.bin on SD too large!"))
		assert.Empty(t, h.loader.payloads)
	})

	t.Run("跳轉失敗", func(t *testing.T) {
		h := newHarness(t, allDevices(), powerOff...)
		h.putFile("payload.bin", 0x200)
		h.loader.err = errInjected

		assert.Equal(t, menu.StatusAborted, h.app.Run(0))
		assert.True(t, h.sawScreen("Failed to launch payload!"))
	})
}

func TestMainMenuLaunchPayload(t *testing.T) {
	h := newHarness(t, allDevices(), taps(input.Power)...)

	cfg := modchip.DefaultConfig()
	cfg.DefaultAction = modchip.ActionMenu
	require.NoError(t, h.modchip.WriteConfig(cfg))

	payload := h.putFile("payload.bin", 0x800)
	assert.Equal(t, menu.StatusAborted, h.app.Run(0))
	require.Len(t, h.loader.payloads, 1)
	assert.Equal(t, payload, h.loader.payloads[0])
}

func TestMainMenuOpensToolbox(t *testing.T) {
	h := newHarness(t, allDevices(), script(
		downs(2),
		taps(input.Power), // Toolbox
		downs(toBackFromInfo),
		taps(input.Power),
		downs(1),
		taps(input.Power),
	)...)

	assert.Equal(t, menu.StatusAborted, h.app.Run(input.VolUp))
	assert.True(t, h.sawScreen("Toolbox", "FW  Info", "IPL Settings"))
}
