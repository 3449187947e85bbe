package view

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Yat-Muk/sdloader/internal/domain/modchip"
	"github.com/Yat-Muk/sdloader/internal/tui/menu"
)

func onOff(enabled bool) string {
	if enabled {
		return "on"
	}
	return "off"
}

// settings 編輯晶片中的加載器配置；只有 Save 會寫入
func (t *toolbox) settings(_ *menu.Entry, m *menu.Menu) {
	a := t.app
	cfg := a.modchip.ReadConfig()
	defer a.shadowParent(m)()

	var payload, action, ofw *menu.Entry
	refresh := func() {
		payload.SetTitle(fmt.Sprintf("Payload %s", cfg.PayloadVolume))
		action.SetTitle(fmt.Sprintf("Action  %s", cfg.DefaultAction))
		ofw.SetTitle(fmt.Sprintf("OFW Combo %s", onOff(!cfg.DisableOFWCombo)))
	}

	payload = menu.ModifyingNoBlank("", func(_ *menu.Entry, _ *menu.Menu) {
		cfg.PayloadVolume = cfg.PayloadVolume.Next()
		refresh()
	})
	action = menu.ModifyingNoBlank("", func(_ *menu.Entry, _ *menu.Menu) {
		cfg.DefaultAction = cfg.DefaultAction.Next()
		refresh()
	})
	ofw = menu.ModifyingNoBlank("", func(_ *menu.Entry, _ *menu.Menu) {
		cfg.DisableOFWCombo = !cfg.DisableOFWCombo
		refresh()
	})

	save := menu.ModifyingNoBlank("Save", func(_ *menu.Entry, _ *menu.Menu) {
		start := a.eng.Clock().Now()
		a.progress("Saving settings...")
		err := a.modchip.WriteConfig(cfg)
		a.eng.HoldSince(start, minStatusHold)
		if err != nil {
			a.log.Error("保存晶片配置失敗", zap.Error(err))
			a.warn("Failed to save settings!")
			return
		}
		a.progress("Settings saved!")
	})
	defaults := menu.ModifyingNoBlank("Defaults", func(_ *menu.Entry, _ *menu.Menu) {
		cfg = modchip.DefaultConfig()
		refresh()
	})

	p := panel(m, "IPL Settings", 17,
		payload,
		action,
		ofw,
		menu.Text(""),
		save,
		defaults,
		menu.Text(""),
		menu.Back(),
	)

	refresh()
	a.eng.Run(p)
}
