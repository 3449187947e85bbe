package view

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Yat-Muk/sdloader/internal/domain/modchip"
	"github.com/Yat-Muk/sdloader/internal/infra/fs"
	"github.com/Yat-Muk/sdloader/internal/tui/menu"
)

// toolbox 晶片工具箱
type toolbox struct {
	app  *App
	menu *menu.Menu
	// cmds 會發送晶片命令的條目，命令鎖存置位後全部禁用
	cmds []*menu.Entry
}

func (a *App) newToolbox(x, y int) *toolbox {
	t := &toolbox{app: a}
	pending := a.session.CommandPending()

	reset := menu.ModifyingNoBlank("FW  Reset", t.reset).WithDisabled(pending)
	fwUpdate := menu.ModifyingNoBlank("FW  Update", t.update(modchip.ImageFirmware, "FW", a.files.Firmware)).WithDisabled(pending)
	rollback := menu.ModifyingNoBlank("FW  Rollback", t.rollback).WithDisabled(pending)
	iplUpdate := menu.ModifyingNoBlank("IPL Update", t.update(modchip.ImageIPL, "IPL", a.files.IPL)).WithDisabled(pending)
	blUpdate := menu.ModifyingNoBlank("BL  Update", t.update(modchip.ImageBootloader, "BL", a.files.Bootloader)).WithDisabled(pending)
	t.cmds = []*menu.Entry{reset, fwUpdate, rollback, iplUpdate, blUpdate}

	entries := []*menu.Entry{
		menu.ModifyingNoBlank("FW  Info", t.info),
		reset,
		fwUpdate,
		rollback,
		iplUpdate,
		blUpdate,
		menu.ModifyingNoBlank("IPL Settings", t.settings),
		menu.Text(""),
		menu.Back(),
	}
	t.menu = &menu.Menu{
		Title:     "Toolbox",
		Entries:   entries,
		Colors:    menu.SchemeDefault,
		X:         x,
		Y:         y,
		Width:     12,
		Height:    len(entries) + 2,
		Pad:       12,
		ShowTitle: true,
	}
	return t
}

// Toolbox 在 (x, y) 運行工具箱
func (a *App) Toolbox(x, y int) menu.Status {
	return a.eng.Run(a.newToolbox(x, y).menu)
}

// latch 置位命令鎖存並禁用所有命令條目和確認條目
func (t *toolbox) latch(name string, confirm *menu.Entry) {
	t.app.session.MarkCommandPending(name)
	for _, e := range t.cmds {
		e.Disabled = true
	}
	t.app.eng.Print(t.menu)
	confirm.Disabled = true
}

// command 發送一條無參數命令；失敗時不置位鎖存
func (t *toolbox) command(name, label string, issue func() error) func(e *menu.Entry) {
	return func(e *menu.Entry) {
		eng := t.app.eng
		start := eng.Clock().Now()
		t.app.progress(fmt.Sprintf("Writing %s command...", name))

		err := issue()
		eng.HoldSince(start, minStatusHold)

		if err != nil {
			t.app.log.Error("晶片命令發送失敗", zap.String("command", name), zap.Error(err))
			t.app.warn("Failed to send command!")
			return
		}
		t.app.progress(fmt.Sprintf("%s command sent. Reboot console!", label))
		t.latch(name, e)
	}
}

func (t *toolbox) reset(_ *menu.Entry, m *menu.Menu) {
	t.app.confirm(m, "Reset Modchip", t.command("reset", "Reset", t.app.modchip.IssueReset))
}

func (t *toolbox) rollback(_ *menu.Entry, m *menu.Menu) {
	t.app.confirm(m, "FW Rollback", t.command("rollback", "Rollback", t.app.modchip.IssueRollback))
}

// update 查找鏡像文件，確認後流式寫入
//
// 寫入嘗試之後無論成敗都置位鎖存，鏡像區域可能已被改寫。
func (t *toolbox) update(kind modchip.ImageKind, label, path string) menu.ModifyFunc {
	return func(_ *menu.Entry, m *menu.Menu) {
		// 1. 查找文件
		f, drive, err := fs.OpenOnAny(t.app.fsys, path)
		if err != nil {
			t.app.fileError(path, drive, err)
			return
		}
		defer f.Close()

		// 2. 寫入前驗證大小
		size := f.Size()
		if size > int64(modchip.RegionOf(kind).MaxSize) {
			t.app.log.Warn("鏡像過大", zap.String("path", path), zap.Int64("size", size))
			t.app.warn(tooLarge(path, drive))
			return
		}
		if size == 0 {
			t.app.warn(fmt.Sprintf("Error reading %s from %s!", path, drive.FriendlyName()))
			return
		}

		// 3. 確認並寫入
		title := fmt.Sprintf("Apply update from %s", drive.FriendlyName())
		t.app.confirm(m, title, func(e *menu.Entry) {
			eng := t.app.eng
			start := eng.Clock().Now()
			t.app.progress(fmt.Sprintf("Writing %s update command...", label))

			err := t.app.modchip.WriteImageFromFile(kind, f)
			eng.HoldSince(start, minStatusHold)

			if err != nil {
				t.app.log.Error("鏡像更新失敗", zap.Stringer("kind", kind), zap.Error(err))
				t.app.warn(fmt.Sprintf("%s update command fail. Reboot console!", label))
			} else {
				t.app.progress(fmt.Sprintf("%s update command sent. Reboot console!", label))
			}
			t.latch(kind.String()+" update", e)
		})
	}
}

// info 顯示晶片固件描述符
func (t *toolbox) info(_ *menu.Entry, m *menu.Menu) {
	desc, err := t.app.modchip.ReadDescriptor()
	if err != nil {
		t.app.log.Warn("讀取固件描述符失敗", zap.Error(err))
		t.app.warn("Failed to read FW info!")
		return
	}
	defer t.app.shadowParent(m)()

	sig := "Signature : [Invalid]"
	ver := "FW Version: --"
	fuses := "Fuse Count: --"
	fwHash := "FW Hash   : --"
	iplHash := "IPL Hash  : --"
	if desc.Valid() {
		sig = fmt.Sprintf("Signature : 0x%08x", desc.Signature)
		ver = fmt.Sprintf("FW Version: %s", desc.Version())
		fuses = fmt.Sprintf("Fuse Count: %d", desc.Fuses())
		fwHash = fmt.Sprintf("FW Hash   : 0x%08x", desc.FirmwareHash)
		iplHash = fmt.Sprintf("IPL Hash  : 0x%08x", desc.LoaderHash)
	}

	t.app.eng.Run(panel(m, "FW Info", 22,
		menu.TextDisabled(sig),
		menu.TextDisabled(ver),
		menu.TextDisabled(fuses),
		menu.TextDisabled(fwHash),
		menu.TextDisabled(iplHash),
		menu.Text(""),
		menu.Back(),
	))
}
