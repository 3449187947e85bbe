package view

import (
	"go.uber.org/zap"

	"github.com/Yat-Muk/sdloader/internal/domain/ums"
	"github.com/Yat-Muk/sdloader/internal/tui/menu"
)

// volumePanel 單個卷的配置面板
type volumePanel struct {
	vc *ums.VolumeConfig

	mount, mode, part, offset, size, total *menu.Entry
}

// update 重寫所有標籤和可用性；配置本身已在修改時重算
func (p *volumePanel) update() {
	vc := p.vc
	p.mount.SetTitle(vc.MountLabel())
	p.mode.SetTitle(vc.ModeLabel())
	p.part.SetTitle(vc.PartLabel())
	p.offset.SetTitle(vc.OffsetLabel())
	p.size.SetTitle(vc.SizeLabel())
	p.total.SetTitle(vc.TotalLabel())

	p.mode.Disabled = !vc.ModeEditable()
	p.part.Disabled = !vc.PartEditable()
	p.offset.Disabled = !vc.RangeEditable()
	p.size.Disabled = !vc.RangeEditable()
}

// configure 打開卷配置面板；打開時讀取分區表，關閉時釋放
func (u *umsView) configure(vol ums.Volume) menu.ModifyFunc {
	return func(e *menu.Entry, m *menu.Menu) {
		a := u.app
		defer a.shadowParent(m)()

		vc := u.cfg.Volume(vol)
		a.ums.DiscoverPartitions(vc)
		defer vc.Detach()

		p := &volumePanel{vc: vc}
		p.mount = menu.ModifyingNoBlank("", func(_ *menu.Entry, _ *menu.Menu) {
			vc.CycleMount()
			p.update()
			// 掛載變化影響 Start 的可用性
			u.refresh()
			a.eng.Print(u.menu)
		})
		p.mode = menu.ModifyingNoBlank("", func(_ *menu.Entry, _ *menu.Menu) {
			vc.ToggleMode()
			p.update()
		})
		p.part = menu.ModifyingNoBlank("", func(_ *menu.Entry, _ *menu.Menu) {
			vc.NextPartition()
			p.update()
		})
		p.offset = menu.ModifyingNoBlank("", func(self *menu.Entry, pm *menu.Menu) {
			v := a.eng.EditU32(self.X, self.Y, "Offset", vc.Offset, vc.OffsetMax(), pm.Colors)
			vc.SetOffset(v)
			p.update()
		})
		p.size = menu.ModifyingNoBlank("", func(self *menu.Entry, pm *menu.Menu) {
			v := a.eng.EditU32(self.X, self.Y, "Size  ", vc.Size, vc.SizeMax(), pm.Colors)
			vc.SetSize(v)
			p.update()
		})
		p.total = menu.ActionNoBlank("", nil).WithDisabled(true)
		p.update()

		pm := panel(m, e.Title(), 20,
			p.mount,
			p.mode,
			p.part,
			p.offset,
			p.size,
			p.total,
			menu.Text(""),
			menu.Back(),
		)
		pm.Height = m.Height

		a.log.Debug("打開卷配置",
			zap.Stringer("volume", vol),
			zap.Uint32("sectors", vc.PhysSize),
			zap.Int("partitions", vc.Table.Len()))
		a.eng.Run(pm)

		a.log.Info("卷配置已更新",
			zap.Stringer("volume", vol),
			zap.Stringer("mount", vc.Mount),
			zap.Stringer("mode", vc.Mode),
			zap.Uint32("offset", vc.Offset),
			zap.Uint32("size", vc.Size))
	}
}
