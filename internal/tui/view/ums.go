package view

import (
	"time"

	"go.uber.org/zap"

	"github.com/Yat-Muk/sdloader/internal/domain/ums"
	"github.com/Yat-Muk/sdloader/internal/infra/usb"
	"github.com/Yat-Muk/sdloader/internal/tui/gfx"
	"github.com/Yat-Muk/sdloader/internal/tui/menu"
)

// umsStopDelay 導出結束後保留狀態文本的時長
const umsStopDelay = time.Second

// umsView UMS 界面
type umsView struct {
	app  *App
	cfg  *ums.LoaderConfig
	menu *menu.Menu

	vols  [ums.VolumeCount]*menu.Entry
	start *menu.Entry
}

func (a *App) newUMSView(x, y int, cfg *ums.LoaderConfig) *umsView {
	u := &umsView{app: a, cfg: cfg}

	titles := [ums.VolumeCount]string{
		ums.VolSD:    "SD    CFG",
		ums.VolGPP:   "GPP   CFG",
		ums.VolBoot0: "BOOT0 CFG",
		ums.VolBoot1: "BOOT1 CFG",
	}
	for i := range u.vols {
		u.vols[i] = menu.ModifyingNoBlank(titles[i], u.configure(ums.Volume(i)))
	}
	u.start = menu.ModifyingNoBlank("Start", u.startExport)

	u.menu = &menu.Menu{
		Title: "UMS",
		Entries: []*menu.Entry{
			u.vols[ums.VolSD],
			u.vols[ums.VolGPP],
			u.vols[ums.VolBoot0],
			u.vols[ums.VolBoot1],
			menu.Text(""),
			u.start,
			menu.ModifyingNoBlank("Reload", u.reload),
			menu.Back(),
		},
		Colors:    menu.SchemeDefault,
		X:         x,
		Y:         y,
		Width:     9,
		Height:    11,
		Pad:       9,
		ShowTitle: true,
	}
	u.refresh()
	return u
}

// UMS 探測存儲並在 (x, y) 運行 UMS 界面；配置只在界面打開期間存在
func (a *App) UMS(x, y int) menu.Status {
	cfg := a.ums.NewConfig()
	a.session.SetUMS(cfg)
	defer a.session.ClearUMS()

	return a.eng.Run(a.newUMSView(x, y, cfg).menu)
}

// refresh 按掛載狀態和探測結果更新條目可用性
func (u *umsView) refresh() {
	u.start.Disabled = !u.cfg.AnyMounted()
	for i, e := range u.vols {
		e.Disabled = !u.cfg.Healthy(ums.Volume(i))
	}
}

func (u *umsView) reload(_ *menu.Entry, _ *menu.Menu) {
	u.app.ums.Reset(u.cfg)
	u.refresh()
	u.app.log.Info("UMS 配置已重置")
}

// startExport 在菜單右側顯示卷摘要並阻塞到導出結束
func (u *umsView) startExport(_ *menu.Entry, m *menu.Menu) {
	a := u.app
	con := a.eng.Console()
	colors := m.Colors
	defer a.shadowParent(m)()

	// 1. 切換到右側區域
	ox, oy := con.Origin()
	x, y := m.Beside(), m.Y
	con.SetOrigin(x, y)
	defer con.SetOrigin(ox, oy)

	width, height := con.Width()-x, con.Height()-y
	con.ClearRect(colors.BG, x, y, width, height)
	con.SetPos(x, y)

	// 2. 卷摘要和停止提示
	con.SetColor(colors.FG, colors.BG)
	con.Print("Running UMS\n")
	con.SetColor(colors.FGDisabled, colors.BG)
	for i := range u.cfg.Volumes {
		vc := &u.cfg.Volumes[i]
		con.Printf("%-5s %s\n", vc.Volume, vc.Mount)
	}
	con.SetColor(colors.FG, colors.BG)
	con.Print("\nTo stop, hold VOL+ and VOL-,\n or eject all volumes\n")
	con.SetColor(colors.FGDisabled, colors.BG)
	con.Print("Status: ")
	con.Flush()

	// 3. 導出
	sx, sy := con.Pos()
	sess := usb.Session{
		SetText: func(text string) {
			con.ClearRect(colors.BG, sx, sy, con.Width()-sx, gfx.CellSize)
			con.SetPos(sx, sy)
			con.Print(text)
			con.SetPos(sx, sy)
			con.Flush()
		},
		Maintenance: func() {
			a.eng.PrintBattery(false)
			a.eng.DimOnTimeout()
			con.Flush()
		},
	}
	if err := a.ums.Start(u.cfg, sess); err != nil {
		a.log.Error("UMS 導出失敗", zap.Error(err))
	}
	// 停止組合鍵也算按鍵活動
	a.eng.Wake()

	// 4. 保留狀態後清空區域
	a.eng.Clock().Sleep(umsStopDelay)
	con.ClearRect(colors.BG, x, y, width, height)
	con.Flush()
}
