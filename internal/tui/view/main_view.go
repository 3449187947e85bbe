package view

import (
	"errors"

	"go.uber.org/zap"

	"github.com/Yat-Muk/sdloader/internal/domain/modchip"
	"github.com/Yat-Muk/sdloader/internal/infra/fs"
	"github.com/Yat-Muk/sdloader/internal/infra/input"
	apperrors "github.com/Yat-Muk/sdloader/internal/pkg/errors"
	"github.com/Yat-Muk/sdloader/internal/tui/menu"
)

// MainMenu 主菜單
func (a *App) MainMenu() *menu.Menu {
	entries := []*menu.Entry{
		menu.ActionNoBlank("Launch Payload", func() {
			a.launch(a.modchip.ReadConfig().PayloadVolume)
		}),
		menu.ModifyingNoBlank("UMS", func(_ *menu.Entry, m *menu.Menu) {
			defer a.shadowParent(m)()
			a.UMS(m.Beside(), m.Y)
		}),
		menu.ModifyingNoBlank("Toolbox", func(_ *menu.Entry, m *menu.Menu) {
			defer a.shadowParent(m)()
			a.Toolbox(m.Beside(), m.Y)
		}),
		menu.Text(""),
		menu.ActionNoBlank("Power Off", a.session.Quit),
	}

	return &menu.Menu{
		Title:     "sdloader",
		Entries:   entries,
		Colors:    menu.SchemeDefault,
		X:         MenuX,
		Y:         MenuY,
		Width:     14,
		Height:    len(entries) + 2,
		Pad:       14,
		ShowTitle: true,
	}
}

// Run 按開機時按住的鍵執行默認動作；需要菜單時阻塞到會話結束
func (a *App) Run(held input.Button) menu.Status {
	a.eng.ClearScreen()
	cfg := a.modchip.ReadConfig()

	switch a.boot.Decide(held, cfg) {
	case modchip.ActionPayload:
		if a.launch(cfg.PayloadVolume) {
			return menu.StatusSuccess
		}
	case modchip.ActionOFW:
		if err := a.boot.BootOFW(); err != nil {
			a.log.Error("啟動原廠固件失敗", zap.Error(err))
			a.warn("Failed to boot OFW!")
		} else {
			a.session.Quit()
			return menu.StatusSuccess
		}
	}

	s := a.eng.Run(a.MainMenu())
	if s == menu.StatusNoSelectableEntry {
		a.log.Error("主菜單無法運行", zap.Error(apperrors.ErrNoSelectableEntry))
	}
	return s
}

// launch 加載 payload；成功時結束會話
func (a *App) launch(vol modchip.PayloadVolume) bool {
	path := a.boot.PayloadPath()
	drive, err := a.boot.LaunchPayload(vol)
	if err != nil {
		a.payloadError(path, drive, err)
		return false
	}
	a.session.Quit()
	return true
}

// payloadError 文件錯誤沿用通用消息，其餘視為跳轉失敗
func (a *App) payloadError(path string, drive fs.Drive, err error) {
	switch {
	case errors.Is(err, apperrors.ErrFileNotFound),
		errors.Is(err, apperrors.ErrFileTooLarge),
		errors.Is(err, apperrors.ErrFileRead),
		errors.Is(err, apperrors.ErrMediaUnavailable),
		errors.Is(err, apperrors.ErrInvalidDrive):
		a.fileError(path, drive, err)
	default:
		a.log.Error("payload 加載失敗", zap.String("path", path), zap.Error(err))
		a.warn("Failed to launch payload!")
	}
}
