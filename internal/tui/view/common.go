// Package view 用菜單引擎組裝各個界面：主菜單、工具箱、UMS 和晶片設置。
package view

import (
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-runewidth"
	"go.uber.org/zap"

	"github.com/Yat-Muk/sdloader/internal/application"
	"github.com/Yat-Muk/sdloader/internal/domain/config"
	"github.com/Yat-Muk/sdloader/internal/infra/fs"
	apperrors "github.com/Yat-Muk/sdloader/internal/pkg/errors"
	"github.com/Yat-Muk/sdloader/internal/tui/gfx"
	"github.com/Yat-Muk/sdloader/internal/tui/menu"
	"github.com/Yat-Muk/sdloader/internal/tui/state"
)

// 佈局
const (
	// MenuX, MenuY 主菜單左上角（像素），位於狀態行下方
	MenuX = 0
	MenuY = 11 * gfx.CellSize

	// minStatusHold 命令狀態消息的最短顯示時間
	minStatusHold = time.Second
)

// 狀態消息顏色
const (
	colorWarn     = gfx.Orange
	colorProgress = gfx.Teal
)

// Deps 視圖依賴
type Deps struct {
	Engine  *menu.Engine
	Session *state.Session
	Modchip *application.ModchipService
	UMS     *application.UMSService
	Boot    *application.BootService
	Fsys    fs.Filesystem
	Files   config.FilesConfig
	Logger  *zap.Logger
}

// App 組裝好的界面
type App struct {
	eng     *menu.Engine
	session *state.Session
	modchip *application.ModchipService
	ums     *application.UMSService
	boot    *application.BootService
	fsys    fs.Filesystem
	files   config.FilesConfig
	log     *zap.Logger
}

// NewApp 創建界面
func NewApp(d Deps) *App {
	log := d.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &App{
		eng:     d.Engine,
		session: d.Session,
		modchip: d.Modchip,
		ums:     d.UMS,
		boot:    d.Boot,
		fsys:    d.Fsys,
		files:   d.Files,
		log:     log,
	}
}

// Session 會話狀態
func (a *App) Session() *state.Session {
	return a.session
}

func (a *App) warn(msg string) {
	a.eng.PrintStatus(colorWarn, msg)
}

func (a *App) progress(msg string) {
	a.eng.PrintStatus(colorProgress, msg)
}

// fileError 把打開或讀取文件的錯誤轉成狀態消息
func (a *App) fileError(path string, drive fs.Drive, err error) {
	a.log.Warn("文件操作失敗", zap.String("path", path), zap.Stringer("drive", drive), zap.Error(err))
	switch {
	case errors.Is(err, apperrors.ErrFileNotFound):
		a.warn(fmt.Sprintf("No %s found!", path))
	case errors.Is(err, apperrors.ErrFileTooLarge):
		a.warn(tooLarge(path, drive))
	default:
		a.warn(fmt.Sprintf("Error reading %s from %s!", path, drive.FriendlyName()))
	}
}

func tooLarge(path string, drive fs.Drive) string {
	return fmt.Sprintf("%s on %s too large!", path, drive.FriendlyName())
}

// shadowParent 父菜單變暗並重繪，返回恢復函數
func (a *App) shadowParent(parent *menu.Menu) func() {
	restore := parent.Shadow()
	a.eng.Print(parent)
	return restore
}

// panel 在 parent 右側創建一個子面板
func panel(parent *menu.Menu, title string, pad int, entries ...*menu.Entry) *menu.Menu {
	return &menu.Menu{
		Title:     title,
		Entries:   entries,
		Colors:    menu.SchemeDefault,
		X:         parent.Beside(),
		Y:         parent.Y,
		Width:     pad,
		Height:    len(entries) + 2,
		Pad:       pad,
		ShowTitle: true,
	}
}

// spacers n 個空行
func spacers(n int) []*menu.Entry {
	out := make([]*menu.Entry, n)
	for i := range out {
		out[i] = menu.Text("")
	}
	return out
}

// confirm 在 parent 右側打開確認對話框；onConfirm 收到確認條目，可把它禁用
func (a *App) confirm(parent *menu.Menu, title string, onConfirm func(e *menu.Entry)) {
	defer a.shadowParent(parent)()

	entries := []*menu.Entry{
		menu.ModifyingNoBlank("Confirm", func(e *menu.Entry, _ *menu.Menu) { onConfirm(e) }),
	}
	entries = append(entries, spacers(5)...)
	entries = append(entries, menu.Back())

	pad := max(runewidth.StringWidth(title), 4)
	dialog := panel(parent, title, pad, entries...)
	a.eng.Run(dialog)
}
