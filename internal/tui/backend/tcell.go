package backend

import (
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/Yat-Muk/sdloader/internal/infra/input"
	"github.com/Yat-Muk/sdloader/internal/tui/constants"
	"github.com/Yat-Muk/sdloader/internal/tui/gfx"
)

// Tcell 基於 tcell 的終端
type Tcell struct {
	*gfx.Grid
	*input.KeyState

	screen tcell.Screen
	keymap constants.KeyMap
	log    *zap.Logger

	done chan struct{}
	once sync.Once
}

// NewTcell 初始化屏幕並啟動事件循環
func NewTcell(screen tcell.Screen, keys *input.KeyState, keymap constants.KeyMap, log *zap.Logger) (*Tcell, error) {
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("初始化終端失敗: %w", err)
	}
	screen.DisableMouse()
	screen.HideCursor()
	screen.Clear()

	w, h := screen.Size()
	cols, rows := gridSize(w, h)
	if cols != w || rows != h {
		log.Warn("終端尺寸過小，部分菜單不可見",
			zap.Int("cols", w), zap.Int("rows", h),
			zap.Int("min_cols", MinCols), zap.Int("min_rows", MinRows))
	}

	t := &Tcell{
		Grid:     gfx.NewGrid(cols, rows),
		KeyState: keys,
		screen:   screen,
		keymap:   keymap,
		log:      log,
		done:     make(chan struct{}),
	}
	go t.eventLoop()
	return t, nil
}

// Flush 把緩衝複製到屏幕
func (t *Tcell) Flush() {
	cols, rows := t.Size()
	cells := t.Snapshot()
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			c := cells[row*cols+col]
			t.screen.SetContent(col, row, c.Ch, nil, cellStyle(c))
		}
	}
	t.screen.Show()
}

func (t *Tcell) Done() <-chan struct{} {
	return t.done
}

// Close 可重複調用
func (t *Tcell) Close() {
	t.once.Do(func() {
		_ = t.screen.PostEvent(tcell.NewEventInterrupt(nil))
		<-t.done
		t.screen.Fini()
	})
}

func (t *Tcell) eventLoop() {
	defer close(t.done)
	for {
		ev := t.screen.PollEvent()
		switch ev := ev.(type) {
		case *tcell.EventKey:
			btn, quit := t.keymap.Resolve(keyName(ev))
			if quit {
				t.log.Info("用戶退出終端會話")
				return
			}
			if btn != 0 {
				t.Press(btn)
			}
		case *tcell.EventResize:
			t.screen.Sync()
		case *tcell.EventInterrupt:
			return
		case nil:
			return
		}
	}
}

// keyName 轉為與 bubbletea 一致的鍵名
func keyName(ev *tcell.EventKey) string {
	switch ev.Key() {
	case tcell.KeyUp:
		return "up"
	case tcell.KeyDown:
		return "down"
	case tcell.KeyEnter:
		return "enter"
	case tcell.KeyEscape:
		return "esc"
	case tcell.KeyCtrlC:
		return "ctrl+c"
	case tcell.KeyRune:
		return string(ev.Rune())
	}
	return ""
}

func cellStyle(c gfx.Cell) tcell.Style {
	return tcell.StyleDefault.
		Foreground(tcellColor(c.FG)).
		Background(tcellColor(c.BG))
}

func tcellColor(c gfx.Color) tcell.Color {
	rgb := c.RGB()
	return tcell.NewRGBColor(int32(rgb.R), int32(rgb.G), int32(rgb.B))
}
