package backend

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/Yat-Muk/sdloader/internal/infra/input"
	"github.com/Yat-Muk/sdloader/internal/tui/constants"
	"github.com/Yat-Muk/sdloader/internal/tui/gfx"
	"github.com/Yat-Muk/sdloader/internal/tui/model"
)

// Bubbletea 基於 bubbletea 的終端
//
// 啟動前無法得知終端尺寸，緩衝固定為最小佈局尺寸。
type Bubbletea struct {
	*gfx.Grid
	*input.KeyState

	program *tea.Program
	log     *zap.Logger

	done chan struct{}
	once sync.Once
}

// NewBubbletea 創建並在後台運行 tea.Program
func NewBubbletea(keys *input.KeyState, keymap constants.KeyMap, log *zap.Logger, opts ...tea.ProgramOption) *Bubbletea {
	cols, rows := gridSize(0, 0)
	grid := gfx.NewGrid(cols, rows)
	b := &Bubbletea{
		Grid:     grid,
		KeyState: keys,
		program:  tea.NewProgram(model.NewModel(grid, keys, keymap), opts...),
		log:      log,
		done:     make(chan struct{}),
	}
	go b.run()
	return b
}

func (b *Bubbletea) run() {
	defer close(b.done)
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("終端界面崩潰", zap.Any("panic", r))
		}
	}()
	if _, err := b.program.Run(); err != nil {
		b.log.Error("終端界面異常退出", zap.Error(err))
	}
}

// Flush 通知 Model 重繪；程序結束後立即返回
func (b *Bubbletea) Flush() {
	b.program.Send(model.FlushMsg{})
}

func (b *Bubbletea) Done() <-chan struct{} {
	return b.done
}

// Close 可重複調用
func (b *Bubbletea) Close() {
	b.once.Do(func() {
		b.program.Quit()
		<-b.done
	})
}
