// Package backend 把主機終端作為菜單的繪製表面和按鍵來源。
//
// 終端事件在各自的協程中處理，與菜單線程只通過按鍵狀態和字符格緩衝交互。
package backend

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/Yat-Muk/sdloader/internal/domain/config"
	"github.com/Yat-Muk/sdloader/internal/infra/input"
	"github.com/Yat-Muk/sdloader/internal/pkg/clock"
	apperrors "github.com/Yat-Muk/sdloader/internal/pkg/errors"
	"github.com/Yat-Muk/sdloader/internal/tui/constants"
	"github.com/Yat-Muk/sdloader/internal/tui/gfx"
)

// 菜單佈局需要的最小字符格數；終端更小時超出部分不可見
const (
	MinCols = 64
	MinRows = 24
)

// Terminal 終端會話
type Terminal interface {
	gfx.Canvas
	input.Reader
	// Done 用戶要求退出或終端事件循環結束時關閉
	Done() <-chan struct{}
	// Close 停止事件循環並恢復終端
	Close()
}

// Open 按配置創建終端後端
func Open(cfg config.DisplayConfig, clk clock.Clock, log *zap.Logger) (Terminal, error) {
	keys := input.NewKeyState(clk, time.Duration(cfg.HoldMS)*time.Millisecond)
	keymap := constants.DefaultKeyMap()

	switch cfg.Backend {
	case config.BackendTcell:
		screen, err := tcell.NewScreen()
		if err != nil {
			return nil, fmt.Errorf("創建終端失敗: %w", err)
		}
		return NewTcell(screen, keys, keymap, log)
	case config.BackendBubbletea:
		return NewBubbletea(keys, keymap, log, tea.WithAltScreen()), nil
	default:
		return nil, fmt.Errorf("%w: 未知顯示後端 %q", apperrors.ErrConfigInvalid, cfg.Backend)
	}
}

func gridSize(cols, rows int) (int, int) {
	return max(cols, MinCols), max(rows, MinRows)
}
