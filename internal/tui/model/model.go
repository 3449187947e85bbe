// Package model 是 bubbletea 終端後端的 Model：把字符格緩衝渲染成帶顏色的文本，
// 並把按鍵消息寫入按鍵狀態。
package model

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Yat-Muk/sdloader/internal/infra/input"
	"github.com/Yat-Muk/sdloader/internal/tui/constants"
	"github.com/Yat-Muk/sdloader/internal/tui/gfx"
	"github.com/Yat-Muk/sdloader/internal/tui/style"
)

// FlushMsg 菜單線程提交了一幀
type FlushMsg struct{}

// Model TUI 核心模型
type Model struct {
	grid   *gfx.Grid
	keys   *input.KeyState
	keymap constants.KeyMap

	// quitting 為真時 View 返回空串，退出後不留殘影
	quitting bool
}

// NewModel 創建 Model
func NewModel(grid *gfx.Grid, keys *input.KeyState, keymap constants.KeyMap) *Model {
	return &Model{grid: grid, keys: keys, keymap: keymap}
}

// Init 初始化
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update 更新循環
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keymap.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keymap.VolUp):
			m.keys.Press(input.VolUp)
		case key.Matches(msg, m.keymap.VolDown):
			m.keys.Press(input.VolDown)
		case key.Matches(msg, m.keymap.Power):
			m.keys.Press(input.Power)
		case key.Matches(msg, m.keymap.Stop):
			m.keys.Press(input.StopChord)
		}
	case FlushMsg:
		// 下一次 View 讀取最新的緩衝
	}
	return m, nil
}

// View 渲染視圖
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	return Render(m.grid) + "\n" + style.MutedText(m.keymap.Help())
}

// Render 逐行渲染緩衝，相同顏色的連續字符合併為一段
func Render(grid *gfx.Grid) string {
	cols, rows := grid.Size()
	cells := grid.Snapshot()

	var sb strings.Builder
	var run strings.Builder
	for row := 0; row < rows; row++ {
		if row > 0 {
			sb.WriteByte('\n')
		}
		line := cells[row*cols : (row+1)*cols]
		for i := 0; i < len(line); {
			fg, bg := line[i].FG, line[i].BG
			run.Reset()
			for ; i < len(line) && line[i].FG == fg && line[i].BG == bg; i++ {
				ch := line[i].Ch
				if ch == 0 {
					ch = ' '
				}
				run.WriteRune(ch)
			}
			sb.WriteString(lipgloss.NewStyle().
				Foreground(style.Palette(fg)).
				Background(style.Palette(bg)).
				Render(run.String()))
		}
	}
	return sb.String()
}
