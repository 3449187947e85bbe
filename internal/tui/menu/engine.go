package menu

import (
	"time"

	"go.uber.org/zap"

	"github.com/Yat-Muk/sdloader/internal/infra/input"
	"github.com/Yat-Muk/sdloader/internal/pkg/clock"
	"github.com/Yat-Muk/sdloader/internal/tui/gfx"
)

// MaxDepth 子菜單最大嵌套深度
const MaxDepth = 8

// inputTimeout 每次等待按鍵的時長，到期後刷新電量並檢查菜單超時
const inputTimeout = time.Second

// Status 菜單退出原因
type Status int

const (
	StatusSuccess Status = iota
	StatusNoSelectableEntry
	StatusTimeout
	StatusTooDeep
	StatusAborted
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusNoSelectableEntry:
		return "no-selectable-entry"
	case StatusTimeout:
		return "timeout"
	case StatusTooDeep:
		return "too-deep"
	case StatusAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Battery 電量讀取能力
type Battery interface {
	Read() (percent int, charging bool, err error)
}

// Engine 菜單引擎
//
// 同一時刻只有一個 goroutine 驅動引擎；回調在引擎的 goroutine 中同步執行。
type Engine struct {
	con     *gfx.Console
	btn     *input.Buttons
	clk     clock.Clock
	battery Battery
	logger  *zap.Logger

	depth       int
	lastBattery time.Time
	chargeTick  int

	lastActivity time.Time
	dimmed       bool
}

// NewEngine 創建引擎；battery 可為 nil
func NewEngine(con *gfx.Console, btn *input.Buttons, battery Battery, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	clk := btn.Clock()
	return &Engine{
		con:          con,
		btn:          btn,
		clk:          clk,
		battery:      battery,
		logger:       logger,
		lastActivity: clk.Now(),
	}
}

// Console 繪製控制台
func (e *Engine) Console() *gfx.Console { return e.con }

// Buttons 按鍵等待器
func (e *Engine) Buttons() *input.Buttons { return e.btn }

// Clock 引擎時鐘
func (e *Engine) Clock() clock.Clock { return e.clk }

// Logger 引擎日誌
func (e *Engine) Logger() *zap.Logger { return e.logger }

// Depth 當前嵌套深度
func (e *Engine) Depth() int { return e.depth }

// Run 運行菜單直到返回、超時或輸入關閉
func (e *Engine) Run(m *Menu) Status {
	// 1. 確定初始焦點
	m.Selected = m.FirstSelectable()
	if m.Selected == nil {
		e.logger.Warn("菜單沒有可選條目", zap.String("title", m.Title))
		return StatusNoSelectableEntry
	}
	if e.depth >= MaxDepth {
		e.logger.Error("菜單嵌套過深", zap.String("title", m.Title), zap.Int("depth", e.depth))
		return StatusTooDeep
	}

	e.depth++
	defer func() { e.depth-- }()
	e.logger.Debug("進入菜單", zap.String("title", m.Title), zap.Int("depth", e.depth))

	// 2. 保存調用方原點並清空菜單區域
	ox, oy := e.con.Origin()
	e.con.SetOrigin(m.X, m.Y)
	e.PrintBattery(true)
	e.ClearMenu(m)

	leave := func(s Status) Status {
		e.ClearMenu(m)
		e.con.SetOrigin(ox, oy)
		e.con.Flush()
		return s
	}

	last := e.clk.Now()
	for {
		if e.btn.Done() {
			return leave(StatusAborted)
		}

		e.Print(m)
		e.con.Flush()

		btn := e.btn.WaitSingleTimeout(inputTimeout)
		if btn == 0 {
			if e.btn.Done() {
				return leave(StatusAborted)
			}
			if m.Timeout > 0 && clock.Since(e.clk, last) > m.Timeout {
				e.logger.Debug("菜單超時", zap.String("title", m.Title))
				return leave(StatusTimeout)
			}
			e.DimOnTimeout()
		} else if e.Wake() {
			// 喚醒屏幕的按鍵不執行動作
			last = e.clk.Now()
			continue
		}
		e.PrintBattery(false)

		switch {
		case btn&input.VolUp != 0:
			m.prev()
		case btn&input.VolDown != 0:
			m.next()
		case btn&input.Power != 0:
			if e.activate(m) {
				return leave(StatusSuccess)
			}
		}

		if btn != 0 {
			last = e.clk.Now()
		}
	}
}

// activate 執行焦點條目，返回 true 表示退出當前菜單
func (e *Engine) activate(m *Menu) bool {
	entry := m.Selected
	if entry == nil || entry.Disabled {
		return false
	}

	switch entry.Kind {
	case KindMenu:
		if entry.Sub != nil {
			if s := e.Run(entry.Sub); s != StatusSuccess && s != StatusAborted {
				e.logger.Debug("子菜單退出", zap.String("title", entry.Sub.Title), zap.Stringer("status", s))
			}
		}
	case KindAction:
		if entry.action != nil {
			entry.action()
		}
		e.afterAction(entry)
	case KindActionModifying:
		if entry.modify != nil {
			entry.modify(entry, m)
		}
		e.afterAction(entry)
	case KindBack:
		return true
	}
	return false
}

func (e *Engine) afterAction(entry *Entry) {
	if entry.NoBlank {
		return
	}
	e.ClearScreen()
	e.PrintBattery(true)
}

// Print 渲染菜單
func (e *Engine) Print(m *Menu) {
	ox, oy := e.con.Origin()
	defer e.con.SetOrigin(ox, oy)

	colors := m.Colors
	if colors == nil {
		colors = SchemeDefault
	}

	e.con.SetOrigin(m.X, m.Y)
	e.con.SetPos(m.X, m.Y)

	if m.ShowTitle {
		e.con.SetColor(colors.FGTitle, colors.BG)
		e.con.Print(m.Title)
		e.con.Putc('\n')
	}

	for _, entry := range m.Entries {
		if entry.isAction() {
			_, y := e.con.Pos()
			entry.X, entry.Y = m.X, y
		}
		fg, bg := colors.pair(entry == m.Selected, entry.Disabled)
		e.con.SetColor(fg, bg)
		e.con.PrintPadded(entry.Label(), m.Pad)
		e.con.Putc('\n')
	}
}

// ClearMenu 以菜單背景色清空菜單區域
func (e *Engine) ClearMenu(m *Menu) {
	bg := SchemeDefault.BG
	if m.Colors != nil {
		bg = m.Colors.BG
	}
	e.con.ClearRect(bg, m.X, m.Y, m.Width*gfx.CellSize, m.Height*gfx.CellSize)
}

// ClearScreen 以默認背景清屏
func (e *Engine) ClearScreen() {
	e.con.Clear(SchemeDefault.BG)
}

// HoldSince 保證從 start 起至少經過 d，用於讓狀態消息可見
func (e *Engine) HoldSince(start time.Time, d time.Duration) {
	if left := d - clock.Since(e.clk, start); left > 0 {
		e.clk.Sleep(left)
	}
}
