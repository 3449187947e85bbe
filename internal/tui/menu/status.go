package menu

import (
	"time"

	"go.uber.org/zap"

	"github.com/Yat-Muk/sdloader/internal/pkg/clock"
	"github.com/Yat-Muk/sdloader/internal/tui/gfx"
)

const (
	// StatusY 狀態行的像素 y 坐標
	StatusY = 9 * gfx.CellSize

	batteryLevels   = 10
	batteryInterval = time.Second
)

// PrintStatus 在狀態行居中顯示一條消息
func (e *Engine) PrintStatus(color gfx.Color, msg string) {
	e.ClearStatus()
	e.con.SetPos(0, StatusY)
	e.con.SetColor(color, SchemeDefault.BG)
	e.con.PrintCentered(msg)
	e.con.Flush()
}

// ClearStatus 清空狀態行
func (e *Engine) ClearStatus() {
	e.con.ClearRect(SchemeDefault.BG, 0, StatusY, e.con.Width(), gfx.CellSize)
}

// batteryLevel 百分比換算為 0..10 格
func batteryLevel(percent int) int {
	level := (percent + 10) / 10
	return min(max(level, 0), batteryLevels)
}

// batteryColor 按格數選擇顏色
func batteryColor(level int) gfx.Color {
	switch {
	case level < 3:
		return gfx.DarkRed
	case level < 7:
		return gfx.Orange
	default:
		return gfx.DarkGreen
	}
}

// PrintBattery 在左上角繪製電量條；非強制時每秒最多刷新一次
func (e *Engine) PrintBattery(force bool) {
	if e.battery == nil {
		return
	}
	if !force && !e.lastBattery.IsZero() && clock.Since(e.clk, e.lastBattery) < batteryInterval {
		return
	}
	e.lastBattery = e.clk.Now()

	percent, charging, err := e.battery.Read()
	if err != nil {
		e.logger.Debug("讀取電量失敗", zap.Error(err))
		percent, charging = 0, false
	}

	level := batteryLevel(percent)
	fill := level
	if charging {
		// 充電時填充長度循環增長
		e.chargeTick = (e.chargeTick + 1) % (level + 1)
		fill = e.chargeTick
	}
	color := batteryColor(level)

	ox, oy := e.con.Origin()
	x, y := e.con.Pos()
	fg, bg := e.con.Colors()
	defer func() {
		e.con.SetOrigin(ox, oy)
		e.con.SetPos(x, y)
		e.con.SetColor(fg, bg)
	}()

	e.con.SetOrigin(0, 0)
	e.con.SetPos(0, 0)
	e.con.SetColor(gfx.Grey, SchemeDefault.BG)
	e.con.Putc('[')
	for i := 0; i < batteryLevels; i++ {
		if i < fill {
			e.con.SetColor(color, color)
			e.con.Putc('#')
		} else {
			e.con.SetColor(gfx.DarkGrey, SchemeDefault.BG)
			e.con.Putc(' ')
		}
	}
	e.con.SetColor(gfx.Grey, SchemeDefault.BG)
	e.con.Putc(']')
}
