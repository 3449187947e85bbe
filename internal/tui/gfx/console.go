package gfx

import (
	"fmt"

	"github.com/mattn/go-runewidth"
)

// Console 像素坐標的文本控制台
//
// 坐標以像素為單位，字符按 CellSize 對齊；換行時光標回到原點的 x。
type Console struct {
	canvas Canvas
	ox, oy int
	x, y   int
	fg, bg Color
}

// NewConsole 創建控制台
func NewConsole(c Canvas) *Console {
	return &Console{canvas: c, fg: White, bg: Black}
}

// Canvas 底層畫布
func (c *Console) Canvas() Canvas { return c.canvas }

// Width 屏幕寬度（像素）
func (c *Console) Width() int {
	cols, _ := c.canvas.Size()
	return cols * CellSize
}

// Height 屏幕高度（像素）
func (c *Console) Height() int {
	_, rows := c.canvas.Size()
	return rows * CellSize
}

// SetOrigin 設置換行時返回的原點
func (c *Console) SetOrigin(x, y int) {
	c.ox, c.oy = x, y
}

// Origin 當前原點
func (c *Console) Origin() (x, y int) {
	return c.ox, c.oy
}

// SetPos 設置光標
func (c *Console) SetPos(x, y int) {
	c.x, c.y = x, y
}

// Pos 當前光標
func (c *Console) Pos() (x, y int) {
	return c.x, c.y
}

// SetColor 設置前景和背景色
func (c *Console) SetColor(fg, bg Color) {
	c.fg, c.bg = fg, bg
}

// Colors 當前前景和背景色
func (c *Console) Colors() (fg, bg Color) {
	return c.fg, c.bg
}

// Putc 輸出一個字符；非可打印字符顯示為 '.'
func (c *Console) Putc(ch byte) {
	if ch == '\n' {
		c.x = c.ox
		c.y += CellSize
		return
	}
	if ch < 32 || ch > 126 {
		ch = '.'
	}
	c.canvas.SetCell(c.x/CellSize, c.y/CellSize, rune(ch), c.fg, c.bg)
	c.x += CellSize
}

// Print 輸出字符串
func (c *Console) Print(s string) {
	for i := 0; i < len(s); i++ {
		c.Putc(s[i])
	}
}

// Printf 格式化輸出
func (c *Console) Printf(format string, args ...any) {
	c.Print(fmt.Sprintf(format, args...))
}

// PrintPadded 輸出 s 並用空格補足 pad 列
func (c *Console) PrintPadded(s string, pad int) {
	c.Print(s)
	for w := runewidth.StringWidth(s); w < pad; w++ {
		c.Putc(' ')
	}
}

// PrintCentered 在當前行水平居中輸出
func (c *Console) PrintCentered(s string) {
	x := (c.Width() - runewidth.StringWidth(s)*CellSize) / 2
	c.x = max(x, 0)
	c.Print(s)
}

// ClearRect 以 color 填充像素矩形覆蓋的字符格
func (c *Console) ClearRect(color Color, x, y, w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	c0, r0 := x/CellSize, y/CellSize
	c1 := (x + w + CellSize - 1) / CellSize
	r1 := (y + h + CellSize - 1) / CellSize
	for row := r0; row < r1; row++ {
		for col := c0; col < c1; col++ {
			c.canvas.SetCell(col, row, ' ', c.fg, color)
		}
	}
}

// Clear 以 color 清空整個屏幕
func (c *Console) Clear(color Color) {
	c.ClearRect(color, 0, 0, c.Width(), c.Height())
}

// SetDim 畫布支持時切換整屏變暗，返回是否支持
func (c *Console) SetDim(on bool) bool {
	d, ok := c.canvas.(Dimmer)
	if ok {
		d.SetDim(on)
	}
	return ok
}

// Flush 提交畫布
func (c *Console) Flush() {
	c.canvas.Flush()
}
