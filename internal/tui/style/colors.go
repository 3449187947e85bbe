package style

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Yat-Muk/sdloader/internal/tui/gfx"
)

// 報告配色，與菜單調色板保持一致
var (
	Teal      = Palette(gfx.Teal)
	Orange    = Palette(gfx.Orange)
	DarkGreen = Palette(gfx.DarkGreen)
	DarkRed   = Palette(gfx.DarkRed)

	// 文字顏色
	White    = Palette(gfx.White)
	Gray     = Palette(gfx.LightGrey)
	DarkGray = Palette(gfx.Grey)

	// 背景色
	BgDark   = Palette(gfx.DarkDarkGrey)
	BgMedium = Palette(gfx.DarkGrey)
)

// 功能顏色映射
var (
	Primary = Teal
	Text    = White
	Muted   = DarkGray
	Border  = BgMedium

	Success = DarkGreen
	Warning = Orange
	Error   = DarkRed
	Info    = Teal
)

// Palette 把菜單調色板索引轉為終端顏色
func Palette(c gfx.Color) lipgloss.Color {
	return lipgloss.Color(c.RGB().Hex())
}
