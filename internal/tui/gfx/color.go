package gfx

import "fmt"

// Color 調色板索引
type Color uint8

// 調色板
const (
	Black Color = iota
	White
	Grey
	Red
	Green
	Blue
	Teal
	DarkGrey
	LightGrey
	Orange
	DarkGreen
	DarkRed
	DarkDarkGrey

	paletteSize
)

// RGB 調色板顏色值
type RGB struct {
	R, G, B uint8
}

// Hex 返回 #rrggbb 形式
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

var palette = [paletteSize]RGB{
	Black:        {0x00, 0x00, 0x00},
	White:        {0xFF, 0xFF, 0xFF},
	Grey:         {0x80, 0x80, 0x80},
	Red:          {0xE0, 0x20, 0x20},
	Green:        {0x20, 0xC0, 0x20},
	Blue:         {0x20, 0x40, 0xE0},
	Teal:         {0x00, 0xA8, 0xA8},
	DarkGrey:     {0x40, 0x40, 0x40},
	LightGrey:    {0xC0, 0xC0, 0xC0},
	Orange:       {0xFF, 0x8C, 0x00},
	DarkGreen:    {0x00, 0x80, 0x00},
	DarkRed:      {0x8B, 0x00, 0x00},
	DarkDarkGrey: {0x20, 0x20, 0x20},
}

// RGB 返回顏色值，越界索引按黑色處理
func (c Color) RGB() RGB {
	if c < paletteSize {
		return palette[c]
	}
	return palette[Black]
}

// dimmed 變暗後的對應顏色
var dimmed = [paletteSize]Color{
	Black:        Black,
	White:        Grey,
	Grey:         DarkGrey,
	Red:          DarkRed,
	Green:        DarkGreen,
	Blue:         DarkGrey,
	Teal:         DarkGrey,
	DarkGrey:     DarkDarkGrey,
	LightGrey:    Grey,
	Orange:       DarkRed,
	DarkGreen:    DarkDarkGrey,
	DarkRed:      DarkDarkGrey,
	DarkDarkGrey: Black,
}

// Dim 返回屏幕變暗時使用的顏色
func (c Color) Dim() Color {
	if c < paletteSize {
		return dimmed[c]
	}
	return Black
}

var colorNames = [paletteSize]string{
	"black", "white", "grey", "red", "green", "blue", "teal",
	"dark-grey", "light-grey", "orange", "dark-green", "dark-red", "dark-dark-grey",
}

func (c Color) String() string {
	if c < paletteSize {
		return colorNames[c]
	}
	return fmt.Sprintf("color(%d)", uint8(c))
}
