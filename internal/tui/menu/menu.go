// Package menu 實現阻塞式遞歸菜單引擎：焦點導航、動作分發、模態子菜單和超時退出。
package menu

import (
	"time"

	"github.com/Yat-Muk/sdloader/internal/tui/gfx"
)

// ColorScheme 菜單配色
type ColorScheme struct {
	BG               gfx.Color
	FG               gfx.Color
	BGActive         gfx.Color
	FGActive         gfx.Color
	BGActiveDisabled gfx.Color
	FGActiveDisabled gfx.Color
	BGDisabled       gfx.Color
	FGDisabled       gfx.Color
	FGTitle          gfx.Color
}

// 共享配色，不要修改
var (
	SchemeDefault = &ColorScheme{
		BG:               gfx.Black,
		FG:               gfx.White,
		BGActive:         gfx.Grey,
		FGActive:         gfx.White,
		BGDisabled:       gfx.Black,
		FGDisabled:       gfx.Grey,
		BGActiveDisabled: gfx.DarkGrey,
		FGActiveDisabled: gfx.Grey,
		FGTitle:          gfx.White,
	}

	// SchemeShadow 模態子菜單打開時父菜單使用的暗色方案
	SchemeShadow = &ColorScheme{
		BG:               gfx.Black,
		FG:               gfx.Grey,
		BGActive:         gfx.DarkGrey,
		FGActive:         gfx.Grey,
		BGDisabled:       gfx.Black,
		FGDisabled:       gfx.DarkGrey,
		BGActiveDisabled: gfx.DarkDarkGrey,
		FGActiveDisabled: gfx.DarkGrey,
		FGTitle:          gfx.LightGrey,
	}
)

// pair 按 {焦點, 禁用} 選擇前景/背景
func (c *ColorScheme) pair(focused, disabled bool) (fg, bg gfx.Color) {
	switch {
	case focused && disabled:
		return c.FGActiveDisabled, c.BGActiveDisabled
	case focused:
		return c.FGActive, c.BGActive
	case disabled:
		return c.FGDisabled, c.BGDisabled
	default:
		return c.FG, c.BG
	}
}

// Menu 菜單描述
//
// X、Y 為像素坐標；Width、Height、Pad 以字符格計。
type Menu struct {
	Title     string
	Entries   []*Entry
	Selected  *Entry
	Colors    *ColorScheme
	X, Y      int
	Width     int
	Height    int
	Pad       int
	Timeout   time.Duration
	ShowTitle bool
}

// Beside 右側子面板的 X 坐標
func (m *Menu) Beside() int {
	return m.X + m.Width*gfx.CellSize + gfx.CellSize
}

// Entry 第 i 個條目
func (m *Menu) Entry(i int) *Entry {
	return m.Entries[i]
}

// FirstSelectable 第一個可選條目
func (m *Menu) FirstSelectable() *Entry {
	for _, e := range m.Entries {
		if e.Selectable() {
			return e
		}
	}
	return nil
}

// Shadow 切換到暗色方案，返回恢復函數
func (m *Menu) Shadow() (restore func()) {
	prev := m.Colors
	m.Colors = SchemeShadow
	return func() { m.Colors = prev }
}

// prev 從頭掃描到焦點為止，保留最後一個可選條目；焦點已是第一個時不變
func (m *Menu) prev() {
	next := m.Selected
	for _, e := range m.Entries {
		if e == m.Selected {
			break
		}
		if e.Selectable() {
			next = e
		}
	}
	m.Selected = next
}

// next 焦點之後的第一個可選條目；沒有時不變
func (m *Menu) next() {
	found := false
	for _, e := range m.Entries {
		if found && e.Selectable() {
			m.Selected = e
			return
		}
		if e == m.Selected {
			found = true
		}
	}
}
