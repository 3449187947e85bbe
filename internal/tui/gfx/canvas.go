// Package gfx 是菜單的繪製表面：8×8 像素字符格、調色板和帶原點/光標的控制台。
package gfx

import (
	"strings"
	"sync"
)

// CellSize 每個字符格的像素邊長
const CellSize = 8

// Canvas 字符格繪製表面
type Canvas interface {
	// Size 字符格列數和行數
	Size() (cols, rows int)
	// SetCell 設置一個字符格，越界時忽略
	SetCell(col, row int, ch rune, fg, bg Color)
	// Flush 提交到顯示設備
	Flush()
}

// Dimmer 支持整屏變暗的畫布
type Dimmer interface {
	SetDim(on bool)
}

// Cell 一個字符格
type Cell struct {
	Ch rune
	FG Color
	BG Color
}

// Grid 受互斥鎖保護的字符格緩衝，供各後端共用
type Grid struct {
	mu    sync.Mutex
	cols  int
	rows  int
	cells []Cell
	dim   bool
}

// NewGrid 創建 cols×rows 的緩衝，初始為黑底空格
func NewGrid(cols, rows int) *Grid {
	g := &Grid{cols: cols, rows: rows, cells: make([]Cell, cols*rows)}
	for i := range g.cells {
		g.cells[i] = Cell{Ch: ' ', FG: White, BG: Black}
	}
	return g
}

func (g *Grid) Size() (int, int) { return g.cols, g.rows }

func (g *Grid) SetCell(col, row int, ch rune, fg, bg Color) {
	if col < 0 || row < 0 || col >= g.cols || row >= g.rows {
		return
	}
	g.mu.Lock()
	g.cells[row*g.cols+col] = Cell{Ch: ch, FG: fg, BG: bg}
	g.mu.Unlock()
}

// Cell 讀取一個字符格
func (g *Grid) Cell(col, row int) Cell {
	if col < 0 || row < 0 || col >= g.cols || row >= g.rows {
		return Cell{}
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.cells[row*g.cols+col]
}

// SetDim 切換變暗；只影響 Snapshot，不改寫字符格
func (g *Grid) SetDim(on bool) {
	g.mu.Lock()
	g.dim = on
	g.mu.Unlock()
}

// Dimmed 是否處於變暗狀態
func (g *Grid) Dimmed() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.dim
}

// Snapshot 返回所有字符格的副本，變暗時顏色已轉換
func (g *Grid) Snapshot() []Cell {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]Cell, len(g.cells))
	copy(out, g.cells)
	if g.dim {
		for i := range out {
			out[i].FG = out[i].FG.Dim()
			out[i].BG = out[i].BG.Dim()
		}
	}
	return out
}

// MemCanvas 內存畫布，用於測試和無終端運行
type MemCanvas struct {
	*Grid
	flushes int

	// OnFlush 每次 Flush 後調用，測試用它記錄中間畫面
	OnFlush func(m *MemCanvas)
}

// NewMemCanvas 創建內存畫布
func NewMemCanvas(cols, rows int) *MemCanvas {
	return &MemCanvas{Grid: NewGrid(cols, rows)}
}

func (m *MemCanvas) Flush() {
	m.mu.Lock()
	m.flushes++
	m.mu.Unlock()
	if m.OnFlush != nil {
		m.OnFlush(m)
	}
}

// Flushes Flush 被調用的次數
func (m *MemCanvas) Flushes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.flushes
}

// Row 返回一行文本（保留尾部空格）
func (m *MemCanvas) Row(row int) string {
	var sb strings.Builder
	for col := 0; col < m.cols; col++ {
		sb.WriteRune(m.Cell(col, row).Ch)
	}
	return sb.String()
}

// Screen 返回整屏文本，行之間以換行分隔
func (m *MemCanvas) Screen() string {
	rows := make([]string, m.rows)
	for row := range rows {
		rows[row] = m.Row(row)
	}
	return strings.Join(rows, "\n")
}

// Text 返回從 (col,row) 開始長度為 n 的文本
func (m *MemCanvas) Text(col, row, n int) string {
	var sb strings.Builder
	for i := 0; i < n; i++ {
		sb.WriteRune(m.Cell(col+i, row).Ch)
	}
	return sb.String()
}

// Contains 屏幕上是否有某行包含 s
func (m *MemCanvas) Contains(s string) bool {
	for row := 0; row < m.rows; row++ {
		if strings.Contains(m.Row(row), s) {
			return true
		}
	}
	return false
}

// FindText 返回 s 首次出現的位置
func (m *MemCanvas) FindText(s string) (col, row int, ok bool) {
	for row = 0; row < m.rows; row++ {
		if i := strings.Index(m.Row(row), s); i >= 0 {
			return i, row, true
		}
	}
	return 0, 0, false
}
