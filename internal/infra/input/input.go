// Package input 讀取按鍵位掩碼，並提供去抖後的單鍵等待。
package input

import (
	"context"
	"strings"
	"time"

	"github.com/Yat-Muk/sdloader/internal/pkg/clock"
)

// Button 按鍵位掩碼
type Button uint8

const (
	Power   Button = 1 << 0
	VolDown Button = 1 << 1
	VolUp   Button = 1 << 2

	// StopChord UMS 導出的停止組合鍵
	StopChord = VolUp | VolDown
)

func (b Button) String() string {
	if b == 0 {
		return "none"
	}
	var parts []string
	if b&VolUp != 0 {
		parts = append(parts, "VOL+")
	}
	if b&VolDown != 0 {
		parts = append(parts, "VOL-")
	}
	if b&Power != 0 {
		parts = append(parts, "POWER")
	}
	return strings.Join(parts, "|")
}

// Single 是否恰好只按下一個鍵
func (b Button) Single() bool {
	return b == Power || b == VolDown || b == VolUp
}

// Reader 按鍵採樣能力
type Reader interface {
	// Read 返回當前按下的鍵
	Read() Button
}

// ReaderFunc 函數適配器
type ReaderFunc func() Button

func (f ReaderFunc) Read() Button { return f() }

// PollInterval 輪詢間隔
const PollInterval = time.Millisecond

// Buttons 阻塞等待輔助
//
// ctx 取消後所有等待立即返回 0，用於主機端退出。
type Buttons struct {
	ctx    context.Context
	reader Reader
	clk    clock.Clock
}

// NewButtons 創建按鍵等待器
func NewButtons(ctx context.Context, reader Reader, clk clock.Clock) *Buttons {
	return &Buttons{ctx: ctx, reader: reader, clk: clk}
}

// Done 輸入源已關閉
func (b *Buttons) Done() bool {
	return b.ctx.Err() != nil
}

// Read 當前按鍵
func (b *Buttons) Read() Button {
	return b.reader.Read()
}

// Clock 等待使用的時鐘
func (b *Buttons) Clock() clock.Clock {
	return b.clk
}

func (b *Buttons) poll() bool {
	if b.Done() {
		return false
	}
	b.clk.Sleep(PollInterval)
	return true
}

// WaitSingle 等待一次乾淨的單鍵按下
//
// 開始時按住的鍵必須先全部鬆開，組合鍵不被接受。
func (b *Buttons) WaitSingle() Button {
	mask := b.reader.Read()
	for {
		btn := b.reader.Read()
		if mask == 0 && btn.Single() {
			return btn
		}
		mask &= btn
		if !b.poll() {
			return 0
		}
	}
}

// WaitChange 等待按鍵狀態偏離 initial，超時返回當前狀態
func (b *Buttons) WaitChange(timeout time.Duration, initial Button) Button {
	start := b.clk.Now()
	for {
		btn := b.reader.Read()
		if btn != initial || clock.Since(b.clk, start) > timeout {
			return btn
		}
		if !b.poll() {
			return 0
		}
	}
}

// WaitSingleTimeout 在超時內等待一個新的單鍵按下，超時返回 0
//
// 與上一次採樣重疊的鍵視為持續按住，不計為新按下。
func (b *Buttons) WaitSingleTimeout(timeout time.Duration) Button {
	prev := b.reader.Read()
	start := b.clk.Now()
	for clock.Since(b.clk, start) < timeout {
		btn := b.reader.Read()
		if btn.Single() && btn&prev == 0 {
			return btn
		}
		prev = btn
		if !b.poll() {
			return 0
		}
	}
	return 0
}

// WaitHeld 在超時內等待 mask 中的鍵全部按下，返回最後一次採樣與 mask 的交集
func (b *Buttons) WaitHeld(timeout time.Duration, mask Button) Button {
	start := b.clk.Now()
	res := b.reader.Read() & mask
	for clock.Since(b.clk, start) < timeout {
		if res == mask {
			break
		}
		if !b.poll() {
			return 0
		}
		res = b.reader.Read() & mask
	}
	return res
}
