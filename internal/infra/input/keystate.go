package input

import (
	"sync"
	"time"

	"github.com/Yat-Muk/sdloader/internal/pkg/clock"
)

// KeyState 終端按鍵狀態
//
// 終端只上報按下（和自動重複），沒有釋放事件；每次按下讓對應的鍵保持 hold 時長，
// 自動重複不斷延長，從而模擬出持續按住。事件循環協程寫入，菜單線程讀取。
type KeyState struct {
	mu    sync.Mutex
	clk   clock.Clock
	hold  time.Duration
	until [3]time.Time
}

// NewKeyState 創建按鍵狀態
func NewKeyState(clk clock.Clock, hold time.Duration) *KeyState {
	return &KeyState{clk: clk, hold: hold}
}

// Press 按下 b 中的所有鍵
func (k *KeyState) Press(b Button) {
	deadline := k.clk.Now().Add(k.hold)
	k.mu.Lock()
	defer k.mu.Unlock()
	for i := range k.until {
		if b&(1<<i) != 0 {
			k.until[i] = deadline
		}
	}
}

// Release 立即鬆開所有鍵
func (k *KeyState) Release() {
	k.mu.Lock()
	k.until = [3]time.Time{}
	k.mu.Unlock()
}

func (k *KeyState) Read() Button {
	now := k.clk.Now()
	k.mu.Lock()
	defer k.mu.Unlock()
	var b Button
	for i, t := range k.until {
		if now.Before(t) {
			b |= 1 << i
		}
	}
	return b
}
