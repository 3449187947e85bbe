package clock

import (
	"sync"
	"time"
)

// Clock 時間源接口
// 所有阻塞等待（按鍵輪詢、狀態欄停留、UMS 循環）都經由 Clock，便於測試中以虛擬時間驅動
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

// System 使用真實時間的 Clock
type System struct{}

// NewSystem 創建系統時鐘
func NewSystem() System {
	return System{}
}

func (System) Now() time.Time { return time.Now() }

func (System) Sleep(d time.Duration) { time.Sleep(d) }

// Fake 虛擬時鐘，只在 Sleep/Advance 時前進
type Fake struct {
	mu  sync.Mutex
	now time.Time
}

// NewFake 創建虛擬時鐘，起點固定以保證測試可重現
func NewFake() *Fake {
	return &Fake{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// Sleep 立即返回並推進虛擬時間
func (f *Fake) Sleep(d time.Duration) {
	f.Advance(d)
}

// Advance 推進虛擬時間
func (f *Fake) Advance(d time.Duration) {
	if d <= 0 {
		return
	}
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

// Since 返回自 t 起經過的時間
func Since(c Clock, t time.Time) time.Duration {
	return c.Now().Sub(t)
}
