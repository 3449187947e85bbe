package input

import (
	"fmt"
	"time"

	"github.com/Yat-Muk/sdloader/internal/pkg/clock"
)

// Step 腳本中的一段按鍵狀態
type Step struct {
	Mask Button
	For  time.Duration
}

// Press 按下並保持 50ms
func Press(b Button) Step { return Step{Mask: b, For: 50 * time.Millisecond} }

// Hold 按住 b 持續 d
func Hold(b Button, d time.Duration) Step { return Step{Mask: b, For: d} }

// Release 鬆開所有鍵持續 d
func Release(d time.Duration) Step { return Step{For: d} }

// Tap 按下後鬆開 50ms
func Tap(b Button) []Step {
	return []Step{Press(b), Release(50 * time.Millisecond)}
}

// Taps 依次輕按多個鍵
func Taps(bs ...Button) []Step {
	var out []Step
	for _, b := range bs {
		out = append(out, Tap(b)...)
	}
	return out
}

// ScriptGrace 腳本結束後允許繼續讀取的時間，超過即視為被測代碼卡住
const ScriptGrace = 30 * time.Second

// Script 按虛擬時鐘回放的按鍵腳本，用於測試
type Script struct {
	clk   clock.Clock
	start time.Time
	steps []Step
	end   time.Duration
}

// NewScript 以當前時刻為起點創建腳本
func NewScript(clk clock.Clock, steps ...Step) *Script {
	var end time.Duration
	for _, s := range steps {
		end += s.For
	}
	return &Script{clk: clk, start: clk.Now(), steps: steps, end: end}
}

// Read 返回當前時刻的按鍵狀態；腳本結束後為 0
func (s *Script) Read() Button {
	elapsed := s.clk.Now().Sub(s.start)
	if elapsed > s.end+ScriptGrace {
		panic(fmt.Sprintf("input script exhausted at %v (script length %v)", elapsed, s.end))
	}
	var t time.Duration
	for _, st := range s.steps {
		t += st.For
		if elapsed < t {
			return st.Mask
		}
	}
	return 0
}

// Finished 腳本是否已播放完
func (s *Script) Finished() bool {
	return s.clk.Now().Sub(s.start) >= s.end
}
