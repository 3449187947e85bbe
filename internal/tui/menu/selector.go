package menu

import (
	"time"

	"github.com/Yat-Muk/sdloader/internal/infra/input"
	"github.com/Yat-Muk/sdloader/internal/pkg/clock"
)

// maxStepBacks 遞減時回退到 max 以下的最大次數
const maxStepBacks = 256

// repeatInterval 按住時的自動重複間隔，按住越久越快，最低 10ms
func repeatInterval(held time.Duration) time.Duration {
	ms := held.Milliseconds()
	return time.Duration(max(10, 200/(ms/250+1))) * time.Millisecond
}

// EditU32 逐字節編輯一個 32 位值，從最高字節開始
//
// VOL+/VOL- 調整當前字節，POWER 進入下一字節；超過 max 時向上回繞到 0，
// 向下則回退到不超過 max。
func (e *Engine) EditU32(x, y int, label string, initial, maxVal uint32, colors *ColorScheme) uint32 {
	if colors == nil {
		colors = SchemeDefault
	}
	val := initial

	for i := 3; i >= 0; i-- {
		step := uint32(1) << (8 * i)
		mask := uint32(0xff) << (8 * i)
		e.printSelector(x, y, label, val, i, colors)

		for {
			btn := e.btn.WaitSingle()
			if btn == input.Power || btn == 0 {
				break
			}

			start := e.clk.Now()
			for e.btn.Read() == btn {
				interval := repeatInterval(clock.Since(e.clk, start))

				var temp uint32
				switch btn {
				case input.VolDown:
					temp = (val &^ mask) | ((val - step) & mask)
					for n := 0; temp > maxVal && n < maxStepBacks; n++ {
						temp -= step
					}
				case input.VolUp:
					temp = (val &^ mask) | ((val + step) & mask)
					if temp > maxVal {
						temp = 0
					}
				}
				val = (val &^ mask) | (temp & mask)

				e.printSelector(x, y, label, val, i, colors)
				e.btn.WaitChange(interval, btn)
				if e.btn.Done() {
					return val
				}
			}
		}
		if e.btn.Done() {
			return val
		}
	}
	return val
}

// printSelector 當前字節以反色顯示
func (e *Engine) printSelector(x, y int, label string, val uint32, cur int, colors *ColorScheme) {
	e.con.SetPos(x, y)
	e.con.SetColor(colors.FGActive, colors.BGActive)
	e.con.Printf("%s 0x", label)
	for i := 3; i >= 0; i-- {
		if i == cur {
			e.con.SetColor(colors.BGActive, colors.FGActive)
		} else {
			e.con.SetColor(colors.FGActive, colors.BGActive)
		}
		e.con.Printf("%02x", byte(val>>(8*i)))
	}
	e.con.Flush()
}
