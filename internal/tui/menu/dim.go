package menu

import (
	"time"

	"go.uber.org/zap"

	"github.com/Yat-Muk/sdloader/internal/pkg/clock"
)

// DimTimeout 無按鍵多久後屏幕變暗
const DimTimeout = 20 * time.Second

// DimOnTimeout 週期性調用：有鍵按下時喚醒，空閒超過 DimTimeout 時變暗
func (e *Engine) DimOnTimeout() {
	if e.btn.Read() != 0 {
		e.Wake()
		return
	}
	if e.dimmed || clock.Since(e.clk, e.lastActivity) < DimTimeout {
		return
	}
	if !e.con.SetDim(true) {
		return
	}
	e.dimmed = true
	e.logger.Debug("空閒超時，屏幕變暗")
	e.con.Flush()
}

// Wake 記錄一次按鍵活動；屏幕原本變暗時恢復並返回 true
func (e *Engine) Wake() bool {
	e.lastActivity = e.clk.Now()
	if !e.dimmed {
		return false
	}
	e.dimmed = false
	e.con.SetDim(false)
	e.logger.Debug("屏幕已喚醒", zap.Time("at", e.lastActivity))
	e.con.Flush()
	return true
}

// Dimmed 屏幕是否處於變暗狀態
func (e *Engine) Dimmed() bool { return e.dimmed }
