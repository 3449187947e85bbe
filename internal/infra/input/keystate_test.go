package input

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Yat-Muk/sdloader/internal/pkg/clock"
)

func TestKeyState(t *testing.T) {
	t.Run("按下後保持一段時間", func(t *testing.T) {
		clk := clock.NewFake()
		k := NewKeyState(clk, 120*time.Millisecond)

		assert.Equal(t, Button(0), k.Read())
		k.Press(VolUp)
		assert.Equal(t, VolUp, k.Read())

		clk.Advance(119 * time.Millisecond)
		assert.Equal(t, VolUp, k.Read())
		clk.Advance(time.Millisecond)
		assert.Equal(t, Button(0), k.Read())
	})

	t.Run("自動重複延長按住", func(t *testing.T) {
		clk := clock.NewFake()
		k := NewKeyState(clk, 100*time.Millisecond)

		k.Press(Power)
		clk.Advance(80 * time.Millisecond)
		k.Press(Power)
		clk.Advance(80 * time.Millisecond)
		assert.Equal(t, Power, k.Read())
	})

	t.Run("組合鍵", func(t *testing.T) {
		clk := clock.NewFake()
		k := NewKeyState(clk, 100*time.Millisecond)

		k.Press(StopChord)
		assert.Equal(t, StopChord, k.Read())
		k.Release()
		assert.Equal(t, Button(0), k.Read())
	})
}

func TestKeyStateDrivesButtons(t *testing.T) {
	clk := clock.NewFake()
	k := NewKeyState(clk, 50*time.Millisecond)
	start := clk.Now()

	// 等待開始 10ms 後才按下
	reader := ReaderFunc(func() Button {
		if clock.Since(clk, start) == 10*time.Millisecond {
			k.Press(VolDown)
		}
		return k.Read()
	})
	b := NewButtons(context.Background(), reader, clk)

	assert.Equal(t, VolDown, b.WaitSingleTimeout(time.Second))
}
