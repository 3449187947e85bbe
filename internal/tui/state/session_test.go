package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/Yat-Muk/sdloader/internal/domain/ums"
)

func TestSession_CommandPending(t *testing.T) {
	s := NewSession(zap.NewNop(), nil)
	assert.False(t, s.CommandPending())

	s.MarkCommandPending("reset")
	assert.True(t, s.CommandPending())
	assert.Equal(t, "reset", s.PendingCommand())

	// 鎖存只記錄第一條命令
	s.MarkCommandPending("rollback")
	assert.Equal(t, "reset", s.PendingCommand())
}

func TestSession_UMS(t *testing.T) {
	s := NewSession(nil, nil)
	assert.Nil(t, s.UMS())

	cfg := ums.NewLoaderConfig(true, false)
	s.SetUMS(cfg)
	assert.Same(t, cfg, s.UMS())

	s.ClearUMS()
	assert.Nil(t, s.UMS())
}

func TestSession_Quit(t *testing.T) {
	var calls int
	s := NewSession(zap.NewNop(), func() { calls++ })

	s.Quit()
	s.Quit()
	assert.Equal(t, 1, calls)

	// 沒有退出函數時不會 panic
	NewSession(nil, nil).Quit()
}
