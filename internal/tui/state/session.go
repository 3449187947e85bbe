// Package state 保存一次菜單會話內共享的可變狀態。
package state

import (
	"sync"

	"go.uber.org/zap"

	"github.com/Yat-Muk/sdloader/internal/domain/ums"
)

// Session 會話狀態
//
// 由頂層應用創建並以引用傳入各個視圖；菜單邏輯單線程運行，
// 只有 Quit 可能從終端事件 goroutine 調用。
type Session struct {
	log *zap.Logger

	// commandPending 已發送晶片命令，重啟前禁止再次發送
	commandPending bool
	commandName    string

	// ums UMS 界面打開期間的卷配置
	ums *ums.LoaderConfig

	quitOnce sync.Once
	quit     func()
}

// NewSession 創建會話；quit 用於結束會話，可為 nil
func NewSession(log *zap.Logger, quit func()) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	return &Session{log: log, quit: quit}
}

// CommandPending 是否已有待執行的晶片命令
func (s *Session) CommandPending() bool {
	return s.commandPending
}

// PendingCommand 待執行命令的名稱
func (s *Session) PendingCommand() string {
	return s.commandName
}

// MarkCommandPending 置位命令鎖存；只在第一次調用時生效
func (s *Session) MarkCommandPending(name string) {
	if s.commandPending {
		return
	}
	s.commandPending = true
	s.commandName = name
	s.log.Warn("晶片命令已發送，重啟前禁止其他命令", zap.String("command", name))
}

// UMS 當前 UMS 配置，界面未打開時為 nil
func (s *Session) UMS() *ums.LoaderConfig {
	return s.ums
}

// SetUMS 進入 UMS 界面時綁定配置
func (s *Session) SetUMS(cfg *ums.LoaderConfig) {
	s.ums = cfg
}

// ClearUMS 離開 UMS 界面時丟棄配置
func (s *Session) ClearUMS() {
	s.ums = nil
}

// Quit 結束會話
func (s *Session) Quit() {
	s.quitOnce.Do(func() {
		s.log.Info("會話結束")
		if s.quit != nil {
			s.quit()
		}
	})
}
