// Package chainload 把控制權交給負載鏡像或原廠固件。
package chainload

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// Chainloader 跳轉能力；在設備上成功時不返回
type Chainloader interface {
	// Launch 以 payload 作為新的執行鏡像
	Launch(payload []byte) error
	// BootOFW 啟動原廠固件
	BootOFW() error
}

// FileSink 主機端實現：把負載寫入輸出文件
type FileSink struct {
	output string
	log    *zap.Logger
}

// NewFileSink 創建文件輸出
func NewFileSink(output string, log *zap.Logger) *FileSink {
	if log == nil {
		log = zap.NewNop()
	}
	return &FileSink{output: output, log: log}
}

// Output 輸出文件路徑
func (s *FileSink) Output() string {
	return s.output
}

func (s *FileSink) Launch(payload []byte) error {
	if len(payload) == 0 {
		return fmt.Errorf("負載為空")
	}
	if err := os.MkdirAll(filepath.Dir(s.output), 0o755); err != nil {
		return fmt.Errorf("創建輸出目錄失敗: %w", err)
	}

	// 先寫臨時文件再重命名，避免留下半個鏡像
	tmp := s.output + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return fmt.Errorf("寫入負載失敗: %w", err)
	}
	if err := os.Rename(tmp, s.output); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("寫入負載失敗: %w", err)
	}

	s.log.Info("負載已交付", zap.String("output", s.output), zap.Int("size", len(payload)))
	return nil
}

func (s *FileSink) BootOFW() error {
	s.log.Info("啟動原廠固件")
	return nil
}
