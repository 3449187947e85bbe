package errors

import (
	"errors"
	"fmt"
)

// 預定義錯誤類型
var (
	// 介質相關
	ErrMediaUnavailable = errors.New("storage medium unavailable")
	ErrInvalidDrive     = errors.New("invalid drive")
	ErrWriteProtected   = errors.New("device is write protected")

	// 文件相關
	ErrFileNotFound = errors.New("file not found")
	ErrFileRead     = errors.New("file read error")
	ErrFileTooLarge = errors.New("file too large")

	// 存儲相關
	ErrStorageReadFailed  = errors.New("storage read failed")
	ErrStorageWriteFailed = errors.New("storage write failed")
	ErrOutOfRange         = errors.New("sector range out of bounds")

	// 菜單相關
	ErrNoSelectableEntry = errors.New("menu has no selectable entry")

	// 配置相關
	ErrConfigInvalid     = errors.New("configuration is invalid")
	ErrConfigParseFailed = errors.New("failed to parse configuration")
)

// 錯誤代碼
const (
	CodeStorage   = "Storage"
	CodeFile      = "File"
	CodeModchip   = "Modchip"
	CodeUMS       = "UMS"
	CodeConfig    = "Config"
	CodeChainload = "Chainload"
)

// Error 自定義錯誤類型
type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New 創建新錯誤
func New(code, message string) error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Wrap 包裝錯誤
func Wrap(err error, code, message string) error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// ShortReadError 文件讀取字節數不足
type ShortReadError struct {
	Expected int
	Actual   int
}

func (e *ShortReadError) Error() string {
	return fmt.Sprintf("short read: expected %d bytes, got %d", e.Expected, e.Actual)
}

// Is 讓 ShortReadError 同時匹配 ErrFileRead
func (e *ShortReadError) Is(target error) bool {
	return target == ErrFileRead
}
