package appctx

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnvHome 覆蓋默認工作目錄的環境變量
const EnvHome = "SDLOADER_HOME"

// Paths 定義應用程序所有的關鍵路徑
type Paths struct {
	BaseDir   string
	LogDir    string
	DrivesDir string

	ConfigFile string
	LogFile    string
}

// NewPaths 解析工作目錄並創建所需子目錄
//
// baseDir 為空時依次使用 $SDLOADER_HOME 和 ~/.sdloader。
func NewPaths(baseDir string) (*Paths, error) {
	if baseDir == "" {
		baseDir = os.Getenv(EnvHome)
	}
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("無法獲取用戶主目錄: %w", err)
		}
		baseDir = filepath.Join(home, ".sdloader")
	}

	absPath, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("無法解析絕對路徑: %w", err)
	}

	logDir := filepath.Join(absPath, "logs")
	paths := &Paths{
		BaseDir:    absPath,
		LogDir:     logDir,
		DrivesDir:  filepath.Join(absPath, "drives"),
		ConfigFile: filepath.Join(absPath, "config.yaml"),
		LogFile:    filepath.Join(logDir, "sdloader.log"),
	}

	// 確保目錄存在
	for _, dir := range []string{paths.BaseDir, paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("無法創建目錄 %s: %w", dir, err)
		}
	}

	return paths, nil
}

// Resolve 相對路徑按工作目錄解析
func (p *Paths) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(p.BaseDir, path)
}
