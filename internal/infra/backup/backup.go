// Package backup 保存 BOOT0 快照，帶 SHA-256 校驗文件和保留策略。
package backup

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Yat-Muk/sdloader/internal/pkg/clock"
	apperrors "github.com/Yat-Muk/sdloader/internal/pkg/errors"
)

const (
	FileMode       os.FileMode = 0o600
	DirMode        os.FileMode = 0o700
	Suffix                     = ".bin"
	ChecksumSuffix             = ".sha256"

	lastHashFile    = ".last-hash"
	timestampLayout = "20060102-150405.000"
)

// ErrChecksumMismatch 快照內容與校驗文件不符
var ErrChecksumMismatch = errors.New("backup checksum mismatch")

// RetentionPolicy 保留策略；零值表示不限制
type RetentionPolicy struct {
	MaxFiles int
	MaxAge   time.Duration
}

// File 一個快照
type File struct {
	Name     string
	Path     string
	Time     time.Time
	Size     int64
	Verified bool
}

// Manager 快照目錄
type Manager struct {
	dir       string
	retention RetentionPolicy
	clk       clock.Clock
	log       *zap.Logger
}

func NewManager(dir string, retention RetentionPolicy, clk clock.Clock, log *zap.Logger) (*Manager, error) {
	if err := os.MkdirAll(dir, DirMode); err != nil {
		return nil, fmt.Errorf("創建備份目錄失敗: %w", err)
	}
	return &Manager{dir: dir, retention: retention, clk: clk, log: log}, nil
}

// Save 保存快照並返回文件名；內容與上次相同時不保存，返回空名稱
func (m *Manager) Save(tag string, data []byte) (string, error) {
	hash := checksum(data)
	if m.lastHash() == hash {
		m.log.Debug("快照內容未變化，跳過", zap.String("tag", tag))
		return "", nil
	}

	ts := m.clk.Now().UTC().Format(timestampLayout)
	name := fmt.Sprintf("%s-%s%s", tag, ts, Suffix)
	path := filepath.Join(m.dir, name)

	if err := writeAtomic(path, data); err != nil {
		return "", fmt.Errorf("寫入備份失敗: %w", err)
	}
	if err := writeAtomic(path+ChecksumSuffix, []byte(hash)); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("生成校驗文件失敗: %w", err)
	}

	_ = writeAtomic(filepath.Join(m.dir, lastHashFile), []byte(hash))
	m.log.Info("已保存快照", zap.String("name", name), zap.Int("size", len(data)))
	m.enforcePolicy()
	return name, nil
}

// Load 讀取快照並校驗
func (m *Manager) Load(name string) ([]byte, error) {
	if name != filepath.Base(name) || !strings.HasSuffix(name, Suffix) {
		return nil, fmt.Errorf("%w: invalid backup name %q", apperrors.ErrFileNotFound, name)
	}
	path := filepath.Join(m.dir, name)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrFileNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrFileRead, err)
	}
	if !verify(path, data) {
		return nil, fmt.Errorf("%w: %s", ErrChecksumMismatch, name)
	}
	return data, nil
}

// List 按時間從新到舊列出快照
func (m *Manager) List() ([]File, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []File{}, nil
		}
		return nil, fmt.Errorf("讀取備份目錄失敗: %w", err)
	}

	files := []File{}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), Suffix) {
			continue
		}
		ts, ok := parseTime(entry.Name())
		if !ok {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}

		path := filepath.Join(m.dir, entry.Name())
		var verified bool
		if data, err := os.ReadFile(path); err == nil {
			verified = verify(path, data)
		}
		files = append(files, File{
			Name:     entry.Name(),
			Path:     path,
			Time:     ts,
			Size:     info.Size(),
			Verified: verified,
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Time.After(files[j].Time)
	})
	return files, nil
}

func (m *Manager) enforcePolicy() {
	files, err := m.List()
	if err != nil {
		return
	}

	now := m.clk.Now()
	for i, f := range files {
		expired := m.retention.MaxAge > 0 && now.Sub(f.Time) > m.retention.MaxAge
		if (m.retention.MaxFiles > 0 && i >= m.retention.MaxFiles) || expired {
			os.Remove(f.Path)
			os.Remove(f.Path + ChecksumSuffix)
			m.log.Debug("已刪除過期快照", zap.String("name", f.Name))
		}
	}
}

func (m *Manager) lastHash() string {
	b, err := os.ReadFile(filepath.Join(m.dir, lastHashFile))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}

// parseTime 從 <tag>-<timestamp>.bin 中取出時間
func parseTime(name string) (time.Time, bool) {
	base := strings.TrimSuffix(name, Suffix)
	if len(base) <= len(timestampLayout) {
		return time.Time{}, false
	}
	ts, err := time.ParseInLocation(timestampLayout, base[len(base)-len(timestampLayout):], time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

func checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func verify(path string, data []byte) bool {
	expected, err := os.ReadFile(path + ChecksumSuffix)
	if err != nil {
		return false
	}
	return strings.TrimSpace(string(expected)) == checksum(data)
}

func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, FileMode); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
