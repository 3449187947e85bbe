// Package fs 按驅動器打開文件。主機實現把每個驅動器映射到一個目錄。
package fs

import (
	"errors"
	"fmt"
	"io"
	iofs "io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	apperrors "github.com/Yat-Muk/sdloader/internal/pkg/errors"
)

// Drive 驅動器編號
type Drive int

const (
	DriveSD Drive = iota
	DriveBoot1_1MB
	DriveBoot1
	DriveGPP

	DriveCount = 4

	// DriveInvalid OpenOnAny 未找到文件時返回的驅動器
	DriveInvalid Drive = -1
)

var friendlyNames = [DriveCount]string{
	DriveSD:        "SD",
	DriveBoot1_1MB: "BOOT 1",
	DriveBoot1:     "BOOT 1",
	DriveGPP:       "GPP",
}

// FriendlyName 狀態欄中顯示的驅動器名
func (d Drive) FriendlyName() string {
	if d.Valid() {
		return friendlyNames[d]
	}
	return "?"
}

func (d Drive) String() string {
	switch d {
	case DriveSD:
		return "sd"
	case DriveBoot1_1MB:
		return "boot1_1mb"
	case DriveBoot1:
		return "boot1"
	case DriveGPP:
		return "gpp"
	default:
		return fmt.Sprintf("drive(%d)", int(d))
	}
}

// Valid 是否為有效驅動器
func (d Drive) Valid() bool {
	return d >= 0 && d < DriveCount
}

// File 打開的只讀文件
type File interface {
	io.Reader
	io.Closer
	// Size 文件大小（字節）
	Size() int64
}

// Filesystem 文件系統能力
type Filesystem interface {
	// Open 在指定驅動器上打開文件
	//
	// 文件不存在返回 ErrFileNotFound，驅動器無法掛載返回 ErrMediaUnavailable，
	// 編號越界返回 ErrInvalidDrive，其他 I/O 錯誤包裝 ErrFileRead。
	Open(path string, drive Drive) (File, error)
}

// OpenOnAny 按 SD → BOOT1(1MB) → BOOT1 → GPP 的順序查找文件
//
// 無法掛載或沒有該文件的驅動器被跳過；遇到其他錯誤時立即返回該驅動器和錯誤。
func OpenOnAny(fsys Filesystem, path string) (File, Drive, error) {
	for d := DriveSD; d < DriveCount; d++ {
		f, err := fsys.Open(path, d)
		switch {
		case err == nil:
			return f, d, nil
		case errors.Is(err, apperrors.ErrFileNotFound), errors.Is(err, apperrors.ErrMediaUnavailable):
			continue
		default:
			return nil, d, err
		}
	}
	return nil, DriveInvalid, fmt.Errorf("%s: %w", path, apperrors.ErrFileNotFound)
}

// DirFS 每個驅動器對應一個主機目錄
type DirFS struct {
	roots  [DriveCount]string
	logger *zap.Logger
}

// NewDirFS 創建主機目錄文件系統，roots 中空字符串表示該驅動器不存在
func NewDirFS(roots map[Drive]string, logger *zap.Logger) *DirFS {
	d := &DirFS{logger: logger}
	for drive, root := range roots {
		if drive.Valid() {
			d.roots[drive] = root
		}
	}
	return d
}

// Open 實現 Filesystem
func (d *DirFS) Open(path string, drive Drive) (File, error) {
	if !drive.Valid() {
		return nil, fmt.Errorf("%w: %d", apperrors.ErrInvalidDrive, int(drive))
	}

	// 1. 掛載：目錄必須存在
	root := d.roots[drive]
	if root == "" {
		return nil, fmt.Errorf("%w: drive %s not configured", apperrors.ErrMediaUnavailable, drive)
	}
	if st, err := os.Stat(root); err != nil || !st.IsDir() {
		return nil, fmt.Errorf("%w: drive %s (%s)", apperrors.ErrMediaUnavailable, drive, root)
	}

	// 2. 打開文件，路徑限定在驅動器根目錄內
	if !iofs.ValidPath(path) {
		return nil, fmt.Errorf("%w: invalid path %q", apperrors.ErrFileRead, path)
	}
	full := filepath.Join(root, filepath.FromSlash(path))
	f, err := os.Open(full)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s on %s: %w", path, drive, apperrors.ErrFileNotFound)
		}
		return nil, fmt.Errorf("%w: %v", apperrors.ErrFileRead, err)
	}

	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %v", apperrors.ErrFileRead, err)
	}
	if st.IsDir() {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %s is a directory", apperrors.ErrFileRead, path)
	}

	d.logger.Debug("文件已打開",
		zap.String("path", path),
		zap.Stringer("drive", drive),
		zap.Int64("size", st.Size()))
	return &hostFile{File: f, size: st.Size()}, nil
}

// OpenHost 直接打開主機路徑，供命令行寫入映像使用
func OpenHost(path string) (File, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, apperrors.ErrFileNotFound)
		}
		return nil, fmt.Errorf("%w: %v", apperrors.ErrFileRead, err)
	}
	st, err := f.Stat()
	if err != nil || st.IsDir() {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %s is not a regular file", apperrors.ErrFileRead, path)
	}
	return &hostFile{File: f, size: st.Size()}, nil
}

type hostFile struct {
	*os.File
	size int64
}

func (f *hostFile) Size() int64 { return f.size }

// ReadAll 讀取整個文件，讀到的字節數不足時返回 ShortReadError
func ReadAll(f File) ([]byte, error) {
	size := int(f.Size())
	buf := make([]byte, size)
	n, err := io.ReadFull(f, buf)
	if err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return nil, &apperrors.ShortReadError{Expected: size, Actual: n}
		}
		return nil, fmt.Errorf("%w: %v", apperrors.ErrFileRead, err)
	}
	return buf, nil
}
