package storage

import (
	"fmt"
	"os"
	"sync"
)

// FileDevice 以鏡像文件或主機塊設備為後端的設備
type FileDevice struct {
	mu       sync.Mutex
	f        *os.File
	path     string
	sectors  uint32
	writable bool
}

// OpenFile 打開鏡像文件或塊設備
func OpenFile(path string, writable bool) (*FileDevice, error) {
	flag := os.O_RDONLY
	if writable {
		flag = os.O_RDWR
	}
	f, err := os.OpenFile(path, flag, 0)
	if err != nil {
		return nil, err
	}
	size, err := deviceSize(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("get size of %s: %w", path, err)
	}
	return &FileDevice{
		f:        f,
		path:     path,
		sectors:  uint32(min(size/SectorSize, 0xFFFFFFFF)),
		writable: writable,
	}, nil
}

// Path 後端路徑
func (d *FileDevice) Path() string { return d.path }

func (d *FileDevice) SectorCount() uint32 { return d.sectors }

func (d *FileDevice) ReadSectors(sector, count uint32) ([]byte, error) {
	if err := checkRange(d, sector, count); err != nil {
		return nil, err
	}
	buf := make([]byte, int(count)*SectorSize)
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, err := d.f.ReadAt(buf, int64(sector)*SectorSize); err != nil {
		return nil, err
	}
	return buf, nil
}

func (d *FileDevice) WriteSectors(sector, count uint32, buf []byte) error {
	if !d.writable {
		return fmt.Errorf("%s opened read-only", d.path)
	}
	if err := checkRange(d, sector, count); err != nil {
		return err
	}
	if err := checkBuffer(count, buf); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, err := d.f.WriteAt(buf[:int(count)*SectorSize], int64(sector)*SectorSize); err != nil {
		return err
	}
	return d.f.Sync()
}

// Close 關閉文件
func (d *FileDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.f.Close()
}
