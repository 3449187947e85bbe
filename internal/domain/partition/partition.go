// Package partition 從 GPT 或 MBR 中發現分區表。只讀，用於 UMS 卷配置和 parts 命令。
package partition

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"
	"unicode/utf16"

	"github.com/google/uuid"
)

// MaxEntries 分區表最多保留的條目數，超出部分靜默丟棄
const MaxEntries = 30

const (
	sectorSize   = 512
	gptHeaderLBA = 1
	mbrMaxParts  = 4
)

var gptSignature = []byte("EFI PART")

// Scheme 分區表格式
type Scheme int

const (
	SchemeNone Scheme = iota
	SchemeGPT
	SchemeMBR
)

func (s Scheme) String() string {
	switch s {
	case SchemeGPT:
		return "GPT"
	case SchemeMBR:
		return "MBR"
	default:
		return "none"
	}
}

// Entry 分區條目，單位為扇區
type Entry struct {
	Offset uint32
	Size   uint32

	// 僅 GPT
	Type   uuid.UUID
	Unique uuid.UUID
	Name   string

	// 僅 MBR
	MBRType byte
}

// Table 分區表
type Table struct {
	Scheme  Scheme
	Entries []Entry
}

// Len 條目數
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Entries)
}

// Empty 沒有任何條目
func (t *Table) Empty() bool {
	return t.Len() == 0
}

// SectorReader 分區發現所需的讀取能力
type SectorReader interface {
	ReadSectors(sector, count uint32) ([]byte, error)
}

// Discover 先在 LBA 1 查找 GPT，失敗則回退到 LBA 0 的 MBR
//
// 兩者都不存在時返回空表，而不是錯誤；只有讀取失敗才返回錯誤。
func Discover(r SectorReader) (*Table, error) {
	hdr, err := r.ReadSectors(gptHeaderLBA, 1)
	if err != nil {
		return &Table{}, fmt.Errorf("read gpt header: %w", err)
	}
	if bytes.Equal(hdr[:8], gptSignature) {
		return parseGPT(r, hdr)
	}

	mbr, err := r.ReadSectors(0, 1)
	if err != nil {
		return &Table{}, fmt.Errorf("read mbr: %w", err)
	}
	return ParseMBR(mbr), nil
}

func parseGPT(r SectorReader, hdr []byte) (*Table, error) {
	le := binary.LittleEndian

	// 1. 解析表頭
	entriesLBA := le.Uint64(hdr[72:])
	count := le.Uint32(hdr[80:])
	entrySize := le.Uint32(hdr[84:])
	if entrySize < 128 || entrySize > sectorSize || entrySize%8 != 0 || entriesLBA > 0xFFFFFFFF {
		return &Table{Scheme: SchemeGPT}, fmt.Errorf("malformed gpt header (entry size %d, lba %d)", entrySize, entriesLBA)
	}

	// 2. 只讀取前 MaxEntries 個條目所在的扇區
	n := uint64(min(count, uint32(MaxEntries)))
	size := uint64(entrySize)
	sectors := uint32((n*size + sectorSize - 1) / sectorSize)
	table := &Table{Scheme: SchemeGPT}
	if sectors == 0 {
		return table, nil
	}
	raw, err := r.ReadSectors(uint32(entriesLBA), sectors)
	if err != nil {
		return table, fmt.Errorf("read gpt entries: %w", err)
	}
	if uint64(len(raw)) < n*size {
		return table, fmt.Errorf("gpt entries truncated: %d bytes", len(raw))
	}

	// 3. 跳過類型 GUID 為零的空槽
	for i := uint64(0); i < n; i++ {
		e := raw[i*size : i*size+128]
		typeGUID := guidFromDisk(e[0:16])
		if typeGUID == uuid.Nil {
			continue
		}
		first := le.Uint64(e[32:])
		last := le.Uint64(e[40:])
		if last < first {
			continue
		}
		table.Entries = append(table.Entries, Entry{
			Offset: uint32(first),
			Size:   uint32(last - first + 1),
			Type:   typeGUID,
			Unique: guidFromDisk(e[16:32]),
			Name:   decodeName(e[56:128]),
		})
	}
	return table, nil
}

// ParseMBR 解析 MBR 的四個主分區，跳過大小為零的槽
func ParseMBR(sector []byte) *Table {
	if len(sector) < sectorSize || sector[510] != 0x55 || sector[511] != 0xAA {
		return &Table{}
	}
	table := &Table{Scheme: SchemeMBR}
	for i := 0; i < mbrMaxParts; i++ {
		e := sector[446+i*16 : 446+(i+1)*16]
		size := binary.LittleEndian.Uint32(e[12:])
		if size == 0 {
			continue
		}
		table.Entries = append(table.Entries, Entry{
			Offset:  binary.LittleEndian.Uint32(e[8:]),
			Size:    size,
			MBRType: e[4],
		})
	}
	return table
}

// guidFromDisk 將磁盤上的混合字節序 GUID 轉為標準 UUID
func guidFromDisk(b []byte) uuid.UUID {
	var u uuid.UUID
	u[0], u[1], u[2], u[3] = b[3], b[2], b[1], b[0]
	u[4], u[5] = b[5], b[4]
	u[6], u[7] = b[7], b[6]
	copy(u[8:], b[8:16])
	return u
}

func decodeName(b []byte) string {
	units := make([]uint16, 0, len(b)/2)
	for i := 0; i+1 < len(b); i += 2 {
		c := binary.LittleEndian.Uint16(b[i:])
		if c == 0 {
			break
		}
		units = append(units, c)
	}
	return strings.TrimSpace(string(utf16.Decode(units)))
}
