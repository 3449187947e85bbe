package modchip

import (
	"encoding/binary"
	"fmt"
)

// CommandTag 命令標籤
type CommandTag uint32

const (
	CmdFirmwareUpdate   CommandTag = 0x6DB92148
	CmdReset            CommandTag = 0x515205C5
	CmdBootloaderUpdate CommandTag = 0x7A21CAE1
)

func (t CommandTag) String() string {
	switch t {
	case CmdFirmwareUpdate:
		return "firmware-update"
	case CmdReset:
		return "reset"
	case CmdBootloaderUpdate:
		return "bootloader-update"
	default:
		return fmt.Sprintf("cmd(0x%08x)", uint32(t))
	}
}

// Command 命令記錄
type Command struct {
	Tag         CommandTag
	SectorStart uint32
	SectorCount uint32
}

// ResetCommand 復位命令
func ResetCommand() Command {
	return Command{Tag: CmdReset}
}

// FirmwareUpdateCommand 固件更新命令
func FirmwareUpdateCommand(start, count uint32) Command {
	return Command{Tag: CmdFirmwareUpdate, SectorStart: start, SectorCount: count}
}

// BootloaderUpdateCommand 引導程序更新命令
func BootloaderUpdateCommand(start, count uint32) Command {
	return Command{Tag: CmdBootloaderUpdate, SectorStart: start, SectorCount: count}
}

// RollbackCommand 回滾命令，編碼為扇區字段全 1 的固件更新
func RollbackCommand() Command {
	return FirmwareUpdateCommand(RollbackSentinel, RollbackSentinel)
}

// IsRollback 是否為回滾命令
func (c Command) IsRollback() bool {
	return c.Tag == CmdFirmwareUpdate && c.SectorStart == RollbackSentinel && c.SectorCount == RollbackSentinel
}

// Put 寫入到 b 的前 CommandSize 字節
func (c Command) Put(b []byte) {
	_ = b[CommandSize-1]
	binary.LittleEndian.PutUint32(b[0:], uint32(c.Tag))
	binary.LittleEndian.PutUint32(b[4:], c.SectorStart)
	binary.LittleEndian.PutUint32(b[8:], c.SectorCount)
}

// DecodeCommand 解碼命令記錄
func DecodeCommand(b []byte) (Command, error) {
	if len(b) < CommandSize {
		return Command{}, fmt.Errorf("command record too short: %d bytes", len(b))
	}
	return Command{
		Tag:         CommandTag(binary.LittleEndian.Uint32(b[0:])),
		SectorStart: binary.LittleEndian.Uint32(b[4:]),
		SectorCount: binary.LittleEndian.Uint32(b[8:]),
	}, nil
}
