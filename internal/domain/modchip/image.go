package modchip

import "fmt"

// ImageKind 可寫入 BOOT0 的映像類型
type ImageKind int

const (
	ImageFirmware ImageKind = iota
	ImageBootloader
	ImageIPL
)

// Region 映像區域
type Region struct {
	Name        string
	StartSector uint32
	MaxSize     int
	Pad         byte
	// FollowUp 寫入成功後發出的命令；IPL 沒有後續命令
	FollowUp    CommandTag
	HasFollowUp bool
}

var regions = map[ImageKind]Region{
	ImageFirmware: {
		Name:        "FW",
		StartSector: 0x1F00,
		MaxSize:     0x20000,
		Pad:         0x00,
		FollowUp:    CmdFirmwareUpdate,
		HasFollowUp: true,
	},
	ImageBootloader: {
		Name:        "BL",
		StartSector: 0x1F00,
		MaxSize:     0x20000,
		Pad:         0xFF,
		FollowUp:    CmdBootloaderUpdate,
		HasFollowUp: true,
	},
	ImageIPL: {
		Name:        "IPL",
		StartSector: 0x1F80,
		// 最後一個扇區保留給描述符和配置
		MaxSize: 0x10000 - 0x200,
		Pad:     0x00,
	},
}

// RegionOf 返回映像類型對應的區域
func RegionOf(kind ImageKind) Region {
	return regions[kind]
}

func (k ImageKind) String() string {
	if r, ok := regions[k]; ok {
		return r.Name
	}
	return fmt.Sprintf("Image(%d)", int(k))
}

// ParseImageKind 解析命令行中的映像類型
func ParseImageKind(s string) (ImageKind, error) {
	switch s {
	case "fw", "firmware":
		return ImageFirmware, nil
	case "bl", "bootloader":
		return ImageBootloader, nil
	case "ipl":
		return ImageIPL, nil
	}
	return 0, fmt.Errorf("unknown image kind %q", s)
}

// FollowUpCommand 寫入 sectors 個扇區後的後續命令
func (r Region) FollowUpCommand(sectors uint32) (Command, bool) {
	if !r.HasFollowUp {
		return Command{}, false
	}
	return Command{Tag: r.FollowUp, SectorStart: r.StartSector, SectorCount: sectors}, true
}
