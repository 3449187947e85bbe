// Package modchip 描述模組晶片在 BOOT0 上的持久化記錄佈局。
//
// 扇區號與偏移是與外部控制器約定的硬件協議，必須逐位保持不變。
package modchip

// SectorSize 扇區大小
const SectorSize = 512

// 扇區映射
const (
	// CommandSector 命令記錄所在扇區
	CommandSector uint32 = 0x1
	// CommandOffset 命令記錄在扇區內的偏移
	CommandOffset = 0x0
	// CommandSlotSize 寫入命令前清零的區域
	CommandSlotSize = 0x10
	// ResetClearSize 復位命令額外清除的字節數
	ResetClearSize = 256

	// DescriptorSector 描述符所在扇區（BOOT0 最後一個扇區）
	DescriptorSector uint32 = 0x1FFF
	DescriptorOffset        = 0x0

	// ConfigSector 配置記錄與描述符共用扇區
	ConfigSector uint32 = 0x1FFF
	ConfigOffset        = 0x100
)

// 哨兵值
const (
	Magic               uint32 = 0xAA5458BA
	DescriptorSignature uint32 = 0x9CABE959
	RollbackSentinel    uint32 = 0xFFFFFFFF
)

// 記錄長度
const (
	ConfigSize     = 12
	CommandSize    = 12
	DescriptorSize = 24
)

// ScratchSize 流式寫入使用的緩衝區大小
const ScratchSize = 32 * 1024

// SectorsFor 返回容納 size 字節所需的扇區數
func SectorsFor(size int) uint32 {
	return uint32((size + SectorSize - 1) / SectorSize)
}
