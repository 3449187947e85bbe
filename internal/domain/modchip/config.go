package modchip

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// PayloadVolume 默認 payload 所在卷
type PayloadVolume uint8

const (
	VolumeAuto PayloadVolume = iota
	VolumeSD
	VolumeBoot1_1MB
	VolumeBoot1
	VolumeGPP
)

var payloadVolumeNames = [...]string{"Auto", "SD", "BOOT1 1MB", "BOOT1", "GPP"}

func (v PayloadVolume) String() string {
	if int(v) < len(payloadVolumeNames) {
		return payloadVolumeNames[v]
	}
	return fmt.Sprintf("Vol(%d)", uint8(v))
}

// Next 循環到下一個卷
func (v PayloadVolume) Next() PayloadVolume {
	return (v + 1) % PayloadVolume(len(payloadVolumeNames))
}

// Valid 是否為已定義的卷
func (v PayloadVolume) Valid() bool {
	return int(v) < len(payloadVolumeNames)
}

// ParsePayloadVolume 按名稱解析卷，大小寫和空格/下劃線不敏感
func ParsePayloadVolume(s string) (PayloadVolume, error) {
	key := normalizeName(s)
	for i, name := range payloadVolumeNames {
		if normalizeName(name) == key {
			return PayloadVolume(i), nil
		}
	}
	return 0, fmt.Errorf("unknown payload volume %q", s)
}

// Action 開機默認動作
type Action uint8

const (
	ActionPayload Action = iota
	ActionOFW
	ActionMenu
)

var actionNames = [...]string{"Payload", "OFW", "Menu"}

func (a Action) String() string {
	if int(a) < len(actionNames) {
		return actionNames[a]
	}
	return fmt.Sprintf("Action(%d)", uint8(a))
}

// Next 循環到下一個動作
func (a Action) Next() Action {
	return (a + 1) % Action(len(actionNames))
}

// Valid 是否為已定義的動作
func (a Action) Valid() bool {
	return int(a) < len(actionNames)
}

// ParseAction 按名稱解析動作
func ParseAction(s string) (Action, error) {
	key := normalizeName(s)
	for i, name := range actionNames {
		if normalizeName(name) == key {
			return Action(i), nil
		}
	}
	return 0, fmt.Errorf("unknown action %q", s)
}

func normalizeName(s string) string {
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(strings.ToLower(s))
}

// Config 加載器配置記錄（12 字節，小端）
//
// 第 8 字節按 LSB 起的位域打包：payload_vol:3, default_action:2,
// disable_ofw_btn_combo:1, disable_menu_btn_combo:1。
type Config struct {
	Magic1           uint32
	Magic2           uint32
	PayloadVolume    PayloadVolume
	DefaultAction    Action
	DisableOFWCombo  bool
	DisableMenuCombo bool
}

// DefaultConfig 編譯期默認配置
func DefaultConfig() Config {
	return Config{
		Magic1:        Magic,
		Magic2:        Magic,
		PayloadVolume: VolumeAuto,
		DefaultAction: ActionPayload,
	}
}

// Valid 兩個魔數都匹配時記錄有效
func (c Config) Valid() bool {
	return c.Magic1 == Magic && c.Magic2 == Magic
}

// OrDefault 無效時返回默認配置
func (c Config) OrDefault() Config {
	if c.Valid() {
		return c
	}
	return DefaultConfig()
}

// Encode 編碼為磁盤格式
func (c Config) Encode() []byte {
	b := make([]byte, ConfigSize)
	c.Put(b)
	return b
}

// Put 寫入到 b 的前 ConfigSize 字節
func (c Config) Put(b []byte) {
	_ = b[ConfigSize-1]
	binary.LittleEndian.PutUint32(b[0:], c.Magic1)
	binary.LittleEndian.PutUint32(b[4:], c.Magic2)

	var bits uint8
	bits |= uint8(c.PayloadVolume) & 0x7
	bits |= (uint8(c.DefaultAction) & 0x3) << 3
	if c.DisableOFWCombo {
		bits |= 1 << 5
	}
	if c.DisableMenuCombo {
		bits |= 1 << 6
	}
	b[8] = bits
	b[9], b[10], b[11] = 0, 0, 0
}

// DecodeConfig 從磁盤格式解碼
func DecodeConfig(b []byte) (Config, error) {
	if len(b) < ConfigSize {
		return Config{}, fmt.Errorf("config record too short: %d bytes", len(b))
	}
	bits := b[8]
	return Config{
		Magic1:           binary.LittleEndian.Uint32(b[0:]),
		Magic2:           binary.LittleEndian.Uint32(b[4:]),
		PayloadVolume:    PayloadVolume(bits & 0x7),
		DefaultAction:    Action((bits >> 3) & 0x3),
		DisableOFWCombo:  bits&(1<<5) != 0,
		DisableMenuCombo: bits&(1<<6) != 0,
	}, nil
}
