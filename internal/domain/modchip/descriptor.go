package modchip

import (
	"encoding/binary"
	"fmt"
)

// Descriptor 晶片固件描述符（只讀，由晶片寫入）
type Descriptor struct {
	Signature    uint32
	FWMajor      uint32
	FWMinor      uint32
	LoaderHash   uint32
	FirmwareHash uint32
	FuseCount    uint32
}

// DecodeDescriptor 解碼描述符，不做有效性過濾
func DecodeDescriptor(b []byte) (Descriptor, error) {
	if len(b) < DescriptorSize {
		return Descriptor{}, fmt.Errorf("descriptor record too short: %d bytes", len(b))
	}
	le := binary.LittleEndian
	return Descriptor{
		Signature:    le.Uint32(b[0:]),
		FWMajor:      le.Uint32(b[4:]),
		FWMinor:      le.Uint32(b[8:]),
		LoaderHash:   le.Uint32(b[12:]),
		FirmwareHash: le.Uint32(b[16:]),
		FuseCount:    le.Uint32(b[20:]),
	}, nil
}

// Put 寫入到 b 的前 DescriptorSize 字節
func (d Descriptor) Put(b []byte) {
	_ = b[DescriptorSize-1]
	le := binary.LittleEndian
	le.PutUint32(b[0:], d.Signature)
	le.PutUint32(b[4:], d.FWMajor)
	le.PutUint32(b[8:], d.FWMinor)
	le.PutUint32(b[12:], d.LoaderHash)
	le.PutUint32(b[16:], d.FirmwareHash)
	le.PutUint32(b[20:], d.FuseCount)
}

// Valid 簽名匹配時有效
func (d Descriptor) Valid() bool {
	return d.Signature == DescriptorSignature
}

// Version 顯示用版本號（主版本 ≤ 9，次版本 ≤ 99）
func (d Descriptor) Version() string {
	return fmt.Sprintf("%d.%d", min(d.FWMajor, 9), min(d.FWMinor, 99))
}

// Fuses 顯示用熔絲計數（≤ 999）
func (d Descriptor) Fuses() uint32 {
	return min(d.FuseCount, 999)
}
