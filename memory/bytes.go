package memory

import (
	"encoding/binary"
	"os"

	"github.com/wippyai/structview"
	"github.com/wippyai/structview/errors"
)

// Bytes is a little-endian memory image mapped at Base.
type Bytes struct {
	Data []byte
	Base uint64
}

var (
	_ structview.Memory      = (*Bytes)(nil)
	_ structview.MemorySizer = (*Bytes)(nil)
)

// NewBytes maps data at base. The slice is not copied.
func NewBytes(base uint64, data []byte) *Bytes {
	return &Bytes{Base: base, Data: data}
}

// ReadFile loads a raw memory dump and maps it at base.
func ReadFile(path string, base uint64) (*Bytes, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseMemory, errors.KindNotFound, err, "read memory file "+path)
	}
	return NewBytes(base, data), nil
}

// Size returns the image length in bytes.
func (b *Bytes) Size() uint64 {
	return uint64(len(b.Data))
}

// slice returns the n bytes at addr without copying.
func (b *Bytes) slice(addr uint64, n uint64) ([]byte, error) {
	if addr < b.Base {
		return nil, errors.OutOfBounds(errors.PhaseMemory, nil, addr, n)
	}
	off := addr - b.Base
	size := uint64(len(b.Data))
	if off > size || n > size-off {
		return nil, errors.OutOfBounds(errors.PhaseMemory, nil, addr, n)
	}
	return b.Data[off : off+n], nil
}

// Read returns a copy of length bytes at addr.
func (b *Bytes) Read(addr uint64, length uint32) ([]byte, error) {
	p, err := b.slice(addr, uint64(length))
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), p...), nil
}

func (b *Bytes) ReadU8(addr uint64) (uint8, error) {
	p, err := b.slice(addr, 1)
	if err != nil {
		return 0, err
	}
	return p[0], nil
}

func (b *Bytes) ReadU16(addr uint64) (uint16, error) {
	p, err := b.slice(addr, 2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(p), nil
}

func (b *Bytes) ReadU32(addr uint64) (uint32, error) {
	p, err := b.slice(addr, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(p), nil
}

func (b *Bytes) ReadU64(addr uint64) (uint64, error) {
	p, err := b.slice(addr, 8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(p), nil
}
