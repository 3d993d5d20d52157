package memory

import (
	"math"

	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/structview"
	"github.com/wippyai/structview/errors"
)

// WrapWazero wraps a wazero api.Memory to implement structview.Memory.
// Addresses are linear memory offsets.
func WrapWazero(mem api.Memory) structview.Memory {
	if mem == nil {
		return nil
	}
	return &Wazero{Mem: mem}
}

// Wazero adapts wazero api.Memory to the structview.Memory interface.
type Wazero struct {
	Mem api.Memory
}

var (
	_ structview.Memory      = (*Wazero)(nil)
	_ structview.MemorySizer = (*Wazero)(nil)
)

// Size returns the current linear memory size in bytes.
func (m *Wazero) Size() uint64 {
	return uint64(m.Mem.Size())
}

// Read reads bytes from memory.
func (m *Wazero) Read(addr uint64, length uint32) ([]byte, error) {
	if addr > math.MaxUint32 {
		return nil, errors.OutOfBounds(errors.PhaseMemory, nil, addr, uint64(length))
	}
	data, ok := m.Mem.Read(uint32(addr), length)
	if !ok {
		return nil, errors.OutOfBounds(errors.PhaseMemory, nil, addr, uint64(length))
	}
	return data, nil
}

// ReadU8 reads an unsigned 8-bit value.
func (m *Wazero) ReadU8(addr uint64) (uint8, error) {
	if addr > math.MaxUint32 {
		return 0, errors.OutOfBounds(errors.PhaseMemory, nil, addr, 1)
	}
	v, ok := m.Mem.ReadByte(uint32(addr))
	if !ok {
		return 0, errors.OutOfBounds(errors.PhaseMemory, nil, addr, 1)
	}
	return v, nil
}

// ReadU16 reads an unsigned 16-bit little-endian value.
func (m *Wazero) ReadU16(addr uint64) (uint16, error) {
	if addr > math.MaxUint32 {
		return 0, errors.OutOfBounds(errors.PhaseMemory, nil, addr, 2)
	}
	v, ok := m.Mem.ReadUint16Le(uint32(addr))
	if !ok {
		return 0, errors.OutOfBounds(errors.PhaseMemory, nil, addr, 2)
	}
	return v, nil
}

// ReadU32 reads an unsigned 32-bit little-endian value.
func (m *Wazero) ReadU32(addr uint64) (uint32, error) {
	if addr > math.MaxUint32 {
		return 0, errors.OutOfBounds(errors.PhaseMemory, nil, addr, 4)
	}
	v, ok := m.Mem.ReadUint32Le(uint32(addr))
	if !ok {
		return 0, errors.OutOfBounds(errors.PhaseMemory, nil, addr, 4)
	}
	return v, nil
}

// ReadU64 reads an unsigned 64-bit little-endian value.
func (m *Wazero) ReadU64(addr uint64) (uint64, error) {
	if addr > math.MaxUint32 {
		return 0, errors.OutOfBounds(errors.PhaseMemory, nil, addr, 8)
	}
	v, ok := m.Mem.ReadUint64Le(uint32(addr))
	if !ok {
		return 0, errors.OutOfBounds(errors.PhaseMemory, nil, addr, 8)
	}
	return v, nil
}
