package structview

// Memory is a read-only view of raw target memory addressed by absolute
// addresses. Multi-byte reads are little-endian.
type Memory interface {
	Read(addr uint64, length uint32) ([]byte, error)
	ReadU8(addr uint64) (uint8, error)
	ReadU16(addr uint64) (uint16, error)
	ReadU32(addr uint64) (uint32, error)
	ReadU64(addr uint64) (uint64, error)
}

// MemorySizer provides the number of readable bytes behind a Memory.
type MemorySizer interface {
	Size() uint64
}
