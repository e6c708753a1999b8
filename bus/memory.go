// Package bus provides the guest physical address space: an owned RAM
// region and an address-routed dispatcher across RAM and MMIO devices.
package bus

import "encoding/binary"

// Memory is a byte-addressable RAM region of size bytes mapped at base
// in the guest physical address space. All multi-byte accesses are
// little-endian.
type Memory struct {
	base uint32
	data []byte
}

// NewMemory creates a zero-filled RAM region of size bytes at base.
func NewMemory(base, size uint32) *Memory {
	return &Memory{
		base: base,
		data: make([]byte, size),
	}
}

// Base returns the region's base address.
func (m *Memory) Base() uint32 {
	return m.base
}

// Size returns the region's size in bytes.
func (m *Memory) Size() uint32 {
	return uint32(len(m.data))
}

// Bytes returns the backing byte slice for direct access (used by the
// kernel loader).
func (m *Memory) Bytes() []byte {
	return m.data
}

// contains reports whether [addr, addr+n) lies wholly within the
// region, using 64-bit arithmetic so a near-the-top-of-address-space
// request cannot wrap around and falsely succeed.
func (m *Memory) contains(addr uint32, n uint32) bool {
	if addr < m.base {
		return false
	}
	off := uint64(addr - m.base)
	end := off + uint64(n)
	return end <= uint64(len(m.data))
}

func (m *Memory) index(addr uint32) uint32 {
	return addr - m.base
}

// Read8 reads a single byte. ok is false if addr is outside the region.
func (m *Memory) Read8(addr uint32) (v uint8, ok bool) {
	if !m.contains(addr, 1) {
		return 0, false
	}
	return m.data[m.index(addr)], true
}

// Write8 writes a single byte. ok is false if addr is outside the region.
func (m *Memory) Write8(addr uint32, v uint8) (ok bool) {
	if !m.contains(addr, 1) {
		return false
	}
	m.data[m.index(addr)] = v
	return true
}

// Read16 reads a little-endian halfword.
func (m *Memory) Read16(addr uint32) (v uint16, ok bool) {
	if !m.contains(addr, 2) {
		return 0, false
	}
	i := m.index(addr)
	return binary.LittleEndian.Uint16(m.data[i : i+2]), true
}

// Write16 writes a little-endian halfword.
func (m *Memory) Write16(addr uint32, v uint16) (ok bool) {
	if !m.contains(addr, 2) {
		return false
	}
	i := m.index(addr)
	binary.LittleEndian.PutUint16(m.data[i:i+2], v)
	return true
}

// Read32 reads a little-endian word.
func (m *Memory) Read32(addr uint32) (v uint32, ok bool) {
	if !m.contains(addr, 4) {
		return 0, false
	}
	i := m.index(addr)
	return binary.LittleEndian.Uint32(m.data[i : i+4]), true
}

// Write32 writes a little-endian word.
func (m *Memory) Write32(addr uint32, v uint32) (ok bool) {
	if !m.contains(addr, 4) {
		return false
	}
	i := m.index(addr)
	binary.LittleEndian.PutUint32(m.data[i:i+4], v)
	return true
}
