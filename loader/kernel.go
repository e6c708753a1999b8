// Package loader reads a raw kernel image from disk and copies it into
// guest RAM.
package loader

import (
	"fmt"
	"os"

	"github.com/sarchlab/remu/bus"
)

// LoadKernel reads the entire file at path and copies it into ram
// starting at ram's base address, then reads back the first 16 bytes
// (or the whole image if shorter) to verify the copy landed correctly.
func LoadKernel(path string, ram *bus.Memory) (size int, err error) {
	return LoadImageAt(path, ram, ram.Base())
}

// LoadImageAt reads the entire file at path and copies it into ram
// starting at addr, then reads back the first 16 bytes (or the whole
// image if shorter) to verify the copy landed correctly. Used to place
// the device tree blob at dtb_base, past the kernel at RAM base.
func LoadImageAt(path string, ram *bus.Memory, addr uint32) (size int, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read image: %w", err)
	}

	for i, b := range data {
		if !ram.Write8(addr+uint32(i), b) {
			return 0, fmt.Errorf("image of %d bytes does not fit in %d-byte RAM at 0x%08X", len(data), ram.Size(), addr)
		}
	}

	verify := len(data)
	if verify > 16 {
		verify = 16
	}
	for i := 0; i < verify; i++ {
		v, ok := ram.Read8(addr + uint32(i))
		if !ok || v != data[i] {
			return 0, fmt.Errorf("verification failed: RAM content does not match image at offset %d", i)
		}
	}

	return len(data), nil
}
