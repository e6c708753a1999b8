package emu

// Guest physical memory map (little-endian, 32-bit addresses).
const (
	ClintBase = 0x0200_0000
	ClintSize = 0x0001_0000

	PlicBase = 0x0C00_0000
	PlicSize = 0x0400_0000

	UartBase = 0x1000_0000
	UartSize = 0x0000_0100

	RAMBase = 0x8000_0000
	DTBSize = 2 * 1024 * 1024
)

// PlicContextMachine is the PLIC context index for hart0's M-mode
// claim/complete and threshold window.
const PlicContextMachine = 1
