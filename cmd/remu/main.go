// Package main provides remu, the RV32IMA "virt" platform emulator.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/sarchlab/remu/emu"
	"github.com/sarchlab/remu/loader"
)

var (
	kernelPath = flag.String("k", "", "Kernel image path (required)")
	memSizeArg = flag.String("m", "128M", "Memory size: decimal bytes, or a value with suffix K/M/G")
	dtbPath    = flag.String("d", "", "Device tree blob path (optional)")
	maxInstrs  = flag.Uint64("instrs", 0, "Maximum instructions to execute (0 = unlimited)")
)

func main() {
	flag.Parse()

	if *kernelPath == "" {
		fmt.Fprintln(os.Stderr, "Usage: remu -k <kernel_path> [-m <mem_size>] [-d <dtb_path>] [-instrs <n>]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	memSize, err := parseMemSize(*memSizeArg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid memory size for -m (examples: 128M, 1G, 134217728): %v\n", err)
		os.Exit(1)
	}

	sim := emu.NewSimulator(memSize, emu.WithMaxInstructions(*maxInstrs))

	if _, err := loader.LoadKernel(*kernelPath, sim.RAM()); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load kernel image: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "Kernel loaded into guest RAM at 0x%08X\n", emu.RAMBase)

	if *dtbPath != "" {
		dtbBase := emu.RAMBase + memSize
		if _, err := loader.LoadImageAt(*dtbPath, sim.RAM(), dtbBase); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load device tree blob: %v\n", err)
			os.Exit(1)
		}
	}

	result := sim.Run()
	fmt.Fprintf(os.Stderr, "Stopped: %s (instructions=%d, pc=0x%08X)\n",
		result.Reason, result.Instructions, result.LastPC)

	if result.Reason == emu.StopBusFaultFetch || result.Reason == emu.StopIllegalInstruction ||
		result.Reason == emu.StopExecuteFailed {
		os.Exit(1)
	}
	os.Exit(0)
}

// parseMemSize accepts a plain decimal byte count, or a number with a
// case-insensitive K/M/G suffix (powers of 1024).
func parseMemSize(s string) (uint32, error) {
	if s == "" {
		return 0, fmt.Errorf("empty value")
	}

	numberPart := s
	multiplier := uint64(1)

	last := s[len(s)-1]
	if last >= 'a' && last <= 'z' {
		last -= 'a' - 'A'
	}
	switch last {
	case 'K':
		multiplier = 1024
		numberPart = s[:len(s)-1]
	case 'M':
		multiplier = 1024 * 1024
		numberPart = s[:len(s)-1]
	case 'G':
		multiplier = 1024 * 1024 * 1024
		numberPart = s[:len(s)-1]
	default:
		if last < '0' || last > '9' {
			return 0, fmt.Errorf("unrecognized suffix in %q", s)
		}
	}

	numberPart = strings.TrimSpace(numberPart)
	if numberPart == "" {
		return 0, fmt.Errorf("missing digits in %q", s)
	}

	base, err := strconv.ParseUint(numberPart, 10, 64)
	if err != nil {
		return 0, err
	}

	total := base * multiplier
	if total == 0 || total > uint64(^uint32(0)) {
		return 0, fmt.Errorf("size out of range: %q", s)
	}
	return uint32(total), nil
}
