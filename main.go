// Package main provides a pointer to remu, the RV32IMA "virt" platform
// emulator.
//
// For the full CLI, use: go run ./cmd/remu
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("remu - RV32IMA virt platform emulator")
	fmt.Println("")
	fmt.Println("Usage: remu -k <kernel_path> [-m <mem_size>] [-d <dtb_path>]")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/remu' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/remu' instead.")
	}
}
