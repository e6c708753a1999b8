package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/remu/emu"
)

var _ = Describe("Trap logic", func() {
	var cpu *emu.CPU

	BeforeEach(func() {
		cpu = emu.NewCPU()
	})

	Describe("TakePendingException", func() {
		It("delivers to machine mode by default (no delegation)", func() {
			cpu.CSR.Write(0x305, 0x80002000) // mtvec
			cpu.PC = 0x80000100
			cpu.StageException(emu.CauseIllegalInstruction, 0x1234)

			emu.TakePendingException(cpu)

			Expect(cpu.Priv).To(Equal(emu.Machine))
			Expect(cpu.PC).To(Equal(uint32(0x80002000)))
			mepc, _ := cpu.CSR.Read(0x341)
			Expect(mepc).To(Equal(uint32(0x80000100)))
			mcause, _ := cpu.CSR.Read(0x342)
			Expect(mcause).To(Equal(uint32(emu.CauseIllegalInstruction)))
		})

		It("delivers to supervisor mode when privilege < Machine and medeleg bit is set", func() {
			cpu.Priv = emu.User
			cpu.CSR.Write(0x302, 1<<emu.CauseBreakpoint) // medeleg[Breakpoint] = 1
			cpu.CSR.Write(0x105, 0x80003000)              // stvec
			cpu.PC = 0x80000200
			cpu.StageException(emu.CauseBreakpoint, 0)

			emu.TakePendingException(cpu)

			Expect(cpu.Priv).To(Equal(emu.Supervisor))
			Expect(cpu.PC).To(Equal(uint32(0x80003000)))
			sepc, _ := cpu.CSR.Read(0x141)
			Expect(sepc).To(Equal(uint32(0x80000200)))
		})

		It("is a no-op when nothing is staged", func() {
			pc := cpu.PC
			emu.TakePendingException(cpu)
			Expect(cpu.PC).To(Equal(pc))
		})
	})

	Describe("CheckAndTakeInterrupt", func() {
		It("does nothing when no source is pending-and-enabled", func() {
			Expect(emu.CheckAndTakeInterrupt(cpu)).To(BeFalse())
		})

		It("delivers a machine timer interrupt when MIE and MTIE are set", func() {
			cpu.CSR.Write(0x305, 0x80004000) // mtvec
			cpu.CSR.Write(0x300, 1<<3)       // mstatus.MIE = 1
			cpu.CSR.Write(0x304, 1<<7)       // mie.MTIE = 1
			cpu.CSR.RefreshExternalPending(false, true, false)

			taken := emu.CheckAndTakeInterrupt(cpu)
			Expect(taken).To(BeTrue())
			Expect(cpu.Priv).To(Equal(emu.Machine))
			Expect(cpu.PC).To(Equal(uint32(0x80004000)))
			mcause, _ := cpu.CSR.Read(0x342)
			Expect(mcause).To(Equal(uint32(1<<31) | uint32(emu.CauseMachineTimer)))
		})

		It("does not deliver a machine interrupt while in machine mode with MIE clear", func() {
			cpu.CSR.Write(0x304, 1<<7) // mie.MTIE = 1
			cpu.CSR.RefreshExternalPending(false, true, false)
			Expect(emu.CheckAndTakeInterrupt(cpu)).To(BeFalse())
		})
	})
})
