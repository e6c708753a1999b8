package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/remu/emu"
)

var _ = Describe("Simulator", func() {
	var sim *emu.Simulator

	BeforeEach(func() {
		sim = emu.NewSimulator(64 * 1024)
	})

	It("resets pc to RAMBase, privilege to Machine, a0=hartid, a1=dtb_base", func() {
		Expect(sim.CPU.PC).To(Equal(uint32(emu.RAMBase)))
		Expect(sim.CPU.Priv).To(Equal(emu.Machine))
		Expect(sim.CPU.Regs.Read(10)).To(Equal(uint32(0)))
		Expect(sim.CPU.Regs.Read(11)).To(Equal(uint32(emu.RAMBase + 64*1024)))
	})

	It("halts with StopBusFaultFetch when pc points outside any region", func() {
		sim.CPU.PC = 0x0
		Expect(sim.Step()).To(Equal(emu.StopBusFaultFetch))
	})

	It("halts with StopIllegalInstruction on an unmapped opcode", func() {
		sim.Bus.Write32(sim.CPU.PC, 0x7F)
		Expect(sim.Step()).To(Equal(emu.StopIllegalInstruction))
	})

	It("stops cleanly at the configured instruction limit", func() {
		sim = emu.NewSimulator(64*1024, emu.WithMaxInstructions(3))
		for i := uint32(0); i < 10; i++ {
			sim.Bus.Write32(emu.RAMBase+i*4, 0x00000013) // ADDI x0,x0,0
		}
		result := sim.Run()
		Expect(result.Reason).To(Equal(emu.StopInstructionLimit))
		Expect(result.Instructions).To(Equal(uint64(3)))
	})

	It("delivers a machine timer trap after mtimecmp ticks pass, per the CLINT boundary scenario", func() {
		sim.Clint.WriteMMIO(0x4000, 4, 10)   // mtimecmp low = 10
		sim.Clint.WriteMMIO(0x4004, 4, 0)    // mtimecmp high = 0 (resets to all-ones)
		sim.CPU.CSR.Write(0x305, 0x80002000) // mtvec
		sim.CPU.CSR.Write(0x300, 1<<3)       // mstatus.MIE
		sim.CPU.CSR.Write(0x304, 1<<7)       // mie.MTIE
		for i := uint32(0); i < 10; i++ {
			sim.Bus.Write32(emu.RAMBase+i*4, 0x00000013) // ADDI x0,x0,0 filler
		}

		prevPC := sim.CPU.PC
		var tookTrap bool
		for i := 0; i < 12; i++ {
			prevPC = sim.CPU.PC
			sim.Step()
			if sim.CPU.Priv == emu.Machine && sim.CPU.PC == 0x80002000 {
				tookTrap = true
				break
			}
		}
		Expect(tookTrap).To(BeTrue())
		mcause, _ := sim.CPU.CSR.Read(0x342)
		Expect(mcause).To(Equal(uint32(0x80000007)))
		mepc, _ := sim.CPU.CSR.Read(0x341)
		Expect(mepc).To(Equal(prevPC))
	})
})
