package emu

// interruptSource pairs a cause with its mie/mip bit and the
// delegation bit checked for that source.
type interruptSource struct {
	cause     uint32
	bit       uint
	toSuper   bool // whether this source can ever be delegated to S-mode
}

// standard RISC-V interrupt priority order: machine external, machine
// software, machine timer, supervisor external, supervisor software,
// supervisor timer.
var interruptPriority = []interruptSource{
	{CauseMachineExternal, bitMEIP, false},
	{CauseMachineSoftware, bitMSIP, false},
	{CauseMachineTimer, bitMTIP, false},
	{CauseSupervisorExternal, bitSEIP, true},
	{CauseSupervisorSoftware, bitSSIP, true},
	{CauseSupervisorTimer, bitSTIP, true},
}

// CheckAndTakeInterrupt consults pending-and-enabled interrupt sources
// in priority order and, if one is deliverable, enters the
// corresponding trap and returns true. It never fails: either an
// interrupt is taken or it returns false.
func CheckAndTakeInterrupt(cpu *CPU) bool {
	pending := cpu.CSR.Mip() & cpu.CSR.Mie()

	for _, src := range interruptPriority {
		if pending&(1<<src.bit) == 0 {
			continue
		}

		delegated := src.toSuper && cpu.CSR.Mideleg()&(1<<src.bit) != 0
		if delegated {
			if !supervisorInterruptDeliverable(cpu) {
				continue
			}
			enterSupervisorTrap(cpu, src.cause|causeInterruptBit, 0)
			return true
		}

		if !machineInterruptDeliverable(cpu) {
			continue
		}
		enterMachineTrap(cpu, src.cause|causeInterruptBit, 0)
		return true
	}
	return false
}

func machineInterruptDeliverable(cpu *CPU) bool {
	if cpu.Priv < Machine {
		return true
	}
	return cpu.CSR.Mstatus()&(1<<mstatusMIE) != 0
}

func supervisorInterruptDeliverable(cpu *CPU) bool {
	if cpu.Priv < Supervisor {
		return true
	}
	if cpu.Priv > Supervisor {
		return false
	}
	return cpu.CSR.Mstatus()&(1<<mstatusSIE) != 0
}

// TakePendingException routes the CPU's staged synchronous exception
// to supervisor or machine mode, per medeleg, and clears the staging
// slot. Called after the executor returns TrapRaised.
func TakePendingException(cpu *CPU) {
	p := cpu.takePendingException()
	if !p.valid {
		return
	}

	if cpu.Priv < Machine && cpu.CSR.Medeleg()&(1<<p.cause) != 0 {
		enterSupervisorTrap(cpu, p.cause, p.tval)
		return
	}
	enterMachineTrap(cpu, p.cause, p.tval)
}

func enterMachineTrap(cpu *CPU, cause, tval uint32) {
	cpu.CSR.SetMepc(cpu.PC)
	cpu.CSR.SetMcause(cause)
	cpu.CSR.SetMtval(tval)

	st := cpu.CSR.Mstatus()
	mie := (st >> mstatusMIE) & 1
	st = setBit(st, mstatusMPIE, mie == 1)
	st = setBit(st, mstatusMIE, false)
	st &^= mstatusMPPMask
	st |= uint32(cpu.Priv) << mstatusMPPShift
	cpu.CSR.SetMstatus(st)

	cpu.Priv = Machine
	cpu.PC = cpu.CSR.Mtvec() &^ 0b11
}

func enterSupervisorTrap(cpu *CPU, cause, tval uint32) {
	cpu.CSR.SetSepc(cpu.PC)
	cpu.CSR.SetScause(cause)
	cpu.CSR.SetStval(tval)

	st := cpu.CSR.Mstatus()
	sie := (st >> mstatusSIE) & 1
	st = setBit(st, mstatusSPIE, sie == 1)
	st = setBit(st, mstatusSIE, false)
	st = setBit(st, mstatusSPP, cpu.Priv == Supervisor)
	cpu.CSR.SetMstatus(st)

	cpu.Priv = Supervisor
	cpu.PC = cpu.CSR.Stvec() &^ 0b11
}
