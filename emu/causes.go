package emu

// Synchronous exception causes (mcause/scause low bits; bit 31 clear).
const (
	CauseIllegalInstruction    = 2
	CauseBreakpoint            = 3
	CauseEnvironmentCallFromU  = 8
	CauseEnvironmentCallFromS  = 9
	CauseEnvironmentCallFromM  = 11
)

// Interrupt causes (mcause/scause low bits; delivered with bit 31 set).
const (
	CauseSupervisorSoftware = 1
	CauseMachineSoftware    = 3
	CauseSupervisorTimer    = 5
	CauseMachineTimer       = 7
	CauseSupervisorExternal = 9
	CauseMachineExternal    = 11
)

// causeInterruptBit is ORed into mcause/scause for interrupts.
const causeInterruptBit = 1 << 31
