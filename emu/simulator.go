package emu

import (
	"io"
	"os"

	"github.com/sarchlab/remu/bus"
	"github.com/sarchlab/remu/devices"
	"github.com/sarchlab/remu/insts"
)

// defaultWFIBudget bounds the number of idle ticks WFI will advance
// through while waiting for a deliverable interrupt, so a guest that
// can never receive one does not livelock the simulator.
const defaultWFIBudget = 100000

// StopReason names why Run (or a halting Step) stopped.
type StopReason uint8

// Stop reasons, matching the simulator's error taxonomy.
const (
	StopNone StopReason = iota
	StopInstructionLimit
	StopBusFaultFetch
	StopIllegalInstruction
	StopExecuteFailed
	StopEcallOrEbreak
)

// String names a StopReason for diagnostics.
func (r StopReason) String() string {
	switch r {
	case StopNone:
		return "none"
	case StopInstructionLimit:
		return "instruction-limit"
	case StopBusFaultFetch:
		return "bus-fault-fetch"
	case StopIllegalInstruction:
		return "illegal-instruction"
	case StopExecuteFailed:
		return "execute-failed"
	case StopEcallOrEbreak:
		return "ecall-or-ebreak"
	default:
		return "unknown"
	}
}

// RunResult reports how a Run call terminated.
type RunResult struct {
	Reason       StopReason
	Instructions uint64
	LastPC       uint32
}

// Simulator is the RV32IMA hart plus its platform devices: bus,
// decoder, executor, CLINT, PLIC, and UART.
type Simulator struct {
	Bus      *bus.Bus
	CPU      *CPU
	Decoder  *insts.Decoder
	Executor *Executor

	Clint *devices.CLINT
	Plic  *devices.PLIC
	Uart  *devices.UART

	ram *bus.Memory

	instructionCount uint64
	maxInstructions  uint64 // 0 means no limit

	haltOnEnvCall bool
	wfiBudget     uint64
}

// SimulatorOption configures a Simulator at construction time.
type SimulatorOption func(*simConfig)

type simConfig struct {
	stdout          io.Writer
	maxInstructions uint64
	haltOnEnvCall   bool
	wfiBudget       uint64
}

// WithStdout directs UART transmit-holding-register writes to w
// instead of os.Stdout.
func WithStdout(w io.Writer) SimulatorOption {
	return func(c *simConfig) { c.stdout = w }
}

// WithMaxInstructions sets the maximum number of instructions to
// execute before Run stops with StopInstructionLimit. 0 means no limit.
func WithMaxInstructions(max uint64) SimulatorOption {
	return func(c *simConfig) { c.maxInstructions = max }
}

// WithHaltOnEnvCall makes ECALL/EBREAK stop the run with
// StopEcallOrEbreak instead of trapping. Off by default: ECALL/EBREAK
// trap, per the unprivileged/privileged spec.
func WithHaltOnEnvCall(halt bool) SimulatorOption {
	return func(c *simConfig) { c.haltOnEnvCall = halt }
}

// WithWFIBudget overrides the number of idle ticks WFI will advance
// through before giving up on waiting for a deliverable interrupt.
func WithWFIBudget(n uint64) SimulatorOption {
	return func(c *simConfig) { c.wfiBudget = n }
}

// NewSimulator builds a platform with memSize bytes of RAM (plus a
// reserved DTB tail) at RAMBase, CLINT/PLIC/UART mapped at their
// documented addresses, and a hart reset to Machine mode at
// ResetVector with a0=hartid(0) and a1=dtb_base.
func NewSimulator(memSize uint32, opts ...SimulatorOption) *Simulator {
	cfg := simConfig{
		stdout:    os.Stdout,
		wfiBudget: defaultWFIBudget,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	clint := devices.NewCLINT()
	plic := devices.NewPLIC()
	uart := devices.NewUART(cfg.stdout)

	ram := bus.NewMemory(RAMBase, memSize+DTBSize)
	b := bus.NewBus()
	b.MapMMIO(ClintBase, ClintSize, clint)
	b.MapMMIO(PlicBase, PlicSize, plic)
	b.MapMMIO(UartBase, UartSize, uart)
	b.MapRAM(RAMBase, ram)

	cpu := NewCPU()
	cpu.Regs.Write(10, 0)                 // a0 = hartid
	cpu.Regs.Write(11, RAMBase+memSize) // a1 = dtb_base

	return &Simulator{
		Bus:      b,
		CPU:      cpu,
		Decoder:  insts.NewDecoder(),
		Executor: NewExecutor(b),
		Clint:    clint,
		Plic:     plic,
		Uart:     uart,
		ram:      ram,

		maxInstructions: cfg.maxInstructions,
		haltOnEnvCall:   cfg.haltOnEnvCall,
		wfiBudget:       cfg.wfiBudget,
	}
}

// InstructionCount returns the number of instructions retired so far.
func (s *Simulator) InstructionCount() uint64 {
	return s.instructionCount
}

// RAM returns the simulator's RAM region, for the loader to populate.
func (s *Simulator) RAM() *bus.Memory {
	return s.ram
}

func (s *Simulator) refreshPending() {
	s.CPU.CSR.RefreshExternalPending(
		s.Clint.MsipPending(),
		s.Clint.MtipPending(),
		s.Plic.MeipPending(PlicContextMachine),
	)
}

// Step advances the simulator by one instruction (or one interrupt
// delivery), following §4.8: tick devices, check for a deliverable
// interrupt, else fetch/decode/execute and retire. Returns StopNone to
// continue, or the reason the run should halt.
func (s *Simulator) Step() StopReason {
	s.Clint.Tick(1)
	s.CPU.CSR.TickCycle()
	s.refreshPending()

	if CheckAndTakeInterrupt(s.CPU) {
		return StopNone
	}

	word, ok := s.Bus.Read32(s.CPU.PC)
	if !ok {
		return StopBusFaultFetch
	}

	inst := s.Decoder.Decode(word)
	if inst.Kind == insts.Illegal {
		return StopIllegalInstruction
	}
	if s.haltOnEnvCall && (inst.Kind == insts.ECALL || inst.Kind == insts.EBREAK) {
		return StopEcallOrEbreak
	}

	outcome := s.Executor.Execute(s.CPU, inst)
	switch outcome.Kind {
	case Ok:
		s.CPU.CSR.RetireInstruction()
		s.instructionCount++
	case TrapRaised:
		s.CPU.CSR.RetireInstruction()
		s.instructionCount++
		TakePendingException(s.CPU)
	case Wfi:
		s.CPU.CSR.RetireInstruction()
		s.instructionCount++
		s.idleAdvance()
	case Fault:
		return StopExecuteFailed
	}
	return StopNone
}

// idleAdvance advances device time, under a bound, until some interrupt
// is both pending in mip and enabled in mie, or the budget is
// exhausted. mstatus enable bits and privilege are not consulted here;
// the next step's interrupt check decides delivery. Exhausting the
// budget is not an error: the simulator simply resumes fetching at the
// next step.
func (s *Simulator) idleAdvance() {
	for i := uint64(0); i < s.wfiBudget; i++ {
		s.Clint.Tick(1)
		s.CPU.CSR.TickCycle()
		s.refreshPending()
		if s.CPU.CSR.Mip()&s.CPU.CSR.Mie() != 0 {
			return
		}
	}
}

// Run steps the simulator until a halting condition or the configured
// instruction limit is reached.
func (s *Simulator) Run() RunResult {
	for {
		if s.maxInstructions > 0 && s.instructionCount >= s.maxInstructions {
			return RunResult{Reason: StopInstructionLimit, Instructions: s.instructionCount, LastPC: s.CPU.PC}
		}
		if reason := s.Step(); reason != StopNone {
			return RunResult{Reason: reason, Instructions: s.instructionCount, LastPC: s.CPU.PC}
		}
	}
}
