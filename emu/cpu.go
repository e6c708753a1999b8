package emu

// reservation is the LR.W/SC.W atomic-reservation record.
type reservation struct {
	valid bool
	addr  uint32
}

// pendingException is the transient (cause, tval) staged by the
// executor for a synchronous exception, consumed by TakePendingException.
type pendingException struct {
	valid bool
	cause uint32
	tval  uint32
}

// CPU is the hart's architectural state: program counter, privilege
// mode, general registers, CSR bank, the atomic-reservation record,
// and the staged pending-exception slot.
type CPU struct {
	PC   uint32
	Priv Privilege

	Regs *RegFile
	CSR  *CSRFile

	reservation reservation
	pending     pendingException
}

// ResetVector is the architectural reset PC for the platform's RAM base.
const ResetVector = 0x8000_0000

// NewCPU creates a hart reset to Machine mode at ResetVector with a
// zeroed register file and CSR bank.
func NewCPU() *CPU {
	return &CPU{
		PC:   ResetVector,
		Priv: Machine,
		Regs: &RegFile{},
		CSR:  NewCSRFile(),
	}
}

// SetReservation records a live LR.W reservation at addr.
func (c *CPU) SetReservation(addr uint32) {
	c.reservation = reservation{valid: true, addr: addr}
}

// ClearReservation invalidates any live reservation, as happens on
// SC.W (success or failure) and on any AMO.
func (c *CPU) ClearReservation() {
	c.reservation = reservation{}
}

// ReservationMatches reports whether a live reservation covers addr.
func (c *CPU) ReservationMatches(addr uint32) bool {
	return c.reservation.valid && c.reservation.addr == addr
}

// StageException records a synchronous exception for the trap module
// to deliver after the executor returns TrapRaised.
func (c *CPU) StageException(cause, tval uint32) {
	c.pending = pendingException{valid: true, cause: cause, tval: tval}
}

// takePendingException clears and returns the staged exception.
func (c *CPU) takePendingException() pendingException {
	p := c.pending
	c.pending = pendingException{}
	return p
}
