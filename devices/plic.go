package devices

// maxIRQ is the number of supported external interrupt IDs, including
// the always-unselectable IRQ 0. Matches the original platform's
// kMaxIrq.
const maxIRQ = 64

// PLIC register windows (spec §6).
const (
	plicPriorityBase  = 0x000000
	plicPendingBase   = 0x001000
	plicEnableBase    = 0x002000
	plicContextBase   = 0x200000
	plicContextStride = 0x1000
	plicThresholdOff  = 0x0
	plicClaimOff      = 0x4
)

// PLIC is the Platform-Level Interrupt Controller: per-source
// priority, a pending bitset, an enable bitset for hart0, and a
// priority-threshold claim/complete register window addressed by
// context (hart0 M-mode uses context 1).
type PLIC struct {
	priority  [maxIRQ]uint32
	pending   [maxIRQ]bool
	enabled   [maxIRQ]bool
	threshold map[uint32]uint32
}

// NewPLIC creates a PLIC with all sources masked and priority 0.
func NewPLIC() *PLIC {
	return &PLIC{threshold: make(map[uint32]uint32)}
}

// SetPending sets or clears the pending bit for irq (1..maxIRQ-1; 0 is
// always unselectable and silently ignored). Used by device-model code
// or test harnesses to raise an external interrupt.
func (p *PLIC) SetPending(irq uint32, pending bool) {
	if irq == 0 || irq >= maxIRQ {
		return
	}
	p.pending[irq] = pending
}

// best returns the lowest-ID, highest-priority enabled-and-pending IRQ
// strictly above ctxThreshold, or 0 if none qualifies.
func (p *PLIC) best(ctxThreshold uint32) uint32 {
	var bestID uint32
	var bestPrio uint32
	for id := uint32(1); id < maxIRQ; id++ {
		if !p.pending[id] || !p.enabled[id] {
			continue
		}
		prio := p.priority[id]
		if prio <= ctxThreshold {
			continue
		}
		if bestID == 0 || prio > bestPrio {
			bestID = id
			bestPrio = prio
		}
	}
	return bestID
}

// MeipPending reports whether any enabled source is deliverable above
// the machine-mode context's threshold — the condition the platform
// uses to drive mip.MEIP every tick.
func (p *PLIC) MeipPending(ctx uint32) bool {
	return p.best(p.threshold[ctx]) != 0
}

// ReadMMIO implements bus.MmioDevice.
func (p *PLIC) ReadMMIO(off uint32, width uint8) (uint32, bool) {
	switch {
	case off >= plicPriorityBase && off < plicPendingBase:
		id := (off - plicPriorityBase) / 4
		if id >= maxIRQ {
			return 0, false
		}
		return p.priority[id], true

	case off >= plicPendingBase && off < plicEnableBase:
		word := (off - plicPendingBase) / 4
		return p.pendingWord(word), true

	case off >= plicEnableBase && off < plicContextBase:
		word := (off - plicEnableBase) / 4
		return p.enabledWord(word), true

	case off >= plicContextBase:
		ctx, reg := p.splitContext(off)
		switch reg {
		case plicThresholdOff:
			return p.threshold[ctx], true
		case plicClaimOff:
			id := p.best(p.threshold[ctx])
			if id != 0 {
				p.pending[id] = false
			}
			return id, true
		default:
			return 0, false
		}

	default:
		return 0, false
	}
}

// WriteMMIO implements bus.MmioDevice.
func (p *PLIC) WriteMMIO(off uint32, width uint8, v uint32) bool {
	switch {
	case off >= plicPriorityBase && off < plicPendingBase:
		id := (off - plicPriorityBase) / 4
		if id == 0 || id >= maxIRQ {
			return false
		}
		p.priority[id] = v
		return true

	case off >= plicPendingBase && off < plicEnableBase:
		return false // pending bitset is read-only

	case off >= plicEnableBase && off < plicContextBase:
		word := (off - plicEnableBase) / 4
		p.setEnabledWord(word, v)
		return true

	case off >= plicContextBase:
		ctx, reg := p.splitContext(off)
		switch reg {
		case plicThresholdOff:
			p.threshold[ctx] = v
			return true
		case plicClaimOff:
			return true // complete: accept and drop, no re-pending bookkeeping needed
		default:
			return false
		}

	default:
		return false
	}
}

func (p *PLIC) splitContext(off uint32) (ctx, reg uint32) {
	rel := off - plicContextBase
	return rel / plicContextStride, rel % plicContextStride
}

func (p *PLIC) pendingWord(word uint32) uint32 {
	var v uint32
	for bit := uint32(0); bit < 32; bit++ {
		id := word*32 + bit
		if id < maxIRQ && p.pending[id] {
			v |= 1 << bit
		}
	}
	return v
}

func (p *PLIC) enabledWord(word uint32) uint32 {
	var v uint32
	for bit := uint32(0); bit < 32; bit++ {
		id := word*32 + bit
		if id < maxIRQ && p.enabled[id] {
			v |= 1 << bit
		}
	}
	return v
}

func (p *PLIC) setEnabledWord(word, v uint32) {
	for bit := uint32(0); bit < 32; bit++ {
		id := word*32 + bit
		if id < maxIRQ {
			p.enabled[id] = v&(1<<bit) != 0
		}
	}
}
