// Package cop0 implements the MIPS R3000A system-control coprocessor: the
// exception state (SR, CAUSE, EPC) and the mode-stack/vector-selection
// machinery used on exception entry and RFE. Grounded on
// original_source/src/COP0.cpp, re-expressed as documented integer
// registers with accessor methods (DESIGN NOTES, spec.md §9) rather than
// host bitfield structs.
package cop0

// ExceptionCode is the 5-bit ExcCode field of CAUSE.
type ExceptionCode uint32

const (
	Interrupt         ExceptionCode = 0x00
	AddressErrorLoad  ExceptionCode = 0x04
	AddressErrorStore ExceptionCode = 0x05
	BusErrorIFetch    ExceptionCode = 0x06
	BusErrorData      ExceptionCode = 0x07
	Syscall           ExceptionCode = 0x08
	Breakpoint        ExceptionCode = 0x09
	ReservedInstr     ExceptionCode = 0x0A
	CoprocessorUnusable ExceptionCode = 0x0B
	Overflow          ExceptionCode = 0x0C
)

// SR bit positions used directly by the emulator.
const (
	srIEc  = 0 // current interrupt enable
	srKUc  = 1 // current kernel/user mode
	srIEp  = 2 // previous interrupt enable
	srKUp  = 3 // previous kernel/user mode
	srIEo  = 4 // old interrupt enable
	srKUo  = 5 // old kernel/user mode
	srIM0  = 8 // interrupt mask bits 8-15
	srIsC  = 16
	srBEV  = 22
)

// COP0 holds the system-control coprocessor's architectural state.
type COP0 struct {
	sr    uint32
	cause uint32
	epc   uint32
}

// New returns a COP0 in its power-on state (all-zero registers, per
// spec.md §3 lifecycle: devices reset to defined power-on values).
func New() *COP0 {
	return &COP0{}
}

func (c *COP0) SR() uint32    { return c.sr }
func (c *COP0) Cause() uint32 { return c.cause }
func (c *COP0) EPC() uint32   { return c.epc }

func (c *COP0) SetSR(v uint32) { c.sr = v }

// SetCause sets only the writable bits of CAUSE: software interrupt
// pending bits 8-9. Hardware bits (10+, ExcCode, BD) are driven by
// EnterException, never by direct guest writes.
func (c *COP0) SetCause(v uint32) {
	c.cause = (c.cause &^ 0x300) | (v & 0x300)
}

// IsCacheIsolated reports whether SR.IsC is set: stores are discarded and
// reads return undefined values while the guest scrubs the I-cache
// (spec.md §4.1).
func (c *COP0) IsCacheIsolated() bool {
	return (c.sr>>srIsC)&1 != 0
}

// InterruptsEnabled reports SR.IEc.
func (c *COP0) InterruptsEnabled() bool {
	return (c.sr>>srIEc)&1 != 0
}

// InterruptMasked reports whether IM bit for CPU external-IRQ line 2 (the
// line the Interrupt Controller drives, CAUSE.IP[2]) is enabled in SR.
func (c *COP0) InterruptMasked(line uint8) bool {
	return (c.sr>>(srIM0+line))&1 != 0
}

// SetInterruptPending sets or clears CAUSE.IP[line] (the hardware
// interrupt-pending bits, 2-7, fed by external devices rather than
// software writes).
func (c *COP0) SetInterruptPending(line uint8, pending bool) {
	bitPos := uint(srIM0 + line)
	if pending {
		c.cause |= 1 << bitPos
	} else {
		c.cause &^= 1 << bitPos
	}
}

// InterruptPending reports whether an external interrupt should be taken:
// SR.IEc=1, SR.IM[2]=1 and CAUSE.IP[2]=1 (spec.md §4.2).
func (c *COP0) InterruptPending() bool {
	const line2 = 2
	return c.InterruptsEnabled() && c.InterruptMasked(line2) && (c.cause>>(srIM0+line2))&1 != 0
}

// EnterException pushes the three-level IE/KU stack, records ExcCode and
// BD, sets EPC and returns the PC to vector to. currentPC is the address
// of the instruction that caused (or, for external interrupts, would have
// executed) the exception; inDelaySlot indicates it is the delay slot of a
// branch, in which case EPC points to the branch itself (currentPC-4).
//
// Ported from original_source/src/COP0.cpp updateRegistersWithException.
func (c *COP0) EnterException(code ExceptionCode, currentPC uint32, inDelaySlot bool) uint32 {
	mode := c.sr & 0x3F
	c.sr &^= 0x3F
	c.sr |= (mode << 2) & 0x3F

	c.cause &^= 0x7C
	c.cause |= uint32(code) << 2

	if inDelaySlot {
		c.epc = currentPC - 4
		c.cause |= 1 << 31
	} else {
		c.epc = currentPC
		c.cause &^= 1 << 31
	}

	if (c.sr>>srBEV)&1 != 0 {
		return 0xBFC00180
	}
	return 0x80000080
}

// ReturnFromException implements RFE: pops the IE/KU mode stack by
// shifting it right by two, preserving the top (old) pair.
//
// Ported from original_source/src/COP0.cpp updateRegistersWithReturnFromException.
func (c *COP0) ReturnFromException() {
	mode := c.sr & 0x3F
	c.sr &^= 0xF
	c.sr |= mode >> 2
}

// BranchDelay reports CAUSE.BD, set on exception entry when the excepting
// instruction was in a branch-delay slot.
func (c *COP0) BranchDelay() bool {
	return (c.cause>>31)&1 != 0
}

// ExcCode extracts CAUSE.ExcCode.
func (c *COP0) ExcCode() ExceptionCode {
	return ExceptionCode((c.cause >> 2) & 0x1F)
}
