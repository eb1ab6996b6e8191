// Package cpu implements the MIPS R3000A instruction interpreter: the
// general-purpose/HI-LO register file, the branch-delay and load-delay
// slot machinery, and the full MIPS I instruction subset the PSX BIOS and
// games rely on. Structured after jeebie/cpu's register-wrapper plus
// map[uint8]Opcode dispatch idiom (jeebie/cpu/{registers,mapping,opcodes}.go),
// generalized from the Z80-like Game Boy ISA's fixed-width fetch loop to
// MIPS's delay-slot-carrying one.
package cpu

import (
	"github.com/kagami/psxgo/psx/cop0"
)

// Bus is the CPU's memory-access surface (spec.md §4.1/§4.2).
type Bus interface {
	ReadWord(address uint32) uint32
	ReadHalf(address uint32) uint16
	ReadByte(address uint32) uint8
	WriteWord(address uint32, value uint32)
	WriteHalf(address uint32, value uint16)
	WriteByte(address uint32, value uint8)
}

// exception codes used directly by the interpreter; the full catalogue
// lives in the cop0 package, re-exported here under the names the
// instruction handlers read most naturally.
const (
	excInterrupt  = cop0.Interrupt
	excAdEL       = cop0.AddressErrorLoad
	excAdES       = cop0.AddressErrorStore
	excIBE        = cop0.BusErrorIFetch
	excDBE        = cop0.BusErrorData
	excSyscall    = cop0.Syscall
	excBreak      = cop0.Breakpoint
	excReservedInstr = cop0.ReservedInstr
	excCopUnusable = cop0.CoprocessorUnusable
	excOverflow   = cop0.Overflow
)

// CPU holds the architectural state: registers, program counter pair, and
// the pending-exception signal instructions raise mid-decode.
type CPU struct {
	Regs Registers
	COP0 *cop0.COP0
	bus  Bus

	pc     uint32
	nextPC uint32

	branchTaken bool // set by a branch/jump this step; true when the instruction at pc is a branch-delay slot
	delaySlot   bool // set during Step when the instruction being executed is a branch-delay slot

	pendingException bool
	exceptionCode    cop0.ExceptionCode

	// BIOSCall is invoked, observationally only, whenever the fetch address
	// is one of the three BIOS function-call entry points (0xA0/0xB0/0xC0);
	// function is read out of $t1 (r9) the way the BIOS's own dispatcher
	// reads it. Used to intercept std_out_putchar without emulating the
	// kernel's jump table (spec.md §7 host-console scenario).
	BIOSCall func(vector uint32, function uint32, regs *Registers)
}

// New returns a CPU that begins fetching at the BIOS reset vector.
func New(bus Bus, c0 *cop0.COP0, resetVector uint32) *CPU {
	c := &CPU{bus: bus, COP0: c0}
	c.pc = resetVector
	c.nextPC = resetVector + 4
	return c
}

func (c *CPU) PC() uint32 { return c.pc }

// SetPC forces the fetch address, for tests and BIOS-skip harnesses.
func (c *CPU) SetPC(pc uint32) {
	c.pc = pc
	c.nextPC = pc + 4
}

// raiseException is called by instruction handlers mid-decode; Step
// detects the flag afterward and routes into COP0 instead of committing
// the instruction's register/memory side effects. Handlers that raise an
// exception must return immediately without performing further writes.
func (c *CPU) raiseException(code cop0.ExceptionCode) {
	c.pendingException = true
	c.exceptionCode = code
}

// Step executes exactly one instruction: fetch, load-delay commit, decode
// and dispatch, then branch/exception resolution (spec.md §4.2's
// fetch-decode-execute contract with load-delay and branch-delay slots).
func (c *CPU) Step() {
	if c.COP0.InterruptPending() {
		c.enterException(excInterrupt, c.pc, c.branchTaken)
		return
	}

	currentPC := c.pc
	if currentPC%4 != 0 {
		c.enterException(excAdEL, currentPC, c.branchTaken)
		return
	}

	raw := c.bus.ReadWord(currentPC)

	if c.BIOSCall != nil {
		if v := currentPC & 0x1FFFFFFF; v == 0xA0 || v == 0xB0 || v == 0xC0 {
			c.BIOSCall(v, c.Regs.Get(9), &c.Regs)
		}
	}

	c.pc = c.nextPC
	c.nextPC = c.pc + 4

	inDelaySlot := c.branchTaken
	c.branchTaken = false
	c.delaySlot = inDelaySlot

	c.Regs.AdvanceLoadDelay()

	c.pendingException = false
	decodeAndDispatch(c, raw)

	if c.pendingException {
		c.enterException(c.exceptionCode, currentPC, inDelaySlot)
	}
}

func (c *CPU) enterException(code cop0.ExceptionCode, at uint32, inDelaySlot bool) {
	vector := c.COP0.EnterException(code, at, inDelaySlot)
	c.pc = vector
	c.nextPC = vector + 4
	c.branchTaken = false
}

// branchTo redirects the delay slot: the instruction already fetched this
// step (the one at c.pc, about to run next) stays in place, but the word
// after it now comes from target instead of the linear successor.
func (c *CPU) branchTo(target uint32) {
	c.nextPC = target
	c.branchTaken = true
}

// branchIf takes a PC-relative branch (offset is a sign-extended
// word-aligned displacement already shifted left 2) when cond holds.
func (c *CPU) branchIf(cond bool, offset int32) {
	if !cond {
		return
	}
	c.branchTo(uint32(int32(c.pc) + offset))
}
