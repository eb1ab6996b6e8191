package cpu

// pendingLoad models the MIPS load-delay slot: a load's destination
// register is not visible until the instruction after the one that
// follows the load. Ported conceptually from jeebie/cpu.Register16's
// get/set wrapper idiom, generalized into a one-slot queue since loads
// apply to arbitrary GPRs rather than a fixed register pair.
type pendingLoad struct {
	reg   uint8
	value uint32
	valid bool
}

// Registers holds the 32 general-purpose registers plus HI/LO and the
// load-delay slot. Register 0 is hardwired to zero: writes are accepted
// and discarded, reads always return 0 (spec.md §3).
type Registers struct {
	gpr [32]uint32
	hi  uint32
	lo  uint32

	load     pendingLoad
	nextLoad pendingLoad
}

func (r *Registers) Get(index uint8) uint32 {
	return r.gpr[index]
}

// Set writes a GPR immediately (for ALU results); register 0 discards.
func (r *Registers) Set(index uint8, value uint32) {
	if index == 0 {
		return
	}
	r.gpr[index] = value
	// A same-cycle ALU write to a register that also has a load pending
	// for it cancels the load, matching real hardware's write-wins rule.
	if r.load.valid && r.load.reg == index {
		r.load.valid = false
	}
}

// ScheduleLoad queues a load result to become visible after the current
// instruction's delay slot (spec.md §4.2).
func (r *Registers) ScheduleLoad(index uint8, value uint32) {
	r.nextLoad = pendingLoad{reg: index, value: value, valid: index != 0}
}

// AdvanceLoadDelay commits the previous cycle's pending load and rotates
// in the newly scheduled one. Call exactly once per instruction, after
// fetch and before the instruction is decoded and executed (matching
// MIPS's load-delay-slot read-before-write ordering).
func (r *Registers) AdvanceLoadDelay() {
	if r.load.valid {
		r.gpr[r.load.reg] = r.load.value
	}
	r.load = r.nextLoad
	r.nextLoad = pendingLoad{}
}

func (r *Registers) HI() uint32 { return r.hi }
func (r *Registers) LO() uint32 { return r.lo }

func (r *Registers) SetHI(v uint32) { r.hi = v }
func (r *Registers) SetLO(v uint32) { r.lo = v }
