package cpu

import "github.com/kagami/psxgo/psx/bit"

func signExtend16(v uint16) uint32 { return bit.SignExtend16(v) }

func branchOffset(imm16 uint16) int32 {
	return int32(signExtend16(imm16)) << 2
}

// --- Jumps ---

func opJ(c *CPU, inst instruction) {
	target := (c.nextPC & 0xF0000000) | (inst.target << 2)
	c.branchTo(target)
}

func opJAL(c *CPU, inst instruction) {
	c.Regs.Set(31, c.pc+4)
	opJ(c, inst)
}

func opJR(c *CPU, inst instruction) {
	c.branchTo(c.Regs.Get(inst.rs))
}

func opJALR(c *CPU, inst instruction) {
	dest := c.pc + 4
	c.branchTo(c.Regs.Get(inst.rs))
	link := inst.rd
	if link == 0 {
		link = 31
	}
	c.Regs.Set(link, dest)
}

// --- Branches ---

func opBEQ(c *CPU, inst instruction) {
	c.branchIf(c.Regs.Get(inst.rs) == c.Regs.Get(inst.rt), branchOffset(inst.imm16))
}

func opBNE(c *CPU, inst instruction) {
	c.branchIf(c.Regs.Get(inst.rs) != c.Regs.Get(inst.rt), branchOffset(inst.imm16))
}

func opBLEZ(c *CPU, inst instruction) {
	c.branchIf(int32(c.Regs.Get(inst.rs)) <= 0, branchOffset(inst.imm16))
}

func opBGTZ(c *CPU, inst instruction) {
	c.branchIf(int32(c.Regs.Get(inst.rs)) > 0, branchOffset(inst.imm16))
}

func opBLTZ(c *CPU, inst instruction) {
	c.branchIf(int32(c.Regs.Get(inst.rs)) < 0, branchOffset(inst.imm16))
}

func opBGEZ(c *CPU, inst instruction) {
	c.branchIf(int32(c.Regs.Get(inst.rs)) >= 0, branchOffset(inst.imm16))
}

func opBLTZAL(c *CPU, inst instruction) {
	c.Regs.Set(31, c.pc+4)
	opBLTZ(c, inst)
}

func opBGEZAL(c *CPU, inst instruction) {
	c.Regs.Set(31, c.pc+4)
	opBGEZ(c, inst)
}

// --- Immediate ALU ---

func opADDI(c *CPU, inst instruction) {
	a := int32(c.Regs.Get(inst.rs))
	b := int32(signExtend16(inst.imm16))
	result := a + b
	if overflowsAdd(a, b, result) {
		c.raiseException(excOverflow)
		return
	}
	c.Regs.Set(inst.rt, uint32(result))
}

func opADDIU(c *CPU, inst instruction) {
	c.Regs.Set(inst.rt, c.Regs.Get(inst.rs)+signExtend16(inst.imm16))
}

func opSLTI(c *CPU, inst instruction) {
	v := uint32(0)
	if int32(c.Regs.Get(inst.rs)) < int32(signExtend16(inst.imm16)) {
		v = 1
	}
	c.Regs.Set(inst.rt, v)
}

func opSLTIU(c *CPU, inst instruction) {
	v := uint32(0)
	if c.Regs.Get(inst.rs) < signExtend16(inst.imm16) {
		v = 1
	}
	c.Regs.Set(inst.rt, v)
}

func opANDI(c *CPU, inst instruction) {
	c.Regs.Set(inst.rt, c.Regs.Get(inst.rs)&uint32(inst.imm16))
}

func opORI(c *CPU, inst instruction) {
	c.Regs.Set(inst.rt, c.Regs.Get(inst.rs)|uint32(inst.imm16))
}

func opXORI(c *CPU, inst instruction) {
	c.Regs.Set(inst.rt, c.Regs.Get(inst.rs)^uint32(inst.imm16))
}

func opLUI(c *CPU, inst instruction) {
	c.Regs.Set(inst.rt, uint32(inst.imm16)<<16)
}

// --- Register ALU ---

func opADD(c *CPU, inst instruction) {
	a := int32(c.Regs.Get(inst.rs))
	b := int32(c.Regs.Get(inst.rt))
	result := a + b
	if overflowsAdd(a, b, result) {
		c.raiseException(excOverflow)
		return
	}
	c.Regs.Set(inst.rd, uint32(result))
}

func opADDU(c *CPU, inst instruction) {
	c.Regs.Set(inst.rd, c.Regs.Get(inst.rs)+c.Regs.Get(inst.rt))
}

func opSUB(c *CPU, inst instruction) {
	a := int32(c.Regs.Get(inst.rs))
	b := int32(c.Regs.Get(inst.rt))
	result := a - b
	if overflowsSub(a, b, result) {
		c.raiseException(excOverflow)
		return
	}
	c.Regs.Set(inst.rd, uint32(result))
}

func opSUBU(c *CPU, inst instruction) {
	c.Regs.Set(inst.rd, c.Regs.Get(inst.rs)-c.Regs.Get(inst.rt))
}

func opAND(c *CPU, inst instruction) {
	c.Regs.Set(inst.rd, c.Regs.Get(inst.rs)&c.Regs.Get(inst.rt))
}

func opOR(c *CPU, inst instruction) {
	c.Regs.Set(inst.rd, c.Regs.Get(inst.rs)|c.Regs.Get(inst.rt))
}

func opXOR(c *CPU, inst instruction) {
	c.Regs.Set(inst.rd, c.Regs.Get(inst.rs)^c.Regs.Get(inst.rt))
}

func opNOR(c *CPU, inst instruction) {
	c.Regs.Set(inst.rd, ^(c.Regs.Get(inst.rs) | c.Regs.Get(inst.rt)))
}

func opSLT(c *CPU, inst instruction) {
	v := uint32(0)
	if int32(c.Regs.Get(inst.rs)) < int32(c.Regs.Get(inst.rt)) {
		v = 1
	}
	c.Regs.Set(inst.rd, v)
}

func opSLTU(c *CPU, inst instruction) {
	v := uint32(0)
	if c.Regs.Get(inst.rs) < c.Regs.Get(inst.rt) {
		v = 1
	}
	c.Regs.Set(inst.rd, v)
}

// --- Shifts ---

func opSLL(c *CPU, inst instruction) {
	c.Regs.Set(inst.rd, c.Regs.Get(inst.rt)<<inst.shamt)
}

func opSRL(c *CPU, inst instruction) {
	c.Regs.Set(inst.rd, c.Regs.Get(inst.rt)>>inst.shamt)
}

func opSRA(c *CPU, inst instruction) {
	c.Regs.Set(inst.rd, uint32(int32(c.Regs.Get(inst.rt))>>inst.shamt))
}

func opSLLV(c *CPU, inst instruction) {
	c.Regs.Set(inst.rd, c.Regs.Get(inst.rt)<<(c.Regs.Get(inst.rs)&0x1F))
}

func opSRLV(c *CPU, inst instruction) {
	c.Regs.Set(inst.rd, c.Regs.Get(inst.rt)>>(c.Regs.Get(inst.rs)&0x1F))
}

func opSRAV(c *CPU, inst instruction) {
	c.Regs.Set(inst.rd, uint32(int32(c.Regs.Get(inst.rt))>>(c.Regs.Get(inst.rs)&0x1F)))
}

// --- Multiply/divide ---

func opMULT(c *CPU, inst instruction) {
	a := int64(int32(c.Regs.Get(inst.rs)))
	b := int64(int32(c.Regs.Get(inst.rt)))
	result := uint64(a * b)
	c.Regs.SetLO(uint32(result))
	c.Regs.SetHI(uint32(result >> 32))
}

func opMULTU(c *CPU, inst instruction) {
	result := uint64(c.Regs.Get(inst.rs)) * uint64(c.Regs.Get(inst.rt))
	c.Regs.SetLO(uint32(result))
	c.Regs.SetHI(uint32(result >> 32))
}

func opDIV(c *CPU, inst instruction) {
	n := int32(c.Regs.Get(inst.rs))
	d := int32(c.Regs.Get(inst.rt))
	switch {
	case d == 0:
		c.Regs.SetHI(uint32(n))
		if n >= 0 {
			c.Regs.SetLO(0xFFFFFFFF)
		} else {
			c.Regs.SetLO(1)
		}
	case n == -0x80000000 && d == -1:
		c.Regs.SetLO(0x80000000)
		c.Regs.SetHI(0)
	default:
		c.Regs.SetLO(uint32(n / d))
		c.Regs.SetHI(uint32(n % d))
	}
}

func opDIVU(c *CPU, inst instruction) {
	n := c.Regs.Get(inst.rs)
	d := c.Regs.Get(inst.rt)
	if d == 0 {
		c.Regs.SetLO(0xFFFFFFFF)
		c.Regs.SetHI(n)
		return
	}
	c.Regs.SetLO(n / d)
	c.Regs.SetHI(n % d)
}

func opMFHI(c *CPU, inst instruction) { c.Regs.Set(inst.rd, c.Regs.HI()) }
func opMTHI(c *CPU, inst instruction) { c.Regs.SetHI(c.Regs.Get(inst.rs)) }
func opMFLO(c *CPU, inst instruction) { c.Regs.Set(inst.rd, c.Regs.LO()) }
func opMTLO(c *CPU, inst instruction) { c.Regs.SetLO(c.Regs.Get(inst.rs)) }

// --- Loads/stores ---

func opLB(c *CPU, inst instruction) {
	addr := c.Regs.Get(inst.rs) + signExtend16(inst.imm16)
	v := bit.SignExtend8(c.bus.ReadByte(addr))
	c.Regs.ScheduleLoad(inst.rt, v)
}

func opLBU(c *CPU, inst instruction) {
	addr := c.Regs.Get(inst.rs) + signExtend16(inst.imm16)
	c.Regs.ScheduleLoad(inst.rt, uint32(c.bus.ReadByte(addr)))
}

func opLH(c *CPU, inst instruction) {
	addr := c.Regs.Get(inst.rs) + signExtend16(inst.imm16)
	if addr%2 != 0 {
		c.raiseException(excAdEL)
		return
	}
	v := bit.SignExtend16(c.bus.ReadHalf(addr))
	c.Regs.ScheduleLoad(inst.rt, v)
}

func opLHU(c *CPU, inst instruction) {
	addr := c.Regs.Get(inst.rs) + signExtend16(inst.imm16)
	if addr%2 != 0 {
		c.raiseException(excAdEL)
		return
	}
	c.Regs.ScheduleLoad(inst.rt, uint32(c.bus.ReadHalf(addr)))
}

func opLW(c *CPU, inst instruction) {
	addr := c.Regs.Get(inst.rs) + signExtend16(inst.imm16)
	if addr%4 != 0 {
		c.raiseException(excAdEL)
		return
	}
	c.Regs.ScheduleLoad(inst.rt, c.bus.ReadWord(addr))
}

// opLWL/opLWR merge an unaligned word load across two memory accesses,
// combining with the not-yet-committed value of rt: if a load to the same
// register is already pending this cycle, that pending value is the
// merge base instead of the committed register (spec.md §4.2 edge case).
func opLWL(c *CPU, inst instruction) {
	addr := c.Regs.Get(inst.rs) + signExtend16(inst.imm16)
	aligned := addr &^ 3
	word := c.bus.ReadWord(aligned)
	cur := c.loadMergeBase(inst.rt)

	var merged uint32
	switch addr & 3 {
	case 0:
		merged = (cur & 0x00FFFFFF) | (word << 24)
	case 1:
		merged = (cur & 0x0000FFFF) | (word << 16)
	case 2:
		merged = (cur & 0x000000FF) | (word << 8)
	case 3:
		merged = word
	}
	c.Regs.ScheduleLoad(inst.rt, merged)
}

func opLWR(c *CPU, inst instruction) {
	addr := c.Regs.Get(inst.rs) + signExtend16(inst.imm16)
	aligned := addr &^ 3
	word := c.bus.ReadWord(aligned)
	cur := c.loadMergeBase(inst.rt)

	var merged uint32
	switch addr & 3 {
	case 0:
		merged = word
	case 1:
		merged = (cur & 0xFF000000) | (word >> 8)
	case 2:
		merged = (cur & 0xFFFF0000) | (word >> 16)
	case 3:
		merged = (cur & 0xFFFFFF00) | (word >> 24)
	}
	c.Regs.ScheduleLoad(inst.rt, merged)
}

// loadMergeBase returns the value LWL/LWR should merge new bytes into:
// the register's already-pending load value if one targets it, otherwise
// its committed value.
func (c *CPU) loadMergeBase(reg uint8) uint32 {
	if c.Regs.load.valid && c.Regs.load.reg == reg {
		return c.Regs.load.value
	}
	return c.Regs.Get(reg)
}

func opSB(c *CPU, inst instruction) {
	addr := c.Regs.Get(inst.rs) + signExtend16(inst.imm16)
	c.bus.WriteByte(addr, uint8(c.Regs.Get(inst.rt)))
}

func opSH(c *CPU, inst instruction) {
	addr := c.Regs.Get(inst.rs) + signExtend16(inst.imm16)
	if addr%2 != 0 {
		c.raiseException(excAdES)
		return
	}
	c.bus.WriteHalf(addr, uint16(c.Regs.Get(inst.rt)))
}

func opSW(c *CPU, inst instruction) {
	addr := c.Regs.Get(inst.rs) + signExtend16(inst.imm16)
	if addr%4 != 0 {
		c.raiseException(excAdES)
		return
	}
	c.bus.WriteWord(addr, c.Regs.Get(inst.rt))
}

func opSWL(c *CPU, inst instruction) {
	addr := c.Regs.Get(inst.rs) + signExtend16(inst.imm16)
	aligned := addr &^ 3
	cur := c.bus.ReadWord(aligned)
	v := c.Regs.Get(inst.rt)

	var merged uint32
	switch addr & 3 {
	case 0:
		merged = (cur & 0xFFFFFF00) | (v >> 24)
	case 1:
		merged = (cur & 0xFFFF0000) | (v >> 16)
	case 2:
		merged = (cur & 0xFF000000) | (v >> 8)
	case 3:
		merged = v
	}
	c.bus.WriteWord(aligned, merged)
}

func opSWR(c *CPU, inst instruction) {
	addr := c.Regs.Get(inst.rs) + signExtend16(inst.imm16)
	aligned := addr &^ 3
	cur := c.bus.ReadWord(aligned)
	v := c.Regs.Get(inst.rt)

	var merged uint32
	switch addr & 3 {
	case 0:
		merged = v
	case 1:
		merged = (cur & 0x000000FF) | (v << 8)
	case 2:
		merged = (cur & 0x0000FFFF) | (v << 16)
	case 3:
		merged = (cur & 0x00FFFFFF) | (v << 24)
	}
	c.bus.WriteWord(aligned, merged)
}

// --- System/coprocessor ---

func opSYSCALL(c *CPU, inst instruction) { c.raiseException(excSyscall) }
func opBREAK(c *CPU, inst instruction)   { c.raiseException(excBreak) }

// opCOP0 dispatches MFC0/MTC0/RFE via the rs field (MF=0x00, MT=0x04,
// RFE uses the CO/funct encoding 0x10/0x01).
func opCOP0(c *CPU, inst instruction) {
	switch inst.rs {
	case 0x00: // MFC0
		c.Regs.ScheduleLoad(inst.rt, c.cop0Read(inst.rd))
	case 0x04: // MTC0
		c.cop0Write(inst.rd, c.Regs.Get(inst.rt))
	case 0x10:
		if inst.funct == 0x01 {
			c.COP0.ReturnFromException()
		}
	default:
		c.raiseException(excCopUnusable)
	}
}

func (c *CPU) cop0Read(reg uint8) uint32 {
	switch reg {
	case 12:
		return c.COP0.SR()
	case 13:
		return c.COP0.Cause()
	case 14:
		return c.COP0.EPC()
	default:
		return 0
	}
}

func (c *CPU) cop0Write(reg uint8, value uint32) {
	switch reg {
	case 12:
		c.COP0.SetSR(value)
	case 13:
		c.COP0.SetCause(value)
	}
}

func overflowsAdd(a, b, result int32) bool {
	return (a > 0 && b > 0 && result < 0) || (a < 0 && b < 0 && result >= 0)
}

func overflowsSub(a, b, result int32) bool {
	return (a >= 0 && b < 0 && result < 0) || (a < 0 && b >= 0 && result >= 0)
}
