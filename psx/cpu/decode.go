package cpu

// instruction is a decoded 32-bit MIPS word with every field pre-extracted;
// individual handlers read only the fields relevant to their encoding.
type instruction struct {
	raw uint32

	op     uint8 // bits 26-31
	rs     uint8 // bits 21-25
	rt     uint8 // bits 16-20
	rd     uint8 // bits 11-15
	shamt  uint8 // bits 6-10
	funct  uint8 // bits 0-5
	imm16  uint16
	target uint32 // bits 0-25, for J/JAL
}

func decodeWord(raw uint32) instruction {
	return instruction{
		raw:    raw,
		op:     uint8(raw >> 26),
		rs:     uint8((raw >> 21) & 0x1F),
		rt:     uint8((raw >> 16) & 0x1F),
		rd:     uint8((raw >> 11) & 0x1F),
		shamt:  uint8((raw >> 6) & 0x1F),
		funct:  uint8(raw & 0x3F),
		imm16:  uint16(raw & 0xFFFF),
		target: raw & 0x03FFFFFF,
	}
}

// Opcode is an instruction handler, mirroring jeebie/cpu.Opcode's
// function-table dispatch idiom.
type Opcode func(c *CPU, inst instruction)

// primaryTable dispatches on the 6-bit primary opcode field. SPECIAL
// (0x00) and REGIMM (0x01) forward to their own funct/rt sub-tables.
var primaryTable = map[uint8]Opcode{
	0x00: execSpecial,
	0x01: execRegimm,
	0x02: opJ,
	0x03: opJAL,
	0x04: opBEQ,
	0x05: opBNE,
	0x06: opBLEZ,
	0x07: opBGTZ,
	0x08: opADDI,
	0x09: opADDIU,
	0x0A: opSLTI,
	0x0B: opSLTIU,
	0x0C: opANDI,
	0x0D: opORI,
	0x0E: opXORI,
	0x0F: opLUI,
	0x10: opCOP0,
	0x20: opLB,
	0x21: opLH,
	0x22: opLWL,
	0x23: opLW,
	0x24: opLBU,
	0x25: opLHU,
	0x26: opLWR,
	0x28: opSB,
	0x29: opSH,
	0x2A: opSWL,
	0x2B: opSW,
	0x2E: opSWR,
}

var specialTable = map[uint8]Opcode{
	0x00: opSLL,
	0x02: opSRL,
	0x03: opSRA,
	0x04: opSLLV,
	0x06: opSRLV,
	0x07: opSRAV,
	0x08: opJR,
	0x09: opJALR,
	0x0C: opSYSCALL,
	0x0D: opBREAK,
	0x10: opMFHI,
	0x11: opMTHI,
	0x12: opMFLO,
	0x13: opMTLO,
	0x18: opMULT,
	0x19: opMULTU,
	0x1A: opDIV,
	0x1B: opDIVU,
	0x20: opADD,
	0x21: opADDU,
	0x22: opSUB,
	0x23: opSUBU,
	0x24: opAND,
	0x25: opOR,
	0x26: opXOR,
	0x27: opNOR,
	0x2A: opSLT,
	0x2B: opSLTU,
}

func execSpecial(c *CPU, inst instruction) {
	if h, ok := specialTable[inst.funct]; ok {
		h(c, inst)
		return
	}
	c.raiseException(excReservedInstr)
}

// regimm covers BLTZ/BGEZ and their link variants, selected by rt.
func execRegimm(c *CPU, inst instruction) {
	switch inst.rt {
	case 0x00:
		opBLTZ(c, inst)
	case 0x01:
		opBGEZ(c, inst)
	case 0x10:
		opBLTZAL(c, inst)
	case 0x11:
		opBGEZAL(c, inst)
	default:
		c.raiseException(excReservedInstr)
	}
}

func decodeAndDispatch(c *CPU, raw uint32) {
	inst := decodeWord(raw)
	if h, ok := primaryTable[inst.op]; ok {
		h(c, inst)
		return
	}
	c.raiseException(excReservedInstr)
}
