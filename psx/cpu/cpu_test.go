package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kagami/psxgo/psx/cop0"
)

type fakeBus struct {
	mem map[uint32]uint32
}

func newFakeBus() *fakeBus { return &fakeBus{mem: make(map[uint32]uint32)} }

func (b *fakeBus) ReadWord(addr uint32) uint32  { return b.mem[addr&^3] }
func (b *fakeBus) ReadHalf(addr uint32) uint16  { return uint16(b.mem[addr&^3] >> ((addr & 2) * 8)) }
func (b *fakeBus) ReadByte(addr uint32) uint8   { return uint8(b.mem[addr&^3] >> ((addr & 3) * 8)) }
func (b *fakeBus) WriteWord(addr uint32, v uint32) { b.mem[addr&^3] = v }
func (b *fakeBus) WriteHalf(addr uint32, v uint16) {
	word := b.mem[addr&^3]
	shift := (addr & 2) * 8
	mask := uint32(0xFFFF) << shift
	b.mem[addr&^3] = (word &^ mask) | (uint32(v) << shift)
}
func (b *fakeBus) WriteByte(addr uint32, v uint8) {
	word := b.mem[addr&^3]
	shift := (addr & 3) * 8
	mask := uint32(0xFF) << shift
	b.mem[addr&^3] = (word &^ mask) | (uint32(v) << shift)
}

func newTestCPU() (*CPU, *fakeBus) {
	bus := newFakeBus()
	c0 := cop0.New()
	return New(bus, c0, 0x1000), bus
}

func (b *fakeBus) load(pc uint32, words ...uint32) {
	for i, w := range words {
		b.mem[pc+uint32(i*4)] = w
	}
}

func encodeI(op, rs, rt uint8, imm uint16) uint32 {
	return uint32(op)<<26 | uint32(rs)<<21 | uint32(rt)<<16 | uint32(imm)
}

func encodeR(rs, rt, rd, shamt, funct uint8) uint32 {
	return uint32(rs)<<21 | uint32(rt)<<16 | uint32(rd)<<11 | uint32(shamt)<<6 | uint32(funct)
}

func encodeJ(op uint8, target uint32) uint32 {
	return uint32(op)<<26 | (target >> 2 & 0x03FFFFFF)
}

func TestZeroRegisterAlwaysReadsZero(t *testing.T) {
	c, bus := newTestCPU()
	bus.load(0x1000, encodeI(0x09, 0, 0, 42)) // ADDIU r0, r0, 42
	c.Step()
	assert.Zero(t, c.Regs.Get(0))
}

func TestBranchDelaySlotExecutesBeforeJump(t *testing.T) {
	c, bus := newTestCPU()
	// BEQ r0, r0, +2 (branch always taken)
	// ADDIU r1, r0, 7      <- delay slot, must execute
	// ADDIU r1, r0, 99     <- skipped: the branch jumps past it
	// ADDIU r2, r0, 1      <- branch target, landed on
	bus.load(0x1000,
		encodeI(0x04, 0, 0, 2),
		encodeI(0x09, 0, 1, 7),
		encodeI(0x09, 0, 1, 99),
		encodeI(0x09, 0, 2, 1),
	)
	c.Step() // BEQ
	c.Step() // delay slot: r1 = 7
	assert.EqualValues(t, 7, c.Regs.Get(1))
	c.Step() // branch target: r2 = 1 (0x100C)
	assert.EqualValues(t, 1, c.Regs.Get(2))
}

func TestLoadDelaySlotHidesValueForOneInstruction(t *testing.T) {
	c, bus := newTestCPU()
	bus.mem[0x2000] = 0xDEADBEEF
	bus.load(0x1000,
		encodeI(0x09, 0, 4, 0x2000>>0&0xFFFF), // ADDIU r4, r0, 0x2000 (imm fits 16 bits here)
		encodeI(0x23, 4, 5, 0),                // LW r5, 0(r4)
		encodeI(0x09, 0, 6, 111),              // unrelated instruction: delay slot
		encodeI(0x09, 5, 7, 0),                // ADDIU r7, r5, 0 -- r5 must now be visible
	)
	c.Step()                      // r4 = 0x2000
	c.Step()                      // LW issued, result not yet visible
	assert.Zero(t, c.Regs.Get(5), "load result must not be visible the same instruction")
	c.Step()                      // delay slot instruction executes; load still not visible to it
	c.Step()                      // instruction after the delay slot: r5 is now visible
	assert.EqualValues(t, 0xDEADBEEF, c.Regs.Get(7))
}

func TestSyscallEntersExceptionVector(t *testing.T) {
	c, bus := newTestCPU()
	bus.load(0x1000, 0x0000000C) // SYSCALL
	c.Step()
	assert.EqualValues(t, 0x80000080, c.PC())
	assert.EqualValues(t, cop0.Syscall, c.COP0.ExcCode())
	assert.EqualValues(t, 0x1000, c.COP0.EPC())
	assert.False(t, c.COP0.BranchDelay())
}

func TestOverflowTrapsOnAdd(t *testing.T) {
	c, bus := newTestCPU()
	c.Regs.Set(1, 0x7FFFFFFF)
	bus.load(0x1000, encodeR(1, 1, 2, 0, 0x20)) // ADD r2, r1, r1
	c.Step()
	require.EqualValues(t, cop0.Overflow, c.COP0.ExcCode())
	assert.Zero(t, c.Regs.Get(2), "destination register must not be written on overflow")
}

func TestJumpAndLinkSetsReturnAddress(t *testing.T) {
	c, bus := newTestCPU()
	bus.load(0x1000, encodeJ(0x03, 0x2000), encodeI(0x09, 0, 0, 0))
	c.Step()
	c.Step()
	assert.EqualValues(t, 0x1008, c.Regs.Get(31))
	assert.EqualValues(t, 0x2000, c.PC())
}
