package timer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestBank() (*Bank, *bool, *bool, *bool) {
	fired0, fired1, fired2 := false, false, false
	b := New(func() { fired0 = true }, func() { fired1 = true }, func() { fired2 = true })
	return b, &fired0, &fired1, &fired2
}

func TestCounterIncrementsOnStep(t *testing.T) {
	b, _, _, _ := newTestBank()
	b.Step()
	assert.EqualValues(t, 1, b.ReadWord(0x0))
}

func TestTargetHitRaisesIRQWhenEnabled(t *testing.T) {
	b, fired0, _, _ := newTestBank()
	b.WriteWord(0x08, 5)                 // Timer0 target
	b.WriteWord(0x04, modeIRQOnTarget) // enable target IRQ

	for i := 0; i < 5; i++ {
		b.Step()
	}

	assert.True(t, *fired0)
	assert.EqualValues(t, 5, b.ReadWord(0x0))
}

func TestResetOnTargetWrapsCounterToZero(t *testing.T) {
	b, _, _, _ := newTestBank()
	b.WriteWord(0x08, 3)
	b.WriteWord(0x04, modeResetOnTarget)

	for i := 0; i < 3; i++ {
		b.Step()
	}

	assert.EqualValues(t, 0, b.ReadWord(0x0))
}

func TestOverflowRaisesIRQWhenEnabled(t *testing.T) {
	b, _, fired1, _ := newTestBank()
	// Timer1 register block starts at offset 0x10.
	// Mode first: writing the mode register resets the counter.
	b.WriteWord(0x14, modeIRQOnOverflow)
	b.WriteWord(0x10, 0xFFFF)

	b.Step()

	assert.True(t, *fired1)
	assert.EqualValues(t, 0, b.ReadWord(0x10))
}

func TestReachedBitsClearOnModeRead(t *testing.T) {
	b, _, _, _ := newTestBank()
	b.WriteWord(0x28, 1) // Timer2 target
	b.WriteWord(0x24, modeIRQOnTarget)
	b.Step()

	mode := b.ReadWord(0x24)
	assert.NotZero(t, mode&modeReachedTarget)

	mode = b.ReadWord(0x24)
	assert.Zero(t, mode&modeReachedTarget)
}

func TestWritingModeResetsCounter(t *testing.T) {
	b, _, _, _ := newTestBank()
	b.Step()
	b.Step()
	assert.EqualValues(t, 2, b.ReadWord(0x0))

	b.WriteWord(0x04, 0)
	assert.EqualValues(t, 0, b.ReadWord(0x0))
}
