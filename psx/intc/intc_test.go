package intc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRaiseLatchesStatusRegardlessOfMask(t *testing.T) {
	c := New()
	c.Raise(GPU)
	assert.Equal(t, uint32(1<<GPU), c.Status())
	assert.False(t, c.Pending())
}

func TestPendingRequiresMaskedBit(t *testing.T) {
	c := New()
	c.Raise(VBLANK)
	c.WriteMask(1 << Timer0)
	assert.False(t, c.Pending())

	c.WriteMask(1 << VBLANK)
	assert.True(t, c.Pending())
}

func TestWriteStatusClearsOnlyZeroBits(t *testing.T) {
	c := New()
	c.Raise(VBLANK)
	c.Raise(DMA)

	// Acknowledge VBLANK only: its bit is 0, every other bit is 1.
	ack := lineMask &^ (1 << VBLANK)
	c.WriteStatus(ack)

	assert.Equal(t, uint32(1<<DMA), c.Status())
}

func TestMaskAndStatusIgnoreBitsBeyondTheElevenLines(t *testing.T) {
	c := New()
	c.WriteMask(0xFFFFFFFF)
	assert.Equal(t, uint32(lineMask), c.Mask())

	c.Raise(LightpenPIO)
	c.status |= 1 << 31
	assert.Equal(t, uint32(1<<LightpenPIO), c.Status())
}
