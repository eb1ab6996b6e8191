package cdrom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCDROM() (*CDROM, *int) {
	raises := 0
	return New(func() { raises++ }, nil), &raises
}

func stepUntilResponse(t *testing.T, c *CDROM) {
	t.Helper()
	for i := 0; i < 10 && len(c.response) == 0; i++ {
		c.Step()
	}
	require.NotEmpty(t, c.response)
}

func TestGetstatReturnsSpindleMotorStatusAfterInit(t *testing.T) {
	c, _ := newTestCDROM()
	c.WriteByte(0, 0) // index 0
	c.WriteByte(1, 0x01)
	stepUntilResponse(t, c)
	assert.EqualValues(t, statSpindleMotor, c.ReadByte(1))
}

func TestInterruptOnlyFiresWhenEnabled(t *testing.T) {
	c, raises := newTestCDROM()
	c.WriteByte(0, 0)
	c.WriteByte(1, 0x01) // Getstat, no enable bits set
	stepUntilResponse(t, c)
	assert.Zero(t, *raises)
	c.ReadByte(1) // drain the first response so the next wait sees the new one

	c.WriteByte(0, 1) // index 1 selects the interrupt-enable register
	c.WriteByte(2, 0x1F)
	c.WriteByte(0, 0)
	c.WriteByte(1, 0x01)
	stepUntilResponse(t, c)
	assert.Equal(t, 1, *raises)
}

func TestAcknowledgeInterruptClearsFlagBits(t *testing.T) {
	c, _ := newTestCDROM()
	c.WriteByte(0, 0)
	c.WriteByte(1, 0x01)
	stepUntilResponse(t, c)
	require.NotZero(t, c.interruptFlag)

	c.WriteByte(0, 1)
	c.WriteByte(3, 0x1F)
	assert.Zero(t, c.interruptFlag)
}

func TestUnknownCommandReportsError(t *testing.T) {
	c, _ := newTestCDROM()
	c.WriteByte(0, 0)
	c.WriteByte(1, 0xFF)
	stepUntilResponse(t, c)
	assert.NotZero(t, c.ReadByte(1)&statError)
}
