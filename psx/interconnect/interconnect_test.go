package interconnect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kagami/psxgo/psx/cdrom"
	"github.com/kagami/psxgo/psx/controller"
	"github.com/kagami/psxgo/psx/cop0"
	"github.com/kagami/psxgo/psx/dma"
	"github.com/kagami/psxgo/psx/gpu"
	"github.com/kagami/psxgo/psx/intc"
	"github.com/kagami/psxgo/psx/mem"
	"github.com/kagami/psxgo/psx/raster"
	"github.com/kagami/psxgo/psx/timer"
)

func newTestBus(t *testing.T) *Bus {
	t.Helper()
	bios, err := mem.NewBIOSFromBytes(make([]byte, 0x80000))
	require.NoError(t, err)

	ram := mem.NewRAM(2 * 1024 * 1024)
	scratch := mem.NewScratchpad()
	c0 := cop0.New()
	ic := intc.New()
	g := gpu.New(raster.New(nil), func() {}, nil)
	cd := cdrom.New(func() {}, nil)
	d := dma.New(ram, g, cd, func() {}, nil)
	tm := timer.New(func() {}, func() {}, func() {})
	pad := controller.New(func() {})

	return New(bios, ram, scratch, c0, ic, d, g, cd, tm, pad, nil)
}

func TestKUSEGAndKSEG0MapToTheSameRAM(t *testing.T) {
	b := newTestBus(t)
	b.WriteWord(0x00001000, 0xDEADBEEF)
	assert.EqualValues(t, 0xDEADBEEF, b.ReadWord(0x80001000))
	assert.EqualValues(t, 0xDEADBEEF, b.ReadWord(0xA0001000))
}

func TestRAMMirrorsAcrossFourEightMBWindows(t *testing.T) {
	b := newTestBus(t)
	b.WriteWord(0x00000010, 0x12345678)
	assert.EqualValues(t, 0x12345678, b.ReadWord(0x00200010))
	assert.EqualValues(t, 0x12345678, b.ReadWord(0x00400010))
}

func TestCacheIsolationDropsWrites(t *testing.T) {
	b := newTestBus(t)
	b.WriteWord(0x00002000, 0x11111111)
	b.COP0.SetSR(1 << 16) // IsC
	b.WriteWord(0x00002000, 0x22222222)
	b.COP0.SetSR(0)
	assert.EqualValues(t, 0x11111111, b.ReadWord(0x00002000))
}

func TestBIOSIsReachableThroughKSEG1(t *testing.T) {
	bios, err := mem.NewBIOSFromBytes(append(make([]byte, 0x7FFFC), 0xAA, 0xBB, 0xCC, 0xDD))
	require.NoError(t, err)
	b := &Bus{
		BIOS: bios, RAM: mem.NewRAM(2 * 1024 * 1024), Scratch: mem.NewScratchpad(),
		COP0: cop0.New(), INTC: intc.New(), logger: nil,
	}
	assert.EqualValues(t, 0xDDCCBBAA, b.ReadWord(0xBFC7FFFC))
}

func TestIntcRegistersRoundTripThroughTheBus(t *testing.T) {
	b := newTestBus(t)
	b.INTC.Raise(intc.VBLANK)
	assert.EqualValues(t, 1<<intc.VBLANK, b.ReadWord(0x1F801070))

	b.WriteWord(0x1F801074, 1<<intc.VBLANK)
	assert.True(t, b.INTC.Pending())
}
