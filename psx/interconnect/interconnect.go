// Package interconnect implements the PSX memory interconnect: physical
// address decoding across KUSEG/KSEG0/KSEG1/KSEG2, the region-to-device
// dispatch table, and the cache-isolation/access-width rules the CPU core
// relies on. Grounded on jeebie/memory.MMU's regionMap byte-dispatch idiom
// (generalized here from a flat 256-entry table, which only works for a
// 64KiB address space, to range checks over the PSX's 4GiB one) and on
// original_source/src/Interconnect.cpp's regionMask table for KSEG masking.
package interconnect

import (
	"fmt"
	"log/slog"

	"github.com/kagami/psxgo/psx/addr"
	"github.com/kagami/psxgo/psx/cdrom"
	"github.com/kagami/psxgo/psx/controller"
	"github.com/kagami/psxgo/psx/cop0"
	"github.com/kagami/psxgo/psx/dma"
	"github.com/kagami/psxgo/psx/gpu"
	"github.com/kagami/psxgo/psx/intc"
	"github.com/kagami/psxgo/psx/mem"
	"github.com/kagami/psxgo/psx/timer"
)

// regionMask is indexed by the address's top 3 bits (address>>29): KUSEG is
// a 1:1 identity window (4 entries covering 2048MB), KSEG0 strips the top
// bit, KSEG1 strips the top 3 bits, KSEG2 is identity again.
//
// Ported verbatim from original_source/src/Interconnect.cpp.
var regionMask = [8]uint32{
	0xffffffff, 0xffffffff, 0xffffffff, 0xffffffff, // KUSEG
	0x7fffffff, // KSEG0
	0x1fffffff, // KSEG1
	0xffffffff, 0xffffffff, // KSEG2
}

func maskRegion(address uint32) uint32 {
	return address & regionMask[address>>29]
}

// Bus wires together every addressable device and implements the CPU's
// memory-access surface (spec.md §4.1).
type Bus struct {
	BIOS  *mem.BIOS
	RAM   *mem.RAM
	Scratch *mem.Scratchpad

	COP0 *cop0.COP0
	INTC *intc.Controller
	DMA  *dma.Controller
	GPU  *gpu.GPU
	CDROM *cdrom.CDROM
	Timers *timer.Bank
	Pad  *controller.Controller

	logger *slog.Logger
}

// New assembles a Bus from already-constructed devices. Callers build each
// device and its cross-device callbacks (e.g. DMA's raise-IRQ hook) before
// wiring them in here.
func New(bios *mem.BIOS, ram *mem.RAM, scratch *mem.Scratchpad, c0 *cop0.COP0, ic *intc.Controller, d *dma.Controller, g *gpu.GPU, cd *cdrom.CDROM, timers *timer.Bank, pad *controller.Controller, logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{
		BIOS: bios, RAM: ram, Scratch: scratch,
		COP0: c0, INTC: ic, DMA: d, GPU: g, CDROM: cd, Timers: timers, Pad: pad,
		logger: logger,
	}
}

// within reports whether masked falls in [base, base+size).
func within(masked, base, size uint32) bool {
	return masked >= base && masked-base < size
}

// ReadWord reads a 32-bit value. SR.IsC is not consulted here: loads while
// the cache is isolated read the backing device as usual.
func (b *Bus) ReadWord(address uint32) uint32 {
	masked := maskRegion(address)

	switch {
	case within(masked, addr.RAMBase, addr.RAMMirrorLen):
		return b.RAM.ReadWord(masked % addr.RAMSize)
	case within(masked, addr.ScratchpadBase, addr.ScratchpadSize):
		return b.Scratch.ReadWord(masked - addr.ScratchpadBase)
	case within(masked, addr.BIOSBase, addr.BIOSSize):
		return b.BIOS.ReadWord(masked - addr.BIOSBase)
	case within(masked, addr.IntcBase, addr.IntcSize):
		return b.readIntc(masked - addr.IntcBase)
	case within(masked, addr.DMABase, addr.DMASize):
		return b.readDMA(masked - addr.DMABase)
	case within(masked, addr.GPUBase, addr.GPUSize):
		return b.readGPU(masked - addr.GPUBase)
	case within(masked, addr.TimerBase, addr.TimerSize):
		return b.Timers.ReadWord(masked - addr.TimerBase)
	case within(masked, addr.CDROMBase, addr.CDROMSize):
		return uint32(b.CDROM.ReadByte(masked - addr.CDROMBase))
	case within(masked, addr.MemControlBase, addr.MemControlSize):
		return 0
	case within(masked, addr.SIOBase, addr.SIOSize):
		return b.Pad.ReadWord(masked - addr.SIOBase)
	case within(masked, addr.SPUBase, addr.SPUSize):
		return 0
	case within(masked, addr.Expansion1Base, addr.Expansion1Size):
		return 0xFFFFFFFF
	case masked == addr.CacheControl:
		return 0
	default:
		b.logger.Warn("unhandled word read", "address", fmt.Sprintf("0x%08x", address))
		return 0
	}
}

// WriteWord writes a 32-bit value. Stores while SR.IsC is set target the
// instruction cache, which this core does not model, and are discarded
// (spec.md §4.1).
func (b *Bus) WriteWord(address uint32, value uint32) {
	if b.COP0.IsCacheIsolated() {
		return
	}
	masked := maskRegion(address)

	switch {
	case within(masked, addr.RAMBase, addr.RAMMirrorLen):
		b.RAM.WriteWord(masked%addr.RAMSize, value)
	case within(masked, addr.ScratchpadBase, addr.ScratchpadSize):
		b.Scratch.WriteWord(masked-addr.ScratchpadBase, value)
	case within(masked, addr.IntcBase, addr.IntcSize):
		b.writeIntc(masked-addr.IntcBase, value)
	case within(masked, addr.DMABase, addr.DMASize):
		b.writeDMA(masked-addr.DMABase, value)
	case within(masked, addr.GPUBase, addr.GPUSize):
		b.writeGPU(masked-addr.GPUBase, value)
	case within(masked, addr.TimerBase, addr.TimerSize):
		b.Timers.WriteWord(masked-addr.TimerBase, value)
	case within(masked, addr.MemControlBase, addr.MemControlSize):
		// RAM/expansion timing configuration: not modeled, writes accepted.
	case within(masked, addr.SIOBase, addr.SIOSize):
		b.Pad.WriteWord(masked-addr.SIOBase, value)
	case within(masked, addr.SPUBase, addr.SPUSize):
		// SPU register writes: audio synthesis is out of scope, accepted and dropped.
	case masked == addr.CacheControl:
		// Cache-control configuration register: not modeled.
	case within(masked, addr.BIOSBase, addr.BIOSSize):
		b.logger.Warn("ignored write to BIOS ROM", "address", fmt.Sprintf("0x%08x", address))
	default:
		b.logger.Warn("unhandled word write", "address", fmt.Sprintf("0x%08x", address), "value", fmt.Sprintf("0x%08x", value))
	}
}

// ReadHalf and ReadByte narrow a word-granularity read. The PSX bus is
// genuinely byte/half addressable for RAM/scratchpad/BIOS; I/O registers
// are modeled at word granularity and narrowed here, which matches how the
// BIOS and games actually access them.
func (b *Bus) ReadHalf(address uint32) uint16 {
	masked := maskRegion(address)
	switch {
	case within(masked, addr.RAMBase, addr.RAMMirrorLen):
		return b.RAM.ReadHalf(masked % addr.RAMSize)
	case within(masked, addr.ScratchpadBase, addr.ScratchpadSize):
		return b.Scratch.ReadHalf(masked - addr.ScratchpadBase)
	case within(masked, addr.BIOSBase, addr.BIOSSize):
		return b.BIOS.ReadHalf(masked - addr.BIOSBase)
	case within(masked, addr.IntcBase, addr.IntcSize):
		return uint16(b.readIntc(masked - addr.IntcBase))
	case within(masked, addr.TimerBase, addr.TimerSize):
		return uint16(b.Timers.ReadWord(masked - addr.TimerBase))
	case within(masked, addr.SPUBase, addr.SPUSize):
		return 0
	case within(masked, addr.SIOBase, addr.SIOSize):
		return uint16(b.Pad.ReadWord(masked - addr.SIOBase))
	default:
		return uint16(b.ReadWord(masked &^ 3))
	}
}

func (b *Bus) WriteHalf(address uint32, value uint16) {
	if b.COP0.IsCacheIsolated() {
		return
	}
	masked := maskRegion(address)
	switch {
	case within(masked, addr.RAMBase, addr.RAMMirrorLen):
		b.RAM.WriteHalf(masked%addr.RAMSize, value)
	case within(masked, addr.ScratchpadBase, addr.ScratchpadSize):
		b.Scratch.WriteHalf(masked-addr.ScratchpadBase, value)
	case within(masked, addr.IntcBase, addr.IntcSize):
		b.writeIntc(masked-addr.IntcBase, uint32(value))
	case within(masked, addr.TimerBase, addr.TimerSize):
		b.Timers.WriteWord(masked-addr.TimerBase, uint32(value))
	case within(masked, addr.SPUBase, addr.SPUSize):
		// dropped, see WriteWord.
	case within(masked, addr.SIOBase, addr.SIOSize):
		b.Pad.WriteWord(masked-addr.SIOBase, uint32(value))
	default:
		b.logger.Warn("unhandled half write", "address", fmt.Sprintf("0x%08x", address))
	}
}

func (b *Bus) ReadByte(address uint32) uint8 {
	masked := maskRegion(address)
	switch {
	case within(masked, addr.RAMBase, addr.RAMMirrorLen):
		return b.RAM.ReadByte(masked % addr.RAMSize)
	case within(masked, addr.ScratchpadBase, addr.ScratchpadSize):
		return b.Scratch.ReadByte(masked - addr.ScratchpadBase)
	case within(masked, addr.BIOSBase, addr.BIOSSize):
		return b.BIOS.ReadByte(masked - addr.BIOSBase)
	case within(masked, addr.CDROMBase, addr.CDROMSize):
		return b.CDROM.ReadByte(masked - addr.CDROMBase)
	case within(masked, addr.Expansion1Base, addr.Expansion1Size):
		return 0xFF
	default:
		shift := (masked & 3) * 8
		return uint8(b.ReadWord(masked&^3) >> shift)
	}
}

func (b *Bus) WriteByte(address uint32, value uint8) {
	if b.COP0.IsCacheIsolated() {
		return
	}
	masked := maskRegion(address)
	switch {
	case within(masked, addr.RAMBase, addr.RAMMirrorLen):
		b.RAM.WriteByte(masked%addr.RAMSize, value)
	case within(masked, addr.ScratchpadBase, addr.ScratchpadSize):
		b.Scratch.WriteByte(masked-addr.ScratchpadBase, value)
	case within(masked, addr.CDROMBase, addr.CDROMSize):
		b.CDROM.WriteByte(masked-addr.CDROMBase, value)
	case within(masked, addr.Expansion1Base, addr.Expansion1Size), within(masked, addr.Expansion1Base+addr.Expansion1Size, 0x10000):
		// expansion region writes (e.g. POST code port on some consoles): dropped.
	default:
		b.logger.Warn("unhandled byte write", "address", fmt.Sprintf("0x%08x", address))
	}
}

func (b *Bus) readIntc(offset uint32) uint32 {
	switch offset {
	case 0:
		return b.INTC.Status()
	case 4:
		return b.INTC.Mask()
	default:
		return 0
	}
}

func (b *Bus) writeIntc(offset uint32, value uint32) {
	switch offset {
	case 0:
		b.INTC.WriteStatus(value)
	case 4:
		b.INTC.WriteMask(value)
	}
}

func (b *Bus) readDMA(offset uint32) uint32 {
	if offset == 0x70 {
		return b.DMA.ControlRegister()
	}
	if offset == 0x74 {
		return b.DMA.InterruptRegister()
	}
	port := dma.Port(offset / 0x10)
	reg := offset % 0x10
	ch := b.DMA.Channel(port)
	switch reg {
	case 0x0:
		return ch.BaseAddress()
	case 0x4:
		return ch.BlockControl()
	case 0x8:
		return ch.Control()
	default:
		return 0
	}
}

func (b *Bus) writeDMA(offset uint32, value uint32) {
	if offset == 0x70 {
		b.DMA.SetControlRegister(value)
		return
	}
	if offset == 0x74 {
		b.DMA.SetInterruptRegister(value)
		return
	}
	port := dma.Port(offset / 0x10)
	reg := offset % 0x10
	ch := b.DMA.Channel(port)
	switch reg {
	case 0x0:
		ch.SetBaseAddress(value)
	case 0x4:
		ch.SetBlockControl(value)
	case 0x8:
		ch.SetControl(value)
		if ch.Active() {
			b.DMA.Step()
		}
	}
}

func (b *Bus) readGPU(offset uint32) uint32 {
	switch offset {
	case 0:
		return b.GPU.Read()
	case 4:
		return b.GPU.Status()
	default:
		return 0
	}
}

func (b *Bus) writeGPU(offset uint32, value uint32) {
	switch offset {
	case 0:
		b.GPU.ExecuteGP0(value)
	case 4:
		b.GPU.ExecuteGP1(value)
	}
}
