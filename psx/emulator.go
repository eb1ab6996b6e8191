// Package psx assembles every component package into a bootable machine
// and drives its frame tick loop. Structured after jeebie.Emulator/DMG's
// init()-plus-RunUntilFrame shape (jeebie/core.go), generalized from the
// Game Boy's per-cycle timer/GPU tick to the PSX's coarser per-instruction
// device stepping (spec.md §5).
package psx

import (
	"fmt"
	"log/slog"

	"github.com/kagami/psxgo/psx/cdrom"
	"github.com/kagami/psxgo/psx/config"
	"github.com/kagami/psxgo/psx/controller"
	"github.com/kagami/psxgo/psx/cop0"
	"github.com/kagami/psxgo/psx/cpu"
	"github.com/kagami/psxgo/psx/dma"
	"github.com/kagami/psxgo/psx/gpu"
	"github.com/kagami/psxgo/psx/intc"
	"github.com/kagami/psxgo/psx/interconnect"
	"github.com/kagami/psxgo/psx/mem"
	"github.com/kagami/psxgo/psx/serial"
	"github.com/kagami/psxgo/psx/timer"
)

// std_out_putchar exists twice in the real kernel jump tables, A(3Ch) and
// B(3Dh), both writing the same character to the TTY (spec.md §7
// host-console scenario); a guest can reach either depending on which
// calling convention it was built against, so both are intercepted.

// instructionsPerFrame approximates the R3000A's 33.8688MHz clock divided by
// a 60Hz frame rate (spec.md §5: "a fixed budget of instructions" advanced
// per tick, then devices stepped, then end-of-frame VBLANK). This core
// treats one CPU instruction as one device-step tick rather than modeling
// per-instruction cycle counts, matching the coarse timing spec.md §1 and
// §13 explicitly accept as a non-goal.
const instructionsPerFrame = 564480

// Machine owns every emulated device plus the CPU core that drives them,
// wired the way jeebie.DMG.init wires cpu/video/memory.MMU together.
type Machine struct {
	CPU   *cpu.CPU
	Bus   *interconnect.Bus
	COP0  *cop0.COP0
	INTC  *intc.Controller
	DMA   *dma.Controller
	GPU   *gpu.GPU
	CDROM *cdrom.CDROM
	Timers *timer.Bank
	Pad   *controller.Controller
	TTY   *serial.TTYSink

	logger     *slog.Logger
	frameCount uint64
	quit       bool
}

// New assembles a Machine from a BIOS image and a rasterizer the GPU decodes
// drawing commands into (spec.md §1: rasterization itself is an external
// collaborator).
func New(biosPath string, raster gpu.Rasterizer, cfg config.Config, logger *slog.Logger) (*Machine, error) {
	if logger == nil {
		logger = slog.Default()
	}

	bios, err := mem.NewBIOS(biosPath)
	if err != nil {
		return nil, fmt.Errorf("psx: %w", err)
	}

	m := &Machine{logger: logger}

	ram := mem.NewRAM(2 * 1024 * 1024)
	scratch := mem.NewScratchpad()

	m.COP0 = cop0.New()
	m.INTC = intc.New()
	m.GPU = gpu.New(raster, func() { m.INTC.Raise(intc.GPU) }, logger.With("subsystem", "gpu"))
	m.CDROM = cdrom.New(func() { m.INTC.Raise(intc.CDROM) }, logger.With("subsystem", "cdrom"))
	m.DMA = dma.New(ram, m.GPU, m.CDROM, func() { m.INTC.Raise(intc.DMA) }, logger.With("subsystem", "dma"))
	m.Timers = timer.New(
		func() { m.INTC.Raise(intc.Timer0) },
		func() { m.INTC.Raise(intc.Timer1) },
		func() { m.INTC.Raise(intc.Timer2) },
	)
	m.Pad = controller.New(func() { m.INTC.Raise(intc.Controller) })

	m.Bus = interconnect.New(bios, ram, scratch, m.COP0, m.INTC, m.DMA, m.GPU, m.CDROM, m.Timers, m.Pad, logger)
	m.CPU = cpu.New(m.Bus, m.COP0, 0xBFC00000)

	m.TTY = serial.NewTTYSink(logger.With("subsystem", "tty"))
	m.CPU.BIOSCall = func(vector uint32, function uint32, regs *cpu.Registers) {
		isPutchar := (vector == 0xA0 && function == 0x3C) || (vector == 0xB0 && function == 0x3D)
		if isPutchar {
			m.TTY.Putchar(byte(regs.Get(4)))
		}
	}

	applyLogConfig(cfg, logger)

	return m, nil
}

// applyLogConfig logs a debug line when config.Log.Trace is set. It does
// not change the logger's level (the caller picks that when building the
// logger) and does not read config.Log.BIOS or config.Log.CDROM.
func applyLogConfig(cfg config.Config, logger *slog.Logger) {
	if cfg.Log.Trace {
		logger.Debug("trace logging enabled")
	}
}

// RunUntilFrame advances the CPU for instructionsPerFrame instructions,
// stepping DMA/timers/CD-ROM once per instruction and delivering pending
// Interrupt Controller state to COP0 before each fetch, then raises VBLANK
// (spec.md §5 scheduling model). It makes no rasterizer call at end of
// frame; presenting VRAM is left to the backend's Update.
func (m *Machine) RunUntilFrame() {
	for i := 0; i < instructionsPerFrame && !m.quit; i++ {
		m.COP0.SetInterruptPending(2, m.INTC.Pending())
		m.CPU.Step()
		m.DMA.Step()
		m.Timers.Step()
		m.CDROM.Step()
	}

	m.INTC.Raise(intc.VBLANK)
	m.frameCount++
	if m.frameCount%60 == 0 {
		m.logger.Debug("frame completed", "frame", m.frameCount, "pc", fmt.Sprintf("0x%08x", m.CPU.PC()))
	}
}

// FrameCount returns the number of frames completed so far.
func (m *Machine) FrameCount() uint64 { return m.frameCount }

// Quit requests the frame loop stop after the current instruction, matching
// spec.md §5's single host "should-quit" signal.
func (m *Machine) Quit() { m.quit = true }

// ShouldQuit reports whether Quit has been requested.
func (m *Machine) ShouldQuit() bool { return m.quit }

// VRAM exposes the GPU's framebuffer for a backend renderer to present.
func (m *Machine) VRAM() []uint16 { return m.GPU.VRAM() }
