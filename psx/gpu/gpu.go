// Package gpu implements the GPU command processor: the GP0 drawing/data
// port and GP1 control port, GPUSTAT assembly, and VRAM pixel-transfer
// modes. Command dispatch mirrors jeebie/cpu's map[uint8]Opcode pattern,
// generalized from fixed-length Game Boy opcodes to the PSX's
// variable-length GP0 command packets. GPUSTAT's bit layout and the GP0/GP1
// operation list are grounded on original_source/include/GPU.hpp.
package gpu

import (
	"log/slog"

	"github.com/kagami/psxgo/psx/bit"
)

// Rasterizer is the narrow host-facing interface a backend implements to
// receive decoded drawing primitives; actual pixel output is a non-goal of
// this core (spec.md §1), so this core only decodes and forwards.
type Rasterizer interface {
	PushTriangle(v [3]Vertex, opaque bool)
	PushQuad(v [4]Vertex, opaque bool)
	Display(vramX, vramY, width, height uint16)
}

// Vertex is one shaded/textured polygon vertex, decoded from a GP0 packet.
type Vertex struct {
	X, Y       int16
	R, G, B    uint8
	TexX, TexY uint8
	Color      bool // true if per-vertex shading applies
}

type mode uint8

const (
	modeCommand mode = iota
	modeImageLoad
)

// dmaDirection mirrors GPUDMADirection from original_source/include/GPU.hpp.
type dmaDirection uint8

const (
	dmaOff dmaDirection = iota
	dmaFifo
	dmaCPUToGP0
	dmaVRAMToCPU
)

// GPU holds the command-processor state and the 1MiB VRAM backing store.
type GPU struct {
	vram [addrVRAMWords]uint16

	texPageBaseX, texPageBaseY uint8
	semiTransparency           uint8
	texPageColors              uint8
	ditherEnable               bool
	allowDrawToDisplayArea     bool
	maskBitSet                 bool
	preserveMaskedPixels       bool
	textureDisable             bool
	rectTextureFlipX           bool
	rectTextureFlipY           bool

	texWindowMaskX, texWindowMaskY     uint8
	texWindowOffsetX, texWindowOffsetY uint8

	drawingAreaTop, drawingAreaLeft     uint16
	drawingAreaBottom, drawingAreaRight uint16
	drawingOffsetX, drawingOffsetY      int16

	displayVRAMStartX, displayVRAMStartY   uint16
	displayHorizontalStart, displayHorizontalEnd uint16
	displayLineStart, displayLineEnd       uint16

	horizontalRes1, horizontalRes2 uint8
	verticalRes                    uint8
	videoModePAL                   bool
	colorDepth24                   bool
	verticalInterlace               bool
	displayDisable                 bool
	interruptRequest               bool
	dmaDir                         dmaDirection
	oddLine                        bool

	mode mode

	gp0Buffer    []uint32
	gp0Remaining int
	gp0Handler   func(words []uint32)

	imageX, imageY, imageW, imageH uint16
	imagePos                       uint32

	readLatch uint32

	raster Rasterizer
	logger *slog.Logger
	raiseIRQ func()
}

const addrVRAMWords = 1024 * 512

// New returns a GPU in its GP1(00h)-reset state.
func New(raster Rasterizer, raiseIRQ func(), logger *slog.Logger) *GPU {
	if logger == nil {
		logger = slog.Default()
	}
	g := &GPU{raster: raster, raiseIRQ: raiseIRQ, logger: logger}
	g.reset()
	return g
}

func (g *GPU) reset() {
	g.texPageBaseX, g.texPageBaseY = 0, 0
	g.semiTransparency = 0
	g.texPageColors = 0
	g.ditherEnable = false
	g.allowDrawToDisplayArea = false
	g.textureDisable = false
	g.rectTextureFlipX, g.rectTextureFlipY = false, false
	g.texWindowMaskX, g.texWindowMaskY = 0, 0
	g.texWindowOffsetX, g.texWindowOffsetY = 0, 0
	g.drawingAreaTop, g.drawingAreaLeft = 0, 0
	g.drawingAreaBottom, g.drawingAreaRight = 0, 0
	g.drawingOffsetX, g.drawingOffsetY = 0, 0
	g.displayVRAMStartX, g.displayVRAMStartY = 0, 0
	g.displayHorizontalStart, g.displayHorizontalEnd = 0x200, 0xC00
	g.displayLineStart, g.displayLineEnd = 0x10, 0x100
	g.horizontalRes1, g.horizontalRes2 = 0, 0
	g.verticalRes = 0
	g.videoModePAL = false
	g.colorDepth24 = false
	g.verticalInterlace = true
	g.displayDisable = true
	g.interruptRequest = false
	g.dmaDir = dmaOff
	g.mode = modeCommand
	g.gp0Buffer = g.gp0Buffer[:0]
	g.gp0Remaining = 0
	g.gp0Handler = nil
}

// Status assembles GPUSTAT, bit layout per original_source/include/GPU.hpp.
func (g *GPU) Status() uint32 {
	var s uint32
	s |= uint32(g.texPageBaseX) & 0xF
	s = bit.SetTo(4, s, g.texPageBaseY != 0)
	s |= uint32(g.semiTransparency&0x3) << 5
	s |= uint32(g.texPageColors&0x3) << 7
	s = bit.SetTo(9, s, g.ditherEnable)
	s = bit.SetTo(10, s, g.allowDrawToDisplayArea)
	s = bit.SetTo(11, s, g.maskBitSet)
	s = bit.SetTo(12, s, g.preserveMaskedPixels)
	s = bit.SetTo(13, s, !g.verticalInterlace) // field stub: always "1" when interlace is off
	s = bit.SetTo(14, s, false)
	s = bit.SetTo(15, s, g.textureDisable)
	s = bit.SetTo(16, s, g.horizontalRes2 != 0)
	s |= uint32(g.horizontalRes1&0x3) << 17
	s = bit.SetTo(19, s, g.verticalRes != 0)
	s = bit.SetTo(20, s, g.videoModePAL)
	s = bit.SetTo(21, s, g.colorDepth24)
	s = bit.SetTo(22, s, g.verticalInterlace)
	s = bit.SetTo(23, s, g.displayDisable)
	s = bit.SetTo(24, s, g.interruptRequest)

	// Bit 25's meaning depends on the DMA direction (spec.md §4.5).
	var dataRequest bool
	switch g.dmaDir {
	case dmaOff:
		dataRequest = false
	case dmaFifo:
		dataRequest = true // FIFO is modeled as never full
	case dmaCPUToGP0:
		dataRequest = true // bit 28
	case dmaVRAMToCPU:
		dataRequest = true // bit 27
	}
	s = bit.SetTo(25, s, dataRequest)
	s = bit.SetTo(26, s, true) // ready to receive command word
	s = bit.SetTo(27, s, true) // ready to send VRAM to CPU
	s = bit.SetTo(28, s, true) // ready to receive DMA block
	s |= uint32(g.dmaDir&0x3) << 29
	s = bit.SetTo(31, s, g.oddLine)
	return s
}

// Read returns GPUREAD: the last value latched by a VRAM-to-CPU transfer or
// a GP1(10h) info query.
func (g *GPU) Read() uint32 { return g.readLatch }

// ExecuteGP1 handles a GP1 control command: single word, no buffering.
func (g *GPU) ExecuteGP1(value uint32) {
	op := value >> 24
	switch op {
	case 0x00:
		g.reset()
	case 0x01:
		g.gp0Buffer = g.gp0Buffer[:0]
		g.gp0Remaining = 0
	case 0x02:
		g.interruptRequest = false
	case 0x03:
		g.displayDisable = value&1 != 0
	case 0x04:
		g.dmaDir = dmaDirection(value & 0x3)
	case 0x05:
		g.displayVRAMStartX = uint16(value & 0x3FE)
		g.displayVRAMStartY = uint16((value >> 10) & 0x1FF)
	case 0x06:
		g.displayHorizontalStart = uint16(value & 0xFFF)
		g.displayHorizontalEnd = uint16((value >> 12) & 0xFFF)
	case 0x07:
		g.displayLineStart = uint16(value & 0x3FF)
		g.displayLineEnd = uint16((value >> 10) & 0x3FF)
	case 0x08:
		g.horizontalRes1 = uint8(value & 0x3)
		g.horizontalRes2 = uint8((value >> 6) & 1)
		g.verticalRes = uint8((value >> 2) & 1)
		g.videoModePAL = (value>>3)&1 != 0
		g.colorDepth24 = (value>>4)&1 != 0
		g.verticalInterlace = (value>>5)&1 != 0
	case 0x10:
		g.handleGetInfo(value & 0xFF)
	default:
		g.logger.Debug("unhandled GP1 command", "op", op, "value", value)
	}
}

func (g *GPU) handleGetInfo(sub uint32) {
	switch sub {
	case 2:
		g.readLatch = uint32(g.texWindowMaskX) | uint32(g.texWindowMaskY)<<5 |
			uint32(g.texWindowOffsetX)<<10 | uint32(g.texWindowOffsetY)<<15
	case 3:
		g.readLatch = uint32(g.drawingAreaLeft) | uint32(g.drawingAreaTop)<<10
	case 4:
		g.readLatch = uint32(g.drawingAreaRight) | uint32(g.drawingAreaBottom)<<10
	case 5:
		ox := uint32(g.drawingOffsetX) & 0x7FF
		oy := uint32(g.drawingOffsetY) & 0x7FF
		g.readLatch = ox | oy<<11
	case 7:
		g.readLatch = 2 // GPU version
	default:
		// unknown info requests leave GPUREAD unchanged.
	}
}

// ExecuteGP0 feeds one 32-bit word into the GP0 port: the first word of a
// new packet selects a handler and word count from gp0Dispatch; the
// remaining words are buffered until the packet is complete, at which
// point the handler runs (spec.md §4.5).
func (g *GPU) ExecuteGP0(value uint32) {
	if g.mode == modeImageLoad {
		g.storeImageWord(value)
		return
	}

	if g.gp0Remaining == 0 {
		op := uint8(value >> 24)
		count, handler := g.gp0Dispatch(op)
		g.gp0Buffer = append(g.gp0Buffer[:0], value)
		g.gp0Remaining = count - 1
		g.gp0Handler = handler
		if g.gp0Remaining == 0 {
			g.runHandler()
		}
		return
	}

	g.gp0Buffer = append(g.gp0Buffer, value)
	g.gp0Remaining--
	if g.gp0Remaining == 0 {
		g.runHandler()
	}
}

func (g *GPU) runHandler() {
	handler := g.gp0Handler
	words := g.gp0Buffer
	g.gp0Buffer = nil
	g.gp0Remaining = 0
	g.gp0Handler = nil
	if handler != nil {
		handler(words)
	}
}

// storeImageWord writes the next two pixels of a CPU-to-VRAM transfer
// (GP0(A0h)). Ends automatically once width*height pixels are written.
func (g *GPU) storeImageWord(value uint32) {
	total := uint32(g.imageW) * uint32(g.imageH)
	for i := 0; i < 2 && g.imagePos < total; i++ {
		px := uint16(value >> (16 * uint(i)))
		x := (g.imageX + uint16(g.imagePos)%g.imageW) % 1024
		y := (g.imageY + uint16(g.imagePos)/g.imageW) % 512
		g.vram[uint32(y)*1024+uint32(x)] = px
		g.imagePos++
	}
	if g.imagePos >= total {
		g.mode = modeCommand
	}
}

// VRAM exposes read-only access to the framebuffer for a backend renderer.
func (g *GPU) VRAM() []uint16 { return g.vram[:] }

// horizontalResTable maps the 3-bit horizontal resolution field (hres2,hres1)
// to its pixel width, per original_source/include/GPU.hpp's HorizontalRes.
var horizontalResTable = [8]uint16{256, 320, 512, 640, 256, 320, 512, 640}

// DisplayResolution returns the visible framebuffer's pixel dimensions and
// its origin within VRAM, derived from the GP1(08h) mode bits and the
// GP1(05h) display start (spec.md §4.5). The terminal and SDL2 backends
// do not call this; they sample a fixed 320x240 region at the VRAM origin.
func (g *GPU) DisplayResolution() (originX, originY, width, height uint16) {
	idx := (g.horizontalRes2 << 2) | g.horizontalRes1
	width = horizontalResTable[idx&0x7]
	height = 240
	if g.verticalRes != 0 && g.verticalInterlace {
		height = 480
	}
	return g.displayVRAMStartX, g.displayVRAMStartY, width, height
}
