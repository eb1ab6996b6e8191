package gpu

import "github.com/kagami/psxgo/psx/bit"

// gp0Dispatch resolves a GP0 command byte to its total packet word count
// (including the command word itself) and the handler run once the packet
// is fully buffered. Word counts and grouping are ported from the GP0
// operation catalogue in original_source/include/GPU.hpp; this core
// implements state-changing and VRAM-transfer commands in full and
// decodes-and-forwards polygon/line draw commands to the Rasterizer
// without performing rasterization itself (spec.md §4.5, §1 non-goals).
func (g *GPU) gp0Dispatch(op uint8) (int, func(words []uint32)) {
	switch {
	case op == 0x00:
		return 1, func([]uint32) {}
	case op == 0x01:
		return 1, func([]uint32) {}
	case op == 0xE1:
		return 1, g.opDrawMode
	case op == 0xE2:
		return 1, g.opTextureWindow
	case op == 0xE3:
		return 1, g.opDrawingAreaTopLeft
	case op == 0xE4:
		return 1, g.opDrawingAreaBottomRight
	case op == 0xE5:
		return 1, g.opDrawingOffset
	case op == 0xE6:
		return 1, g.opMaskBit
	case op == 0xA0:
		return 3, g.opCopyCPUToVRAM
	case op == 0xC0:
		return 3, g.opCopyVRAMToCPU
	case op == 0x80:
		return 4, func([]uint32) {} // VRAM-to-VRAM copy: unimplemented, packet consumed only
	case op == 0x02:
		return 3, g.opFillRectangle
	case op == 0x1F:
		return 1, g.opIRQRequest

	// Monochrome/shaded/textured polygons: fixed word count derived from
	// the opcode's shape/textured/shaded bits.
	case op&0xE0 == 0x20:
		return monochromePolygonWords(op), g.opPolygon(op)
	case op&0xE0 == 0x30:
		return shadedPolygonWords(op), g.opPolygon(op)

	// Lines: fixed 3-word monochrome/shaded lines; polylines are
	// variable-length, terminated by 0x50005000/0x55555555, and handled by
	// a dedicated streaming accumulator instead of a fixed count.
	case op == 0x48 || op == 0x4C || op == 0x58 || op == 0x5C:
		return 1, g.beginPolyline(op)
	case op&0xF0 == 0x40 || op&0xF0 == 0x50:
		return 3, func([]uint32) {}

	default:
		g.logger.Debug("unhandled GP0 opcode, consuming single word", "op", op)
		return 1, func([]uint32) {}
	}
}

func (g *GPU) opDrawMode(words []uint32) {
	v := words[0]
	g.texPageBaseX = uint8(v & 0xF)
	g.texPageBaseY = uint8((v >> 4) & 1)
	g.semiTransparency = uint8((v >> 5) & 0x3)
	g.texPageColors = uint8((v >> 7) & 0x3)
	g.ditherEnable = (v>>9)&1 != 0
	g.allowDrawToDisplayArea = (v>>10)&1 != 0
	g.textureDisable = (v>>11)&1 != 0
	g.rectTextureFlipX = (v>>12)&1 != 0
	g.rectTextureFlipY = (v>>13)&1 != 0
}

func (g *GPU) opTextureWindow(words []uint32) {
	v := words[0]
	g.texWindowMaskX = uint8(v & 0x1F)
	g.texWindowMaskY = uint8((v >> 5) & 0x1F)
	g.texWindowOffsetX = uint8((v >> 10) & 0x1F)
	g.texWindowOffsetY = uint8((v >> 15) & 0x1F)
}

func (g *GPU) opDrawingAreaTopLeft(words []uint32) {
	v := words[0]
	g.drawingAreaLeft = uint16(v & 0x3FF)
	g.drawingAreaTop = uint16((v >> 10) & 0x3FF)
}

func (g *GPU) opDrawingAreaBottomRight(words []uint32) {
	v := words[0]
	g.drawingAreaRight = uint16(v & 0x3FF)
	g.drawingAreaBottom = uint16((v >> 10) & 0x3FF)
}

func (g *GPU) opDrawingOffset(words []uint32) {
	v := words[0]
	g.drawingOffsetX = int16(bit.SignExtend(v&0x7FF, 11))
	g.drawingOffsetY = int16(bit.SignExtend((v>>11)&0x7FF, 11))
}

func (g *GPU) opMaskBit(words []uint32) {
	v := words[0]
	g.maskBitSet = v&1 != 0
	g.preserveMaskedPixels = (v>>1)&1 != 0
}

// opIRQRequest handles GP0(1Fh): latches GPUSTAT bit 24 and raises the GPU
// line on the Interrupt Controller. Only a write of GP1(02h) clears it.
func (g *GPU) opIRQRequest([]uint32) {
	if g.interruptRequest {
		return
	}
	g.interruptRequest = true
	if g.raiseIRQ != nil {
		g.raiseIRQ()
	}
}

func (g *GPU) opFillRectangle(words []uint32) {
	// words[0] is the command+color word; words[1] packs X/Y, words[2]
	// packs width/height. Filling VRAM directly, bypassing the
	// rasterizer, since it never touches drawing-area/mask state.
	x := uint16(words[1] & 0x3FF)
	y := uint16((words[1] >> 16) & 0x1FF)
	w := uint16(words[2] & 0x3FF)
	h := uint16((words[2] >> 16) & 0x1FF)
	color := words[0] & 0xFFFFFF
	px := to15bit(color)
	for row := uint16(0); row < h; row++ {
		for col := uint16(0); col < w; col++ {
			vx := (x + col) % 1024
			vy := (y + row) % 512
			g.vram[uint32(vy)*1024+uint32(vx)] = px
		}
	}
}

func to15bit(rgb24 uint32) uint16 {
	r := uint16((rgb24>>3)&0x1F)
	gch := uint16((rgb24>>11)&0x1F)
	b := uint16((rgb24>>19)&0x1F)
	return r | gch<<5 | b<<10
}

func (g *GPU) opCopyCPUToVRAM(words []uint32) {
	xy := words[1]
	wh := words[2]
	g.imageX = uint16(xy & 0x3FF)
	g.imageY = uint16((xy >> 16) & 0x1FF)
	g.imageW = uint16(wh & 0x3FF)
	if g.imageW == 0 {
		g.imageW = 1024
	}
	g.imageH = uint16((wh >> 16) & 0x1FF)
	if g.imageH == 0 {
		g.imageH = 512
	}
	g.imagePos = 0
	g.mode = modeImageLoad
}

func (g *GPU) opCopyVRAMToCPU(words []uint32) {
	x := uint16(words[1] & 0x3FF)
	y := uint16((words[1] >> 16) & 0x1FF)
	w := uint16(words[2] & 0x3FF)
	h := uint16((words[2] >> 16) & 0x1FF)
	if g.raster != nil {
		g.raster.Display(x, y, w, h)
	}
	if w > 0 && h > 0 {
		g.readLatch = uint32(g.vram[uint32(y)*1024+uint32(x)])
	}
}

// opPolygon decodes a fixed-size monochrome/shaded/textured polygon packet
// into vertices and forwards them to the Rasterizer. Returns a bound
// closure so gp0Dispatch can pass the handler without re-deciding shape on
// every invocation.
func (g *GPU) opPolygon(op uint8) func([]uint32) {
	return func(words []uint32) {
		quad := bit.IsSet(3, uint32(op))
		shaded := op&0xE0 == 0x30
		textured := bit.IsSet(4, uint32(op))
		opaque := !bit.IsSet(1, uint32(op))
		n := 3
		if quad {
			n = 4
		}

		verts := make([]Vertex, 0, n)
		color := words[0] & 0xFFFFFF
		i := 1
		for p := 0; p < n; p++ {
			var r, gc, b uint8
			if shaded {
				if p > 0 {
					color = words[i] & 0xFFFFFF
					i++
				}
			}
			r, gc, b = uint8(color), uint8(color>>8), uint8(color>>16)

			xy := words[i]
			i++
			x := int16(int32(int16(xy & 0xFFFF)))
			y := int16(int32(int16((xy >> 16) & 0xFFFF)))

			var tx, ty uint8
			if textured {
				uv := words[i]
				i++
				tx, ty = uint8(uv), uint8(uv>>8)
			}

			verts = append(verts, Vertex{
				X: x + g.drawingOffsetX, Y: y + g.drawingOffsetY,
				R: r, G: gc, B: b, TexX: tx, TexY: ty, Color: shaded,
			})
		}

		if g.raster == nil {
			return
		}
		if n == 3 {
			g.raster.PushTriangle([3]Vertex{verts[0], verts[1], verts[2]}, opaque)
		} else {
			g.raster.PushTriangle([3]Vertex{verts[0], verts[1], verts[2]}, opaque)
			g.raster.PushTriangle([3]Vertex{verts[1], verts[2], verts[3]}, opaque)
		}
	}
}

// beginPolyline switches GP0 into a streaming mode that keeps consuming
// vertex words until the 0x50005000/0x55555555 terminator appears; lines
// themselves are not rasterized by this core (spec.md §1 non-goals).
func (g *GPU) beginPolyline(op uint8) func([]uint32) {
	return func(words []uint32) {
		g.gp0Remaining = 1
		g.gp0Handler = g.continuePolyline
	}
}

func (g *GPU) continuePolyline(words []uint32) {
	v := words[0]
	if v == 0x50005000 || v == 0x55555555 {
		return
	}
	g.gp0Remaining = 1
	g.gp0Handler = g.continuePolyline
}

func monochromePolygonWords(op uint8) int {
	points := 3
	if bit.IsSet(3, uint32(op)) {
		points = 4
	}
	if bit.IsSet(4, uint32(op)) {
		return 1 + points*2 // vertex + uv word per point
	}
	return 1 + points
}

func shadedPolygonWords(op uint8) int {
	points := 3
	if bit.IsSet(3, uint32(op)) {
		points = 4
	}
	if bit.IsSet(4, uint32(op)) {
		return 1 + (points-1)*3 // color+vertex+uv per point after the header
	}
	return 1 + (points-1)*2 // color+vertex per point after the header
}
