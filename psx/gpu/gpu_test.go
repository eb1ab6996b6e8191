package gpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRasterizer struct {
	triangles []([3]Vertex)
	displays  int
}

func (f *fakeRasterizer) PushTriangle(v [3]Vertex, opaque bool) { f.triangles = append(f.triangles, v) }
func (f *fakeRasterizer) PushQuad(v [4]Vertex, opaque bool)     {}
func (f *fakeRasterizer) Display(x, y, w, h uint16)             { f.displays++ }

func TestStatusAlwaysReadyBits(t *testing.T) {
	g := New(&fakeRasterizer{}, nil, nil)
	s := g.Status()
	assert.NotZero(t, s&(1<<26))
	assert.NotZero(t, s&(1<<27))
	assert.NotZero(t, s&(1<<28))
}

func TestDrawingOffsetSignExtension(t *testing.T) {
	g := New(&fakeRasterizer{}, nil, nil)
	// -1 in an 11-bit field is 0x7FF.
	g.ExecuteGP0(0xE5000000 | 0x7FF | (0x7FF << 11))
	assert.EqualValues(t, -1, g.drawingOffsetX)
	assert.EqualValues(t, -1, g.drawingOffsetY)
}

func TestMonochromeTriangleForwardsToRasterizer(t *testing.T) {
	raster := &fakeRasterizer{}
	g := New(raster, nil, nil)

	g.ExecuteGP0(0x200000FF) // monochrome opaque triangle, color red (R in low byte)
	g.ExecuteGP0(0x00000000)  // vertex 0
	g.ExecuteGP0(0x00100010)  // vertex 1
	g.ExecuteGP0(0x00200000)  // vertex 2

	require.Len(t, raster.triangles, 1)
	assert.EqualValues(t, 0xFF, raster.triangles[0][0].R)
}

func TestCopyCPUToVRAMRoundTrips(t *testing.T) {
	g := New(&fakeRasterizer{}, nil, nil)

	g.ExecuteGP0(0xA0000000)
	g.ExecuteGP0(0x00000000) // x=0, y=0
	g.ExecuteGP0(0x00010002) // w=2, h=1

	g.ExecuteGP0(0x22221111) // two pixels: 0x1111, 0x2222

	assert.Equal(t, uint16(0x1111), g.vram[0])
	assert.Equal(t, uint16(0x2222), g.vram[1])
}

func TestPolylineConsumesUntilTerminator(t *testing.T) {
	g := New(&fakeRasterizer{}, nil, nil)

	g.ExecuteGP0(0x48FFFFFF) // monochrome polyline opaque
	g.ExecuteGP0(0x00000000)
	g.ExecuteGP0(0x00100010)
	g.ExecuteGP0(0x50005000) // terminator

	// next word should be treated as a fresh command, not consumed by the line.
	g.ExecuteGP0(0x00000000) // GP0(00h) nop
	assert.Zero(t, g.gp0Remaining)
}

func TestGP1ResetRestoresDisplayDisable(t *testing.T) {
	g := New(&fakeRasterizer{}, nil, nil)
	g.displayDisable = false
	g.ExecuteGP1(0x00000000)
	assert.True(t, g.displayDisable)
}

func TestDisplayResolutionDefaultsTo256x240(t *testing.T) {
	g := New(&fakeRasterizer{}, nil, nil)
	_, _, width, height := g.DisplayResolution()
	assert.EqualValues(t, 256, width)
	assert.EqualValues(t, 240, height)
}

func TestDisplayResolutionReadsGP1Mode(t *testing.T) {
	g := New(&fakeRasterizer{}, nil, nil)
	g.ExecuteGP1(0x08000001) // GP1(08h): hres1=1 (320), hres2=0, vres=0, interlace off
	_, _, width, height := g.DisplayResolution()
	assert.EqualValues(t, 320, width)
	assert.EqualValues(t, 240, height)
}

func TestDisplayResolutionReportsFieldHeightWhenInterlaced(t *testing.T) {
	g := New(&fakeRasterizer{}, nil, nil)
	g.ExecuteGP1(0x08000024) // hres1=0 (256), vres=1, interlace on
	_, _, _, height := g.DisplayResolution()
	assert.EqualValues(t, 480, height)
}

func TestDisplayResolutionOriginFollowsDisplayStart(t *testing.T) {
	g := New(&fakeRasterizer{}, nil, nil)
	g.ExecuteGP1(0x05000140) // GP1(05h): X=0x140, Y=0
	originX, originY, _, _ := g.DisplayResolution()
	assert.EqualValues(t, 0x140, originX)
	assert.EqualValues(t, 0, originY)
}
