// Package raster provides a minimal gpu.Rasterizer: it counts and logs
// decoded primitives rather than rendering them, since bit-exact polygon
// rasterization is an explicit non-goal (spec.md §1, §13). Backends that
// want to see something on screen read the GPU's VRAM directly (CPU-to-VRAM
// transfers and fill-rectangle commands write real pixels); this type only
// serves the draw-primitive half of the Rasterizer interface.
package raster

import (
	"log/slog"

	"github.com/kagami/psxgo/psx/gpu"
)

// Counting is a Rasterizer that tallies decoded primitives for debug HUDs
// and tests, grounded on jeebie/debug's counter-based instrumentation idiom.
type Counting struct {
	Triangles int
	Quads     int
	Displays  int

	logger *slog.Logger
}

func New(logger *slog.Logger) *Counting {
	if logger == nil {
		logger = slog.Default()
	}
	return &Counting{logger: logger}
}

func (c *Counting) PushTriangle(v [3]gpu.Vertex, opaque bool) {
	c.Triangles++
	c.logger.Debug("triangle", "opaque", opaque, "v0", v[0], "v1", v[1], "v2", v[2])
}

func (c *Counting) PushQuad(v [4]gpu.Vertex, opaque bool) {
	c.Quads++
	c.logger.Debug("quad", "opaque", opaque)
}

func (c *Counting) Display(x, y, w, h uint16) {
	c.Displays++
	c.logger.Debug("display", "x", x, "y", y, "w", w, "h", h)
}

var _ gpu.Rasterizer = (*Counting)(nil)
