// Package headless implements a backend.Backend for CI and bounded test
// runs: no window, no input, quits after a configured frame count. Mirrors
// jeebie/backend/headless's frame-counting Init/Update/Cleanup shape.
package headless

import (
	"log/slog"

	"github.com/kagami/psxgo/psx/backend"
)

type Backend struct {
	maxFrames  int
	frameCount int
	logger     *slog.Logger
}

// New returns a headless backend that signals quit after maxFrames calls to
// Update. maxFrames <= 0 means run forever (until Quit is requested
// elsewhere).
func New(maxFrames int, logger *slog.Logger) *Backend {
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{maxFrames: maxFrames, logger: logger}
}

func (b *Backend) Init(cfg backend.Config) error {
	b.logger.Info("running headless", "max_frames", b.maxFrames)
	return nil
}

func (b *Backend) Update(vram []uint16) ([]backend.ButtonEvent, bool, error) {
	b.frameCount++
	if b.frameCount%60 == 0 {
		b.logger.Info("frame progress", "completed", b.frameCount, "total", b.maxFrames)
	}
	quit := b.maxFrames > 0 && b.frameCount >= b.maxFrames
	return nil, quit, nil
}

func (b *Backend) Cleanup() error { return nil }

var _ backend.Backend = (*Backend)(nil)
