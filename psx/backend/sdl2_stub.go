//go:build !sdl2

package backend

import (
	"fmt"
	"log/slog"
)

// SDL2 is a stand-in returned when the binary was built without the sdl2
// tag; real SDL2 support lives in sdl2.go (mirrors jeebie/backend/sdl2_stub.go).
type SDL2 struct{}

func NewSDL2(logger *slog.Logger) *SDL2 { return &SDL2{} }

func (s *SDL2) Init(cfg Config) error {
	return fmt.Errorf("sdl2 backend not available: compile with -tags sdl2 and install SDL2 development libraries")
}

func (s *SDL2) Update(vram []uint16) ([]ButtonEvent, bool, error) {
	return nil, true, fmt.Errorf("sdl2 backend not available")
}

func (s *SDL2) Cleanup() error { return nil }

var _ Backend = (*SDL2)(nil)
