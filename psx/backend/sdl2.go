//go:build sdl2

// Package backend's SDL2 implementation: a real host window, accelerated
// renderer, and a streaming texture of a fixed 320x240 display rectangle.
// Grounded on jeebie/backend/sdl2.go's window/renderer/texture/key-mapping
// shape, generalized from a fixed Game Boy grayscale palette to PSX 15-bit
// BGR pixels and from a fixed 4-button joypad to the 14-button digital pad.
package backend

import (
	"fmt"
	"log/slog"
	"unsafe"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/kagami/psxgo/psx/controller"
)

const (
	displayWidth  = 320
	displayHeight = 240
	vramStride    = 1024
	defaultScale  = 2
)

// SDL2 implements Backend with a real window, used when built with
// `-tags sdl2` and SDL2's development libraries installed.
type SDL2 struct {
	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture
	running  bool
	logger   *slog.Logger
}

func NewSDL2(logger *slog.Logger) *SDL2 {
	if logger == nil {
		logger = slog.Default()
	}
	return &SDL2{logger: logger}
}

func (s *SDL2) Init(cfg Config) error {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return fmt.Errorf("sdl2: %w", err)
	}

	scale := cfg.Scale
	if scale <= 0 {
		scale = defaultScale
	}

	title := cfg.Title
	if title == "" {
		title = "psxgo"
	}

	window, err := sdl.CreateWindow(title, sdl.WINDOWPOS_CENTERED, sdl.WINDOWPOS_CENTERED,
		int32(displayWidth*scale), int32(displayHeight*scale), sdl.WINDOW_SHOWN)
	if err != nil {
		sdl.Quit()
		return fmt.Errorf("sdl2: create window: %w", err)
	}
	s.window = window

	rendererFlags := uint32(sdl.RENDERER_ACCELERATED)
	if cfg.VSync {
		rendererFlags |= sdl.RENDERER_PRESENTVSYNC
	}
	renderer, err := sdl.CreateRenderer(window, -1, rendererFlags)
	if err != nil {
		window.Destroy()
		sdl.Quit()
		return fmt.Errorf("sdl2: create renderer: %w", err)
	}
	s.renderer = renderer

	texture, err := renderer.CreateTexture(sdl.PIXELFORMAT_RGBA8888, sdl.TEXTUREACCESS_STREAMING,
		displayWidth, displayHeight)
	if err != nil {
		renderer.Destroy()
		window.Destroy()
		sdl.Quit()
		return fmt.Errorf("sdl2: create texture: %w", err)
	}
	s.texture = texture

	s.running = true
	s.logger.Info("sdl2 backend initialized", "scale", scale)
	return nil
}

func (s *SDL2) Update(vram []uint16) ([]ButtonEvent, bool, error) {
	var events []ButtonEvent

	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			s.running = false
		case *sdl.KeyboardEvent:
			if btn, ok := keyMapping[e.Keysym.Sym]; ok {
				events = append(events, ButtonEvent{Button: btn, Pressed: e.Type == sdl.KEYDOWN})
			}
			if e.Type == sdl.KEYDOWN && e.Keysym.Sym == sdl.K_ESCAPE {
				s.running = false
			}
		}
	}

	if !s.running {
		return events, true, nil
	}

	s.renderFrame(vram)
	return events, false, nil
}

func (s *SDL2) Cleanup() error {
	s.logger.Info("cleaning up sdl2 backend")
	if s.texture != nil {
		s.texture.Destroy()
	}
	if s.renderer != nil {
		s.renderer.Destroy()
	}
	if s.window != nil {
		s.window.Destroy()
	}
	sdl.Quit()
	return nil
}

// renderFrame converts the top-left displayWidth x displayHeight rectangle
// of 15-bit BGR VRAM into RGBA8888 and streams it into the texture.
func (s *SDL2) renderFrame(vram []uint16) {
	pixels := make([]byte, displayWidth*displayHeight*4)
	for y := 0; y < displayHeight; y++ {
		for x := 0; x < displayWidth; x++ {
			px := vram[y*vramStride+x]
			r := uint8(px&0x1F) << 3
			g := uint8((px>>5)&0x1F) << 3
			b := uint8((px>>10)&0x1F) << 3

			i := (y*displayWidth + x) * 4
			pixels[i] = 0xFF   // alpha
			pixels[i+1] = b
			pixels[i+2] = g
			pixels[i+3] = r
		}
	}

	s.texture.Update(nil, unsafe.Pointer(&pixels[0]), displayWidth*4)
	s.renderer.SetDrawColor(0, 0, 0, 0xFF)
	s.renderer.Clear()
	s.renderer.Copy(s.texture, nil, nil)
	s.renderer.Present()
}

var keyMapping = map[sdl.Keycode]controller.Button{
	sdl.K_UP:     controller.Up,
	sdl.K_DOWN:   controller.Down,
	sdl.K_LEFT:   controller.Left,
	sdl.K_RIGHT:  controller.Right,
	sdl.K_RETURN: controller.Start,
	sdl.K_TAB:    controller.Select,
	sdl.K_z:      controller.Cross,
	sdl.K_x:      controller.Circle,
	sdl.K_a:      controller.Square,
	sdl.K_s:      controller.Triangle,
	sdl.K_q:      controller.L1,
	sdl.K_w:      controller.R1,
}

var _ Backend = (*SDL2)(nil)
