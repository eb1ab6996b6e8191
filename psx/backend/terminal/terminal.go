// Package terminal implements a backend.Backend using tcell: a half-block
// renderer for the GPU's VRAM plus a textual debug-HUD pane, standing in for
// the ImGui-based host tooling this core does not implement (spec.md §1,
// §13 non-goals). Structured after jeebie/backend/terminal's
// Init/Update/Cleanup shape and half-block pixel-pair technique, generalized
// from the Game Boy's 2-bit grayscale framebuffer to the PSX's 15-bit BGR
// VRAM.
package terminal

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/kagami/psxgo/psx/backend"
	"github.com/kagami/psxgo/psx/controller"
)

// displayWidth/displayHeight are the fixed NTSC framebuffer dimensions this
// renderer reads out of VRAM. Full GP1(08h) resolution switching is left to
// the GPU's DisplayResolution; the terminal HUD only ever samples the
// top-left displayWidth x displayHeight rectangle, a deliberate
// simplification since a character cell can't represent 640-wide modes
// usefully anyway.
const (
	displayWidth  = 320
	displayHeight = 240
	vramStride    = 1024

	minTermWidth  = displayWidth + 24
	minTermHeight = displayHeight/2 + 4
)

// Backend renders VRAM to a terminal using half-block characters and
// converts key presses into controller.Button events.
type Backend struct {
	screen  tcell.Screen
	logger  *slog.Logger
	running bool

	frameCount uint64
	lastFrame  time.Time
	fps        float64
}

func New(logger *slog.Logger) *Backend {
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{logger: logger}
}

func (b *Backend) Init(cfg backend.Config) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("terminal: %w", err)
	}
	screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	screen.Clear()

	b.screen = screen
	b.running = true
	b.lastFrame = time.Now()
	b.logger.Info("terminal backend initialized", "title", cfg.Title)
	return nil
}

func (b *Backend) Update(vram []uint16) ([]backend.ButtonEvent, bool, error) {
	var events []backend.ButtonEvent

	for b.screen.HasPendingEvent() {
		ev := b.screen.PollEvent()
		switch ev := ev.(type) {
		case *tcell.EventKey:
			if act, pressed, ok := b.translateKey(ev); ok {
				events = append(events, backend.ButtonEvent{Button: act, Pressed: pressed})
			}
			if ev.Key() == tcell.KeyCtrlC || ev.Key() == tcell.KeyEscape {
				b.running = false
			}
		case *tcell.EventResize:
			b.screen.Sync()
		}
	}

	now := time.Now()
	if elapsed := now.Sub(b.lastFrame); elapsed > 0 {
		b.fps = float64(time.Second) / float64(elapsed)
	}
	b.lastFrame = now
	b.frameCount++

	b.render(vram)
	b.screen.Show()

	return events, !b.running, nil
}

func (b *Backend) Cleanup() error {
	if b.screen != nil {
		b.screen.Fini()
	}
	return nil
}

func (b *Backend) render(vram []uint16) {
	termWidth, termHeight := b.screen.Size()
	if termWidth < minTermWidth || termHeight < minTermHeight {
		b.screen.Clear()
		msg := fmt.Sprintf("terminal too small, need at least %dx%d", minTermWidth, minTermHeight)
		style := tcell.StyleDefault.Foreground(tcell.ColorRed)
		for i, ch := range msg {
			b.screen.SetContent(i, termHeight/2, ch, nil, style)
		}
		return
	}

	b.screen.Clear()
	b.drawFramebuffer(vram)
	b.drawHUD(displayWidth+2, termWidth, termHeight)
}

// drawFramebuffer packs two VRAM scanlines into one terminal row using a
// half-block character, the same trick jeebie's terminal renderer uses for
// Game Boy pixels: foreground carries the top pixel's color, background
// carries the bottom pixel's.
func (b *Backend) drawFramebuffer(vram []uint16) {
	for y := 0; y < displayHeight; y += 2 {
		for x := 0; x < displayWidth; x++ {
			top := bgr555ToColor(vram[y*vramStride+x])
			bottom := tcell.ColorBlack
			if y+1 < displayHeight {
				bottom = bgr555ToColor(vram[(y+1)*vramStride+x])
			}
			style := tcell.StyleDefault.Foreground(top).Background(bottom)
			b.screen.SetContent(x, y/2, '▀', nil, style)
		}
	}
}

// bgr555ToColor expands a PSX 15-bit BGR pixel (5 bits blue, 5 green, 5 red,
// 1 mask bit ignored for display) to a tcell true-color value.
func bgr555ToColor(px uint16) tcell.Color {
	r := uint8(px&0x1F) << 3
	g := uint8((px>>5)&0x1F) << 3
	bl := uint8((px>>10)&0x1F) << 3
	return tcell.NewRGBColor(int32(r), int32(g), int32(bl))
}

func (b *Backend) drawHUD(startX, termWidth, termHeight int) {
	if startX >= termWidth {
		return
	}
	style := tcell.StyleDefault.Foreground(tcell.ColorGreen)
	lines := []string{
		"psxgo",
		fmt.Sprintf("frame:  %d", b.frameCount),
		fmt.Sprintf("fps:    %.1f", b.fps),
		"",
		"arrows/wasd: d-pad",
		"z/x: cross/circle",
		"enter: start  tab: select",
		"esc: quit",
	}
	for i, line := range lines {
		if i >= termHeight {
			break
		}
		for j, ch := range line {
			x := startX + j
			if x >= termWidth {
				break
			}
			b.screen.SetContent(x, i, ch, nil, style)
		}
	}
}

// keyMapping binds host keys to digital-pad buttons (spec.md §4.6).
var keyMapping = map[tcell.Key]controller.Button{
	tcell.KeyUp:    controller.Up,
	tcell.KeyDown:  controller.Down,
	tcell.KeyLeft:  controller.Left,
	tcell.KeyRight: controller.Right,
	tcell.KeyEnter: controller.Start,
	tcell.KeyTab:   controller.Select,
}

var runeMapping = map[rune]controller.Button{
	'w': controller.Up,
	's': controller.Down,
	'a': controller.Left,
	'd': controller.Right,
	'z': controller.Cross,
	'x': controller.Circle,
	'q': controller.Square,
	'e': controller.Triangle,
	'1': controller.L1,
	'2': controller.R1,
}

// translateKey reports the button a key event maps to and whether the host
// terminal is signalling press or release. Terminals don't deliver key-up
// events, so every key reported here is treated as a momentary press:
// callers should clear it again on the following Update (mirrors
// jeebie/backend/terminal's timeout-based key-state tracking, simplified
// since this core's controller polling is coarse, per-frame, not per-cycle).
func (b *Backend) translateKey(ev *tcell.EventKey) (controller.Button, bool, bool) {
	if btn, ok := keyMapping[ev.Key()]; ok {
		return btn, true, true
	}
	if ev.Key() == tcell.KeyRune {
		if btn, ok := runeMapping[ev.Rune()]; ok {
			return btn, true, true
		}
	}
	return 0, false, false
}

var _ backend.Backend = (*Backend)(nil)
