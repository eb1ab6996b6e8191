// Package backend defines the host-facing surface an emulator front end
// implements: presenting VRAM and turning platform input into controller
// button events. Shaped directly after jeebie/backend.Backend, generalized
// from a *video.FrameBuffer to a raw VRAM pixel slice since GPU pixel
// format/decoding is this core's job, not the backend's (spec.md §1).
package backend

import "github.com/kagami/psxgo/psx/controller"

// ButtonEvent reports a digital-pad button transition a backend observed.
type ButtonEvent struct {
	Button  controller.Button
	Pressed bool
}

// Config holds the options a backend is initialized with.
type Config struct {
	Title           string
	Scale           int
	VSync           bool
	DebugInfoWindow bool
}

// Backend represents a complete host front end: a window or terminal pane
// that presents VRAM and reports input events each frame.
type Backend interface {
	// Init configures the backend; called once before the first Update.
	Init(cfg Config) error

	// Update presents the current VRAM buffer (1024x512, 16-bit PSX pixel
	// format: 1 bit mask, 5 bits blue, 5 bits green, 5 bits red) and
	// returns the button/quit events observed since the previous call.
	Update(vram []uint16) ([]ButtonEvent, bool, error)

	// Cleanup releases backend resources on shutdown.
	Cleanup() error
}
