// Command psxgo boots a BIOS image on the PSX core and drives it with a
// selectable host backend. Structured after cmd/jeebie/main.go's
// urfave/cli app setup and headless/interactive split, generalized from a
// single terminal renderer to a Backend selection between headless,
// terminal, and (with the sdl2 build tag) a real window.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli"

	"github.com/kagami/psxgo/psx"
	"github.com/kagami/psxgo/psx/backend"
	"github.com/kagami/psxgo/psx/backend/headless"
	"github.com/kagami/psxgo/psx/backend/terminal"
	"github.com/kagami/psxgo/psx/config"
	"github.com/kagami/psxgo/psx/hosterror"
	"github.com/kagami/psxgo/psx/raster"
)

func main() {
	app := cli.NewApp()
	app.Name = "psxgo"
	app.Description = "A PlayStation core"
	app.Usage = "psxgo [options] --bios <BIOS file>"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "bios",
			Usage: "Path to the BIOS image (required)",
		},
		cli.StringFlag{
			Name:  "config",
			Usage: "Path to a YAML configuration file",
		},
		cli.BoolFlag{
			Name:  "headless",
			Usage: "Run without a terminal display",
		},
		cli.IntFlag{
			Name:  "frames",
			Usage: "Number of frames to run in headless mode (0 = unbounded)",
			Value: 0,
		},
		cli.BoolFlag{
			Name:  "sdl2",
			Usage: "Use the SDL2 window backend instead of the terminal backend",
		},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		hosterror.FatalErr(nil, "psxgo failed to start", err)
	}
}

func run(c *cli.Context) error {
	biosPath := c.String("bios")
	if biosPath == "" {
		cli.ShowAppHelp(c)
		return errors.New("psxgo: --bios is required")
	}

	cfg := config.Default()
	if path := c.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	logLevel := slog.LevelInfo
	if cfg.Log.Verbose || cfg.Log.Trace {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	rasterizer := raster.New(logger.With("subsystem", "raster"))

	machine, err := psx.New(biosPath, rasterizer, cfg, logger)
	if err != nil {
		return fmt.Errorf("psxgo: %w", err)
	}

	var be backend.Backend
	switch {
	case c.Bool("headless"):
		be = headless.New(c.Int("frames"), logger.With("subsystem", "backend"))
	case c.Bool("sdl2"):
		be = backend.NewSDL2(logger.With("subsystem", "backend"))
	default:
		be = terminal.New(logger.With("subsystem", "backend"))
	}

	beCfg := backend.Config{
		Title:           "psxgo",
		Scale:           2,
		VSync:           true,
		DebugInfoWindow: cfg.DebugInfoWindow,
	}
	if err := be.Init(beCfg); err != nil {
		return fmt.Errorf("psxgo: %w", err)
	}
	defer be.Cleanup()

	maxFrames := c.Int("frames")
	for !machine.ShouldQuit() {
		machine.RunUntilFrame()

		events, quit, err := be.Update(machine.VRAM())
		if err != nil {
			return fmt.Errorf("psxgo: %w", err)
		}
		for _, ev := range events {
			machine.Pad.SetButtonState(ev.Button, ev.Pressed)
		}
		if quit {
			machine.Quit()
		}
		if maxFrames > 0 && machine.FrameCount() >= uint64(maxFrames) {
			machine.Quit()
		}
	}

	logger.Info("shutting down", "frames", machine.FrameCount())
	return nil
}
