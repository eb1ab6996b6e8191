// Package config loads the emulator's YAML configuration file: logging
// verbosity per subsystem and debug-display toggles. Ambient-stack
// addition (SPEC_FULL.md §10); the teacher has no direct config-file
// analogue, so this follows the pack's only config-capable dependency,
// gopkg.in/yaml.v3, structured the way the teacher's cli.App flags are
// structured (one field per concern, sensible zero-value defaults).
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Log controls per-subsystem logging verbosity.
type Log struct {
	BIOS    bool `yaml:"bios"`
	CDROM   bool `yaml:"cdrom"`
	Verbose bool `yaml:"verbose"`
	Trace   bool `yaml:"trace"`
}

// Config is the root of the emulator's configuration file.
type Config struct {
	Log             Log  `yaml:"log"`
	DebugInfoWindow bool `yaml:"debugInfoWindow"`
	ShowFramebuffer bool `yaml:"showFramebuffer"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{ShowFramebuffer: true}
}

// Load reads and parses a YAML config file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: failed to read %q: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: failed to parse %q: %w", path, err)
	}
	return cfg, nil
}
