// Package hosterror reports unrecoverable host-side failures: a bad BIOS
// image, a malformed config file. These are
// distinct from architectural CPU exceptions, which COP0 routes into the
// guest rather than ever surfacing as a Go error (spec.md §7). Logged via
// log/slog, matching the teacher's structured-logging idiom, then the
// process exits non-zero; there is no recovery path for a host-side
// failure once the emulator has failed to start.
package hosterror

import (
	"log/slog"
	"os"
)

// Fatal logs msg with attrs at error level and terminates the process.
func Fatal(logger *slog.Logger, msg string, attrs ...any) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Error(msg, attrs...)
	os.Exit(1)
}

// FatalErr logs err wrapped with msg and terminates the process.
func FatalErr(logger *slog.Logger, msg string, err error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Error(msg, "error", err)
	os.Exit(1)
}
