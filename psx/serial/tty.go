// Package serial implements the TTY putchar sink used by the BIOS call
// intercept (std_out_putchar, A(3Ch)/B(3Dh)): bytes the guest writes to the
// kernel console are logged as lines, the same buffering idiom as
// jeebie/serial.LogSink applied to a function-call intercept instead of a
// register-backed serial port. TTYSink can optionally put the host
// terminal into raw mode via golang.org/x/term, grounded on
// gmofishsauce-wut4's raw-terminal usage, to pass keystrokes through to an
// interactive guest console session.
package serial

import (
	"log/slog"
	"os"

	"golang.org/x/term"
)

// TTYSink buffers putchar output into lines and logs them.
type TTYSink struct {
	line   []byte
	logger *slog.Logger

	rawState *term.State
}

func NewTTYSink(logger *slog.Logger) *TTYSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &TTYSink{logger: logger}
}

// Putchar appends one byte of kernel console output, flushing a line of
// log output on '\n'.
func (s *TTYSink) Putchar(b byte) {
	if b == '\n' {
		s.flush()
		return
	}
	if b == '\r' {
		return
	}
	s.line = append(s.line, b)
}

// Pending returns the bytes buffered since the last newline.
func (s *TTYSink) Pending() []byte { return s.line }

func (s *TTYSink) flush() {
	if len(s.line) == 0 {
		return
	}
	s.logger.Info("tty", "line", string(s.line))
	s.line = s.line[:0]
}

// EnterRawMode switches the host's stdin into raw mode, for a future
// interactive-passthrough console; ExitRawMode restores it. A no-op when
// stdin is not a terminal.
func (s *TTYSink) EnterRawMode() error {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return nil
	}
	state, err := term.MakeRaw(int(os.Stdin.Fd()))
	if err != nil {
		return err
	}
	s.rawState = state
	return nil
}

func (s *TTYSink) ExitRawMode() error {
	if s.rawState == nil {
		return nil
	}
	err := term.Restore(int(os.Stdin.Fd()), s.rawState)
	s.rawState = nil
	return err
}
