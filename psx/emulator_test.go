package psx

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kagami/psxgo/psx/config"
	"github.com/kagami/psxgo/psx/cpu"
	"github.com/kagami/psxgo/psx/gpu"
	"github.com/kagami/psxgo/psx/intc"
)

type fakeRasterizer struct{}

func (fakeRasterizer) PushTriangle(v [3]gpu.Vertex, opaque bool) {}
func (fakeRasterizer) PushQuad(v [4]gpu.Vertex, opaque bool)     {}
func (fakeRasterizer) Display(x, y, w, h uint16)                 {}

func writeBlankBIOS(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "bios.bin")
	require.NoError(t, os.WriteFile(path, make([]byte, 0x80000), 0o644))
	return path
}

func TestNewAssemblesAMachineAtTheResetVector(t *testing.T) {
	biosPath := writeBlankBIOS(t)
	logger := slog.New(slog.NewTextHandler(bytes.NewBuffer(nil), nil))

	m, err := New(biosPath, fakeRasterizer{}, config.Default(), logger)
	require.NoError(t, err)
	require.NotNil(t, m.CPU)
	require.EqualValues(t, 0xBFC00000, m.CPU.PC())
	require.NotNil(t, m.CPU.BIOSCall)
}

func TestBIOSCallHookForwardsStdOutPutcharToTheTTYSink(t *testing.T) {
	biosPath := writeBlankBIOS(t)
	logger := slog.New(slog.NewTextHandler(bytes.NewBuffer(nil), nil))

	m, err := New(biosPath, fakeRasterizer{}, config.Default(), logger)
	require.NoError(t, err)

	var regs cpu.Registers
	regs.Set(4, uint32('A')) // $a0: the character argument to std_out_putchar

	m.CPU.BIOSCall(0xB0, 0x3D, &regs)

	require.Equal(t, []byte{'A'}, m.TTY.Pending())
}

func TestBIOSCallHookAlsoRecognizesTheATableEntryPoint(t *testing.T) {
	biosPath := writeBlankBIOS(t)
	logger := slog.New(slog.NewTextHandler(bytes.NewBuffer(nil), nil))

	m, err := New(biosPath, fakeRasterizer{}, config.Default(), logger)
	require.NoError(t, err)

	var regs cpu.Registers
	regs.Set(4, uint32('B'))

	m.CPU.BIOSCall(0xA0, 0x3C, &regs)

	require.Equal(t, []byte{'B'}, m.TTY.Pending())
}

func TestBIOSCallHookIgnoresOtherVectorsAndFunctions(t *testing.T) {
	biosPath := writeBlankBIOS(t)
	logger := slog.New(slog.NewTextHandler(bytes.NewBuffer(nil), nil))

	m, err := New(biosPath, fakeRasterizer{}, config.Default(), logger)
	require.NoError(t, err)

	var regs cpu.Registers
	regs.Set(4, uint32('Z'))

	m.CPU.BIOSCall(0xA0, 0x3D, &regs) // A(3Dh) is not std_out_putchar; only A(3Ch) and B(3Dh) are
	m.CPU.BIOSCall(0xB0, 0x01, &regs) // a different B-table function

	require.Empty(t, m.TTY.Pending())
}

func TestRunUntilFrameAdvancesFrameCountAndRaisesVBLANK(t *testing.T) {
	biosPath := writeBlankBIOS(t)
	logger := slog.New(slog.NewTextHandler(bytes.NewBuffer(nil), nil))

	m, err := New(biosPath, fakeRasterizer{}, config.Default(), logger)
	require.NoError(t, err)

	m.RunUntilFrame()
	require.EqualValues(t, 1, m.FrameCount())
	require.NotZero(t, m.INTC.Status()&(1<<intc.VBLANK))
}

func TestQuitStopsTheFrameLoop(t *testing.T) {
	biosPath := writeBlankBIOS(t)
	logger := slog.New(slog.NewTextHandler(bytes.NewBuffer(nil), nil))

	m, err := New(biosPath, fakeRasterizer{}, config.Default(), logger)
	require.NoError(t, err)

	require.False(t, m.ShouldQuit())
	m.Quit()
	require.True(t, m.ShouldQuit())
}
