package headless_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kagami/psxgo/psx/backend"
	"github.com/kagami/psxgo/psx/backend/headless"
)

func TestHeadlessBackendQuitsAfterMaxFrames(t *testing.T) {
	h := headless.New(3, nil)

	err := h.Init(backend.Config{Title: "Test"})
	assert.NoError(t, err)

	vram := make([]uint16, 1024*512)
	for i := 0; i < 3; i++ {
		events, quit, err := h.Update(vram)
		assert.NoError(t, err)
		assert.Empty(t, events)
		if i < 2 {
			assert.False(t, quit)
		} else {
			assert.True(t, quit)
		}
	}

	assert.NoError(t, h.Cleanup())
}

func TestHeadlessBackendRunsForeverWhenMaxFramesIsZero(t *testing.T) {
	h := headless.New(0, nil)
	assert.NoError(t, h.Init(backend.Config{}))

	vram := make([]uint16, 1024*512)
	for i := 0; i < 200; i++ {
		_, quit, err := h.Update(vram)
		assert.NoError(t, err)
		assert.False(t, quit)
	}
}

func TestHeadlessImplementsBackend(t *testing.T) {
	var _ backend.Backend = (*headless.Backend)(nil)
}
