package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultEnablesFramebufferAndDisablesVerboseLogging(t *testing.T) {
	cfg := Default()
	assert.True(t, cfg.ShowFramebuffer)
	assert.False(t, cfg.Log.Verbose)
	assert.False(t, cfg.DebugInfoWindow)
}

func TestLoadParsesYAMLAndKeepsDefaultsForOmittedFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "psxgo.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  verbose: true\ndebugInfoWindow: true\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Log.Verbose)
	assert.True(t, cfg.DebugInfoWindow)
	assert.True(t, cfg.ShowFramebuffer) // default preserved, not overwritten by the zero value
}

func TestLoadReturnsErrorForMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadReturnsErrorForMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log: [this is not a mapping"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
