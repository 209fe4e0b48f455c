package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("UNLATEX_BUNDLE", "")
	t.Setenv("UNLATEX_LOG_LEVEL", "")
	t.Setenv("UNLATEX_MAX_CALL_STACK", "")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 120, cfg.Format.PrintWidth)
	assert.Equal(t, 2, cfg.Format.TabWidth)
	assert.Nil(t, cfg.Engine.DisabledGlobals)
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "unlatex.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
engine:
  bundle: /opt/unlatex.umd.js
  disabled_globals: [Proxy]
format:
  print_width: 100
  use_tabs: true
log:
  level: debug
`), 0o644))

	t.Setenv("UNLATEX_BUNDLE", "")
	t.Setenv("UNLATEX_LOG_LEVEL", "")
	t.Setenv("UNLATEX_MAX_CALL_STACK", "")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "/opt/unlatex.umd.js", cfg.Engine.Bundle)
	assert.Equal(t, []string{"Proxy"}, cfg.Engine.DisabledGlobals)
	assert.Equal(t, 100, cfg.Format.PrintWidth)
	assert.True(t, cfg.Format.UseTabs)
	assert.Equal(t, 2, cfg.Format.TabWidth, "unset keys keep their default")
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())

	t.Setenv("UNLATEX_BUNDLE", "/env/bundle.js")
	t.Setenv("UNLATEX_LOG_LEVEL", "warn")
	t.Setenv("UNLATEX_MAX_CALL_STACK", "512")
	cfg, err = LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "/env/bundle.js", cfg.Engine.Bundle)
	assert.Equal(t, slog.LevelWarn, cfg.SlogLevel())
	assert.Equal(t, 512, cfg.Engine.MaxCallStackSize)
}

func TestLoadConfig_Errors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("format: [unclosed"), 0o644))
	_, err := LoadConfig(path)
	assert.Error(t, err)

	t.Setenv("UNLATEX_MAX_CALL_STACK", "deep")
	_, err = LoadConfig("")
	assert.Error(t, err)
}
