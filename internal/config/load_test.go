package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strataconf/strata/internal/config"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	orig, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(orig) })
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "outputs", cfg.Runs.Root)
	assert.True(t, cfg.Pipeline.Strict)
	assert.True(t, cfg.Pipeline.ValidateAssign)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	doc := `runs:
  root: /var/lib/strata/runs
pipeline:
  strict: false
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "strata.yaml"), []byte(doc), 0o644))
	chdir(t, dir)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/strata/runs", cfg.Runs.Root)
	assert.False(t, cfg.Pipeline.Strict)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	doc := `log:
  level: info
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "strata.yaml"), []byte(doc), 0o644))
	chdir(t, dir)
	t.Setenv("STRATA_LOG_LEVEL", "warn")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadRejectsInvalidLogLevel(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("STRATA_LOG_LEVEL", "verbose")

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Log.Level")
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "strata.yaml"), []byte(":\t-bad"), 0o644))
	chdir(t, dir)

	_, err := config.Load()
	require.Error(t, err)
}
