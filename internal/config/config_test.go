package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFromAppliesDefaultsToUnsetFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("service_url: http://example.test/api\n"), 0600))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "http://example.test/api", cfg.ServiceURL)
	assert.Equal(t, Default().RequestTimeout, cfg.RequestTimeout)
	assert.Equal(t, Default().WatchdogCeiling, cfg.WatchdogCeiling)
	assert.Equal(t, Default().ExpandAttempts, cfg.ExpandAttempts)
}

func TestLoadFromInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("service_url: [broken\n"), 0600))

	cfg, err := LoadFrom(path)
	assert.Error(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	want := Default()
	want.ServiceURL = "http://example.test/estimator"
	want.RequestTimeout = 3 * time.Second
	require.NoError(t, want.Save())

	got, err := Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestDirHonorsXDGConfigHome(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	got, err := Dir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "estimator"), got)
}
