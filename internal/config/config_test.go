package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigValidates(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestLoadWithNoPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().MaxDegree, cfg.MaxDegree)
}

func TestLoadOverlaysYAMLOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_degree: 5\nbatch_size: 3\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.MaxDegree)
	assert.Equal(t, 3, cfg.BatchSize)
	assert.Equal(t, Default().HardTimeout, cfg.HardTimeout)
}

func TestLoadAppliesEnvOverOverYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_degree: 5\n"), 0o644))

	t.Setenv("WIKIHUMANPATH_MAX_DEGREE", "9")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.MaxDegree)
}

func TestValidateRejectsOutOfRangeTunables(t *testing.T) {
	cfg := Default()
	cfg.MaxDegree = 0
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsSoftTimeoutMarginAtOrAboveHardTimeout(t *testing.T) {
	cfg := Default()
	cfg.SoftTimeoutMargin = cfg.HardTimeout
	assert.Error(t, cfg.Validate())
}
