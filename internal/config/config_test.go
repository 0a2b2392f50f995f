package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoadController(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "ctl_dimension.txt", "1")
	writeFile(t, dir, "ctl_numInputs.txt", "1")
	writeFile(t, dir, "ctl_numYmeas.txt", "1")
	writeFile(t, dir, "ctl_A.txt", "0.5")
	writeFile(t, dir, "ctl_B.txt", "1")
	writeFile(t, dir, "ctl_C.txt", "1")
	writeFile(t, dir, "ctl_D.txt", "0")
	writeFile(t, dir, "ctl_scaleInputsUp.txt", "1")
	writeFile(t, dir, "ctl_scaleYmeasDown.txt", "1")

	cfg, err := LoadController(dir, "ctl")
	require.NoError(t, err)
	assert.Equal(t, 0.5, cfg.A.At(0, 0))
	assert.Equal(t, 1, cfg.A.Rows())
}

func TestLoadPlannerWithoutPreset(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "pl_maxLimits.txt", "100 100")
	writeFile(t, dir, "pl_minLimits.txt", "0 0")
	writeFile(t, dir, "pl_targets.txt", "50 60")

	cfg, err := LoadPlanner(dir, "pl", false)
	require.NoError(t, err)
	assert.False(t, cfg.UsePreset)
	assert.Nil(t, cfg.PresetTargets)
}

func TestLoadPlannerWithPreset(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "pl_maxLimits.txt", "100 100")
	writeFile(t, dir, "pl_minLimits.txt", "0 0")
	writeFile(t, dir, "pl_targets.txt", "50 60")
	writeFile(t, dir, "pl_presetlen.txt", "2")
	writeFile(t, dir, "pl_presets.txt", "1 2\n3 4\n")

	cfg, err := LoadPlanner(dir, "pl", true)
	require.NoError(t, err)
	require.NotNil(t, cfg.PresetTargets)
	assert.Equal(t, 2, cfg.PresetTargets.Rows())
	assert.Equal(t, 3.0, cfg.PresetTargets.At(1, 0))
}
