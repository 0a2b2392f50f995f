package safetycap

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeZone(t *testing.T, base, zone, maxPowerUW string) {
	t.Helper()
	dir := filepath.Join(base, zone)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, maxPowerFileShort), []byte(maxPowerUW), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, powerLimitFileShort), []byte("0"), 0o644))
}

func TestCapAllWritesPercentageOfMax(t *testing.T) {
	base := t.TempDir()
	writeZone(t, base, "intel-rapl:0", "100000000") // 100W
	writeZone(t, base, "intel-rapl:1", "50000000")  // 50W
	// sub-zone should be skipped.
	writeZone(t, base, "intel-rapl:0:0", "1000")

	results, err := CapAll(base, 80)
	require.NoError(t, err)
	require.Len(t, results, 2)

	written, err := os.ReadFile(filepath.Join(base, "intel-rapl:0", powerLimitFileShort))
	require.NoError(t, err)
	assert.Equal(t, "80000000", string(written))
}

func TestCapAllRejectsInvalidPercentage(t *testing.T) {
	_, err := CapAll(t.TempDir(), 0)
	assert.Error(t, err)
	_, err = CapAll(t.TempDir(), 101)
	assert.Error(t, err)
}
