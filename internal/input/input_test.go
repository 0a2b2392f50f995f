package input

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spdfg/maya/internal/graph"
)

func TestSanitizeNearestWithTieFavorsFirst(t *testing.T) {
	g := graph.New()
	b := NewBase(g, "knob")
	b.SetAllowedValues([]float64{10, 20, 30})

	assert.Equal(t, 10.0, b.Sanitize(15)) // tie between 10 and 20: first wins
	assert.Equal(t, 30.0, b.Sanitize(28))
	assert.Equal(t, 10.0, b.Sanitize(-5))
}

func writeCPUFixture(t *testing.T, coreIDs []int) string {
	t.Helper()
	base := t.TempDir()
	for _, id := range coreIDs {
		dir := filepath.Join(base, "cpu"+itoa(id), "cpufreq")
		require.NoError(t, os.MkdirAll(dir, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, scalingCurFreqFile), []byte("2000000\n"), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, scalingSetspeedFile), []byte("2000000\n"), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, scalingMinFreqFile), []byte("1000000\n"), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, scalingMaxFreqFile), []byte("3000000\n"), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, cpuinfoMinFreqFile), []byte("1000000\n"), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, cpuinfoMaxFreqFile), []byte("3000000\n"), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, scalingAvailFreqFile), []byte("1000000 2000000 3000000\n"), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, scalingGovernorFile), []byte("userspace\n"), 0o644))
	}
	return base
}

func itoa(i int) string {
	return string(rune('0' + i))
}

func TestCPUFrequencyConstructAndApply(t *testing.T) {
	base := writeCPUFixture(t, []int{0, 1})
	g := graph.New()

	cf, err := NewCPUFrequency(g, "freq", base, []int{0, 1})
	require.NoError(t, err)
	assert.Equal(t, 1000000.0, cf.Min())
	assert.Equal(t, 3000000.0, cf.Max())
	assert.True(t, cf.writeSetspeed)

	require.NoError(t, cf.SetValue(g, 3000000))
	require.NoError(t, cf.Apply(g))

	for _, id := range []int{0, 1} {
		dir := filepath.Join(base, "cpu"+itoa(id), "cpufreq")
		raw, err := os.ReadFile(filepath.Join(dir, scalingSetspeedFile))
		require.NoError(t, err)
		assert.Equal(t, "3000000", string(raw))
	}
}

func writePowerclampFixture(t *testing.T) string {
	t.Helper()
	base := t.TempDir()
	dev := filepath.Join(base, "cooling_device0")
	require.NoError(t, os.MkdirAll(dev, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dev, deviceTypeFile), []byte("intel_powerclamp\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dev, pclampMaxFile), []byte("100\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dev, pclampSetFile), []byte("-1\n"), 0o644))
	return base
}

func TestIdleInjectConstructAndApply(t *testing.T) {
	base := writePowerclampFixture(t)
	g := graph.New()

	ii, err := NewIdleInject(g, "idle", base)
	require.NoError(t, err)
	assert.Equal(t, 0.0, ii.Values()[0])

	require.NoError(t, ii.SetValue(g, 50))
	require.NoError(t, ii.Apply(g))
	assert.Equal(t, 48.0, ii.Values()[0]) // quantized to nearest multiple of 4
}

func writePowerBalloonFixture(t *testing.T) string {
	t.Helper()
	base := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(base, powerBalloonMaxFile), []byte("100\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(base, powerBalloonFile), []byte("0\n"), 0o644))
	return base
}

func TestPowerBalloonConstructAndApply(t *testing.T) {
	base := writePowerBalloonFixture(t)
	g := graph.New()

	pb, err := NewPowerBalloon(g, "balloon", base)
	require.NoError(t, err)
	assert.Equal(t, 0.0, pb.Min())
	assert.Equal(t, 100.0, pb.Max())

	require.NoError(t, pb.SetValue(g, 51))
	require.NoError(t, pb.Apply(g))

	raw, err := os.ReadFile(filepath.Join(base, powerBalloonFile))
	require.NoError(t, err)
	assert.Equal(t, "50\n", string(raw)) // quantized to nearest even value
}
