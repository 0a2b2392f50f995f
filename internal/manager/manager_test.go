package manager

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spdfg/maya/internal/controller"
	"github.com/spdfg/maya/internal/telemetry"
	"github.com/spdfg/maya/internal/vector"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func fixtureRAPL(t *testing.T) string {
	base := t.TempDir()
	writeFile(t, filepath.Join(base, "intel-rapl:0/intel-rapl:0:0"), "name", "core\n")
	writeFile(t, filepath.Join(base, "intel-rapl:0/intel-rapl:0:0"), "energy_uj", "1000\n")
	return base
}

func fixtureCPU(t *testing.T) string {
	base := t.TempDir()
	dir := filepath.Join(base, "cpu0", "cpufreq")
	writeFile(t, dir, "scaling_cur_freq", "2000000\n")
	writeFile(t, dir, "scaling_setspeed", "2000000\n")
	writeFile(t, dir, "scaling_min_freq", "1000000\n")
	writeFile(t, dir, "scaling_max_freq", "3000000\n")
	writeFile(t, dir, "cpuinfo_min_freq", "1000000\n")
	writeFile(t, dir, "cpuinfo_max_freq", "3000000\n")
	writeFile(t, dir, "scaling_available_frequencies", "1000000 2000000 3000000\n")
	writeFile(t, dir, "scaling_governor", "userspace\n")
	return base
}

func fixtureThermal(t *testing.T) string {
	base := t.TempDir()
	dir := filepath.Join(base, "cooling_device0")
	writeFile(t, dir, "type", "intel_powerclamp\n")
	writeFile(t, dir, "max_state", "100\n")
	writeFile(t, dir, "cur_state", "-1\n")
	return base
}

func fixtureShm(t *testing.T) string {
	base := t.TempDir()
	writeFile(t, base, "powerBalloonMax.txt", "100\n")
	writeFile(t, base, "powerBalloon.txt", "0\n")
	return base
}

func baseConfig(t *testing.T, m Mode) Config {
	return Config{
		Mode:               m,
		SamplingIntervalMS: 20,
		RAPLBase:           fixtureRAPL(t),
		CPUDevBase:         fixtureCPU(t),
		ThermalBase:        fixtureThermal(t),
		ShmBase:            fixtureShm(t),
		CoreIDs:            []int{0},
		Rand:               rand.New(rand.NewSource(1)),
	}
}

func testChain(t *testing.T) *telemetry.Chain {
	chain, err := telemetry.Build(telemetry.DefaultConfig(), t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = chain.Close() })
	return chain
}

func TestBuildBaselineAndRunTicks(t *testing.T) {
	m, err := Build(baseConfig(t, Baseline), testChain(t))
	require.NoError(t, err)

	for tick := 0; tick < 3; tick++ {
		require.NoError(t, m.runTick(tick))
	}
	require.NoError(t, m.resetInputs())
	assert.Len(t, m.powerTrace.Samples(), 3)
}

func TestBuildSysidResamplesAfterHoldPeriod(t *testing.T) {
	cfg := baseConfig(t, Sysid)
	cfg.SysidInputNames = []string{"PBalloon"}
	cfg.MinHoldPeriod = 2
	cfg.MaxHoldPeriod = 2

	m, err := Build(cfg, testChain(t))
	require.NoError(t, err)

	pballoon := m.inputByName("PBalloon")
	require.NotNil(t, pballoon)

	// The first hold period is always the fixed initialHoldPeriod (3),
	// regardless of MinHoldPeriod/MaxHoldPeriod.
	require.Equal(t, uint32(initialHoldPeriod), m.sysid.holdPeriod[0])

	require.NoError(t, m.runTick(0))
	assert.Equal(t, uint32(1), m.sysid.holdCounter[0])

	require.NoError(t, m.runTick(1))
	assert.Equal(t, uint32(2), m.sysid.holdCounter[0])

	require.NoError(t, m.runTick(2))
	// Hold period reached on tick 3: counter resets, a fresh value was
	// requested, and the next hold period is drawn from [MinHoldPeriod,
	// MaxHoldPeriod].
	assert.Equal(t, uint32(0), m.sysid.holdCounter[0])
	assert.Equal(t, uint32(2), m.sysid.holdPeriod[0])
}

func TestBuildSysidRejectsUnknownInputName(t *testing.T) {
	cfg := baseConfig(t, Sysid)
	cfg.SysidInputNames = []string{"NotARealInput"}

	_, err := Build(cfg, testChain(t))
	assert.Error(t, err)
}

func TestBuildMaskRunsControllerAgainstPlanner(t *testing.T) {
	cfg := baseConfig(t, Mask)
	cfg.UsePlainPlanner = true
	cfg.PlannerConfig.Targets = vector.Vector{500}
	cfg.PlannerConfig.MaxLimits = vector.Vector{1000}
	cfg.PlannerConfig.MinLimits = vector.Vector{0}

	// Three actuators (CPUFreq, IdlePct, PBalloon) feed one measurement
	// (CPUPower): C/D have one row per actuator, A/B are sized by the
	// single-dimension internal state, ScaleInUp has one entry per
	// actuator. Only the first actuator (CPUFreq) reacts to error.
	a := vector.NewMatrix(1, 1)
	b := vector.NewMatrix(1, 1)
	c := vector.NewMatrix(3, 1)
	d := vector.NewMatrix(3, 1)
	d.Set(0, 0, 1)
	cfg.ControllerConfig = controller.Config{
		A: a, B: b, C: c, D: d,
		ScaleInUp:    vector.Vector{1, 1, 1},
		ScaleOutDown: vector.Vector{1},
	}

	m, err := Build(cfg, testChain(t))
	require.NoError(t, err)

	for tick := 0; tick < 3; tick++ {
		require.NoError(t, m.runTick(tick))
	}
}
