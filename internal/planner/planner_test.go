package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spdfg/maya/internal/graph"
	"github.com/spdfg/maya/internal/vector"
)

func baseConfig() Config {
	return Config{
		MaxLimits: vector.Vector{100, 100},
		MinLimits: vector.Vector{0, 0},
		Targets:   vector.Vector{50, 60},
	}
}

func TestPlannerHoldsTargetWhenNoPreset(t *testing.T) {
	g := graph.New()
	p, err := New(g, "planner", baseConfig(), 1)
	require.NoError(t, err)

	require.NoError(t, p.Run(g))
	vals, err := g.TransmitAll(p.TargetPort())
	require.NoError(t, err)
	assert.Equal(t, vector.Vector{50, 60}, vals)
}

func TestPlannerReplaysPresetRows(t *testing.T) {
	g := graph.New()
	cfg := baseConfig()
	cfg.UsePreset = true
	cfg.PresetTargets = vector.NewMatrix(3, 2)
	cfg.PresetTargets.Set(0, 0, 1)
	cfg.PresetTargets.Set(0, 1, 2)
	cfg.PresetTargets.Set(1, 0, 3)
	cfg.PresetTargets.Set(1, 1, 4)
	cfg.PresetTargets.Set(2, 0, 5)
	cfg.PresetTargets.Set(2, 1, 6)

	p, err := New(g, "planner", cfg, 1)
	require.NoError(t, err)

	var got []vector.Vector
	for i := 0; i < 4; i++ {
		require.NoError(t, p.Run(g))
		vals, err := g.TransmitAll(p.TargetPort())
		require.NoError(t, err)
		got = append(got, vals)
	}
	assert.Equal(t, vector.Vector{1, 2}, got[0])
	assert.Equal(t, vector.Vector{3, 4}, got[1])
	assert.Equal(t, vector.Vector{5, 6}, got[2])
	assert.Equal(t, vector.Vector{1, 2}, got[3], "preset replay must wrap around")
}

func TestPlannerPeriodGatesRecompute(t *testing.T) {
	g := graph.New()
	cfg := baseConfig()
	cfg.UsePreset = true
	cfg.PresetTargets = vector.NewMatrix(2, 2)
	cfg.PresetTargets.Set(0, 0, 1)
	cfg.PresetTargets.Set(0, 1, 1)
	cfg.PresetTargets.Set(1, 0, 2)
	cfg.PresetTargets.Set(1, 1, 2)

	p, err := New(g, "planner", cfg, 3)
	require.NoError(t, err)

	// The first tick always recomputes (the cycle counter starts equal
	// to the period), then the next (period-1) ticks hold steady.
	require.NoError(t, p.Run(g))
	vals, err := g.TransmitAll(p.TargetPort())
	require.NoError(t, err)
	assert.Equal(t, vector.Vector{1, 1}, vals)

	for i := 0; i < 2; i++ {
		require.NoError(t, p.Run(g))
		vals, err := g.TransmitAll(p.TargetPort())
		require.NoError(t, err)
		assert.Equal(t, vector.Vector{1, 1}, vals, "tick %d should hold the last computed target", i)
	}

	require.NoError(t, p.Run(g))
	vals, err = g.TransmitAll(p.TargetPort())
	require.NoError(t, err)
	assert.Equal(t, vector.Vector{2, 2}, vals, "fourth tick should recompute from preset")
}
