package controller

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spdfg/maya/internal/graph"
	"github.com/spdfg/maya/internal/vector"
)

func identityConfig() Config {
	a := vector.NewMatrix(1, 1)
	a.Set(0, 0, 0) // no state memory: isolates the D-feedthrough term
	b := vector.NewMatrix(1, 1)
	b.Set(0, 0, 0)
	c := vector.NewMatrix(1, 1)
	c.Set(0, 0, 0)
	d := vector.NewMatrix(1, 1)
	d.Set(0, 0, 1) // pass delta straight through

	return Config{
		A: a, B: b, C: c, D: d,
		ScaleInUp:    vector.Vector{1},
		ScaleOutDown: vector.Vector{1},
	}
}

func TestRobustControllerFeedsThroughDelta(t *testing.T) {
	g := graph.New()
	rc := New(g, "ctl", identityConfig(), 1)

	require.NoError(t, g.ReceiveAll(rc.CurrInputPort(), vector.Vector{100}))
	require.NoError(t, g.ReceiveAll(rc.OutputTargetPort(), vector.Vector{50}))
	require.NoError(t, g.ReceiveAll(rc.OutputPort(), vector.Vector{30}))

	require.NoError(t, rc.Run(g))

	newInputs, err := g.TransmitAll(rc.NewInputPort())
	require.NoError(t, err)
	// delta = 50-30 = 20, D=1 so rawInputs=20, scaleInUp=1, + currInputs(100) = 120.
	assert.Equal(t, vector.Vector{120.0}, newInputs)
}

func TestRobustControllerHoldsBetweenSamplingIntervals(t *testing.T) {
	g := graph.New()
	rc := New(g, "ctl", identityConfig(), 3)

	require.NoError(t, g.ReceiveAll(rc.CurrInputPort(), vector.Vector{100}))
	require.NoError(t, g.ReceiveAll(rc.OutputTargetPort(), vector.Vector{50}))
	require.NoError(t, g.ReceiveAll(rc.OutputPort(), vector.Vector{30}))

	// First tick always runs (cycles starts equal to samplingInterval).
	require.NoError(t, rc.Run(g))
	first, err := g.TransmitAll(rc.NewInputPort())
	require.NoError(t, err)
	assert.Equal(t, vector.Vector{120.0}, first)

	// Feed a new current-input value; controller should hold it steady
	// (echo currInputs unchanged) for the next two ticks.
	require.NoError(t, g.ReceiveAll(rc.CurrInputPort(), vector.Vector{120}))
	require.NoError(t, rc.Run(g))
	second, err := g.TransmitAll(rc.NewInputPort())
	require.NoError(t, err)
	assert.Equal(t, vector.Vector{120.0}, second)
}

func TestRobustControllerAccumulatesState(t *testing.T) {
	g := graph.New()
	a := vector.NewMatrix(1, 1)
	a.Set(0, 0, 1) // integrator: state accumulates delta forever
	b := vector.NewMatrix(1, 1)
	b.Set(0, 0, 1)
	c := vector.NewMatrix(1, 1)
	c.Set(0, 0, 1)
	d := vector.NewMatrix(1, 1)
	d.Set(0, 0, 0)

	rc := New(g, "ctl", Config{A: a, B: b, C: c, D: d, ScaleInUp: vector.Vector{1}, ScaleOutDown: vector.Vector{1}}, 1)

	require.NoError(t, g.ReceiveAll(rc.CurrInputPort(), vector.Vector{0}))
	require.NoError(t, g.ReceiveAll(rc.OutputTargetPort(), vector.Vector{10}))
	require.NoError(t, g.ReceiveAll(rc.OutputPort(), vector.Vector{0}))

	require.NoError(t, rc.Run(g))
	first, err := g.TransmitAll(rc.NewInputPort())
	require.NoError(t, err)
	// state was 0, so C*state=0, delta=10, newInputs = 0 + 0 = 0 (uses OLD state).
	assert.Equal(t, vector.Vector{0.0}, first)

	require.NoError(t, g.ReceiveAll(rc.CurrInputPort(), vector.Vector{0}))
	require.NoError(t, rc.Run(g))
	second, err := g.TransmitAll(rc.NewInputPort())
	require.NoError(t, err)
	// state is now 10 (A*0 + B*10), so C*state=10 is fed through this time.
	assert.Equal(t, vector.Vector{10.0}, second)
}
