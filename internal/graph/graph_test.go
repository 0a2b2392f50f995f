package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spdfg/maya/internal/vector"
)

func TestAppendPinAndSeal(t *testing.T) {
	g := New()
	out := g.NewPort(Output, "sensor")
	require.NoError(t, g.AppendPin(out, "a"))
	require.NoError(t, g.AppendPin(out, "b"))

	in := g.NewPort(Input, "input", "x", "y")
	_, err := g.NewWire(out, WholePort(), in, WholePort(), 0)
	require.NoError(t, err)

	assert.Error(t, g.AppendPin(out, "c"))
}

func TestWireWidthMismatch(t *testing.T) {
	g := New()
	out := g.NewPort(Output, "sensor", "a", "b")
	in := g.NewPort(Input, "input", "x")

	_, err := g.NewWire(out, WholePort(), in, WholePort(), 0)
	assert.Error(t, err)
}

func TestWireFanInUnique(t *testing.T) {
	g := New()
	out1 := g.NewPort(Output, "s1", "v")
	out2 := g.NewPort(Output, "s2", "v")
	in := g.NewPort(Input, "input", "x")

	_, err := g.NewWire(out1, WholePort(), in, WholePort(), 0)
	require.NoError(t, err)

	_, err = g.NewWire(out2, WholePort(), in, WholePort(), 0)
	assert.Error(t, err)
}

func TestZeroDelayTransferSameTick(t *testing.T) {
	g := New()
	out := g.NewPort(Output, "sensor", "v")
	in := g.NewPort(Input, "input", "v")
	w, err := g.NewWire(out, WholePort(), in, WholePort(), 0)
	require.NoError(t, err)

	require.NoError(t, g.UpdatePort(out, vector.Vector{42}))
	require.NoError(t, w.Transfer(g))

	got, err := g.ReadPort(in)
	require.NoError(t, err)
	assert.Equal(t, vector.Vector{42}, got)
}

func TestDelayedTransferArrivesAfterNTicks(t *testing.T) {
	g := New()
	out := g.NewPort(Output, "sensor", "v")
	in := g.NewPort(Input, "input", "v")
	const delay = 3
	w, err := g.NewWire(out, WholePort(), in, WholePort(), delay)
	require.NoError(t, err)

	for tick := 0; tick < delay; tick++ {
		require.NoError(t, g.UpdatePort(out, vector.Vector{float64(tick + 1)}))
		require.NoError(t, w.Transfer(g))
		got, err := g.ReadPort(in)
		require.NoError(t, err)
		assert.Equal(t, vector.Vector{0}, got, "tick %d: value should not have arrived yet", tick)
	}

	require.NoError(t, g.UpdatePort(out, vector.Vector{99}))
	require.NoError(t, w.Transfer(g))
	got, err := g.ReadPort(in)
	require.NoError(t, err)
	assert.Equal(t, vector.Vector{1}, got, "first tick's value should arrive after delay cycles")
}

func TestPinRangeSelectorAndPinIndex(t *testing.T) {
	g := New()
	out := g.NewPort(Output, "sensor", "a", "b", "c", "d")
	in := g.NewPort(Input, "input", "x", "y")

	_, err := g.NewWire(out, PinRange(1, 2), in, WholePort(), 0)
	require.NoError(t, err)

	require.NoError(t, g.UpdatePort(out, vector.Vector{1, 2, 3, 4}))
	vals, err := g.Transmit(out, []int{1, 2})
	require.NoError(t, err)
	assert.Equal(t, vector.Vector{2, 3}, vals)

	idx, err := g.PinIndex(out, "c")
	require.NoError(t, err)
	assert.Equal(t, 2, idx)
}

func TestValuesUnread(t *testing.T) {
	g := New()
	in := g.NewPort(Input, "input", "x")
	unread, err := g.ValuesUnread(in)
	require.NoError(t, err)
	assert.False(t, unread)

	require.NoError(t, g.ReceiveAll(in, vector.Vector{5}))
	unread, err = g.ValuesUnread(in)
	require.NoError(t, err)
	assert.True(t, unread)
}
