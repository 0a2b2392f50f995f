package signal

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValueAlwaysInRange(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for _, kind := range []Kind{Normal, Uniform, Sine, GaussSine} {
		g := New(rng, kind, 10, 20, 15, 2, 3, 1, 50)
		for i := 0; i < 200; i++ {
			v := g.Value()
			assert.GreaterOrEqual(t, v, 10.0)
			assert.LessOrEqual(t, v, 20.0)
		}
	}
}

func TestUniformParam1LessThanParam2(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	g := New(rng, Uniform, 0, 100, 50, 50, 0, 0, 50)
	// param1 == param2 after construction collapses to [min, max].
	assert.Equal(t, 0.0, g.p1)
	assert.Equal(t, 100.0, g.p2)
}

func TestSineAmplitudeClampedToRange(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	g := New(rng, Sine, 0, 10, 5, 1, 100, 0, 50)
	// offset 5, amplitude 100 must shrink so [offset-amp, offset+amp] fits [0,10].
	assert.LessOrEqual(t, g.p1+g.p3, 10.0)
	assert.GreaterOrEqual(t, g.p1-g.p3, 0.0)
}

func TestSelectNewStaysWithinEnabledRange(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	g := New(rng, Normal, 0, 100, 50, 5, 0, 0, 50)
	g.EnableRandomized(Param1, 20, 80)
	for i := 0; i < 50; i++ {
		g.SelectNew(Param1)
		assert.GreaterOrEqual(t, g.p1, 20.0)
		assert.LessOrEqual(t, g.p1, 80.0)
	}
}

func TestParamRangeReportsFixedWhenNotRandomized(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	g := New(rng, Normal, 0, 100, 50, 5, 0, 0, 50)
	lo, hi := g.ParamRange(Param1)
	assert.Equal(t, 50.0, lo)
	assert.Equal(t, 50.0, hi)
}
