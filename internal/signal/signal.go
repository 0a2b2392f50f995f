// Package signal generates the stochastic waveforms the mask generator
// drives outputs with during Mask mode: Normal, Uniform, Sine, and
// GaussSine, each clamped to a configured [min, max] range and each
// with parameters that can optionally be re-randomized from a range on
// every mask-property refresh.
package signal

import (
	"math"
	"math/rand"

	"github.com/spdfg/maya/internal/vector"
)

// Kind identifies which waveform family a Generator produces.
type Kind int

const (
	Normal Kind = iota
	Uniform
	Sine
	GaussSine
)

// Param identifies one of a Generator's four tunable parameters. Their
// meaning depends on Kind:
//
//	Normal:    param1=mean,   param2=stddev
//	Uniform:   param1=min,    param2=max
//	Sine:      param1=offset, param2=freq, param3=amplitude
//	GaussSine: as Sine, plus param4=stddev of additive Gaussian noise
type Param int

const (
	Param1 Param = iota
	Param2
	Param3
	Param4
)

// minSineCycles is the fewest samples one sinusoid cycle may span,
// which bounds how high param2 (frequency) can go: at most
// samplingFreq/minSineCycles.
const minSineCycles = 4.0

// holdPeriodMax is the upper bound of the discrete-uniform distribution
// mask-property hold periods are sampled from (holdMax in
// internal/planner/mask.go); it bounds how low a sinusoid's frequency
// can go: at least samplingFreq/holdPeriodMax.
const holdPeriodMax = 125.0

// Generator produces successive samples of one waveform, clamped to
// [Min, Max]. The zero value is not usable; construct with New.
type Generator struct {
	kind     Kind
	min, max float64

	p1, p2, p3, p4 float64

	samplingFreq float64 // samples/sec the sine family is clocked at
	time         float64 // running phase clock for Sine/GaussSine

	randomize [4]bool
	paramLo   [4]float64
	paramHi   [4]float64

	rng *rand.Rand
}

// New constructs a Generator of the given kind over [min, max], seeded
// with the four initial parameter values, sampling the sine family at
// samplingFreq samples/sec. rng must be non-nil; callers share one
// *rand.Rand across generators that should draw from a single stream.
func New(rng *rand.Rand, kind Kind, min, max, p1, p2, p3, p4, samplingFreq float64) *Generator {
	g := &Generator{
		kind:         kind,
		min:          min,
		max:          max,
		p1:           p1,
		p2:           p2,
		p3:           p3,
		p4:           p4,
		samplingFreq: samplingFreq,
		rng:          rng,
	}
	g.sanitizeParamValues()
	return g
}

func clampRange(v, lo, hi float64) float64 {
	if v < lo {
		v = lo
	}
	if v > hi {
		v = hi
	}
	return v
}

// minFreq/maxFreq bound the frequency a sinusoid may take: one cycle
// spans at most holdPeriodMax samples (the longest possible
// mask-property hold period) and at least minSineCycles samples.
// samplingFreq itself is already a third of the tick rate.
func (g *Generator) minFreq() float64 { return g.samplingFreq / holdPeriodMax }
func (g *Generator) maxFreq() float64 { return g.samplingFreq / minSineCycles }

// sanitizeParamValues re-derives param1..4 so they remain legal for
// Kind after any parameter changes, mirroring
// SignalGenerator::sanitizeParamValues.
func (g *Generator) sanitizeParamValues() {
	g.p1 = clampRange(g.p1, g.min, g.max)

	switch g.kind {
	case Sine, GaussSine:
		g.p2 = math.Min(g.p2, g.maxFreq())
		g.p2 = math.Max(g.p2, g.minFreq())

		switch {
		case g.p1+g.p3 > g.max && g.p1-g.p3 < g.min:
			g.p3 = math.Min(g.max-g.p1, g.p1-g.min)
		case g.p1+g.p3 > g.max:
			g.p3 = g.max - g.p1
		case g.p1-g.p3 < g.min:
			g.p3 = g.p1 - g.min
		}
	case Uniform:
		g.p2 = math.Max(g.p2, g.p1)
		g.p2 = math.Min(g.p2, g.max)
		if g.p2 == g.p1 {
			g.p1 = g.min
			g.p2 = g.max
		}
	}
}

// Value draws the next sample, always within [Min, Max].
func (g *Generator) Value() float64 {
	var v float64
	switch g.kind {
	case Normal:
		v = g.rng.NormFloat64()*g.p2 + g.p1
	case Sine, GaussSine:
		v = g.p1 + g.p3*math.Sin(2.0*math.Pi*g.p2*g.time)
		g.time += 1.0 / g.samplingFreq
		if g.kind == GaussSine {
			v += g.rng.NormFloat64() * g.p4
		}
	case Uniform:
		v = g.p1 + g.rng.Float64()*(g.p2-g.p1)
	}
	return clampRange(v, g.min, g.max)
}

// EnableRandomized marks param p to be redrawn uniformly from [lo, hi]
// whenever SelectNew is called for it.
func (g *Generator) EnableRandomized(p Param, lo, hi float64) {
	g.randomize[p] = true
	g.SetParamRange(p, lo, hi)
}

// SetParamRange updates the range param p is redrawn from, after
// clamping it to what is legal for this generator's Kind and current
// parameter role.
func (g *Generator) SetParamRange(p Param, lo, hi float64) {
	lo, hi = g.sanitizeParamRange(p, lo, hi)
	g.paramLo[p], g.paramHi[p] = lo, hi
}

func (g *Generator) sanitizeParamRange(p Param, lo, hi float64) (float64, float64) {
	if lo > hi {
		lo, hi = hi, lo
	}
	switch {
	case p == Param1, p == Param2 && g.kind == Uniform, p == Param3:
		lo = clampRange(lo, g.min, g.max)
		hi = clampRange(hi, g.min, g.max)
	case p == Param2 && (g.kind == Sine || g.kind == GaussSine):
		lo = clampRange(lo, g.minFreq(), g.maxFreq())
		hi = clampRange(hi, g.minFreq(), g.maxFreq())
	}
	return lo, hi
}

// SelectNew redraws param p uniformly from its configured range and
// applies it, re-deriving any dependent parameters and distributions.
func (g *Generator) SelectNew(p Param) {
	lo, hi := g.paramLo[p], g.paramHi[p]
	val := lo + g.rng.Float64()*(hi-lo)
	g.SetParam(p, val)
}

// SetParam applies val to param p and re-sanitizes every parameter.
func (g *Generator) SetParam(p Param, val float64) {
	switch p {
	case Param1:
		g.p1 = val
	case Param2:
		g.p2 = val
	case Param3:
		g.p3 = val
	case Param4:
		g.p4 = val
	}
	g.sanitizeParamValues()
}

// ParamRange reports the range param p is drawn from if randomized, or
// (value, value) otherwise.
func (g *Generator) ParamRange(p Param) (lo, hi float64) {
	if !g.randomize[p] {
		v := g.param(p)
		return v, v
	}
	return g.paramLo[p], g.paramHi[p]
}

func (g *Generator) param(p Param) float64 {
	switch p {
	case Param1:
		return g.p1
	case Param2:
		return g.p2
	case Param3:
		return g.p3
	default:
		return g.p4
	}
}

// Params returns the four raw parameter values, in order.
func (g *Generator) Params() vector.Vector {
	return vector.Vector{g.p1, g.p2, g.p3, g.p4}
}
