package planner

import (
	"math/rand"

	"github.com/spdfg/maya/internal/graph"
	"github.com/spdfg/maya/internal/signal"
	"github.com/spdfg/maya/internal/vector"
)

// holdMin and holdMax bound how long (in ticks) a mask's signal
// parameters stay fixed before being redrawn: sampled uniformly from
// [holdMin, holdMax] every time they change.
const (
	holdMin = 12
	holdMax = 125
)

// MaskGenerator overrides Planner's target computation with one
// signal.Generator per output, producing a stochastic excitation
// waveform instead of a fixed or replayed target. For Kind Uniform the
// new value is held piecewise-constant for a randomly chosen number of
// ticks rather than redrawn every tick, so a "Uniform mask" is a
// piecewise-constant random step function, not literal per-tick noise.
type MaskGenerator struct {
	*Planner

	kind           signal.Kind
	gens           []*signal.Generator
	rng            *rand.Rand
	randomizeProps bool

	holdCounter uint32
	holdPeriod  uint32
}

// NewMaskGenerator constructs a MaskGenerator publishing len(cfg.Targets)
// stochastic outputs of the given signal.Kind. If randomizeProps is
// true, every generator's parameters are redrawn (not just resampled)
// on each hold-period rollover. samplingIntervalMS is the engine's real
// tick period, in milliseconds, used to derive Sine/GaussSine frequency
// bounds exactly as Planner.cpp does.
func NewMaskGenerator(g *graph.Graph, name string, cfg Config, periodInSamples uint32, kind signal.Kind, randomizeProps bool, rng *rand.Rand, samplingIntervalMS uint32) (*MaskGenerator, error) {
	base, err := New(g, name, cfg, periodInSamples)
	if err != nil {
		return nil, err
	}

	mg := &MaskGenerator{
		Planner:        base,
		kind:           kind,
		rng:            rng,
		randomizeProps: randomizeProps,
	}

	if randomizeProps || kind == signal.Uniform {
		mg.holdPeriod = mg.sampleHoldPeriod()
	}

	sineSamplingFreq := 1000.0 / (3.0 * float64(samplingIntervalMS))
	numOutputs := len(cfg.Targets)
	for i := 0; i < numOutputs; i++ {
		lo, hi := cfg.MinLimits[i], cfg.MaxLimits[i]
		rangeWidth := hi - lo

		var gen *signal.Generator
		switch kind {
		case signal.Normal:
			gen = signal.New(rng, kind, lo, hi, cfg.Targets[i], rangeWidth/6, 0, 0, sineSamplingFreq)
		case signal.Sine, signal.GaussSine:
			initFreq := 1000.0 / (5.0 * float64(periodInSamples) * float64(samplingIntervalMS))
			gen = signal.New(rng, kind, lo, hi, cfg.Targets[i], initFreq, rangeWidth/6, rangeWidth/6, sineSamplingFreq)
		case signal.Uniform:
			gen = signal.New(rng, kind, lo, hi, lo, hi, 0, 0, sineSamplingFreq)
		}

		if randomizeProps {
			gen.EnableRandomized(signal.Param1, lo, hi)
			switch kind {
			case signal.Normal:
				gen.EnableRandomized(signal.Param2, 0, rangeWidth/6)
			case signal.Sine, signal.GaussSine:
				minFreq := 1000.0 / (float64(mg.holdPeriod) * float64(periodInSamples) * float64(samplingIntervalMS))
				maxFreq := 1000.0 / (4.0 * float64(periodInSamples) * float64(samplingIntervalMS))
				gen.EnableRandomized(signal.Param2, minFreq, maxFreq)
				gen.EnableRandomized(signal.Param3, lo, hi)
				gen.EnableRandomized(signal.Param4, 0, rangeWidth/6)
			}
		}

		mg.gens = append(mg.gens, gen)
	}

	return mg, nil
}

func (mg *MaskGenerator) sampleHoldPeriod() uint32 {
	return uint32(holdMin + mg.rng.Intn(holdMax-holdMin+1))
}

// shouldRefreshProps reports whether every generator's parameters
// should be redrawn this tick, rolling the hold counter over to a
// freshly sampled period when it does. It shares holdCounter/holdPeriod
// with the Uniform-kind hold check in Run: for a Uniform mask, that
// check resets the counter before this one runs, so this method's own
// reset rarely fires for Uniform masks — the piecewise-constant step
// and the parameter refresh ride the same clock by construction.
func (mg *MaskGenerator) shouldRefreshProps() bool {
	if !mg.randomizeProps {
		return false
	}
	if mg.holdCounter == mg.holdPeriod {
		mg.holdCounter = 0
		return true
	}
	mg.holdCounter++
	return false
}

// Run advances the mask by one tick. For non-Uniform kinds this
// samples a fresh value from every generator every periodInSamples
// ticks (refreshing parameters first if the hold period rolled over). For Uniform it
// only resamples at the hold-period boundary, holding the prior draw
// steady in between, so the output is a piecewise-constant random step
// rather than per-tick noise.
func (mg *MaskGenerator) Run(g *graph.Graph) error {
	run := mg.shouldRun()

	if mg.kind == signal.Uniform {
		if mg.holdCounter == mg.holdPeriod {
			mg.holdCounter = 0
			mg.holdPeriod = mg.sampleHoldPeriod()
			run = true
		} else {
			mg.holdCounter++
			run = false
		}
	}

	if !run {
		return mg.publish(g, mg.targets)
	}

	if _, err := g.ReadPort(mg.currOutputPort); err != nil {
		return err
	}

	refresh := mg.shouldRefreshProps()
	if refresh {
		mg.holdPeriod = mg.sampleHoldPeriod()
	}

	newTargets := vector.New(len(mg.gens))
	for i, gen := range mg.gens {
		if refresh {
			gen.SelectNew(signal.Param1)
			gen.SelectNew(signal.Param2)
			gen.SelectNew(signal.Param3)
			gen.SelectNew(signal.Param4)
		}
		newTargets[i] = gen.Value()
	}
	mg.targets = newTargets

	return mg.publish(g, newTargets)
}
