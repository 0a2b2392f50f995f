// Package planner implements the target-setting half of the control
// loop: Planner publishes a target vector for the controller to track,
// either by replaying a preset matrix or by holding the configured
// targets steady; MaskGenerator (mask.go) overrides this with one
// stochastic signal.Generator per output, for perturbation/excitation
// experiments run in Mask mode.
package planner

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/spdfg/maya/internal/graph"
	"github.com/spdfg/maya/internal/vector"
)

// Planner holds a target vector and publishes it to the controller on
// a configurable multiple of ticks. Base behavior is static: it
// either replays rows of a preset matrix in sequence, one row per
// invocation, or holds the configured target constant.
type Planner struct {
	name string

	targetPort     graph.PortID
	currInputPort  graph.PortID
	currOutputPort graph.PortID

	targets   vector.Vector
	maxLimits vector.Vector
	minLimits vector.Vector

	periodInSamples uint32
	cycles          uint32

	usePreset           bool
	presetTargets       *vector.Matrix
	presetTargetCounter int
}

// Config is the file-backed data a Planner (or MaskGenerator) is built
// from; internal/config loads these from a controller/planner
// directory.
type Config struct {
	MaxLimits     vector.Vector
	MinLimits     vector.Vector
	Targets       vector.Vector
	PresetTargets *vector.Matrix // nil unless UsePreset
	UsePreset     bool
}

// New constructs a Planner publishing len(cfg.Targets) outputs, one
// new target set every periodInSamples ticks.
func New(g *graph.Graph, name string, cfg Config, periodInSamples uint32) (*Planner, error) {
	if periodInSamples == 0 {
		periodInSamples = 1
	}
	numOutputs := len(cfg.Targets)

	p := &Planner{
		name:            name,
		targetPort:      g.NewPort(graph.Output, name+"_targets", namesFor(numOutputs, "target")...),
		currInputPort:   g.NewPort(graph.Input, name+"_currInputs"),
		currOutputPort:  g.NewPort(graph.Input, name+"_currOutputs", namesFor(numOutputs, "out")...),
		targets:         cfg.Targets.Clone(),
		maxLimits:       cfg.MaxLimits.Clone(),
		minLimits:       cfg.MinLimits.Clone(),
		periodInSamples: periodInSamples,
		cycles:          periodInSamples,
		usePreset:       cfg.UsePreset,
		presetTargets:   cfg.PresetTargets,
	}
	if cfg.UsePreset && cfg.PresetTargets == nil {
		return nil, errors.Errorf("planner %s: usePreset set but no preset target matrix given", name)
	}
	return p, nil
}

func namesFor(n int, prefix string) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("%s%d", prefix, i)
	}
	return names
}

func (p *Planner) Name() string             { return p.name }
func (p *Planner) TargetPort() graph.PortID { return p.targetPort }
func (p *Planner) InputPort() graph.PortID  { return p.currInputPort }
func (p *Planner) OutputPort() graph.PortID { return p.currOutputPort }

// Reset reloads targets from cfg (normally re-read from disk by the
// caller) and rewinds the preset replay counter.
func (p *Planner) Reset(cfg Config) {
	p.targets = cfg.Targets.Clone()
	p.presetTargetCounter = 0
}

// shouldRun advances the sample-cycle counter and reports whether this
// tick is one that should recompute targets (every periodInSamples
// ticks). Shared by MaskGenerator, whose own Run replaces Planner.Run.
func (p *Planner) shouldRun() bool {
	run := p.cycles == p.periodInSamples
	if run {
		p.cycles = 1
	} else {
		p.cycles++
	}
	return run
}

// publish writes vals to the target port.
func (p *Planner) publish(g *graph.Graph, vals vector.Vector) error {
	return g.UpdatePort(p.targetPort, vals)
}

// Run advances the Planner by one tick: every periodInSamples ticks it
// recomputes the target vector and publishes it.
func (p *Planner) Run(g *graph.Graph) error {
	run := p.shouldRun()
	newTargets, err := p.computeNewTargets(g, run)
	if err != nil {
		return err
	}
	return p.publish(g, newTargets)
}

// computeNewTargets implements the base Planner behavior: on a run tick,
// replay the next preset row if configured; otherwise hold the last
// target steady. MaskGenerator does not call this; its own Run computes
// its targets.
func (p *Planner) computeNewTargets(g *graph.Graph, run bool) (vector.Vector, error) {
	if _, err := g.ReadPort(p.currOutputPort); err != nil {
		return nil, err
	}
	if _, err := g.ReadPort(p.currInputPort); err != nil {
		return nil, err
	}

	if run && p.usePreset {
		row := p.presetTargets.Row(p.presetTargetCounter)
		p.presetTargetCounter++
		if p.presetTargetCounter == p.presetTargets.Rows() {
			p.presetTargetCounter = 0
		}
		p.targets = row
	}
	return p.targets, nil
}
