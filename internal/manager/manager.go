// Package manager implements the engine's orchestration layer: it
// constructs the dataflow graph from a fixed default configuration
// (Time/CPUPower sensors; CPUFreq/IdlePct/PBalloon actuators), wires a
// RobustController and Planner/MaskGenerator pair when running in Mask
// mode, and drives the per-tick sequence described in Manager.cpp —
// sample, display, transfer, compute, transfer, apply — on a soft
// periodic loop governed by one atomic interrupt flag.
package manager

import (
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	"github.com/spdfg/maya/internal/controller"
	"github.com/spdfg/maya/internal/graph"
	"github.com/spdfg/maya/internal/input"
	"github.com/spdfg/maya/internal/planner"
	"github.com/spdfg/maya/internal/sensor"
	"github.com/spdfg/maya/internal/signal"
	"github.com/spdfg/maya/internal/telemetry"
	"github.com/spdfg/maya/internal/validation"
)

// defaultInputNames are the actuators the default configuration wires;
// spec.md names these as the only input names a Manager recognizes.
var defaultInputNames = []string{"CPUFreq", "IdlePct", "PBalloon"}

const (
	defaultMinHoldPeriod = 2
	defaultMaxHoldPeriod = 20

	// powerWindowSize is the number of CPUPower samples kept for the
	// rolling mean/stddev diagnostic line (§6 supplemental feature).
	powerWindowSize = 30
)

// Config parameterizes Build. Host base-path fields default to the
// real sysfs/shm roots (see internal/environment) when empty, so tests
// can point them at fixtures.
type Config struct {
	Mode               Mode
	SamplingIntervalMS uint32 // tick period; default 20ms if zero

	RAPLBase    string
	CPUDevBase  string
	ThermalBase string
	ShmBase     string
	CoreIDs     []int

	// Sysid mode.
	SysidInputNames []string
	MinHoldPeriod   uint32
	MaxHoldPeriod   uint32

	// Mask mode.
	MaskKind           signal.Kind
	UsePlainPlanner    bool // true for Constant/Preset (no stochastic signal)
	RandomizeMaskProps bool
	ControllerConfig   controller.Config
	PlannerConfig      planner.Config
	ControllerPeriod   uint32 // in ticks
	PlannerPeriod      uint32 // in ticks

	Rand *rand.Rand
}

// Manager owns the graph and every module and wire built from it, plus
// the bookkeeping the tick loop needs.
type Manager struct {
	g    *graph.Graph
	mode   Mode
	period time.Duration

	sensors []sensor.Sensor
	inputs  []input.Input

	readWires  []*graph.Wire
	writeWires []*graph.Wire
	blockWires []*graph.Wire

	ctl    *controller.RobustController
	runner plannerRunner // Planner or MaskGenerator

	sysid      *sysidState
	powerTrace *telemetry.RunningAverage

	chain *telemetry.Chain
	stop  atomic.Bool
}

// plannerRunner is satisfied by both *planner.Planner and
// *planner.MaskGenerator.
type plannerRunner interface {
	Name() string
	TargetPort() graph.PortID
	InputPort() graph.PortID
	OutputPort() graph.PortID
	Run(g *graph.Graph) error
}

// Build constructs the graph for cfg: sensors and actuators always;
// controller/planner only when cfg.Mode is Mask. Every wiring error is
// a configuration error (per spec.md §7), returned rather than fatal,
// so cmd/maya can log and exit with a clean message.
func Build(cfg Config, chain *telemetry.Chain) (*Manager, error) {
	if cfg.SamplingIntervalMS == 0 {
		cfg.SamplingIntervalMS = 20
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	g := graph.New()
	m := &Manager{
		g:          g,
		mode:       cfg.Mode,
		period:     time.Duration(cfg.SamplingIntervalMS) * time.Millisecond,
		chain:      chain,
		powerTrace: telemetry.NewRunningAverage(powerWindowSize),
	}

	timeSensor := sensor.NewTime(g, "Time")
	cpuPower, err := sensor.NewCPUPowerSensor(g, "CPUPower", cfg.RAPLBase)
	if err != nil {
		return nil, errors.Wrap(err, "constructing CPUPower sensor")
	}
	m.sensors = []sensor.Sensor{timeSensor, cpuPower}

	cpuFreq, err := input.NewCPUFrequency(g, "CPUFreq", cfg.CPUDevBase, cfg.CoreIDs)
	if err != nil {
		return nil, errors.Wrap(err, "constructing CPUFreq input")
	}
	idlePct, err := input.NewIdleInject(g, "IdlePct", cfg.ThermalBase)
	if err != nil {
		return nil, errors.Wrap(err, "constructing IdlePct input")
	}
	pballoon, err := input.NewPowerBalloon(g, "PBalloon", cfg.ShmBase)
	if err != nil {
		return nil, errors.Wrap(err, "constructing PBalloon input")
	}
	m.inputs = []input.Input{cpuFreq, idlePct, pballoon}

	if err := validation.Validate("manager: invalid topology",
		m.validateUniqueNames,
	); err != nil {
		return nil, err
	}

	switch cfg.Mode {
	case Sysid:
		if err := m.buildSysid(cfg); err != nil {
			return nil, err
		}
	case Mask:
		if err := m.buildMask(g, cfg); err != nil {
			return nil, err
		}
	}

	return m, nil
}

func (m *Manager) validateUniqueNames() error {
	seen := make(map[string]bool)
	for _, s := range m.sensors {
		if seen[s.Name()] {
			return errors.Errorf("duplicate sensor name %q", s.Name())
		}
		seen[s.Name()] = true
	}
	seen = make(map[string]bool)
	for _, in := range m.inputs {
		if seen[in.Name()] {
			return errors.Errorf("duplicate input name %q", in.Name())
		}
		seen[in.Name()] = true
	}
	return nil
}

func (m *Manager) inputByName(name string) input.Input {
	for _, in := range m.inputs {
		if in.Name() == name {
			return in
		}
	}
	return nil
}

// Stop requests a graceful shutdown; it is safe to call from a signal
// handler goroutine.
func (m *Manager) Stop() { m.stop.Store(true) }

// Stopped reports whether Stop has been called.
func (m *Manager) Stopped() bool { return m.stop.Load() }
