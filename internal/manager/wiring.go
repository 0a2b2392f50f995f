package manager

import (
	"github.com/pkg/errors"

	"github.com/spdfg/maya/internal/controller"
	"github.com/spdfg/maya/internal/graph"
	"github.com/spdfg/maya/internal/planner"
)

// buildMask constructs the RobustController, its Planner/MaskGenerator,
// and the read/write/block wires connecting them to the sensors and
// inputs, per Manager.cpp's addController/addMaskGenerator.
func (m *Manager) buildMask(g *graph.Graph, cfg Config) error {
	ctlPeriod := cfg.ControllerPeriod
	if ctlPeriod == 0 {
		ctlPeriod = 1
	}
	plPeriod := cfg.PlannerPeriod
	if plPeriod == 0 {
		plPeriod = 1
	}

	m.ctl = controller.New(g, "Controller", cfg.ControllerConfig, ctlPeriod)

	var run plannerRunner
	if cfg.UsePlainPlanner {
		p, err := planner.New(g, "Planner", cfg.PlannerConfig, plPeriod)
		if err != nil {
			return errors.Wrap(err, "constructing planner")
		}
		run = p
	} else {
		mg, err := planner.NewMaskGenerator(g, "MaskGenerator", cfg.PlannerConfig, plPeriod,
			cfg.MaskKind, cfg.RandomizeMaskProps, cfg.Rand, cfg.SamplingIntervalMS)
		if err != nil {
			return errors.Wrap(err, "constructing mask generator")
		}
		run = mg
	}
	m.runner = run

	cpuPower := m.sensors[1] // CPUPower; Time carries no control-loop wiring

	readWire, err := g.NewWire(cpuPower.Port(), graph.WholePort(), m.ctl.OutputPort(), graph.WholePort(), 0)
	if err != nil {
		return errors.Wrap(err, "wiring sensor to controller output port")
	}
	m.readWires = append(m.readWires, readWire)

	readWire, err = g.NewWire(cpuPower.Port(), graph.WholePort(), run.OutputPort(), graph.WholePort(), 0)
	if err != nil {
		return errors.Wrap(err, "wiring sensor to planner output port")
	}
	m.readWires = append(m.readWires, readWire)

	for i, in := range m.inputs {
		readWire, err = g.NewWire(in.Port(), graph.WholePort(), m.ctl.CurrInputPort(), graph.PinAt(i), 0)
		if err != nil {
			return errors.Wrapf(err, "wiring input %q to controller current-input port", in.Name())
		}
		m.readWires = append(m.readWires, readWire)

		writeWire, err := g.NewWire(m.ctl.NewInputPort(), graph.PinAt(i), in.InPort(), graph.WholePort(), 0)
		if err != nil {
			return errors.Wrapf(err, "wiring controller new-input port to input %q", in.Name())
		}
		m.writeWires = append(m.writeWires, writeWire)
	}

	blockWire, err := g.NewWire(run.TargetPort(), graph.WholePort(), m.ctl.OutputTargetPort(), graph.WholePort(), 0)
	if err != nil {
		return errors.Wrap(err, "wiring planner target port to controller target-input port")
	}
	m.blockWires = append(m.blockWires, blockWire)

	return nil
}
