// Package controller implements RobustController, the discrete-time
// state-space feedback law the engine uses to turn an output error
// (target minus measured output) into new actuator values every
// sampling interval.
package controller

import (
	"fmt"

	"github.com/spdfg/maya/internal/graph"
	"github.com/spdfg/maya/internal/vector"
)

// Controller holds the ports shared by every controller: it reads
// current input values, measured outputs, and output targets, and
// writes new input values plus an echo of the targets it used.
type Controller struct {
	name string

	newInputPort         graph.PortID
	currOutputTargetPort graph.PortID
	currInputPort        graph.PortID
	outputPort           graph.PortID
	outputTargetPort     graph.PortID

	samplingInterval uint32
	cycles           uint32
}

// newBase registers a Controller's five ports (sized by numInputs and
// numOutputs) and initializes its sample-cycle counter.
func newBase(g *graph.Graph, name string, numInputs, numOutputs int, samplingInterval uint32) Controller {
	if samplingInterval == 0 {
		samplingInterval = 1
	}
	return Controller{
		name:                 name,
		newInputPort:         g.NewPort(graph.Output, name+"_newInputs", namesFor(numInputs, "in")...),
		currOutputTargetPort: g.NewPort(graph.Output, name+"_currTargets", namesFor(numOutputs, "target")...),
		currInputPort:        g.NewPort(graph.Input, name+"_currInputs", namesFor(numInputs, "in")...),
		outputPort:           g.NewPort(graph.Input, name+"_outputs", namesFor(numOutputs, "out")...),
		outputTargetPort:     g.NewPort(graph.Input, name+"_targets", namesFor(numOutputs, "target")...),
		samplingInterval:     samplingInterval,
		cycles:               samplingInterval,
	}
}

func namesFor(n int, prefix string) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("%s%d", prefix, i)
	}
	return names
}

func (c *Controller) Name() string                       { return c.name }
func (c *Controller) NewInputPort() graph.PortID          { return c.newInputPort }
func (c *Controller) CurrOutputTargetPort() graph.PortID  { return c.currOutputTargetPort }
func (c *Controller) CurrInputPort() graph.PortID         { return c.currInputPort }
func (c *Controller) OutputPort() graph.PortID            { return c.outputPort }
func (c *Controller) OutputTargetPort() graph.PortID      { return c.outputTargetPort }

// shouldRun advances the sample-cycle counter and reports whether this
// tick should recompute new input values.
func (c *Controller) shouldRun() bool {
	run := c.cycles == c.samplingInterval
	if run {
		c.cycles = 1
	} else {
		c.cycles++
	}
	return run
}

// publish writes newValues to the new-input port and echoes the target
// values the controller used back onto its own output port, mirroring
// Controller::run so downstream loggers can see what target a given
// input change was reacting to.
func (c *Controller) publish(g *graph.Graph, newValues, targetsUsed vector.Vector) error {
	if err := g.UpdatePort(c.newInputPort, newValues); err != nil {
		return err
	}
	return g.UpdatePort(c.currOutputTargetPort, targetsUsed)
}
