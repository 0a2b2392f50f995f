// Package input implements the Writable actuators the controller and
// planner drive: CPU frequency, Intel Powerclamp idle injection, and
// the power-balloon shared-memory knob. Every concrete Input
// quantizes a requested value to the nearest allowed value before
// writing it to the system, exactly as Inputs.cpp does.
package input

import (
	"math"
	"math/rand"

	"github.com/spdfg/maya/internal/graph"
	"github.com/spdfg/maya/internal/sensor"
	"github.com/spdfg/maya/internal/vector"
)

// Input is a Sensor that also accepts values from an Input port and
// writes them to the system.
type Input interface {
	sensor.Sensor

	// InPort is the graph.Input port through which the Planner/Controller
	// deliver requested values.
	InPort() graph.PortID

	// Apply pulls any unread value off InPort, quantizes it, and writes it
	// to the system. It is a no-op if no new value has arrived.
	Apply(g *graph.Graph) error

	// Reset restores the actuator to a safe default, called at shutdown.
	Reset(g *graph.Graph) error

	// SetRandomValue drives the actuator with one of its allowed values
	// chosen uniformly at random, used by Sysid-mode excitation.
	SetRandomValue(g *graph.Graph, rng *rand.Rand) error
}

// Base implements the bookkeeping common to every Input: the Sensor side
// (publishing current state) plus the allowed-value range, the
// requested/actual write-value bookkeeping, and nearest-value
// quantization.
type Base struct {
	sensor.Base

	inPort                 graph.PortID
	allowedValues          vector.Vector
	minVal, maxVal, midVal float64
	requestedWriteValue    float64
	actualWriteValue       float64
}

// NewBase registers the Output (Sensor) and Input ports for an
// actuator named name and returns a Base. Concrete Inputs must call
// SetAllowedValues once they know the device's legal range.
func NewBase(g *graph.Graph, name string) Base {
	return Base{
		Base:    sensor.NewBase(g, name, name),
		inPort:  g.NewPort(graph.Input, name+"_in", name),
	}
}

func (b *Base) InPort() graph.PortID { return b.inPort }

// SetAllowedValues records the device's legal values and derives
// min/max/mid from them.
func (b *Base) SetAllowedValues(values vector.Vector) {
	b.allowedValues = values.Clone()
	b.minVal, b.maxVal = values[0], values[0]
	for _, v := range values {
		if v < b.minVal {
			b.minVal = v
		}
		if v > b.maxVal {
			b.maxVal = v
		}
	}
	b.midVal = (b.minVal + b.maxVal) / 2.0
}

func (b *Base) Min() float64 { return b.minVal }
func (b *Base) Max() float64 { return b.maxVal }
func (b *Base) Mid() float64 { return b.midVal }

// Sanitize returns the allowed value nearest to val. Ties favor the
// first (lowest-indexed) candidate, matching std::min_element's
// stability. If no allowed values were configured, val passes through
// unchanged.
func (b *Base) Sanitize(val float64) float64 {
	if len(b.allowedValues) == 0 {
		return val
	}
	best := b.allowedValues[0]
	bestDist := math.Abs(best - val)
	for _, v := range b.allowedValues[1:] {
		d := math.Abs(v - val)
		if d < bestDist {
			best, bestDist = v, d
		}
	}
	return best
}

// prepareValue records a requested write value and its quantized
// actual value.
func (b *Base) prepareValue(val float64) {
	b.requestedWriteValue = val
	b.actualWriteValue = b.Sanitize(val)
}

// pullRequested reads the pending value off the input port, if any is
// unread, quantizes it, and returns whether a new value was consumed.
func (b *Base) pullRequested(g *graph.Graph) (bool, error) {
	unread, err := g.ValuesUnread(b.inPort)
	if err != nil {
		return false, err
	}
	if !unread {
		return false, nil
	}
	vals, err := g.ReadPort(b.inPort)
	if err != nil {
		return false, err
	}
	b.prepareValue(vals[0])
	return true, nil
}

// SetValue pushes val directly onto the input port, as if a controller
// had requested it (used by SetMax/SetMin/SetMid/SetRandomValue and the
// initial seeding of an actuator on construction).
func (b *Base) SetValue(g *graph.Graph, val float64) error {
	return g.ReceiveAll(b.inPort, vector.Vector{val})
}

func (b *Base) SetMax(g *graph.Graph) error { return b.SetValue(g, b.maxVal) }
func (b *Base) SetMin(g *graph.Graph) error { return b.SetValue(g, b.minVal) }
func (b *Base) SetMid(g *graph.Graph) error { return b.SetValue(g, b.midVal) }

// SetRandomValue picks one of the actuator's allowed values uniformly
// at random and pushes it onto the input port, driving the excitation
// Sysid mode needs without going through a controller/planner.
func (b *Base) SetRandomValue(g *graph.Graph, rng *rand.Rand) error {
	if len(b.allowedValues) == 0 {
		return nil
	}
	v := b.allowedValues[rng.Intn(len(b.allowedValues))]
	return b.SetValue(g, v)
}
