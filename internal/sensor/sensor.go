// Package sensor implements the Readable side of the dataflow graph:
// modules that sample the host system on every tick and publish the
// result to an Output port. CPUPowerSensor mirrors the RAPL
// energy-counter math in Sensors.cpp; Time publishes wall-clock seconds.
package sensor

import (
	"time"

	"github.com/spdfg/maya/internal/graph"
	"github.com/spdfg/maya/internal/vector"
)

// Sensor samples the system and publishes values to its Output port
// every tick.
type Sensor interface {
	Name() string
	Width() int
	Port() graph.PortID
	// Sample reads the system, updates the sensor's Output port, and
	// returns the freshly sampled values.
	Sample(g *graph.Graph) (vector.Vector, error)
}

// Base implements the bookkeeping common to every Sensor: naming, port
// publication, and previous-sample tracking.
type Base struct {
	name           string
	port           graph.PortID
	values         vector.Vector
	prevValues     vector.Vector
	sampleTime     time.Time
	prevSampleTime time.Time
}

// NewBase registers an Output port named name with the given pin names
// (one sensor per port, one pin per published value) and returns a Base
// ready to be embedded by a concrete sensor.
func NewBase(g *graph.Graph, name string, pinNames ...string) Base {
	port := g.NewPort(graph.Output, name, pinNames...)
	now := time.Now()
	return Base{
		name:           name,
		port:           port,
		values:         vector.New(len(pinNames)),
		prevValues:     vector.New(len(pinNames)),
		sampleTime:     now,
		prevSampleTime: now,
	}
}

func (b *Base) Name() string       { return b.name }
func (b *Base) Width() int         { return len(b.values) }
func (b *Base) Port() graph.PortID { return b.port }

// Values returns the most recently published sample.
func (b *Base) Values() vector.Vector { return b.values }

// Tick advances the sample clock and returns the elapsed time since the
// previous call, exported for actuators that need elapsed-time math
// without duplicating Base's clock bookkeeping.
func (b *Base) Tick() (time.Duration, time.Time) { return b.tick() }

// Publish records newValues as the current sample, shifting the previous
// sample, and writes them to the sensor's Output port. Exported so
// packages building on Base (such as input.Base) can implement Sample
// without duplicating the bookkeeping.
func (b *Base) Publish(g *graph.Graph, newValues vector.Vector) (vector.Vector, error) {
	return b.publish(g, newValues)
}

func (b *Base) publish(g *graph.Graph, newValues vector.Vector) (vector.Vector, error) {
	b.prevValues = b.values
	b.values = newValues
	if err := g.UpdatePort(b.port, b.values); err != nil {
		return nil, err
	}
	return b.values, nil
}

func (b *Base) tick() (elapsed time.Duration, now time.Time) {
	now = time.Now()
	b.prevSampleTime = b.sampleTime
	b.sampleTime = now
	return now.Sub(b.prevSampleTime), now
}

// Time publishes wall-clock time, in fractional seconds since the Unix
// epoch, on a single pin.
type Time struct {
	Base
}

// NewTime constructs a Time sensor and registers its port on g.
func NewTime(g *graph.Graph, name string) *Time {
	return &Time{Base: NewBase(g, name, name)}
}

// Sample publishes the current wall-clock time.
func (t *Time) Sample(g *graph.Graph) (vector.Vector, error) {
	_, now := t.tick()
	secs := float64(now.UnixNano()) / 1e9
	return t.publish(g, vector.Vector{secs})
}
