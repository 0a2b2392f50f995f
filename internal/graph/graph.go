// Package graph implements the Pin/Port/Wire dataflow graph the engine
// ticks every period. It is a central arena: modules and wires hold
// integer handles (PortID, pin indices) into the Graph rather than
// pointers to each other, so the dataflow graph has no reference cycles
// and can be introspected cheaply in tests.
package graph

import (
	"github.com/pkg/errors"

	"github.com/spdfg/maya/internal/vector"
)

// Kind distinguishes Output ports (module writes, outside reads) from
// Input ports (outside writes, module reads).
type Kind int

const (
	Output Kind = iota
	Input
)

// Pin is one named scalar slot in a Port.
type Pin struct {
	Name      string
	Value     float64
	Connected bool
	Unread    bool
}

// Port is an ordered, named sequence of Pins owned by one module. Pin
// indices are stable after construction: pins may be appended but never
// removed.
type Port struct {
	id     PortID
	name   string
	kind   Kind
	pins   []Pin
	sealed bool // true once any wire references a pin in this port
}

// PortID identifies a Port inside a Graph.
type PortID int

// Graph owns every Port created through it.
type Graph struct {
	ports []*Port
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{}
}

// NewPort creates a Port of the given kind with the given initial pin
// names (may be empty) and returns its handle.
func (g *Graph) NewPort(kind Kind, name string, pinNames ...string) PortID {
	p := &Port{name: name, kind: kind}
	for _, n := range pinNames {
		p.pins = append(p.pins, Pin{Name: n})
	}
	p.id = PortID(len(g.ports))
	g.ports = append(g.ports, p)
	return p.id
}

func (g *Graph) port(id PortID) (*Port, error) {
	if int(id) < 0 || int(id) >= len(g.ports) {
		return nil, errors.Errorf("graph: invalid port id %d", id)
	}
	return g.ports[id], nil
}

// Name returns a port's name.
func (g *Graph) Name(id PortID) string {
	p, err := g.port(id)
	if err != nil {
		return ""
	}
	return p.name
}

// PinNames returns the ordered pin names of a port.
func (g *Graph) PinNames(id PortID) ([]string, error) {
	p, err := g.port(id)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(p.pins))
	for i, pin := range p.pins {
		names[i] = pin.Name
	}
	return names, nil
}

// NumPins returns the number of pins in a port.
func (g *Graph) NumPins(id PortID) (int, error) {
	p, err := g.port(id)
	if err != nil {
		return 0, err
	}
	return len(p.pins), nil
}

// PinIndex returns the index of the named pin within the port.
func (g *Graph) PinIndex(id PortID, name string) (int, error) {
	p, err := g.port(id)
	if err != nil {
		return 0, err
	}
	for i, pin := range p.pins {
		if pin.Name == name {
			return i, nil
		}
	}
	return 0, errors.Errorf("graph: pin %q not found in port %q", name, p.name)
}

// AppendPin adds a new pin to a port. It fails once the port is in use
// by any wire, since wire index lists are fixed at construction.
func (g *Graph) AppendPin(id PortID, name string) error {
	p, err := g.port(id)
	if err != nil {
		return err
	}
	if p.sealed {
		return errors.Errorf("graph: cannot append pin %q: port %q already wired", name, p.name)
	}
	p.pins = append(p.pins, Pin{Name: name})
	return nil
}

func (g *Graph) sanitizeIndices(id PortID, indices []int) error {
	p, err := g.port(id)
	if err != nil {
		return err
	}
	for _, i := range indices {
		if i < 0 || i >= len(p.pins) {
			return errors.Errorf("graph: pin index %d out of range for port %q (width %d)", i, p.name, len(p.pins))
		}
	}
	return nil
}

// Transmit returns the values at the selected pins of an Output port, in
// selection order, clearing each pin's unread bit.
func (g *Graph) Transmit(id PortID, indices []int) (vector.Vector, error) {
	p, err := g.port(id)
	if err != nil {
		return nil, err
	}
	if p.kind != Output {
		return nil, errors.Errorf("graph: Transmit called on non-Output port %q", p.name)
	}
	if err := g.sanitizeIndices(id, indices); err != nil {
		return nil, err
	}
	out := make(vector.Vector, len(indices))
	for i, pi := range indices {
		out[i] = p.pins[pi].Value
		p.pins[pi].Unread = false
	}
	return out, nil
}

// TransmitAll transmits every pin of an Output port in order.
func (g *Graph) TransmitAll(id PortID) (vector.Vector, error) {
	p, err := g.port(id)
	if err != nil {
		return nil, err
	}
	indices := make([]int, len(p.pins))
	for i := range indices {
		indices[i] = i
	}
	return g.Transmit(id, indices)
}

// UpdatePort sets every pin of an Output port from values (which must
// match the port's width) and marks each written pin unread.
func (g *Graph) UpdatePort(id PortID, values vector.Vector) error {
	p, err := g.port(id)
	if err != nil {
		return err
	}
	if p.kind != Output {
		return errors.Errorf("graph: UpdatePort called on non-Output port %q", p.name)
	}
	if len(values) != len(p.pins) {
		return errors.Errorf("graph: UpdatePort: port %q has %d pins, got %d values", p.name, len(p.pins), len(values))
	}
	for i, v := range values {
		p.pins[i].Value = v
		p.pins[i].Unread = true
	}
	return nil
}

// Receive sets the selected pins of an Input port and marks them unread.
func (g *Graph) Receive(id PortID, indices []int, values vector.Vector) error {
	p, err := g.port(id)
	if err != nil {
		return err
	}
	if p.kind != Input {
		return errors.Errorf("graph: Receive called on non-Input port %q", p.name)
	}
	if len(indices) != len(values) {
		return errors.Errorf("graph: Receive: %d indices but %d values", len(indices), len(values))
	}
	if err := g.sanitizeIndices(id, indices); err != nil {
		return err
	}
	for i, pi := range indices {
		p.pins[pi].Value = values[i]
		p.pins[pi].Unread = true
	}
	return nil
}

// ReceiveAll receives into every pin of an Input port in order.
func (g *Graph) ReceiveAll(id PortID, values vector.Vector) error {
	p, err := g.port(id)
	if err != nil {
		return err
	}
	indices := make([]int, len(p.pins))
	for i := range indices {
		indices[i] = i
	}
	return g.Receive(id, indices, values)
}

// ReadPort returns the current values of every pin of an Input port
// without clearing the unread bits (mirrors InputPort::updateValuesFromPort).
func (g *Graph) ReadPort(id PortID) (vector.Vector, error) {
	p, err := g.port(id)
	if err != nil {
		return nil, err
	}
	if p.kind != Input {
		return nil, errors.Errorf("graph: ReadPort called on non-Input port %q", p.name)
	}
	out := make(vector.Vector, len(p.pins))
	for i, pin := range p.pins {
		out[i] = pin.Value
	}
	return out, nil
}

// ValuesUnread reports whether any pin of an Input port has unread data.
func (g *Graph) ValuesUnread(id PortID) (bool, error) {
	p, err := g.port(id)
	if err != nil {
		return false, err
	}
	if p.kind != Input {
		return false, errors.Errorf("graph: ValuesUnread called on non-Input port %q", p.name)
	}
	for _, pin := range p.pins {
		if pin.Unread {
			return true, nil
		}
	}
	return false, nil
}

func (g *Graph) setConnected(id PortID, indices []int) error {
	p, err := g.port(id)
	if err != nil {
		return err
	}
	for _, i := range indices {
		if p.kind == Input && p.pins[i].Connected {
			return errors.Errorf("graph: port %q pin %q already connected (fan-in must be 1)", p.name, p.pins[i].Name)
		}
		p.pins[i].Connected = true
	}
	p.sealed = true
	return nil
}
