package graph

import (
	"github.com/pkg/errors"
)

// Wire copies values from a slice of an Output port's pins to a slice of
// an Input port's pins, delaying delivery by Delay ticks. A Wire with
// Delay 0 delivers on the same tick it is transferred.
type Wire struct {
	src        PortID
	srcIndices []int
	dst        PortID
	dstIndices []int
	delay      uint32

	pending [][]float64 // ring of buffered values, one slot per outstanding delay cycle
}

// selector picks which pins of the source/destination ports a wire
// connects. Callers build one for each side with WholePort, PinAt,
// PinRange, Pins or PinsNamed below.
type selector struct {
	whole   bool
	indices []int
	names   []string
	lo, hi  int
	ranged  bool
}

func wholePort() selector                { return selector{whole: true} }
func pinAt(i int) selector               { return selector{indices: []int{i}} }
func pinRange(lo, hi int) selector       { return selector{ranged: true, lo: lo, hi: hi} }
func pinsAt(indices ...int) selector     { return selector{indices: indices} }
func pinsNamed(names ...string) selector { return selector{names: names} }

func (g *Graph) resolveSelector(id PortID, s selector) ([]int, error) {
	if s.whole {
		n, err := g.NumPins(id)
		if err != nil {
			return nil, err
		}
		out := make([]int, n)
		for i := range out {
			out[i] = i
		}
		return out, nil
	}
	if s.ranged {
		if s.lo < 0 || s.hi < s.lo {
			return nil, errors.Errorf("graph: invalid pin range [%d,%d]", s.lo, s.hi)
		}
		out := make([]int, 0, s.hi-s.lo+1)
		for i := s.lo; i <= s.hi; i++ {
			out = append(out, i)
		}
		return out, nil
	}
	if len(s.names) > 0 {
		out := make([]int, len(s.names))
		for i, n := range s.names {
			idx, err := g.PinIndex(id, n)
			if err != nil {
				return nil, err
			}
			out[i] = idx
		}
		return out, nil
	}
	return s.indices, nil
}

// WholePort selects every pin of a port, in index order.
func WholePort() selector { return wholePort() }

// PinAt selects a single pin by index.
func PinAt(i int) selector { return pinAt(i) }

// PinRange selects the inclusive range of pin indices [lo, hi].
func PinRange(lo, hi int) selector { return pinRange(lo, hi) }

// Pins selects the given pin indices, in the given order.
func Pins(indices ...int) selector { return pinsAt(indices...) }

// PinsNamed selects pins by name, in the given order.
func PinsNamed(names ...string) selector { return pinsNamed(names...) }

// NewWire connects srcSel pins of the src Output port to dstSel pins of
// the dst Input port. The two selections must resolve to equal width.
// Each destination pin may be the target of at most one wire.
func (g *Graph) NewWire(src PortID, srcSel selector, dst PortID, dstSel selector, delay uint32) (*Wire, error) {
	sp, err := g.port(src)
	if err != nil {
		return nil, err
	}
	if sp.kind != Output {
		return nil, errors.Errorf("graph: wire source %q is not an Output port", sp.name)
	}
	dp, err := g.port(dst)
	if err != nil {
		return nil, err
	}
	if dp.kind != Input {
		return nil, errors.Errorf("graph: wire destination %q is not an Input port", dp.name)
	}

	srcIdx, err := g.resolveSelector(src, srcSel)
	if err != nil {
		return nil, err
	}
	dstIdx, err := g.resolveSelector(dst, dstSel)
	if err != nil {
		return nil, err
	}
	if len(srcIdx) != len(dstIdx) {
		return nil, errors.Errorf("graph: wire width mismatch: src %q selects %d pins, dst %q selects %d pins",
			sp.name, len(srcIdx), dp.name, len(dstIdx))
	}
	if err := g.sanitizeIndices(src, srcIdx); err != nil {
		return nil, err
	}
	if err := g.sanitizeIndices(dst, dstIdx); err != nil {
		return nil, err
	}
	if err := g.setConnected(dst, dstIdx); err != nil {
		return nil, err
	}
	sp.sealed = true

	w := &Wire{src: src, srcIndices: srcIdx, dst: dst, dstIndices: dstIdx, delay: delay}
	if delay > 0 {
		w.pending = make([][]float64, delay)
	}
	return w, nil
}

// Transfer moves the wire's source values to its destination, applying
// the configured delay: a value read on tick T is written to the
// destination on tick T+Delay. Call once per tick, after all producers
// for the tick have run and before any consumer reads.
func (w *Wire) Transfer(g *Graph) error {
	vals, err := g.Transmit(w.src, w.srcIndices)
	if err != nil {
		return err
	}

	if w.delay == 0 {
		return g.Receive(w.dst, w.dstIndices, vals)
	}

	ready := w.pending[0]
	copy(w.pending, w.pending[1:])
	w.pending[len(w.pending)-1] = []float64(vals)

	if ready == nil {
		return nil // still filling the delay pipeline
	}
	return g.Receive(w.dst, w.dstIndices, ready)
}

// Delay reports the wire's configured delay in ticks.
func (w *Wire) Delay() uint32 { return w.delay }
