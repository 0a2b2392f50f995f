// Package vector provides dense Vector/Matrix primitives for the controller
// and signal-generation math: elementwise arithmetic, matrix-vector
// multiply, and the small file formats the controller and planner load
// their coefficients from.
package vector

import (
	"bufio"
	"fmt"
	"os"

	"github.com/pkg/errors"
)

// Vector is a dense real vector. Operations are explicit named
// combinators rather than operator overloads, so shape mismatches are
// reported as errors instead of process aborts.
type Vector []float64

// New returns a zero vector of length n.
func New(n int) Vector {
	return make(Vector, n)
}

// Clone returns an independent copy.
func (v Vector) Clone() Vector {
	out := make(Vector, len(v))
	copy(out, v)
	return out
}

func (v Vector) sameShape(op string, w Vector) error {
	if len(v) != len(w) {
		return errors.Errorf("vector %s: shape mismatch %d vs %d", op, len(v), len(w))
	}
	return nil
}

// Add returns v+w elementwise.
func (v Vector) Add(w Vector) (Vector, error) {
	if err := v.sameShape("add", w); err != nil {
		return nil, err
	}
	out := make(Vector, len(v))
	for i := range v {
		out[i] = v[i] + w[i]
	}
	return out, nil
}

// Sub returns v-w elementwise.
func (v Vector) Sub(w Vector) (Vector, error) {
	if err := v.sameShape("sub", w); err != nil {
		return nil, err
	}
	out := make(Vector, len(v))
	for i := range v {
		out[i] = v[i] - w[i]
	}
	return out, nil
}

// MulElem returns v*w elementwise (Hadamard product).
func (v Vector) MulElem(w Vector) (Vector, error) {
	if err := v.sameShape("mulElem", w); err != nil {
		return nil, err
	}
	out := make(Vector, len(v))
	for i := range v {
		out[i] = v[i] * w[i]
	}
	return out, nil
}

// Scale returns v scaled by a constant.
func (v Vector) Scale(c float64) Vector {
	out := make(Vector, len(v))
	for i := range v {
		out[i] = v[i] * c
	}
	return out
}

// AddScalar returns v with c added to every element.
func (v Vector) AddScalar(c float64) Vector {
	out := make(Vector, len(v))
	for i := range v {
		out[i] = v[i] + c
	}
	return out
}

// Clamp returns v with every element clamped to [lo, hi].
func (v Vector) Clamp(lo, hi float64) Vector {
	out := make(Vector, len(v))
	for i, x := range v {
		if x < lo {
			x = lo
		}
		if x > hi {
			x = hi
		}
		out[i] = x
	}
	return out
}

// Equal reports whether v and w have the same shape and, elementwise,
// differ by no more than eps.
func (v Vector) Equal(w Vector, eps float64) bool {
	if len(v) != len(w) {
		return false
	}
	for i := range v {
		d := v[i] - w[i]
		if d < -eps || d > eps {
			return false
		}
	}
	return true
}

func (v Vector) String() string {
	return fmt.Sprint([]float64(v))
}

// LoadVector reads whitespace-separated real numbers from a file. If
// wantLen is non-negative, the element count must match exactly.
func LoadVector(path string, wantLen int) (Vector, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()

	var out Vector
	sc := bufio.NewScanner(f)
	sc.Split(bufio.ScanWords)
	for sc.Scan() {
		var x float64
		if _, err := fmt.Sscanf(sc.Text(), "%g", &x); err != nil {
			return nil, errors.Wrapf(err, "parsing %s", path)
		}
		out = append(out, x)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	if wantLen >= 0 && len(out) != wantLen {
		return nil, errors.Errorf("%s: expected %d values, found %d", path, wantLen, len(out))
	}
	return out, nil
}

// LoadScalarInt reads a single integer from a file.
func LoadScalarInt(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()

	var n int
	if _, err := fmt.Fscan(f, &n); err != nil {
		return 0, errors.Wrapf(err, "parsing %s", path)
	}
	return n, nil
}
