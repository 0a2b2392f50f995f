package vector

import (
	"bufio"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Matrix is a dense row-major real matrix, backed by gonum for the
// multiply the RobustController needs on every run.
type Matrix struct {
	rows, cols int
	dense      *mat.Dense
}

// NewMatrix returns a zero rows x cols matrix.
func NewMatrix(rows, cols int) *Matrix {
	return &Matrix{rows: rows, cols: cols, dense: mat.NewDense(rows, cols, nil)}
}

func (m *Matrix) Rows() int { return m.rows }
func (m *Matrix) Cols() int { return m.cols }

func (m *Matrix) At(i, j int) float64     { return m.dense.At(i, j) }
func (m *Matrix) Set(i, j int, v float64) { m.dense.Set(i, j, v) }

// MatVec returns m*v. m must be rows x len(v); the result has length rows.
func (m *Matrix) MatVec(v Vector) (Vector, error) {
	if m.cols != len(v) {
		return nil, errors.Errorf("matvec: matrix has %d cols, vector has %d elements", m.cols, len(v))
	}
	src := mat.NewVecDense(len(v), []float64(v))
	dst := mat.NewVecDense(m.rows, nil)
	dst.MulVec(m.dense, src)
	out := make(Vector, m.rows)
	for i := range out {
		out[i] = dst.AtVec(i)
	}
	return out, nil
}

// LoadMatrix reads rows*cols whitespace-separated reals, row-major, from
// a file.
func LoadMatrix(path string, rows, cols int) (*Matrix, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()

	m := NewMatrix(rows, cols)
	sc := bufio.NewScanner(f)
	sc.Split(bufio.ScanWords)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if !sc.Scan() {
				return nil, errors.Errorf("%s: expected %dx%d values, ran out at row %d col %d", path, rows, cols, i, j)
			}
			var x float64
			if _, err := fmt.Sscanf(sc.Text(), "%g", &x); err != nil {
				return nil, errors.Wrapf(err, "parsing %s", path)
			}
			m.Set(i, j, x)
		}
	}
	return m, nil
}

// Row returns a copy of row i as a Vector (used for preset-target replay).
func (m *Matrix) Row(i int) Vector {
	out := make(Vector, m.cols)
	for j := 0; j < m.cols; j++ {
		out[j] = m.dense.At(i, j)
	}
	return out
}
