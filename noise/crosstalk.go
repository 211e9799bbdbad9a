package noise

import "fmt"

// CrosstalkMatrix holds symmetric nonnegative interaction weights between
// physical qubit pairs. Profiles normalize it so the maximum entry is 1.0.
type CrosstalkMatrix struct {
	Size    int
	Weights []float64 // row-major Size x Size, symmetric, zero diagonal
}

func NewCrosstalkMatrix(size int) *CrosstalkMatrix {
	return &CrosstalkMatrix{Size: size, Weights: make([]float64, size*size)}
}

// Set stores a symmetric interaction weight. Negative weights and
// out-of-range indices are rejected.
func (m *CrosstalkMatrix) Set(a, b int, w float64) error {
	if a < 0 || a >= m.Size || b < 0 || b >= m.Size {
		return fmt.Errorf("crosstalk pair (%d,%d) outside [0,%d)", a, b, m.Size)
	}
	if a == b {
		return fmt.Errorf("crosstalk of qubit %d with itself", a)
	}
	if w < 0 {
		return fmt.Errorf("crosstalk weight %g is negative", w)
	}
	m.Weights[a*m.Size+b] = w
	m.Weights[b*m.Size+a] = w
	return nil
}

func (m *CrosstalkMatrix) At(a, b int) float64 {
	if a < 0 || a >= m.Size || b < 0 || b >= m.Size {
		return 0
	}
	return m.Weights[a*m.Size+b]
}

// normalized returns a copy scaled so the maximum entry is 1.0. An
// all-zero matrix is returned unchanged.
func (m *CrosstalkMatrix) normalized() *CrosstalkMatrix {
	max := 0.0
	for _, w := range m.Weights {
		if w > max {
			max = w
		}
	}
	out := &CrosstalkMatrix{Size: m.Size, Weights: append([]float64(nil), m.Weights...)}
	if max == 0 {
		return out
	}
	for i := range out.Weights {
		out.Weights[i] /= max
	}
	return out
}
