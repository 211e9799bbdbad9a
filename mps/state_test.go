//go:build unit
// +build unit

package mps

import (
	"math"
	"math/cmplx"
	"math/rand"
	"testing"

	"github.com/sadpig70/qns-go/circuit"
	"github.com/stretchr/testify/assert"
)

// denseRun evolves a full state vector, the brute-force reference the
// MPS contraction is checked against. Qubit 0 is the most significant
// bit of the index.
func denseRun(t *testing.T, c *circuit.Circuit) []complex128 {
	t.Helper()
	n := c.QubitCount()
	vec := make([]complex128, 1<<uint(n))
	vec[0] = 1
	for _, g := range c.Gates() {
		if g.IsMeasure() {
			continue
		}
		if m, ok := g.Matrix2(); ok {
			denseApply1q(vec, n, g.Qubits[0], m)
			continue
		}
		if m, ok := g.Matrix4(); ok {
			denseApply2q(vec, n, g.Qubits[0], g.Qubits[1], m)
			continue
		}
		t.Fatalf("dense reference cannot apply %s", g.String())
	}
	return vec
}

func denseApply1q(vec []complex128, n, q int, m circuit.Matrix2) {
	shift := uint(n - 1 - q)
	for idx := range vec {
		if idx>>shift&1 == 0 {
			i1 := idx | 1<<shift
			a0, a1 := vec[idx], vec[i1]
			vec[idx] = m[0][0]*a0 + m[0][1]*a1
			vec[i1] = m[1][0]*a0 + m[1][1]*a1
		}
	}
}

func denseApply2q(vec []complex128, n, qa, qb int, m circuit.Matrix4) {
	sa, sb := uint(n-1-qa), uint(n-1-qb)
	for idx := range vec {
		if idx>>sa&1 == 0 && idx>>sb&1 == 0 {
			var ids [4]int
			var in [4]complex128
			for r := 0; r < 4; r++ {
				i := idx
				if r&2 != 0 {
					i |= 1 << sa
				}
				if r&1 != 0 {
					i |= 1 << sb
				}
				ids[r] = i
				in[r] = vec[i]
			}
			for r := 0; r < 4; r++ {
				var sum complex128
				for k := 0; k < 4; k++ {
					sum += m[r][k] * in[k]
				}
				vec[ids[r]] = sum
			}
		}
	}
}

func assertMatchesDense(t *testing.T, c *circuit.Circuit, chiMax int, tol float64) *State {
	t.Helper()
	s, err := New(c.QubitCount(), chiMax)
	assert.Nil(t, err)
	assert.Nil(t, s.Run(c))

	ref := denseRun(t, c)
	n := c.QubitCount()
	bits := make([]int, n)
	for idx, want := range ref {
		for q := 0; q < n; q++ {
			bits[q] = idx >> uint(n-1-q) & 1
		}
		got, err := s.Amplitude(bits)
		assert.Nil(t, err)
		assert.InDelta(t, 0, cmplx.Abs(got-want), tol,
			"amplitude of basis state %b", idx)
	}
	return s
}

func TestSingleQubitGates(t *testing.T) {
	s, err := New(1, 8)
	assert.Nil(t, err)
	assert.Nil(t, s.Apply(circuit.PauliX(0)))

	amp, err := s.Amplitude([]int{1})
	assert.Nil(t, err)
	assert.InDelta(t, 1.0, real(amp), 1e-12)

	assert.Nil(t, s.Apply(circuit.Hadamard(0)))
	p0, err := s.Probability([]int{0})
	assert.Nil(t, err)
	assert.InDelta(t, 0.5, p0, 1e-12)
}

func TestBellPair(t *testing.T) {
	c := circuit.MustNew(2, []circuit.Gate{
		circuit.Hadamard(0), circuit.CNot(0, 1),
	}, nil)
	s := assertMatchesDense(t, c, 8, 1e-12)

	p00, err := s.Probability([]int{0, 0})
	assert.Nil(t, err)
	p11, err := s.Probability([]int{1, 1})
	assert.Nil(t, err)
	p01, err := s.Probability([]int{0, 1})
	assert.Nil(t, err)
	assert.InDelta(t, 0.5, p00, 1e-12)
	assert.InDelta(t, 0.5, p11, 1e-12)
	assert.InDelta(t, 0.0, p01, 1e-12)
	assert.Equal(t, 0.0, s.TruncationError())
}

func TestGHZ(t *testing.T) {
	c := circuit.MustNew(3, []circuit.Gate{
		circuit.Hadamard(0), circuit.CNot(0, 1), circuit.CNot(1, 2),
	}, nil)
	s := assertMatchesDense(t, c, 8, 1e-12)

	p000, err := s.Probability([]int{0, 0, 0})
	assert.Nil(t, err)
	p111, err := s.Probability([]int{1, 1, 1})
	assert.Nil(t, err)
	assert.InDelta(t, 0.5, p000, 1e-12)
	assert.InDelta(t, 0.5, p111, 1e-12)
}

func TestNonAdjacentTwoQubitGate(t *testing.T) {
	// Exercises the internal swap network and operand reversal.
	c := circuit.MustNew(4, []circuit.Gate{
		circuit.Hadamard(0),
		circuit.CNot(0, 3),
		circuit.CNot(3, 1),
		circuit.CPauliZ(2, 0),
	}, nil)
	assertMatchesDense(t, c, 16, 1e-10)
}

func TestSwapNetworkNormPreserved(t *testing.T) {
	// The swap-back pass hits a cut left of the previous split, which
	// only works when the orthogonality center is swept along.
	c := circuit.MustNew(3, []circuit.Gate{
		circuit.Hadamard(0), circuit.CNot(0, 2),
	}, nil)
	s, err := New(3, 16)
	assert.Nil(t, err)
	assert.Nil(t, s.Run(c))

	p000, err := s.Probability([]int{0, 0, 0})
	assert.Nil(t, err)
	p101, err := s.Probability([]int{1, 0, 1})
	assert.Nil(t, err)
	assert.InDelta(t, 0.5, p000, 1e-10)
	assert.InDelta(t, 0.5, p101, 1e-10)
	assert.Equal(t, 0.0, s.TruncationError())

	var total float64
	bits := make([]int, 3)
	for idx := 0; idx < 8; idx++ {
		for q := 0; q < 3; q++ {
			bits[q] = idx >> uint(2-q) & 1
		}
		p, err := s.Probability(bits)
		assert.Nil(t, err)
		total += p
	}
	assert.InDelta(t, 1.0, total, 1e-10)
}

func TestDeepCircuitMatchesDense(t *testing.T) {
	const n = 6
	rng := rand.New(rand.NewSource(7))
	var gates []circuit.Gate
	for layer := 0; layer < 8; layer++ {
		for q := 0; q < n; q++ {
			switch rng.Intn(4) {
			case 0:
				gates = append(gates, circuit.Hadamard(q))
			case 1:
				gates = append(gates, circuit.RotX(q, rng.Float64()*2*math.Pi))
			case 2:
				gates = append(gates, circuit.RotZ(q, rng.Float64()*2*math.Pi))
			case 3:
				gates = append(gates, circuit.TGate(q))
			}
		}
		a := rng.Intn(n)
		b := rng.Intn(n)
		for b == a {
			b = rng.Intn(n)
		}
		if layer%2 == 0 {
			gates = append(gates, circuit.CNot(a, b))
		} else {
			gates = append(gates, circuit.CPauliZ(a, b))
		}
	}
	c := circuit.MustNew(n, gates, nil)
	assertMatchesDense(t, c, 64, 1e-9)
}

func TestTruncationError(t *testing.T) {
	c := circuit.MustNew(2, []circuit.Gate{
		circuit.Hadamard(0), circuit.CNot(0, 1),
	}, nil)
	s, err := New(2, 1)
	assert.Nil(t, err)
	assert.Nil(t, s.Run(c))

	// Bell pair needs bond dimension 2; chi=1 discards half the weight.
	assert.InDelta(t, 0.5, s.TruncationError(), 1e-12)
	for _, d := range s.BondDimensions() {
		assert.LessOrEqual(t, d, 1)
	}
	// The kept state is renormalized.
	p0, err := s.Probability([]int{0, 0})
	assert.Nil(t, err)
	p1, err := s.Probability([]int{1, 1})
	assert.Nil(t, err)
	assert.InDelta(t, 1.0, p0+p1, 1e-9)
}

func TestUnsupportedGate(t *testing.T) {
	s, err := New(3, 8)
	assert.Nil(t, err)
	assert.ErrorIs(t, s.Apply(circuit.Toffoli(0, 1, 2)), ErrUnsupportedTopology)
}

func TestMeasureGateIsNoOp(t *testing.T) {
	s, err := New(1, 4)
	assert.Nil(t, err)
	assert.Nil(t, s.Apply(circuit.Hadamard(0)))
	assert.Nil(t, s.Apply(circuit.Measure(0)))
	p, err := s.Probability([]int{1})
	assert.Nil(t, err)
	assert.InDelta(t, 0.5, p, 1e-12)
}

func TestAmplitudeValidation(t *testing.T) {
	s, err := New(2, 4)
	assert.Nil(t, err)
	_, err = s.Amplitude([]int{0})
	assert.Error(t, err)
	_, err = s.Amplitude([]int{0, 2})
	assert.Error(t, err)
}

func TestSampleBellCorrelations(t *testing.T) {
	c := circuit.MustNew(2, []circuit.Gate{
		circuit.Hadamard(0), circuit.CNot(0, 1),
	}, nil)
	s, err := New(2, 8)
	assert.Nil(t, err)
	assert.Nil(t, s.Run(c))

	rng := rand.New(rand.NewSource(42))
	ones := 0
	const draws = 2000
	for i := 0; i < draws; i++ {
		bits, err := s.Sample(rng)
		assert.Nil(t, err)
		assert.Equal(t, bits[0], bits[1], "bell outcomes must correlate")
		ones += bits[0]
	}
	assert.InDelta(t, 0.5, float64(ones)/draws, 0.05)
}
