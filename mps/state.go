// Package mps approximately simulates a circuit's quantum state as a
// Matrix Product State. Two-qubit gates on non-neighboring sites are
// handled by an internal SWAP network (sites are swapped together,
// the gate applied, then swapped back) rather than rejected, so routed
// and unrouted circuits both simulate. Bond dimension is capped at the
// configured chi; every truncation records the discarded fraction of the
// squared singular-value weight into a running fidelity-loss accumulator.
package mps

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/sadpig70/qns-go/circuit"
)

// ErrUnsupportedTopology is returned for gates the MPS cannot express
// directly (3-qubit controlled forms). Callers should decompose such
// gates before simulating.
var ErrUnsupportedTopology = errors.New("unsupported topology")

// site is one rank-3 tensor with shape (left bond, 2, right bond),
// stored row-major as data[(i*2+p)*r + j].
type site struct {
	l, r int
	data []complex128
}

// State is an MPS over n qubits in mixed-canonical form: sites left of
// center are left-isometric, sites right of it are right-isometric, and
// the center tensor carries the state norm. The invariant is what makes
// local singular values meaningful for truncation at any cut. Zero value
// is not usable; construct with New.
type State struct {
	sites    []site
	chiMax   int
	center   int
	truncErr float64
}

// New returns the all-zero product state |00...0> with bond dimension 1
// at every cut.
func New(numQubits, chiMax int) (*State, error) {
	if numQubits <= 0 {
		return nil, fmt.Errorf("qubit count must be positive, got %d", numQubits)
	}
	if chiMax < 1 {
		return nil, fmt.Errorf("chi must be at least 1, got %d", chiMax)
	}
	sites := make([]site, numQubits)
	for i := range sites {
		sites[i] = site{l: 1, r: 1, data: []complex128{1, 0}}
	}
	return &State{sites: sites, chiMax: chiMax}, nil
}

func (s *State) NumQubits() int { return len(s.sites) }

// TruncationError returns the accumulated discarded squared-weight
// fraction across all truncations so far.
func (s *State) TruncationError() float64 { return s.truncErr }

// BondDimensions returns the current bond dimension at each of the n-1
// cuts.
func (s *State) BondDimensions() []int {
	out := make([]int, 0, len(s.sites)-1)
	for i := 0; i+1 < len(s.sites); i++ {
		out = append(out, s.sites[i].r)
	}
	return out
}

// Run applies every gate of the circuit in order.
func (s *State) Run(c *circuit.Circuit) error {
	if c.QubitCount() > len(s.sites) {
		return fmt.Errorf("circuit has %d qubits but state has %d", c.QubitCount(), len(s.sites))
	}
	for i := 0; i < c.GateCount(); i++ {
		if err := s.Apply(c.Gate(i)); err != nil {
			return fmt.Errorf("gate %d (%s): %w", i, c.Gate(i).Name, err)
		}
	}
	return nil
}

// Apply applies a single gate. Measurement gates are a no-op here;
// readout happens through Probability and Sample.
func (s *State) Apply(g circuit.Gate) error {
	if g.IsMeasure() {
		return nil
	}
	if m2, ok := g.Matrix2(); ok {
		return s.apply1q(g.Qubits[0], m2)
	}
	if m4, ok := g.Matrix4(); ok {
		return s.apply2qAnywhere(g.Qubits[0], g.Qubits[1], m4)
	}
	return fmt.Errorf("%w: gate %s is not expressible on an MPS", ErrUnsupportedTopology, g.Name)
}

func (s *State) apply1q(q int, m circuit.Matrix2) error {
	if q < 0 || q >= len(s.sites) {
		return fmt.Errorf("qubit %d outside state of %d qubits", q, len(s.sites))
	}
	t := &s.sites[q]
	out := make([]complex128, len(t.data))
	for i := 0; i < t.l; i++ {
		for j := 0; j < t.r; j++ {
			a0 := t.data[(i*2+0)*t.r+j]
			a1 := t.data[(i*2+1)*t.r+j]
			out[(i*2+0)*t.r+j] = m[0][0]*a0 + m[0][1]*a1
			out[(i*2+1)*t.r+j] = m[1][0]*a0 + m[1][1]*a1
		}
	}
	t.data = out
	return nil
}

// apply2qAnywhere routes a two-qubit gate to neighboring sites via the
// SWAP network when needed and restores site order afterwards.
func (s *State) apply2qAnywhere(q1, q2 int, m circuit.Matrix4) error {
	n := len(s.sites)
	if q1 < 0 || q1 >= n || q2 < 0 || q2 >= n || q1 == q2 {
		return fmt.Errorf("invalid qubit pair (%d,%d) on %d-qubit state", q1, q2, n)
	}
	a, b := q1, q2
	reversed := false
	if a > b {
		a, b = b, a
		reversed = true
	}
	// Walk the left qubit over to the right one's neighborhood.
	for k := a; k < b-1; k++ {
		if err := s.apply2q(k, matSwap); err != nil {
			return err
		}
	}
	mat := m
	if reversed {
		mat = m.Reversed()
	}
	if err := s.apply2q(b-1, mat); err != nil {
		return err
	}
	for k := b - 2; k >= a; k-- {
		if err := s.apply2q(k, matSwap); err != nil {
			return err
		}
	}
	return nil
}

var matSwap = circuit.Matrix4{
	{1, 0, 0, 0},
	{0, 0, 1, 0},
	{0, 1, 0, 0},
	{0, 0, 0, 1},
}

// apply2q contracts sites k and k+1 into a joint tensor, applies the
// 4x4 unitary, then re-splits by SVD with bond truncation. The center
// is swept to the cut first so the local singular values carry the
// global norm. Cost is O(chi^3), dominated by the SVD.
func (s *State) apply2q(k int, m circuit.Matrix4) error {
	s.centerAt(k)
	left, right := &s.sites[k], &s.sites[k+1]
	if left.r != right.l {
		return fmt.Errorf("bond mismatch at cut %d: %d vs %d", k, left.r, right.l)
	}
	lDim, bond, rDim := left.l, left.r, right.r

	// theta[i, p1p2, j] = sum_b L[i,p1,b] * R[b,p2,j]
	theta := make([]complex128, lDim*4*rDim)
	for i := 0; i < lDim; i++ {
		for p1 := 0; p1 < 2; p1++ {
			for p2 := 0; p2 < 2; p2++ {
				for j := 0; j < rDim; j++ {
					var sum complex128
					for b := 0; b < bond; b++ {
						sum += left.data[(i*2+p1)*bond+b] * right.data[(b*2+p2)*rDim+j]
					}
					theta[(i*4+p1*2+p2)*rDim+j] = sum
				}
			}
		}
	}

	// Apply the unitary on the physical pair index.
	applied := make([]complex128, len(theta))
	for i := 0; i < lDim; i++ {
		for j := 0; j < rDim; j++ {
			for pOut := 0; pOut < 4; pOut++ {
				var sum complex128
				for pIn := 0; pIn < 4; pIn++ {
					sum += m[pOut][pIn] * theta[(i*4+pIn)*rDim+j]
				}
				applied[(i*4+pOut)*rDim+j] = sum
			}
		}
	}

	// Reshape to (lDim*2) x (2*rDim): row (i,p1), column (p2,j).
	rows, cols := lDim*2, 2*rDim
	mat := make([]complex128, rows*cols)
	for i := 0; i < lDim; i++ {
		for p1 := 0; p1 < 2; p1++ {
			for p2 := 0; p2 < 2; p2++ {
				for j := 0; j < rDim; j++ {
					mat[(i*2+p1)*cols+(p2*rDim+j)] = applied[(i*4+p1*2+p2)*rDim+j]
				}
			}
		}
	}

	u, sv, v := svd(mat, rows, cols)

	// Effective rank: drop numerically zero singular values, then cap
	// at chi. At least one value is always kept.
	chi := keepRank(sv)
	if chi > s.chiMax {
		chi = s.chiMax
	}
	var discarded float64
	for i := chi; i < len(sv); i++ {
		discarded += sv[i] * sv[i]
	}

	// Compensate the kept block for the discarded weight only. The
	// local values already carry the global norm, so anything beyond
	// that would corrupt the state.
	var keptSq float64
	for i := 0; i < chi; i++ {
		keptSq += sv[i] * sv[i]
	}
	totalSq := keptSq + discarded
	if totalSq > 0 {
		s.truncErr += discarded / totalSq
	}
	scale := 1.0
	if keptSq > 0 {
		scale = math.Sqrt(totalSq / keptSq)
	}

	newLeft := site{l: lDim, r: chi, data: make([]complex128, lDim*2*chi)}
	for i := 0; i < rows; i++ {
		for c := 0; c < chi; c++ {
			newLeft.data[i*chi+c] = u[i*len(sv)+c]
		}
	}
	newRight := site{l: chi, r: rDim, data: make([]complex128, chi*2*rDim)}
	for c := 0; c < chi; c++ {
		sval := complex(sv[c]*scale, 0)
		for col := 0; col < cols; col++ {
			p2, j := col/rDim, col%rDim
			// Row c of V-dagger is the conjugated c-th column of V.
			newRight.data[(c*2+p2)*rDim+j] = sval * conj(v[col*len(sv)+c])
		}
	}
	s.sites[k] = newLeft
	s.sites[k+1] = newRight
	s.center = k + 1
	return nil
}

// centerAt sweeps the orthogonality center until it sits on one of the
// two sites at cut k. Shifts are exact up to zero singular values.
func (s *State) centerAt(k int) {
	for s.center < k {
		s.shiftRight(s.center)
	}
	for s.center > k+1 {
		s.shiftLeft(s.center)
	}
}

// shiftRight splits site c into a left isometry and absorbs S*V-dagger
// into site c+1, moving the center one site right.
func (s *State) shiftRight(c int) {
	t := &s.sites[c]
	u, sv, v := svd(t.data, t.l*2, t.r)
	rank := keepRank(sv)
	kk := len(sv)

	iso := site{l: t.l, r: rank, data: make([]complex128, t.l*2*rank)}
	for i := 0; i < t.l*2; i++ {
		for c2 := 0; c2 < rank; c2++ {
			iso.data[i*rank+c2] = u[i*kk+c2]
		}
	}

	nt := &s.sites[c+1]
	ctr := site{l: rank, r: nt.r, data: make([]complex128, rank*2*nt.r)}
	for c2 := 0; c2 < rank; c2++ {
		for p := 0; p < 2; p++ {
			for j := 0; j < nt.r; j++ {
				var sum complex128
				for b := 0; b < nt.l; b++ {
					sum += conj(v[b*kk+c2]) * nt.data[(b*2+p)*nt.r+j]
				}
				ctr.data[(c2*2+p)*nt.r+j] = complex(sv[c2], 0) * sum
			}
		}
	}

	s.sites[c] = iso
	s.sites[c+1] = ctr
	s.center = c + 1
}

// shiftLeft splits site c into a right isometry and absorbs U*S into
// site c-1, moving the center one site left.
func (s *State) shiftLeft(c int) {
	t := &s.sites[c]
	u, sv, v := svd(t.data, t.l, 2*t.r)
	rank := keepRank(sv)
	kk := len(sv)

	iso := site{l: rank, r: t.r, data: make([]complex128, rank*2*t.r)}
	for c2 := 0; c2 < rank; c2++ {
		for p := 0; p < 2; p++ {
			for j := 0; j < t.r; j++ {
				iso.data[(c2*2+p)*t.r+j] = conj(v[(p*t.r+j)*kk+c2])
			}
		}
	}

	pt := &s.sites[c-1]
	ctr := site{l: pt.l, r: rank, data: make([]complex128, pt.l*2*rank)}
	for i := 0; i < pt.l*2; i++ {
		for c2 := 0; c2 < rank; c2++ {
			var sum complex128
			for b := 0; b < pt.r; b++ {
				sum += pt.data[i*pt.r+b] * u[b*kk+c2]
			}
			ctr.data[i*rank+c2] = sum * complex(sv[c2], 0)
		}
	}

	s.sites[c-1] = ctr
	s.sites[c] = iso
	s.center = c - 1
}

// keepRank drops trailing numerically zero singular values. At least
// one is always kept.
func keepRank(sv []float64) int {
	rank := len(sv)
	for rank > 1 && sv[rank-1] < 1e-12 {
		rank--
	}
	return rank
}

// Amplitude contracts the MPS against a computational basis state.
func (s *State) Amplitude(bits []int) (complex128, error) {
	if len(bits) != len(s.sites) {
		return 0, fmt.Errorf("need %d bits, got %d", len(s.sites), len(bits))
	}
	vec := []complex128{1}
	for k, t := range s.sites {
		p := bits[k]
		if p != 0 && p != 1 {
			return 0, fmt.Errorf("bit %d is %d, want 0 or 1", k, p)
		}
		next := make([]complex128, t.r)
		for j := 0; j < t.r; j++ {
			var sum complex128
			for i := 0; i < t.l; i++ {
				sum += vec[i] * t.data[(i*2+p)*t.r+j]
			}
			next[j] = sum
		}
		vec = next
	}
	return vec[0], nil
}

// Probability returns |<bits|psi>|^2 under the current (approximately
// normalized) state.
func (s *State) Probability(bits []int) (float64, error) {
	amp, err := s.Amplitude(bits)
	if err != nil {
		return 0, err
	}
	re, im := real(amp), imag(amp)
	return re*re + im*im, nil
}

// Sample draws one full measurement outcome by sequential conditional
// sampling, left to right, consistent with the MPS structure.
func (s *State) Sample(rng *rand.Rand) ([]int, error) {
	n := len(s.sites)
	// Right environments: env[k] is the contraction of sites k..n-1
	// with their conjugates, an (l_k x l_k) matrix. env[n] = [[1]].
	env := make([][]complex128, n+1)
	env[n] = []complex128{1}
	dim := 1
	for k := n - 1; k >= 0; k-- {
		t := s.sites[k]
		next := make([]complex128, t.l*t.l)
		for a := 0; a < t.l; a++ {
			for b := 0; b < t.l; b++ {
				var sum complex128
				for p := 0; p < 2; p++ {
					for j := 0; j < t.r; j++ {
						for jp := 0; jp < t.r; jp++ {
							sum += t.data[(a*2+p)*t.r+j] * env[k+1][j*dim+jp] * conj(t.data[(b*2+p)*t.r+jp])
						}
					}
				}
				next[a*t.l+b] = sum
			}
		}
		env[k] = next
		dim = t.l
	}

	bits := make([]int, n)
	vec := []complex128{1}
	for k := 0; k < n; k++ {
		t := s.sites[k]
		rdim := t.r
		var w [2][]complex128
		var prob [2]float64
		for p := 0; p < 2; p++ {
			w[p] = make([]complex128, rdim)
			for j := 0; j < rdim; j++ {
				var sum complex128
				for i := 0; i < t.l; i++ {
					sum += vec[i] * t.data[(i*2+p)*rdim+j]
				}
				w[p][j] = sum
			}
			var pr complex128
			for j := 0; j < rdim; j++ {
				for jp := 0; jp < rdim; jp++ {
					pr += w[p][j] * env[k+1][j*rdim+jp] * conj(w[p][jp])
				}
			}
			prob[p] = real(pr)
			if prob[p] < 0 {
				prob[p] = 0
			}
		}
		total := prob[0] + prob[1]
		if total <= 0 {
			return nil, fmt.Errorf("degenerate state at qubit %d: zero total probability", k)
		}
		bit := 0
		if rng.Float64() >= prob[0]/total {
			bit = 1
		}
		bits[k] = bit
		vec = w[bit]
		norm := math.Sqrt(prob[bit])
		if norm > 0 {
			inv := complex(1/norm, 0)
			for j := range vec {
				vec[j] *= inv
			}
		}
	}
	return bits, nil
}

func conj(c complex128) complex128 {
	return complex(real(c), -imag(c))
}
