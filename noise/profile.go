package noise

import (
	"fmt"

	"github.com/mohae/deepcopy"
	"go.uber.org/zap"
)

// QubitCalibration holds the calibration snapshot of one physical qubit.
// T1 and T2 are in microseconds.
type QubitCalibration struct {
	T1           float64
	T2           float64
	Eps1Q        float64
	ReadoutError float64
}

// Profile is a noise snapshot built once per optimization request from
// external calibration data. Read-only after construction; a live drift
// monitor produces a fresh Profile per poll rather than mutating one.
type Profile struct {
	Qubits    []QubitCalibration
	Eps1QMean float64
	Eps2QMean float64
	Edges     map[[2]int]float64
	Xtalk     *CrosstalkMatrix
}

// edgeKey orders a physical qubit pair canonically.
func edgeKey(p, q int) [2]int {
	if p > q {
		p, q = q, p
	}
	return [2]int{p, q}
}

// NewProfile validates calibration data and builds a profile. T2 values
// above the physical limit 2*T1 are clamped with a warning; non-positive
// T1/T2 are rejected. The crosstalk matrix may be nil (treated as zero)
// and is normalized so its maximum entry is 1.0.
func NewProfile(qubits []QubitCalibration, eps1Q, eps2Q float64, edgeEps2Q map[[2]int]float64, xtalk *CrosstalkMatrix) (*Profile, error) {
	if len(qubits) == 0 {
		return nil, fmt.Errorf("no qubit calibration data")
	}
	if eps1Q < 0 || eps1Q >= 1 || eps2Q < 0 || eps2Q >= 1 {
		return nil, fmt.Errorf("gate error rates must be in [0,1): eps1q=%g eps2q=%g", eps1Q, eps2Q)
	}
	qs := append([]QubitCalibration(nil), qubits...)
	for i := range qs {
		if qs[i].T1 <= 0 || qs[i].T2 <= 0 {
			return nil, fmt.Errorf("qubit %d: T1 and T2 must be positive (T1=%g T2=%g)", i, qs[i].T1, qs[i].T2)
		}
		if qs[i].T2 > 2*qs[i].T1 {
			zap.L().Warn(fmt.Sprintf("qubit %d: T2 (%g us) exceeds 2*T1 (%g us), clamping", i, qs[i].T2, 2*qs[i].T1))
			qs[i].T2 = 2 * qs[i].T1
		}
	}
	if xtalk != nil {
		if xtalk.Size != len(qs) {
			return nil, fmt.Errorf("crosstalk matrix is %dx%d but profile has %d qubits", xtalk.Size, xtalk.Size, len(qs))
		}
		xtalk = xtalk.normalized()
	}
	edges := make(map[[2]int]float64, len(edgeEps2Q))
	for k, v := range edgeEps2Q {
		if v < 0 || v >= 1 {
			return nil, fmt.Errorf("edge %v: error rate %g outside [0,1)", k, v)
		}
		edges[edgeKey(k[0], k[1])] = v
	}
	return &Profile{
		Qubits:    qs,
		Eps1QMean: eps1Q,
		Eps2QMean: eps2Q,
		Edges:     edges,
		Xtalk:     xtalk,
	}, nil
}

// Uniform builds a profile with identical calibration on every qubit and
// no crosstalk. Intended for tests and baselines.
func Uniform(numQubits int, t1, t2, eps1Q, eps2Q float64) (*Profile, error) {
	qs := make([]QubitCalibration, numQubits)
	for i := range qs {
		qs[i] = QubitCalibration{T1: t1, T2: t2, Eps1Q: eps1Q}
	}
	return NewProfile(qs, eps1Q, eps2Q, nil, nil)
}

func (p *Profile) NumQubits() int { return len(p.Qubits) }

// EdgeEps2Q returns the two-qubit error rate for a physical pair, falling
// back to the profile mean when no per-edge datum exists.
func (p *Profile) EdgeEps2Q(a, b int) float64 {
	if v, ok := p.Edges[edgeKey(a, b)]; ok {
		return v
	}
	return p.Eps2QMean
}

// Crosstalk returns the normalized interaction weight between two
// physical qubits, zero when no matrix was supplied.
func (p *Profile) Crosstalk(a, b int) float64 {
	if p.Xtalk == nil {
		return 0
	}
	return p.Xtalk.At(a, b)
}

// Clone deep-copies the profile so callers can hold a snapshot across a
// calibration refresh.
func (p *Profile) Clone() *Profile {
	return deepcopy.Copy(p).(*Profile)
}
