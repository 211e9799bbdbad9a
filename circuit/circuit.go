package circuit

import (
	"errors"
	"fmt"
	"hash/fnv"
	"math"

	"go.uber.org/multierr"
)

// ErrInvalidCircuit is returned when a circuit references out-of-range
// qubits, has wrong gate arity, or a malformed measurement map. Always a
// caller bug, never retried.
var ErrInvalidCircuit = errors.New("invalid circuit")

// Durations holds per-gate-type execution times in nanoseconds. Used to
// weight the critical path for decoherence estimation.
type Durations struct {
	OneQubit float64
	TwoQubit float64
	Measure  float64
}

// DefaultDurations returns typical superconducting-qubit gate times.
func DefaultDurations() Durations {
	return Durations{OneQubit: 35.0, TwoQubit: 300.0, Measure: 1000.0}
}

func (d Durations) forGate(g Gate) float64 {
	switch {
	case g.IsMeasure():
		return d.Measure
	case g.IsTwoQubit():
		return d.TwoQubit
	case len(g.Qubits) == 3:
		// Controlled 3-qubit forms decompose into several 2-qubit gates.
		return 6 * d.TwoQubit
	default:
		return d.OneQubit
	}
}

// Circuit is an ordered gate sequence over a declared number of logical
// qubits plus a measurement map (logical qubit -> classical bit).
// Circuits are immutable once constructed; transformations produce new
// values via WithGates.
type Circuit struct {
	gates        []Gate
	qubitCount   int
	measurements map[int]int
}

// New validates the gate list and measurement map and constructs a circuit.
// All per-gate failures are aggregated and wrapped in ErrInvalidCircuit.
func New(qubitCount int, gates []Gate, measurements map[int]int) (*Circuit, error) {
	if qubitCount <= 0 {
		return nil, fmt.Errorf("%w: qubit count must be positive, got %d", ErrInvalidCircuit, qubitCount)
	}
	var verr error
	for i, g := range gates {
		if err := g.validate(qubitCount); err != nil {
			verr = multierr.Append(verr, fmt.Errorf("gate %d: %s", i, err))
		}
	}
	for q, c := range measurements {
		if q < 0 || q >= qubitCount {
			verr = multierr.Append(verr, fmt.Errorf("measurement of qubit %d outside [0,%d)", q, qubitCount))
		}
		if c < 0 {
			verr = multierr.Append(verr, fmt.Errorf("measurement of qubit %d targets negative bit %d", q, c))
		}
	}
	if verr != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidCircuit, verr)
	}
	c := &Circuit{
		gates:        append([]Gate(nil), gates...),
		qubitCount:   qubitCount,
		measurements: make(map[int]int, len(measurements)),
	}
	for q, b := range measurements {
		c.measurements[q] = b
	}
	return c, nil
}

// MustNew is New but panics on validation failure. Test helper.
func MustNew(qubitCount int, gates []Gate, measurements map[int]int) *Circuit {
	c, err := New(qubitCount, gates, measurements)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Circuit) QubitCount() int { return c.qubitCount }
func (c *Circuit) GateCount() int  { return len(c.gates) }

// Gates returns a copy of the gate sequence.
func (c *Circuit) Gates() []Gate {
	return append([]Gate(nil), c.gates...)
}

// Gate returns the gate at index i.
func (c *Circuit) Gate(i int) Gate { return c.gates[i] }

// Measurements returns a copy of the measurement map.
func (c *Circuit) Measurements() map[int]int {
	m := make(map[int]int, len(c.measurements))
	for q, b := range c.measurements {
		m[q] = b
	}
	return m
}

func (c *Circuit) OneQubitGateCount() int {
	n := 0
	for _, g := range c.gates {
		if g.IsOneQubit() {
			n++
		}
	}
	return n
}

func (c *Circuit) TwoQubitGateCount() int {
	n := 0
	for _, g := range c.gates {
		if g.IsTwoQubit() {
			n++
		}
	}
	return n
}

// TouchedQubits returns the sorted-unique set of qubits any gate acts on.
func (c *Circuit) TouchedQubits() []int {
	seen := make(map[int]struct{})
	for _, g := range c.gates {
		for _, q := range g.Qubits {
			seen[q] = struct{}{}
		}
	}
	out := make([]int, 0, len(seen))
	for q := 0; q < c.qubitCount; q++ {
		if _, ok := seen[q]; ok {
			out = append(out, q)
		}
	}
	return out
}

// CriticalPath computes the longest weighted path through the gate DAG,
// where gates sharing a qubit are ordered and gate weights come from d.
// Gates on disjoint qubits run in parallel. Result is in nanoseconds.
func (c *Circuit) CriticalPath(d Durations) float64 {
	if len(c.gates) == 0 {
		return 0
	}
	end := make([]float64, c.qubitCount)
	for _, g := range c.gates {
		start := 0.0
		for _, q := range g.Qubits {
			start = math.Max(start, end[q])
		}
		finish := start + d.forGate(g)
		for _, q := range g.Qubits {
			end[q] = finish
		}
	}
	max := 0.0
	for _, t := range end {
		max = math.Max(max, t)
	}
	return max
}

// Equal reports structural equality: same qubit count, identical gate
// list, identical measurement map. Unitary equivalence is out of scope.
func (c *Circuit) Equal(o *Circuit) bool {
	if c.qubitCount != o.qubitCount || len(c.gates) != len(o.gates) ||
		len(c.measurements) != len(o.measurements) {
		return false
	}
	for i := range c.gates {
		if !c.gates[i].equal(o.gates[i]) {
			return false
		}
	}
	for q, b := range c.measurements {
		if ob, ok := o.measurements[q]; !ok || ob != b {
			return false
		}
	}
	return true
}

// WithGates derives a new circuit with the given gate sequence, keeping
// the qubit count and measurement map. The gate list is revalidated.
func (c *Circuit) WithGates(gates []Gate) (*Circuit, error) {
	return New(c.qubitCount, gates, c.measurements)
}

// Fingerprint returns a hash of the gate sequence, used for variant
// deduplication during search.
func (c *Circuit) Fingerprint() uint64 {
	h := fnv.New64a()
	var buf [8]byte
	for _, g := range c.gates {
		h.Write([]byte(g.Name))
		for _, q := range g.Qubits {
			writeUint64(h, buf[:], uint64(q))
		}
		for _, p := range g.Params {
			writeUint64(h, buf[:], math.Float64bits(p))
		}
	}
	return h.Sum64()
}

func writeUint64(h interface{ Write([]byte) (int, error) }, buf []byte, v uint64) {
	for i := 0; i < 8; i++ {
		buf[i] = byte(v >> (8 * i))
	}
	h.Write(buf)
}
