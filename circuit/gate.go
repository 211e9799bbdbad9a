package circuit

import (
	"fmt"
	"strconv"
	"strings"
)

// GateName identifies a gate in the supported basis.
type GateName string

const (
	H   GateName = "h"
	X   GateName = "x"
	Y   GateName = "y"
	Z   GateName = "z"
	S   GateName = "s"
	Sdg GateName = "sdg"
	T   GateName = "t"
	Tdg GateName = "tdg"
	RX  GateName = "rx"
	RY  GateName = "ry"
	RZ  GateName = "rz"

	CX   GateName = "cx"
	CZ   GateName = "cz"
	SWAP GateName = "swap"

	CCX GateName = "ccx"

	MEASURE GateName = "measure"
)

// gateArity maps each gate to the number of qubit operands it takes.
var gateArity = map[GateName]int{
	H: 1, X: 1, Y: 1, Z: 1, S: 1, Sdg: 1, T: 1, Tdg: 1,
	RX: 1, RY: 1, RZ: 1,
	CX: 2, CZ: 2, SWAP: 2,
	CCX:     3,
	MEASURE: 1,
}

// gateParamCount maps each gate to the number of angle parameters it takes.
var gateParamCount = map[GateName]int{
	RX: 1, RY: 1, RZ: 1,
}

// Gate is a named unitary (or measurement) applied to an ordered list of
// logical qubits with zero or more continuous angle parameters.
type Gate struct {
	Name   GateName
	Qubits []int
	Params []float64
}

func NewGate(name GateName, qubits []int, params ...float64) Gate {
	return Gate{Name: name, Qubits: qubits, Params: params}
}

// Convenience constructors for the common gates.
func Hadamard(q int) Gate { return Gate{Name: H, Qubits: []int{q}} }
func PauliX(q int) Gate   { return Gate{Name: X, Qubits: []int{q}} }
func PauliY(q int) Gate   { return Gate{Name: Y, Qubits: []int{q}} }
func PauliZ(q int) Gate   { return Gate{Name: Z, Qubits: []int{q}} }
func Phase(q int) Gate    { return Gate{Name: S, Qubits: []int{q}} }
func TGate(q int) Gate    { return Gate{Name: T, Qubits: []int{q}} }

func RotX(q int, th float64) Gate { return Gate{Name: RX, Qubits: []int{q}, Params: []float64{th}} }
func RotY(q int, th float64) Gate { return Gate{Name: RY, Qubits: []int{q}, Params: []float64{th}} }
func RotZ(q int, th float64) Gate { return Gate{Name: RZ, Qubits: []int{q}, Params: []float64{th}} }

func CNot(c, t int) Gate       { return Gate{Name: CX, Qubits: []int{c, t}} }
func CPauliZ(c, t int) Gate    { return Gate{Name: CZ, Qubits: []int{c, t}} }
func Swap(a, b int) Gate       { return Gate{Name: SWAP, Qubits: []int{a, b}} }
func Toffoli(a, b, t int) Gate { return Gate{Name: CCX, Qubits: []int{a, b, t}} }
func Measure(q int) Gate       { return Gate{Name: MEASURE, Qubits: []int{q}} }

// Arity returns the expected qubit-operand count for the gate name,
// or 0 for an unknown gate.
func (g Gate) Arity() int {
	return gateArity[g.Name]
}

func (g Gate) IsOneQubit() bool {
	return gateArity[g.Name] == 1 && g.Name != MEASURE
}

func (g Gate) IsTwoQubit() bool {
	return gateArity[g.Name] == 2
}

func (g Gate) IsMeasure() bool {
	return g.Name == MEASURE
}

// IsDiagonal reports whether the gate is diagonal in the computational
// basis. Diagonal gates commute with each other even on shared qubits.
func (g Gate) IsDiagonal() bool {
	switch g.Name {
	case Z, S, Sdg, T, Tdg, RZ, CZ:
		return true
	}
	return false
}

// rotationAxis classifies single-qubit gates by rotation axis.
// Same-axis rotations on the same qubit commute.
func (g Gate) rotationAxis() byte {
	switch g.Name {
	case X, RX:
		return 'x'
	case Y, RY:
		return 'y'
	case Z, S, Sdg, T, Tdg, RZ:
		return 'z'
	}
	return 0
}

// Adjoint returns the inverse gate. Self-inverse gates return themselves;
// rotations negate their angle; S and T map to their dagger forms.
// Measurement has no adjoint and is returned unchanged.
func (g Gate) Adjoint() Gate {
	switch g.Name {
	case S:
		return Gate{Name: Sdg, Qubits: g.Qubits}
	case Sdg:
		return Gate{Name: S, Qubits: g.Qubits}
	case T:
		return Gate{Name: Tdg, Qubits: g.Qubits}
	case Tdg:
		return Gate{Name: T, Qubits: g.Qubits}
	case RX, RY, RZ:
		return Gate{Name: g.Name, Qubits: g.Qubits, Params: []float64{-g.Params[0]}}
	default:
		return g
	}
}

func (g Gate) String() string {
	var b strings.Builder
	b.WriteString(string(g.Name))
	if len(g.Params) > 0 {
		b.WriteByte('(')
		for i, p := range g.Params {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(strconv.FormatFloat(p, 'g', -1, 64))
		}
		b.WriteByte(')')
	}
	for _, q := range g.Qubits {
		b.WriteString(fmt.Sprintf(" q%d", q))
	}
	return b.String()
}

func (g Gate) equal(o Gate) bool {
	if g.Name != o.Name || len(g.Qubits) != len(o.Qubits) || len(g.Params) != len(o.Params) {
		return false
	}
	for i := range g.Qubits {
		if g.Qubits[i] != o.Qubits[i] {
			return false
		}
	}
	for i := range g.Params {
		if g.Params[i] != o.Params[i] {
			return false
		}
	}
	return true
}

func (g Gate) validate(qubitCount int) error {
	arity, known := gateArity[g.Name]
	if !known {
		return fmt.Errorf("unknown gate %q", g.Name)
	}
	if len(g.Qubits) != arity {
		return fmt.Errorf("gate %s takes %d qubit(s), got %d", g.Name, arity, len(g.Qubits))
	}
	if len(g.Params) != gateParamCount[g.Name] {
		return fmt.Errorf("gate %s takes %d parameter(s), got %d",
			g.Name, gateParamCount[g.Name], len(g.Params))
	}
	seen := make(map[int]struct{}, len(g.Qubits))
	for _, q := range g.Qubits {
		if q < 0 || q >= qubitCount {
			return fmt.Errorf("gate %s references qubit %d outside [0,%d)", g.Name, q, qubitCount)
		}
		if _, dup := seen[q]; dup {
			return fmt.Errorf("gate %s references qubit %d twice", g.Name, q)
		}
		seen[q] = struct{}{}
	}
	return nil
}
