package circuit

import (
	"math"
	"math/cmplx"
)

// Matrix2 is a 2x2 unitary in row-major order.
type Matrix2 [2][2]complex128

// Matrix4 is a 4x4 unitary in row-major order. Basis ordering is
// |q1 q2> with the gate's first operand as the most significant bit.
type Matrix4 [4][4]complex128

const invSqrt2 = 1.0 / math.Sqrt2

var (
	matH   = Matrix2{{invSqrt2, invSqrt2}, {invSqrt2, -invSqrt2}}
	matX   = Matrix2{{0, 1}, {1, 0}}
	matY   = Matrix2{{0, -1i}, {1i, 0}}
	matZ   = Matrix2{{1, 0}, {0, -1}}
	matS   = Matrix2{{1, 0}, {0, 1i}}
	matSdg = Matrix2{{1, 0}, {0, -1i}}
	matT   = Matrix2{{1, 0}, {0, complex(invSqrt2, invSqrt2)}}
	matTdg = Matrix2{{1, 0}, {0, complex(invSqrt2, -invSqrt2)}}

	matCX = Matrix4{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 0, 1},
		{0, 0, 1, 0},
	}
	matCZ = Matrix4{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, -1},
	}
	matSWAP = Matrix4{
		{1, 0, 0, 0},
		{0, 0, 1, 0},
		{0, 1, 0, 0},
		{0, 0, 0, 1},
	}
)

func rxMatrix(theta float64) Matrix2 {
	c := complex(math.Cos(theta/2), 0)
	s := complex(0, -math.Sin(theta/2))
	return Matrix2{{c, s}, {s, c}}
}

func ryMatrix(theta float64) Matrix2 {
	c := complex(math.Cos(theta/2), 0)
	s := complex(math.Sin(theta/2), 0)
	return Matrix2{{c, -s}, {s, c}}
}

func rzMatrix(theta float64) Matrix2 {
	return Matrix2{
		{cmplx.Exp(complex(0, -theta/2)), 0},
		{0, cmplx.Exp(complex(0, theta/2))},
	}
}

// Matrix2 returns the single-qubit matrix for the gate, or ok=false for
// multi-qubit gates and measurement.
func (g Gate) Matrix2() (Matrix2, bool) {
	switch g.Name {
	case H:
		return matH, true
	case X:
		return matX, true
	case Y:
		return matY, true
	case Z:
		return matZ, true
	case S:
		return matS, true
	case Sdg:
		return matSdg, true
	case T:
		return matT, true
	case Tdg:
		return matTdg, true
	case RX:
		return rxMatrix(g.Params[0]), true
	case RY:
		return ryMatrix(g.Params[0]), true
	case RZ:
		return rzMatrix(g.Params[0]), true
	}
	return Matrix2{}, false
}

// Matrix4 returns the two-qubit matrix for the gate, or ok=false otherwise.
func (g Gate) Matrix4() (Matrix4, bool) {
	switch g.Name {
	case CX:
		return matCX, true
	case CZ:
		return matCZ, true
	case SWAP:
		return matSWAP, true
	}
	return Matrix4{}, false
}

// Reversed returns the matrix with its two qubit operands exchanged,
// i.e. SWAP * M * SWAP.
func (m Matrix4) Reversed() Matrix4 {
	perm := [4]int{0, 2, 1, 3}
	var out Matrix4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			out[perm[i]][perm[j]] = m[i][j]
		}
	}
	return out
}
