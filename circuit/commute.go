package circuit

// Commutes reports whether exchanging the order of two gates leaves the
// circuit unitary unchanged. The rule is sufficient, not exhaustive:
//
//  1. Gates on disjoint qubit sets always commute.
//  2. Diagonal gates commute with each other even on shared qubits.
//  3. Same-axis single-qubit rotations on the same qubit commute.
//
// Measurement never commutes with anything sharing its qubit. The
// predicate is pure and never fails.
func Commutes(a, b Gate) bool {
	if disjoint(a.Qubits, b.Qubits) {
		return true
	}
	if a.IsMeasure() || b.IsMeasure() {
		return false
	}
	if a.IsDiagonal() && b.IsDiagonal() {
		return true
	}
	if a.IsOneQubit() && b.IsOneQubit() {
		ax, bx := a.rotationAxis(), b.rotationAxis()
		return ax != 0 && ax == bx
	}
	return false
}

func disjoint(a, b []int) bool {
	for _, qa := range a {
		for _, qb := range b {
			if qa == qb {
				return false
			}
		}
	}
	return true
}
