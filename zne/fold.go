package zne

import (
	"fmt"

	"github.com/sadpig70/qns-go/circuit"
)

// Fold amplifies a circuit's effective noise by the odd integer scale
// factor lambda using local unitary folding: each gate G becomes
// G (G-dagger G)^((lambda-1)/2). The folded circuit implements the same
// unitary but executes lambda times the gate count, so its error is
// scaled accordingly. Measurement gates are never folded.
func Fold(c *circuit.Circuit, lambda int) (*circuit.Circuit, error) {
	if lambda < 1 || lambda%2 == 0 {
		return nil, fmt.Errorf("scale factor must be an odd integer >= 1, got %d", lambda)
	}
	if lambda == 1 {
		return c, nil
	}
	reps := (lambda - 1) / 2
	folded := make([]circuit.Gate, 0, c.GateCount()*lambda)
	for _, g := range c.Gates() {
		folded = append(folded, g)
		if g.IsMeasure() {
			continue
		}
		adj := g.Adjoint()
		for r := 0; r < reps; r++ {
			folded = append(folded, adj, g)
		}
	}
	return c.WithGates(folded)
}
