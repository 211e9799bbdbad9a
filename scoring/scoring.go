// Package scoring estimates the execution fidelity of a circuit under a
// noise profile. The estimate is the product of a gate-error term and a
// decoherence term:
//
//	F = (1-eps1q)^n1q * (1-eps2q)^n2q * exp(-t_crit / T2_eff)
//
// T2_eff is the harmonic mean of the T2 of the qubits the circuit
// touches. The harmonic mean was chosen over the worst-case minimum
// because a single weak qubit would otherwise dominate the score of wide
// circuits that barely use it; the harmonic mean still weights weak
// qubits heavily but keeps the estimate usable for ranking.
package scoring

import (
	"math"

	"github.com/sadpig70/qns-go/circuit"
	"github.com/sadpig70/qns-go/noise"
)

// Config carries the gate timing model used for the critical path.
type Config struct {
	GateTime1Q  float64 `toml:"gate_time_1q"`
	GateTime2Q  float64 `toml:"gate_time_2q"`
	MeasureTime float64 `toml:"measure_time"`
}

// DefaultConfig returns typical superconducting-hardware gate times (ns).
func DefaultConfig() Config {
	return Config{GateTime1Q: 35.0, GateTime2Q: 300.0, MeasureTime: 1000.0}
}

func (c Config) durations() circuit.Durations {
	return circuit.Durations{OneQubit: c.GateTime1Q, TwoQubit: c.GateTime2Q, Measure: c.MeasureTime}
}

// EstimateFidelity scores a (circuit, profile) pair with a scalar in
// (0, 1]. A zero-gate circuit scores 1.0. Pure function: neither input
// is mutated.
func EstimateFidelity(c *circuit.Circuit, p *noise.Profile, cfg Config) float64 {
	if c.GateCount() == 0 {
		return 1.0
	}
	fGate := math.Pow(1-p.Eps1QMean, float64(c.OneQubitGateCount())) *
		math.Pow(1-p.Eps2QMean, float64(c.TwoQubitGateCount()))

	tTotalNs := c.CriticalPath(cfg.durations())
	t2EffUs := harmonicMeanT2(c, p)
	fDec := 1.0
	if t2EffUs > 0 {
		fDec = math.Exp(-tTotalNs / (t2EffUs * 1000.0))
	}

	f := fGate * fDec
	if f <= 0 {
		// Underflow guard: the contract promises a value in (0, 1].
		return math.SmallestNonzeroFloat64
	}
	if f > 1 {
		return 1.0
	}
	return f
}

// harmonicMeanT2 aggregates T2 across the qubits the circuit touches.
// Touched qubits beyond the profile's calibration data fall back to the
// worst calibrated T2.
func harmonicMeanT2(c *circuit.Circuit, p *noise.Profile) float64 {
	touched := c.TouchedQubits()
	if len(touched) == 0 {
		return 0
	}
	worst := math.Inf(1)
	for _, q := range p.Qubits {
		if q.T2 < worst {
			worst = q.T2
		}
	}
	sumInv := 0.0
	for _, q := range touched {
		t2 := worst
		if q < p.NumQubits() {
			t2 = p.Qubits[q].T2
		}
		sumInv += 1.0 / t2
	}
	return float64(len(touched)) / sumInv
}
