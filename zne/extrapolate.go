// Package zne post-processes expectation values measured at amplified
// noise levels into a zero-noise estimate. Noise amplification itself
// happens through unitary folding (Fold); execution at each scale factor
// is the caller's responsibility, this package only consumes the
// resulting (scale, expectation) pairs.
package zne

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat"
)

var (
	// ErrInsufficientData means fewer scale points were supplied than
	// the chosen extrapolation model needs.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrFitDivergence means a nonlinear fit did not converge within
	// the iteration budget. Callers should retry with MethodLinear.
	ErrFitDivergence = errors.New("fit divergence")
)

// Method selects the extrapolation model.
type Method string

const (
	MethodLinear      Method = "linear"
	MethodRichardson  Method = "richardson"
	MethodExponential Method = "exponential"
)

// Sample is one measured expectation value at a noise scale factor.
type Sample struct {
	Scale float64
	Value float64
}

type Config struct {
	// MaxIter bounds the nonlinear fit's iteration budget.
	MaxIter int `toml:"max_iter"`
	// Tol is the nonlinear fit's function-convergence tolerance.
	Tol float64 `toml:"tol"`
}

func DefaultConfig() Config {
	return Config{MaxIter: 200, Tol: 1e-12}
}

// MitigationResult holds the samples the fit consumed, the extrapolated
// zero-noise value, and the root-mean-square fit residual.
type MitigationResult struct {
	Samples  []Sample
	Value    float64
	Residual float64
	Method   Method
}

// Extrapolate fits the chosen model to the samples and evaluates it at
// scale zero. It never silently returns an unfit value: every failure
// path is a typed error.
func Extrapolate(samples []Sample, method Method, cfg Config) (*MitigationResult, error) {
	if len(samples) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 scale points, got %d", ErrInsufficientData, len(samples))
	}
	for i := 0; i < len(samples); i++ {
		for j := i + 1; j < len(samples); j++ {
			if samples[i].Scale == samples[j].Scale {
				return nil, fmt.Errorf("%w: duplicate scale factor %g", ErrInsufficientData, samples[i].Scale)
			}
		}
	}
	switch method {
	case MethodLinear:
		return linearFit(samples)
	case MethodRichardson:
		return richardsonFit(samples)
	case MethodExponential:
		return exponentialFit(samples, cfg)
	default:
		return nil, fmt.Errorf("unknown extrapolation method %q", method)
	}
}

func linearFit(samples []Sample) (*MitigationResult, error) {
	xs := make([]float64, len(samples))
	ys := make([]float64, len(samples))
	for i, s := range samples {
		xs[i], ys[i] = s.Scale, s.Value
	}
	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	if math.IsNaN(alpha) || math.IsNaN(beta) {
		return nil, fmt.Errorf("%w: degenerate linear system", ErrFitDivergence)
	}
	return &MitigationResult{
		Samples:  append([]Sample(nil), samples...),
		Value:    alpha,
		Residual: rms(samples, func(x float64) float64 { return alpha + beta*x }),
		Method:   MethodLinear,
	}, nil
}

// richardsonFit evaluates at zero the unique degree-(n-1) polynomial
// through all points, using the Lagrange basis. Interpolation residual
// at the sample points is zero by construction.
func richardsonFit(samples []Sample) (*MitigationResult, error) {
	e0 := 0.0
	for i, si := range samples {
		basis := 1.0
		for j, sj := range samples {
			if j == i {
				continue
			}
			basis *= sj.Scale / (sj.Scale - si.Scale)
		}
		e0 += si.Value * basis
	}
	if math.IsNaN(e0) || math.IsInf(e0, 0) {
		return nil, fmt.Errorf("%w: ill-conditioned Richardson interpolation", ErrFitDivergence)
	}
	return &MitigationResult{
		Samples:  append([]Sample(nil), samples...),
		Value:    e0,
		Residual: 0,
		Method:   MethodRichardson,
	}, nil
}

// exponentialFit fits E(x) = c + a*exp(-b*x) by Nelder-Mead least
// squares, seeded from a two-point log-linearization.
func exponentialFit(samples []Sample, cfg Config) (*MitigationResult, error) {
	if len(samples) < 3 {
		return nil, fmt.Errorf("%w: exponential model needs at least 3 scale points", ErrInsufficientData)
	}
	c0, a0, b0 := exponentialSeed(samples)

	problem := optimize.Problem{
		Func: func(p []float64) float64 {
			c, a, b := p[0], p[1], p[2]
			var sum float64
			for _, s := range samples {
				d := s.Value - (c + a*math.Exp(-b*s.Scale))
				sum += d * d
			}
			return sum
		},
	}
	settings := &optimize.Settings{
		MajorIterations: cfg.MaxIter,
		Converger: &optimize.FunctionConverge{
			Absolute:   cfg.Tol,
			Iterations: 50,
		},
	}
	result, err := optimize.Minimize(problem, []float64{c0, a0, b0}, settings, &optimize.NelderMead{})
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrFitDivergence, err)
	}
	c, a, b := result.X[0], result.X[1], result.X[2]
	e0 := c + a
	if math.IsNaN(e0) || math.IsInf(e0, 0) {
		return nil, fmt.Errorf("%w: fit produced non-finite parameters", ErrFitDivergence)
	}
	return &MitigationResult{
		Samples:  append([]Sample(nil), samples...),
		Value:    e0,
		Residual: rms(samples, func(x float64) float64 { return c + a*math.Exp(-b*x) }),
		Method:   MethodExponential,
	}, nil
}

// exponentialSeed log-linearizes the first two points against the
// largest-scale value to produce a starting guess.
func exponentialSeed(samples []Sample) (c0, a0, b0 float64) {
	last := samples[0]
	for _, s := range samples[1:] {
		if s.Scale > last.Scale {
			last = s
		}
	}
	c0 = last.Value
	s0, s1 := samples[0], samples[1]
	d0, d1 := s0.Value-c0, s1.Value-c0
	if d0*d1 > 0 && s1.Scale != s0.Scale {
		b0 = math.Log(d0/d1) / (s1.Scale - s0.Scale)
		a0 = d0 * math.Exp(b0*s0.Scale)
		if !math.IsNaN(a0) && !math.IsNaN(b0) && !math.IsInf(a0, 0) && !math.IsInf(b0, 0) {
			return c0, a0, b0
		}
	}
	return c0, s0.Value - c0, 0.1
}

func rms(samples []Sample, f func(float64) float64) float64 {
	var sum float64
	for _, s := range samples {
		d := s.Value - f(s.Scale)
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(samples)))
}
