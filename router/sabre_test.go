//go:build unit
// +build unit

package router

import (
	"testing"

	"github.com/sadpig70/qns-go/circuit"
	"github.com/sadpig70/qns-go/noise"
	"github.com/stretchr/testify/assert"
)

func uniformProfile(t *testing.T, n int) *noise.Profile {
	t.Helper()
	p, err := noise.Uniform(n, 100, 80, 0.001, 0.01)
	assert.Nil(t, err)
	return p
}

func assertCoupled(t *testing.T, res *Result, g *noise.CouplingGraph) {
	t.Helper()
	for _, gate := range res.Circuit.Gates() {
		if !gate.IsTwoQubit() {
			continue
		}
		q := gate.Qubits
		assert.True(t, g.AreCoupled(q[0], q[1]),
			"gate %s acts on uncoupled pair", gate.String())
	}
}

func TestRouteBellPairNoSwaps(t *testing.T) {
	g, err := noise.NewLinearCoupling(2)
	assert.Nil(t, err)
	c := circuit.MustNew(2, []circuit.Gate{
		circuit.Hadamard(0), circuit.CNot(0, 1),
	}, map[int]int{0: 0, 1: 1})

	res, err := Route(c, uniformProfile(t, 2), g, DefaultConfig())
	assert.Nil(t, err)
	assert.Equal(t, 0, res.SwapCount)
	assert.Equal(t, 2, res.Circuit.GateCount())
	assert.Equal(t, []int{0, 1}, res.Mapping)
	assert.Equal(t, map[int]int{0: 0, 1: 1}, res.Circuit.Measurements())
}

func TestRouteNonAdjacentPairOneSwap(t *testing.T) {
	g, err := noise.NewLinearCoupling(3)
	assert.Nil(t, err)
	c := circuit.MustNew(3, []circuit.Gate{circuit.CNot(0, 2)}, nil)

	res, err := Route(c, uniformProfile(t, 3), g, DefaultConfig())
	assert.Nil(t, err)
	assert.Equal(t, 1, res.SwapCount)
	assert.Equal(t, 2, res.Circuit.GateCount())
	assertCoupled(t, res, g)
}

func TestRouteAdjacencyProperty(t *testing.T) {
	g, err := noise.NewGridCoupling(3, 3)
	assert.Nil(t, err)
	// Entangling chain crossing the lattice; each gate depends on the
	// previous through a shared qubit.
	c := circuit.MustNew(9, []circuit.Gate{
		circuit.Hadamard(0),
		circuit.CNot(0, 8),
		circuit.CPauliZ(8, 4),
		circuit.CNot(4, 2),
		circuit.CNot(2, 6),
	}, nil)

	res, err := Route(c, uniformProfile(t, 9), g, DefaultConfig())
	assert.Nil(t, err)
	assertCoupled(t, res, g)
	// Every original gate survives alongside the inserted SWAPs.
	assert.Equal(t, c.GateCount()+res.SwapCount, res.Circuit.GateCount())
}

func TestRouteDeterministic(t *testing.T) {
	g, err := noise.NewGridCoupling(2, 3)
	assert.Nil(t, err)
	c := circuit.MustNew(6, []circuit.Gate{
		circuit.CNot(0, 5), circuit.CNot(1, 4), circuit.CNot(2, 3),
	}, nil)
	p := uniformProfile(t, 6)

	first, err := Route(c, p, g, DefaultConfig())
	assert.Nil(t, err)
	for i := 0; i < 5; i++ {
		got, err := Route(c, p, g, DefaultConfig())
		assert.Nil(t, err)
		assert.True(t, first.Circuit.Equal(got.Circuit), "run %d diverged", i)
		assert.Equal(t, first.Mapping, got.Mapping)
	}
}

func TestRoutePrefersLowErrorPath(t *testing.T) {
	// Ring of 4: qubit pair (0,2) reachable via 1 or via 3. Edge errors
	// make the path through 3 clearly cheaper.
	g, err := noise.NewRingCoupling(4)
	assert.Nil(t, err)
	edges := map[[2]int]float64{
		{0, 1}: 0.2, {1, 2}: 0.2,
		{2, 3}: 0.001, {0, 3}: 0.001,
	}
	qs := make([]noise.QubitCalibration, 4)
	for i := range qs {
		qs[i] = noise.QubitCalibration{T1: 100, T2: 80, Eps1Q: 0.001}
	}
	p, err := noise.NewProfile(qs, 0.001, 0.01, edges, nil)
	assert.Nil(t, err)

	c := circuit.MustNew(4, []circuit.Gate{circuit.CNot(0, 2)}, nil)
	res, err := Route(c, p, g, DefaultConfig())
	assert.Nil(t, err)
	assert.Equal(t, 1, res.SwapCount)
	swap := res.Circuit.Gate(0)
	assert.Equal(t, circuit.SWAP, swap.Name)
	// The swap uses one of the low-error edges.
	a, b := swap.Qubits[0], swap.Qubits[1]
	assert.Contains(t, [][2]int{{0, 3}, {2, 3}}, [2]int{min(a, b), max(a, b)})
	assertCoupled(t, res, g)
}

func TestRouteDisconnectedComponents(t *testing.T) {
	g, err := noise.NewCouplingGraph(4, [][2]int{{0, 1}, {2, 3}})
	assert.Nil(t, err)
	c := circuit.MustNew(4, []circuit.Gate{circuit.CNot(0, 3)}, nil)

	_, err = Route(c, uniformProfile(t, 4), g, DefaultConfig())
	assert.ErrorIs(t, err, ErrNoRoutingSolution)
}

func TestRouteCircuitTooWide(t *testing.T) {
	g, err := noise.NewLinearCoupling(2)
	assert.Nil(t, err)
	c := circuit.MustNew(3, []circuit.Gate{circuit.Hadamard(2)}, nil)

	_, err = Route(c, uniformProfile(t, 2), g, DefaultConfig())
	assert.ErrorIs(t, err, ErrNoRoutingSolution)
}

func TestRouteRemapsMeasurements(t *testing.T) {
	g, err := noise.NewLinearCoupling(3)
	assert.Nil(t, err)
	c := circuit.MustNew(3, []circuit.Gate{circuit.CNot(0, 2)},
		map[int]int{0: 0, 2: 1})

	res, err := Route(c, uniformProfile(t, 3), g, DefaultConfig())
	assert.Nil(t, err)
	meas := res.Circuit.Measurements()
	assert.Len(t, meas, 2)
	// Classical targets are preserved even though qubits moved.
	bits := map[int]bool{}
	for _, b := range meas {
		bits[b] = true
	}
	assert.True(t, bits[0])
	assert.True(t, bits[1])
}
