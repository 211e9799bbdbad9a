//go:build unit
// +build unit

package reorder

import (
	"testing"

	"github.com/sadpig70/qns-go/circuit"
	"github.com/sadpig70/qns-go/noise"
	"github.com/sadpig70/qns-go/scoring"
	"github.com/stretchr/testify/assert"
)

func fidelityScore(t *testing.T) ScoreFunc {
	t.Helper()
	p, err := noise.Uniform(4, 100, 80, 0.001, 0.01)
	assert.Nil(t, err)
	return func(c *circuit.Circuit) float64 {
		return scoring.EstimateFidelity(c, p, scoring.DefaultConfig())
	}
}

// Serial diagonal chain that commutes into a shorter critical path:
// RZ(0) RZ(0) Z(1) can become Z(1)-first orderings where the two
// single-qubit timelines overlap.
func reorderableSeed(t *testing.T) *circuit.Circuit {
	t.Helper()
	return circuit.MustNew(3, []circuit.Gate{
		circuit.RotZ(0, 0.3),
		circuit.CPauliZ(0, 1),
		circuit.RotZ(1, 0.7),
		circuit.Hadamard(2),
	}, nil)
}

func TestSearchNeverWorseThanSeed(t *testing.T) {
	score := fidelityScore(t)
	seed := reorderableSeed(t)

	got, err := NewGenerator(DefaultConfig()).Search(seed, score)
	assert.Nil(t, err)
	assert.GreaterOrEqual(t, got.Score, score(seed))
	assert.Equal(t, seed.GateCount(), got.Circuit.GateCount())
}

func TestSearchDeterministic(t *testing.T) {
	score := fidelityScore(t)
	seed := reorderableSeed(t)
	cfg := DefaultConfig()
	cfg.Workers = 4

	first, err := NewGenerator(cfg).Search(seed, score)
	assert.Nil(t, err)
	for i := 0; i < 5; i++ {
		got, err := NewGenerator(cfg).Search(seed, score)
		assert.Nil(t, err)
		assert.True(t, first.Circuit.Equal(got.Circuit), "run %d diverged", i)
		assert.Equal(t, first.Score, got.Score)
		assert.Equal(t, first.Swaps, got.Swaps)
	}
}

func TestSearchIdempotentOnOptimum(t *testing.T) {
	score := fidelityScore(t)
	gen := NewGenerator(DefaultConfig())

	first, err := gen.Search(reorderableSeed(t), score)
	assert.Nil(t, err)
	second, err := gen.Search(first.Circuit, score)
	assert.Nil(t, err)
	assert.Equal(t, first.Score, second.Score)
}

func TestSearchNoCommutingPairs(t *testing.T) {
	// H X H X on one qubit admits no transposition at all.
	seed := circuit.MustNew(1, []circuit.Gate{
		circuit.Hadamard(0), circuit.PauliX(0), circuit.Hadamard(0), circuit.PauliX(0),
	}, nil)
	score := fidelityScore(t)

	got, err := NewGenerator(DefaultConfig()).Search(seed, score)
	assert.Nil(t, err)
	assert.True(t, seed.Equal(got.Circuit))
	assert.Empty(t, got.Swaps)
}

func TestSearchReplayMatchesVariant(t *testing.T) {
	score := fidelityScore(t)
	seed := reorderableSeed(t)

	got, err := NewGenerator(DefaultConfig()).Search(seed, score)
	assert.Nil(t, err)

	replayed, err := Replay(seed, got.Swaps)
	assert.Nil(t, err)
	assert.True(t, got.Circuit.Equal(replayed))
}

func TestSearchRespectsBeamWidth(t *testing.T) {
	score := fidelityScore(t)
	cfg := DefaultConfig()
	cfg.BeamWidth = 1
	cfg.MaxRounds = 3

	got, err := NewGenerator(cfg).Search(reorderableSeed(t), score)
	assert.Nil(t, err)
	assert.GreaterOrEqual(t, got.Score, score(reorderableSeed(t)))
}

func TestReplayRejectsIllegalLog(t *testing.T) {
	seed := circuit.MustNew(1, []circuit.Gate{
		circuit.Hadamard(0), circuit.PauliX(0),
	}, nil)

	_, err := Replay(seed, []int{0})
	assert.Error(t, err)

	_, err = Replay(seed, []int{5})
	assert.Error(t, err)
}
