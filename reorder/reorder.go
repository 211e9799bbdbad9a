// Package reorder searches the space of gate orderings reachable by
// commuting adjacent transpositions for a variant with higher estimated
// fidelity. The search is a bounded beam: candidates are generated
// deterministically, scored in parallel, and the top-k survive each
// round. Every variant carries its transposition log so callers can
// replay and verify unitary equivalence with the seed.
package reorder

import (
	"errors"
	"fmt"
	"runtime"
	"sort"
	"sync"

	conq "github.com/enriquebris/goconcurrentqueue"
	"go.uber.org/zap"

	"github.com/sadpig70/qns-go/circuit"
)

// ErrSearchExhausted signals that the beam emptied, which violates the
// search invariant (the seed is always carried forward). Fatal: it
// indicates a bug in the commutation logic, not bad input.
var ErrSearchExhausted = errors.New("search exhausted")

type Config struct {
	// BeamWidth is the number of variants retained per round.
	BeamWidth int `toml:"beam_width"`
	// MaxRounds bounds the search depth.
	MaxRounds int `toml:"max_rounds"`
	// StagnationEps is the minimum score improvement that counts as
	// progress.
	StagnationEps float64 `toml:"stagnation_eps"`
	// Patience is the number of consecutive stagnant rounds tolerated
	// before stopping early.
	Patience int `toml:"patience"`
	// Workers bounds the scoring fan-out. Zero means GOMAXPROCS.
	Workers int `toml:"workers"`
}

func DefaultConfig() Config {
	return Config{
		BeamWidth:     50,
		MaxRounds:     20,
		StagnationEps: 1e-12,
		Patience:      3,
		Workers:       0,
	}
}

// ScoreFunc rates a candidate circuit; higher is better.
type ScoreFunc func(*circuit.Circuit) float64

// Variant is a candidate circuit tagged with its score and the
// transposition log that produced it from the seed.
type Variant struct {
	Circuit *circuit.Circuit
	Score   float64
	// Swaps lists the adjacent positions exchanged, in order, from the
	// seed circuit to this variant.
	Swaps []int

	gateCount int
	seq       int
}

type Generator struct {
	cfg Config
}

func NewGenerator(cfg Config) *Generator {
	if cfg.BeamWidth <= 0 {
		cfg.BeamWidth = DefaultConfig().BeamWidth
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	return &Generator{cfg: cfg}
}

// Search runs the beam search and returns the best-scoring variant
// encountered across all rounds. The result is unitarily equivalent to
// the seed by construction: only verified-commuting adjacent pairs are
// ever transposed.
func (g *Generator) Search(seed *circuit.Circuit, score ScoreFunc) (*Variant, error) {
	seq := 0
	root := &Variant{
		Circuit:   seed,
		Score:     score(seed),
		gateCount: seed.GateCount(),
		seq:       seq,
	}
	seq++

	visited := map[uint64]struct{}{seed.Fingerprint(): {}}
	beam := []*Variant{root}
	best := root
	stale := 0

	for round := 0; round < g.cfg.MaxRounds; round++ {
		candidates, nextSeq, err := g.expand(beam, visited, seq)
		if err != nil {
			return nil, err
		}
		seq = nextSeq
		if len(candidates) == 0 {
			// Search space exhausted; the current beam is final.
			break
		}
		g.scoreAll(candidates, score)

		pool := append(append([]*Variant(nil), beam...), candidates...)
		sort.Slice(pool, func(i, j int) bool {
			if pool[i].Score != pool[j].Score {
				return pool[i].Score > pool[j].Score
			}
			if pool[i].gateCount != pool[j].gateCount {
				return pool[i].gateCount < pool[j].gateCount
			}
			return pool[i].seq < pool[j].seq
		})
		if len(pool) > g.cfg.BeamWidth {
			pool = pool[:g.cfg.BeamWidth]
		}
		if len(pool) == 0 {
			return nil, fmt.Errorf("%w: beam emptied at round %d", ErrSearchExhausted, round)
		}
		beam = pool

		if beam[0].Score > best.Score+g.cfg.StagnationEps {
			best = beam[0]
			stale = 0
		} else {
			stale++
			if stale >= g.cfg.Patience {
				zap.L().Debug(fmt.Sprintf("beam search stagnated after round %d (best=%.6g)", round, best.Score))
				break
			}
		}
	}
	return best, nil
}

// expand enumerates every legal adjacent transposition of every beam
// member, deduplicated by circuit fingerprint. Generation is sequential
// so candidate sequence numbers (the final tie-break) are deterministic.
func (g *Generator) expand(beam []*Variant, visited map[uint64]struct{}, seq int) ([]*Variant, int, error) {
	var out []*Variant
	for _, member := range beam {
		gates := member.Circuit.Gates()
		for i := 0; i+1 < len(gates); i++ {
			if !circuit.Commutes(gates[i], gates[i+1]) {
				continue
			}
			swapped := append([]circuit.Gate(nil), gates...)
			swapped[i], swapped[i+1] = swapped[i+1], swapped[i]
			cand, err := member.Circuit.WithGates(swapped)
			if err != nil {
				// Transposing valid gates cannot invalidate the circuit.
				return nil, seq, fmt.Errorf("%w: %s", ErrSearchExhausted, err)
			}
			fp := cand.Fingerprint()
			if _, dup := visited[fp]; dup {
				continue
			}
			visited[fp] = struct{}{}
			swaps := make([]int, 0, len(member.Swaps)+1)
			swaps = append(swaps, member.Swaps...)
			swaps = append(swaps, i)
			out = append(out, &Variant{
				Circuit:   cand,
				Swaps:     swaps,
				gateCount: cand.GateCount(),
				seq:       seq,
			})
			seq++
		}
	}
	return out, seq, nil
}

// scoreAll fans candidate scoring out over a worker pool. The work queue
// is a thread-safe FIFO; each worker drains it until empty. Scores land
// on the variants themselves, so ordering within the round is free.
func (g *Generator) scoreAll(candidates []*Variant, score ScoreFunc) {
	workers := g.cfg.Workers
	if workers > len(candidates) {
		workers = len(candidates)
	}
	if workers <= 1 {
		for _, v := range candidates {
			v.Score = score(v.Circuit)
		}
		return
	}
	fifo := conq.NewFIFO()
	for _, v := range candidates {
		// FIFO enqueue only fails when the queue is locked, which
		// never happens here.
		_ = fifo.Enqueue(v)
	}
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for {
				item, err := fifo.Dequeue()
				if err != nil {
					return
				}
				v := item.(*Variant)
				v.Score = score(v.Circuit)
			}
		}()
	}
	wg.Wait()
}

// Replay applies a transposition log to a seed circuit, re-verifying the
// commutation decision at every step. Used to check the unitary
// equivalence guarantee of Search results.
func Replay(seed *circuit.Circuit, swaps []int) (*circuit.Circuit, error) {
	gates := seed.Gates()
	for step, i := range swaps {
		if i < 0 || i+1 >= len(gates) {
			return nil, fmt.Errorf("replay step %d: position %d out of range", step, i)
		}
		if !circuit.Commutes(gates[i], gates[i+1]) {
			return nil, fmt.Errorf("replay step %d: gates at %d and %d do not commute", step, i, i+1)
		}
		gates[i], gates[i+1] = gates[i+1], gates[i]
	}
	return seed.WithGates(gates)
}
