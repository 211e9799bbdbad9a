// Package router maps logical qubits onto physical qubits and inserts
// SWAP operations so every multi-qubit gate acts on coupled hardware
// pairs. The heuristic extends SABRE with gate-error and crosstalk terms:
//
//	H(swap) = W_dist*D + W_err*E + W_xtalk*X
//
// D sums post-swap shortest-path distances for front-layer gate pairs,
// E sums error penalties for the edges the swap and the front layer would
// use, and X sums crosstalk-matrix interactions between concurrently
// active physical pairs. Ties break toward the lowest physical-qubit
// pair, so routing is deterministic.
package router

import (
	"errors"
	"fmt"
	"sort"

	ferrors "github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/sadpig70/qns-go/circuit"
	"github.com/sadpig70/qns-go/noise"
)

// ErrNoRoutingSolution is returned when the coupling graph cannot
// satisfy a required gate's connectivity. Structural mismatch between
// circuit and hardware; not retried automatically.
var ErrNoRoutingSolution = errors.New("no routing solution")

type Config struct {
	DistWeight  float64 `toml:"dist_weight"`
	ErrWeight   float64 `toml:"err_weight"`
	XtalkWeight float64 `toml:"xtalk_weight"`
}

func DefaultConfig() Config {
	return Config{DistWeight: 1.0, ErrWeight: 0.5, XtalkWeight: 0.3}
}

// Result is a routed circuit over physical qubits plus the final
// logical-to-physical mapping and the number of SWAPs inserted.
type Result struct {
	Circuit   *circuit.Circuit
	Mapping   []int
	SwapCount int
}

// Route schedules every gate of c onto the coupling graph, inserting
// SWAPs chosen by the extended SABRE heuristic. The input circuit is
// never mutated.
func Route(c *circuit.Circuit, p *noise.Profile, g *noise.CouplingGraph, cfg Config) (*Result, error) {
	numPhys := g.NumQubits()
	if c.QubitCount() > numPhys {
		return nil, fmt.Errorf("%w: circuit needs %d qubits but hardware has %d",
			ErrNoRoutingSolution, c.QubitCount(), numPhys)
	}

	gates := c.Gates()
	deps := buildDependencies(gates, numPhys)

	// Trivial initial placement: logical i starts on physical i.
	mapping := make([]int, numPhys)
	for i := range mapping {
		mapping[i] = i
	}

	var (
		routed    []circuit.Gate
		executed  = make([]bool, len(gates))
		done      int
		swapCount int
	)
	front := deps.initialFront()
	maxSteps := (len(gates) + 1) * numPhys * numPhys

	for step := 0; done < len(gates); step++ {
		if step > maxSteps {
			return nil, ferrors.Wrap(ErrNoRoutingSolution, "router failed to converge")
		}

		var placeable []int
		for _, idx := range front {
			if satisfiable(gates[idx], mapping, g) {
				placeable = append(placeable, idx)
			}
		}
		if len(placeable) > 0 {
			sort.Ints(placeable)
			for _, idx := range placeable {
				routed = append(routed, remapGate(gates[idx], mapping))
				executed[idx] = true
				done++
				for _, child := range deps.successors[idx] {
					deps.indegree[child]--
					if deps.indegree[child] == 0 {
						front = append(front, child)
					}
				}
			}
			front = pruneFront(front, executed)
			continue
		}

		// Nothing satisfiable: verify the front layer is routable at all,
		// then pick the SWAP minimizing H.
		for _, idx := range front {
			for _, pair := range gatePairs(gates[idx]) {
				if _, ok := g.Distance(mapping[pair[0]], mapping[pair[1]]); !ok {
					return nil, fmt.Errorf("%w: qubits %d and %d are in disconnected components",
						ErrNoRoutingSolution, pair[0], pair[1])
				}
			}
		}
		p1, p2, ok := bestSwap(front, gates, mapping, p, g, cfg)
		if !ok {
			return nil, ferrors.Wrap(ErrNoRoutingSolution, "no candidate swap improves the front layer")
		}
		l1, l2 := logicalAt(mapping, p1), logicalAt(mapping, p2)
		mapping[l1], mapping[l2] = mapping[l2], mapping[l1]
		routed = append(routed, circuit.Swap(p1, p2))
		swapCount++
	}

	measured := make(map[int]int)
	for q, b := range c.Measurements() {
		measured[mapping[q]] = b
	}
	out, err := circuit.New(numPhys, routed, measured)
	if err != nil {
		return nil, ferrors.Wrap(err, "routed circuit construction")
	}
	zap.L().Debug(fmt.Sprintf("routed %d gates with %d swaps", c.GateCount(), swapCount))
	return &Result{Circuit: out, Mapping: mapping, SwapCount: swapCount}, nil
}

// dependencies is the qubit-conflict DAG over gate indices.
type dependencies struct {
	successors [][]int
	indegree   []int
}

func buildDependencies(gates []circuit.Gate, numQubits int) *dependencies {
	d := &dependencies{
		successors: make([][]int, len(gates)),
		indegree:   make([]int, len(gates)),
	}
	last := make([]int, numQubits)
	for i := range last {
		last[i] = -1
	}
	for i, g := range gates {
		seen := make(map[int]struct{})
		for _, q := range g.Qubits {
			if prev := last[q]; prev >= 0 {
				if _, dup := seen[prev]; !dup {
					d.successors[prev] = append(d.successors[prev], i)
					d.indegree[i]++
					seen[prev] = struct{}{}
				}
			}
			last[q] = i
		}
	}
	return d
}

func (d *dependencies) initialFront() []int {
	var front []int
	for i, deg := range d.indegree {
		if deg == 0 {
			front = append(front, i)
		}
	}
	return front
}

func pruneFront(front []int, executed []bool) []int {
	out := front[:0]
	for _, idx := range front {
		if !executed[idx] {
			out = append(out, idx)
		}
	}
	return out
}

// gatePairs returns the physical-adjacency requirements of a gate: no
// pairs for 1-qubit gates, one pair for 2-qubit gates, all pairs for
// controlled 3-qubit forms.
func gatePairs(g circuit.Gate) [][2]int {
	qs := g.Qubits
	if len(qs) < 2 {
		return nil
	}
	var pairs [][2]int
	for i := 0; i < len(qs); i++ {
		for j := i + 1; j < len(qs); j++ {
			pairs = append(pairs, [2]int{qs[i], qs[j]})
		}
	}
	return pairs
}

func satisfiable(g circuit.Gate, mapping []int, graph *noise.CouplingGraph) bool {
	for _, pair := range gatePairs(g) {
		if !graph.AreCoupled(mapping[pair[0]], mapping[pair[1]]) {
			return false
		}
	}
	return true
}

func remapGate(g circuit.Gate, mapping []int) circuit.Gate {
	qs := make([]int, len(g.Qubits))
	for i, q := range g.Qubits {
		qs[i] = mapping[q]
	}
	return circuit.Gate{Name: g.Name, Qubits: qs, Params: g.Params}
}

func logicalAt(mapping []int, phys int) int {
	for l, p := range mapping {
		if p == phys {
			return l
		}
	}
	return -1
}

// bestSwap evaluates every coupling edge as a candidate SWAP and returns
// the one minimizing H. Edges are visited in canonical sorted order and
// compared with strict less-than, so the lowest pair wins ties.
func bestSwap(front []int, gates []circuit.Gate, mapping []int, p *noise.Profile, graph *noise.CouplingGraph, cfg Config) (int, int, bool) {
	bestScore := 0.0
	bestP1, bestP2 := -1, -1
	found := false
	for _, edge := range graph.Edges() {
		p1, p2 := edge[0], edge[1]
		trial := append([]int(nil), mapping...)
		l1, l2 := logicalAt(trial, p1), logicalAt(trial, p2)
		if l1 < 0 || l2 < 0 {
			continue
		}
		trial[l1], trial[l2] = trial[l2], trial[l1]
		score := heuristic(front, gates, trial, p, graph, cfg, edge)
		if !found || score < bestScore {
			bestScore = score
			bestP1, bestP2 = p1, p2
			found = true
		}
	}
	return bestP1, bestP2, found
}

// heuristic computes H for a hypothetical post-swap mapping.
func heuristic(front []int, gates []circuit.Gate, mapping []int, p *noise.Profile, graph *noise.CouplingGraph, cfg Config, swapEdge [2]int) float64 {
	var dist, errSum, xtalk float64

	// The swap itself burns a two-qubit gate three times over its edge.
	errSum += 3 * p.EdgeEps2Q(swapEdge[0], swapEdge[1])

	active := [][2]int{swapEdge}
	for _, idx := range front {
		for _, pair := range gatePairs(gates[idx]) {
			pa, pb := mapping[pair[0]], mapping[pair[1]]
			d, ok := graph.Distance(pa, pb)
			if !ok {
				return 1e18
			}
			dist += float64(d)
			if d == 1 {
				errSum += p.EdgeEps2Q(pa, pb)
				active = append(active, [2]int{pa, pb})
			}
		}
	}

	// Pairwise crosstalk between concurrently active physical edges.
	for i := 0; i < len(active); i++ {
		for j := i + 1; j < len(active); j++ {
			a, b := active[i], active[j]
			xtalk += p.Crosstalk(a[0], b[0]) + p.Crosstalk(a[0], b[1]) +
				p.Crosstalk(a[1], b[0]) + p.Crosstalk(a[1], b[1])
		}
	}

	return cfg.DistWeight*dist + cfg.ErrWeight*errSum + cfg.XtalkWeight*xtalk
}
