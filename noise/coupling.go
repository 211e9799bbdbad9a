package noise

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
)

// CouplingGraph is an undirected graph over physical qubits describing
// which pairs may host a two-qubit gate. Immutable after construction;
// all-pairs shortest-path hop counts are precomputed for router lookups.
type CouplingGraph struct {
	g     *simple.UndirectedGraph
	n     int
	edges [][2]int
	paths path.AllShortest
}

// NewCouplingGraph builds a coupling graph from an explicit edge list.
func NewCouplingGraph(numQubits int, edges [][2]int) (*CouplingGraph, error) {
	if numQubits <= 0 {
		return nil, fmt.Errorf("coupling graph needs at least one qubit, got %d", numQubits)
	}
	g := simple.NewUndirectedGraph()
	for i := 0; i < numQubits; i++ {
		g.AddNode(simple.Node(i))
	}
	seen := make(map[[2]int]struct{}, len(edges))
	canon := make([][2]int, 0, len(edges))
	for _, e := range edges {
		a, b := e[0], e[1]
		if a < 0 || a >= numQubits || b < 0 || b >= numQubits {
			return nil, fmt.Errorf("edge (%d,%d) outside [0,%d)", a, b, numQubits)
		}
		if a == b {
			return nil, fmt.Errorf("self-coupling of qubit %d", a)
		}
		if a > b {
			a, b = b, a
		}
		if _, dup := seen[[2]int{a, b}]; dup {
			continue
		}
		seen[[2]int{a, b}] = struct{}{}
		canon = append(canon, [2]int{a, b})
		g.SetEdge(simple.Edge{F: simple.Node(a), T: simple.Node(b)})
	}
	sort.Slice(canon, func(i, j int) bool {
		if canon[i][0] != canon[j][0] {
			return canon[i][0] < canon[j][0]
		}
		return canon[i][1] < canon[j][1]
	})
	return &CouplingGraph{
		g:     g,
		n:     numQubits,
		edges: canon,
		paths: path.DijkstraAllPaths(g),
	}, nil
}

// NewLinearCoupling builds the chain 0-1-2-...-(n-1).
func NewLinearCoupling(n int) (*CouplingGraph, error) {
	edges := make([][2]int, 0, n-1)
	for i := 0; i+1 < n; i++ {
		edges = append(edges, [2]int{i, i + 1})
	}
	return NewCouplingGraph(n, edges)
}

// NewRingCoupling builds a cycle over n qubits.
func NewRingCoupling(n int) (*CouplingGraph, error) {
	if n < 3 {
		return NewLinearCoupling(n)
	}
	edges := make([][2]int, 0, n)
	for i := 0; i < n; i++ {
		edges = append(edges, [2]int{i, (i + 1) % n})
	}
	return NewCouplingGraph(n, edges)
}

// NewGridCoupling builds a rows x cols rectangular lattice.
func NewGridCoupling(rows, cols int) (*CouplingGraph, error) {
	n := rows * cols
	var edges [][2]int
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			q := r*cols + c
			if c+1 < cols {
				edges = append(edges, [2]int{q, q + 1})
			}
			if r+1 < rows {
				edges = append(edges, [2]int{q, q + cols})
			}
		}
	}
	return NewCouplingGraph(n, edges)
}

// NewAllToAllCoupling builds a complete graph over n qubits.
func NewAllToAllCoupling(n int) (*CouplingGraph, error) {
	var edges [][2]int
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			edges = append(edges, [2]int{i, j})
		}
	}
	return NewCouplingGraph(n, edges)
}

func (c *CouplingGraph) NumQubits() int { return c.n }

// Edges returns the canonical sorted edge list (a < b in each pair).
func (c *CouplingGraph) Edges() [][2]int {
	return append([][2]int(nil), c.edges...)
}

func (c *CouplingGraph) AreCoupled(a, b int) bool {
	if a == b || a < 0 || b < 0 || a >= c.n || b >= c.n {
		return false
	}
	return c.g.HasEdgeBetween(int64(a), int64(b))
}

// Distance returns the shortest-path hop count between two physical
// qubits, with ok=false when they are disconnected.
func (c *CouplingGraph) Distance(a, b int) (int, bool) {
	if a == b {
		return 0, true
	}
	w := c.paths.Weight(int64(a), int64(b))
	if math.IsInf(w, 1) {
		return 0, false
	}
	return int(w), true
}

// Neighbors returns the sorted adjacency of a physical qubit.
func (c *CouplingGraph) Neighbors(q int) []int {
	var out []int
	it := c.g.From(int64(q))
	for it.Next() {
		out = append(out, int(it.Node().ID()))
	}
	sort.Ints(out)
	return out
}

// Connected reports whether all physical qubits are mutually reachable.
func (c *CouplingGraph) Connected() bool {
	for i := 1; i < c.n; i++ {
		if _, ok := c.Distance(0, i); !ok {
			return false
		}
	}
	return true
}
