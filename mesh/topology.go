// Package mesh computes the per-topology neighbor maps of spec.md §4.D. It
// owns no per-cycle state; the simulator driver owns delivery latency
// (spec.md §4.E) and each node enforces its own per-cycle receive
// bandwidth, mesh only answers "who is adjacent to node i".
package mesh

import (
	"math"
	"sort"

	"github.com/xDarkicex/satswarm/core"
)

// Kind is one of the three closed topology cases of spec.md §4.D.
type Kind int

const (
	Grid Kind = iota
	Torus
	Dense
)

func (k Kind) String() string {
	switch k {
	case Grid:
		return "grid"
	case Torus:
		return "torus"
	case Dense:
		return "dense"
	default:
		return "unknown"
	}
}

// ParseKind maps a CLI flag value to a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "grid":
		return Grid, nil
	case "torus":
		return Torus, nil
	case "dense":
		return Dense, nil
	default:
		return 0, core.NewSwarmError("mesh", "ParseKind", "unknown topology: "+s)
	}
}

// Topology answers adjacency queries over a fixed node count.
type Topology struct {
	kind  Kind
	n     int
	rows  int
	cols  int
	adj   [][]int // sorted ascending, precomputed once
}

// New builds a Topology for n nodes. Grid and Torus lay nodes out on a
// ⌊√n⌋ x ⌈n/⌊√n⌋⌉ grid (spec.md §4.D); Dense ignores the grid shape
// entirely.
func New(kind Kind, n int) (*Topology, error) {
	if n <= 0 {
		return nil, core.NewSwarmError("mesh", "New", "node count must be positive")
	}
	rows := int(math.Floor(math.Sqrt(float64(n))))
	if rows < 1 {
		rows = 1
	}
	cols := int(math.Ceil(float64(n) / float64(rows)))

	t := &Topology{kind: kind, n: n, rows: rows, cols: cols}
	t.adj = make([][]int, n)
	for id := 0; id < n; id++ {
		switch kind {
		case Grid:
			t.adj[id] = t.gridNeighbors(id, false)
		case Torus:
			t.adj[id] = t.gridNeighbors(id, true)
		case Dense:
			t.adj[id] = t.denseNeighbors(id)
		default:
			return nil, core.NewSwarmError("mesh", "New", "unknown topology kind")
		}
	}
	return t, nil
}

// NumNodes is the node count this topology was built for.
func (t *Topology) NumNodes() int { return t.n }

// Kind reports which topology case this is.
func (t *Topology) Kind() Kind { return t.kind }

// Neighbors returns the sorted-ascending neighbor ids of id.
func (t *Topology) Neighbors(id int) []int { return t.adj[id] }

func (t *Topology) gridNeighbors(id int, wrap bool) []int {
	r, c := id/t.cols, id%t.cols
	var out []int
	add := func(rr, cc int) {
		if wrap {
			rr = ((rr % t.rows) + t.rows) % t.rows
			cc = ((cc % t.cols) + t.cols) % t.cols
		} else if rr < 0 || rr >= t.rows || cc < 0 || cc >= t.cols {
			return
		}
		nid := rr*t.cols + cc
		if nid == id || nid >= t.n {
			return
		}
		out = append(out, nid)
	}
	add(r-1, c)
	add(r+1, c)
	add(r, c-1)
	add(r, c+1)
	sort.Ints(out)
	return dedup(out)
}

func (t *Topology) denseNeighbors(id int) []int {
	out := make([]int, 0, t.n-1)
	for i := 0; i < t.n; i++ {
		if i != id {
			out = append(out, i)
		}
	}
	return out
}

func dedup(in []int) []int {
	if len(in) < 2 {
		return in
	}
	out := in[:1]
	for _, v := range in[1:] {
		if v != out[len(out)-1] {
			out = append(out, v)
		}
	}
	return out
}
