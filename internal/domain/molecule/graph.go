package molecule

import (
	"fmt"
	"sort"

	"github.com/turtacn/ChemConformer/pkg/errors"
)

// bondToleranceFactor scales the sum of covalent radii when deciding whether
// two atoms are bonded during distance-based graph construction.
const bondToleranceFactor = 1.2

// Graph is the molecule's connectivity graph: nodes are atom ordinals, edges
// are bonds, and nodes may carry a partial-charge attribute written during
// solvated charge extraction.  It is owned exclusively by its Molecule and is
// not safe for concurrent mutation.
type Graph struct {
	n       int
	adj     map[int]map[int]struct{}
	charges map[int]float64
}

// NewGraph creates a graph with n isolated nodes.
func NewGraph(n int) *Graph {
	return &Graph{
		n:       n,
		adj:     make(map[int]map[int]struct{}, n),
		charges: make(map[int]float64),
	}
}

// MakeGraph derives a connectivity graph directly from a geometry: two atoms
// are bonded when their distance is within bondToleranceFactor times the sum
// of their covalent radii.  Used when no notation initializer supplies
// explicit bonds.
func MakeGraph(atoms []Atom) *Graph {
	g := NewGraph(len(atoms))
	for i := 0; i < len(atoms); i++ {
		for j := i + 1; j < len(atoms); j++ {
			cutoff := bondToleranceFactor * (CovalentRadius(atoms[i].Label) + CovalentRadius(atoms[j].Label))
			if atoms[i].DistanceTo(atoms[j]) <= cutoff {
				g.AddEdge(i, j)
			}
		}
	}
	return g
}

// NumNodes returns the node count.
func (g *Graph) NumNodes() int { return g.n }

// NumEdges returns the bond count.
func (g *Graph) NumEdges() int {
	total := 0
	for _, nbrs := range g.adj {
		total += len(nbrs)
	}
	return total / 2
}

// AddEdge records an undirected bond between atoms i and j.  Out-of-range or
// self edges are ignored.
func (g *Graph) AddEdge(i, j int) {
	if i == j || i < 0 || j < 0 || i >= g.n || j >= g.n {
		return
	}
	if g.adj[i] == nil {
		g.adj[i] = make(map[int]struct{})
	}
	if g.adj[j] == nil {
		g.adj[j] = make(map[int]struct{})
	}
	g.adj[i][j] = struct{}{}
	g.adj[j][i] = struct{}{}
}

// HasEdge reports whether atoms i and j are bonded.
func (g *Graph) HasEdge(i, j int) bool {
	_, ok := g.adj[i][j]
	return ok
}

// Neighbors returns the sorted bond partners of atom i.
func (g *Graph) Neighbors(i int) []int {
	nbrs := make([]int, 0, len(g.adj[i]))
	for j := range g.adj[i] {
		nbrs = append(nbrs, j)
	}
	sort.Ints(nbrs)
	return nbrs
}

// SetCharges writes per-atom partial charges onto the graph nodes, indexed
// by atom ordinal.  The charge slice length must equal the node count; a
// mismatch is fatal and never silently truncated or padded.
func (g *Graph) SetCharges(charges []float64) error {
	if len(charges) != g.n {
		return errors.New(errors.CodeChargeCountMismatch, "atomic charge count does not match atom count").
			WithDetail(fmt.Sprintf("charges=%d atoms=%d", len(charges), g.n))
	}
	for i, q := range charges {
		g.charges[i] = q
	}
	return nil
}

// Charge returns the partial charge stored on node i, and whether one has
// been set.
func (g *Graph) Charge(i int) (float64, bool) {
	q, ok := g.charges[i]
	return q, ok
}

// Clone returns a deep copy of the graph.
func (g *Graph) Clone() *Graph {
	out := NewGraph(g.n)
	for i, nbrs := range g.adj {
		for j := range nbrs {
			out.AddEdge(i, j)
		}
	}
	for i, q := range g.charges {
		out.charges[i] = q
	}
	return out
}
