// Package embed provides the built-in deterministic embedding collaborator:
// a connectivity-driven coordinate builder that grows each candidate geometry
// along the bond graph with per-attempt jitter, then prunes near-duplicate
// candidates with a coarse RMSD pre-filter.  It serves metal-free structures
// whose graph is trusted; metal-containing molecules take the annealing path.
package embed

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/turtacn/ChemConformer/internal/domain/conformer"
	"github.com/turtacn/ChemConformer/internal/domain/molecule"
	"github.com/turtacn/ChemConformer/internal/infrastructure/monitoring/logging"
)

// Config carries the embedding tunables.  Zero values select the defaults.
type Config struct {
	// Jitter is the amplitude of the per-attempt angular perturbation applied
	// to each placement direction, in radians.
	Jitter float64

	// ComponentSpacing separates disconnected fragments along x, in angstroms.
	ComponentSpacing float64
}

const (
	defaultJitter           = 0.6
	defaultComponentSpacing = 5.0
)

// Embedder implements molecule.Embedder.  Attempts are seeded by their index,
// so a given request always yields the same candidate sequence.
type Embedder struct {
	cfg Config
	log logging.Logger
}

// New constructs an Embedder with defaults applied.
func New(cfg Config, log logging.Logger) *Embedder {
	if cfg.Jitter <= 0 {
		cfg.Jitter = defaultJitter
	}
	if cfg.ComponentSpacing <= 0 {
		cfg.ComponentSpacing = defaultComponentSpacing
	}
	return &Embedder{cfg: cfg, log: log.Named("embed")}
}

// Embed builds up to req.Attempts candidate geometries and returns the ones
// surviving the coarse pre-filter, in attempt order.  The request must carry
// a geometry and a connectivity graph.
func (e *Embedder) Embed(ctx context.Context, req molecule.EmbedRequest) ([][]molecule.Atom, error) {
	if len(req.Atoms) == 0 {
		return nil, fmt.Errorf("embed: request carries no atoms")
	}
	graph := req.Graph
	if graph == nil {
		graph = molecule.MakeGraph(req.Atoms)
	}
	attempts := req.Attempts
	if attempts < 1 {
		attempts = 1
	}

	kept := make([][]molecule.Atom, 0, attempts)
	for i := 0; i < attempts; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cand := e.place(req.Atoms, graph, int64(i))
		if !conformer.IsUnique(cand, kept, req.PruneThreshold) {
			continue
		}
		kept = append(kept, cand)
	}

	e.log.Debug("embedding finished",
		logging.String("notation", req.Notation),
		logging.Int("attempts", attempts),
		logging.Int("kept", len(kept)))
	return kept, nil
}

// place grows one candidate geometry over the bond graph: a breadth-first
// walk that positions each newly reached atom one bond length from its
// parent, in a jittered direction pointing away from the already placed
// neighbourhood.  Disconnected fragments are offset along x.
func (e *Embedder) place(atoms []molecule.Atom, graph *molecule.Graph, seed int64) []molecule.Atom {
	rng := rand.New(rand.NewSource(seed*2654435761 + 1))
	n := len(atoms)
	out := make([]molecule.Atom, n)
	for i := range out {
		out[i] = molecule.Atom{Label: atoms[i].Label}
	}
	placed := make([]bool, n)

	componentOffset := 0.0
	for root := 0; root < n; root++ {
		if placed[root] {
			continue
		}
		out[root].X = componentOffset
		placed[root] = true
		componentOffset += e.cfg.ComponentSpacing

		queue := []int{root}
		for len(queue) > 0 {
			parent := queue[0]
			queue = queue[1:]
			for _, child := range graph.Neighbors(parent) {
				if child >= n || placed[child] {
					continue
				}
				r0 := molecule.CovalentRadius(out[parent].Label) + molecule.CovalentRadius(out[child].Label)
				dx, dy, dz := e.direction(out, placed, parent, rng)
				out[child].X = out[parent].X + r0*dx
				out[child].Y = out[parent].Y + r0*dy
				out[child].Z = out[parent].Z + r0*dz
				placed[child] = true
				queue = append(queue, child)
			}
		}
	}
	return out
}

// direction picks a unit vector for the next placement: away from the
// centroid of what is already placed around the parent, perturbed by the
// configured jitter.
func (e *Embedder) direction(out []molecule.Atom, placed []bool, parent int, rng *rand.Rand) (float64, float64, float64) {
	// Repel from the local placed centroid so chains extend instead of
	// folding onto themselves.
	var cx, cy, cz float64
	count := 0
	for i, ok := range placed {
		if !ok || i == parent {
			continue
		}
		cx += out[i].X
		cy += out[i].Y
		cz += out[i].Z
		count++
	}

	var dx, dy, dz float64
	if count > 0 {
		cx /= float64(count)
		cy /= float64(count)
		cz /= float64(count)
		dx = out[parent].X - cx
		dy = out[parent].Y - cy
		dz = out[parent].Z - cz
	}
	norm := math.Sqrt(dx*dx + dy*dy + dz*dz)
	if norm < 1e-9 {
		dx, dy, dz = 1, 0, 0
		norm = 1
	}
	dx, dy, dz = dx/norm, dy/norm, dz/norm

	// Jitter differentiates attempts and breaks collinearity.
	dx += e.cfg.Jitter * (2*rng.Float64() - 1)
	dy += e.cfg.Jitter * (2*rng.Float64() - 1)
	dz += e.cfg.Jitter * (2*rng.Float64() - 1)
	norm = math.Sqrt(dx*dx + dy*dy + dz*dz)
	if norm < 1e-9 {
		return 1, 0, 0
	}
	return dx / norm, dy / norm, dz / norm
}
