// Package simanl provides the built-in simulated-annealing geometry
// collaborator.  It anneals a molecule's Cartesian coordinates against a
// cheap pairwise potential derived from the connectivity graph: harmonic
// restraints on bonded pairs and a short-range repulsion on non-bonded ones.
// It is a low-cost stand-in for a force-field backend, good enough to scatter
// a geometry into distinct basins for the downstream uniqueness filter.
package simanl

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/turtacn/ChemConformer/internal/domain/molecule"
	"github.com/turtacn/ChemConformer/internal/infrastructure/monitoring/logging"
)

// Config carries the annealing schedule parameters.  Zero values select the
// defaults.
type Config struct {
	// Steps is the number of Metropolis moves per run.
	Steps int

	// InitialTemp is the starting Metropolis temperature, in the energy units
	// of the internal potential.
	InitialTemp float64

	// Cooling is the geometric cooling factor applied each step, in (0, 1).
	Cooling float64

	// MaxStep is the largest single-atom displacement per move, in angstroms.
	MaxStep float64

	// KickAmplitude is the per-coordinate amplitude of the initial random
	// displacement that differentiates runs, in angstroms.
	KickAmplitude float64
}

const (
	defaultSteps         = 500
	defaultInitialTemp   = 0.25
	defaultCooling       = 0.995
	defaultMaxStep       = 0.30
	defaultKickAmplitude = 1.0

	// seedStride separates ordinal-derived seeds so neighbouring ordinals do
	// not walk correlated random streams.
	seedStride = 0x9e3779b9
)

func (c *Config) applyDefaults() {
	if c.Steps <= 0 {
		c.Steps = defaultSteps
	}
	if c.InitialTemp <= 0 {
		c.InitialTemp = defaultInitialTemp
	}
	if c.Cooling <= 0 || c.Cooling >= 1 {
		c.Cooling = defaultCooling
	}
	if c.MaxStep <= 0 {
		c.MaxStep = defaultMaxStep
	}
	if c.KickAmplitude <= 0 {
		c.KickAmplitude = defaultKickAmplitude
	}
}

// Annealer implements molecule.Annealer.  It is stateless between calls and
// safe for concurrent use; every run owns its geometry copy and its own
// random source.
type Annealer struct {
	cfg Config
	log logging.Logger
}

// New constructs an Annealer with defaults applied.
func New(cfg Config, log logging.Logger) *Annealer {
	cfg.applyDefaults()
	return &Annealer{cfg: cfg, log: log.Named("simanl")}
}

// Anneal produces one candidate geometry for sp.  When seed is nil the seed
// derives from the ordinal, making every run in a batch reproducible and
// mutually independent.
func (a *Annealer) Anneal(ctx context.Context, sp molecule.Species, graph *molecule.Graph, seed *int64, ordinal int) ([]molecule.Atom, error) {
	atoms := sp.Atoms()
	if len(atoms) == 0 {
		return nil, fmt.Errorf("simanl: species %q has no atoms", sp.Name())
	}
	if graph == nil {
		graph = molecule.MakeGraph(atoms)
	}

	s := int64(ordinal)*seedStride + 1
	if seed != nil {
		s = *seed
	}
	rng := rand.New(rand.NewSource(s))

	// An initial kick pushes each run into its own region of the landscape;
	// the anneal then relaxes it toward a nearby minimum.
	for i := range atoms {
		atoms[i].X += a.cfg.KickAmplitude * (2*rng.Float64() - 1)
		atoms[i].Y += a.cfg.KickAmplitude * (2*rng.Float64() - 1)
		atoms[i].Z += a.cfg.KickAmplitude * (2*rng.Float64() - 1)
	}

	pot := newPotential(atoms, graph)
	energy := pot.energy(atoms)
	temp := a.cfg.InitialTemp

	for step := 0; step < a.cfg.Steps; step++ {
		if step%64 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		i := rng.Intn(len(atoms))
		trial := atoms[i].Translated(
			a.cfg.MaxStep*(2*rng.Float64()-1),
			a.cfg.MaxStep*(2*rng.Float64()-1),
			a.cfg.MaxStep*(2*rng.Float64()-1),
		)

		dE := pot.moveDelta(atoms, i, trial)
		if dE <= 0 || rng.Float64() < math.Exp(-dE/temp) {
			atoms[i] = trial
			energy += dE
		}
		temp *= a.cfg.Cooling
	}

	a.log.Debug("annealing run finished",
		logging.String("species", sp.Name()),
		logging.Int("ordinal", ordinal),
		logging.Float64("potential", energy))
	return atoms, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Internal pair potential
// ─────────────────────────────────────────────────────────────────────────────

const (
	bondForceConst  = 4.0 // harmonic constant for bonded pairs
	repulsionConst  = 1.0 // prefactor of the non-bonded r^-4 repulsion
	repulsionCutoff = 4.0 // angstroms beyond which non-bonded pairs are ignored
	minSeparation   = 0.05
)

// potential is a frozen view of the pair terms: equilibrium bond lengths come
// from covalent radii, membership from the connectivity graph.
type potential struct {
	bonded map[[2]int]float64 // pair -> equilibrium length
	n      int
}

func newPotential(atoms []molecule.Atom, graph *molecule.Graph) *potential {
	p := &potential{bonded: make(map[[2]int]float64), n: len(atoms)}
	for i := 0; i < len(atoms); i++ {
		for _, j := range graph.Neighbors(i) {
			if j <= i || j >= len(atoms) {
				continue
			}
			r0 := molecule.CovalentRadius(atoms[i].Label) + molecule.CovalentRadius(atoms[j].Label)
			p.bonded[[2]int{i, j}] = r0
		}
	}
	return p
}

// pairEnergy evaluates the term between atoms i < j.
func (p *potential) pairEnergy(ai, aj molecule.Atom, i, j int) float64 {
	r := ai.DistanceTo(aj)
	if r < minSeparation {
		r = minSeparation
	}
	if r0, ok := p.bonded[[2]int{i, j}]; ok {
		d := r - r0
		return bondForceConst * d * d
	}
	if r > repulsionCutoff {
		return 0
	}
	return repulsionConst / (r * r * r * r)
}

// energy evaluates the full potential.
func (p *potential) energy(atoms []molecule.Atom) float64 {
	total := 0.0
	for i := 0; i < p.n; i++ {
		for j := i + 1; j < p.n; j++ {
			total += p.pairEnergy(atoms[i], atoms[j], i, j)
		}
	}
	return total
}

// moveDelta returns the energy change of replacing atom i with trial, touching
// only the pairs that involve i.
func (p *potential) moveDelta(atoms []molecule.Atom, i int, trial molecule.Atom) float64 {
	delta := 0.0
	for j := 0; j < p.n; j++ {
		if j == i {
			continue
		}
		lo, hi := i, j
		if j < i {
			lo, hi = j, i
		}
		delta += p.pairEnergy(trial, atoms[j], lo, hi) - p.pairEnergy(atoms[i], atoms[j], lo, hi)
	}
	return delta
}
