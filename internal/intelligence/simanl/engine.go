package simanl

import (
	"context"
	"fmt"

	"github.com/turtacn/ChemConformer/internal/domain/molecule"
	"github.com/turtacn/ChemConformer/internal/infrastructure/monitoring/logging"
)

// Engine is a built-in stand-in for an external refinement backend: it
// quenches the geometry against the internal pair potential and reports the
// final potential value as the energy.  Partial charges come from a crude
// electronegativity-difference model over the bond graph.  Useful for
// end-to-end runs and tests without a quantum-chemistry toolchain installed.
type Engine struct {
	ann *Annealer
	log logging.Logger
}

// NewEngine constructs the stand-in engine.  The supplied config is adjusted
// into a quench schedule: a cold start, no initial kick, and a longer walk.
func NewEngine(cfg Config, log logging.Logger) *Engine {
	cfg.applyDefaults()
	cfg.InitialTemp = 0.02
	cfg.KickAmplitude = 0.05
	if cfg.Steps < 2000 {
		cfg.Steps = 2000
	}
	return &Engine{ann: New(cfg, log), log: log.Named("localengine")}
}

// Run implements molecule.RefinementEngine.  Every job with the same input
// geometry produces the same output; the job ID only names the run in logs.
func (e *Engine) Run(ctx context.Context, req molecule.RefinementRequest) (molecule.RefinementResult, error) {
	if req.Species == nil || req.Species.NAtoms() == 0 {
		return molecule.RefinementResult{}, fmt.Errorf("simanl: refinement request carries no geometry")
	}

	atoms := req.Species.Atoms()
	graph := molecule.MakeGraph(atoms)

	// Single-point jobs evaluate the potential at the input geometry.
	if !req.Opt {
		energy := newPotential(atoms, graph).energy(atoms)
		e.log.Info("single-point evaluated",
			logging.String("job_id", req.JobID),
			logging.String("species", req.Species.Name()),
			logging.Float64("energy", energy))
		return molecule.RefinementResult{
			Energy:  energy,
			Atoms:   atoms,
			Charges: partialCharges(atoms, graph),
		}, nil
	}

	seed := int64(1)
	relaxed, err := e.ann.Anneal(ctx, req.Species, graph, &seed, 0)
	if err != nil {
		return molecule.RefinementResult{}, err
	}

	energy := newPotential(relaxed, graph).energy(relaxed)
	e.log.Info("local refinement finished",
		logging.String("job_id", req.JobID),
		logging.String("species", req.Species.Name()),
		logging.Float64("energy", energy))

	return molecule.RefinementResult{
		Energy:  energy,
		Atoms:   relaxed,
		Charges: partialCharges(relaxed, graph),
	}, nil
}

// electronegativities holds Pauling values for the charge heuristic.
var electronegativities = map[string]float64{
	"H": 2.20, "B": 2.04, "C": 2.55, "N": 3.04, "O": 3.44, "F": 3.98,
	"Si": 1.90, "P": 2.19, "S": 2.58, "Cl": 3.16, "Br": 2.96, "I": 2.66,
	"Li": 0.98, "Na": 0.93, "K": 0.82, "Mg": 1.31, "Ca": 1.00,
	"Fe": 1.83, "Co": 1.88, "Ni": 1.91, "Cu": 1.90, "Zn": 1.65,
}

const defaultElectronegativity = 2.0

// chargeTransferFactor scales the per-bond electronegativity difference into
// a partial charge contribution.
const chargeTransferFactor = 0.16

// partialCharges assigns one partial charge per atom by summing scaled
// electronegativity differences over its bonds.  The result sums to zero by
// construction.
func partialCharges(atoms []molecule.Atom, graph *molecule.Graph) []float64 {
	en := func(label string) float64 {
		if v, ok := electronegativities[label]; ok {
			return v
		}
		return defaultElectronegativity
	}

	charges := make([]float64, len(atoms))
	for i := range atoms {
		for _, j := range graph.Neighbors(i) {
			if j <= i || j >= len(atoms) {
				continue
			}
			// Density shifts toward the more electronegative partner.
			dq := chargeTransferFactor * (en(atoms[j].Label) - en(atoms[i].Label))
			charges[i] += dq
			charges[j] -= dq
		}
	}
	return charges
}
