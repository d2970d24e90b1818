package optimization

import (
	"context"
	"fmt"

	"github.com/turtacn/ChemConformer/internal/domain/molecule"
	"github.com/turtacn/ChemConformer/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemConformer/internal/infrastructure/storage/ledger"
	"github.com/turtacn/ChemConformer/pkg/errors"
)

// solvationState enumerates the stages of a solvated optimisation pass.
// Transitions are strictly sequential; every stage hard-depends on its
// predecessor and a failure aborts the pass with the molecule's solvent
// fields untouched.
type solvationState int

const (
	stateVacuumOptimizing solvationState = iota
	stateVacuumDone
	stateChargeExtraction
	stateSolventSubsearch
	stateSolventRefined
)

func (s solvationState) String() string {
	switch s {
	case stateVacuumOptimizing:
		return "vacuum_optimizing"
	case stateVacuumDone:
		return "vacuum_done"
	case stateChargeExtraction:
		return "charge_extraction"
	case stateSolventSubsearch:
		return "solvent_subsearch"
	case stateSolventRefined:
		return "solvent_refined"
	default:
		return "unknown"
	}
}

// OptimiseSolvated runs the solvated optimisation state machine on sm:
//
//	vacuum_optimizing -> vacuum_done -> charge_extraction ->
//	solvent_subsearch -> solvent_refined
//
// The vacuum stage is a full Optimise pass (energy, geometry, XYZ file,
// ledger).  Its per-atom partial charges are written onto the graph nodes; a
// charge count differing from the atom count is fatal
// (CodeChargeCountMismatch).  The explicit-solvent QM/MM sub-search then
// explores SolventSubSearch solvent configurations and its result is merged
// all-or-nothing; any sub-search failure surfaces as CodeSolventSubsearch
// with no partial solvent fields applied.  Calling again on a molecule that
// has already completed a pass starts a fresh run from the vacuum stage and
// fully replaces both solvent partitions; it never resumes.
func (s *Service) OptimiseSolvated(ctx context.Context, sm *molecule.SolvatedMolecule, method molecule.Method) error {
	if sm.SolventMolecule() == nil {
		return errors.InvalidParam("no solvent molecule bound").
			WithDetail("molecule=" + sm.Name())
	}
	if s.solver == nil {
		return errors.Internal("no solvent solver configured")
	}

	state := stateVacuumOptimizing
	log := s.log.With(logging.String("molecule", sm.Name()), logging.String("method", method.Name))
	log.Info("solvated optimisation started", logging.String("state", state.String()))

	res, err := s.refine(ctx, sm, method)
	if err != nil {
		return err
	}
	if err := s.persist(ctx, sm, method, res); err != nil {
		return err
	}
	state = stateVacuumDone
	log.Info("vacuum stage complete",
		logging.String("state", state.String()),
		logging.Float64("energy", res.Energy))

	state = stateChargeExtraction
	if err := sm.Graph().SetCharges(res.Charges); err != nil {
		return err
	}
	log.Info("atomic charges extracted onto graph",
		logging.String("state", state.String()),
		logging.Int("n_charges", len(res.Charges)))

	state = stateSolventSubsearch
	solRes, err := s.solver.Solvate(ctx, sm, sm.SolventMolecule(), method, s.opts.SolventSubSearch)
	if err != nil {
		return errors.Wrap(err, errors.CodeSolventSubsearch, "explicit-solvent sub-search failed").
			WithDetail(fmt.Sprintf("molecule=%s n_confs=%d", sm.Name(), s.opts.SolventSubSearch))
	}
	if err := sm.ApplySolvation(solRes); err != nil {
		return errors.Wrap(err, errors.CodeSolventSubsearch, "solvent sub-search result rejected").
			WithDetail("molecule=" + sm.Name())
	}
	state = stateSolventRefined
	log.Info("solvated optimisation finished",
		logging.String("state", state.String()),
		logging.Int("qm_solvent_atoms", len(solRes.QMSolventAtoms)),
		logging.Int("mm_solvent_atoms", len(solRes.MMSolventAtoms)))

	return s.persistSolvated(ctx, sm, method, solRes)
}

// persistSolvated writes the full solvated system (species plus both solvent
// partitions) and records the run.
func (s *Service) persistSolvated(ctx context.Context, sm *molecule.SolvatedMolecule, method molecule.Method, res molecule.SolventResult) error {
	system := make([]molecule.Atom, 0, len(res.SpeciesAtoms)+len(res.QMSolventAtoms)+len(res.MMSolventAtoms))
	system = append(system, res.SpeciesAtoms...)
	system = append(system, res.QMSolventAtoms...)
	system = append(system, res.MMSolventAtoms...)

	name := fmt.Sprintf("%s_solvated_%s", sm.Name(), method.Name)
	comment := fmt.Sprintf("solvent = %s, qm/mm partition = %d/%d",
		sm.SolventMolecule().Name(), len(res.QMSolventAtoms), len(res.MMSolventAtoms))
	if s.writer != nil {
		if err := s.writer.WriteXYZ(name, system, comment); err != nil {
			return err
		}
	}

	if s.store != nil {
		energy, _ := sm.Energy()
		rec := ledger.Record{
			Name:    sm.Name() + "_solvated",
			Method:  method.Name,
			Energy:  energy,
			NAtoms:  len(system),
			Solvent: sm.SolventMolecule().Name(),
		}
		if err := s.store.Record(ctx, rec); err != nil {
			s.log.Warn("run ledger write failed",
				logging.String("molecule", sm.Name()),
				logging.Err(err))
		}
	}
	return nil
}
