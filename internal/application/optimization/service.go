// Package optimization is the application layer driving geometry refinement:
// the vacuum optimisation controller, the conformer refinement pass, and the
// solvated optimisation state machine.  It orchestrates the domain ports and
// owns no chemistry itself.
package optimization

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/ChemConformer/internal/domain/molecule"
	"github.com/turtacn/ChemConformer/internal/infrastructure/monitoring/logging"
	prom "github.com/turtacn/ChemConformer/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/ChemConformer/internal/infrastructure/storage/ledger"
	"github.com/turtacn/ChemConformer/pkg/errors"
)

// Options carries the service tunables, typically populated from
// config.OptimizationConfig plus the shared core count.
type Options struct {
	// NCores is passed through to every refinement request.
	NCores int

	// SolventSubSearch bounds the solvent-configuration search of the QM/MM
	// collaborator.
	SolventSubSearch int
}

// Service coordinates refinement engine calls with domain state transitions
// and durable output.  The ledger and metrics are optional; the writer is
// required for persistence but may be a no-op implementation.
type Service struct {
	engine  molecule.RefinementEngine
	solver  molecule.SolventSolver
	writer  molecule.GeometryWriter
	store   *ledger.Store
	opts    Options
	log     logging.Logger
	metrics *prom.PipelineMetrics
}

// NewService constructs a Service.  solver may be nil when no solvated
// optimisations are performed; store and metrics may be nil to disable them.
func NewService(engine molecule.RefinementEngine, solver molecule.SolventSolver, writer molecule.GeometryWriter, store *ledger.Store, opts Options, log logging.Logger, metrics *prom.PipelineMetrics) *Service {
	if opts.NCores < 1 {
		opts.NCores = 1
	}
	if opts.SolventSubSearch < 1 {
		opts.SolventSubSearch = 1
	}
	return &Service{
		engine:  engine,
		solver:  solver,
		writer:  writer,
		store:   store,
		opts:    opts,
		log:     log.Named("optimization"),
		metrics: metrics,
	}
}

// Optimise refines sp with the given method: one blocking engine call, and on
// success a full replace of the species' energy and geometry, an XYZ file
// "<name>_optimised_<method>.xyz", and a ledger record when configured.  On
// engine failure the species is left exactly at its pre-call state
// (CodeRefinement).
func (s *Service) Optimise(ctx context.Context, sp molecule.Species, method molecule.Method) error {
	res, err := s.refine(ctx, sp, method)
	if err != nil {
		return err
	}
	return s.persist(ctx, sp, method, res)
}

// SinglePoint evaluates the species' energy at its current geometry: one
// blocking engine call with the method's single-point keywords and Opt unset.
// On success only the energy is updated; the geometry is untouched.
func (s *Service) SinglePoint(ctx context.Context, sp molecule.Species, method molecule.Method) (float64, error) {
	if sp.NAtoms() == 0 {
		return 0, errors.NoAtoms(sp.Name())
	}
	if s.engine == nil {
		return 0, errors.Internal("no refinement engine configured")
	}

	req := molecule.RefinementRequest{
		JobID:    uuid.NewString(),
		Name:     sp.Name() + "_sp",
		Species:  sp,
		Keywords: method.SPKeywords,
		NCores:   s.opts.NCores,
		Opt:      false,
	}

	started := time.Now()
	res, err := s.engine.Run(ctx, req)
	if s.metrics != nil {
		s.metrics.RefinementDuration.WithLabelValues(method.Name).Observe(time.Since(started).Seconds())
	}
	if err != nil {
		if s.metrics != nil {
			s.metrics.RefinementsTotal.WithLabelValues(method.Name, "failure").Inc()
		}
		return 0, errors.Wrap(err, errors.CodeRefinement, "single-point engine call failed").
			WithDetail(fmt.Sprintf("species=%s method=%s job_id=%s", sp.Name(), method.Name, req.JobID))
	}

	if err := sp.ApplyRefinement(sp.Atoms(), res.Energy); err != nil {
		return 0, errors.Wrap(err, errors.CodeRefinement, "single-point energy rejected").
			WithDetail("species=" + sp.Name())
	}

	if s.metrics != nil {
		s.metrics.RefinementsTotal.WithLabelValues(method.Name, "success").Inc()
	}
	s.log.Info("single-point energy evaluated",
		logging.String("species", sp.Name()),
		logging.String("method", method.Name),
		logging.Float64("energy", res.Energy))
	return res.Energy, nil
}

// refine runs one engine call and applies the result to the species.  The
// raw result is returned so callers can consume fields beyond energy and
// geometry, such as partial charges.
func (s *Service) refine(ctx context.Context, sp molecule.Species, method molecule.Method) (molecule.RefinementResult, error) {
	if sp.NAtoms() == 0 {
		return molecule.RefinementResult{}, errors.NoAtoms(sp.Name())
	}
	if s.engine == nil {
		return molecule.RefinementResult{}, errors.Internal("no refinement engine configured")
	}

	req := molecule.RefinementRequest{
		JobID:    uuid.NewString(),
		Name:     sp.Name() + "_opt",
		Species:  sp,
		Keywords: method.OptKeywords,
		NCores:   s.opts.NCores,
		Opt:      true,
	}

	s.log.Info("submitting refinement",
		logging.String("job_id", req.JobID),
		logging.String("species", sp.Name()),
		logging.String("method", method.Name))

	started := time.Now()
	res, err := s.engine.Run(ctx, req)
	if s.metrics != nil {
		s.metrics.RefinementDuration.WithLabelValues(method.Name).Observe(time.Since(started).Seconds())
	}
	if err != nil {
		if s.metrics != nil {
			s.metrics.RefinementsTotal.WithLabelValues(method.Name, "failure").Inc()
		}
		return molecule.RefinementResult{}, errors.Wrap(err, errors.CodeRefinement, "refinement engine call failed").
			WithDetail(fmt.Sprintf("species=%s method=%s job_id=%s", sp.Name(), method.Name, req.JobID))
	}

	if err := sp.ApplyRefinement(res.Atoms, res.Energy); err != nil {
		if s.metrics != nil {
			s.metrics.RefinementsTotal.WithLabelValues(method.Name, "failure").Inc()
		}
		return molecule.RefinementResult{}, errors.Wrap(err, errors.CodeRefinement, "refinement result rejected").
			WithDetail(fmt.Sprintf("species=%s method=%s job_id=%s", sp.Name(), method.Name, req.JobID))
	}

	if s.metrics != nil {
		s.metrics.RefinementsTotal.WithLabelValues(method.Name, "success").Inc()
	}
	s.log.Info("refinement applied",
		logging.String("species", sp.Name()),
		logging.String("method", method.Name),
		logging.Float64("energy", res.Energy))
	return res, nil
}

// persist writes the optimised geometry and records the run.  The species
// state is already updated; a ledger failure is logged but not fatal, a
// geometry write failure is.
func (s *Service) persist(ctx context.Context, sp molecule.Species, method molecule.Method, res molecule.RefinementResult) error {
	name := fmt.Sprintf("%s_optimised_%s", sp.Name(), method.Name)
	comment := fmt.Sprintf("E = %.8f Ha", res.Energy)
	if s.writer != nil {
		if err := s.writer.WriteXYZ(name, res.Atoms, comment); err != nil {
			return err
		}
	}

	if s.store != nil {
		rec := ledger.Record{
			Name:    sp.Name(),
			Method:  method.Name,
			Energy:  res.Energy,
			NAtoms:  len(res.Atoms),
			Solvent: sp.Solvent(),
		}
		if err := s.store.Record(ctx, rec); err != nil {
			s.log.Warn("run ledger write failed",
				logging.String("species", sp.Name()),
				logging.Err(err))
		}
	}
	return nil
}

// OptimiseConformers refines every conformer of mol and adopts the
// lowest-energy survivor as the molecule's geometry and energy.  Individual
// conformer failures are logged and skipped; only a pass with no survivors
// fails (CodeRefinement).
func (s *Service) OptimiseConformers(ctx context.Context, mol *molecule.Molecule, method molecule.Method) error {
	confs := mol.Conformers()
	if len(confs) == 0 {
		return errors.InvalidParam("molecule has no conformers to optimise").
			WithDetail("molecule=" + mol.Name())
	}

	var best *molecule.Conformer
	bestEnergy := 0.0
	failed := 0
	for _, conf := range confs {
		if _, err := s.refine(ctx, conf, method); err != nil {
			if ctx.Err() != nil {
				return err
			}
			failed++
			s.log.Warn("conformer refinement skipped",
				logging.String("conformer", conf.Name()),
				logging.Err(err))
			continue
		}
		e, _ := conf.Energy()
		if best == nil || e < bestEnergy {
			best, bestEnergy = conf, e
		}
	}
	if best == nil {
		return errors.New(errors.CodeRefinement, "every conformer refinement failed").
			WithDetail(fmt.Sprintf("molecule=%s conformers=%d", mol.Name(), len(confs)))
	}

	if err := mol.ApplyRefinement(best.Atoms(), bestEnergy); err != nil {
		return errors.Wrap(err, errors.CodeRefinement, "adopting lowest-energy conformer failed").
			WithDetail("molecule=" + mol.Name())
	}

	s.log.Info("lowest-energy conformer adopted",
		logging.String("molecule", mol.Name()),
		logging.String("conformer", best.Name()),
		logging.Float64("energy", bestEnergy),
		logging.Int("failed", failed))
	return nil
}
