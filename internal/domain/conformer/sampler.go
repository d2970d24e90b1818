package conformer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/turtacn/ChemConformer/internal/domain/molecule"
	"github.com/turtacn/ChemConformer/internal/infrastructure/monitoring/logging"
	prom "github.com/turtacn/ChemConformer/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/ChemConformer/pkg/errors"
)

// Strategy names used in logs and metric labels.
const (
	strategyEmbedding = "embedding"
	strategyAnnealing = "annealing"
)

// Options carries the Generator tunables, typically populated from
// config.SamplingConfig plus the shared core count.
type Options struct {
	// NCores is the worker-pool size for annealing and the worker-count hint
	// passed to the embedder.
	NCores int

	// RMSDThreshold is the uniqueness cutoff in angstroms.
	RMSDThreshold float64

	// PruneThreshold is the embedder's coarse pre-filter in angstroms.
	PruneThreshold float64

	// WorkerTimeout bounds a whole annealing batch; zero waits indefinitely.
	WorkerTimeout time.Duration
}

// Generator is the dual-strategy conformer sampling engine.  The embedding
// and annealing strategies sit behind one contract; strategy selection is a
// capability predicate on the molecule, not a caller decision.
type Generator struct {
	embedder molecule.Embedder
	annealer molecule.Annealer
	opts     Options
	log      logging.Logger
	metrics  *prom.PipelineMetrics // optional
}

// NewGenerator constructs a Generator.  Either collaborator may be nil when
// the corresponding strategy is not available; metrics may be nil to disable
// recording.
func NewGenerator(embedder molecule.Embedder, annealer molecule.Annealer, opts Options, log logging.Logger, metrics *prom.PipelineMetrics) *Generator {
	if opts.NCores < 1 {
		opts.NCores = 1
	}
	return &Generator{
		embedder: embedder,
		annealer: annealer,
		opts:     opts,
		log:      log.Named("sampler"),
		metrics:  metrics,
	}
}

// Generate produces the molecule's unique conformer set: up to maxEmbed
// embedding attempts or maxAnneal annealing runs (strategy selected by the
// molecule's capability flag and notation), greedily deduplicated by
// best-fit RMSD in submission order.  The accepted conformers replace the
// molecule's conformer collection and are returned, named
// "<molecule>_conf<i>" in first-seen order.
//
// Generate requires a non-empty geometry (CodeNoAtoms), checked before any
// collaborator is invoked.  A single annealing-worker failure fails the
// whole batch (CodeSamplingWorker); partial result sets are never returned.
func (g *Generator) Generate(ctx context.Context, mol *molecule.Molecule, maxEmbed, maxAnneal int) ([]*molecule.Conformer, error) {
	if mol.NAtoms() == 0 {
		return nil, errors.NoAtoms(mol.Name())
	}

	strategy := strategyAnnealing
	if mol.Notation() != "" && mol.EmbedFriendly() && g.embedder != nil {
		strategy = strategyEmbedding
	}

	started := time.Now()
	var candidates [][]molecule.Atom
	var err error
	switch strategy {
	case strategyEmbedding:
		g.log.Info("generating conformers by embedding",
			logging.String("molecule", mol.Name()),
			logging.Int("attempts", maxEmbed))
		candidates, err = g.embedBatch(ctx, mol, maxEmbed)
	default:
		g.log.Info("generating conformers by simulated annealing",
			logging.String("molecule", mol.Name()),
			logging.Int("attempts", maxAnneal),
			logging.Int("n_cores", g.opts.NCores))
		candidates, err = g.annealBatch(ctx, mol, maxAnneal)
	}
	if err != nil {
		if g.metrics != nil {
			g.metrics.SamplingFailures.WithLabelValues(strategy).Inc()
		}
		return nil, err
	}
	if g.metrics != nil {
		g.metrics.ConformersGenerated.WithLabelValues(strategy).Add(float64(len(candidates)))
		g.metrics.SamplingDuration.WithLabelValues(strategy).Observe(time.Since(started).Seconds())
	}

	accepted := g.filter(mol, candidates)
	mol.ReplaceConformers(accepted)

	g.log.Info("conformer generation finished",
		logging.String("molecule", mol.Name()),
		logging.String("strategy", strategy),
		logging.Int("candidates", len(candidates)),
		logging.Int("unique", len(accepted)))
	return accepted, nil
}

// embedBatch runs the single blocking embedding call.
func (g *Generator) embedBatch(ctx context.Context, mol *molecule.Molecule, attempts int) ([][]molecule.Atom, error) {
	candidates, err := g.embedder.Embed(ctx, molecule.EmbedRequest{
		Notation:       mol.Notation(),
		Atoms:          mol.Atoms(),
		Graph:          mol.Graph(),
		Attempts:       attempts,
		PruneThreshold: g.opts.PruneThreshold,
		NCores:         g.opts.NCores,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeEmbedding, "conformer embedding failed").
			WithDetail("molecule=" + mol.Name())
	}
	return candidates, nil
}

// annealResult pairs a worker's output with its ordinal so results can be
// re-sequenced deterministically regardless of completion order.
type annealResult struct {
	atoms []molecule.Atom
	err   error
}

// annealBatch distributes n independent annealing runs across a worker pool
// of size NCores.  Each run is seeded by its ordinal index, receives no
// shared mutable state, and writes only its own slot; the caller blocks
// until every run has completed or failed (barrier synchronisation).
func (g *Generator) annealBatch(ctx context.Context, mol *molecule.Molecule, n int) ([][]molecule.Atom, error) {
	if g.annealer == nil {
		return nil, errors.New(errors.CodeSamplingWorker, "no annealing collaborator configured")
	}

	if g.opts.WorkerTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.opts.WorkerTimeout)
		defer cancel()
	}

	results := make([]annealResult, n)
	sem := make(chan struct{}, g.opts.NCores)
	var wg sync.WaitGroup

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(ordinal int) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				results[ordinal] = annealResult{err: ctx.Err()}
				return
			}
			// Each worker gets its own geometry copy; seed derives from the
			// ordinal inside the collaborator.
			atoms, err := g.annealer.Anneal(ctx, mol, mol.Graph(), nil, ordinal)
			results[ordinal] = annealResult{atoms: atoms, err: err}
		}(i)
	}
	wg.Wait()

	// Re-sequence by ordinal (the slice already is) and surface the first
	// failure rather than silently shrinking the batch.
	out := make([][]molecule.Atom, 0, n)
	for i, res := range results {
		if res.err != nil {
			if ctx.Err() != nil {
				return nil, errors.Wrap(res.err, errors.CodeTimeout, "annealing batch timed out").
					WithDetail(fmt.Sprintf("molecule=%s ordinal=%d", mol.Name(), i))
			}
			return nil, errors.Wrap(res.err, errors.CodeSamplingWorker, "annealing worker failed").
				WithDetail(fmt.Sprintf("molecule=%s ordinal=%d", mol.Name(), i))
		}
		out = append(out, res.atoms)
	}
	return out, nil
}

// filter applies greedy order-dependent deduplication and names accepted
// conformers in first-seen order.
func (g *Generator) filter(mol *molecule.Molecule, candidates [][]molecule.Atom) []*molecule.Conformer {
	accepted := make([]*molecule.Conformer, 0, len(candidates))
	pool := make([][]molecule.Atom, 0, len(candidates))
	for _, cand := range candidates {
		if !IsUnique(cand, pool, g.opts.RMSDThreshold) {
			if g.metrics != nil {
				g.metrics.ConformersRejected.Inc()
			}
			continue
		}
		accepted = append(accepted, mol.NewConformer(len(accepted), cand))
		pool = append(pool, cand)
		if g.metrics != nil {
			g.metrics.ConformersAccepted.Inc()
		}
	}
	return accepted
}
