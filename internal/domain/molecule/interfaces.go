package molecule

import "context"

// This file defines the collaborator ports of the conformer pipeline.  The
// domain owns the contracts; implementations live in internal/intelligence
// (built-in geometry generators) and internal/infrastructure (writers,
// ledger), or wrap external toolchains.

// ─────────────────────────────────────────────────────────────────────────────
// Species — the optimizable contract
// ─────────────────────────────────────────────────────────────────────────────

// Species is the contract shared by Molecule and Conformer: a named,
// geometry-bearing chemical entity that a refinement engine can optimize.
type Species interface {
	// Name returns the entity's unique name, used for job and file naming.
	Name() string

	// Atoms returns a copy of the current geometry.
	Atoms() []Atom

	// NAtoms returns the atom count.
	NAtoms() int

	// Charge returns the total molecular charge.
	Charge() int

	// Mult returns the spin multiplicity.
	Mult() int

	// Solvent returns the implicit solvent identifier, empty for vacuum.
	Solvent() string

	// Energy returns the last recorded energy and whether one is set.
	Energy() (float64, bool)

	// ApplyRefinement atomically replaces the geometry and energy with the
	// values a successful refinement returned.  It is a full replace, never
	// a merge, and fails if the atom count changes.
	ApplyRefinement(atoms []Atom, energy float64) error
}

// ─────────────────────────────────────────────────────────────────────────────
// Structure bootstrap
// ─────────────────────────────────────────────────────────────────────────────

// ParsedStructure is the result of initialising a molecule from symbolic
// notation: an initial geometry, explicit bonds as ordinal pairs, and the
// charge/multiplicity implied by the notation.
type ParsedStructure struct {
	Atoms  []Atom
	Bonds  [][2]int
	Charge int
	Mult   int
}

// NotationInitializer turns a symbolic notation string into an initial
// structure.  Two implementations are dispatched to by the bootstrapper: one
// for purely organic notations and one for metal-containing ones.
type NotationInitializer interface {
	Init(notation string) (ParsedStructure, error)
}

// ─────────────────────────────────────────────────────────────────────────────
// Sampling collaborators
// ─────────────────────────────────────────────────────────────────────────────

// EmbedRequest carries the inputs of a deterministic embedding call.
type EmbedRequest struct {
	// Notation is the symbolic notation the embeddable representation is
	// derived from.
	Notation string

	// Atoms and Graph describe the current topology for collaborators that
	// embed from connectivity rather than notation.
	Atoms []Atom
	Graph *Graph

	// Attempts is the number of candidate conformations requested.
	Attempts int

	// PruneThreshold is the coarse pairwise-similarity pre-filter in
	// angstroms.
	PruneThreshold float64

	// NCores is the worker-count hint for internally parallel collaborators.
	NCores int
}

// Embedder is the cheminformatics embedding collaborator.  Results are
// returned in embedding-index order; downstream uniqueness filtering is
// order-sensitive.
type Embedder interface {
	Embed(ctx context.Context, req EmbedRequest) ([][]Atom, error)
}

// Annealer is the simulated-annealing geometry collaborator.  Each call
// produces one candidate geometry; seed == nil derives the seed from the
// ordinal so that runs are reproducible and mutually independent.
type Annealer interface {
	Anneal(ctx context.Context, sp Species, graph *Graph, seed *int64, ordinal int) ([]Atom, error)
}

// ─────────────────────────────────────────────────────────────────────────────
// Refinement collaborators
// ─────────────────────────────────────────────────────────────────────────────

// Method identifies an electronic-structure method and its keyword sets.
type Method struct {
	Name        string
	OptKeywords []string
	SPKeywords  []string
}

// RefinementRequest is a single job submitted to the refinement engine.
type RefinementRequest struct {
	JobID    string
	Name     string
	Species  Species
	Keywords []string
	NCores   int

	// Opt distinguishes a geometry optimisation from a single-point energy
	// evaluation.
	Opt bool
}

// RefinementResult carries the engine's output: a scalar energy, the refined
// geometry, and optionally per-atom partial charges in input atom order.
type RefinementResult struct {
	Energy  float64
	Atoms   []Atom
	Charges []float64
}

// RefinementEngine is the external structure-refinement backend.  Run blocks
// until the job completes; non-convergence and crashes are returned as
// errors, in which case the result must be discarded entirely.
type RefinementEngine interface {
	Run(ctx context.Context, req RefinementRequest) (RefinementResult, error)
}

// SolventResult is the output of an explicit-solvent QM/MM sub-search: the
// refined species geometry plus the partition of the final solvent shell.
type SolventResult struct {
	SpeciesAtoms   []Atom
	QMSolventAtoms []Atom
	MMSolventAtoms []Atom
}

// SolventSolver is the explicit-solvent QM/MM collaborator.  It performs its
// own bounded conformer search over solvent placements (nConfs
// configurations), opaque to the caller.
type SolventSolver interface {
	Solvate(ctx context.Context, sp Species, solvent *Molecule, method Method, nConfs int) (SolventResult, error)
}

// ─────────────────────────────────────────────────────────────────────────────
// Durable output
// ─────────────────────────────────────────────────────────────────────────────

// GeometryWriter persists a geometry to durable storage under the given name.
type GeometryWriter interface {
	WriteXYZ(name string, atoms []Atom, comment string) error
}
