// Package molecule provides the core domain model of the conformer pipeline:
// the Molecule aggregate root, its Conformer children, the connectivity
// graph, and the collaborator ports that bind the pipeline to embedding,
// annealing, and refinement backends.
package molecule

import (
	"fmt"

	"github.com/turtacn/ChemConformer/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemConformer/pkg/errors"
)

// Kind labels a molecule's role in a reaction context.
type Kind int

const (
	KindMolecule Kind = iota
	KindReactant
	KindProduct
)

func (k Kind) String() string {
	switch k {
	case KindReactant:
		return "reactant"
	case KindProduct:
		return "product"
	default:
		return "molecule"
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Molecule aggregate root
// ─────────────────────────────────────────────────────────────────────────────

// Molecule is the aggregate root of the pipeline.  It owns its geometry, its
// connectivity graph, and its conformer collection exclusively; conformers
// are copies with no back-reference.  Charge and multiplicity are fixed at
// construction and never mutated by optimisation.
type Molecule struct {
	name          string
	notation      string
	charge        int
	mult          int
	solventName   string
	kind          Kind
	embedFriendly bool

	atoms      []Atom
	graph      *Graph
	energy     *float64
	conformers []*Conformer

	log logging.Logger
}

// options collects the constructor parameters.
type options struct {
	name        string
	notation    string
	atoms       []Atom
	solventName string
	charge      int
	mult        int
	kind        Kind
	log         logging.Logger
	organicInit NotationInitializer
	metalInit   NotationInitializer
}

// Option configures NewMolecule.
type Option func(*options)

// WithName sets the molecule name (default "molecule").
func WithName(name string) Option { return func(o *options) { o.name = name } }

// WithNotation sets the symbolic notation the structure is bootstrapped from.
func WithNotation(notation string) Option { return func(o *options) { o.notation = notation } }

// WithAtoms sets an explicit initial geometry.
func WithAtoms(atoms []Atom) Option { return func(o *options) { o.atoms = CloneAtoms(atoms) } }

// WithSolvent sets the implicit solvent identifier.
func WithSolvent(name string) Option { return func(o *options) { o.solventName = name } }

// WithCharge sets the total molecular charge (default 0).  Ignored when a
// notation initializer supplies the charge.
func WithCharge(charge int) Option { return func(o *options) { o.charge = charge } }

// WithMult sets the spin multiplicity (default 1).  Ignored when a notation
// initializer supplies the multiplicity.
func WithMult(mult int) Option { return func(o *options) { o.mult = mult } }

// WithKind labels the molecule's reaction role.
func WithKind(kind Kind) Option { return func(o *options) { o.kind = kind } }

// WithLogger injects the structured logger (default logging.Default()).
func WithLogger(log logging.Logger) Option { return func(o *options) { o.log = log } }

// WithInitializers registers the notation initializers the bootstrapper
// dispatches to: organic for metal-free notations, metal for the rest.
func WithInitializers(organic, metal NotationInitializer) Option {
	return func(o *options) {
		o.organicInit = organic
		o.metalInit = metal
	}
}

// NewMolecule constructs a Molecule.  When a notation is supplied, the
// bootstrapper classifies it as organic or metal-containing and dispatches
// to the matching initializer, which supplies atoms, bonds, charge and
// multiplicity; metal-containing structures are flagged as unfit for the
// embedding strategy.  Without a notation the connectivity graph is derived
// directly from the given geometry.
//
// A molecule that ends initialisation with zero atoms is an unrecoverable
// construction failure (CodeNoAtoms): no usable object is returned.
func NewMolecule(opts ...Option) (*Molecule, error) {
	o := &options{
		name: "molecule",
		mult: 1,
		log:  logging.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}

	m := &Molecule{
		name:          o.name,
		notation:      o.notation,
		charge:        o.charge,
		mult:          o.mult,
		solventName:   o.solventName,
		kind:          o.kind,
		embedFriendly: true,
		atoms:         o.atoms,
		log:           o.log.Named("molecule"),
	}

	if o.notation != "" {
		if err := m.initFromNotation(o); err != nil {
			return nil, err
		}
	} else {
		m.graph = MakeGraph(m.atoms)
	}

	if len(m.atoms) == 0 {
		return nil, errors.NoAtoms(m.name)
	}

	m.log.Info("molecule created",
		logging.String("name", m.name),
		logging.Int("n_atoms", len(m.atoms)),
		logging.Int("charge", m.charge),
		logging.Int("mult", m.mult))
	return m, nil
}

// initFromNotation classifies the notation and applies the matching
// initializer's structure to the molecule.
func (m *Molecule) initFromNotation(o *options) error {
	init := o.organicInit
	if ContainsMetal(m.notation) {
		init = o.metalInit
		// The fast embedding path is only trusted for purely organic
		// structures; metal-containing molecules fall back to annealing.
		m.embedFriendly = false
	}
	if init == nil {
		return errors.New(errors.CodeNotationInvalid, "no initializer registered for notation class").
			WithDetail("notation=" + m.notation)
	}

	parsed, err := init.Init(m.notation)
	if err != nil {
		return errors.Wrap(err, errors.CodeNotationInvalid, "notation initialisation failed").
			WithDetail("notation=" + m.notation)
	}

	m.atoms = CloneAtoms(parsed.Atoms)
	m.charge = parsed.Charge
	if parsed.Mult > 0 {
		m.mult = parsed.Mult
	}

	if len(parsed.Bonds) > 0 {
		m.graph = NewGraph(len(m.atoms))
		for _, b := range parsed.Bonds {
			m.graph.AddEdge(b[0], b[1])
		}
	} else {
		m.graph = MakeGraph(m.atoms)
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Species implementation
// ─────────────────────────────────────────────────────────────────────────────

// Name returns the molecule name.
func (m *Molecule) Name() string { return m.name }

// Notation returns the symbolic notation, empty if none was supplied.
func (m *Molecule) Notation() string { return m.notation }

// Charge returns the total molecular charge.
func (m *Molecule) Charge() int { return m.charge }

// Mult returns the spin multiplicity.
func (m *Molecule) Mult() int { return m.mult }

// Solvent returns the implicit solvent identifier.
func (m *Molecule) Solvent() string { return m.solventName }

// Kind returns the molecule's reaction role.
func (m *Molecule) Kind() Kind { return m.kind }

// EmbedFriendly reports whether the fast embedding strategy is viable for
// this molecule.
func (m *Molecule) EmbedFriendly() bool { return m.embedFriendly }

// SetEmbedFriendly overrides the embedding capability flag, e.g. after an
// embedding collaborator reports the structure as unembeddable.
func (m *Molecule) SetEmbedFriendly(ok bool) { m.embedFriendly = ok }

// Atoms returns a copy of the current geometry.
func (m *Molecule) Atoms() []Atom { return CloneAtoms(m.atoms) }

// NAtoms returns the atom count.
func (m *Molecule) NAtoms() int { return len(m.atoms) }

// Graph returns the molecule's connectivity graph.
func (m *Molecule) Graph() *Graph { return m.graph }

// Energy returns the last recorded energy and whether one is set.
func (m *Molecule) Energy() (float64, bool) {
	if m.energy == nil {
		return 0, false
	}
	return *m.energy, true
}

// ApplyRefinement atomically replaces the geometry and energy with a
// successful refinement's output.  A changed atom count indicates a corrupt
// engine result and is rejected, leaving the molecule untouched.
func (m *Molecule) ApplyRefinement(atoms []Atom, energy float64) error {
	if len(atoms) != len(m.atoms) {
		return errors.InvalidParam("refined geometry atom count differs from molecule").
			WithDetail(fmt.Sprintf("got=%d want=%d", len(atoms), len(m.atoms)))
	}
	m.atoms = CloneAtoms(atoms)
	e := energy
	m.energy = &e
	return nil
}

// setGeometry replaces the geometry without touching the energy; used by the
// solvation state machine when merging the sub-search result.
func (m *Molecule) setGeometry(atoms []Atom) error {
	if len(atoms) != len(m.atoms) {
		return errors.InvalidParam("replacement geometry atom count differs from molecule").
			WithDetail(fmt.Sprintf("got=%d want=%d", len(atoms), len(m.atoms)))
	}
	m.atoms = CloneAtoms(atoms)
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Conformer collection lifecycle
// ─────────────────────────────────────────────────────────────────────────────

// Conformers returns the owned conformer collection.  Nil until a generation
// pass has run.
func (m *Molecule) Conformers() []*Conformer { return m.conformers }

// ReplaceConformers replaces the whole conformer collection.  A generation
// pass always replaces, never appends across passes.
func (m *Molecule) ReplaceConformers(confs []*Conformer) { m.conformers = confs }

// ClearConformers discards the conformer collection.
func (m *Molecule) ClearConformers() { m.conformers = nil }

// NewConformer creates conformer number i of this molecule: an independent
// copy carrying the parent's charge, multiplicity and solvent, named
// "<parent>_conf<i>".  The conformer holds no reference back to the parent.
func (m *Molecule) NewConformer(i int, atoms []Atom) *Conformer {
	return &Conformer{
		name:        fmt.Sprintf("%s_conf%d", m.name, i),
		charge:      m.charge,
		mult:        m.mult,
		solventName: m.solventName,
		atoms:       CloneAtoms(atoms),
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Conformer
// ─────────────────────────────────────────────────────────────────────────────

// Conformer is a disposable, independently optimizable alternative geometry
// of its parent molecule.  It never mutates the parent.
type Conformer struct {
	name        string
	charge      int
	mult        int
	solventName string
	atoms       []Atom
	energy      *float64
}

// Name returns the conformer name.
func (c *Conformer) Name() string { return c.name }

// Charge returns the charge copied from the parent at creation.
func (c *Conformer) Charge() int { return c.charge }

// Mult returns the multiplicity copied from the parent at creation.
func (c *Conformer) Mult() int { return c.mult }

// Solvent returns the solvent identifier copied from the parent.
func (c *Conformer) Solvent() string { return c.solventName }

// Atoms returns a copy of the conformer geometry.
func (c *Conformer) Atoms() []Atom { return CloneAtoms(c.atoms) }

// NAtoms returns the atom count.
func (c *Conformer) NAtoms() int { return len(c.atoms) }

// Energy returns the conformer energy and whether one is set.
func (c *Conformer) Energy() (float64, bool) {
	if c.energy == nil {
		return 0, false
	}
	return *c.energy, true
}

// ApplyRefinement atomically replaces the conformer geometry and energy.
func (c *Conformer) ApplyRefinement(atoms []Atom, energy float64) error {
	if len(atoms) != len(c.atoms) {
		return errors.InvalidParam("refined geometry atom count differs from conformer").
			WithDetail(fmt.Sprintf("got=%d want=%d", len(atoms), len(c.atoms)))
	}
	c.atoms = CloneAtoms(atoms)
	e := energy
	c.energy = &e
	return nil
}
