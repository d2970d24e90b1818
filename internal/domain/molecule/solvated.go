package molecule

// SolvatedMolecule is a Molecule additionally bound to an explicit solvent
// molecule.  The two derived solvent-atom partitions are populated only by a
// solvated optimisation pass and are fully replaced on every pass, never
// incrementally updated.
type SolvatedMolecule struct {
	Molecule

	solventMol     *Molecule
	qmSolventAtoms []Atom
	mmSolventAtoms []Atom
	solvated       bool
}

// NewSolvatedMolecule constructs a SolvatedMolecule with the same options as
// NewMolecule.  The solvent molecule reference starts unbound.
func NewSolvatedMolecule(opts ...Option) (*SolvatedMolecule, error) {
	base, err := NewMolecule(opts...)
	if err != nil {
		return nil, err
	}
	return &SolvatedMolecule{Molecule: *base}, nil
}

// BindSolvent binds the explicit solvent molecule used by the QM/MM
// sub-search.
func (s *SolvatedMolecule) BindSolvent(solvent *Molecule) { s.solventMol = solvent }

// SolventMolecule returns the bound solvent molecule, nil if unbound.
func (s *SolvatedMolecule) SolventMolecule() *Molecule { return s.solventMol }

// QMSolventAtoms returns the quantum-treated solvent atoms of the last
// solvated optimisation, nil before the first pass.
func (s *SolvatedMolecule) QMSolventAtoms() []Atom { return CloneAtoms(s.qmSolventAtoms) }

// MMSolventAtoms returns the mechanically-treated solvent atoms of the last
// solvated optimisation, nil before the first pass.
func (s *SolvatedMolecule) MMSolventAtoms() []Atom { return CloneAtoms(s.mmSolventAtoms) }

// Solvated reports whether at least one solvated optimisation pass has
// completed.  Passes are re-runnable; each one replaces the partitions in
// full.
func (s *SolvatedMolecule) Solvated() bool { return s.solvated }

// ApplySolvation merges a successful solvent sub-search result: the species
// geometry is replaced and both solvent partitions are stored.  Applied
// all-or-nothing; an atom-count mismatch leaves the molecule untouched.
func (s *SolvatedMolecule) ApplySolvation(res SolventResult) error {
	if err := s.setGeometry(res.SpeciesAtoms); err != nil {
		return err
	}
	s.qmSolventAtoms = CloneAtoms(res.QMSolventAtoms)
	s.mmSolventAtoms = CloneAtoms(res.MMSolventAtoms)
	s.solvated = true
	return nil
}
