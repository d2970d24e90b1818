package molecule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ChemConformer/pkg/errors"
)

// waterAtoms returns a reasonable water geometry.
func waterAtoms() []Atom {
	return []Atom{
		NewAtom("O", 0, 0, 0),
		NewAtom("H", 0.96, 0, 0),
		NewAtom("H", -0.24, 0.93, 0),
	}
}

// stubInitializer returns a fixed ParsedStructure or error.
type stubInitializer struct {
	parsed ParsedStructure
	err    error
}

func (s *stubInitializer) Init(_ string) (ParsedStructure, error) {
	return s.parsed, s.err
}

func TestNewMolecule_FromAtoms(t *testing.T) {
	m, err := NewMolecule(WithName("water"), WithAtoms(waterAtoms()))
	require.NoError(t, err)

	assert.Equal(t, "water", m.Name())
	assert.Equal(t, 3, m.NAtoms())
	assert.Equal(t, 0, m.Charge())
	assert.Equal(t, 1, m.Mult())
	assert.True(t, m.EmbedFriendly())
	assert.Nil(t, m.Conformers())
	_, hasEnergy := m.Energy()
	assert.False(t, hasEnergy)

	// Graph is derived from the geometry: both hydrogens bond to the oxygen.
	g := m.Graph()
	require.NotNil(t, g)
	assert.True(t, g.HasEdge(0, 1))
	assert.True(t, g.HasEdge(0, 2))
	assert.False(t, g.HasEdge(1, 2))
}

func TestNewMolecule_NoAtomsIsFatal(t *testing.T) {
	m, err := NewMolecule(WithName("empty"))
	assert.Nil(t, m)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeNoAtoms))
}

func TestNewMolecule_OrganicNotationDispatch(t *testing.T) {
	organic := &stubInitializer{parsed: ParsedStructure{
		Atoms:  waterAtoms(),
		Bonds:  [][2]int{{0, 1}, {0, 2}},
		Charge: 0,
		Mult:   1,
	}}
	metal := &stubInitializer{err: assert.AnError}

	m, err := NewMolecule(WithName("water"), WithNotation("O"), WithInitializers(organic, metal))
	require.NoError(t, err)
	assert.Equal(t, 3, m.NAtoms())
	assert.True(t, m.EmbedFriendly())
	assert.True(t, m.Graph().HasEdge(0, 1))
}

func TestNewMolecule_MetalNotationDispatch(t *testing.T) {
	organic := &stubInitializer{err: assert.AnError}
	metal := &stubInitializer{parsed: ParsedStructure{
		Atoms: []Atom{NewAtom("Fe", 0, 0, 0), NewAtom("O", 1.7, 0, 0)},
		Mult:  5,
	}}

	m, err := NewMolecule(WithNotation("O=[Fe]"), WithInitializers(organic, metal))
	require.NoError(t, err)
	assert.Equal(t, 5, m.Mult())
	// Metal-containing structures must fall back to annealing.
	assert.False(t, m.EmbedFriendly())
}

func TestNewMolecule_NotationWithoutInitializer(t *testing.T) {
	_, err := NewMolecule(WithNotation("CCO"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeNotationInvalid))
}

func TestNewMolecule_InitializerFailure(t *testing.T) {
	failing := &stubInitializer{err: assert.AnError}
	_, err := NewMolecule(WithNotation("not-a-notation"), WithInitializers(failing, failing))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeNotationInvalid))
}

func TestApplyRefinement_FullReplace(t *testing.T) {
	m, err := NewMolecule(WithName("water"), WithAtoms(waterAtoms()))
	require.NoError(t, err)

	refined := []Atom{
		NewAtom("O", 0.01, 0, 0),
		NewAtom("H", 0.95, 0.01, 0),
		NewAtom("H", -0.23, 0.94, 0),
	}
	require.NoError(t, m.ApplyRefinement(refined, -76.3))

	assert.Equal(t, refined, m.Atoms())
	e, ok := m.Energy()
	require.True(t, ok)
	assert.Equal(t, -76.3, e)

	// The molecule holds its own copy: mutating the caller's slice afterwards
	// must not leak through.
	refined[0].X = 99
	assert.Equal(t, 0.01, m.Atoms()[0].X)
}

func TestApplyRefinement_CountMismatchRejected(t *testing.T) {
	m, err := NewMolecule(WithAtoms(waterAtoms()))
	require.NoError(t, err)
	before := m.Atoms()

	err = m.ApplyRefinement([]Atom{NewAtom("O", 0, 0, 0)}, -1.0)
	require.Error(t, err)
	assert.Equal(t, before, m.Atoms())
	_, ok := m.Energy()
	assert.False(t, ok)
}

func TestNewConformer(t *testing.T) {
	m, err := NewMolecule(WithName("water"), WithAtoms(waterAtoms()), WithCharge(0), WithSolvent("thf"))
	require.NoError(t, err)

	conf := m.NewConformer(0, waterAtoms())
	assert.Equal(t, "water_conf0", conf.Name())
	assert.Equal(t, m.Charge(), conf.Charge())
	assert.Equal(t, m.Mult(), conf.Mult())
	assert.Equal(t, "thf", conf.Solvent())
	assert.Equal(t, 3, conf.NAtoms())

	// Conformers are independent: refining one never touches the parent.
	require.NoError(t, conf.ApplyRefinement(waterAtoms(), -76.0))
	_, parentHasEnergy := m.Energy()
	assert.False(t, parentHasEnergy)
}

func TestConformerCollectionLifecycle(t *testing.T) {
	m, err := NewMolecule(WithName("water"), WithAtoms(waterAtoms()))
	require.NoError(t, err)

	confs := []*Conformer{m.NewConformer(0, waterAtoms()), m.NewConformer(1, waterAtoms())}
	m.ReplaceConformers(confs)
	assert.Len(t, m.Conformers(), 2)

	m.ReplaceConformers([]*Conformer{m.NewConformer(0, waterAtoms())})
	assert.Len(t, m.Conformers(), 1)

	m.ClearConformers()
	assert.Nil(t, m.Conformers())
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "molecule", KindMolecule.String())
	assert.Equal(t, "reactant", KindReactant.String())
	assert.Equal(t, "product", KindProduct.String())
}
