package molecule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ChemConformer/pkg/errors"
)

func TestMakeGraph_BondsByDistance(t *testing.T) {
	// Two carbons at bonding distance, one far away.
	atoms := []Atom{
		NewAtom("C", 0, 0, 0),
		NewAtom("C", 1.5, 0, 0),
		NewAtom("C", 10, 0, 0),
	}
	g := MakeGraph(atoms)

	assert.Equal(t, 3, g.NumNodes())
	assert.Equal(t, 1, g.NumEdges())
	assert.True(t, g.HasEdge(0, 1))
	assert.False(t, g.HasEdge(1, 2))
}

func TestGraph_AddEdgeIgnoresInvalid(t *testing.T) {
	g := NewGraph(2)
	g.AddEdge(0, 0)
	g.AddEdge(-1, 1)
	g.AddEdge(0, 5)
	assert.Equal(t, 0, g.NumEdges())

	g.AddEdge(0, 1)
	assert.Equal(t, 1, g.NumEdges())
	assert.Equal(t, []int{1}, g.Neighbors(0))
}

func TestGraph_SetCharges(t *testing.T) {
	g := NewGraph(3)
	require.NoError(t, g.SetCharges([]float64{-0.8, 0.4, 0.4}))

	q, ok := g.Charge(0)
	require.True(t, ok)
	assert.Equal(t, -0.8, q)

	_, ok = NewGraph(3).Charge(0)
	assert.False(t, ok)
}

func TestGraph_SetCharges_LengthMismatchIsFatal(t *testing.T) {
	g := NewGraph(3)
	err := g.SetCharges([]float64{0.1, 0.2})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeChargeCountMismatch))

	// Nothing was written.
	_, ok := g.Charge(0)
	assert.False(t, ok)
}

func TestGraph_Clone(t *testing.T) {
	g := NewGraph(2)
	g.AddEdge(0, 1)
	require.NoError(t, g.SetCharges([]float64{0.1, -0.1}))

	c := g.Clone()
	assert.True(t, c.HasEdge(0, 1))
	q, ok := c.Charge(1)
	require.True(t, ok)
	assert.Equal(t, -0.1, q)

	// Independent storage.
	c.AddEdge(1, 0)
	require.NoError(t, c.SetCharges([]float64{0.5, 0.5}))
	q, _ = g.Charge(0)
	assert.Equal(t, 0.1, q)
}

func TestContainsMetal(t *testing.T) {
	assert.True(t, ContainsMetal("O=[Fe]"))
	assert.True(t, ContainsMetal("[Pd](Cl)Cl"))
	assert.True(t, ContainsMetal("[K+].[Cl-]"))
	assert.False(t, ContainsMetal("CCO"))
	assert.False(t, ContainsMetal("c1ccccc1"))
}
