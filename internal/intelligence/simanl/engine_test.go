package simanl

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ChemConformer/internal/domain/molecule"
	"github.com/turtacn/ChemConformer/internal/infrastructure/monitoring/logging"
)

func TestEngineRun_RefinesGeometry(t *testing.T) {
	mol := newWater(t)
	eng := NewEngine(Config{}, logging.NewNopLogger())

	res, err := eng.Run(context.Background(), molecule.RefinementRequest{
		JobID:   "job-1",
		Name:    "water_opt",
		Species: mol,
		Opt:     true,
	})
	require.NoError(t, err)
	require.Len(t, res.Atoms, 3)
	require.Len(t, res.Charges, 3)

	// O-H bonds end near the covalent equilibrium.
	r0 := molecule.CovalentRadius("O") + molecule.CovalentRadius("H")
	assert.InDelta(t, r0, res.Atoms[0].DistanceTo(res.Atoms[1]), 0.4)
	assert.InDelta(t, r0, res.Atoms[0].DistanceTo(res.Atoms[2]), 0.4)
}

func TestEngineRun_Deterministic(t *testing.T) {
	mol := newWater(t)
	eng := NewEngine(Config{}, logging.NewNopLogger())

	first, err := eng.Run(context.Background(), molecule.RefinementRequest{JobID: "a", Species: mol, Opt: true})
	require.NoError(t, err)
	second, err := eng.Run(context.Background(), molecule.RefinementRequest{JobID: "b", Species: mol, Opt: true})
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestEngineRun_SinglePointKeepsGeometry(t *testing.T) {
	mol := newWater(t)
	eng := NewEngine(Config{}, logging.NewNopLogger())

	res, err := eng.Run(context.Background(), molecule.RefinementRequest{
		JobID:   "sp-1",
		Species: mol,
		Opt:     false,
	})
	require.NoError(t, err)
	assert.Equal(t, mol.Atoms(), res.Atoms)
	require.Len(t, res.Charges, 3)

	// An optimisation job on the same input walks away from the start point.
	opt, err := eng.Run(context.Background(), molecule.RefinementRequest{JobID: "opt-1", Species: mol, Opt: true})
	require.NoError(t, err)
	assert.NotEqual(t, res.Atoms, opt.Atoms)
}

func TestEngineRun_EmptyRequest(t *testing.T) {
	eng := NewEngine(Config{}, logging.NewNopLogger())
	_, err := eng.Run(context.Background(), molecule.RefinementRequest{})
	assert.Error(t, err)
}

func TestPartialCharges_SumToZeroAndFollowElectronegativity(t *testing.T) {
	mol := newWater(t)
	charges := partialCharges(mol.Atoms(), mol.Graph())
	require.Len(t, charges, 3)

	total := 0.0
	for _, q := range charges {
		total += q
	}
	assert.InDelta(t, 0.0, total, 1e-12)

	// Oxygen pulls density from both hydrogens.
	assert.Less(t, charges[0], 0.0)
	assert.Greater(t, charges[1], 0.0)
	assert.Greater(t, charges[2], 0.0)
}
