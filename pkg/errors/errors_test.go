package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New(CodeRefinement, "optimisation did not converge")
	require.NotNil(t, err)
	assert.Equal(t, CodeRefinement, err.Code)
	assert.Equal(t, "[CHEM_003] optimisation did not converge", err.Error())
	assert.NotEmpty(t, err.Stack)
}

func TestWithDetail(t *testing.T) {
	base := New(CodeNoAtoms, "molecule has no atoms")
	detailed := base.WithDetail("name=water")

	assert.Equal(t, "[CHEM_001] molecule has no atoms: name=water", detailed.Error())
	// The original is not mutated.
	assert.Empty(t, base.Detail)

	var nilErr *AppError
	assert.Nil(t, nilErr.WithDetail("x"))
}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(nil, CodeInternal, "nothing"))

	cause := stderrors.New("simplex collapsed")
	err := Wrap(cause, CodeSamplingWorker, "annealing run 3 failed")
	require.NotNil(t, err)
	assert.Equal(t, CodeSamplingWorker, err.Code)
	assert.ErrorIs(t, err, cause)
}

func TestWrap_PreservesCodeOnUnknown(t *testing.T) {
	inner := New(CodeChargeCountMismatch, "got 4 charges for 5 atoms")
	outer := Wrap(inner, CodeUnknown, "solvated optimisation aborted")
	assert.Equal(t, CodeChargeCountMismatch, outer.Code)
}

func TestIsCode(t *testing.T) {
	inner := New(CodeRefinement, "scf not converged")
	wrapped := fmt.Errorf("optimise water: %w", inner)

	assert.True(t, IsCode(wrapped, CodeRefinement))
	assert.False(t, IsCode(wrapped, CodeNoAtoms))
	assert.False(t, IsCode(nil, CodeRefinement))
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, CodeOK, GetCode(nil))
	assert.Equal(t, CodeUnknown, GetCode(stderrors.New("plain")))
	assert.Equal(t, CodeNoAtoms, GetCode(NoAtoms("x")))
}

func TestNoAtoms(t *testing.T) {
	err := NoAtoms("ethanol")
	assert.Equal(t, CodeNoAtoms, err.Code)
	assert.Contains(t, err.Error(), "name=ethanol")
}
