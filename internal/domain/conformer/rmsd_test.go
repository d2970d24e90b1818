package conformer

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ChemConformer/internal/domain/molecule"
)

func water() []molecule.Atom {
	return []molecule.Atom{
		molecule.NewAtom("O", 0, 0, 0),
		molecule.NewAtom("H", 0.96, 0, 0),
		molecule.NewAtom("H", -0.24, 0.93, 0),
	}
}

// rotatedZ returns the geometry rotated by theta around the z axis.
func rotatedZ(atoms []molecule.Atom, theta float64) []molecule.Atom {
	c, s := math.Cos(theta), math.Sin(theta)
	out := make([]molecule.Atom, len(atoms))
	for i, a := range atoms {
		out[i] = molecule.NewAtom(a.Label, c*a.X-s*a.Y, s*a.X+c*a.Y, a.Z)
	}
	return out
}

func translated(atoms []molecule.Atom, dx, dy, dz float64) []molecule.Atom {
	out := make([]molecule.Atom, len(atoms))
	for i, a := range atoms {
		out[i] = a.Translated(dx, dy, dz)
	}
	return out
}

func TestRMSD_IdenticalIsZero(t *testing.T) {
	d, err := RMSD(water(), water())
	require.NoError(t, err)
	assert.InDelta(t, 0.0, d, 1e-10)
}

func TestRMSD_InvariantUnderRigidMotion(t *testing.T) {
	ref := water()

	d, err := RMSD(ref, translated(ref, 5, -3, 2))
	require.NoError(t, err)
	assert.InDelta(t, 0.0, d, 1e-8)

	d, err = RMSD(ref, rotatedZ(ref, math.Pi/3))
	require.NoError(t, err)
	assert.InDelta(t, 0.0, d, 1e-8)

	// Rotation plus translation together.
	d, err = RMSD(ref, translated(rotatedZ(ref, 1.1), -2, 0.5, 7))
	require.NoError(t, err)
	assert.InDelta(t, 0.0, d, 1e-8)
}

func TestRMSD_DetectsDisplacement(t *testing.T) {
	ref := water()
	moved := water()
	moved[1] = moved[1].Translated(0, 0, 1.5)

	d, err := RMSD(ref, moved)
	require.NoError(t, err)
	assert.Greater(t, d, 0.3)

	// Symmetric in its arguments.
	rev, err := RMSD(moved, ref)
	require.NoError(t, err)
	assert.InDelta(t, d, rev, 1e-8)
}

func TestRMSD_Errors(t *testing.T) {
	_, err := RMSD(nil, nil)
	assert.Error(t, err)

	_, err = RMSD(water(), water()[:2])
	assert.Error(t, err)

	mismatched := water()
	mismatched[0].Label = "N"
	_, err = RMSD(water(), mismatched)
	assert.Error(t, err)
}

func TestIsUnique(t *testing.T) {
	ref := water()
	near := water()
	near[1] = near[1].Translated(0.01, 0, 0)
	far := water()
	far[1] = far[1].Translated(0, 0, 2.0)

	// Empty accepted pool always yields unique.
	assert.True(t, IsUnique(ref, nil, 0.3))

	pool := [][]molecule.Atom{ref}
	assert.False(t, IsUnique(near, pool, 0.3))
	assert.True(t, IsUnique(far, pool, 0.3))

	// A corrupt candidate that cannot be compared is rejected outright.
	assert.False(t, IsUnique(water()[:2], pool, 0.3))
	reordered := water()
	reordered[0].Label = "N"
	assert.False(t, IsUnique(reordered, pool, 0.3))
}
