// Package conformer implements the conformer generation pipeline: the
// dual-strategy sampling engine, the RMSD uniqueness filter, and the
// ordinal-indexed annealing worker pool.
package conformer

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/turtacn/ChemConformer/internal/domain/molecule"
)

// RMSD returns the root-mean-square atomic displacement between two
// geometries after optimal rigid-body alignment (Kabsch).  The geometries
// must have the same length and element sequence; atom order carries the
// correspondence.
func RMSD(a, b []molecule.Atom) (float64, error) {
	n := len(a)
	if n == 0 || n != len(b) {
		return 0, fmt.Errorf("rmsd: geometries must be non-empty and equal length, got %d and %d", len(a), len(b))
	}
	for i := range a {
		if a[i].Label != b[i].Label {
			return 0, fmt.Errorf("rmsd: element mismatch at atom %d: %s vs %s", i, a[i].Label, b[i].Label)
		}
	}

	p := centered(a)
	q := centered(b)

	// Cross-covariance H = Pᵀ Q (3×3).
	var h mat.Dense
	h.Mul(p.T(), q)

	var svd mat.SVD
	if ok := svd.Factorize(&h, mat.SVDFull); !ok {
		return 0, fmt.Errorf("rmsd: SVD of cross-covariance failed")
	}
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	// Correct for an improper rotation (reflection).
	var vut mat.Dense
	vut.Mul(&v, u.T())
	sign := 1.0
	if mat.Det(&vut) < 0 {
		sign = -1.0
	}
	s := mat.NewDiagDense(3, []float64{1, 1, sign})

	// R = V S Uᵀ maps column vectors of P onto Q.
	var r mat.Dense
	r.Mul(&v, s)
	r.Mul(&r, u.T())

	// Rotate P (row vectors) and accumulate squared deviations against Q.
	var rotated mat.Dense
	rotated.Mul(p, r.T())

	sum := 0.0
	for i := 0; i < n; i++ {
		for j := 0; j < 3; j++ {
			d := rotated.At(i, j) - q.At(i, j)
			sum += d * d
		}
	}
	return math.Sqrt(sum / float64(n)), nil
}

// centered builds an n×3 coordinate matrix shifted to its centroid.
func centered(atoms []molecule.Atom) *mat.Dense {
	cx, cy, cz := molecule.Centroid(atoms)
	m := mat.NewDense(len(atoms), 3, nil)
	for i, a := range atoms {
		m.Set(i, 0, a.X-cx)
		m.Set(i, 1, a.Y-cy)
		m.Set(i, 2, a.Z-cz)
	}
	return m
}
