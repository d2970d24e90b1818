package conformer

import (
	"github.com/turtacn/ChemConformer/internal/domain/molecule"
)

// IsUnique reports whether candidate is structurally distinct from every
// geometry in accepted: it is a duplicate when its best-fit RMSD to any
// accepted geometry falls below threshold (angstroms).  An empty accepted
// pool always yields unique.  A candidate incomparable with the pool
// (mismatched length or element order) is rejected, never admitted.
//
// The filter is applied greedily in candidate production order — each
// accepted geometry joins the comparison pool for subsequent candidates, so
// the first-seen geometry of a structural class is the one retained.
func IsUnique(candidate []molecule.Atom, accepted [][]molecule.Atom, threshold float64) bool {
	for _, ref := range accepted {
		d, err := RMSD(candidate, ref)
		if err != nil {
			// A candidate that cannot be compared against an accepted
			// geometry is corrupt; reject it rather than admit it.
			return false
		}
		if d < threshold {
			return false
		}
	}
	return true
}
