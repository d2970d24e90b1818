package molecule

import (
	"math"
	"strings"
)

// Atom is an immutable value object: an element label plus a Cartesian
// coordinate in angstroms.  Geometries are ordered []Atom slices — the order
// is significant, indexing into the connectivity graph and into per-atom
// charge arrays.
type Atom struct {
	Label string
	X     float64
	Y     float64
	Z     float64
}

// NewAtom constructs an Atom.
func NewAtom(label string, x, y, z float64) Atom {
	return Atom{Label: label, X: x, Y: y, Z: z}
}

// Translated returns a copy of the atom shifted by (dx, dy, dz).
func (a Atom) Translated(dx, dy, dz float64) Atom {
	return Atom{Label: a.Label, X: a.X + dx, Y: a.Y + dy, Z: a.Z + dz}
}

// DistanceTo returns the Euclidean distance to other in angstroms.
func (a Atom) DistanceTo(other Atom) float64 {
	dx := a.X - other.X
	dy := a.Y - other.Y
	dz := a.Z - other.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// CloneAtoms returns a deep copy of a geometry.
func CloneAtoms(atoms []Atom) []Atom {
	if atoms == nil {
		return nil
	}
	out := make([]Atom, len(atoms))
	copy(out, atoms)
	return out
}

// Centroid returns the unweighted geometric center of a geometry.
func Centroid(atoms []Atom) (x, y, z float64) {
	if len(atoms) == 0 {
		return 0, 0, 0
	}
	for _, a := range atoms {
		x += a.X
		y += a.Y
		z += a.Z
	}
	n := float64(len(atoms))
	return x / n, y / n, z / n
}

// ─────────────────────────────────────────────────────────────────────────────
// Element data
// ─────────────────────────────────────────────────────────────────────────────

// metals lists the element symbols treated as metal-class for notation
// dispatch.  A notation containing any of these is routed to the
// metal-containing initializer.
var metals = []string{
	"Li", "Be", "Na", "Mg", "Al", "K", "Ca",
	"Sc", "Ti", "V", "Cr", "Mn", "Fe", "Co", "Ni", "Cu", "Zn",
	"Ga", "Rb", "Sr", "Y", "Zr", "Nb", "Mo", "Tc", "Ru", "Rh", "Pd",
	"Ag", "Cd", "In", "Sn", "Cs", "Ba",
	"La", "Ce", "Pr", "Nd", "Pm", "Sm", "Eu", "Gd", "Tb", "Dy", "Ho",
	"Er", "Tm", "Yb", "Lu",
	"Hf", "Ta", "W", "Re", "Os", "Ir", "Pt", "Au", "Hg", "Tl", "Pb", "Bi",
	"Fr", "Ra", "Ac", "Th", "Pa", "U",
}

// ContainsMetal reports whether the notation mentions a metal-class element.
// The check is a plain substring scan over two-letter symbols first, then the
// single-letter ones, mirroring how notations embed element symbols verbatim.
func ContainsMetal(notation string) bool {
	for _, m := range metals {
		if strings.Contains(notation, m) {
			return true
		}
	}
	// Single-letter metal symbols that double as common organic letters are
	// only meaningful inside brackets ([K+], [W]).
	for _, m := range []string{"[K", "[W", "[U", "[V", "[Y"} {
		if strings.Contains(notation, m) {
			return true
		}
	}
	return false
}

// covalentRadii holds single-bond covalent radii in angstroms for the
// elements the bond-inference heuristic is expected to meet.  Elements not
// listed fall back to defaultCovalentRadius.
var covalentRadii = map[string]float64{
	"H": 0.31, "B": 0.84, "C": 0.76, "N": 0.71, "O": 0.66, "F": 0.57,
	"Si": 1.11, "P": 1.07, "S": 1.05, "Cl": 1.02, "Br": 1.20, "I": 1.39,
	"Li": 1.28, "Na": 1.66, "K": 2.03, "Mg": 1.41, "Ca": 1.76,
	"Fe": 1.32, "Co": 1.26, "Ni": 1.24, "Cu": 1.32, "Zn": 1.22,
	"Pd": 1.39, "Pt": 1.36, "Au": 1.36,
}

const defaultCovalentRadius = 1.5

// CovalentRadius returns the tabulated covalent radius for an element label,
// or a permissive default for unknown elements.
func CovalentRadius(label string) float64 {
	if r, ok := covalentRadii[label]; ok {
		return r
	}
	return defaultCovalentRadius
}
