// Package smiles provides the built-in notation initializers: a SMILES
// parser covering the organic subset, bracket atoms with charges and
// explicit hydrogen counts, branches, ring closures and multi-fragment
// notations.  It produces the heavy-atom skeleton plus implicit hydrogens,
// explicit bonds, the total charge and a parity-derived spin multiplicity,
// together with a rough bond-graph layout as the initial geometry.  The
// geometry is a starting point for the sampling and refinement stages, not a
// physically meaningful conformation.
package smiles

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"unicode"

	"github.com/turtacn/ChemConformer/internal/domain/molecule"
	"github.com/turtacn/ChemConformer/internal/infrastructure/monitoring/logging"
)

// Parser implements molecule.NotationInitializer.
type Parser struct {
	organicOnly bool
	log         logging.Logger
}

// NewOrganic returns the initializer for metal-free notations.  It rejects
// metal-class elements so a misrouted notation fails loudly instead of being
// silently mis-modelled.
func NewOrganic(log logging.Logger) *Parser {
	return &Parser{organicOnly: true, log: log.Named("smiles")}
}

// NewMetal returns the initializer for metal-containing notations.
func NewMetal(log logging.Logger) *Parser {
	return &Parser{log: log.Named("smiles")}
}

// Init parses the notation and returns the initial structure.
func (p *Parser) Init(notation string) (molecule.ParsedStructure, error) {
	st, err := parse(notation)
	if err != nil {
		return molecule.ParsedStructure{}, err
	}
	if p.organicOnly {
		for _, a := range st.atoms {
			if isMetalSymbol(a.symbol) {
				return molecule.ParsedStructure{}, fmt.Errorf("smiles: metal element %s in organic notation %q", a.symbol, notation)
			}
		}
	}

	st.addHydrogens()
	parsed := molecule.ParsedStructure{
		Atoms:  st.layout(),
		Bonds:  st.edges(),
		Charge: st.charge(),
		Mult:   st.multiplicity(),
	}

	p.log.Debug("notation parsed",
		logging.String("notation", notation),
		logging.Int("n_atoms", len(parsed.Atoms)),
		logging.Int("charge", parsed.Charge),
		logging.Int("mult", parsed.Mult))
	return parsed, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Parse state
// ─────────────────────────────────────────────────────────────────────────────

type parsedAtom struct {
	symbol   string
	aromatic bool
	charge   int

	// hCount is the explicit hydrogen count of a bracket atom; -1 requests
	// implicit hydrogens by valence.
	hCount int
}

type bondRec struct {
	a, b  int
	order int
}

type state struct {
	atoms []parsedAtom
	bonds []bondRec
}

// valences lists the implicit-hydrogen valences of the organic subset.
var valences = map[string]int{
	"B": 3, "C": 4, "N": 3, "O": 2, "P": 3, "S": 2,
	"F": 1, "Cl": 1, "Br": 1, "I": 1,
}

var aromaticSymbols = map[byte]string{
	'b': "B", 'c': "C", 'n': "N", 'o': "O", 'p': "P", 's': "S",
}

// atomicNumbers covers the elements the initializer is expected to meet; the
// multiplicity heuristic skips elements missing here.
var atomicNumbers = map[string]int{
	"H": 1, "He": 2, "Li": 3, "Be": 4, "B": 5, "C": 6, "N": 7, "O": 8,
	"F": 9, "Ne": 10, "Na": 11, "Mg": 12, "Al": 13, "Si": 14, "P": 15,
	"S": 16, "Cl": 17, "Ar": 18, "K": 19, "Ca": 20, "Sc": 21, "Ti": 22,
	"V": 23, "Cr": 24, "Mn": 25, "Fe": 26, "Co": 27, "Ni": 28, "Cu": 29,
	"Zn": 30, "Ga": 31, "Ge": 32, "As": 33, "Se": 34, "Br": 35, "Kr": 36,
	"Rb": 37, "Sr": 38, "Y": 39, "Zr": 40, "Nb": 41, "Mo": 42, "Ru": 44,
	"Rh": 45, "Pd": 46, "Ag": 47, "Cd": 48, "In": 49, "Sn": 50, "Sb": 51,
	"Te": 52, "I": 53, "Xe": 54, "Cs": 55, "Ba": 56, "W": 74, "Re": 75,
	"Os": 76, "Ir": 77, "Pt": 78, "Au": 79, "Hg": 80, "Tl": 81, "Pb": 82,
	"Bi": 83, "U": 92,
}

func isMetalSymbol(symbol string) bool {
	return molecule.ContainsMetal("[" + symbol + "]")
}

// parse walks the notation and accumulates atoms and bonds.
func parse(notation string) (*state, error) {
	if strings.TrimSpace(notation) == "" {
		return nil, fmt.Errorf("smiles: empty notation")
	}

	st := &state{}
	prev := -1
	order := 1
	var branch []int
	rings := map[int]ringOpen{}

	i := 0
	for i < len(notation) {
		ch := notation[i]
		switch {
		case ch == '(':
			if prev < 0 {
				return nil, fmt.Errorf("smiles: branch before any atom at %d", i)
			}
			branch = append(branch, prev)
			i++

		case ch == ')':
			if len(branch) == 0 {
				return nil, fmt.Errorf("smiles: unmatched ')' at %d", i)
			}
			prev = branch[len(branch)-1]
			branch = branch[:len(branch)-1]
			i++

		case ch == '-' || ch == '/' || ch == '\\':
			order = 1
			i++
		case ch == '=':
			order = 2
			i++
		case ch == '#':
			order = 3
			i++
		case ch == ':':
			order = 1
			i++

		case ch == '.':
			prev = -1
			order = 1
			i++

		case ch >= '0' && ch <= '9' || ch == '%':
			num := 0
			if ch == '%' {
				if i+2 >= len(notation) || !isDigit(notation[i+1]) || !isDigit(notation[i+2]) {
					return nil, fmt.Errorf("smiles: malformed %%nn ring closure at %d", i)
				}
				num = int(notation[i+1]-'0')*10 + int(notation[i+2]-'0')
				i += 3
			} else {
				num = int(ch - '0')
				i++
			}
			if prev < 0 {
				return nil, fmt.Errorf("smiles: ring closure %d before any atom", num)
			}
			if open, ok := rings[num]; ok {
				o := order
				if open.order > o {
					o = open.order
				}
				st.addBond(open.atom, prev, o)
				delete(rings, num)
			} else {
				rings[num] = ringOpen{atom: prev, order: order}
			}
			order = 1

		case ch == '[':
			atom, width, err := parseBracket(notation[i:])
			if err != nil {
				return nil, fmt.Errorf("smiles: %w at %d", err, i)
			}
			prev = st.addAtom(atom, prev, order)
			order = 1
			i += width

		default:
			atom, width, err := parseBareAtom(notation[i:])
			if err != nil {
				return nil, fmt.Errorf("smiles: %w at %d", err, i)
			}
			prev = st.addAtom(atom, prev, order)
			order = 1
			i += width
		}
	}

	if len(branch) > 0 {
		return nil, fmt.Errorf("smiles: unmatched '(' in %q", notation)
	}
	if len(rings) > 0 {
		return nil, fmt.Errorf("smiles: unclosed ring bond in %q", notation)
	}
	if len(st.atoms) == 0 {
		return nil, fmt.Errorf("smiles: no atoms in %q", notation)
	}
	return st, nil
}

type ringOpen struct {
	atom  int
	order int
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// parseBareAtom reads an unbracketed organic-subset atom.
func parseBareAtom(s string) (parsedAtom, int, error) {
	if len(s) >= 2 {
		two := s[:2]
		if two == "Cl" || two == "Br" {
			return parsedAtom{symbol: two, hCount: -1}, 2, nil
		}
	}
	ch := s[0]
	if sym, ok := aromaticSymbols[ch]; ok {
		return parsedAtom{symbol: sym, aromatic: true, hCount: -1}, 1, nil
	}
	sym := string(ch)
	if _, ok := valences[sym]; ok && unicode.IsUpper(rune(ch)) {
		return parsedAtom{symbol: sym, hCount: -1}, 1, nil
	}
	return parsedAtom{}, 0, fmt.Errorf("unexpected character %q outside brackets", ch)
}

// parseBracket reads a [...] atom starting at s[0] == '[' and returns the
// atom plus the number of bytes consumed.
func parseBracket(s string) (parsedAtom, int, error) {
	end := strings.IndexByte(s, ']')
	if end < 0 {
		return parsedAtom{}, 0, fmt.Errorf("unterminated bracket atom")
	}
	body := s[1:end]
	atom := parsedAtom{hCount: 0}

	j := 0
	for j < len(body) && isDigit(body[j]) { // isotope, ignored
		j++
	}
	if j >= len(body) {
		return parsedAtom{}, 0, fmt.Errorf("bracket atom without element")
	}

	ch := body[j]
	switch {
	case unicode.IsUpper(rune(ch)):
		sym := string(ch)
		if j+1 < len(body) && unicode.IsLower(rune(body[j+1])) {
			if _, ok := atomicNumbers[sym+string(body[j+1])]; ok {
				sym += string(body[j+1])
				j++
			}
		}
		atom.symbol = sym
		j++
	default:
		sym, ok := aromaticSymbols[ch]
		if !ok {
			return parsedAtom{}, 0, fmt.Errorf("invalid element start %q in bracket", ch)
		}
		atom.symbol = sym
		atom.aromatic = true
		j++
	}

	for j < len(body) {
		switch c := body[j]; {
		case c == '@': // stereo descriptor, ignored
			j++
		case c == 'H':
			atom.hCount = 1
			j++
			if j < len(body) && isDigit(body[j]) {
				atom.hCount = int(body[j] - '0')
				j++
			}
		case c == '+' || c == '-':
			sign := 1
			if c == '-' {
				sign = -1
			}
			j++
			if j < len(body) && isDigit(body[j]) {
				atom.charge = sign * int(body[j]-'0')
				j++
			} else {
				atom.charge = sign
				for j < len(body) && body[j] == c {
					atom.charge += sign
					j++
				}
			}
		case c == ':': // atom class, ignored
			j++
			for j < len(body) && isDigit(body[j]) {
				j++
			}
		default:
			return parsedAtom{}, 0, fmt.Errorf("unexpected %q in bracket atom", c)
		}
	}
	return atom, end + 1, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Structure assembly
// ─────────────────────────────────────────────────────────────────────────────

func (st *state) addAtom(a parsedAtom, prev, order int) int {
	st.atoms = append(st.atoms, a)
	idx := len(st.atoms) - 1
	if prev >= 0 {
		st.addBond(prev, idx, order)
	}
	return idx
}

func (st *state) addBond(a, b, order int) {
	st.bonds = append(st.bonds, bondRec{a: a, b: b, order: order})
}

// bondOrderSum returns the total bond order at atom i, counting aromatic ring
// membership once for the delocalised system.
func (st *state) bondOrderSum(i int) int {
	sum := 0
	for _, b := range st.bonds {
		if b.a == i || b.b == i {
			sum += b.order
		}
	}
	if st.atoms[i].aromatic {
		sum++
	}
	return sum
}

// addHydrogens appends implicit and bracket-declared hydrogens as explicit
// atoms bonded to their heavy atom.
func (st *state) addHydrogens() {
	heavy := len(st.atoms)
	for i := 0; i < heavy; i++ {
		a := st.atoms[i]
		n := a.hCount
		if n < 0 {
			n = 0
			if v, ok := valences[a.symbol]; ok {
				n = v - st.bondOrderSum(i)
				if n < 0 {
					n = 0
				}
			}
		}
		for k := 0; k < n; k++ {
			st.atoms = append(st.atoms, parsedAtom{symbol: "H"})
			st.addBond(i, len(st.atoms)-1, 1)
		}
	}
}

func (st *state) edges() [][2]int {
	out := make([][2]int, len(st.bonds))
	for i, b := range st.bonds {
		out[i] = [2]int{b.a, b.b}
	}
	return out
}

func (st *state) charge() int {
	total := 0
	for _, a := range st.atoms {
		total += a.charge
	}
	return total
}

// multiplicity guesses the spin multiplicity from electron-count parity:
// an odd electron count is a doublet, everything else a singlet.  Unknown
// elements disable the guess.
func (st *state) multiplicity() int {
	electrons := 0
	for _, a := range st.atoms {
		z, ok := atomicNumbers[a.symbol]
		if !ok {
			return 1
		}
		electrons += z - a.charge
	}
	if electrons%2 != 0 {
		return 2
	}
	return 1
}

// layout grows a rough 3D geometry over the bond graph: each atom is placed
// one covalent bond length from its first placed neighbour, in a jittered
// direction away from the placed centroid.  Deterministic for a given
// notation.
func (st *state) layout() []molecule.Atom {
	n := len(st.atoms)
	out := make([]molecule.Atom, n)
	for i := range out {
		out[i] = molecule.Atom{Label: st.atoms[i].symbol}
	}

	adj := make([][]int, n)
	for _, b := range st.bonds {
		adj[b.a] = append(adj[b.a], b.b)
		adj[b.b] = append(adj[b.b], b.a)
	}

	rng := rand.New(rand.NewSource(1))
	placed := make([]bool, n)
	offset := 0.0
	for root := 0; root < n; root++ {
		if placed[root] {
			continue
		}
		out[root].X = offset
		placed[root] = true
		offset += 5.0

		queue := []int{root}
		for len(queue) > 0 {
			parent := queue[0]
			queue = queue[1:]
			for _, child := range adj[parent] {
				if placed[child] {
					continue
				}
				r0 := molecule.CovalentRadius(out[parent].Label) + molecule.CovalentRadius(out[child].Label)
				dx := 1 + 0.8*(2*rng.Float64()-1)
				dy := 0.8 * (2*rng.Float64() - 1)
				dz := 0.8 * (2*rng.Float64() - 1)
				norm := math.Sqrt(dx*dx + dy*dy + dz*dz)
				out[child].X = out[parent].X + r0*dx/norm
				out[child].Y = out[parent].Y + r0*dy/norm
				out[child].Z = out[parent].Z + r0*dz/norm
				placed[child] = true
				queue = append(queue, child)
			}
		}
	}
	return out
}
