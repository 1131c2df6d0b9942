package chem

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// BohrRadius is the Angstrom length of one bohr.
const BohrRadius = 0.52917721092

var elements = map[string]int{
	"H": 1, "He": 2,
	"Li": 3, "Be": 4, "B": 5, "C": 6, "N": 7, "O": 8, "F": 9, "Ne": 10,
	"Na": 11, "Mg": 12, "Al": 13, "Si": 14, "P": 15, "S": 16, "Cl": 17, "Ar": 18,
}

// Atom is a nucleus at a position given in Angstrom.
type Atom struct {
	Symbol string
	Z      int
	Coords [3]float64
}

// Bohr returns the position in atomic units.
func (a Atom) Bohr() [3]float64 {
	return [3]float64{a.Coords[0] / BohrRadius, a.Coords[1] / BohrRadius, a.Coords[2] / BohrRadius}
}

// NewAtom looks up the nuclear charge of symbol.
func NewAtom(symbol string, x, y, z float64) (Atom, error) {
	sym := normalizeSymbol(symbol)
	charge, ok := elements[sym]
	if !ok {
		return Atom{}, fmt.Errorf("%w: %s", ErrUnknownElement, symbol)
	}
	return Atom{Symbol: sym, Z: charge, Coords: [3]float64{x, y, z}}, nil
}

func normalizeSymbol(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

// CoreOrbitals is the number of spatial orbitals frozen for an element.
func CoreOrbitals(z int) int {
	switch {
	case z > 18:
		return 9
	case z > 10:
		return 5
	case z > 2:
		return 1
	default:
		return 0
	}
}

// Molecule is a neutral or charged set of atoms.
type Molecule struct {
	Atoms  []Atom
	Charge int
	// Spin is 2S, the number of unpaired electrons.
	Spin int
}

// Electrons returns the total electron count.
func (m *Molecule) Electrons() int {
	n := -m.Charge
	for _, a := range m.Atoms {
		n += a.Z
	}
	return n
}

// NuclearRepulsion returns the Coulomb energy between nuclei in Hartree.
func (m *Molecule) NuclearRepulsion() float64 {
	e := 0.0
	for i := 0; i < len(m.Atoms); i++ {
		ri := m.Atoms[i].Bohr()
		for j := i + 1; j < len(m.Atoms); j++ {
			rj := m.Atoms[j].Bohr()
			d := math.Sqrt(sq(ri[0]-rj[0]) + sq(ri[1]-rj[1]) + sq(ri[2]-rj[2]))
			e += float64(m.Atoms[i].Z*m.Atoms[j].Z) / d
		}
	}
	return e
}

// FrozenCoreOrbitals sums CoreOrbitals over all atoms.
func (m *Molecule) FrozenCoreOrbitals() int {
	n := 0
	for _, a := range m.Atoms {
		n += CoreOrbitals(a.Z)
	}
	return n
}

// Geometry returns the diatomic geometry of molecule along z at bond length r.
func Geometry(molecule string, r float64) ([]Atom, error) {
	switch strings.ToLower(molecule) {
	case "h2":
		return []Atom{
			{Symbol: "H", Z: 1, Coords: [3]float64{0, 0, 0}},
			{Symbol: "H", Z: 1, Coords: [3]float64{0, 0, r}},
		}, nil
	case "lih":
		return []Atom{
			{Symbol: "Li", Z: 3, Coords: [3]float64{0, 0, 0}},
			{Symbol: "H", Z: 1, Coords: [3]float64{0, 0, r}},
		}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedMolecule, molecule)
}

// AtomString formats atoms as "Sym x y z; Sym x y z".
func AtomString(atoms []Atom) string {
	parts := make([]string, len(atoms))
	for i, a := range atoms {
		parts[i] = fmt.Sprintf("%s %.12f %.12f %.12f", a.Symbol, a.Coords[0], a.Coords[1], a.Coords[2])
	}
	return strings.Join(parts, "; ")
}

// ParseAtomString is the inverse of AtomString.
func ParseAtomString(s string) ([]Atom, error) {
	var atoms []Atom
	for _, part := range strings.Split(s, ";") {
		fields := strings.Fields(part)
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 4 {
			return nil, fmt.Errorf("%w: %q", ErrMalformedAtomString, strings.TrimSpace(part))
		}
		var xyz [3]float64
		for k := 0; k < 3; k++ {
			v, err := strconv.ParseFloat(fields[k+1], 64)
			if err != nil {
				return nil, fmt.Errorf("%w: %q", ErrMalformedAtomString, strings.TrimSpace(part))
			}
			xyz[k] = v
		}
		a, err := NewAtom(fields[0], xyz[0], xyz[1], xyz[2])
		if err != nil {
			return nil, err
		}
		atoms = append(atoms, a)
	}
	if len(atoms) == 0 {
		return nil, fmt.Errorf("%w: empty", ErrMalformedAtomString)
	}
	return atoms, nil
}

func sq(x float64) float64 { return x * x }
