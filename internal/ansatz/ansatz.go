// Package ansatz builds parameterised trial circuits for VQE.
package ansatz

import (
	"errors"
	"fmt"
	"strings"

	"github.com/san-kum/vqelab/internal/circuit"
	"github.com/san-kum/vqelab/internal/fermion"
	"github.com/san-kum/vqelab/internal/mapping"
	"github.com/san-kum/vqelab/internal/pauli"
	"github.com/san-kum/vqelab/internal/problem"
)

var ErrUnsupportedAnsatz = errors.New("Only UCCSD is supported")

// Excitation moves electrons from Occupied to Virtual spin orbitals.
type Excitation struct {
	Occupied []int
	Virtual  []int
}

func (e Excitation) String() string {
	return fmt.Sprintf("%v->%v", e.Occupied, e.Virtual)
}

// Ansatz is a Hartree-Fock reference followed by one exponentiated
// excitation generator per parameter.
type Ansatz struct {
	Name        string
	Circuit     *circuit.Circuit
	Excitations []Excitation
	Generators  []*pauli.Op
	Reference   uint64
}

func (a *Ansatz) NumParameters() int { return len(a.Excitations) }

func (a *Ansatz) NumQubits() int { return a.Circuit.NumQubits }

// Build returns the ansatz named name for p under m together with its
// initial point. Only "uccsd" is known; its initial point is all zeros,
// which prepares the Hartree-Fock state.
func Build(p *problem.Problem, m mapping.Mapper, name string) (*Ansatz, []float64, error) {
	if strings.ToLower(strings.TrimSpace(name)) != "uccsd" {
		return nil, nil, ErrUnsupportedAnsatz
	}
	n := p.NumSpatialOrbitals()
	na, nb := p.NumParticles()
	a, err := UCCSD(n, na, nb, p.HFOccupation(), m)
	if err != nil {
		return nil, nil, err
	}
	return a, make([]float64, a.NumParameters()), nil
}

// UCCSD builds the spin-preserving singles and doubles ansatz on n
// spatial orbitals in block spin order.
func UCCSD(n, na, nb int, occupation []bool, m mapping.Mapper) (*Ansatz, error) {
	if na > n || nb > n {
		return nil, fmt.Errorf("ansatz: %d/%d electrons exceed %d orbitals", na, nb, n)
	}
	nq := 2 * n
	ref := m.Occupation(occupation)

	a := &Ansatz{Name: "UCCSD", Circuit: circuit.New(nq), Reference: ref}
	for q := 0; q < nq; q++ {
		if ref>>q&1 == 1 {
			a.Circuit.X(q)
		}
	}

	a.Excitations = Excitations(n, na, nb)
	for k, ex := range a.Excitations {
		g := generator(nq, ex)
		qop := m.Map(g)
		if !qop.IsHermitian(1e-10) {
			return nil, fmt.Errorf("ansatz: generator %s is not Hermitian", ex)
		}
		terms := make([]pauli.Term, 0, qop.Len())
		for _, t := range qop.Terms() {
			terms = append(terms, pauli.Term{String: t.String, Coeff: complex(real(t.Coeff), 0)})
		}
		a.Generators = append(a.Generators, qop)
		a.Circuit.PauliEvolution(terms, circuit.Theta(k))
	}
	a.Circuit.NumParams = len(a.Excitations)
	return a, nil
}

// generator returns i(T - T†) for the excitation operator T.
func generator(numModes int, ex Excitation) *fermion.Op {
	t := fermion.Excitation(numModes, ex.Occupied, ex.Virtual)
	return t.Scale(1i).AddOp(t.Adjoint().Scale(-1i)).Simplify(1e-14)
}

// Excitations lists singles (α then β) followed by doubles (αα, αβ, ββ).
func Excitations(n, na, nb int) []Excitation {
	occA, virA := spinRange(0, na, n)
	occB, virB := spinRange(n, nb, n)

	var out []Excitation
	for _, o := range occA {
		for _, v := range virA {
			out = append(out, Excitation{Occupied: []int{o}, Virtual: []int{v}})
		}
	}
	for _, o := range occB {
		for _, v := range virB {
			out = append(out, Excitation{Occupied: []int{o}, Virtual: []int{v}})
		}
	}
	out = append(out, sameSpinDoubles(occA, virA)...)
	for _, oa := range occA {
		for _, va := range virA {
			for _, ob := range occB {
				for _, vb := range virB {
					out = append(out, Excitation{Occupied: []int{oa, ob}, Virtual: []int{va, vb}})
				}
			}
		}
	}
	out = append(out, sameSpinDoubles(occB, virB)...)
	return out
}

func sameSpinDoubles(occ, vir []int) []Excitation {
	var out []Excitation
	for i := 0; i < len(occ); i++ {
		for j := i + 1; j < len(occ); j++ {
			for a := 0; a < len(vir); a++ {
				for b := a + 1; b < len(vir); b++ {
					out = append(out, Excitation{
						Occupied: []int{occ[i], occ[j]},
						Virtual:  []int{vir[a], vir[b]},
					})
				}
			}
		}
	}
	return out
}

func spinRange(offset, occupied, n int) (occ, vir []int) {
	for i := 0; i < n; i++ {
		if i < occupied {
			occ = append(occ, offset+i)
		} else {
			vir = append(vir, offset+i)
		}
	}
	return occ, vir
}
