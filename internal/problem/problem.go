// Package problem builds the electronic-structure problem for a molecule
// at a given bond length: driver, Hartree-Fock, MO integrals and the
// freeze-core and active-space reductions.
package problem

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/san-kum/vqelab/internal/chem"
	"github.com/san-kum/vqelab/internal/fermion"
	"github.com/san-kum/vqelab/internal/scf"
	"gonum.org/v1/gonum/mat"
)

// ErrInvalidActiveSpace is wrapped by BuildError for active-space violations.
var ErrInvalidActiveSpace = errors.New("problem: invalid active space")

// BuildError reports a failed transformation step.
type BuildError struct {
	Stage  string
	Reason string
	Err    error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("problem: %s: %s", e.Stage, e.Reason)
}

func (e *BuildError) Unwrap() error { return e.Err }

// ActiveSpace selects Electrons electrons in Orbitals spatial orbitals.
type ActiveSpace struct {
	Electrons int
	Orbitals  int
}

func (a ActiveSpace) String() string { return fmt.Sprintf("%de%do", a.Electrons, a.Orbitals) }

// Meta describes a built problem.
type Meta struct {
	Molecule           string       `json:"molecule"`
	BondLength         float64      `json:"r"`
	Basis              string       `json:"basis"`
	FreezeCore         bool         `json:"freeze_core"`
	Active             *ActiveSpace `json:"active,omitempty"`
	Geometry           string       `json:"geometry"`
	NumParticles       [2]int       `json:"num_particles"`
	NumSpatialOrbitals int          `json:"num_spatial_orbitals"`
	NumSpinOrbitals    int          `json:"num_spin_orbitals"`
	HFEnergy           float64      `json:"hf_energy"`
	NuclearRepulsion   float64      `json:"nuclear_repulsion"`
	InactiveEnergy     float64      `json:"inactive_energy"`
	SCFIterations      int          `json:"scf_iterations"`
}

// Problem holds MO integrals over the active orbitals.
type Problem struct {
	Meta Meta

	n        int
	oneBody  *mat.SymDense
	twoBody  []float64
	constant float64
}

// Options tunes Build. The zero value uses scf.DefaultOptions.
type Options struct {
	SCF    scf.Options
	Logger *slog.Logger
}

// Build runs the driver for molecule at bond length r (Angstrom), then the
// freeze-core and active-space transformers when requested.
func Build(molecule string, r float64, basis string, freezeCore bool, active *ActiveSpace) (*Problem, Meta, error) {
	return BuildWithOptions(molecule, r, basis, freezeCore, active, Options{})
}

func BuildWithOptions(molecule string, r float64, basis string, freezeCore bool, active *ActiveSpace, opts Options) (*Problem, Meta, error) {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	atoms, err := chem.Geometry(molecule, r)
	if err != nil {
		return nil, Meta{}, err
	}
	functions, err := chem.BuildBasis(basis, atoms)
	if err != nil {
		return nil, Meta{}, err
	}
	mol := &chem.Molecule{Atoms: atoms}
	ints := chem.Compute(mol, functions)

	scfOpts := opts.SCF
	if scfOpts.MaxIter == 0 {
		scfOpts = scf.DefaultOptions()
	}
	if scfOpts.Logger == nil {
		scfOpts.Logger = log
	}
	hf, err := scf.RHF(ints, mol.Electrons(), scfOpts)
	if err != nil {
		return nil, Meta{}, fmt.Errorf("problem: driver: %w", err)
	}
	log.Debug("hartree-fock converged", "molecule", molecule, "r", r, "energy", hf.Energy, "iterations", hf.Iterations)

	nmo := ints.N
	h := transformOneBody(ints.CoreHamiltonian(), hf.Coefficients)
	g := transformTwoBody(ints, hf.Coefficients)

	electrons := mol.Electrons()
	first := 0
	if freezeCore {
		first = mol.FrozenCoreOrbitals()
		if 2*first > electrons {
			return nil, Meta{}, &BuildError{Stage: "freeze core", Reason: "more core orbitals than electron pairs", Err: ErrInvalidActiveSpace}
		}
		electrons -= 2 * first
	}
	count := nmo - first

	if active != nil {
		if err := validateActive(*active, electrons, count); err != nil {
			return nil, Meta{}, err
		}
		inactivePairs := (electrons - active.Electrons) / 2
		first += inactivePairs
		electrons = active.Electrons
		count = active.Orbitals
	}

	inactive := make([]int, first)
	for i := range inactive {
		inactive[i] = i
	}
	orbitals := make([]int, count)
	for i := range orbitals {
		orbitals[i] = first + i
	}

	fi, eInactive := inactiveFock(h, g, nmo, inactive)
	p := &Problem{
		n:        count,
		oneBody:  restrictOneBody(fi, orbitals),
		twoBody:  restrictTwoBody(g, nmo, orbitals),
		constant: ints.Repulsion + eInactive,
	}
	p.Meta = Meta{
		Molecule:           molecule,
		BondLength:         r,
		Basis:              basis,
		FreezeCore:         freezeCore,
		Active:             active,
		Geometry:           chem.AtomString(atoms),
		NumParticles:       [2]int{electrons / 2, electrons / 2},
		NumSpatialOrbitals: count,
		NumSpinOrbitals:    2 * count,
		HFEnergy:           hf.Energy,
		NuclearRepulsion:   ints.Repulsion,
		InactiveEnergy:     eInactive,
		SCFIterations:      hf.Iterations,
	}
	return p, p.Meta, nil
}

func validateActive(a ActiveSpace, electrons, orbitals int) error {
	fail := func(reason string) error {
		return &BuildError{Stage: "active space", Reason: reason, Err: ErrInvalidActiveSpace}
	}
	switch {
	case a.Electrons <= 0 || a.Orbitals <= 0:
		return fail(fmt.Sprintf("%s must select a positive number of electrons and orbitals", a))
	case a.Electrons > electrons:
		return fail(fmt.Sprintf("%d active electrons requested but only %d available", a.Electrons, electrons))
	case (electrons-a.Electrons)%2 != 0:
		return fail(fmt.Sprintf("%d inactive electrons is odd", electrons-a.Electrons))
	case a.Electrons > 2*a.Orbitals:
		return fail(fmt.Sprintf("%d electrons do not fit in %d orbitals", a.Electrons, a.Orbitals))
	case (electrons-a.Electrons)/2+a.Orbitals > orbitals:
		return fail(fmt.Sprintf("%d active orbitals requested but only %d available", a.Orbitals, orbitals-(electrons-a.Electrons)/2))
	}
	return nil
}

// NumSpatialOrbitals is the number of active spatial orbitals.
func (p *Problem) NumSpatialOrbitals() int { return p.n }

// NumSpinOrbitals is twice the spatial count.
func (p *Problem) NumSpinOrbitals() int { return 2 * p.n }

// NumParticles returns the (α, β) electron counts.
func (p *Problem) NumParticles() (int, int) { return p.Meta.NumParticles[0], p.Meta.NumParticles[1] }

// ConstantEnergy is nuclear repulsion plus the inactive-core energy.
func (p *Problem) ConstantEnergy() float64 { return p.constant }

// OneBody returns the effective one-electron integral h_pq.
func (p *Problem) OneBody(i, j int) float64 { return p.oneBody.At(i, j) }

// TwoBody returns the chemists' notation integral (pq|rs).
func (p *Problem) TwoBody(i, j, k, l int) float64 {
	n := p.n
	return p.twoBody[((i*n+j)*n+k)*n+l]
}

// HFOccupation marks the modes occupied in the Hartree-Fock determinant,
// α block first.
func (p *Problem) HFOccupation() []bool {
	na, nb := p.NumParticles()
	occ := make([]bool, 2*p.n)
	for i := 0; i < na; i++ {
		occ[i] = true
	}
	for i := 0; i < nb; i++ {
		occ[p.n+i] = true
	}
	return occ
}

// ReferenceEnergy is the electronic energy of the HF determinant within
// the active space, excluding ConstantEnergy.
func (p *Problem) ReferenceEnergy() float64 {
	na, _ := p.NumParticles()
	e := 0.0
	for i := 0; i < na; i++ {
		e += 2 * p.OneBody(i, i)
		for j := 0; j < na; j++ {
			e += 2*p.TwoBody(i, i, j, j) - p.TwoBody(i, j, j, i)
		}
	}
	return e
}

// Hamiltonian returns the electronic Hamiltonian on 2n modes in block spin
// order (α modes 0..n-1, β modes n..2n-1):
//
//	H = Σ h_pq a†_pσ a_qσ + ½ Σ (pq|rs) a†_pσ a†_rτ a_sτ a_qσ
func (p *Problem) Hamiltonian() *fermion.Op {
	n := p.n
	op := fermion.New(2 * n)
	const tol = 1e-12
	spins := [2]int{0, n}

	for _, s := range spins {
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				if v := p.OneBody(i, j); abs(v) > tol {
					op.Add(complex(v, 0), fermion.Create(s+i), fermion.Annihilate(s+j))
				}
			}
		}
	}
	for _, s := range spins {
		for _, u := range spins {
			for i := 0; i < n; i++ {
				for j := 0; j < n; j++ {
					for k := 0; k < n; k++ {
						for l := 0; l < n; l++ {
							v := p.TwoBody(i, j, k, l)
							if abs(v) <= tol {
								continue
							}
							if s == u && (i == k || j == l) {
								continue
							}
							op.Add(complex(0.5*v, 0),
								fermion.Create(s+i), fermion.Create(u+k),
								fermion.Annihilate(u+l), fermion.Annihilate(s+j))
						}
					}
				}
			}
		}
	}
	return op.Simplify(tol)
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
