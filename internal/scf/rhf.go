// Package scf solves the closed-shell Hartree-Fock equations.
package scf

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/san-kum/vqelab/internal/chem"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrOpenShell is returned when RHF is asked for an odd electron count.
	ErrOpenShell = errors.New("scf: restricted Hartree-Fock needs an even number of electrons")

	// ErrLinearDependence indicates a near-singular overlap matrix.
	ErrLinearDependence = errors.New("scf: basis is linearly dependent")

	// ErrFactorization indicates a failed eigendecomposition.
	ErrFactorization = errors.New("scf: eigendecomposition failed")

	// ErrNotConverged is wrapped by ConvergenceError.
	ErrNotConverged = errors.New("scf: not converged")
)

// ConvergenceError reports the state of an SCF that ran out of iterations.
type ConvergenceError struct {
	Iterations  int
	Energy      float64
	DeltaEnergy float64
	DeltaDens   float64
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("scf: not converged after %d iterations (E=%.10f, dE=%.2e, dD=%.2e)",
		e.Iterations, e.Energy, e.DeltaEnergy, e.DeltaDens)
}

func (e *ConvergenceError) Unwrap() error { return ErrNotConverged }

type Options struct {
	MaxIter    int
	EnergyTol  float64
	DensityTol float64
	// DIIS is the subspace size; zero disables extrapolation.
	DIIS   int
	Logger *slog.Logger
}

func DefaultOptions() Options {
	return Options{
		MaxIter:    128,
		EnergyTol:  1e-10,
		DensityTol: 1e-8,
		DIIS:       8,
	}
}

// Result is a converged closed-shell determinant.
type Result struct {
	Energy          float64
	Electronic      float64
	OrbitalEnergies []float64
	// Coefficients has AO rows and MO columns, MOs ordered by energy.
	Coefficients *mat.Dense
	Density      *mat.SymDense
	Occupied     int
	Iterations   int
}

// RHF runs a restricted Hartree-Fock calculation for nelec electrons.
func RHF(in *chem.Integrals, nelec int, opts Options) (*Result, error) {
	if nelec%2 != 0 {
		return nil, ErrOpenShell
	}
	if opts.MaxIter <= 0 {
		opts.MaxIter = DefaultOptions().MaxIter
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	n := in.N
	nocc := nelec / 2
	if nocc > n {
		return nil, fmt.Errorf("scf: %d occupied orbitals exceed %d basis functions", nocc, n)
	}

	x, err := orthogonalizer(in.Overlap)
	if err != nil {
		return nil, err
	}
	h := in.CoreHamiltonian()

	eps, c, err := diagonalize(h, x)
	if err != nil {
		return nil, err
	}
	p := density(c, nocc)

	d := newDIIS(opts.DIIS)
	energy := 0.0
	for iter := 1; iter <= opts.MaxIter; iter++ {
		f := fock(in, h, p)
		eNew := electronicEnergy(h, f, p)

		if opts.DIIS > 0 {
			f = d.extrapolate(f, commutator(f, p, in.Overlap))
		}

		eps, c, err = diagonalize(f, x)
		if err != nil {
			return nil, err
		}
		pNew := density(c, nocc)

		dE := math.Abs(eNew - energy)
		dP := rmsDiff(p, pNew)
		energy = eNew
		p = pNew

		log.Debug("scf iteration", "iter", iter, "energy", energy+in.Repulsion, "dE", dE, "dD", dP)

		if dE < opts.EnergyTol && dP < opts.DensityTol {
			// Final energy from the converged density.
			f = fock(in, h, p)
			energy = electronicEnergy(h, f, p)
			return &Result{
				Energy:          energy + in.Repulsion,
				Electronic:      energy,
				OrbitalEnergies: eps,
				Coefficients:    c,
				Density:         p,
				Occupied:        nocc,
				Iterations:      iter,
			}, nil
		}
		if iter == opts.MaxIter {
			return nil, &ConvergenceError{Iterations: iter, Energy: energy + in.Repulsion, DeltaEnergy: dE, DeltaDens: dP}
		}
	}
	return nil, ErrNotConverged
}

// orthogonalizer returns S^{-1/2}.
func orthogonalizer(s *mat.SymDense) (*mat.Dense, error) {
	var eig mat.EigenSym
	if !eig.Factorize(s, true) {
		return nil, ErrFactorization
	}
	vals := eig.Values(nil)
	var u mat.Dense
	eig.VectorsTo(&u)

	d := mat.NewDiagDense(len(vals), nil)
	for i, v := range vals {
		if v < 1e-10 {
			return nil, ErrLinearDependence
		}
		d.SetDiag(i, 1/math.Sqrt(v))
	}
	var x mat.Dense
	x.Product(&u, d, u.T())
	return &x, nil
}

// diagonalize solves FC = SCe in the orthogonal basis x.
func diagonalize(f mat.Symmetric, x *mat.Dense) ([]float64, *mat.Dense, error) {
	var fp mat.Dense
	fp.Product(x.T(), f, x)

	var eig mat.EigenSym
	if !eig.Factorize(symmetrize(&fp), true) {
		return nil, nil, ErrFactorization
	}
	vals := eig.Values(nil)
	var v mat.Dense
	eig.VectorsTo(&v)

	var c mat.Dense
	c.Mul(x, &v)
	return vals, &c, nil
}

// density returns P = 2 C_occ C_occᵀ.
func density(c *mat.Dense, nocc int) *mat.SymDense {
	n, _ := c.Dims()
	p := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j <= i; j++ {
			s := 0.0
			for o := 0; o < nocc; o++ {
				s += c.At(i, o) * c.At(j, o)
			}
			p.SetSym(i, j, 2*s)
		}
	}
	return p
}

func fock(in *chem.Integrals, h, p *mat.SymDense) *mat.SymDense {
	n := in.N
	f := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j <= i; j++ {
			g := 0.0
			for k := 0; k < n; k++ {
				for l := 0; l < n; l++ {
					g += p.At(k, l) * (in.ERIAt(i, j, k, l) - 0.5*in.ERIAt(i, k, j, l))
				}
			}
			f.SetSym(i, j, h.At(i, j)+g)
		}
	}
	return f
}

func electronicEnergy(h, f, p *mat.SymDense) float64 {
	n := h.SymmetricDim()
	e := 0.0
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			e += p.At(i, j) * (h.At(i, j) + f.At(i, j))
		}
	}
	return 0.5 * e
}

// commutator returns the DIIS error FPS - SPF.
func commutator(f, p, s *mat.SymDense) *mat.Dense {
	var fps, spf mat.Dense
	fps.Product(f, p, s)
	spf.Product(s, p, f)
	fps.Sub(&fps, &spf)
	return &fps
}

func symmetrize(a *mat.Dense) *mat.SymDense {
	n, _ := a.Dims()
	s := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j <= i; j++ {
			s.SetSym(i, j, 0.5*(a.At(i, j)+a.At(j, i)))
		}
	}
	return s
}

func rmsDiff(a, b *mat.SymDense) float64 {
	n := a.SymmetricDim()
	s := 0.0
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			d := a.At(i, j) - b.At(i, j)
			s += d * d
		}
	}
	return math.Sqrt(s / float64(n*n))
}
