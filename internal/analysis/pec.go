package analysis

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/vqelab/internal/chem"
	"gonum.org/v1/gonum/mat"
)

var (
	ErrTooFewPoints = errors.New("analysis: need at least three points")
	ErrEdgeMinimum  = errors.New("analysis: lowest energy lies at the edge of the scan")
	ErrNotBound     = errors.New("analysis: fitted curvature is not positive")
)

// Physical constants (CODATA 2018).
const (
	hartreeJoule = 4.3597447222071e-18
	amuKg        = 1.66053906660e-27
	angstromM    = 1e-10
	lightCmS     = 2.99792458e10
)

// Isotope masses in amu.
var atomicMass = map[string]float64{
	"H":  1.00782503207,
	"Li": 7.0160034366,
}

// Equilibrium is the fitted minimum of a curve. Curvature is d²E/dr² in
// Ha/Å².
type Equilibrium struct {
	R         float64 `json:"r0"`
	Energy    float64 `json:"e0"`
	Curvature float64 `json:"curvature"`
}

type point struct{ r, e float64 }

func sorted(rs, es []float64) ([]point, error) {
	if len(rs) != len(es) {
		return nil, fmt.Errorf("analysis: %d bond lengths but %d energies", len(rs), len(es))
	}
	pts := make([]point, len(rs))
	for i := range rs {
		pts[i] = point{rs[i], es[i]}
	}
	sort.Slice(pts, func(i, j int) bool { return pts[i].r < pts[j].r })
	return pts, nil
}

// FitEquilibrium fits E = a + b x + c x² with x = r - r_min by least
// squares over up to five samples centred on the lowest one.
//
// When the lowest sample is the first or last of the scan the sample
// itself is returned together with ErrEdgeMinimum.
func FitEquilibrium(rs, es []float64) (Equilibrium, error) {
	pts, err := sorted(rs, es)
	if err != nil {
		return Equilibrium{}, err
	}
	if len(pts) < 3 {
		return Equilibrium{}, ErrTooFewPoints
	}

	lo := 0
	for i, p := range pts {
		if p.e < pts[lo].e {
			lo = i
		}
	}
	if lo == 0 || lo == len(pts)-1 {
		return Equilibrium{R: pts[lo].r, Energy: pts[lo].e}, ErrEdgeMinimum
	}

	first, last := max(lo-2, 0), min(lo+2, len(pts)-1)
	n := last - first + 1
	a := mat.NewDense(n, 3, nil)
	y := mat.NewVecDense(n, nil)
	for k := 0; k < n; k++ {
		x := pts[first+k].r - pts[lo].r
		a.SetRow(k, []float64{1, x, x * x})
		y.SetVec(k, pts[first+k].e)
	}

	var coef mat.VecDense
	if err := coef.SolveVec(a, y); err != nil {
		return Equilibrium{}, fmt.Errorf("analysis: quadratic fit: %w", err)
	}
	c0, c1, c2 := coef.AtVec(0), coef.AtVec(1), coef.AtVec(2)
	if c2 <= 0 {
		return Equilibrium{R: pts[lo].r, Energy: pts[lo].e}, ErrNotBound
	}
	return Equilibrium{
		R:         pts[lo].r - c1/(2*c2),
		Energy:    c0 - c1*c1/(4*c2),
		Curvature: 2 * c2,
	}, nil
}

// ReducedMass returns μ in amu for a supported diatomic.
func ReducedMass(molecule string) (float64, error) {
	atoms, err := chem.Geometry(molecule, 1)
	if err != nil {
		return 0, err
	}
	if len(atoms) != 2 {
		return 0, fmt.Errorf("analysis: %s is not diatomic", molecule)
	}
	m1, ok1 := atomicMass[atoms[0].Symbol]
	m2, ok2 := atomicMass[atoms[1].Symbol]
	if !ok1 || !ok2 {
		return 0, fmt.Errorf("analysis: no mass for %s", molecule)
	}
	return m1 * m2 / (m1 + m2), nil
}

// HarmonicFrequency converts a curvature in Ha/Å² and a reduced mass in
// amu to a wavenumber in cm⁻¹.
func HarmonicFrequency(curvature, reducedMass float64) float64 {
	if curvature <= 0 || reducedMass <= 0 {
		return 0
	}
	k := curvature * hartreeJoule / (angstromM * angstromM)
	omega := math.Sqrt(k / (reducedMass * amuKg))
	return omega / (2 * math.Pi * lightCmS)
}

// Dissociation is E at the longest bond minus the lowest energy.
func Dissociation(rs, es []float64) (float64, error) {
	pts, err := sorted(rs, es)
	if err != nil {
		return 0, err
	}
	if len(pts) == 0 {
		return 0, ErrTooFewPoints
	}
	lowest := pts[0].e
	for _, p := range pts {
		lowest = math.Min(lowest, p.e)
	}
	return pts[len(pts)-1].e - lowest, nil
}

type Summary struct {
	Molecule     string      `json:"molecule"`
	Points       int         `json:"points"`
	Equilibrium  Equilibrium `json:"equilibrium"`
	Frequency    float64     `json:"harmonic_frequency_cm"`
	Dissociation float64     `json:"dissociation_ha"`
	// Warning explains a partial result, for example a minimum at the
	// edge of the scan.
	Warning string `json:"warning,omitempty"`
}

// Summarize analyses one curve. An edge minimum is reported as a warning
// rather than an error.
func Summarize(molecule string, rs, es []float64) (*Summary, error) {
	s := &Summary{Molecule: molecule, Points: len(rs)}
	eq, err := FitEquilibrium(rs, es)
	switch {
	case errors.Is(err, ErrEdgeMinimum), errors.Is(err, ErrNotBound):
		s.Warning = err.Error()
	case err != nil:
		return nil, err
	}
	s.Equilibrium = eq
	if s.Dissociation, err = Dissociation(rs, es); err != nil {
		return nil, err
	}
	if eq.Curvature > 0 && molecule != "" {
		mu, err := ReducedMass(molecule)
		if err != nil {
			return nil, err
		}
		s.Frequency = HarmonicFrequency(eq.Curvature, mu)
	}
	return s, nil
}
