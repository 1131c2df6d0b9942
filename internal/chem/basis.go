package chem

import (
	"fmt"
	"math"
	"strings"
)

// Shell is a contracted shell of angular momentum L on one atom.
type Shell struct {
	L     int
	Exps  []float64
	Coefs []float64
}

var (
	sto3g1s = []float64{0.1543289673, 0.5353281423, 0.4446345422}
	sto3g2s = []float64{-0.09996722919, 0.3995128261, 0.7001154689}
	sto3g2p = []float64{0.155916275, 0.6076837186, 0.3919573931}
)

var sto3g = map[string][]Shell{
	"H": {
		{L: 0, Exps: []float64{3.42525091, 0.62391373, 0.16885540}, Coefs: sto3g1s},
	},
	"He": {
		{L: 0, Exps: []float64{6.36242139, 1.15892300, 0.31364979}, Coefs: sto3g1s},
	},
	"Li": {
		{L: 0, Exps: []float64{16.1195750, 2.9362007, 0.7946505}, Coefs: sto3g1s},
		{L: 0, Exps: []float64{0.6362897, 0.1478601, 0.0480887}, Coefs: sto3g2s},
		{L: 1, Exps: []float64{0.6362897, 0.1478601, 0.0480887}, Coefs: sto3g2p},
	},
	"Be": {
		{L: 0, Exps: []float64{30.1678710, 5.4951153, 1.4871927}, Coefs: sto3g1s},
		{L: 0, Exps: []float64{1.3148331, 0.3055389, 0.0993707}, Coefs: sto3g2s},
		{L: 1, Exps: []float64{1.3148331, 0.3055389, 0.0993707}, Coefs: sto3g2p},
	},
}

var basisSets = map[string]map[string][]Shell{
	"sto3g": sto3g,
}

// NormalizeBasisName folds spelling variants such as "STO-3G" to "sto3g".
func NormalizeBasisName(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	n = strings.ReplaceAll(n, "-", "")
	n = strings.ReplaceAll(n, "_", "")
	return n
}

// BasisFunction is a normalised contracted Cartesian Gaussian
// x^l y^m z^n exp(-a r^2) centred on an atom.
type BasisFunction struct {
	Atom   int
	Center [3]float64
	Powers [3]int
	Exps   []float64
	Coefs  []float64
}

// L returns the total angular momentum.
func (b *BasisFunction) L() int { return b.Powers[0] + b.Powers[1] + b.Powers[2] }

var cartesian = map[int][][3]int{
	0: {{0, 0, 0}},
	1: {{1, 0, 0}, {0, 1, 0}, {0, 0, 1}},
}

// BuildBasis expands the named basis over atoms into normalised functions.
func BuildBasis(name string, atoms []Atom) ([]BasisFunction, error) {
	set, ok := basisSets[NormalizeBasisName(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedBasis, name)
	}
	var funcs []BasisFunction
	for i, a := range atoms {
		shells, ok := set[a.Symbol]
		if !ok {
			return nil, fmt.Errorf("%w: %s has no %s functions", ErrUnsupportedBasis, name, a.Symbol)
		}
		center := a.Bohr()
		for _, sh := range shells {
			for _, pw := range cartesian[sh.L] {
				bf := BasisFunction{
					Atom:   i,
					Center: center,
					Powers: pw,
					Exps:   append([]float64(nil), sh.Exps...),
					Coefs:  make([]float64, len(sh.Coefs)),
				}
				for k, c := range sh.Coefs {
					bf.Coefs[k] = c * primitiveNorm(sh.Exps[k], pw)
				}
				normalize(&bf)
				funcs = append(funcs, bf)
			}
		}
	}
	return funcs, nil
}

func primitiveNorm(a float64, pw [3]int) float64 {
	l := pw[0] + pw[1] + pw[2]
	num := math.Pow(2*a/math.Pi, 0.75) * math.Pow(4*a, float64(l)/2)
	den := math.Sqrt(doubleFactorial(2*pw[0]-1) * doubleFactorial(2*pw[1]-1) * doubleFactorial(2*pw[2]-1))
	return num / den
}

// normalize rescales the contraction so that <b|b> = 1.
func normalize(b *BasisFunction) {
	s := Overlap(b, b)
	f := 1 / math.Sqrt(s)
	for i := range b.Coefs {
		b.Coefs[i] *= f
	}
}

func doubleFactorial(n int) float64 {
	r := 1.0
	for ; n > 1; n -= 2 {
		r *= float64(n)
	}
	return r
}
