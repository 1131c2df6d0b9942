// Package exact computes reference ground-state energies by exact
// diagonalisation of qubit operators.
package exact

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
	"math/rand"

	"github.com/san-kum/vqelab/internal/mapping"
	"github.com/san-kum/vqelab/internal/pauli"
	"gonum.org/v1/gonum/mat"
)

var (
	ErrNotHermitian  = errors.New("exact: operator is not Hermitian")
	ErrFactorization = errors.New("exact: eigendecomposition failed")
	ErrEmptySector   = errors.New("exact: particle sector is empty")
)

// DenseLimit is the largest Hilbert space diagonalised densely; above it
// Lanczos is used.
const DenseLimit = 256

// GroundEnergy returns the lowest eigenvalue of op over the full space.
func GroundEnergy(op *pauli.Op) (float64, error) {
	if !op.IsHermitian(1e-10) {
		return 0, ErrNotHermitian
	}
	c := op.Compile()
	dim := c.Dim()
	if dim <= DenseLimit {
		basis := make([]uint64, dim)
		for i := range basis {
			basis[i] = uint64(i)
		}
		return denseGround(c, basis)
	}
	return Lanczos(c, 300, 1e-12)
}

// SectorGroundEnergy restricts op to states with na α and nb β electrons,
// where modes 0..nModes/2-1 are α and the rest β, and returns the lowest
// eigenvalue there.
func SectorGroundEnergy(op *pauli.Op, m mapping.Mapper, nModes, na, nb int) (float64, error) {
	if !op.IsHermitian(1e-10) {
		return 0, ErrNotHermitian
	}
	if nModes%2 != 0 {
		return 0, fmt.Errorf("exact: %d modes cannot split into two spin blocks", nModes)
	}
	basis := SectorBasis(m, nModes, na, nb)
	if len(basis) == 0 {
		return 0, ErrEmptySector
	}
	return denseGround(op.Compile(), basis)
}

// SectorBasis lists the qubit basis states encoding every occupation with
// na α and nb β electrons.
func SectorBasis(m mapping.Mapper, nModes, na, nb int) []uint64 {
	half := nModes / 2
	alphas := combinations(half, na)
	betas := combinations(half, nb)
	out := make([]uint64, 0, len(alphas)*len(betas))
	occ := make([]bool, nModes)
	for _, a := range alphas {
		for _, b := range betas {
			for i := range occ {
				occ[i] = false
			}
			for _, i := range a {
				occ[i] = true
			}
			for _, i := range b {
				occ[half+i] = true
			}
			out = append(out, m.Occupation(occ))
		}
	}
	return out
}

// combinations returns every k-subset of 0..n-1 in lexicographic order.
func combinations(n, k int) [][]int {
	if k < 0 || k > n {
		return nil
	}
	var out [][]int
	cur := make([]int, 0, k)
	var rec func(start int)
	rec = func(start int) {
		if len(cur) == k {
			out = append(out, append([]int(nil), cur...))
			return
		}
		for i := start; i < n; i++ {
			cur = append(cur, i)
			rec(i + 1)
			cur = cur[:len(cur)-1]
		}
	}
	rec(0)
	return out
}

// denseGround diagonalises the Hermitian matrix H restricted to basis via
// the real symmetric embedding [[A, -B], [B, A]] of H = A + iB, whose
// spectrum is that of H with every eigenvalue doubled.
func denseGround(c *pauli.Compiled, basis []uint64) (float64, error) {
	n := len(basis)
	emb := mat.NewSymDense(2*n, nil)
	for i, r := range basis {
		for j := 0; j <= i; j++ {
			h := c.Element(r, basis[j])
			a, b := real(h), imag(h)
			emb.SetSym(i, j, a)
			emb.SetSym(n+i, n+j, a)
			emb.SetSym(n+i, j, b)
			if i != j {
				emb.SetSym(n+j, i, -b)
			}
		}
	}
	var eig mat.EigenSym
	if !eig.Factorize(emb, false) {
		return 0, ErrFactorization
	}
	return eig.Values(nil)[0], nil
}

// Lanczos estimates the lowest eigenvalue with full reorthogonalisation,
// stopping after maxIter steps or when the estimate moves less than tol.
func Lanczos(c *pauli.Compiled, maxIter int, tol float64) (float64, error) {
	if maxIter < 1 {
		return 0, fmt.Errorf("exact: lanczos needs at least one step, got %d", maxIter)
	}
	dim := c.Dim()
	if maxIter > dim {
		maxIter = dim
	}
	rng := rand.New(rand.NewSource(1))
	v := make([]complex128, dim)
	for i := range v {
		v[i] = complex(rng.Float64()-0.5, 0)
	}
	normalize(v)

	var vecs [][]complex128
	var alpha, beta []float64
	w := make([]complex128, dim)
	est, prev := math.Inf(1), math.Inf(1)

	for k := 0; k < maxIter; k++ {
		vecs = append(vecs, append([]complex128(nil), v...))
		c.Apply(w, v)
		a := real(dot(v, w))
		alpha = append(alpha, a)

		// Full reorthogonalisation against every stored vector.
		for pass := 0; pass < 2; pass++ {
			for _, q := range vecs {
				proj := dot(q, w)
				for i := range w {
					w[i] -= proj * q[i]
				}
			}
		}

		var err error
		if est, err = tridiagonalMin(alpha, beta); err != nil {
			return 0, err
		}
		b := norm(w)
		if math.Abs(est-prev) < tol || b < 1e-12 {
			return est, nil
		}
		prev = est
		beta = append(beta, b)
		for i := range v {
			v[i] = w[i] / complex(b, 0)
		}
	}
	return est, nil
}

func tridiagonalMin(alpha, beta []float64) (float64, error) {
	m := len(alpha)
	t := mat.NewSymDense(m, nil)
	for i := 0; i < m; i++ {
		t.SetSym(i, i, alpha[i])
		if i+1 < m {
			t.SetSym(i, i+1, beta[i])
		}
	}
	var eig mat.EigenSym
	if !eig.Factorize(t, false) {
		return 0, ErrFactorization
	}
	return eig.Values(nil)[0], nil
}

func dot(a, b []complex128) complex128 {
	var s complex128
	for i := range a {
		s += cmplx.Conj(a[i]) * b[i]
	}
	return s
}

func norm(v []complex128) float64 {
	return math.Sqrt(real(dot(v, v)))
}

func normalize(v []complex128) {
	n := complex(norm(v), 0)
	for i := range v {
		v[i] /= n
	}
}
