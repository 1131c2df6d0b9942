package problem

import (
	"github.com/san-kum/vqelab/internal/chem"
	"gonum.org/v1/gonum/mat"
)

// transformOneBody returns Cᵀ h C.
func transformOneBody(h mat.Symmetric, c *mat.Dense) *mat.SymDense {
	var t mat.Dense
	t.Product(c.T(), h, c)
	n, _ := t.Dims()
	out := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j <= i; j++ {
			out.SetSym(i, j, 0.5*(t.At(i, j)+t.At(j, i)))
		}
	}
	return out
}

// transformTwoBody moves the AO electron repulsion integrals to the MO
// basis one index at a time.
func transformTwoBody(in *chem.Integrals, c *mat.Dense) []float64 {
	n := in.N
	idx := func(i, j, k, l int) int { return ((i*n+j)*n+k)*n + l }

	a := make([]float64, n*n*n*n)
	for p := 0; p < n; p++ {
		for j := 0; j < n; j++ {
			for k := 0; k < n; k++ {
				for l := 0; l < n; l++ {
					s := 0.0
					for i := 0; i < n; i++ {
						s += c.At(i, p) * in.ERIAt(i, j, k, l)
					}
					a[idx(p, j, k, l)] = s
				}
			}
		}
	}
	b := make([]float64, len(a))
	for p := 0; p < n; p++ {
		for q := 0; q < n; q++ {
			for k := 0; k < n; k++ {
				for l := 0; l < n; l++ {
					s := 0.0
					for j := 0; j < n; j++ {
						s += c.At(j, q) * a[idx(p, j, k, l)]
					}
					b[idx(p, q, k, l)] = s
				}
			}
		}
	}
	for p := 0; p < n; p++ {
		for q := 0; q < n; q++ {
			for r := 0; r < n; r++ {
				for l := 0; l < n; l++ {
					s := 0.0
					for k := 0; k < n; k++ {
						s += c.At(k, r) * b[idx(p, q, k, l)]
					}
					a[idx(p, q, r, l)] = s
				}
			}
		}
	}
	for p := 0; p < n; p++ {
		for q := 0; q < n; q++ {
			for r := 0; r < n; r++ {
				for s := 0; s < n; s++ {
					v := 0.0
					for l := 0; l < n; l++ {
						v += c.At(l, s) * a[idx(p, q, r, l)]
					}
					b[idx(p, q, r, s)] = v
				}
			}
		}
	}
	return b
}

// inactiveFock folds doubly occupied inactive orbitals into an effective
// one-body operator F^I_pq = h_pq + Σ_i 2(pq|ii) - (pi|iq) and returns it
// with the inactive energy Σ_i h_ii + F^I_ii.
func inactiveFock(h *mat.SymDense, g []float64, n int, inactive []int) (*mat.SymDense, float64) {
	idx := func(i, j, k, l int) int { return ((i*n+j)*n+k)*n + l }
	f := mat.NewSymDense(n, nil)
	for p := 0; p < n; p++ {
		for q := 0; q <= p; q++ {
			v := h.At(p, q)
			for _, i := range inactive {
				v += 2*g[idx(p, q, i, i)] - g[idx(p, i, i, q)]
			}
			f.SetSym(p, q, v)
		}
	}
	e := 0.0
	for _, i := range inactive {
		e += h.At(i, i) + f.At(i, i)
	}
	return f, e
}

func restrictOneBody(f *mat.SymDense, orbitals []int) *mat.SymDense {
	m := len(orbitals)
	out := mat.NewSymDense(m, nil)
	for a, p := range orbitals {
		for b := 0; b <= a; b++ {
			out.SetSym(a, b, f.At(p, orbitals[b]))
		}
	}
	return out
}

func restrictTwoBody(g []float64, n int, orbitals []int) []float64 {
	m := len(orbitals)
	out := make([]float64, m*m*m*m)
	for a, p := range orbitals {
		for b, q := range orbitals {
			for c, r := range orbitals {
				for d, s := range orbitals {
					out[((a*m+b)*m+c)*m+d] = g[((p*n+q)*n+r)*n+s]
				}
			}
		}
	}
	return out
}
