package scf

import "gonum.org/v1/gonum/mat"

// diis keeps a bounded history of Fock matrices and their error vectors.
type diis struct {
	size   int
	focks  []*mat.SymDense
	errors []*mat.Dense
}

func newDIIS(size int) *diis {
	return &diis{size: size}
}

// extrapolate records (f, e) and returns the DIIS-mixed Fock matrix.
func (d *diis) extrapolate(f *mat.SymDense, e *mat.Dense) *mat.SymDense {
	d.focks = append(d.focks, f)
	d.errors = append(d.errors, e)
	if len(d.focks) > d.size {
		d.focks = d.focks[1:]
		d.errors = d.errors[1:]
	}

	for len(d.focks) >= 2 {
		coefs, ok := d.solve()
		if ok {
			n := f.SymmetricDim()
			out := mat.NewSymDense(n, nil)
			for k, c := range coefs {
				for i := 0; i < n; i++ {
					for j := 0; j <= i; j++ {
						out.SetSym(i, j, out.At(i, j)+c*d.focks[k].At(i, j))
					}
				}
			}
			return out
		}
		// Ill-conditioned subspace: drop the oldest entry and retry.
		d.focks = d.focks[1:]
		d.errors = d.errors[1:]
	}
	return f
}

func (d *diis) solve() ([]float64, bool) {
	m := len(d.errors)
	b := mat.NewDense(m+1, m+1, nil)
	rhs := mat.NewVecDense(m+1, nil)
	for i := 0; i < m; i++ {
		for j := 0; j <= i; j++ {
			v := mat.Dot(flat(d.errors[i]), flat(d.errors[j]))
			b.Set(i, j, v)
			b.Set(j, i, v)
		}
		b.Set(i, m, -1)
		b.Set(m, i, -1)
	}
	rhs.SetVec(m, -1)

	var x mat.VecDense
	if err := x.SolveVec(b, rhs); err != nil {
		return nil, false
	}
	coefs := make([]float64, m)
	for i := range coefs {
		coefs[i] = x.AtVec(i)
	}
	return coefs, true
}

func flat(a *mat.Dense) *mat.VecDense {
	r, c := a.Dims()
	data := make([]float64, 0, r*c)
	for i := 0; i < r; i++ {
		data = append(data, a.RawRowView(i)...)
	}
	return mat.NewVecDense(len(data), data)
}
