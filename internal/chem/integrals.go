package chem

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/mathext"
)

// Integrals holds the AO integrals of a basis in atomic units.
type Integrals struct {
	N         int
	Overlap   *mat.SymDense
	Kinetic   *mat.SymDense
	Nuclear   *mat.SymDense
	ERI       []float64
	Repulsion float64
}

// ERIAt returns the chemists' notation integral (ij|kl).
func (in *Integrals) ERIAt(i, j, k, l int) float64 {
	n := in.N
	return in.ERI[((i*n+j)*n+k)*n+l]
}

// CoreHamiltonian returns T + V.
func (in *Integrals) CoreHamiltonian() *mat.SymDense {
	h := mat.NewSymDense(in.N, nil)
	h.AddSym(in.Kinetic, in.Nuclear)
	return h
}

// Compute evaluates all one- and two-electron integrals over basis for mol.
func Compute(mol *Molecule, basis []BasisFunction) *Integrals {
	n := len(basis)
	in := &Integrals{
		N:         n,
		Overlap:   mat.NewSymDense(n, nil),
		Kinetic:   mat.NewSymDense(n, nil),
		Nuclear:   mat.NewSymDense(n, nil),
		ERI:       make([]float64, n*n*n*n),
		Repulsion: mol.NuclearRepulsion(),
	}

	for i := 0; i < n; i++ {
		for j := 0; j <= i; j++ {
			in.Overlap.SetSym(i, j, Overlap(&basis[i], &basis[j]))
			in.Kinetic.SetSym(i, j, Kinetic(&basis[i], &basis[j]))
			v := 0.0
			for _, a := range mol.Atoms {
				v -= float64(a.Z) * NuclearAttraction(&basis[i], &basis[j], a.Bohr())
			}
			in.Nuclear.SetSym(i, j, v)
		}
	}

	for i := 0; i < n; i++ {
		for j := 0; j <= i; j++ {
			ij := i*(i+1)/2 + j
			for k := 0; k < n; k++ {
				for l := 0; l <= k; l++ {
					kl := k*(k+1)/2 + l
					if kl > ij {
						continue
					}
					v := ElectronRepulsion(&basis[i], &basis[j], &basis[k], &basis[l])
					for _, idx := range [][4]int{
						{i, j, k, l}, {j, i, k, l}, {i, j, l, k}, {j, i, l, k},
						{k, l, i, j}, {l, k, i, j}, {k, l, j, i}, {l, k, j, i},
					} {
						in.ERI[((idx[0]*n+idx[1])*n+idx[2])*n+idx[3]] = v
					}
				}
			}
		}
	}
	return in
}

// Overlap returns <a|b>.
func Overlap(a, b *BasisFunction) float64 {
	s := 0.0
	for i, ea := range a.Exps {
		for j, eb := range b.Exps {
			s += a.Coefs[i] * b.Coefs[j] * overlapPrim(ea, a.Powers, a.Center, eb, b.Powers, b.Center)
		}
	}
	return s
}

// Kinetic returns <a|-∇²/2|b>.
func Kinetic(a, b *BasisFunction) float64 {
	t := 0.0
	for i, ea := range a.Exps {
		for j, eb := range b.Exps {
			t += a.Coefs[i] * b.Coefs[j] * kineticPrim(ea, a.Powers, a.Center, eb, b.Powers, b.Center)
		}
	}
	return t
}

// NuclearAttraction returns <a|1/|r-C||b> for a unit charge at c.
func NuclearAttraction(a, b *BasisFunction, c [3]float64) float64 {
	v := 0.0
	for i, ea := range a.Exps {
		for j, eb := range b.Exps {
			v += a.Coefs[i] * b.Coefs[j] * nuclearPrim(ea, a.Powers, a.Center, eb, b.Powers, b.Center, c)
		}
	}
	return v
}

// ElectronRepulsion returns (ab|cd).
func ElectronRepulsion(a, b, c, d *BasisFunction) float64 {
	v := 0.0
	for i, ea := range a.Exps {
		for j, eb := range b.Exps {
			cab := a.Coefs[i] * b.Coefs[j]
			for k, ec := range c.Exps {
				for l, ed := range d.Exps {
					v += cab * c.Coefs[k] * d.Coefs[l] *
						eriPrim(ea, a.Powers, a.Center, eb, b.Powers, b.Center,
							ec, c.Powers, c.Center, ed, d.Powers, d.Center)
				}
			}
		}
	}
	return v
}

// hermite returns the McMurchie-Davidson expansion coefficient E^{ij}_t.
func hermite(i, j, t int, qx, a, b float64) float64 {
	p := a + b
	q := a * b / p
	switch {
	case t < 0 || t > i+j || i < 0 || j < 0:
		return 0
	case i == 0 && j == 0 && t == 0:
		return math.Exp(-q * qx * qx)
	case j == 0:
		return (1/(2*p))*hermite(i-1, j, t-1, qx, a, b) -
			(q*qx/a)*hermite(i-1, j, t, qx, a, b) +
			float64(t+1)*hermite(i-1, j, t+1, qx, a, b)
	default:
		return (1/(2*p))*hermite(i, j-1, t-1, qx, a, b) +
			(q*qx/b)*hermite(i, j-1, t, qx, a, b) +
			float64(t+1)*hermite(i, j-1, t+1, qx, a, b)
	}
}

func overlapPrim(a float64, la [3]int, ca [3]float64, b float64, lb [3]int, cb [3]float64) float64 {
	s := 1.0
	for k := 0; k < 3; k++ {
		s *= hermite(la[k], lb[k], 0, ca[k]-cb[k], a, b)
	}
	return s * math.Pow(math.Pi/(a+b), 1.5)
}

func kineticPrim(a float64, la [3]int, ca [3]float64, b float64, lb [3]int, cb [3]float64) float64 {
	l2 := lb[0] + lb[1] + lb[2]
	t := b * float64(2*l2+3) * overlapPrim(a, la, ca, b, lb, cb)
	for k := 0; k < 3; k++ {
		up := lb
		up[k] += 2
		t -= 2 * b * b * overlapPrim(a, la, ca, b, up, cb)
		if lb[k] >= 2 {
			down := lb
			down[k] -= 2
			t -= 0.5 * float64(lb[k]*(lb[k]-1)) * overlapPrim(a, la, ca, b, down, cb)
		}
	}
	return t
}

// coulombAux is the Hermite Coulomb integral R^n_{tuv}.
func coulombAux(t, u, v, n int, p float64, pc [3]float64, r2 float64) float64 {
	switch {
	case t == 0 && u == 0 && v == 0:
		return math.Pow(-2*p, float64(n)) * Boys(n, p*r2)
	case t == 0 && u == 0:
		val := pc[2] * coulombAux(t, u, v-1, n+1, p, pc, r2)
		if v > 1 {
			val += float64(v-1) * coulombAux(t, u, v-2, n+1, p, pc, r2)
		}
		return val
	case t == 0:
		val := pc[1] * coulombAux(t, u-1, v, n+1, p, pc, r2)
		if u > 1 {
			val += float64(u-1) * coulombAux(t, u-2, v, n+1, p, pc, r2)
		}
		return val
	default:
		val := pc[0] * coulombAux(t-1, u, v, n+1, p, pc, r2)
		if t > 1 {
			val += float64(t-1) * coulombAux(t-2, u, v, n+1, p, pc, r2)
		}
		return val
	}
}

func productCenter(a float64, ca [3]float64, b float64, cb [3]float64) [3]float64 {
	p := a + b
	return [3]float64{
		(a*ca[0] + b*cb[0]) / p,
		(a*ca[1] + b*cb[1]) / p,
		(a*ca[2] + b*cb[2]) / p,
	}
}

func nuclearPrim(a float64, la [3]int, ca [3]float64, b float64, lb [3]int, cb [3]float64, c [3]float64) float64 {
	p := a + b
	pp := productCenter(a, ca, b, cb)
	pc := [3]float64{pp[0] - c[0], pp[1] - c[1], pp[2] - c[2]}
	r2 := pc[0]*pc[0] + pc[1]*pc[1] + pc[2]*pc[2]

	val := 0.0
	for t := 0; t <= la[0]+lb[0]; t++ {
		ex := hermite(la[0], lb[0], t, ca[0]-cb[0], a, b)
		for u := 0; u <= la[1]+lb[1]; u++ {
			ey := hermite(la[1], lb[1], u, ca[1]-cb[1], a, b)
			for v := 0; v <= la[2]+lb[2]; v++ {
				ez := hermite(la[2], lb[2], v, ca[2]-cb[2], a, b)
				val += ex * ey * ez * coulombAux(t, u, v, 0, p, pc, r2)
			}
		}
	}
	return val * 2 * math.Pi / p
}

func eriPrim(
	a float64, la [3]int, ca [3]float64,
	b float64, lb [3]int, cb [3]float64,
	c float64, lc [3]int, cc [3]float64,
	d float64, ld [3]int, cd [3]float64,
) float64 {
	p := a + b
	q := c + d
	alpha := p * q / (p + q)
	pp := productCenter(a, ca, b, cb)
	qq := productCenter(c, cc, d, cd)
	pq := [3]float64{pp[0] - qq[0], pp[1] - qq[1], pp[2] - qq[2]}
	r2 := pq[0]*pq[0] + pq[1]*pq[1] + pq[2]*pq[2]

	val := 0.0
	for t := 0; t <= la[0]+lb[0]; t++ {
		e1 := hermite(la[0], lb[0], t, ca[0]-cb[0], a, b)
		for u := 0; u <= la[1]+lb[1]; u++ {
			e2 := hermite(la[1], lb[1], u, ca[1]-cb[1], a, b)
			for v := 0; v <= la[2]+lb[2]; v++ {
				e3 := hermite(la[2], lb[2], v, ca[2]-cb[2], a, b)
				eab := e1 * e2 * e3
				if eab == 0 {
					continue
				}
				for tau := 0; tau <= lc[0]+ld[0]; tau++ {
					f1 := hermite(lc[0], ld[0], tau, cc[0]-cd[0], c, d)
					for nu := 0; nu <= lc[1]+ld[1]; nu++ {
						f2 := hermite(lc[1], ld[1], nu, cc[1]-cd[1], c, d)
						for phi := 0; phi <= lc[2]+ld[2]; phi++ {
							f3 := hermite(lc[2], ld[2], phi, cc[2]-cd[2], c, d)
							sign := 1.0
							if (tau+nu+phi)%2 == 1 {
								sign = -1
							}
							val += eab * f1 * f2 * f3 * sign *
								coulombAux(t+tau, u+nu, v+phi, 0, alpha, pq, r2)
						}
					}
				}
			}
		}
	}
	return val * 2 * math.Pow(math.Pi, 2.5) / (p * q * math.Sqrt(p+q))
}

// Boys evaluates F_n(x) = ∫_0^1 t^{2n} exp(-x t²) dt.
func Boys(n int, x float64) float64 {
	if x < 1e-10 {
		return 1/float64(2*n+1) - x/float64(2*n+3)
	}
	a := float64(n) + 0.5
	return math.Gamma(a) * mathext.GammaIncReg(a, x) / (2 * math.Pow(x, a))
}
