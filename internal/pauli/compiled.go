package pauli

import "math/bits"

// Compiled is an operator regrouped by x-mask. Each group stores, for
// every basis state b, the combined diagonal factor so that
// O|b> = Σ_x d_x[b] |b^x>.
type Compiled struct {
	NumQubits int
	groups    []xgroup
	index     map[uint64]int
}

type xgroup struct {
	x    uint64
	diag []complex128
}

// Compile builds the grouped form. Memory grows as groups·2^n.
func (o *Op) Compile() *Compiled {
	n := o.NumQubits
	dim := 1 << n
	c := &Compiled{NumQubits: n, index: make(map[uint64]int)}
	for _, t := range o.Terms() {
		if t.Coeff == 0 {
			continue
		}
		gi, ok := c.index[t.String.X]
		if !ok {
			gi = len(c.groups)
			c.index[t.String.X] = gi
			c.groups = append(c.groups, xgroup{x: t.String.X, diag: make([]complex128, dim)})
		}
		d := c.groups[gi].diag
		base := t.Coeff * iPow(bits.OnesCount64(t.String.X&t.String.Z))
		for b := 0; b < dim; b++ {
			if bits.OnesCount64(uint64(b)&t.String.Z)%2 == 1 {
				d[b] -= base
			} else {
				d[b] += base
			}
		}
	}
	return c
}

// Dim is the Hilbert space dimension.
func (c *Compiled) Dim() int { return 1 << c.NumQubits }

// Apply writes O·src into dst. dst and src must not alias.
func (c *Compiled) Apply(dst, src []complex128) {
	for i := range dst {
		dst[i] = 0
	}
	for _, g := range c.groups {
		for b, amp := range src {
			if amp == 0 {
				continue
			}
			dst[uint64(b)^g.x] += g.diag[b] * amp
		}
	}
}

// Expectation returns Re <ψ|O|ψ>.
func (c *Compiled) Expectation(psi []complex128) float64 {
	var s complex128
	for _, g := range c.groups {
		for b, amp := range psi {
			if amp == 0 {
				continue
			}
			s += conj(psi[uint64(b)^g.x]) * g.diag[b] * amp
		}
	}
	return real(s)
}

// Element returns <row|O|col>.
func (c *Compiled) Element(row, col uint64) complex128 {
	gi, ok := c.index[row^col]
	if !ok {
		return 0
	}
	return c.groups[gi].diag[col]
}

// Diagonal returns <b|O|b> for every basis state.
func (c *Compiled) Diagonal() []complex128 {
	out := make([]complex128, c.Dim())
	if gi, ok := c.index[0]; ok {
		copy(out, c.groups[gi].diag)
	}
	return out
}
