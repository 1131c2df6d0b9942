// Package fermion represents second-quantised operators as sums of
// products of creation and annihilation operators.
package fermion

import (
	"fmt"
	"math/cmplx"
	"sort"
	"strings"
)

// Ladder is a single creation (Dagger) or annihilation operator on a mode.
type Ladder struct {
	Mode   int
	Dagger bool
}

func (l Ladder) String() string {
	if l.Dagger {
		return fmt.Sprintf("+_%d", l.Mode)
	}
	return fmt.Sprintf("-_%d", l.Mode)
}

// Term is a coefficient times an ordered product of ladder operators.
// An empty product is the identity.
type Term struct {
	Ops   []Ladder
	Coeff complex128
}

// Label renders the product as "+_0 -_1".
func (t Term) Label() string {
	parts := make([]string, len(t.Ops))
	for i, op := range t.Ops {
		parts[i] = op.String()
	}
	return strings.Join(parts, " ")
}

// Op is a fermionic operator on NumModes modes.
type Op struct {
	NumModes int
	Terms    []Term
}

func New(numModes int) *Op {
	return &Op{NumModes: numModes}
}

// Add appends a product term.
func (o *Op) Add(coeff complex128, ops ...Ladder) *Op {
	for _, l := range ops {
		if l.Mode >= o.NumModes {
			o.NumModes = l.Mode + 1
		}
	}
	o.Terms = append(o.Terms, Term{Ops: append([]Ladder(nil), ops...), Coeff: coeff})
	return o
}

// AddOp appends all terms of other.
func (o *Op) AddOp(other *Op) *Op {
	if other.NumModes > o.NumModes {
		o.NumModes = other.NumModes
	}
	for _, t := range other.Terms {
		o.Terms = append(o.Terms, Term{Ops: append([]Ladder(nil), t.Ops...), Coeff: t.Coeff})
	}
	return o
}

// Scale returns a copy with every coefficient multiplied by c.
func (o *Op) Scale(c complex128) *Op {
	out := New(o.NumModes)
	for _, t := range o.Terms {
		out.Terms = append(out.Terms, Term{Ops: append([]Ladder(nil), t.Ops...), Coeff: t.Coeff * c})
	}
	return out
}

// Adjoint returns the Hermitian conjugate.
func (o *Op) Adjoint() *Op {
	out := New(o.NumModes)
	for _, t := range o.Terms {
		ops := make([]Ladder, len(t.Ops))
		for i, l := range t.Ops {
			ops[len(ops)-1-i] = Ladder{Mode: l.Mode, Dagger: !l.Dagger}
		}
		out.Terms = append(out.Terms, Term{Ops: ops, Coeff: cmplx.Conj(t.Coeff)})
	}
	return out
}

// Compose returns the product o·other.
func (o *Op) Compose(other *Op) *Op {
	n := o.NumModes
	if other.NumModes > n {
		n = other.NumModes
	}
	out := New(n)
	for _, a := range o.Terms {
		for _, b := range other.Terms {
			ops := make([]Ladder, 0, len(a.Ops)+len(b.Ops))
			ops = append(ops, a.Ops...)
			ops = append(ops, b.Ops...)
			out.Terms = append(out.Terms, Term{Ops: ops, Coeff: a.Coeff * b.Coeff})
		}
	}
	return out
}

// Simplify merges terms with identical operator strings and drops
// coefficients below tol. It does not reorder operators.
func (o *Op) Simplify(tol float64) *Op {
	acc := make(map[string]*Term)
	var order []string
	for _, t := range o.Terms {
		key := t.Label()
		if prev, ok := acc[key]; ok {
			prev.Coeff += t.Coeff
			continue
		}
		tc := Term{Ops: append([]Ladder(nil), t.Ops...), Coeff: t.Coeff}
		acc[key] = &tc
		order = append(order, key)
	}
	sort.Strings(order)
	out := New(o.NumModes)
	for _, k := range order {
		if cmplx.Abs(acc[k].Coeff) > tol {
			out.Terms = append(out.Terms, *acc[k])
		}
	}
	return out
}

// Len is the number of terms.
func (o *Op) Len() int { return len(o.Terms) }

func (o *Op) String() string {
	var sb strings.Builder
	for i, t := range o.Terms {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "%+.8f%+.8fi * (%s)", real(t.Coeff), imag(t.Coeff), t.Label())
	}
	return sb.String()
}

// Create and Annihilate are shorthands for ladder operators.
func Create(mode int) Ladder     { return Ladder{Mode: mode, Dagger: true} }
func Annihilate(mode int) Ladder { return Ladder{Mode: mode} }

// Excitation returns a†_{v1}…a†_{vk} a_{ok}…a_{o1}, moving electrons from
// occupied modes occ to virtual modes virt.
func Excitation(numModes int, occ, virt []int) *Op {
	ops := make([]Ladder, 0, len(occ)+len(virt))
	for _, v := range virt {
		ops = append(ops, Create(v))
	}
	for i := len(occ) - 1; i >= 0; i-- {
		ops = append(ops, Annihilate(occ[i]))
	}
	return New(numModes).Add(1, ops...)
}

// NumberOp returns Σ a†_p a_p over modes.
func NumberOp(numModes int, modes ...int) *Op {
	op := New(numModes)
	for _, m := range modes {
		op.Add(1, Create(m), Annihilate(m))
	}
	return op
}
