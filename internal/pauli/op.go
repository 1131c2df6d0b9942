package pauli

import (
	"fmt"
	"math/cmplx"
	"sort"
	"strings"
)

// Term is a coefficient on a single Pauli string.
type Term struct {
	String String
	Coeff  complex128
}

// Op is a sparse sum of Pauli strings on NumQubits qubits.
type Op struct {
	NumQubits int
	terms     map[String]complex128
}

func NewOp(numQubits int) *Op {
	return &Op{NumQubits: numQubits, terms: make(map[String]complex128)}
}

// Identity returns c·I on n qubits.
func Identity(n int, c complex128) *Op {
	return NewOp(n).Add(String{}, c)
}

// Add accumulates c·p.
func (o *Op) Add(p String, c complex128) *Op {
	o.terms[p] += c
	return o
}

// AddOp accumulates every term of other.
func (o *Op) AddOp(other *Op) *Op {
	if other.NumQubits > o.NumQubits {
		o.NumQubits = other.NumQubits
	}
	for p, c := range other.terms {
		o.terms[p] += c
	}
	return o
}

// Scale returns a copy multiplied by c.
func (o *Op) Scale(c complex128) *Op {
	out := NewOp(o.NumQubits)
	for p, v := range o.terms {
		out.terms[p] = v * c
	}
	return out
}

// Mul returns the operator product o·other.
func (o *Op) Mul(other *Op) *Op {
	n := o.NumQubits
	if other.NumQubits > n {
		n = other.NumQubits
	}
	out := NewOp(n)
	for pa, ca := range o.terms {
		for pb, cb := range other.terms {
			pc, phase := Mul(pa, pb)
			out.terms[pc] += phase * ca * cb
		}
	}
	return out
}

// Adjoint returns the Hermitian conjugate. Pauli strings are Hermitian so
// only the coefficients change.
func (o *Op) Adjoint() *Op {
	out := NewOp(o.NumQubits)
	for p, c := range o.terms {
		out.terms[p] = cmplx.Conj(c)
	}
	return out
}

// Simplify drops terms whose magnitude is at most tol.
func (o *Op) Simplify(tol float64) *Op {
	out := NewOp(o.NumQubits)
	for p, c := range o.terms {
		if cmplx.Abs(c) > tol {
			out.terms[p] = c
		}
	}
	return out
}

// Coeff returns the coefficient of p.
func (o *Op) Coeff(p String) complex128 { return o.terms[p] }

// Len is the number of stored terms.
func (o *Op) Len() int { return len(o.terms) }

// Terms returns the terms sorted by label order, qubit n-1 most significant.
func (o *Op) Terms() []Term {
	out := make([]Term, 0, len(o.terms))
	for p, c := range o.terms {
		out = append(out, Term{String: p, Coeff: c})
	}
	sort.Slice(out, func(i, j int) bool {
		return o.less(out[i].String, out[j].String)
	})
	return out
}

func (o *Op) less(a, b String) bool {
	for q := o.NumQubits - 1; q >= 0; q-- {
		ca, cb := rank(a.At(q)), rank(b.At(q))
		if ca != cb {
			return ca < cb
		}
	}
	return false
}

func rank(c byte) int {
	return strings.IndexByte("IXYZ", c)
}

// IsHermitian reports whether every coefficient is real within tol.
func (o *Op) IsHermitian(tol float64) bool {
	for _, c := range o.terms {
		if abs(imag(c)) > tol {
			return false
		}
	}
	return true
}

// MaxWeight is the largest number of non-identity factors in any term.
func (o *Op) MaxWeight() int {
	w := 0
	for p := range o.terms {
		if pw := p.Weight(); pw > w {
			w = pw
		}
	}
	return w
}

// Expectation returns <ψ|O|ψ> by direct term-wise evaluation.
func (o *Op) Expectation(psi []complex128) complex128 {
	var s complex128
	for p, c := range o.terms {
		s += c * p.Expectation(psi)
	}
	return s
}

func (o *Op) String() string {
	var sb strings.Builder
	for i, t := range o.Terms() {
		if i > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "%+.8f%+.8fi * %s", real(t.Coeff), imag(t.Coeff), t.String.Label(o.NumQubits))
	}
	return sb.String()
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
