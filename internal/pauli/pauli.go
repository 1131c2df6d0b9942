// Package pauli implements sparse sums of Pauli strings with exact phase
// tracking, plus the compiled forms used for simulation.
package pauli

import (
	"errors"
	"fmt"
	"math/bits"
	"strconv"
	"strings"
)

// MaxQubits is the widest register a String can describe.
const MaxQubits = 63

var ErrBadLabel = errors.New("pauli: invalid label")

// String is a tensor product of single-qubit Paulis stored as x/z masks:
// I=(0,0), X=(1,0), Z=(0,1), Y=(1,1). Bit q is qubit q.
type String struct {
	X, Z uint64
}

// Single returns the Pauli c ∈ {I,X,Y,Z} on qubit q.
func Single(c byte, q int) String {
	bit := uint64(1) << q
	switch c {
	case 'X':
		return String{X: bit}
	case 'Y':
		return String{X: bit, Z: bit}
	case 'Z':
		return String{Z: bit}
	}
	return String{}
}

// IsIdentity reports whether every factor is I.
func (p String) IsIdentity() bool { return p.X == 0 && p.Z == 0 }

// Support is the mask of qubits acted on non-trivially.
func (p String) Support() uint64 { return p.X | p.Z }

// Weight is the number of non-identity factors.
func (p String) Weight() int { return bits.OnesCount64(p.Support()) }

// At returns the factor on qubit q as one of 'I','X','Y','Z'.
func (p String) At(q int) byte {
	x := p.X>>q&1 == 1
	z := p.Z>>q&1 == 1
	switch {
	case x && z:
		return 'Y'
	case x:
		return 'X'
	case z:
		return 'Z'
	}
	return 'I'
}

// Label renders the string little-endian: qubit 0 is the rightmost character.
func (p String) Label(n int) string {
	b := make([]byte, n)
	for q := 0; q < n; q++ {
		b[n-1-q] = p.At(q)
	}
	return string(b)
}

// ParseLabel reads a little-endian label such as "IXYZ".
func ParseLabel(label string) (String, error) {
	n := len(label)
	if n > MaxQubits {
		return String{}, fmt.Errorf("%w: %d qubits exceeds %d", ErrBadLabel, n, MaxQubits)
	}
	var p String
	for i := 0; i < n; i++ {
		q := n - 1 - i
		c := label[i]
		switch c {
		case 'I', 'X', 'Y', 'Z':
			s := Single(c, q)
			p.X |= s.X
			p.Z |= s.Z
		default:
			return String{}, fmt.Errorf("%w: %q", ErrBadLabel, label)
		}
	}
	return p, nil
}

// Mul returns the product a·b as phase·String.
func Mul(a, b String) (String, complex128) {
	c := String{X: a.X ^ b.X, Z: a.Z ^ b.Z}
	// With σ(x,z) = i^{x·z} X^x Z^z the phase exponent is
	// x1·z1 + x2·z2 + 2·z1·x2 - x3·z3 (mod 4).
	e := bits.OnesCount64(a.X&a.Z) + bits.OnesCount64(b.X&b.Z) +
		2*bits.OnesCount64(a.Z&b.X) - bits.OnesCount64(c.X&c.Z)
	return c, iPow(e)
}

// Commutes reports whether a and b commute as operators.
func Commutes(a, b String) bool {
	return bits.OnesCount64(a.X&b.Z^a.Z&b.X)%2 == 0
}

// QubitWiseCommutes reports whether a and b agree on every qubit where
// both act non-trivially.
func QubitWiseCommutes(a, b String) bool {
	both := a.Support() & b.Support()
	return (a.X^b.X)&both == 0 && (a.Z^b.Z)&both == 0
}

// phase returns <b^x|P|b>.
func (p String) phase(b uint64) complex128 {
	e := bits.OnesCount64(p.X & p.Z)
	if bits.OnesCount64(b&p.Z)%2 == 1 {
		e += 2
	}
	return iPow(e)
}

// Apply accumulates coeff·P·src into dst.
func (p String) Apply(dst, src []complex128, coeff complex128) {
	for b := range src {
		if src[b] == 0 {
			continue
		}
		dst[uint64(b)^p.X] += coeff * p.phase(uint64(b)) * src[b]
	}
}

// Expectation returns <ψ|P|ψ>.
func (p String) Expectation(psi []complex128) complex128 {
	var s complex128
	for b, amp := range psi {
		if amp == 0 {
			continue
		}
		t := uint64(b) ^ p.X
		s += conj(psi[t]) * p.phase(uint64(b)) * amp
	}
	return s
}

func iPow(e int) complex128 {
	switch ((e % 4) + 4) % 4 {
	case 0:
		return 1
	case 1:
		return 1i
	case 2:
		return -1
	default:
		return -1i
	}
}

func conj(c complex128) complex128 { return complex(real(c), -imag(c)) }

// ParseTerms builds an operator from "coeff label" pairs such as
// "-0.81 IIZZ; 0.17 XXYY", mainly for tests and debugging.
func ParseTerms(s string) (*Op, error) {
	var op *Op
	for _, part := range strings.Split(s, ";") {
		fields := strings.Fields(part)
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 2 {
			return nil, fmt.Errorf("%w: %q", ErrBadLabel, part)
		}
		c, err := strconv.ParseComplex(fields[0], 128)
		if err != nil {
			return nil, fmt.Errorf("%w: coefficient %q", ErrBadLabel, fields[0])
		}
		p, err := ParseLabel(fields[1])
		if err != nil {
			return nil, err
		}
		if op == nil {
			op = NewOp(len(fields[1]))
		}
		op.Add(p, c)
	}
	if op == nil {
		return nil, fmt.Errorf("%w: empty", ErrBadLabel)
	}
	return op, nil
}
