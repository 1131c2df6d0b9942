// Package circuit describes parameterised quantum circuits and simulates
// them on a dense statevector.
package circuit

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/san-kum/vqelab/internal/pauli"
)

var (
	ErrUnknownGate   = errors.New("circuit: unknown gate")
	ErrQubitRange    = errors.New("circuit: qubit out of range")
	ErrParamMismatch = errors.New("circuit: parameter count mismatch")
)

// Gate names understood by the simulator.
const (
	GateX              = "x"
	GateY              = "y"
	GateZ              = "z"
	GateH              = "h"
	GateS              = "s"
	GateSdg            = "sdg"
	GateT              = "t"
	GateTdg            = "tdg"
	GateRX             = "rx"
	GateRY             = "ry"
	GateRZ             = "rz"
	GateCX             = "cx"
	GateCZ             = "cz"
	GatePauliEvolution = "pauli_evolution"
)

// Param is an angle Scale·θ[Index] + Offset. Index < 0 means constant.
type Param struct {
	Index  int
	Scale  float64
	Offset float64
}

// Const is a fixed angle.
func Const(v float64) Param { return Param{Index: -1, Offset: v} }

// Theta is the bare parameter θ[i].
func Theta(i int) Param { return Param{Index: i, Scale: 1} }

// Value evaluates the angle.
func (p Param) Value(params []float64) float64 {
	if p.Index < 0 {
		return p.Offset
	}
	return p.Scale*params[p.Index] + p.Offset
}

// Times returns the angle multiplied by k.
func (p Param) Times(k float64) Param {
	return Param{Index: p.Index, Scale: p.Scale * k, Offset: p.Offset * k}
}

// Gate is one instruction. Rotation gates use Angle; pauli_evolution
// applies exp(-i·Angle·Σ c_k P_k) for commuting terms with real c_k.
type Gate struct {
	Name   string
	Qubits []int
	Angle  Param
	Terms  []pauli.Term
}

func (g Gate) String() string {
	q := make([]string, len(g.Qubits))
	for i, v := range g.Qubits {
		q[i] = fmt.Sprint(v)
	}
	if g.Name == GatePauliEvolution {
		return fmt.Sprintf("%s[%d terms](θ%d) q%s", g.Name, len(g.Terms), g.Angle.Index, strings.Join(q, ","))
	}
	return fmt.Sprintf("%s q%s", g.Name, strings.Join(q, ","))
}

// Circuit is an ordered gate list on NumQubits qubits with NumParams
// free parameters.
type Circuit struct {
	NumQubits int
	NumParams int
	Gates     []Gate
}

func New(numQubits int) *Circuit {
	return &Circuit{NumQubits: numQubits}
}

func (c *Circuit) add(name string, a Param, qubits ...int) *Circuit {
	if a.Index >= c.NumParams {
		c.NumParams = a.Index + 1
	}
	c.Gates = append(c.Gates, Gate{Name: name, Qubits: qubits, Angle: a})
	return c
}

func (c *Circuit) X(q int) *Circuit   { return c.add(GateX, Const(0), q) }
func (c *Circuit) Y(q int) *Circuit   { return c.add(GateY, Const(0), q) }
func (c *Circuit) Z(q int) *Circuit   { return c.add(GateZ, Const(0), q) }
func (c *Circuit) H(q int) *Circuit   { return c.add(GateH, Const(0), q) }
func (c *Circuit) S(q int) *Circuit   { return c.add(GateS, Const(0), q) }
func (c *Circuit) Sdg(q int) *Circuit { return c.add(GateSdg, Const(0), q) }
func (c *Circuit) T(q int) *Circuit   { return c.add(GateT, Const(0), q) }
func (c *Circuit) Tdg(q int) *Circuit { return c.add(GateTdg, Const(0), q) }

func (c *Circuit) RX(q int, a Param) *Circuit { return c.add(GateRX, a, q) }
func (c *Circuit) RY(q int, a Param) *Circuit { return c.add(GateRY, a, q) }
func (c *Circuit) RZ(q int, a Param) *Circuit { return c.add(GateRZ, a, q) }

func (c *Circuit) CX(ctrl, target int) *Circuit { return c.add(GateCX, Const(0), ctrl, target) }
func (c *Circuit) CZ(a, b int) *Circuit         { return c.add(GateCZ, Const(0), a, b) }

// PauliEvolution appends exp(-i·a·G) with G = Σ terms. The terms must
// pairwise commute and have real coefficients.
func (c *Circuit) PauliEvolution(terms []pauli.Term, a Param) *Circuit {
	var support uint64
	for _, t := range terms {
		support |= t.String.Support()
	}
	var qubits []int
	for q := 0; q < c.NumQubits; q++ {
		if support>>q&1 == 1 {
			qubits = append(qubits, q)
		}
	}
	c.add(GatePauliEvolution, a, qubits...)
	c.Gates[len(c.Gates)-1].Terms = append([]pauli.Term(nil), terms...)
	return c
}

// Compose appends other's gates. Parameter indices are shared.
func (c *Circuit) Compose(other *Circuit) *Circuit {
	if other.NumParams > c.NumParams {
		c.NumParams = other.NumParams
	}
	c.Gates = append(c.Gates, other.Gates...)
	return c
}

// Validate checks qubit indices and gate names.
func (c *Circuit) Validate() error {
	for i, g := range c.Gates {
		if _, ok := arity[g.Name]; !ok {
			return fmt.Errorf("%w: %q at %d", ErrUnknownGate, g.Name, i)
		}
		if want := arity[g.Name]; want > 0 && len(g.Qubits) != want {
			return fmt.Errorf("circuit: gate %s at %d expects %d qubits, has %d", g.Name, i, want, len(g.Qubits))
		}
		for _, q := range g.Qubits {
			if q < 0 || q >= c.NumQubits {
				return fmt.Errorf("%w: %s on %d (n=%d)", ErrQubitRange, g.Name, q, c.NumQubits)
			}
		}
	}
	return nil
}

var arity = map[string]int{
	GateX: 1, GateY: 1, GateZ: 1, GateH: 1, GateS: 1, GateSdg: 1, GateT: 1, GateTdg: 1,
	GateRX: 1, GateRY: 1, GateRZ: 1,
	GateCX: 2, GateCZ: 2,
	GatePauliEvolution: 0,
}

// Decompose lowers every pauli_evolution gate to single-qubit basis
// changes, a CNOT ladder and rz. Identity terms only add a global phase
// and are dropped.
func (c *Circuit) Decompose() *Circuit {
	out := &Circuit{NumQubits: c.NumQubits, NumParams: c.NumParams}
	for _, g := range c.Gates {
		if g.Name != GatePauliEvolution {
			out.Gates = append(out.Gates, g)
			continue
		}
		for _, t := range g.Terms {
			if t.String.IsIdentity() {
				continue
			}
			out.pauliRotation(t.String, g.Angle.Times(real(t.Coeff)))
		}
	}
	return out
}

// pauliRotation appends exp(-i·φ·P).
func (c *Circuit) pauliRotation(p pauli.String, phi Param) {
	var qubits []int
	for q := 0; q < c.NumQubits; q++ {
		if p.At(q) != 'I' {
			qubits = append(qubits, q)
		}
	}
	for _, q := range qubits {
		switch p.At(q) {
		case 'X':
			c.H(q)
		case 'Y':
			c.Sdg(q).H(q)
		}
	}
	for i := 0; i+1 < len(qubits); i++ {
		c.CX(qubits[i], qubits[i+1])
	}
	c.RZ(qubits[len(qubits)-1], phi.Times(2))
	for i := len(qubits) - 2; i >= 0; i-- {
		c.CX(qubits[i], qubits[i+1])
	}
	for _, q := range qubits {
		switch p.At(q) {
		case 'X':
			c.H(q)
		case 'Y':
			c.H(q).S(q)
		}
	}
}

// Counts tallies gates by name.
func (c *Circuit) Counts() map[string]int {
	out := make(map[string]int)
	for _, g := range c.Gates {
		out[g.Name]++
	}
	return out
}

// Depth is the longest chain of gates sharing qubits.
func (c *Circuit) Depth() int {
	level := make([]int, c.NumQubits)
	depth := 0
	for _, g := range c.Gates {
		d := 0
		for _, q := range g.Qubits {
			if level[q] > d {
				d = level[q]
			}
		}
		d++
		for _, q := range g.Qubits {
			level[q] = d
		}
		if d > depth {
			depth = d
		}
	}
	return depth
}

// CountString renders Counts as "cx=4 h=8 rz=2" in name order.
func (c *Circuit) CountString() string {
	counts := c.Counts()
	names := make([]string, 0, len(counts))
	for k := range counts {
		names = append(names, k)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, k := range names {
		parts[i] = fmt.Sprintf("%s=%d", k, counts[k])
	}
	return strings.Join(parts, " ")
}
