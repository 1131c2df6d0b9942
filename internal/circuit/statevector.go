package circuit

import (
	"fmt"
	"math"
	"math/cmplx"
	"math/rand"
	"sort"

	"github.com/san-kum/vqelab/internal/pauli"
)

// State is a dense statevector; bit q of the index is qubit q.
type State struct {
	NumQubits int
	Amp       []complex128
}

// NewState returns the computational basis state |basis>.
func NewState(numQubits int, basis uint64) *State {
	amp := make([]complex128, 1<<numQubits)
	amp[basis] = 1
	return &State{NumQubits: numQubits, Amp: amp}
}

func (s *State) Clone() *State {
	amp := make([]complex128, len(s.Amp))
	copy(amp, s.Amp)
	return &State{NumQubits: s.NumQubits, Amp: amp}
}

// Run simulates c from |0…0> with the given parameters.
func Run(c *Circuit, params []float64) (*State, error) {
	if len(params) < c.NumParams {
		return nil, fmt.Errorf("%w: circuit needs %d, got %d", ErrParamMismatch, c.NumParams, len(params))
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	s := NewState(c.NumQubits, 0)
	for _, g := range c.Gates {
		s.Apply(g, params)
	}
	return s, nil
}

// Apply executes one validated gate.
func (s *State) Apply(g Gate, params []float64) {
	switch g.Name {
	case GateX:
		s.applyPauli(pauli.Single('X', g.Qubits[0]))
	case GateY:
		s.applyPauli(pauli.Single('Y', g.Qubits[0]))
	case GateZ:
		s.applyPauli(pauli.Single('Z', g.Qubits[0]))
	case GateH:
		h := complex(1/math.Sqrt2, 0)
		s.apply1(g.Qubits[0], h, h, h, -h)
	case GateS:
		s.phase(g.Qubits[0], 1i)
	case GateSdg:
		s.phase(g.Qubits[0], -1i)
	case GateT:
		s.phase(g.Qubits[0], cmplx.Exp(complex(0, math.Pi/4)))
	case GateTdg:
		s.phase(g.Qubits[0], cmplx.Exp(complex(0, -math.Pi/4)))
	case GateRX:
		th := g.Angle.Value(params) / 2
		c, sn := complex(math.Cos(th), 0), complex(0, -math.Sin(th))
		s.apply1(g.Qubits[0], c, sn, sn, c)
	case GateRY:
		th := g.Angle.Value(params) / 2
		c, sn := complex(math.Cos(th), 0), complex(math.Sin(th), 0)
		s.apply1(g.Qubits[0], c, -sn, sn, c)
	case GateRZ:
		th := g.Angle.Value(params) / 2
		s.apply1(g.Qubits[0], cmplx.Exp(complex(0, -th)), 0, 0, cmplx.Exp(complex(0, th)))
	case GateCX:
		s.cx(g.Qubits[0], g.Qubits[1])
	case GateCZ:
		s.cz(g.Qubits[0], g.Qubits[1])
	case GatePauliEvolution:
		theta := g.Angle.Value(params)
		for _, t := range g.Terms {
			s.rotate(t.String, theta*real(t.Coeff))
		}
	}
}

// ApplyPauli multiplies the state by a Pauli string, used for noise.
func (s *State) ApplyPauli(p pauli.String) { s.applyPauli(p) }

func (s *State) applyPauli(p pauli.String) {
	out := make([]complex128, len(s.Amp))
	p.Apply(out, s.Amp, 1)
	s.Amp = out
}

// rotate applies exp(-iφP) = cos φ - i sin φ P.
func (s *State) rotate(p pauli.String, phi float64) {
	if p.IsIdentity() {
		f := cmplx.Exp(complex(0, -phi))
		for i := range s.Amp {
			s.Amp[i] *= f
		}
		return
	}
	pa := make([]complex128, len(s.Amp))
	p.Apply(pa, s.Amp, 1)
	c := complex(math.Cos(phi), 0)
	sn := complex(0, -math.Sin(phi))
	for i := range s.Amp {
		s.Amp[i] = c*s.Amp[i] + sn*pa[i]
	}
}

// apply1 applies the matrix [[a,b],[c,d]] on qubit q.
func (s *State) apply1(q int, a, b, c, d complex128) {
	bit := 1 << q
	for i := range s.Amp {
		if i&bit != 0 {
			continue
		}
		j := i | bit
		x, y := s.Amp[i], s.Amp[j]
		s.Amp[i] = a*x + b*y
		s.Amp[j] = c*x + d*y
	}
}

func (s *State) phase(q int, f complex128) {
	bit := 1 << q
	for i := range s.Amp {
		if i&bit != 0 {
			s.Amp[i] *= f
		}
	}
}

func (s *State) cx(ctrl, target int) {
	cb, tb := 1<<ctrl, 1<<target
	for i := range s.Amp {
		if i&cb != 0 && i&tb == 0 {
			j := i | tb
			s.Amp[i], s.Amp[j] = s.Amp[j], s.Amp[i]
		}
	}
}

func (s *State) cz(a, b int) {
	mask := 1<<a | 1<<b
	for i := range s.Amp {
		if i&mask == mask {
			s.Amp[i] = -s.Amp[i]
		}
	}
}

// Norm returns <ψ|ψ>.
func (s *State) Norm() float64 {
	n := 0.0
	for _, a := range s.Amp {
		n += real(a)*real(a) + imag(a)*imag(a)
	}
	return n
}

// Probabilities returns |amp|² per basis state.
func (s *State) Probabilities() []float64 {
	p := make([]float64, len(s.Amp))
	for i, a := range s.Amp {
		p[i] = real(a)*real(a) + imag(a)*imag(a)
	}
	return p
}

// Measure draws shots measurements in the computational basis and returns
// the outcomes in the order they were drawn.
func (s *State) Measure(rng *rand.Rand, shots int) []uint64 {
	cdf := s.Probabilities()
	for i := 1; i < len(cdf); i++ {
		cdf[i] += cdf[i-1]
	}
	total := cdf[len(cdf)-1]
	out := make([]uint64, shots)
	for k := range out {
		u := rng.Float64() * total
		i := sort.SearchFloat64s(cdf, u)
		if i >= len(cdf) {
			i = len(cdf) - 1
		}
		out[k] = uint64(i)
	}
	return out
}

// Sample draws shots measurements and tallies them per outcome.
func (s *State) Sample(rng *rand.Rand, shots int) map[uint64]int {
	counts := make(map[uint64]int)
	for _, o := range s.Measure(rng, shots) {
		counts[o]++
	}
	return counts
}

// Fidelity returns |<a|b>|².
func Fidelity(a, b *State) float64 {
	var s complex128
	for i := range a.Amp {
		s += cmplx.Conj(a.Amp[i]) * b.Amp[i]
	}
	return real(s)*real(s) + imag(s)*imag(s)
}
