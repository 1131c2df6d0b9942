// Package noise models gate and readout errors and simulates them with
// Monte-Carlo Pauli trajectories.
package noise

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"github.com/san-kum/vqelab/internal/circuit"
	"github.com/san-kum/vqelab/internal/pauli"
)

var ErrUnknownModel = errors.New("noise: unknown model")

// Default error rates of the generic model.
const (
	DefaultP1           = 0.001
	DefaultP2           = 0.01
	DefaultTrajectories = 32
)

// Model attaches depolarizing errors to named gates and a symmetric
// bit-flip to every measured bit.
type Model struct {
	Name     string
	OneQubit float64
	TwoQubit float64
	Readout  float64

	oneQubitGates map[string]bool
	twoQubitGates map[string]bool
}

// Generic depolarizes x,y,z,h,s,sdg,t,tdg with p1 and cx,cz with p2, and
// flips readout bits with probability p1. Rotations are noiseless.
func Generic(p1, p2 float64) *Model {
	return &Model{
		Name:     "generic",
		OneQubit: p1,
		TwoQubit: p2,
		Readout:  p1,
		oneQubitGates: map[string]bool{
			circuit.GateX: true, circuit.GateY: true, circuit.GateZ: true, circuit.GateH: true,
			circuit.GateS: true, circuit.GateSdg: true, circuit.GateT: true, circuit.GateTdg: true,
		},
		twoQubitGates: map[string]bool{circuit.GateCX: true, circuit.GateCZ: true},
	}
}

// Get resolves "generic" or "none". "none" returns nil, the ideal model.
func Get(name string, p1, p2 float64) (*Model, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "generic":
		if p1 < 0 || p1 > 1 || p2 < 0 || p2 > 1 {
			return nil, fmt.Errorf("noise: probabilities must be in [0,1], got p1=%g p2=%g", p1, p2)
		}
		return Generic(p1, p2), nil
	case "none", "":
		return nil, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownModel, name)
}

// IsIdeal reports whether m introduces no errors. A nil model is ideal.
func (m *Model) IsIdeal() bool {
	return m == nil || (m.OneQubit == 0 && m.TwoQubit == 0 && m.Readout == 0)
}

func (m *Model) String() string {
	if m == nil {
		return "none"
	}
	return fmt.Sprintf("%s(p1=%g, p2=%g)", m.Name, m.OneQubit, m.TwoQubit)
}

// errorRate returns the depolarizing probability after gate g.
func (m *Model) errorRate(g circuit.Gate) float64 {
	switch {
	case m.oneQubitGates[g.Name]:
		return m.OneQubit
	case m.twoQubitGates[g.Name]:
		return m.TwoQubit
	}
	return 0
}

// depolarize draws the Pauli error of a depolarizing channel with
// probability p on qubits: with probability p a uniformly random Pauli
// (identity included) acts on them.
func depolarize(qubits []int, p float64, rng *rand.Rand) (pauli.String, bool) {
	if p == 0 || rng.Float64() >= p {
		return pauli.String{}, false
	}
	var s pauli.String
	for _, q := range qubits {
		switch rng.Intn(4) {
		case 1:
			s.X |= 1 << q
		case 2:
			s.X |= 1 << q
			s.Z |= 1 << q
		case 3:
			s.Z |= 1 << q
		}
	}
	return s, !s.IsIdentity()
}

// Trajectory simulates one noisy realisation of c. pauli_evolution gates
// are decomposed first so that errors land on basis gates.
func (m *Model) Trajectory(c *circuit.Circuit, params []float64, rng *rand.Rand) (*circuit.State, error) {
	d := c.Decompose()
	if err := d.Validate(); err != nil {
		return nil, err
	}
	if len(params) < d.NumParams {
		return nil, fmt.Errorf("%w: circuit needs %d, got %d", circuit.ErrParamMismatch, d.NumParams, len(params))
	}
	s := circuit.NewState(d.NumQubits, 0)
	for _, g := range d.Gates {
		s.Apply(g, params)
		if m.IsIdeal() {
			continue
		}
		if e, ok := depolarize(g.Qubits, m.errorRate(g), rng); ok {
			s.ApplyPauli(e)
		}
	}
	return s, nil
}

// FlipReadout applies the readout error to a measured bitstring.
func (m *Model) FlipReadout(outcome uint64, numQubits int, rng *rand.Rand) uint64 {
	if m == nil || m.Readout == 0 {
		return outcome
	}
	for q := 0; q < numQubits; q++ {
		if rng.Float64() < m.Readout {
			outcome ^= 1 << q
		}
	}
	return outcome
}

// Sample measures c shots times, spreading the shots across trajectories
// independent noise realisations.
func (m *Model) Sample(c *circuit.Circuit, params []float64, shots, trajectories int, rng *rand.Rand) (map[uint64]int, error) {
	if shots <= 0 {
		return nil, fmt.Errorf("noise: shots must be positive, got %d", shots)
	}
	if m.IsIdeal() {
		s, err := circuit.Run(c, params)
		if err != nil {
			return nil, err
		}
		return s.Sample(rng, shots), nil
	}
	if trajectories <= 0 {
		trajectories = DefaultTrajectories
	}
	if trajectories > shots {
		trajectories = shots
	}

	counts := make(map[uint64]int)
	per, extra := shots/trajectories, shots%trajectories
	for k := 0; k < trajectories; k++ {
		n := per
		if k < extra {
			n++
		}
		s, err := m.Trajectory(c, params, rng)
		if err != nil {
			return nil, err
		}
		// readout flips are applied in draw order
		for _, outcome := range s.Measure(rng, n) {
			counts[m.FlipReadout(outcome, c.NumQubits, rng)]++
		}
	}
	return counts, nil
}
