// Package estimator evaluates expectation values of qubit operators on
// parameterised circuits.
package estimator

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"github.com/san-kum/vqelab/internal/circuit"
	"github.com/san-kum/vqelab/internal/noise"
	"github.com/san-kum/vqelab/internal/pauli"
)

// Estimator returns <ψ(params)|op|ψ(params)> for the state prepared by c.
type Estimator interface {
	Estimate(ctx context.Context, c *circuit.Circuit, params []float64, op *pauli.Op) (float64, error)
}

// Statevector computes exact expectation values.
type Statevector struct {
	mu       sync.Mutex
	compiled map[*pauli.Op]*pauli.Compiled
}

func NewStatevector() *Statevector {
	return &Statevector{compiled: make(map[*pauli.Op]*pauli.Compiled)}
}

func (e *Statevector) compile(op *pauli.Op) *pauli.Compiled {
	e.mu.Lock()
	defer e.mu.Unlock()
	c, ok := e.compiled[op]
	if !ok {
		c = op.Compile()
		e.compiled[op] = c
	}
	return c
}

func (e *Statevector) Estimate(ctx context.Context, c *circuit.Circuit, params []float64, op *pauli.Op) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if op.NumQubits != c.NumQubits {
		return 0, fmt.Errorf("estimator: operator on %d qubits, circuit on %d", op.NumQubits, c.NumQubits)
	}
	s, err := circuit.Run(c, params)
	if err != nil {
		return 0, err
	}
	return e.compile(op).Expectation(s.Amp), nil
}

// Sampler estimates from measurement counts, one circuit per qubit-wise
// commuting group, optionally under a noise model.
type Sampler struct {
	Shots        int
	Trajectories int
	Noise        *noise.Model

	mu     sync.Mutex
	rng    *rand.Rand
	groups map[*pauli.Op]groupedOp
}

type groupedOp struct {
	groups   []pauli.Group
	identity complex128
}

// NewSampler seeds its own random source so runs are reproducible.
func NewSampler(shots int, model *noise.Model, trajectories int, seed int64) *Sampler {
	return &Sampler{
		Shots:        shots,
		Trajectories: trajectories,
		Noise:        model,
		rng:          rand.New(rand.NewSource(seed)),
		groups:       make(map[*pauli.Op]groupedOp),
	}
}

func (e *Sampler) grouped(op *pauli.Op) groupedOp {
	g, ok := e.groups[op]
	if !ok {
		gs, id := pauli.GroupQubitWise(op)
		g = groupedOp{groups: gs, identity: id}
		e.groups[op] = g
	}
	return g
}

// NumGroups is the number of measurement circuits needed for op.
func (e *Sampler) NumGroups(op *pauli.Op) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.grouped(op).groups)
}

func (e *Sampler) Estimate(ctx context.Context, c *circuit.Circuit, params []float64, op *pauli.Op) (float64, error) {
	if op.NumQubits != c.NumQubits {
		return 0, fmt.Errorf("estimator: operator on %d qubits, circuit on %d", op.NumQubits, c.NumQubits)
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	g := e.grouped(op)
	total := g.identity
	for _, grp := range g.groups {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		mc := MeasurementCircuit(c, grp.Basis)
		counts, err := e.Noise.Sample(mc, params, e.Shots, e.Trajectories, e.rng)
		if err != nil {
			return 0, err
		}
		total += grp.EstimateFromCounts(counts)
	}
	return real(total), nil
}

// MeasurementCircuit appends the rotations that map basis onto Z:
// h for X and sdg·h for Y.
func MeasurementCircuit(c *circuit.Circuit, basis pauli.String) *circuit.Circuit {
	m := circuit.New(c.NumQubits).Compose(c)
	for q := 0; q < c.NumQubits; q++ {
		switch basis.At(q) {
		case 'X':
			m.H(q)
		case 'Y':
			m.Sdg(q).H(q)
		}
	}
	return m
}
