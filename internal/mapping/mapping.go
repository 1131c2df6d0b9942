// Package mapping turns fermionic operators into qubit operators.
package mapping

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/san-kum/vqelab/internal/fermion"
	"github.com/san-kum/vqelab/internal/pauli"
)

var ErrUnknownMapping = errors.New("Unknown mapping")

// Mapper encodes n fermionic modes on n qubits.
type Mapper interface {
	Name() string
	// Map returns the qubit operator for op, simplified.
	Map(op *fermion.Op) *pauli.Op
	// Occupation encodes an occupation-number vector as a computational
	// basis state.
	Occupation(occupied []bool) uint64
}

// simplifyTol drops terms that cancel to round-off during mapping.
const simplifyTol = 1e-12

var registry = map[string]func() Mapper{
	"jw":     func() Mapper { return newLadderMapper("jw", jwLadder, jwOccupation) },
	"parity": func() Mapper { return newLadderMapper("parity", parityLadder, parityOccupation) },
}

// Get returns the mapper registered under name, ignoring case.
func Get(name string) (Mapper, error) {
	f, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMapping, name)
	}
	return f(), nil
}

// Names lists registered mappers.
func Names() []string {
	out := make([]string, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// ladderFunc returns the annihilation operator of mode j out of n.
type ladderFunc func(j, n int) *pauli.Op

type ladderMapper struct {
	name       string
	annihilate ladderFunc
	occupation func([]bool) uint64

	mu    sync.Mutex
	cache map[[2]int]*pauli.Op
}

func newLadderMapper(name string, a ladderFunc, occ func([]bool) uint64) *ladderMapper {
	return &ladderMapper{name: name, annihilate: a, occupation: occ, cache: make(map[[2]int]*pauli.Op)}
}

func (m *ladderMapper) Name() string { return m.name }

func (m *ladderMapper) Occupation(occupied []bool) uint64 { return m.occupation(occupied) }

// ladder returns a_j or a†_j on n modes, memoised.
func (m *ladderMapper) ladder(l fermion.Ladder, n int) *pauli.Op {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := [2]int{l.Mode, n}
	a, ok := m.cache[key]
	if !ok {
		a = m.annihilate(l.Mode, n)
		m.cache[key] = a
	}
	if l.Dagger {
		return a.Adjoint()
	}
	return a
}

func (m *ladderMapper) Map(op *fermion.Op) *pauli.Op {
	n := op.NumModes
	out := pauli.NewOp(n)
	for _, t := range op.Terms {
		prod := pauli.Identity(n, t.Coeff)
		for _, l := range t.Ops {
			prod = prod.Mul(m.ladder(l, n))
		}
		out.AddOp(prod)
	}
	return out.Simplify(simplifyTol)
}

// jwLadder: a_j = ½(X_j + iY_j) Z_{j-1}…Z_0.
func jwLadder(j, n int) *pauli.Op {
	var z uint64
	for k := 0; k < j; k++ {
		z |= 1 << k
	}
	bit := uint64(1) << j
	return pauli.NewOp(n).
		Add(pauli.String{X: bit, Z: z}, 0.5).
		Add(pauli.String{X: bit, Z: z | bit}, 0.5i)
}

func jwOccupation(occupied []bool) uint64 {
	var b uint64
	for j, o := range occupied {
		if o {
			b |= 1 << j
		}
	}
	return b
}

// parityLadder: qubit j stores n_0⊕…⊕n_j, so
// a_j = ½(X_{>j} X_j Z_{j-1} + i X_{>j} Y_j).
func parityLadder(j, n int) *pauli.Op {
	var upper uint64
	for k := j + 1; k < n; k++ {
		upper |= 1 << k
	}
	bit := uint64(1) << j
	var below uint64
	if j > 0 {
		below = 1 << (j - 1)
	}
	return pauli.NewOp(n).
		Add(pauli.String{X: upper | bit, Z: below}, 0.5).
		Add(pauli.String{X: upper | bit, Z: bit}, 0.5i)
}

func parityOccupation(occupied []bool) uint64 {
	var b uint64
	parity := false
	for j, o := range occupied {
		parity = parity != o
		if parity {
			b |= 1 << j
		}
	}
	return b
}
