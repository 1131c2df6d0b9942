package pauli

import (
	"math/bits"
	"math/cmplx"
	"sort"
)

// Group is a set of qubit-wise commuting terms measurable in one basis.
// Basis holds the measured Pauli per qubit (X, Y or Z); qubits outside
// its support are measured in Z.
type Group struct {
	Basis String
	Terms []Term
}

// GroupQubitWise partitions the non-identity terms greedily, largest
// coefficients first. The identity term is returned separately.
func GroupQubitWise(o *Op) ([]Group, complex128) {
	terms := o.Terms()
	sort.SliceStable(terms, func(i, j int) bool {
		return cmplx.Abs(terms[i].Coeff) > cmplx.Abs(terms[j].Coeff)
	})

	var identity complex128
	var groups []Group
	for _, t := range terms {
		if t.String.IsIdentity() {
			identity += t.Coeff
			continue
		}
		placed := false
		for i := range groups {
			if QubitWiseCommutes(groups[i].Basis, t.String) {
				groups[i].Basis.X |= t.String.X
				groups[i].Basis.Z |= t.String.Z
				groups[i].Terms = append(groups[i].Terms, t)
				placed = true
				break
			}
		}
		if !placed {
			groups = append(groups, Group{Basis: t.String, Terms: []Term{t}})
		}
	}
	return groups, identity
}

// Parity returns the ±1 eigenvalue of the rotated term on a measured
// bitstring: after basis rotation every factor of p reads as Z.
func Parity(p String, outcome uint64) float64 {
	if bits.OnesCount64(outcome&p.Support())%2 == 1 {
		return -1
	}
	return 1
}

// EstimateFromCounts evaluates Σ c_k <P_k> from measurement counts taken
// in the group's basis. Outcomes are summed in ascending order so the
// result does not depend on map iteration.
func (g Group) EstimateFromCounts(counts map[uint64]int) complex128 {
	outcomes := make([]uint64, 0, len(counts))
	total := 0
	for o, n := range counts {
		outcomes = append(outcomes, o)
		total += n
	}
	if total == 0 {
		return 0
	}
	sort.Slice(outcomes, func(i, j int) bool { return outcomes[i] < outcomes[j] })

	var s complex128
	for _, t := range g.Terms {
		acc := 0.0
		for _, o := range outcomes {
			acc += Parity(t.String, o) * float64(counts[o])
		}
		s += t.Coeff * complex(acc/float64(total), 0)
	}
	return s
}
