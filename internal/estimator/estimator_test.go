package estimator

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/vqelab/internal/circuit"
	"github.com/san-kum/vqelab/internal/noise"
	"github.com/san-kum/vqelab/internal/pauli"
)

func testOperator(t *testing.T) *pauli.Op {
	t.Helper()
	op, err := pauli.ParseTerms("-0.8 II; 0.17 IZ; -0.22 ZI; 0.12 ZZ; 0.18 XX; 0.18 YY; 0.05 XY")
	if err != nil {
		t.Fatal(err)
	}
	return op
}

func testCircuit() *circuit.Circuit {
	return circuit.New(2).RY(0, circuit.Theta(0)).CX(0, 1).RX(1, circuit.Theta(1)).S(0)
}

func TestSamplerConvergesToStatevector(t *testing.T) {
	op := testOperator(t)
	c := testCircuit()
	params := []float64{0.9, -0.4}
	ctx := context.Background()

	exact, err := NewStatevector().Estimate(ctx, c, params, op)
	if err != nil {
		t.Fatal(err)
	}
	direct, _ := circuit.Run(c, params)
	if d := math.Abs(exact - real(op.Expectation(direct.Amp))); d > 1e-12 {
		t.Errorf("statevector estimate off by %g", d)
	}

	s := NewSampler(200000, nil, 0, 11)
	sampled, err := s.Estimate(ctx, c, params, op)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(sampled-exact) > 0.01 {
		t.Errorf("sampled %.5f too far from exact %.5f", sampled, exact)
	}
	if s.NumGroups(op) != 4 {
		t.Errorf("expected 4 measurement groups, got %d", s.NumGroups(op))
	}
}

func TestSamplerIsSeeded(t *testing.T) {
	op := testOperator(t)
	c := testCircuit()
	params := []float64{0.3, 0.2}
	a, _ := NewSampler(512, noise.Generic(0.01, 0.05), 8, 5).Estimate(context.Background(), c, params, op)
	b, _ := NewSampler(512, noise.Generic(0.01, 0.05), 8, 5).Estimate(context.Background(), c, params, op)
	if a != b {
		t.Errorf("same seed gave %f and %f", a, b)
	}
}

func TestMeasurementCircuitLeavesInputAlone(t *testing.T) {
	c := testCircuit()
	n := len(c.Gates)
	basis, _ := pauli.ParseLabel("YX")
	m := MeasurementCircuit(c, basis)
	if len(c.Gates) != n {
		t.Error("input circuit was modified")
	}
	if len(m.Gates) != n+3 {
		t.Errorf("expected 3 rotation gates, got %d", len(m.Gates)-n)
	}
}

func TestEstimateErrors(t *testing.T) {
	op := testOperator(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewStatevector().Estimate(ctx, testCircuit(), []float64{0, 0}, op); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if _, err := NewSampler(10, nil, 0, 1).Estimate(context.Background(), circuit.New(3), nil, op); err == nil {
		t.Error("expected qubit mismatch error")
	}
}
