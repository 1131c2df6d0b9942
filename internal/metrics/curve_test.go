package metrics

import (
	"math"
	"testing"
)

func curve() []Sample {
	return []Sample{
		{R: 0.5, VQE: -1.0550, Exact: -1.0551, HasExact: true},
		{R: 0.7, VQE: -1.1360, Exact: -1.1362, HasExact: true},
		{R: 0.9, VQE: -1.1150, Exact: -1.1200, HasExact: true},
		{R: 1.1, VQE: -1.0800},
	}
}

func TestEvaluate(t *testing.T) {
	got := Evaluate(Defaults(), curve())

	tests := []struct {
		name     string
		expected float64
	}{
		{"max_abs_delta_ha", 0.005},
		{"mean_abs_delta_ha", (0.0001 + 0.0002 + 0.005) / 3},
		{"chem_acc_fraction", 2.0 / 3.0},
		{"min_vqe_energy_ha", -1.1360},
	}
	for _, tt := range tests {
		v, ok := got[tt.name]
		if !ok {
			t.Errorf("missing metric %s", tt.name)
			continue
		}
		if math.Abs(v-tt.expected) > 1e-12 {
			t.Errorf("%s: expected %f, got %f", tt.name, tt.expected, v)
		}
	}
}

func TestMetricReset(t *testing.T) {
	for _, m := range Defaults() {
		for _, s := range curve() {
			m.Observe(s)
		}
		m.Reset()
		if m.Value() != 0 {
			t.Errorf("%s: expected zero after reset, got %f", m.Name(), m.Value())
		}
	}
}

func TestEvaluateTwiceIsStable(t *testing.T) {
	ms := Defaults()
	a := Evaluate(ms, curve())
	b := Evaluate(ms, curve())
	for k, v := range a {
		if b[k] != v {
			t.Errorf("%s changed between evaluations: %f vs %f", k, v, b[k])
		}
	}
}

func TestNoReference(t *testing.T) {
	got := Evaluate(Defaults(), []Sample{{R: 1, VQE: -1}})
	if got["chem_acc_fraction"] != 0 || got["max_abs_delta_ha"] != 0 {
		t.Errorf("expected zero deltas without reference, got %v", got)
	}
	if got["min_vqe_energy_ha"] != -1 {
		t.Errorf("expected min energy -1, got %f", got["min_vqe_energy_ha"])
	}
}
