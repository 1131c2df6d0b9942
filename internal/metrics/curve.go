package metrics

import "math"

// ChemicalAccuracy is 1 kcal/mol in Hartree.
const ChemicalAccuracy = 1.6e-3

// Sample is one point of a potential-energy curve.
type Sample struct {
	R        float64
	VQE      float64
	Exact    float64
	HasExact bool
}

func (s Sample) delta() float64 { return s.VQE - s.Exact }

type Metric interface {
	Name() string
	Observe(s Sample)
	Value() float64
	Reset()
}

// Defaults returns the metrics archived with every sweep.
func Defaults() []Metric {
	return []Metric{
		NewMaxAbsDelta(),
		NewMeanAbsDelta(),
		NewWithinAccuracy(ChemicalAccuracy),
		NewMinEnergy(),
	}
}

// Evaluate feeds samples through ms and collects their values by name.
func Evaluate(ms []Metric, samples []Sample) map[string]float64 {
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		m.Reset()
		for _, s := range samples {
			m.Observe(s)
		}
		out[m.Name()] = m.Value()
	}
	return out
}

type MaxAbsDelta struct {
	max float64
}

func NewMaxAbsDelta() *MaxAbsDelta { return &MaxAbsDelta{} }

func (m *MaxAbsDelta) Name() string { return "max_abs_delta_ha" }

func (m *MaxAbsDelta) Observe(s Sample) {
	if s.HasExact {
		m.max = math.Max(m.max, math.Abs(s.delta()))
	}
}

func (m *MaxAbsDelta) Value() float64 { return m.max }
func (m *MaxAbsDelta) Reset()         { m.max = 0 }

type MeanAbsDelta struct {
	sum     float64
	samples int
}

func NewMeanAbsDelta() *MeanAbsDelta { return &MeanAbsDelta{} }

func (m *MeanAbsDelta) Name() string { return "mean_abs_delta_ha" }

func (m *MeanAbsDelta) Observe(s Sample) {
	if !s.HasExact {
		return
	}
	m.sum += math.Abs(s.delta())
	m.samples++
}

func (m *MeanAbsDelta) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *MeanAbsDelta) Reset() {
	m.sum = 0
	m.samples = 0
}

// WithinAccuracy is the fraction of points whose |Δ| does not exceed the
// threshold. Points without a reference do not count.
type WithinAccuracy struct {
	threshold float64
	hits      int
	samples   int
}

func NewWithinAccuracy(threshold float64) *WithinAccuracy {
	return &WithinAccuracy{threshold: threshold}
}

func (w *WithinAccuracy) Name() string { return "chem_acc_fraction" }

func (w *WithinAccuracy) Observe(s Sample) {
	if !s.HasExact {
		return
	}
	w.samples++
	if math.Abs(s.delta()) <= w.threshold {
		w.hits++
	}
}

func (w *WithinAccuracy) Value() float64 {
	if w.samples == 0 {
		return 0
	}
	return float64(w.hits) / float64(w.samples)
}

func (w *WithinAccuracy) Reset() {
	w.hits = 0
	w.samples = 0
}

type MinEnergy struct {
	min  float64
	seen bool
}

func NewMinEnergy() *MinEnergy { return &MinEnergy{} }

func (m *MinEnergy) Name() string { return "min_vqe_energy_ha" }

func (m *MinEnergy) Observe(s Sample) {
	if !m.seen || s.VQE < m.min {
		m.min = s.VQE
		m.seen = true
	}
}

func (m *MinEnergy) Value() float64 { return m.min }

func (m *MinEnergy) Reset() {
	m.min = 0
	m.seen = false
}
