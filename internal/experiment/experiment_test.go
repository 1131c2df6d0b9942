package experiment_test

import (
	"context"
	"errors"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/vqelab/internal/experiment"
	"github.com/san-kum/vqelab/internal/metrics"
	"github.com/san-kum/vqelab/internal/problem"
)

func h2Config(rs ...float64) experiment.Config {
	return experiment.Config{
		Molecule:    "h2",
		BondLengths: rs,
		Mapping:     "jw",
		Ansatz:      "UCCSD",
		Optimizer:   "SLSQP",
	}
}

var _ = Describe("Sweep", func() {
	It("reproduces the exact H2 curve with the ideal backend", func() {
		exp, err := experiment.New(h2Config(0.6, 0.735, 0.9), nil)
		Expect(err).NotTo(HaveOccurred())

		var lines []string
		points, err := exp.Run(context.Background(), func(p experiment.Point) {
			lines = append(lines, p.String())
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(points).To(HaveLen(3))
		Expect(lines).To(HaveLen(3))

		for _, p := range points {
			Expect(p.Delta).To(BeNumerically("~", 0, 1e-6))
			Expect(p.Exact).To(BeNumerically("<", p.HF))
			Expect(p.NumQubits).To(Equal(4))
			Expect(p.NumParameters).To(Equal(3))
		}
		Expect(points[1].Exact).To(BeNumerically("~", -1.8573, 5e-4))
		Expect(lines[1]).To(HavePrefix("R=0.735 Å | VQE=-1.85"))
		Expect(lines[1]).To(ContainSubstring("| Δ="))

		m := metrics.Evaluate(metrics.Defaults(), experiment.Samples(points))
		Expect(m["chem_acc_fraction"]).To(Equal(1.0))
	})

	It("keeps bond-length order with parallel jobs", func() {
		cfg := h2Config(0.5, 0.7, 0.9, 1.1)
		cfg.Jobs = 3
		exp, err := experiment.New(cfg, nil)
		Expect(err).NotTo(HaveOccurred())

		var seen []float64
		points, err := exp.Run(context.Background(), func(p experiment.Point) { seen = append(seen, p.R) })
		Expect(err).NotTo(HaveOccurred())
		Expect(seen).To(Equal([]float64{0.5, 0.7, 0.9, 1.1}))
		for i, p := range points {
			Expect(p.Index).To(Equal(i))
		}
	})

	It("reports total energies on request", func() {
		cfg := h2Config(0.735)
		cfg.Total = true
		total, err := experiment.New(cfg, nil)
		Expect(err).NotTo(HaveOccurred())
		elec, err := experiment.New(h2Config(0.735), nil)
		Expect(err).NotTo(HaveOccurred())

		a, err := total.Run(context.Background(), nil)
		Expect(err).NotTo(HaveOccurred())
		b, err := elec.Run(context.Background(), nil)
		Expect(err).NotTo(HaveOccurred())

		s, err := total.Prepare(0.735)
		Expect(err).NotTo(HaveOccurred())
		Expect(a[0].Exact - b[0].Exact).To(BeNumerically("~", s.Problem.ConstantEnergy(), 1e-9))
		Expect(a[0].Exact).To(BeNumerically("~", -1.1373, 5e-4))
		Expect(b[0].Exact).To(BeNumerically("~", -1.8573, 5e-4))
		Expect(a[0].Delta).To(BeNumerically("~", b[0].Delta, 1e-9))
	})

	It("defaults to the full exact mode and SLSQP", func() {
		exp, err := experiment.New(experiment.Config{Molecule: "H2", BondLengths: []float64{0.735}, Mapping: "jw", Ansatz: "uccsd"}, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(exp.Config().ExactMode).To(Equal(experiment.ExactFull))
		Expect(exp.Config().Optimizer).To(Equal(experiment.DefaultOptimizer))
		Expect(exp.Config().Total).To(BeFalse())
	})

	It("knows the evaluation budget of its optimiser", func() {
		cfg := h2Config(0.735)
		cfg.Optimizer = "GRID"
		exp, err := experiment.New(cfg, nil)
		Expect(err).NotTo(HaveOccurred())
		s, err := exp.Prepare(0.735)
		Expect(err).NotTo(HaveOccurred())
		Expect(exp.EvaluationBudget(s)).To(Equal(729))
	})

	It("agrees between sector and full exact modes for H2", func() {
		exp, err := experiment.New(h2Config(0.735), nil)
		Expect(err).NotTo(HaveOccurred())
		s, err := exp.Prepare(0.735)
		Expect(err).NotTo(HaveOccurred())
		full, err := exp.ExactEnergy(s)
		Expect(err).NotTo(HaveOccurred())

		cfg := h2Config(0.735)
		cfg.ExactMode = experiment.ExactSector
		sector, err := experiment.New(cfg, nil)
		Expect(err).NotTo(HaveOccurred())
		want, err := sector.ExactEnergy(s)
		Expect(err).NotTo(HaveOccurred())
		Expect(full).To(BeNumerically("<=", want+1e-10))
	})

	It("runs LiH in a reduced active space", func() {
		cfg := h2Config(1.6)
		cfg.Molecule = "LiH"
		cfg.FreezeCore = true
		cfg.Active = &problem.ActiveSpace{Electrons: 2, Orbitals: 2}
		cfg.ExactMode = experiment.ExactSector
		cfg.Total = true
		exp, err := experiment.New(cfg, nil)
		Expect(err).NotTo(HaveOccurred())
		points, err := exp.Run(context.Background(), nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(points[0].NumQubits).To(Equal(4))
		Expect(points[0].Delta).To(BeNumerically("~", 0, 1e-6))
		Expect(points[0].VQE).To(BeNumerically("<", -7.8))
	})

	DescribeTable("rejects bad configuration",
		func(mutate func(*experiment.Config), message string) {
			cfg := h2Config(0.735)
			mutate(&cfg)
			_, err := experiment.New(cfg, nil)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring(message))
		},
		Entry("molecule", func(c *experiment.Config) { c.Molecule = "BeH2" }, "Unsupported molecule: BeH2"),
		Entry("mapping", func(c *experiment.Config) { c.Mapping = "bk" }, "Unknown mapping: bk"),
		Entry("ansatz", func(c *experiment.Config) { c.Ansatz = "hea" }, "Only UCCSD is supported"),
		Entry("optimizer", func(c *experiment.Config) { c.Optimizer = "ADAM" }, "Unsupported optimizer"),
		Entry("backend", func(c *experiment.Config) { c.Backend = "qpu" }, "unknown backend"),
		Entry("exact mode", func(c *experiment.Config) { c.ExactMode = "dmrg" }, "unknown exact mode"),
		Entry("range", func(c *experiment.Config) { c.BondLengths = nil }, "Provide --r"),
	)

	It("surfaces invalid active spaces per point", func() {
		cfg := h2Config(0.735)
		cfg.Active = &problem.ActiveSpace{Electrons: 3, Orbitals: 2}
		exp, err := experiment.New(cfg, nil)
		Expect(err).NotTo(HaveOccurred())
		_, err = exp.Run(context.Background(), nil)
		Expect(err).To(HaveOccurred())
		var be *problem.BuildError
		Expect(errors.As(err, &be)).To(BeTrue())
		Expect(be.Stage).To(Equal("active space"))
		Expect(strings.HasPrefix(err.Error(), "R=0.735")).To(BeTrue())
	})
})

var _ = Describe("Noisy runs", func() {
	It("keeps the lowest of several restarts", func() {
		cfg := experiment.NoisyConfig{
			Molecule:  "H2",
			R:         0.735,
			Mapping:   "parity",
			Optimizer: "COBYLA",
			Restarts:  2,
			Backend: experiment.BackendConfig{
				Shots:        512,
				Trajectories: 4,
				Noise:        "none",
			},
			Total: true,
			Seed:  42,
		}
		var seen []int
		res, err := experiment.RunNoisy(context.Background(), cfg, nil, func(r experiment.Restart) {
			seen = append(seen, r.Index)
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(seen).To(Equal([]int{1, 2}))
		Expect(res.Restarts).To(HaveLen(2))
		Expect(res.NumQubits).To(Equal(4))
		Expect(res.Groups).To(BeNumerically(">", 0))
		Expect(res.Meta.Active).NotTo(BeNil())
		best := res.BestRestart()
		for _, r := range res.Restarts {
			Expect(best.Energy).To(BeNumerically("<=", r.Energy))
			Expect(r.Shots).To(Equal(512))
			Expect(r.Exact).To(BeNumerically("~", -1.137, 2e-3))
		}
	})

	It("freezes the LiH core", func() {
		cfg := experiment.NoisyConfig{
			Molecule:  "LiH",
			R:         1.6,
			Mapping:   "jw",
			Optimizer: "COBYLA",
			Restarts:  1,
			Backend:   experiment.BackendConfig{Shots: 256, Trajectories: 2, Noise: "none"},
		}
		res, err := experiment.RunNoisy(context.Background(), cfg, nil, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Meta.FreezeCore).To(BeTrue())
		Expect(res.NumQubits).To(Equal(4))
	})

	It("uses SPSA when no optimizer is set", func() {
		cfg := experiment.NoisyConfig{
			Molecule: "H2",
			R:        0.735,
			Mapping:  "jw",
			Restarts: 1,
			Backend:  experiment.BackendConfig{Shots: 64, Trajectories: 1, Noise: "none"},
		}
		res, err := experiment.RunNoisy(context.Background(), cfg, nil, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Optimizer).To(Equal(experiment.DefaultNoisyOptimizer))
		Expect(res.Restarts[0].Exact).To(BeNumerically("~", -1.8573, 5e-4))
	})

	It("rejects a bad bond length", func() {
		_, err := experiment.RunNoisy(context.Background(), experiment.NoisyConfig{Molecule: "H2", Mapping: "jw"}, nil, nil)
		Expect(err).To(HaveOccurred())
	})
})
