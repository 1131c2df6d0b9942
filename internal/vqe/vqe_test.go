package vqe_test

import (
	"context"
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/vqelab/internal/ansatz"
	"github.com/san-kum/vqelab/internal/estimator"
	"github.com/san-kum/vqelab/internal/exact"
	"github.com/san-kum/vqelab/internal/mapping"
	"github.com/san-kum/vqelab/internal/noise"
	"github.com/san-kum/vqelab/internal/optim"
	"github.com/san-kum/vqelab/internal/pauli"
	"github.com/san-kum/vqelab/internal/problem"
	"github.com/san-kum/vqelab/internal/vqe"
)

var _ = Describe("VQE", func() {
	var (
		p      *problem.Problem
		op     *pauli.Op
		a      *ansatz.Ansatz
		init   []float64
		target float64
	)

	BeforeEach(func() {
		var err error
		p, _, err = problem.Build("H2", 0.735, "sto3g", false, nil)
		Expect(err).NotTo(HaveOccurred())
		m, err := mapping.Get("jw")
		Expect(err).NotTo(HaveOccurred())
		op = m.Map(p.Hamiltonian())
		a, init, err = ansatz.Build(p, m, "uccsd")
		Expect(err).NotTo(HaveOccurred())
		na, nb := p.NumParticles()
		target, err = exact.SectorGroundEnergy(op, m, p.NumSpinOrbitals(), na, nb)
		Expect(err).NotTo(HaveOccurred())
	})

	Context("with an ideal estimator", func() {
		DescribeTable("reaches the exact H2 energy",
			func(name string, tol float64) {
				opt, err := optim.Get(name)
				Expect(err).NotTo(HaveOccurred())
				res, err := vqe.Run(context.Background(), op, a.Circuit, init, opt, estimator.NewStatevector(), vqe.Options{KeepTrace: true})
				Expect(err).NotTo(HaveOccurred())
				Expect(res.Energy).To(BeNumerically("~", target, tol))
				Expect(res.Evaluations).To(Equal(len(res.Trace)))
				Expect(res.OptimalParameters).To(HaveLen(a.NumParameters()))
			},
			Entry("SLSQP", "SLSQP", 1e-6),
			Entry("L_BFGS_B", "L_BFGS_B", 1e-6),
			Entry("COBYLA", "COBYLA", 1e-5),
		)

		It("starts from the Hartree-Fock energy", func() {
			opt, _ := optim.Get("SLSQP")
			res, err := vqe.Run(context.Background(), op, a.Circuit, init, opt, estimator.NewStatevector(), vqe.Options{KeepTrace: true})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Trace[0] + p.ConstantEnergy()).To(BeNumerically("~", p.Meta.HFEnergy, 1e-8))
			Expect(res.Energy).To(BeNumerically("<=", res.Trace[0]))
		})

		It("invokes the callback for every evaluation", func() {
			calls := 0
			opt, _ := optim.Get("SLSQP")
			res, err := vqe.Run(context.Background(), op, a.Circuit, init, opt, estimator.NewStatevector(), vqe.Options{
				Callback: func(eval int, params []float64, energy float64) {
					calls++
					Expect(eval).To(Equal(calls))
					Expect(params).To(HaveLen(3))
				},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(calls).To(Equal(res.Evaluations))
		})

		It("rejects an initial point of the wrong size", func() {
			opt, _ := optim.Get("SLSQP")
			_, err := vqe.Run(context.Background(), op, a.Circuit, []float64{0}, opt, estimator.NewStatevector(), vqe.Options{})
			Expect(err).To(HaveOccurred())
		})

		It("stops when the context is cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			opt, _ := optim.Get("SLSQP")
			_, err := vqe.Run(ctx, op, a.Circuit, init, opt, estimator.NewStatevector(), vqe.Options{})
			Expect(errors.Is(err, context.Canceled)).To(BeTrue())
		})
	})

	Context("with random initial points", func() {
		It("draws parameters in [-2π, 2π] reproducibly", func() {
			x := vqe.RandomPoint(50, 7)
			Expect(x).To(Equal(vqe.RandomPoint(50, 7)))
			for _, v := range x {
				Expect(math.Abs(v)).To(BeNumerically("<=", 2*math.Pi))
			}
		})

		It("keeps the best of several noisy restarts", func() {
			est := estimator.NewSampler(1024, noise.Generic(noise.DefaultP1, noise.DefaultP2), 4, 11)
			newOpt := func() (optim.Optimizer, error) {
				cfg := optim.DefaultSPSAConfig()
				cfg.MaxIter = 20
				cfg.CalibrationSteps = 5
				cfg.BlockingSamples = 5
				return optim.NewSPSA(cfg), nil
			}
			seen := 0
			out, err := vqe.RunRestarts(context.Background(), 2, op, a.Circuit, newOpt, est, vqe.Options{Seed: 3},
				func(k int, r *vqe.Result) { seen++ })
			Expect(err).NotTo(HaveOccurred())
			Expect(out.Runs).To(HaveLen(2))
			Expect(seen).To(Equal(2))
			for _, r := range out.Runs {
				Expect(out.BestResult().Energy).To(BeNumerically("<=", r.Energy))
			}
			Expect(out.Runs[0].InitialPoint).NotTo(Equal(out.Runs[1].InitialPoint))
		})

		It("requires at least one restart", func() {
			_, err := vqe.RunRestarts(context.Background(), 0, op, a.Circuit, nil, estimator.NewStatevector(), vqe.Options{}, nil)
			Expect(err).To(MatchError(vqe.ErrNoRestarts))
		})
	})
})
