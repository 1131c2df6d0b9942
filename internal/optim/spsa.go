package optim

import (
	"context"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"gonum.org/v1/gonum/stat"
)

// SPSAConfig holds the gain schedule and safeguards of SPSA.
type SPSAConfig struct {
	MaxIter int
	// Blocking rejects steps that raise F by more than twice the standard
	// deviation of repeated evaluations at the start point.
	Blocking bool
	// TrustRegion caps the update norm at 1.
	TrustRegion bool

	// Gains a_k = LearningRate/(k+1+A)^Alpha, c_k = Perturbation/(k+1)^Gamma.
	// LearningRate 0 triggers calibration.
	LearningRate     float64
	Perturbation     float64
	Alpha            float64
	Gamma            float64
	Stability        float64
	TargetMagnitude  float64
	CalibrationSteps int
	BlockingSamples  int

	Seed   int64
	Logger *slog.Logger
}

func DefaultSPSAConfig() SPSAConfig {
	return SPSAConfig{
		MaxIter:          300,
		Blocking:         true,
		TrustRegion:      true,
		Perturbation:     0.2,
		Alpha:            0.602,
		Gamma:            0.101,
		TargetMagnitude:  2 * math.Pi / 10,
		CalibrationSteps: 25,
		BlockingSamples:  50,
		Seed:             42,
	}
}

// SPSA is simultaneous perturbation stochastic approximation, suited to
// noisy objectives: each step costs two evaluations regardless of dimension.
type SPSA struct {
	cfg SPSAConfig
}

func NewSPSA(cfg SPSAConfig) *SPSA { return &SPSA{cfg: cfg} }

func (s *SPSA) Name() string { return "SPSA" }

// Seed resets the perturbation source.
func (s *SPSA) Seed(seed int64) { s.cfg.Seed = seed }

// evaluations counts calibration pairs, blocking samples, each step and
// the final evaluation.
func (s *SPSA) evaluations() int {
	cfg := s.cfg
	n := 2*cfg.MaxIter + 1
	if cfg.LearningRate == 0 {
		n += 2 * cfg.CalibrationSteps
	}
	if cfg.Blocking {
		n += cfg.BlockingSamples + cfg.MaxIter
	}
	return n
}

func (s *SPSA) Minimize(ctx context.Context, f Func, x0 []float64) (*Result, error) {
	start := time.Now()
	cfg := s.cfg
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	rng := rand.New(rand.NewSource(cfg.Seed))
	c := newCounter(ctx, f)
	n := len(x0)

	fail := func(err error) (*Result, error) {
		x, fx := c.best(x0)
		return &Result{X: x, F: fx, Evaluations: c.evals, Status: "aborted", Runtime: time.Since(start)}, err
	}

	x := append([]float64(nil), x0...)
	plus := make([]float64, n)
	minus := make([]float64, n)
	delta := make([]float64, n)

	a := cfg.LearningRate
	if a == 0 {
		mag := 0.0
		for k := 0; k < cfg.CalibrationSteps; k++ {
			perturb(rng, delta)
			fp, fm, err := s.pair(c, x, delta, cfg.Perturbation, plus, minus)
			if err != nil {
				return fail(err)
			}
			mag += math.Abs((fp - fm) / (2 * cfg.Perturbation))
		}
		if cfg.CalibrationSteps > 0 {
			mag /= float64(cfg.CalibrationSteps)
		}
		a = cfg.TargetMagnitude / mag
		if mag == 0 || a < 1e-10 || math.IsInf(a, 0) {
			a = cfg.TargetMagnitude
		}
		log.Debug("spsa calibrated", "learning_rate", a, "gradient_magnitude", mag)
	}

	var fx, allowed float64
	if cfg.Blocking {
		vals := make([]float64, 0, cfg.BlockingSamples)
		for i := 0; i < cfg.BlockingSamples; i++ {
			v, err := c.eval(x)
			if err != nil {
				return fail(err)
			}
			vals = append(vals, v)
		}
		mean, std := stat.MeanStdDev(vals, nil)
		fx = mean
		allowed = 2 * std
	}

	iter := 0
	for k := 0; k < cfg.MaxIter; k++ {
		iter++
		ak := a / math.Pow(float64(k+1)+cfg.Stability, cfg.Alpha)
		ck := cfg.Perturbation / math.Pow(float64(k+1), cfg.Gamma)

		perturb(rng, delta)
		fp, fm, err := s.pair(c, x, delta, ck, plus, minus)
		if err != nil {
			return fail(err)
		}
		g := (fp - fm) / (2 * ck)

		update := make([]float64, n)
		norm := 0.0
		for i := range update {
			update[i] = ak * g * delta[i]
			norm += update[i] * update[i]
		}
		norm = math.Sqrt(norm)
		if cfg.TrustRegion && norm > 1 {
			for i := range update {
				update[i] /= norm
			}
		}

		next := make([]float64, n)
		for i := range next {
			next[i] = x[i] - update[i]
		}
		if cfg.Blocking {
			fn, err := c.eval(next)
			if err != nil {
				return fail(err)
			}
			if fn > fx+allowed {
				log.Debug("spsa step rejected", "iter", k, "f", fn, "current", fx)
				continue
			}
			fx = fn
		}
		x = next
	}

	final, err := c.eval(x)
	if err != nil {
		return fail(err)
	}
	return &Result{
		X:           x,
		F:           final,
		Evaluations: c.evals,
		Iterations:  iter,
		Status:      "IterationLimit",
		Runtime:     time.Since(start),
	}, nil
}

func (s *SPSA) pair(c *counter, x, delta []float64, ck float64, plus, minus []float64) (float64, float64, error) {
	for i := range x {
		plus[i] = x[i] + ck*delta[i]
		minus[i] = x[i] - ck*delta[i]
	}
	fp, err := c.eval(plus)
	if err != nil {
		return 0, 0, err
	}
	fm, err := c.eval(minus)
	if err != nil {
		return 0, 0, err
	}
	return fp, fm, nil
}

// perturb fills delta with independent ±1 entries.
func perturb(rng *rand.Rand, delta []float64) {
	for i := range delta {
		if rng.Intn(2) == 0 {
			delta[i] = -1
		} else {
			delta[i] = 1
		}
	}
}
