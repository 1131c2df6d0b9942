package experiment

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/vqelab/internal/ansatz"
	"github.com/san-kum/vqelab/internal/exact"
	"github.com/san-kum/vqelab/internal/mapping"
	"github.com/san-kum/vqelab/internal/metrics"
	"github.com/san-kum/vqelab/internal/optim"
	"github.com/san-kum/vqelab/internal/pauli"
	"github.com/san-kum/vqelab/internal/problem"
	"github.com/san-kum/vqelab/internal/vqe"
)

// Exact reference modes. Full diagonalises the whole Fock space, sector
// only the Hartree-Fock particle-number sector.
const (
	ExactSector = "sector"
	ExactFull   = "full"
)

const DefaultOptimizer = "SLSQP"

type Config struct {
	Molecule    string
	Basis       string
	BondLengths []float64
	FreezeCore  bool
	Active      *problem.ActiveSpace
	Mapping     string
	Ansatz      string
	Optimizer   string
	Backend     string
	Backends    BackendConfig
	ExactMode   string
	// Total adds nuclear repulsion and inactive energy to reported
	// energies. Raw eigenvalues are reported otherwise.
	Total  bool
	Jobs   int
	Seed   int64
	Logger *slog.Logger
}

// Point is one solved geometry.
type Point struct {
	Index             int           `json:"index"`
	R                 float64       `json:"r"`
	VQE               float64       `json:"vqe_energy"`
	Exact             float64       `json:"exact_energy"`
	Delta             float64       `json:"delta"`
	HF                float64       `json:"hf_energy"`
	Evaluations       int           `json:"eval_count"`
	WallTime          time.Duration `json:"walltime"`
	NumQubits         int           `json:"num_qubits"`
	NumTerms          int           `json:"num_pauli_terms"`
	NumParameters     int           `json:"num_parameters"`
	OptimalParameters []float64     `json:"optimal_parameters"`
	Status            string        `json:"status"`
}

func (p Point) String() string {
	return fmt.Sprintf("R=%5.3f Å | VQE=%.6f Ha | Exact=%.6f Ha | Δ=%.6f Ha", p.R, p.VQE, p.Exact, p.Delta)
}

// Sample converts p for metrics.
func (p Point) Sample() metrics.Sample {
	return metrics.Sample{R: p.R, VQE: p.VQE, Exact: p.Exact, HasExact: true}
}

type Experiment struct {
	cfg      Config
	registry *Registry
	log      *slog.Logger
}

// New validates every name in cfg up front so a sweep never fails halfway
// on a typo.
func New(cfg Config, registry *Registry) (*Experiment, error) {
	if registry == nil {
		registry = NewRegistry()
	}
	mol, err := registry.GetMolecule(cfg.Molecule)
	if err != nil {
		return nil, err
	}
	cfg.Molecule = mol
	if cfg.Basis == "" {
		cfg.Basis = "sto3g"
	}
	if _, err := registry.GetMapper(cfg.Mapping); err != nil {
		return nil, err
	}
	if cfg.Ansatz, err = registry.GetAnsatz(cfg.Ansatz); err != nil {
		return nil, err
	}
	if cfg.Optimizer == "" {
		cfg.Optimizer = DefaultOptimizer
	}
	if _, err := registry.GetOptimizer(cfg.Optimizer); err != nil {
		return nil, err
	}
	if cfg.Backend == "" {
		cfg.Backend = BackendIdeal
	}
	if _, err := registry.GetBackend(cfg.Backend, cfg.Backends); err != nil {
		return nil, err
	}
	switch strings.ToLower(cfg.ExactMode) {
	case "", ExactFull:
		cfg.ExactMode = ExactFull
	case ExactSector:
		cfg.ExactMode = ExactSector
	default:
		return nil, fmt.Errorf("unknown exact mode: %s (expected %s or %s)", cfg.ExactMode, ExactSector, ExactFull)
	}
	if len(cfg.BondLengths) == 0 {
		return nil, ErrMissingRange
	}
	if cfg.Jobs < 1 {
		cfg.Jobs = 1
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Experiment{cfg: cfg, registry: registry, log: log}, nil
}

func (e *Experiment) Config() Config { return e.cfg }

// Setup is the prepared problem at one bond length.
type Setup struct {
	Problem  *problem.Problem
	Mapper   mapping.Mapper
	Operator *pauli.Op
	Ansatz   *ansatz.Ansatz
	Initial  []float64
}

// Shift is the constant added to eigenvalues for reporting: zero for raw
// eigenvalues, the problem's constant energy for totals.
func (s *Setup) Shift(total bool) float64 {
	if !total {
		return 0
	}
	return s.Problem.ConstantEnergy()
}

// EvaluationBudget is the nominal number of energy evaluations one VQE
// run on s makes with the configured optimiser.
func (e *Experiment) EvaluationBudget(s *Setup) int {
	opt, err := e.registry.GetOptimizer(e.cfg.Optimizer)
	if err != nil {
		return 0
	}
	return optim.EvaluationBudget(opt, s.Ansatz.NumParameters())
}

// Prepare builds the problem, qubit operator and ansatz at r.
func (e *Experiment) Prepare(r float64) (*Setup, error) {
	p, _, err := problem.BuildWithOptions(e.cfg.Molecule, r, e.cfg.Basis, e.cfg.FreezeCore, e.cfg.Active, problem.Options{Logger: e.log})
	if err != nil {
		return nil, err
	}
	m, err := e.registry.GetMapper(e.cfg.Mapping)
	if err != nil {
		return nil, err
	}
	op := m.Map(p.Hamiltonian())
	a, init, err := ansatz.Build(p, m, e.cfg.Ansatz)
	if err != nil {
		return nil, err
	}
	return &Setup{Problem: p, Mapper: m, Operator: op, Ansatz: a, Initial: init}, nil
}

// ExactEnergy is the reference eigenvalue of s under the configured mode.
func (e *Experiment) ExactEnergy(s *Setup) (float64, error) {
	if e.cfg.ExactMode == ExactFull {
		return exact.GroundEnergy(s.Operator)
	}
	na, nb := s.Problem.NumParticles()
	return exact.SectorGroundEnergy(s.Operator, s.Mapper, s.Problem.NumSpinOrbitals(), na, nb)
}

// Solve runs VQE and the exact reference at bond length r. index seeds
// the backend and stochastic optimisers so results do not depend on
// scheduling.
func (e *Experiment) Solve(ctx context.Context, index int, r float64, cb vqe.Callback) (Point, error) {
	s, err := e.Prepare(r)
	if err != nil {
		return Point{}, fmt.Errorf("R=%g: %w", r, err)
	}
	seed := e.cfg.Seed + int64(index)
	opt, err := e.registry.GetOptimizer(e.cfg.Optimizer)
	if err != nil {
		return Point{}, err
	}
	if sd, ok := opt.(vqe.Seeder); ok {
		sd.Seed(seed)
	}
	bcfg := e.cfg.Backends
	bcfg.Seed = seed
	est, err := e.registry.GetBackend(e.cfg.Backend, bcfg)
	if err != nil {
		return Point{}, err
	}

	res, err := vqe.Run(ctx, s.Operator, s.Ansatz.Circuit, s.Initial, opt, est, vqe.Options{Seed: seed, Callback: cb, Logger: e.log})
	if err != nil {
		return Point{}, fmt.Errorf("R=%g: %w", r, err)
	}
	ex, err := e.ExactEnergy(s)
	if err != nil {
		return Point{}, fmt.Errorf("R=%g: %w", r, err)
	}

	shift := s.Shift(e.cfg.Total)
	pt := Point{
		Index:             index,
		R:                 r,
		VQE:               res.Energy + shift,
		Exact:             ex + shift,
		Delta:             res.Energy - ex,
		HF:                s.Problem.Meta.HFEnergy - s.Problem.ConstantEnergy() + shift,
		Evaluations:       res.Evaluations,
		WallTime:          res.WallTime,
		NumQubits:         s.Operator.NumQubits,
		NumTerms:          s.Operator.Len(),
		NumParameters:     s.Ansatz.NumParameters(),
		OptimalParameters: res.OptimalParameters,
		Status:            res.Status,
	}
	e.log.Debug("point solved", "r", r, "vqe", pt.VQE, "exact", pt.Exact, "evals", pt.Evaluations, "wall", pt.WallTime)
	return pt, nil
}

// Run solves every bond length. Points are returned, and passed to
// onPoint, in bond-length order even when Jobs > 1.
func (e *Experiment) Run(ctx context.Context, onPoint func(Point)) ([]Point, error) {
	rs := e.cfg.BondLengths
	points := make([]Point, len(rs))

	if e.cfg.Jobs == 1 {
		for i, r := range rs {
			pt, err := e.Solve(ctx, i, r, nil)
			if err != nil {
				return points[:i], err
			}
			points[i] = pt
			if onPoint != nil {
				onPoint(pt)
			}
		}
		return points, nil
	}

	var (
		mu   sync.Mutex
		done = make([]bool, len(rs))
		next int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Jobs)
	for i, r := range rs {
		g.Go(func() error {
			pt, err := e.Solve(gctx, i, r, nil)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			points[i] = pt
			done[i] = true
			for next < len(rs) && done[next] {
				if onPoint != nil {
					onPoint(points[next])
				}
				next++
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return points[:next], err
	}
	return points, nil
}

// Samples converts points for metrics.
func Samples(points []Point) []metrics.Sample {
	out := make([]metrics.Sample, len(points))
	for i, p := range points {
		out[i] = p.Sample()
	}
	return out
}
