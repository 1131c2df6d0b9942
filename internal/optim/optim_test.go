package optim

import (
	"context"
	"errors"
	"math"
	"testing"
)

// quadratic has its minimum -1 at (0.3, -0.7, 1.1).
func quadratic(_ context.Context, x []float64) (float64, error) {
	c := []float64{0.3, -0.7, 1.1}
	s := -1.0
	for i := range x {
		s += float64(i+1) * (x[i] - c[i]) * (x[i] - c[i])
	}
	return s, nil
}

// periodic mimics an energy landscape of rotation angles.
func periodic(_ context.Context, x []float64) (float64, error) {
	return -math.Cos(x[0]-0.4) - 0.5*math.Cos(2*(x[1]+0.2)), nil
}

func TestDeterministicOptimizers(t *testing.T) {
	tests := []struct {
		name string
		tol  float64
	}{
		{"SLSQP", 1e-8},
		{"bfgs", 1e-8},
		{"L_BFGS_B", 1e-8},
		{"COBYLA", 1e-6},
		{"nelder-mead", 1e-6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opt, err := Get(tt.name)
			if err != nil {
				t.Fatal(err)
			}
			res, err := opt.Minimize(context.Background(), quadratic, []float64{0, 0, 0})
			if err != nil {
				t.Fatalf("minimize failed: %v", err)
			}
			if math.Abs(res.F+1) > tt.tol {
				t.Errorf("expected minimum -1, got %.10f (%s)", res.F, res.Status)
			}
			if res.Evaluations == 0 {
				t.Error("evaluations not counted")
			}
		})
	}
}

func TestSPSAFindsMinimum(t *testing.T) {
	cfg := DefaultSPSAConfig()
	cfg.Seed = 3
	res, err := NewSPSA(cfg).Minimize(context.Background(), periodic, []float64{1.5, 1.0})
	if err != nil {
		t.Fatal(err)
	}
	if res.F > -1.4 {
		t.Errorf("SPSA ended at %.4f, expected close to -1.5", res.F)
	}
	// calibration 2·25, blocking 50, 3 per iteration, final 1
	want := 50 + 50 + 3*cfg.MaxIter + 1
	if res.Evaluations != want {
		t.Errorf("expected %d evaluations, got %d", want, res.Evaluations)
	}
	if got := EvaluationBudget(NewSPSA(cfg), 2); got != want {
		t.Errorf("expected budget %d, got %d", want, got)
	}
}

func TestSPSASeedReproducible(t *testing.T) {
	run := func() float64 {
		s := NewSPSA(DefaultSPSAConfig())
		s.Seed(9)
		res, _ := s.Minimize(context.Background(), periodic, []float64{2, 2})
		return res.F
	}
	if a, b := run(), run(); a != b {
		t.Errorf("same seed gave %v and %v", a, b)
	}
}

func TestGridSearch(t *testing.T) {
	g := NewGridSearch(5, -1, 1)
	res, err := g.Minimize(context.Background(), func(_ context.Context, x []float64) (float64, error) {
		return (x[0]-0.5)*(x[0]-0.5) + (x[1]+0.5)*(x[1]+0.5), nil
	}, []float64{0, 0})
	if err != nil {
		t.Fatal(err)
	}
	if res.Evaluations != 25 {
		t.Errorf("expected 25 evaluations, got %d", res.Evaluations)
	}
	if res.X[0] != 0.5 || res.X[1] != -0.5 || res.F != 0 {
		t.Errorf("expected exact grid hit at (0.5,-0.5), got %v %v", res.X, res.F)
	}
}

func TestGridSearchBudget(t *testing.T) {
	g := NewGridSearch(9, -math.Pi, math.Pi)
	tests := []struct {
		dim  int
		want int
		ok   bool
	}{
		{3, 729, true},
		{6, 531441, true},
		{7, 0, false},
		{92, 0, false},
	}
	for _, tt := range tests {
		n, ok := g.size(tt.dim)
		if ok != tt.ok || (ok && n != tt.want) {
			t.Errorf("dim %d: got %d %v, want %d %v", tt.dim, n, ok, tt.want, tt.ok)
		}
	}

	if got := EvaluationBudget(g, 3); got != 729 {
		t.Errorf("expected budget 729, got %d", got)
	}

	calls := 0
	_, err := g.Minimize(context.Background(), func(_ context.Context, x []float64) (float64, error) {
		calls++
		return 0, nil
	}, make([]float64, 92))
	if !errors.Is(err, ErrGridTooLarge) {
		t.Errorf("expected ErrGridTooLarge, got %v", err)
	}
	if calls != 0 {
		t.Errorf("expected no evaluations, got %d", calls)
	}
}

func TestObjectiveErrorAborts(t *testing.T) {
	boom := errors.New("backend failed")
	calls := 0
	f := func(_ context.Context, x []float64) (float64, error) {
		calls++
		if calls > 5 {
			return 0, boom
		}
		return x[0] * x[0], nil
	}
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			calls = 0
			opt, _ := Get(name)
			res, err := opt.Minimize(context.Background(), f, []float64{1})
			if !errors.Is(err, boom) {
				t.Fatalf("expected backend error, got %v", err)
			}
			if res == nil || res.Evaluations != 5 {
				t.Errorf("expected 5 successful evaluations recorded, got %+v", res)
			}
		})
	}
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	opt, _ := Get("SLSQP")
	if _, err := opt.Minimize(ctx, quadratic, []float64{0, 0, 0}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestUnknownOptimizer(t *testing.T) {
	_, err := Get("ADAM")
	if !errors.Is(err, ErrUnsupportedOptimizer) {
		t.Errorf("expected ErrUnsupportedOptimizer, got %v", err)
	}
}
