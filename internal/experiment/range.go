package experiment

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/san-kum/vqelab/internal/problem"
)

var (
	ErrActiveFormat = errors.New("--active expects format like 2e2o")
	ErrMissingRange = errors.New("Provide --r or (--r-min and --r-max)")
)

var activePattern = regexp.MustCompile(`^(\d+)e(\d+)o$`)

// ParseActive parses "<electrons>e<orbitals>o". An empty string means no
// active-space reduction.
func ParseActive(s string) (*problem.ActiveSpace, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return nil, nil
	}
	m := activePattern.FindStringSubmatch(s)
	if m == nil {
		return nil, ErrActiveFormat
	}
	e, err := strconv.Atoi(m[1])
	if err != nil {
		return nil, ErrActiveFormat
	}
	o, err := strconv.Atoi(m[2])
	if err != nil {
		return nil, ErrActiveFormat
	}
	return &problem.ActiveSpace{Electrons: e, Orbitals: o}, nil
}

// LinspaceInclusive returns round((b-a)/step)+1 points from a in steps of
// step, each rounded to 10 decimals.
func LinspaceInclusive(a, b, step float64) []float64 {
	n := int(math.Round((b-a)/step)) + 1
	if n < 0 {
		n = 0
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = round10(a + float64(i)*step)
	}
	return out
}

func round10(x float64) float64 { return math.Round(x*1e10) / 1e10 }

// BondLengths resolves the sweep range. r takes precedence over the
// range; nil means the flag was not given.
func BondLengths(r, rMin, rMax *float64, step float64) ([]float64, error) {
	if r != nil {
		if *r <= 0 {
			return nil, fmt.Errorf("bond length must be positive, got %g", *r)
		}
		return []float64{*r}, nil
	}
	if rMin == nil || rMax == nil {
		return nil, ErrMissingRange
	}
	if step <= 0 {
		return nil, fmt.Errorf("--r-step must be positive, got %g", step)
	}
	if *rMin <= 0 {
		return nil, fmt.Errorf("bond length must be positive, got %g", *rMin)
	}
	rs := LinspaceInclusive(*rMin, *rMax, step)
	if len(rs) == 0 {
		return nil, fmt.Errorf("--r-max %g is below --r-min %g", *rMax, *rMin)
	}
	return rs, nil
}
