package plot

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/vqelab/internal/storage"
)

func sampleRows(withExact bool) []storage.CurveRow {
	rs := []float64{0.5, 0.6, 0.7, 0.8, 0.9}
	es := []float64{-1.055, -1.116, -1.136, -1.134, -1.120}
	rows := make([]storage.CurveRow, len(rs))
	for i := range rs {
		rows[i] = storage.CurveRow{R: rs[i], VQE: es[i]}
		if withExact {
			rows[i].Exact = es[i] - 1e-6
			rows[i].HasExact = true
		}
	}
	return rows
}

func TestSaveCurvePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "pec.png")
	if err := SaveCurve(sampleRows(true), path); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("\x89PNG")) {
		t.Error("expected PNG signature")
	}
}

func TestSaveCurveSVG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pec.svg")
	if err := SaveCurve(sampleRows(false), path); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "<svg") {
		t.Error("expected svg document")
	}
}

func TestCurveRange(t *testing.T) {
	tests := []struct {
		exact bool
		yMin  float64
	}{
		{true, -1.136 - 1e-6},
		{false, -1.136},
	}
	for _, tt := range tests {
		p, err := Curve(sampleRows(tt.exact))
		if err != nil {
			t.Fatal(err)
		}
		if p.X.Min != 0.5 || p.X.Max != 0.9 {
			t.Errorf("expected x range [0.5, 0.9], got [%f, %f]", p.X.Min, p.X.Max)
		}
		if math.Abs(p.Y.Min-tt.yMin) > 1e-12 {
			t.Errorf("exact=%v: expected y min %f, got %f", tt.exact, tt.yMin, p.Y.Min)
		}
	}
}

func TestErrors(t *testing.T) {
	if _, err := Curve(nil); !errors.Is(err, ErrNoData) {
		t.Errorf("expected ErrNoData, got %v", err)
	}
	if _, err := Trace(nil, 0, false); !errors.Is(err, ErrNoData) {
		t.Errorf("expected ErrNoData, got %v", err)
	}
	if err := SaveCurve(sampleRows(true), filepath.Join(t.TempDir(), "noext")); err == nil {
		t.Error("expected error for missing extension")
	}
}

func TestSaveTrace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.png")
	if err := SaveTrace([]float64{-1.10, -1.12, -1.135, -1.137}, -1.1373, true, path); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected trace file: %v", err)
	}
}

func TestASCII(t *testing.T) {
	out := ASCII(sampleRows(true), 40, 8)
	if !strings.Contains(out, "Energy (Ha)") {
		t.Errorf("expected caption, got %q", out)
	}
	if !strings.Contains(out, "Exact") {
		t.Error("expected exact legend")
	}
	if ASCII(nil, 40, 8) != "" {
		t.Error("expected empty output for no rows")
	}
}
