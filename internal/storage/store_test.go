package storage

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func sampleCurve() []CurveRow {
	return []CurveRow{
		{R: 0.5, VQE: -1.0551597944706257, Exact: -1.0551597944706266, HasExact: true},
		{R: 0.735, VQE: -1.1373060357533995, Exact: -1.1373060357534006, HasExact: true},
	}
}

func TestStoreSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	meta := &RunMetadata{
		Molecule:  "H2",
		Basis:     "sto3g",
		Mapping:   "jw",
		Optimizer: "SLSQP",
		Backend:   "ideal",
		Seed:      42,
		Metrics:   map[string]float64{"max_abs_delta_ha": 1.1e-15},
	}
	runID, err := st.Save(meta, sampleCurve())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if !strings.HasPrefix(runID, "h2_") {
		t.Errorf("expected run id with molecule prefix, got %s", runID)
	}

	loaded, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Kind != KindSweep {
		t.Errorf("expected kind sweep, got %s", loaded.Kind)
	}
	if loaded.Seed != 42 {
		t.Errorf("expected seed 42, got %d", loaded.Seed)
	}
	if loaded.Points != 2 {
		t.Errorf("expected 2 points, got %d", loaded.Points)
	}
	if loaded.Metrics["max_abs_delta_ha"] != 1.1e-15 {
		t.Errorf("expected metric 1.1e-15, got %g", loaded.Metrics["max_abs_delta_ha"])
	}

	if _, err := os.Stat(st.CurvePath(runID)); err != nil {
		t.Errorf("expected curve CSV at %s: %v", st.CurvePath(runID), err)
	}
	rows, err := st.LoadCurve(runID)
	if err != nil {
		t.Fatalf("load curve failed: %v", err)
	}
	want := sampleCurve()
	if len(rows) != len(want) {
		t.Fatalf("expected %d rows, got %d", len(want), len(rows))
	}
	for i := range want {
		if rows[i].R != want[i].R || rows[i].VQE != want[i].VQE || rows[i].Exact != want[i].Exact {
			t.Errorf("row %d: expected %+v, got %+v", i, want[i], rows[i])
		}
	}
}

func TestStoreList(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	old := &RunMetadata{Molecule: "H2", Timestamp: time.Now().Add(-time.Hour)}
	if _, err := st.Save(old, sampleCurve()); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	noisy := &RunMetadata{Molecule: "LiH", Shots: 8192}
	rows := []NoisyRow{{Restart: 1, R: 1.6, Shots: 8192, Energy: -7.86, Exact: -7.88, WallTime: 1500 * time.Millisecond}}
	if _, err := st.SaveNoisy(noisy, rows); err != nil {
		t.Fatalf("save noisy failed: %v", err)
	}
	if err := os.MkdirAll(filepath.Join(tmpDir, "junk"), 0755); err != nil {
		t.Fatal(err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].Kind != KindNoisy {
		t.Errorf("expected newest run first, got %s", runs[0].Kind)
	}

	data, err := st.Export(runs[0].ID)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if len(data.Restarts) != 1 || data.Curve != nil {
		t.Errorf("expected one restart and no curve, got %+v", data)
	}
	if data.Restarts[0].WallTime != 1500*time.Millisecond {
		t.Errorf("expected wall time 1.5s, got %v", data.Restarts[0].WallTime)
	}
}

func TestStoreFileStructure(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	runID, err := st.Save(&RunMetadata{Molecule: "H2"}, sampleCurve())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	for _, name := range []string{"metadata.json", "curve.csv"} {
		if _, err := os.Stat(filepath.Join(tmpDir, runID, name)); os.IsNotExist(err) {
			t.Errorf("%s not created", name)
		}
	}

	out := filepath.Join(t.TempDir(), "nested", "run.json")
	data, err := st.Export(runID)
	if err != nil {
		t.Fatal(err)
	}
	if err := ExportJSON(out, data); err != nil {
		t.Fatalf("export json failed: %v", err)
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("export not written: %v", err)
	}
}

func TestWriteCurveFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results", "csv", "h2.csv")
	rows := []CurveRow{{R: 0.7, VQE: -1.25, Exact: -1.5, HasExact: true}}
	if err := WriteCurve(path, rows); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	expected := "bond_length_angstrom,vqe_energy_ha,exact_energy_ha,delta_ha\n0.7,-1.25,-1.5,0.25\n"
	if string(data) != expected {
		t.Errorf("expected %q, got %q", expected, string(data))
	}
}

func TestDecodeCurve(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		rows     int
		hasExact bool
		err      error
	}{
		{"full", "bond_length_angstrom,vqe_energy_ha,exact_energy_ha,delta_ha\n0.5,-1,-1.1,0.1\n0.6,-1.1,-1.2,0.1\n", 2, true, nil},
		{"reordered without exact", "vqe_energy_ha,bond_length_angstrom\n-1,0.5\n", 1, false, nil},
		{"missing bond length", "r,vqe_energy_ha\n0.5,-1\n", 0, false, ErrMissingBondLength},
		{"missing vqe", "bond_length_angstrom\n0.5\n", 0, false, ErrMissingVQE},
		{"empty", "", 0, false, ErrMissingBondLength},
	}
	for _, tt := range tests {
		rows, err := DecodeCurve(strings.NewReader(tt.input))
		if tt.err != nil {
			if !errors.Is(err, tt.err) {
				t.Errorf("%s: expected %v, got %v", tt.name, tt.err, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s: unexpected error %v", tt.name, err)
			continue
		}
		if len(rows) != tt.rows {
			t.Errorf("%s: expected %d rows, got %d", tt.name, tt.rows, len(rows))
			continue
		}
		if rows[0].HasExact != tt.hasExact {
			t.Errorf("%s: expected HasExact %v", tt.name, tt.hasExact)
		}
	}

	if _, err := DecodeCurve(strings.NewReader("bond_length_angstrom,vqe_energy_ha\nx,-1\n")); err == nil {
		t.Error("expected parse error")
	}
}

func TestNoisyRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "noisy.csv")
	rows := []NoisyRow{
		{Restart: 1, R: 0.735, Shots: 8192, Energy: -1.12, Exact: -1.137, WallTime: 2 * time.Second},
		{Restart: 2, R: 0.735, Shots: 8192, Energy: -1.13, Exact: -1.137, WallTime: 3 * time.Second},
	}
	if err := WriteNoisy(path, rows); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(path)
	if !strings.HasPrefix(string(data), "restart,R_angstrom,shots,energy_ha,exact_energy_ha,delta_ha,walltime_sec\n") {
		t.Errorf("unexpected header in %q", string(data))
	}
	got, err := ReadNoisy(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[1].Restart != 2 || got[1].WallTime != 3*time.Second {
		t.Errorf("unexpected rows %+v", got)
	}
	if math.Abs(got[0].Delta()-0.017) > 1e-12 {
		t.Errorf("expected delta 0.017, got %f", got[0].Delta())
	}
}
