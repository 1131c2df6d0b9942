package problem

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/vqelab/internal/chem"
)

func TestBuildH2(t *testing.T) {
	p, meta, err := Build("H2", 0.735, "sto3g", false, nil)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if meta.NumSpatialOrbitals != 2 || meta.NumSpinOrbitals != 4 {
		t.Errorf("expected 2 spatial / 4 spin orbitals, got %d / %d", meta.NumSpatialOrbitals, meta.NumSpinOrbitals)
	}
	if meta.NumParticles != [2]int{1, 1} {
		t.Errorf("expected (1,1) particles, got %v", meta.NumParticles)
	}
	if math.Abs(meta.HFEnergy-(-1.11700)) > 1e-4 {
		t.Errorf("unexpected HF energy %.8f", meta.HFEnergy)
	}
	if p.ConstantEnergy() != meta.NuclearRepulsion {
		t.Error("without reductions the constant should be the nuclear repulsion")
	}
}

func TestReferenceEnergyReproducesHF(t *testing.T) {
	tests := []struct {
		name       string
		molecule   string
		r          float64
		freezeCore bool
		active     *ActiveSpace
	}{
		{"h2 full", "H2", 0.735, false, nil},
		{"h2 2e2o", "h2", 1.2, false, &ActiveSpace{2, 2}},
		{"lih full", "LiH", 1.6, false, nil},
		{"lih frozen core", "LiH", 1.6, true, nil},
		{"lih frozen 2e2o", "LiH", 1.6, true, &ActiveSpace{2, 2}},
		{"lih 2e3o", "LiH", 2.0, false, &ActiveSpace{2, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, meta, err := Build(tt.molecule, tt.r, "sto3g", tt.freezeCore, tt.active)
			if err != nil {
				t.Fatalf("build failed: %v", err)
			}
			got := p.ConstantEnergy() + p.ReferenceEnergy()
			if math.Abs(got-meta.HFEnergy) > 1e-8 {
				t.Errorf("active-space HF %.10f differs from SCF %.10f", got, meta.HFEnergy)
			}
		})
	}
}

func TestLiHReductions(t *testing.T) {
	_, meta, err := Build("LiH", 1.6, "sto-3g", true, nil)
	if err != nil {
		t.Fatal(err)
	}
	if meta.NumSpatialOrbitals != 5 || meta.NumParticles != [2]int{1, 1} {
		t.Errorf("frozen core LiH: expected 5 orbitals (1,1), got %d %v", meta.NumSpatialOrbitals, meta.NumParticles)
	}
	if meta.InactiveEnergy >= 0 {
		t.Errorf("core energy should be negative, got %f", meta.InactiveEnergy)
	}

	_, meta, err = Build("LiH", 1.6, "sto3g", true, &ActiveSpace{2, 2})
	if err != nil {
		t.Fatal(err)
	}
	if meta.NumSpinOrbitals != 4 {
		t.Errorf("expected 4 spin orbitals, got %d", meta.NumSpinOrbitals)
	}
}

func TestInvalidActiveSpace(t *testing.T) {
	tests := []struct {
		name   string
		active ActiveSpace
	}{
		{"odd inactive", ActiveSpace{3, 2}},
		{"too many orbitals", ActiveSpace{2, 10}},
		{"too many electrons", ActiveSpace{6, 5}},
		{"overfull", ActiveSpace{4, 1}},
		{"empty", ActiveSpace{0, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := tt.active
			_, _, err := Build("LiH", 1.6, "sto3g", false, &a)
			var be *BuildError
			if !errors.As(err, &be) {
				t.Fatalf("expected BuildError, got %v", err)
			}
			if !errors.Is(err, ErrInvalidActiveSpace) {
				t.Error("BuildError should unwrap to ErrInvalidActiveSpace")
			}
		})
	}
}

func TestUnsupportedMolecule(t *testing.T) {
	_, _, err := Build("BeH2", 1.0, "sto3g", false, nil)
	if !errors.Is(err, chem.ErrUnsupportedMolecule) {
		t.Fatalf("expected ErrUnsupportedMolecule, got %v", err)
	}
	if err.Error() != "Unsupported molecule: BeH2" {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestHamiltonianIsHermitian(t *testing.T) {
	p, _, err := Build("H2", 0.735, "sto3g", false, nil)
	if err != nil {
		t.Fatal(err)
	}
	h := p.Hamiltonian()
	if h.NumModes != 4 {
		t.Fatalf("expected 4 modes, got %d", h.NumModes)
	}
	adj := h.Adjoint().Simplify(1e-12)
	if adj.Len() == 0 {
		t.Fatal("empty hamiltonian")
	}
	// Two-electron integrals are real and symmetric, so (pq|rs) = (qp|sr).
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			if math.Abs(p.TwoBody(i, j, j, i)-p.TwoBody(j, i, i, j)) > 1e-12 {
				t.Errorf("two-body symmetry broken at %d%d", i, j)
			}
		}
	}
}
