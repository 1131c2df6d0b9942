package pauli

import (
	"errors"
	"math"
	"math/cmplx"
	"testing"
)

func mustLabel(t *testing.T, s string) String {
	t.Helper()
	p, err := ParseLabel(s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return p
}

func TestLabelRoundTrip(t *testing.T) {
	for _, s := range []string{"I", "XYZI", "ZZZZ", "IIIIIIY"} {
		if got := mustLabel(t, s).Label(len(s)); got != s {
			t.Errorf("expected %q, got %q", s, got)
		}
	}
	// Qubit 0 is the rightmost character.
	if p := mustLabel(t, "IX"); p.X != 1 {
		t.Errorf("expected X on qubit 0, got mask %b", p.X)
	}
	if _, err := ParseLabel("XQ"); !errors.Is(err, ErrBadLabel) {
		t.Errorf("expected ErrBadLabel, got %v", err)
	}
}

func TestMulSingleQubit(t *testing.T) {
	tests := []struct {
		a, b  string
		want  string
		phase complex128
	}{
		{"X", "Y", "Z", 1i},
		{"Y", "X", "Z", -1i},
		{"Y", "Z", "X", 1i},
		{"Z", "Y", "X", -1i},
		{"Z", "X", "Y", 1i},
		{"X", "Z", "Y", -1i},
		{"Y", "Y", "I", 1},
		{"X", "I", "X", 1},
	}
	for _, tt := range tests {
		t.Run(tt.a+tt.b, func(t *testing.T) {
			p, ph := Mul(mustLabel(t, tt.a), mustLabel(t, tt.b))
			if got := p.Label(1); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
			if ph != tt.phase {
				t.Errorf("expected phase %v, got %v", tt.phase, ph)
			}
		})
	}
}

func TestMulMultiQubit(t *testing.T) {
	// (X⊗Y)(Y⊗Z) = (XY)⊗(YZ) = (iZ)⊗(iX) = -Z⊗X
	p, ph := Mul(mustLabel(t, "XY"), mustLabel(t, "YZ"))
	if p.Label(2) != "ZX" || ph != -1 {
		t.Errorf("expected -ZX, got %v %s", ph, p.Label(2))
	}
}

func TestCommutation(t *testing.T) {
	if !Commutes(mustLabel(t, "XX"), mustLabel(t, "YY")) {
		t.Error("XX and YY should commute")
	}
	if Commutes(mustLabel(t, "XI"), mustLabel(t, "ZI")) {
		t.Error("X and Z should anticommute")
	}
	if QubitWiseCommutes(mustLabel(t, "XX"), mustLabel(t, "YY")) {
		t.Error("XX and YY are not qubit-wise commuting")
	}
	if !QubitWiseCommutes(mustLabel(t, "ZI"), mustLabel(t, "ZZ")) {
		t.Error("ZI and ZZ are qubit-wise commuting")
	}
}

func TestApplyMatchesMatrix(t *testing.T) {
	// Y|0> = i|1>, Y|1> = -i|0>
	y := mustLabel(t, "Y")
	dst := make([]complex128, 2)
	y.Apply(dst, []complex128{1, 0}, 1)
	if dst[1] != 1i || dst[0] != 0 {
		t.Errorf("Y|0> expected i|1>, got %v", dst)
	}
	dst = make([]complex128, 2)
	y.Apply(dst, []complex128{0, 1}, 1)
	if dst[0] != -1i {
		t.Errorf("Y|1> expected -i|0>, got %v", dst)
	}
}

func TestOpMulAndSimplify(t *testing.T) {
	x := NewOp(1).Add(mustLabel(t, "X"), 1)
	sq := x.Mul(x).Simplify(1e-12)
	if sq.Len() != 1 || sq.Coeff(String{}) != 1 {
		t.Errorf("X² should be identity, got %s", sq)
	}

	// XY - YX = 2iZ
	y := NewOp(1).Add(mustLabel(t, "Y"), 1)
	comm := x.Mul(y).AddOp(y.Mul(x).Scale(-1)).Simplify(1e-12)
	if comm.Coeff(mustLabel(t, "Z")) != 2i || comm.Len() != 1 {
		t.Errorf("expected 2iZ, got %s", comm)
	}
}

func TestTermsOrdering(t *testing.T) {
	op, err := ParseTerms("1 ZI; 1 IX; 1 II; 1 XZ")
	if err != nil {
		t.Fatal(err)
	}
	var labels []string
	for _, term := range op.Terms() {
		labels = append(labels, term.String.Label(2))
	}
	want := []string{"II", "IX", "XZ", "ZI"}
	for i := range want {
		if labels[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, labels)
		}
	}
}

func TestCompiledAgreesWithDirect(t *testing.T) {
	op, err := ParseTerms("-0.81 IIII; 0.17 IIIZ; -0.22 IIZI; 0.12 ZZII; 0.045 XXYY; -0.045 YYXX; 0.3 XIYZ")
	if err != nil {
		t.Fatal(err)
	}
	c := op.Compile()

	psi := make([]complex128, 16)
	norm := 0.0
	for i := range psi {
		psi[i] = complex(math.Sin(float64(i)+0.3), math.Cos(2*float64(i)))
		norm += real(psi[i] * cmplx.Conj(psi[i]))
	}
	for i := range psi {
		psi[i] /= complex(math.Sqrt(norm), 0)
	}

	direct := op.Expectation(psi)
	if math.Abs(c.Expectation(psi)-real(direct)) > 1e-12 {
		t.Errorf("compiled %.12f vs direct %.12f", c.Expectation(psi), real(direct))
	}

	out := make([]complex128, 16)
	c.Apply(out, psi)
	var viaApply complex128
	for i := range psi {
		viaApply += cmplx.Conj(psi[i]) * out[i]
	}
	if cmplx.Abs(viaApply-direct) > 1e-12 {
		t.Errorf("apply-based expectation %v vs direct %v", viaApply, direct)
	}

	// Hermitian operator: <r|O|c> = conj(<c|O|r>)
	for r := uint64(0); r < 16; r++ {
		for col := uint64(0); col < 16; col++ {
			if cmplx.Abs(c.Element(r, col)-cmplx.Conj(c.Element(col, r))) > 1e-12 {
				t.Fatalf("matrix not Hermitian at (%d,%d)", r, col)
			}
		}
	}
}

func TestGroupQubitWise(t *testing.T) {
	op, err := ParseTerms("-1 II; 0.5 ZI; 0.4 IZ; 0.3 ZZ; 0.2 XX; 0.1 YY")
	if err != nil {
		t.Fatal(err)
	}
	groups, id := GroupQubitWise(op)
	if id != -1 {
		t.Errorf("expected identity -1, got %v", id)
	}
	if len(groups) != 3 {
		t.Fatalf("expected 3 groups (Z, XX, YY), got %d", len(groups))
	}
	for _, g := range groups {
		for i := range g.Terms {
			for j := range g.Terms {
				if !QubitWiseCommutes(g.Terms[i].String, g.Terms[j].String) {
					t.Error("group contains non-commuting terms")
				}
			}
		}
	}

	// All-zero outcome gives +1 for every Z term.
	e := groups[0].EstimateFromCounts(map[uint64]int{0: 10})
	if math.Abs(real(e)-1.2) > 1e-12 {
		t.Errorf("expected 1.2 from Z group, got %v", e)
	}
}

func TestEstimateFromCountsIsStable(t *testing.T) {
	op, err := ParseTerms("0.37 ZII; -0.21 IZI; 0.113 IIZ; 0.071 ZZZ")
	if err != nil {
		t.Fatal(err)
	}
	groups, _ := GroupQubitWise(op)
	if len(groups) != 1 {
		t.Fatalf("expected one Z group, got %d", len(groups))
	}
	counts := make(map[uint64]int)
	for o := uint64(0); o < 8; o++ {
		counts[o] = int(17*o + 3)
	}
	want := groups[0].EstimateFromCounts(counts)
	for i := 0; i < 50; i++ {
		if got := groups[0].EstimateFromCounts(counts); got != want {
			t.Fatalf("estimate changed between calls: %v vs %v", got, want)
		}
	}
}
