package fermion

import "testing"

func TestAdjointReversesAndConjugates(t *testing.T) {
	op := New(4).Add(2+1i, Create(3), Annihilate(1))
	adj := op.Adjoint()

	if adj.Len() != 1 {
		t.Fatalf("expected 1 term, got %d", adj.Len())
	}
	term := adj.Terms[0]
	if term.Label() != "+_1 -_3" {
		t.Errorf("expected label '+_1 -_3', got %q", term.Label())
	}
	if term.Coeff != 2-1i {
		t.Errorf("expected conjugated coefficient, got %v", term.Coeff)
	}
}

func TestSimplifyMergesAndDrops(t *testing.T) {
	op := New(2).
		Add(0.5, Create(0), Annihilate(1)).
		Add(0.25, Create(0), Annihilate(1)).
		Add(1e-14, Create(1), Annihilate(0))

	s := op.Simplify(1e-12)
	if s.Len() != 1 {
		t.Fatalf("expected 1 term after simplify, got %d", s.Len())
	}
	if s.Terms[0].Coeff != 0.75 {
		t.Errorf("expected merged coefficient 0.75, got %v", s.Terms[0].Coeff)
	}
}

func TestExcitationOrdering(t *testing.T) {
	op := Excitation(8, []int{0, 4}, []int{2, 6})
	if got := op.Terms[0].Label(); got != "+_2 +_6 -_4 -_0" {
		t.Errorf("unexpected excitation label %q", got)
	}
}

func TestCompose(t *testing.T) {
	a := New(2).Add(2, Create(0))
	b := New(2).Add(3, Annihilate(1)).Add(1, Annihilate(0))
	c := a.Compose(b)
	if c.Len() != 2 {
		t.Fatalf("expected 2 terms, got %d", c.Len())
	}
	if c.Terms[0].Coeff != 6 || c.Terms[0].Label() != "+_0 -_1" {
		t.Errorf("unexpected first term %+v", c.Terms[0])
	}
}
