package pattern

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/cognicore/nlformer/pkg/nlformer/internalerr"
)

func TestUnifyBindsVariable(t *testing.T) {
	sub, ok := Unify(New("is", "car", "car"), New("is", "?x", "car"))
	if !ok {
		t.Fatal("Expected is(car, car) to unify with is(?x, car)")
	}
	if sub["?x"] != "car" {
		t.Errorf("Expected ?x = car, got %q", sub["?x"])
	}
}

func TestUnifyArityMismatch(t *testing.T) {
	if _, ok := Unify(New("is", "car"), New("is", "?x", "car")); ok {
		t.Error("Arity mismatch should not unify")
	}
}

func TestUnifyPredicateMismatch(t *testing.T) {
	if _, ok := Unify(New("has", "vehicle", "car"), New("is", "?x", "car")); ok {
		t.Error("Different predicates should not unify")
	}
}

func TestUnifyConstantMismatch(t *testing.T) {
	if _, ok := Unify(New("is", "vehicle", "boat"), New("is", "?x", "car")); ok {
		t.Error("Constant mismatch should not unify")
	}
}

func TestUnifyRepeatedVariable(t *testing.T) {
	rule := New("same", "?x", "?x")

	sub, ok := Unify(New("same", "a", "a"), rule)
	if !ok || sub["?x"] != "a" {
		t.Errorf("Expected consistent binding ?x = a, got %v ok=%v", sub, ok)
	}

	if _, ok := Unify(New("same", "a", "b"), rule); ok {
		t.Error("Inconsistent binding should not unify")
	}
}

func TestUnifyRejectsVariablesOnFactSide(t *testing.T) {
	if _, ok := Unify(New("is", "?y", "car"), New("is", "?x", "car")); ok {
		t.Error("Fact side variables should not unify")
	}
}

func TestUnifyZeroArity(t *testing.T) {
	sub, ok := Unify(New("raining"), New("raining"))
	if !ok {
		t.Fatal("Zero-arity patterns with same predicate should unify")
	}
	if len(sub) != 0 {
		t.Errorf("Expected empty substitution, got %v", sub)
	}
}

func TestGround(t *testing.T) {
	got, err := Ground(New("can", "?x", "drive"), Substitution{"?x": "vehicle"})
	if err != nil {
		t.Fatal(err)
	}
	want := New("can", "vehicle", "drive")
	if !got.Equal(want) {
		t.Errorf("Ground = %s, want %s", got, want)
	}
	if !got.IsGround() {
		t.Error("Grounded pattern should have no variables")
	}
}

func TestGroundDoesNotMutateTemplate(t *testing.T) {
	tmpl := New("can", "?x", "drive")
	if _, err := Ground(tmpl, Substitution{"?x": "vehicle"}); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(New("can", "?x", "drive"), tmpl); diff != "" {
		t.Errorf("Template mutated (-want +got):\n%s", diff)
	}
}

func TestGroundMissingBinding(t *testing.T) {
	_, err := Ground(New("can", "?y", "drive"), Substitution{"?x": "vehicle"})
	if !errors.Is(err, internalerr.ErrUngroundedConsequent) {
		t.Errorf("Expected ErrUngroundedConsequent, got %v", err)
	}
}

func TestBind(t *testing.T) {
	s := Substitution{}
	if !s.Bind("?x", "a") {
		t.Error("First bind should succeed")
	}
	if !s.Bind("?x", "a") {
		t.Error("Rebinding to same value should succeed")
	}
	if s.Bind("?x", "b") {
		t.Error("Rebinding to a different value should fail")
	}
}
