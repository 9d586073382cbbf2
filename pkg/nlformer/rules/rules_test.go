package rules

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/cognicore/nlformer/pkg/nlformer/internalerr"
	"github.com/cognicore/nlformer/pkg/nlformer/pattern"
)

func TestNewValidRule(t *testing.T) {
	r, err := New(1, pattern.New("is", "?x", "car"), pattern.New("can", "?x", "drive"), 0.5)
	if err != nil {
		t.Fatalf("Expected valid rule: %v", err)
	}
	if r.ID != 1 || r.Weight != 0.5 {
		t.Errorf("Unexpected rule: %s", r)
	}
}

func TestNewRejectsFreeHeadVariable(t *testing.T) {
	_, err := New(1, pattern.New("is", "?x", "car"), pattern.New("can", "?y", "drive"), 0)
	if !errors.Is(err, internalerr.ErrMalformedPattern) {
		t.Errorf("Expected ErrMalformedPattern, got %v", err)
	}
}

func TestNewRejectsEmptyPredicate(t *testing.T) {
	_, err := New(1, pattern.New("", "?x"), pattern.New("can", "?x"), 0)
	if !errors.Is(err, internalerr.ErrMalformedPattern) {
		t.Errorf("Expected ErrMalformedPattern for antecedent, got %v", err)
	}
	_, err = New(2, pattern.New("is", "?x"), pattern.New("", "?x"), 0)
	if !errors.Is(err, internalerr.ErrMalformedPattern) {
		t.Errorf("Expected ErrMalformedPattern for consequent, got %v", err)
	}
}

func TestNewAllowsConstantHead(t *testing.T) {
	if _, err := New(1, pattern.New("is", "?x", "car"), pattern.New("exists", "vehicle"), -1); err != nil {
		t.Errorf("Constant-only head should be valid: %v", err)
	}
}

func TestValidateDuplicateIDs(t *testing.T) {
	set := []Rule{
		MustNew(1, pattern.New("a", "?x"), pattern.New("b", "?x"), 0),
		MustNew(1, pattern.New("c", "?x"), pattern.New("d", "?x"), 0),
	}
	if err := Validate(set); !errors.Is(err, internalerr.ErrDuplicate) {
		t.Errorf("Expected ErrDuplicate, got %v", err)
	}
}

func TestValidateReportsIndex(t *testing.T) {
	set := []Rule{
		MustNew(1, pattern.New("a", "?x"), pattern.New("b", "?x"), 0),
		{ID: 2, Antecedent: pattern.New("a", "?x"), Consequent: pattern.New("b", "?z")},
	}
	err := Validate(set)
	if !errors.Is(err, internalerr.ErrMalformedPattern) {
		t.Fatalf("Expected ErrMalformedPattern, got %v", err)
	}
	if got := err.Error(); !strings.HasPrefix(got, "rule index 1:") {
		t.Errorf("Error should name the offending index, got %q", got)
	}
}

func TestIndexCandidates(t *testing.T) {
	set := []Rule{
		MustNew(3, pattern.New("is", "?x", "car"), pattern.New("can", "?x", "drive"), 0),
		MustNew(1, pattern.New("has", "?x", "wheels"), pattern.New("is", "?x", "vehicle"), 0),
		MustNew(2, pattern.New("is", "?x", "damaged"), pattern.New("can", "?x", "drive"), -3),
	}
	idx := NewIndex(set)

	var ids []int
	for _, r := range idx.CandidatesFor("is") {
		ids = append(ids, r.ID)
	}
	if diff := cmp.Diff([]int{3, 2}, ids); diff != "" {
		t.Errorf("Candidates should keep load order (-want +got):\n%s", diff)
	}

	if got := idx.CandidatesFor("unknown"); len(got) != 0 {
		t.Errorf("Unknown predicate should yield no candidates, got %v", got)
	}

	if idx.Len() != 3 {
		t.Errorf("Expected 3 rules, got %d", idx.Len())
	}
	if diff := cmp.Diff([]string{"has", "is"}, idx.Predicates()); diff != "" {
		t.Errorf("Predicates mismatch (-want +got):\n%s", diff)
	}
}

func TestIndexIsolatedFromCaller(t *testing.T) {
	set := []Rule{MustNew(1, pattern.New("is", "?x", "car"), pattern.New("can", "?x", "drive"), 0)}
	idx := NewIndex(set)

	set[0].Antecedent.Args[1] = pattern.Const("boat")

	if got := idx.CandidatesFor("is")[0].Antecedent.Args[1].Value; got != "car" {
		t.Errorf("Index should not share memory with the caller, got %q", got)
	}
}
