package rules

import (
	"fmt"

	"github.com/cognicore/nlformer/pkg/nlformer/internalerr"
	"github.com/cognicore/nlformer/pkg/nlformer/pattern"
)

// Rule represents a weighted inference rule
// Example: is(?x, car) -> can(?x, drive) with weight 0.5
type Rule struct {
	ID         int
	Antecedent pattern.Pattern // body, may contain variables
	Consequent pattern.Pattern // head template
	Weight     float64         // confidence adjustment, may be negative
}

// New builds a validated rule.
func New(id int, antecedent, consequent pattern.Pattern, weight float64) (Rule, error) {
	r := Rule{ID: id, Antecedent: antecedent, Consequent: consequent, Weight: weight}
	if err := r.Validate(); err != nil {
		return Rule{}, err
	}
	return r, nil
}

// MustNew is like New but panics on error.
func MustNew(id int, antecedent, consequent pattern.Pattern, weight float64) Rule {
	r, err := New(id, antecedent, consequent, weight)
	if err != nil {
		panic(err)
	}
	return r
}

// Validate checks both patterns and that the head has no free variables.
func (r Rule) Validate() error {
	if err := r.Antecedent.Validate(); err != nil {
		return fmt.Errorf("rule %d antecedent: %w", r.ID, err)
	}
	if err := r.Consequent.Validate(); err != nil {
		return fmt.Errorf("rule %d consequent: %w", r.ID, err)
	}

	bound := make(map[string]bool)
	for _, v := range r.Antecedent.Variables() {
		bound[v] = true
	}
	for _, v := range r.Consequent.Variables() {
		if !bound[v] {
			return fmt.Errorf("%w: rule %d: consequent variable %s does not appear in antecedent %s",
				internalerr.ErrMalformedPattern, r.ID, v, r.Antecedent)
		}
	}
	return nil
}

// Clone returns a deep copy.
func (r Rule) Clone() Rule {
	return Rule{
		ID:         r.ID,
		Antecedent: r.Antecedent.Clone(),
		Consequent: r.Consequent.Clone(),
		Weight:     r.Weight,
	}
}

func (r Rule) String() string {
	return fmt.Sprintf("#%d %s -> %s [%g]", r.ID, r.Antecedent, r.Consequent, r.Weight)
}

// Validate checks every rule in a set and rejects duplicate ids.
func Validate(set []Rule) error {
	seen := make(map[int]int, len(set))
	for i, r := range set {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("rule index %d: %w", i, err)
		}
		if prev, ok := seen[r.ID]; ok {
			return fmt.Errorf("%w: rule index %d: id %d already used at index %d",
				internalerr.ErrDuplicate, i, r.ID, prev)
		}
		seen[r.ID] = i
	}
	return nil
}

// CloneAll deep-copies a rule set.
func CloneAll(set []Rule) []Rule {
	out := make([]Rule, len(set))
	for i, r := range set {
		out[i] = r.Clone()
	}
	return out
}
