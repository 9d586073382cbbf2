package store

import (
	"context"
	"fmt"

	"github.com/cognicore/nlformer/pkg/nlformer/internalerr"
	"github.com/cognicore/nlformer/pkg/nlformer/rules"
)

// RuleStore is the interface for persisting rule sets.
// Implementations must preserve rule order and validate on load.
type RuleStore interface {
	Close() error

	// LoadRules returns the stored rules in their saved order.
	LoadRules(ctx context.Context) ([]rules.Rule, error)

	// SaveRules replaces the stored rule set.
	SaveRules(ctx context.Context, set []rules.Rule) error
}

// SerializationError reports malformed persisted rule data.
// Index is the position of the offending rule (or line, for text formats);
// Field names the part that failed to decode.
type SerializationError struct {
	Source string
	Index  int
	Field  string
	Err    error
}

func (e *SerializationError) Error() string {
	loc := fmt.Sprintf("rule %d", e.Index)
	if e.Field != "" {
		loc += " field " + e.Field
	}
	if e.Source != "" {
		loc = e.Source + ": " + loc
	}
	return fmt.Sprintf("%s: %v", loc, e.Err)
}

// Unwrap exposes both the cause and ErrSerialization to errors.Is.
func (e *SerializationError) Unwrap() []error {
	return []error{internalerr.ErrSerialization, e.Err}
}

// ValidateSet checks a decoded rule set and converts failures into a
// SerializationError pointing at the offending rule.
func ValidateSet(source string, set []rules.Rule) error {
	seen := make(map[int]int, len(set))
	for i, r := range set {
		if err := r.Antecedent.Validate(); err != nil {
			return &SerializationError{Source: source, Index: i, Field: "antecedent", Err: err}
		}
		if err := r.Validate(); err != nil {
			return &SerializationError{Source: source, Index: i, Field: "consequent", Err: err}
		}
		if prev, ok := seen[r.ID]; ok {
			return &SerializationError{Source: source, Index: i, Field: "id",
				Err: fmt.Errorf("%w: id %d already used by rule %d", internalerr.ErrDuplicate, r.ID, prev)}
		}
		seen[r.ID] = i
	}
	return nil
}
