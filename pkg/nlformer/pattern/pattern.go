package pattern

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cognicore/nlformer/pkg/nlformer/internalerr"
)

// Pattern is a predicate applied to an ordered argument list.
// Example: is(?x, car)
type Pattern struct {
	Predicate string
	Args      []Term
}

// New creates a pattern from raw tokens. Tokens starting with "?" become
// variables, everything else is a constant.
func New(predicate string, tokens ...string) Pattern {
	args := make([]Term, len(tokens))
	for i, tok := range tokens {
		args[i] = ParseTerm(tok)
	}
	return Pattern{Predicate: predicate, Args: args}
}

// Arity returns the number of arguments.
func (p Pattern) Arity() int { return len(p.Args) }

// Equal reports structural equality: same predicate, same arity, same terms.
func (p Pattern) Equal(other Pattern) bool {
	if p.Predicate != other.Predicate || len(p.Args) != len(other.Args) {
		return false
	}
	for i := range p.Args {
		if p.Args[i] != other.Args[i] {
			return false
		}
	}
	return true
}

// IsGround reports whether the pattern contains no variables.
func (p Pattern) IsGround() bool {
	for _, a := range p.Args {
		if a.IsVariable() {
			return false
		}
	}
	return true
}

// Variables returns the distinct variable names in first-seen order.
func (p Pattern) Variables() []string {
	var vars []string
	seen := make(map[string]bool)
	for _, a := range p.Args {
		if a.IsVariable() && !seen[a.Value] {
			seen[a.Value] = true
			vars = append(vars, a.Value)
		}
	}
	return vars
}

// Tokens returns the raw argument tokens.
func (p Pattern) Tokens() []string {
	out := make([]string, len(p.Args))
	for i, a := range p.Args {
		out[i] = a.Value
	}
	return out
}

// Key is an unambiguous identity string, used to merge derived facts.
func (p Pattern) Key() string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(len(p.Predicate)))
	b.WriteByte(':')
	b.WriteString(p.Predicate)
	for _, a := range p.Args {
		b.WriteByte('|')
		b.WriteString(strconv.Itoa(len(a.Value)))
		b.WriteByte(':')
		b.WriteString(a.Value)
	}
	return b.String()
}

// Clone returns a copy that shares no memory with p.
func (p Pattern) Clone() Pattern {
	args := make([]Term, len(p.Args))
	copy(args, p.Args)
	return Pattern{Predicate: p.Predicate, Args: args}
}

// String renders the pattern as pred(a, b).
func (p Pattern) String() string {
	return p.Predicate + "(" + strings.Join(p.Tokens(), ", ") + ")"
}

// Validate checks the pattern is well formed.
func (p Pattern) Validate() error {
	if strings.TrimSpace(p.Predicate) == "" {
		return fmt.Errorf("%w: empty predicate", internalerr.ErrMalformedPattern)
	}
	for i, a := range p.Args {
		if a.Value == "" {
			return fmt.Errorf("%w: %s: empty argument at position %d", internalerr.ErrMalformedPattern, p.Predicate, i)
		}
		// Stores keep only the token, so the kind must be recoverable from it.
		if a.IsVariable() != IsVariable(a.Value) {
			return fmt.Errorf("%w: %s: %s term %q at position %d", internalerr.ErrMalformedPattern, p.Predicate, a.Kind, a.Value, i)
		}
	}
	return nil
}

// ValidateFact checks the pattern is well formed and fully grounded.
func (p Pattern) ValidateFact() error {
	if err := p.Validate(); err != nil {
		return err
	}
	if !p.IsGround() {
		return fmt.Errorf("%w: fact %s contains variables", internalerr.ErrMalformedPattern, p)
	}
	return nil
}
