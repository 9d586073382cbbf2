package pattern

import (
	"fmt"
	"strings"

	"github.com/cognicore/nlformer/pkg/nlformer/internalerr"
)

// Parse parses a pattern in either of two textual forms:
//
//	is(?x, car)
//	(is ?x car)
//
// The second form is the s-expression layout of older rule files.
func Parse(s string) (Pattern, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "(") {
		return parseSExpr(s)
	}

	openParen := strings.Index(s, "(")
	if openParen == -1 {
		return Pattern{}, fmt.Errorf("%w: missing '(': %q", internalerr.ErrMalformedPattern, s)
	}
	if !strings.HasSuffix(s, ")") {
		return Pattern{}, fmt.Errorf("%w: missing ')': %q", internalerr.ErrMalformedPattern, s)
	}

	predicate := strings.TrimSpace(s[:openParen])
	inner := strings.TrimSpace(s[openParen+1 : len(s)-1])
	if strings.ContainsAny(inner, "()") {
		return Pattern{}, fmt.Errorf("%w: nested parentheses: %q", internalerr.ErrMalformedPattern, s)
	}

	var tokens []string
	if inner != "" {
		for _, part := range strings.Split(inner, ",") {
			tokens = append(tokens, strings.TrimSpace(part))
		}
	}

	p := New(predicate, tokens...)
	if err := p.Validate(); err != nil {
		return Pattern{}, fmt.Errorf("%q: %w", s, err)
	}
	return p, nil
}

func parseSExpr(s string) (Pattern, error) {
	if !strings.HasSuffix(s, ")") {
		return Pattern{}, fmt.Errorf("%w: missing ')': %q", internalerr.ErrMalformedPattern, s)
	}
	inner := s[1 : len(s)-1]
	if strings.ContainsAny(inner, "(),") {
		return Pattern{}, fmt.Errorf("%w: unexpected delimiter: %q", internalerr.ErrMalformedPattern, s)
	}
	fields := strings.Fields(inner)
	if len(fields) == 0 {
		return Pattern{}, fmt.Errorf("%w: empty predicate: %q", internalerr.ErrMalformedPattern, s)
	}
	return New(fields[0], fields[1:]...), nil
}

// MustParse is like Parse but panics on error. Intended for tests and
// static rule tables.
func MustParse(s string) Pattern {
	p, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return p
}
