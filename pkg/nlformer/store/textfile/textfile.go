// Package textfile reads and writes rule sets in a line-oriented format:
//
//	# vehicles
//	@1 is(?x, car) -> can(?x, drive) [0.5]
//	is(?x, damaged) -> can(?x, drive) [-3]
//
// The @id prefix is optional; a rule without one gets the previous id + 1.
// The [weight] suffix is optional and defaults to 0.
package textfile

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/cognicore/nlformer/pkg/nlformer/pattern"
	"github.com/cognicore/nlformer/pkg/nlformer/rules"
	"github.com/cognicore/nlformer/pkg/nlformer/store"
)

const arrow = "->"

// Store is a file-backed store.RuleStore using the text format.
type Store struct {
	path string
}

// Open returns a store for path.
func Open(path string) *Store {
	return &Store{path: path}
}

// Close implements store.RuleStore.
func (s *Store) Close() error { return nil }

// LoadRules parses the rule file.
func (s *Store) LoadRules(ctx context.Context) ([]rules.Rule, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("load rules: %w", err)
	}
	defer f.Close()
	return parse(s.path, f)
}

// SaveRules writes the rule set, one rule per line.
func (s *Store) SaveRules(ctx context.Context, set []rules.Rule) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := rules.Validate(set); err != nil {
		return err
	}
	var b strings.Builder
	if err := Format(&b, set); err != nil {
		return err
	}
	if err := os.WriteFile(s.path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("save rules: %w", err)
	}
	return nil
}

// Parse reads rules from r.
func Parse(r io.Reader) ([]rules.Rule, error) {
	return parse("", r)
}

func parse(source string, r io.Reader) ([]rules.Rule, error) {
	scanner := bufio.NewScanner(r)
	lineNum := 0
	nextID := 1

	var set []rules.Rule
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		rule, err := parseRule(line, nextID)
		if err != nil {
			var serr *store.SerializationError
			if errors.As(err, &serr) {
				serr.Source, serr.Index = source, lineNum
				return nil, serr
			}
			return nil, &store.SerializationError{Source: source, Index: lineNum, Err: err}
		}
		set = append(set, rule)
		nextID = rule.ID + 1
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if err := store.ValidateSet(source, set); err != nil {
		return nil, err
	}
	return set, nil
}

// parseRule parses "[@id] antecedent -> consequent [weight]".
func parseRule(line string, defaultID int) (rules.Rule, error) {
	r := rules.Rule{ID: defaultID}

	if strings.HasPrefix(line, "@") {
		end := strings.IndexFunc(line, func(c rune) bool { return c == ' ' || c == '\t' })
		if end == -1 {
			return rules.Rule{}, &store.SerializationError{Field: "id", Err: fmt.Errorf("no rule after id: %q", line)}
		}
		id, err := strconv.Atoi(line[1:end])
		if err != nil {
			return rules.Rule{}, &store.SerializationError{Field: "id", Err: err}
		}
		r.ID = id
		line = strings.TrimSpace(line[end:])
	}

	if strings.HasSuffix(line, "]") {
		open := strings.LastIndex(line, "[")
		if open == -1 {
			return rules.Rule{}, &store.SerializationError{Field: "weight", Err: fmt.Errorf("missing '[': %q", line)}
		}
		w, err := strconv.ParseFloat(strings.TrimSpace(line[open+1:len(line)-1]), 64)
		if err != nil {
			return rules.Rule{}, &store.SerializationError{Field: "weight", Err: err}
		}
		r.Weight = w
		line = strings.TrimSpace(line[:open])
	}

	parts := strings.Split(line, arrow)
	if len(parts) != 2 {
		return rules.Rule{}, &store.SerializationError{Field: "rule", Err: fmt.Errorf("expected exactly one %q: %q", arrow, line)}
	}

	ante, err := pattern.Parse(parts[0])
	if err != nil {
		return rules.Rule{}, &store.SerializationError{Field: "antecedent", Err: err}
	}
	cons, err := pattern.Parse(parts[1])
	if err != nil {
		return rules.Rule{}, &store.SerializationError{Field: "consequent", Err: err}
	}
	r.Antecedent, r.Consequent = ante, cons
	return r, nil
}

// Format renders rules in the text format. Every line carries an explicit
// id and weight so that parsing the output reproduces the input exactly.
func Format(w io.Writer, set []rules.Rule) error {
	for i, r := range set {
		if err := checkWritable(r.Antecedent); err != nil {
			return &store.SerializationError{Index: i, Field: "antecedent", Err: err}
		}
		if err := checkWritable(r.Consequent); err != nil {
			return &store.SerializationError{Index: i, Field: "consequent", Err: err}
		}
		if _, err := fmt.Fprintf(w, "@%d %s %s %s [%s]\n",
			r.ID, r.Antecedent, arrow, r.Consequent,
			strconv.FormatFloat(r.Weight, 'g', -1, 64)); err != nil {
			return err
		}
	}
	return nil
}

// checkWritable rejects tokens that the parser would split differently.
func checkWritable(p pattern.Pattern) error {
	for _, tok := range append([]string{p.Predicate}, p.Tokens()...) {
		if tok != strings.TrimSpace(tok) || strings.ContainsAny(tok, "(),[]#") || strings.Contains(tok, arrow) {
			return fmt.Errorf("token %q cannot be written in text form", tok)
		}
	}
	return nil
}
