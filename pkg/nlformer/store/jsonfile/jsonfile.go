// Package jsonfile stores rule sets as a JSON array:
//
//	[
//	  {
//	    "id": 1,
//	    "antecedent": {"predicate": "is", "args": ["?x", "car"]},
//	    "consequent": {"predicate": "can", "args": ["?x", "drive"]},
//	    "weight": 0.5
//	  }
//	]
//
// Older files that spell patterns as s-expressions, with the weight under
// "bias", are accepted on load:
//
//	{"id": 1, "pattern": "(is ?x car)", "consequent": "(can ?x drive)", "bias": 0.5}
package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cognicore/nlformer/pkg/nlformer/pattern"
	"github.com/cognicore/nlformer/pkg/nlformer/rules"
	"github.com/cognicore/nlformer/pkg/nlformer/store"
)

type patternJSON struct {
	Predicate string   `json:"predicate"`
	Args      []string `json:"args"`
}

type ruleJSON struct {
	ID         int         `json:"id"`
	Antecedent patternJSON `json:"antecedent"`
	Consequent patternJSON `json:"consequent"`
	Weight     float64     `json:"weight"`
}

// ruleIn accepts both the current and the legacy layout.
type ruleIn struct {
	ID         *int            `json:"id"`
	Antecedent *patternJSON    `json:"antecedent"`
	Consequent json.RawMessage `json:"consequent"`
	Weight     *float64        `json:"weight"`
	Pattern    *string         `json:"pattern"`
	Bias       *float64        `json:"bias"`
}

// Store is a file-backed RuleStore.
type Store struct {
	path string
}

// Open returns a store for path. The file is not touched until the first
// load or save.
func Open(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// Close implements store.RuleStore.
func (s *Store) Close() error { return nil }

// LoadRules reads and validates the rule file.
func (s *Store) LoadRules(ctx context.Context) ([]rules.Rule, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("load rules: %w", err)
	}
	return decode(s.path, data)
}

// SaveRules writes the rule set atomically (temp file + rename).
func (s *Store) SaveRules(ctx context.Context, set []rules.Rule) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := rules.Validate(set); err != nil {
		return err
	}
	data, err := Encode(set)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".rules-*.json")
	if err != nil {
		return fmt.Errorf("save rules: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("save rules: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("save rules: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("save rules: %w", err)
	}
	return nil
}

// Decode parses a JSON rule array.
func Decode(data []byte) ([]rules.Rule, error) {
	return decode("", data)
}

func decode(source string, data []byte) ([]rules.Rule, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &store.SerializationError{Source: source, Index: -1, Err: fmt.Errorf("rule file must contain a JSON array: %w", err)}
	}

	set := make([]rules.Rule, 0, len(raw))
	for i, msg := range raw {
		r, err := decodeRule(msg)
		if err != nil {
			var serr *store.SerializationError
			if errors.As(err, &serr) {
				serr.Source, serr.Index = source, i
				return nil, serr
			}
			return nil, &store.SerializationError{Source: source, Index: i, Err: err}
		}
		set = append(set, r)
	}

	if err := store.ValidateSet(source, set); err != nil {
		return nil, err
	}
	return set, nil
}

func decodeRule(msg json.RawMessage) (rules.Rule, error) {
	var in ruleIn
	if err := json.Unmarshal(msg, &in); err != nil {
		return rules.Rule{}, err
	}
	if in.ID == nil {
		return rules.Rule{}, &store.SerializationError{Field: "id", Err: errors.New("missing")}
	}

	r := rules.Rule{ID: *in.ID}

	switch {
	case in.Antecedent != nil:
		r.Antecedent = pattern.New(in.Antecedent.Predicate, in.Antecedent.Args...)
	case in.Pattern != nil:
		p, err := pattern.Parse(*in.Pattern)
		if err != nil {
			return rules.Rule{}, &store.SerializationError{Field: "pattern", Err: err}
		}
		r.Antecedent = p
	default:
		return rules.Rule{}, &store.SerializationError{Field: "antecedent", Err: errors.New("missing")}
	}

	c, err := decodeConsequent(in.Consequent)
	if err != nil {
		return rules.Rule{}, &store.SerializationError{Field: "consequent", Err: err}
	}
	r.Consequent = c

	switch {
	case in.Weight != nil:
		r.Weight = *in.Weight
	case in.Bias != nil:
		r.Weight = *in.Bias
	default:
		return rules.Rule{}, &store.SerializationError{Field: "weight", Err: errors.New("missing")}
	}
	return r, nil
}

func decodeConsequent(msg json.RawMessage) (pattern.Pattern, error) {
	msg = bytes.TrimSpace(msg)
	if len(msg) == 0 || bytes.Equal(msg, []byte("null")) {
		return pattern.Pattern{}, errors.New("missing")
	}
	if msg[0] == '"' {
		var s string
		if err := json.Unmarshal(msg, &s); err != nil {
			return pattern.Pattern{}, err
		}
		return pattern.Parse(s)
	}
	var p patternJSON
	if err := json.Unmarshal(msg, &p); err != nil {
		return pattern.Pattern{}, err
	}
	return pattern.New(p.Predicate, p.Args...), nil
}

// Encode renders a rule set in the current layout, indented by two spaces.
func Encode(set []rules.Rule) ([]byte, error) {
	out := make([]ruleJSON, len(set))
	for i, r := range set {
		out[i] = ruleJSON{
			ID:         r.ID,
			Antecedent: toJSON(r.Antecedent),
			Consequent: toJSON(r.Consequent),
			Weight:     r.Weight,
		}
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode rules: %w", err)
	}
	return append(data, '\n'), nil
}

func toJSON(p pattern.Pattern) patternJSON {
	return patternJSON{Predicate: p.Predicate, Args: p.Tokens()}
}
