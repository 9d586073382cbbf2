package memstore

import (
	"context"
	"sync"

	"github.com/cognicore/nlformer/pkg/nlformer/rules"
	"github.com/cognicore/nlformer/pkg/nlformer/store"
)

// Store is an in-memory implementation of store.RuleStore for tests.
type Store struct {
	mu    sync.RWMutex
	rules []rules.Rule
}

// New creates a new in-memory store, optionally seeded with rules.
func New(seed ...rules.Rule) *Store {
	return &Store{rules: rules.CloneAll(seed)}
}

// Close implements store.RuleStore.
func (s *Store) Close() error { return nil }

// LoadRules returns a copy of the stored rules.
func (s *Store) LoadRules(ctx context.Context) ([]rules.Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := store.ValidateSet("memstore", s.rules); err != nil {
		return nil, err
	}
	return rules.CloneAll(s.rules), nil
}

// SaveRules replaces the stored rules with a copy of set.
func (s *Store) SaveRules(ctx context.Context, set []rules.Rule) error {
	if err := rules.Validate(set); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules = rules.CloneAll(set)
	return nil
}
