package engine

import (
	"github.com/cognicore/nlformer/pkg/nlformer/attention"
	"github.com/cognicore/nlformer/pkg/nlformer/pattern"
)

// Scope says how widely activations are pooled before blending.
type Scope int

const (
	// ScopeFact blends rules that fired on the same fact.
	ScopeFact Scope = iota
	// ScopeContext blends across every fact of one context.
	ScopeContext
	// ScopeSession blends across every layer of a multi-layer run.
	ScopeSession
)

func (s Scope) String() string {
	switch s {
	case ScopeFact:
		return "fact"
	case ScopeContext:
		return "context"
	case ScopeSession:
		return "session"
	default:
		return "unknown"
	}
}

// Activation records one rule firing on one fact.
type Activation struct {
	RuleID int
	Fact   pattern.Pattern
	Weight float64 // raw rule weight
	Layer  int
}

// Result is a derived fact with its blended weight.
type Result struct {
	Consequent pattern.Pattern
	Weight     float64
	Scope      Scope
	Support    []Activation // contributing activations, in firing order
}

// derivation is a grounded consequent together with the activation that
// produced it.
type derivation struct {
	consequent pattern.Pattern
	activation Activation
}

type entry struct {
	consequent pattern.Pattern
	support    []Activation
}

// aggregator pools activations by consequent identity, remembering the
// order in which consequents were first produced.
type aggregator struct {
	scope   Scope
	order   []string
	entries map[string]*entry
}

func newAggregator(scope Scope) *aggregator {
	return &aggregator{
		scope:   scope,
		entries: make(map[string]*entry),
	}
}

func (a *aggregator) add(d derivation) {
	key := d.consequent.Key()
	e, ok := a.entries[key]
	if !ok {
		e = &entry{consequent: d.consequent}
		a.entries[key] = e
		a.order = append(a.order, key)
	}
	e.support = append(e.support, d.activation)
}

func (a *aggregator) len() int { return len(a.order) }

func (a *aggregator) results() []Result {
	out := make([]Result, 0, len(a.order))
	for _, key := range a.order {
		e := a.entries[key]
		weights := make([]float64, len(e.support))
		for i, act := range e.support {
			weights[i] = act.Weight
		}
		out = append(out, Result{
			Consequent: e.consequent,
			Weight:     attention.Blend(weights),
			Scope:      a.scope,
			Support:    e.support,
		})
	}
	return out
}
