// Package engine implements weighted forward chaining over a fixed rule set.
//
// An Engine is immutable once built: every inference call keeps its working
// state (substitutions, pooled activations, seen facts) local, so one Engine
// can serve concurrent callers without locking.
package engine

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cognicore/nlformer/pkg/nlformer/pattern"
	"github.com/cognicore/nlformer/pkg/nlformer/rules"
)

// Engine owns a rule index and answers inference queries against it.
type Engine struct {
	index            *rules.Index
	logger           *zap.Logger
	maxFactsPerLayer int
	parallelism      int
	cacheSize        int
	cache            *activationCache
}

// New validates the rule set and builds the engine.
func New(set []rules.Rule, opts ...Option) (*Engine, error) {
	if err := rules.Validate(set); err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	e := &Engine{
		logger:           zap.NewNop(),
		maxFactsPerLayer: DefaultMaxFactsPerLayer,
		parallelism:      1,
	}
	for _, opt := range opts {
		opt(e)
	}

	e.index = rules.NewIndex(set)
	if e.cacheSize > 0 {
		cache, err := newActivationCache(e.cacheSize)
		if err != nil {
			return nil, fmt.Errorf("engine: %w", err)
		}
		e.cache = cache
	}

	e.logger.Debug("engine ready",
		zap.Int("rules", e.index.Len()),
		zap.Int("predicates", len(e.index.Predicates())),
		zap.Int("parallelism", e.parallelism),
		zap.Int("cache_size", e.cacheSize))
	return e, nil
}

// Rules returns a copy of the engine's rules in load order.
func (e *Engine) Rules() []rules.Rule {
	return e.index.Rules()
}

// Infer matches a single fact against the rules indexed under its
// predicate. Rules that ground to the same consequent are blended.
// An unmatched query returns an empty result.
func (e *Engine) Infer(ctx context.Context, query pattern.Pattern) ([]Result, error) {
	facts, err := prepareFacts([]pattern.Pattern{query})
	if err != nil {
		return nil, fmt.Errorf("infer: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	derived, err := e.derive(facts[0], 0)
	if err != nil {
		return nil, fmt.Errorf("infer %s: %w", query, err)
	}

	agg := newAggregator(ScopeFact)
	for _, d := range derived {
		agg.add(d)
	}
	return agg.results(), nil
}

// InferContext runs Infer for every fact and pools all activations before
// blending, so separate facts that support the same conclusion reinforce
// each other. Duplicate facts are collapsed.
func (e *Engine) InferContext(ctx context.Context, facts []pattern.Pattern) ([]Result, error) {
	prepared, err := prepareFacts(facts)
	if err != nil {
		return nil, fmt.Errorf("infer context: %w", err)
	}

	perFact, err := e.collect(ctx, prepared, 0)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, err
	}

	agg := newAggregator(ScopeContext)
	for _, derived := range perFact {
		for _, d := range derived {
			agg.add(d)
		}
	}

	e.logger.Debug("context inference",
		zap.Int("facts", len(prepared)),
		zap.Int("consequents", agg.len()))
	return agg.results(), nil
}

// derive returns the activations produced by one ground fact, tagged with
// layer.
func (e *Engine) derive(fact pattern.Pattern, layer int) ([]derivation, error) {
	key := fact.Key()
	if e.cache != nil {
		if cached, ok := e.cache.Get(key); ok {
			return withLayer(cached, layer), nil
		}
	}

	var out []derivation
	for _, r := range e.index.CandidatesFor(fact.Predicate) {
		sub, ok := pattern.Unify(fact, r.Antecedent)
		if !ok {
			continue
		}
		consequent, err := pattern.Ground(r.Consequent, sub)
		if err != nil {
			// Rule validation makes this unreachable; stop rather than
			// return a partial answer.
			return nil, fmt.Errorf("rule %d: %w", r.ID, err)
		}
		out = append(out, derivation{
			consequent: consequent,
			activation: Activation{RuleID: r.ID, Fact: fact, Weight: r.Weight},
		})
	}

	if e.cache != nil {
		e.cache.Add(key, out)
	}
	return withLayer(out, layer), nil
}

// collect derives every fact, concurrently when parallelism allows.
// The result is indexed like facts so merging stays deterministic.
func (e *Engine) collect(ctx context.Context, facts []pattern.Pattern, layer int) ([][]derivation, error) {
	out := make([][]derivation, len(facts))

	if e.parallelism <= 1 || len(facts) < 2 {
		for i, f := range facts {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			derived, err := e.derive(f, layer)
			if err != nil {
				return nil, fmt.Errorf("infer %s: %w", f, err)
			}
			out[i] = derived
		}
		return out, nil
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(e.parallelism)
	for i, f := range facts {
		i, f := i, f
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			derived, err := e.derive(f, layer)
			if err != nil {
				return fmt.Errorf("infer %s: %w", f, err)
			}
			out[i] = derived
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// withLayer copies derivations so callers never share memory with the cache.
func withLayer(in []derivation, layer int) []derivation {
	out := make([]derivation, len(in))
	for i, d := range in {
		act := d.activation
		act.Fact = act.Fact.Clone()
		act.Layer = layer
		out[i] = derivation{consequent: d.consequent.Clone(), activation: act}
	}
	return out
}

// prepareFacts validates facts, copies them and drops duplicates.
func prepareFacts(facts []pattern.Pattern) ([]pattern.Pattern, error) {
	out := make([]pattern.Pattern, 0, len(facts))
	seen := make(map[string]bool, len(facts))
	for i, f := range facts {
		if err := f.ValidateFact(); err != nil {
			return nil, fmt.Errorf("fact %d: %w", i, err)
		}
		key := f.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, f.Clone())
	}
	return out, nil
}
