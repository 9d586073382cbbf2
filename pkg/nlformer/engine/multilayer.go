package engine

import (
	"context"
	"fmt"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/cognicore/nlformer/pkg/nlformer/internalerr"
	"github.com/cognicore/nlformer/pkg/nlformer/pattern"
)

// InferMultiLayer forward-chains for at most maxLayers layers. Layer 0 is a
// context inference over the initial facts; each later layer feeds back the
// consequents that were not seen before. Activations from every layer are
// pooled before blending.
//
// The run stops early at a fixpoint, i.e. when a layer derives nothing new.
// Facts already seen (initial or derived) are never fed back, which keeps
// cyclic rule sets from re-deriving forever. At most MaxFactsPerLayer new
// consequents are accepted per layer; the rest are dropped with a warning.
func (e *Engine) InferMultiLayer(ctx context.Context, facts []pattern.Pattern, maxLayers int) ([]Result, error) {
	if maxLayers < 1 {
		return nil, fmt.Errorf("%w: max layers must be positive, got %d", internalerr.ErrInvalidInput, maxLayers)
	}
	input, err := prepareFacts(facts)
	if err != nil {
		return nil, fmt.Errorf("infer multi-layer: %w", err)
	}

	log := e.logger.With(zap.String("run_id", ulid.Make().String()))

	seen := make(map[string]bool, len(input))
	for _, f := range input {
		seen[f.Key()] = true
	}

	agg := newAggregator(ScopeSession)
	layer := 0
	for ; layer < maxLayers; layer++ {
		perFact, err := e.collect(ctx, input, layer)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, fmt.Errorf("layer %d: %w", layer, err)
		}

		var next []pattern.Pattern
		dropped := 0
		for _, derived := range perFact {
			for _, d := range derived {
				key := d.consequent.Key()
				if seen[key] {
					// Known fact: its weight still absorbs the new support.
					agg.add(d)
					continue
				}
				if len(next) >= e.maxFactsPerLayer {
					dropped++
					continue
				}
				seen[key] = true
				next = append(next, d.consequent)
				agg.add(d)
			}
		}

		log.Debug("layer complete",
			zap.Int("layer", layer),
			zap.Int("facts", len(input)),
			zap.Int("new", len(next)),
			zap.Int("consequents", agg.len()))
		if dropped > 0 {
			log.Warn("layer fact ceiling reached",
				zap.Int("layer", layer),
				zap.Int("ceiling", e.maxFactsPerLayer),
				zap.Int("dropped", dropped))
		}

		if len(next) == 0 {
			log.Debug("fixpoint reached", zap.Int("layers", layer+1))
			return agg.results(), nil
		}
		input = next
	}

	log.Debug("max layers exhausted", zap.Int("layers", layer))
	return agg.results(), nil
}
