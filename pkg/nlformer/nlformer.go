package nlformer

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cognicore/nlformer/pkg/nlformer/config"
	"github.com/cognicore/nlformer/pkg/nlformer/engine"
	"github.com/cognicore/nlformer/pkg/nlformer/internalerr"
	"github.com/cognicore/nlformer/pkg/nlformer/pattern"
	"github.com/cognicore/nlformer/pkg/nlformer/rules"
	"github.com/cognicore/nlformer/pkg/nlformer/store"
)

// NLFormer is the main reasoning facade: a rule store plus the engine
// built from its contents.
type NLFormer struct {
	store  store.RuleStore
	engine *engine.Engine
	cfg    config.Engine
	logger *zap.Logger
}

// Options configures an NLFormer instance
type Options struct {
	Store  store.RuleStore
	Config config.Engine
	Logger *zap.Logger
}

// Open loads the rule set from opts.Store and builds the engine. A zero
// Config is replaced by config.Default().
func Open(ctx context.Context, opts Options) (*NLFormer, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("%w: no rule store", internalerr.ErrInvalidInput)
	}

	cfg := opts.Config
	if cfg == (config.Engine{}) {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	set, err := opts.Store.LoadRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("load rules: %w", err)
	}

	eng, err := engine.New(set, EngineOptions(cfg, logger)...)
	if err != nil {
		return nil, err
	}

	return &NLFormer{store: opts.Store, engine: eng, cfg: cfg, logger: logger}, nil
}

// EngineOptions translates a configuration into engine options.
func EngineOptions(cfg config.Engine, logger *zap.Logger) []engine.Option {
	return []engine.Option{
		engine.WithLogger(logger),
		engine.WithMaxFactsPerLayer(cfg.MaxFactsPerLayer),
		engine.WithParallelism(cfg.Parallelism),
		engine.WithCacheSize(cfg.CacheSize),
	}
}

// Close releases the rule store.
func (n *NLFormer) Close() error {
	return n.store.Close()
}

// Rules returns the loaded rules in order.
func (n *NLFormer) Rules() []rules.Rule {
	return n.engine.Rules()
}

// Engine exposes the underlying engine.
func (n *NLFormer) Engine() *engine.Engine {
	return n.engine
}

// Infer runs single-fact inference.
func (n *NLFormer) Infer(ctx context.Context, fact pattern.Pattern) ([]engine.Result, error) {
	return n.engine.Infer(ctx, fact)
}

// InferContext runs inference over a set of facts taken together.
func (n *NLFormer) InferContext(ctx context.Context, facts []pattern.Pattern) ([]engine.Result, error) {
	return n.engine.InferContext(ctx, facts)
}

// InferMultiLayer chains inference across layers. maxLayers <= 0 uses the
// configured max_layers.
func (n *NLFormer) InferMultiLayer(ctx context.Context, facts []pattern.Pattern, maxLayers int) ([]engine.Result, error) {
	if maxLayers <= 0 {
		maxLayers = n.cfg.MaxLayers
	}
	return n.engine.InferMultiLayer(ctx, facts, maxLayers)
}

// Ask parses fact strings and runs multi-layer inference over them.
func (n *NLFormer) Ask(ctx context.Context, facts ...string) ([]engine.Result, error) {
	if len(facts) == 0 {
		return nil, errors.New("ask: no facts given")
	}
	parsed := make([]pattern.Pattern, 0, len(facts))
	for _, s := range facts {
		p, err := pattern.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("ask: %w", err)
		}
		parsed = append(parsed, p)
	}
	return n.InferMultiLayer(ctx, parsed, 0)
}
