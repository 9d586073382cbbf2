package engine

import "go.uber.org/zap"

// DefaultMaxFactsPerLayer bounds how many new facts one layer may add.
const DefaultMaxFactsPerLayer = 10000

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. A nil logger is ignored.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithMaxFactsPerLayer caps the number of distinct new facts accepted from a
// single layer of multi-layer inference. Values <= 0 keep the default.
func WithMaxFactsPerLayer(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxFactsPerLayer = n
		}
	}
}

// WithParallelism sets how many facts of one context are matched
// concurrently. 1 (the default) runs sequentially.
func WithParallelism(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.parallelism = n
		}
	}
}

// WithCacheSize enables an LRU memo of per-fact rule activations holding up
// to n facts. 0 disables it.
func WithCacheSize(n int) Option {
	return func(e *Engine) {
		if n >= 0 {
			e.cacheSize = n
		}
	}
}
