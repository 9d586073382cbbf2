package engine

import lru "github.com/hashicorp/golang-lru/v2"

// activationCache memoises the rule activations of a fact. The rule index
// never changes after construction, so entries never go stale and are only
// evicted for size.
type activationCache struct {
	cache *lru.Cache[string, []derivation]
}

func newActivationCache(size int) (*activationCache, error) {
	c, err := lru.New[string, []derivation](size)
	if err != nil {
		return nil, err
	}
	return &activationCache{cache: c}, nil
}

func (c *activationCache) Get(key string) ([]derivation, bool) {
	return c.cache.Get(key)
}

func (c *activationCache) Add(key string, value []derivation) {
	c.cache.Add(key, value)
}

func (c *activationCache) Len() int {
	return c.cache.Len()
}
