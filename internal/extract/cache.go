package extract

import (
	"context"

	"github.com/patrickmn/go-cache"
)

// CachingExtractor memoizes document extraction by location. Raw text is
// never cached and fetch errors are never stored.
type CachingExtractor struct {
	inner Extractor
	cache *cache.Cache
}

func NewCachingExtractor(inner Extractor, cfg Config) *CachingExtractor {
	return &CachingExtractor{
		inner: inner,
		cache: cache.New(cfg.CacheTTL, 2*cfg.CacheTTL),
	}
}

func (c *CachingExtractor) Extract(ctx context.Context, src Source) (string, error) {
	if src.Kind != DocumentReference {
		return c.inner.Extract(ctx, src)
	}
	if x, found := c.cache.Get(src.Payload); found {
		return x.(string), nil
	}

	text, err := c.inner.Extract(ctx, src)
	if err != nil {
		return "", err
	}
	c.cache.Set(src.Payload, text, cache.DefaultExpiration)
	return text, nil
}
