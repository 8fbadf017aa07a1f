package tokenizer

import (
	"slices"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MaxCachedLen bounds the length of inputs the cache will memoize.
// Retokenization works on whitespace-bounded runs, which are short, so
// long inputs are tokenized directly.
const MaxCachedLen = 256

// DefaultCacheTTL is used by Cached when ttl is not positive.
const DefaultCacheTTL = 5 * time.Minute

type cached struct {
	next  Tokenizer
	cache *gocache.Cache
}

// Cached wraps t with a memoizing cache keyed by input text. Entries expire
// after ttl. The result is indistinguishable from t: callers receive their
// own copy of the spans.
func Cached(t Tokenizer, ttl time.Duration) Tokenizer {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &cached{
		next:  t,
		cache: gocache.New(ttl, 2*ttl),
	}
}

// Tokenize implements Tokenizer.
func (c *cached) Tokenize(s string) []Span {
	if len(s) > MaxCachedLen {
		return c.next.Tokenize(s)
	}
	if v, ok := c.cache.Get(s); ok {
		if spans, ok := v.([]Span); ok {
			return slices.Clone(spans)
		}
	}
	spans := c.next.Tokenize(s)
	c.cache.SetDefault(s, slices.Clone(spans))
	return spans
}
