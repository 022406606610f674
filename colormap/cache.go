package colormap

import (
	"context"

	"github.com/maypok86/otter/v2"
)

// Cache holds decoded LUTs keyed by their spec text. A LUT handed out by the cache must
// not be modified.
type Cache struct {
	size     int
	onLookup func(hit bool)
	luts     *otter.Cache[string, *LUT]
}

// A CacheOption sets an option on a Cache.
type CacheOption func(*Cache)

func WithCacheSize(size int) CacheOption {
	return func(c *Cache) {
		c.size = size
	}
}

// WithLookupObserver registers f to be called for every lookup with whether the LUT was
// already cached.
func WithLookupObserver(f func(hit bool)) CacheOption {
	return func(c *Cache) {
		c.onLookup = f
	}
}

func NewCache(options ...CacheOption) (*Cache, error) {
	c := &Cache{
		size: 64,
	}
	for _, option := range options {
		option(c)
	}
	var err error
	c.luts, err = otter.New(&otter.Options[string, *LUT]{
		MaximumSize: c.size,
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Get returns the LUT of spec, decoding it on a miss. Parse errors are not cached.
func (c *Cache) Get(ctx context.Context, spec string) (*LUT, error) {
	if lut, ok := c.luts.GetIfPresent(spec); ok {
		c.observe(true)
		return lut, nil
	}
	c.observe(false)
	return c.luts.Get(ctx, spec, otter.LoaderFunc[string, *LUT](func(_ context.Context, spec string) (*LUT, error) {
		return Parse(spec)
	}))
}

func (c *Cache) observe(hit bool) {
	if c.onLookup != nil {
		c.onLookup(hit)
	}
}
