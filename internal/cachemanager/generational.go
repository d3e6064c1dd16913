package cachemanager

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"
)

// Generational scopes cache keys by a generation counter. Bumping the
// generation makes every earlier entry unreachable.
type Generational[V any] struct {
	cache CacheManager[string, V]
	ttl   time.Duration
	gen   atomic.Uint64
}

// NewGenerational wraps cache; entries live for ttl.
func NewGenerational[V any](cache CacheManager[string, V], ttl time.Duration) *Generational[V] {
	return &Generational[V]{cache: cache, ttl: ttl}
}

// Generation returns the current generation.
func (g *Generational[V]) Generation() uint64 {
	return g.gen.Load()
}

// Key builds a key for the current generation from parts.
func (g *Generational[V]) Key(parts ...string) string {
	return fmt.Sprintf("g%d|%s", g.gen.Load(), strings.Join(parts, "|"))
}

// GetOrLoad returns the value cached under key, or calls load and caches its
// result. hit reports whether the value came from the cache.
func (g *Generational[V]) GetOrLoad(ctx context.Context, key string, load func(context.Context) (V, error)) (value V, hit bool, err error) {
	if v, ok := g.cache.Get(ctx, key); ok {
		return v, true, nil
	}
	v, err := load(ctx)
	if err != nil {
		return v, false, err
	}
	g.cache.Set(ctx, key, v, g.ttl)
	return v, false, nil
}

// Invalidate advances the generation and drops stale entries.
func (g *Generational[V]) Invalidate(ctx context.Context) uint64 {
	next := g.gen.Add(1)
	_ = g.cache.Flush(ctx)
	return next
}
