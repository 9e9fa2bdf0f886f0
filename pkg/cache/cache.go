package cache

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// DefaultTTL is the lifespan of every entry unless Options.TTL is set.
const DefaultTTL = time.Hour

// ErrAbandoned is returned to callers whose computation was dropped because
// the context that started it was cancelled. Such results are never stored.
var ErrAbandoned = errors.New("computation abandoned")

// ComputeFunc produces the response for a missed key. ctx belongs to the
// caller that started the computation.
type ComputeFunc func(ctx context.Context) (*Entry, error)

// Options configures a Cache.
type Options struct {
	// TTL is the single lifespan applied to every stored entry.
	TTL time.Duration

	// Now is the clock. Defaults to time.Now.
	Now func() time.Time

	// OnHit may rewrite the headers of an entry replayed from the cache.
	// remaining is the entry's remaining lifespan.
	OnHit func(h http.Header, statusCode int, remaining time.Duration)

	// OnError may add headers to the 500 the middleware writes when a
	// computation fails outside the wrapped handler.
	OnError func(h http.Header, statusCode int)
}

// Cache is the response cache. It is safe for concurrent use.
type Cache struct {
	store   Store
	ttl     time.Duration
	now     func() time.Time
	onHit   func(h http.Header, statusCode int, remaining time.Duration)
	onError func(h http.Header, statusCode int)
	group   singleflight.Group
	logger  zerolog.Logger
}

// New creates a cache over store.
func New(store Store, opts Options) *Cache {
	if store == nil {
		panic("cache store cannot be nil")
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Cache{
		store:   store,
		ttl:     opts.TTL,
		now:     opts.Now,
		onHit:   opts.OnHit,
		onError: opts.OnError,
		logger:  log.With().Str("component", "cache").Logger(),
	}
}

// TTL returns the lifespan applied to stored entries.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

type flightResult struct {
	entry *Entry
	hit   bool
}

// GetOrCompute returns the live entry for key, or runs compute once among all
// concurrent callers sharing key, stores the result and returns it.
// The returned entry is the caller's own copy. hit reports whether it was
// served from the store.
func (c *Cache) GetOrCompute(ctx context.Context, key Key, compute ComputeFunc) (entry *Entry, hit bool, err error) {
	k := key.String()

	for {
		if e, ok := c.lookup(ctx, k); ok {
			CacheHits.Inc()
			c.logger.Debug().Str("key", k).Msg("Cache hit")
			return e, true, nil
		}
		CacheMisses.Inc()

		ch := c.group.DoChan(k, func() (interface{}, error) {
			// Another flight may have stored the key since our lookup.
			if e, ok := c.lookup(ctx, k); ok {
				return flightResult{entry: e, hit: true}, nil
			}
			e, err := c.compute(ctx, k, compute)
			if err != nil {
				return nil, err
			}
			return flightResult{entry: e}, nil
		})

		select {
		case <-ctx.Done():
			return nil, false, ctx.Err()
		case res := <-ch:
			if res.Err != nil {
				if errors.Is(res.Err, ErrAbandoned) && ctx.Err() == nil {
					// The caller that led the flight went away; try again.
					continue
				}
				return nil, false, res.Err
			}
			if res.Shared {
				CacheShared.Inc()
			}
			fr := res.Val.(flightResult)
			return fr.entry.Clone(), fr.hit, nil
		}
	}
}

// compute runs fn, stamps the result and stores it.
func (c *Cache) compute(ctx context.Context, k string, fn ComputeFunc) (e *Entry, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("compute %s panicked: %v", k, r)
		}
	}()

	e, err = fn(ctx)
	if ctx.Err() != nil {
		CacheAbandoned.Inc()
		c.logger.Debug().Str("key", k).Msg("Computation abandoned, not storing")
		return nil, fmt.Errorf("%w: %w", ErrAbandoned, ctx.Err())
	}
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, fmt.Errorf("compute %s returned no entry", k)
	}

	e.StoredAt = c.now()
	e.TTL = c.ttl
	if e.Header == nil {
		e.Header = http.Header{}
	}

	if err := c.store.Set(ctx, k, e); err != nil {
		// The response is still served; it is just not cached.
		CacheErrors.WithLabelValues("set").Inc()
		c.logger.Warn().Err(err).Str("key", k).Msg("Failed to store cache entry")
		return e, nil
	}

	CacheStores.Inc()
	c.logger.Debug().
		Str("key", k).
		Int("status", e.StatusCode).
		Dur("ttl", e.TTL).
		Msg("Stored cache entry")

	return e, nil
}

// lookup returns a live entry for k. Store errors count as misses.
func (c *Cache) lookup(ctx context.Context, k string) (*Entry, bool) {
	e, err := c.store.Get(ctx, k)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			CacheErrors.WithLabelValues("get").Inc()
			c.logger.Warn().Err(err).Str("key", k).Msg("Cache get error")
		}
		return nil, false
	}
	if e.IsExpired(c.now()) {
		return nil, false
	}
	return e, true
}
