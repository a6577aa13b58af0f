package vectorize

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/justestif/go-playlist-matcher/internal/analysis"
	"github.com/justestif/go-playlist-matcher/internal/logging"
	"github.com/justestif/go-playlist-matcher/internal/matching"
	"github.com/justestif/go-playlist-matcher/internal/metrics"
)

// Cache defaults.
const (
	DefaultCacheTTL          = time.Hour
	DefaultCacheMaxEntries   = 10000
	DefaultCacheFetchTimeout = time.Minute
)

// Cached feature kinds, used in keys and metric labels.
const (
	kindEmbedding = "embedding"
	kindSentiment = "sentiment"
	kindMood      = "mood_dimensions"
)

var _ matching.AnalysisService = (*CachedClient)(nil)

// EmbeddingStore persists text embeddings across processes.
type EmbeddingStore interface {
	// GetEmbedding returns ok=false when the text is unknown or stale.
	GetEmbedding(ctx context.Context, text string) (embedding []float64, ok bool, err error)
	PutEmbedding(ctx context.Context, text string, embedding []float64) error
}

type cacheEntry struct {
	value   any
	expires time.Time
}

// CachedClient caches text embeddings, sentiments and mood dimensions by
// exact text. Concurrent requests for the same text share one remote call,
// which runs detached from any single caller's cancellation. Song and
// playlist embeddings pass through uncached.
type CachedClient struct {
	next         matching.AnalysisService
	store        EmbeddingStore
	ttl          time.Duration
	maxEntries   int
	fetchTimeout time.Duration
	now          func() time.Time

	mu      sync.RWMutex
	entries map[string]cacheEntry
	group   singleflight.Group
}

// CacheOption configures a CachedClient.
type CacheOption func(*CachedClient)

// WithTTL sets how long cached values are served.
func WithTTL(ttl time.Duration) CacheOption {
	return func(c *CachedClient) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithMaxEntries bounds the in-memory cache size.
func WithMaxEntries(n int) CacheOption {
	return func(c *CachedClient) {
		if n > 0 {
			c.maxEntries = n
		}
	}
}

// WithFetchTimeout bounds a shared fetch, which no caller can cancel.
func WithFetchTimeout(d time.Duration) CacheOption {
	return func(c *CachedClient) {
		if d > 0 {
			c.fetchTimeout = d
		}
	}
}

// WithEmbeddingStore adds a persistent layer for text embeddings.
func WithEmbeddingStore(s EmbeddingStore) CacheOption {
	return func(c *CachedClient) {
		c.store = s
	}
}

// NewCachedClient wraps next with a text-feature cache.
func NewCachedClient(next matching.AnalysisService, opts ...CacheOption) *CachedClient {
	c := &CachedClient{
		next:         next,
		ttl:          DefaultCacheTTL,
		maxEntries:   DefaultCacheMaxEntries,
		fetchTimeout: DefaultCacheFetchTimeout,
		now:          time.Now,
		entries:      make(map[string]cacheEntry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// VectorizeText returns the cached embedding for text, consulting the
// persistent store before the service.
func (c *CachedClient) VectorizeText(ctx context.Context, text string) ([]float64, error) {
	return cached(ctx, c, kindEmbedding, text, func(ctx context.Context) ([]float64, error) {
		if c.store != nil {
			vec, ok, err := c.store.GetEmbedding(ctx, text)
			if err != nil {
				logging.Ctx(ctx).Warn().Err(err).Msg("reading stored embedding")
			} else if ok {
				metrics.FeatureCacheRequests.WithLabelValues(kindEmbedding, "store_hit").Inc()
				return vec, nil
			}
		}

		vec, err := c.next.VectorizeText(ctx, text)
		if err != nil {
			return nil, err
		}
		if c.store != nil && len(vec) > 0 {
			if err := c.store.PutEmbedding(ctx, text, vec); err != nil {
				logging.Ctx(ctx).Warn().Err(err).Msg("storing embedding")
			}
		}
		return vec, nil
	})
}

// AnalyzeSentiment returns the cached sentiment for text.
func (c *CachedClient) AnalyzeSentiment(ctx context.Context, text string) (analysis.SentimentScore, error) {
	return cached(ctx, c, kindSentiment, text, func(ctx context.Context) (analysis.SentimentScore, error) {
		return c.next.AnalyzeSentiment(ctx, text)
	})
}

// AnalyzeMoodDimensions returns the cached mood dimensions for text.
func (c *CachedClient) AnalyzeMoodDimensions(ctx context.Context, text string) (analysis.MoodDimensions, error) {
	return cached(ctx, c, kindMood, text, func(ctx context.Context) (analysis.MoodDimensions, error) {
		return c.next.AnalyzeMoodDimensions(ctx, text)
	})
}

// VectorizeSong is not cached.
func (c *CachedClient) VectorizeSong(ctx context.Context, song analysis.Song) ([]float64, error) {
	return c.next.VectorizeSong(ctx, song)
}

// VectorizePlaylist is not cached.
func (c *CachedClient) VectorizePlaylist(ctx context.Context, playlist analysis.Playlist) ([]float64, error) {
	return c.next.VectorizePlaylist(ctx, playlist)
}

// Len returns the number of cached entries, expired ones included.
func (c *CachedClient) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// cached serves kind/text from memory or runs fetch once for all concurrent
// callers. The fetch keeps ctx values but not its deadline or cancellation;
// each caller stops waiting when its own ctx ends. Errors are not cached.
func cached[T any](ctx context.Context, c *CachedClient, kind, text string, fetch func(context.Context) (T, error)) (T, error) {
	var zero T
	key := kind + ":" + text

	if v, ok := c.get(key); ok {
		if typed, ok := v.(T); ok {
			metrics.FeatureCacheRequests.WithLabelValues(kind, "hit").Inc()
			return typed, nil
		}
	}
	metrics.FeatureCacheRequests.WithLabelValues(kind, "miss").Inc()

	ch := c.group.DoChan(key, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.fetchTimeout)
		defer cancel()

		val, err := fetch(fetchCtx)
		if err != nil {
			return nil, err
		}
		c.set(key, val)
		return val, nil
	})

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		typed, ok := res.Val.(T)
		if !ok {
			return zero, fmt.Errorf("cache: unexpected value type %T for %s", res.Val, kind)
		}
		return typed, nil
	}
}

func (c *CachedClient) get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	if !ok || c.now().After(e.expires) {
		return nil, false
	}
	return e.value, true
}

func (c *CachedClient) set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxEntries {
		c.evictLocked()
	}
	c.entries[key] = cacheEntry{value: value, expires: c.now().Add(c.ttl)}
}

// evictLocked drops expired entries, or one arbitrary entry if none have
// expired. Callers hold c.mu.
func (c *CachedClient) evictLocked() {
	now := c.now()
	removed := false
	for k, e := range c.entries {
		if now.After(e.expires) {
			delete(c.entries, k)
			removed = true
		}
	}
	if removed {
		return
	}
	for k := range c.entries {
		delete(c.entries, k)
		return
	}
}
