package docstore

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

type CacheConfig struct {
	MaxEntries int
	TTL        time.Duration
}

func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		MaxEntries: 1024,
		TTL:        5 * time.Minute,
	}
}

type MetricsSnapshot struct {
	Hits           uint64
	Misses         uint64
	OriginReads    uint64
	OriginWrites   uint64
	OriginReadErr  uint64
	OriginWriteErr uint64
}

type Metrics struct {
	hits           atomic.Uint64
	misses         atomic.Uint64
	originReads    atomic.Uint64
	originWrites   atomic.Uint64
	originReadErr  atomic.Uint64
	originWriteErr atomic.Uint64
}

func (m *Metrics) snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		Hits:           m.hits.Load(),
		Misses:         m.misses.Load(),
		OriginReads:    m.originReads.Load(),
		OriginWrites:   m.originWrites.Load(),
		OriginReadErr:  m.originReadErr.Load(),
		OriginWriteErr: m.originWriteErr.Load(),
	}
}

// CachedStore is a read-through, write-through LRU in front of another
// store. List always goes to the origin.
type CachedStore struct {
	origin  Store
	cache   *expirable.LRU[string, []byte]
	metrics Metrics
}

func NewCachedStore(origin Store, cfg CacheConfig) *CachedStore {
	def := DefaultCacheConfig()
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = def.MaxEntries
	}
	if cfg.TTL <= 0 {
		cfg.TTL = def.TTL
	}
	return &CachedStore{
		origin: origin,
		cache:  expirable.NewLRU[string, []byte](cfg.MaxEntries, nil, cfg.TTL),
	}
}

func (s *CachedStore) Put(ctx context.Context, key string, content []byte) error {
	s.metrics.originWrites.Add(1)
	ck, cacheable := s.cacheKey(key)
	if err := s.origin.Put(ctx, key, content); err != nil {
		s.metrics.originWriteErr.Add(1)
		if cacheable {
			s.cache.Remove(ck)
		}
		return err
	}
	if cacheable {
		s.cache.Add(ck, append([]byte(nil), content...))
	}
	return nil
}

func (s *CachedStore) Get(ctx context.Context, key string) ([]byte, error) {
	ck, cacheable := s.cacheKey(key)
	if !cacheable {
		s.metrics.misses.Add(1)
		s.metrics.originReads.Add(1)
		raw, err := s.origin.Get(ctx, key)
		if err != nil {
			s.metrics.originReadErr.Add(1)
		}
		return raw, err
	}
	if raw, ok := s.cache.Get(ck); ok {
		s.metrics.hits.Add(1)
		return append([]byte(nil), raw...), nil
	}
	s.metrics.misses.Add(1)
	s.metrics.originReads.Add(1)

	raw, err := s.origin.Get(ctx, key)
	if err != nil {
		s.metrics.originReadErr.Add(1)
		return nil, err
	}
	copied := append([]byte(nil), raw...)
	s.cache.Add(ck, copied)
	return append([]byte(nil), copied...), nil
}

func (s *CachedStore) List(ctx context.Context, prefix string) ([]string, error) {
	return s.origin.List(ctx, prefix)
}

func (s *CachedStore) Metrics() MetricsSnapshot {
	if s == nil {
		return MetricsSnapshot{}
	}
	return s.metrics.snapshot()
}

// cacheKey maps key to the origin's canonical key so every spelling of a
// document shares one entry. Keys the origin rejects are not cached.
func (s *CachedStore) cacheKey(key string) (string, bool) {
	if c, ok := s.origin.(KeyCanonicalizer); ok {
		ck, err := c.CanonicalKey(key)
		return ck, err == nil
	}
	ck, err := NormalizeKey(key)
	return ck, err == nil
}
