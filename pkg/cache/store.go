package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

var (
	// ErrCacheMiss indicates the requested key was not found in the store
	ErrCacheMiss = errors.New("cache miss")

	// ErrInvalidEntry indicates the stored entry is invalid or corrupted
	ErrInvalidEntry = errors.New("invalid cache entry")
)

// Store persists entries for the Cache.
// Implementations must be safe for concurrent use. Get returns ErrCacheMiss
// for absent or expired keys; the Cache re-checks expiry with its own clock.
type Store interface {
	Get(ctx context.Context, key string) (*Entry, error)
	Set(ctx context.Context, key string, entry *Entry) error
}

// MemoryStore is an in-process Store. Entries are copied on the way in and out.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*Entry
	now     func() time.Time
}

// NewMemoryStore creates an empty memory store. A nil now uses time.Now.
func NewMemoryStore(now func() time.Time) *MemoryStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryStore{
		entries: make(map[string]*Entry),
		now:     now,
	}
}

// Get implements Store. Expired entries are removed and reported as misses.
func (s *MemoryStore) Get(_ context.Context, key string) (*Entry, error) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrCacheMiss
	}
	if e.IsExpired(s.now()) {
		s.deleteIfSame(key, e)
		return nil, ErrCacheMiss
	}
	return e.Clone(), nil
}

// Set implements Store. An existing entry for key is replaced.
func (s *MemoryStore) Set(_ context.Context, key string, entry *Entry) error {
	if entry == nil {
		return errors.New("cache entry cannot be nil")
	}

	s.mu.Lock()
	s.entries[key] = entry.Clone()
	n := len(s.entries)
	s.mu.Unlock()

	CacheEntries.WithLabelValues("memory").Set(float64(n))
	return nil
}

// Len returns the number of held entries, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Sweep removes every expired entry and returns how many were removed.
func (s *MemoryStore) Sweep() int {
	now := s.now()

	s.mu.Lock()
	removed := 0
	for key, e := range s.entries {
		if e.IsExpired(now) {
			delete(s.entries, key)
			removed++
		}
	}
	n := len(s.entries)
	s.mu.Unlock()

	CacheEntries.WithLabelValues("memory").Set(float64(n))
	return removed
}

// RunJanitor sweeps expired entries every interval until ctx is done.
func (s *MemoryStore) RunJanitor(ctx context.Context, interval time.Duration) {
	logger := log.With().Str("component", "cache-janitor").Logger()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := s.Sweep(); removed > 0 {
				logger.Debug().Int("removed", removed).Int("remaining", s.Len()).Msg("Swept expired entries")
			}
		}
	}
}

// deleteIfSame removes key only if it still maps to e, so a concurrent
// replacement is not lost.
func (s *MemoryStore) deleteIfSame(key string, e *Entry) {
	s.mu.Lock()
	if cur, ok := s.entries[key]; ok && cur == e {
		delete(s.entries, key)
	}
	n := len(s.entries)
	s.mu.Unlock()

	CacheEntries.WithLabelValues("memory").Set(float64(n))
}
