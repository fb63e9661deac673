package cache

import (
	"context"
	"sync"
	"time"

	"review-rating-engine/internal/common/metrics"
)

// MemoryStore is an in-process TTL cache. When the entry count exceeds
// maxEntries a prune pass drops expired entries first, then the oldest
// entries until only half of maxEntries remain.
type MemoryStore struct {
	mu         sync.Mutex
	entries    map[string]memoryEntry
	maxEntries int

	hits      int64
	misses    int64
	evictions int64

	now func() time.Time
}

type memoryEntry struct {
	value     string
	expiresAt time.Time
	createdAt time.Time
}

func NewMemoryStore(maxEntries int) *MemoryStore {
	if maxEntries <= 0 {
		maxEntries = 100
	}
	return &MemoryStore{
		entries:    make(map[string]memoryEntry),
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok || s.now().After(entry.expiresAt) {
		if ok {
			delete(s.entries, key)
			s.evictions++
		}
		s.misses++
		metrics.CacheRequests.WithLabelValues("miss").Inc()
		return "", false
	}

	s.hits++
	metrics.CacheRequests.WithLabelValues("hit").Inc()
	return entry.value, true
}

func (s *MemoryStore) Put(_ context.Context, key string, value string, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.entries[key] = memoryEntry{
		value:     value,
		expiresAt: now.Add(ttl),
		createdAt: now,
	}

	if len(s.entries) > s.maxEntries {
		s.prune(now)
	}
	metrics.CacheEntries.WithLabelValues("memory").Set(float64(len(s.entries)))
}

// prune is called with the lock held.
func (s *MemoryStore) prune(now time.Time) {
	for key, entry := range s.entries {
		if now.After(entry.expiresAt) {
			delete(s.entries, key)
			s.evictions++
		}
	}

	target := s.maxEntries / 2
	for len(s.entries) > target {
		oldestKey := ""
		var oldestAt time.Time
		for key, entry := range s.entries {
			if oldestKey == "" || entry.createdAt.Before(oldestAt) {
				oldestKey = key
				oldestAt = entry.createdAt
			}
		}
		delete(s.entries, oldestKey)
		s.evictions++
	}
}

// Clear drops every entry.
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]memoryEntry)
	metrics.CacheEntries.WithLabelValues("memory").Set(0)
}

// Stats reports entry count and hit/miss/eviction totals.
func (s *MemoryStore) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{
		Entries:   len(s.entries),
		Hits:      s.hits,
		Misses:    s.misses,
		Evictions: s.evictions,
	}
}
