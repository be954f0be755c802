package ratelimit

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"github.com/wardenhq/warden/internal/clock"
)

const shardCount = 32

type entry struct {
	count   int
	resetAt time.Time
}

type shard struct {
	mu      sync.Mutex
	entries map[string]*entry
}

// MemoryStore counts windows in process memory. Keys are sharded so
// unrelated keys do not contend on one lock; the same key is always served
// by the same shard, keeping its read-modify-write atomic.
type MemoryStore struct {
	clock  clock.Clock
	shards [shardCount]shard
}

// NewMemoryStore builds an empty in-memory store.
func NewMemoryStore(clk clock.Clock) *MemoryStore {
	s := &MemoryStore{clock: clk}
	for i := range s.shards {
		s.shards[i].entries = make(map[string]*entry)
	}
	return s
}

// Take implements Store.
func (s *MemoryStore) Take(_ context.Context, key string, limit int, window time.Duration) (Result, error) {
	now := s.clock.Now()
	sh := s.shardFor(key)

	sh.mu.Lock()
	defer sh.mu.Unlock()

	e, ok := sh.entries[key]
	if !ok || !e.resetAt.After(now) {
		sh.entries[key] = &entry{count: 1, resetAt: now.Add(window)}
		return Result{Allowed: true, Remaining: limit - 1, ResetIn: window}, nil
	}

	if e.count >= limit {
		return Result{Allowed: false, Remaining: 0, ResetIn: e.resetAt.Sub(now)}, nil
	}

	e.count++
	return Result{Allowed: true, Remaining: limit - e.count, ResetIn: e.resetAt.Sub(now)}, nil
}

// Sweep drops expired entries to bound memory. Correctness never depends on
// it: Take compares resetAt against the clock on every call.
func (s *MemoryStore) Sweep() int {
	now := s.clock.Now()
	removed := 0
	for i := range s.shards {
		sh := &s.shards[i]
		sh.mu.Lock()
		for key, e := range sh.entries {
			if !e.resetAt.After(now) {
				delete(sh.entries, key)
				removed++
			}
		}
		sh.mu.Unlock()
	}
	return removed
}

// Run sweeps on the given interval until stop is closed.
func (s *MemoryStore) Run(interval time.Duration, stop <-chan struct{}) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.Sweep()
		case <-stop:
			return
		}
	}
}

func (s *MemoryStore) shardFor(key string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return &s.shards[h.Sum32()%shardCount]
}
