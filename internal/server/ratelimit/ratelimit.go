// Package ratelimit provides sliding-window rate limiting keyed by client IP
// and request path. Counts are kept behind a Store interface so deployments
// that need cross-instance limits can swap the in-memory store for a shared
// one.
package ratelimit

import (
	"sync"
	"time"
)

// Store tracks request timestamps per key inside a sliding window.
type Store interface {
	// Record logs a hit for key at now and returns the number of hits,
	// including this one, that fall inside the window ending at now.
	Record(key string, now time.Time, window time.Duration) int
	// Count returns the hits inside the window without recording one.
	Count(key string, now time.Time, window time.Duration) int
}

const (
	sweepInterval = 10 * time.Minute
	maxKeyIdle    = time.Hour
)

// MemoryStore keeps per-key hit timestamps in process memory, pruning
// anything that has slid out of the window. A background sweep drops keys
// that have gone idle, since per-key pruning alone would leave every client
// ever seen resident in the map.
type MemoryStore struct {
	mu   sync.Mutex
	hits map[string][]time.Time

	sweepTicker *time.Ticker
	sweepStop   chan struct{}
}

// NewMemoryStore returns an empty in-memory store with the sweep running.
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{
		hits:        make(map[string][]time.Time),
		sweepTicker: time.NewTicker(sweepInterval),
		sweepStop:   make(chan struct{}),
	}
	go s.sweepLoop()
	return s
}

func (s *MemoryStore) sweepLoop() {
	for {
		select {
		case <-s.sweepTicker.C:
			s.sweep(time.Now().Add(-maxKeyIdle))
		case <-s.sweepStop:
			return
		}
	}
}

// sweep removes keys whose most recent hit is not after cutoff.
func (s *MemoryStore) sweep(cutoff time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, hits := range s.hits {
		if len(hits) == 0 || !hits[len(hits)-1].After(cutoff) {
			delete(s.hits, key)
		}
	}
}

// Stop halts the background sweep.
func (s *MemoryStore) Stop() {
	s.sweepTicker.Stop()
	close(s.sweepStop)
}

func pruned(hits []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(hits) && !hits[i].After(cutoff) {
		i++
	}
	return hits[i:]
}

// Record implements Store.
func (s *MemoryStore) Record(key string, now time.Time, window time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	live := pruned(s.hits[key], now.Add(-window))
	live = append(live, now)
	s.hits[key] = live
	return len(live)
}

// Count implements Store.
func (s *MemoryStore) Count(key string, now time.Time, window time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	live := pruned(s.hits[key], now.Add(-window))
	s.hits[key] = live
	return len(live)
}

// Info reports the outcome of a rate limit check.
type Info struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// Config holds limiter settings. PathLimits overrides the default limit for
// specific paths.
type Config struct {
	Enabled      bool
	DefaultLimit int
	Window       time.Duration
	PathLimits   map[string]int
}

// DefaultConfig allows 10 requests per hour per client and path, with the
// report generation endpoint tightened to 5.
func DefaultConfig() *Config {
	return &Config{
		Enabled:      true,
		DefaultLimit: 10,
		Window:       time.Hour,
		PathLimits: map[string]int{
			"/api/planner/generate": 5,
		},
	}
}

// Limiter applies sliding-window limits per {ip}:{path}.
type Limiter struct {
	store  Store
	config *Config
	now    func() time.Time
}

// NewLimiter returns a limiter over the given store.
func NewLimiter(store Store, config *Config) *Limiter {
	if config == nil {
		config = DefaultConfig()
	}
	return &Limiter{store: store, config: config, now: time.Now}
}

func (l *Limiter) limitFor(path string) int {
	if limit, ok := l.config.PathLimits[path]; ok {
		return limit
	}
	return l.config.DefaultLimit
}

// Allow records a request for the client and path and reports whether it is
// within the window's budget. A denied request is still recorded, so a
// client hammering a limited endpoint does not slide back in early.
func (l *Limiter) Allow(ip, path string) Info {
	if !l.config.Enabled {
		return Info{Allowed: true}
	}

	limit := l.limitFor(path)
	if limit <= 0 {
		return Info{Allowed: true}
	}

	key := ip + ":" + path
	count := l.store.Record(key, l.now(), l.config.Window)

	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}
	return Info{
		Allowed:    count <= limit,
		Limit:      limit,
		Remaining:  remaining,
		RetryAfter: l.config.Window,
	}
}
