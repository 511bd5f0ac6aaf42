package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Store counts attempts per key inside a sliding window. Allow reports
// whether the key is below the limit; Record registers a new attempt.
// Recording is deliberately separate so a rejected request does not
// consume budget.
type Store interface {
	Allow(ctx context.Context, key string) (bool, error)
	Record(ctx context.Context, key string) error
}

type Config struct {
	Limit  int
	Window time.Duration
}

type memoryStore struct {
	mu       sync.Mutex
	attempts map[string][]time.Time
	cfg      Config
}

// NewMemoryStore returns an in-process sliding-window store. Suitable for
// single-instance deployments and tests.
func NewMemoryStore(cfg Config) Store {
	s := &memoryStore{
		attempts: make(map[string][]time.Time),
		cfg:      cfg,
	}
	go s.cleanupLoop()
	return s
}

func (s *memoryStore) Allow(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.prune(key, time.Now())) < s.cfg.Limit, nil
}

func (s *memoryStore) Record(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.attempts[key] = append(s.prune(key, now), now)
	return nil
}

// prune drops attempts older than the window. Caller holds the lock.
func (s *memoryStore) prune(key string, now time.Time) []time.Time {
	times := s.attempts[key]
	valid := times[:0]
	for _, t := range times {
		if now.Sub(t) <= s.cfg.Window {
			valid = append(valid, t)
		}
	}
	if len(valid) == 0 {
		delete(s.attempts, key)
		return nil
	}
	s.attempts[key] = valid
	return valid
}

func (s *memoryStore) cleanupLoop() {
	for {
		time.Sleep(s.cfg.Window)
		s.mu.Lock()
		now := time.Now()
		for key := range s.attempts {
			s.prune(key, now)
		}
		s.mu.Unlock()
	}
}
