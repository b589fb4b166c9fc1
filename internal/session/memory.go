package session

import (
	"context"
	"sync"
	"time"
)

type entry[T any] struct {
	value    T
	lastSeen time.Time
}

// MemoryStore is an in-process Store. Entries idle for longer than ttl are
// removed by Sweep; onEvict, when set, runs for each removed value outside
// the lock.
type MemoryStore[T any] struct {
	mu      sync.RWMutex
	m       map[string]*entry[T]
	ttl     time.Duration
	now     func() time.Time
	onEvict func(id string, v T)
}

func NewMemoryStore[T any](ttl time.Duration, onEvict func(id string, v T)) *MemoryStore[T] {
	return &MemoryStore[T]{
		m:       map[string]*entry[T]{},
		ttl:     ttl,
		now:     time.Now,
		onEvict: onEvict,
	}
}

func (s *MemoryStore[T]) Get(_ context.Context, id string) (T, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.m[id]
	if !ok {
		var zero T
		return zero, false, nil
	}
	e.lastSeen = s.now()
	return e.value, true, nil
}

func (s *MemoryStore[T]) Put(_ context.Context, id string, v T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[id] = &entry[T]{value: v, lastSeen: s.now()}
	return nil
}

func (s *MemoryStore[T]) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	e, ok := s.m[id]
	delete(s.m, id)
	s.mu.Unlock()

	if ok && s.onEvict != nil {
		s.onEvict(id, e.value)
	}
	return nil
}

// Len returns the number of live entries.
func (s *MemoryStore[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.m)
}

// Sweep removes idle entries and returns how many were removed.
func (s *MemoryStore[T]) Sweep() int {
	if s.ttl <= 0 {
		return 0
	}

	type evicted struct {
		id string
		v  T
	}
	var gone []evicted

	s.mu.Lock()
	cutoff := s.now().Add(-s.ttl)
	for id, e := range s.m {
		if e.lastSeen.Before(cutoff) {
			gone = append(gone, evicted{id, e.value})
			delete(s.m, id)
		}
	}
	s.mu.Unlock()

	if s.onEvict != nil {
		for _, g := range gone {
			s.onEvict(g.id, g.v)
		}
	}
	return len(gone)
}

// Run sweeps every interval until ctx is cancelled.
func (s *MemoryStore[T]) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}
