// Package memory is a process-local KeyValueStore. Data does not survive a
// restart; use the redis or mongo backend for that.
package memory

import (
	"context"
	"sync"
	"time"
)

type item struct {
	value     string
	expiresAt time.Time
}

func (i item) expired(now time.Time) bool {
	return !i.expiresAt.IsZero() && !now.Before(i.expiresAt)
}

// Store implements ports.KeyValueStore on a map.
type Store struct {
	mu   sync.RWMutex
	data map[string]map[string]item
	now  func() time.Time
}

func NewStore() *Store {
	return &Store{data: make(map[string]map[string]item), now: time.Now}
}

func (s *Store) Get(_ context.Context, namespace, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	it, ok := s.data[namespace][key]
	if !ok || it.expired(s.now()) {
		return "", false, nil
	}
	return it.value, true, nil
}

func (s *Store) Set(_ context.Context, namespace, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ns, ok := s.data[namespace]
	if !ok {
		ns = make(map[string]item)
		s.data[namespace] = ns
	}
	it := item{value: value}
	if ttl > 0 {
		it.expiresAt = s.now().Add(ttl)
	}
	ns[key] = it
	return nil
}

func (s *Store) Delete(_ context.Context, namespace string, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ns, ok := s.data[namespace]
	if !ok {
		return nil
	}
	for _, k := range keys {
		delete(ns, k)
	}
	if len(ns) == 0 {
		delete(s.data, namespace)
	}
	return nil
}

// Purge drops expired entries and returns how many were removed.
func (s *Store) Purge() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	removed := 0
	for nsName, ns := range s.data {
		for k, it := range ns {
			if it.expired(now) {
				delete(ns, k)
				removed++
			}
		}
		if len(ns) == 0 {
			delete(s.data, nsName)
		}
	}
	return removed
}
