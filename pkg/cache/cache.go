package cache

import (
	"fmt"
	"sync"
	"time"
)

// DefaultTTL is how long a remote search result stays valid.
const DefaultTTL = 30 * time.Minute

// Key identifies one cached search result.
type Key struct {
	Category string
	Sort     string
	Page     int
}

func (k Key) String() string {
	return fmt.Sprintf("%s:%s:%d", k.Category, k.Sort, k.Page)
}

type entry[V any] struct {
	value    V
	storedAt time.Time
}

// Option configures a Store.
type Option func(*options)

type options struct {
	now      func() time.Time
	disabled bool
}

// WithClock replaces time.Now, used by tests to move time forward.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithDisabled makes every lookup miss and every write a no-op.
func WithDisabled(disabled bool) Option {
	return func(o *options) { o.disabled = disabled }
}

// Store is an in-memory TTL map. Expired entries are evicted lazily when
// their key is looked up, or all at once by Clean.
type Store[V any] struct {
	mu          sync.Mutex
	ttl         time.Duration
	now         func() time.Time
	disabled    bool
	entries     map[Key]entry[V]
	hits        int
	misses      int
	lastCleaned time.Time
}

// New creates a store whose entries live for ttl.
func New[V any](ttl time.Duration, opts ...Option) (*Store[V], error) {
	if ttl <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidTTL, ttl)
	}
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &Store[V]{
		ttl:      ttl,
		now:      o.now,
		disabled: o.disabled,
		entries:  make(map[Key]entry[V]),
	}, nil
}

// Enabled reports whether the store keeps anything.
func (s *Store[V]) Enabled() bool {
	return !s.disabled
}

// Get returns the value for key if present and younger than the TTL.
func (s *Store[V]) Get(key Key) (V, bool) {
	var zero V
	if s.disabled {
		return zero, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		s.misses++
		return zero, false
	}
	if s.now().Sub(e.storedAt) >= s.ttl {
		delete(s.entries, key)
		s.misses++
		return zero, false
	}
	s.hits++
	return e.value, true
}

// Set stores value under key with the current time.
func (s *Store[V]) Set(key Key, value V) {
	if s.disabled {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry[V]{value: value, storedAt: s.now()}
}

// Len returns the number of stored entries, expired ones included.
func (s *Store[V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Clean drops every entry.
func (s *Store[V]) Clean() CleanResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := CleanResult{EntriesFreed: len(s.entries)}
	now := s.now()
	for _, e := range s.entries {
		if now.Sub(e.storedAt) >= s.ttl {
			result.ExpiredFreed++
		}
	}
	s.entries = make(map[Key]entry[V])
	s.lastCleaned = now
	return result
}

// GetInfo returns a snapshot of the cache statistics.
func (s *Store[V]) GetInfo() Info {
	s.mu.Lock()
	defer s.mu.Unlock()

	info := Info{
		Enabled:     !s.disabled,
		TTL:         s.ttl,
		Entries:     len(s.entries),
		Hits:        s.hits,
		Misses:      s.misses,
		LastCleaned: s.lastCleaned,
	}
	now := s.now()
	for _, e := range s.entries {
		if now.Sub(e.storedAt) >= s.ttl {
			info.Expired++
		}
	}
	return info
}
