package session

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultIdleTTL bounds memory held by abandoned sessions. Zero
// disables eviction.
const DefaultIdleTTL = 2 * time.Hour

// Store is the keyed session registry. The map itself takes coarse
// locking on insert/lookup; each entry carries its own mutex so that
// one user's commands are serialized without blocking anyone else.
type Store struct {
	mu      sync.Mutex
	entries map[string]*entry
	ttl     time.Duration
	log     *slog.Logger

	// OnEvict is called with the number of sessions dropped by a sweep.
	OnEvict func(n int)

	now func() time.Time // swappable clock for tests
}

type entry struct {
	mu sync.Mutex
	s  *Session
}

// NewStore creates a store with the given idle TTL (0 disables
// eviction).
func NewStore(ttl time.Duration) *Store {
	return &Store{
		entries: make(map[string]*entry),
		ttl:     ttl,
		log:     slog.With("component", "sessions"),
		now:     time.Now,
	}
}

// With runs fn with the user's session under that user's lock,
// creating the session lazily. Network calls made inside fn block only
// this user.
func (st *Store) With(userID string, fn func(*Session)) {
	st.mu.Lock()
	e, ok := st.entries[userID]
	if !ok {
		e = &entry{s: &Session{UserID: userID}}
		st.entries[userID] = e
	}
	st.mu.Unlock()

	e.mu.Lock()
	defer e.mu.Unlock()
	e.s.LastActive = st.now()
	fn(e.s)
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.entries)
}

// Sweep drops sessions idle longer than the TTL and returns how many
// went. Busy entries (command in flight) are skipped and picked up by
// a later sweep.
func (st *Store) Sweep() int {
	if st.ttl <= 0 {
		return 0
	}
	cutoff := st.now().Add(-st.ttl)

	st.mu.Lock()
	defer st.mu.Unlock()
	evicted := 0
	for id, e := range st.entries {
		if !e.mu.TryLock() {
			continue
		}
		idle := e.s.LastActive.Before(cutoff)
		e.mu.Unlock()
		if idle {
			delete(st.entries, id)
			evicted++
		}
	}
	if evicted > 0 {
		st.log.Info("evicted idle sessions", "count", evicted, "remaining", len(st.entries))
		if st.OnEvict != nil {
			st.OnEvict(evicted)
		}
	}
	return evicted
}

// StartSweeper runs Sweep on a ticker until the context ends.
func (st *Store) StartSweeper(ctx context.Context, interval time.Duration) {
	if st.ttl <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			st.Sweep()
		}
	}
}
