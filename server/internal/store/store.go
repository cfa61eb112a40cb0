package store

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/pharmames/pharmames/pkg/types"
)

// Entry is a line snapshot together with the time it was last received.
type Entry struct {
	Snapshot  *types.LineSnapshot `json:"snapshot"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// Store is a thread-safe in-memory snapshot store, keyed by source_id.
// A background goroutine (Run) periodically evicts entries that have not
// been updated within the configured TTL.
type Store struct {
	mu   sync.RWMutex
	data map[string]*Entry
	ttl  time.Duration
	now  func() time.Time // injectable for deterministic tests
}

// New creates a Store with the given TTL.
func New(ttl time.Duration) *Store {
	return &Store{
		data: make(map[string]*Entry),
		ttl:  ttl,
		now:  time.Now,
	}
}

// Put stores or replaces the snapshot for snap.SourceID and returns the
// snapshot it replaced, or nil. Callers must not modify snap after calling Put.
func (s *Store) Put(snap *types.LineSnapshot) *types.LineSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	var prev *types.LineSnapshot
	if e, ok := s.data[snap.SourceID]; ok {
		prev = e.Snapshot
	}
	s.data[snap.SourceID] = &Entry{
		Snapshot:  snap,
		UpdatedAt: s.now(),
	}
	return prev
}

// Get returns the live Entry for the given source ID. Entries past the TTL
// that have not yet been evicted are reported as missing.
func (s *Store) Get(sourceID string) (*Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.data[sourceID]
	if !ok || !s.live(e, s.now()) {
		return nil, false
	}
	return e, true
}

// List returns all live entries ordered by source ID.
func (s *Store) List() []*Entry {
	s.mu.RLock()
	now := s.now()
	out := make([]*Entry, 0, len(s.data))
	for _, e := range s.data {
		if s.live(e, now) {
			out = append(out, e)
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].Snapshot.SourceID < out[j].Snapshot.SourceID
	})
	return out
}

// Count returns the total number of entries currently held, including stale ones.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// Evict removes entries whose UpdatedAt is older than now minus TTL.
// It returns the number of entries removed.
func (s *Store) Evict(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, e := range s.data {
		if !s.live(e, now) {
			delete(s.data, id)
			removed++
		}
	}
	return removed
}

// live reports whether e was updated within the TTL. A zero TTL keeps
// entries forever.
func (s *Store) live(e *Entry, now time.Time) bool {
	if s.ttl <= 0 {
		return true
	}
	return e.UpdatedAt.After(now.Add(-s.ttl))
}

// Run starts the background TTL eviction loop. It ticks at half the TTL interval
// (minimum 1 second) so entries are evicted promptly. Run blocks until ctx is
// cancelled.
func (s *Store) Run(ctx context.Context) {
	if s.ttl <= 0 {
		<-ctx.Done()
		return
	}
	interval := s.ttl / 2
	if interval < time.Second {
		interval = time.Second
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			if n := s.Evict(now); n > 0 {
				slog.Debug("store: evicted stale snapshots", "count", n)
			}
		}
	}
}
