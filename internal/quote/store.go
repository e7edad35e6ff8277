package quote

import (
	"sync"
	"time"
)

// Store keeps drafts keyed by session id. Mutations run under the store
// lock via Update so handlers never touch a draft concurrently.
type Store struct {
	mu     sync.Mutex
	drafts map[string]*Draft
	ttl    time.Duration
}

func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 4 * time.Hour
	}
	return &Store{drafts: map[string]*Draft{}, ttl: ttl}
}

// Update runs fn against the session's draft, creating one on first use.
// Abandoned drafts are swept lazily on access.
func (s *Store) Update(sid string, fn func(*Draft)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweep()
	d, ok := s.drafts[sid]
	if !ok {
		d = newDraft()
		s.drafts[sid] = d
	}
	d.touched = time.Now()
	fn(d)
}

// Snapshot returns a copy of the draft for rendering. The copy shares the
// selection/photo backing arrays; render paths only read them.
func (s *Store) Snapshot(sid string) Draft {
	var out Draft
	s.Update(sid, func(d *Draft) { out = *d })
	return out
}

// Reset discards the session's draft entirely.
func (s *Store) Reset(sid string) {
	s.mu.Lock()
	delete(s.drafts, sid)
	s.mu.Unlock()
}

func (s *Store) sweep() {
	cutoff := time.Now().Add(-s.ttl)
	for sid, d := range s.drafts {
		if d.touched.Before(cutoff) {
			delete(s.drafts, sid)
		}
	}
}
