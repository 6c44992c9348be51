package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/i474232898/tourism-dashboard/internal/tourism"
)

// MemoryStore is a concurrency-safe in-memory session store.
type MemoryStore struct {
	mu sync.RWMutex

	// key: session ID
	data map[string]tourism.Session

	// retention configuration
	maxSessions int           // max number of live sessions
	maxAge      time.Duration // sessions idle longer than this expire

	now func() time.Time
}

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxSessions or maxAge is <= 0, it is treated as unlimited.
func NewMemoryStore(maxSessions int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		data:        make(map[string]tourism.Session),
		maxSessions: maxSessions,
		maxAge:      maxAge,
		now:         time.Now,
	}
}

func (s *MemoryStore) expired(sess tourism.Session) bool {
	return s.maxAge > 0 && sess.UpdatedAt.Before(s.now().Add(-s.maxAge))
}

// Get returns the session with the given ID.
func (s *MemoryStore) Get(_ context.Context, id string) (tourism.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.data[id]
	if !ok || s.expired(sess) {
		return tourism.Session{}, tourism.ErrSessionNotFound
	}
	return cloneSession(sess), nil
}

// Put stores a session and enforces retention.
func (s *MemoryStore) Put(_ context.Context, sess tourism.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[sess.ID] = cloneSession(sess)

	// Enforce retention by age.
	if s.maxAge > 0 {
		for id, existing := range s.data {
			if s.expired(existing) {
				delete(s.data, id)
			}
		}
	}

	// Enforce retention by count, evicting the least recently updated.
	if s.maxSessions > 0 && len(s.data) > s.maxSessions {
		ids := make([]string, 0, len(s.data))
		for id := range s.data {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool {
			return s.data[ids[i]].UpdatedAt.Before(s.data[ids[j]].UpdatedAt)
		})
		for _, id := range ids[:len(ids)-s.maxSessions] {
			delete(s.data, id)
		}
	}
	return nil
}

// Delete removes a session.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[id]; !ok {
		return tourism.ErrSessionNotFound
	}
	delete(s.data, id)
	return nil
}

// Len reports the number of stored sessions, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

func cloneSession(sess tourism.Session) tourism.Session {
	sess.Profile.Interests = append([]string{}, sess.Profile.Interests...)
	return sess
}

var _ tourism.SessionStore = (*MemoryStore)(nil)
