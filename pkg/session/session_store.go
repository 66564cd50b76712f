package session

import (
	"sync"
	"time"

	"purchases-api/domain"

	"github.com/google/uuid"
)

const DefaultTTL = 30 * time.Minute

type (
	// Session carries the original snapshot an owner is editing against.
	Session struct {
		ID        uuid.UUID
		OwnerID   int64
		Original  []domain.Purchase
		CreatedAt time.Time
		ExpiresAt time.Time
	}

	SessionStore interface {
		Create(ownerID int64, snapshot []domain.Purchase) Session
		Get(id uuid.UUID, ownerID int64) (Session, error)
		Replace(id uuid.UUID, ownerID int64, snapshot []domain.Purchase) (Session, error)
		Delete(id uuid.UUID, ownerID int64) error
	}

	memoryStore struct {
		mu       sync.Mutex
		ttl      time.Duration
		now      func() time.Time
		sessions map[uuid.UUID]*Session
	}
)

func NewSessionStore(ttl time.Duration) SessionStore {
	return newMemoryStore(ttl, time.Now)
}

func newMemoryStore(ttl time.Duration, now func() time.Time) *memoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &memoryStore{
		ttl:      ttl,
		now:      now,
		sessions: make(map[uuid.UUID]*Session),
	}
}

func (s *memoryStore) Create(ownerID int64, snapshot []domain.Purchase) Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweep(now)

	sess := &Session{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Original:  copySnapshot(snapshot),
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	s.sessions[sess.ID] = sess
	return sess.clone()
}

func (s *memoryStore) Get(id uuid.UUID, ownerID int64) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.lookup(id, ownerID)
	if err != nil {
		return Session{}, err
	}
	return sess.clone(), nil
}

// Replace swaps the original snapshot after a successful save.
func (s *memoryStore) Replace(id uuid.UUID, ownerID int64, snapshot []domain.Purchase) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.lookup(id, ownerID)
	if err != nil {
		return Session{}, err
	}
	sess.Original = copySnapshot(snapshot)
	return sess.clone(), nil
}

func (s *memoryStore) Delete(id uuid.UUID, ownerID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.lookup(id, ownerID); err != nil {
		return err
	}
	delete(s.sessions, id)
	return nil
}

// lookup returns a live session and slides its expiry. Callers hold mu.
func (s *memoryStore) lookup(id uuid.UUID, ownerID int64) (*Session, error) {
	now := s.now()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	if !now.Before(sess.ExpiresAt) {
		delete(s.sessions, id)
		return nil, domain.ErrSessionNotFound
	}
	if sess.OwnerID != ownerID {
		return nil, domain.ErrSessionForbidden
	}
	sess.ExpiresAt = now.Add(s.ttl)
	return sess, nil
}

func (s *memoryStore) sweep(now time.Time) {
	for id, sess := range s.sessions {
		if !now.Before(sess.ExpiresAt) {
			delete(s.sessions, id)
		}
	}
}

func (s *Session) clone() Session {
	c := *s
	c.Original = copySnapshot(s.Original)
	return c
}

func copySnapshot(snapshot []domain.Purchase) []domain.Purchase {
	out := make([]domain.Purchase, len(snapshot))
	copy(out, snapshot)
	return out
}
