package cart

import (
	"context"
	"sync"

	"storefront/pkg/logger"
)

// SlotName returns the storage slot holding the cart of a session.
func SlotName(sessionID string) string {
	return "cart:" + sessionID
}

// Sessions opens the carts of storefront sessions. Work on the same session
// is serialized within the process; across processes the last write to a
// slot wins.
type Sessions struct {
	storage Storage
	log     *logger.Logger

	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

// NewSessions returns a registry reading and writing carts through storage.
func NewSessions(storage Storage, log *logger.Logger) *Sessions {
	return &Sessions{storage: storage, log: log, locks: make(map[string]*sessionLock)}
}

// With opens the cart of sessionID from storage and runs fn with it while
// holding the session's lock.
func (s *Sessions) With(ctx context.Context, sessionID string, fn func(*Store) error) error {
	unlock := s.lock(sessionID)
	defer unlock()

	return fn(Open(ctx, s.storage, SlotName(sessionID), s.log))
}

func (s *Sessions) lock(id string) func() {
	s.mu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &sessionLock{}
		s.locks[id] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, id)
		}
		s.mu.Unlock()
	}
}
