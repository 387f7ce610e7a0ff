package domain

import "sync"

// sessionLocks serializes mutations per (tenant, user) so a hosted deployment
// keeps the same single-writer atomicity the client-local stores had.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{locks: make(map[string]*sync.Mutex)}
}

// acquire locks the session key and returns the unlock func.
func (s *sessionLocks) acquire(tenantID, userID string) func() {
	key := tenantID + ":" + userID

	s.mu.Lock()
	lock, ok := s.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[key] = lock
	}
	s.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
