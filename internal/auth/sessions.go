package auth

import (
	"time"

	"github.com/google/uuid"

	"painel/internal/cache"
	"painel/internal/log"
)

// Session is an authenticated browser session.
type Session struct {
	ID        string
	Username  string
	CreatedAt time.Time
}

// Sessions keeps a bounded number of sessions with sliding expiry. When the
// bound is reached the least recently used session is dropped.
type Sessions struct {
	logger *log.Logger
	store  *cache.LRUCache[Session]
	now    func() time.Time
}

// NewSessions creates a session registry holding at most maxSessions sessions, each
// expiring ttl after its last use.
func NewSessions(ttl time.Duration, maxSessions int, logger *log.Logger) *Sessions {
	s := &Sessions{
		logger: logger.WithComponent(log.ComponentAuth),
		store:  cache.NewLRUCache[Session](maxSessions, ttl),
		now:    time.Now,
	}
	s.store.OnEvict(func(id string, sess Session) {
		s.logger.Info("Session ended", log.FieldUser, sess.Username, "reason", "evicted_or_expired")
	})
	return s
}

// SetClock replaces the time source. Meant for tests.
func (s *Sessions) SetClock(now func() time.Time) {
	s.now = now
	s.store.SetClock(now)
}

// Create starts a session for username.
func (s *Sessions) Create(username string) Session {
	sess := Session{
		ID:        uuid.NewString(),
		Username:  username,
		CreatedAt: s.now(),
	}
	s.store.Set(sess.ID, sess)
	s.logger.Info("Session created", log.FieldOperation, log.OpLogin, log.FieldUser, username)
	return sess
}

// Get returns the live session with id and extends its expiry.
func (s *Sessions) Get(id string) (Session, bool) {
	if id == "" || !s.store.Touch(id) {
		return Session{}, false
	}
	return s.store.Get(id)
}

// Delete ends the session with id.
func (s *Sessions) Delete(id string) {
	s.store.Delete(id)
}

// Active returns the number of tracked sessions, expired ones included until swept.
func (s *Sessions) Active() int {
	return s.store.Size()
}

// Cache exposes the backing cache so it can be registered for periodic sweeps.
func (s *Sessions) Cache() cache.Cleaner {
	return s.store
}
