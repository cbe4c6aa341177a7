package pipeline

import (
	"log/slog"
	"os"
	"sync"
	"time"
)

// SessionStore is a thread-safe in-memory session registry with TTL
// eviction. Evicted sessions lose their work directory.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	log      *slog.Logger
}

func NewSessionStore(ttl time.Duration, log *slog.Logger) *SessionStore {
	if log == nil {
		log = slog.Default()
	}
	return &SessionStore{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		log:      log,
	}
}

func (s *SessionStore) Put(sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess
}

func (s *SessionStore) Get(id string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[id]
}

// Len returns the number of live sessions.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Delete drops a session and removes its work directory. It reports
// whether the session existed.
func (s *SessionStore) Delete(id string) bool {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if ok {
		s.removeDir(sess)
	}
	return ok
}

// Cleanup removes expired sessions. A session that is generating is
// never expired.
func (s *SessionStore) Cleanup() int {
	now := time.Now()
	var expired []*Session

	s.mu.Lock()
	for id, sess := range s.sessions {
		if sess.Status() == StatusGenerating {
			continue
		}
		if now.Sub(sess.lastTouched()) > s.ttl {
			delete(s.sessions, id)
			expired = append(expired, sess)
		}
	}
	s.mu.Unlock()

	for _, sess := range expired {
		s.removeDir(sess)
		s.log.Info("session expired", "session_id", sess.ID)
	}
	return len(expired)
}

func (s *SessionStore) removeDir(sess *Session) {
	if sess.Dir == "" {
		return
	}
	if err := os.RemoveAll(sess.Dir); err != nil {
		s.log.Warn("remove session dir failed", "session_id", sess.ID, "error", err)
	}
}
