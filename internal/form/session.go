package form

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// SessionStore keeps one form per browser session in memory.
// Sessions idle for longer than the TTL are dropped.
type SessionStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	newForm  func() *Form
	sessions map[string]*session
	now      func() time.Time
}

type session struct {
	form     *Form
	lastSeen time.Time
}

// NewSessionStore creates a store that builds forms with newForm
func NewSessionStore(ttl time.Duration, newForm func() *Form) *SessionStore {
	return &SessionStore{
		ttl:      ttl,
		newForm:  newForm,
		sessions: make(map[string]*session),
		now:      time.Now,
	}
}

// Get returns the form for id. Unknown, expired or malformed ids get a
// fresh form under a newly issued id.
func (s *SessionStore) Get(id string) (string, *Form) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweepLocked(now)

	if _, err := uuid.Parse(id); err == nil {
		if sess, ok := s.sessions[id]; ok {
			sess.lastSeen = now
			return id, sess.form
		}
	}

	id = uuid.NewString()
	s.sessions[id] = &session{form: s.newForm(), lastSeen: now}
	return id, s.sessions[id].form
}

// Len returns the number of live sessions
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *SessionStore) sweepLocked(now time.Time) {
	if s.ttl <= 0 {
		return
	}
	for id, sess := range s.sessions {
		// A form with a request in flight stays alive until it settles.
		if now.Sub(sess.lastSeen) > s.ttl && !sess.form.View().Loading() {
			delete(s.sessions, id)
		}
	}
}
