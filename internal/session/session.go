package session

import "sync"

// Session binds a caller-supplied user id to the identity established at
// login. Sessions live only in process memory: a restart logs everyone out.
type Session struct {
	UserID uint   `json:"id"`
	Role   string `json:"role"`
	Email  string `json:"email"`
}

// Store maps user id to the live session. Keyed by user id, so a second
// login from elsewhere silently replaces the first.
type Store struct {
	mu       sync.RWMutex
	sessions map[uint]Session
}

func NewStore() *Store {
	return &Store{sessions: make(map[uint]Session)}
}

func (s *Store) Create(sess Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.UserID] = sess
}

func (s *Store) Get(userID uint) (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[userID]
	return sess, ok
}

func (s *Store) Delete(userID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
