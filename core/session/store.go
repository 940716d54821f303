package session

import "sync"

// Store owns the conversation-to-session mapping. Lookups are idempotent:
// a missing session is created in place with StatusUnknown.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewStore returns an empty in-memory session store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]*Session)}
}

// GetOrCreate returns the session for a conversation, creating a fresh one
// on first sight.
func (st *Store) GetOrCreate(sid string) *Session {
	st.mu.RLock()
	s, ok := st.sessions[sid]
	st.mu.RUnlock()
	if ok {
		return s
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	if s, ok = st.sessions[sid]; ok {
		return s
	}
	s = &Session{SID: sid, Status: StatusUnknown}
	st.sessions[sid] = s
	return s
}

// Get returns the session for a conversation if one exists.
func (st *Store) Get(sid string) (*Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[sid]
	return s, ok
}

// Len reports the number of tracked conversations.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
