package service

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"clipz-ai/internal/types"
)

// SessionStore holds generated clip sessions in memory, keyed by token.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*types.ClipSession
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*types.ClipSession)}
}

func newSessionToken() string {
	return uuid.New().String()
}

func (s *SessionStore) Put(session *types.ClipSession) {
	if session.ClipFiles == nil {
		session.ClipFiles = make(map[int]string)
	}
	s.mu.Lock()
	s.sessions[session.Token] = session
	s.mu.Unlock()
}

// Get returns a copy of the session so callers cannot race on ClipFiles.
func (s *SessionStore) Get(token string) (types.ClipSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[token]
	if !ok {
		return types.ClipSession{}, false
	}
	out := *session
	out.ClipFiles = make(map[int]string, len(session.ClipFiles))
	for id, path := range session.ClipFiles {
		out.ClipFiles[id] = path
	}
	return out, true
}

func (s *SessionStore) SetClipFile(token string, clipID int, path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if session, ok := s.sessions[token]; ok {
		session.ClipFiles[clipID] = path
	}
}

func (s *SessionStore) Delete(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}

func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// PurgeExpired removes sessions created before now-ttl and returns them.
func (s *SessionStore) PurgeExpired(now time.Time, ttl time.Duration) []types.ClipSession {
	cutoff := now.Add(-ttl)
	s.mu.Lock()
	defer s.mu.Unlock()

	var purged []types.ClipSession
	for token, session := range s.sessions {
		if session.CreatedAt.Before(cutoff) {
			purged = append(purged, *session)
			delete(s.sessions, token)
		}
	}
	return purged
}
