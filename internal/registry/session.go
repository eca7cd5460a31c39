package registry

import (
	"sync"

	"github.com/gudapepratik/tictactoe-online/internal/apperror"
)

// Session ties an authenticated identity to the match and symbol it is
// currently connected as. It exists only while the connection is live, so
// moves can be authorized without trusting client-supplied identity.
type Session struct {
	Username string
	MatchID  string
	Mark     string
}

// SessionRegistry tracks live player sessions, keyed by username.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[string]Session),
	}
}

func (that *SessionRegistry) Put(session Session) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.sessions[session.Username] = session
}

func (that *SessionRegistry) Get(username string) (Session, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	session, ok := that.sessions[username]
	if !ok {
		return Session{}, apperror.ErrNoActiveSession
	}

	return session, nil
}

// Remove drops the session and reports whether one existed.
func (that *SessionRegistry) Remove(username string) (Session, bool) {
	that.mu.Lock()
	defer that.mu.Unlock()

	session, ok := that.sessions[username]
	if ok {
		delete(that.sessions, username)
	}

	return session, ok
}

// DropMatch removes every session attached to matchID, for janitor eviction.
func (that *SessionRegistry) DropMatch(matchID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	for username, session := range that.sessions {
		if session.MatchID == matchID {
			delete(that.sessions, username)
		}
	}
}
