package registry

import (
	"sync"
	"time"

	"github.com/gudapepratik/tictactoe-online/internal/apperror"
	"github.com/gudapepratik/tictactoe-online/internal/entity"
)

// MatchRegistry is the sole owner of live match records. It guards its maps
// with its own mutex; match contents are serialized separately by the
// per-match lock so unrelated matches never contend with each other.
type MatchRegistry struct {
	mu      sync.RWMutex
	matches map[string]*entity.Match

	// byUser maps a username to the match it is bound to, enforcing the
	// one-live-match-per-identity rule atomically with the check.
	byUser map[string]string
}

func NewMatchRegistry() *MatchRegistry {
	return &MatchRegistry{
		matches: make(map[string]*entity.Match),
		byUser:  make(map[string]string),
	}
}

func (that *MatchRegistry) Add(match *entity.Match) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.matches[match.ID] = match
}

func (that *MatchRegistry) Get(id string) (*entity.Match, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	match, ok := that.matches[id]
	if !ok {
		return nil, apperror.ErrMatchNotFound
	}

	return match, nil
}

// Reserve binds username to matchID unless the identity is already bound to
// a live match. Two racing operations for the same identity resolve to at
// most one winner; the loser gets ErrAlreadyInMatch.
func (that *MatchRegistry) Reserve(username, matchID string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.byUser[username]; ok {
		return apperror.ErrAlreadyInMatch
	}

	that.byUser[username] = matchID

	return nil
}

// Release drops a reservation made by Reserve, for when a later validation
// step rejects the operation.
func (that *MatchRegistry) Release(username string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.byUser, username)
}

// MatchOf returns the ID of the match username is bound to, if any.
func (that *MatchRegistry) MatchOf(username string) (string, bool) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	id, ok := that.byUser[username]

	return id, ok
}

// Remove deletes the match and unbinds every identity reserved for it.
func (that *MatchRegistry) Remove(id string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.remove(id)
}

func (that *MatchRegistry) remove(id string) {
	delete(that.matches, id)

	for username, matchID := range that.byUser {
		if matchID == id {
			delete(that.byUser, username)
		}
	}
}

// EvictStale removes matches that have been idle longer than idleTTL or
// finished longer than finishedLinger, and returns their IDs so dependent
// stores can drop their references too.
func (that *MatchRegistry) EvictStale(idleTTL, finishedLinger time.Duration) []string {
	now := time.Now()

	that.mu.Lock()
	defer that.mu.Unlock()

	var evicted []string

	for id, match := range that.matches {
		match.Lock()
		idle := now.Sub(match.LastTouched())
		finished := match.IsFinished()
		match.Unlock()

		if idle > idleTTL || (finished && idle > finishedLinger) {
			that.remove(id)
			evicted = append(evicted, id)
		}
	}

	return evicted
}

// Len reports the number of live matches.
func (that *MatchRegistry) Len() int {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return len(that.matches)
}
