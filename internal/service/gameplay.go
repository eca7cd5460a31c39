package service

import (
	"context"
	"fmt"
	"time"

	"github.com/gudapepratik/tictactoe-online/internal/apperror"
	"github.com/gudapepratik/tictactoe-online/internal/entity"
	"github.com/gudapepratik/tictactoe-online/internal/registry"
)

// PlayerPresence announces a single player's connectivity change.
type PlayerPresence struct {
	Username string `json:"username"`
	Mark     string `json:"mark"`
}

// MatchStarted announces the host's start of play.
type MatchStarted struct {
	TotalRounds int  `json:"totalRounds"`
	Round       int  `json:"round"`
	IsStarted   bool `json:"isStarted"`
}

// Connect attaches an authenticated identity to its match: marks the player
// connected, records the session used to authorize later moves, and returns
// the full snapshot the client resumes from. The transport is expected to
// subscribe the connection to the match group after this returns, so the
// player-connected event only reaches the rest of the group.
func (that *Coordinator) Connect(matchID, username string) (*entity.MatchSnapshot, error) {
	match, err := that.matches.Get(matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to get match: %w", err)
	}

	match.Lock()
	player := match.PlayerByUsername(username)
	if player == nil {
		match.Unlock()
		return nil, apperror.ErrNotParticipant
	}

	player.Connected = true
	match.Touch()
	snapshot := match.Snapshot()
	mark := player.Mark
	match.Unlock()

	that.sessions.Put(registry.Session{
		Username: username,
		MatchID:  matchID,
		Mark:     mark,
	})

	that.logger.Info("player connected", "matchID", matchID, "username", username)

	that.hub.Broadcast(matchID, EventPlayerConnected, PlayerPresence{
		Username: username,
		Mark:     mark,
	})

	return snapshot, nil
}

// Start begins play. Only the host may start, both slots must be filled,
// and the round count is bounded by entity.MaxTotalRounds.
func (that *Coordinator) Start(matchID, username string, totalRounds int) error {
	match, err := that.matches.Get(matchID)
	if err != nil {
		return fmt.Errorf("failed to get match: %w", err)
	}

	match.Lock()
	player := match.PlayerByUsername(username)
	if player == nil {
		match.Unlock()
		return apperror.ErrNotParticipant
	}

	if !player.IsHost {
		match.Unlock()
		return apperror.ErrNotHost
	}

	err = match.Start(totalRounds)
	rounds := match.TotalRounds
	round := match.Round
	match.Unlock()

	if err != nil {
		return fmt.Errorf("failed to start match: %w", err)
	}

	that.logger.Info("match started", "matchID", matchID, "totalRounds", rounds)

	that.hub.Broadcast(matchID, EventMatchStarted, MatchStarted{
		TotalRounds: rounds,
		Round:       round,
		IsStarted:   true,
	})

	return nil
}

// Move applies one move for the caller. Validation is ordered fail-fast:
// cell range before any lookup, session before turn, turn before occupancy,
// with no state mutated on the unhappy path.
func (that *Coordinator) Move(matchID, username string, cell int) (*entity.MoveResult, error) {
	if cell < 0 || cell >= entity.CellCount {
		return nil, fmt.Errorf("%w: cell %d", apperror.ErrInvalidCell, cell)
	}

	session, err := that.sessions.Get(username)
	if err != nil {
		return nil, fmt.Errorf("failed to authorize move: %w", err)
	}

	if session.MatchID != matchID {
		return nil, apperror.ErrNoActiveSession
	}

	match, err := that.matches.Get(matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to get match: %w", err)
	}

	match.Lock()
	player := match.Player(session.Mark)
	if player == nil || player.Username != username {
		match.Unlock()
		return nil, apperror.ErrNoActiveSession
	}

	if !player.Connected {
		match.Unlock()
		return nil, apperror.ErrPlayerOffline
	}

	result, err := match.ApplyMove(session.Mark, cell)
	match.Unlock()

	if err != nil {
		return nil, fmt.Errorf("failed to apply move: %w", err)
	}

	that.hub.Broadcast(matchID, EventMoveApplied, result)

	return result, nil
}

// Disconnect handles a closed connection as a state transition, never a
// failure: the player goes offline, its session is dropped, and the rest of
// the group is told. Another player's in-flight move is never aborted.
func (that *Coordinator) Disconnect(username string) {
	session, ok := that.sessions.Remove(username)
	if !ok {
		return
	}

	match, err := that.matches.Get(session.MatchID)
	if err != nil {
		return
	}

	match.Lock()
	if player := match.PlayerByUsername(username); player != nil {
		player.Connected = false
	}
	match.Touch()
	match.Unlock()

	that.logger.Info("player disconnected", "matchID", session.MatchID, "username", username)

	that.hub.Broadcast(session.MatchID, EventPlayerOffline, PlayerPresence{
		Username: username,
		Mark:     session.Mark,
	})
}

// RunJanitor sweeps the match registry until ctx is cancelled, evicting
// idle and long-finished matches together with their codes and sessions.
func (that *Coordinator) RunJanitor(ctx context.Context, sweepInterval, idleTTL, finishedLinger time.Duration) {
	log := that.logger.With("method", "RunJanitor")

	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			evicted := that.matches.EvictStale(idleTTL, finishedLinger)
			for _, matchID := range evicted {
				that.codes.DropMatch(matchID)
				that.sessions.DropMatch(matchID)
			}

			if len(evicted) > 0 {
				log.Info("evicted stale matches", "count", len(evicted))
			}
		}
	}
}
