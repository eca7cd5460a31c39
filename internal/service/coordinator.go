package service

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/gudapepratik/tictactoe-online/internal/apperror"
	"github.com/gudapepratik/tictactoe-online/internal/entity"
	"github.com/gudapepratik/tictactoe-online/internal/registry"
)

// Broadcast event names, one per state transition the clients render.
const (
	EventPlayersUpdated  = "players-updated"
	EventPlayerConnected = "player-connected"
	EventPlayerOffline   = "player-offline"
	EventMatchStarted    = "match-started"
	EventMoveApplied     = "move-applied"
)

// broadcaster fans an event out to every connection subscribed to a match.
// Delivery guarantees belong to the transport, not the coordinator.
type broadcaster interface {
	Broadcast(matchID, event string, payload any)
}

// Coordinator combines the three stores under one consistent protocol: it
// is the only component that touches more than one of them per operation.
type Coordinator struct {
	logger *slog.Logger

	matches  *registry.MatchRegistry
	codes    *registry.CodeRegistry
	sessions *registry.SessionRegistry
	hub      broadcaster

	frontendURL string
}

func NewCoordinator(
	logger *slog.Logger,
	matches *registry.MatchRegistry,
	codes *registry.CodeRegistry,
	sessions *registry.SessionRegistry,
	hub broadcaster,
	frontendURL string,
) *Coordinator {
	return &Coordinator{
		logger:      logger.With("component", "coordinator"),
		matches:     matches,
		codes:       codes,
		sessions:    sessions,
		hub:         hub,
		frontendURL: frontendURL,
	}
}

type CreateResult struct {
	MatchID  string `json:"matchId"`
	JoinCode string `json:"joinCode"`
	JoinLink string `json:"joinLink"`
}

// CreateMatch opens a new forming match with the caller as host and issues
// its join code.
func (that *Coordinator) CreateMatch(username, mark, avatar string) (*CreateResult, error) {
	if !entity.IsValidMark(mark) {
		return nil, fmt.Errorf("%w: %q", apperror.ErrInvalidMark, mark)
	}

	if !entity.IsValidAvatar(avatar) {
		return nil, fmt.Errorf("%w: %q", apperror.ErrInvalidAvatar, avatar)
	}

	matchID := uuid.NewString()

	if err := that.matches.Reserve(username, matchID); err != nil {
		return nil, fmt.Errorf("failed to reserve identity: %w", err)
	}

	match := entity.NewMatch(matchID, entity.NewPlayer(username, mark, avatar, true))
	that.matches.Add(match)

	code, err := that.codes.Create(matchID)
	if err != nil {
		that.matches.Remove(matchID)
		return nil, fmt.Errorf("failed to create join code: %w", err)
	}

	that.logger.Info("match created", "matchID", matchID, "host", username)

	return &CreateResult{
		MatchID:  matchID,
		JoinCode: code,
		JoinLink: fmt.Sprintf("%s/private?join=%s", that.frontendURL, code),
	}, nil
}

type CheckResult struct {
	MatchID          string    `json:"matchId"`
	AvailableMarks   []string  `json:"availableMarks"`
	AvailableAvatars []string  `json:"availableAvatars"`
	ClaimExpiry      time.Time `json:"claimExpiry"`
}

// CheckCode resolves a join code for claimant and grants it the exclusive
// claim, returning the still-open slots so the client can present only
// valid choices. The claim is taken before the match is inspected so that
// two racing checkers serialize on the lease rather than on luck.
func (that *Coordinator) CheckCode(code, claimant string) (*CheckResult, error) {
	matchID, expiry, err := that.codes.Claim(code, claimant)
	if err != nil {
		return nil, fmt.Errorf("failed to claim code: %w", err)
	}

	match, err := that.matches.Get(matchID)
	if err != nil {
		// The match was evicted underneath its code; the code is dead too.
		that.codes.Consume(code)
		return nil, fmt.Errorf("failed to resolve match for code: %w", err)
	}

	match.Lock()
	full := match.IsFull()
	marks := match.OpenMarks()
	avatars := match.AvailableAvatars()
	match.Unlock()

	if full {
		that.codes.ReleaseClaim(code, claimant)
		return nil, apperror.ErrMatchFull
	}

	return &CheckResult{
		MatchID:          matchID,
		AvailableMarks:   marks,
		AvailableAvatars: avatars,
		ClaimExpiry:      expiry,
	}, nil
}

// JoinMatch fills an open slot with a new non-host player and consumes the
// join code. A live claim held by a different identity blocks the join
// until the claim expires.
func (that *Coordinator) JoinMatch(username, code, matchID, mark, avatar string) error {
	if !entity.IsValidMark(mark) {
		return fmt.Errorf("%w: %q", apperror.ErrInvalidMark, mark)
	}

	if !entity.IsValidAvatar(avatar) {
		return fmt.Errorf("%w: %q", apperror.ErrInvalidAvatar, avatar)
	}

	resolvedID, err := that.codes.Resolve(code)
	if err != nil {
		return fmt.Errorf("failed to resolve code: %w", err)
	}

	if resolvedID != matchID {
		return apperror.ErrCodeNotFound
	}

	if holder, live := that.codes.Holder(code); live && holder != username {
		return apperror.ErrCodeClaimed
	}

	match, err := that.matches.Get(matchID)
	if err != nil {
		return fmt.Errorf("failed to get match: %w", err)
	}

	if err = that.matches.Reserve(username, matchID); err != nil {
		return fmt.Errorf("failed to reserve identity: %w", err)
	}

	match.Lock()
	err = match.AddPlayer(entity.NewPlayer(username, mark, avatar, false))
	snapshot := match.Snapshot()
	match.Unlock()

	if err != nil {
		that.matches.Release(username)
		return fmt.Errorf("failed to add player: %w", err)
	}

	that.codes.Consume(code)

	that.logger.Info("player joined match", "matchID", matchID, "username", username, "mark", mark)

	that.hub.Broadcast(matchID, EventPlayersUpdated, PlayersUpdate{
		PlayerX: snapshot.PlayerX,
		PlayerO: snapshot.PlayerO,
	})

	return nil
}

// PlayersUpdate carries both symbol slots after a roster change.
type PlayersUpdate struct {
	PlayerX *entity.Player `json:"playerX,omitempty"`
	PlayerO *entity.Player `json:"playerO,omitempty"`
}
