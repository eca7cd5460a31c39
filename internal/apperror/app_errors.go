package apperror

import "errors"

var (
	ErrMatchNotFound   = errors.New("match not found")
	ErrMatchFull       = errors.New("match already has two players")
	ErrMatchStarted    = errors.New("match is already started")
	ErrMatchNotStarted = errors.New("match is not started")
	ErrMatchFinished   = errors.New("match is already finished")

	ErrCodeNotFound = errors.New("join code not found")
	ErrCodeClaimed  = errors.New("join code is locked by another player")

	ErrAlreadyInMatch = errors.New("player is already in a match")
	ErrSlotTaken      = errors.New("symbol is already taken")
	ErrUsernameTaken  = errors.New("username is already taken in this match")
	ErrAvatarTaken    = errors.New("avatar is already taken in this match")
	ErrInvalidMark    = errors.New("invalid player symbol")
	ErrInvalidAvatar  = errors.New("invalid avatar")

	ErrNotParticipant   = errors.New("player is not part of this match")
	ErrNotHost          = errors.New("only the host can start the match")
	ErrOpponentMissing  = errors.New("opponent has not joined yet")
	ErrRoundsOutOfRange = errors.New("total rounds is out of range")
	ErrNoActiveSession  = errors.New("no active session for this match")
	ErrPlayerOffline    = errors.New("player is not connected")
	ErrNotYourTurn      = errors.New("it's not your turn")
	ErrCellOccupied     = errors.New("cell is already occupied")
	ErrInvalidCell      = errors.New("invalid cell index")
	ErrNotAuthenticated = errors.New("connection is not authenticated")
)
