package entity

import (
	"fmt"
	"sync"
	"time"

	"github.com/gudapepratik/tictactoe-online/internal/apperror"
)

// MaxTotalRounds bounds the rounds a host may configure for one match.
const MaxTotalRounds = 10

// Match is the authoritative record of one play session. All mutation must
// happen between Lock and Unlock so that check-then-act sequences stay
// atomic per match while unrelated matches proceed in parallel.
type Match struct {
	mu sync.Mutex

	ID          string
	Board       Board
	Turn        string
	PlayerX     *Player
	PlayerO     *Player
	TotalRounds int
	Round       int
	Started     bool
	Winner      string
	CreatedAt   time.Time

	touched time.Time
}

func NewMatch(id string, host *Player) *Match {
	now := time.Now()

	match := &Match{
		ID:        id,
		Board:     NewBoard(),
		Turn:      host.Mark,
		CreatedAt: now,
		touched:   now,
	}
	match.setPlayer(host)

	return match
}

func (that *Match) Lock()   { that.mu.Lock() }
func (that *Match) Unlock() { that.mu.Unlock() }

// Touch records activity for the idle-eviction janitor.
func (that *Match) Touch() {
	that.touched = time.Now()
}

func (that *Match) LastTouched() time.Time {
	return that.touched
}

// Player returns the occupant of the given symbol slot, nil when open.
func (that *Match) Player(mark string) *Player {
	if mark == PlayerX {
		return that.PlayerX
	}

	return that.PlayerO
}

func (that *Match) setPlayer(player *Player) {
	if player.Mark == PlayerX {
		that.PlayerX = player
		return
	}

	that.PlayerO = player
}

func (that *Match) PlayerByUsername(username string) *Player {
	if that.PlayerX != nil && that.PlayerX.Username == username {
		return that.PlayerX
	}

	if that.PlayerO != nil && that.PlayerO.Username == username {
		return that.PlayerO
	}

	return nil
}

func (that *Match) IsFull() bool {
	return that.PlayerX != nil && that.PlayerO != nil
}

func (that *Match) IsFinished() bool {
	return that.Winner != ""
}

// OpenMarks lists the symbol slots that are still unfilled.
func (that *Match) OpenMarks() []string {
	var marks []string

	if that.PlayerX == nil {
		marks = append(marks, PlayerX)
	}

	if that.PlayerO == nil {
		marks = append(marks, PlayerO)
	}

	return marks
}

// AvailableAvatars lists the avatars no current player has picked.
func (that *Match) AvailableAvatars() []string {
	var avatars []string

	for _, avatar := range Avatars {
		taken := (that.PlayerX != nil && that.PlayerX.Avatar == avatar) ||
			(that.PlayerO != nil && that.PlayerO.Avatar == avatar)
		if !taken {
			avatars = append(avatars, avatar)
		}
	}

	return avatars
}

// AddPlayer fills an open slot with a non-host player.
func (that *Match) AddPlayer(player *Player) error {
	if that.IsFull() {
		return apperror.ErrMatchFull
	}

	if that.Player(player.Mark) != nil {
		return apperror.ErrSlotTaken
	}

	if other := that.Player(OppositeMark(player.Mark)); other != nil {
		if other.Username == player.Username {
			return apperror.ErrUsernameTaken
		}

		if other.Avatar == player.Avatar {
			return apperror.ErrAvatarTaken
		}
	}

	that.setPlayer(player)
	that.Touch()

	return nil
}

// Start moves the match from ready to in progress.
func (that *Match) Start(totalRounds int) error {
	if that.Started {
		return apperror.ErrMatchStarted
	}

	if !that.IsFull() {
		return apperror.ErrOpponentMissing
	}

	if totalRounds < 1 || totalRounds > MaxTotalRounds {
		return fmt.Errorf("%w: %d", apperror.ErrRoundsOutOfRange, totalRounds)
	}

	that.TotalRounds = totalRounds
	that.Round = 1
	that.Started = true
	that.Touch()

	return nil
}

// MoveResult describes the state change produced by one accepted move.
type MoveResult struct {
	Cell        int    `json:"cell"`
	Mark        string `json:"mark"`
	Round       int    `json:"round"`
	RoundWinner string `json:"roundWinner,omitempty"`
	GameWinner  string `json:"gameWinner,omitempty"`
	IsGameOver  bool   `json:"isGameOver"`
}

// ApplyMove validates and applies one move for mark. Validation fails fast
// and mutates nothing on the unhappy path: turn is checked before occupancy
// so the most actionable error is reported first.
func (that *Match) ApplyMove(mark string, cell int) (*MoveResult, error) {
	if that.IsFinished() {
		return nil, apperror.ErrMatchFinished
	}

	if !that.Started {
		return nil, apperror.ErrMatchNotStarted
	}

	if that.Turn != mark {
		return nil, apperror.ErrNotYourTurn
	}

	if err := that.Board.Place(cell, mark); err != nil {
		return nil, err
	}

	result := &MoveResult{
		Cell:  cell,
		Mark:  mark,
		Round: that.Round,
	}

	switch that.Board.Evaluate(cell, mark) {
	case OutcomeWin:
		that.Player(mark).Wins++
		result.RoundWinner = mark
		that.concludeRound(result)
	case OutcomeDraw:
		result.RoundWinner = WinnerDraw
		that.concludeRound(result)
	case OutcomeContinue:
	}

	// The turn alternates on every accepted move, including the one that
	// concludes a round.
	that.Turn = OppositeMark(mark)
	that.Touch()

	return result, nil
}

// concludeRound resets the board and either advances the round counter or,
// on the final round, settles the match outcome by strict win-count
// comparison with equal counts meaning a draw.
func (that *Match) concludeRound(result *MoveResult) {
	that.Board.Reset()

	if that.Round < that.TotalRounds {
		that.Round++
		return
	}

	switch {
	case that.PlayerX.Wins > that.PlayerO.Wins:
		that.Winner = PlayerX
	case that.PlayerO.Wins > that.PlayerX.Wins:
		that.Winner = PlayerO
	default:
		that.Winner = WinnerDraw
	}

	result.GameWinner = that.Winner
	result.IsGameOver = true
}

// MatchSnapshot is the wire-safe copy of a match handed to clients.
type MatchSnapshot struct {
	ID          string    `json:"id"`
	Board       Board     `json:"board"`
	Turn        string    `json:"turn"`
	PlayerX     *Player   `json:"playerX,omitempty"`
	PlayerO     *Player   `json:"playerO,omitempty"`
	TotalRounds int       `json:"totalRounds"`
	Round       int       `json:"round"`
	IsStarted   bool      `json:"isStarted"`
	Winner      string    `json:"winner,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Snapshot copies the current state so it can be marshaled after the match
// lock is released.
func (that *Match) Snapshot() *MatchSnapshot {
	snapshot := &MatchSnapshot{
		ID:          that.ID,
		Board:       that.Board,
		Turn:        that.Turn,
		TotalRounds: that.TotalRounds,
		Round:       that.Round,
		IsStarted:   that.Started,
		Winner:      that.Winner,
		CreatedAt:   that.CreatedAt,
	}

	if that.PlayerX != nil {
		playerX := *that.PlayerX
		snapshot.PlayerX = &playerX
	}

	if that.PlayerO != nil {
		playerO := *that.PlayerO
		snapshot.PlayerO = &playerO
	}

	return snapshot
}
