package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gudapepratik/tictactoe-online/internal/apperror"
)

func newReadyMatch(t *testing.T) *Match {
	t.Helper()

	match := NewMatch("m1", NewPlayer("alice", PlayerX, "cyborg", true))
	require.NoError(t, match.AddPlayer(NewPlayer("bob", PlayerO, "dwarf", false)))

	return match
}

func TestNewMatch(t *testing.T) {
	// Given: alice creates a match as X
	match := NewMatch("m1", NewPlayer("alice", PlayerX, "cyborg", true))

	// Then: the board is empty, it is the creator's turn, and the O slot is open
	assert.Equal(t, NewBoard(), match.Board)
	assert.Equal(t, PlayerX, match.Turn)
	require.NotNil(t, match.PlayerX)
	assert.True(t, match.PlayerX.IsHost)
	assert.Nil(t, match.PlayerO)
	assert.Equal(t, []string{PlayerO}, match.OpenMarks())
	assert.False(t, match.IsFull())
}

func TestMatch_AddPlayer(t *testing.T) {
	t.Run("fills the open slot", func(t *testing.T) {
		match := NewMatch("m1", NewPlayer("alice", PlayerX, "cyborg", true))

		err := match.AddPlayer(NewPlayer("bob", PlayerO, "dwarf", false))

		require.NoError(t, err)
		assert.True(t, match.IsFull())
		assert.False(t, match.PlayerO.IsHost)
	})

	t.Run("rejects a taken slot", func(t *testing.T) {
		match := NewMatch("m1", NewPlayer("alice", PlayerX, "cyborg", true))

		err := match.AddPlayer(NewPlayer("bob", PlayerX, "dwarf", false))

		require.ErrorIs(t, err, apperror.ErrSlotTaken)
		assert.Equal(t, "alice", match.PlayerX.Username)
	})

	t.Run("rejects a duplicate username", func(t *testing.T) {
		match := NewMatch("m1", NewPlayer("alice", PlayerX, "cyborg", true))

		err := match.AddPlayer(NewPlayer("alice", PlayerO, "dwarf", false))

		require.ErrorIs(t, err, apperror.ErrUsernameTaken)
		assert.Nil(t, match.PlayerO)
	})

	t.Run("rejects a duplicate avatar", func(t *testing.T) {
		match := NewMatch("m1", NewPlayer("alice", PlayerX, "cyborg", true))

		err := match.AddPlayer(NewPlayer("bob", PlayerO, "cyborg", false))

		require.ErrorIs(t, err, apperror.ErrAvatarTaken)
	})

	t.Run("rejects a full match", func(t *testing.T) {
		match := newReadyMatch(t)

		err := match.AddPlayer(NewPlayer("carol", PlayerO, "prime", false))

		require.ErrorIs(t, err, apperror.ErrMatchFull)
	})
}

func TestMatch_Start(t *testing.T) {
	t.Run("starts with both slots filled", func(t *testing.T) {
		match := newReadyMatch(t)

		err := match.Start(3)

		require.NoError(t, err)
		assert.True(t, match.Started)
		assert.Equal(t, 3, match.TotalRounds)
		assert.Equal(t, 1, match.Round)
	})

	t.Run("rejects a missing opponent", func(t *testing.T) {
		match := NewMatch("m1", NewPlayer("alice", PlayerX, "cyborg", true))

		err := match.Start(3)

		require.ErrorIs(t, err, apperror.ErrOpponentMissing)
	})

	t.Run("rejects a second start", func(t *testing.T) {
		match := newReadyMatch(t)
		require.NoError(t, match.Start(1))

		err := match.Start(1)

		require.ErrorIs(t, err, apperror.ErrMatchStarted)
	})

	t.Run("rejects rounds out of range", func(t *testing.T) {
		match := newReadyMatch(t)

		require.ErrorIs(t, match.Start(0), apperror.ErrRoundsOutOfRange)
		require.ErrorIs(t, match.Start(MaxTotalRounds+1), apperror.ErrRoundsOutOfRange)
		assert.False(t, match.Started)
	})
}

func TestMatch_ApplyMove(t *testing.T) {
	t.Run("alternates the turn on every accepted move", func(t *testing.T) {
		match := newReadyMatch(t)
		require.NoError(t, match.Start(3))

		_, err := match.ApplyMove(PlayerX, 0)
		require.NoError(t, err)
		assert.Equal(t, PlayerO, match.Turn)

		_, err = match.ApplyMove(PlayerO, 4)
		require.NoError(t, err)
		assert.Equal(t, PlayerX, match.Turn)
	})

	t.Run("rejects a move before start", func(t *testing.T) {
		match := newReadyMatch(t)

		_, err := match.ApplyMove(PlayerX, 0)

		require.ErrorIs(t, err, apperror.ErrMatchNotStarted)
		assert.Equal(t, NewBoard(), match.Board)
	})

	t.Run("rejects a move out of turn before checking the cell", func(t *testing.T) {
		match := newReadyMatch(t)
		require.NoError(t, match.Start(1))
		_, err := match.ApplyMove(PlayerX, 0)
		require.NoError(t, err)

		// When: X tries to move again into the occupied cell
		_, err = match.ApplyMove(PlayerX, 0)

		// Then: the turn error wins over the occupancy error
		require.ErrorIs(t, err, apperror.ErrNotYourTurn)
	})

	t.Run("rejects an occupied cell", func(t *testing.T) {
		match := newReadyMatch(t)
		require.NoError(t, match.Start(1))
		_, err := match.ApplyMove(PlayerX, 0)
		require.NoError(t, err)

		_, err = match.ApplyMove(PlayerO, 0)

		require.ErrorIs(t, err, apperror.ErrCellOccupied)
		assert.Equal(t, PlayerX, match.Board[0])
		assert.Equal(t, PlayerO, match.Turn)
	})

	t.Run("round win increments wins, resets board and advances the round", func(t *testing.T) {
		match := newReadyMatch(t)
		require.NoError(t, match.Start(2))

		// When: X completes the middle row while O plays elsewhere
		playMoves(t, match, []move{{PlayerX, 3}, {PlayerO, 0}, {PlayerX, 4}, {PlayerO, 1}})
		result, err := match.ApplyMove(PlayerX, 5)
		require.NoError(t, err)

		// Then: the round is won, the board resets, and play goes on
		assert.Equal(t, PlayerX, result.RoundWinner)
		assert.False(t, result.IsGameOver)
		assert.Equal(t, 1, match.PlayerX.Wins)
		assert.Equal(t, 0, match.PlayerO.Wins)
		assert.Equal(t, 2, match.Round)
		assert.Equal(t, NewBoard(), match.Board)
		assert.Equal(t, PlayerO, match.Turn)
		assert.False(t, match.IsFinished())
	})

	t.Run("final round win settles the match outcome", func(t *testing.T) {
		// Given: a one-round match, as in create -> join -> start(1)
		match := newReadyMatch(t)
		require.NoError(t, match.Start(1))

		// When: alice wins the only round
		playMoves(t, match, []move{{PlayerX, 3}, {PlayerO, 0}, {PlayerX, 4}, {PlayerO, 1}})
		result, err := match.ApplyMove(PlayerX, 5)
		require.NoError(t, err)

		// Then: alice.wins=1 > bob.wins=0, so the outcome is X and the game is over
		assert.Equal(t, PlayerX, result.RoundWinner)
		assert.Equal(t, PlayerX, result.GameWinner)
		assert.True(t, result.IsGameOver)
		assert.Equal(t, PlayerX, match.Winner)
		assert.True(t, match.IsFinished())
	})

	t.Run("full board with no line is a round draw with wins unchanged", func(t *testing.T) {
		match := newReadyMatch(t)
		require.NoError(t, match.Start(1))

		// When: the players fill all nine cells without a line
		playMoves(t, match, []move{
			{PlayerX, 0}, {PlayerO, 4}, {PlayerX, 8}, {PlayerO, 1},
			{PlayerX, 7}, {PlayerO, 6}, {PlayerX, 2}, {PlayerO, 5},
		})
		result, err := match.ApplyMove(PlayerX, 3)
		require.NoError(t, err)

		// Then: the round and the match are drawn, win counts untouched
		assert.Equal(t, WinnerDraw, result.RoundWinner)
		assert.Equal(t, WinnerDraw, result.GameWinner)
		assert.True(t, result.IsGameOver)
		assert.Equal(t, 0, match.PlayerX.Wins)
		assert.Equal(t, 0, match.PlayerO.Wins)
		assert.Equal(t, WinnerDraw, match.Winner)
	})

	t.Run("equal win counts over all rounds is a drawn match", func(t *testing.T) {
		match := newReadyMatch(t)
		require.NoError(t, match.Start(2))

		// Round 1: X wins the middle row.
		playMoves(t, match, []move{{PlayerX, 3}, {PlayerO, 0}, {PlayerX, 4}, {PlayerO, 1}, {PlayerX, 5}})

		// Round 2: O starts and wins the middle row.
		playMoves(t, match, []move{{PlayerO, 3}, {PlayerX, 0}, {PlayerO, 4}, {PlayerX, 1}})
		result, err := match.ApplyMove(PlayerO, 5)
		require.NoError(t, err)

		// Then: 1-1 means the match outcome is a draw
		assert.Equal(t, PlayerO, result.RoundWinner)
		assert.Equal(t, WinnerDraw, result.GameWinner)
		assert.True(t, result.IsGameOver)
		assert.Equal(t, 1, match.PlayerX.Wins)
		assert.Equal(t, 1, match.PlayerO.Wins)
	})

	t.Run("rejects moves after the match is finished", func(t *testing.T) {
		match := newReadyMatch(t)
		require.NoError(t, match.Start(1))
		playMoves(t, match, []move{{PlayerX, 3}, {PlayerO, 0}, {PlayerX, 4}, {PlayerO, 1}, {PlayerX, 5}})
		require.True(t, match.IsFinished())

		_, err := match.ApplyMove(PlayerO, 8)

		require.ErrorIs(t, err, apperror.ErrMatchFinished)
	})
}

func TestMatch_Snapshot(t *testing.T) {
	// Given: a started match
	match := newReadyMatch(t)
	require.NoError(t, match.Start(2))

	// When: a snapshot is taken and the match mutates afterwards
	snapshot := match.Snapshot()
	_, err := match.ApplyMove(PlayerX, 0)
	require.NoError(t, err)
	match.PlayerX.Wins = 5

	// Then: the snapshot holds the state from before the mutation
	assert.Equal(t, EmptyCell, snapshot.Board[0])
	assert.Equal(t, 0, snapshot.PlayerX.Wins)
	assert.Equal(t, PlayerX, snapshot.Turn)
	assert.True(t, snapshot.IsStarted)
}

type move struct {
	mark string
	cell int
}

func playMoves(t *testing.T, match *Match, moves []move) {
	t.Helper()

	for _, m := range moves {
		_, err := match.ApplyMove(m.mark, m.cell)
		require.NoError(t, err)
	}
}
