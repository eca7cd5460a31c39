package entity

import (
	"fmt"

	"github.com/gudapepratik/tictactoe-online/internal/apperror"
)

const (
	BoardSize = 3
	CellCount = BoardSize * BoardSize

	EmptyCell = ""
)

// Outcome is the result of evaluating a board after a move.
type Outcome string

const (
	OutcomeContinue Outcome = "continue"
	OutcomeWin      Outcome = "win"
	OutcomeDraw     Outcome = "draw"
)

// Board is a flat 3x3 grid. Cell i maps to row i/3, column i%3.
type Board [CellCount]string

func NewBoard() Board {
	return Board{}
}

// Reset clears the board in place. Any win information must already have
// been consumed by the caller.
func (that *Board) Reset() {
	for i := range that {
		that[i] = EmptyCell
	}
}

// Place writes mark into cell, rejecting out-of-range and occupied cells.
func (that *Board) Place(cell int, mark string) error {
	if cell < 0 || cell >= CellCount {
		return fmt.Errorf("%w: cell %d", apperror.ErrInvalidCell, cell)
	}

	if that[cell] != EmptyCell {
		return apperror.ErrCellOccupied
	}

	that[cell] = mark

	return nil
}

// Evaluate reports the round outcome after mark was placed at cell. A line
// can only newly complete through the last placed cell, so only that cell's
// row, column and (when it lies on one) diagonals are checked. Win is
// checked before draw: a move that completes a line while filling the last
// cell is a win.
func (that *Board) Evaluate(cell int, mark string) Outcome {
	row, col := cell/BoardSize, cell%BoardSize

	if that.lineComplete(mark, row*BoardSize, 1) { // row
		return OutcomeWin
	}

	if that.lineComplete(mark, col, BoardSize) { // column
		return OutcomeWin
	}

	if row == col && that.lineComplete(mark, 0, BoardSize+1) { // main diagonal
		return OutcomeWin
	}

	if row+col == BoardSize-1 && that.lineComplete(mark, BoardSize-1, BoardSize-1) { // anti diagonal
		return OutcomeWin
	}

	if that.isFull() {
		return OutcomeDraw
	}

	return OutcomeContinue
}

func (that *Board) lineComplete(mark string, start, step int) bool {
	for i := 0; i < BoardSize; i++ {
		if that[start+i*step] != mark {
			return false
		}
	}

	return true
}

func (that *Board) isFull() bool {
	for _, cell := range that {
		if cell == EmptyCell {
			return false
		}
	}

	return true
}
