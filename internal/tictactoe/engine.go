// Package tictactoe holds the 4x4 game engine: move validation, turn
// management, win and draw detection and reset.
//
// The engine does not track terminal states. Won and Drawn are derived from
// the board on demand, and AttemptMove keeps accepting moves into empty cells
// after either condition holds. Callers that want to stop play after a win
// must check IsWon before IsDraw (or use Evaluate) and stop issuing moves.
//
// An Engine is not safe for concurrent use.
package tictactoe

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe4x4-backend/internal/apperror"
	"github.com/rocketscienceinc/tictactoe4x4-backend/internal/entity"
)

// lines lists every winning line in evaluation order: rows, columns,
// main diagonal, anti-diagonal.
var lines = buildLines()

func buildLines() [][entity.BoardSize]entity.Position {
	const n = entity.BoardSize

	out := make([][n]entity.Position, 0, 2*n+2)

	for r := 0; r < n; r++ {
		var line [n]entity.Position
		for c := 0; c < n; c++ {
			line[c] = entity.Position{Row: r, Col: c}
		}
		out = append(out, line)
	}

	for c := 0; c < n; c++ {
		var line [n]entity.Position
		for r := 0; r < n; r++ {
			line[r] = entity.Position{Row: r, Col: c}
		}
		out = append(out, line)
	}

	var main, anti [n]entity.Position
	for i := 0; i < n; i++ {
		main[i] = entity.Position{Row: i, Col: i}
		anti[i] = entity.Position{Row: i, Col: n - 1 - i}
	}

	return append(out, main, anti)
}

type Engine struct {
	board entity.Board
	turn  entity.Cell
}

// NewEngine returns an engine with an empty board and PlayerOne to move.
func NewEngine() *Engine {
	return &Engine{turn: entity.PlayerOne}
}

// Restore rebuilds an engine from a stored board and turn.
func Restore(board entity.Board, turn entity.Cell) (*Engine, error) {
	if !turn.IsPlayer() {
		return nil, fmt.Errorf("%w: turn %d", apperror.ErrInvalidSnapshot, turn)
	}

	for r, row := range board {
		for c, cell := range row {
			if cell != entity.Empty && !cell.IsPlayer() {
				return nil, fmt.Errorf("%w: cell (%d, %d) holds %d", apperror.ErrInvalidSnapshot, r, c, cell)
			}
		}
	}

	// PlayerOne always moves first, so it leads by one mark exactly when PlayerTwo is to move.
	lead := board.Count(entity.PlayerOne) - board.Count(entity.PlayerTwo)
	if (turn == entity.PlayerOne && lead != 0) || (turn == entity.PlayerTwo && lead != 1) {
		return nil, fmt.Errorf("%w: %s to move with mark lead %d", apperror.ErrInvalidSnapshot, turn, lead)
	}

	return &Engine{board: board, turn: turn}, nil
}

// AttemptMove places the current player's mark at (row, col) and passes the turn.
// It returns false without changing anything when the cell is occupied.
func (that *Engine) AttemptMove(row, col int) (bool, error) {
	if !entity.InBounds(row, col) {
		return false, fmt.Errorf("%w: row %d col %d", apperror.ErrInvalidCell, row, col)
	}

	if that.board[row][col] != entity.Empty {
		return false, nil
	}

	that.board[row][col] = that.turn
	that.turn = that.turn.Opponent()

	return true, nil
}

func (that *Engine) CellAt(row, col int) (entity.Cell, error) {
	if !entity.InBounds(row, col) {
		return entity.Empty, fmt.Errorf("%w: row %d col %d", apperror.ErrInvalidCell, row, col)
	}

	return that.board[row][col], nil
}

func (that *Engine) IsWon() bool {
	_, ok := that.winningLine()
	return ok
}

// IsDraw reports whether every cell is occupied. It does not look for a win:
// a full board with a winning line is reported as a draw too.
func (that *Engine) IsDraw() bool {
	return that.board.Count(entity.Empty) == 0
}

// Evaluate combines IsWon and IsDraw, checking the win first.
func (that *Engine) Evaluate() entity.Outcome {
	if idx, ok := that.winningLine(); ok {
		line := lines[idx]
		return entity.Outcome{
			Status: entity.StatusWon,
			Winner: that.board[line[0].Row][line[0].Col],
			Line:   line[:],
		}
	}

	if that.IsDraw() {
		return entity.Outcome{Status: entity.StatusDrawn}
	}

	return entity.Outcome{Status: entity.StatusInProgress}
}

func (that *Engine) Reset() {
	that.board = entity.Board{}
	that.turn = entity.PlayerOne
}

func (that *Engine) Turn() entity.Cell {
	return that.turn
}

func (that *Engine) Moves() int {
	return entity.BoardSize*entity.BoardSize - that.board.Count(entity.Empty)
}

// Board returns a copy of the board.
func (that *Engine) Board() entity.Board {
	return that.board
}

// winningLine returns the index in lines of the first line holding a full run.
func (that *Engine) winningLine() (int, bool) {
	for i := range lines {
		if that.hasRun(lines[i]) {
			return i, true
		}
	}

	return 0, false
}

// hasRun scans a line with a running counter that restarts at 1 whenever the
// cell differs from the running mark or the running mark is Empty.
func (that *Engine) hasRun(line [entity.BoardSize]entity.Position) bool {
	count := 0
	mark := that.board[line[0].Row][line[0].Col]

	for _, p := range line {
		cell := that.board[p.Row][p.Col]
		if cell == mark && mark != entity.Empty {
			count++
		} else {
			count = 1
			mark = cell
		}

		if count == entity.BoardSize {
			return true
		}
	}

	return false
}
