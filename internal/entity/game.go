package entity

import (
	"errors"
	"fmt"
	"strings"
)

// BoardSize is both the side of the grid and the number of marks in a winning line.
const BoardSize = 4

const (
	StatusInProgress = "in_progress"
	StatusWon        = "won"
	StatusDrawn      = "drawn"
)

const (
	markEmpty     = ""
	markPlayerOne = "X"
	markPlayerTwo = "O"
)

var ErrUnknownMark = errors.New("unknown cell mark")

// Cell is the occupant of a single board square.
type Cell uint8

const (
	Empty Cell = iota
	PlayerOne
	PlayerTwo
)

// Opponent returns the other player. Empty has no opponent and is returned unchanged.
func (that Cell) Opponent() Cell {
	switch that {
	case PlayerOne:
		return PlayerTwo
	case PlayerTwo:
		return PlayerOne
	default:
		return Empty
	}
}

func (that Cell) IsPlayer() bool {
	return that == PlayerOne || that == PlayerTwo
}

func (that Cell) String() string {
	switch that {
	case PlayerOne:
		return markPlayerOne
	case PlayerTwo:
		return markPlayerTwo
	default:
		return "."
	}
}

func (that Cell) MarshalText() ([]byte, error) {
	switch that {
	case Empty:
		return []byte(markEmpty), nil
	case PlayerOne:
		return []byte(markPlayerOne), nil
	case PlayerTwo:
		return []byte(markPlayerTwo), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownMark, that)
	}
}

func (that *Cell) UnmarshalText(text []byte) error {
	switch string(text) {
	case markEmpty:
		*that = Empty
	case markPlayerOne:
		*that = PlayerOne
	case markPlayerTwo:
		*that = PlayerTwo
	default:
		return fmt.Errorf("%w: %q", ErrUnknownMark, string(text))
	}

	return nil
}

// Board is the 4x4 grid, indexed [row][col].
type Board [BoardSize][BoardSize]Cell

// Count returns how many cells hold the given value.
func (that Board) Count(cell Cell) int {
	n := 0
	for _, row := range that {
		for _, c := range row {
			if c == cell {
				n++
			}
		}
	}

	return n
}

func (that Board) String() string {
	var sb strings.Builder
	for r, row := range that {
		if r > 0 {
			sb.WriteByte('\n')
		}
		for _, c := range row {
			sb.WriteString(c.String())
		}
	}

	return sb.String()
}

type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func InBounds(row, col int) bool {
	return row >= 0 && row < BoardSize && col >= 0 && col < BoardSize
}

// Outcome is the derived state of a board.
type Outcome struct {
	Status string     `json:"status"`
	Winner Cell       `json:"winner"`
	Line   []Position `json:"line,omitempty"`
}

func (that Outcome) IsFinished() bool {
	return that.Status == StatusWon || that.Status == StatusDrawn
}
