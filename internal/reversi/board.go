package reversi

import (
	"errors"
	"fmt"
	"strings"
)

const (
	DefaultWidth  = 8
	DefaultHeight = 8
)

var ErrOutOfBounds = errors.New("position is out of board bounds")

// Direction selects one of the two diagonals passing through a cell.
type Direction int

const (
	// DownRight - top-left to bottom-right diagonal.
	DownRight Direction = iota
	// DownLeft - anti-diagonal, ordered bottom-left to top-right.
	DownLeft
)

// Position is a board cell, x is the column and y the row.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Board is a grid of optional pawns, Cells[y][x].
type Board struct {
	Width  int       `json:"width"`
	Height int       `json:"height"`
	Cells  [][]*Pawn `json:"cells"`
}

func NewBoard(width, height int) *Board {
	cells := make([][]*Pawn, height)
	for y := range cells {
		cells[y] = make([]*Pawn, width)
	}

	return &Board{
		Width:  width,
		Height: height,
		Cells:  cells,
	}
}

// Contains - checks that the coordinates address a cell of the board.
func (that *Board) Contains(x, y int) bool {
	return x >= 0 && y >= 0 && x < that.Width && y < that.Height
}

func (that *Board) mustContain(x, y int) {
	if !that.Contains(x, y) {
		panic(fmt.Errorf("%w: (%d, %d) on %dx%d board", ErrOutOfBounds, x, y, that.Width, that.Height))
	}
}

// Get - returns the pawn at the cell or nil when the cell is empty.
func (that *Board) Get(x, y int) *Pawn {
	that.mustContain(x, y)

	return that.Cells[y][x]
}

// Place - stores the pawn at the cell, replacing whatever was there.
func (that *Board) Place(x, y int, pawn *Pawn) {
	that.mustContain(x, y)

	that.Cells[y][x] = pawn
}

// Row - returns the cells of row y, left to right.
func (that *Board) Row(y int) []*Pawn {
	that.mustContain(0, y)

	row := make([]*Pawn, that.Width)
	copy(row, that.Cells[y])

	return row
}

// Column - returns the cells of column x, top to bottom.
func (that *Board) Column(x int) []*Pawn {
	that.mustContain(x, 0)

	column := make([]*Pawn, that.Height)
	for y := 0; y < that.Height; y++ {
		column[y] = that.Cells[y][x]
	}

	return column
}

// Diagonal - returns the whole diagonal line passing through (x, y).
func (that *Board) Diagonal(x, y int, direction Direction) []*Pawn {
	that.mustContain(x, y)

	var line []*Pawn

	switch direction {
	case DownRight:
		shift := min(x, y)
		for cx, cy := x-shift, y-shift; cx < that.Width && cy < that.Height; cx, cy = cx+1, cy+1 {
			line = append(line, that.Cells[cy][cx])
		}
	case DownLeft:
		shift := min(x, that.Height-1-y)
		for cx, cy := x-shift, y+shift; cx < that.Width && cy >= 0; cx, cy = cx+1, cy-1 {
			line = append(line, that.Cells[cy][cx])
		}
	default:
		panic(fmt.Sprintf("unknown diagonal direction %d", direction))
	}

	return line
}

// Pawns - returns every pawn on the board, row by row.
func (that *Board) Pawns() []*Pawn {
	var pawns []*Pawn

	for _, row := range that.Cells {
		for _, pawn := range row {
			if pawn != nil {
				pawns = append(pawns, pawn)
			}
		}
	}

	return pawns
}

// String - renders the board as ASCII art, ● for black and ○ for white.
func (that *Board) String() string {
	var sb strings.Builder

	sb.WriteString("+")
	for x := 0; x < that.Width; x++ {
		sb.WriteString(fmt.Sprintf("-%c", 'a'+rune(x%26)))
	}
	sb.WriteString("-+\n")

	for y, row := range that.Cells {
		sb.WriteString(fmt.Sprintf("%d ", y+1))

		for _, pawn := range row {
			switch {
			case pawn == nil:
				sb.WriteString("  ")
			case pawn.Color == White:
				sb.WriteString("○ ")
			default:
				sb.WriteString("● ")
			}
		}

		sb.WriteString("|\n")
	}

	sb.WriteString("+" + strings.Repeat("--", that.Width) + "-+\n")

	return sb.String()
}
