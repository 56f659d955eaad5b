package reversi

import (
	"errors"
	"fmt"
	"strconv"
)

// Status is the lifecycle stage of a game.
type Status string

const (
	StatusPlaying  Status = "playing"
	StatusFinished Status = "finished"
)

var ErrInvalidBoardSize = errors.New("board must be square with an even number of cells")

// Game holds the whole state of one reversi game. It is not safe for concurrent use.
type Game struct {
	ID           string  `json:"id"`
	Status       Status  `json:"status"`
	Turn         int     `json:"turn"`
	ActivePlayer Color   `json:"active_player"`
	Board        *Board  `json:"board"`
	Stack        []*Pawn `json:"stack"`
	Winner       Color   `json:"winner,omitempty"`

	// PawnSeq is the last pawn id handed out by this game.
	PawnSeq int `json:"pawn_seq"`
}

// NewGame - creates a game on a width x height board in its initial state.
func NewGame(id string, width, height int) (*Game, error) {
	if err := ValidateSize(width, height); err != nil {
		return nil, err
	}

	game := &Game{ID: id}
	game.reset(width, height)

	return game, nil
}

// ValidateSize - checks the board dimensions a game can be played on.
func ValidateSize(width, height int) error {
	if width <= 0 || height <= 0 || width != height || (width*height)%2 != 0 {
		return fmt.Errorf("%w: got %dx%d", ErrInvalidBoardSize, width, height)
	}

	return nil
}

func (that *Game) reset(width, height int) {
	size := width * height

	that.Status = StatusPlaying
	that.Turn = 0
	that.ActivePlayer = White
	that.Board = NewBoard(width, height)
	that.Winner = NoColor

	that.Stack = make([]*Pawn, 0, size)
	for i := 0; i < size/2; i++ {
		that.Stack = append(that.Stack, that.newPawn(Black))
	}
	for i := 0; i < size/2; i++ {
		that.Stack = append(that.Stack, that.newPawn(White))
	}
}

func (that *Game) newPawn(color Color) *Pawn {
	that.PawnSeq++

	return &Pawn{
		ID:    strconv.Itoa(that.PawnSeq),
		Color: color,
	}
}

// Restart - discards the current state and starts over on a board of the same size.
// Pawn ids keep growing so a pawn from before the restart is never mistaken for a new one.
func (that *Game) Restart() {
	that.reset(that.Board.Width, that.Board.Height)
}

func (that *Game) IsFinished() bool {
	return that.Status == StatusFinished
}

func (that *Game) IsPlaying() bool {
	return that.Status == StatusPlaying
}

// FindPawnInStack - returns the reserve pawn with the given id or nil.
func (that *Game) FindPawnInStack(id string) *Pawn {
	for _, pawn := range that.Stack {
		if pawn.ID == id {
			return pawn
		}
	}

	return nil
}

// NextPawn - returns the first reserve pawn of the active player or nil.
func (that *Game) NextPawn() *Pawn {
	for _, pawn := range that.Stack {
		if pawn.Color == that.ActivePlayer {
			return pawn
		}
	}

	return nil
}

// BlackStack - returns a snapshot of the black reserve pawns.
func (that *Game) BlackStack() []*Pawn {
	return that.stackOf(Black)
}

// WhiteStack - returns a snapshot of the white reserve pawns.
func (that *Game) WhiteStack() []*Pawn {
	return that.stackOf(White)
}

func (that *Game) stackOf(color Color) []*Pawn {
	pawns := make([]*Pawn, 0, len(that.Stack))
	for _, pawn := range that.Stack {
		if pawn.Color == color {
			pawns = append(pawns, pawn)
		}
	}

	return pawns
}

// DropPawn - places a reserve pawn on the board and plays the turn.
// It returns false and leaves the game untouched when the move is not allowed:
// finished game, wrong color, occupied cell or a pawn that is not in the stack.
// Coordinates outside the board are a caller bug and panic with ErrOutOfBounds.
func (that *Game) DropPawn(pawn *Pawn, position Position) bool {
	if !that.canDropPawn(pawn, position) {
		return false
	}

	stacked := that.FindPawnInStack(pawn.ID)
	if stacked == nil || stacked.Color != pawn.Color {
		return false
	}

	that.Board.Place(position.X, position.Y, stacked)
	that.removePawnInStack(stacked)
	that.reverseBoard(position, stacked)
	that.nextTurn()

	return true
}

func (that *Game) canDropPawn(pawn *Pawn, position Position) bool {
	if that.IsFinished() || pawn == nil {
		return false
	}

	// not this player's turn
	if pawn.Color != that.ActivePlayer {
		return false
	}

	// a pawn already sits on the cell
	return that.Board.Get(position.X, position.Y) == nil
}

func (that *Game) removePawnInStack(target *Pawn) {
	stack := that.Stack[:0]
	for _, pawn := range that.Stack {
		if !pawn.Is(target) {
			stack = append(stack, pawn)
		}
	}

	clear(that.Stack[len(stack):])
	that.Stack = stack
}

// reverseBoard - reverses the row, the column and both diagonals through the position.
func (that *Game) reverseBoard(position Position, trigger *Pawn) {
	x, y := position.X, position.Y

	lines := [][]*Pawn{
		that.Board.Row(y),
		that.Board.Column(x),
		that.Board.Diagonal(x, y, DownRight),
		that.Board.Diagonal(x, y, DownLeft),
	}

	for _, line := range lines {
		Reverse(line, trigger)
	}
}

func (that *Game) nextTurn() {
	if len(that.Stack) == 0 {
		that.Status = StatusFinished
		that.Winner = that.FindWinner()

		return
	}

	that.Turn++
	that.ActivePlayer = that.ActivePlayer.Opponent()
}

// CountPawns - counts the pawns on the board by color.
func (that *Game) CountPawns() (white, black int) {
	for _, pawn := range that.Board.Pawns() {
		if pawn.Color == White {
			white++
		} else {
			black++
		}
	}

	return white, black
}

// FindWinner - returns the color with more pawns on the board, or Tie.
func (that *Game) FindWinner() Color {
	white, black := that.CountPawns()

	switch {
	case white == black:
		return Tie
	case white > black:
		return White
	default:
		return Black
	}
}
