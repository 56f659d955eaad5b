package reversi

// Color is the side a pawn currently belongs to. Tie is only used as a winner value.
type Color string

const (
	Black   Color = "black"
	White   Color = "white"
	Tie     Color = "tie"
	NoColor Color = ""
)

// Opponent - returns the other side.
func (c Color) Opponent() Color {
	switch c {
	case White:
		return Black
	case Black:
		return White
	default:
		return NoColor
	}
}

// Pawn is a single game piece. ID never changes, Color changes only when the pawn is reversed.
type Pawn struct {
	ID    string `json:"id"`
	Color Color  `json:"color"`
}

// Is - reports whether both pawns share the same identity.
func (that *Pawn) Is(other *Pawn) bool {
	if that == nil || other == nil {
		return false
	}

	return that.ID == other.ID
}
