package entity

import "github.com/rocketscienceinc/reversi-backend/internal/reversi"

// GameView is what clients get to render a game: the board plus both reserves.
type GameView struct {
	ID           string          `json:"id"`
	Status       reversi.Status  `json:"status"`
	Turn         int             `json:"turn"`
	ActivePlayer reversi.Color   `json:"active_player"`
	Winner       reversi.Color   `json:"winner,omitempty"`
	Board        *reversi.Board  `json:"board"`
	BlackStack   []*reversi.Pawn `json:"black_stack"`
	WhiteStack   []*reversi.Pawn `json:"white_stack"`
	Score        map[string]int  `json:"score"`
}

func NewGameView(game *reversi.Game) *GameView {
	if game == nil {
		return nil
	}

	white, black := game.CountPawns()

	return &GameView{
		ID:           game.ID,
		Status:       game.Status,
		Turn:         game.Turn,
		ActivePlayer: game.ActivePlayer,
		Winner:       game.Winner,
		Board:        game.Board,
		BlackStack:   game.BlackStack(),
		WhiteStack:   game.WhiteStack(),
		Score: map[string]int{
			string(reversi.White): white,
			string(reversi.Black): black,
		},
	}
}
