package entity

import (
	"time"

	"github.com/rocketscienceinc/reversi-backend/internal/reversi"
)

// Result is the outcome of a finished game.
type Result struct {
	GameID     string        `json:"game_id"`
	Winner     reversi.Color `json:"winner"`
	WhiteCount int           `json:"white_count"`
	BlackCount int           `json:"black_count"`
	Turns      int           `json:"turns"`
	FinishedAt time.Time     `json:"finished_at"`
}

// NewResult - builds the result of a finished game.
func NewResult(game *reversi.Game, finishedAt time.Time) *Result {
	white, black := game.CountPawns()

	return &Result{
		GameID:     game.ID,
		Winner:     game.Winner,
		WhiteCount: white,
		BlackCount: black,
		Turns:      game.Turn + 1,
		FinishedAt: finishedAt,
	}
}
