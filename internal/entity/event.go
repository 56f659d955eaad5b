package entity

import "github.com/rocketscienceinc/reversi-backend/internal/reversi"

const (
	EventDrop    = "drop"
	EventRestart = "restart"
)

// GameEvent is published after every change of a game so that views can repaint.
type GameEvent struct {
	Type     string            `json:"type"`
	GameID   string            `json:"game_id"`
	Position *reversi.Position `json:"position,omitempty"`
	Game     *reversi.Game     `json:"game"`
}
