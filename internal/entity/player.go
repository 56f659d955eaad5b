package entity

// Player is a browser session. Both colors of a game are played from the same session.
type Player struct {
	ID     string `json:"id"`
	GameID string `json:"game_id,omitempty"`
}

func (that *Player) HasGame() bool {
	return that.GameID != ""
}
