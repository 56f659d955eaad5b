package websocket

import (
	"encoding/json"

	"github.com/rocketscienceinc/reversi-backend/internal/entity"
	"github.com/rocketscienceinc/reversi-backend/internal/reversi"
)

const (
	actionConnect = "connect"
	actionNewGame = "game:new"
	actionDrop    = "game:drop"
	actionRestart = "game:restart"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Payload is shared by requests and responses of every action.
type Payload struct {
	Player   *entity.Player    `json:"player,omitempty"`
	Game     *entity.GameView  `json:"game,omitempty"`
	PawnID   string            `json:"pawn_id,omitempty"`
	Position *reversi.Position `json:"position,omitempty"`
	Error    string            `json:"error,omitempty"`
}

const (
	opText  byte = 0x1
	opClose byte = 0x8
	opPing  byte = 0x9
	opPong  byte = 0xA
)

// frame represents a WebSocket frame and its metadata.
type frame struct {
	isFin   bool
	opCode  byte
	length  uint64
	payload []byte
}
