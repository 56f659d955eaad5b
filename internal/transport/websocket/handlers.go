package websocket

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/reversi-backend/internal/entity"
	"github.com/rocketscienceinc/reversi-backend/internal/reversi"
)

var (
	ErrPlayerRequired   = errors.New("player id is required")
	ErrPositionRequired = errors.New("position is required")
)

func (that *Server) handleConnect(ctx context.Context, msg *Message, bufrw *bufio.ReadWriter) error {
	payload, err := decodePayload(msg)
	if err != nil {
		return err
	}

	requestedID := playerID(ctx, payload)

	player, err := that.gameManager.GetOrCreatePlayer(ctx, requestedID)
	if err != nil {
		return fmt.Errorf("failed to get or create player: %w", err)
	}

	if player.ID == requestedID {
		that.logger.Info("Player connected", "player", player.ID)
	} else {
		that.logger.Info("Registered new player", "player", player.ID)
	}

	return that.sendMessage(bufrw, msg.Action, Payload{Player: player})
}

func (that *Server) handleNewGame(ctx context.Context, msg *Message, bufrw *bufio.ReadWriter) error {
	payload, err := decodePayload(msg)
	if err != nil {
		return err
	}

	id := playerID(ctx, payload)
	if id == "" {
		return ErrPlayerRequired
	}

	game, err := that.gameManager.GetOrCreateGame(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get or create game: %w", err)
	}

	return that.sendMessage(bufrw, msg.Action, Payload{
		Player: &entity.Player{ID: id, GameID: game.ID},
		Game:   entity.NewGameView(game),
	})
}

func (that *Server) handleDropPawn(ctx context.Context, msg *Message, bufrw *bufio.ReadWriter) error {
	payload, err := decodePayload(msg)
	if err != nil {
		return err
	}

	id := playerID(ctx, payload)
	if id == "" {
		return ErrPlayerRequired
	}

	if payload.Position == nil {
		return ErrPositionRequired
	}

	game, err := that.gameManager.DropPawn(ctx, id, payload.PawnID, payload.Position.X, payload.Position.Y)
	if err != nil {
		return that.sendGameError(bufrw, msg.Action, game, err)
	}

	return that.sendMessage(bufrw, msg.Action, Payload{
		Game:     entity.NewGameView(game),
		Position: payload.Position,
	})
}

func (that *Server) handleRestart(ctx context.Context, msg *Message, bufrw *bufio.ReadWriter) error {
	payload, err := decodePayload(msg)
	if err != nil {
		return err
	}

	id := playerID(ctx, payload)
	if id == "" {
		return ErrPlayerRequired
	}

	game, err := that.gameManager.Restart(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to restart game: %w", err)
	}

	return that.sendMessage(bufrw, msg.Action, Payload{Game: entity.NewGameView(game)})
}

// sendGameError - answers a refused move with the reason and the current state of the game.
func (that *Server) sendGameError(bufrw *bufio.ReadWriter, action string, game *reversi.Game, err error) error {
	that.logger.Debug("move refused", "error", err)

	return that.sendMessage(bufrw, action, Payload{
		Game:  entity.NewGameView(game),
		Error: err.Error(),
	})
}

func decodePayload(msg *Message) (*Payload, error) {
	var payload Payload

	if len(msg.Payload) == 0 {
		return &payload, nil
	}

	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	return &payload, nil
}

// playerID - the session of the connection; the payload player only counts without a session.
func playerID(ctx context.Context, payload *Payload) string {
	if sessionID := sessionFrom(ctx); sessionID != "" {
		return sessionID
	}

	if payload.Player != nil {
		return payload.Player.ID
	}

	return ""
}
