package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rocketscienceinc/reversi-backend/internal/apperror"
	"github.com/rocketscienceinc/reversi-backend/internal/entity"
	"github.com/rocketscienceinc/reversi-backend/internal/pkg"
	"github.com/rocketscienceinc/reversi-backend/internal/reversi"
)

const (
	DefaultResultsLimit = 20
	MaxResultsLimit     = 100
)

type playerRepo interface {
	CreateOrUpdate(ctx context.Context, player *entity.Player) error
	GetByID(ctx context.Context, id string) (*entity.Player, error)
}

type gameRepo interface {
	CreateOrUpdate(ctx context.Context, game *reversi.Game) error
	GetByID(ctx context.Context, id string) (*reversi.Game, error)
	DeleteByID(ctx context.Context, id string) error
}

type resultRepo interface {
	Save(ctx context.Context, result *entity.Result) error
	List(ctx context.Context, limit int) ([]*entity.Result, error)
}

type publisher interface {
	Publish(ctx context.Context, event *entity.GameEvent) error
}

// GameManager drives reversi games stored in the repositories.
// Mutations of one game are serialized, the engine itself has no locking.
type GameManager struct {
	logger *slog.Logger

	playerRepo playerRepo
	gameRepo   gameRepo
	resultRepo resultRepo
	publisher  publisher

	width  int
	height int
	now    func() time.Time

	locksMu sync.Mutex
	locks   map[string]*refLock
}

// refLock is dropped from the lock table once nobody holds or waits for it.
type refLock struct {
	sync.Mutex
	refs int
}

func NewGameManager(
	logger *slog.Logger,
	playerRepo playerRepo,
	gameRepo gameRepo,
	resultRepo resultRepo,
	publisher publisher,
	width, height int,
) *GameManager {
	return &GameManager{
		logger: logger.With("component", "game_manager"),

		playerRepo: playerRepo,
		gameRepo:   gameRepo,
		resultRepo: resultRepo,
		publisher:  publisher,

		width:  width,
		height: height,
		now:    time.Now,

		locks: make(map[string]*refLock),
	}
}

// GetOrCreatePlayer - returns the player of the session, registering it when unknown.
func (that *GameManager) GetOrCreatePlayer(ctx context.Context, id string) (*entity.Player, error) {
	if id == "" {
		id = pkg.GenerateNewSessionID()
	}

	player, err := that.playerRepo.GetByID(ctx, id)
	if err == nil {
		return player, nil
	}

	if !errors.Is(err, apperror.ErrPlayerNotFound) {
		return nil, fmt.Errorf("failed to get player by id: %w", err)
	}

	player = &entity.Player{ID: id}
	if err = that.playerRepo.CreateOrUpdate(ctx, player); err != nil {
		return nil, fmt.Errorf("failed to create player: %w", err)
	}

	return player, nil
}

// GetOrCreateGame - returns the current game of the player or starts a new one.
// A finished game is removed, its result is already recorded.
func (that *GameManager) GetOrCreateGame(ctx context.Context, playerID string) (*reversi.Game, error) {
	unlock := that.lock(playerLockKey(playerID))
	defer unlock()

	player, err := that.getPlayerByID(ctx, playerID)
	if err != nil {
		return nil, err
	}

	if player.HasGame() {
		game, err := that.currentGame(ctx, player)
		if err != nil {
			return nil, err
		}

		if game != nil {
			return game, nil
		}
	}

	return that.createGame(ctx, player)
}

// currentGame - returns the game the player is in, or nil when a new one is needed.
func (that *GameManager) currentGame(ctx context.Context, player *entity.Player) (*reversi.Game, error) {
	unlock := that.lock(gameLockKey(player.GameID))
	defer unlock()

	game, err := that.gameRepo.GetByID(ctx, player.GameID)
	if errors.Is(err, apperror.ErrGameNotFound) {
		that.logger.Warn("player game is gone, creating a new one", "player", player.ID, "game", player.GameID)
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	if !game.IsFinished() {
		return game, nil
	}

	if err = that.gameRepo.DeleteByID(ctx, game.ID); err != nil && !errors.Is(err, apperror.ErrGameNotFound) {
		return nil, fmt.Errorf("failed to delete finished game: %w", err)
	}

	that.logger.Info("finished game removed", "player", player.ID, "game", game.ID)

	return nil, nil
}

// GetGame - returns a game by its id.
func (that *GameManager) GetGame(ctx context.Context, gameID string) (*reversi.Game, error) {
	game, err := that.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return game, nil
}

// GetGameByPlayerID - returns the current game of the player.
func (that *GameManager) GetGameByPlayerID(ctx context.Context, playerID string) (*reversi.Game, error) {
	player, err := that.getPlayerByID(ctx, playerID)
	if err != nil {
		return nil, err
	}

	if !player.HasGame() {
		return nil, apperror.ErrNoActiveGame
	}

	return that.GetGame(ctx, player.GameID)
}

// DropPawn - plays a reserve pawn of the player's game on (x, y).
// An empty pawnID picks the next reserve pawn of the active color.
// A move refused by the rules returns ErrMoveRejected along with the unchanged game.
func (that *GameManager) DropPawn(ctx context.Context, playerID, pawnID string, x, y int) (*reversi.Game, error) {
	log := that.logger.With("method", "DropPawn", "player", playerID)

	player, err := that.getPlayerByID(ctx, playerID)
	if err != nil {
		return nil, err
	}

	if !player.HasGame() {
		return nil, apperror.ErrNoActiveGame
	}

	unlock := that.lock(gameLockKey(player.GameID))
	defer unlock()

	game, err := that.GetGame(ctx, player.GameID)
	if err != nil {
		return nil, err
	}

	if game.IsFinished() {
		return game, apperror.ErrGameFinished
	}

	if !game.Board.Contains(x, y) {
		return game, fmt.Errorf("%w: (%d, %d)", apperror.ErrInvalidCell, x, y)
	}

	var pawn *reversi.Pawn
	if pawnID == "" {
		pawn = game.NextPawn()
	} else {
		pawn = game.FindPawnInStack(pawnID)
	}

	if pawn == nil {
		return game, fmt.Errorf("%w: %q", apperror.ErrPawnNotFound, pawnID)
	}

	position := reversi.Position{X: x, Y: y}
	if !game.DropPawn(pawn, position) {
		log.Debug("move rejected", "pawn", pawn.ID, "color", pawn.Color, "x", x, "y", y)
		return game, apperror.ErrMoveRejected
	}

	if err = that.updateGame(ctx, game); err != nil {
		return nil, err
	}

	that.publish(ctx, &entity.GameEvent{
		Type:     entity.EventDrop,
		GameID:   game.ID,
		Position: &position,
		Game:     game,
	})

	if game.IsFinished() {
		that.saveResult(ctx, game)
	}

	log.Debug("pawn dropped", "game", game.ID, "turn", game.Turn, "status", game.Status)

	return game, nil
}

// Restart - resets the player's game to its initial state.
func (that *GameManager) Restart(ctx context.Context, playerID string) (*reversi.Game, error) {
	player, err := that.getPlayerByID(ctx, playerID)
	if err != nil {
		return nil, err
	}

	if !player.HasGame() {
		return nil, apperror.ErrNoActiveGame
	}

	unlock := that.lock(gameLockKey(player.GameID))
	defer unlock()

	game, err := that.GetGame(ctx, player.GameID)
	if err != nil {
		return nil, err
	}

	game.Restart()

	if err = that.updateGame(ctx, game); err != nil {
		return nil, err
	}

	that.publish(ctx, &entity.GameEvent{
		Type:   entity.EventRestart,
		GameID: game.ID,
		Game:   game,
	})

	that.logger.Info("game restarted", "game", game.ID)

	return game, nil
}

// Results - returns the latest finished games.
func (that *GameManager) Results(ctx context.Context, limit int) ([]*entity.Result, error) {
	switch {
	case limit <= 0:
		limit = DefaultResultsLimit
	case limit > MaxResultsLimit:
		limit = MaxResultsLimit
	}

	results, err := that.resultRepo.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}

	return results, nil
}

func (that *GameManager) createGame(ctx context.Context, player *entity.Player) (*reversi.Game, error) {
	game, err := reversi.NewGame(pkg.GenerateGameID(), that.width, that.height)
	if err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	if err = that.updateGame(ctx, game); err != nil {
		return nil, err
	}

	player.GameID = game.ID
	if err = that.playerRepo.CreateOrUpdate(ctx, player); err != nil {
		return nil, fmt.Errorf("failed to update player: %w", err)
	}

	that.logger.Info("game created", "game", game.ID, "player", player.ID)

	return game, nil
}

func (that *GameManager) getPlayerByID(ctx context.Context, id string) (*entity.Player, error) {
	player, err := that.playerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}

	return player, nil
}

func (that *GameManager) updateGame(ctx context.Context, game *reversi.Game) error {
	if err := that.gameRepo.CreateOrUpdate(ctx, game); err != nil {
		return fmt.Errorf("failed to update game: %w", err)
	}

	return nil
}

// publish - failures are only logged, the move is already stored.
func (that *GameManager) publish(ctx context.Context, event *entity.GameEvent) {
	if err := that.publisher.Publish(ctx, event); err != nil {
		that.logger.Error("failed to publish game event", "game", event.GameID, "type", event.Type, "error", err)
	}
}

func (that *GameManager) saveResult(ctx context.Context, game *reversi.Game) {
	result := entity.NewResult(game, that.now())

	if err := that.resultRepo.Save(ctx, result); err != nil {
		that.logger.Error("failed to save result", "game", game.ID, "error", err)
		return
	}

	that.logger.Info("game finished", "game", game.ID, "winner", game.Winner)
}

func playerLockKey(playerID string) string {
	return "player:" + playerID
}

func gameLockKey(gameID string) string {
	return "game:" + gameID
}

// lock - serializes work on one key and returns the matching unlock.
func (that *GameManager) lock(key string) func() {
	that.locksMu.Lock()
	l, ok := that.locks[key]
	if !ok {
		l = &refLock{}
		that.locks[key] = l
	}
	l.refs++
	that.locksMu.Unlock()

	l.Lock()

	return func() {
		l.Unlock()

		that.locksMu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(that.locks, key)
		}
		that.locksMu.Unlock()
	}
}
