package apperror

import "errors"

var (
	ErrGameFinished   = errors.New("game is already finished")
	ErrGameNotFound   = errors.New("game not found")
	ErrPlayerNotFound = errors.New("player not found")
	ErrInvalidCell    = errors.New("invalid cell")
	ErrPawnNotFound   = errors.New("pawn is not in the stack")
	ErrMoveRejected   = errors.New("move rejected")
	ErrNoActiveGame   = errors.New("player has no active game")
)
