package rest

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/rocketscienceinc/reversi-backend/internal/apperror"
	"github.com/rocketscienceinc/reversi-backend/internal/entity"
)

func (that *Server) ping(c *fiber.Ctx) error {
	return c.SendString("pong")
}

func (that *Server) getGame(c *fiber.Ctx) error {
	game, err := that.gameManager.GetGame(c.UserContext(), c.Params("id"))
	if err != nil {
		return that.sendError(c, err)
	}

	return c.JSON(entity.NewGameView(game))
}

// getBoard - renders the board as text, handy from a terminal.
func (that *Server) getBoard(c *fiber.Ctx) error {
	game, err := that.gameManager.GetGame(c.UserContext(), c.Params("id"))
	if err != nil {
		return that.sendError(c, err)
	}

	return c.SendString(game.Board.String())
}

func (that *Server) getResults(c *fiber.Ctx) error {
	results, err := that.gameManager.Results(c.UserContext(), c.QueryInt("limit", 0))
	if err != nil {
		return that.sendError(c, err)
	}

	return c.JSON(results)
}

func (that *Server) sendError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	if errors.Is(err, apperror.ErrGameNotFound) {
		status = fiber.StatusNotFound
	} else {
		that.logger.Error("request failed", "path", c.Path(), "error", err)
	}

	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
	})
}
