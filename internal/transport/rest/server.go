package rest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/rocketscienceinc/reversi-backend/internal/entity"
	"github.com/rocketscienceinc/reversi-backend/internal/reversi"
)

type gameManager interface {
	GetGame(ctx context.Context, gameID string) (*reversi.Game, error)
	Results(ctx context.Context, limit int) ([]*entity.Result, error)
}

// Server exposes read-only views of games and results over HTTP.
type Server struct {
	logger      *slog.Logger
	gameManager gameManager
	app         *fiber.App
}

func New(logger *slog.Logger, gameManager gameManager) *Server {
	server := &Server{
		logger:      logger.With("component", "rest"),
		gameManager: gameManager,
		app: fiber.New(fiber.Config{
			DisableStartupMessage: true,
			ReadTimeout:           10 * time.Second,
			WriteTimeout:          10 * time.Second,
			IdleTimeout:           30 * time.Second,
		}),
	}

	server.app.Use(recover.New())
	server.app.Use(server.logging)
	server.setupRoutes()

	return server
}

func (that *Server) setupRoutes() {
	that.app.Get("/ping", that.ping)

	api := that.app.Group("/api")
	api.Get("/games/:id", that.getGame)
	api.Get("/games/:id/board", that.getBoard)
	api.Get("/results", that.getResults)
}

// App - returns the underlying fiber application.
func (that *Server) App() *fiber.App {
	return that.app
}

// Start - starts HTTP server and stops it when ctx is done.
func (that *Server) Start(ctx context.Context, port string) error {
	go func() {
		<-ctx.Done()

		if err := that.app.ShutdownWithTimeout(5 * time.Second); err != nil {
			that.logger.Error("failed to shutdown server", "error", err)
		}
	}()

	if err := that.app.Listen(":" + port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// logging - logs every request once it is served.
func (that *Server) logging(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()

	that.logger.Debug("request served",
		"method", c.Method(),
		"path", c.Path(),
		"status", c.Response().StatusCode(),
		"latency", time.Since(start),
	)

	return err
}
