package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/reversi-backend/internal/apperror"
	"github.com/rocketscienceinc/reversi-backend/internal/entity"
	"github.com/rocketscienceinc/reversi-backend/internal/reversi"
)

type mockGameManager struct {
	mock.Mock
}

func (that *mockGameManager) GetGame(ctx context.Context, gameID string) (*reversi.Game, error) {
	args := that.Called(ctx, gameID)
	game, _ := args.Get(0).(*reversi.Game)
	return game, args.Error(1)
}

func (that *mockGameManager) Results(ctx context.Context, limit int) ([]*entity.Result, error) {
	args := that.Called(ctx, limit)
	results, _ := args.Get(0).([]*entity.Result)
	return results, args.Error(1)
}

func newTestServer(t *testing.T) (*Server, *mockGameManager) {
	t.Helper()

	manager := &mockGameManager{}
	t.Cleanup(func() { manager.AssertExpectations(t) })

	return New(slog.New(slog.NewJSONHandler(io.Discard, nil)), manager), manager
}

func doRequest(t *testing.T, server *Server, target string) (*http.Response, []byte) {
	t.Helper()

	resp, err := server.App().Test(httptest.NewRequest(http.MethodGet, target, nil))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp, body
}

func TestPing(t *testing.T) {
	server, _ := newTestServer(t)

	resp, body := doRequest(t, server, "/ping")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "pong", string(body))
}

func TestGetGame(t *testing.T) {
	t.Run("Returns the game view", func(t *testing.T) {
		// Given: a stored game with one white pawn
		server, manager := newTestServer(t)
		game, err := reversi.NewGame("g1", reversi.DefaultWidth, reversi.DefaultHeight)
		require.NoError(t, err)
		require.True(t, game.DropPawn(game.NextPawn(), reversi.Position{X: 4, Y: 4}))
		manager.On("GetGame", mock.Anything, "g1").Return(game, nil).Once()

		// When: the game is requested
		resp, body := doRequest(t, server, "/api/games/g1")

		// Then: the view reflects the move
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var view entity.GameView
		require.NoError(t, json.Unmarshal(body, &view))
		assert.Equal(t, "g1", view.ID)
		assert.Equal(t, reversi.Black, view.ActivePlayer)
		assert.Len(t, view.WhiteStack, 31)
		assert.Len(t, view.BlackStack, 32)
		assert.Equal(t, 1, view.Score["white"])
	})

	t.Run("Unknown game", func(t *testing.T) {
		server, manager := newTestServer(t)
		manager.On("GetGame", mock.Anything, "nope").Return(nil, apperror.ErrGameNotFound).Once()

		resp, body := doRequest(t, server, "/api/games/nope")

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Contains(t, string(body), apperror.ErrGameNotFound.Error())
	})

	t.Run("Storage failure", func(t *testing.T) {
		server, manager := newTestServer(t)
		manager.On("GetGame", mock.Anything, "g1").Return(nil, errors.New("redis down")).Once()

		resp, _ := doRequest(t, server, "/api/games/g1")

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	})
}

func TestGetBoard(t *testing.T) {
	server, manager := newTestServer(t)
	game, err := reversi.NewGame("g1", 2, 2)
	require.NoError(t, err)
	manager.On("GetGame", mock.Anything, "g1").Return(game, nil).Once()

	resp, body := doRequest(t, server, "/api/games/g1/board")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, game.Board.String(), string(body))
}

func TestGetResults(t *testing.T) {
	t.Run("Passes the limit", func(t *testing.T) {
		server, manager := newTestServer(t)
		finishedAt := time.Date(2024, 10, 1, 12, 0, 0, 0, time.UTC)
		manager.On("Results", mock.Anything, 5).Return([]*entity.Result{
			{GameID: "g1", Winner: reversi.White, WhiteCount: 40, BlackCount: 24, Turns: 64, FinishedAt: finishedAt},
		}, nil).Once()

		resp, body := doRequest(t, server, "/api/results?limit=5")

		require.Equal(t, http.StatusOK, resp.StatusCode)

		var results []entity.Result
		require.NoError(t, json.Unmarshal(body, &results))
		require.Len(t, results, 1)
		assert.Equal(t, reversi.White, results[0].Winner)
		assert.True(t, finishedAt.Equal(results[0].FinishedAt))
	})

	t.Run("Missing limit uses the default", func(t *testing.T) {
		server, manager := newTestServer(t)
		manager.On("Results", mock.Anything, 0).Return([]*entity.Result{}, nil).Once()

		resp, body := doRequest(t, server, "/api/results")

		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.JSONEq(t, `[]`, string(body))
	})
}
