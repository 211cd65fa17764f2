package session

import (
	"context"
	"errors"

	"github.com/park285/Cheese-Othello-bot/internal/othello"
)

// Opponent is the remote move authority. Any error, whatever its cause, makes
// the controller fall back to local computation.
type Opponent interface {
	NewGame(ctx context.Context) (othello.Board, error)
	Move(ctx context.Context, board othello.Board, move othello.Move) (othello.Board, error)
	BotMove(ctx context.Context, board othello.Board, player othello.Player, difficulty int) (othello.Board, error)
}

var errOffline = errors.New("session: no move authority configured")

// offline is used when no authority is configured; every call fails so the
// local fallback always runs.
type offline struct{}

func (offline) NewGame(context.Context) (othello.Board, error) {
	return othello.Board{}, errOffline
}

func (offline) Move(context.Context, othello.Board, othello.Move) (othello.Board, error) {
	return othello.Board{}, errOffline
}

func (offline) BotMove(context.Context, othello.Board, othello.Player, int) (othello.Board, error) {
	return othello.Board{}, errOffline
}
