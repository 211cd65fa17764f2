package session

import (
	"errors"

	"github.com/park285/Cheese-Othello-bot/internal/othello"
)

var (
	ErrIllegalMove       = othello.ErrIllegalMove
	ErrGameOver          = errors.New("session: game is over")
	ErrReviewing         = errors.New("session: reviewing history")
	ErrNotReviewing      = errors.New("session: not reviewing")
	ErrNotHumanTurn      = errors.New("session: automated side to move")
	ErrNotAutomatedTurn  = errors.New("session: human side to move")
	ErrUndoNotAvailable  = errors.New("session: no moves available to undo")
	ErrBusy              = errors.New("session: move request in flight")
	ErrSuperseded        = errors.New("session: superseded by a new game")
	ErrNoSession         = errors.New("session: no game in progress")
	ErrInvalidMode       = errors.New("session: invalid mode")
	ErrInvalidDifficulty = errors.New("session: difficulty must be between 1 and 3")
	ErrClosed            = errors.New("session: table closed")
)
