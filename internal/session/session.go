package session

import (
	"fmt"
	"time"

	"github.com/park285/Cheese-Othello-bot/internal/history"
	"github.com/park285/Cheese-Othello-bot/internal/othello"
)

// Session is one game as an immutable value. Transitions return a new
// Session; the receiver is never modified.
type Session struct {
	ID         string
	Mode       Mode
	Difficulty int
	HumanColor othello.Player
	History    history.History
	Generation uint64
	StartedAt  time.Time
}

// Started reports whether s came from NewGame.
func (s Session) Started() bool { return s.ID != "" }

// Live is the authoritative tail position.
func (s Session) Live() history.Snapshot { return s.History.Live() }

// View is the position being looked at, which differs from Live in review.
func (s Session) View() history.Snapshot { return s.History.Current() }

// Turn is the side to move in the live position.
func (s Session) Turn() othello.Player { return s.Live().Turn }

// Over reports whether neither side can move in the live position.
func (s Session) Over() bool { return othello.IsTerminal(s.Live().Board) }

// Winner is NoWinner until the game is over.
func (s Session) Winner() othello.Outcome {
	if !s.Over() {
		return othello.NoWinner
	}
	return othello.Winner(s.Live().Board)
}

// Reviewing reports whether the history cursor is behind the tail.
func (s Session) Reviewing() bool { return s.History.Reviewing() }

// Automated reports whether p is played by the bot in this session's mode.
func (s Session) Automated(p othello.Player) bool {
	switch s.Mode {
	case HumanVsHuman:
		return false
	case HumanVsBot:
		return p != s.HumanColor
	case BotVsBot:
		return true
	}
	panic(fmt.Sprintf("session: unknown mode %q", s.Mode))
}

// State derives the controller state. Review takes precedence, then game
// over, then whoever is to move.
func (s Session) State() State {
	switch {
	case s.Reviewing():
		return StateReviewing
	case s.Over():
		return StateGameOver
	case s.Automated(s.Turn()):
		return StateAwaitingAutomated
	}
	return StateAwaitingHuman
}

// LegalMoves lists the live side's moves, or nothing once the game is over.
func (s Session) LegalMoves() []othello.Move {
	if s.Over() {
		return nil
	}
	return othello.LegalMoves(s.Live().Board, s.Turn())
}

// Passed reports whether the last move left the same side to move.
func (s Session) Passed() bool {
	live := s.Live()
	return live.HasLast && live.Last.Player == live.Turn && !s.Over()
}

// Undo steps the review cursor back one move.
func (s Session) Undo() (Session, error) {
	if !s.Started() {
		return s, ErrNoSession
	}
	h, err := s.History.Undo()
	if err != nil {
		return s, fmt.Errorf("%w: %v", ErrUndoNotAvailable, err)
	}
	s.History = h
	return s, nil
}

// Redo steps the review cursor forward; reaching the tail resumes play in
// whatever state the live position implies.
func (s Session) Redo() (Session, error) {
	if !s.Started() {
		return s, ErrNoSession
	}
	h, err := s.History.Redo()
	if err != nil {
		return s, fmt.Errorf("%w: %v", ErrNotReviewing, err)
	}
	s.History = h
	return s, nil
}
