// Package history keeps the snapshot log behind a game session: an
// append-only sequence with a cursor that can rewind for read-only review.
package history

import (
	"errors"
	"fmt"

	"github.com/park285/Cheese-Othello-bot/internal/othello"
)

var (
	ErrEmpty        = errors.New("history: no moves to undo")
	ErrReviewing    = errors.New("history: cannot append while reviewing")
	ErrNotReviewing = errors.New("history: not reviewing")
)

// Snapshot is one position in the log: the board after a move and the side
// to move next.
type Snapshot struct {
	Board othello.Board
	Turn  othello.Player
	// Last is the placement that produced Board; HasLast is false for a base
	// position.
	Last     othello.Move
	HasLast  bool
	Fallback bool
}

// History is a value type. Every operation returns a new History and never
// touches the receiver's backing array, so copies can be shared freely.
type History struct {
	base      Snapshot
	snaps     []Snapshot
	cursor    int
	reviewing bool
}

// New starts an empty log over base. The cursor sits before move 0.
func New(base Snapshot) History {
	return History{base: base, cursor: -1}
}

// Len is the number of recorded moves.
func (h History) Len() int { return len(h.snaps) }

// Cursor is the index of the viewed snapshot; -1 is the base position.
func (h History) Cursor() int { return h.cursor }

// Reviewing reports whether the cursor is behind the tail.
func (h History) Reviewing() bool { return h.reviewing }

// Base returns the position the game started from.
func (h History) Base() Snapshot { return h.base }

// Current returns the viewed snapshot, which is the base when the cursor is
// before move 0.
func (h History) Current() Snapshot {
	h.mustCursor()
	if h.cursor < 0 {
		return h.base
	}
	return h.snaps[h.cursor]
}

// Live returns the tail snapshot regardless of review.
func (h History) Live() Snapshot {
	if len(h.snaps) == 0 {
		return h.base
	}
	return h.snaps[len(h.snaps)-1]
}

// At returns snapshot i.
func (h History) At(i int) (Snapshot, bool) {
	if i < 0 || i >= len(h.snaps) {
		return Snapshot{}, false
	}
	return h.snaps[i], true
}

// Snapshots returns a copy of the recorded moves.
func (h History) Snapshots() []Snapshot {
	out := make([]Snapshot, len(h.snaps))
	copy(out, h.snaps)
	return out
}

// Push appends s after the cursor, dropping anything beyond it.
func (h History) Push(s Snapshot) (History, error) {
	if h.reviewing {
		return h, ErrReviewing
	}
	h.mustCursor()
	keep := h.cursor + 1
	// The capped slice forces append to copy, leaving older values intact.
	h.snaps = append(h.snaps[:keep:keep], s)
	h.cursor = len(h.snaps) - 1
	return h, nil
}

// Undo steps the cursor back one move and enters review. At the base
// position it is a no-op.
func (h History) Undo() (History, error) {
	if len(h.snaps) == 0 {
		return h, ErrEmpty
	}
	h.mustCursor()
	h.reviewing = true
	if h.cursor >= 0 {
		h.cursor--
	}
	return h, nil
}

// Redo steps the cursor forward; reaching the tail leaves review.
func (h History) Redo() (History, error) {
	if !h.reviewing {
		return h, ErrNotReviewing
	}
	h.mustCursor()
	if h.cursor < len(h.snaps)-1 {
		h.cursor++
	}
	if h.cursor == len(h.snaps)-1 {
		h.reviewing = false
	}
	return h, nil
}

func (h History) mustCursor() {
	if h.cursor < -1 || h.cursor >= len(h.snaps) || (!h.reviewing && h.cursor != len(h.snaps)-1) {
		panic(fmt.Sprintf("history: cursor %d outside %d snapshots (reviewing=%v)", h.cursor, len(h.snaps), h.reviewing))
	}
}
