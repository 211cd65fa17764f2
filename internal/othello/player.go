package othello

import (
	"fmt"
	"strings"
)

// Cell is the content of one board square. The numeric values double as the
// wire encoding (0 empty, 1 black, 2 white).
type Cell uint8

const (
	CellEmpty Cell = iota
	CellBlack
	CellWhite
)

func (c Cell) String() string {
	switch c {
	case CellEmpty:
		return "empty"
	case CellBlack:
		return "black"
	case CellWhite:
		return "white"
	}
	panic(fmt.Sprintf("othello: unknown cell %d", uint8(c)))
}

// Valid reports whether c is one of the three known cells.
func (c Cell) Valid() bool { return c <= CellWhite }

// Player is the side making a move.
type Player uint8

const (
	Black Player = 1
	White Player = 2
)

func (p Player) String() string {
	switch p {
	case Black:
		return "black"
	case White:
		return "white"
	}
	panic(fmt.Sprintf("othello: unknown player %d", uint8(p)))
}

// Valid reports whether p is Black or White.
func (p Player) Valid() bool { return p == Black || p == White }

// Opponent returns the other side.
func (p Player) Opponent() Player {
	mustPlayer(p)
	return Black + White - p
}

// Cell returns the disc colour p places.
func (p Player) Cell() Cell {
	mustPlayer(p)
	return Cell(p)
}

// ParsePlayer accepts "black", "b", "white", "w" in any case.
func ParsePlayer(s string) (Player, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "black", "b":
		return Black, true
	case "white", "w":
		return White, true
	}
	return 0, false
}

func mustPlayer(p Player) {
	if !p.Valid() {
		panic(fmt.Sprintf("othello: unknown player %d", uint8(p)))
	}
}

// Outcome is the result of a finished game.
type Outcome uint8

const (
	NoWinner Outcome = iota
	BlackWins
	WhiteWins
	Draw
)

func (o Outcome) String() string {
	switch o {
	case NoWinner:
		return "none"
	case BlackWins:
		return "black"
	case WhiteWins:
		return "white"
	case Draw:
		return "draw"
	}
	panic(fmt.Sprintf("othello: unknown outcome %d", uint8(o)))
}
