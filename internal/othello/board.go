package othello

import (
	"errors"
	"fmt"
	"math/bits"
	"strings"
)

var (
	ErrIllegalMove = errors.New("othello: illegal move")
	ErrBadSquare   = errors.New("othello: bad square")
	ErrBadBoard    = errors.New("othello: bad board")
)

// Size is the board edge length.
const Size = 8

const (
	cellCount = Size * Size
	fileA     = uint64(0x0101010101010101)
	fileH     = uint64(0x8080808080808080)
)

// Board is an immutable 8x8 position stored as two disjoint bitboards.
// Bit index is row*8+col, so ascending bit order is row-major order.
// The zero value is an empty board.
type Board struct {
	black uint64
	white uint64
}

type direction struct{ dr, dc int }

var directions = [8]direction{
	{-1, -1}, {-1, 0}, {-1, 1},
	{0, -1}, {0, 1},
	{1, -1}, {1, 0}, {1, 1},
}

// shift moves every set bit one step in d, dropping bits that leave the board.
func (d direction) shift(x uint64) uint64 {
	s := d.dr*Size + d.dc
	if s > 0 {
		x <<= uint(s)
	} else {
		x >>= uint(-s)
	}
	switch d.dc {
	case 1:
		x &^= fileA
	case -1:
		x &^= fileH
	}
	return x
}

func inRange(row, col int) bool {
	return row >= 0 && row < Size && col >= 0 && col < Size
}

func bit(row, col int) uint64 { return 1 << uint(row*Size+col) }

// Initial returns the standard opening: White on (3,3) and (4,4), Black on
// (3,4) and (4,3).
func Initial() Board {
	return Board{
		black: bit(3, 4) | bit(4, 3),
		white: bit(3, 3) | bit(4, 4),
	}
}

// FromRows builds a board from a grid, rejecting unknown cell values.
func FromRows(rows [Size][Size]Cell) (Board, error) {
	var b Board
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			switch rows[r][c] {
			case CellEmpty:
			case CellBlack:
				b.black |= bit(r, c)
			case CellWhite:
				b.white |= bit(r, c)
			default:
				return Board{}, fmt.Errorf("%w: cell (%d,%d)=%d", ErrBadBoard, r, c, rows[r][c])
			}
		}
	}
	return b, nil
}

// At returns the cell at (row, col). It panics outside the board.
func (b Board) At(row, col int) Cell {
	if !inRange(row, col) {
		panic(fmt.Sprintf("othello: square (%d,%d) out of range", row, col))
	}
	m := bit(row, col)
	switch {
	case b.black&m != 0:
		return CellBlack
	case b.white&m != 0:
		return CellWhite
	}
	return CellEmpty
}

// Rows returns the board as a grid.
func (b Board) Rows() [Size][Size]Cell {
	b.mustValid()
	var out [Size][Size]Cell
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			out[r][c] = b.At(r, c)
		}
	}
	return out
}

// mustValid panics when a square is claimed by both colours.
func (b Board) mustValid() {
	if b.black&b.white != 0 {
		panic(fmt.Sprintf("othello: overlapping discs %#x", b.black&b.white))
	}
}

func (b Board) sides(p Player) (own, opp uint64) {
	mustPlayer(p)
	if p == Black {
		return b.black, b.white
	}
	return b.white, b.black
}

func withSides(p Player, own, opp uint64) Board {
	if p == Black {
		return Board{black: own, white: opp}
	}
	return Board{black: opp, white: own}
}

// flips returns the opponent discs captured by placing at move.
func flips(own, opp, move uint64) uint64 {
	var captured uint64
	for _, d := range directions {
		var run uint64
		x := d.shift(move)
		for x&opp != 0 {
			run |= x
			x = d.shift(x)
		}
		if x&own != 0 {
			captured |= run
		}
	}
	return captured
}

// legalMask generates every legal placement at once, one direction at a time.
// A line holds at most six opponent discs between the mover's disc and the
// landing square.
func legalMask(own, opp uint64) uint64 {
	empty := ^(own | opp)
	var moves uint64
	for _, d := range directions {
		t := d.shift(own) & opp
		for i := 0; i < 5; i++ {
			t |= d.shift(t) & opp
		}
		moves |= d.shift(t) & empty
	}
	return moves
}

// IsLegalMove reports whether player may place at (row, col). It fails closed
// for occupied or out-of-range squares.
func IsLegalMove(b Board, player Player, row, col int) bool {
	if !inRange(row, col) {
		return false
	}
	own, opp := b.sides(player)
	m := bit(row, col)
	if (own|opp)&m != 0 {
		return false
	}
	return flips(own, opp, m) != 0
}

// LegalMoves lists every legal placement for player in row-major order.
func LegalMoves(b Board, player Player) []Move {
	own, opp := b.sides(player)
	mask := legalMask(own, opp)
	moves := make([]Move, 0, bits.OnesCount64(mask))
	for mask != 0 {
		i := bits.TrailingZeros64(mask)
		moves = append(moves, Move{Row: i / Size, Col: i % Size, Player: player})
		mask &= mask - 1
	}
	return moves
}

// HasAnyLegalMove reports whether player has at least one legal placement.
func HasAnyLegalMove(b Board, player Player) bool {
	own, opp := b.sides(player)
	return legalMask(own, opp) != 0
}

// ApplyMove places the disc and flips every bounded opponent run. The input
// board is never modified.
func ApplyMove(b Board, m Move) (Board, error) {
	b.mustValid()
	if !IsLegalMove(b, m.Player, m.Row, m.Col) {
		return b, fmt.Errorf("%w: %s", ErrIllegalMove, m)
	}
	own, opp := b.sides(m.Player)
	placed := bit(m.Row, m.Col)
	captured := flips(own, opp, placed)
	return withSides(m.Player, own|placed|captured, opp&^captured), nil
}

// Flips returns how many discs m would capture, or 0 if m is not legal.
func Flips(b Board, m Move) int {
	if !m.Player.Valid() || !IsLegalMove(b, m.Player, m.Row, m.Col) {
		return 0
	}
	own, opp := b.sides(m.Player)
	return bits.OnesCount64(flips(own, opp, bit(m.Row, m.Col)))
}

// Score returns the disc counts per colour.
func Score(b Board) (black, white int) {
	b.mustValid()
	return bits.OnesCount64(b.black), bits.OnesCount64(b.white)
}

// Count returns black, white and empty counts; they always sum to 64.
func Count(b Board) (black, white, empty int) {
	black, white = Score(b)
	empty = cellCount - black - white
	if empty < 0 {
		panic(fmt.Sprintf("othello: %d discs on a %d square board", black+white, cellCount))
	}
	return black, white, empty
}

// Winner compares disc counts.
func Winner(b Board) Outcome {
	black, white := Score(b)
	switch {
	case black > white:
		return BlackWins
	case white > black:
		return WhiteWins
	}
	return Draw
}

// IsTerminal reports whether neither side can move.
func IsTerminal(b Board) bool {
	return !HasAnyLegalMove(b, Black) && !HasAnyLegalMove(b, White)
}

// Placed infers the single placement that turns before into after. It is
// used to report moves chosen by a remote authority.
func Placed(before, after Board) (Move, bool) {
	added := (after.black | after.white) &^ (before.black | before.white)
	if bits.OnesCount64(added) != 1 {
		return Move{}, false
	}
	i := bits.TrailingZeros64(added)
	p := White
	if after.black&added != 0 {
		p = Black
	}
	return Move{Row: i / Size, Col: i % Size, Player: p}, true
}

// String draws the board with '.', 'B' and 'W', one row per line.
func (b Board) String() string {
	var sb strings.Builder
	sb.Grow(cellCount + Size)
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			switch b.At(r, c) {
			case CellBlack:
				sb.WriteByte('B')
			case CellWhite:
				sb.WriteByte('W')
			default:
				sb.WriteByte('.')
			}
		}
		if r < Size-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// ParseBoard reads the format produced by String. Whitespace is ignored.
func ParseBoard(s string) (Board, error) {
	var rows [Size][Size]Cell
	n := 0
	for _, ch := range s {
		switch ch {
		case ' ', '\t', '\n', '\r':
			continue
		}
		if n >= cellCount {
			return Board{}, fmt.Errorf("%w: more than %d squares", ErrBadBoard, cellCount)
		}
		var c Cell
		switch ch {
		case '.', '-':
			c = CellEmpty
		case 'B', 'b', 'X', 'x':
			c = CellBlack
		case 'W', 'w', 'O', 'o':
			c = CellWhite
		default:
			return Board{}, fmt.Errorf("%w: unexpected %q", ErrBadBoard, ch)
		}
		rows[n/Size][n%Size] = c
		n++
	}
	if n != cellCount {
		return Board{}, fmt.Errorf("%w: %d squares", ErrBadBoard, n)
	}
	return FromRows(rows)
}
