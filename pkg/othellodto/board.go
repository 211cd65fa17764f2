package othellodto

import (
	"fmt"

	"github.com/park285/Cheese-Othello-bot/internal/othello"
)

// Grid is the wire form of a board: 8 rows of 8 cells, 0 empty, 1 black,
// 2 white.
type Grid [][]int

// EncodeBoard converts a board to its wire form.
func EncodeBoard(b othello.Board) Grid {
	rows := b.Rows()
	g := make(Grid, othello.Size)
	for r := range rows {
		g[r] = make([]int, othello.Size)
		for c, cell := range rows[r] {
			g[r][c] = int(cell)
		}
	}
	return g
}

// DecodeBoard validates shape and cell values.
func DecodeBoard(g Grid) (othello.Board, error) {
	if len(g) != othello.Size {
		return othello.Board{}, fmt.Errorf("%w: %d rows", othello.ErrBadBoard, len(g))
	}
	var rows [othello.Size][othello.Size]othello.Cell
	for r, row := range g {
		if len(row) != othello.Size {
			return othello.Board{}, fmt.Errorf("%w: row %d has %d cells", othello.ErrBadBoard, r, len(row))
		}
		for c, v := range row {
			if v < int(othello.CellEmpty) || v > int(othello.CellWhite) {
				return othello.Board{}, fmt.Errorf("%w: cell (%d,%d)=%d", othello.ErrBadBoard, r, c, v)
			}
			rows[r][c] = othello.Cell(v)
		}
	}
	return othello.FromRows(rows)
}

// DecodePlayer maps 1 and 2 to Black and White.
func DecodePlayer(v int) (othello.Player, error) {
	p := othello.Player(v)
	if v < 0 || v > 255 || !p.Valid() {
		return 0, fmt.Errorf("othellodto: invalid player %d", v)
	}
	return p, nil
}
