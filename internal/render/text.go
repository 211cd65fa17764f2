// Package render draws boards for chat replies, as text and as PNG.
package render

import (
	"strings"

	"github.com/park285/Cheese-Othello-bot/internal/othello"
)

// Options control what is drawn besides the discs.
type Options struct {
	// Hints marks these squares, usually the legal moves of the side to move.
	Hints []othello.Move
	// Last highlights the most recent placement when HasLast is set.
	Last    othello.Move
	HasLast bool
}

const (
	glyphBlack = "●"
	glyphWhite = "○"
	glyphEmpty = "·"
	glyphHint  = "*"
)

// Text draws the board as a fixed grid with a-h across and 1-8 down.
func Text(b othello.Board, opts Options) string {
	hints := hintSet(opts.Hints)
	var sb strings.Builder
	sb.WriteString("  a b c d e f g h\n")
	for r := 0; r < othello.Size; r++ {
		sb.WriteByte(byte('1' + r))
		for c := 0; c < othello.Size; c++ {
			sep := " "
			if opts.HasLast && opts.Last.Row == r && opts.Last.Col == c {
				sep = ">"
			}
			sb.WriteString(sep)
			switch b.At(r, c) {
			case othello.CellBlack:
				sb.WriteString(glyphBlack)
			case othello.CellWhite:
				sb.WriteString(glyphWhite)
			default:
				if hints[[2]int{r, c}] {
					sb.WriteString(glyphHint)
				} else {
					sb.WriteString(glyphEmpty)
				}
			}
		}
		if r < othello.Size-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func hintSet(moves []othello.Move) map[[2]int]bool {
	out := make(map[[2]int]bool, len(moves))
	for _, m := range moves {
		out[[2]int{m.Row, m.Col}] = true
	}
	return out
}
