package othello

import (
	"fmt"
	"strconv"
	"strings"
)

// Move is a placement by Player at (Row, Col). It only means something
// relative to a specific Board.
type Move struct {
	Row    int
	Col    int
	Player Player
}

// Square renders the coordinate in algebraic form: column a-h, row 1-8.
func (m Move) Square() string { return SquareName(m.Row, m.Col) }

func (m Move) String() string {
	return m.Player.String() + " " + m.Square()
}

// SquareName formats (row, col) as "d3" style notation.
func SquareName(row, col int) string {
	if !inRange(row, col) {
		return fmt.Sprintf("(%d,%d)", row, col)
	}
	return string(rune('a'+col)) + strconv.Itoa(row+1)
}

// ParseSquare accepts "d3", "D3" or "2,3" (zero-based row,col).
func ParseSquare(s string) (row, col int, err error) {
	s = strings.TrimSpace(s)
	if r, c, ok := strings.Cut(s, ","); ok {
		row, err = strconv.Atoi(strings.TrimSpace(r))
		if err != nil {
			return 0, 0, fmt.Errorf("%w: %q", ErrBadSquare, s)
		}
		col, err = strconv.Atoi(strings.TrimSpace(c))
		if err != nil {
			return 0, 0, fmt.Errorf("%w: %q", ErrBadSquare, s)
		}
	} else {
		if len(s) != 2 {
			return 0, 0, fmt.Errorf("%w: %q", ErrBadSquare, s)
		}
		file := strings.ToLower(s[:1])[0]
		rank := s[1]
		if file < 'a' || file > 'h' || rank < '1' || rank > '8' {
			return 0, 0, fmt.Errorf("%w: %q", ErrBadSquare, s)
		}
		row, col = int(rank-'1'), int(file-'a')
	}
	if !inRange(row, col) {
		return 0, 0, fmt.Errorf("%w: %q", ErrBadSquare, s)
	}
	return row, col, nil
}
