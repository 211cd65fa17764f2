package othello

import (
	"errors"
	"math/rand"
	"reflect"
	"testing"
)

func TestInitialBoardLayout(t *testing.T) {
	b := Initial()
	want := map[[2]int]Cell{
		{3, 3}: CellWhite, {4, 4}: CellWhite,
		{3, 4}: CellBlack, {4, 3}: CellBlack,
	}
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			exp, ok := want[[2]int{r, c}]
			if !ok {
				exp = CellEmpty
			}
			if got := b.At(r, c); got != exp {
				t.Fatalf("At(%d,%d)=%v want %v", r, c, got, exp)
			}
		}
	}
	black, white, empty := Count(b)
	if black != 2 || white != 2 || empty != 60 {
		t.Fatalf("Count=%d,%d,%d", black, white, empty)
	}
}

func TestInitialLegalMovesForBlack(t *testing.T) {
	got := LegalMoves(Initial(), Black)
	want := []Move{
		{Row: 2, Col: 3, Player: Black},
		{Row: 3, Col: 2, Player: Black},
		{Row: 4, Col: 5, Player: Black},
		{Row: 5, Col: 4, Player: Black},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("LegalMoves=%v want %v", got, want)
	}
}

func TestApplyOpeningMove(t *testing.T) {
	start := Initial()
	b, err := ApplyMove(start, Move{Row: 2, Col: 3, Player: Black})
	if err != nil {
		t.Fatalf("ApplyMove: %v", err)
	}
	for _, sq := range [][2]int{{2, 3}, {3, 3}, {3, 4}, {4, 3}} {
		if b.At(sq[0], sq[1]) != CellBlack {
			t.Fatalf("expected black at %v\n%s", sq, b)
		}
	}
	if b.At(4, 4) != CellWhite {
		t.Fatalf("expected white at (4,4)\n%s", b)
	}
	black, white := Score(b)
	if black != 4 || white != 1 {
		t.Fatalf("Score=%d,%d want 4,1", black, white)
	}
	if start != Initial() {
		t.Fatalf("input board was modified")
	}
}

func TestIsLegalMoveFailsClosed(t *testing.T) {
	b := Initial()
	cases := []struct {
		name     string
		row, col int
	}{
		{"occupied", 3, 3},
		{"occupied own", 3, 4},
		{"no capture", 0, 0},
		{"adjacent empty line", 2, 2},
		{"row below", -1, 3},
		{"row above", 8, 3},
		{"col below", 3, -1},
		{"col above", 3, 8},
	}
	for _, tc := range cases {
		if IsLegalMove(b, Black, tc.row, tc.col) {
			t.Fatalf("%s: (%d,%d) reported legal", tc.name, tc.row, tc.col)
		}
	}
}

func TestApplyIllegalMoveLeavesBoard(t *testing.T) {
	b := Initial()
	got, err := ApplyMove(b, Move{Row: 0, Col: 0, Player: Black})
	if !errors.Is(err, ErrIllegalMove) {
		t.Fatalf("expected ErrIllegalMove, got %v", err)
	}
	if got != b {
		t.Fatalf("board changed on illegal move")
	}
}

func TestLegalMovesIdempotent(t *testing.T) {
	b, _ := ApplyMove(Initial(), Move{Row: 2, Col: 3, Player: Black})
	first := LegalMoves(b, White)
	second := LegalMoves(b, White)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("LegalMoves not stable: %v vs %v", first, second)
	}
}

func TestNoWrapAcrossEdges(t *testing.T) {
	// A white run at the end of row 0 must not be bounded by a black disc at
	// the start of row 1.
	b, err := ParseBoard(`
		.....BWW
		B.......
		........
		........
		........
		........
		........
		........`)
	if err != nil {
		t.Fatalf("ParseBoard: %v", err)
	}
	if IsLegalMove(b, Black, 0, 7) {
		t.Fatalf("(0,7) is occupied")
	}
	for _, m := range LegalMoves(b, Black) {
		t.Fatalf("unexpected legal move %v", m)
	}
	if HasAnyLegalMove(b, Black) {
		t.Fatalf("black should have no moves")
	}
}

func TestMultiDirectionCapture(t *testing.T) {
	b, err := ParseBoard(`
		B..B..B.
		.W.W.W..
		..WWW...
		BWW.WWWB
		..WWW...
		.W.W.W..
		B..B..B.
		........`)
	if err != nil {
		t.Fatalf("ParseBoard: %v", err)
	}
	got, err := ApplyMove(b, Move{Row: 3, Col: 3, Player: Black})
	if err != nil {
		t.Fatalf("ApplyMove: %v", err)
	}
	black, white := Score(got)
	if white != 0 {
		t.Fatalf("expected every white disc flipped, white=%d\n%s", white, got)
	}
	if black != 8+17+1 {
		t.Fatalf("black=%d\n%s", black, got)
	}
	if n := Flips(b, Move{Row: 3, Col: 3, Player: Black}); n != 17 {
		t.Fatalf("Flips=%d, want 17", n)
	}
	if n := Flips(b, Move{Row: 7, Col: 7, Player: Black}); n != 0 {
		t.Fatalf("Flips on illegal square=%d", n)
	}
	if n := Flips(b, Move{Row: 3, Col: 3}); n != 0 {
		t.Fatalf("Flips without a player=%d", n)
	}
}

// naiveFlips is the straightforward per-direction scan over a grid.
func naiveFlips(rows [Size][Size]Cell, p Player, row, col int) [][2]int {
	if rows[row][col] != CellEmpty {
		return nil
	}
	own, opp := p.Cell(), p.Opponent().Cell()
	var out [][2]int
	for _, d := range directions {
		var run [][2]int
		r, c := row+d.dr, col+d.dc
		for inRange(r, c) && rows[r][c] == opp {
			run = append(run, [2]int{r, c})
			r, c = r+d.dr, c+d.dc
		}
		if inRange(r, c) && rows[r][c] == own {
			out = append(out, run...)
		}
	}
	return out
}

func TestRandomPlayoutsAgainstScan(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for game := 0; game < 200; game++ {
		b := Initial()
		turn := Black
		for !IsTerminal(b) {
			rows := b.Rows()
			var scanned []Move
			for r := 0; r < Size; r++ {
				for c := 0; c < Size; c++ {
					if len(naiveFlips(rows, turn, r, c)) > 0 {
						scanned = append(scanned, Move{Row: r, Col: c, Player: turn})
					}
					if IsLegalMove(b, turn, r, c) != (len(naiveFlips(rows, turn, r, c)) > 0) {
						t.Fatalf("IsLegalMove disagrees at (%d,%d)\n%s", r, c, b)
					}
				}
			}
			moves := LegalMoves(b, turn)
			if len(moves) != len(scanned) || (len(moves) > 0 && !reflect.DeepEqual(moves, scanned)) {
				t.Fatalf("LegalMoves=%v scan=%v\n%s", moves, scanned, b)
			}
			if len(moves) == 0 {
				turn = turn.Opponent()
				continue
			}
			m := moves[rng.Intn(len(moves))]
			beforeOwn, beforeOpp := Score(b)
			if turn == White {
				beforeOwn, beforeOpp = beforeOpp, beforeOwn
			}
			expected := naiveFlips(rows, turn, m.Row, m.Col)
			next, err := ApplyMove(b, m)
			if err != nil {
				t.Fatalf("ApplyMove(%v): %v", m, err)
			}
			for _, sq := range expected {
				if next.At(sq[0], sq[1]) != turn.Cell() {
					t.Fatalf("square %v not flipped by %v", sq, m)
				}
			}
			afterOwn, afterOpp := Score(next)
			if turn == White {
				afterOwn, afterOpp = afterOpp, afterOwn
			}
			if afterOwn != beforeOwn+1+len(expected) || afterOpp != beforeOpp-len(expected) {
				t.Fatalf("counts %d/%d -> %d/%d for %v", beforeOwn, beforeOpp, afterOwn, afterOpp, m)
			}
			if len(expected) == 0 {
				t.Fatalf("legal move %v flipped nothing", m)
			}
			black, white, empty := Count(next)
			if black+white+empty != 64 {
				t.Fatalf("cell count %d", black+white+empty)
			}
			b = next
			turn = turn.Opponent()
		}
	}
}

func TestWinner(t *testing.T) {
	cases := []struct {
		board string
		want  Outcome
	}{
		{"BBB" + repeat('.', 61), BlackWins},
		{"BWW" + repeat('.', 61), WhiteWins},
		{"BW" + repeat('.', 62), Draw},
	}
	for _, tc := range cases {
		b, err := ParseBoard(tc.board)
		if err != nil {
			t.Fatalf("ParseBoard: %v", err)
		}
		if got := Winner(b); got != tc.want {
			t.Fatalf("Winner=%v want %v", got, tc.want)
		}
	}
}

func TestPlaced(t *testing.T) {
	start := Initial()
	next, _ := ApplyMove(start, Move{Row: 5, Col: 4, Player: Black})
	m, ok := Placed(start, next)
	if !ok || m != (Move{Row: 5, Col: 4, Player: Black}) {
		t.Fatalf("Placed=%v,%v", m, ok)
	}
	if _, ok := Placed(start, start); ok {
		t.Fatalf("Placed on identical boards should fail")
	}
}

func TestFromRowsRejectsUnknownCell(t *testing.T) {
	var rows [Size][Size]Cell
	rows[0][0] = Cell(9)
	if _, err := FromRows(rows); !errors.Is(err, ErrBadBoard) {
		t.Fatalf("expected ErrBadBoard, got %v", err)
	}
}

func TestOverlappingDiscsPanic(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	Score(Board{black: 1, white: 1})
}

func repeat(ch byte, n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = ch
	}
	return string(b)
}
