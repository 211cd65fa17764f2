package othellodto

import (
	"errors"
	"testing"

	"github.com/park285/Cheese-Othello-bot/internal/othello"
)

func TestEncodeDecodeInitial(t *testing.T) {
	g := EncodeBoard(othello.Initial())
	if g[3][3] != 2 || g[4][4] != 2 || g[3][4] != 1 || g[4][3] != 1 || g[0][0] != 0 {
		t.Fatalf("unexpected encoding %v", g)
	}
	b, err := DecodeBoard(g)
	if err != nil {
		t.Fatalf("DecodeBoard: %v", err)
	}
	if b != othello.Initial() {
		t.Fatalf("decoded board differs")
	}
}

func TestDecodeBoardRejectsBadShapes(t *testing.T) {
	short := EncodeBoard(othello.Initial())[:7]
	ragged := EncodeBoard(othello.Initial())
	ragged[2] = ragged[2][:5]
	badCell := EncodeBoard(othello.Initial())
	badCell[0][0] = 3
	negative := EncodeBoard(othello.Initial())
	negative[0][0] = -1
	wrapped := EncodeBoard(othello.Initial())
	wrapped[0][0] = 257

	for name, g := range map[string]Grid{"short": short, "ragged": ragged, "cell": badCell, "negative": negative, "wrapped": wrapped, "nil": nil} {
		if _, err := DecodeBoard(g); !errors.Is(err, othello.ErrBadBoard) {
			t.Fatalf("%s: expected ErrBadBoard, got %v", name, err)
		}
	}
}

func TestDecodePlayer(t *testing.T) {
	if p, err := DecodePlayer(1); err != nil || p != othello.Black {
		t.Fatalf("DecodePlayer(1)=%v,%v", p, err)
	}
	for _, v := range []int{0, 3, -1, 257} {
		if _, err := DecodePlayer(v); err == nil {
			t.Fatalf("DecodePlayer(%d) accepted", v)
		}
	}
}
