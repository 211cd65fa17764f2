package authority

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/park285/Cheese-Othello-bot/internal/httpjson"
	"github.com/park285/Cheese-Othello-bot/internal/othello"
	"github.com/park285/Cheese-Othello-bot/internal/session"
)

func newTestAuthority(t *testing.T) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(NewServer(nil, 1, time.Second).Router())
	t.Cleanup(srv.Close)
	c, err := NewClient(srv.URL, WithTimeout(2*time.Second))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c, srv
}

func TestClientNewGame(t *testing.T) {
	c, _ := newTestAuthority(t)
	b, err := c.NewGame(context.Background())
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	if b != othello.Initial() {
		t.Fatalf("unexpected board\n%s", b)
	}
	if err := c.Health(context.Background()); err != nil {
		t.Fatalf("Health: %v", err)
	}
}

func TestClientMoveMatchesEngine(t *testing.T) {
	c, _ := newTestAuthority(t)
	m := othello.Move{Row: 2, Col: 3, Player: othello.Black}
	got, err := c.Move(context.Background(), othello.Initial(), m)
	if err != nil {
		t.Fatalf("Move: %v", err)
	}
	want, _ := othello.ApplyMove(othello.Initial(), m)
	if got != want {
		t.Fatalf("authority board differs\n%s\nwant\n%s", got, want)
	}
}

func TestClientIllegalMoveIsStatusError(t *testing.T) {
	c, _ := newTestAuthority(t)
	_, err := c.Move(context.Background(), othello.Initial(), othello.Move{Row: 0, Col: 0, Player: othello.Black})
	var serr *httpjson.StatusError
	if !errors.As(err, &serr) || serr.Status != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 status error, got %v", err)
	}
	if !strings.Contains(err.Error(), "illegal_move") {
		t.Fatalf("error lacks code: %v", err)
	}
}

func TestClientBotMoveIsLegalSuccessor(t *testing.T) {
	c, _ := newTestAuthority(t)
	for difficulty := 1; difficulty <= 3; difficulty++ {
		start := othello.Initial()
		got, err := c.BotMove(context.Background(), start, othello.Black, difficulty)
		if err != nil {
			t.Fatalf("BotMove(%d): %v", difficulty, err)
		}
		m, ok := othello.Placed(start, got)
		if !ok || m.Player != othello.Black || !othello.IsLegalMove(start, othello.Black, m.Row, m.Col) {
			t.Fatalf("difficulty %d: not a legal successor\n%s", difficulty, got)
		}
		want, _ := othello.ApplyMove(start, m)
		if got != want {
			t.Fatalf("difficulty %d: flips differ", difficulty)
		}
	}
}

func TestClientBotMoveRejectsBadDifficulty(t *testing.T) {
	c, _ := newTestAuthority(t)
	_, err := c.BotMove(context.Background(), othello.Initial(), othello.Black, 7)
	var serr *httpjson.StatusError
	if !errors.As(err, &serr) || serr.Status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestClientUnreachable(t *testing.T) {
	c, srv := newTestAuthority(t)
	srv.Close()
	if _, err := c.NewGame(context.Background()); err == nil {
		t.Fatalf("expected error from closed server")
	}
}

func TestClientRejectsMalformedBoard(t *testing.T) {
	wrapped := `{"board":[[257,0,0,0,0,0,0,0]` + strings.Repeat(`,[0,0,0,0,0,0,0,0]`, 7) + `]}`
	for name, body := range map[string]string{"ragged": `{"board":[[0,1],[2]]}`, "wrapped cell": wrapped} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(body))
		}))
		c, err := NewClient(srv.URL)
		if err != nil {
			srv.Close()
			t.Fatalf("NewClient: %v", err)
		}
		_, err = c.NewGame(context.Background())
		srv.Close()
		if !errors.Is(err, othello.ErrBadBoard) {
			t.Fatalf("%s: expected ErrBadBoard, got %v", name, err)
		}
	}
}

func TestNewClientValidatesURL(t *testing.T) {
	for _, u := range []string{"", "localhost:8081", "://x"} {
		if _, err := NewClient(u); err == nil {
			t.Fatalf("NewClient(%q) accepted", u)
		}
	}
}

func TestControllerUsesRemoteAuthority(t *testing.T) {
	c, _ := newTestAuthority(t)
	ctrl, err := session.NewController(c, session.Config{CallTimeout: 2 * time.Second, Seed: 3}, nil)
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	ctx := context.Background()
	s, err := ctrl.NewGame(ctx, session.Options{Mode: session.HumanVsBot, Difficulty: 3})
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	s, err = ctrl.PlayHuman(ctx, s, 2, 3)
	if err != nil {
		t.Fatalf("PlayHuman: %v", err)
	}
	s, err = ctrl.PlayAutomated(ctx, s)
	if err != nil {
		t.Fatalf("PlayAutomated: %v", err)
	}
	for i := 0; i < s.History.Len(); i++ {
		snap, _ := s.History.At(i)
		if snap.Fallback {
			t.Fatalf("move %d used the fallback", i)
		}
	}
	if !s.Live().HasLast || s.Live().Last.Player != othello.White {
		t.Fatalf("bot move not inferred: %+v", s.Live())
	}
}

func TestControllerFallsBackWhenAuthorityDown(t *testing.T) {
	c, srv := newTestAuthority(t)
	srv.Close()
	ctrl, err := session.NewController(c, session.Config{CallTimeout: time.Second, Seed: 3}, nil)
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	ctx := context.Background()
	s, err := ctrl.NewGame(ctx, session.Options{Mode: session.HumanVsHuman})
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	s, err = ctrl.PlayHuman(ctx, s, 2, 3)
	if err != nil {
		t.Fatalf("PlayHuman: %v", err)
	}
	want, _ := othello.ApplyMove(othello.Initial(), othello.Move{Row: 2, Col: 3, Player: othello.Black})
	if s.Live().Board != want || !s.Live().Fallback {
		t.Fatalf("fallback not applied")
	}
}

func TestChooseMovePrefersCornerAtLevelThree(t *testing.T) {
	b, err := othello.ParseBoard(`
		.WB.....
		W.......
		B.......
		........
		........
		........
		........
		........`)
	if err != nil {
		t.Fatalf("ParseBoard: %v", err)
	}
	rng := rand.New(rand.NewSource(1))
	m, ok := chooseMove(b, othello.Black, 3, rng)
	if !ok || m.Row != 0 || m.Col != 0 {
		t.Fatalf("level 3 chose %v", m)
	}
	if _, ok := chooseMove(othello.Board{}, othello.Black, 2, rng); ok {
		t.Fatalf("empty board should have no move")
	}
}

func TestChooseMoveMaximisesFlips(t *testing.T) {
	b, err := othello.ParseBoard(`
		BWWW....
		........
		........
		........
		.....W..
		......B.
		........
		........`)
	if err != nil {
		t.Fatalf("ParseBoard: %v", err)
	}
	m, ok := chooseMove(b, othello.Black, 2, rand.New(rand.NewSource(1)))
	if !ok || m.Row != 0 || m.Col != 4 {
		t.Fatalf("level 2 chose %v", m)
	}
}
