package command

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/park285/Cheese-Othello-bot/internal/msgcat"
	"github.com/park285/Cheese-Othello-bot/internal/othello"
	"github.com/park285/Cheese-Othello-bot/internal/render"
	"github.com/park285/Cheese-Othello-bot/internal/session"
)

// Egress delivers replies to a room.
type Egress interface {
	SendText(ctx context.Context, room, message string) error
	SendImage(ctx context.Context, room string, png []byte) error
}

// Renderer draws a board image. *render.PNGRenderer satisfies it.
type Renderer interface {
	Render(b othello.Board, opts render.Options) ([]byte, error)
}

// Presenter formats sessions with the catalog and sends them out.
type Presenter struct {
	out    Egress
	cat    *msgcat.Catalog
	images Renderer
	prefix string
	logger *zap.Logger
}

// Text renders key, falling back to the internal error message and finally
// to the key itself so a broken override never silences the bot.
func (p *Presenter) Text(key string, data map[string]any) string {
	if data == nil {
		data = map[string]any{}
	}
	if _, ok := data["Prefix"]; !ok {
		data["Prefix"] = p.prefix
	}
	s, err := p.cat.Render(key, data)
	if err == nil {
		return s
	}
	p.logger.Error("catalog_render_failed", zap.String("key", key), zap.Error(err))
	if s, err := p.cat.Render("error.internal", data); err == nil {
		return s
	}
	return key
}

// Say sends a plain text reply.
func (p *Presenter) Say(ctx context.Context, room, key string, data map[string]any) {
	p.send(ctx, room, p.Text(key, data))
}

// Board sends the header lines, the text board and the status, then the PNG
// when images are enabled.
func (p *Presenter) Board(ctx context.Context, room string, s session.Session, header ...string) {
	view := s.View()
	opts := render.Options{Last: view.Last, HasLast: view.HasLast}
	if s.State() == session.StateAwaitingHuman {
		opts.Hints = s.LegalMoves()
	}

	lines := make([]string, 0, len(header)+3)
	for _, h := range header {
		if strings.TrimSpace(h) != "" {
			lines = append(lines, h)
		}
	}
	lines = append(lines, render.Text(view.Board, opts))
	lines = append(lines, p.status(s)...)
	p.send(ctx, room, strings.Join(lines, "\n"))

	if p.images == nil {
		return
	}
	img, err := p.images.Render(view.Board, opts)
	if err != nil {
		p.logger.Warn("board_render_failed", zap.String("room", room), zap.Error(err))
		return
	}
	if err := p.out.SendImage(ctx, room, img); err != nil {
		p.logger.Warn("reply_image_failed", zap.String("room", room), zap.Error(err))
	}
}

// Played is the header for a placement, with the fallback note when the
// position was computed locally.
func (p *Presenter) Played(snap session.Session) string {
	live := snap.Live()
	if !live.HasLast {
		return ""
	}
	line := p.Text("game.played", map[string]any{"Player": title(live.Last.Player.String()), "Square": live.Last.Square()})
	if live.Fallback {
		line += " " + p.Text("game.fallback", nil)
	}
	return line
}

func (p *Presenter) status(s session.Session) []string {
	black, white := othello.Score(s.View().Board)
	score := map[string]any{"Black": black, "White": white}
	switch s.State() {
	case session.StateReviewing:
		return []string{p.Text("status.reviewing", map[string]any{"Index": s.History.Cursor() + 1, "Total": s.History.Len()})}
	case session.StateGameOver:
		if w := s.Winner(); w != othello.Draw {
			score["Winner"] = title(w.String())
			return []string{p.Text("status.win", score)}
		}
		return []string{p.Text("status.draw", score)}
	}
	var out []string
	turn := s.Turn()
	if s.Passed() {
		out = append(out, p.Text("status.pass", map[string]any{"Player": title(turn.Opponent().String())}))
	}
	score["Player"] = title(turn.String())
	if s.Automated(turn) {
		return append(out, p.Text("status.thinking", score))
	}
	return append(out, p.Text("status.turn", score))
}

func (p *Presenter) send(ctx context.Context, room, text string) {
	if err := p.out.SendText(ctx, room, text); err != nil {
		p.logger.Warn("reply_text_failed", zap.String("room", room), zap.Error(err))
	}
}

func squares(moves []othello.Move) string {
	names := make([]string, len(moves))
	for i, m := range moves {
		names[i] = m.Square()
	}
	return strings.Join(names, ", ")
}

func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
