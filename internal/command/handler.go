package command

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/park285/Cheese-Othello-bot/internal/guard"
	"github.com/park285/Cheese-Othello-bot/internal/msgcat"
	"github.com/park285/Cheese-Othello-bot/internal/othello"
	"github.com/park285/Cheese-Othello-bot/internal/session"
)

const asyncReplyTimeout = 15 * time.Second

// Deps are the collaborators of a Handler. Renderer may be nil to send text
// boards only.
type Deps struct {
	Controller *session.Controller
	Guard      guard.Guard
	Catalog    *msgcat.Catalog
	Egress     Egress
	Renderer   Renderer
	Logger     *zap.Logger
}

// Handler keeps one Table per room and answers commands addressed to the bot.
type Handler struct {
	prefix  string
	allowed map[string]struct{}
	ctrl    *session.Controller
	guard   guard.Guard
	present *Presenter
	logger  *zap.Logger

	mu     sync.Mutex
	tables map[string]*session.Table
	closed bool
}

// NewHandler validates deps. An empty allowedRooms accepts every room.
func NewHandler(prefix string, allowedRooms []string, deps Deps) (*Handler, error) {
	if strings.TrimSpace(prefix) == "" {
		return nil, errors.New("command: prefix is required")
	}
	if deps.Controller == nil || deps.Catalog == nil || deps.Egress == nil {
		return nil, errors.New("command: controller, catalog and egress are required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	g := deps.Guard
	if g == nil {
		g = guard.NewMemory(0)
	}
	h := &Handler{
		prefix: strings.TrimSpace(prefix),
		ctrl:   deps.Controller,
		guard:  g,
		logger: logger,
		tables: make(map[string]*session.Table),
		present: &Presenter{
			out:    deps.Egress,
			cat:    deps.Catalog,
			images: deps.Renderer,
			prefix: strings.TrimSpace(prefix),
			logger: logger,
		},
	}
	if len(allowedRooms) > 0 {
		h.allowed = make(map[string]struct{}, len(allowedRooms))
		for _, r := range allowedRooms {
			h.allowed[r] = struct{}{}
		}
	}
	return h, nil
}

// Handle processes one chat message. It returns false when the message was
// not a command for this bot or came from a room that is not allowed.
func (h *Handler) Handle(ctx context.Context, room, text string) bool {
	cmd, ok := Parse(h.prefix, text)
	if !ok {
		return false
	}
	if h.allowed != nil {
		if _, ok := h.allowed[room]; !ok {
			h.logger.Debug("command_room_ignored", zap.String("room", room))
			return false
		}
	}
	h.logger.Debug("command_received", zap.String("room", room), zap.String("command", cmd.Name), zap.Strings("args", cmd.Args))

	tbl, err := h.table(room)
	if err != nil {
		h.reject(ctx, room, err)
		return true
	}

	switch cmd.Name {
	case CmdHelp:
		h.present.send(ctx, room, seeMore(h.present.Text("help", nil)))
	case CmdStart:
		h.start(ctx, room, tbl, cmd.Args)
	case CmdPlay:
		h.play(ctx, room, tbl, cmd.Args)
	case CmdUndo:
		h.navigate(ctx, room, tbl.Undo)
	case CmdRedo:
		h.navigate(ctx, room, tbl.Redo)
	case CmdStatus:
		s, ok := tbl.Snapshot()
		if !ok {
			h.reject(ctx, room, session.ErrNoSession)
			return true
		}
		h.present.Board(ctx, room, s)
	case CmdMoves:
		h.moves(ctx, room, tbl)
	default:
		h.present.Say(ctx, room, "error.unknown_command", map[string]any{"Input": cmd.Name})
	}
	return true
}

// Close stops every table. Later commands are answered with an error.
func (h *Handler) Close() {
	h.mu.Lock()
	h.closed = true
	tables := make([]*session.Table, 0, len(h.tables))
	for _, t := range h.tables {
		tables = append(tables, t)
	}
	h.mu.Unlock()
	for _, t := range tables {
		t.Close()
	}
}

func (h *Handler) table(room string) (*session.Table, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, session.ErrClosed
	}
	if t, ok := h.tables[room]; ok {
		return t, nil
	}
	t := session.NewTable(room, h.ctrl, h.guard, h.logger)
	t.OnChange(func(s session.Session) { h.announce(room, s) })
	h.tables[room] = t
	return t, nil
}

// announce posts an automated move. It runs on the table's bot goroutine.
func (h *Handler) announce(room string, s session.Session) {
	ctx, cancel := context.WithTimeout(context.Background(), asyncReplyTimeout)
	defer cancel()
	h.present.Board(ctx, room, s, h.present.Played(s))
}

func (h *Handler) start(ctx context.Context, room string, tbl *session.Table, args []string) {
	opts, bad, err := parseStart(args)
	if err != nil {
		h.rejectInput(ctx, room, err, bad)
		return
	}
	s, err := tbl.Start(ctx, opts)
	if err != nil {
		h.reject(ctx, room, err)
		return
	}
	data := map[string]any{"Mode": modeLabel(s.Mode), "Difficulty": s.Difficulty, "Human": ""}
	if s.Mode == session.HumanVsBot {
		data["Human"] = title(s.HumanColor.String())
	}
	h.logger.Info("command_game_started", zap.String("room", room), zap.String("session", s.ID), zap.String("mode", string(s.Mode)))
	h.present.Board(ctx, room, s, h.present.Text("game.started", data))
}

func (h *Handler) play(ctx context.Context, room string, tbl *session.Table, args []string) {
	if len(args) == 0 {
		h.present.Say(ctx, room, "help", nil)
		return
	}
	row, col, err := othello.ParseSquare(args[0])
	if err != nil {
		h.rejectInput(ctx, room, err, args[0])
		return
	}
	s, err := tbl.Play(ctx, row, col)
	if err != nil {
		if errors.Is(err, session.ErrIllegalMove) {
			h.present.Say(ctx, room, "error.illegal_move", map[string]any{
				"Square": othello.SquareName(row, col),
				"Moves":  squares(s.LegalMoves()),
			})
			return
		}
		h.reject(ctx, room, err)
		return
	}
	h.present.Board(ctx, room, s, h.present.Played(s))
}

func (h *Handler) navigate(ctx context.Context, room string, step func() (session.Session, error)) {
	s, err := step()
	if err != nil {
		h.reject(ctx, room, err)
		return
	}
	h.present.Board(ctx, room, s)
}

func (h *Handler) moves(ctx context.Context, room string, tbl *session.Table) {
	s, ok := tbl.Snapshot()
	if !ok {
		h.reject(ctx, room, session.ErrNoSession)
		return
	}
	if s.Over() {
		h.reject(ctx, room, session.ErrGameOver)
		return
	}
	data := map[string]any{"Player": title(s.Turn().String())}
	moves := s.LegalMoves()
	if len(moves) == 0 {
		h.present.Say(ctx, room, "moves.empty", data)
		return
	}
	data["Moves"] = squares(moves)
	h.present.Say(ctx, room, "moves.list", data)
}

func (h *Handler) reject(ctx context.Context, room string, err error) {
	h.rejectInput(ctx, room, err, "")
}

func (h *Handler) rejectInput(ctx context.Context, room string, err error, input string) {
	key := errorKey(err)
	switch key {
	case "":
		h.logger.Debug("command_result_dropped", zap.String("room", room), zap.Error(err))
		return
	case "error.internal":
		h.logger.Error("command_failed", zap.String("room", room), zap.Error(err))
	}
	h.present.Say(ctx, room, key, map[string]any{"Input": input})
}

// errorKey maps an error to its catalog entry. An empty key means no reply.
func errorKey(err error) string {
	switch {
	case errors.Is(err, session.ErrSuperseded):
		return ""
	case errors.Is(err, session.ErrNoSession):
		return "error.no_game"
	case errors.Is(err, session.ErrBusy):
		return "error.busy"
	case errors.Is(err, session.ErrReviewing):
		return "error.reviewing"
	case errors.Is(err, session.ErrNotHumanTurn):
		return "error.not_your_turn"
	case errors.Is(err, session.ErrGameOver):
		return "error.game_over"
	case errors.Is(err, session.ErrInvalidMode):
		return "error.invalid_mode"
	case errors.Is(err, session.ErrInvalidDifficulty):
		return "error.invalid_difficulty"
	case errors.Is(err, session.ErrUndoNotAvailable):
		return "error.undo_unavailable"
	case errors.Is(err, session.ErrNotReviewing):
		return "error.not_reviewing"
	case errors.Is(err, othello.ErrBadSquare):
		return "error.bad_square"
	}
	return "error.internal"
}

// parseStart reads "[hh|hb|bb] [1-3] [black|white]" in any order. bad is the
// offending token on error.
func parseStart(args []string) (opts session.Options, bad string, err error) {
	for _, arg := range args {
		if n, convErr := strconv.Atoi(arg); convErr == nil {
			if n < session.MinDifficulty || n > session.MaxDifficulty {
				return opts, arg, session.ErrInvalidDifficulty
			}
			opts.Difficulty = n
			continue
		}
		if p, ok := othello.ParsePlayer(arg); ok {
			opts.HumanColor = p
			continue
		}
		mode, modeErr := session.ParseMode(arg)
		if modeErr != nil {
			return opts, arg, modeErr
		}
		opts.Mode = mode
	}
	return opts, "", nil
}

func modeLabel(m session.Mode) string {
	switch m {
	case session.HumanVsHuman:
		return "human vs human"
	case session.HumanVsBot:
		return "human vs bot"
	case session.BotVsBot:
		return "bot vs bot"
	}
	return string(m)
}
