package session

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/park285/Cheese-Othello-bot/internal/history"
	"github.com/park285/Cheese-Othello-bot/internal/othello"
)

const (
	defaultThinkDelay  = 700 * time.Millisecond
	defaultCallTimeout = 3 * time.Second
	defaultDifficulty  = 2
)

// Config holds controller tunables. Negative durations are rejected; zero
// ThinkDelay disables the pause before automated moves.
type Config struct {
	ThinkDelay        time.Duration
	CallTimeout       time.Duration
	DefaultDifficulty int
	Seed              int64
	Now               func() time.Time
}

// DefaultConfig mirrors the values the bot ships with.
func DefaultConfig() Config {
	return Config{
		ThinkDelay:        defaultThinkDelay,
		CallTimeout:       defaultCallTimeout,
		DefaultDifficulty: defaultDifficulty,
		Seed:              time.Now().UnixNano(),
	}
}

// Controller runs the game state machine. Its transitions are pure over
// Session values; the only effects are calls to the Opponent and logging.
type Controller struct {
	opp    Opponent
	remote bool
	cfg    Config
	logger *zap.Logger

	randMu sync.Mutex
	rand   *rand.Rand
}

// NewController builds a controller. A nil opponent means offline play.
func NewController(opp Opponent, cfg Config, logger *zap.Logger) (*Controller, error) {
	if cfg.ThinkDelay < 0 {
		return nil, errors.New("session: think delay must not be negative")
	}
	if cfg.CallTimeout < 0 {
		return nil, errors.New("session: authority call timeout must not be negative")
	}
	if cfg.DefaultDifficulty == 0 {
		cfg.DefaultDifficulty = defaultDifficulty
	}
	if cfg.DefaultDifficulty < MinDifficulty || cfg.DefaultDifficulty > MaxDifficulty {
		return nil, fmt.Errorf("%w (default difficulty %d)", ErrInvalidDifficulty, cfg.DefaultDifficulty)
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	remote := opp != nil
	if opp == nil {
		opp = offline{}
	}
	return &Controller{
		opp:    opp,
		remote: remote,
		cfg:    cfg,
		logger: logger,
		rand:   rand.New(rand.NewSource(cfg.Seed)),
	}, nil
}

// SetRandomSeed reseeds the fallback move picker.
func (c *Controller) SetRandomSeed(seed int64) {
	c.randMu.Lock()
	c.rand = rand.New(rand.NewSource(seed))
	c.randMu.Unlock()
}

// NewGame asks the authority for a starting board, falling back to the
// standard opening.
func (c *Controller) NewGame(ctx context.Context, opts Options) (Session, error) {
	opts, err := opts.normalize(c.cfg.DefaultDifficulty)
	if err != nil {
		return Session{}, err
	}
	id := uuid.NewString()

	callCtx, cancel := c.callContext(ctx)
	board, err := c.opp.NewGame(callCtx)
	cancel()
	fallback := false
	if err != nil {
		if ctx.Err() != nil {
			return Session{}, ctx.Err()
		}
		c.logFallback("new_game", id, err)
		board, fallback = othello.Initial(), true
	}

	s := Session{
		ID:         id,
		Mode:       opts.Mode,
		Difficulty: opts.Difficulty,
		HumanColor: opts.HumanColor,
		History: history.New(history.Snapshot{
			Board:    board,
			Turn:     sideToMove(board, othello.Black),
			Fallback: fallback,
		}),
		StartedAt: c.cfg.Now(),
	}
	c.logger.Info("session_new_game",
		zap.String("session", id),
		zap.String("mode", string(s.Mode)),
		zap.Int("difficulty", s.Difficulty),
		zap.String("state", string(s.State())),
		zap.Bool("fallback", fallback),
	)
	return s, nil
}

// PlayHuman submits a human placement. Rejections return s unchanged.
func (c *Controller) PlayHuman(ctx context.Context, s Session, row, col int) (Session, error) {
	if !s.Started() {
		return s, ErrNoSession
	}
	switch s.State() {
	case StateReviewing:
		return s, ErrReviewing
	case StateGameOver:
		return s, ErrGameOver
	case StateAwaitingAutomated:
		return s, ErrNotHumanTurn
	}
	live := s.Live()
	if !othello.IsLegalMove(live.Board, live.Turn, row, col) {
		return s, fmt.Errorf("%w: %s", ErrIllegalMove, othello.SquareName(row, col))
	}
	move := othello.Move{Row: row, Col: col, Player: live.Turn}

	callCtx, cancel := c.callContext(ctx)
	board, err := c.opp.Move(callCtx, live.Board, move)
	cancel()
	fallback := false
	if err != nil {
		if ctx.Err() != nil {
			return s, ctx.Err()
		}
		c.logFallback("move", s.ID, err)
		board, fallback = mustApply(live.Board, move), true
	}
	return c.advance(s, history.Snapshot{Board: board, Last: move, HasLast: true, Fallback: fallback})
}

// PlayAutomated waits the thinking delay, then lets the authority choose a
// move for the side to move. Without the authority a legal move is drawn
// uniformly at random.
func (c *Controller) PlayAutomated(ctx context.Context, s Session) (Session, error) {
	if !s.Started() {
		return s, ErrNoSession
	}
	switch s.State() {
	case StateReviewing:
		return s, ErrReviewing
	case StateGameOver:
		return s, ErrGameOver
	case StateAwaitingHuman:
		return s, ErrNotAutomatedTurn
	}
	if err := sleepWithContext(ctx, c.cfg.ThinkDelay); err != nil {
		return s, err
	}
	live := s.Live()

	callCtx, cancel := c.callContext(ctx)
	board, err := c.opp.BotMove(callCtx, live.Board, live.Turn, s.Difficulty)
	cancel()
	if err == nil {
		snap := history.Snapshot{Board: board}
		if m, ok := othello.Placed(live.Board, board); ok {
			snap.Last, snap.HasLast = m, true
		}
		return c.advance(s, snap)
	}
	if ctx.Err() != nil {
		return s, ctx.Err()
	}
	c.logFallback("bot_move", s.ID, err)
	move := c.randomMove(live.Board, live.Turn)
	return c.advance(s, history.Snapshot{
		Board:    mustApply(live.Board, move),
		Last:     move,
		HasLast:  true,
		Fallback: true,
	})
}

// advance records snap and picks the next side: the opponent if it can move,
// otherwise the mover again, otherwise nobody and the game is over.
func (c *Controller) advance(s Session, snap history.Snapshot) (Session, error) {
	mover := s.Turn()
	snap.Turn = sideToMove(snap.Board, mover.Opponent())
	h, err := s.History.Push(snap)
	if err != nil {
		return s, err
	}
	next := s
	next.History = h

	fields := []zap.Field{zap.String("session", s.ID), zap.String("mover", mover.String())}
	if snap.HasLast {
		fields = append(fields, zap.String("square", snap.Last.Square()))
	}
	c.logger.Debug("session_move", append(fields, zap.Bool("fallback", snap.Fallback))...)

	switch {
	case next.Over():
		black, white := othello.Score(snap.Board)
		c.logger.Info("session_game_over",
			zap.String("session", s.ID),
			zap.String("winner", next.Winner().String()),
			zap.Int("black", black),
			zap.Int("white", white),
		)
	case snap.Turn == mover:
		c.logger.Info("session_pass",
			zap.String("session", s.ID),
			zap.String("passed", mover.Opponent().String()),
		)
	}
	return next, nil
}

func (c *Controller) randomMove(b othello.Board, p othello.Player) othello.Move {
	moves := othello.LegalMoves(b, p)
	if len(moves) == 0 {
		panic(fmt.Sprintf("session: automated turn for %s with no legal moves\n%s", p, b))
	}
	c.randMu.Lock()
	i := c.rand.Intn(len(moves))
	c.randMu.Unlock()
	return moves[i]
}

func (c *Controller) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.cfg.CallTimeout > 0 {
		return context.WithTimeout(ctx, c.cfg.CallTimeout)
	}
	return context.WithCancel(ctx)
}

func (c *Controller) logFallback(op, id string, err error) {
	if !c.remote {
		c.logger.Debug("authority_offline", zap.String("op", op), zap.String("session", id))
		return
	}
	c.logger.Warn("authority_fallback", zap.String("op", op), zap.String("session", id), zap.Error(err))
}

// sideToMove returns preferred if it has a move, else its opponent if that
// side has one. When neither can move preferred is returned and the position
// is terminal.
func sideToMove(b othello.Board, preferred othello.Player) othello.Player {
	if othello.HasAnyLegalMove(b, preferred) {
		return preferred
	}
	if othello.HasAnyLegalMove(b, preferred.Opponent()) {
		return preferred.Opponent()
	}
	return preferred
}

// mustApply is used only after a legality check, so failure is a bug.
func mustApply(b othello.Board, m othello.Move) othello.Board {
	next, err := othello.ApplyMove(b, m)
	if err != nil {
		panic(fmt.Sprintf("session: checked move rejected: %v", err))
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
