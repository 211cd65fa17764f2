package session

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/park285/Cheese-Othello-bot/internal/guard"
)

const (
	leasePrefix   = "othello:lease:"
	leaseAttempts = 3
)

var leaseRetryDelay = 100 * time.Millisecond

// Table holds the live Session for one room and drives automated turns.
// At most one move request is outstanding at a time; while it is, Busy
// reports true and Play, Undo and Redo fail with ErrBusy.
//
// Start during a pending automated turn cancels that turn. Its result, if it
// still arrives, is discarded.
type Table struct {
	name   string
	ctrl   *Controller
	guard  guard.Guard
	logger *zap.Logger

	mu        sync.Mutex
	cur       Session
	gen       uint64
	busy      bool
	cancel    context.CancelFunc
	closed    bool
	observers []func(Session)
	wg        sync.WaitGroup
}

// NewTable creates an empty table. A nil guard uses an in-memory one.
func NewTable(name string, ctrl *Controller, g guard.Guard, logger *zap.Logger) *Table {
	if g == nil {
		g = guard.NewMemory(0)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Table{name: name, ctrl: ctrl, guard: g, logger: logger.With(zap.String("table", name))}
}

// OnChange registers fn to receive every Session produced by an automated
// turn. fn runs on the automated-turn goroutine, in move order.
func (t *Table) OnChange(fn func(Session)) {
	t.mu.Lock()
	t.observers = append(t.observers, fn)
	t.mu.Unlock()
}

// Snapshot returns the current session, if any.
func (t *Table) Snapshot() (Session, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cur, t.cur.Started()
}

// Busy reports whether a move request is outstanding.
func (t *Table) Busy() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.busy
}

// Start replaces the current game.
func (t *Table) Start(ctx context.Context, opts Options) (Session, error) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return Session{}, ErrClosed
	}
	t.gen++
	gen := t.gen
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
		t.logger.Info("table_pending_turn_cancelled")
	}
	t.busy = false
	t.mu.Unlock()

	s, err := t.ctrl.NewGame(ctx, opts)
	if err != nil {
		return Session{}, err
	}
	s.Generation = gen

	t.mu.Lock()
	defer t.mu.Unlock()
	if gen != t.gen || t.closed {
		return s, ErrSuperseded
	}
	t.cur = s
	t.scheduleLocked()
	return s, nil
}

// Play submits a human move and, if the bot is next, starts its turn.
func (t *Table) Play(ctx context.Context, row, col int) (Session, error) {
	t.mu.Lock()
	s, gen, err := t.beginLocked()
	if err == nil {
		t.busy = true
	}
	t.mu.Unlock()
	if err != nil {
		return s, err
	}

	next, err := t.withLease(ctx, s, func() (Session, error) {
		return t.ctrl.PlayHuman(ctx, s, row, col)
	})

	t.mu.Lock()
	defer t.mu.Unlock()
	if gen != t.gen || t.closed {
		return t.cur, ErrSuperseded
	}
	t.busy = false
	if err != nil {
		return t.cur, err
	}
	t.cur = next
	t.scheduleLocked()
	return next, nil
}

// Undo steps back through history.
func (t *Table) Undo() (Session, error) {
	return t.navigate(Session.Undo)
}

// Redo steps forward; reaching the tail may hand the turn back to the bot.
func (t *Table) Redo() (Session, error) {
	return t.navigate(Session.Redo)
}

func (t *Table) navigate(step func(Session) (Session, error)) (Session, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, _, err := t.beginLocked(); err != nil {
		return t.cur, err
	}
	next, err := step(t.cur)
	if err != nil {
		return t.cur, err
	}
	t.cur = next
	t.scheduleLocked()
	return next, nil
}

// Close cancels any pending turn and waits for it to wind down.
func (t *Table) Close() {
	t.mu.Lock()
	t.closed = true
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	t.mu.Unlock()
	t.wg.Wait()
}

// Wait blocks until no automated turn goroutine is running.
func (t *Table) Wait() { t.wg.Wait() }

// beginLocked checks the table can take a request.
func (t *Table) beginLocked() (Session, uint64, error) {
	switch {
	case t.closed:
		return t.cur, 0, ErrClosed
	case !t.cur.Started():
		return t.cur, 0, ErrNoSession
	case t.busy:
		return t.cur, 0, ErrBusy
	}
	return t.cur, t.gen, nil
}

func (t *Table) withLease(ctx context.Context, s Session, fn func() (Session, error)) (Session, error) {
	release, err := t.guard.Acquire(ctx, leasePrefix+s.ID)
	switch {
	case err == nil:
		defer release()
	case errors.Is(err, guard.ErrHeld):
		return s, ErrBusy
	case ctx.Err() != nil:
		return s, ctx.Err()
	default:
		t.logger.Warn("table_lease_unavailable", zap.String("session", s.ID), zap.Error(err))
	}
	return fn()
}

// automatedLease retries the lease with a growing delay. If the guard keeps
// failing the turn runs unleased; the busy flag still serialises requests
// within this process.
func (t *Table) automatedLease(ctx context.Context, id string) (func(), error) {
	var err error
	for attempt := 1; attempt <= leaseAttempts; attempt++ {
		var release func()
		release, err = t.guard.Acquire(ctx, leasePrefix+id)
		if err == nil {
			return release, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		t.logger.Debug("table_lease_retry", zap.String("session", id), zap.Int("attempt", attempt), zap.Error(err))
		if attempt < leaseAttempts {
			if sleepErr := sleepWithContext(ctx, time.Duration(attempt)*leaseRetryDelay); sleepErr != nil {
				return nil, sleepErr
			}
		}
	}
	t.logger.Warn("table_lease_unavailable", zap.String("session", id), zap.Error(err))
	return func() {}, nil
}

// scheduleLocked starts the automated turn loop when the bot is to move.
func (t *Table) scheduleLocked() {
	if t.closed || t.busy || t.cur.State() != StateAwaitingAutomated {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.cancel = cancel
	t.busy = true
	t.wg.Add(1)
	go t.runAutomated(ctx, cancel, t.gen)
}

// runAutomated plays automated moves until a human is to move, the game
// ends, or the generation changes. BotVsBot games run to completion here.
func (t *Table) runAutomated(ctx context.Context, cancel context.CancelFunc, gen uint64) {
	defer t.wg.Done()
	defer cancel()
	for {
		t.mu.Lock()
		if gen != t.gen || t.closed {
			t.mu.Unlock()
			return
		}
		s := t.cur
		t.mu.Unlock()

		release, err := t.automatedLease(ctx, s.ID)
		var next Session
		if err == nil {
			next, err = t.ctrl.PlayAutomated(ctx, s)
			release()
		}

		t.mu.Lock()
		if gen != t.gen || t.closed {
			t.mu.Unlock()
			t.logger.Debug("table_automated_result_discarded", zap.String("session", s.ID))
			return
		}
		if err != nil {
			t.busy = false
			t.cancel = nil
			t.mu.Unlock()
			t.logger.Warn("table_automated_turn_failed", zap.String("session", s.ID), zap.Error(err))
			return
		}
		t.cur = next
		more := next.State() == StateAwaitingAutomated
		if !more {
			t.busy = false
			t.cancel = nil
		}
		observers := slices.Clone(t.observers)
		t.mu.Unlock()

		for _, fn := range observers {
			fn(next)
		}
		if !more {
			return
		}
	}
}
