package authority

import (
	"encoding/json"
	"errors"
	"io"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/park285/Cheese-Othello-bot/internal/othello"
	"github.com/park285/Cheese-Othello-bot/internal/session"
	"github.com/park285/Cheese-Othello-bot/pkg/othellodto"
)

const maxBodyBytes = 16 << 10

// Server is a reference move authority built on the local engine.
type Server struct {
	logger  *zap.Logger
	timeout time.Duration

	randMu sync.Mutex
	rand   *rand.Rand
}

// NewServer creates a server. timeout bounds each request; zero means 5s.
func NewServer(logger *zap.Logger, seed int64, timeout time.Duration) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Server{logger: logger, timeout: timeout, rand: rand.New(rand.NewSource(seed))}
}

// Router wires the endpoints.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.timeout))

	r.Get(pathHealth, s.handleHealth)
	r.Post(pathNewGame, s.handleNewGame)
	r.Post(pathMove, s.handleMove)
	r.Post(pathBotMove, s.handleBotMove)
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, othellodto.HealthResponse{Status: "ok"})
}

func (s *Server) handleNewGame(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, othellodto.BoardResponse{Board: othellodto.EncodeBoard(othello.Initial())})
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	var req othellodto.MoveRequest
	if !readJSON(w, r, &req) {
		return
	}
	board, player, ok := decodePosition(w, req.Board, req.Player)
	if !ok {
		return
	}
	next, err := othello.ApplyMove(board, othello.Move{Row: req.Row, Col: req.Col, Player: player})
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, othellodto.CodeIllegalMove, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, othellodto.BoardResponse{Board: othellodto.EncodeBoard(next)})
}

func (s *Server) handleBotMove(w http.ResponseWriter, r *http.Request) {
	var req othellodto.BotMoveRequest
	if !readJSON(w, r, &req) {
		return
	}
	if req.Difficulty < session.MinDifficulty || req.Difficulty > session.MaxDifficulty {
		writeError(w, http.StatusBadRequest, othellodto.CodeBadRequest, session.ErrInvalidDifficulty.Error())
		return
	}
	board, player, ok := decodePosition(w, req.Board, req.Player)
	if !ok {
		return
	}

	s.randMu.Lock()
	move, found := chooseMove(board, player, req.Difficulty, s.rand)
	s.randMu.Unlock()
	if !found {
		writeError(w, http.StatusUnprocessableEntity, othellodto.CodeNoMoves, player.String()+" has no legal move")
		return
	}
	next, err := othello.ApplyMove(board, move)
	if err != nil {
		s.logger.Error("authority_bot_move_rejected", zap.String("move", move.String()), zap.Error(err))
		writeError(w, http.StatusInternalServerError, othellodto.CodeInternal, "bot chose an illegal move")
		return
	}
	s.logger.Debug("authority_bot_move",
		zap.String("player", player.String()),
		zap.String("square", move.Square()),
		zap.Int("difficulty", req.Difficulty),
	)
	writeJSON(w, http.StatusOK, othellodto.BotMoveResponse{
		Board: othellodto.EncodeBoard(next),
		Row:   move.Row,
		Col:   move.Col,
	})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("authority_request",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}

func decodePosition(w http.ResponseWriter, g othellodto.Grid, rawPlayer int) (othello.Board, othello.Player, bool) {
	board, err := othellodto.DecodeBoard(g)
	if err != nil {
		writeError(w, http.StatusBadRequest, othellodto.CodeBadRequest, err.Error())
		return othello.Board{}, 0, false
	}
	player, err := othellodto.DecodePlayer(rawPlayer)
	if err != nil {
		writeError(w, http.StatusBadRequest, othellodto.CodeBadRequest, err.Error())
		return othello.Board{}, 0, false
	}
	return board, player, true
}

func readJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, othellodto.CodeBadRequest, "malformed json: "+err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, othellodto.ErrorResponse{Code: code, Message: message})
}
