// Package authority talks to, and implements, the remote move authority:
// the HTTP service that starts games, validates human moves and picks bot
// moves.
package authority

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	"github.com/park285/Cheese-Othello-bot/internal/httpjson"
	"github.com/park285/Cheese-Othello-bot/internal/othello"
	"github.com/park285/Cheese-Othello-bot/internal/session"
	"github.com/park285/Cheese-Othello-bot/pkg/othellodto"
)

const (
	pathNewGame = "/v1/games"
	pathMove    = "/v1/moves"
	pathBotMove = "/v1/bot-moves"
	pathHealth  = "/healthz"

	headerRequestID = "X-Request-Id"
)

// Client implements the session opponent over HTTP. It does not retry: any
// failure is left to the caller's local fallback.
type Client struct {
	baseURL string
	http    *fasthttp.Client
	headers httpjson.HeaderProvider
	timeout time.Duration
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

func WithMaxConnsPerHost(n int) Option {
	return func(c *Client) { c.http.MaxConnsPerHost = n }
}

func WithHeaderProvider(h httpjson.HeaderProvider) Option {
	return func(c *Client) { c.headers = h }
}

// NewClient validates baseURL and applies options.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid authority url %q", baseURL)
	}
	c := &Client{
		baseURL: baseURL,
		http:    &fasthttp.Client{ReadTimeout: 10 * time.Second, WriteTimeout: 10 * time.Second, MaxConnsPerHost: 16},
		timeout: 3 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) NewGame(ctx context.Context) (othello.Board, error) {
	var resp othellodto.BoardResponse
	if err := c.call(ctx, fasthttp.MethodPost, pathNewGame, othellodto.NewGameRequest{}, &resp); err != nil {
		return othello.Board{}, fmt.Errorf("authority new game: %w", err)
	}
	return decode("new game", resp.Board)
}

func (c *Client) Move(ctx context.Context, board othello.Board, move othello.Move) (othello.Board, error) {
	req := othellodto.MoveRequest{
		Board:  othellodto.EncodeBoard(board),
		Player: int(move.Player),
		Row:    move.Row,
		Col:    move.Col,
	}
	var resp othellodto.BoardResponse
	if err := c.call(ctx, fasthttp.MethodPost, pathMove, req, &resp); err != nil {
		return othello.Board{}, fmt.Errorf("authority move %s: %w", move, err)
	}
	return decode("move", resp.Board)
}

func (c *Client) BotMove(ctx context.Context, board othello.Board, player othello.Player, difficulty int) (othello.Board, error) {
	req := othellodto.BotMoveRequest{
		Board:      othellodto.EncodeBoard(board),
		Player:     int(player),
		Difficulty: difficulty,
	}
	var resp othellodto.BotMoveResponse
	if err := c.call(ctx, fasthttp.MethodPost, pathBotMove, req, &resp); err != nil {
		return othello.Board{}, fmt.Errorf("authority bot move: %w", err)
	}
	return decode("bot move", resp.Board)
}

// Health checks the authority is reachable.
func (c *Client) Health(ctx context.Context) error {
	var resp othellodto.HealthResponse
	if err := c.call(ctx, fasthttp.MethodGet, pathHealth, nil, &resp); err != nil {
		return fmt.Errorf("authority health: %w", err)
	}
	if resp.Status != "ok" {
		return fmt.Errorf("authority health: status %q", resp.Status)
	}
	return nil
}

func (c *Client) call(ctx context.Context, method, path string, in, out any) error {
	headers := map[string]string{headerRequestID: uuid.NewString()}
	if c.headers != nil {
		for k, v := range c.headers() {
			headers[k] = v
		}
	}
	var apiErr othellodto.ErrorResponse
	err := httpjson.Do(ctx, c.http, httpjson.Request{
		Method:  method,
		URL:     c.baseURL + path,
		Headers: headers,
		In:      in,
		Out:     out,
		Timeout: c.timeout,
	}, &apiErr)
	var serr *httpjson.StatusError
	if errors.As(err, &serr) && apiErr.Code != "" {
		return fmt.Errorf("%w: %s: %s", err, apiErr.Code, apiErr.Message)
	}
	return err
}

func decode(op string, g othellodto.Grid) (othello.Board, error) {
	b, err := othellodto.DecodeBoard(g)
	if err != nil {
		return othello.Board{}, fmt.Errorf("authority %s: %w", op, err)
	}
	return b, nil
}

var _ session.Opponent = (*Client)(nil)
