// Package irisfast talks to the Iris chat gateway: replies go out over HTTP,
// inbound messages arrive on a websocket.
package irisfast

import (
	"context"
	"encoding/base64"
	"strings"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/park285/Cheese-Othello-bot/internal/httpjson"
)

const pathReply = "/reply"

// HeaderProvider supplies per-request headers such as X-User-Id.
type HeaderProvider = httpjson.HeaderProvider

// Client sends replies through the gateway's HTTP API.
type Client struct {
	baseURL string
	http    *fasthttp.Client
	headers HeaderProvider

	defaultTimeout time.Duration
	retryMax       int
}

// Option configures a Client.
type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.defaultTimeout = d }
}

func WithMaxConnsPerHost(n int) Option {
	return func(c *Client) { c.http.MaxConnsPerHost = n }
}

func WithHeaderProvider(h HeaderProvider) Option {
	return func(c *Client) { c.headers = h }
}

// WithRetry sets the attempt count for replies. Values below 1 mean one attempt.
func WithRetry(n int) Option {
	return func(c *Client) { c.retryMax = n }
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		http:           &fasthttp.Client{ReadTimeout: 10 * time.Second, WriteTimeout: 10 * time.Second, MaxConnsPerHost: 64},
		defaultTimeout: 10 * time.Second,
		retryMax:       3,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SendText posts a text reply to room.
func (c *Client) SendText(ctx context.Context, room, message string) error {
	return c.reply(ctx, ReplyRequest{Type: replyText, Room: room, Data: message})
}

// SendImage posts a PNG reply to room.
func (c *Client) SendImage(ctx context.Context, room string, png []byte) error {
	return c.reply(ctx, ReplyRequest{Type: replyImage, Room: room, Data: encodeImage(png)})
}

func (c *Client) reply(ctx context.Context, body ReplyRequest) error {
	var hdr map[string]string
	if c.headers != nil {
		hdr = c.headers()
	}
	return httpjson.Do(ctx, c.http, httpjson.Request{
		Method:  fasthttp.MethodPost,
		URL:     c.baseURL + pathReply,
		Headers: hdr,
		In:      body,
		Timeout: c.defaultTimeout,
		Retry:   c.retryMax,
	}, nil)
}

func encodeImage(png []byte) string {
	return base64.StdEncoding.EncodeToString(png)
}
