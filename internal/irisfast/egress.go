package irisfast

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
)

// Egress sends replies to a room.
type Egress interface {
	SendText(ctx context.Context, room, message string) error
	SendImage(ctx context.Context, room string, png []byte) error
}

const (
	TransportHTTP = "http"
	TransportWS   = "ws"
	TransportAuto = "auto"
)

var (
	_ Egress = (*Client)(nil)
	_ Egress = (*WebSocket)(nil)
)

// NewEgress picks the reply transport. auto prefers the websocket while it is
// connected and falls back to HTTP once per reply. dryrun logs instead of
// sending.
func NewEgress(mode string, dryrun bool, c *Client, ws *WebSocket, logger *zap.Logger) (Egress, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	var out Egress
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case TransportWS:
		if ws == nil {
			return nil, errors.New("irisfast: ws egress needs a websocket")
		}
		out = ws
	case TransportAuto:
		if ws == nil || c == nil {
			return nil, errors.New("irisfast: auto egress needs both transports")
		}
		out = &autoEgress{ws: ws, http: c, logger: logger}
	case "", TransportHTTP:
		if c == nil {
			return nil, errors.New("irisfast: http egress needs a client")
		}
		out = c
	default:
		return nil, errors.New("irisfast: unknown egress mode " + mode)
	}
	if dryrun {
		return dryRun{logger: logger}, nil
	}
	return out, nil
}

type autoEgress struct {
	ws     *WebSocket
	http   *Client
	logger *zap.Logger
}

func (a *autoEgress) SendText(ctx context.Context, room, message string) error {
	if a.ws.State() == WSStateConnected {
		err := a.ws.SendText(ctx, room, message)
		if err == nil {
			return nil
		}
		a.logger.Warn("egress_fallback", zap.String("type", replyText), zap.String("room", room), zap.Error(err))
	}
	return a.http.SendText(ctx, room, message)
}

func (a *autoEgress) SendImage(ctx context.Context, room string, png []byte) error {
	if a.ws.State() == WSStateConnected {
		err := a.ws.SendImage(ctx, room, png)
		if err == nil {
			return nil
		}
		a.logger.Warn("egress_fallback", zap.String("type", replyImage), zap.String("room", room), zap.Error(err))
	}
	return a.http.SendImage(ctx, room, png)
}

type dryRun struct{ logger *zap.Logger }

func (d dryRun) SendText(_ context.Context, room, message string) error {
	d.logger.Info("egress_dryrun", zap.String("type", replyText), zap.String("room", room), zap.String("message", message))
	return nil
}

func (d dryRun) SendImage(_ context.Context, room string, png []byte) error {
	d.logger.Info("egress_dryrun", zap.String("type", replyImage), zap.String("room", room), zap.Int("bytes", len(png)))
	return nil
}
