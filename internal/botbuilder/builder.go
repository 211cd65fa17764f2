// Package botbuilder turns AppConfig into the bot's running components.
package botbuilder

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/park285/Cheese-Othello-bot/internal/authority"
	"github.com/park285/Cheese-Othello-bot/internal/command"
	"github.com/park285/Cheese-Othello-bot/internal/config"
	"github.com/park285/Cheese-Othello-bot/internal/guard"
	"github.com/park285/Cheese-Othello-bot/internal/irisfast"
	"github.com/park285/Cheese-Othello-bot/internal/msgcat"
	"github.com/park285/Cheese-Othello-bot/internal/render"
	"github.com/park285/Cheese-Othello-bot/internal/session"
)

const (
	healthTimeout       = 3 * time.Second
	wsReconnectAttempts = 5
)

type Deps struct {
	Iris       *irisfast.Client
	WS         *irisfast.WebSocket
	Egress     irisfast.Egress
	Authority  *authority.Client // nil in offline mode
	Controller *session.Controller
	Guard      guard.Guard
	Handler    *command.Handler

	redis *redis.Client
}

func New(ctx context.Context, cfg *config.AppConfig, logger *zap.Logger) (*Deps, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &Deps{}

	headers := gatewayHeaders(cfg)
	d.Iris = irisfast.NewClient(cfg.IrisBaseURL, irisfast.WithHeaderProvider(headers))
	d.WS = irisfast.NewWebSocket(cfg.IrisWSURL, wsReconnectAttempts, logger.Named("ws"))
	d.WS.SetHeaderProvider(headers)
	egress, err := irisfast.NewEgress(cfg.EgressMode, cfg.DryRun, d.Iris, d.WS, logger)
	if err != nil {
		return nil, err
	}
	d.Egress = egress

	// Authority (optional)
	var opp session.Opponent
	if cfg.AuthorityURL != "" {
		client, err := authority.NewClient(cfg.AuthorityURL, authority.WithTimeout(cfg.AuthorityTimeout))
		if err != nil {
			return nil, fmt.Errorf("init authority client: %w", err)
		}
		hctx, cancel := context.WithTimeout(ctx, healthTimeout)
		if err := client.Health(hctx); err != nil {
			logger.Warn("authority_unhealthy_at_start", zap.String("url", cfg.AuthorityURL), zap.Error(err))
		}
		cancel()
		d.Authority = client
		opp = client
	} else {
		logger.Info("authority_disabled", zap.String("reason", "AUTHORITY_URL not set"))
	}

	ctrl, err := session.NewController(opp, session.Config{
		ThinkDelay:        cfg.ThinkDelay,
		CallTimeout:       cfg.AuthorityTimeout,
		DefaultDifficulty: cfg.DefaultDifficulty,
		Seed:              time.Now().UnixNano(),
	}, logger.Named("session"))
	if err != nil {
		return nil, fmt.Errorf("init controller: %w", err)
	}
	d.Controller = ctrl

	// Guard: Redis when configured, in-process otherwise
	if strings.TrimSpace(cfg.RedisURL) != "" {
		rdb, err := guard.DialRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("init guard: %w", err)
		}
		d.redis = rdb
		d.Guard = guard.NewRedis(rdb, cfg.GuardTTL, logger.Named("guard"))
	} else {
		d.Guard = guard.NewMemory(cfg.GuardTTL)
	}

	cat, err := msgcat.New(cfg.MessagesDir)
	if err != nil {
		d.Close()
		return nil, fmt.Errorf("init messages: %w", err)
	}

	var renderer command.Renderer
	if cfg.RenderImages {
		renderer = render.NewPNGRenderer()
	}

	d.Handler, err = command.NewHandler(cfg.BotPrefix, cfg.AllowedRooms, command.Deps{
		Controller: ctrl,
		Guard:      d.Guard,
		Catalog:    cat,
		Egress:     d.Egress,
		Renderer:   renderer,
		Logger:     logger.Named("command"),
	})
	if err != nil {
		d.Close()
		return nil, err
	}
	return d, nil
}

// Close stops the tables and releases the Redis connection. The websocket is
// closed by the caller, which owns its lifetime.
func (d *Deps) Close() {
	if d.Handler != nil {
		d.Handler.Close()
	}
	if d.redis != nil {
		_ = d.redis.Close()
	}
}

func gatewayHeaders(cfg *config.AppConfig) irisfast.HeaderProvider {
	return func() map[string]string {
		h := map[string]string{}
		if cfg.XUserID != "" {
			h["X-User-Id"] = cfg.XUserID
		}
		if cfg.XUserEmail != "" {
			h["X-User-Email"] = cfg.XUserEmail
		}
		if cfg.XSessionID != "" {
			h["X-Session-Id"] = cfg.XSessionID
		}
		return h
	}
}
