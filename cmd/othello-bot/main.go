package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/park285/Cheese-Othello-bot/internal/botbuilder"
	appcfg "github.com/park285/Cheese-Othello-bot/internal/config"
	"github.com/park285/Cheese-Othello-bot/internal/irisfast"
	"github.com/park285/Cheese-Othello-bot/internal/obslog"
)

func main() {
	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	closer, err := obslog.Init(cfg.Log)
	if err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer closer.Close()
	logger := obslog.L()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps, err := botbuilder.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("init_failed", zap.Error(err))
	}

	deps.WS.OnStateChange(func(state irisfast.WebSocketState) {
		logger.Info("ws_state", zap.String("state", state.String()))
	})
	deps.WS.OnMessage(func(msg *irisfast.Message) {
		if msg == nil || msg.Msg == "" {
			return
		}
		// keep the read loop free
		go deps.Handler.Handle(ctx, msg.Room, msg.Msg)
	})

	cctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	if err := deps.WS.Connect(cctx); err != nil {
		logger.Warn("ws_connect_failed", zap.Error(err))
	}
	cancel()

	logger.Info("bot_started",
		zap.String("prefix", cfg.BotPrefix),
		zap.Bool("authority", deps.Authority != nil),
		zap.String("egress", cfg.EgressMode),
	)
	<-ctx.Done()
	logger.Info("bot_stopping")

	shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = deps.WS.Close(shutdown)
	deps.Close()
}
