package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/park285/Cheese-Othello-bot/internal/authority"
	appcfg "github.com/park285/Cheese-Othello-bot/internal/config"
	"github.com/park285/Cheese-Othello-bot/internal/obslog"
)

func main() {
	cfg, err := appcfg.LoadAuthority()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	closer, err := obslog.Init(cfg.Log)
	if err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer closer.Close()
	logger := obslog.L()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           authority.NewServer(logger.Named("authority"), cfg.Seed, cfg.RequestTimeout).Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("authority_listening", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("authority_listen_failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdown); err != nil {
		logger.Error("authority_shutdown_failed", zap.Error(err))
	}
}
