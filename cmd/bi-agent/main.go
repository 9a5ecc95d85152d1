// cmd/bi-agent/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"bi-agent/internal/ai"
	"bi-agent/internal/boards"
	"bi-agent/internal/common/config"
	"bi-agent/internal/common/logger"
	"bi-agent/internal/common/observability"
	"bi-agent/internal/engine/analytics"
	"bi-agent/internal/engine/intent"
	"bi-agent/internal/engine/normalize"
	"bi-agent/internal/server"
	"bi-agent/internal/service"
)

func main() {
	bootLog := logger.New("info", "console")
	bootLog.Info("Starting bi-agent...")

	cfg, err := config.Load()
	if err != nil {
		bootLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	fetcher := boards.NewClient(cfg.Boards.APIURL, cfg.Boards.APIKey, cfg.Boards.Timeout, log)

	// Without an API key the resolver runs heuristics only and summaries use
	// the deterministic fallback.
	var provider intent.Provider
	var summarizer service.Summarizer
	if cfg.AI.APIKey != "" {
		client := ai.NewClient(cfg.AI, log)
		provider = client
		summarizer = client
	} else {
		zapLog.Warn("no AI API key configured; using keyword heuristics and formatted summaries")
	}

	resolver := intent.New(provider, cfg.Intent.Sectors, time.Now, log)
	normalizer := normalize.New(log)
	engine := analytics.New(cfg.Analytics.ProbabilityWeighting, log)

	svc := service.New(cfg.Boards, resolver, fetcher, normalizer, engine, summarizer, obs, log)

	srv := server.New(cfg.Server.Port, time.Duration(cfg.Server.ReadTimeout)*time.Millisecond, svc, log)

	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("http server failed", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Millisecond)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zapLog.Error("shutdown failed", zap.Error(err))
	}

	zapLog.Info("Shutdown complete")
}
