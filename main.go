package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/keerthanaelangovan28-web/resume-ranker/internal/api"
	"github.com/keerthanaelangovan28-web/resume-ranker/internal/config"
	"github.com/keerthanaelangovan28-web/resume-ranker/internal/llm"
	"github.com/keerthanaelangovan28-web/resume-ranker/internal/logger"
	"github.com/keerthanaelangovan28-web/resume-ranker/internal/ranker"
	"github.com/keerthanaelangovan28-web/resume-ranker/internal/scoring"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("resume-ranker: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	zl, err := logger.New(cfg.Log.JSON, cfg.Log.Debug)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer zl.Sync()

	ctx := context.Background()

	// Without a credential the service still accepts uploads and serves
	// documents; analysis runs are rejected until one is configured.
	var analyzer ranker.Analyzer
	if cfg.HasCredential() {
		client, err := llm.NewClient(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
		if err != nil {
			return fmt.Errorf("init analysis client: %w", err)
		}
		analyzer = scoring.NewAnalyzer(client, zl, cfg.Gemini.Timeout)
		zl.Info("analysis service configured", zap.String("model", cfg.Gemini.Model))
	} else {
		zl.Warn("no analysis credential configured; ranking runs will be rejected")
	}

	pipeline := ranker.New(analyzer, zl)
	server := api.NewServer(pipeline, zl, cfg.Upload.MaxBytes)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zl.Info("listening", zap.Int("port", cfg.Server.Port))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case sig := <-stop:
		zl.Info("shutting down", zap.String("signal", sig.String()))
	}

	pipeline.CancelRun()

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
