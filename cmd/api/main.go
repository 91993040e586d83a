package main

import (
	"context"
	"dcf_valuation/pkg/api"
	"dcf_valuation/pkg/core/config"
	"dcf_valuation/pkg/core/logger"
	"dcf_valuation/pkg/core/pipeline"
	"dcf_valuation/pkg/core/store"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	cfg, err := config.Load(config.DefaultPath)
	if err != nil {
		fmt.Printf("[FATAL] Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})
	logger.SetGlobalLogger(log)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	source, err := pipeline.BuildSource(ctx, cfg, log)
	cancel()
	if err != nil {
		fmt.Printf("[FATAL] Failed to initialize %s source: %v\n", cfg.Source, err)
		os.Exit(1)
	}
	defer store.Close()

	srv := api.New(cfg, source, log)

	fmt.Printf("API server starting on :%d (source: %s)...\n", cfg.Port, cfg.Source)
	fmt.Println("  - GET  /health")
	fmt.Println("  - GET  /api/config")
	fmt.Println("  - POST /api/valuation/dcf")
	fmt.Println("  - POST /api/valuation/report")

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		fmt.Printf("[FATAL] Server failed to start: %v\n", err)
		store.Close()
		os.Exit(1)
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
}
