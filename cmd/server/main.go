package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clipfetch/internal/api"
	"clipfetch/internal/api/handler"
	"clipfetch/internal/config"
	"clipfetch/internal/fetch"
	"clipfetch/internal/tool"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// Parse flags
	configPath := flag.String("config", "", "Path to config file")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("clipfetch %s (built %s)\n", Version, BuildTime)
		os.Exit(0)
	}

	// Setup logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("starting clipfetch",
		"version", Version,
		"build_time", BuildTime,
	)

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Ensure working directory exists
	if err := os.MkdirAll(cfg.Download.WorkDir, 0755); err != nil {
		logger.Error("failed to create working directory", "error", err)
		os.Exit(1)
	}

	// External collaborators
	fetcher := tool.NewFetchTool(cfg.Tools.FetchTool)
	transcoder := tool.NewTranscoder(cfg.Tools.Transcoder)

	// Report missing tools at startup. Not fatal: each request re-probes,
	// so a tool installed later is picked up without a restart.
	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 10*time.Second)
	svc := fetch.NewService(fetcher, transcoder, cfg.Download, logger)
	if err := svc.CheckDependencies(startupCtx); err != nil {
		logger.Warn("external tool unavailable", "error", err)
	}
	cancelStartup()

	// Initialize handlers
	downloadHandler := handler.NewDownloadHandler(svc, logger)
	healthHandler := handler.NewHealthHandler(svc)

	// Setup router
	router := api.NewRouter(downloadHandler, healthHandler, cfg.Server.APIKey, cfg.Download.Timeout.Std())

	// Setup HTTP server
	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout.Std(),
		WriteTimeout: cfg.Server.WriteTimeout.Std(),
	}

	// Start server in goroutine
	go func() {
		logger.Info("starting HTTP server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
