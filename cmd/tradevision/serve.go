package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newthinker/tradevision/internal/api"
	"github.com/newthinker/tradevision/internal/core"
	"github.com/newthinker/tradevision/internal/metrics"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the TradeVision server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Initialize logger
	log := newLogger(cfg, "")
	defer log.Sync()

	if cfgFile == "" {
		log.Warn("no config file specified, using defaults and environment")
	}

	deps := api.Dependencies{}
	if cfg.Metrics.Enabled {
		deps.Metrics = metrics.NewRegistry()
	}

	analyzer, err := newAnalyzer(cfg, log, deps.Metrics)
	switch {
	case err == nil:
		deps.Analyzer = analyzer
	case errors.Is(err, core.ErrConfigMissing):
		// serve the UI anyway; analysis requests answer with the config error
		log.Warn("no model credential configured", zap.String("provider", cfg.LLM.Provider), zap.Error(err))
		deps.SetupErr = err
	default:
		return fmt.Errorf("creating provider: %w", err)
	}

	log.Info("starting TradeVision server",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
		zap.String("provider", cfg.LLM.Provider),
	)

	// Create API server
	server, err := api.NewServer(api.Config{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		TemplatesDir: cfg.Server.TemplatesDir,
		WriteTimeout: cfg.Server.WriteTimeout,
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
		MetricsPath:  cfg.Metrics.Path,
	}, deps, log)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	log.Info("shutting down TradeVision server")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return server.Shutdown(ctx)
}
