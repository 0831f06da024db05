package main

import (
	"fmt"

	"github.com/newthinker/tradevision/internal/analysis"
	"github.com/newthinker/tradevision/internal/config"
	"github.com/newthinker/tradevision/internal/llm/factory"
	"github.com/newthinker/tradevision/internal/logger"
	"github.com/newthinker/tradevision/internal/metrics"
	"go.uber.org/zap"
)

// loadConfig reads --config (or defaults plus environment) and validates it.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg *config.Config, level string) *zap.Logger {
	return logger.Must(logger.Options{
		Development: debug || cfg.Server.Mode == "debug",
		Level:       level,
	})
}

// newAnalyzer builds the configured provider. A missing credential is
// reported as core.ErrConfigMissing.
func newAnalyzer(cfg *config.Config, log *zap.Logger, reg *metrics.Registry) (*analysis.Analyzer, error) {
	provider, err := factory.New(cfg.LLM)
	if err != nil {
		return nil, err
	}
	return analysis.New(provider, analysis.Options{
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
	}, log, reg), nil
}
