// internal/api/server.go
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	apihandler "github.com/newthinker/tradevision/internal/api/handler/api"
	"github.com/newthinker/tradevision/internal/api/handler/web"
	"github.com/newthinker/tradevision/internal/api/response"
	"github.com/newthinker/tradevision/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Server represents the HTTP server for TradeVision
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
	mux        *http.ServeMux
	deps       Dependencies
}

// Config holds server configuration
type Config struct {
	Host         string
	Port         int
	TemplatesDir string
	// WriteTimeout bounds a whole request including the model call.
	WriteTimeout time.Duration
	MaxBodyBytes int64
	MetricsPath  string
}

// Dependencies holds the services the handlers call.
type Dependencies struct {
	// Analyzer is nil when no provider credential is configured.
	Analyzer apihandler.Analyzer
	// SetupErr explains a nil Analyzer.
	SetupErr error
	// Metrics is optional; without it /metrics is not mounted.
	Metrics *metrics.Registry
}

// HealthResponse is the body of GET /api/health.
type HealthResponse struct {
	Status     string `json:"status"`
	Provider   string `json:"provider,omitempty"`
	Configured bool   `json:"configured"`
}

// NewServer creates a new HTTP server
func NewServer(cfg Config, deps Dependencies, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	writeTimeout := cfg.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = 120 * time.Second
	}

	mux := http.NewServeMux()

	s := &Server{
		logger: logger,
		mux:    mux,
		deps:   deps,
	}

	// Set up routes
	if err := s.setupRoutes(cfg); err != nil {
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      s.handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: writeTimeout,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(cfg Config) error {
	// Web UI routes
	webHandler, err := web.NewHandler(cfg.TemplatesDir)
	if err != nil {
		return fmt.Errorf("creating web handler: %w", err)
	}
	if s.deps.Analyzer != nil {
		webHandler.SetAnalyzer(s.deps.Analyzer)
	}
	webHandler.SetUploadLimit(cfg.MaxBodyBytes)
	webHandler.SetLogger(s.logger)

	s.mux.HandleFunc("/", webHandler.Index)
	s.mux.HandleFunc("/analyze", webHandler.Analyze)
	s.mux.Handle("/static/", web.Static())

	// API routes
	s.mux.Handle("/api/analyze", apihandler.NewAnalyzeHandler(apihandler.AnalyzeConfig{
		Analyzer:     s.deps.Analyzer,
		SetupErr:     s.deps.SetupErr,
		MaxBodyBytes: cfg.MaxBodyBytes,
	}, s.logger.Named("api")))
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.deps.Metrics != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		s.mux.Handle(path, promhttp.HandlerFor(s.deps.Metrics, promhttp.HandlerOpts{}))
	}

	return nil
}

// handler wraps the mux with request logging and metrics.
func (s *Server) handler() http.Handler {
	var h http.Handler = s.mux
	if s.deps.Metrics != nil {
		h = metrics.HTTPMiddleware(s.deps.Metrics)(h)
	}
	return metrics.LoggingMiddleware(s.logger)(h)
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok"}
	if s.deps.Analyzer != nil {
		resp.Provider = s.deps.Analyzer.Provider()
		resp.Configured = true
	}
	response.JSON(w, http.StatusOK, resp)
}
