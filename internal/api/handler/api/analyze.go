// internal/api/handler/api/analyze.go
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/newthinker/tradevision/internal/analysis"
	"github.com/newthinker/tradevision/internal/api/response"
	"github.com/newthinker/tradevision/internal/core"
	"github.com/newthinker/tradevision/internal/llm"
	"github.com/newthinker/tradevision/internal/metrics"
	"go.uber.org/zap"
)

var validate = validator.New()

// Analyzer is the part of analysis.Analyzer the handler needs.
type Analyzer interface {
	Analyze(ctx context.Context, req analysis.Request) (json.RawMessage, error)
	Provider() string
}

// AnalyzeRequest is the body of POST /api/analyze.
type AnalyzeRequest struct {
	Image    string `json:"image" validate:"required"`
	MimeType string `json:"mimeType" default:"image/png"`
}

// AnalyzeConfig wires the handler. A nil Analyzer means the server has no
// usable credential; SetupErr then explains why.
type AnalyzeConfig struct {
	Analyzer     Analyzer
	SetupErr     error
	MaxBodyBytes int64
}

// AnalyzeHandler proxies a screenshot to the model and returns its verdict.
type AnalyzeHandler struct {
	analyzer Analyzer
	setupErr error
	maxBody  int64
	logger   *zap.Logger
}

// NewAnalyzeHandler creates a new analyze handler.
func NewAnalyzeHandler(cfg AnalyzeConfig, logger *zap.Logger) *AnalyzeHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	setupErr := cfg.SetupErr
	switch {
	case setupErr == nil:
		setupErr = core.ErrConfigMissing
	case !errors.Is(setupErr, core.ErrConfigMissing):
		setupErr = core.WrapError(core.ErrConfigMissing, setupErr)
	}
	return &AnalyzeHandler{
		analyzer: cfg.Analyzer,
		setupErr: setupErr,
		maxBody:  cfg.MaxBodyBytes,
		logger:   logger,
	}
}

// ServeHTTP handles POST /api/analyze.
func (h *AnalyzeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		response.Error(w, http.StatusMethodNotAllowed, core.ErrMethodNotAllowed)
		return
	}

	if h.analyzer == nil {
		h.logger.Error("analyze called without a configured provider", zap.Error(h.setupErr))
		response.Error(w, http.StatusInternalServerError, h.setupErr)
		return
	}

	req, err := h.decode(w, r)
	if err != nil {
		status, body := ErrorStatus(err)
		response.JSON(w, status, body)
		return
	}

	out, err := h.analyzer.Analyze(r.Context(), analysis.Request{
		Image:    req.Image,
		MimeType: req.MimeType,
	})
	if err != nil {
		status, body := ErrorStatus(err)
		h.logger.Warn("analysis request failed",
			zap.String("request_id", metrics.RequestID(r.Context())),
			zap.Int("status", status),
			zap.Error(err),
		)
		response.JSON(w, status, body)
		return
	}

	response.RawJSON(w, http.StatusOK, out)
}

func (h *AnalyzeHandler) decode(w http.ResponseWriter, r *http.Request) (*AnalyzeRequest, error) {
	body := r.Body
	if h.maxBody > 0 {
		body = http.MaxBytesReader(w, r.Body, h.maxBody)
	}

	var req AnalyzeRequest
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		return nil, err
	}
	if err := defaults.Set(&req); err != nil {
		return nil, err
	}
	if err := validate.StructCtx(r.Context(), &req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return nil, core.ErrNoImage
		}
		return nil, err
	}
	return &req, nil
}

// ErrorStatus maps an analysis failure to its HTTP status and payload.
func ErrorStatus(err error) (int, response.ErrorBody) {
	var upErr *llm.UpstreamError
	if errors.As(err, &upErr) {
		return upErr.StatusCode, response.ErrorBody{
			Error:   fmt.Sprintf("%s API Error: %s", upErr.Provider, upErr.StatusText()),
			Code:    core.ErrUpstream.Code,
			Details: upErr.Body,
		}
	}

	var parseErr *analysis.ParseError
	if errors.As(err, &parseErr) {
		return http.StatusInternalServerError, response.ErrorBody{
			Error: core.ErrParseFailed.Message,
			Code:  core.ErrParseFailed.Code,
			Raw:   parseErr.Raw,
		}
	}

	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return http.StatusRequestEntityTooLarge, response.ErrorBody{
			Error: fmt.Sprintf("request body exceeds %d bytes", maxErr.Limit),
			Code:  core.ErrInvalidRequest.Code,
		}
	}

	body := response.ErrorBodyFor(err)
	switch {
	case errors.Is(err, core.ErrNoImage):
		return http.StatusBadRequest, body
	case errors.Is(err, core.ErrLLMFailed):
		// the transport error is the message
		if body.Details != "" {
			body.Error, body.Details = body.Details, ""
		}
		return http.StatusInternalServerError, body
	default:
		return http.StatusInternalServerError, body
	}
}
