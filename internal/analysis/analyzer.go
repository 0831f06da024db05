package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/newthinker/tradevision/internal/core"
	"github.com/newthinker/tradevision/internal/llm"
	"github.com/newthinker/tradevision/internal/metrics"
	"go.uber.org/zap"
)

// DefaultMimeType is assumed when a request does not name one.
const DefaultMimeType = "image/png"

// Request is one screenshot to analyze.
type Request struct {
	// Image is base64 without the data-URL prefix.
	Image    string
	MimeType string
}

// ParseError reports model output that is not valid JSON after fence
// stripping. Raw holds the text as generated.
type ParseError struct {
	Raw   string
	Cause error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %v", core.ErrParseFailed.Message, e.Cause)
}

// Unwrap lets errors.Is match core.ErrParseFailed.
func (e *ParseError) Unwrap() error {
	return core.WrapError(core.ErrParseFailed, e.Cause)
}

// Options tunes the model call.
type Options struct {
	MaxTokens   int
	Temperature float64
}

// Analyzer sends screenshots to a multimodal provider and returns the
// model's JSON verdict.
type Analyzer struct {
	provider llm.Provider
	opts     Options
	logger   *zap.Logger
	metrics  *metrics.Registry
}

// New creates an analyzer. metrics may be nil.
func New(provider llm.Provider, opts Options, logger *zap.Logger, reg *metrics.Registry) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{
		provider: provider,
		opts:     opts,
		logger:   logger.Named("analysis"),
		metrics:  reg,
	}
}

// Provider returns the name of the configured provider.
func (a *Analyzer) Provider() string {
	return a.provider.Name()
}

// Analyze performs exactly one provider call. The returned JSON is the
// model output, compacted.
func (a *Analyzer) Analyze(ctx context.Context, req Request) (json.RawMessage, error) {
	if req.Image == "" {
		return nil, core.ErrNoImage
	}
	mimeType := req.MimeType
	if mimeType == "" {
		mimeType = DefaultMimeType
	}
	if a.metrics != nil {
		a.metrics.ObserveImageSize(len(req.Image))
	}

	start := time.Now()
	resp, err := a.provider.Chat(ctx, llm.ChatRequest{
		SystemPrompt: SystemPrompt,
		Messages:     []llm.Message{{Role: "user", Content: userInstruction}},
		Images:       []llm.Image{{MimeType: mimeType, Data: req.Image}},
		MaxTokens:    a.opts.MaxTokens,
		Temperature:  a.opts.Temperature,
		JSONMode:     true,
	})
	elapsed := time.Since(start)

	out, err := a.interpret(resp, err)
	a.record(err, elapsed)
	return out, err
}

func (a *Analyzer) interpret(resp *llm.ChatResponse, err error) (json.RawMessage, error) {
	if err != nil {
		var upErr *llm.UpstreamError
		if errors.As(err, &upErr) {
			return nil, upErr
		}
		return nil, core.WrapError(core.ErrLLMFailed, err)
	}

	if resp == nil || resp.Content == "" {
		return nil, core.ErrNoContent
	}

	cleaned := StripFences(resp.Content)

	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(cleaned)); err != nil {
		return nil, &ParseError{Raw: resp.Content, Cause: err}
	}

	return json.RawMessage(buf.Bytes()), nil
}

func (a *Analyzer) record(err error, elapsed time.Duration) {
	provider := a.provider.Name()
	outcome := metrics.OutcomeSuccess

	var upErr *llm.UpstreamError
	var parseErr *ParseError
	switch {
	case err == nil:
	case errors.As(err, &upErr):
		outcome = metrics.OutcomeUpstream
		if a.metrics != nil {
			a.metrics.RecordUpstreamError(provider, upErr.StatusCode)
		}
	case errors.As(err, &parseErr):
		outcome = metrics.OutcomeParseFailed
	case errors.Is(err, core.ErrNoContent):
		outcome = metrics.OutcomeNoContent
	default:
		outcome = metrics.OutcomeError
	}

	if a.metrics != nil {
		a.metrics.RecordAnalysis(provider, outcome, elapsed.Seconds())
	}

	fields := []zap.Field{
		zap.String("provider", provider),
		zap.String("outcome", outcome),
		zap.Duration("elapsed", elapsed),
	}
	if err != nil {
		a.logger.Warn("analysis failed", append(fields, zap.Error(err))...)
		return
	}
	a.logger.Info("analysis complete", fields...)
}
