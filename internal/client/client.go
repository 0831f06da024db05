// Package client calls a running TradeVision server.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/newthinker/tradevision/internal/api/response"
)

const defaultTimeout = 2 * time.Minute

// Client is an HTTP client of /api/analyze.
type Client struct {
	http *resty.Client
}

// New creates a client for the server at baseURL.
func New(baseURL string) *Client {
	c := resty.New()
	c.SetBaseURL(strings.TrimSuffix(baseURL, "/"))
	c.SetHeader("Content-Type", "application/json")
	c.SetTimeout(defaultTimeout)
	return &Client{http: c}
}

// StatusError is a non-2xx answer from the server.
type StatusError struct {
	StatusCode int
	Status     string
	Body       string
	// Payload is the decoded error body when it was JSON.
	Payload *response.ErrorBody
}

// Error matches the message the web page shows for a failed analysis.
func (e *StatusError) Error() string {
	status := strings.TrimPrefix(e.Status, fmt.Sprintf("%d ", e.StatusCode))
	if status == "" {
		status = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("Analysis failed: %d %s - %s", e.StatusCode, status, strings.TrimSpace(e.Body))
}

type analyzeRequest struct {
	Image    string `json:"image"`
	MimeType string `json:"mimeType"`
}

// Analyze posts a base64 image and returns the server's JSON verdict.
func (c *Client) Analyze(ctx context.Context, image, mimeType string) (json.RawMessage, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(analyzeRequest{Image: image, MimeType: mimeType}).
		Post("/api/analyze")
	if err != nil {
		return nil, fmt.Errorf("posting analysis: %w", err)
	}

	if resp.IsError() {
		statusErr := &StatusError{
			StatusCode: resp.StatusCode(),
			Status:     resp.Status(),
			Body:       string(resp.Body()),
		}
		var payload response.ErrorBody
		if json.Unmarshal(resp.Body(), &payload) == nil && payload.Error != "" {
			statusErr.Payload = &payload
		}
		return nil, statusErr
	}

	return json.RawMessage(resp.Body()), nil
}
