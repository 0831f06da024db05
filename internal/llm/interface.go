package llm

import (
	"context"
	"fmt"
	"net/http"
)

// Provider defines the interface for multimodal model providers.
type Provider interface {
	Name() string
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

// ChatRequest holds the request parameters
type ChatRequest struct {
	SystemPrompt string
	Messages     []Message
	// Images are attached inline to the last user message.
	Images      []Image
	MaxTokens   int
	Temperature float64
	JSONMode    bool
}

// Message represents a chat message
type Message struct {
	Role    string // "user" or "assistant"
	Content string
}

// Image is an inline image payload.
type Image struct {
	MimeType string
	// Data is base64 without the data-URL prefix.
	Data string
}

// DataURL returns the image as a data URL.
func (i Image) DataURL() string {
	return "data:" + i.MimeType + ";base64," + i.Data
}

// ChatResponse holds the response from the LLM
type ChatResponse struct {
	// Content is the text of the first generated part, empty when the
	// model produced none.
	Content      string
	Usage        Usage
	FinishReason string
}

// Usage tracks token consumption
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// UpstreamError is returned when the provider answers with a non-success
// HTTP status.
type UpstreamError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s API returned status %d: %s", e.Provider, e.StatusCode, e.Body)
}

// StatusText returns the HTTP reason phrase of the upstream status.
func (e *UpstreamError) StatusText() string {
	if text := http.StatusText(e.StatusCode); text != "" {
		return text
	}
	return fmt.Sprintf("status %d", e.StatusCode)
}

// LastUserIndex returns the index of the message images attach to, or -1.
func LastUserIndex(msgs []Message) int {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role != "assistant" {
			return i
		}
	}
	return -1
}
