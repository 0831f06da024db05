// internal/llm/ollama/ollama.go
package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/newthinker/tradevision/internal/llm"
)

// Provider implements the LLM interface for a local Ollama vision model.
type Provider struct {
	endpoint string
	model    string
	client   *resty.Client
}

// New creates a new Ollama provider.
func New(endpoint, model string) (*Provider, error) {
	if endpoint == "" {
		endpoint = "http://localhost:11434"
	}
	if model == "" {
		model = "llama3.2-vision"
	}
	endpoint = strings.TrimSuffix(endpoint, "/")

	client := resty.New()
	client.SetBaseURL(endpoint)
	client.SetHeader("Content-Type", "application/json")
	client.SetTimeout(5 * time.Minute) // local inference on large images is slow

	return &Provider{
		endpoint: endpoint,
		model:    model,
		client:   client,
	}, nil
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "ollama"
}

// ollamaRequest represents the request to Ollama API.
type ollamaRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Options  ollamaOptions   `json:"options,omitempty"`
	Format   string          `json:"format,omitempty"`
}

type ollamaMessage struct {
	Role    string   `json:"role"`
	Content string   `json:"content"`
	Images  []string `json:"images,omitempty"`
}

type ollamaOptions struct {
	NumPredict  int     `json:"num_predict,omitempty"`
	Temperature float64 `json:"temperature"`
}

// ollamaResponse represents the response from Ollama API.
type ollamaResponse struct {
	Model           string        `json:"model"`
	CreatedAt       string        `json:"created_at"`
	Message         ollamaMessage `json:"message"`
	Done            bool          `json:"done"`
	DoneReason      string        `json:"done_reason,omitempty"`
	PromptEvalCount int           `json:"prompt_eval_count,omitempty"`
	EvalCount       int           `json:"eval_count,omitempty"`
}

// Chat sends a chat request to the Ollama API.
func (p *Provider) Chat(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	messages := make([]ollamaMessage, 0, len(req.Messages)+2)

	// Add system prompt as first message if provided
	if req.SystemPrompt != "" {
		messages = append(messages, ollamaMessage{
			Role:    "system",
			Content: req.SystemPrompt,
		})
	}

	images := make([]string, 0, len(req.Images))
	for _, img := range req.Images {
		images = append(images, img.Data)
	}

	target := llm.LastUserIndex(req.Messages)
	for i, m := range req.Messages {
		msg := ollamaMessage{Role: m.Role, Content: m.Content}
		if i == target {
			msg.Images = images
		}
		messages = append(messages, msg)
	}
	if target < 0 && len(images) > 0 {
		messages = append(messages, ollamaMessage{Role: "user", Images: images})
	}

	ollamaReq := ollamaRequest{
		Model:    p.model,
		Messages: messages,
		Stream:   false,
		Options: ollamaOptions{
			NumPredict:  max(req.MaxTokens, 0),
			Temperature: req.Temperature,
		},
	}

	if req.JSONMode {
		ollamaReq.Format = "json"
	}

	resp, err := p.client.R().
		SetContext(ctx).
		SetBody(ollamaReq).
		Post("/api/chat")
	if err != nil {
		return nil, fmt.Errorf("ollama API error: %w", err)
	}

	if resp.IsError() {
		return nil, &llm.UpstreamError{
			Provider:   "Ollama",
			StatusCode: resp.StatusCode(),
			Body:       string(resp.Body()),
		}
	}

	var ollamaResp ollamaResponse
	if err := json.Unmarshal(resp.Body(), &ollamaResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	return &llm.ChatResponse{
		Content: ollamaResp.Message.Content,
		Usage: llm.Usage{
			InputTokens:  ollamaResp.PromptEvalCount,
			OutputTokens: ollamaResp.EvalCount,
		},
		FinishReason: ollamaResp.DoneReason,
	}, nil
}
