// internal/llm/claude/claude.go
package claude

import (
	"context"
	"errors"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/newthinker/tradevision/internal/llm"
)

// defaultMaxTokens is sent when no limit is configured; the Messages API
// requires one.
const defaultMaxTokens = 8192

// Provider implements the LLM interface for Claude/Anthropic.
type Provider struct {
	client anthropic.Client
	model  string
}

// New creates a new Claude provider.
func New(apiKey, model string, opts ...option.RequestOption) (*Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key required")
	}
	if model == "" {
		model = "claude-sonnet-4-20250514"
	}
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(0)}, opts...)
	client := anthropic.NewClient(opts...)
	return &Provider{client: client, model: model}, nil
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "claude"
}

// Chat sends a chat request to the Claude API.
func (p *Provider) Chat(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	target := llm.LastUserIndex(req.Messages)

	messages := make([]anthropic.MessageParam, 0, len(req.Messages)+1)
	for i, m := range req.Messages {
		if m.Role == "assistant" {
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
			continue
		}
		var blocks []anthropic.ContentBlockParamUnion
		if i == target {
			blocks = imageBlocks(req.Images)
		}
		blocks = append(blocks, anthropic.NewTextBlock(m.Content))
		messages = append(messages, anthropic.NewUserMessage(blocks...))
	}
	if target < 0 && len(req.Images) > 0 {
		messages = append(messages, anthropic.NewUserMessage(imageBlocks(req.Images)...))
	}

	maxTokens := int64(req.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(p.model),
		MaxTokens:   maxTokens,
		Messages:    messages,
		Temperature: anthropic.Float(req.Temperature),
	}

	if req.SystemPrompt != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: req.SystemPrompt},
		}
	}

	resp, err := p.client.Messages.New(ctx, params)
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return nil, &llm.UpstreamError{
				Provider:   "Claude",
				StatusCode: apiErr.StatusCode,
				Body:       apiErr.RawJSON(),
			}
		}
		return nil, fmt.Errorf("claude API error: %w", err)
	}

	content := ""
	if len(resp.Content) > 0 && resp.Content[0].Type == "text" {
		content = resp.Content[0].Text
	}

	return &llm.ChatResponse{
		Content: content,
		Usage: llm.Usage{
			InputTokens:  int(resp.Usage.InputTokens),
			OutputTokens: int(resp.Usage.OutputTokens),
		},
		FinishReason: string(resp.StopReason),
	}, nil
}

func imageBlocks(images []llm.Image) []anthropic.ContentBlockParamUnion {
	blocks := make([]anthropic.ContentBlockParamUnion, 0, len(images))
	for _, img := range images {
		blocks = append(blocks, anthropic.NewImageBlockBase64(img.MimeType, img.Data))
	}
	return blocks
}
