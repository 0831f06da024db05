// internal/llm/openai/openai.go
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/newthinker/tradevision/internal/llm"
	"github.com/sashabaranov/go-openai"
)

// Provider implements the LLM interface for OpenAI.
type Provider struct {
	client *openai.Client
	model  string
}

// New creates a new OpenAI provider.
func New(apiKey, model string) (*Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key required")
	}
	return NewWithConfig(openai.DefaultConfig(apiKey), model), nil
}

// NewWithConfig creates a provider from a full client config, e.g. to point
// at an OpenAI-compatible gateway.
func NewWithConfig(cfg openai.ClientConfig, model string) *Provider {
	if model == "" {
		model = "gpt-4o"
	}
	return &Provider{client: openai.NewClientWithConfig(cfg), model: model}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "openai"
}

// Chat sends a chat request to the OpenAI API.
func (p *Provider) Chat(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages)+2)

	// Add system prompt as first message if provided
	if req.SystemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.SystemPrompt,
		})
	}

	target := llm.LastUserIndex(req.Messages)
	for i, m := range req.Messages {
		if m.Role == "assistant" {
			messages = append(messages, openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleAssistant,
				Content: m.Content,
			})
			continue
		}
		msg := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser}
		if i == target && len(req.Images) > 0 {
			msg.MultiContent = append([]openai.ChatMessagePart{{
				Type: openai.ChatMessagePartTypeText,
				Text: m.Content,
			}}, imageParts(req.Images)...)
		} else {
			msg.Content = m.Content
		}
		messages = append(messages, msg)
	}
	if target < 0 && len(req.Images) > 0 {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:         openai.ChatMessageRoleUser,
			MultiContent: imageParts(req.Images),
		})
	}

	chatReq := openai.ChatCompletionRequest{
		Model:       p.model,
		Messages:    messages,
		MaxTokens:   max(req.MaxTokens, 0),
		Temperature: float32(req.Temperature),
	}

	if req.JSONMode {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := p.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		if upErr := upstreamError(err); upErr != nil {
			return nil, upErr
		}
		return nil, fmt.Errorf("openai API error: %w", err)
	}

	content := ""
	finishReason := ""
	if len(resp.Choices) > 0 {
		content = resp.Choices[0].Message.Content
		finishReason = string(resp.Choices[0].FinishReason)
	}

	return &llm.ChatResponse{
		Content: content,
		Usage: llm.Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
		},
		FinishReason: finishReason,
	}, nil
}

func imageParts(images []llm.Image) []openai.ChatMessagePart {
	parts := make([]openai.ChatMessagePart, 0, len(images))
	for _, img := range images {
		parts = append(parts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{
				URL:    img.DataURL(),
				Detail: openai.ImageURLDetailHigh,
			},
		})
	}
	return parts
}

func upstreamError(err error) *llm.UpstreamError {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
		body, _ := json.Marshal(map[string]any{"error": apiErr})
		return &llm.UpstreamError{Provider: "OpenAI", StatusCode: apiErr.HTTPStatusCode, Body: string(body)}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		return &llm.UpstreamError{Provider: "OpenAI", StatusCode: reqErr.HTTPStatusCode, Body: string(reqErr.Body)}
	}
	return nil
}
