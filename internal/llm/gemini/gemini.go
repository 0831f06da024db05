// internal/llm/gemini/gemini.go
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/newthinker/tradevision/internal/llm"
)

const (
	defaultEndpoint = "https://generativelanguage.googleapis.com"
	defaultModel    = "gemini-3-flash-preview"
)

// Provider implements the LLM interface for the Gemini generateContent API.
type Provider struct {
	client *resty.Client
	apiKey string
	model  string
}

// New creates a new Gemini provider.
func New(apiKey, model, endpoint string) (*Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key required")
	}
	if model == "" {
		model = defaultModel
	}
	if endpoint == "" {
		endpoint = defaultEndpoint
	}

	client := resty.New()
	client.SetBaseURL(strings.TrimSuffix(endpoint, "/"))
	client.SetHeader("Content-Type", "application/json")

	return &Provider{client: client, apiKey: apiKey, model: model}, nil
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "gemini"
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type generationConfig struct {
	MaxOutputTokens  int     `json:"maxOutputTokens,omitempty"`
	Temperature      float64 `json:"temperature"`
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
}

type generateRequest struct {
	SystemInstruction *content         `json:"systemInstruction,omitempty"`
	Contents          []content        `json:"contents"`
	GenerationConfig  generationConfig `json:"generationConfig"`
}

type candidate struct {
	Content      content `json:"content"`
	FinishReason string  `json:"finishReason"`
}

type usageMetadata struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
}

type generateResponse struct {
	Candidates    []candidate   `json:"candidates"`
	UsageMetadata usageMetadata `json:"usageMetadata"`
}

// Chat sends a generateContent request to the Gemini API.
func (p *Provider) Chat(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	body := buildRequest(req)

	resp, err := p.client.R().
		SetContext(ctx).
		SetHeader("x-goog-api-key", p.apiKey).
		SetBody(body).
		Post("/v1beta/models/" + url.PathEscape(p.model) + ":generateContent")
	if err != nil {
		return nil, fmt.Errorf("gemini API error: %w", err)
	}

	if resp.IsError() {
		return nil, &llm.UpstreamError{
			Provider:   "Gemini",
			StatusCode: resp.StatusCode(),
			Body:       string(resp.Body()),
		}
	}

	var out generateResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	chatResp := &llm.ChatResponse{
		Usage: llm.Usage{
			InputTokens:  out.UsageMetadata.PromptTokenCount,
			OutputTokens: out.UsageMetadata.CandidatesTokenCount,
		},
	}
	if len(out.Candidates) > 0 {
		first := out.Candidates[0]
		chatResp.FinishReason = first.FinishReason
		if len(first.Content.Parts) > 0 {
			chatResp.Content = first.Content.Parts[0].Text
		}
	}

	return chatResp, nil
}

func buildRequest(req llm.ChatRequest) generateRequest {
	// zero leaves maxOutputTokens unset; thinking tokens count against it
	gr := generateRequest{
		GenerationConfig: generationConfig{
			MaxOutputTokens: req.MaxTokens,
			Temperature:     req.Temperature,
		},
	}
	if req.JSONMode {
		gr.GenerationConfig.ResponseMimeType = "application/json"
	}
	if req.SystemPrompt != "" {
		gr.SystemInstruction = &content{Parts: []part{{Text: req.SystemPrompt}}}
	}

	target := llm.LastUserIndex(req.Messages)
	for i, m := range req.Messages {
		role := "user"
		if m.Role == "assistant" {
			role = "model"
		}
		c := content{Role: role}
		if m.Content != "" {
			c.Parts = append(c.Parts, part{Text: m.Content})
		}
		if i == target {
			c.Parts = append(c.Parts, imageParts(req.Images)...)
		}
		gr.Contents = append(gr.Contents, c)
	}

	// Images with no user message still need a turn to ride on.
	if target < 0 && len(req.Images) > 0 {
		gr.Contents = append(gr.Contents, content{Role: "user", Parts: imageParts(req.Images)})
	}

	return gr
}

func imageParts(images []llm.Image) []part {
	parts := make([]part, 0, len(images))
	for _, img := range images {
		parts = append(parts, part{InlineData: &inlineData{MimeType: img.MimeType, Data: img.Data}})
	}
	return parts
}
