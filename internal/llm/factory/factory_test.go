// internal/llm/factory/factory_test.go
package factory

import (
	"errors"
	"testing"

	"github.com/newthinker/tradevision/internal/config"
	"github.com/newthinker/tradevision/internal/core"
)

func TestNew_Gemini(t *testing.T) {
	cfg := config.LLMConfig{
		Provider: "gemini",
		Gemini: config.GeminiConfig{
			APIKey: "test-key",
			Model:  "gemini-test",
		},
	}

	p, err := New(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name() != "gemini" {
		t.Errorf("expected gemini provider, got %s", p.Name())
	}
}

func TestNew_Claude(t *testing.T) {
	cfg := config.LLMConfig{
		Provider: "claude",
		Claude: config.ClaudeConfig{
			APIKey: "test-key",
			Model:  "claude-3-sonnet",
		},
	}

	p, err := New(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name() != "claude" {
		t.Errorf("expected claude provider, got %s", p.Name())
	}
}

func TestNew_OpenAI(t *testing.T) {
	cfg := config.LLMConfig{
		Provider: "openai",
		OpenAI: config.OpenAIConfig{
			APIKey: "test-key",
			Model:  "gpt-4o",
		},
	}

	p, err := New(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name() != "openai" {
		t.Errorf("expected openai provider, got %s", p.Name())
	}
}

func TestNew_Ollama(t *testing.T) {
	cfg := config.LLMConfig{
		Provider: "ollama",
		Ollama: config.OllamaConfig{
			Endpoint: "http://localhost:11434",
			Model:    "llava",
		},
	}

	p, err := New(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name() != "ollama" {
		t.Errorf("expected ollama provider, got %s", p.Name())
	}
}

func TestNew_Unknown(t *testing.T) {
	cfg := config.LLMConfig{
		Provider: "unknown",
	}

	_, err := New(cfg)
	if !errors.Is(err, core.ErrConfigInvalid) {
		t.Errorf("expected ErrConfigInvalid, got %v", err)
	}
}

func TestNew_MissingKey(t *testing.T) {
	for _, provider := range []string{"gemini", "claude", "openai"} {
		t.Run(provider, func(t *testing.T) {
			_, err := New(config.LLMConfig{Provider: provider})
			if !errors.Is(err, core.ErrConfigMissing) {
				t.Errorf("expected ErrConfigMissing, got %v", err)
			}
		})
	}
}
