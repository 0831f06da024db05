// internal/llm/factory/factory.go
package factory

import (
	"fmt"

	"github.com/newthinker/tradevision/internal/config"
	"github.com/newthinker/tradevision/internal/core"
	"github.com/newthinker/tradevision/internal/llm"
	"github.com/newthinker/tradevision/internal/llm/claude"
	"github.com/newthinker/tradevision/internal/llm/gemini"
	"github.com/newthinker/tradevision/internal/llm/ollama"
	"github.com/newthinker/tradevision/internal/llm/openai"
)

// New creates an LLM provider based on configuration. A missing API key
// yields core.ErrConfigMissing.
func New(cfg config.LLMConfig) (llm.Provider, error) {
	switch cfg.Provider {
	case "gemini":
		if cfg.APIKey() == "" {
			return nil, missingKey("gemini")
		}
		return gemini.New(cfg.APIKey(), cfg.Gemini.Model, cfg.Gemini.Endpoint)
	case "claude":
		if cfg.APIKey() == "" {
			return nil, missingKey("claude")
		}
		return claude.New(cfg.APIKey(), cfg.Claude.Model)
	case "openai":
		if cfg.APIKey() == "" {
			return nil, missingKey("openai")
		}
		return openai.New(cfg.APIKey(), cfg.OpenAI.Model)
	case "ollama":
		return ollama.New(cfg.Ollama.Endpoint, cfg.Ollama.Model)
	default:
		return nil, core.WrapError(core.ErrConfigInvalid, fmt.Errorf("unknown LLM provider: %s", cfg.Provider))
	}
}

func missingKey(provider string) error {
	return core.WrapError(core.ErrConfigMissing, fmt.Errorf("%s api_key not set", provider))
}
