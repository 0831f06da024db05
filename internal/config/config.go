package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/newthinker/tradevision/internal/core"
	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	LLM     LLMConfig     `mapstructure:"llm"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Mode         string        `mapstructure:"mode"`
	TemplatesDir string        `mapstructure:"templates_dir"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	MaxBodyBytes int64         `mapstructure:"max_body_bytes"`
}

type LLMConfig struct {
	Provider    string       `mapstructure:"provider"`
	MaxTokens   int          `mapstructure:"max_tokens"`
	Temperature float64      `mapstructure:"temperature"`
	Gemini      GeminiConfig `mapstructure:"gemini"`
	Claude      ClaudeConfig `mapstructure:"claude"`
	OpenAI      OpenAIConfig `mapstructure:"openai"`
	Ollama      OllamaConfig `mapstructure:"ollama"`
}

type GeminiConfig struct {
	APIKey   string `mapstructure:"api_key"`
	Model    string `mapstructure:"model"`
	Endpoint string `mapstructure:"endpoint"`
}

type ClaudeConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type OpenAIConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type OllamaConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	Model    string `mapstructure:"model"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Providers lists the supported llm.provider values.
var Providers = []string{"gemini", "claude", "openai", "ollama"}

// credentialEnv maps config keys to the conventional variable names the
// vendors document, so a bare GEMINI_API_KEY works without a config file.
var credentialEnv = map[string]string{
	"llm.gemini.api_key": "GEMINI_API_KEY",
	"llm.claude.api_key": "ANTHROPIC_API_KEY",
	"llm.openai.api_key": "OPENAI_API_KEY",
}

// LoadEnvFile loads variables from a dotenv file into the process
// environment. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// Load reads configuration from file. An empty path loads defaults plus
// environment overrides only.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Defaults())

	// Support environment variable overrides
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for key, env := range credentialEnv {
		if err := v.BindEnv(key, strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return nil, fmt.Errorf("binding %s: %w", key, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	// Expand environment variables in string values
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.mode", d.Server.Mode)
	v.SetDefault("server.templates_dir", d.Server.TemplatesDir)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)
	v.SetDefault("server.max_body_bytes", d.Server.MaxBodyBytes)

	v.SetDefault("llm.provider", d.LLM.Provider)
	v.SetDefault("llm.max_tokens", d.LLM.MaxTokens)
	v.SetDefault("llm.temperature", d.LLM.Temperature)
	v.SetDefault("llm.gemini.api_key", "")
	v.SetDefault("llm.gemini.model", d.LLM.Gemini.Model)
	v.SetDefault("llm.gemini.endpoint", d.LLM.Gemini.Endpoint)
	v.SetDefault("llm.claude.api_key", "")
	v.SetDefault("llm.claude.model", d.LLM.Claude.Model)
	v.SetDefault("llm.openai.api_key", "")
	v.SetDefault("llm.openai.model", d.LLM.OpenAI.Model)
	v.SetDefault("llm.ollama.endpoint", d.LLM.Ollama.Endpoint)
	v.SetDefault("llm.ollama.model", d.LLM.Ollama.Model)

	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("metrics.path", d.Metrics.Path)
}

// Defaults returns a config with sensible defaults
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			Mode:         "release",
			WriteTimeout: 120 * time.Second,
			MaxBodyBytes: 20 << 20,
		},
		LLM: LLMConfig{
			Provider: "gemini",
			Gemini: GeminiConfig{
				Model:    "gemini-3-flash-preview",
				Endpoint: "https://generativelanguage.googleapis.com",
			},
			Claude: ClaudeConfig{Model: "claude-sonnet-4-20250514"},
			OpenAI: OpenAIConfig{Model: "gpt-4o"},
			Ollama: OllamaConfig{
				Endpoint: "http://localhost:11434",
				Model:    "llama3.2-vision",
			},
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// Validate checks the configuration for errors. A missing API key is not a
// validation error: the server starts and reports it per request.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("port must be between 1 and 65535, got %d", c.Server.Port))
	}
	if c.Server.MaxBodyBytes <= 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("max_body_bytes must be positive, got %d", c.Server.MaxBodyBytes))
	}
	if c.Server.WriteTimeout < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("write_timeout cannot be negative, got %s", c.Server.WriteTimeout))
	}

	known := false
	for _, p := range Providers {
		if c.LLM.Provider == p {
			known = true
			break
		}
	}
	if !known {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown llm provider %q", c.LLM.Provider))
	}

	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("temperature must be between 0 and 2, got %f", c.LLM.Temperature))
	}

	return nil
}

// APIKey returns the credential of the selected provider.
func (c LLMConfig) APIKey() string {
	switch c.Provider {
	case "gemini":
		return c.Gemini.APIKey
	case "claude":
		return c.Claude.APIKey
	case "openai":
		return c.OpenAI.APIKey
	default:
		return ""
	}
}
