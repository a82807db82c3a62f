package ai

import (
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// ClientConfig points an OpenAI-compatible client at a provider.
type ClientConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// NewOpenAICompatibleClient builds a client for any provider speaking the
// OpenAI REST dialect (OpenAI, DashScope, Ollama, vLLM, ...).
func NewOpenAICompatibleClient(cfg ClientConfig) *openai.Client {
	opts := []option.RequestOption{option.WithMaxRetries(0)}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimRight(base, "/")+"/"))
	}
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}
	client := openai.NewClient(opts...)
	return &client
}
