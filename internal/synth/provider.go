package synth

import (
	"fmt"
	"time"

	"github.com/dgallion1/deckreport/internal/config"
)

// ProviderConfig selects and configures the model backend.
type ProviderConfig struct {
	Provider string // "openai" or "anthropic"
	APIKey   string
	Model    string
	BaseURL  string
	Timeout  time.Duration
}

// NewClient creates a Client for the configured provider.
func NewClient(cfg ProviderConfig) (Client, error) {
	switch cfg.Provider {
	case "openai":
		return NewOpenAIClient(OpenAIConfig{
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			BaseURL: cfg.BaseURL,
			Timeout: cfg.Timeout,
		}), nil
	case "anthropic", "claude":
		return NewClaudeClient(cfg.APIKey, cfg.Model, cfg.BaseURL, cfg.Timeout), nil
	case "":
		return nil, fmt.Errorf("llm provider not specified")
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.Provider)
	}
}

// ProviderFromConfig picks the provider settings out of cfg.
func ProviderFromConfig(cfg config.Config) ProviderConfig {
	key, model, baseURL := cfg.LLMCredentials()
	return ProviderConfig{
		Provider: cfg.LLMProvider,
		APIKey:   key,
		Model:    model,
		BaseURL:  baseURL,
		Timeout:  cfg.LLMTimeout,
	}
}
