package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/allencass/aistudio/pkg/apperr"
	"github.com/allencass/aistudio/pkg/claude"
	"github.com/allencass/aistudio/pkg/config"
	"github.com/allencass/aistudio/pkg/gemini"
	"github.com/allencass/aistudio/pkg/openai"
	"github.com/allencass/aistudio/pkg/retry"
)

// Client is the common interface for text-generation providers
type Client interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
	GenerateContentWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	Close()
}

// Providers
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

// Settings selects and configures a provider. Model, temperature and the
// token cap are fixed for the life of the client.
type Settings struct {
	Provider    string // empty: inferred from Model
	Model       string
	Temperature float64
	MaxTokens   int
	BaseURL     string // OpenAI-compatible endpoint override

	OpenAIKey    string
	AnthropicKey string
	GeminiKey    string

	Retry   retry.Config
	Limiter *retry.RateLimiter
}

// SettingsFromConfig builds Settings from loaded configuration
func SettingsFromConfig(cfg *config.Config) Settings {
	return Settings{
		Provider:     cfg.Text.Provider,
		Model:        cfg.Text.Model,
		Temperature:  cfg.Text.Temperature,
		MaxTokens:    cfg.Text.MaxTokens,
		BaseURL:      cfg.Text.BaseURL,
		OpenAIKey:    cfg.OpenAIKey,
		AnthropicKey: cfg.AnthropicKey,
		GeminiKey:    cfg.GeminiKey,
		Retry:        retry.NoRetry().WithMaxRetries(cfg.Retry.MaxRetries),
		Limiter:      retry.NewRateLimiter(cfg.Retry.RatePerSecond),
	}
}

// WithRequestKey returns a copy of s that uses key for the resolved
// provider when no key is configured for it. A configured key always wins.
func (s Settings) WithRequestKey(key string) Settings {
	key = strings.TrimSpace(key)
	if key == "" {
		return s
	}
	provider, _ := ProviderFor(s.Provider, s.Model)
	switch provider {
	case ProviderAnthropic:
		if s.AnthropicKey == "" {
			s.AnthropicKey = key
		}
	case ProviderGemini:
		if s.GeminiKey == "" {
			s.GeminiKey = key
		}
	default:
		if s.OpenAIKey == "" {
			s.OpenAIKey = key
		}
	}
	return s
}

// ProviderFor resolves the provider for a model. An explicit provider
// wins over the model prefix.
func ProviderFor(provider, model string) (string, error) {
	switch provider {
	case ProviderOpenAI, ProviderAnthropic, ProviderGemini:
		return provider, nil
	case "":
	default:
		return "", fmt.Errorf("unknown provider: %s (use openai, anthropic or gemini)", provider)
	}

	switch {
	case openai.IsModelSupported(model):
		return ProviderOpenAI, nil
	case strings.HasPrefix(model, "claude-"):
		return ProviderAnthropic, nil
	case strings.HasPrefix(model, "gemini-"):
		return ProviderGemini, nil
	default:
		return "", fmt.Errorf("unknown model: %s (use gpt-*, o*, claude-* or gemini-*)", model)
	}
}

// CredentialEnv names the env var holding the key for a provider
func CredentialEnv(provider string) string {
	switch provider {
	case ProviderAnthropic:
		return claude.APIKeyEnv
	case ProviderGemini:
		return gemini.APIKeyEnv
	default:
		return openai.APIKeyEnv
	}
}

// Credential returns the configured key for the provider s resolves to
func (s Settings) Credential() (provider, key string, err error) {
	provider, err = ProviderFor(s.Provider, s.Model)
	if err != nil {
		return "", "", err
	}
	switch provider {
	case ProviderAnthropic:
		return provider, s.AnthropicKey, nil
	case ProviderGemini:
		return provider, s.GeminiKey, nil
	default:
		return provider, s.OpenAIKey, nil
	}
}

// NewClient creates a client for the provider s resolves to. A missing
// key is reported before any network call.
func NewClient(s Settings) (Client, error) {
	provider, key, err := s.Credential()
	if err != nil {
		return nil, err
	}
	if key == "" {
		return nil, apperr.MissingCredential("ai.new_client", CredentialEnv(provider))
	}

	switch provider {
	case ProviderAnthropic:
		return claude.NewClient(claude.Config{
			APIKey:      key,
			Model:       s.Model,
			Temperature: s.Temperature,
			MaxTokens:   s.MaxTokens,
			Retry:       s.Retry,
			Limiter:     s.Limiter,
		})
	case ProviderGemini:
		return gemini.NewClient(gemini.Config{
			APIKey:      key,
			Model:       s.Model,
			Temperature: s.Temperature,
			MaxTokens:   s.MaxTokens,
			Retry:       s.Retry,
			Limiter:     s.Limiter,
		})
	default:
		return openai.NewClient(openai.Config{
			APIKey:      key,
			Model:       s.Model,
			BaseURL:     s.BaseURL,
			Temperature: s.Temperature,
			MaxTokens:   s.MaxTokens,
			Retry:       s.Retry,
			Limiter:     s.Limiter,
		})
	}
}

// IsModelSupported checks if a model is known to any provider
func IsModelSupported(model string) bool {
	return openai.IsModelSupported(model) ||
		claude.IsAgentSupported(model) ||
		gemini.IsAgentSupported(model)
}

// SupportedModels returns the known models of every provider
func SupportedModels() []string {
	models := []string{}
	models = append(models, openai.SupportedModels...)
	models = append(models, claude.SupportedAgents...)
	models = append(models, gemini.SupportedAgents...)
	return models
}
