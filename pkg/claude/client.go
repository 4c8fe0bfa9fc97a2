package claude

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/allencass/aistudio/pkg/apperr"
	"github.com/allencass/aistudio/pkg/retry"
)

const (
	DefaultAgent = "claude-sonnet-4"
	APIKeyEnv    = "ANTHROPIC_API_KEY"

	defaultMaxTokens = 4096
)

var SupportedAgents = []string{
	"claude-sonnet-4",
	"claude-sonnet-4-5",
	"claude-opus-4",
	"claude-opus-4-5",
	"claude-haiku-4",
	"claude-haiku-4-5",
}

// Map friendly agent names to Anthropic model IDs
var modelMapping = map[string]string{
	"claude-sonnet-4":   "claude-sonnet-4-20250514",
	"claude-sonnet-4-5": "claude-sonnet-4-5-20250929",
	"claude-opus-4":     "claude-opus-4-20250514",
	"claude-opus-4-5":   "claude-opus-4-5-20251101",
	"claude-haiku-4":    "claude-haiku-4-20250514",
	"claude-haiku-4-5":  "claude-haiku-4-5-20251001",
}

func IsAgentSupported(agent string) bool {
	for _, a := range SupportedAgents {
		if a == agent {
			return true
		}
	}
	return false
}

type Config struct {
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float64
	MaxTokens   int
	Retry       retry.Config
	Limiter     *retry.RateLimiter
}

type Client struct {
	client anthropic.Client
	cfg    Config
	model  string
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, apperr.MissingCredential("claude.new_client", APIKeyEnv)
	}

	model := cfg.Model
	if model == "" {
		model = DefaultAgent
	}
	// Map agent name to Anthropic model ID
	modelID, ok := modelMapping[model]
	if !ok {
		modelID = model // fallback to raw value if not in mapping
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}

	// retries go through retry.Do so the SDK's own are disabled
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &Client{
		client: anthropic.NewClient(opts...),
		cfg:    cfg,
		model:  modelID,
	}, nil
}

func (c *Client) GenerateContent(ctx context.Context, prompt string) (string, error) {
	return c.GenerateContentWithSystem(ctx, "", prompt)
}

// statusOf extracts the HTTP status from an SDK error, or 0
func statusOf(err error) int {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// isRetryableError checks if an error should trigger a retry
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	switch statusOf(err) {
	case http.StatusTooManyRequests, http.StatusServiceUnavailable, 529:
		return true
	}
	errStr := err.Error()
	// Retry on rate limits, overloaded, and temporary network issues
	return strings.Contains(errStr, "rate_limit") ||
		strings.Contains(errStr, "overloaded") ||
		strings.Contains(errStr, "timeout")
}

// formatAPIError converts API errors to user-friendly messages
func formatAPIError(err error, model string) error {
	if err == nil {
		return nil
	}
	const op = "claude.generate"
	status := statusOf(err)
	errStr := err.Error()

	switch {
	case status == http.StatusUnauthorized || strings.Contains(errStr, "authentication_error"):
		return apperr.External(op, "claude API error: invalid API key. Check "+APIKeyEnv+" environment variable", err)
	case status == http.StatusForbidden || strings.Contains(errStr, "permission_error"):
		return apperr.External(op, fmt.Sprintf("claude API error: key does not have access to model %q. Check your Anthropic account permissions", model), err)
	case status == http.StatusNotFound || strings.Contains(errStr, "not_found"):
		return apperr.External(op, fmt.Sprintf("claude API error: model %q not found. Verify the model name is correct", model), err)
	case status == http.StatusTooManyRequests || strings.Contains(errStr, "rate_limit"):
		return apperr.External(op, fmt.Sprintf("claude API error: rate limit exceeded for model %q. Please wait and try again", model), err)
	case status == 529 || strings.Contains(errStr, "overloaded"):
		return apperr.External(op, "claude API error: service overloaded. Please try again later", err)
	default:
		return apperr.External(op, "claude API error", err)
	}
}

// GenerateContentWithSystem sends a prompt with a cached system message
// The system prompt is marked for caching (5-min TTL)
func (c *Client) GenerateContentWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if c.cfg.Limiter != nil {
		if err := c.cfg.Limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limiter: %w", err)
		}
	}

	return retry.Do(ctx, c.cfg.Retry, func() (string, error) {
		params := anthropic.MessageNewParams{
			Model:     anthropic.Model(c.model),
			MaxTokens: int64(c.cfg.MaxTokens),
			Messages: []anthropic.MessageParam{
				anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
			},
		}
		if c.cfg.Temperature > 0 {
			params.Temperature = anthropic.Float(c.cfg.Temperature)
		}

		// Add system prompt with cache control if provided
		if systemPrompt != "" {
			params.System = []anthropic.TextBlockParam{
				{
					Type: "text",
					Text: systemPrompt,
					CacheControl: anthropic.CacheControlEphemeralParam{
						Type: "ephemeral",
					},
				},
			}
		}

		message, err := c.client.Messages.New(ctx, params)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			if isRetryableError(err) {
				return "", retry.Retryable(formatAPIError(err, c.model))
			}
			return "", formatAPIError(err, c.model)
		}

		// Extract text from response
		for _, block := range message.Content {
			if block.Type == "text" {
				return block.Text, nil
			}
		}

		return "", apperr.External("claude.generate", "claude API error: no text content in response", nil)
	})
}

func (c *Client) Close() {
	// No cleanup needed for HTTP client
}
