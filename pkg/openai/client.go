// Package openai talks to OpenAI-compatible chat-completion endpoints.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/tidwall/gjson"

	"github.com/allencass/aistudio/pkg/apperr"
	clog "github.com/allencass/aistudio/pkg/log"
	"github.com/allencass/aistudio/pkg/retry"
)

const (
	DefaultModel   = "gpt-4o"
	DefaultBaseURL = "https://api.openai.com/v1"
	APIKeyEnv      = "OPENAI_API_KEY"

	defaultTimeout = 120 * time.Second
)

var SupportedModels = []string{
	"gpt-4o",
	"gpt-4o-mini",
	"gpt-4.1",
	"gpt-4.1-mini",
	"o3-mini",
	"o4-mini",
}

// IsModelSupported reports whether model names an OpenAI chat model:
// gpt-*, chatgpt-* or the o-series (o1, o3, ...).
func IsModelSupported(model string) bool {
	switch {
	case strings.HasPrefix(model, "gpt-"), strings.HasPrefix(model, "chatgpt-"):
		return true
	case len(model) >= 2 && model[0] == 'o' && model[1] >= '0' && model[1] <= '9':
		return true
	default:
		return false
	}
}

type Config struct {
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float64
	MaxTokens   int
	Retry       retry.Config
	Limiter     *retry.RateLimiter
	HTTPClient  *http.Client
}

type Client struct {
	client openai.Client
	cfg    Config
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, apperr.MissingCredential("openai.new_client", APIKeyEnv)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: defaultTimeout}
	}

	// retries go through retry.Do so the SDK's own are disabled
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(cfg.BaseURL + "/"),
		option.WithHTTPClient(hc),
		option.WithMaxRetries(0),
	}

	return &Client{
		client: openai.NewClient(opts...),
		cfg:    cfg,
	}, nil
}

// Model returns the model requests are sent to
func (c *Client) Model() string {
	return c.cfg.Model
}

func (c *Client) GenerateContent(ctx context.Context, prompt string) (string, error) {
	return c.GenerateContentWithSystem(ctx, "", prompt)
}

// GenerateContentWithSystem sends a system and a user message and
// returns the first choice's content.
func (c *Client) GenerateContentWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if c.cfg.Limiter != nil {
		if err := c.cfg.Limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limiter: %w", err)
		}
	}

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.cfg.Model),
	}
	if c.cfg.Temperature > 0 {
		params.Temperature = openai.Float(c.cfg.Temperature)
	}
	if c.cfg.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(c.cfg.MaxTokens))
	}
	if systemPrompt != "" {
		params.Messages = append(params.Messages, openai.SystemMessage(systemPrompt))
	}
	params.Messages = append(params.Messages, openai.UserMessage(userPrompt))

	return retry.Do(ctx, c.cfg.Retry, func() (string, error) {
		return c.chat(ctx, params)
	})
}

func (c *Client) chat(ctx context.Context, params openai.ChatCompletionNewParams) (string, error) {
	start := time.Now()
	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		status := statusOf(err)
		clog.Debug("openai response", "model", c.cfg.Model, "status", status, "duration", time.Since(start))
		switch {
		case status == 0:
			return "", retry.Retryable(apperr.External("openai.chat", "openai API error: could not reach the API", err))
		case retryableStatusCode(status):
			return "", retry.RetryableAfter(formatAPIError(err, c.cfg.Model), retryAfter(err))
		default:
			return "", formatAPIError(err, c.cfg.Model)
		}
	}

	clog.Debug("openai response", "model", c.cfg.Model, "duration", time.Since(start))
	if len(resp.Choices) == 0 {
		return "", apperr.External("openai.chat", "openai API error: no choices in response", nil)
	}

	clog.Debug("openai usage", "prompt_tokens", resp.Usage.PromptTokens, "completion_tokens", resp.Usage.CompletionTokens)
	return resp.Choices[0].Message.Content, nil
}

// statusOf extracts the HTTP status from an SDK error, or 0
func statusOf(err error) int {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// retryAfter reads the Retry-After hint off an SDK error response.
func retryAfter(err error) time.Duration {
	var apiErr *openai.Error
	if !errors.As(err, &apiErr) || apiErr.Response == nil {
		return 0
	}
	return retry.ParseRetryAfter(apiErr.Response.Header.Get("Retry-After"), time.Now())
}

// errorField reads a field of the API error body, which OpenAI nests
// under "error" and compatible servers sometimes do not.
func errorField(apiErr *openai.Error, name string) string {
	switch name {
	case "code":
		if apiErr.Code != "" {
			return apiErr.Code
		}
	case "message":
		if apiErr.Message != "" {
			return apiErr.Message
		}
	}
	raw := apiErr.RawJSON()
	if v := gjson.Get(raw, "error."+name); v.Exists() {
		return v.String()
	}
	return gjson.Get(raw, name).String()
}

// retryableStatusCode returns true for HTTP status codes that warrant a retry.
func retryableStatusCode(code int) bool {
	return code == http.StatusTooManyRequests ||
		code == http.StatusBadGateway ||
		code == http.StatusServiceUnavailable ||
		code == http.StatusGatewayTimeout
}

// formatAPIError converts API errors to user-friendly messages
func formatAPIError(err error, model string) error {
	const op = "openai.chat"

	var apiErr *openai.Error
	if !errors.As(err, &apiErr) {
		return apperr.External(op, "openai API error", err)
	}

	switch {
	case apiErr.StatusCode == http.StatusUnauthorized:
		return apperr.External(op, "openai API error: invalid API key. Check "+APIKeyEnv+" environment variable", err)
	case apiErr.StatusCode == http.StatusForbidden:
		return apperr.External(op, fmt.Sprintf("openai API error: key does not have access to model %q", model), err)
	case apiErr.StatusCode == http.StatusNotFound:
		return apperr.External(op, fmt.Sprintf("openai API error: model %q not found. Verify the model name is correct", model), err)
	case errorField(apiErr, "code") == "insufficient_quota":
		return apperr.External(op, "openai API error: quota exceeded. Check your plan and billing details", err)
	case apiErr.StatusCode == http.StatusTooManyRequests:
		return apperr.External(op, fmt.Sprintf("openai API error: rate limit exceeded for model %q. Please wait and try again", model), err)
	case apiErr.StatusCode >= 500:
		return apperr.External(op, "openai API error: service unavailable. Please try again later", err)
	case errorField(apiErr, "message") != "":
		return apperr.External(op, fmt.Sprintf("openai API error: status %d: %s", apiErr.StatusCode, errorField(apiErr, "message")), err)
	default:
		return apperr.External(op, fmt.Sprintf("openai API error: status %d", apiErr.StatusCode), err)
	}
}

func (c *Client) Close() {
	// No cleanup needed for HTTP client
}
