package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/allencass/aistudio/pkg/apperr"
	"github.com/allencass/aistudio/pkg/retry"
)

const (
	DefaultAgent = "gemini-2.5-flash"
	APIKeyEnv    = "GEMINI_API_KEY"
)

var SupportedAgents = []string{
	"gemini-3-flash-preview",
	"gemini-3-pro-preview",
	"gemini-2.5-flash",
	"gemini-2.5-pro",
	"gemini-2.0-flash",
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
	Temperature float64
	MaxTokens   int
	Retry       retry.Config
	Limiter     *retry.RateLimiter
}

type Client struct {
	client *genai.Client
	cfg    Config
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, apperr.MissingCredential("gemini.new_client", APIKeyEnv)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultAgent
	}

	client, err := genai.NewClient(context.Background(), option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, apperr.External("gemini.new_client", "gemini API error: could not create client", err)
	}

	return &Client{client: client, cfg: cfg}, nil
}

// generativeModel builds a model handle per call; SystemInstruction is
// stored on the handle and clients are shared across requests.
func (c *Client) generativeModel(systemPrompt string) *genai.GenerativeModel {
	m := c.client.GenerativeModel(c.cfg.Model)
	if c.cfg.Temperature > 0 {
		m.SetTemperature(float32(c.cfg.Temperature))
	}
	if c.cfg.MaxTokens > 0 {
		m.SetMaxOutputTokens(int32(c.cfg.MaxTokens))
	}
	if systemPrompt != "" {
		m.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(systemPrompt)},
		}
	}
	return m
}

func (c *Client) GenerateContent(ctx context.Context, prompt string) (string, error) {
	return c.GenerateContentWithSystem(ctx, "", prompt)
}

// GenerateContentWithSystem uses system instruction for the prompt
func (c *Client) GenerateContentWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if c.cfg.Limiter != nil {
		if err := c.cfg.Limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limiter: %w", err)
		}
	}

	m := c.generativeModel(systemPrompt)
	return retry.Do(ctx, c.cfg.Retry, func() (string, error) {
		resp, err := m.GenerateContent(ctx, genai.Text(userPrompt))
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			if isRetryableError(err) {
				return "", retry.Retryable(formatAPIError(err, c.cfg.Model))
			}
			return "", formatAPIError(err, c.cfg.Model)
		}
		return responseText(resp)
	})
}

// responseText joins the text parts of the first candidate
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil ||
		len(resp.Candidates[0].Content.Parts) == 0 {
		return "", apperr.External("gemini.generate", "gemini API error: no content generated", nil)
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	if b.Len() == 0 {
		return "", apperr.External("gemini.generate", "gemini API error: unexpected response format", nil)
	}
	return b.String(), nil
}

func isRetryableError(err error) bool {
	errStr := err.Error()
	return strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "503") ||
		strings.Contains(errStr, "RESOURCE_EXHAUSTED") ||
		strings.Contains(errStr, "UNAVAILABLE")
}

// formatAPIError converts API errors to user-friendly messages
func formatAPIError(err error, model string) error {
	const op = "gemini.generate"
	errStr := err.Error()

	switch {
	case strings.Contains(errStr, "API_KEY_INVALID") || strings.Contains(errStr, "401"):
		return apperr.External(op, "gemini API error: invalid API key. Check "+APIKeyEnv+" environment variable", err)
	case strings.Contains(errStr, "PERMISSION_DENIED") || strings.Contains(errStr, "403"):
		return apperr.External(op, fmt.Sprintf("gemini API error: key does not have access to model %q", model), err)
	case strings.Contains(errStr, "NOT_FOUND") || strings.Contains(errStr, "404"):
		return apperr.External(op, fmt.Sprintf("gemini API error: model %q not found. Verify the model name is correct", model), err)
	case strings.Contains(errStr, "RESOURCE_EXHAUSTED") || strings.Contains(errStr, "429"):
		return apperr.External(op, fmt.Sprintf("gemini API error: rate limit exceeded for model %q. Please wait and try again", model), err)
	default:
		return apperr.External(op, "gemini API error", err)
	}
}

func (c *Client) Close() {
	_ = c.client.Close()
}
