// Package imagegen generates images from text prompts through the
// Hugging Face inference router.
package imagegen

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/allencass/aistudio/pkg/apperr"
	"github.com/allencass/aistudio/pkg/config"
	clog "github.com/allencass/aistudio/pkg/log"
	"github.com/allencass/aistudio/pkg/retry"
)

const (
	DefaultModel   = "black-forest-labs/FLUX.1-dev"
	DefaultBaseURL = "https://router.huggingface.co"
	DefaultPrompt  = "Hamster riding a turtle"
	APIKeyEnv      = "HF_API_KEY"

	ProviderTogether    = "together"
	ProviderHFInference = "hf-inference"

	// FileName is the download name offered by the web UI
	FileName = "generated_image.png"
	// BatchFileName is where the image command saves by default
	BatchFileName = "gen_image.png"
	MIMEPNG       = "image/png"

	defaultTimeout = 180 * time.Second
	maxImageBytes  = 32 << 20
)

type Config struct {
	APIKey     string
	Provider   string
	Model      string
	BaseURL    string
	Retry      retry.Config
	Limiter    *retry.RateLimiter
	HTTPClient *http.Client
}

// ConfigFrom maps the image section of the application config
func ConfigFrom(cfg *config.Config) Config {
	return Config{
		APIKey:   strings.TrimSpace(cfg.HFKey),
		Provider: cfg.Image.Provider,
		Model:    cfg.Image.Model,
		BaseURL:  cfg.Image.BaseURL,
		Retry:    retry.NoRetry().WithMaxRetries(cfg.Retry.MaxRetries),
		Limiter:  retry.NewRateLimiter(cfg.Retry.RatePerSecond),
	}
}

type Client struct {
	cfg  Config
	http *http.Client
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, apperr.MissingCredential("imagegen.new_client", APIKeyEnv)
	}
	if cfg.Provider == "" {
		cfg.Provider = ProviderTogether
	}
	if cfg.Provider != ProviderTogether && cfg.Provider != ProviderHFInference {
		return nil, fmt.Errorf("unknown image provider: %s (use %s or %s)", cfg.Provider, ProviderTogether, ProviderHFInference)
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
	return &Client{cfg: cfg, http: hc}, nil
}

// Generate returns the raw image bytes the provider produced for prompt
func (c *Client) Generate(ctx context.Context, prompt string) ([]byte, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, apperr.MissingInput("imagegen.generate", "please enter a prompt")
	}

	if c.cfg.Limiter != nil {
		if err := c.cfg.Limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	start := time.Now()
	data, err := retry.Do(ctx, c.cfg.Retry, func() ([]byte, error) {
		if c.cfg.Provider == ProviderHFInference {
			return c.hfInference(ctx, prompt)
		}
		return c.together(ctx, prompt)
	})
	if err != nil {
		return nil, err
	}

	clog.Debug("image generated", "provider", c.cfg.Provider, "model", c.cfg.Model, "bytes", len(data), "duration", time.Since(start))
	return data, nil
}

// GeneratePNG generates an image and re-encodes it as PNG
func (c *Client) GeneratePNG(ctx context.Context, prompt string) ([]byte, error) {
	raw, err := c.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}
	img, _, err := Decode(raw)
	if err != nil {
		return nil, err
	}
	return EncodePNG(img)
}

type togetherRequest struct {
	Prompt         string `json:"prompt"`
	Model          string `json:"model"`
	ResponseFormat string `json:"response_format"`
}

type togetherResponse struct {
	Data []struct {
		B64JSON string `json:"b64_json"`
		URL     string `json:"url"`
	} `json:"data"`
}

func (c *Client) together(ctx context.Context, prompt string) ([]byte, error) {
	body, err := json.Marshal(togetherRequest{
		Prompt:         prompt,
		Model:          c.cfg.Model,
		ResponseFormat: "base64",
	})
	if err != nil {
		return nil, err
	}

	raw, err := c.post(ctx, c.cfg.BaseURL+"/together/v1/images/generations", "application/json", body)
	if err != nil {
		return nil, err
	}

	var resp togetherResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, apperr.External("imagegen.together", "image API error: malformed response", err)
	}
	if len(resp.Data) == 0 {
		return nil, apperr.External("imagegen.together", "image API error: no image in response", nil)
	}

	item := resp.Data[0]
	switch {
	case item.B64JSON != "":
		img, err := base64.StdEncoding.DecodeString(item.B64JSON)
		if err != nil {
			return nil, apperr.External("imagegen.together", "image API error: invalid base64 image", err)
		}
		return img, nil
	case item.URL != "":
		return c.fetch(ctx, item.URL)
	default:
		return nil, apperr.External("imagegen.together", "image API error: no image in response", nil)
	}
}

func (c *Client) hfInference(ctx context.Context, prompt string) ([]byte, error) {
	body, err := json.Marshal(map[string]string{"inputs": prompt})
	if err != nil {
		return nil, err
	}
	endpoint := c.cfg.BaseURL + "/hf-inference/models/" + c.cfg.Model
	return c.post(ctx, endpoint, "application/json", body)
}

func (c *Client) post(ctx context.Context, endpoint, contentType string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	return c.do(req)
}

func (c *Client) fetch(ctx context.Context, imageURL string) ([]byte, error) {
	if _, err := url.ParseRequestURI(imageURL); err != nil {
		return nil, apperr.External("imagegen.fetch", "image API error: invalid image URL", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		if req.Context().Err() != nil {
			return nil, req.Context().Err()
		}
		return nil, retry.Retryable(apperr.External("imagegen.request", "image API error: could not reach the API", err))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, apperr.External("imagegen.request", "image API error: reading response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: errorMessage(data)}
		if retryableStatusCode(resp.StatusCode) {
			after := retry.ParseRetryAfter(resp.Header.Get("Retry-After"), time.Now())
			return nil, retry.RetryableAfter(formatAPIError(apiErr), after)
		}
		return nil, formatAPIError(apiErr)
	}
	return data, nil
}

// APIError is a non-2xx response from the router
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("status %d", e.StatusCode)
	}
	return fmt.Sprintf("status %d: %s", e.StatusCode, e.Message)
}

// errorMessage pulls the message out of the router's JSON error shapes
func errorMessage(data []byte) string {
	var envelope struct {
		Error   json.RawMessage `json:"error"`
		Message string          `json:"message"`
	}
	if json.Unmarshal(data, &envelope) == nil {
		var s string
		if json.Unmarshal(envelope.Error, &s) == nil && s != "" {
			return s
		}
		var nested struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(envelope.Error, &nested) == nil && nested.Message != "" {
			return nested.Message
		}
		if envelope.Message != "" {
			return envelope.Message
		}
	}
	msg := strings.TrimSpace(string(data))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}

func retryableStatusCode(code int) bool {
	return code == http.StatusTooManyRequests ||
		code == http.StatusBadGateway ||
		code == http.StatusServiceUnavailable ||
		code == http.StatusGatewayTimeout
}

// formatAPIError converts router errors to user-friendly messages
func formatAPIError(e *APIError) error {
	const op = "imagegen.generate"
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return apperr.External(op, "image API error: invalid API key. Check "+APIKeyEnv+" environment variable", e)
	case http.StatusPaymentRequired:
		return apperr.External(op, "image API error: inference credits exhausted", e)
	case http.StatusForbidden:
		return apperr.External(op, "image API error: key does not have inference permission", e)
	case http.StatusNotFound:
		return apperr.External(op, "image API error: model not found. Verify the model name is correct", e)
	case http.StatusTooManyRequests:
		return apperr.External(op, "image API error: rate limit exceeded. Please wait and try again", e)
	case http.StatusServiceUnavailable:
		return apperr.External(op, "image API error: model is loading or unavailable. Please try again later", e)
	default:
		return apperr.External(op, "image API error", e)
	}
}
