package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

type Config struct {
	OpenAIKey    string       `mapstructure:"openai_api_key" yaml:"openai_api_key,omitempty"`
	HFKey        string       `mapstructure:"hf_api_key" yaml:"hf_api_key,omitempty"`
	AnthropicKey string       `mapstructure:"anthropic_api_key" yaml:"anthropic_api_key,omitempty"`
	GeminiKey    string       `mapstructure:"gemini_api_key" yaml:"gemini_api_key,omitempty"`
	Text         TextConfig   `mapstructure:"text" yaml:"text,omitempty"`
	Image        ImageConfig  `mapstructure:"image" yaml:"image,omitempty"`
	Resume       ResumeConfig `mapstructure:"resume" yaml:"resume,omitempty"`
	Server       ServerConfig `mapstructure:"server" yaml:"server,omitempty"`
	Retry        RetryConfig  `mapstructure:"retry" yaml:"retry,omitempty"`
	Cache        CacheConfig  `mapstructure:"cache" yaml:"cache,omitempty"`
}

// TextConfig configures the chat-completion collaborator used to rewrite resumes
type TextConfig struct {
	Provider    string  `mapstructure:"provider" yaml:"provider,omitempty" validate:"omitempty,oneof=openai anthropic gemini"`
	Model       string  `mapstructure:"model" yaml:"model,omitempty" validate:"required"`
	Temperature float64 `mapstructure:"temperature" yaml:"temperature,omitempty" validate:"gte=0,lte=2"`
	MaxTokens   int     `mapstructure:"max_tokens" yaml:"max_tokens,omitempty" validate:"gt=0"`
	BaseURL     string  `mapstructure:"base_url" yaml:"base_url,omitempty" validate:"omitempty,url"`
	PromptPath  string  `mapstructure:"prompt_path" yaml:"prompt_path,omitempty"`
}

// ImageConfig configures the text-to-image collaborator
type ImageConfig struct {
	Provider string `mapstructure:"provider" yaml:"provider,omitempty" validate:"oneof=together hf-inference"`
	Model    string `mapstructure:"model" yaml:"model,omitempty" validate:"required"`
	BaseURL  string `mapstructure:"base_url" yaml:"base_url,omitempty" validate:"required,url"`
}

// ResumeConfig holds the segmentation heuristics
type ResumeConfig struct {
	HeaderLimit   int      `mapstructure:"header_limit" yaml:"header_limit,omitempty" validate:"gte=1"`
	StopKeywords  []string `mapstructure:"stop_keywords" yaml:"stop_keywords,omitempty" validate:"min=1,dive,required"`
	SectionTitles []string `mapstructure:"section_titles" yaml:"section_titles,omitempty" validate:"min=1,dive,required"`
}

type ServerConfig struct {
	Addr        string `mapstructure:"addr" yaml:"addr,omitempty" validate:"required"`
	MaxUploadMB int    `mapstructure:"max_upload_mb" yaml:"max_upload_mb,omitempty" validate:"gt=0"`
}

// RetryConfig controls collaborator call pacing. Retries are off unless
// max_retries is raised.
type RetryConfig struct {
	MaxRetries    int     `mapstructure:"max_retries" yaml:"max_retries,omitempty" validate:"gte=0,lte=10"`
	RatePerSecond float64 `mapstructure:"rate_per_second" yaml:"rate_per_second,omitempty" validate:"gt=0"`
}

// CacheConfig controls reuse of rewrite results for identical inputs
type CacheConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled,omitempty"`
	Dir     string `mapstructure:"dir" yaml:"dir,omitempty"`
}

const (
	DefaultTextModel  = "gpt-4o"
	DefaultImageModel = "black-forest-labs/FLUX.1-dev"
)

var defaults = map[string]any{
	"openai_api_key":        "",
	"hf_api_key":            "",
	"anthropic_api_key":     "",
	"gemini_api_key":        "",
	"text.provider":         "",
	"text.model":            DefaultTextModel,
	"text.temperature":      0.5,
	"text.max_tokens":       2000,
	"text.base_url":         "",
	"text.prompt_path":      "",
	"image.provider":        "together",
	"image.model":           DefaultImageModel,
	"image.base_url":        "https://router.huggingface.co",
	"resume.header_limit":   5,
	"resume.stop_keywords":  []string{"experience", "education", "skills"},
	"resume.section_titles": []string{"experience", "education", "skills", "summary", "objective"},
	"server.addr":           ":8501",
	"server.max_upload_mb":  10,
	"retry.max_retries":     0,
	"retry.rate_per_second": 1.0,
	"cache.enabled":         false,
	"cache.dir":             "",
}

// secretKeys are masked by All and bound to their well-known env names.
var secretKeys = map[string]string{
	"openai_api_key":    "OPENAI_API_KEY",
	"hf_api_key":        "HF_API_KEY",
	"anthropic_api_key": "ANTHROPIC_API_KEY",
	"gemini_api_key":    "GEMINI_API_KEY",
}

var (
	configFile = ".aistudio.yaml"
	v          *viper.Viper
	validate   = validator.New()
)

func init() {
	v = newViper()
	// Try to read config file (ignore if not exists)
	_ = v.ReadInConfig()
}

func newViper() *viper.Viper {
	nv := viper.New()
	nv.SetConfigFile(configFile)
	for k, val := range defaults {
		nv.SetDefault(k, val)
	}

	// Environment variables: AISTUDIO_TEXT_MODEL etc., plus the provider
	// names users already export (OPENAI_API_KEY, HF_API_KEY, ...)
	nv.SetEnvPrefix("AISTUDIO")
	nv.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	nv.AutomaticEnv()
	for k, env := range secretKeys {
		_ = nv.BindEnv(k, "AISTUDIO_"+strings.ToUpper(k), env)
	}
	return nv
}

func Path() string {
	return configFile
}

// Load returns the merged configuration (defaults, file, environment)
func Load() (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field ranges and enumerations
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Keys returns every settable key in sorted order
func Keys() []string {
	keys := make([]string, 0, len(defaults))
	for k := range defaults {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func isKnown(key string) bool {
	_, ok := defaults[key]
	return ok
}

// IsSecret reports whether key holds an API key
func IsSecret(key string) bool {
	_, ok := secretKeys[key]
	return ok
}

// EnvName returns the well-known environment variable for a secret key
func EnvName(key string) string {
	return secretKeys[key]
}

func Get(key string) (string, error) {
	if !isKnown(key) {
		return "", fmt.Errorf("unknown config key: %s", key)
	}
	return format(v.Get(key)), nil
}

// Set stores a value in the config file. Only the file's own contents
// are rewritten, so values that came from the environment are never
// persisted.
func Set(key, value string) error {
	if !isKnown(key) {
		return fmt.Errorf("unknown config key: %s (valid: %s)", key, strings.Join(Keys(), ", "))
	}

	typed, err := parseValue(key, value)
	if err != nil {
		return err
	}

	prev := v.Get(key)
	v.Set(key, typed)
	if _, err := Load(); err != nil {
		v.Set(key, prev)
		return err
	}

	file, err := readFile()
	if err != nil {
		return err
	}
	setNested(file, strings.Split(key, "."), typed)
	return writeFile(file)
}

func parseValue(key, value string) (any, error) {
	switch defaults[key].(type) {
	case int:
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("%s must be an integer: %w", key, err)
		}
		return n, nil
	case bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("%s must be true or false: %w", key, err)
		}
		return b, nil
	case float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("%s must be a number: %w", key, err)
		}
		return f, nil
	case []string:
		var out []string
		for _, part := range strings.Split(value, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
		return out, nil
	default:
		return value, nil
	}
}

func setNested(m map[string]any, path []string, val any) {
	if len(path) == 1 {
		m[path[0]] = val
		return
	}
	child, ok := m[path[0]].(map[string]any)
	if !ok {
		child = map[string]any{}
		m[path[0]] = child
	}
	setNested(child, path[1:], val)
}

func readFile() (map[string]any, error) {
	data, err := os.ReadFile(configFile)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]any{}, nil
	}
	if err != nil {
		return nil, err
	}
	m := map[string]any{}
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", configFile, err)
	}
	return m, nil
}

func writeFile(m map[string]any) error {
	if dir := filepath.Dir(configFile); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		return err
	}
	return os.WriteFile(configFile, buf.Bytes(), 0o600)
}

// All returns every key with its effective value. Secrets are masked.
func All() map[string]string {
	out := make(map[string]string, len(defaults))
	for _, k := range Keys() {
		val := format(v.Get(k))
		if IsSecret(k) {
			val = Mask(val)
		}
		out[k] = val
	}
	return out
}

// Mask hides all but the last four characters of a secret
func Mask(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "****"
	}
	return "****" + s[len(s)-4:]
}

func format(val any) string {
	switch t := val.(type) {
	case nil:
		return ""
	case []string:
		return strings.Join(t, ",")
	case []any:
		parts := make([]string, 0, len(t))
		for _, p := range t {
			parts = append(parts, fmt.Sprint(p))
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprint(t)
	}
}

// ResetForTest resets viper for testing (only use in tests)
func ResetForTest(testPath string) {
	configFile = testPath + "/.aistudio.yaml"
	v = newViper()
	_ = v.ReadInConfig()
}
