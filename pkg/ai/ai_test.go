package ai

import (
	"strings"
	"testing"

	"github.com/allencass/aistudio/pkg/apperr"
	"github.com/allencass/aistudio/pkg/claude"
	"github.com/allencass/aistudio/pkg/openai"
)

func TestProviderFor(t *testing.T) {
	tests := []struct {
		provider string
		model    string
		want     string
		wantErr  bool
	}{
		{"", "gpt-4o", ProviderOpenAI, false},
		{"", "o3-mini", ProviderOpenAI, false},
		{"", "claude-sonnet-4", ProviderAnthropic, false},
		{"", "gemini-2.5-flash", ProviderGemini, false},
		{"openai", "llama3", ProviderOpenAI, false},
		{"anthropic", "gpt-4o", ProviderAnthropic, false},
		{"", "llama3", "", true},
		{"mistral", "gpt-4o", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.provider+"/"+tt.model, func(t *testing.T) {
			got, err := ProviderFor(tt.provider, tt.model)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ProviderFor() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ProviderFor() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewClientMissingCredential(t *testing.T) {
	tests := []struct {
		model string
		env   string
	}{
		{"gpt-4o", "OPENAI_API_KEY"},
		{"claude-sonnet-4", "ANTHROPIC_API_KEY"},
		{"gemini-2.5-flash", "GEMINI_API_KEY"},
	}

	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			_, err := NewClient(Settings{Model: tt.model})
			if !apperr.IsKind(err, apperr.KindMissingCredential) {
				t.Fatalf("NewClient() error = %v, want missing credential", err)
			}
			if !strings.Contains(err.Error(), tt.env) {
				t.Errorf("error %q should name %s", err, tt.env)
			}
		})
	}
}

func TestNewClientProviders(t *testing.T) {
	c, err := NewClient(Settings{Model: "gpt-4o", OpenAIKey: "sk"})
	if err != nil {
		t.Fatalf("NewClient(openai) error: %v", err)
	}
	if _, ok := c.(*openai.Client); !ok {
		t.Errorf("NewClient(gpt-4o) = %T, want *openai.Client", c)
	}
	c.Close()

	c, err = NewClient(Settings{Model: "claude-sonnet-4", AnthropicKey: "k"})
	if err != nil {
		t.Fatalf("NewClient(anthropic) error: %v", err)
	}
	if _, ok := c.(*claude.Client); !ok {
		t.Errorf("NewClient(claude-sonnet-4) = %T, want *claude.Client", c)
	}
	c.Close()
}

func TestNewClientInvalid(t *testing.T) {
	if _, err := NewClient(Settings{Model: "invalid-model", OpenAIKey: "sk"}); err == nil {
		t.Error("Expected error for invalid model")
	}
}

func TestWithRequestKey(t *testing.T) {
	tests := []struct {
		name     string
		settings Settings
		key      string
		want     Settings
	}{
		{
			name:     "fills empty openai key",
			settings: Settings{Model: "gpt-4o"},
			key:      "  typed  ",
			want:     Settings{Model: "gpt-4o", OpenAIKey: "typed"},
		},
		{
			name:     "configured key wins",
			settings: Settings{Model: "gpt-4o", OpenAIKey: "configured"},
			key:      "typed",
			want:     Settings{Model: "gpt-4o", OpenAIKey: "configured"},
		},
		{
			name:     "anthropic provider",
			settings: Settings{Model: "claude-sonnet-4"},
			key:      "sk-ant",
			want:     Settings{Model: "claude-sonnet-4", AnthropicKey: "sk-ant"},
		},
		{
			name:     "gemini provider",
			settings: Settings{Provider: ProviderGemini, Model: "gemini-2.5-flash"},
			key:      "g",
			want:     Settings{Provider: ProviderGemini, Model: "gemini-2.5-flash", GeminiKey: "g"},
		},
		{
			name:     "blank key ignored",
			settings: Settings{Model: "gpt-4o"},
			key:      "   ",
			want:     Settings{Model: "gpt-4o"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.settings.WithRequestKey(tt.key)
			if got.OpenAIKey != tt.want.OpenAIKey || got.AnthropicKey != tt.want.AnthropicKey || got.GeminiKey != tt.want.GeminiKey {
				t.Errorf("WithRequestKey(%q) = %+v, want %+v", tt.key, got, tt.want)
			}
		})
	}
}

func TestSupportedModels(t *testing.T) {
	models := SupportedModels()
	if len(models) == 0 {
		t.Fatal("SupportedModels() returned empty list")
	}
	for _, m := range models {
		if !IsModelSupported(m) {
			t.Errorf("listed model %q is not supported", m)
		}
	}
	if IsModelSupported("invalid-model") {
		t.Error("invalid-model should not be supported")
	}
}
