package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func setup(t *testing.T) string {
	t.Helper()
	for _, env := range []string{"OPENAI_API_KEY", "HF_API_KEY", "ANTHROPIC_API_KEY", "GEMINI_API_KEY", "AISTUDIO_TEXT_MODEL"} {
		t.Setenv(env, "")
	}
	tmpDir := t.TempDir()
	ResetForTest(tmpDir)
	return tmpDir
}

func TestLoadDefaults(t *testing.T) {
	setup(t)

	c, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if c.Text.Model != "gpt-4o" {
		t.Errorf("Expected default model 'gpt-4o', got '%s'", c.Text.Model)
	}
	if c.Text.Temperature != 0.5 {
		t.Errorf("Expected temperature 0.5, got %v", c.Text.Temperature)
	}
	if c.Text.MaxTokens != 2000 {
		t.Errorf("Expected max tokens 2000, got %d", c.Text.MaxTokens)
	}
	if c.Image.Model != "black-forest-labs/FLUX.1-dev" {
		t.Errorf("Unexpected image model %q", c.Image.Model)
	}
	if c.Resume.HeaderLimit != 5 {
		t.Errorf("Expected header limit 5, got %d", c.Resume.HeaderLimit)
	}
	if got := strings.Join(c.Resume.StopKeywords, ","); got != "experience,education,skills" {
		t.Errorf("Unexpected stop keywords %q", got)
	}
	if got := strings.Join(c.Resume.SectionTitles, ","); got != "experience,education,skills,summary,objective" {
		t.Errorf("Unexpected section titles %q", got)
	}
	if c.Retry.MaxRetries != 0 {
		t.Errorf("Retries must be off by default, got %d", c.Retry.MaxRetries)
	}
	if c.OpenAIKey != "" {
		t.Errorf("Expected empty OpenAI key, got %q", c.OpenAIKey)
	}
}

func TestWellKnownEnvKeys(t *testing.T) {
	setup(t)
	t.Setenv("OPENAI_API_KEY", "sk-env-1234")
	t.Setenv("HF_API_KEY", "hf_env")
	ResetForTest(t.TempDir())

	c, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if c.OpenAIKey != "sk-env-1234" {
		t.Errorf("OpenAIKey = %q, want sk-env-1234", c.OpenAIKey)
	}
	if c.HFKey != "hf_env" {
		t.Errorf("HFKey = %q, want hf_env", c.HFKey)
	}
}

func TestPrefixedEnvOverride(t *testing.T) {
	setup(t)
	t.Setenv("AISTUDIO_TEXT_MODEL", "claude-sonnet-4")
	ResetForTest(t.TempDir())

	got, err := Get("text.model")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got != "claude-sonnet-4" {
		t.Errorf("text.model = %q, want claude-sonnet-4", got)
	}
}

func TestSetAndGet(t *testing.T) {
	dir := setup(t)

	if err := Set("text.model", "gemini-2.5-flash"); err != nil {
		t.Fatalf("Set text.model error: %v", err)
	}
	if err := Set("resume.header_limit", "4"); err != nil {
		t.Fatalf("Set header_limit error: %v", err)
	}
	if err := Set("resume.stop_keywords", "experience, work history"); err != nil {
		t.Fatalf("Set stop_keywords error: %v", err)
	}

	// Reset to force reload from file
	ResetForTest(dir)

	model, err := Get("text.model")
	if err != nil {
		t.Fatalf("Get text.model error: %v", err)
	}
	if model != "gemini-2.5-flash" {
		t.Errorf("Expected model 'gemini-2.5-flash', got '%s'", model)
	}

	c, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if c.Resume.HeaderLimit != 4 {
		t.Errorf("Expected header limit 4, got %d", c.Resume.HeaderLimit)
	}
	if got := strings.Join(c.Resume.StopKeywords, "|"); got != "experience|work history" {
		t.Errorf("Unexpected stop keywords %q", got)
	}
}

func TestSetBool(t *testing.T) {
	dir := setup(t)

	if err := Set("cache.enabled", "yes"); err == nil {
		t.Error("expected error for non-boolean value")
	}
	if err := Set("cache.enabled", "true"); err != nil {
		t.Fatalf("Set cache.enabled error: %v", err)
	}

	ResetForTest(dir)
	c, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if !c.Cache.Enabled {
		t.Error("cache.enabled not persisted")
	}
}

func TestSetDoesNotPersistEnvSecrets(t *testing.T) {
	dir := setup(t)
	t.Setenv("OPENAI_API_KEY", "sk-from-env")
	ResetForTest(dir)

	if err := Set("text.temperature", "0.7"); err != nil {
		t.Fatalf("Set error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, ".aistudio.yaml"))
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	if strings.Contains(string(data), "sk-from-env") {
		t.Errorf("env secret leaked into config file:\n%s", data)
	}
	if !strings.Contains(string(data), "temperature: 0.7") {
		t.Errorf("temperature not written:\n%s", data)
	}
}

func TestSetRejectsInvalidValue(t *testing.T) {
	setup(t)

	if err := Set("text.temperature", "3.5"); err == nil {
		t.Error("Expected validation error for temperature 3.5")
	}
	if err := Set("resume.header_limit", "zero"); err == nil {
		t.Error("Expected parse error for non-integer header limit")
	}
	if err := Set("image.provider", "dalle"); err == nil {
		t.Error("Expected validation error for unknown image provider")
	}

	// Rejected values must not stick
	c, err := Load()
	if err != nil {
		t.Fatalf("Load error after rejected Set: %v", err)
	}
	if c.Text.Temperature != 0.5 {
		t.Errorf("Temperature changed to %v after rejected Set", c.Text.Temperature)
	}
}

func TestSetInvalidKey(t *testing.T) {
	setup(t)

	err := Set("invalid_key", "value")
	if err == nil {
		t.Error("Expected error for invalid key, got nil")
	}
}

func TestGetInvalidKey(t *testing.T) {
	setup(t)

	_, err := Get("invalid_key")
	if err == nil {
		t.Error("Expected error for invalid key, got nil")
	}
}

func TestAllMasksSecrets(t *testing.T) {
	setup(t)
	t.Setenv("HF_API_KEY", "hf_abcdefgh")
	ResetForTest(t.TempDir())

	all := All()
	if all["hf_api_key"] != "****efgh" {
		t.Errorf("hf_api_key = %q, want masked", all["hf_api_key"])
	}
	if all["text.model"] != "gpt-4o" {
		t.Errorf("text.model = %q", all["text.model"])
	}
	if len(all) != len(Keys()) {
		t.Errorf("All() has %d keys, Keys() has %d", len(all), len(Keys()))
	}
}

func TestMask(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"abc", "****"},
		{"sk-1234567", "****4567"},
	}
	for _, tt := range tests {
		if got := Mask(tt.in); got != tt.want {
			t.Errorf("Mask(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestConfigPath(t *testing.T) {
	path := Path()
	if path == "" {
		t.Error("Path() returned empty string")
	}
}

func TestConfigFileCreated(t *testing.T) {
	dir := setup(t)

	if err := Set("server.addr", ":9000"); err != nil {
		t.Fatalf("Set error: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, ".aistudio.yaml")); os.IsNotExist(err) {
		t.Error("Config file was not created")
	}
}
