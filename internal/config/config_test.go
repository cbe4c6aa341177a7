package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// clearEnv unsets every bound variable for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, env := range envKeys {
		t.Setenv(env, "")
		os.Unsetenv(env)
	}
	t.Setenv(FileEnv, "")
	os.Unsetenv(FileEnv)
	t.Chdir(t.TempDir())
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8091" {
		t.Errorf("expected port 8091, got %q", cfg.Port)
	}
	if cfg.LLMProvider != "openai" || cfg.OpenAIModel != "gpt-4" {
		t.Errorf("expected openai gpt-4, got %s %s", cfg.LLMProvider, cfg.OpenAIModel)
	}
	if cfg.MaxTokens != 1500 {
		t.Errorf("expected max tokens 1500, got %d", cfg.MaxTokens)
	}
	if cfg.ExemplarMaxTokens != 1500 {
		t.Errorf("expected exemplar budget 1500, got %d", cfg.ExemplarMaxTokens)
	}
	if cfg.SystemPrompt != DefaultSystemPrompt {
		t.Errorf("unexpected system prompt %q", cfg.SystemPrompt)
	}
	if cfg.OutputName != "report.docx" {
		t.Errorf("expected report.docx, got %q", cfg.OutputName)
	}
	if cfg.SessionTTL != 2*time.Hour {
		t.Errorf("expected 2h session ttl, got %v", cfg.SessionTTL)
	}
	if cfg.ImageWidthInches != 4.0 {
		t.Errorf("expected 4in images, got %v", cfg.ImageWidthInches)
	}
	if cfg.PreserveSlideBodies {
		t.Error("expected bodies to be overwritten by default")
	}
	if cfg.DuplicateSections != "allow" {
		t.Errorf("expected allow, got %q", cfg.DuplicateSections)
	}
	if !cfg.PDFFallbackPdftotext {
		t.Error("expected pdftotext fallback on by default")
	}
	if cfg.CropBox != "" {
		t.Errorf("expected no crop by default, got %q", cfg.CropBox)
	}
	if cfg.RenderWorkers != 1 {
		t.Errorf("expected sequential rendering by default, got %d workers", cfg.RenderWorkers)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("MAX_TOKENS", "800")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("PRESERVE_SLIDE_BODIES", "true")
	t.Setenv("CROP_BOX", "0,250,2500,1430")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "9000" || cfg.OpenAIAPIKey != "sk-test" || cfg.MaxTokens != 800 {
		t.Errorf("env not applied: %+v", cfg)
	}
	if cfg.SessionTTL != 30*time.Minute {
		t.Errorf("expected 30m, got %v", cfg.SessionTTL)
	}
	if !cfg.PreserveSlideBodies || cfg.CropBox != "0,250,2500,1430" {
		t.Errorf("env not applied: %+v", cfg)
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "deckreport.yaml")
	data := "llm_provider: anthropic\nanthropic_model: claude-test\nmax_tokens: 900\nrender_dpi: 200\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("MAX_TOKENS", "1000")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.LLMProvider != "anthropic" || cfg.AnthropicModel != "claude-test" || cfg.RenderDPI != 200 {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.MaxTokens != 1000 {
		t.Errorf("expected env to win over file, got %d", cfg.MaxTokens)
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	clearEnv(t)
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing explicit config file")
	}
}

func TestLoad_NonPositiveFallsBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("MAX_TOKENS", "-5")
	t.Setenv("RENDER_DPI", "0")
	t.Setenv("RENDER_WORKERS", "-2")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.MaxTokens != 1500 || cfg.RenderDPI != 150 || cfg.RenderWorkers != 1 {
		t.Errorf("expected defaults, got max_tokens=%d dpi=%d workers=%d", cfg.MaxTokens, cfg.RenderDPI, cfg.RenderWorkers)
	}
}

func TestLoad_FileFromEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "server.yaml")
	if err := os.WriteFile(path, []byte("port: \"9100\"\nrender_workers: 4\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(FileEnv, path)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "9100" || cfg.RenderWorkers != 4 {
		t.Errorf("expected file values, got port=%q workers=%d", cfg.Port, cfg.RenderWorkers)
	}

	t.Setenv(FileEnv, filepath.Join(t.TempDir(), "missing.yaml"))
	if _, err := Load(""); err == nil {
		t.Error("expected error for a missing file named by the environment")
	}
}

func TestValidate(t *testing.T) {
	base := Config{LLMProvider: "openai", OpenAIAPIKey: "k", DuplicateSections: "allow", OutputName: "report.docx"}
	if err := base.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing openai key", func(c *Config) { c.OpenAIAPIKey = "" }},
		{"missing anthropic key", func(c *Config) { c.LLMProvider = "anthropic" }},
		{"unknown provider", func(c *Config) { c.LLMProvider = "llama" }},
		{"bad duplicates", func(c *Config) { c.DuplicateSections = "merge" }},
		{"output with dir", func(c *Config) { c.OutputName = "../report.docx" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base
			tt.mutate(&c)
			if err := c.Validate(); err == nil {
				t.Error("expected error")
			}
		})
	}

	if err := base.ValidateServer(); err == nil {
		t.Error("expected server validation to require an API key")
	}
	base.APIKey = "secret"
	if err := base.ValidateServer(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLLMCredentials(t *testing.T) {
	c := Config{
		LLMProvider:  "anthropic",
		OpenAIAPIKey: "o", OpenAIModel: "gpt-4",
		AnthropicAPIKey: "a", AnthropicModel: "claude", AnthropicURL: "https://example.test",
	}
	key, model, url := c.LLMCredentials()
	if key != "a" || model != "claude" || url != "https://example.test" {
		t.Errorf("unexpected anthropic credentials: %s %s %s", key, model, url)
	}
	c.LLMProvider = "openai"
	if key, model, _ := c.LLMCredentials(); key != "o" || model != "gpt-4" {
		t.Errorf("unexpected openai credentials: %s %s", key, model)
	}
}
