package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port string

	// Auth
	APIKey string

	// Language model
	LLMProvider     string
	OpenAIAPIKey    string
	OpenAIModel     string
	OpenAIBaseURL   string
	AnthropicAPIKey string
	AnthropicModel  string
	AnthropicURL    string
	MaxTokens       int
	SystemPrompt    string
	LLMTimeout      time.Duration

	// ExemplarMaxTokens bounds the style exemplar sent with each prompt.
	ExemplarMaxTokens int

	// Files
	WorkDir        string
	OutputName     string
	MaxUploadBytes int64

	// Sessions
	SessionTTL time.Duration

	// Extraction
	RenderDPI            int
	RenderWorkers        int
	CropBox              string
	PDFFallbackPdftotext bool

	// Report layout
	ImageWidthInches    float64
	PreserveSlideBodies bool
	DuplicateSections   string
}

// Defaults.
const (
	DefaultPort           = "8091"
	DefaultProvider       = "openai"
	DefaultOpenAIModel    = "gpt-4"
	DefaultAnthropicModel = "claude-sonnet-4-5-20250929"
	DefaultAnthropicURL   = "https://api.anthropic.com"
	DefaultMaxTokens      = 1500
	DefaultExemplarTokens = 1500
	DefaultSystemPrompt   = "You are a technical writer at an engineering consultancy."
	DefaultLLMTimeout     = 120 * time.Second
	DefaultOutputName     = "report.docx"
	DefaultMaxUpload      = 52428800 // 50MB
	DefaultSessionTTL     = 2 * time.Hour
	DefaultRenderDPI      = 150
	DefaultRenderWorkers  = 1
	DefaultImageWidth     = 4.0
	DefaultDuplicates     = "allow"
)

// FileEnv names the variable holding a config file path, used when Load
// gets no explicit path.
const FileEnv = "DECKREPORT_CONFIG"

// envKeys maps config keys to the environment variables that set them.
var envKeys = map[string]string{
	"port":                   "PORT",
	"api_key":                "DECKREPORT_API_KEY",
	"llm_provider":           "LLM_PROVIDER",
	"openai_api_key":         "OPENAI_API_KEY",
	"openai_model":           "OPENAI_MODEL",
	"openai_base_url":        "OPENAI_BASE_URL",
	"anthropic_api_key":      "ANTHROPIC_API_KEY",
	"anthropic_model":        "ANTHROPIC_MODEL",
	"anthropic_base_url":     "ANTHROPIC_BASE_URL",
	"max_tokens":             "MAX_TOKENS",
	"system_prompt":          "SYSTEM_PROMPT",
	"exemplar_max_tokens":    "EXEMPLAR_MAX_TOKENS",
	"llm_timeout":            "LLM_TIMEOUT",
	"work_dir":               "WORK_DIR",
	"output_name":            "OUTPUT_NAME",
	"max_upload_bytes":       "MAX_UPLOAD_BYTES",
	"session_ttl":            "SESSION_TTL",
	"render_dpi":             "RENDER_DPI",
	"render_workers":         "RENDER_WORKERS",
	"crop_box":               "CROP_BOX",
	"pdf_fallback_pdftotext": "PDF_FALLBACK_PDFTOTEXT",
	"image_width_inches":     "IMAGE_WIDTH_INCHES",
	"preserve_slide_bodies":  "PRESERVE_SLIDE_BODIES",
	"duplicate_sections":     "DUPLICATE_SECTIONS",
}

// Load reads configuration from defaults, an optional YAML file and the
// environment, in increasing priority. An empty cfgFile falls back to
// $DECKREPORT_CONFIG, then to config.yaml in the working directory or
// $HOME/.deckreport; a missing default file is not an error.
func Load(cfgFile string) (Config, error) {
	if cfgFile == "" {
		cfgFile = os.Getenv(FileEnv)
	}
	v := viper.New()
	setDefaults(v)

	for key, env := range envKeys {
		if err := v.BindEnv(key, env); err != nil {
			return Config{}, fmt.Errorf("bind env %s: %w", env, err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.deckreport")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	return fromViper(v), nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", DefaultPort)
	v.SetDefault("llm_provider", DefaultProvider)
	v.SetDefault("openai_model", DefaultOpenAIModel)
	v.SetDefault("anthropic_model", DefaultAnthropicModel)
	v.SetDefault("anthropic_base_url", DefaultAnthropicURL)
	v.SetDefault("max_tokens", DefaultMaxTokens)
	v.SetDefault("system_prompt", DefaultSystemPrompt)
	v.SetDefault("exemplar_max_tokens", DefaultExemplarTokens)
	v.SetDefault("llm_timeout", DefaultLLMTimeout)
	v.SetDefault("work_dir", filepath.Join(os.TempDir(), "deckreport"))
	v.SetDefault("output_name", DefaultOutputName)
	v.SetDefault("max_upload_bytes", DefaultMaxUpload)
	v.SetDefault("session_ttl", DefaultSessionTTL)
	v.SetDefault("render_dpi", DefaultRenderDPI)
	v.SetDefault("render_workers", DefaultRenderWorkers)
	v.SetDefault("pdf_fallback_pdftotext", true)
	v.SetDefault("image_width_inches", DefaultImageWidth)
	v.SetDefault("preserve_slide_bodies", false)
	v.SetDefault("duplicate_sections", DefaultDuplicates)
}

func fromViper(v *viper.Viper) Config {
	cfg := Config{
		Port: v.GetString("port"),

		APIKey: v.GetString("api_key"),

		LLMProvider:     v.GetString("llm_provider"),
		OpenAIAPIKey:    v.GetString("openai_api_key"),
		OpenAIModel:     v.GetString("openai_model"),
		OpenAIBaseURL:   v.GetString("openai_base_url"),
		AnthropicAPIKey: v.GetString("anthropic_api_key"),
		AnthropicModel:  v.GetString("anthropic_model"),
		AnthropicURL:    v.GetString("anthropic_base_url"),
		MaxTokens:       v.GetInt("max_tokens"),
		SystemPrompt:    v.GetString("system_prompt"),

		ExemplarMaxTokens: v.GetInt("exemplar_max_tokens"),
		LLMTimeout:      v.GetDuration("llm_timeout"),

		WorkDir:        v.GetString("work_dir"),
		OutputName:     v.GetString("output_name"),
		MaxUploadBytes: v.GetInt64("max_upload_bytes"),

		SessionTTL: v.GetDuration("session_ttl"),

		RenderDPI:            v.GetInt("render_dpi"),
		RenderWorkers:        v.GetInt("render_workers"),
		CropBox:              v.GetString("crop_box"),
		PDFFallbackPdftotext: v.GetBool("pdf_fallback_pdftotext"),

		ImageWidthInches:    v.GetFloat64("image_width_inches"),
		PreserveSlideBodies: v.GetBool("preserve_slide_bodies"),
		DuplicateSections:   v.GetString("duplicate_sections"),
	}

	if cfg.Port == "" {
		cfg.Port = DefaultPort
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.ExemplarMaxTokens <= 0 {
		cfg.ExemplarMaxTokens = DefaultExemplarTokens
	}
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = DefaultSystemPrompt
	}
	if cfg.LLMTimeout <= 0 {
		cfg.LLMTimeout = DefaultLLMTimeout
	}
	if cfg.OutputName == "" {
		cfg.OutputName = DefaultOutputName
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultMaxUpload
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = DefaultSessionTTL
	}
	if cfg.RenderDPI <= 0 {
		cfg.RenderDPI = DefaultRenderDPI
	}
	if cfg.RenderWorkers <= 0 {
		cfg.RenderWorkers = DefaultRenderWorkers
	}
	if cfg.ImageWidthInches <= 0 {
		cfg.ImageWidthInches = DefaultImageWidth
	}
	if cfg.DuplicateSections == "" {
		cfg.DuplicateSections = DefaultDuplicates
	}

	return cfg
}

// LLMCredentials returns the key, model and base URL of the selected
// provider.
func (c Config) LLMCredentials() (apiKey, model, baseURL string) {
	switch c.LLMProvider {
	case "anthropic", "claude":
		return c.AnthropicAPIKey, c.AnthropicModel, c.AnthropicURL
	default:
		return c.OpenAIAPIKey, c.OpenAIModel, c.OpenAIBaseURL
	}
}

// Validate checks settings needed by every entry point.
func (c Config) Validate() error {
	switch c.LLMProvider {
	case "openai", "anthropic", "claude":
	default:
		return fmt.Errorf("LLM_PROVIDER must be openai or anthropic, got %q", c.LLMProvider)
	}
	if key, _, _ := c.LLMCredentials(); key == "" {
		if c.LLMProvider == "openai" {
			return fmt.Errorf("OPENAI_API_KEY is required")
		}
		return fmt.Errorf("ANTHROPIC_API_KEY is required")
	}
	if c.DuplicateSections != "allow" && c.DuplicateSections != "error" {
		return fmt.Errorf("DUPLICATE_SECTIONS must be allow or error, got %q", c.DuplicateSections)
	}
	if c.OutputName != filepath.Base(c.OutputName) {
		return fmt.Errorf("OUTPUT_NAME must be a bare file name, got %q", c.OutputName)
	}
	return nil
}

// ValidateServer adds the checks of the HTTP server.
func (c Config) ValidateServer() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.APIKey == "" {
		return fmt.Errorf("DECKREPORT_API_KEY is required")
	}
	return nil
}
