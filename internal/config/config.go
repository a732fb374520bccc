package config

import (
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/thoas/go-funk"
)

var singleConfig *Config = nil

type Config struct {
	Service *svcConfig
	Gemini  *geminiConfig
	Pricing *pricingConfig
	Jobs    *jobsConfig
	Catalog *catalogConfig
}

type svcConfig struct {
	Address        string   `envconfig:"TRANSCRIBER_ADDRESS" default:"127.0.0.1:8000"`
	MetricsAddress string   `envconfig:"TRANSCRIBER_METRICS_ADDRESS" default:"127.0.0.1:8080"`
	LogLevel       string   `envconfig:"TRANSCRIBER_LOG_LEVEL" default:"info"`
	UploadDir      string   `envconfig:"TRANSCRIBER_UPLOAD_DIR" default:"uploads"`
	MaxFileSize    int64    `envconfig:"TRANSCRIBER_MAX_FILE_SIZE" default:"104857600"`
	CorsOrigins    []string `envconfig:"TRANSCRIBER_CORS_ORIGINS" default:"http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173,http://127.0.0.1:3000"`
}

type geminiConfig struct {
	APIKey        string        `envconfig:"GEMINI_API_KEY" default:""`
	Model         string        `envconfig:"GEMINI_MODEL" default:"gemini-3-flash-preview"`
	FallbackModel string        `envconfig:"GEMINI_FALLBACK_MODEL" default:"gemini-flash-latest"`
	PollInterval  time.Duration `envconfig:"GEMINI_POLL_INTERVAL" default:"2s"`
}

// pricingConfig holds USD rates per one million tokens.
type pricingConfig struct {
	InputPerMillion  float64 `envconfig:"TRANSCRIBER_PRICE_INPUT_PER_1M" default:"0.50"`
	OutputPerMillion float64 `envconfig:"TRANSCRIBER_PRICE_OUTPUT_PER_1M" default:"3.00"`
}

type jobsConfig struct {
	Workers       int           `envconfig:"TRANSCRIBER_WORKERS" default:"4"`
	MaxAge        time.Duration `envconfig:"TRANSCRIBER_JOB_MAX_AGE" default:"24h"`
	SweepInterval time.Duration `envconfig:"TRANSCRIBER_SWEEP_INTERVAL" default:"1h"`
}

type catalogConfig struct {
	Languages           []string `envconfig:"TRANSCRIBER_LANGUAGES" default:"English,Russian,Polish"`
	ConversationTypes   []string `envconfig:"TRANSCRIBER_CONVERSATION_TYPES" default:"Interview,Business Meeting"`
	SupportedExtensions []string `envconfig:"TRANSCRIBER_SUPPORTED_EXTENSIONS" default:".m4a,.mp3,.wav,.aac"`
	PromptsFile         string   `envconfig:"TRANSCRIBER_PROMPTS_FILE" default:""`
}

// New returns the process-wide configuration, reading the environment once.
func New() (*Config, error) {
	if singleConfig == nil {
		cfg, err := Load()
		if err != nil {
			return nil, err
		}
		singleConfig = cfg
	}
	return singleConfig, nil
}

// Load reads a fresh configuration from the environment.
func Load() (*Config, error) {
	cfg := new(Config)
	if err := envconfig.Process("", cfg); err != nil {
		return nil, err
	}
	cfg.Catalog.SupportedExtensions = normalizeExtensions(cfg.Catalog.SupportedExtensions)
	return cfg, nil
}

func (c *catalogConfig) IsLanguage(language string) bool {
	return funk.ContainsString(c.Languages, language)
}

func (c *catalogConfig) IsConversationType(conversationType string) bool {
	return funk.ContainsString(c.ConversationTypes, conversationType)
}

// IsSupportedExtension matches ext (with its leading dot) case-insensitively.
func (c *catalogConfig) IsSupportedExtension(ext string) bool {
	return funk.ContainsString(c.SupportedExtensions, strings.ToLower(ext))
}

// SupportedFormats lists the supported extensions for error messages.
func (c *catalogConfig) SupportedFormats() string {
	return strings.Join(c.SupportedExtensions, ", ")
}

func normalizeExtensions(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		out = append(out, ext)
	}
	return out
}
