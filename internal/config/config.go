package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const defaultMealDBBaseURL = "https://www.themealdb.com/api/json/v1/1"

type Config struct {
	Env            string
	ServiceName    string
	ServiceVersion string

	RedisURL string

	GroqKey   string
	OpenAIKey string

	MealDBBaseURL string

	OtelExporterOTLPEndpoint string
	OtelExporterOTLPHeaders  string
	SentryDSN                string

	Port string

	Analysis AnalysisConfig
}

// AnalysisConfig selects the chat-completion provider used for recipe
// analysis and query extraction.
type AnalysisConfig struct {
	Provider         string `yaml:"provider"`
	FallbackEnabled  bool   `yaml:"fallback_enabled"`
	FallbackProvider string `yaml:"fallback_provider"`
}

func Load() (*Config, error) {
	cfg := &Config{
		Env:                      os.Getenv("ENV"),
		ServiceName:              os.Getenv("SERVICE_NAME"),
		ServiceVersion:           os.Getenv("SERVICE_VERSION"),
		RedisURL:                 os.Getenv("REDIS_URL"),
		GroqKey:                  os.Getenv("GROQ_API_KEY"),
		OpenAIKey:                os.Getenv("OPENAI_API_KEY"),
		MealDBBaseURL:            os.Getenv("MEALDB_BASE_URL"),
		OtelExporterOTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		OtelExporterOTLPHeaders:  os.Getenv("OTEL_EXPORTER_OTLP_HEADERS"),
		SentryDSN:                os.Getenv("SENTRY_DSN"),
		Port:                     os.Getenv("PORT"),
	}

	// Load from YAML file if available
	if err := cfg.LoadFromYAML("config.yaml"); err != nil {
		return nil, fmt.Errorf("failed to load YAML config: %w", err)
	}

	// Set defaults
	if cfg.Env == "" {
		cfg.Env = "development"
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "basil"
	}
	if cfg.ServiceVersion == "" {
		cfg.ServiceVersion = "1.0.0"
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.MealDBBaseURL == "" {
		cfg.MealDBBaseURL = defaultMealDBBaseURL
	}

	cfg.SetAnalysisDefaults()

	return cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg
}

func (c *Config) LoadFromYAML(path string) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // File not found is not an error
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var yamlConfig struct {
		Analysis AnalysisConfig `yaml:"analysis"`
	}

	if err := yaml.Unmarshal(data, &yamlConfig); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	if yamlConfig.Analysis.Provider != "" {
		c.Analysis.Provider = yamlConfig.Analysis.Provider
	}
	if yamlConfig.Analysis.FallbackEnabled {
		c.Analysis.FallbackEnabled = yamlConfig.Analysis.FallbackEnabled
	}
	if yamlConfig.Analysis.FallbackProvider != "" {
		c.Analysis.FallbackProvider = yamlConfig.Analysis.FallbackProvider
	}

	return nil
}

func (c *Config) SetAnalysisDefaults() {
	if c.Analysis.Provider == "" {
		c.Analysis.Provider = "groq"
	}
	if c.Analysis.FallbackProvider == "" {
		c.Analysis.FallbackProvider = "openai"
	}
}

// HasAnalysisCredentials reports whether any chat-completion credential is
// configured. A missing credential is a silent degrade to defaults, never
// a startup failure.
func (c *Config) HasAnalysisCredentials() bool {
	return c.GroqKey != "" || c.OpenAIKey != ""
}

// OTLPHeaders parses the comma-separated key=value header list from
// OTEL_EXPORTER_OTLP_HEADERS into a map. Malformed pairs are skipped.
func (c *Config) OTLPHeaders() map[string]string {
	if c.OtelExporterOTLPHeaders == "" {
		return nil
	}

	headers := make(map[string]string)
	for _, pair := range strings.Split(c.OtelExporterOTLPHeaders, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok || key == "" {
			continue
		}
		headers[key] = value
	}
	if len(headers) == 0 {
		return nil
	}
	return headers
}
