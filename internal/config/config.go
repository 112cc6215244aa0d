// Package config loads process configuration from the environment, with an
// optional .env file for local runs.
package config

import (
	"os"
	"strconv"
	"time"

	"datascope/internal/errors"

	"github.com/joho/godotenv"
)

// Config is the complete application configuration.
type Config struct {
	Output OutputConfig
	Charts ChartsConfig
	AI     AIConfig
	Log    LogConfig
}

// OutputConfig holds report output settings.
type OutputConfig struct {
	Dir        string
	SampleRows int
}

// ChartsConfig holds chart rendering settings.
type ChartsConfig struct {
	Enabled bool
	DPI     int
	Workers int
}

// AIConfig holds narrative provider settings. An empty APIKey leaves the
// provider unavailable without being a configuration error.
type AIConfig struct {
	Enabled        bool
	APIKey         string
	Model          string
	BaseURL        string
	Temperature    float64
	MaxTokens      int
	TimeoutSeconds int
}

// Timeout returns the request timeout as a duration.
func (a AIConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutSeconds) * time.Second
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string
}

// Load reads configuration from environment variables and validates it.
// A .env file in the working directory is applied first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	config := &Config{
		Output: loadOutputConfig(),
		Charts: loadChartsConfig(),
		AI:     loadAIConfig(),
		Log:    LogConfig{Level: getEnvOrDefault("LOG_LEVEL", "info")},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func loadOutputConfig() OutputConfig {
	return OutputConfig{
		Dir:        getEnvOrDefault("OUTPUT_DIR", "analysis_report"),
		SampleRows: getEnvIntOrDefault("SAMPLE_ROWS", 10000),
	}
}

func loadChartsConfig() ChartsConfig {
	return ChartsConfig{
		Enabled: getEnvBoolOrDefault("CHARTS_ENABLED", true),
		DPI:     getEnvIntOrDefault("CHART_DPI", 150),
		Workers: getEnvIntOrDefault("CHART_WORKERS", 1),
	}
}

func loadAIConfig() AIConfig {
	return AIConfig{
		Enabled:        getEnvBoolOrDefault("AI_ENABLED", true),
		APIKey:         os.Getenv("OPENAI_API_KEY"),
		Model:          getEnvOrDefault("OPENAI_MODEL", "gpt-4o-mini"),
		BaseURL:        getEnvOrDefault("OPENAI_BASE_URL", ""),
		Temperature:    getEnvFloatOrDefault("OPENAI_TEMPERATURE", 0.5),
		MaxTokens:      getEnvIntOrDefault("OPENAI_MAX_TOKENS", 400),
		TimeoutSeconds: getEnvIntOrDefault("OPENAI_TIMEOUT_SECONDS", 30),
	}
}

func validateConfig(config *Config) error {
	if config.Output.Dir == "" {
		return errors.ConfigInvalid("OUTPUT_DIR must not be empty")
	}
	if config.Output.SampleRows <= 0 {
		return errors.ConfigInvalid("SAMPLE_ROWS must be positive")
	}
	if config.Charts.DPI <= 0 {
		return errors.ConfigInvalid("CHART_DPI must be positive")
	}
	if config.Charts.Workers < 0 {
		return errors.ConfigInvalid("CHART_WORKERS must not be negative")
	}
	if config.AI.Temperature < 0 || config.AI.Temperature > 2 {
		return errors.ConfigInvalid("OPENAI_TEMPERATURE must be between 0 and 2")
	}
	if config.AI.MaxTokens <= 0 {
		return errors.ConfigInvalid("OPENAI_MAX_TOKENS must be positive")
	}
	if config.AI.TimeoutSeconds <= 0 {
		return errors.ConfigInvalid("OPENAI_TIMEOUT_SECONDS must be positive")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
