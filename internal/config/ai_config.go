package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type aiProvider string

const (
	ProviderOllama aiProvider = "ollama"
	ProviderGemini aiProvider = "gemini"
)

type AIConfig struct {
	Provider             aiProvider `mapstructure:"provider"`
	Enabled              bool       `mapstructure:"enabled"`
	OllamaURL            string     `mapstructure:"ollama_url"`
	OllamaModel          string     `mapstructure:"ollama_model"`
	GeminiKey            string     `mapstructure:"gemini_key"`
	Temperature          float64    `mapstructure:"temperature"`
	MaxTokens            int        `mapstructure:"max_tokens"`
	TimeoutSeconds       int        `mapstructure:"timeout_seconds"`
	MaxRequestsPerMinute float32    `mapstructure:"max_requests_per_minute"`
	MaxRequestsPerDay    float32    `mapstructure:"max_requests_per_day"`
}

func (config *AIConfig) applyDefaults() {
	if config.Provider == "" {
		config.Provider = ProviderOllama
	}
	if config.OllamaURL == "" {
		config.OllamaURL = "http://localhost:11434"
	}
	if config.OllamaModel == "" {
		config.OllamaModel = "llama3.2"
	}
	if config.Temperature == 0 {
		config.Temperature = 0.3
	}
	if config.MaxTokens == 0 {
		config.MaxTokens = 150
	}
	if config.TimeoutSeconds == 0 {
		config.TimeoutSeconds = 30
	}
	if config.MaxRequestsPerMinute == 0 {
		config.MaxRequestsPerMinute = 10
	}
	if config.MaxRequestsPerDay == 0 {
		config.MaxRequestsPerDay = 1000
	}
}

func (config AIConfig) validate() error {

	if config.Provider != ProviderOllama && config.Provider != ProviderGemini {
		return fmt.Errorf("unknown ai provider: %s", config.Provider)
	}

	if config.Enabled && config.Provider == ProviderGemini && config.GeminiKey == "" {
		return fmt.Errorf("missing variable: gemini_key")
	}

	return nil
}

func (config AIConfig) bindEnvironmentVariables() error {
	var errs []error

	if err := viper.BindEnv("ai.ollama_url", "OLLAMA_URL"); err != nil {
		errs = append(errs, err)
	}

	if err := viper.BindEnv("ai.ollama_model", "OLLAMA_MODEL"); err != nil {
		errs = append(errs, err)
	}

	if err := viper.BindEnv("ai.gemini_key", "GEMINI_KEY"); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return createMultiError(errs)
	}

	return nil
}
