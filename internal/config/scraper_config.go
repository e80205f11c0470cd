package config

import "github.com/spf13/viper"

type ScraperConfig struct {
	MaxRequestsPerSecond float32 `mapstructure:"max_requests_per_second"`
	RequestTimeoutSecs   int     `mapstructure:"request_timeout_seconds"`
	MaxPages             int     `mapstructure:"max_pages"`
	FuzzyThreshold       float64 `mapstructure:"fuzzy_threshold"`
	UserAgent            string  `mapstructure:"user_agent"`
}

func (config *ScraperConfig) applyDefaults() {
	if config.MaxRequestsPerSecond == 0 {
		config.MaxRequestsPerSecond = 0.5
	}
	if config.RequestTimeoutSecs == 0 {
		config.RequestTimeoutSecs = 15
	}
	if config.MaxPages == 0 {
		config.MaxPages = 4
	}
	if config.FuzzyThreshold == 0 {
		config.FuzzyThreshold = 90
	}
	if config.UserAgent == "" {
		config.UserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	}
}

func (config ScraperConfig) bindEnvironmentVariables() error {
	return viper.BindEnv("scraper.user_agent", "SCRAPER_USER_AGENT")
}
