package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	Port        int      `mapstructure:"port"`
	Mode        string   `mapstructure:"mode"`
	CorsOrigins []string `mapstructure:"cors_origins"`
	OutputDir   string   `mapstructure:"output_dir"`
	MetricsAddr string   `mapstructure:"metrics_addr"`
}

func (config *ServerConfig) applyDefaults() {
	if config.Port == 0 {
		config.Port = 8080
	}
	if config.Mode == "" {
		config.Mode = "release"
	}
	if config.OutputDir == "" {
		config.OutputDir = "./output"
	}
	if config.MetricsAddr == "" {
		config.MetricsAddr = ":9090"
	}
}

func (config ServerConfig) validate() error {
	if config.Port <= 0 || config.Port > 65535 {
		return fmt.Errorf("invalid port: %d", config.Port)
	}
	return nil
}

func (config ServerConfig) bindEnvironmentVariables() error {
	var errs []error

	if err := viper.BindEnv("server.port", "PORT"); err != nil {
		errs = append(errs, err)
	}

	if err := viper.BindEnv("server.mode", "MODE"); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return createMultiError(errs)
	}

	return nil
}
