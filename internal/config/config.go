package config

import (
	"errors"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	Logger     LoggerConfig     `mapstructure:"logger"`
	Server     ServerConfig     `mapstructure:"server"`
	Auth       AuthConfig       `mapstructure:"auth"`
	DB         DBConfig         `mapstructure:"db"`
	AI         AIConfig         `mapstructure:"ai"`
	Scraper    ScraperConfig    `mapstructure:"scraper"`
	Generation GenerationConfig `mapstructure:"generation"`
	Notify     NotifyConfig     `mapstructure:"notify"`
}

var configFile = "./configs/config.yaml"

func Get() *Config {

	if value, _ := os.LookupEnv("MODE"); value == "test" {
		configFile = "../../configs/config.yaml"
	}

	config, err := loadConfig(configFile)
	if err != nil {
		log.Fatal(err)
	}

	return config
}

func loadConfig(file string) (*Config, error) {

	viper.SetConfigFile(file)
	viper.AutomaticEnv()

	viper.SetDefault("MODE", "release")

	err := bindEnvironmentVariables()
	if err != nil {
		return nil, err
	}

	if err := viper.ReadInConfig(); err != nil {
		log.Fatalf("Error reading config file, %s", err)
	}

	config := Config{}
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	err = config.validate()
	if err != nil {
		return nil, err
	}

	return &config, nil
}

func (config *Config) applyDefaults() {
	config.Server.applyDefaults()
	config.Auth.applyDefaults()
	config.AI.applyDefaults()
	config.Scraper.applyDefaults()
	config.Generation.applyDefaults()
}

func bindEnvironmentVariables() error {
	var errs []error

	server, auth, db := ServerConfig{}, AuthConfig{}, DBConfig{}
	ai, scraper, generation := AIConfig{}, ScraperConfig{}, GenerationConfig{}
	logger, notify := LoggerConfig{}, NotifyConfig{}

	if err := server.bindEnvironmentVariables(); err != nil {
		errs = append(errs, fmt.Errorf("ServerConfig: %w", err))
	}

	if err := auth.bindEnvironmentVariables(); err != nil {
		errs = append(errs, fmt.Errorf("AuthConfig: %w", err))
	}

	if err := db.bindEnvironmentVariables(); err != nil {
		errs = append(errs, fmt.Errorf("DBConfig: %w", err))
	}

	if err := ai.bindEnvironmentVariables(); err != nil {
		errs = append(errs, fmt.Errorf("AIConfig: %w", err))
	}

	if err := scraper.bindEnvironmentVariables(); err != nil {
		errs = append(errs, fmt.Errorf("ScraperConfig: %w", err))
	}

	if err := generation.bindEnvironmentVariables(); err != nil {
		errs = append(errs, fmt.Errorf("GenerationConfig: %w", err))
	}

	if err := logger.bindEnvironmentVariables(); err != nil {
		errs = append(errs, fmt.Errorf("LoggerConfig: %w", err))
	}

	if err := notify.bindEnvironmentVariables(); err != nil {
		errs = append(errs, fmt.Errorf("NotifyConfig: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred: %w", errors.Join(errs...))
	}

	return nil
}

func (config Config) validate() error {
	var errs []error

	if err := config.Server.validate(); err != nil {
		errs = append(errs, fmt.Errorf("ServerConfig: %w", err))
	}

	if err := config.Auth.validate(); err != nil {
		errs = append(errs, fmt.Errorf("AuthConfig: %w", err))
	}

	if err := config.DB.validate(); err != nil {
		errs = append(errs, fmt.Errorf("DBConfig: %w", err))
	}

	if err := config.AI.validate(); err != nil {
		errs = append(errs, fmt.Errorf("AIConfig: %w", err))
	}

	if err := config.Generation.validate(); err != nil {
		errs = append(errs, fmt.Errorf("GenerationConfig: %w", err))
	}

	if err := config.Logger.validate(); err != nil {
		errs = append(errs, fmt.Errorf("LoggerConfig: %w", err))
	}

	if err := config.Notify.validate(); err != nil {
		errs = append(errs, fmt.Errorf("NotifyConfig: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred: %w", errors.Join(errs...))
	}

	return nil
}

func createMultiError(errs []error) error {
	return fmt.Errorf("multiple errors occurred: %w", errors.Join(errs...))
}
