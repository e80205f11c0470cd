package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type AuthConfig struct {
	Username      string `mapstructure:"username"`
	Password      string `mapstructure:"password"`
	JWTSecret     string `mapstructure:"jwt_secret"`
	TokenTTLHours int    `mapstructure:"token_ttl_hours"`
	CookieName    string `mapstructure:"cookie_name"`
	CookieSecure  bool   `mapstructure:"cookie_secure"`
}

func (config *AuthConfig) applyDefaults() {
	if config.TokenTTLHours == 0 {
		config.TokenTTLHours = 24
	}
	if config.CookieName == "" {
		config.CookieName = "dashboard_token"
	}
}

func (config AuthConfig) validate() error {

	var missingFields []string

	if config.Username == "" {
		missingFields = append(missingFields, "username")
	}

	if config.Password == "" {
		missingFields = append(missingFields, "password")
	}

	if config.JWTSecret == "" {
		missingFields = append(missingFields, "jwt_secret")
	}

	if len(missingFields) > 0 {
		return fmt.Errorf("missing required variables: %s", strings.Join(missingFields, ", "))
	}

	return nil
}

func (config AuthConfig) bindEnvironmentVariables() error {
	var errs []error

	if err := viper.BindEnv("auth.username", "DASHBOARD_USERNAME"); err != nil {
		errs = append(errs, err)
	}

	if err := viper.BindEnv("auth.password", "DASHBOARD_PASSWORD"); err != nil {
		errs = append(errs, err)
	}

	if err := viper.BindEnv("auth.jwt_secret", "JWT_SECRET"); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return createMultiError(errs)
	}

	return nil
}
