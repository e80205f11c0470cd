package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type NotifyConfig struct {
	TelegramEnabled bool   `mapstructure:"telegram_enabled"`
	TelegramToken   string `mapstructure:"telegram_token"`
	TelegramChatID  int64  `mapstructure:"telegram_chat_id"`
}

func (config NotifyConfig) validate() error {

	if !config.TelegramEnabled {
		return nil
	}

	if config.TelegramToken == "" {
		return fmt.Errorf("missing variable: telegram_token")
	}

	if config.TelegramChatID == 0 {
		return fmt.Errorf("missing variable: telegram_chat_id")
	}

	return nil
}

func (config NotifyConfig) bindEnvironmentVariables() error {
	var errs []error

	if err := viper.BindEnv("notify.telegram_token", "TELEGRAM_TOKEN"); err != nil {
		errs = append(errs, err)
	}

	if err := viper.BindEnv("notify.telegram_chat_id", "TELEGRAM_CHAT_ID"); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return createMultiError(errs)
	}

	return nil
}
