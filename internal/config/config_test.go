package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Config_EnvironmentOverrideWorksCorrect(t *testing.T) {
	os.Setenv("MODE", "test")
	os.Setenv("DASHBOARD_USERNAME", "overrideUser")
	os.Setenv("DASHBOARD_PASSWORD", "overridePass")
	os.Setenv("JWT_SECRET", "overrideSecret")
	os.Setenv("DB_PATH", "override.db")
	os.Setenv("OLLAMA_URL", "http://override:11434")
	os.Setenv("OLLAMA_MODEL", "override_model")
	os.Setenv("BASE_RESUME_PATH", "override_resume.tex")

	cfg := Get()

	assert.Equal(t, "overrideUser", cfg.Auth.Username)
	assert.Equal(t, "overridePass", cfg.Auth.Password)
	assert.Equal(t, "overrideSecret", cfg.Auth.JWTSecret)
	assert.Equal(t, "override.db", cfg.DB.Path)
	assert.Equal(t, "http://override:11434", cfg.AI.OllamaURL)
	assert.Equal(t, "override_model", cfg.AI.OllamaModel)
	assert.Equal(t, "override_resume.tex", cfg.Generation.BaseResumePath)
}

func Test_Config_DefaultsApplied(t *testing.T) {
	cfg := Config{}
	cfg.applyDefaults()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, ProviderOllama, cfg.AI.Provider)
	assert.Equal(t, 18, cfg.Generation.TargetBullets)
	assert.Equal(t, 0.7, cfg.Generation.MinConfidence)
	assert.Equal(t, float64(90), cfg.Scraper.FuzzyThreshold)
}

func Test_AIConfig_RejectsUnknownProvider(t *testing.T) {
	cfg := AIConfig{Provider: "openai"}
	err := cfg.validate()
	require.Error(t, err)
}

func Test_NotifyConfig_RequiresTokenWhenEnabled(t *testing.T) {
	cfg := NotifyConfig{TelegramEnabled: true}
	require.Error(t, cfg.validate())

	cfg.TelegramToken = "token"
	cfg.TelegramChatID = 42
	require.NoError(t, cfg.validate())
}
