package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validYAML = `
server:
  port: 8080
  allowed_origins:
    - "https://app.example.com"
vision:
  api_key: ${TEST_VISION_KEY}
  base_url: https://generativelanguage.googleapis.com/v1beta/openai
  model: gemini-2.0-flash
reasoning:
  api_key: groq-key
  base_url: https://api.groq.com/openai/v1
  model: llama-3.3-70b-versatile
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	t.Setenv("TEST_VISION_KEY", "vision-secret")

	cfg, err := Load(writeConfig(t, validYAML))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, []string{"https://app.example.com"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "vision-secret", cfg.Vision.APIKey, "env references must be expanded")
	assert.Equal(t, "gemini-2.0-flash", cfg.Vision.Model)
	assert.Equal(t, "llama-3.3-70b-versatile", cfg.Reasoning.Model)
}

func TestLoadDefaultsOriginsToWildcard(t *testing.T) {
	yaml := `
server:
  port: 9000
vision:
  api_key: k
  base_url: https://example.com/v1
  model: m
reasoning:
  api_key: k
  base_url: https://example.com/v1
  model: m
`
	cfg, err := Load(writeConfig(t, yaml))
	require.NoError(t, err)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Server:    ServerConfig{Port: 8080, AllowedOrigins: []string{"*"}},
			Vision:    Capability{APIKey: "k", BaseURL: "https://example.com", Model: "m"},
			Reasoning: Capability{APIKey: "k", BaseURL: "https://example.com", Model: "m"},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero port", func(c *Config) { c.Server.Port = 0 }},
		{"port too large", func(c *Config) { c.Server.Port = 70000 }},
		{"blank origin", func(c *Config) { c.Server.AllowedOrigins = []string{" "} }},
		{"missing vision key", func(c *Config) { c.Vision.APIKey = "" }},
		{"missing vision base url", func(c *Config) { c.Vision.BaseURL = "" }},
		{"missing reasoning model", func(c *Config) { c.Reasoning.Model = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	assert.NoError(t, base().Validate())
}
