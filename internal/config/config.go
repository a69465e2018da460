package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration parsed from YAML.
// Credentials are referenced as ${ENV_VAR} in the file and expanded from the
// environment at load time; everything here is fixed at startup and treated
// as immutable for the process lifetime.
type Config struct {
	Server    ServerConfig `yaml:"server"`
	Vision    Capability   `yaml:"vision"`
	Reasoning Capability   `yaml:"reasoning"`
}

// ServerConfig defines listener and cross-origin configuration.
type ServerConfig struct {
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Capability captures the connection settings for one hosted model
// capability speaking the OpenAI-compatible dialect.
type Capability struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// Load reads YAML configuration from disk, expands environment references,
// and validates the result.
func Load(path string) (Config, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return Config{}, fmt.Errorf("resolve config path: %w", err)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return Config{}, fmt.Errorf("read config file %q: %w", absPath, err)
	}

	var cfg Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config file %q: %w", absPath, err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = []string{"*"}
	}
}

// Validate performs strict sanity checks on the configuration.
func (c Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be a valid TCP port, got %d", c.Server.Port)
	}

	for _, origin := range c.Server.AllowedOrigins {
		if strings.TrimSpace(origin) == "" {
			return fmt.Errorf("server.allowed_origins must not contain blank entries")
		}
	}

	capabilities := map[string]Capability{
		"vision":    c.Vision,
		"reasoning": c.Reasoning,
	}
	for name, capability := range capabilities {
		if err := validateCapability(name, capability); err != nil {
			return err
		}
	}

	return nil
}

func validateCapability(name string, c Capability) error {
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("capability %s: api_key must be provided", name)
	}
	if strings.TrimSpace(c.BaseURL) == "" {
		return fmt.Errorf("capability %s: base_url must be provided", name)
	}
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("capability %s: model must be provided", name)
	}
	return nil
}
