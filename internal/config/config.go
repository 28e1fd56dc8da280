// Package config provides configuration loading for the relay CLI.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds CLI configuration: named profiles plus fallback defaults.
type Config struct {
	CurrentProfile string              `yaml:"current_profile" mapstructure:"current_profile"`
	Profiles       map[string]*Profile `yaml:"profiles" mapstructure:"profiles"`
	Defaults       *Defaults           `yaml:"defaults" mapstructure:"defaults"`
	path           string
}

// Profile holds per-environment endpoint configuration.
type Profile struct {
	IngestURL   string `yaml:"ingest_url" mapstructure:"ingest_url"`
	ClassifyURL string `yaml:"classify_url" mapstructure:"classify_url"`
	Model       string `yaml:"model" mapstructure:"model"`
}

// Defaults backstop missing profile fields.
type Defaults struct {
	IngestURL   string `yaml:"ingest_url" mapstructure:"ingest_url"`
	ClassifyURL string `yaml:"classify_url" mapstructure:"classify_url"`
	Model       string `yaml:"model" mapstructure:"model"`
}

// Default returns a Config with built-in defaults.
func Default() *Config {
	return &Config{
		CurrentProfile: "default",
		Profiles:       make(map[string]*Profile),
		Defaults: &Defaults{
			IngestURL:   "http://localhost:8080",
			ClassifyURL: "https://api.openai.com",
			Model:       "gpt-4o-mini",
		},
	}
}

// Dir returns the CLI configuration directory, honoring RELAY_CONFIG_DIR.
func Dir() (string, error) {
	if dir := os.Getenv("RELAY_CONFIG_DIR"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine home directory: %w", err)
	}
	return filepath.Join(home, ".relay"), nil
}

// Load reads configuration from cfgFile (default
// $RELAY_CONFIG_DIR/config.yaml) and environment variables. A missing
// config file is fine; defaults and env vars still apply.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("current_profile", "default")
	v.SetDefault("defaults.ingest_url", "http://localhost:8080")
	v.SetDefault("defaults.classify_url", "https://api.openai.com")
	v.SetDefault("defaults.model", "gpt-4o-mini")

	if cfgFile == "" {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		cfgFile = filepath.Join(dir, "config.yaml")
	}

	v.SetConfigFile(cfgFile)
	v.SetConfigType("yaml")

	// Environment variables override with a RELAY prefix. Viper needs
	// explicit bindings for nested keys.
	v.SetEnvPrefix("RELAY")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	_ = v.BindEnv("defaults.ingest_url", "RELAY_INGEST_URL")
	_ = v.BindEnv("defaults.classify_url", "RELAY_CLASSIFY_URL")
	_ = v.BindEnv("defaults.model", "RELAY_MODEL")

	_ = v.ReadInConfig() // file may not exist yet

	cfg := Default()
	cfg.path = cfgFile

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.Defaults == nil {
		cfg.Defaults = Default().Defaults
	}

	return cfg, nil
}

// Save writes the configuration back to disk.
func (c *Config) Save() error {
	if c.path == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		c.path = filepath.Join(dir, "config.yaml")
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0700); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(c.path, data, 0600)
}

// SaveProfile stores endpoint configuration under a profile name and
// makes it current.
func (c *Config) SaveProfile(name, ingestURL, classifyURL, model string) error {
	if c.Profiles == nil {
		c.Profiles = make(map[string]*Profile)
	}

	c.Profiles[name] = &Profile{
		IngestURL:   ingestURL,
		ClassifyURL: classifyURL,
		Model:       model,
	}
	c.CurrentProfile = name
	return c.Save()
}

// GetIngestURL returns the ingestion API base URL for a profile, falling
// back to defaults.
func (c *Config) GetIngestURL(profile string) string {
	if p := c.profile(profile); p != nil && p.IngestURL != "" {
		return p.IngestURL
	}
	return c.Defaults.IngestURL
}

// GetClassifyURL returns the classification service base URL for a
// profile, falling back to defaults.
func (c *Config) GetClassifyURL(profile string) string {
	if p := c.profile(profile); p != nil && p.ClassifyURL != "" {
		return p.ClassifyURL
	}
	return c.Defaults.ClassifyURL
}

// GetModel returns the classification model for a profile, falling back
// to defaults.
func (c *Config) GetModel(profile string) string {
	if p := c.profile(profile); p != nil && p.Model != "" {
		return p.Model
	}
	return c.Defaults.Model
}

func (c *Config) profile(name string) *Profile {
	if name == "" {
		name = c.CurrentProfile
	}
	return c.Profiles[name]
}
