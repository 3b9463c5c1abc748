// Package config loads the optional YAML preference file.
//
// The file only holds defaults for the CLI and the terminal UI. The
// credential is never stored here.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oukeidos/codetr/internal/files"
	"github.com/oukeidos/codetr/internal/language"
	"github.com/oukeidos/codetr/internal/models"
	"github.com/oukeidos/codetr/internal/stream"
)

const (
	EnvEndpoint = "CODETR_ENDPOINT"
	EnvTimeout  = "CODETR_TIMEOUT"

	maxTimeout = 30 * time.Minute
)

type Config struct {
	Endpoint       string        `yaml:"endpoint"`
	Timeout        time.Duration `yaml:"timeout,omitempty"`
	SourceLanguage string        `yaml:"source_language"`
	TargetLanguage string        `yaml:"target_language"`
	Model          string        `yaml:"model"`
	LogFile        string        `yaml:"log_file,omitempty"`
	AllowEnv       bool          `yaml:"allow_env,omitempty"`
}

func Default() Config {
	return Config{
		Endpoint:       stream.DefaultEndpoint,
		SourceLanguage: language.DefaultSource,
		TargetLanguage: language.DefaultTarget,
		Model:          string(models.Default),
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/codetr/config.yaml, or the platform
// equivalent.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve config directory: %w", err)
	}
	return filepath.Join(dir, "codetr", "config.yaml"), nil
}

// Load reads path on top of Default. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides the endpoint and timeout from the environment.
func (c *Config) ApplyEnv() error {
	if v := strings.TrimSpace(os.Getenv(EnvEndpoint)); v != "" {
		c.Endpoint = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvTimeout)); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvTimeout, v, err)
		}
		c.Timeout = d
	}
	return nil
}

// Validate checks the values and normalizes language names and the model.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid endpoint %q: must be an http(s) URL", c.Endpoint)
	}
	if c.Timeout < 0 || c.Timeout > maxTimeout {
		return fmt.Errorf("invalid timeout %s: must be between 0 and %s", c.Timeout, maxTimeout)
	}

	src, ok := language.GetLanguage(c.SourceLanguage)
	if !ok {
		return fmt.Errorf("unsupported source language: %s", c.SourceLanguage)
	}
	tgt, ok := language.GetLanguage(c.TargetLanguage)
	if !ok {
		return fmt.Errorf("unsupported target language: %s", c.TargetLanguage)
	}
	c.SourceLanguage, c.TargetLanguage = src.Name, tgt.Name

	m, ok := models.Parse(c.Model)
	if !ok {
		return fmt.Errorf("unsupported model: %s", c.Model)
	}
	c.Model = string(m)
	return nil
}

// Save writes the file atomically, creating its directory.
func (c Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return files.AtomicWrite(path, data, 0600)
}
