// Package config loads the dashboard settings from an optional YAML file.
package config

import (
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// DefaultEndpoint is the assembly line data service.
const DefaultEndpoint = "https://um1acxhydh.execute-api.eu-north-1.amazonaws.com/prod"

const dirName = ".assembly-monitor"

// Config holds the dashboard settings.
type Config struct {
	Endpoint string `yaml:"endpoint"`
	// Timeout bounds each HTTP call; zero keeps the client default.
	Timeout time.Duration `yaml:"timeout"`
	// RefreshInterval re-fetches the dataset periodically; zero means
	// refresh only on operator action.
	RefreshInterval time.Duration `yaml:"refresh_interval"`
	ExportDir       string        `yaml:"export_dir"`
	LogFile         string        `yaml:"log_file"`
}

// Default returns the settings used when no file is given.
func Default() Config {
	cfg := Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads a YAML config file. An empty path yields Default().
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "read config")
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, errors.Wrapf(err, "parse config %s", path)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Endpoint == "" {
		c.Endpoint = DefaultEndpoint
	}
	if c.ExportDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		c.ExportDir = filepath.Join(home, dirName, "exports")
	}
}

// Validate checks the endpoint URL and durations.
func (c Config) Validate() error {
	u, err := url.Parse(c.Endpoint)
	if err != nil {
		return errors.Wrap(err, "endpoint")
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.Errorf("endpoint must be an absolute http(s) URL, got %q", c.Endpoint)
	}
	if c.Timeout < 0 {
		return errors.New("timeout must not be negative")
	}
	if c.RefreshInterval < 0 {
		return errors.New("refresh_interval must not be negative")
	}
	return nil
}
