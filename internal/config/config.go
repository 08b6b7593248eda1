package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Editor struct {
		// WrapWidth is the maximum line width for text wrapping.
		WrapWidth int `yaml:"wrap_width"`
	} `yaml:"editor"`
	Files struct {
		// Extensions are the file suffixes matched when scanning directories.
		Extensions []string `yaml:"extensions"`
		// Format selects the section parser ("markdown" or "difftastic").
		Format string `yaml:"format"`
	} `yaml:"files"`
	Journal struct {
		// Path of the SQLite edit journal; empty disables journaling.
		Path string `yaml:"path"`
	} `yaml:"journal"`
}

// Default returns the built-in configuration.
func Default() *Config {
	var cfg Config
	cfg.Editor.WrapWidth = 100
	cfg.Files.Extensions = []string{"md"}
	cfg.Files.Format = "markdown"
	cfg.Journal.Path = "stanza.db"
	return &cfg
}

// LoadConfig reads the YAML config at path, falling back to defaults when the
// file is absent. Environment variables (and a .env file, if present)
// override file settings.
func LoadConfig(path string) (*Config, error) {
	// 1. Load .env if exists
	_ = godotenv.Load()

	cfg := Default()

	// 2. Load YAML config
	if file, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(file, cfg); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	// 3. Override with environment variables if present
	if w := os.Getenv("STANZA_WRAP_WIDTH"); w != "" {
		if n, err := strconv.Atoi(w); err == nil && n > 0 {
			cfg.Editor.WrapWidth = n
		}
	}
	if f := os.Getenv("STANZA_FORMAT"); f != "" {
		cfg.Files.Format = f
	}
	if j := os.Getenv("STANZA_JOURNAL"); j != "" {
		cfg.Journal.Path = j
	}

	if cfg.Editor.WrapWidth <= 0 {
		cfg.Editor.WrapWidth = 100
	}
	if len(cfg.Files.Extensions) == 0 {
		cfg.Files.Extensions = []string{"md"}
	}
	if cfg.Files.Format == "" {
		cfg.Files.Format = "markdown"
	}

	return cfg, nil
}
