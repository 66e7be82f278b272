package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the global ~/.unichat/config.toml.
type Config struct {
	DefaultProfile string `toml:"default_profile"`

	// Simulation timings, all in milliseconds.
	HandshakeDelayMs int `toml:"handshake_delay_ms"`
	DeliveredDelayMs int `toml:"delivered_delay_ms"`
	ReplyDelayMinMs  int `toml:"reply_delay_min_ms"`
	ReplyDelayMaxMs  int `toml:"reply_delay_max_ms"`

	ReplyAPI ReplyAPI `toml:"reply_api"`

	// Personas optionally overrides the built-in per-platform tone
	// descriptors used for reply generation.
	Personas map[string]string `toml:"personas"`
}

// ReplyAPI configures the external reply-generation endpoint.
type ReplyAPI struct {
	BaseURL string `toml:"base_url"`
	APIKey  string `toml:"api_key"`
	Model   string `toml:"model"`
}

// Default returns a config with the simulation timings the app ships with.
func Default() *Config {
	return &Config{
		DefaultProfile:   "main",
		HandshakeDelayMs: 1500,
		DeliveredDelayMs: 1000,
		ReplyDelayMinMs:  2000,
		ReplyDelayMaxMs:  4000,
		ReplyAPI: ReplyAPI{
			BaseURL: "https://generativelanguage.googleapis.com/v1beta",
			Model:   "gemini-2.5-flash",
		},
	}
}

// Load reads config from the given path. Returns an error if the file is
// missing; callers that want defaults should fall back to Default.
func Load(path string) (*Config, error) {
	cfg := Default()
	_, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes config to the given path, creating parent dirs as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	encErr := toml.NewEncoder(f).Encode(cfg)
	if closeErr := f.Close(); closeErr != nil && encErr == nil {
		return closeErr
	}
	return encErr
}
