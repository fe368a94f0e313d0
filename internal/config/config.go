// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading for the flux engine.
//
// Supports TOML configuration with sensible defaults and environment
// variable overrides.
//
// Configuration file locations (in order of precedence):
//   - path given explicitly
//   - ~/.flux/config.toml
//   - Built-in defaults
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config is the complete flux engine configuration.
type Config struct {
	Version string `toml:"version"`

	// Routing configuration.
	Routing RoutingConfig `toml:"routing"`

	// Backend (generative model) configuration.
	Backend BackendConfig `toml:"backend"`

	// Services (grid REST API) configuration.
	Services ServicesConfig `toml:"services"`

	// UI configuration for the terminal front end.
	UI UIConfig `toml:"ui"`
}

// RoutingConfig tunes the routing orchestrator.
type RoutingConfig struct {
	// ConfirmThreshold is the minimum detection confidence at which a
	// confirmable intent arms a pending confirmation. The source history
	// used two different values at different call sites; this pins one.
	ConfirmThreshold float64 `toml:"confirm_threshold"`

	// PendingTTLSeconds time-boxes an abandoned confirmation.
	// 0 disables expiry.
	PendingTTLSeconds int `toml:"pending_ttl_seconds"`

	// ClientDelayMs is the artificial pacing delay for client-resolved
	// answers, normalizing perceived latency against model calls.
	ClientDelayMs int `toml:"client_delay_ms"`

	// AppKeywords extend the built-in app-domain keyword list.
	AppKeywords []string `toml:"app_keywords"`
}

// BackendConfig configures the generative backend client.
type BackendConfig struct {
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	MaxRetries     int    `toml:"max_retries"`
	// APIKeyEnv names the environment variable carrying the API key.
	// Keys never live in the config file.
	APIKeyEnv string `toml:"api_key_env"`
}

// ServicesConfig configures the grid REST API client.
type ServicesConfig struct {
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	APIKeyEnv      string `toml:"api_key_env"`
}

// UIConfig configures the terminal front end.
type UIConfig struct {
	UserName string `toml:"user_name"`
	Color    bool   `toml:"color"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Version: "1",
		Routing: RoutingConfig{
			ConfirmThreshold: 0.5,
			ClientDelayMs:    400,
		},
		Backend: BackendConfig{
			BaseURL:        "http://127.0.0.1:11434/v1",
			Model:          "flux-chat",
			TimeoutSeconds: 60,
			MaxRetries:     3,
			APIKeyEnv:      "FLUX_BACKEND_KEY",
		},
		Services: ServicesConfig{
			BaseURL:        "http://127.0.0.1:8080/api",
			TimeoutSeconds: 15,
			APIKeyEnv:      "FLUX_GRID_KEY",
		},
		UI: UIConfig{
			Color: true,
		},
	}
}

// PendingTTL returns the pending-intent expiry as a duration (0 = never).
func (r RoutingConfig) PendingTTL() time.Duration {
	return time.Duration(r.PendingTTLSeconds) * time.Second
}

// ClientDelay returns the client-answer pacing delay.
func (r RoutingConfig) ClientDelay() time.Duration {
	return time.Duration(r.ClientDelayMs) * time.Millisecond
}

// APIKey resolves the backend API key from the environment.
func (b BackendConfig) APIKey() string {
	if b.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(b.APIKeyEnv)
}

// APIKey resolves the services API key from the environment.
func (s ServicesConfig) APIKey() string {
	if s.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(s.APIKeyEnv)
}

// =============================================================================
// LOADING
// =============================================================================

// DefaultPath returns ~/.flux/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".flux", "config.toml"), nil
}

// Load reads configuration from the given path, layered over defaults.
// A missing file is not an error: defaults apply.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnvOverrides(cfg)
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides layers environment variables over file values.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("FLUX_BACKEND_URL"); v != "" {
		cfg.Backend.BaseURL = v
	}
	if v := os.Getenv("FLUX_GRID_URL"); v != "" {
		cfg.Services.BaseURL = v
	}
	if v := os.Getenv("FLUX_USER"); v != "" {
		cfg.UI.UserName = v
	}
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.Routing.ConfirmThreshold < 0 || c.Routing.ConfirmThreshold > 1 {
		return fmt.Errorf("routing.confirm_threshold must be in [0, 1], got %v", c.Routing.ConfirmThreshold)
	}
	if c.Routing.ClientDelayMs < 0 {
		return fmt.Errorf("routing.client_delay_ms must be >= 0, got %d", c.Routing.ClientDelayMs)
	}
	if c.Routing.PendingTTLSeconds < 0 {
		return fmt.Errorf("routing.pending_ttl_seconds must be >= 0, got %d", c.Routing.PendingTTLSeconds)
	}
	if c.Backend.BaseURL == "" {
		return fmt.Errorf("backend.base_url must not be empty")
	}
	return nil
}
