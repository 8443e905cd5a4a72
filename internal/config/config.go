// Package config loads and saves the global application config stored at
// ~/.config/taskpro/config.json.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// PayPalConfig holds the payment-provider credentials and plan catalog.
type PayPalConfig struct {
	Mode          string `json:"mode,omitempty"` // "sandbox" (default) or "live"
	ClientID      string `json:"client_id,omitempty"`
	Secret        string `json:"secret,omitempty"`
	MonthlyPlanID string `json:"monthly_plan_id,omitempty"`
	YearlyPlanID  string `json:"yearly_plan_id,omitempty"`
	ReturnURL     string `json:"return_url,omitempty"`
	CancelURL     string `json:"cancel_url,omitempty"`
}

// ServeConfig holds the HTTP server settings.
type ServeConfig struct {
	ListenAddr string `json:"listen_addr,omitempty"` // default ":8080"
	AdminToken string `json:"admin_token,omitempty"`
}

// Config is the global config.
type Config struct {
	// UserID is the acting user for CLI commands. Empty means "local".
	UserID string       `json:"user_id,omitempty"`
	Serve  ServeConfig  `json:"serve"`
	PayPal PayPalConfig `json:"paypal"`
}

// DefaultListenAddr is used when no listen address is configured.
const DefaultListenAddr = ":8080"

// CurrentUserID returns the configured acting user, defaulting to "local".
func (c *Config) CurrentUserID() string {
	if c.UserID != "" {
		return c.UserID
	}
	return "local"
}

// ListenAddr returns the configured listen address or the default.
func (c *Config) ListenAddr() string {
	if c.Serve.ListenAddr != "" {
		return c.Serve.ListenAddr
	}
	return DefaultListenAddr
}

// Dir returns ~/.config/taskpro, creating it if necessary.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	dir := filepath.Join(home, ".config", "taskpro")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create config dir: %w", err)
	}
	return dir, nil
}

// Load reads the global config. A missing file yields a zero config.
func Load() (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	return loadFrom(filepath.Join(dir, "config.json"))
}

func loadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}

// Save writes the global config. The secret-bearing file is 0600.
func Save(cfg *Config) error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	return saveTo(filepath.Join(dir, "config.json"), cfg)
}

func saveTo(path string, cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	// Write-then-rename so a crash never leaves a truncated config.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
