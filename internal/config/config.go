package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// FileName is the optional config file read from HomeDir.
const FileName = "config.toml"

// Config holds user/system configuration for the OTA controller.
// Precedence, lowest first: defaults, HOME_DIR, config.toml, env, flags.
type Config struct {
	AgentURL       string        // update agent HTTP root, e.g. http://127.0.0.1:19010
	HomeDir        string        // holds config.toml and the check cache
	Channel        string        // sent to the agent as Expo-Channel-Name when set
	ReloadDelay    time.Duration // pause between fetch and reload in apply
	RequestTimeout time.Duration // per-request timeout for agent calls
}

// fileConfig mirrors config.toml. Durations are strings like "2s".
type fileConfig struct {
	AgentURL       string `toml:"agent_url"`
	Channel        string `toml:"channel"`
	ReloadDelay    string `toml:"reload_delay"`
	RequestTimeout string `toml:"request_timeout"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	home, _ := os.UserHomeDir()
	return Config{
		AgentURL:       "http://127.0.0.1:19010",
		HomeDir:        filepath.Join(home, ".push-ota"),
		ReloadDelay:    2 * time.Second,
		RequestTimeout: 30 * time.Second,
	}
}

// Load returns defaults with HOME_DIR, the config file under the home dir
// and PUSH_OTA_* environment overrides applied. A missing config file is
// not an error. Use flags for anything else.
func Load() (Config, error) {
	cfg := Defaults()
	if v := os.Getenv("HOME_DIR"); v != "" {
		cfg.HomeDir = v
	}
	if err := cfg.mergeFile(filepath.Join(cfg.HomeDir, FileName)); err != nil {
		return cfg, err
	}
	if v := os.Getenv("PUSH_OTA_AGENT"); v != "" {
		cfg.AgentURL = v
	}
	if v := os.Getenv("PUSH_OTA_CHANNEL"); v != "" {
		cfg.Channel = v
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	var fc fileConfig
	if err := toml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	if fc.AgentURL != "" {
		c.AgentURL = fc.AgentURL
	}
	if fc.Channel != "" {
		c.Channel = fc.Channel
	}
	if fc.ReloadDelay != "" {
		d, err := time.ParseDuration(fc.ReloadDelay)
		if err != nil {
			return fmt.Errorf("parse %s: reload_delay: %w", path, err)
		}
		c.ReloadDelay = d
	}
	if fc.RequestTimeout != "" {
		d, err := time.ParseDuration(fc.RequestTimeout)
		if err != nil {
			return fmt.Errorf("parse %s: request_timeout: %w", path, err)
		}
		c.RequestTimeout = d
	}
	return nil
}

// Validate reports the first unusable setting.
func (c Config) Validate() error {
	u, err := url.Parse(c.AgentURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("agent URL %q must be an http(s) URL", c.AgentURL)
	}
	if c.HomeDir == "" {
		return errors.New("home directory is empty")
	}
	if c.ReloadDelay < 0 {
		return fmt.Errorf("reload delay must not be negative, got %s", c.ReloadDelay)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive, got %s", c.RequestTimeout)
	}
	return nil
}
