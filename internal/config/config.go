// Package config loads tokenlens settings from a YAML file and the
// environment. Precedence is flags > environment > file > defaults; the
// flag layer is applied by the caller after Load.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults applied before any file or environment value.
const (
	DefaultCurrency      = "USD"
	DefaultRatesURL      = "https://open.er-api.com/v6/latest/USD"
	DefaultListen        = ":8517"
	DefaultPluginTimeout = 10 * time.Second
	DefaultLogLevel      = "warn"
	DefaultLogFormat     = "text"
)

// Config is the resolved application configuration.
type Config struct {
	// Allow restricts interpretation to the named formats. Empty means all.
	Allow []string `yaml:"allow,omitempty"`
	// MinConfidence drops interpretations below this threshold.
	MinConfidence float64 `yaml:"min_confidence"`
	// Currency is the default target for currency expressions.
	Currency string `yaml:"currency"`

	RatesURL   string `yaml:"rates_url"`
	RatesCache string `yaml:"rates_cache,omitempty"`

	PluginDir     string        `yaml:"plugin_dir,omitempty"`
	PluginTimeout time.Duration `yaml:"plugin_timeout"`

	Listen string `yaml:"listen"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// Default returns a Config holding only hardcoded defaults.
func Default() *Config {
	return &Config{
		Currency:      DefaultCurrency,
		RatesURL:      DefaultRatesURL,
		Listen:        DefaultListen,
		PluginTimeout: DefaultPluginTimeout,
		LogLevel:      DefaultLogLevel,
		LogFormat:     DefaultLogFormat,
	}
}

// Load builds the configuration. When path is empty the usual locations
// are probed; a missing file is not an error. File values are layered on
// the defaults and TOKENLENS_* environment variables on top of those.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = findConfigPath()
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if err := cfg.mergeYAML(data); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	cfg.mergeEnv()
	return cfg, nil
}

// findConfigPath probes ./tokenlens.yaml, then the XDG config dir.
func findConfigPath() string {
	if _, err := os.Stat("tokenlens.yaml"); err == nil {
		return "tokenlens.yaml"
	}
	home, err := os.UserConfigDir()
	if err != nil || home == "" || home == "/" {
		return ""
	}
	p := filepath.Join(home, "tokenlens", "config.yaml")
	if _, err := os.Stat(p); err == nil {
		return p
	}
	return ""
}

func (c *Config) mergeYAML(data []byte) error {
	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return err
	}
	if len(file.Allow) > 0 {
		c.Allow = file.Allow
	}
	if file.MinConfidence > 0 {
		c.MinConfidence = file.MinConfidence
	}
	if file.Currency != "" {
		c.Currency = strings.ToUpper(file.Currency)
	}
	if file.RatesURL != "" {
		c.RatesURL = file.RatesURL
	}
	if file.RatesCache != "" {
		c.RatesCache = file.RatesCache
	}
	if file.PluginDir != "" {
		c.PluginDir = file.PluginDir
	}
	if file.PluginTimeout > 0 {
		c.PluginTimeout = file.PluginTimeout
	}
	if file.Listen != "" {
		c.Listen = file.Listen
	}
	if file.LogLevel != "" {
		c.LogLevel = file.LogLevel
	}
	if file.LogFormat != "" {
		c.LogFormat = file.LogFormat
	}
	return nil
}

func (c *Config) mergeEnv() {
	if v := os.Getenv("TOKENLENS_ALLOW"); v != "" {
		c.Allow = splitList(v)
	}
	if v := os.Getenv("TOKENLENS_MIN_CONFIDENCE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			c.MinConfidence = f
		}
	}
	if v := os.Getenv("TOKENLENS_CURRENCY"); v != "" {
		c.Currency = strings.ToUpper(v)
	}
	if v := os.Getenv("TOKENLENS_RATES_URL"); v != "" {
		c.RatesURL = v
	}
	if v := os.Getenv("TOKENLENS_RATES_CACHE"); v != "" {
		c.RatesCache = v
	}
	if v := os.Getenv("TOKENLENS_PLUGIN_DIR"); v != "" {
		c.PluginDir = v
	}
	if v := os.Getenv("TOKENLENS_PLUGIN_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			c.PluginTimeout = d
		}
	}
	if v := os.Getenv("TOKENLENS_LISTEN"); v != "" {
		c.Listen = v
	}
	if v := os.Getenv("TOKENLENS_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("TOKENLENS_LOG_FORMAT"); v != "" {
		c.LogFormat = v
	}
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
